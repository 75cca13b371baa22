package fonttree

import (
	"github.com/antchfx/xpath"
	"github.com/npillmayer/sbixer/core"
)

// NodeNavigator implements xpath.NodeNavigator for a font tree.
//
// For a description of the various methods of interface xpath.NodeNavigator
// please refer to the documentation of antchfx/xpath. It is not replicated here.
type NodeNavigator struct {
	root, current *Node
	chinx         int // index of current in its parent's children
	attr          int // attributes index
}

// NewNavigator creates a new xpath.NodeNavigator, positioned at node.
func NewNavigator(node *Node) *NodeNavigator {
	return &NodeNavigator{
		root:    node,
		current: node,
		attr:    -1,
	}
}

// Current returns the node the navigator is positioned at.
func (nav *NodeNavigator) Current() *Node {
	return nav.current
}

func (nav *NodeNavigator) NodeType() xpath.NodeType {
	switch nav.current.Type {
	case DocumentNode:
		return xpath.RootNode
	case TextNode:
		return xpath.TextNode
	case ElementNode:
		if nav.attr != -1 {
			return xpath.AttributeNode
		}
		return xpath.ElementNode
	}
	// processing instructions and directives are not addressable by our queries
	return xpath.CommentNode
}

func (nav *NodeNavigator) LocalName() string {
	if nav.attr != -1 {
		return nav.current.Attrs[nav.attr].Name
	}
	return nav.current.Name
}

func (*NodeNavigator) Prefix() string {
	return ""
}

func (nav *NodeNavigator) Value() string {
	switch nav.current.Type {
	case ElementNode:
		if nav.attr != -1 {
			return nav.current.Attrs[nav.attr].Value
		}
		return nav.current.Text()
	case TextNode, CommentNode:
		return nav.current.Data
	case DocumentNode:
		return nav.current.Text()
	}
	return ""
}

func (nav *NodeNavigator) Copy() xpath.NodeNavigator {
	n := *nav
	return &n
}

func (nav *NodeNavigator) MoveToRoot() {
	nav.current = nav.root
	nav.chinx = 0
	nav.attr = -1
}

func (nav *NodeNavigator) MoveToParent() bool {
	if nav.attr != -1 {
		nav.attr = -1 // move from attributes to element
		return true
	}
	if nav.current == nav.root || nav.current.Parent == nil {
		return false
	}
	nav.current = nav.current.Parent
	nav.chinx = indexInParent(nav.current)
	return true
}

func (nav *NodeNavigator) MoveToNextAttribute() bool {
	if nav.current.Type != ElementNode || nav.attr >= len(nav.current.Attrs)-1 {
		return false
	}
	nav.attr++
	return true
}

func (nav *NodeNavigator) MoveToChild() bool {
	if nav.attr != -1 || len(nav.current.Children) == 0 {
		return false
	}
	nav.current = nav.current.Children[0]
	nav.chinx = 0
	return true
}

func (nav *NodeNavigator) MoveToFirst() bool {
	if nav.attr != -1 || nav.current == nav.root || nav.chinx == 0 {
		return false
	}
	nav.current = nav.current.Parent.Children[0]
	nav.chinx = 0
	return true
}

func (nav *NodeNavigator) MoveToNext() bool {
	if nav.attr != -1 || nav.current == nav.root || nav.current.Parent == nil {
		return false
	}
	siblings := nav.current.Parent.Children
	if nav.chinx+1 >= len(siblings) {
		return false
	}
	nav.chinx++
	nav.current = siblings[nav.chinx]
	return true
}

func (nav *NodeNavigator) MoveToPrevious() bool {
	if nav.attr != -1 || nav.current == nav.root || nav.chinx == 0 {
		return false
	}
	nav.chinx--
	nav.current = nav.current.Parent.Children[nav.chinx]
	return true
}

func (nav *NodeNavigator) MoveTo(other xpath.NodeNavigator) bool {
	n, ok := other.(*NodeNavigator)
	if !ok || n.root != nav.root {
		return false
	}
	nav.current = n.current
	nav.chinx = n.chinx
	nav.attr = n.attr
	return true
}

func (nav *NodeNavigator) String() string {
	return nav.Value()
}

var _ xpath.NodeNavigator = &NodeNavigator{}

func indexInParent(n *Node) int {
	if n.Parent == nil {
		return 0
	}
	for i, ch := range n.Parent.Children {
		if ch == n {
			return i
		}
	}
	return 0
}

// --- Queries ---------------------------------------------------------------

// Select returns all nodes of a tree matching an XPath expression. Attribute
// matches are reported as their owning element.
func (t *Tree) Select(expr string) ([]*Node, error) {
	x, err := xpath.Compile(expr)
	if err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "invalid font tree query: %s", expr)
	}
	var nodes []*Node
	iter := x.Select(NewNavigator(t.Root))
	for iter.MoveNext() {
		if nav, ok := iter.Current().(*NodeNavigator); ok {
			nodes = append(nodes, nav.current)
		}
	}
	return nodes, nil
}

// SelectOne returns the first node matching an XPath expression, or nil.
func (t *Tree) SelectOne(expr string) (*Node, error) {
	nodes, err := t.Select(expr)
	if err != nil || len(nodes) == 0 {
		return nil, err
	}
	return nodes[0], nil
}

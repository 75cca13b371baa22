package fonttree

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/sbixer/core"
)

// NodeType is the type of a node in a font tree.
type NodeType int

// Node types
const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
	CommentNode
	ProcInstNode
	DirectiveNode
)

// Attr is an attribute of an element. Attributes keep their document order.
type Attr struct {
	Name  string
	Value string
}

// Node is a node of a font tree.
//
// For element nodes, Name is the tag name. For processing instructions it is
// the target. Data holds the content of text, comment, processing instruction
// and directive nodes.
type Node struct {
	Type     NodeType
	Name     string
	Attrs    []Attr
	Data     string
	Parent   *Node
	Children []*Node
}

// Attr returns the value of attribute name.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// FirstElement returns the first child element with a given tag name, or nil.
func (n *Node) FirstElement(name string) *Node {
	for _, ch := range n.Children {
		if ch.Type == ElementNode && ch.Name == name {
			return ch
		}
	}
	return nil
}

// Elements returns all child elements with a given tag name.
func (n *Node) Elements(name string) []*Node {
	var elems []*Node
	for _, ch := range n.Children {
		if ch.Type == ElementNode && ch.Name == name {
			elems = append(elems, ch)
		}
	}
	return elems
}

// Text returns the concatenated text of all descendant text nodes.
func (n *Node) Text() string {
	if n.Type == TextNode {
		return n.Data
	}
	var b strings.Builder
	var collect func(*Node)
	collect = func(n *Node) {
		for _, ch := range n.Children {
			switch ch.Type {
			case TextNode:
				b.WriteString(ch.Data)
			case ElementNode:
				collect(ch)
			}
		}
	}
	collect(n)
	return b.String()
}

// SetText replaces all children of an element by a single text node.
func (n *Node) SetText(text string) {
	n.Children = []*Node{{Type: TextNode, Data: text, Parent: n}}
}

func (n *Node) appendChild(ch *Node) {
	ch.Parent = n
	n.Children = append(n.Children, ch)
}

func (n *Node) clone(parent *Node) *Node {
	c := &Node{
		Type:   n.Type,
		Name:   n.Name,
		Data:   n.Data,
		Parent: parent,
	}
	if n.Attrs != nil {
		c.Attrs = make([]Attr, len(n.Attrs))
		copy(c.Attrs, n.Attrs)
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.clone(c)
		}
	}
	return c
}

// --- Tree ------------------------------------------------------------------

// Tree is the in-memory form of a font's text-tree.
type Tree struct {
	Root *Node // document node
}

// Clone returns a deep copy of a tree.
func (t *Tree) Clone() *Tree {
	return &Tree{Root: t.Root.clone(nil)}
}

// DocumentElement returns the top-level element of the tree (usually
// 'ttFont'), or nil.
func (t *Tree) DocumentElement() *Node {
	for _, ch := range t.Root.Children {
		if ch.Type == ElementNode {
			return ch
		}
	}
	return nil
}

// Parse reads a font tree from r.
//
// Errors wrap core.ErrMalformedFontTree.
func Parse(r io.Reader) (*Tree, error) {
	dec := xml.NewDecoder(bufio.NewReaderSize(r, 1<<16))
	doc := &Node{Type: DocumentNode}
	current := doc
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, malformed(err)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			elem := &Node{Type: ElementNode, Name: qname(tok.Name)}
			if len(tok.Attr) > 0 {
				elem.Attrs = make([]Attr, len(tok.Attr))
				for i, a := range tok.Attr {
					elem.Attrs[i] = Attr{Name: qname(a.Name), Value: a.Value}
				}
			}
			current.appendChild(elem)
			current = elem
		case xml.EndElement:
			if current.Type != ElementNode || current.Name != qname(tok.Name) {
				return nil, malformed(fmt.Errorf("unexpected end element </%s>", qname(tok.Name)))
			}
			current = current.Parent
		case xml.CharData:
			current.appendChild(&Node{Type: TextNode, Data: string(tok)})
		case xml.Comment:
			current.appendChild(&Node{Type: CommentNode, Data: string(tok)})
		case xml.ProcInst:
			current.appendChild(&Node{Type: ProcInstNode, Name: tok.Target, Data: string(tok.Inst)})
		case xml.Directive:
			current.appendChild(&Node{Type: DirectiveNode, Data: string(tok)})
		}
	}
	if current != doc {
		return nil, malformed(fmt.Errorf("unclosed element <%s>", current.Name))
	}
	t := &Tree{Root: doc}
	if t.DocumentElement() == nil {
		return nil, malformed(errors.New("document has no root element"))
	}
	return t, nil
}

// ParseFile reads a font tree from a file.
func ParseFile(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot open font tree %s", path)
	}
	defer f.Close()
	tracer().Debugf("parsing font tree %s", path)
	t, err := Parse(f)
	if err != nil {
		return nil, core.WrapError(err, core.ECORRUPT, "cannot parse font tree %s; %s",
			path, core.RegenerateHint)
	}
	return t, nil
}

func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", core.ErrMalformedFontTree, err)
}

// --- Output ----------------------------------------------------------------

// Write serializes a tree to w. Elements without children are written as
// empty-element tags.
func (t *Tree) Write(w io.Writer) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	for _, ch := range t.Root.Children {
		writeNode(bw, ch)
	}
	return bw.Flush()
}

// Bytes returns the serialized tree.
func (t *Tree) Bytes() []byte {
	var buf bytes.Buffer
	_ = t.Write(&buf)
	return buf.Bytes()
}

// WriteFile writes a tree to path. Output goes to a temporary file in the
// same directory first, which is renamed to path on success. If writing
// fails, path is left as it was.
func (t *Tree) WriteFile(path string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return core.WrapError(err, core.EINVALID, "cannot create font tree file for %s", path)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	if err = t.Write(tmp); err != nil {
		return core.WrapError(err, core.EINVALID, "cannot write font tree %s", path)
	}
	if err = tmp.Close(); err != nil {
		return core.WrapError(err, core.EINVALID, "cannot write font tree %s", path)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return core.WrapError(err, core.EINVALID, "cannot move font tree to %s", path)
	}
	tracer().Debugf("wrote font tree %s", path)
	return nil
}

type stringWriter interface {
	io.Writer
	io.StringWriter
	io.ByteWriter
}

func writeNode(w stringWriter, n *Node) {
	switch n.Type {
	case TextNode:
		escape(w, n.Data, false)
	case CommentNode:
		w.WriteString("<!--")
		w.WriteString(n.Data)
		w.WriteString("-->")
	case ProcInstNode:
		w.WriteString("<?")
		w.WriteString(n.Name)
		if n.Data != "" {
			w.WriteByte(' ')
			w.WriteString(n.Data)
		}
		w.WriteString("?>")
	case DirectiveNode:
		w.WriteString("<!")
		w.WriteString(n.Data)
		w.WriteByte('>')
	case ElementNode:
		w.WriteByte('<')
		w.WriteString(n.Name)
		for _, a := range n.Attrs {
			w.WriteByte(' ')
			w.WriteString(a.Name)
			w.WriteString(`="`)
			escape(w, a.Value, true)
			w.WriteByte('"')
		}
		if len(n.Children) == 0 {
			w.WriteString("/>")
			return
		}
		w.WriteByte('>')
		for _, ch := range n.Children {
			writeNode(w, ch)
		}
		w.WriteString("</")
		w.WriteString(n.Name)
		w.WriteByte('>')
	}
}

// escape writes s with XML special characters replaced. encoding/xml's
// EscapeText would also escape newlines in text, which would blow up the
// indentation whitespace of a tree.
func escape(w stringWriter, s string, attr bool) {
	last := 0
	for i := 0; i < len(s); i++ {
		var esc string
		switch s[i] {
		case '&':
			esc = "&amp;"
		case '<':
			esc = "&lt;"
		case '>':
			esc = "&gt;"
		case '"':
			if !attr {
				continue
			}
			esc = "&quot;"
		case '\n':
			if !attr {
				continue
			}
			esc = "&#10;"
		case '\t':
			if !attr {
				continue
			}
			esc = "&#9;"
		case '\r':
			esc = "&#13;"
		default:
			continue
		}
		w.WriteString(s[last:i])
		w.WriteString(esc)
		last = i + 1
	}
	w.WriteString(s[last:])
}

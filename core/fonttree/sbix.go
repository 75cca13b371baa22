package fonttree

import (
	"strconv"
)

// Strike is a bitmap strike of an sbix table: a collection of glyph bitmaps
// for one pixel size.
//
//	<strike>
//	  <ppem value="20"/>
//	  <resolution value="72"/>
//	  <glyph graphicType="png " name="u1F600" originOffsetX="0" originOffsetY="0">
//	    <hexdata>89504e47…</hexdata>
//	  </glyph>
//	  …
//	</strike>
type Strike struct {
	Node   *Node
	glyphs map[string]*Node
}

const strikesQuery = "/ttFont/sbix/strike"

// Strikes returns the sbix strikes of a tree in document order. A tree
// without an sbix table has no strikes.
func (t *Tree) Strikes() ([]*Strike, error) {
	nodes, err := t.Select(strikesQuery)
	if err != nil {
		return nil, err
	}
	strikes := make([]*Strike, len(nodes))
	for i, n := range nodes {
		strikes[i] = newStrike(n)
	}
	tracer().Debugf("font tree has %d sbix strikes", len(strikes))
	return strikes, nil
}

func newStrike(n *Node) *Strike {
	s := &Strike{Node: n, glyphs: make(map[string]*Node)}
	for _, g := range n.Elements("glyph") {
		if name, ok := g.Attr("name"); ok {
			s.glyphs[name] = g
		}
	}
	return s
}

// PPEM returns the pixels-per-em value a strike declares.
func (s *Strike) PPEM() (int, bool) {
	ppem := s.Node.FirstElement("ppem")
	if ppem == nil {
		return 0, false
	}
	v, ok := ppem.Attr("value")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

// Glyph returns the glyph entry with a given name, or nil.
func (s *Strike) Glyph(name string) *Node {
	return s.glyphs[name]
}

// Len returns the number of glyph entries of a strike.
func (s *Strike) Len() int {
	return len(s.glyphs)
}

// Payload returns the hexdata element holding the bitmap of a glyph entry,
// or nil if the entry has no bitmap.
func Payload(glyph *Node) *Node {
	return glyph.FirstElement("hexdata")
}

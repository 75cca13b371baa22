// Package ttxtest creates small font trees in the format of fontTools' ttx
// for tests.
package ttxtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Sizes are the strike sizes of Apple Color Emoji.
var Sizes = []int{20, 26, 32, 40, 48, 52, 64, 96, 160}

// Font describes a test font tree.
type Font struct {
	Glyphs []string // glyph order, without .notdef
	Sizes  []int    // one sbix strike per size; nil for no sbix table
}

// OriginalPayload is the hexdata content glyph entry i of strike s carries in
// a generated tree.
func OriginalPayload(s, i int) string {
	return fmt.Sprintf("cafe%04x%04x", s, i)
}

// Document renders a font tree as a ttx document.
func (f Font) Document() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<ttFont sfntVersion="\x00\x01\x00\x00" ttLibVersion="4.39">` + "\n\n")
	b.WriteString("  <GlyphOrder>\n")
	b.WriteString("    <!-- The 'id' attribute is only for humans; it is ignored when parsed. -->\n")
	b.WriteString(`    <GlyphID id="0" name=".notdef"/>` + "\n")
	for i, g := range f.Glyphs {
		fmt.Fprintf(&b, "    <GlyphID id=\"%d\" name=\"%s\"/>\n", i+1, g)
	}
	b.WriteString("  </GlyphOrder>\n\n")
	b.WriteString("  <head>\n")
	b.WriteString("    <!-- Most of this table will be recalculated by the compiler -->\n")
	b.WriteString(`    <tableVersion value="1.0"/>` + "\n")
	b.WriteString(`    <fontRevision value="18.0"/>` + "\n")
	b.WriteString("  </head>\n\n")
	b.WriteString("  <name>\n")
	b.WriteString(`    <namerecord nameID="1" platformID="3" platEncID="1" langID="0x409">` + "\n")
	b.WriteString("      Apple Color Emoji &amp; Friends\n")
	b.WriteString("    </namerecord>\n")
	b.WriteString("  </name>\n\n")
	if f.Sizes != nil {
		b.WriteString("  <sbix>\n")
		b.WriteString(`    <version value="1"/>` + "\n")
		b.WriteString(`    <flags value="00000000 00000001"/>` + "\n")
		for s, size := range f.Sizes {
			b.WriteString("    <strike>\n")
			fmt.Fprintf(&b, "      <ppem value=\"%d\"/>\n", size)
			b.WriteString(`      <resolution value="72"/>` + "\n")
			b.WriteString(`      <glyph name=".notdef"/>` + "\n")
			for i, g := range f.Glyphs {
				fmt.Fprintf(&b, "      <glyph graphicType=\"png \" name=\"%s\" originOffsetX=\"0\" originOffsetY=\"-%d\">\n", g, s)
				b.WriteString("        <hexdata>\n")
				fmt.Fprintf(&b, "          %s\n", OriginalPayload(s, i))
				b.WriteString("        </hexdata>\n")
				b.WriteString("      </glyph>\n")
			}
			b.WriteString("    </strike>\n")
		}
		b.WriteString("  </sbix>\n\n")
	}
	b.WriteString("</ttFont>\n")
	return b.String()
}

// WriteFile writes the ttx document of f to dir/name and returns its path.
func (f Font) WriteFile(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(f.Document()), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

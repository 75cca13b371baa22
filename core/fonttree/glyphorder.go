package fonttree

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/npillmayer/sbixer/core"
)

// ReadGlyphOrder reads the glyph names of the GlyphOrder table of a font
// tree, in glyph ID order. It reads from r only up to the end of the table.
//
//	<ttFont>
//	  <GlyphOrder>
//	    <GlyphID id="0" name=".notdef"/>
//	    …
//
// Errors wrap core.ErrMalformedFontTree if the table is missing, empty or
// contains an entry without a name.
func ReadGlyphOrder(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(bufio.NewReaderSize(r, 1<<16))
	depth := 0
	inOrder := false
	var names []string
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			return nil, malformed(errors.New("no GlyphOrder table found"))
		}
		if err != nil {
			return nil, malformed(err)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			depth++
			if !inOrder && depth == 2 && tok.Name.Local == "GlyphOrder" {
				inOrder = true
			} else if inOrder && tok.Name.Local == "GlyphID" {
				name := ""
				for _, a := range tok.Attr {
					if a.Name.Local == "name" {
						name = a.Value
					}
				}
				if name == "" {
					return nil, malformed(fmt.Errorf("GlyphID #%d without name", len(names)))
				}
				names = append(names, name)
			}
		case xml.EndElement:
			depth--
			if inOrder && depth == 1 {
				if len(names) == 0 {
					return nil, malformed(errors.New("GlyphOrder table is empty"))
				}
				return names, nil
			}
		}
	}
}

// ReadGlyphOrderFile reads the GlyphOrder table of a font tree file.
func ReadGlyphOrderFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot open font tree %s", path)
	}
	defer f.Close()
	names, err := ReadGlyphOrder(f)
	if err != nil {
		return nil, core.WrapError(err, core.ECORRUPT, "cannot read glyph order of %s; %s",
			path, core.RegenerateHint)
	}
	tracer().Infof("read %d glyph names from %s", len(names), path)
	return names, nil
}

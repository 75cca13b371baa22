/*
Package fonttree holds the text-tree form of a font in memory.

A binary font decompiled by fontTools' ttx is an XML document with one
element per table. Package fonttree parses such a document into a plain
element tree, lets clients query it with XPath, edits payloads in place and
writes it back. Anything a client does not touch is written back as it was
read: element order, attribute order, whitespace, comments and processing
instructions are kept.

For XPath queries we use

	github.com/antchfx/xpath

with a NodeNavigator implemented in this package. For the sbix table of
color emoji fonts, Strikes gives direct access to the bitmap strikes and
their glyph entries.

Base trees of Apple Color Emoji are huge (more than 500 MB). ReadGlyphOrder
streams just the GlyphOrder table and stops reading after it.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fonttree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'sbixer.fonts'
func tracer() tracing.Trace {
	return tracing.Select("sbixer.fonts")
}

/*
Package glyphregistry manages the set of glyph names a base font knows about.

User supplied assets may only replace glyphs which exist in the base font.
The names are taken from the GlyphOrder table of the font's text-tree. As
reading a tree of Apple Color Emoji takes a while, the names are cached in a
plain text file (one name per line). The cache is not checked for
staleness: whoever replaces the base font has to call Invalidate.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package glyphregistry

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'sbixer.fonts'
func tracer() tracing.Trace {
	return tracing.Select("sbixer.fonts")
}

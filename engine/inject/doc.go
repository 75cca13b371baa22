/*
Package inject replaces glyph bitmaps of a color emoji font.

Color emoji fonts of Apple carry their glyphs as PNG bitmaps in an sbix
table, one strike per pixel size. Inject takes a complete asset set and
overwrites the bitmap payload of every glyph of the set in every strike.
Strikes are paired with asset sizes by position, not by their declared
ppem: the i-th strike receives the assets of size assets.Sizes[i].

Everything else in a font tree stays as it was. In particular, glyph entries
keep their graphic type and origin offsets.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

*/
package inject

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'sbixer.fonts'
func tracer() tracing.Trace {
	return tracing.Select("sbixer.fonts")
}

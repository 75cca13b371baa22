/*
Package glyphname canonicalizes glyph identifiers of Apple's color emoji font.

Glyphs in the sbix strikes of Apple Color Emoji are named after the code
points they render, e.g.

	u1F600              grinning face
	u1F469_u1F91D_u1F468 a sequence of three code points
	u1F385.2            base glyph plus a modifier suffix (skin tone, gender)

Users name their image files loosely ("1f600", "U1F600", "u01f600"). Normalize
turns any of these into the canonical form the font uses: a lowercase 'u'
prefix, uppercase hex digits without leading zeros, segments joined by '_'
and an optional modifier suffix after '.', which is passed through verbatim.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package glyphname

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'sbixer.fonts'
func tracer() tracing.Trace {
	return tracing.Select("sbixer.fonts")
}

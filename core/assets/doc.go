/*
Package assets collects user supplied emoji images into complete asset sets.

An asset is a PNG file holding the bitmap of one glyph at one pixel size.
Assets are named

	"{name} {size}.png"

where name is a (possibly non-canonical) glyph name and size is one of the
strike sizes of the emoji font. A glyph is replaced only if assets for every
strike size are present; otherwise some sizes would still render the
original glyph. Files which do not make it into a set are reported back to
the caller together with the reason.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

*/
package assets

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'sbixer.assets'
func tracer() tracing.Trace {
	return tracing.Select("sbixer.assets")
}

/*
Package raster renders source images of emoji at the pixel sizes of the
bitmap strikes.

Raster images (PNG, and whatever else the registered decoders of package
image and golang.org/x/image understand) are scaled with a Catmull-Rom
filter. SVG images are rendered by an external binary compatible with
rsvg-convert, which has to be configured with key 'svg-rasterizer'.

Images keep their aspect ratio: the longer side of an image is scaled to
the requested size.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

*/
package raster

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'sbixer.backend'.
func tracer() tracing.Trace {
	return tracing.Select("sbixer.backend")
}

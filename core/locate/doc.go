/*
Package locate knows where things are: the save directory of the
application, the files of the working set in it, external tools and the
system emoji font.

All locations are taken from a schuko.Configuration. Keys are

	app-key         application key, used for the default save directory
	save-dir        save directory, default is os.UserConfigDir()/<app-key>
	emoji-font      the system emoji font container
	ttx             fontTools' ttx binary
	otc2otf         afdko's otc2otf binary
	otf2otc         afdko's otf2otc binary
	svg-rasterizer  a binary compatible with rsvg-convert
	ttx-size        expected size of a decompiled base tree, in bytes
	ttc-size        expected size of a generated font container, in bytes

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

*/
package locate

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'sbixer.fonts'.
func tracer() tracing.Trace {
	return tracing.Select("sbixer.fonts")
}

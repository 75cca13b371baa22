/*
Package pipeline generates emoji fonts with user supplied glyphs.

A Pipeline works on a save directory (see package locate). Generating a
font is a sequence of steps, some of which take minutes:

	base files   copy the system emoji font, split it into its two fonts
	             and decompile both to text trees (once)
	font         check the assets, inject them into both base trees,
	             compile both trees and merge the results into a font
	             container

Steps for the two sub-fonts run concurrently as tasks (package tasks). A
step is joined completely before the next one starts, and no two tasks
write to the same file.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

*/
package pipeline

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'sbixer.pipeline'.
func tracer() tracing.Trace {
	return tracing.Select("sbixer.pipeline")
}

/*
Package compiler converts emoji fonts between their binary and text forms.

Font compilation is done by external tools:

	otc2otf   (afdko)      splits a font container into fonts
	ttx       (fontTools)  decompiles a font to a text tree, and back
	otf2otc   (afdko)      merges fonts into a font container

Clients should depend on interface Compiler only; tests substitute a fake.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

*/
package compiler

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'sbixer.backend'.
func tracer() tracing.Trace {
	return tracing.Select("sbixer.backend")
}

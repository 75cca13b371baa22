/*
Package tasks runs long operations while reporting their progress.

Most work of building an emoji font is done by external tools which do not
tell how far they got. A Task runs such an operation in a goroutine of its
own, while a second goroutine polls a progress Strategy in short intervals:

	▪︎ FileSize watches an output file grow towards an expected size
	▪︎ Indeterminate reports activity without a numeric total
	▪︎ PreCompleted is for steps which are already done

Clients start a task and later join it. Join blocks until the operation has
returned, stops the polling and then forces the progress to 100%, no matter
what the last poll reported. Tasks cannot be cancelled and have no timeout:
if an operation hangs, Join hangs as well.

Progress is handed to a Reporter, which may render it on a terminal or
write it to the trace.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

*/
package tasks

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'sbixer.tasks'
func tracer() tracing.Trace {
	return tracing.Select("sbixer.tasks")
}

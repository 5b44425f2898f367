package pie

import "fmt"

// Trace gates low-level per-call tracing, the same pattern the teacher
// package uses for authalog.LogTrace: a package boolean flag, checked by a
// tiny helper, cheap enough to leave compiled in.
var Trace = false

func trace(args ...interface{}) {
	if Trace {
		fmt.Println(args...)
	}
}

//go:build shptrdebug

package debug

import "fmt"

// Assert panics when cond is false.
//
// Assert is a no-op unless built with the shptrdebug tag.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

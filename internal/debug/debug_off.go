//go:build !shptrdebug

package debug

// Assert panics when cond is false.
//
// Assert is a no-op unless built with the shptrdebug tag.
func Assert(cond bool, format string, args ...any) {}

package testkit

import "testing"

// seamLock is held by a test for as long as it has package-level hooks swapped
var seamLock = make(chan struct{}, 1)

// Swap points *hook at fake until t ends and returns the previous value so a
// fake can delegate to it
func Swap[T any](t testing.TB, hook *T, fake T) T {
	t.Helper()
	prev := *hook
	*hook = fake
	t.Cleanup(func() { *hook = prev })
	return prev
}

// Serial blocks until no other Serial test is running. Call it before Swap in
// any test that replaces a hook other tests may also read.
func Serial(t testing.TB) {
	t.Helper()
	seamLock <- struct{}{}
	t.Cleanup(func() { <-seamLock })
}

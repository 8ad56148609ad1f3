// Package testutils contains helpers shared by the tests of posegraph packages.
package testutils

import (
	"go.uber.org/goleak"
)

// VerifyTestMain runs the tests of a package and fails if any goroutine outlives them.
func VerifyTestMain(m goleak.TestingM) {
	goleak.VerifyTestMain(m)
}

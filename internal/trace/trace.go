// Package trace provides a structured state dump used on fatal halts and by
// cmd/tracecpu.
package trace

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
)

var config = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Dump writes a labeled, indented dump of state to w — one call per
// component (CPU, Bus, Driver) so a fatal halt's diagnostic shows every
// layer's view of the world at the moment execution stopped.
func Dump(w io.Writer, label string, state interface{}) {
	fmt.Fprintf(w, "--- %s ---\n", label)
	config.Fdump(w, state)
}

// Sdump returns the same dump Dump would write, as a string; used by tests
// that want to assert on its content instead of writing to a stream.
func Sdump(state interface{}) string {
	return config.Sdump(state)
}

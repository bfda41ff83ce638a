// SPDX-License-Identifier: EPL-2.0

package sampler

import "fmt"

// assertf panics when debug checks are compiled in and cond is false.
// Call sites guard with `if debugChecks` so release builds pay nothing.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("sampler: "+format, args...))
	}
}

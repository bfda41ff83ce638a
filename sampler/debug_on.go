// SPDX-License-Identifier: EPL-2.0

//go:build samplerdebug

package sampler

// debugChecks enables invariant assertions in control paths.
const debugChecks = true

// SPDX-License-Identifier: EPL-2.0

//go:build !samplerdebug

package sampler

const debugChecks = false

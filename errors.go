// SPDX-License-Identifier: EPL-2.0

package audsampler

import "errors"

var (
	ErrQueueFull    = errors.New("event queue full")
	ErrStreamClosed = errors.New("stream closed")
	ErrInvalidScore = errors.New("invalid score")
)

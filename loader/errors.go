// SPDX-License-Identifier: EPL-2.0

package loader

import "errors"

var (
	ErrInvalidManifest = errors.New("invalid instrument manifest")
	ErrNoSamples       = errors.New("manifest lists no samples")
	ErrEmptySample     = errors.New("sample decoded to no frames")
)

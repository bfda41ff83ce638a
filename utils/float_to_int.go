// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 clamps x to [-1, 1] and scales it to signed 16-bit PCM.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 for the positive side keeps +1.0 from overflowing
	return int16(x * 32767.0)
}

// Float32ToPCM scales x to a signed integer of the given bit depth.
// Unknown depths fall back to 16 bits.
func Float32ToPCM(x float32, bitDepth int) int {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	switch bitDepth {
	case 8:
		return int(x * 127.0)
	case 24:
		return int(float64(x) * 8388607.0)
	case 32:
		return int(float64(x) * 2147483647.0)
	default:
		return int(Float32ToInt16(x))
	}
}

// PCMToFloat32 normalizes a signed integer sample of the given bit depth
// to [-1, 1). Unknown depths are treated as 16 bits.
func PCMToFloat32(v int, bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return float32(v) / 128.0
	case 24:
		return float32(float64(v) / 8388608.0)
	case 32:
		return float32(float64(v) / 2147483648.0)
	default:
		return float32(v) / 32768.0
	}
}

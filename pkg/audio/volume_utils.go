package audio

import "math"

func clampVolume(vol float64) float64 {
	switch {
	case vol < 0:
		return 0
	case vol > 1:
		return 1
	}
	return vol
}

// volumeToPower maps linear volume (0..1) to the base-2 exponent effects.Volume expects.
func volumeToPower(vol float64) float64 {
	if vol <= 0.01 {
		return -10
	}
	return math.Log2(vol)
}

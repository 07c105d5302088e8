package dedup

import (
	"math"
	"strconv"
)

// parseFraction parses a missingness fraction, accepting only finite
// values in [0, 1]. It returns ok=false for headers and other
// non-numeric tokens.
func parseFraction(tok string) (float64, bool) {
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > 1 {
		return 0, false
	}
	return f, true
}

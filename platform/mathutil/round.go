// Package mathutil provides small numeric helpers shared by reporting code.
package mathutil

import "math"

// Round2 rounds to two decimal places, halves away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Rate2 returns 100*numerator/denominator rounded to two decimals.
// A zero denominator reports 0 rather than NaN.
func Rate2(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return Round2(100 * float64(numerator) / float64(denominator))
}

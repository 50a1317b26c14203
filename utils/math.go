// Package utils contains small math and concurrency helpers shared across the module.
package utils

import "math"

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// RoundTo rounds a value to the given number of decimal places.
func RoundTo(value float64, decimals int) float64 {
	shift := math.Pow(10, float64(decimals))
	return math.Round(value*shift) / shift
}

// Float64AlmostEqual returns whether two floats are within the given absolute tolerance.
func Float64AlmostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

// Package util formats the values the CLI prints: SI-prefixed node
// voltages/branch currents/time for a transient table, and the table's
// "_DB"/"_PHASE" column pairs for an AC sweep.
package util

import (
	"fmt"
	"math"
)

// FormatValueFactor renders value with an SI prefix scaled to its
// magnitude ("12.500 mV", "3.300 V"), the unit string passed in by the
// caller (V, A, or s for a transient table's node/branch/time columns).
func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}

// FormatFrequency renders an AC sweep point in Hz/kHz/MHz.
func FormatFrequency(freq float64) string {
	switch {
	case freq >= 1e6:
		return fmt.Sprintf("%7.3f MHz", freq/1e6)
	case freq >= 1e3:
		return fmt.Sprintf("%7.3f kHz", freq/1e3)
	default:
		return fmt.Sprintf("%7.3f Hz ", freq)
	}
}

// FormatDB renders a table's "_DB" column: a decibel quantity, not a
// linear magnitude, so it always prints fixed-point rather than switching
// to scientific notation outside some linear-magnitude range.
func FormatDB(db float64) string {
	return fmt.Sprintf("%8.2f", db)
}

// FormatPhase renders a table's "_PHASE" column in degrees.
func FormatPhase(value float64) string {
	return fmt.Sprintf("%6.1f", value) // "  90.0"
}

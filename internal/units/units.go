// Package units names the world-space length units a host may report
// positions in and converts them to metres.
package units

import "strings"

// Unit constants
const (
	Meters      = "m"
	Centimeters = "cm"
	GameUnits   = "gu"
)

// GameUnitsPerMeter is the engine's world scale: 70 units to the metre.
const GameUnitsPerMeter = 70.0

// ValidUnits contains all valid unit values
var ValidUnits = []string{Meters, Centimeters, GameUnits}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// MetersPerUnit returns the length of one unit in metres, or false for an
// unknown unit.
func MetersPerUnit(unit string) (float64, bool) {
	switch unit {
	case Meters:
		return 1, true
	case Centimeters:
		return 0.01, true
	case GameUnits:
		return 1 / GameUnitsPerMeter, true
	default:
		return 0, false
	}
}

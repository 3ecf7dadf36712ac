// Package hysteresis turns per-hand feature sets into block requests using
// separate enter and exit thresholds.
//
// Enter legs are inclusive (<=, >=) and exit legs are strict (>, <). The gap
// between the two threshold sets is a dead zone in which the classifier
// requests nothing, so a hand hovering near a boundary cannot toggle the
// block on and off every frame.
package hysteresis

import (
	"math"

	"github.com/banshee-data/blockvr/internal/features"
)

// Decision is a per-hand request to the output state machine.
type Decision int

const (
	NoChange Decision = iota
	ShouldStop
	ShouldStart
)

func (d Decision) String() string {
	switch d {
	case ShouldStop:
		return "stop"
	case ShouldStart:
		return "start"
	default:
		return "none"
	}
}

// WeaponThresholds is one side (enter or exit) of the weapon-style band.
type WeaponThresholds struct {
	SpeedMax    float64 // hand speed ceiling
	DownMin     float64 // minimum hand-forward · head-down
	ForwardMax  float64 // ceiling on |hand-forward · head-forward|
	VerticalMax float64 // ceiling on |vertical offset| in metres
}

// WeaponBand pairs the enter and exit thresholds for weapon-style hands.
type WeaponBand struct {
	Enter WeaponThresholds
	Exit  WeaponThresholds
}

// UnarmedThresholds is one side of the unarmed-style band.
type UnarmedThresholds struct {
	SpeedMax    float64
	OutwardMin  float64 // minimum hand-forward · outward
	VerticalMax float64
}

// UnarmedBand pairs the enter and exit thresholds for unarmed hands.
type UnarmedBand struct {
	Enter UnarmedThresholds
	Exit  UnarmedThresholds
}

// ClassifyWeapon applies the weapon-style band. When not blocking only the
// enter test runs; when blocking only the exit test runs.
func ClassifyWeapon(b WeaponBand, f features.Set, blocking bool) Decision {
	if !blocking {
		if f.Speed <= b.Enter.SpeedMax &&
			f.ForwardDotDown >= b.Enter.DownMin &&
			math.Abs(f.ForwardDotForward) <= b.Enter.ForwardMax &&
			math.Abs(f.VerticalOffset) <= b.Enter.VerticalMax {
			return ShouldStart
		}
		return NoChange
	}
	if f.Speed > b.Exit.SpeedMax ||
		f.ForwardDotDown < b.Exit.DownMin ||
		math.Abs(f.ForwardDotForward) > b.Exit.ForwardMax ||
		math.Abs(f.VerticalOffset) > b.Exit.VerticalMax {
		return ShouldStop
	}
	return NoChange
}

// ClassifyUnarmed applies the unarmed-style band. Forward alignment is not
// checked; outward alignment takes the place of the down test.
func ClassifyUnarmed(b UnarmedBand, f features.Set, blocking bool) Decision {
	if !blocking {
		if f.Speed <= b.Enter.SpeedMax &&
			f.ForwardDotOutward >= b.Enter.OutwardMin &&
			math.Abs(f.VerticalOffset) <= b.Enter.VerticalMax {
			return ShouldStart
		}
		return NoChange
	}
	if f.Speed > b.Exit.SpeedMax ||
		f.ForwardDotOutward < b.Exit.OutwardMin ||
		math.Abs(f.VerticalOffset) > b.Exit.VerticalMax {
		return ShouldStop
	}
	return NoChange
}

// Shield is the off-hand contribution of a shield. Shields never request a
// start; only the engine's own shield block can raise one. While the engine
// block flag is set the shield stays out of the way, otherwise a smoothed
// blocking state asks to stop.
func Shield(internalBlock, smoothedBlocking bool) Decision {
	if internalBlock {
		return NoChange
	}
	if smoothedBlocking {
		return ShouldStop
	}
	return NoChange
}

// Spell is the off-hand contribution of a spell: a casting hand never holds
// a block posture.
func Spell() Decision {
	return ShouldStop
}

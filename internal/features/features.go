package features

import (
	"errors"
	"math"

	"github.com/banshee-data/blockvr/internal/pose"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrDegenerateAxis is returned when a rotation axis has zero or non-finite length.
var ErrDegenerateAxis = errors.New("degenerate rotation axis")

// axisTolerance is how far an axis length may drift from 1 before it is
// renormalised.
const axisTolerance = 1e-3

// Set is the feature vector for one hand in one frame.
//
// ForwardDotDown and ForwardDotForward are filled for weapon-style hands,
// ForwardDotOutward for unarmed-style hands.
type Set struct {
	ForwardDotDown    float64
	ForwardDotForward float64
	ForwardDotOutward float64
	VerticalOffset    float64
	Speed             float64
}

// Options control extraction.
type Options struct {
	// MetersPerUnit converts engine world units to real-world metres. It is
	// read from the host each frame.
	MetersPerUnit float64
	// Renormalize rescales axes that have drifted from unit length.
	Renormalize bool
}

func axis(v mgl64.Vec3, renormalize bool) (mgl64.Vec3, error) {
	l := v.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return mgl64.Vec3{}, ErrDegenerateAxis
	}
	if renormalize && math.Abs(l-1) > axisTolerance {
		return v.Mul(1 / l), nil
	}
	return v, nil
}

func verticalOffset(head, hand pose.Transform, down mgl64.Vec3, scale float64) float64 {
	delta := hand.Position.Sub(head.Position).Mul(scale)
	return down.Dot(delta)
}

// ExtractWeapon computes weapon-style features: alignment of the hand's
// forward axis with the head's down and forward axes, plus the vertical
// offset of the hand from the head along head-down.
func ExtractWeapon(head, hand pose.Transform, speed float64, opts Options) (Set, error) {
	handFwd, err := axis(hand.Forward(), opts.Renormalize)
	if err != nil {
		return Set{}, err
	}
	hmdFwd, err := axis(head.Forward(), opts.Renormalize)
	if err != nil {
		return Set{}, err
	}
	hmdDown, err := axis(head.Down(), opts.Renormalize)
	if err != nil {
		return Set{}, err
	}
	return Set{
		ForwardDotDown:    handFwd.Dot(hmdDown),
		ForwardDotForward: handFwd.Dot(hmdFwd),
		VerticalOffset:    verticalOffset(head, hand, hmdDown, opts.MetersPerUnit),
		Speed:             speed,
	}, nil
}

// ExtractUnarmed computes unarmed-style features. The outward axis is the
// head's right axis for the right controller and its negation for the left,
// so a hand pointing away from the body scores positive on either side.
func ExtractUnarmed(head, hand pose.Transform, side pose.Controller, speed float64, opts Options) (Set, error) {
	handFwd, err := axis(hand.Forward(), opts.Renormalize)
	if err != nil {
		return Set{}, err
	}
	hmdRight, err := axis(head.Right(), opts.Renormalize)
	if err != nil {
		return Set{}, err
	}
	hmdDown, err := axis(head.Down(), opts.Renormalize)
	if err != nil {
		return Set{}, err
	}
	return Set{
		ForwardDotOutward: handFwd.Dot(hmdRight) * pose.OutwardSign(side),
		VerticalOffset:    verticalOffset(head, hand, hmdDown, opts.MetersPerUnit),
		Speed:             speed,
	}, nil
}

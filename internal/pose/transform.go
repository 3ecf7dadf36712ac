package pose

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a world-space position and orthonormal rotation.
//
// Rotation columns follow the engine convention: column 0 is the right
// axis, column 1 the forward axis and column 2 the up axis (Z-up).
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Mat3
}

// Identity returns a transform at the origin with no rotation.
func Identity() Transform {
	return Transform{Rotation: mgl64.Ident3()}
}

// TransformFromQuat builds a transform from a position and a rotation
// quaternion. The quaternion is normalised first; a zero quaternion yields
// the identity rotation.
func TransformFromQuat(pos mgl64.Vec3, q mgl64.Quat) Transform {
	if q.Len() == 0 {
		return Transform{Position: pos, Rotation: mgl64.Ident3()}
	}
	return Transform{Position: pos, Rotation: q.Normalize().Mat4().Mat3()}
}

// Right returns the right axis (column 0).
func (t Transform) Right() mgl64.Vec3 { return t.Rotation.Col(0) }

// Forward returns the forward axis (column 1).
func (t Transform) Forward() mgl64.Vec3 { return t.Rotation.Col(1) }

// Up returns the up axis (column 2).
func (t Transform) Up() mgl64.Vec3 { return t.Rotation.Col(2) }

// Down returns the negated up axis.
func (t Transform) Down() mgl64.Vec3 { return t.Up().Mul(-1) }

// IsFinite reports whether every component of the transform is a finite number.
func (t Transform) IsFinite() bool {
	for _, v := range t.Position {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	for _, v := range t.Rotation {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Sample is one frame's reading for a tracked point: its transform plus the
// scalar speed (squared-velocity magnitude) reported by the tracking system.
// Samples are built fresh each frame and never mutated.
type Sample struct {
	Transform Transform
	Speed     float64
}

// NewSample builds a Sample, clamping negative or NaN speeds to zero.
func NewSample(t Transform, speed float64) Sample {
	if speed < 0 || math.IsNaN(speed) {
		speed = 0
	}
	return Sample{Transform: t, Speed: speed}
}

// SpeedFromVelocity returns the squared magnitude of a linear velocity, the
// speed measure the classifier thresholds are tuned against.
func SpeedFromVelocity(v mgl64.Vec3) float64 {
	return v.Dot(v)
}

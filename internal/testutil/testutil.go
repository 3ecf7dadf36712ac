// Package testutil provides shared test fixtures for the classifier.
//
// Rig is a scriptable host: it answers pose, equipment and animation
// queries from plain fields and doubles as the event sink, so a test can
// drive a block.Session frame by frame without a running game.
package testutil

import (
	"math"

	"github.com/banshee-data/blockvr/internal/equipment"
	"github.com/banshee-data/blockvr/internal/pose"
	"github.com/go-gl/mathgl/mgl64"
)

// HeadHeight is where NewRig places the head, in world units.
const HeadHeight = 1.6

var worldUp = mgl64.Vec3{0, 0, 1}

// Rig is a fake host and sink.
type Rig struct {
	pose.Static

	Main, Off equipment.ItemKind
	Ready     bool
	LeftHand  bool
	Scale     float64
	Blocking  bool
	Internal  bool
	// FollowEvents makes Blocking track BlockStart and BlockStop, as the
	// animation graph would.
	FollowEvents bool

	Starts, Stops int
	Override      *float64
}

// NewRig returns a ready, unarmed rig with the head at HeadHeight looking
// down +Y and both hands tracked at rest below it.
func NewRig() *Rig {
	r := &Rig{Ready: true, Scale: 1}
	r.Head = pose.Transform{Position: mgl64.Vec3{0, 0, HeadHeight}, Rotation: mgl64.Ident3()}
	r.HeadValid = true
	r.HandsValid = [2]bool{true, true}
	r.Hands[pose.Right] = Pointing(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0.2, 0.3, HeadHeight - 0.4})
	r.Hands[pose.Left] = Pointing(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{-0.2, 0.3, HeadHeight - 0.4})
	return r
}

func (r *Rig) MainHandItem() equipment.ItemKind { return r.Main }
func (r *Rig) OffHandItem() equipment.ItemKind  { return r.Off }
func (r *Rig) ActorReady() bool                 { return r.Ready }
func (r *Rig) LeftHanded() bool                 { return r.LeftHand }
func (r *Rig) MetersPerUnit() float64           { return r.Scale }
func (r *Rig) IsBlockingFlag() bool             { return r.Blocking }
func (r *Rig) InternalBlockFlag() bool          { return r.Internal }

// BlockStart counts the event and raises Blocking when FollowEvents is set.
func (r *Rig) BlockStart() {
	r.Starts++
	if r.FollowEvents {
		r.Blocking = true
	}
}

// BlockStop counts the event and clears Blocking when FollowEvents is set.
func (r *Rig) BlockStop() {
	r.Stops++
	if r.FollowEvents {
		r.Blocking = false
	}
}

// OverrideBlockingVelocity records the pass-through value.
func (r *Rig) OverrideBlockingVelocity(v float64) { r.Override = &v }

// SetSpeeds sets both hands' raw speed.
func (r *Rig) SetSpeeds(s float64) {
	r.Speeds = [2]float64{s, s}
}

// Pointing returns a hand transform at pos whose forward axis is fwd.
// fwd must not be parallel to world up.
func Pointing(fwd, pos mgl64.Vec3) pose.Transform {
	return pose.Transform{Position: pos, Rotation: pose.LookAt(fwd, worldUp)}
}

// UnarmedGuard places both hands so that, against the rig's level head,
// each scores the given outward alignment and vertical offset. Offsets are
// in world units; with Scale 1 they are metres.
func (r *Rig) UnarmedGuard(outward, offset float64) {
	along := math.Sqrt(1 - outward*outward)
	z := r.Head.Position.Z() - offset
	r.Hands[pose.Right] = Pointing(mgl64.Vec3{outward, along, 0}, mgl64.Vec3{0.25, 0.3, z})
	r.Hands[pose.Left] = Pointing(mgl64.Vec3{-outward, along, 0}, mgl64.Vec3{-0.25, 0.3, z})
}

// WeaponGuard places controller c so its forward axis has the given dot
// products with head-down and head-forward, at the given vertical offset.
// down*down + forward*forward must be below 1.
func (r *Rig) WeaponGuard(c pose.Controller, down, forward, offset float64) {
	side := math.Sqrt(1 - down*down - forward*forward)
	if c == pose.Left {
		side = -side
	}
	x := 0.25
	if c == pose.Left {
		x = -x
	}
	r.Hands[c] = Pointing(mgl64.Vec3{side, forward, -down}, mgl64.Vec3{x, 0.3, r.Head.Position.Z() - offset})
}

package pose

import "github.com/go-gl/mathgl/mgl64"

// HandRole is the logical hand designation, independent of physical side.
type HandRole int

const (
	MainHand HandRole = iota
	OffHand
)

func (r HandRole) String() string {
	switch r {
	case MainHand:
		return "main"
	case OffHand:
		return "off"
	default:
		return "unknown"
	}
}

// Controller is a physical hand controller.
type Controller int

const (
	Right Controller = iota
	Left
)

func (c Controller) String() string {
	switch c {
	case Right:
		return "right"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}

// ControllerFor maps a hand role to the physical controller holding it.
// Right-handed players hold the main hand in the right controller.
func ControllerFor(role HandRole, leftHanded bool) Controller {
	mainIsRight := !leftHanded
	if (role == MainHand) == mainIsRight {
		return Right
	}
	return Left
}

// OutwardSign is the multiplier that turns the head's right axis into the
// away-from-body direction for the given controller.
func OutwardSign(c Controller) float64 {
	if c == Left {
		return -1
	}
	return 1
}

// Provider supplies head and controller poses for the current frame.
//
// The bool results report combined tracking validity (device connected,
// tracking OK, pose valid). Any false report causes the frame to be skipped.
type Provider interface {
	HeadPose() (Transform, bool)
	HandPose(c Controller) (Transform, bool)
	HandSpeed(c Controller) float64
}

// Frame is the set of samples gathered for one classification pass,
// already resolved from controllers to hand roles.
type Frame struct {
	Head    Transform
	Main    Sample
	Off     Sample
	MainCtl Controller
	OffCtl  Controller
}

// Gather reads the head and both hands from p, resolving roles with the
// handedness flag. It returns false when any device is untracked or reports
// non-finite data.
func Gather(p Provider, leftHanded bool) (Frame, bool) {
	head, ok := p.HeadPose()
	if !ok || !head.IsFinite() {
		return Frame{}, false
	}
	mainCtl := ControllerFor(MainHand, leftHanded)
	offCtl := ControllerFor(OffHand, leftHanded)

	mainT, ok := p.HandPose(mainCtl)
	if !ok || !mainT.IsFinite() {
		return Frame{}, false
	}
	offT, ok := p.HandPose(offCtl)
	if !ok || !offT.IsFinite() {
		return Frame{}, false
	}
	return Frame{
		Head:    head,
		Main:    NewSample(mainT, p.HandSpeed(mainCtl)),
		Off:     NewSample(offT, p.HandSpeed(offCtl)),
		MainCtl: mainCtl,
		OffCtl:  offCtl,
	}, true
}

// Static is a fixed Provider, used by replays and tests.
type Static struct {
	Head       Transform
	Hands      [2]Transform
	Speeds     [2]float64
	HeadValid  bool
	HandsValid [2]bool
}

// HeadPose implements Provider.
func (s *Static) HeadPose() (Transform, bool) { return s.Head, s.HeadValid }

// HandPose implements Provider.
func (s *Static) HandPose(c Controller) (Transform, bool) { return s.Hands[c], s.HandsValid[c] }

// HandSpeed implements Provider.
func (s *Static) HandSpeed(c Controller) float64 { return s.Speeds[c] }

// LookAt returns a rotation whose forward axis is fwd and whose up axis is as
// close to up as possible. Both inputs are normalised.
func LookAt(fwd, up mgl64.Vec3) mgl64.Mat3 {
	f := fwd.Normalize()
	r := f.Cross(up).Normalize()
	u := r.Cross(f)
	return mgl64.Mat3FromCols(r, f, u)
}

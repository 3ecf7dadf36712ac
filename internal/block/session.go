package block

import (
	"math"

	"github.com/banshee-data/blockvr/internal/config"
	"github.com/banshee-data/blockvr/internal/equipment"
	"github.com/banshee-data/blockvr/internal/features"
	"github.com/banshee-data/blockvr/internal/hysteresis"
	"github.com/banshee-data/blockvr/internal/monitoring"
	"github.com/banshee-data/blockvr/internal/pose"
	"github.com/banshee-data/blockvr/internal/smoother"
)

// Host answers every per-frame query the classifier makes of the runtime.
type Host interface {
	pose.Provider
	equipment.Provider

	// ActorReady reports that the actor exists, has its weapon drawn and
	// no menu is open.
	ActorReady() bool
	LeftHanded() bool
	// MetersPerUnit converts engine world units to metres.
	MetersPerUnit() float64
	// IsBlockingFlag is the raw animation "is blocking" variable.
	IsBlockingFlag() bool
	// InternalBlockFlag is the engine's own block state, used for shields.
	InternalBlockFlag() bool
}

// Sink receives fired events. Calls are fire-and-forget.
type Sink interface {
	BlockStart()
	BlockStop()
}

// Recorder is told about every frame that fires an event.
type Recorder interface {
	Record(o Outcome) error
}

// VelocityOverrider is implemented by hosts that accept the engine blocking
// velocity passed through from VanillaBlockingVelocityOverride.
type VelocityOverrider interface {
	OverrideBlockingVelocity(v float64)
}

// Session is the classifier state for one actor.
type Session struct {
	weapon           hysteresis.WeaponBand
	unarmed          hysteresis.UnarmedBand
	enableShield     bool
	renormalize      bool
	cooldownFrames   int
	velocityOverride float64

	speeds [2]*features.SpeedWindow // indexed by pose.Controller
	flags  *smoother.ModeFilter

	startCooldown Cooldown
	stopCooldown  Cooldown
	valid         bool
	frame         uint64

	recorder Recorder
}

// NewSession builds a session from cfg. Values are copied, so later changes
// to cfg have no effect. A nil cfg uses the defaults.
func NewSession(cfg *config.BlockConfig) *Session {
	if cfg == nil {
		cfg = config.EmptyBlockConfig()
	}
	n := cfg.GetSpeedWindowSize()
	return &Session{
		weapon:           cfg.WeaponBand(),
		unarmed:          cfg.UnarmedBand(),
		enableShield:     cfg.GetEnableShield(),
		renormalize:      cfg.GetRenormalizeAxes(),
		cooldownFrames:   cfg.GetBlockCooldownFrames(),
		velocityOverride: cfg.GetVanillaBlockingVelocityOverride(),
		speeds:           [2]*features.SpeedWindow{features.NewSpeedWindow(n), features.NewSpeedWindow(n)},
		flags:            smoother.NewModeFilter(cfg.GetBlockingFlagWindowSize()),
	}
}

// SetRecorder attaches r to receive fired events. Pass nil to detach.
func (s *Session) SetRecorder(r Recorder) { s.recorder = r }

// Attach passes host-level settings to h once, before the first frame.
// A negative override leaves the engine value alone.
func (s *Session) Attach(h Host) {
	if o, ok := h.(VelocityOverrider); ok && s.velocityOverride >= 0 {
		o.OverrideBlockingVelocity(s.velocityOverride)
		monitoring.Logf("block: blocking velocity override %g", s.velocityOverride)
	}
}

// Valid reports whether the last frame was fully evaluated.
func (s *Session) Valid() bool { return s.valid }

// Cooldowns returns the frames remaining on the start and stop cooldowns.
func (s *Session) Cooldowns() (start, stop int) {
	return s.startCooldown.Remaining(), s.stopCooldown.Remaining()
}

// Frames returns how many times Update has run.
func (s *Session) Frames() uint64 { return s.frame }

// Update runs one frame against h, sends any fired event to sink and
// returns what happened.
func (s *Session) Update(h Host, sink Sink) Outcome {
	out := Outcome{Frame: s.frame}
	s.frame++

	wasValid := s.valid
	s.valid = false
	s.startCooldown.Tick()
	s.stopCooldown.Tick()

	if !h.ActorReady() {
		out.Skip = SkipActor
		return out
	}

	res := equipment.Resolve(equipment.Current(h), s.enableShield)
	if !res.Applicable {
		out.Skip = SkipLoadout
		if wasValid {
			// Leaving a blockable loadout must never leave the actor stuck
			// in a block, so this stop ignores the cooldown.
			out.Event = EventStop
			out.Forced = true
			s.stopCooldown.Arm(s.cooldownFrames)
			s.fire(sink, &out)
		}
		return out
	}

	scale := h.MetersPerUnit()
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		out.Skip = SkipPose
		return out
	}
	frame, ok := pose.Gather(h, h.LeftHanded())
	if !ok {
		out.Skip = SkipPose
		return out
	}

	opts := features.Options{MetersPerUnit: scale, Renormalize: s.renormalize}
	mainSet, err := s.extract(frame.Head, frame.Main, frame.MainCtl, res.Main, opts)
	if err != nil {
		monitoring.Debugf("block: main hand: %v", err)
		out.Skip = SkipFeatures
		return out
	}
	offSet, err := s.extract(frame.Head, frame.Off, frame.OffCtl, res.Off, opts)
	if err != nil {
		monitoring.Debugf("block: off hand: %v", err)
		out.Skip = SkipFeatures
		return out
	}

	// Commit. Nothing below can skip the frame.
	s.speeds[frame.MainCtl].Push(frame.Main.Speed)
	s.speeds[frame.OffCtl].Push(frame.Off.Speed)
	smoothed := s.flags.Observe(h.IsBlockingFlag())

	out.Smoothed = smoothed
	out.Main = Hand{Controller: frame.MainCtl, Rule: res.Main, Features: mainSet}
	out.Off = Hand{Controller: frame.OffCtl, Rule: res.Off, Features: offSet}
	out.Main.Decision = s.classify(res.Main, mainSet, smoothed, h)
	out.Off.Decision = s.classify(res.Off, offSet, smoothed, h)

	switch want := combine(out.Main.Decision, out.Off.Decision); want {
	case EventStart:
		if s.startCooldown.Ready() {
			out.Event = EventStart
			s.startCooldown.Arm(s.cooldownFrames)
		} else {
			out.Suppressed = want
		}
	case EventStop:
		if s.stopCooldown.Ready() {
			out.Event = EventStop
			s.stopCooldown.Arm(s.cooldownFrames)
		} else {
			out.Suppressed = want
		}
	}
	s.fire(sink, &out)

	s.valid = true
	return out
}

// extract computes one hand's features using the windowed speed the hand
// would have after this frame's sample is committed.
func (s *Session) extract(head pose.Transform, hand pose.Sample, ctl pose.Controller, rule equipment.Rule, opts features.Options) (features.Set, error) {
	speed := s.speeds[ctl].MaxWith(hand.Speed)
	if rule == equipment.RuleUnarmed {
		return features.ExtractUnarmed(head, hand.Transform, ctl, speed, opts)
	}
	return features.ExtractWeapon(head, hand.Transform, speed, opts)
}

func (s *Session) classify(rule equipment.Rule, f features.Set, blocking bool, h Host) hysteresis.Decision {
	switch rule {
	case equipment.RuleWeapon:
		return hysteresis.ClassifyWeapon(s.weapon, f, blocking)
	case equipment.RuleUnarmed:
		return hysteresis.ClassifyUnarmed(s.unarmed, f, blocking)
	case equipment.RuleShield:
		return hysteresis.Shield(h.InternalBlockFlag(), blocking)
	case equipment.RuleSpell:
		return hysteresis.Spell()
	}
	return hysteresis.NoChange
}

// combine merges the two hands: either hand may start a block, both must
// agree to stop one.
func combine(main, off hysteresis.Decision) Event {
	if main == hysteresis.ShouldStart || off == hysteresis.ShouldStart {
		return EventStart
	}
	if main == hysteresis.ShouldStop && off == hysteresis.ShouldStop {
		return EventStop
	}
	return EventNone
}

func (s *Session) fire(sink Sink, out *Outcome) {
	switch out.Event {
	case EventStart:
		monitoring.Logf("block: start (frame %d, main=%s off=%s)", out.Frame, out.Main.Rule, out.Off.Rule)
		sink.BlockStart()
	case EventStop:
		if out.Forced {
			monitoring.Logf("block: forced stop on loadout change (frame %d)", out.Frame)
		} else {
			monitoring.Logf("block: stop (frame %d)", out.Frame)
		}
		sink.BlockStop()
	default:
		return
	}
	if s.recorder != nil {
		if err := s.recorder.Record(*out); err != nil {
			monitoring.Logf("block: record frame %d: %v", out.Frame, err)
		}
	}
}

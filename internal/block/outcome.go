package block

import (
	"github.com/banshee-data/blockvr/internal/equipment"
	"github.com/banshee-data/blockvr/internal/features"
	"github.com/banshee-data/blockvr/internal/hysteresis"
	"github.com/banshee-data/blockvr/internal/pose"
)

// Event is what a frame sends to the sink.
type Event int

const (
	EventNone Event = iota
	EventStart
	EventStop
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventStop:
		return "stop"
	}
	return "none"
}

// AnimationEvent returns the animation graph event name sent to the host,
// or "" for EventNone.
func (e Event) AnimationEvent() string {
	switch e {
	case EventStart:
		return "blockStart"
	case EventStop:
		return "blockStop"
	}
	return ""
}

// ParseEvent is the inverse of Event.String.
func ParseEvent(s string) (Event, bool) {
	switch s {
	case "start":
		return EventStart, true
	case "stop":
		return EventStop, true
	case "none", "":
		return EventNone, true
	}
	return EventNone, false
}

// SkipReason says why a frame was not evaluated.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipActor
	SkipLoadout
	SkipPose
	SkipFeatures
)

func (r SkipReason) String() string {
	switch r {
	case SkipActor:
		return "actor"
	case SkipLoadout:
		return "loadout"
	case SkipPose:
		return "pose"
	case SkipFeatures:
		return "features"
	}
	return ""
}

// Hand is one hand's contribution to a frame.
type Hand struct {
	Controller pose.Controller
	Rule       equipment.Rule
	Features   features.Set
	Decision   hysteresis.Decision
}

// Outcome describes one Update call.
type Outcome struct {
	Frame uint64
	Event Event
	// Forced is set on the stop fired when leaving a blockable loadout.
	Forced bool
	// Suppressed holds the event the hands asked for when a cooldown held
	// it back.
	Suppressed Event
	Skip       SkipReason
	Main       Hand
	Off        Hand
	Smoothed   bool
}

// Evaluated reports whether the frame ran through classification.
func (o Outcome) Evaluated() bool { return o.Skip == SkipNone }

package replay

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/banshee-data/blockvr/internal/equipment"
	"github.com/banshee-data/blockvr/internal/fsutil"
	"github.com/banshee-data/blockvr/internal/monitoring"
	"github.com/banshee-data/blockvr/internal/pose"
	"github.com/banshee-data/blockvr/internal/units"
	"github.com/go-gl/mathgl/mgl64"
)

// maxLineSize bounds one JSON Lines record.
const maxLineSize = 1 << 20

// DeviceRecord is one tracked device in a recorded frame. Orientation is
// given either as a quaternion (w, x, y, z) or as a column-major basis
// (right, forward, up); the basis wins when both are present.
type DeviceRecord struct {
	Pos   [3]float64  `json:"pos"`
	Quat  *[4]float64 `json:"quat,omitempty"`
	Basis *[9]float64 `json:"basis,omitempty"`
	Valid bool        `json:"valid"`
	Speed float64     `json:"speed,omitempty"`
}

// FrameRecord is the on-disk form of one tracking update.
type FrameRecord struct {
	Time          float64      `json:"t,omitempty"`
	Ready         *bool        `json:"ready,omitempty"`
	LeftHanded    bool         `json:"leftHanded,omitempty"`
	MetersPerUnit float64      `json:"metersPerUnit,omitempty"`
	Units         string       `json:"units,omitempty"`
	MainHand      string       `json:"mainHand,omitempty"`
	OffHand       string       `json:"offHand,omitempty"`
	Head          DeviceRecord `json:"head"`
	Right         DeviceRecord `json:"right"`
	Left          DeviceRecord `json:"left"`
	Blocking      bool         `json:"blocking,omitempty"`
	InternalBlock bool         `json:"internalBlock,omitempty"`
}

func (d DeviceRecord) transform() pose.Transform {
	pos := mgl64.Vec3(d.Pos)
	switch {
	case d.Basis != nil:
		return pose.Transform{Position: pos, Rotation: mgl64.Mat3(*d.Basis)}
	case d.Quat != nil:
		q := d.Quat
		return pose.TransformFromQuat(pos, mgl64.Quat{W: q[0], V: mgl64.Vec3{q[1], q[2], q[3]}})
	}
	return pose.Transform{Position: pos, Rotation: mgl64.Ident3()}
}

// Frame is a decoded recorded frame. It implements block.Host.
type Frame struct {
	pose.Static

	Time     float64
	Main     equipment.ItemKind
	Off      equipment.ItemKind
	Ready    bool
	LeftHand bool
	Scale    float64
	Blocking bool
	Internal bool
}

// MainHandItem implements equipment.Provider.
func (f *Frame) MainHandItem() equipment.ItemKind { return f.Main }

// OffHandItem implements equipment.Provider.
func (f *Frame) OffHandItem() equipment.ItemKind { return f.Off }

// ActorReady implements block.Host.
func (f *Frame) ActorReady() bool { return f.Ready }

// LeftHanded implements block.Host.
func (f *Frame) LeftHanded() bool { return f.LeftHand }

// MetersPerUnit implements block.Host.
func (f *Frame) MetersPerUnit() float64 { return f.Scale }

// IsBlockingFlag implements block.Host.
func (f *Frame) IsBlockingFlag() bool { return f.Blocking }

// InternalBlockFlag implements block.Host.
func (f *Frame) InternalBlockFlag() bool { return f.Internal }

// parseItem maps an item name to its kind. Names the classifier does not
// know are Other, which the resolver treats as unblockable.
func parseItem(s string) equipment.ItemKind {
	if s == "" {
		return equipment.None
	}
	k, ok := equipment.ParseItemKind(s)
	if !ok {
		monitoring.Debugf("replay: unknown item kind %q treated as other", s)
		return equipment.Other
	}
	return k
}

// Decode converts a record into a Frame. A missing ready flag means ready.
// An explicit metersPerUnit wins over a named units value; with neither,
// one world unit is one metre.
func (r FrameRecord) Decode() (Frame, error) {
	f := Frame{
		Time:     r.Time,
		Main:     parseItem(r.MainHand),
		Off:      parseItem(r.OffHand),
		Ready:    r.Ready == nil || *r.Ready,
		LeftHand: r.LeftHanded,
		Scale:    r.MetersPerUnit,
		Blocking: r.Blocking,
		Internal: r.InternalBlock,
	}
	if f.Scale == 0 {
		f.Scale = 1
		if r.Units != "" {
			m, ok := units.MetersPerUnit(r.Units)
			if !ok {
				return Frame{}, fmt.Errorf("units: unknown unit %q (want %s)", r.Units, units.GetValidUnitsString())
			}
			f.Scale = m
		}
	}
	f.Head = r.Head.transform()
	f.HeadValid = r.Head.Valid
	f.Hands[pose.Right] = r.Right.transform()
	f.Hands[pose.Left] = r.Left.transform()
	f.HandsValid = [2]bool{r.Right.Valid, r.Left.Valid}
	f.Speeds = [2]float64{math.Max(r.Right.Speed, 0), math.Max(r.Left.Speed, 0)}
	return f, nil
}

// ParseFrame decodes one JSON line.
func ParseFrame(line []byte) (Frame, error) {
	var rec FrameRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return Frame{}, err
	}
	return rec.Decode()
}

// Scanner reads frames one at a time from a JSON Lines stream. Blank lines
// and lines starting with '#' are skipped.
type Scanner struct {
	sc    *bufio.Scanner
	line  int
	frame Frame
	err   error
	skip  func(error)
}

// NewScanner wraps r.
func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Scanner{sc: sc}
}

// SkipInvalid makes Scan pass each line that fails to decode to fn and
// move on, instead of stopping. Read errors still stop the scan.
func (s *Scanner) SkipInvalid(fn func(error)) { s.skip = fn }

// Scan advances to the next frame. It returns false at end of input or on
// the first error, which Err then reports.
func (s *Scanner) Scan() bool {
	for s.sc.Scan() {
		s.line++
		line := bytes.TrimSpace(s.sc.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		f, err := ParseFrame(line)
		if err != nil {
			err = fmt.Errorf("line %d: %w", s.line, err)
			if s.skip != nil {
				s.skip(err)
				continue
			}
			s.err = err
			return false
		}
		s.frame = f
		return true
	}
	if err := s.sc.Err(); err != nil {
		s.err = fmt.Errorf("line %d: %w", s.line+1, err)
	}
	return false
}

// Frame returns the frame read by the last successful Scan.
func (s *Scanner) Frame() Frame { return s.frame }

// Err returns the first error met, if any.
func (s *Scanner) Err() error { return s.err }

// Decode reads every frame from r.
func Decode(r io.Reader) ([]Frame, error) {
	var frames []Frame
	sc := NewScanner(r)
	for sc.Scan() {
		frames = append(frames, sc.Frame())
	}
	return frames, sc.Err()
}

// Load reads a JSON Lines recording through fsys.
func Load(fsys fsutil.FileSystem, path string) ([]Frame, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	frames, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return frames, nil
}

package config

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// Warning describes one option that was ignored while loading a config file.
// The option keeps its default value.
type Warning struct {
	Option  string
	Message string
}

func (w Warning) String() string {
	return w.Option + ": " + w.Message
}

// Error lets a Warning be joined into the error returned by Validate.
func (w Warning) Error() string { return w.String() }

type optionKind int

const (
	kindFloat optionKind = iota
	kindBool
	kindInt
)

type option struct {
	name  string
	kind  optionKind
	float func(*BlockConfig) **float64
	flag  func(*BlockConfig) **bool
	count func(*BlockConfig) **int
}

func (o option) clear(c *BlockConfig) {
	switch o.kind {
	case kindFloat:
		*o.float(c) = nil
	case kindBool:
		*o.flag(c) = nil
	case kindInt:
		*o.count(c) = nil
	}
}

func floatOpt(name string, f func(*BlockConfig) **float64) option {
	return option{name: name, kind: kindFloat, float: f}
}

func boolOpt(name string, f func(*BlockConfig) **bool) option {
	return option{name: name, kind: kindBool, flag: f}
}

func intOpt(name string, f func(*BlockConfig) **int) option {
	return option{name: name, kind: kindInt, count: f}
}

var options = []option{
	floatOpt("MaxSpeedEnter", func(c *BlockConfig) **float64 { return &c.MaxSpeedEnter }),
	floatOpt("MaxSpeedExit", func(c *BlockConfig) **float64 { return &c.MaxSpeedExit }),
	floatOpt("HandForwardDotWithHmdDownEnter", func(c *BlockConfig) **float64 { return &c.HandForwardDotWithHmdDownEnter }),
	floatOpt("HandForwardDotWithHmdDownExit", func(c *BlockConfig) **float64 { return &c.HandForwardDotWithHmdDownExit }),
	floatOpt("HandForwardDotWithHmdForwardEnter", func(c *BlockConfig) **float64 { return &c.HandForwardDotWithHmdForwardEnter }),
	floatOpt("HandForwardDotWithHmdForwardExit", func(c *BlockConfig) **float64 { return &c.HandForwardDotWithHmdForwardExit }),
	floatOpt("HmdToHandVerticalDistanceEnter", func(c *BlockConfig) **float64 { return &c.HmdToHandVerticalDistanceEnter }),
	floatOpt("HmdToHandVerticalDistanceExit", func(c *BlockConfig) **float64 { return &c.HmdToHandVerticalDistanceExit }),
	floatOpt("MaxSpeedUnarmedEnter", func(c *BlockConfig) **float64 { return &c.MaxSpeedUnarmedEnter }),
	floatOpt("MaxSpeedUnarmedExit", func(c *BlockConfig) **float64 { return &c.MaxSpeedUnarmedExit }),
	floatOpt("HandForwardDotWithHmdRightUnarmedEnter", func(c *BlockConfig) **float64 { return &c.HandForwardDotWithHmdRightUnarmedEnter }),
	floatOpt("HandForwardDotWithHmdRightUnarmedExit", func(c *BlockConfig) **float64 { return &c.HandForwardDotWithHmdRightUnarmedExit }),
	floatOpt("HmdToHandVerticalDistanceUnarmedEnter", func(c *BlockConfig) **float64 { return &c.HmdToHandVerticalDistanceUnarmedEnter }),
	floatOpt("HmdToHandVerticalDistanceUnarmedExit", func(c *BlockConfig) **float64 { return &c.HmdToHandVerticalDistanceUnarmedExit }),
	boolOpt("EnableShield", func(c *BlockConfig) **bool { return &c.EnableShield }),
	floatOpt("VanillaBlockingVelocityOverride", func(c *BlockConfig) **float64 { return &c.VanillaBlockingVelocityOverride }),
	boolOpt("RenormalizeAxes", func(c *BlockConfig) **bool { return &c.RenormalizeAxes }),
	intOpt("BlockCooldownFrames", func(c *BlockConfig) **int { return &c.BlockCooldownFrames }),
	intOpt("SpeedWindowSize", func(c *BlockConfig) **int { return &c.SpeedWindowSize }),
	intOpt("BlockingFlagWindowSize", func(c *BlockConfig) **int { return &c.BlockingFlagWindowSize }),
}

var optionsByName = func() map[string]option {
	m := make(map[string]option, len(options))
	for _, o := range options {
		m[o.name] = o
	}
	return m
}()

// OptionNames returns every recognised option name in declaration order.
func OptionNames() []string {
	names := make([]string, len(options))
	for i, o := range options {
		names[i] = o.name
	}
	return names
}

func decodeRaw(ext string, data []byte) (map[string]any, error) {
	raw := map[string]any{}
	switch ext {
	case ".json", ".hujson":
		std, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
		if err := json.Unmarshal(std, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return raw, nil
}

func fromRaw(raw map[string]any) (*BlockConfig, []Warning) {
	cfg := EmptyBlockConfig()
	var warnings []Warning

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		opt, ok := optionsByName[key]
		if !ok {
			warnings = append(warnings, Warning{Option: key, Message: "unknown option"})
			continue
		}
		value := raw[key]
		switch opt.kind {
		case kindFloat:
			v, err := coerceFloat(value)
			if err != nil {
				warnings = append(warnings, Warning{Option: key, Message: err.Error()})
				continue
			}
			*opt.float(cfg) = &v
		case kindBool:
			v, err := coerceBool(value)
			if err != nil {
				warnings = append(warnings, Warning{Option: key, Message: err.Error()})
				continue
			}
			*opt.flag(cfg) = &v
		case kindInt:
			v, err := coerceInt(value)
			if err != nil {
				warnings = append(warnings, Warning{Option: key, Message: err.Error()})
				continue
			}
			*opt.count(cfg) = &v
		}
	}
	return cfg, warnings
}

func coerceFloat(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x)
		}
		f = p
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %v", v)
	}
	return f, nil
}

func coerceInt(v any) (int, error) {
	f, err := coerceFloat(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("not an integer: %v", v)
	}
	return int(f), nil
}

func coerceBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case float64:
		return x != 0, nil
	case int:
		return x != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "yes", "on":
			return true, nil
		case "0", "false", "no", "off":
			return false, nil
		}
		return false, fmt.Errorf("not a boolean: %q", x)
	}
	return false, fmt.Errorf("not a boolean: %v", v)
}

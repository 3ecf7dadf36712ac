package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/blockvr/internal/fsutil"
	"github.com/banshee-data/blockvr/internal/monitoring"
)

// DefaultConfigPath is the path to the canonical blocking defaults file.
// It must stay in step with the compiled-in defaults below.
const DefaultConfigPath = "config/blocking.defaults.json"

// maxConfigFileSize bounds the size of a config file we are willing to read.
const maxConfigFileSize = 1 * 1024 * 1024 // 1MB

// ErrUnsupportedFormat is returned for config files whose extension is not
// one of .json, .hujson, .yaml or .yml.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// BlockConfig holds the classifier thresholds and switches.
//
// Every field is optional: a nil field means "use the compiled-in default",
// which the Get* accessors supply. Keys match the option names documented
// for the mod's ini file so existing tuning carries over unchanged.
type BlockConfig struct {
	// Weapon-style thresholds
	MaxSpeedEnter                     *float64 `json:"MaxSpeedEnter,omitempty" yaml:"MaxSpeedEnter,omitempty"`
	MaxSpeedExit                      *float64 `json:"MaxSpeedExit,omitempty" yaml:"MaxSpeedExit,omitempty"`
	HandForwardDotWithHmdDownEnter    *float64 `json:"HandForwardDotWithHmdDownEnter,omitempty" yaml:"HandForwardDotWithHmdDownEnter,omitempty"`
	HandForwardDotWithHmdDownExit     *float64 `json:"HandForwardDotWithHmdDownExit,omitempty" yaml:"HandForwardDotWithHmdDownExit,omitempty"`
	HandForwardDotWithHmdForwardEnter *float64 `json:"HandForwardDotWithHmdForwardEnter,omitempty" yaml:"HandForwardDotWithHmdForwardEnter,omitempty"`
	HandForwardDotWithHmdForwardExit  *float64 `json:"HandForwardDotWithHmdForwardExit,omitempty" yaml:"HandForwardDotWithHmdForwardExit,omitempty"`
	HmdToHandVerticalDistanceEnter    *float64 `json:"HmdToHandVerticalDistanceEnter,omitempty" yaml:"HmdToHandVerticalDistanceEnter,omitempty"`
	HmdToHandVerticalDistanceExit     *float64 `json:"HmdToHandVerticalDistanceExit,omitempty" yaml:"HmdToHandVerticalDistanceExit,omitempty"`

	// Unarmed-style thresholds
	MaxSpeedUnarmedEnter                   *float64 `json:"MaxSpeedUnarmedEnter,omitempty" yaml:"MaxSpeedUnarmedEnter,omitempty"`
	MaxSpeedUnarmedExit                    *float64 `json:"MaxSpeedUnarmedExit,omitempty" yaml:"MaxSpeedUnarmedExit,omitempty"`
	HandForwardDotWithHmdRightUnarmedEnter *float64 `json:"HandForwardDotWithHmdRightUnarmedEnter,omitempty" yaml:"HandForwardDotWithHmdRightUnarmedEnter,omitempty"`
	HandForwardDotWithHmdRightUnarmedExit  *float64 `json:"HandForwardDotWithHmdRightUnarmedExit,omitempty" yaml:"HandForwardDotWithHmdRightUnarmedExit,omitempty"`
	HmdToHandVerticalDistanceUnarmedEnter  *float64 `json:"HmdToHandVerticalDistanceUnarmedEnter,omitempty" yaml:"HmdToHandVerticalDistanceUnarmedEnter,omitempty"`
	HmdToHandVerticalDistanceUnarmedExit   *float64 `json:"HmdToHandVerticalDistanceUnarmedExit,omitempty" yaml:"HmdToHandVerticalDistanceUnarmedExit,omitempty"`

	// Switches
	EnableShield                    *bool    `json:"EnableShield,omitempty" yaml:"EnableShield,omitempty"`
	VanillaBlockingVelocityOverride *float64 `json:"VanillaBlockingVelocityOverride,omitempty" yaml:"VanillaBlockingVelocityOverride,omitempty"`
	RenormalizeAxes                 *bool    `json:"RenormalizeAxes,omitempty" yaml:"RenormalizeAxes,omitempty"`

	// Timing
	BlockCooldownFrames    *int `json:"BlockCooldownFrames,omitempty" yaml:"BlockCooldownFrames,omitempty"`
	SpeedWindowSize        *int `json:"SpeedWindowSize,omitempty" yaml:"SpeedWindowSize,omitempty"`
	BlockingFlagWindowSize *int `json:"BlockingFlagWindowSize,omitempty" yaml:"BlockingFlagWindowSize,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyBlockConfig returns a BlockConfig with all fields set to nil.
func EmptyBlockConfig() *BlockConfig {
	return &BlockConfig{}
}

// DefaultBlockConfig returns a BlockConfig with every field populated from
// the compiled-in defaults.
func DefaultBlockConfig() *BlockConfig {
	return EmptyBlockConfig().Resolved()
}

// Resolved returns a copy with every nil field replaced by its default.
// The result is what gets journaled alongside recorded sessions.
func (c *BlockConfig) Resolved() *BlockConfig {
	return &BlockConfig{
		MaxSpeedEnter:                          ptrFloat64(c.GetMaxSpeedEnter()),
		MaxSpeedExit:                           ptrFloat64(c.GetMaxSpeedExit()),
		HandForwardDotWithHmdDownEnter:         ptrFloat64(c.GetHandForwardDotWithHmdDownEnter()),
		HandForwardDotWithHmdDownExit:          ptrFloat64(c.GetHandForwardDotWithHmdDownExit()),
		HandForwardDotWithHmdForwardEnter:      ptrFloat64(c.GetHandForwardDotWithHmdForwardEnter()),
		HandForwardDotWithHmdForwardExit:       ptrFloat64(c.GetHandForwardDotWithHmdForwardExit()),
		HmdToHandVerticalDistanceEnter:         ptrFloat64(c.GetHmdToHandVerticalDistanceEnter()),
		HmdToHandVerticalDistanceExit:          ptrFloat64(c.GetHmdToHandVerticalDistanceExit()),
		MaxSpeedUnarmedEnter:                   ptrFloat64(c.GetMaxSpeedUnarmedEnter()),
		MaxSpeedUnarmedExit:                    ptrFloat64(c.GetMaxSpeedUnarmedExit()),
		HandForwardDotWithHmdRightUnarmedEnter: ptrFloat64(c.GetHandForwardDotWithHmdRightUnarmedEnter()),
		HandForwardDotWithHmdRightUnarmedExit:  ptrFloat64(c.GetHandForwardDotWithHmdRightUnarmedExit()),
		HmdToHandVerticalDistanceUnarmedEnter:  ptrFloat64(c.GetHmdToHandVerticalDistanceUnarmedEnter()),
		HmdToHandVerticalDistanceUnarmedExit:   ptrFloat64(c.GetHmdToHandVerticalDistanceUnarmedExit()),
		EnableShield:                           ptrBool(c.GetEnableShield()),
		VanillaBlockingVelocityOverride:        ptrFloat64(c.GetVanillaBlockingVelocityOverride()),
		RenormalizeAxes:                        ptrBool(c.GetRenormalizeAxes()),
		BlockCooldownFrames:                    ptrInt(c.GetBlockCooldownFrames()),
		SpeedWindowSize:                        ptrInt(c.GetSpeedWindowSize()),
		BlockingFlagWindowSize:                 ptrInt(c.GetBlockingFlagWindowSize()),
	}
}

// LoadBlockConfig reads a config file through fsys.
//
// Supported formats are JSON (.json), human JSON with comments and trailing
// commas (.hujson), and YAML (.yaml, .yml). Each option is decoded on its
// own: a missing option keeps its default, and a malformed or out-of-range
// option keeps its default and adds a Warning. Only I/O failures and a file
// that cannot be parsed at all are returned as errors.
func LoadBlockConfig(fsys fsutil.FileSystem, path string) (*BlockConfig, []Warning, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))

	info, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	raw, err := decodeRaw(ext, data)
	if err != nil {
		return nil, nil, err
	}

	cfg, warnings := fromRaw(raw)
	warnings = append(warnings, cfg.sanitize()...)
	return cfg, warnings, nil
}

// LoadOrDefault loads path and logs every warning. When the file cannot be
// loaded at all it logs the error and returns the defaults, so a broken
// config never stops the classifier from running.
func LoadOrDefault(fsys fsutil.FileSystem, path string) *BlockConfig {
	if path == "" {
		return EmptyBlockConfig()
	}
	cfg, warnings, err := LoadBlockConfig(fsys, path)
	if err != nil {
		monitoring.Logf("config: %v; using defaults", err)
		return EmptyBlockConfig()
	}
	for _, w := range warnings {
		monitoring.Logf("config: %s", w)
	}
	return cfg
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded or produces warnings, intended for test setup.
func MustLoadDefaultConfig() *BlockConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	fsys := fsutil.OSFileSystem{}
	for _, path := range candidates {
		cfg, warnings, err := LoadBlockConfig(fsys, path)
		if err != nil {
			continue
		}
		if len(warnings) > 0 {
			panic(fmt.Sprintf("%s produced warnings: %v", path, warnings))
		}
		return cfg
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that every set value is in range. Nil fields are valid.
func (c *BlockConfig) Validate() error {
	var errs []error
	for _, p := range c.problems() {
		errs = append(errs, p)
	}
	return errors.Join(errs...)
}

// sanitize resets out-of-range fields to nil and reports each one.
func (c *BlockConfig) sanitize() []Warning {
	problems := c.problems()
	for _, p := range problems {
		if opt, ok := optionsByName[p.Option]; ok {
			opt.clear(c)
		}
	}
	return problems
}

func (c *BlockConfig) problems() []Warning {
	var out []Warning
	nonNegative := func(name string, v *float64) {
		if v != nil && *v < 0 {
			out = append(out, Warning{Option: name, Message: fmt.Sprintf("must be non-negative, got %g", *v)})
		}
	}
	unitRange := func(name string, v *float64) {
		if v != nil && (*v < -1 || *v > 1) {
			out = append(out, Warning{Option: name, Message: fmt.Sprintf("must be within [-1, 1], got %g", *v)})
		}
	}

	nonNegative("MaxSpeedEnter", c.MaxSpeedEnter)
	nonNegative("MaxSpeedExit", c.MaxSpeedExit)
	unitRange("HandForwardDotWithHmdDownEnter", c.HandForwardDotWithHmdDownEnter)
	unitRange("HandForwardDotWithHmdDownExit", c.HandForwardDotWithHmdDownExit)
	nonNegative("HandForwardDotWithHmdForwardEnter", c.HandForwardDotWithHmdForwardEnter)
	nonNegative("HandForwardDotWithHmdForwardExit", c.HandForwardDotWithHmdForwardExit)
	nonNegative("HmdToHandVerticalDistanceEnter", c.HmdToHandVerticalDistanceEnter)
	nonNegative("HmdToHandVerticalDistanceExit", c.HmdToHandVerticalDistanceExit)
	nonNegative("MaxSpeedUnarmedEnter", c.MaxSpeedUnarmedEnter)
	nonNegative("MaxSpeedUnarmedExit", c.MaxSpeedUnarmedExit)
	unitRange("HandForwardDotWithHmdRightUnarmedEnter", c.HandForwardDotWithHmdRightUnarmedEnter)
	unitRange("HandForwardDotWithHmdRightUnarmedExit", c.HandForwardDotWithHmdRightUnarmedExit)
	nonNegative("HmdToHandVerticalDistanceUnarmedEnter", c.HmdToHandVerticalDistanceUnarmedEnter)
	nonNegative("HmdToHandVerticalDistanceUnarmedExit", c.HmdToHandVerticalDistanceUnarmedExit)

	if c.BlockCooldownFrames != nil && *c.BlockCooldownFrames < 0 {
		out = append(out, Warning{Option: "BlockCooldownFrames", Message: fmt.Sprintf("must be non-negative, got %d", *c.BlockCooldownFrames)})
	}
	if c.SpeedWindowSize != nil && *c.SpeedWindowSize < 1 {
		out = append(out, Warning{Option: "SpeedWindowSize", Message: fmt.Sprintf("must be at least 1, got %d", *c.SpeedWindowSize)})
	}
	if c.BlockingFlagWindowSize != nil && (*c.BlockingFlagWindowSize < 1 || *c.BlockingFlagWindowSize%2 == 0) {
		out = append(out, Warning{Option: "BlockingFlagWindowSize", Message: fmt.Sprintf("must be a positive odd number, got %d", *c.BlockingFlagWindowSize)})
	}
	return out
}

// GetMaxSpeedEnter returns the MaxSpeedEnter value or the default.
func (c *BlockConfig) GetMaxSpeedEnter() float64 {
	if c.MaxSpeedEnter == nil {
		return 0.02
	}
	return *c.MaxSpeedEnter
}

// GetMaxSpeedExit returns the MaxSpeedExit value or the default.
func (c *BlockConfig) GetMaxSpeedExit() float64 {
	if c.MaxSpeedExit == nil {
		return 0.06
	}
	return *c.MaxSpeedExit
}

// GetHandForwardDotWithHmdDownEnter returns the HandForwardDotWithHmdDownEnter value or the default.
func (c *BlockConfig) GetHandForwardDotWithHmdDownEnter() float64 {
	if c.HandForwardDotWithHmdDownEnter == nil {
		return -0.5
	}
	return *c.HandForwardDotWithHmdDownEnter
}

// GetHandForwardDotWithHmdDownExit returns the HandForwardDotWithHmdDownExit value or the default.
func (c *BlockConfig) GetHandForwardDotWithHmdDownExit() float64 {
	if c.HandForwardDotWithHmdDownExit == nil {
		return -0.6
	}
	return *c.HandForwardDotWithHmdDownExit
}

// GetHandForwardDotWithHmdForwardEnter returns the HandForwardDotWithHmdForwardEnter value or the default.
func (c *BlockConfig) GetHandForwardDotWithHmdForwardEnter() float64 {
	if c.HandForwardDotWithHmdForwardEnter == nil {
		return 0.4
	}
	return *c.HandForwardDotWithHmdForwardEnter
}

// GetHandForwardDotWithHmdForwardExit returns the HandForwardDotWithHmdForwardExit value or the default.
func (c *BlockConfig) GetHandForwardDotWithHmdForwardExit() float64 {
	if c.HandForwardDotWithHmdForwardExit == nil {
		return 0.6
	}
	return *c.HandForwardDotWithHmdForwardExit
}

// GetHmdToHandVerticalDistanceEnter returns the HmdToHandVerticalDistanceEnter value or the default.
func (c *BlockConfig) GetHmdToHandVerticalDistanceEnter() float64 {
	if c.HmdToHandVerticalDistanceEnter == nil {
		return 0.35
	}
	return *c.HmdToHandVerticalDistanceEnter
}

// GetHmdToHandVerticalDistanceExit returns the HmdToHandVerticalDistanceExit value or the default.
func (c *BlockConfig) GetHmdToHandVerticalDistanceExit() float64 {
	if c.HmdToHandVerticalDistanceExit == nil {
		return 0.45
	}
	return *c.HmdToHandVerticalDistanceExit
}

// GetMaxSpeedUnarmedEnter returns the MaxSpeedUnarmedEnter value or the default.
func (c *BlockConfig) GetMaxSpeedUnarmedEnter() float64 {
	if c.MaxSpeedUnarmedEnter == nil {
		return 1.0
	}
	return *c.MaxSpeedUnarmedEnter
}

// GetMaxSpeedUnarmedExit returns the MaxSpeedUnarmedExit value or the default.
func (c *BlockConfig) GetMaxSpeedUnarmedExit() float64 {
	if c.MaxSpeedUnarmedExit == nil {
		return 1.5
	}
	return *c.MaxSpeedUnarmedExit
}

// GetHandForwardDotWithHmdRightUnarmedEnter returns the HandForwardDotWithHmdRightUnarmedEnter value or the default.
func (c *BlockConfig) GetHandForwardDotWithHmdRightUnarmedEnter() float64 {
	if c.HandForwardDotWithHmdRightUnarmedEnter == nil {
		return 0.5
	}
	return *c.HandForwardDotWithHmdRightUnarmedEnter
}

// GetHandForwardDotWithHmdRightUnarmedExit returns the HandForwardDotWithHmdRightUnarmedExit value or the default.
func (c *BlockConfig) GetHandForwardDotWithHmdRightUnarmedExit() float64 {
	if c.HandForwardDotWithHmdRightUnarmedExit == nil {
		return 0.3
	}
	return *c.HandForwardDotWithHmdRightUnarmedExit
}

// GetHmdToHandVerticalDistanceUnarmedEnter returns the HmdToHandVerticalDistanceUnarmedEnter value or the default.
func (c *BlockConfig) GetHmdToHandVerticalDistanceUnarmedEnter() float64 {
	if c.HmdToHandVerticalDistanceUnarmedEnter == nil {
		return 0.35
	}
	return *c.HmdToHandVerticalDistanceUnarmedEnter
}

// GetHmdToHandVerticalDistanceUnarmedExit returns the HmdToHandVerticalDistanceUnarmedExit value or the default.
func (c *BlockConfig) GetHmdToHandVerticalDistanceUnarmedExit() float64 {
	if c.HmdToHandVerticalDistanceUnarmedExit == nil {
		return 0.45
	}
	return *c.HmdToHandVerticalDistanceUnarmedExit
}

// GetEnableShield returns the EnableShield value or the default.
func (c *BlockConfig) GetEnableShield() bool {
	if c.EnableShield == nil {
		return true
	}
	return *c.EnableShield
}

// GetVanillaBlockingVelocityOverride returns the override passed through to
// the host, or -1 meaning "leave the engine value alone".
func (c *BlockConfig) GetVanillaBlockingVelocityOverride() float64 {
	if c.VanillaBlockingVelocityOverride == nil {
		return -1
	}
	return *c.VanillaBlockingVelocityOverride
}

// GetRenormalizeAxes returns the RenormalizeAxes value or the default.
func (c *BlockConfig) GetRenormalizeAxes() bool {
	if c.RenormalizeAxes == nil {
		return true
	}
	return *c.RenormalizeAxes
}

// GetBlockCooldownFrames returns the BlockCooldownFrames value or the default.
func (c *BlockConfig) GetBlockCooldownFrames() int {
	if c.BlockCooldownFrames == nil {
		return 30
	}
	return *c.BlockCooldownFrames
}

// GetSpeedWindowSize returns the SpeedWindowSize value or the default.
func (c *BlockConfig) GetSpeedWindowSize() int {
	if c.SpeedWindowSize == nil {
		return 2
	}
	return *c.SpeedWindowSize
}

// GetBlockingFlagWindowSize returns the BlockingFlagWindowSize value or the default.
func (c *BlockConfig) GetBlockingFlagWindowSize() int {
	if c.BlockingFlagWindowSize == nil {
		return 5
	}
	return *c.BlockingFlagWindowSize
}

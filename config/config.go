// Package config describes the machine a scoreboard program runs against:
// how many functional units of each kind exist, and how many cycles each
// kind takes to execute.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/scoresim/insts"
)

// DefaultNumIntRegs and DefaultNumFloatRegs are the register-file sizes used
// when a MachineConfig does not override them (spec.md §3, §9).
const (
	DefaultNumIntRegs   = 32
	DefaultNumFloatRegs = 32
)

// UnitConfig describes one functional-unit kind: how many physical slots of
// that kind exist, and the fixed latency (in cycles) of an instruction
// executing on one of them.
type UnitConfig struct {
	Kind   insts.UnitKind `json:"-"`
	Units  int            `json:"units"`
	Cycles int            `json:"cycles"`
}

// MachineConfig is the functional-unit inventory plus register-file sizing
// for one simulation run.
type MachineConfig struct {
	// Units holds one entry per declared functional-unit kind, keyed by
	// UnitKind. A kind with no entry has zero units.
	Units map[insts.UnitKind]UnitConfig `json:"-"`

	// NumIntRegs and NumFloatRegs size the two architectural register
	// namespaces (x0..xN-1, f0..fN-1).
	NumIntRegs   int `json:"num_int_regs"`
	NumFloatRegs int `json:"num_float_regs"`
}

// jsonConfig is the on-disk shape: Units keyed by the kind's string name,
// since Go map keys that aren't strings don't round-trip through
// encoding/json the way MachineConfig.Units is modeled in memory.
type jsonConfig struct {
	Units        map[string]UnitConfig `json:"units"`
	NumIntRegs   int                   `json:"num_int_regs"`
	NumFloatRegs int                   `json:"num_float_regs"`
}

// New returns an empty MachineConfig with default register-file sizes and no
// declared functional units.
func New() *MachineConfig {
	return &MachineConfig{
		Units:        map[insts.UnitKind]UnitConfig{},
		NumIntRegs:   DefaultNumIntRegs,
		NumFloatRegs: DefaultNumFloatRegs,
	}
}

// AddUnit declares (or overwrites) the unit count and latency for kind.
func (c *MachineConfig) AddUnit(kind insts.UnitKind, units, cycles int) {
	c.Units[kind] = UnitConfig{Kind: kind, Units: units, Cycles: cycles}
}

// UnitsOf returns the declared configuration for kind, and whether it was declared.
func (c *MachineConfig) UnitsOf(kind insts.UnitKind) (UnitConfig, bool) {
	u, ok := c.Units[kind]
	return u, ok
}

// InvalidMachineConfigError reports a structurally invalid machine description.
type InvalidMachineConfigError struct {
	Reason string
}

func (e *InvalidMachineConfigError) Error() string {
	return fmt.Sprintf("invalid machine config: %s", e.Reason)
}

// Validate checks every declared unit kind has at least one unit and a
// positive latency. It does not check that the program's required kinds are
// all declared — that check needs the program and is RequireKind, which the
// caller runs once per kind the program needs.
func (c *MachineConfig) Validate() error {
	for kind, u := range c.Units {
		if u.Units < 1 {
			return &InvalidMachineConfigError{
				Reason: fmt.Sprintf("%s: n_units must be >= 1, got %d", kind, u.Units),
			}
		}
		if u.Cycles < 1 {
			return &InvalidMachineConfigError{
				Reason: fmt.Sprintf("%s: n_cycles must be >= 1, got %d", kind, u.Cycles),
			}
		}
	}
	if c.NumIntRegs < 1 || c.NumFloatRegs < 1 {
		return &InvalidMachineConfigError{Reason: "register file sizes must be >= 1"}
	}
	return nil
}

// RequireKind fails with InvalidMachineConfigError if the program needs a
// unit kind the machine doesn't declare (spec.md §4.5).
func (c *MachineConfig) RequireKind(kind insts.UnitKind) error {
	if _, ok := c.Units[kind]; !ok {
		return &InvalidMachineConfigError{Reason: fmt.Sprintf("no %s unit declared", kind)}
	}
	return nil
}

// LoadConfig loads a MachineConfig from a JSON file, the saved-and-reused
// form of a machine description (supplementing the §6.1 text format; see
// SPEC_FULL.md §4.6).
func LoadConfig(path string) (*MachineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read machine config file: %w", err)
	}

	var raw jsonConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse machine config: %w", err)
	}

	cfg := New()
	if raw.NumIntRegs > 0 {
		cfg.NumIntRegs = raw.NumIntRegs
	}
	if raw.NumFloatRegs > 0 {
		cfg.NumFloatRegs = raw.NumFloatRegs
	}
	for name, u := range raw.Units {
		kind, ok := insts.ParseUnitKind(name)
		if !ok {
			return nil, fmt.Errorf("unknown functional unit kind %q in machine config", name)
		}
		cfg.AddUnit(kind, u.Units, u.Cycles)
	}

	return cfg, nil
}

// SaveConfig writes c to path as JSON, for later reuse via LoadConfig.
func (c *MachineConfig) SaveConfig(path string) error {
	raw := jsonConfig{
		Units:        map[string]UnitConfig{},
		NumIntRegs:   c.NumIntRegs,
		NumFloatRegs: c.NumFloatRegs,
	}
	for kind, u := range c.Units {
		raw.Units[kind.String()] = u
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize machine config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write machine config file: %w", err)
	}

	return nil
}

// Clone returns a deep copy of c.
func (c *MachineConfig) Clone() *MachineConfig {
	out := &MachineConfig{
		Units:        make(map[insts.UnitKind]UnitConfig, len(c.Units)),
		NumIntRegs:   c.NumIntRegs,
		NumFloatRegs: c.NumFloatRegs,
	}
	for k, v := range c.Units {
		out.Units[k] = v
	}
	return out
}

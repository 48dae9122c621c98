package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Plan PlanConfig `yaml:"plan"`
}

// PlanConfig holds the mission values that are not derived from the track.
// Pointers distinguish "absent" from an explicit zero where zero is valid.
type PlanConfig struct {
	DefaultAltM       *float64 `yaml:"default_alt_m"`
	AcceptanceRadiusM *float64 `yaml:"acceptance_radius_m"`
	CruiseSpeedMps    float64  `yaml:"cruise_speed_mps"`
	HoverSpeedMps     float64  `yaml:"hover_speed_mps"`
	FirmwareType      int      `yaml:"firmware_type"`
	VehicleType       int      `yaml:"vehicle_type"`
}

// AltitudeM returns the configured waypoint altitude, 0 when unset.
func (p PlanConfig) AltitudeM() float64 {
	if p.DefaultAltM == nil {
		return 0
	}
	return *p.DefaultAltM
}

// AcceptanceRadius returns the waypoint acceptance radius. An explicit 0
// leaves the choice to the autopilot.
func (p PlanConfig) AcceptanceRadius() float64 {
	if p.AcceptanceRadiusM == nil {
		return 2
	}
	return *p.AcceptanceRadiusM
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(b)
}

// Parse decodes YAML config bytes, rejecting unknown fields, and applies
// defaults and validation.
func Parse(b []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		var te *yaml.TypeError
		if errors.As(err, &te) && allUnknownFields(te) {
			return Config{}, fmt.Errorf("config contains unknown fields: %s", strings.Join(stripLines(te.Errors), "; "))
		}
		return Config{}, err
	}

	applyDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	p := &cfg.Plan
	if p.DefaultAltM == nil {
		v := 0.0
		p.DefaultAltM = &v
	}
	if p.AcceptanceRadiusM == nil {
		v := 2.0
		p.AcceptanceRadiusM = &v
	}
	// Zero speeds select the defaults.
	if p.CruiseSpeedMps == 0 {
		p.CruiseSpeedMps = 5
	}
	if p.HoverSpeedMps == 0 {
		p.HoverSpeedMps = 5
	}
	// ArduPilot / rover.
	if p.FirmwareType == 0 {
		p.FirmwareType = 4
	}
	if p.VehicleType == 0 {
		p.VehicleType = 4
	}
}

func (cfg Config) validate() error {
	p := cfg.Plan
	if !finite(p.AltitudeM()) {
		return fmt.Errorf("plan.default_alt_m must be a finite number")
	}
	if !finite(p.AcceptanceRadius()) || p.AcceptanceRadius() < 0 {
		return fmt.Errorf("plan.acceptance_radius_m must be >= 0")
	}
	if !finite(p.CruiseSpeedMps) || p.CruiseSpeedMps < 0 {
		return fmt.Errorf("plan.cruise_speed_mps must be >= 0")
	}
	if !finite(p.HoverSpeedMps) || p.HoverSpeedMps < 0 {
		return fmt.Errorf("plan.hover_speed_mps must be >= 0")
	}
	if p.FirmwareType < 0 {
		return fmt.Errorf("plan.firmware_type must be >= 0")
	}
	if p.VehicleType < 0 {
		return fmt.Errorf("plan.vehicle_type must be >= 0")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allUnknownFields(te *yaml.TypeError) bool {
	for _, e := range te.Errors {
		if !strings.Contains(e, "not found in type") {
			return false
		}
	}
	return len(te.Errors) > 0
}

// stripLines drops yaml.v3's "line N: " prefixes.
func stripLines(errs []string) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		if strings.HasPrefix(e, "line ") {
			if i := strings.Index(e, ": "); i >= 0 {
				e = e[i+2:]
			}
		}
		out = append(out, e)
	}
	return out
}

package config

import (
	"fmt"
	"math"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/reactorsim/internal/reactor"
)

const (
	DefaultDuration    = 60.0
	DefaultSampleEvery = 100
	DefaultDataDir     = ".reactorsim"
	DefaultBackend     = "file"
	EnvPrefix          = "REACTORSIM_"
)

type Config struct {
	Name        string          `yaml:"name"`
	Dt          float64         `yaml:"dt" env:"DT"`
	Speed       float64         `yaml:"speed" env:"SPEED"`
	Duration    float64         `yaml:"duration" env:"DURATION"`
	MaxTicks    int             `yaml:"max_ticks" env:"MAX_TICKS"`
	SampleEvery int             `yaml:"sample_every" env:"SAMPLE_EVERY"`
	Scenario    string          `yaml:"scenario" env:"SCENARIO"`
	Design      DesignConfig    `yaml:"design"`
	InitState   InitStateConfig `yaml:"init_state"`
	Failures    FailureConfig   `yaml:"failures"`
	Storage     StorageConfig   `yaml:"storage"`
}

type DesignConfig struct {
	RatedPower       float64 `yaml:"rated_power"`
	CoolantMass      float64 `yaml:"coolant_mass"`
	Volume           float64 `yaml:"volume"`
	FuelEnrichment   float64 `yaml:"fuel_enrichment"`
	ControlRods      int     `yaml:"control_rods"`
	VoidCoefficient  float64 `yaml:"void_coefficient"`
	PowerCoefficient float64 `yaml:"power_coefficient"`
	MaxPressure      float64 `yaml:"max_pressure"`
	MaxTemperature   float64 `yaml:"max_temperature"`
}

type InitStateConfig struct {
	Power                float64 `yaml:"power"`
	Temperature          float64 `yaml:"temperature"`
	Pressure             float64 `yaml:"pressure"`
	VaporFraction        float64 `yaml:"vapor_fraction"`
	FlowRate             float64 `yaml:"flow_rate"`
	RodInsertion         float64 `yaml:"rod_insertion"`
	CoolingEfficiency    float64 `yaml:"cooling_efficiency"`
	ContainmentIntegrity float64 `yaml:"containment_integrity"`
	Time                 float64 `yaml:"time"`
}

type FailureConfig struct {
	EmergencyCooling bool `yaml:"emergency_cooling" env:"FAIL_COOLING"`
	EmergencyPower   bool `yaml:"emergency_power" env:"FAIL_POWER"`
}

type StorageConfig struct {
	Backend string `yaml:"backend" env:"STORE"`
	DataDir string `yaml:"data_dir" env:"DATA_DIR"`
}

func DefaultConfig() *Config {
	s := reactor.NominalState()
	d := s.Design
	return &Config{
		Name:        "nominal",
		Dt:          reactor.DefaultDt,
		Speed:       reactor.DefaultSpeed,
		Duration:    DefaultDuration,
		SampleEvery: DefaultSampleEvery,
		Design: DesignConfig{
			RatedPower:       d.RatedPower,
			CoolantMass:      d.CoolantMass,
			Volume:           d.Volume,
			FuelEnrichment:   d.FuelEnrichment,
			ControlRods:      d.ControlRods,
			VoidCoefficient:  d.VoidCoefficient,
			PowerCoefficient: d.PowerCoefficient,
			MaxPressure:      d.MaxPressure,
			MaxTemperature:   d.MaxTemperature,
		},
		InitState: InitStateConfig{
			Power:                s.ThermalPower,
			Temperature:          s.Temperature,
			Pressure:             s.Pressure,
			VaporFraction:        s.VaporFraction,
			FlowRate:             s.FlowRate,
			RodInsertion:         s.Controls.RodInsertion,
			CoolingEfficiency:    s.CoolingEfficiency,
			ContainmentIntegrity: s.ContainmentIntegrity,
		},
		Failures: FailureConfig{
			EmergencyCooling: d.EmergencyCoolingEnabled,
			EmergencyPower:   d.EmergencyPowerEnabled,
		},
		Storage: StorageConfig{
			Backend: DefaultBackend,
			DataDir: DefaultDataDir,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads the YAML file at path on top of base. Keys missing from
// the file keep the value in base.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides cfg with REACTORSIM_* environment variables. Unset
// variables leave the current values alone.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch {
	case !(c.Dt > 0) || math.IsInf(c.Dt, 0):
		return fmt.Errorf("dt must be positive, got %v", c.Dt)
	case !within(c.Speed, reactor.MinSpeed, reactor.MaxSpeed):
		return fmt.Errorf("speed must be within [%.1f,%.1f], got %v", reactor.MinSpeed, reactor.MaxSpeed, c.Speed)
	case math.IsNaN(c.Duration):
		return fmt.Errorf("duration is not a number")
	case c.Duration <= 0 && c.MaxTicks <= 0:
		return fmt.Errorf("duration or max_ticks must be positive")
	case c.SampleEvery < 1:
		return fmt.Errorf("sample_every must be at least 1, got %d", c.SampleEvery)
	case !within(c.InitState.RodInsertion, 0, 1):
		return fmt.Errorf("rod_insertion must be within [0,1], got %v", c.InitState.RodInsertion)
	case !within(c.InitState.VaporFraction, 0, 1):
		return fmt.Errorf("vapor_fraction must be within [0,1], got %v", c.InitState.VaporFraction)
	case !within(c.InitState.CoolingEfficiency, 0, 1):
		return fmt.Errorf("cooling_efficiency must be within [0,1], got %v", c.InitState.CoolingEfficiency)
	case !(c.InitState.ContainmentIntegrity > 0 && c.InitState.ContainmentIntegrity <= 100):
		return fmt.Errorf("containment_integrity must be within (0,100], got %v", c.InitState.ContainmentIntegrity)
	case !(c.InitState.Power > 0):
		return fmt.Errorf("power must be positive, got %v", c.InitState.Power)
	case !(c.Design.RatedPower > 0 && c.Design.CoolantMass > 0 && c.Design.Volume > 0):
		return fmt.Errorf("rated_power, coolant_mass and volume must be positive")
	}
	return nil
}

// within is false for NaN.
func within(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// NewState builds the initial reactor state described by c.
func (c *Config) NewState() reactor.State {
	s := reactor.NominalState()
	s.Design = reactor.Design{
		RatedPower:              c.Design.RatedPower,
		CoolantMass:             c.Design.CoolantMass,
		Volume:                  c.Design.Volume,
		FuelEnrichment:          c.Design.FuelEnrichment,
		ControlRods:             c.Design.ControlRods,
		VoidCoefficient:         c.Design.VoidCoefficient,
		PowerCoefficient:        c.Design.PowerCoefficient,
		MaxPressure:             c.Design.MaxPressure,
		MaxTemperature:          c.Design.MaxTemperature,
		EmergencyCoolingEnabled: c.Failures.EmergencyCooling,
		EmergencyPowerEnabled:   c.Failures.EmergencyPower,
	}
	s.Controls.RodInsertion = c.InitState.RodInsertion
	s.Controls.Speed = c.Speed
	s.ThermalPower = c.InitState.Power
	s.Temperature = c.InitState.Temperature
	s.Pressure = c.InitState.Pressure
	s.VaporFraction = c.InitState.VaporFraction
	s.FlowRate = c.InitState.FlowRate
	s.CoolingEfficiency = c.InitState.CoolingEfficiency
	s.ContainmentIntegrity = c.InitState.ContainmentIntegrity
	s.Time = c.InitState.Time
	s.Dt = c.Dt
	return s
}

// Package config maps YAML run files onto the component configurations.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gwecho/internal/field"
	"github.com/san-kum/gwecho/internal/fractional"
	"github.com/san-kum/gwecho/internal/projection"
	"github.com/san-kum/gwecho/internal/sources"
)

type Config struct {
	Grid     GridConfig     `yaml:"grid"`
	Solver   SolverConfig   `yaml:"solver"`
	Merger   MergerConfig   `yaml:"merger"`
	Echoes   EchoConfig     `yaml:"echoes"`
	Observer ObserverConfig `yaml:"observer"`
	Run      RunConfig      `yaml:"run"`
}

type GridConfig struct {
	NX       int     `yaml:"nx"`
	NY       int     `yaml:"ny"`
	NZ       int     `yaml:"nz"`
	DX       float64 `yaml:"dx"`
	DY       float64 `yaml:"dy"`
	DZ       float64 `yaml:"dz"`
	Lambda   float64 `yaml:"lambda"`
	Kappa    float64 `yaml:"kappa"`
	AlphaMin float64 `yaml:"alpha_min"`
	AlphaMax float64 `yaml:"alpha_max"`
	Dt       float64 `yaml:"dt"`
}

type SolverConfig struct {
	TMax          float64 `yaml:"t_max"`
	Rank          int     `yaml:"rank"`
	CacheCapacity int     `yaml:"cache_capacity"`
}

type Vec3Config struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type MergerConfig struct {
	Mass1             float64    `yaml:"mass1"`
	Mass2             float64    `yaml:"mass2"`
	InitialSeparation float64    `yaml:"initial_separation"`
	InitialPhase      float64    `yaml:"initial_phase"`
	Center            Vec3Config `yaml:"center"`
	GaussianWidth     float64    `yaml:"gaussian_width"`
	SourceAmplitude   float64    `yaml:"source_amplitude"`
	EnableInspiral    bool       `yaml:"enable_inspiral"`
	MergerThreshold   float64    `yaml:"merger_threshold"`
}

type EchoConfig struct {
	// Anchor pins the echo schedule to MergerTime at startup instead of
	// waiting for a detected merger.
	Anchor               bool    `yaml:"anchor"`
	MergerTime           float64 `yaml:"merger_time"`
	FundamentalTimescale float64 `yaml:"fundamental_timescale"`
	MaxPrimes            int     `yaml:"max_primes"`
	PrimeStartIndex      int     `yaml:"prime_start_index"`
	MaxPrimeValue        int     `yaml:"max_prime_value"`
	AmplitudeBase        float64 `yaml:"amplitude_base"`
	AmplitudeDecay       float64 `yaml:"amplitude_decay"`
	FrequencyShift       float64 `yaml:"frequency_shift"`
	GaussianWidth        float64 `yaml:"gaussian_width"`
	AutoDetectMerger     bool    `yaml:"auto_detect_merger"`
	EnergyThreshold      float64 `yaml:"energy_threshold"`
}

type ObserverConfig struct {
	Position Vec3Config `yaml:"position"`
	Normal   Vec3Config `yaml:"normal"`
	Distance float64    `yaml:"distance"`
}

type RunConfig struct {
	Steps       int    `yaml:"steps"`
	RecordEvery int    `yaml:"record_every"`
	ExportField string `yaml:"export_field"`
	ExportEchos string `yaml:"export_echoes"`
}

// DefaultConfig mirrors the component defaults.
func DefaultConfig() *Config {
	fc := field.DefaultConfig()
	sc := fractional.DefaultConfig()
	mc := sources.DefaultMergerConfig()
	ec := sources.DefaultEchoConfig()
	pc := projection.DefaultConfig()

	return &Config{
		Grid: GridConfig{
			NX: fc.NX, NY: fc.NY, NZ: fc.NZ,
			DX: fc.DX, DY: fc.DY, DZ: fc.DZ,
			Lambda: fc.Lambda, Kappa: fc.Kappa,
			AlphaMin: fc.AlphaMin, AlphaMax: fc.AlphaMax,
			Dt: fc.Dt,
		},
		Solver: SolverConfig{
			TMax:          sc.TMax,
			Rank:          sc.Rank,
			CacheCapacity: sc.CacheCapacity,
		},
		Merger: MergerConfig{
			Mass1:             mc.Mass1,
			Mass2:             mc.Mass2,
			InitialSeparation: mc.InitialSeparation,
			InitialPhase:      mc.InitialPhase,
			GaussianWidth:     mc.GaussianWidth,
			SourceAmplitude:   mc.SourceAmplitude,
			EnableInspiral:    mc.EnableInspiral,
			MergerThreshold:   mc.MergerThreshold,
		},
		Echoes: EchoConfig{
			MergerTime:           ec.MergerTime,
			FundamentalTimescale: ec.FundamentalTimescale,
			MaxPrimes:            ec.MaxPrimes,
			PrimeStartIndex:      ec.PrimeStartIndex,
			MaxPrimeValue:        ec.MaxPrimeValue,
			AmplitudeBase:        ec.AmplitudeBase,
			AmplitudeDecay:       ec.AmplitudeDecay,
			FrequencyShift:       ec.FrequencyShift,
			GaussianWidth:        ec.GaussianWidth,
			AutoDetectMerger:     ec.AutoDetectMerger,
			EnergyThreshold:      ec.EnergyThreshold,
		},
		Observer: ObserverConfig{
			Position: Vec3Config{X: pc.ObserverPosition.X, Y: pc.ObserverPosition.Y, Z: pc.ObserverPosition.Z},
			Normal:   Vec3Config{X: pc.DetectorNormal.X, Y: pc.DetectorNormal.Y, Z: pc.DetectorNormal.Z},
			Distance: pc.DetectorDistance,
		},
		Run: RunConfig{
			Steps:       1000,
			RecordEvery: 1,
		},
	}
}

// Load reads a YAML file over the defaults, so partial files work.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (v Vec3Config) vec() field.Vec3 { return field.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

// FieldConfig converts the grid section.
func (c *Config) FieldConfig() field.Config {
	return field.Config{
		NX: c.Grid.NX, NY: c.Grid.NY, NZ: c.Grid.NZ,
		DX: c.Grid.DX, DY: c.Grid.DY, DZ: c.Grid.DZ,
		Lambda: c.Grid.Lambda, Kappa: c.Grid.Kappa,
		AlphaMin: c.Grid.AlphaMin, AlphaMax: c.Grid.AlphaMax,
		Dt: c.Grid.Dt,
	}
}

// SolverConfig converts the solver section. The alpha range and timestep
// come from the grid so the two always agree.
func (c *Config) SolverConfig() fractional.Config {
	return fractional.Config{
		TMax:          c.Solver.TMax,
		Rank:          c.Solver.Rank,
		Dt:            c.Grid.Dt,
		AlphaMin:      c.Grid.AlphaMin,
		AlphaMax:      c.Grid.AlphaMax,
		CacheCapacity: c.Solver.CacheCapacity,
	}
}

// MergerConfig converts the merger section.
func (c *Config) MergerConfig() sources.MergerConfig {
	return sources.MergerConfig{
		Mass1:             c.Merger.Mass1,
		Mass2:             c.Merger.Mass2,
		InitialSeparation: c.Merger.InitialSeparation,
		InitialPhase:      c.Merger.InitialPhase,
		Center:            c.Merger.Center.vec(),
		GaussianWidth:     c.Merger.GaussianWidth,
		SourceAmplitude:   c.Merger.SourceAmplitude,
		EnableInspiral:    c.Merger.EnableInspiral,
		MergerThreshold:   c.Merger.MergerThreshold,
	}
}

// EchoConfig converts the echoes section.
func (c *Config) EchoConfig() sources.EchoConfig {
	return sources.EchoConfig{
		MergerTime:           c.Echoes.MergerTime,
		FundamentalTimescale: c.Echoes.FundamentalTimescale,
		MaxPrimes:            c.Echoes.MaxPrimes,
		PrimeStartIndex:      c.Echoes.PrimeStartIndex,
		MaxPrimeValue:        c.Echoes.MaxPrimeValue,
		AmplitudeBase:        c.Echoes.AmplitudeBase,
		AmplitudeDecay:       c.Echoes.AmplitudeDecay,
		FrequencyShift:       c.Echoes.FrequencyShift,
		GaussianWidth:        c.Echoes.GaussianWidth,
		AutoDetectMerger:     c.Echoes.AutoDetectMerger,
		EnergyThreshold:      c.Echoes.EnergyThreshold,
	}
}

// ProjectionConfig converts the observer section.
func (c *Config) ProjectionConfig() projection.Config {
	return projection.Config{
		ObserverPosition: c.Observer.Position.vec(),
		DetectorNormal:   c.Observer.Normal.vec(),
		DetectorDistance: c.Observer.Distance,
		Gauge:            projection.GaugeTransverseTraceless,
	}
}

package config

// Presets are ready-made scenarios keyed by name. Each starts from the
// defaults and overrides what the scenario needs.
var Presets = map[string]func() *Config{
	// Small grid, short run, for smoke tests and demos.
	"quick": func() *Config {
		cfg := DefaultConfig()
		cfg.Grid.NX, cfg.Grid.NY, cfg.Grid.NZ = 16, 16, 16
		cfg.Run.Steps = 200
		return cfg
	},

	// Fixed circular orbit, no inspiral, no echoes expected.
	"circular": func() *Config {
		cfg := DefaultConfig()
		cfg.Merger.EnableInspiral = false
		cfg.Echoes.AutoDetectMerger = false
		return cfg
	},

	// Radiating inspiral driving toward merger.
	"inspiral": func() *Config {
		cfg := DefaultConfig()
		cfg.Merger.EnableInspiral = true
		cfg.Run.Steps = 5000
		return cfg
	},

	// Post-merger echo train anchored manually at t = 0.
	"echo-train": func() *Config {
		cfg := DefaultConfig()
		cfg.Echoes.AutoDetectMerger = false
		cfg.Echoes.Anchor = true
		cfg.Echoes.MergerTime = 0
		cfg.Echoes.MaxPrimes = 20
		cfg.Run.Steps = 2000
		cfg.Run.RecordEvery = 5
		return cfg
	},
}

// GetPreset returns a fresh copy of a named preset, or nil if unknown.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

// ListPresets returns the available preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}

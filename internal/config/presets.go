package config

var Presets = map[string]*Config{
	"quick": {
		Step: 0.01, Duration: 5.0,
		Checker: DefaultChecker, Engine: DefaultEngine,
		Gravity: [3]float64{0, 0, DefaultGravityZ},
	},
	"accurate": {
		Step: 0.0005, Duration: 10.0,
		Checker: DefaultChecker, Engine: DefaultEngine,
		Gravity: [3]float64{0, 0, DefaultGravityZ},
	},
	"kinematic": {
		Step: 0.001, Duration: 10.0,
		Checker: DefaultChecker, Engine: "nullphysics",
	},
	"realtime": {
		Step: 0.001, Duration: 30.0, RealTime: true,
		Checker: DefaultChecker, Engine: DefaultEngine,
		Gravity:    [3]float64{0, 0, DefaultGravityZ},
		ViewerAddr: DefaultViewer,
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}

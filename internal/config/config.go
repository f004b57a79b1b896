// Package config handles renderer configuration loading and management.
package config

// Config holds all engine settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Data     DataConfig     `yaml:"data"`
	Bake     BakeConfig     `yaml:"bake"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DataConfig holds the paths to the map, texture sources and texture cache.
type DataConfig struct {
	MapFile      string `yaml:"map_file"`
	TextureDir   string `yaml:"texture_dir"`
	CacheFile    string `yaml:"cache_file"`
	ForceRebuild bool   `yaml:"force_rebuild"`
}

// GraphicsConfig holds display and rendering settings. HFov/VFov are the
// dimensionless field-of-view scale factors the portal renderer multiplies
// by screen width/height respectively (§4.7 step 4); the defaults match the
// original engine's fixed 0.73/0.2 constants.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`

	HFov float64 `yaml:"hfov"`
	VFov float64 `yaml:"vfov"`
}

// BakeConfig holds lightmap baker tuning parameters (§4.6).
type BakeConfig struct {
	MaxRounds      int     `yaml:"max_rounds"`
	ConvergenceEps float64 `yaml:"convergence_eps"`
	DirSamples     int     `yaml:"dir_samples"`
	AreaSamples    int     `yaml:"area_samples"`
	AreaRadius     float64 `yaml:"area_radius"`
	FadeDistance   float64 `yaml:"fade_distance"`
	Seed           int64   `yaml:"seed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      640,
			Height:     480,
			Fullscreen: false,
			VSync:      true,
			HFov:       0.73,
			VFov:       0.2,
		},
		Data: DataConfig{
			MapFile:    "map-clear.txt",
			TextureDir: "textures",
			CacheFile:  "textures.bin",
		},
		Bake: BakeConfig{
			MaxRounds:      100,
			ConvergenceEps: 1e-6,
			DirSamples:     64,
			AreaSamples:    16,
			AreaRadius:     8,
			FadeDistance:   40,
			Seed:           1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

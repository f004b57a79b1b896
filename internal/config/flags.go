package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagMap        = flag.String("map", "", "Path to the map file")
	flagTextureDir = flag.String("textures", "", "Path to the texture source directory")
	flagCache      = flag.String("cache", "", "Path to the texture cache file")
	flagRebuild    = flag.Bool("rebuild", false, "Force lightmap rebuild even if the cache is valid")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagSeed       = flag.Int64("seed", 0, "Lightmap baker random seed")
	flagSaveConfig = flag.String("save-config", "", "Write the merged effective config to this path and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveConfigPath returns the path the merged effective config should be
// written to via --save-config, or "" if the flag was not given.
func SaveConfigPath() string {
	return *flagSaveConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagMap != "" {
		cfg.Data.MapFile = *flagMap
	}
	if *flagTextureDir != "" {
		cfg.Data.TextureDir = *flagTextureDir
	}
	if *flagCache != "" {
		cfg.Data.CacheFile = *flagCache
	}
	if *flagRebuild {
		cfg.Data.ForceRebuild = true
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagSeed != 0 {
		cfg.Bake.Seed = *flagSeed
	}
}

// Command sectorview is the renderer's entry point: load config, load and
// verify the map, warm or cold-start the texture store, bake lightmaps if
// needed, then run the frame loop. Grounded on the teacher's
// cmd/client-unified/main.go bootstrap sequence (flags, config, logger,
// then a fail-fast chain of setup steps each logged and fatal on error).
package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/sectorview/internal/bake"
	"github.com/Faultbox/sectorview/internal/config"
	"github.com/Faultbox/sectorview/internal/frame"
	"github.com/Faultbox/sectorview/internal/logger"
	"github.com/Faultbox/sectorview/internal/mapfile"
	"github.com/Faultbox/sectorview/internal/texture"
	"github.com/Faultbox/sectorview/internal/world"
)

// Exit codes (§6): 0 normal, 1 fatal init error, 2 map-file structural
// error.
const (
	exitOK        = 0
	exitInitError = 1
	exitMapError  = 2
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(exitInitError)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(exitInitError)
	}
	defer logger.Sync()

	logger.Info("=== sectorview ===")

	if path := config.SaveConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			logger.Error("failed to save config", zap.Error(err))
			os.Exit(exitInitError)
		}
		logger.Info("saved effective config", zap.String("path", path))
		return
	}

	w, err := loadWorld(cfg)
	if err != nil {
		if errors.Is(err, mapfile.ErrMapNotFound) {
			logger.Error("map file not found", zap.Error(err))
			os.Exit(exitInitError)
		}
		logger.Error("map file structural error", zap.Error(err))
		os.Exit(exitMapError)
	}

	store, err := loadTextures(w, cfg)
	if err != nil {
		logger.Error("texture store setup failed", zap.Error(err))
		os.Exit(exitInitError)
	}

	loop, err := frame.New(w, store, cfg.Graphics)
	if err != nil {
		logger.Error("display init failed", zap.Error(err))
		os.Exit(exitInitError)
	}
	defer loop.Close()

	// Returning normally (rather than os.Exit(exitOK)) lets the deferred
	// Close/Sync calls above run before the process exits 0.
	loop.Run()
}

// loadWorld loads the map file and runs it through the verifier, which may
// repair asymmetric neighbors and split concave sectors (§4.3).
func loadWorld(cfg *config.Config) (*world.World, error) {
	w, err := mapfile.Load(cfg.Data.MapFile)
	if err != nil {
		return nil, err
	}
	if err := world.Verify(w); err != nil {
		return nil, err
	}
	world.AssignTextureHandles(w)
	return w, nil
}

// loadTextures builds the texture store for w and fills it either from the
// binary cache (warm start) or from PPM source files plus a fresh bake
// (cold start), per §4.4/§7. ForceRebuild or an invalid/mismatched cache
// always triggers a cold start.
func loadTextures(w *world.World, cfg *config.Config) (*texture.Store, error) {
	store := texture.NewStore(w.EdgeCounts())

	if !cfg.Data.ForceRebuild {
		ok, err := store.LoadCacheFile(cfg.Data.CacheFile)
		if err != nil {
			return nil, err
		}
		if ok {
			logger.Info("texture cache loaded", zap.String("path", cfg.Data.CacheFile))
			return store, nil
		}
	}

	logger.Info("cold-starting textures and baking lightmaps")

	paths := texture.BuildSourcePaths(cfg.Data.TextureDir, store.Handles())
	for _, warn := range store.ColdLoad(paths, texture.DecodePPM) {
		logger.Warn("texture source missing or invalid", zap.Error(warn))
	}

	bakeOpts := bake.Options{
		MaxRounds:      cfg.Bake.MaxRounds,
		ConvergenceEps: cfg.Bake.ConvergenceEps,
		DirSamples:     cfg.Bake.DirSamples,
		AreaSamples:    cfg.Bake.AreaSamples,
		AreaRadius:     cfg.Bake.AreaRadius,
		FadeDistance:   cfg.Bake.FadeDistance,
		Seed:           cfg.Bake.Seed,
		Workers:        bake.DefaultOptions().Workers,
	}
	bake.Run(w, store, bakeOpts)

	if err := store.SaveCacheFile(cfg.Data.CacheFile); err != nil {
		logger.Warn("failed to save texture cache", zap.Error(err))
	}

	return store, nil
}

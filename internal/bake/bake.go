// Package bake implements the raytraced lightmap baker (B, §4.6): round 1
// is direct diffuse light gathered from area-light sub-samples; rounds 2+
// accumulate radiosity bounces by gathering from random hemisphere
// directions. The texel loop is embarrassingly parallel and is farmed out
// to a worker pool per texel row, synchronized once at each round's
// boundary.
package bake

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/sectorview/internal/logger"
	"github.com/Faultbox/sectorview/internal/raycast"
	"github.com/Faultbox/sectorview/internal/texture"
	"github.com/Faultbox/sectorview/internal/world"
)

// Options tunes the baker, mirroring internal/config's BakeConfig.
type Options struct {
	MaxRounds      int
	ConvergenceEps float64
	DirSamples     int
	AreaSamples    int
	AreaRadius     float64
	FadeDistance   float64
	Seed           int64
	Workers        int
}

// DefaultOptions returns the tuning used by the original engine, absent an
// explicit config (§4.6 "MAX_ROUNDS default 100").
func DefaultOptions() Options {
	return Options{
		MaxRounds:      100,
		ConvergenceEps: 1e-6,
		DirSamples:     64,
		AreaSamples:    16,
		AreaRadius:     8,
		FadeDistance:   40,
		Seed:           1,
		Workers:        4,
	}
}

// surfaceRef names one surface to bake: its handle plus enough sector
// context to reconstruct world-space points and the tangent basis.
type surfaceRef struct {
	handle texture.Handle
	sector int
	edge   int // meaningful for Upper/Lower
}

// Run bakes every surface's lightmap in place, iterating rounds until the
// per-round delta drops below opts.ConvergenceEps or opts.MaxRounds is
// reached (the bounded `round<=maxrounds` form per §9 — one historic copy
// of the source loops forever; that bug is not reproduced).
func Run(w *world.World, store *texture.Store, opts Options) {
	surfaces := collectSurfaces(w)
	rng := newRNG(opts.Seed)

	for round := 1; round <= opts.MaxRounds; round++ {
		dirs := sampleSphereDirections(rng, opts.DirSamples)
		areaOffsets := sampleAreaOffsets(rng, opts.AreaSamples, opts.AreaRadius)

		if round == 1 {
			bakeDirect(w, store, surfaces, areaOffsets, opts)
			snapshotDiffuseOnly(store, surfaces)
		} else {
			bakeRadiosity(w, store, surfaces, dirs, opts)
		}

		delta := convergenceDelta(store, surfaces)
		logger.Debug("bake: round complete", zap.Int("round", round), zap.Float64("delta", delta))

		snapshotDiffuseOnly(store, surfaces)

		if round > 1 && delta < opts.ConvergenceEps {
			logger.Info("bake: converged", zap.Int("round", round), zap.Float64("delta", delta))
			break
		}
	}
}

func collectSurfaces(w *world.World) []surfaceRef {
	var out []surfaceRef
	for i, s := range w.Sectors {
		out = append(out, surfaceRef{handle: s.FloorTex, sector: i})
		out = append(out, surfaceRef{handle: s.CeilTex, sector: i})
		for e := 0; e < s.NumEdges(); e++ {
			out = append(out, surfaceRef{handle: s.UpperTex[e], sector: i, edge: e})
			out = append(out, surfaceRef{handle: s.LowerTex[e], sector: i, edge: e})
		}
	}
	return out
}

// forEachTexelRow farms texel rows of every surface out to a worker pool,
// joining before returning (§5: "must synchronize once at end-of-round").
func forEachTexelRow(surfaces []surfaceRef, workers int, fn func(sf surfaceRef, row int)) {
	if workers < 1 {
		workers = 1
	}

	type job struct {
		sf  surfaceRef
		row int
	}
	jobs := make(chan job, workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				fn(j.sf, j.row)
			}
		}()
	}

	for _, sf := range surfaces {
		for row := 0; row < texture.PlaneSize; row++ {
			jobs <- job{sf: sf, row: row}
		}
	}
	close(jobs)
	wg.Wait()
}

func bakeDirect(w *world.World, store *texture.Store, surfaces []surfaceRef, areaOffsets [][3]float64, opts Options) {
	forEachTexelRow(surfaces, opts.Workers, func(sf surfaceRef, row int) {
		set, err := store.Get(sf.handle)
		if err != nil {
			return
		}
		for col := 0; col < texture.PlaneSize; col++ {
			point, normal, _, _, ok := surfacePoint(w, sf, row, col, set)
			if !ok {
				continue
			}

			var acc [3]float64
			for _, lt := range w.Lights {
				for _, off := range areaOffsets {
					samplePos := [3]float64{
						lt.Position[0] + off[0],
						lt.Position[1] + off[1],
						lt.Position[2] + off[2],
					}
					toward := sub(samplePos, point)
					dist := length(toward)
					if dist == 0 {
						continue
					}
					dirN := scale(toward, 1/dist)

					pushed := add(point, scale(normal, 1e-5))

					out := raycast.Trace(w, store, pushed, sf.sector, samplePos, lt.Sector)
					if out.Kind != raycast.Clear {
						continue
					}

					cosTerm := dot(normal, dirN)
					if cosTerm <= 0 {
						continue
					}
					falloff := 1 / (1 + (dist/opts.FadeDistance)*(dist/opts.FadeDistance))
					weight := cosTerm * falloff / float64(len(areaOffsets))

					acc[0] += lt.RGB[0] * weight
					acc[1] += lt.RGB[1] * weight
					acc[2] += lt.RGB[2] * weight
				}
			}

			writeTexel(set.Lightmap, row, col, acc)
		}
	})
}

func bakeRadiosity(w *world.World, store *texture.Store, surfaces []surfaceRef, dirs [][3]float64, opts Options) {
	forEachTexelRow(surfaces, opts.Workers, func(sf surfaceRef, row int) {
		set, err := store.Get(sf.handle)
		if err != nil {
			return
		}
		for col := 0; col < texture.PlaneSize; col++ {
			point, normal, _, _, ok := surfacePoint(w, sf, row, col, set)
			if !ok {
				continue
			}

			base := readTexel(set.LightmapDiffuseOnly, row, col)
			acc := base

			pNormal := normal

			for _, d := range dirs {
				dir := d
				if dot(dir, pNormal) < 0 {
					dir = scale(dir, -1)
				}

				target := add(point, scale(dir, 512))
				pushed := add(point, scale(normal, 1e-5))

				out := raycast.Trace(w, store, pushed, sf.sector, target, -1)
				if out.Kind != raycast.Hit {
					continue
				}

				cosTerm := math.Abs(dot(pNormal, out.Normal))
				dist := length(sub(out.Point, point))
				falloff := 1 / (1 + (dist/opts.FadeDistance)*(dist/opts.FadeDistance))
				weight := cosTerm * falloff / float64(len(dirs))

				acc[0] += out.Sample[0] * weight
				acc[1] += out.Sample[1] * weight
				acc[2] += out.Sample[2] * weight
			}

			writeTexel(set.Lightmap, row, col, acc)
		}
	})
}

func snapshotDiffuseOnly(store *texture.Store, surfaces []surfaceRef) {
	for _, sf := range surfaces {
		set, err := store.Get(sf.handle)
		if err != nil {
			continue
		}
		copy(set.LightmapDiffuseOnly, set.Lightmap)
	}
}

func convergenceDelta(store *texture.Store, surfaces []surfaceRef) float64 {
	var total float64
	var texels int
	for _, sf := range surfaces {
		set, err := store.Get(sf.handle)
		if err != nil {
			continue
		}
		for i := 0; i < len(set.Lightmap); i += 3 {
			for c := 0; c < 3; c++ {
				total += math.Abs(float64(set.Lightmap[i+c]) - float64(set.LightmapDiffuseOnly[i+c]))
			}
			texels++
		}
	}
	if texels == 0 {
		return 0
	}
	return total / float64(texels)
}

func writeTexel(plane []byte, row, col int, c [3]float64) {
	clamped := texture.DesaturateClamp(c)
	off := (row*texture.PlaneSize + col) * 3
	plane[off] = texture.ClampByte(clamped[0])
	plane[off+1] = texture.ClampByte(clamped[1])
	plane[off+2] = texture.ClampByte(clamped[2])
}

func readTexel(plane []byte, row, col int) [3]float64 {
	off := (row*texture.PlaneSize + col) * 3
	return [3]float64{float64(plane[off]), float64(plane[off+1]), float64(plane[off+2])}
}

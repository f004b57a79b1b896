package bake

import (
	"math"
	"math/rand"
)

// newRNG returns a deterministic generator seeded from opts.Seed, so two
// bakes of the same map with the same seed produce byte-identical
// lightmaps (§8 "deterministic bake given seed").
func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// sampleSphereDirections generates n unit vectors uniformly distributed
// over the sphere, by inverse transform from two uniforms on [0,1) (§4.6).
func sampleSphereDirections(rng *rand.Rand, n int) [][3]float64 {
	out := make([][3]float64, n)
	for i := 0; i < n; i++ {
		u1 := rng.Float64()
		u2 := rng.Float64()
		z := 1 - 2*u1
		r := math.Sqrt(math.Max(0, 1-z*z))
		phi := 2 * math.Pi * u2
		out[i] = [3]float64{r * math.Cos(phi), z, r * math.Sin(phi)}
	}
	return out
}

// sampleAreaOffsets generates n vectors lying on a sphere of radius r
// around the origin, for jittering an area light's position into a
// spherical shell of sub-sample points. Rejection-sampled from the enclosing cube to
// avoid a zero-length direction, then projected onto the sphere of
// radius r (§4.6).
func sampleAreaOffsets(rng *rand.Rand, n int, radius float64) [][3]float64 {
	out := make([][3]float64, n)
	for i := 0; i < n; i++ {
		var v [3]float64
		var l float64
		for {
			v = [3]float64{
				(rng.Float64()*2 - 1) * radius,
				(rng.Float64()*2 - 1) * radius,
				(rng.Float64()*2 - 1) * radius,
			}
			l = length(v)
			if l > 0 && l <= radius {
				break
			}
		}
		out[i] = scale(v, radius/l)
	}
	return out
}

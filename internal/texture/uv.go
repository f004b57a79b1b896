package texture

import "math"

// FloorCeilUV is the floor/ceiling diffuse/normal-map texture-coordinate
// formula: (x*256, z*256) mod 1024, tiling across world space (§4.5). This
// is distinct from a sector's lightmap coordinate, which is sector-local
// (see world.Sector.LightmapUV).
func FloorCeilUV(x, z float64) (u, v float64) {
	u = math.Mod(x*256, PlaneSize)
	if u < 0 {
		u += PlaneSize
	}
	v = math.Mod(z*256, PlaneSize)
	if v < 0 {
		v += PlaneSize
	}
	return u, v
}

// ClampTexel truncates and clamps a texel coordinate into [0, PlaneSize).
func ClampTexel(f float64) int {
	i := int(f)
	if i < 0 {
		i = 0
	}
	if i >= PlaneSize {
		i = PlaneSize - 1
	}
	return i
}

// SampleLit reads the diffuse texel at (u,v) and the lightmap texel at
// (lu,lv) — a distinct coordinate for floor/ceiling, identical to (u,v) for
// walls (§4.5) — and combines them via ApplyLight.
func SampleLit(set *TextureSet, u, v, lu, lv float64) [3]float64 {
	off := (ClampTexel(v)*PlaneSize + ClampTexel(u)) * 3
	litOff := (ClampTexel(lv)*PlaneSize + ClampTexel(lu)) * 3

	tex := [3]float64{float64(set.Diffuse[off]), float64(set.Diffuse[off+1]), float64(set.Diffuse[off+2])}
	lit := [3]float64{float64(set.Lightmap[litOff]), float64(set.Lightmap[litOff+1]), float64(set.Lightmap[litOff+2])}

	return ApplyLight(tex, lit)
}

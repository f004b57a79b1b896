package bake

import (
	"math"

	"github.com/Faultbox/sectorview/internal/texture"
	"github.com/Faultbox/sectorview/internal/world"
)

// surfacePoint computes the world-space point a given (row,col) texel of
// surface sf corresponds to, plus the perturbed normal (the surface's
// geometric normal tilted by the normal-map texel's decoded tangent-space
// offset, §4.6/§4.5). ok is false for a degenerate surface (zero-length
// edge) that should be skipped.
func surfacePoint(w *world.World, sf surfaceRef, row, col int, set *texture.TextureSet) (point, normal [3]float64, tangent, bitangent [3]float64, ok bool) {
	sec := w.Sectors[sf.sector]
	const n = texture.PlaneSize - 1

	switch sf.handle.Kind {
	case texture.Floor, texture.Ceiling:
		minX, minZ, maxX, maxZ := sec.Bounds()
		x := minX + (float64(col)/n)*(maxX-minX)
		z := minZ + (float64(row)/n)*(maxZ-minZ)
		height := sec.Floor
		geomNormal := [3]float64{0, 1, 0}
		if sf.handle.Kind == texture.Ceiling {
			height = sec.Ceil
			geomNormal = [3]float64{0, -1, 0}
		}
		tangent = [3]float64{1, 0, 0}
		bitangent = [3]float64{0, 0, 1}
		point = [3]float64{x, height, z}
		normal = texture.PerturbNormal(geomNormal, tangent, bitangent, set, row, col)
		return point, normal, tangent, bitangent, true

	case texture.Upper, texture.Lower:
		a, b := sec.EdgeA(sf.edge), sec.EdgeB(sf.edge)
		dx, dz := b.X-a.X, b.Y-a.Y
		edgeLen := math.Hypot(dx, dz)
		if edgeLen == 0 {
			return point, normal, tangent, bitangent, false
		}

		t := float64(col) / n
		x := a.X + t*dx
		z := a.Y + t*dz
		height := sec.Floor + (float64(row)/n)*(sec.Ceil-sec.Floor)

		geomNormal := [3]float64{dz / edgeLen, 0, -dx / edgeLen}
		tangent = [3]float64{dx / edgeLen, 0, dz / edgeLen}
		bitangent = [3]float64{0, 1, 0}

		point = [3]float64{x, height, z}
		normal = texture.PerturbNormal(geomNormal, tangent, bitangent, set, row, col)
		return point, normal, tangent, bitangent, true
	}

	return point, normal, tangent, bitangent, false
}

func add(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func scale(a [3]float64, s float64) [3]float64 {
	return [3]float64{a[0] * s, a[1] * s, a[2] * s}
}

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func length(a [3]float64) float64 {
	return math.Sqrt(dot(a, a))
}

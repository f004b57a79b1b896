package texture

import "math"

// PerturbNormal decodes the normal-map texel at (row,col) into a
// tangent-space offset in [-1,+1] and recombines it with the surface's
// tangent/bitangent/geometric-normal basis (§4.5), returning the perturbed
// unit normal. Shared by the baker (direct/bounce lighting) and the
// raycaster (Hit.Normal) so both agree on what "the surface normal" means
// at a given texel.
func PerturbNormal(geomNormal, tangent, bitangent [3]float64, set *TextureSet, row, col int) [3]float64 {
	off := (row*PlaneSize + col) * 3
	du := float64(set.Normal[off])/127.5 - 1
	dv := float64(set.Normal[off+1])/127.5 - 1

	out := vecAdd(geomNormal, vecAdd(vecScale(tangent, du), vecScale(bitangent, dv)))
	l := vecLength(out)
	if l == 0 {
		return geomNormal
	}
	return vecScale(out, 1/l)
}

func vecAdd(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func vecScale(a [3]float64, s float64) [3]float64 {
	return [3]float64{a[0] * s, a[1] * s, a[2] * s}
}

func vecDot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func vecLength(a [3]float64) float64 {
	return math.Sqrt(vecDot(a, a))
}

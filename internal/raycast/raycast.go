// Package raycast implements the sector-graph ray walker (R, §4.5): given
// an origin point/sector and a target point/sector, it walks sector by
// sector along the segment, returning Clear, Hit, or Unreachable. The
// original source's goto-based control flow ("goto rescan", "goto
// hit_floor", "goto perturb_normal") is re-expressed here as a bounded
// loop over a small state variable (§9).
package raycast

import (
	"math"

	"github.com/Faultbox/sectorview/internal/texture"
	"github.com/Faultbox/sectorview/internal/world"
	"github.com/Faultbox/sectorview/pkg/geom"
)

// maxSteps bounds re-scans to protect against pathological topology (§4.5
// "a guard counter bounds re-scans").
const maxSteps = 256

// pushEps is how far a portal crossing advances the origin past the
// intersection, to avoid re-hitting the same edge immediately.
const pushEps = 1e-4

// OutcomeKind discriminates the result of a trace.
type OutcomeKind int

const (
	Clear OutcomeKind = iota
	Hit
	Unreachable
)

// Outcome is the result of Trace. Point/Sector/Surface/Normal/Sample are
// only meaningful when Kind == Hit.
type Outcome struct {
	Kind    OutcomeKind
	Point   [3]float64
	Sector  int
	Surface texture.Handle
	Normal  [3]float64
	Sample  [3]float64 // RGB color sample after ApplyLight, [0,255] range
}

// walkState is the bounded state machine replacing the source's gotos.
type walkState int

const (
	walking walkState = iota
	hitFloor
	hitCeil
	hitWall
	done
)

// Trace walks the sector graph from originSector at originXYZ toward
// targetXYZ, returning Clear if targetSector is reached without striking
// anything solid, Hit on the first solid surface struck, or Unreachable if
// the walk runs dry in a sector other than targetSector.
func Trace(w *world.World, store *texture.Store, originXYZ [3]float64, originSector int, targetXYZ [3]float64, targetSector int) Outcome {
	cur := originSector
	prev := -1

	ox, oz := originXYZ[0], originXYZ[2]
	tx, tz := targetXYZ[0], targetXYZ[2]

	state := walking
	var result Outcome

	for steps := 0; steps < maxSteps && state == walking; steps++ {
		if cur < 0 || cur >= len(w.Sectors) {
			return Outcome{Kind: Unreachable}
		}
		sec := w.Sectors[cur]

		seg := geom.Segment{A: geom.Point{X: ox, Y: oz}, B: geom.Point{X: tx, Y: tz}}

		hitEdge := -1
		var hitPt geom.Point
		bestT := math.Inf(1)

		for e := 0; e < sec.NumEdges(); e++ {
			a, b := sec.EdgeA(e), sec.EdgeB(e)
			edgeSeg := geom.Segment{A: geom.Point{X: a.X, Y: a.Y}, B: geom.Point{X: b.X, Y: b.Y}}
			if !geom.SegmentsIntersect(seg, edgeSeg) {
				continue
			}
			p, ok := geom.IntersectPoint(seg, edgeSeg)
			if !ok {
				continue
			}
			t := paramAlong(seg, p)
			if t < -1e-9 || t > bestT {
				continue
			}
			bestT = t
			hitEdge = e
			hitPt = p
		}

		if hitEdge == -1 {
			// No edge crossed: the walk ends inside the current sector.
			if cur == targetSector {
				return Outcome{Kind: Clear}
			}
			return Outcome{Kind: Unreachable}
		}

		// Interpolate height (world Y) along whichever horizontal axis
		// has the larger delta (§4.5).
		yAt := interpolateY(originXYZ, targetXYZ, ox, oz, tx, tz, hitPt)

		if sec.IsPortal(hitEdge) {
			nb := sec.Neighbors[hitEdge]
			ns := w.Sectors[nb]
			holeLo := math.Max(sec.Floor, ns.Floor)
			holeHi := math.Min(sec.Ceil, ns.Ceil)

			if yAt >= holeLo && yAt <= holeHi && nb != prev {
				// Pass through: advance origin slightly past the
				// intersection and continue in the neighbor.
				dx, dz := tx-hitPt.X, tz-hitPt.Y
				length := math.Hypot(dx, dz)
				if length > 0 {
					ox = hitPt.X + dx/length*pushEps
					oz = hitPt.Y + dz/length*pushEps
				} else {
					ox, oz = hitPt.X, hitPt.Y
				}
				prev = cur
				cur = nb
				continue
			}

			if yAt < holeLo {
				state = hitFloor
			} else if yAt > holeHi {
				state = hitCeil
			} else {
				// Oscillation guard tripped: treat the portal as a wall
				// at the hole bounds nearest the ray.
				state = hitWall
			}
		} else {
			if yAt < sec.Floor {
				state = hitFloor
			} else if yAt > sec.Ceil {
				state = hitCeil
			} else {
				state = hitWall
			}
		}

		result = finalizeHit(w, store, sec, cur, hitEdge, hitPt, yAt, originXYZ, targetXYZ)
		state = done
	}

	if state == done {
		return result
	}
	return Outcome{Kind: Unreachable}
}

// paramAlong returns the parametric distance of p along seg, using
// whichever axis has the larger delta to avoid division by a near-zero
// denominator.
func paramAlong(seg geom.Segment, p geom.Point) float64 {
	dx := seg.B.X - seg.A.X
	dy := seg.B.Y - seg.A.Y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx == 0 {
			return 0
		}
		return (p.X - seg.A.X) / dx
	}
	if dy == 0 {
		return 0
	}
	return (p.Y - seg.A.Y) / dy
}

// interpolateY computes the world-space height at the 2D hit point by
// interpolating along whichever horizontal axis has the larger delta
// between origin and target (§4.5).
func interpolateY(originXYZ, targetXYZ [3]float64, ox, oz, tx, tz float64, hit geom.Point) float64 {
	dx := tx - ox
	dz := tz - oz
	var t float64
	if math.Abs(dx) >= math.Abs(dz) {
		if dx == 0 {
			return originXYZ[1]
		}
		t = (hit.X - ox) / dx
	} else {
		if dz == 0 {
			return originXYZ[1]
		}
		t = (hit.Y - oz) / dz
	}
	return originXYZ[1] + t*(targetXYZ[1]-originXYZ[1])
}

// finalizeHit builds the Hit outcome for a floor/ceiling/wall strike,
// computing texture coordinates, the perturbed normal, and the shaded
// color sample.
func finalizeHit(w *world.World, store *texture.Store, sec *world.Sector, secIdx, edge int, hit geom.Point, yAt float64, originXYZ, targetXYZ [3]float64) Outcome {
	var handle texture.Handle
	var normal [3]float64
	var u, v float64       // diffuse/normal-map coordinate
	var lu, lv float64     // lightmap coordinate (§4.5: a separate,
	// sector-bounding-box-relative coordinate for floor/ceiling, distinct
	// from the tiled diffuse coordinate)

	var geomNormal, tangent, bitangent [3]float64
	var normalRow, normalCol int

	switch {
	case yAt < sec.Floor:
		handle = sec.FloorTex
		geomNormal = [3]float64{0, 1, 0}
		tangent = [3]float64{1, 0, 0}
		bitangent = [3]float64{0, 0, 1}
		u, v = texture.FloorCeilUV(hit.X, hit.Y)
		lu, lv = sec.LightmapUV(hit.X, hit.Y)
		normalCol, normalRow = texture.ClampTexel(lu), texture.ClampTexel(lv)
	case yAt > sec.Ceil:
		handle = sec.CeilTex
		geomNormal = [3]float64{0, -1, 0}
		tangent = [3]float64{1, 0, 0}
		bitangent = [3]float64{0, 0, 1}
		u, v = texture.FloorCeilUV(hit.X, hit.Y)
		lu, lv = sec.LightmapUV(hit.X, hit.Y)
		normalCol, normalRow = texture.ClampTexel(lu), texture.ClampTexel(lv)
	default:
		a, b := sec.EdgeA(edge), sec.EdgeB(edge)
		nb := -1
		if sec.IsPortal(edge) {
			nb = sec.Neighbors[edge]
		}
		if nb >= 0 {
			ns := w.Sectors[nb]
			holeHi := math.Min(sec.Ceil, ns.Ceil)
			if yAt > holeHi {
				handle = sec.UpperTex[edge]
			} else {
				handle = sec.LowerTex[edge]
			}
		} else {
			// A solid (non-portal) edge has no hole to be above or below;
			// it is rendered as a single wall using the upper texture
			// handle, matching P's solid-edge rule (§4.7 step 6).
			handle = sec.UpperTex[edge]
		}
		u = edgeParam(a, b, hit)
		v = (yAt - sec.Floor) / (sec.Ceil - sec.Floor) * (texture.PlaneSize - 1)
		lu, lv = u, v

		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length > 0 {
			// Wall normal points into the sector interior, perpendicular
			// to the edge direction. Source's wall-intersection normal is
			// written twice with different formulas in one copy; the
			// second (this one, using both tangent components) is
			// retained per §9.
			geomNormal = [3]float64{dy / length, 0, -dx / length}
			tangent = [3]float64{dx / length, 0, dy / length}
			bitangent = [3]float64{0, 1, 0}
		}
		normalCol = texture.ClampTexel(u)
		normalRow = texture.ClampTexel(v)
	}

	set, err := store.Get(handle)
	if err != nil {
		return Outcome{
			Kind:    Hit,
			Point:   [3]float64{hit.X, yAt, hit.Y},
			Sector:  secIdx,
			Surface: handle,
			Normal:  geomNormal,
		}
	}

	// The Hit outcome's normal is the perturbed surface normal, decoded
	// from the same handle's normal map and recombined with the surface's
	// tangent/bitangent basis (§4.5), matching the basis bake.surfacePoint
	// builds so direct and bounce lighting agree on what "the normal" is.
	normal = texture.PerturbNormal(geomNormal, tangent, bitangent, set, normalRow, normalCol)
	sample := texture.SampleLit(set, u, v, lu, lv)

	return Outcome{
		Kind:    Hit,
		Point:   [3]float64{hit.X, yAt, hit.Y},
		Sector:  secIdx,
		Surface: handle,
		Normal:  normal,
		Sample:  sample,
	}
}

// edgeParam returns the axis-major parameter of p along edge a->b, scaled
// into [0, PlaneSize).
func edgeParam(a, b world.Vertex, p geom.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return 0
	}
	var t float64
	if math.Abs(dx) >= math.Abs(dy) {
		t = (p.X - a.X) / dx
	} else {
		t = (p.Y - a.Y) / dy
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t * (texture.PlaneSize - 1)
}

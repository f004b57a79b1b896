package world

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Faultbox/sectorview/internal/logger"
	"github.com/Faultbox/sectorview/pkg/geom"
)

// insetEps keeps the chord-validity test in §4.3 from reporting a false
// positive when the candidate chord shares an endpoint with an edge it is
// being tested against.
const insetEps = 1e-6

var (
	// ErrUnclosedLoop is fatal: a sector's vertex loop does not close.
	ErrUnclosedLoop = errors.New("world: sector vertex loop is not closed")
	// ErrNeighborOutOfRange is returned once the verifier has stopped
	// repairing and a neighbor index still does not name a valid sector.
	ErrNeighborOutOfRange = errors.New("world: neighbor index out of range")
)

// Verify runs the map verifier once after loading: it repeatedly scans all
// sectors, repairing neighbor asymmetries and splitting concave polygons,
// restarting after every repair, until a full pass finds nothing left to
// do (§4.3). Loop-closure failures are fatal and returned immediately;
// a neighbor index still out of range after the repairs is returned as
// ErrNeighborOutOfRange; everything else is a best-effort repair logged
// through the package logger.
func Verify(w *World) error {
	for {
		if err := checkLoopClosure(w); err != nil {
			return err
		}

		if repairNeighborSymmetry(w) {
			continue
		}

		if splitFirstConcaveSector(w) {
			continue
		}

		break
	}

	return checkNeighborRanges(w)
}

func checkLoopClosure(w *World) error {
	for i, s := range w.Sectors {
		n := len(s.Vertices)
		if n == 0 {
			continue
		}
		if s.Vertices[0] != s.Vertices[n-1] {
			return fmt.Errorf("%w: sector %d", ErrUnclosedLoop, i)
		}
	}
	return nil
}

func checkNeighborRanges(w *World) error {
	for i, s := range w.Sectors {
		for e, n := range s.Neighbors {
			if n == NoNeighbor {
				continue
			}
			if n < 0 || n >= len(w.Sectors) {
				return fmt.Errorf("%w: sector %d edge %d neighbor %d", ErrNeighborOutOfRange, i, e, n)
			}
		}
	}
	return nil
}

// repairNeighborSymmetry locates, for every edge declaring a neighbor, the
// reverse edge in that neighbor. If found but pointing somewhere else,
// both sides are rewritten and the caller should restart verification. If
// not found, a warning is logged and the scan continues.
func repairNeighborSymmetry(w *World) (repaired bool) {
	for i, s := range w.Sectors {
		for e := 0; e < s.NumEdges(); e++ {
			nb := s.Neighbors[e]
			if nb == NoNeighbor || nb < 0 || nb >= len(w.Sectors) {
				continue
			}

			p, q := s.EdgeA(e), s.EdgeB(e)
			t := w.Sectors[nb]

			revEdge := findReverseEdge(t, q, p)
			if revEdge == -1 {
				logger.Warn("world: portal has no reverse edge",
					zap.Int("sector", i), zap.Int("edge", e), zap.Int("neighbor", nb))
				continue
			}

			if t.Neighbors[revEdge] != i {
				logger.Warn("world: asymmetric neighbor pointer repaired",
					zap.Int("sector", i), zap.Int("edge", e),
					zap.Int("neighbor_sector", nb), zap.Int("neighbor_edge", revEdge))
				t.Neighbors[revEdge] = i
				s.Neighbors[e] = nb
				repaired = true
			}
		}
	}
	return repaired
}

// findReverseEdge returns the index of the edge in s running from a to b,
// or -1 if none matches.
func findReverseEdge(s *Sector, a, b Vertex) int {
	for e := 0; e < s.NumEdges(); e++ {
		if s.EdgeA(e) == a && s.EdgeB(e) == b {
			return e
		}
	}
	return -1
}

// splitFirstConcaveSector scans for the first reflex vertex (consecutive
// triple making a right turn) and splits its sector per §4.3. Returns true
// if a split was performed (caller must restart verification).
func splitFirstConcaveSector(w *World) bool {
	for i, s := range w.Sectors {
		n := s.NumEdges()
		for k := 0; k < n; k++ {
			b := s.Vertices[(k-1+n)%n]
			c := s.Vertices[k]
			d := s.Vertices[(k+1)%n]

			if geom.PointSide(d.X, d.Y, b.X, b.Y, c.X, c.Y) >= 0 {
				continue
			}

			if splitSectorAt(w, i, k) {
				return true
			}

			logger.Error("world: no valid split chord found for concave sector, leaving as-is",
				zap.Int("sector", i), zap.Int("vertex", k))
		}
	}
	return false
}

// splitSectorAt splits sector i at its concave vertex index cIdx, choosing
// the nearest other vertex e such that chord c->e lies entirely inside the
// polygon and is on the correct side of the offending edge. Returns false
// if no valid chord exists.
func splitSectorAt(w *World, secIdx, cIdx int) bool {
	s := w.Sectors[secIdx]
	n := s.NumEdges()

	bIdx := (cIdx - 1 + n) % n
	dIdx := (cIdx + 1) % n
	c := s.Vertices[cIdx]
	b := s.Vertices[bIdx]

	type candidate struct {
		idx  int
		dist float64
	}
	var candidates []candidate

	for k := 0; k < n; k++ {
		if k == cIdx || k == bIdx || k == dIdx {
			continue
		}
		e := s.Vertices[k]

		if !chordIsInterior(s, cIdx, k) {
			continue
		}
		if geom.PointSide(e.X, e.Y, b.X, b.Y, c.X, c.Y) < 0 {
			continue
		}

		dx, dy := e.X-c.X, e.Y-c.Y
		candidates = append(candidates, candidate{idx: k, dist: dx*dx + dy*dy})
	}

	if len(candidates) == 0 {
		return false
	}

	best := candidates[0]
	for _, cand := range candidates[1:] {
		if cand.dist < best.dist {
			best = cand
		}
	}

	performSplit(w, secIdx, cIdx, best.idx)
	return true
}

// chordIsInterior tests the candidate chord from vertex cIdx to vertex
// eIdx against every current edge of the sector, using segments_intersect
// with an epsilon inset at shared endpoints to avoid false positives.
func chordIsInterior(s *Sector, cIdx, eIdx int) bool {
	n := s.NumEdges()
	c := s.Vertices[cIdx]
	e := s.Vertices[eIdx]

	dx, dy := e.X-c.X, e.Y-c.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return false
	}
	ux, uy := dx/length, dy/length

	chord := geom.Segment{
		A: geom.Point{X: c.X + ux*insetEps, Y: c.Y + uy*insetEps},
		B: geom.Point{X: e.X - ux*insetEps, Y: e.Y - uy*insetEps},
	}

	for k := 0; k < n; k++ {
		if k == cIdx || k == eIdx || (k+1)%n == cIdx || (k+1)%n == eIdx {
			continue
		}
		edge := geom.Segment{
			A: geom.Point{X: s.Vertices[k].X, Y: s.Vertices[k].Y},
			B: geom.Point{X: s.Vertices[k+1].X, Y: s.Vertices[k+1].Y},
		}
		if geom.SegmentsIntersect(chord, edge) {
			return false
		}
	}
	return true
}

// performSplit partitions the vertex sequence at cIdx and eIdx into two
// chains: cIdx..eIdx stays in the existing sector, eIdx..cIdx becomes a
// freshly appended sector. The chord gets a fresh mutual neighbor
// relationship; floor/ceil and per-edge textures are inherited edge by
// edge, and the chord edges get freshly allocated wall handles.
func performSplit(w *World, secIdx, cIdx, eIdx int) {
	s := w.Sectors[secIdx]
	n := s.NumEdges()

	chainA := closedLoopFrom(s, cIdx, eIdx, n)
	chainB := closedLoopFrom(s, eIdx, cIdx, n)

	newSecIdx := len(w.Sectors)

	newSector := &Sector{
		Floor: s.Floor,
		Ceil:  s.Ceil,
	}
	newSector.Vertices, newSector.Neighbors = buildSplitChain(s, chainB, newSecIdx, secIdx)
	s.Vertices, s.Neighbors = buildSplitChain(s, chainA, secIdx, newSecIdx)

	w.Sectors = append(w.Sectors, newSector)

	// Texture handles are addresses into the arena the Store builds from
	// the FINAL sector graph; they are meaningless mid-split and are
	// (re)assigned once, deterministically, by AssignTextureHandles after
	// verification completes.
}

// closedLoopFrom returns the vertex-index chain walking from "from" to
// "to" inclusive (wrapping modulo n), followed by "from" again to close
// the loop, plus the original edge index each retained edge came from (-1
// for the new chord edge).
type splitChain struct {
	vertexIdx []int // length m+1, closed
	origEdge  []int // length m, -1 for the new chord edge
}

func closedLoopFrom(s *Sector, from, to, n int) splitChain {
	var idx []int
	i := from
	for {
		idx = append(idx, i)
		if i == to {
			break
		}
		i = (i + 1) % n
	}
	idx = append(idx, from) // close the loop with the chord back to "from"

	orig := make([]int, len(idx)-1)
	for k := 0; k < len(orig)-1; k++ {
		orig[k] = idx[k]
	}
	orig[len(orig)-1] = -1 // the closing chord edge is new

	return splitChain{vertexIdx: idx, origEdge: orig}
}

// buildSplitChain materializes a chain's vertex/neighbor arrays, inheriting
// the original sector's per-edge neighbor pointer edge-by-edge and wiring
// the new chord edge to the sibling chain (selfIdx is unused here but kept
// for symmetry with the handle-assignment pass).
func buildSplitChain(orig *Sector, chain splitChain, selfIdx, otherIdx int) ([]Vertex, []int) {
	_ = selfIdx
	verts := make([]Vertex, len(chain.vertexIdx))
	for i, vi := range chain.vertexIdx {
		verts[i] = orig.Vertices[vi]
	}

	m := len(chain.origEdge)
	neighbors := make([]int, m)

	for e := 0; e < m; e++ {
		oe := chain.origEdge[e]
		if oe == -1 {
			neighbors[e] = otherIdx
			continue
		}
		neighbors[e] = orig.Neighbors[oe]
	}

	return verts, neighbors
}

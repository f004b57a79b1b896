// Package world holds the sector graph's runtime value types — vertices,
// sectors, lights, and the player — plus the verifier that repairs and
// validates that graph after loading (§3, §4.3).
package world

import "github.com/Faultbox/sectorview/internal/texture"

// NoNeighbor is the sentinel edge-neighbor value meaning "solid wall".
const NoNeighbor = -1

// Vertex is a 2D point in map space. Map-space Y is world-space Z (the
// horizontal plane); height is a separate axis (§3).
type Vertex struct {
	X, Y float64
}

// Sector is a closed convex polygon floor plan with independent floor and
// ceiling heights. Vertices are stored N+1 long with Vertices[0] ==
// Vertices[N] (closed-loop convention); Neighbors, UpperTex, and LowerTex
// each have exactly N entries, one per edge i = (Vertices[i], Vertices[i+1]).
//
// Sectors exclusively own their vertex/neighbor arrays and their per-edge
// wall texture handles (§3 Ownership).
type Sector struct {
	Floor, Ceil float64

	Vertices  []Vertex
	Neighbors []int

	FloorTex texture.Handle
	CeilTex  texture.Handle
	UpperTex []texture.Handle
	LowerTex []texture.Handle

	// Visible is a transient per-frame flag, reset by portal.Render at
	// the start of each frame.
	Visible bool
}

// NumEdges returns the sector's edge count (one less than len(Vertices)).
func (s *Sector) NumEdges() int {
	if len(s.Vertices) == 0 {
		return 0
	}
	return len(s.Vertices) - 1
}

// EdgeA returns the starting vertex of edge i.
func (s *Sector) EdgeA(i int) Vertex { return s.Vertices[i] }

// EdgeB returns the ending vertex of edge i.
func (s *Sector) EdgeB(i int) Vertex { return s.Vertices[i+1] }

// IsPortal reports whether edge i has a live neighbor rather than the
// solid-wall sentinel.
func (s *Sector) IsPortal(i int) bool {
	return s.Neighbors[i] != NoNeighbor
}

// Light is an area light: a point plus intensity, modeled by the baker as
// a cloud of sub-samples within a small radius (§3, §4.6).
type Light struct {
	Position [3]float64 // x, y (height), z
	RGB      [3]float64
	Sector   int
}

// Player holds viewer state: position/velocity in world space, yaw/pitch,
// and the sector index hint kept consistent with position by Motion (§3).
type Player struct {
	Position [3]float64
	Velocity [3]float64

	Yaw, Pitch     float64
	SinYaw, CosYaw float64

	Sector  int
	Ducking bool
	Falling bool
}

// World is the single owning container for sectors, lights, and the
// player, passed explicitly to every component that needs it. There is no
// process-wide singleton (§9).
type World struct {
	Sectors []*Sector
	Lights  []Light
	Player  Player
}

// EdgeCounts returns each sector's current edge count in sector-index
// order, the shape the texture store's arena layout is built from.
func (w *World) EdgeCounts() texture.EdgeCounts {
	counts := make(texture.EdgeCounts, len(w.Sectors))
	for i, s := range w.Sectors {
		counts[i] = s.NumEdges()
	}
	return counts
}

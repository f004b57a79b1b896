package world

import "github.com/Faultbox/sectorview/pkg/geom"

// Contains reports whether (x,y) lies inside the sector by a winding
// check: after V, every sector is convex with a consistent winding such
// that an interior point is on the non-negative side of every edge (§8
// Player containment, §4.3 Convexity).
func (s *Sector) Contains(x, y float64) bool {
	for i := 0; i < s.NumEdges(); i++ {
		a, b := s.EdgeA(i), s.EdgeB(i)
		if geom.PointSide(x, y, a.X, a.Y, b.X, b.Y) < 0 {
			return false
		}
	}
	return true
}

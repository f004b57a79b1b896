package world

import "github.com/Faultbox/sectorview/internal/texture"

// AssignTextureHandles (re)computes every sector's texture handle fields
// from the final sector graph, in the same order the texture store's
// arena is laid out: for each sector, floor, ceiling, then N uppers, then
// N lowers (§4.4). Call once, after Verify has finished splitting concave
// sectors, and before constructing the texture Store.
func AssignTextureHandles(w *World) {
	for i, s := range w.Sectors {
		s.FloorTex = texture.Handle{Sector: i, Kind: texture.Floor}
		s.CeilTex = texture.Handle{Sector: i, Kind: texture.Ceiling}

		n := s.NumEdges()
		s.UpperTex = make([]texture.Handle, n)
		s.LowerTex = make([]texture.Handle, n)
		for e := 0; e < n; e++ {
			s.UpperTex[e] = texture.Handle{Sector: i, Kind: texture.Upper, Edge: e}
			s.LowerTex[e] = texture.Handle{Sector: i, Kind: texture.Lower, Edge: e}
		}
	}
}

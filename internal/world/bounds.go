package world

import "math"

// Bounds returns the sector's 2D axis-aligned bounding box over its
// vertices. Used to give each sector an independent, non-repeating
// 1024x1024 lightmap square for its floor/ceiling, distinct from the
// tiled diffuse texture coordinate (§4.5).
func (s *Sector) Bounds() (minX, minZ, maxX, maxZ float64) {
	minX, minZ = math.Inf(1), math.Inf(1)
	maxX, maxZ = math.Inf(-1), math.Inf(-1)
	for _, v := range s.Vertices {
		if v.X < minX {
			minX = v.X
		}
		if v.X > maxX {
			maxX = v.X
		}
		if v.Y < minZ {
			minZ = v.Y
		}
		if v.Y > maxZ {
			maxZ = v.Y
		}
	}
	if maxX == minX {
		maxX = minX + 1
	}
	if maxZ == minZ {
		maxZ = minZ + 1
	}
	return minX, minZ, maxX, maxZ
}

// LightmapUV maps a map-space point to this sector's independent
// floor/ceiling lightmap texel coordinate, linear over the sector's
// bounding box.
func (s *Sector) LightmapUV(x, z float64) (u, v float64) {
	minX, minZ, maxX, maxZ := s.Bounds()
	const n = 1023.0
	u = (x - minX) / (maxX - minX) * n
	v = (z - minZ) / (maxZ - minZ) * n
	return u, v
}

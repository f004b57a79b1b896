// Package portal implements the per-frame visible-surface rasterizer (P,
// §4.7): a BFS walk along portal edges from the player's sector outward,
// shrinking a per-column visibility window as it goes, with floor, ceiling,
// and wall columns ray-projected back into texture/lightmap space. Grounded
// on the original engine's DrawScreen, generalized from its flat-color
// vlines to textured, lit surfaces.
package portal

import (
	"math"

	"github.com/Faultbox/sectorview/internal/texture"
	"github.com/Faultbox/sectorview/internal/world"
	"github.com/Faultbox/sectorview/pkg/geom"
)

// MaxQueue bounds the pending-portal FIFO; enqueue past this silently drops
// (§4.7 step 7, §9 scenario 6).
const MaxQueue = 32

// Near/far view-frustum clip planes in view space, matching the source's
// nearz/farz/nearside/farside constants.
const (
	nearZ    = 1e-4
	farZ     = 5.0
	nearSide = 1e-5
	farSide  = 20.0
)

// Options configures the projection. HFov and VFov are dimensionless; the
// screen-space formulas scale them by Width and Height respectively (§4.7
// step 4).
type Options struct {
	Width, Height int
	HFov, VFov    float64
}

// Framebuffer is a row-major RGB byte-major pixel buffer the renderer draws
// into.
type Framebuffer struct {
	Width, Height int
	Pix           []byte
}

// NewFramebuffer allocates a zeroed w*h RGB framebuffer.
func NewFramebuffer(w, h int) *Framebuffer {
	return &Framebuffer{Width: w, Height: h, Pix: make([]byte, w*h*3)}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(r, g, b byte) {
	for i := 0; i < len(fb.Pix); i += 3 {
		fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2] = r, g, b
	}
}

func (fb *Framebuffer) setPixel(x, y int, rgb [3]float64) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	off := (y*fb.Width + x) * 3
	fb.Pix[off] = texture.ClampByte(rgb[0])
	fb.Pix[off+1] = texture.ClampByte(rgb[1])
	fb.Pix[off+2] = texture.ClampByte(rgb[2])
}

type queueItem struct {
	sector, lo, hi int
}

// queue is the bounded circular FIFO of pending (sector, col_lo, col_hi)
// entries (§4.7 state).
type queue struct {
	items      [MaxQueue]queueItem
	head, tail int
}

func (q *queue) push(it queueItem) {
	next := (q.head + 1) % MaxQueue
	if next == q.tail {
		return // full: drop silently (§4.7 step 7)
	}
	q.items[q.head] = it
	q.head = next
}

func (q *queue) pop() (queueItem, bool) {
	if q.head == q.tail {
		return queueItem{}, false
	}
	it := q.items[q.tail]
	q.tail = (q.tail + 1) % MaxQueue
	return it, true
}

// Render rasterizes the world as seen by w.Player into fb, in portal-BFS
// order, at the given view pitch (the caller passes motion.ViewPitch's
// result; this package does not depend on motion to avoid a cycle).
func Render(w *world.World, store *texture.Store, opts Options, pitch float64, fb *Framebuffer) {
	width, height := opts.Width, opts.Height

	ytop := make([]int, width)
	ybottom := make([]int, width)
	for x := range ytop {
		ytop[x] = 0
		ybottom[x] = height - 1
	}

	rendered := make([]bool, len(w.Sectors))
	for _, s := range w.Sectors {
		s.Visible = false
	}

	var q queue
	q.push(queueItem{w.Player.Sector, 0, width - 1})

	for {
		item, ok := q.pop()
		if !ok {
			break
		}
		if item.sector < 0 || item.sector >= len(w.Sectors) {
			continue
		}
		// A sector already rendered is skipped outright: a simplified,
		// single-render-per-sector guard (one counter bit, not the
		// source's up-to-16-revisit scheme) — sufficient to prevent
		// re-entry loops along portal cycles (§4.7 tie-break).
		if rendered[item.sector] {
			continue
		}
		rendered[item.sector] = true
		w.Sectors[item.sector].Visible = true

		renderSector(w, store, opts, pitch, fb, item, ytop, ybottom, &q)
	}
}

func renderSector(w *world.World, store *texture.Store, opts Options, pitch float64, fb *Framebuffer, item queueItem, ytop, ybottom []int, q *queue) {
	sec := w.Sectors[item.sector]
	p := &w.Player
	width, height := opts.Width, opts.Height
	fw, fh := float64(width), float64(height)

	for e := 0; e < sec.NumEdges(); e++ {
		a, b := sec.EdgeA(e), sec.EdgeB(e)

		vx1, vy1 := a.X-p.Position[0], a.Y-p.Position[2]
		vx2, vy2 := b.X-p.Position[0], b.Y-p.Position[2]

		sin, cos := p.SinYaw, p.CosYaw

		tx1 := vx1*sin - vy1*cos
		tz1 := vx1*cos + vy1*sin
		tx2 := vx2*sin - vy2*cos
		tz2 := vx2*cos + vy2*sin

		// Backface reject: wall entirely behind the player (§4.7 step 2).
		if tz1 <= 0 && tz2 <= 0 {
			continue
		}

		ox1, oz1, ox2, oz2 := tx1, tz1, tx2, tz2
		u0, u1 := 0.0, float64(texture.PlaneSize-1)

		// Near-plane clip: if exactly one endpoint is behind, clip against
		// the view-frustum edges and carry the clipped u-range (§4.7 step 3).
		if tz1 <= 0 || tz2 <= 0 {
			wall := geom.Segment{A: geom.Point{X: tx1, Y: tz1}, B: geom.Point{X: tx2, Y: tz2}}
			i1, ok1 := geom.IntersectPoint(wall, geom.Segment{A: geom.Point{X: -nearSide, Y: nearZ}, B: geom.Point{X: -farSide, Y: farZ}})
			i2, ok2 := geom.IntersectPoint(wall, geom.Segment{A: geom.Point{X: nearSide, Y: nearZ}, B: geom.Point{X: farSide, Y: farZ}})

			if tz1 < nearZ {
				if ok1 && i1.Y > 0 {
					tx1, tz1 = i1.X, i1.Y
				} else if ok2 {
					tx1, tz1 = i2.X, i2.Y
				}
			}
			if tz2 < nearZ {
				if ok1 && i1.Y > 0 {
					tx2, tz2 = i1.X, i1.Y
				} else if ok2 {
					tx2, tz2 = i2.X, i2.Y
				}
			}

			u0 = lineParam(ox1, oz1, ox2, oz2, tx1, tz1) * float64(texture.PlaneSize-1)
			u1 = lineParam(ox1, oz1, ox2, oz2, tx2, tz2) * float64(texture.PlaneSize-1)
		}

		// Perspective projection (§4.7 step 4).
		xscale1 := fw * opts.HFov / tz1
		xscale2 := fw * opts.HFov / tz2

		x1f := fw/2 - tx1*xscale1
		x2f := fw/2 - tx2*xscale2
		sx1 := int(x1f)
		sx2 := int(x2f)

		if sx1 >= sx2 || sx2 < item.lo || sx1 > item.hi {
			continue
		}

		yceil := sec.Ceil - p.Position[1]
		yfloor := sec.Floor - p.Position[1]

		neighbor := -1
		nyceil, nyfloor := 0.0, 0.0
		if sec.IsPortal(e) {
			neighbor = sec.Neighbors[e]
			ns := w.Sectors[neighbor]
			nyceil = ns.Ceil - p.Position[1]
			nyfloor = ns.Floor - p.Position[1]
		}

		yscale1 := fh * opts.VFov / tz1
		yscale2 := fh * opts.VFov / tz2

		y1a := fh/2 - (yceil+tz1*pitch)*yscale1
		y1b := fh/2 - (yfloor+tz1*pitch)*yscale1
		y2a := fh/2 - (yceil+tz2*pitch)*yscale2
		y2b := fh/2 - (yfloor+tz2*pitch)*yscale2

		ny1a := fh/2 - (nyceil+tz1*pitch)*yscale1
		ny1b := fh/2 - (nyfloor+tz1*pitch)*yscale1
		ny2a := fh/2 - (nyceil+tz2*pitch)*yscale2
		ny2b := fh/2 - (nyfloor+tz2*pitch)*yscale2

		beginX, endX := sx1, sx2
		if item.lo > beginX {
			beginX = item.lo
		}
		if item.hi < endX {
			endX = item.hi
		}

		for x := beginX; x <= endX; x++ {
			if x < 0 || x >= width {
				continue
			}
			if ytop[x] > ybottom[x] {
				continue // window already empty for this column
			}

			t := float64(x-sx1) / float64(sx2-sx1)
			u := (u0*float64(x2f-float64(x))*tz2 + u1*float64(float64(x)-x1f)*tz1) /
				(float64(x2f-float64(x))*tz2 + float64(float64(x)-x1f)*tz1)

			ya := y1a + t*(y2a-y1a)
			yb := y1b + t*(y2b-y1b)
			cya := clampInt(int(ya), ytop[x], ybottom[x])
			cyb := clampInt(int(yb), ytop[x], ybottom[x])

			drawHorizontal(store, p, sec, x, ytop[x], cya-1, opts, pitch, fb, true)
			drawHorizontal(store, p, sec, x, cyb+1, ybottom[x], opts, pitch, fb, false)

			if neighbor >= 0 {
				ns := w.Sectors[neighbor]
				nya := ny1a + t*(ny2a-ny1a)
				nyb := ny1b + t*(ny2b-ny1b)
				cnya := clampInt(int(nya), ytop[x], ybottom[x])
				cnyb := clampInt(int(nyb), ytop[x], ybottom[x])

				if sec.Ceil > ns.Ceil && cya <= cnya-1 {
					drawWall(store, fb, sec.UpperTex[e], x, cya, cnya-1, cya, cnya-1, u)
				}
				if sec.Floor < ns.Floor && cnyb+1 <= cyb {
					drawWall(store, fb, sec.LowerTex[e], x, cnyb+1, cyb, cnyb+1, cyb, u)
				}

				ytop[x] = clampInt(max(cya, cnya), ytop[x], height-1)
				ybottom[x] = clampInt(min(cyb, cnyb), 0, ybottom[x])
			} else {
				drawWall(store, fb, sec.UpperTex[e], x, cya, cyb, cya, cyb, u)
			}
		}

		if neighbor >= 0 && beginX <= endX {
			q.push(queueItem{neighbor, beginX, endX})
		}
	}
}

// drawHorizontal ray-projects each screen row in [y0,y1] of column x back
// onto the floor or ceiling plane via the closed-form inverse of the
// perspective formula (§4.7 step 6), sampling texture*lightmap via
// ApplyLight.
func drawHorizontal(store *texture.Store, p *world.Player, sec *world.Sector, x, y0, y1 int, opts Options, pitch float64, fb *Framebuffer, ceiling bool) {
	if y0 > y1 {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 >= opts.Height {
		y1 = opts.Height - 1
	}

	var handle texture.Handle
	var relH float64
	if ceiling {
		handle = sec.CeilTex
		relH = sec.Ceil - p.Position[1]
	} else {
		handle = sec.FloorTex
		relH = sec.Floor - p.Position[1]
	}

	set, err := store.Get(handle)
	if err != nil {
		return
	}

	for y := y0; y <= y1; y++ {
		worldX, worldZ, ok := inverseProject(x, y, relH, opts, pitch, p.SinYaw, p.CosYaw, p.Position[0], p.Position[2])
		if !ok {
			continue
		}

		u, v := texture.FloorCeilUV(worldX, worldZ)
		lu, lv := sec.LightmapUV(worldX, worldZ)
		color := texture.SampleLit(set, u, v, lu, lv)
		fb.setPixel(x, y, color)
	}
}

// forwardProject is the perspective formula applied to a wall vertex (§4.7
// step 4): the view-space point (tx,tz) at height relH projects to screen
// position (xScreen,yScreen).
func forwardProject(tx, tz, relH float64, opts Options, pitch float64) (xScreen, yScreen float64) {
	fw, fh := float64(opts.Width), float64(opts.Height)
	xScreen = fw/2 - tx*(fw*opts.HFov/tz)
	yScreen = fh/2 - (relH+tz*pitch)*(fh*opts.VFov/tz)
	return xScreen, yScreen
}

// inverseProject is the exact closed-form inverse of forwardProject for a
// plane at constant height relH: given a screen pixel (x,y), recover the
// world-space (worldX,worldZ) that projects there, by solving the
// perspective formula for tz then tx, then undoing the player's yaw
// rotation (whose matrix is orthogonal, so its inverse is its transpose).
// ok is false where the ray is degenerate (behind the player or parallel
// to the plane).
func inverseProject(x, y int, relH float64, opts Options, pitch, sinYaw, cosYaw, playerX, playerZ float64) (worldX, worldZ float64, ok bool) {
	fw, fh := float64(opts.Width), float64(opts.Height)

	a := fh/2 - float64(y)
	denom := a - pitch*fh*opts.VFov
	if denom == 0 {
		return 0, 0, false
	}
	tz := relH * fh * opts.VFov / denom
	if tz <= 0 {
		return 0, 0, false
	}
	tx := (fw/2 - float64(x)) * tz / (fw * opts.HFov)

	worldX = playerX + sinYaw*tx + cosYaw*tz
	worldZ = playerZ - cosYaw*tx + sinYaw*tz
	return worldX, worldZ, true
}

// drawWall fills column x from y0 to y1 with the wall texture, perspective-
// correct in u (already computed by the caller), v linear from 0 at va to
// 1023 at vb (§4.7 step 6 "fill the wall column").
func drawWall(store *texture.Store, fb *Framebuffer, handle texture.Handle, x, y0, y1, va, vb int, u float64) {
	if y0 > y1 {
		return
	}
	set, err := store.Get(handle)
	if err != nil {
		return
	}
	span := vb - va
	for y := y0; y <= y1; y++ {
		v := float64(texture.PlaneSize - 1)
		if span != 0 {
			v = float64(y-va) / float64(span) * float64(texture.PlaneSize-1)
		}
		color := texture.SampleLit(set, u, v, u, v)
		fb.setPixel(x, y, color)
	}
}

// lineParam returns the parametric distance of point (px,pz) along the
// line from (x1,z1) to (x2,z2), using whichever axis has the larger delta.
func lineParam(x1, z1, x2, z2, px, pz float64) float64 {
	dx := x2 - x1
	dz := z2 - z1
	if math.Abs(dx) >= math.Abs(dz) {
		if dx == 0 {
			return 0
		}
		return (px - x1) / dx
	}
	if dz == 0 {
		return 0
	}
	return (pz - z1) / dz
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

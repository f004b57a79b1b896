// Package motion implements the player's per-tick physics (M, §4.8):
// gravity and vertical clamping against floor/ceiling, horizontal movement
// with portal-crossing and wall-slide resolution, and mouse-driven
// orientation. Grounded on the teacher's destination/velocity update shape
// in internal/engine/character/movement.go, generalized from click-to-move
// navigation to sector-aware FPS motion with a real velocity integrator.
package motion

import (
	"math"

	"github.com/Faultbox/sectorview/internal/world"
	"github.com/Faultbox/sectorview/pkg/geom"
)

// Tuning constants. The source does not name exact values for these; they
// are chosen to feel like a classic period shooter at the eye/duck/knee
// heights already fixed by world.EyeHeight etc.
const (
	Gravity      = 20.0 // world units/sec^2
	JumpVelocity = 8.0  // world units/sec, initial upward kick
	MoveSpeed    = 12.0 // world units/sec of requested horizontal speed

	MinPitch = -5.0 // tangent-of-half-fov units, not radians (§4.8)
	MaxPitch = 5.0

	ViewBobFactor = 0.5
)

// Input is the per-tick movement/orientation request derived from polling
// the keyboard and mouse (§4.9 step 2).
type Input struct {
	Forward, Strafe     float64 // each in [-1,1]: W/S and A/D axes
	Jump                  bool
	Duck                  bool
	YawDelta, PitchDelta float64 // relative mouse motion, already scaled by the caller
}

// Step runs one tick of M against the player's current velocity: vertical
// integration first, then horizontal movement with portal-crossing and
// wall-slide (§4.8). Call this before ApplyInput so that the velocity used
// is the one set by the previous frame's input, matching F's ordering
// (§4.9: "Run M with current player velocity" precedes "apply input-derived
// acceleration to velocity").
func Step(w *world.World, dt float64) {
	p := &w.Player
	integrateVertical(w, p, dt)
	integrateHorizontal(w, p, dt)
}

// ApplyInput derives the next tick's velocity and orientation from polled
// input: WASD sets horizontal velocity in view space, SPACE triggers a
// jump when not already falling, and mouse deltas update yaw/pitch (§4.8
// Orientation, §4.9 step 2).
func ApplyInput(w *world.World, in Input, dt float64) {
	p := &w.Player

	p.Yaw += in.YawDelta
	p.SinYaw, p.CosYaw = math.Sincos(p.Yaw)

	p.Pitch += in.PitchDelta
	if p.Pitch < MinPitch {
		p.Pitch = MinPitch
	}
	if p.Pitch > MaxPitch {
		p.Pitch = MaxPitch
	}

	if in.Duck {
		p.Ducking = true
	} else {
		p.Ducking = false
	}

	// Forward/strafe are expressed in view space; rotate into world (x,z)
	// by the cached yaw trig, using the portal renderer's view basis:
	// forward along (cos, sin), screen-right along (-sin, cos).
	fx, fz := p.CosYaw, p.SinYaw
	rx, rz := -p.SinYaw, p.CosYaw

	vx := (fx*in.Forward + rx*in.Strafe) * MoveSpeed
	vz := (fz*in.Forward + rz*in.Strafe) * MoveSpeed

	p.Velocity[0] = vx
	p.Velocity[2] = vz

	if in.Jump && !p.Falling {
		p.Velocity[1] = JumpVelocity
		p.Falling = true
	}
}

// ViewPitch returns the pitch actually applied by the portal renderer:
// the player's pitch minus a small view-bob term proportional to vertical
// velocity (§4.8 "view bob").
func ViewPitch(p *world.Player) float64 {
	return p.Pitch - p.Velocity[1]*ViewBobFactor
}

// eyeHeight returns the player's current eye height, lower while ducking.
func eyeHeight(p *world.Player) float64 {
	if p.Ducking {
		return world.DuckHeight
	}
	return world.EyeHeight
}

// integrateVertical applies gravity and clamps against the current
// sector's floor/ceiling (§4.8 "Vertical").
func integrateVertical(w *world.World, p *world.Player, dt float64) {
	sec := w.Sectors[p.Sector]
	eye := eyeHeight(p)

	if p.Falling {
		p.Velocity[1] -= Gravity * dt
	}

	nextZ := p.Position[1] + p.Velocity[1]*dt

	floorEye := sec.Floor + eye
	switch {
	case p.Velocity[1] <= 0 && nextZ < floorEye:
		p.Position[1] = floorEye
		p.Velocity[1] = 0
		p.Falling = false
	case p.Velocity[1] > 0 && nextZ > sec.Ceil:
		p.Position[1] = sec.Ceil
		p.Velocity[1] = 0
		p.Falling = false
	default:
		p.Position[1] = nextZ
		p.Falling = true
	}
}

// integrateHorizontal moves the player by its horizontal velocity,
// projecting it onto a blocking edge's direction (wall slide) if the move
// would cross an impassable edge, then resolves any portal crossing that
// results (§4.8 "Horizontal").
func integrateHorizontal(w *world.World, p *world.Player, dt float64) {
	sec := w.Sectors[p.Sector]
	eye := eyeHeight(p)

	vx, vz := p.Velocity[0], p.Velocity[2]
	if vx == 0 && vz == 0 {
		return
	}
	dx, dz := vx*dt, vz*dt

	moveSeg := geom.Segment{
		A: geom.Point{X: p.Position[0], Y: p.Position[2]},
		B: geom.Point{X: p.Position[0] + dx, Y: p.Position[2] + dz},
	}

	for e := 0; e < sec.NumEdges(); e++ {
		a, b := sec.EdgeA(e), sec.EdgeB(e)
		edgeSeg := geom.Segment{A: geom.Point{X: a.X, Y: a.Y}, B: geom.Point{X: b.X, Y: b.Y}}

		if !geom.BoxOverlap(moveSeg, edgeSeg) {
			continue
		}
		if geom.PointSide(moveSeg.B.X, moveSeg.B.Y, a.X, a.Y, b.X, b.Y) >= 0 {
			continue
		}

		maxPass, minPass, blocked := passableRange(w, sec, e)
		if blocked || maxPass < p.Position[1]+world.HeadMargin || minPass > p.Position[1]-eye+world.KneeHeight {
			// Wall slide: project velocity onto the edge direction (§4.8).
			edx, edy := b.X-a.X, b.Y-a.Y
			lenSq := edx*edx + edy*edy
			if lenSq == 0 {
				vx, vz = 0, 0
			} else {
				dot := vx*edx + vz*edy
				vx = edx * dot / lenSq
				vz = edy * dot / lenSq
			}
			dx, dz = vx*dt, vz*dt
			moveSeg.B = geom.Point{X: p.Position[0] + dx, Y: p.Position[2] + dz}
		}
	}

	p.Velocity[0], p.Velocity[2] = vx, vz
	p.Position[0] += dx
	p.Position[2] += dz

	finalSeg := geom.Segment{
		A: geom.Point{X: p.Position[0] - dx, Y: p.Position[2] - dz},
		B: geom.Point{X: p.Position[0], Y: p.Position[2]},
	}

	for e := 0; e < sec.NumEdges(); e++ {
		if !sec.IsPortal(e) {
			continue
		}
		a, b := sec.EdgeA(e), sec.EdgeB(e)
		edgeSeg := geom.Segment{A: geom.Point{X: a.X, Y: a.Y}, B: geom.Point{X: b.X, Y: b.Y}}

		if !geom.BoxOverlap(finalSeg, edgeSeg) {
			continue
		}
		if geom.PointSide(p.Position[0], p.Position[2], a.X, a.Y, b.X, b.Y) < 0 {
			nb := sec.Neighbors[e]
			if nb >= 0 {
				p.Sector = nb
			}
			break
		}
	}
}

// passableRange returns the vertical range an edge lets the player
// through, and whether it is a solid wall rather than a portal.
func passableRange(w *world.World, sec *world.Sector, edge int) (maxPass, minPass float64, blocked bool) {
	if !sec.IsPortal(edge) {
		return 0, 0, true
	}
	ns := w.Sectors[sec.Neighbors[edge]]
	maxPass = math.Min(sec.Ceil, ns.Ceil)
	minPass = math.Max(sec.Floor, ns.Floor)
	return maxPass, minPass, false
}

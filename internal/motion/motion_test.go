package motion

import (
	"testing"

	"github.com/Faultbox/sectorview/internal/world"
)

func twoSectorWorld(neighborFloor, neighborCeil float64) *world.World {
	a := &world.Sector{
		Floor: 0, Ceil: 10,
		Vertices: []world.Vertex{
			{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0},
		},
		Neighbors: []int{world.NoNeighbor, 1, world.NoNeighbor, world.NoNeighbor},
	}
	b := &world.Sector{
		Floor: neighborFloor, Ceil: neighborCeil,
		Vertices: []world.Vertex{
			{X: 10, Y: 10}, {X: 10, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 10}, {X: 10, Y: 10},
		},
		Neighbors: []int{0, world.NoNeighbor, world.NoNeighbor, world.NoNeighbor},
	}
	w := &world.World{Sectors: []*world.Sector{a, b}}
	w.Player.Sector = 0
	w.Player.Position = [3]float64{9.9, a.Floor + world.EyeHeight, 5}
	return w
}

func TestStepUpPortalPasses(t *testing.T) {
	// KneeHeight=2, step of 1.5: passable (scenario 3, first case).
	w := twoSectorWorld(1.5, 10)
	w.Player.Velocity = [3]float64{5, 0, 0}

	Step(w, 1.0)

	if w.Player.Sector != 1 {
		t.Fatalf("expected player to cross into sector 1, got sector %d", w.Player.Sector)
	}
	if w.Player.Velocity[0] != 5 {
		t.Errorf("expected velocity unchanged by a passable portal, got %v", w.Player.Velocity)
	}
}

func TestStepTooTallSlides(t *testing.T) {
	// KneeHeight=2, step of 3: too tall, player slides along the portal
	// edge instead of crossing (scenario 3, second case).
	w := twoSectorWorld(3, 10)
	w.Player.Velocity = [3]float64{5, 0, 3}

	Step(w, 1.0)

	if w.Player.Sector != 0 {
		t.Fatalf("expected player to remain in sector 0, got sector %d", w.Player.Sector)
	}
	// The blocking edge runs along Y (x=10, from y=0 to y=10); sliding
	// should zero the X (normal) component and keep the Z (tangential)
	// component of velocity.
	if w.Player.Velocity[0] != 0 {
		t.Errorf("expected normal velocity component zeroed, got %v", w.Player.Velocity[0])
	}
	if w.Player.Velocity[2] != 3 {
		t.Errorf("expected tangential velocity component preserved, got %v", w.Player.Velocity[2])
	}
}

func TestLowCeilingBump(t *testing.T) {
	// Ceiling drops to just above player's head; head_margin=1 blocks the
	// crossing and M projects horizontal velocity onto the edge
	// (scenario 4).
	w := twoSectorWorld(0, 6.5)
	w.Player.Velocity = [3]float64{5, 0, 3}

	Step(w, 1.0)

	if w.Player.Sector != 0 {
		t.Fatalf("expected player to remain in sector 0, got sector %d", w.Player.Sector)
	}
	if w.Player.Velocity[0] != 0 {
		t.Errorf("expected normal velocity component zeroed by low-ceiling bump, got %v", w.Player.Velocity[0])
	}
}

func TestGravitySnapsToFloor(t *testing.T) {
	w := twoSectorWorld(0, 10)
	w.Player.Position[1] = w.Sectors[0].Floor + world.EyeHeight + 0.05
	w.Player.Velocity = [3]float64{0, -1, 0}
	w.Player.Falling = true

	Step(w, 1.0)

	want := w.Sectors[0].Floor + world.EyeHeight
	if w.Player.Position[1] != want {
		t.Errorf("expected snap to floor+eye height %v, got %v", want, w.Player.Position[1])
	}
	if w.Player.Falling {
		t.Errorf("expected Falling cleared after landing")
	}
	if w.Player.Velocity[1] != 0 {
		t.Errorf("expected vertical velocity zeroed after landing, got %v", w.Player.Velocity[1])
	}
}

func TestJumpSetsUpwardVelocity(t *testing.T) {
	w := twoSectorWorld(0, 10)
	ApplyInput(w, Input{Jump: true}, 1.0)

	if w.Player.Velocity[1] != JumpVelocity {
		t.Errorf("expected jump velocity %v, got %v", JumpVelocity, w.Player.Velocity[1])
	}
	if !w.Player.Falling {
		t.Errorf("expected Falling set true after jump")
	}
}

func TestPitchClamped(t *testing.T) {
	w := twoSectorWorld(0, 10)
	ApplyInput(w, Input{PitchDelta: 100}, 1.0)
	if w.Player.Pitch != MaxPitch {
		t.Errorf("expected pitch clamped to %v, got %v", MaxPitch, w.Player.Pitch)
	}

	w2 := twoSectorWorld(0, 10)
	ApplyInput(w2, Input{PitchDelta: -100}, 1.0)
	if w2.Player.Pitch != MinPitch {
		t.Errorf("expected pitch clamped to %v, got %v", MinPitch, w2.Player.Pitch)
	}
}

func TestDuckTogglesEyeHeight(t *testing.T) {
	w := twoSectorWorld(0, 10)
	ApplyInput(w, Input{Duck: true}, 1.0)
	if !w.Player.Ducking {
		t.Fatalf("expected Ducking true")
	}
	if eyeHeight(&w.Player) != world.DuckHeight {
		t.Errorf("expected duck height %v, got %v", world.DuckHeight, eyeHeight(&w.Player))
	}
}

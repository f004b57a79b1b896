package raycast

import (
	"testing"

	"github.com/Faultbox/sectorview/internal/texture"
	"github.com/Faultbox/sectorview/internal/world"
)

func square(x0, y0, size, floor, ceil float64, neighbors []int) *world.Sector {
	return &world.Sector{
		Floor: floor,
		Ceil:  ceil,
		Vertices: []world.Vertex{
			{X: x0, Y: y0},
			{X: x0 + size, Y: y0},
			{X: x0 + size, Y: y0 + size},
			{X: x0, Y: y0 + size},
			{X: x0, Y: y0},
		},
		Neighbors: neighbors,
	}
}

func newStoreFor(w *world.World) *texture.Store {
	world.AssignTextureHandles(w)
	return texture.NewStore(w.EdgeCounts())
}

func TestTraceClearSameSector(t *testing.T) {
	sec := square(0, 0, 10, 0, 10, []int{world.NoNeighbor, world.NoNeighbor, world.NoNeighbor, world.NoNeighbor})
	w := &world.World{Sectors: []*world.Sector{sec}}
	store := newStoreFor(w)

	out := Trace(w, store, [3]float64{1, 5, 1}, 0, [3]float64{8, 5, 8}, 0)
	if out.Kind != Clear {
		t.Fatalf("expected Clear, got %v", out.Kind)
	}
}

func TestTraceClearThroughPortal(t *testing.T) {
	// Two 10x10 squares sharing the edge x=10, both floor=0 ceil=10.
	a := square(0, 0, 10, 0, 10, []int{world.NoNeighbor, 1, world.NoNeighbor, world.NoNeighbor})
	b := &world.Sector{
		Floor: 0, Ceil: 10,
		Vertices: []world.Vertex{
			{X: 10, Y: 10}, {X: 10, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 10}, {X: 10, Y: 10},
		},
		Neighbors: []int{0, world.NoNeighbor, world.NoNeighbor, world.NoNeighbor},
	}
	w := &world.World{Sectors: []*world.Sector{a, b}}
	store := newStoreFor(w)

	out := Trace(w, store, [3]float64{5, 5, 5}, 0, [3]float64{15, 5, 5}, 1)
	if out.Kind != Clear {
		t.Fatalf("expected Clear through portal, got %v (%+v)", out.Kind, out)
	}
}

func TestTraceHitWall(t *testing.T) {
	sec := square(0, 0, 10, 0, 10, []int{world.NoNeighbor, world.NoNeighbor, world.NoNeighbor, world.NoNeighbor})
	w := &world.World{Sectors: []*world.Sector{sec}}
	store := newStoreFor(w)

	// Aim straight at the solid edge x=10.
	out := Trace(w, store, [3]float64{5, 5, 5}, 0, [3]float64{15, 5, 5}, 0)
	if out.Kind != Hit {
		t.Fatalf("expected Hit, got %v", out.Kind)
	}
}

func TestTraceUnreachableDifferentSector(t *testing.T) {
	sec := square(0, 0, 10, 0, 10, []int{world.NoNeighbor, world.NoNeighbor, world.NoNeighbor, world.NoNeighbor})
	w := &world.World{Sectors: []*world.Sector{sec}}
	store := newStoreFor(w)

	out := Trace(w, store, [3]float64{1, 5, 1}, 0, [3]float64{8, 5, 8}, 1)
	if out.Kind != Unreachable {
		t.Fatalf("expected Unreachable, got %v", out.Kind)
	}
}

func TestApplyLightNoOverflow(t *testing.T) {
	out := texture.ApplyLight([3]float64{255, 255, 255}, [3]float64{255, 255, 255})
	for i, c := range out {
		if c < 0 || c > 255 {
			t.Errorf("channel %d out of range: %v", i, c)
		}
	}
}

func TestDesaturateClampPreservesLuma(t *testing.T) {
	in := [3]float64{400, 100, 50}
	out := texture.DesaturateClamp(in)
	for i, c := range out {
		if c < 0 || c > 255 {
			t.Errorf("channel %d out of range after clamp: %v", i, c)
		}
	}

	lumaIn := 0.299*in[0] + 0.587*in[1] + 0.114*in[2]
	lumaOut := 0.299*out[0] + 0.587*out[1] + 0.114*out[2]
	if d := lumaOut - lumaIn; d < -1e-6 || d > 1e-6 {
		t.Errorf("luma not preserved: in %v, out %v", lumaIn, lumaOut)
	}
}

package texture

import (
	"path/filepath"
	"testing"
)

func TestNewStoreLayout(t *testing.T) {
	s := NewStore(EdgeCounts{4, 3})

	// sector 0: floor, ceil, 4 uppers, 4 lowers = 10
	// sector 1: floor, ceil, 3 uppers, 3 lowers = 8
	if got, want := len(s.Handles()), 18; got != want {
		t.Fatalf("expected %d allocated surfaces, got %d", want, got)
	}

	if _, err := s.Get(Handle{Sector: 0, Kind: Floor}); err != nil {
		t.Errorf("expected floor handle for sector 0: %v", err)
	}
	if _, err := s.Get(Handle{Sector: 1, Kind: Upper, Edge: 2}); err != nil {
		t.Errorf("expected upper edge 2 handle for sector 1: %v", err)
	}
	if _, err := s.Get(Handle{Sector: 1, Kind: Upper, Edge: 5}); err == nil {
		t.Error("expected error for out-of-range edge handle")
	}
}

func TestColdLoadMissingPPM(t *testing.T) {
	s := NewStore(EdgeCounts{1})
	h := Handle{Sector: 0, Kind: Floor}

	decode := func(path string) ([]byte, error) {
		return nil, errPPMNotFound
	}

	warnings := s.ColdLoad(map[Handle]SourcePaths{
		h: {Diffuse: "missing.ppm"},
	}, decode)

	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(warnings), warnings)
	}

	set, err := s.Get(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, b := range set.Diffuse {
		if b != 0 {
			t.Fatal("expected diffuse plane to remain zeroed when source is missing")
		}
	}
}

func TestColdLoadFillsPlane(t *testing.T) {
	s := NewStore(EdgeCounts{1})
	h := Handle{Sector: 0, Kind: Floor}

	fill := make([]byte, planeBytes)
	for i := range fill {
		fill[i] = byte(i % 256)
	}

	decode := func(path string) ([]byte, error) { return fill, nil }

	warnings := s.ColdLoad(map[Handle]SourcePaths{h: {Diffuse: "ok.ppm"}}, decode)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	set, _ := s.Get(h)
	if set.Diffuse[100] != fill[100] {
		t.Error("expected diffuse plane to be filled from decoded PPM")
	}
}

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "textures.bin")

	s := NewStore(EdgeCounts{2})
	h := Handle{Sector: 0, Kind: Floor}
	set, _ := s.Get(h)
	set.Lightmap[42] = 200

	if err := s.SaveCacheFile(path); err != nil {
		t.Fatalf("SaveCacheFile: %v", err)
	}

	s2 := NewStore(EdgeCounts{2})
	ok, err := s2.LoadCacheFile(path)
	if err != nil {
		t.Fatalf("LoadCacheFile: %v", err)
	}
	if !ok {
		t.Fatal("expected cache to load successfully")
	}

	set2, _ := s2.Get(h)
	if set2.Lightmap[42] != 200 {
		t.Error("expected lightmap byte to round-trip through the cache file")
	}
}

func TestCacheLayoutMismatchRegenerates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "textures.bin")

	s := NewStore(EdgeCounts{2})
	if err := s.SaveCacheFile(path); err != nil {
		t.Fatalf("SaveCacheFile: %v", err)
	}

	// A world with a different edge count has a different arena size.
	s2 := NewStore(EdgeCounts{2, 3})
	ok, err := s2.LoadCacheFile(path)
	if err != nil {
		t.Fatalf("LoadCacheFile: %v", err)
	}
	if ok {
		t.Error("expected size mismatch to report not-ok, triggering regeneration")
	}
}

func TestCacheMissingFile(t *testing.T) {
	s := NewStore(EdgeCounts{1})
	ok, err := s.LoadCacheFile("/nonexistent/textures.bin")
	if err != nil {
		t.Fatalf("unexpected error for missing cache file: %v", err)
	}
	if ok {
		t.Error("expected missing file to report not-ok")
	}
}

var errPPMNotFound = &ppmNotFoundError{}

type ppmNotFoundError struct{}

func (e *ppmNotFoundError) Error() string { return "ppm not found" }

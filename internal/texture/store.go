package texture

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// planeBytes is the byte size of one RGB 8:8:8 plane.
const planeBytes = PlaneSize * PlaneSize * 3

// TextureSet is the four fixed-size planes owned by a single surface:
// diffuse albedo, tangent-space normal map, the live lightmap, and a
// snapshot of the previous round's lightmap that each radiosity round
// reads from while writing the next one (§3, §4.6).
type TextureSet struct {
	Diffuse             []byte
	Normal              []byte
	Lightmap            []byte
	LightmapDiffuseOnly []byte
}

func newTextureSet() TextureSet {
	return TextureSet{
		Diffuse:             make([]byte, planeBytes),
		Normal:              make([]byte, planeBytes),
		Lightmap:            make([]byte, planeBytes),
		LightmapDiffuseOnly: make([]byte, planeBytes),
	}
}

var (
	// ErrCacheSizeMismatch indicates the on-disk cache's layout does not
	// match the world currently loaded; the store must regenerate from
	// cold start instead of trusting stale data.
	ErrCacheSizeMismatch = errors.New("texture: cache file size does not match current layout")
	// ErrCacheMagic indicates the file is not a texture cache at all.
	ErrCacheMagic = errors.New("texture: cache file has wrong magic header")
	// ErrCacheVersion indicates a cache written by an incompatible version.
	ErrCacheVersion = errors.New("texture: cache file version unsupported")
	// ErrUnknownHandle indicates a handle that does not address an
	// allocated slot in the arena.
	ErrUnknownHandle = errors.New("texture: handle does not address an allocated surface")
	// ErrPPMMissing is logged (not fatal) when a source image cannot be
	// read; the store leaves the TextureSet's diffuse/normal planes
	// zeroed and continues (§7: Resource kind, handled by T).
	ErrPPMMissing = errors.New("texture: source PPM missing")
)

const (
	cacheMagic   = "SVTC"
	cacheVersion = uint32(1)
)

// Store is the single contiguous arena holding every sector's TextureSet,
// laid out in order of increasing offset: for each sector, floor, ceiling,
// then N uppers, then N lowers (§4.4, §9).
type Store struct {
	order []Handle
	index map[Handle]int
	sets  []TextureSet
}

// EdgeCounts maps the sequential sector index to its current edge count.
// Used to compute the arena layout; must match the verified world (the
// edge count can grow when V splits concave sectors, so the store is
// always built after V has finished).
type EdgeCounts []int

// NewStore allocates a zero-filled arena for a world whose sectors have the
// given edge counts, in sector-index order.
func NewStore(edgeCounts EdgeCounts) *Store {
	s := &Store{index: make(map[Handle]int)}
	for sec, n := range edgeCounts {
		s.alloc(Handle{Sector: sec, Kind: Floor})
		s.alloc(Handle{Sector: sec, Kind: Ceiling})
		for e := 0; e < n; e++ {
			s.alloc(Handle{Sector: sec, Kind: Upper, Edge: e})
		}
		for e := 0; e < n; e++ {
			s.alloc(Handle{Sector: sec, Kind: Lower, Edge: e})
		}
	}
	return s
}

func (s *Store) alloc(h Handle) {
	s.index[h] = len(s.sets)
	s.order = append(s.order, h)
	s.sets = append(s.sets, newTextureSet())
}

// Get returns the TextureSet addressed by h. Write access is used only by
// the baker; read access is used by the raycaster and portal renderer.
func (s *Store) Get(h Handle) (*TextureSet, error) {
	i, ok := s.index[h]
	if !ok {
		return nil, fmt.Errorf("%w: %+v", ErrUnknownHandle, h)
	}
	return &s.sets[i], nil
}

// PPMDecoder decodes a 24-bpp binary PPM file into a PlaneSize*PlaneSize*3
// RGB byte-major buffer. Image decoding is an external collaborator
// (§1 OUT OF SCOPE); the store only consumes the already-decoded bytes.
type PPMDecoder func(path string) ([]byte, error)

// SourcePaths names the diffuse/normal PPM files feeding one surface's
// cold-start fill.
type SourcePaths struct {
	Diffuse string
	Normal  string
}

// ColdLoad fills diffuse/normal planes from source PPM files, leaving
// lightmaps zeroed (they are filled later by the baker). A handle with no
// entry in paths is left zeroed without a warning; a file that fails to
// decode is reported in the returned warnings (for the caller to log) and
// its plane is left zeroed rather than failing the whole load.
func (s *Store) ColdLoad(paths map[Handle]SourcePaths, decode PPMDecoder) []error {
	var warnings []error
	for h, p := range paths {
		set, err := s.Get(h)
		if err != nil {
			warnings = append(warnings, err)
			continue
		}
		if p.Diffuse != "" {
			pix, err := decode(p.Diffuse)
			if err != nil {
				warnings = append(warnings, fmt.Errorf("%w: %s: %v", ErrPPMMissing, p.Diffuse, err))
			} else if len(pix) == planeBytes {
				copy(set.Diffuse, pix)
			}
		}
		if p.Normal != "" {
			pix, err := decode(p.Normal)
			if err != nil {
				warnings = append(warnings, fmt.Errorf("%w: %s: %v", ErrPPMMissing, p.Normal, err))
			} else if len(pix) == planeBytes {
				copy(set.Normal, pix)
			}
		}
	}
	return warnings
}

// expectedCacheSize returns the exact byte size a cache file for this
// arena layout must have, header included.
func (s *Store) expectedCacheSize() int64 {
	header := int64(len(cacheMagic) + 4 + 4 + 4)
	perSet := int64(planeBytes) * 4
	return header + perSet*int64(len(s.sets))
}

// LoadCacheFile attempts a warm start from path. It returns ok==false
// (never an error) whenever the file is absent, too short, magic/version
// mismatched, or sized for a different arena layout — in every such case
// the caller must fall back to cold start plus bake (§4.4, §7).
func (s *Store) LoadCacheFile(path string) (ok bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("opening texture cache %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat texture cache %s: %w", path, err)
	}
	if info.Size() != s.expectedCacheSize() {
		return false, nil
	}

	r := bufio.NewReader(f)

	magic := make([]byte, len(cacheMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return false, nil
	}
	if string(magic) != cacheMagic {
		return false, nil
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return false, nil
	}
	if version != cacheVersion {
		return false, nil
	}

	var numSets uint32
	if err := binary.Read(r, binary.LittleEndian, &numSets); err != nil {
		return false, nil
	}
	var planeSize uint32
	if err := binary.Read(r, binary.LittleEndian, &planeSize); err != nil {
		return false, nil
	}
	if int(numSets) != len(s.sets) || planeSize != PlaneSize {
		return false, nil
	}

	for i := range s.sets {
		set := &s.sets[i]
		for _, plane := range []*[]byte{&set.Diffuse, &set.Normal, &set.Lightmap, &set.LightmapDiffuseOnly} {
			if _, err := io.ReadFull(r, *plane); err != nil {
				return false, fmt.Errorf("reading texture cache %s: %w", path, err)
			}
		}
	}

	return true, nil
}

// SaveCacheFile writes the arena to path as a versioned binary cache,
// exact concatenation of all sectors' TextureSets in arena order
// (floor, ceiling, uppers, lowers) per §6.
func (s *Store) SaveCacheFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating texture cache %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	if _, err := w.WriteString(cacheMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, cacheVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s.sets))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(PlaneSize)); err != nil {
		return err
	}

	for i := range s.sets {
		set := &s.sets[i]
		for _, plane := range [][]byte{set.Diffuse, set.Normal, set.Lightmap, set.LightmapDiffuseOnly} {
			if _, err := w.Write(plane); err != nil {
				return fmt.Errorf("writing texture cache %s: %w", path, err)
			}
		}
	}

	return w.Flush()
}

// Handles returns the arena's handles in layout order, useful for the
// baker to iterate every surface deterministically.
func (s *Store) Handles() []Handle {
	return s.order
}

package texture

import (
	"fmt"
	"path/filepath"
)

// BuildSourcePaths maps every handle to the diffuse/normal PPM file names
// ColdLoad expects to find under dir, using a deterministic
// sector/kind[/edge] naming scheme: "sector<N>_<kind>[_<edge>]_diffuse.ppm"
// and the "_normal.ppm" counterpart. Missing files are left for ColdLoad to
// report and skip; this function only names them.
func BuildSourcePaths(dir string, handles []Handle) map[Handle]SourcePaths {
	out := make(map[Handle]SourcePaths, len(handles))
	for _, h := range handles {
		base := fmt.Sprintf("sector%d_%s", h.Sector, h.Kind)
		if h.Kind == Upper || h.Kind == Lower {
			base = fmt.Sprintf("%s_%d", base, h.Edge)
		}
		out[h] = SourcePaths{
			Diffuse: filepath.Join(dir, base+"_diffuse.ppm"),
			Normal:  filepath.Join(dir, base+"_normal.ppm"),
		}
	}
	return out
}

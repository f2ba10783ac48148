package naming

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// The version scan looks for a literal _V<digits> marker regardless of where
// the configured pattern places its version token. The panel has always
// detected versions this way, so folders written under older patterns keep
// counting up correctly. Generalizing the scan to the full pattern would
// change which files count as earlier versions; keep the marker fixed.
var versionMarkerRe = regexp.MustCompile(`(?i)_v(\d+)`)

// VersionResolution is the outcome of resolving the next free version in a
// folder. Consumed immediately by the caller; not retained.
type VersionResolution struct {
	Version  int
	Filename string
	FullPath string
}

// ResolveNextVersion scans folder for files that begin with baseName and
// carry a _V<digits> marker, and returns the highest version found plus one.
// A missing folder is not an error: the first export there is version 1.
// Directories and files under other base names are ignored.
func ResolveNextVersion(fsys afero.Fs, folder, baseName string) (int, error) {
	exists, err := afero.DirExists(fsys, folder)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", folder, err)
	}
	if !exists {
		return 1, nil
	}

	entries, err := afero.ReadDir(fsys, folder)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", folder, err)
	}

	highest := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if len(name) < len(baseName) || !strings.EqualFold(name[:len(baseName)], baseName) {
			continue
		}

		rest := name[len(baseName):]
		if dot := strings.LastIndex(rest, "."); dot >= 0 {
			rest = rest[:dot]
		}

		m := versionMarkerRe.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err != nil || v < 0 {
			continue
		}
		if v > highest {
			highest = v
		}
	}

	return highest + 1, nil
}

// Resolve combines the version scan with pattern rendering and returns the
// final filename and full output path for the next export of baseName.
func Resolve(fsys afero.Fs, folder, baseName, ext, pattern string, now time.Time) (VersionResolution, error) {
	version, err := ResolveNextVersion(fsys, folder, baseName)
	if err != nil {
		return VersionResolution{}, err
	}

	filename := RenderPattern(pattern, version, baseName, now) + "." + ext
	return VersionResolution{
		Version:  version,
		Filename: filename,
		FullPath: filepath.Join(folder, filename),
	}, nil
}

package ldraw

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DiskResolver resolves file references against an LDraw library on
// disk. BasePaths are tried in order, so earlier entries take priority.
type DiskResolver struct {
	BasePaths []string
}

// NewDiskResolver returns a resolver searching the standard library
// folders under libraryPath followed by any additional paths. The
// resolution setting puts the matching primitive folder first.
func NewDiskResolver(libraryPath string, additionalPaths []string, settings *GeometrySettings) *DiskResolver {
	var paths []string
	switch settings.Resolution {
	case ResolutionLow:
		paths = append(paths, filepath.Join(libraryPath, "p", "8"))
	case ResolutionHigh:
		paths = append(paths, filepath.Join(libraryPath, "p", "48"))
	}
	paths = append(paths,
		filepath.Join(libraryPath, "p"),
		filepath.Join(libraryPath, "parts"),
		filepath.Join(libraryPath, "parts", "s"),
	)
	if settings.UnofficialParts {
		paths = append(paths,
			filepath.Join(libraryPath, "UnOfficial", "p"),
			filepath.Join(libraryPath, "UnOfficial", "parts"),
			filepath.Join(libraryPath, "UnOfficial", "parts", "s"),
		)
	}
	paths = append(paths, additionalPaths...)
	return &DiskResolver{BasePaths: paths}
}

// Resolve reads the first matching file under the base paths. Absolute
// filenames are read directly, retrying the base name case
// insensitively since lookups lowercase all names.
func (r *DiskResolver) Resolve(filename string) ([]byte, error) {
	if filepath.IsAbs(filename) {
		if data, err := os.ReadFile(filename); err == nil {
			return data, nil
		}
		if data, ok := readFileFold(filename); ok {
			return data, nil
		}
	}
	for _, base := range r.BasePaths {
		if data, err := os.ReadFile(filepath.Join(base, filename)); err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("%q not found in the library paths: %w", filename, os.ErrNotExist)
}

// readFileFold reads path matching its base name case insensitively.
func readFileFold(path string) ([]byte, bool) {
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		return nil, false
	}
	base := filepath.Base(path)
	for _, entry := range entries {
		if !strings.EqualFold(entry.Name(), base) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(filepath.Dir(path), entry.Name()))
		if err == nil {
			return data, true
		}
	}
	return nil, false
}

// IoResolver resolves the model of a Bricklink Studio .io archive and
// everything else from the disk library.
type IoResolver struct {
	modelPath string
	model     []byte
	disk      *DiskResolver
}

// NewIoResolver opens the archive at path and extracts its model.ldr
// entry.
func NewIoResolver(path string, disk *DiskResolver) (*IoResolver, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open studio archive: %w", err)
	}
	defer archive.Close()

	entry, err := archive.Open("model.ldr")
	if err != nil {
		return nil, fmt.Errorf("open model.ldr in %s: %w", path, err)
	}
	defer entry.Close()

	model, err := io.ReadAll(entry)
	if err != nil {
		return nil, fmt.Errorf("read model.ldr in %s: %w", path, err)
	}

	return &IoResolver{
		modelPath: NormalizeName(path),
		model:     bytes.TrimPrefix(model, utf8BOM),
		disk:      disk,
	}, nil
}

// Resolve returns the embedded model for the archive path itself and
// falls back to the disk library for all other names.
func (r *IoResolver) Resolve(filename string) ([]byte, error) {
	if NormalizeName(filename) == r.modelPath {
		return r.model, nil
	}
	return r.disk.Resolve(filename)
}

// FindLibrary probes the usual LDraw library install locations and
// returns the first containing LDConfig.ldr, or "" if there is none.
func FindLibrary() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	var dirs []string
	switch runtime.GOOS {
	case "windows":
		dirs = []string{
			`C:\LDraw`,
			`C:\Program Files\LDraw`,
			`C:\Program Files (x86)\LDraw`,
			`C:\Program Files\Studio 2.0\ldraw`,
			filepath.Join(home, "Documents", "LDraw"),
			filepath.Join(home, "Documents", "ldraw"),
			`C:\Users\Public\Documents\LDraw`,
			`C:\Users\Public\Documents\ldraw`,
		}
	case "darwin":
		dirs = []string{
			filepath.Join(home, "ldraw"),
			"/Applications/LDraw",
			"/Applications/ldraw",
			"/usr/local/share/ldraw",
			"/Applications/Studio 2.0/ldraw",
			filepath.Join(home, "Documents", "ldraw"),
		}
	default:
		dirs = []string{
			filepath.Join(home, "LDraw"),
			filepath.Join(home, "ldraw"),
			filepath.Join(home, ".LDraw"),
			filepath.Join(home, ".ldraw"),
			"/usr/local/share/ldraw",
		}
	}

	for _, dir := range dirs {
		if _, err := os.Stat(filepath.Join(dir, "LDConfig.ldr")); err == nil {
			return dir
		}
	}
	return ""
}

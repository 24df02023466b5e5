package ldraw

import (
	"strings"

	"go.uber.org/zap"
)

// SourceFile holds the commands parsed from a single LDraw source file
// or MPD subfile block.
type SourceFile struct {
	Cmds []Command
}

// Path is an LDraw file or submodel name together with its normalized
// form. Subfile references are case insensitive and may use either
// path separator, so source files are keyed by the normalized name.
type Path struct {
	Name       string
	Normalized string
}

// NewPath builds a Path for name, caching the normalization.
func NewPath(name string) Path {
	return Path{Name: name, Normalized: NormalizeName(name)}
}

// NormalizeName lowercases a subfile reference and rewrites path
// separators to single forward slashes. The official parts library can
// be assumed to use lowercase names.
func NormalizeName(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "\\", "/")
	return strings.ReplaceAll(s, "//", "/")
}

// Resolver loads the raw content of referenced files for Parse.
//
// Implementations resolving against the official LDraw catalog must
// keep all canonical library paths in scope, as subfile references can
// be relative to any of them:
//
//	p/        part primitives
//	p/48/     high resolution primitives
//	parts/    main catalog of parts
//	parts/s/  subparts
type Resolver interface {
	// Resolve returns the content of filename as UTF-8 bytes without a
	// byte order mark. Line endings may be Unix or Windows style.
	// The filename is given in normalized form first and retried with
	// its exact spelling if the normalized form cannot be resolved.
	Resolve(filename string) ([]byte, error)
}

// SourceMap is a collection of source files accessible by their
// reference filename.
type SourceMap struct {
	files map[string]*SourceFile
}

// NewSourceMap constructs an empty source map.
func NewSourceMap() *SourceMap {
	return &SourceMap{files: make(map[string]*SourceFile)}
}

// Get returns the source file registered under filename. The lookup
// normalizes case and path separators.
func (m *SourceMap) Get(filename string) (*SourceFile, bool) {
	f, ok := m.files[NormalizeName(filename)]
	return f, ok
}

// Insert adds a source file under the given path and registers any MPD
// subfile blocks it contains. It returns the name of the main model,
// which is the first FILE block for multi-part documents and the path
// itself otherwise.
func (m *SourceMap) Insert(path Path, file *SourceFile) string {
	blocks := splitMPD(file.Cmds)

	// Some files are referenced in their entirety even
	// if they contain multiple models.
	m.files[path.Normalized] = file

	if len(blocks) == 0 {
		return path.Name
	}
	for _, b := range blocks {
		m.files[NormalizeName(b.name)] = b.file
	}
	return blocks[0].name
}

func (m *SourceMap) queueSubfiles(file *SourceFile, stack *[]string) {
	for _, cmd := range file.Cmds {
		sfr, ok := cmd.(SubFileRefCmd)
		if !ok {
			continue
		}
		// Queue the file for loading if we haven't already.
		if _, ok := m.Get(sfr.File); !ok {
			*stack = append(*stack, sfr.File)
		}
	}
}

type mpdBlock struct {
	name string
	file *SourceFile
}

// splitMPD splits a multi-part document into its FILE blocks. Each
// block starts at a FILE command and continues until the next FILE or
// NOFILE command.
func splitMPD(cmds []Command) []mpdBlock {
	var blocks []mpdBlock
	for i, cmd := range cmds {
		fileCmd, ok := cmd.(FileCmd)
		if !ok {
			continue
		}
		end := i + 1
		for end < len(cmds) && !endsBlock(cmds[end]) {
			end++
		}
		blocks = append(blocks, mpdBlock{
			name: fileCmd.File,
			file: &SourceFile{Cmds: cmds[i:end]},
		})
	}
	return blocks
}

func endsBlock(cmd Command) bool {
	switch cmd.(type) {
	case FileCmd, NoFileCmd:
		return true
	}
	return false
}

// Parse loads path via resolver and then recursively loads and parses
// every subfile it references, collecting the results into sources.
// It returns the name of the main model, which can be used to look up
// the root file in sources. Files that fail to resolve are logged and
// treated as empty so that partial models can still be imported.
func Parse(path string, resolver Resolver, sources *SourceMap) string {
	// A stack avoids function recursion for deeply nested models.
	var stack []string

	log.Debug("processing root file", zap.String("path", path))
	// Use the root path as given without any normalization.
	root := loadFile(NewPath(path), resolver, sources, &stack)

	for len(stack) > 0 {
		filename := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := sources.Get(filename); ok {
			continue
		}
		log.Debug("processing subfile", zap.String("file", filename))
		loadFile(NewPath(filename), resolver, sources, &stack)
	}

	return root
}

func loadFile(path Path, resolver Resolver, sources *SourceMap, stack *[]string) string {
	// Resolve with the normalized name so lookups behave the same on
	// case sensitive filesystems. Model paths outside the library keep
	// their exact spelling, so retry with the name as written.
	content, err := resolver.Resolve(path.Normalized)
	if err != nil && path.Name != path.Normalized {
		content, err = resolver.Resolve(path.Name)
	}
	if err != nil {
		// Parse the file as empty to allow partial imports.
		log.Error("unable to resolve file",
			zap.String("file", path.Name), zap.Error(err))
		content = nil
	}
	file := &SourceFile{Cmds: ParseCommands(content)}

	sources.queueSubfiles(file, stack)
	return sources.Insert(path, file)
}

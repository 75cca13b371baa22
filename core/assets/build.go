package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/npillmayer/sbixer/core"
	"github.com/npillmayer/sbixer/core/glyphname"
)

// Reasons for ignoring a file. They are reported to users verbatim.
const (
	ReasonDirectory  = "is a directory"
	ReasonNotPNG     = "is not of type PNG"
	ReasonNotImage   = "is not of type SVG or PNG"
	ReasonFileName   = "invalid file name"
	ReasonGlyphName  = "not a valid emoji name"
	ReasonSizes      = "missing/invalid sizes"
	ReasonUnreadable = "cannot be read"
)

// Ignored is a file which has been ignored, together with the reason.
type Ignored struct {
	Path   string
	Reason string
}

func (ig Ignored) String() string {
	return fmt.Sprintf("'%s' %s", ig.Path, ig.Reason)
}

// Validator decides if a canonical glyph name denotes a glyph of the base
// font. It is usually the IsValid method of a glyph registry.
type Validator func(name string) bool

type entry struct {
	path  string
	isDir bool
}

// Build scans a directory of asset files and returns the complete asset sets
// found, together with a list of all ignored files.
//
// If validate is not nil, glyph names it rejects are ignored as
// ReasonGlyphName. Build is the only place where assets are checked against
// the glyphs of the base font.
//
// If not a single complete set is found, Build returns an error wrapping
// core.ErrEmptyAssetSet, together with the list of ignored files.
// Build does not modify anything on disk.
func Build(dir string, validate Validator) (*Set, []Ignored, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, core.WrapError(err, core.EMISSING, "cannot read asset directory %s", dir)
	}
	entries := make([]entry, len(dirents))
	for i, d := range dirents {
		path := filepath.Join(dir, d.Name())
		isDir := d.IsDir()
		if fi, err := os.Stat(path); err == nil { // follow symlinks
			isDir = fi.IsDir()
		}
		entries[i] = entry{path: path, isDir: isDir}
	}
	set, ignored := collect(entries, validate)
	tracer().Infof("%d complete asset sets in %s, %d files ignored", set.Len(), dir, len(ignored))
	if set.Len() == 0 {
		err = fmt.Errorf("%w: %s", core.ErrEmptyAssetSet, dir)
		return set, ignored, core.WrapError(err, core.EINVALID,
			"no complete asset sets found in %s", dir)
	}
	return set, ignored, nil
}

// collect groups entries into asset sets. The order of entries does not
// matter: entries are processed in path order, so if two files map to the
// same glyph and size, the one with the greater path wins.
func collect(entries []entry, validate Validator) (*Set, []Ignored) {
	sorted := make([]entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].path < sorted[j].path })
	var ignored []Ignored
	glyphs := make(map[string]map[int]string)
	for _, e := range sorted {
		if e.isDir {
			ignored = append(ignored, Ignored{e.path, ReasonDirectory})
			continue
		}
		name, size, reason := parseFileName(filepath.Base(e.path))
		if reason == "" && validate != nil && !validate(name) {
			reason = ReasonGlyphName
		}
		if reason != "" {
			tracer().Debugf("ignoring %s: %s", e.path, reason)
			ignored = append(ignored, Ignored{e.path, reason})
			continue
		}
		if glyphs[name] == nil {
			glyphs[name] = make(map[int]string)
		}
		if prev, dup := glyphs[name][size]; dup {
			tracer().Debugf("asset %s replaces %s", e.path, prev)
		}
		glyphs[name][size] = e.path
	}
	names := make([]string, 0, len(glyphs))
	for name := range glyphs {
		names = append(names, name)
	}
	sort.Strings(names)
	set := NewSet()
	for _, name := range names {
		paths := glyphs[name]
		if set.Add(name, paths) {
			continue
		}
		// Without all sizes, some sizes of the glyph would still show up
		// as the original Apple emoji.
		for _, size := range sortedSizes(paths) {
			ignored = append(ignored, Ignored{paths[size], ReasonSizes})
		}
	}
	return set, ignored
}

// parseFileName splits an asset file name into a canonical glyph name and
// a size. If the file name is not usable, the reason is returned.
func parseFileName(filename string) (string, int, string) {
	ext := filepath.Ext(filename)
	if !strings.EqualFold(ext, FileExt) {
		return "", 0, ReasonNotPNG
	}
	stem := strings.TrimSuffix(filename, ext)
	sp := strings.LastIndexByte(stem, ' ')
	if sp < 0 {
		return "", 0, ReasonFileName
	}
	size, ok := parseSize(stem[sp+1:])
	if !ok {
		return "", 0, ReasonFileName
	}
	name, err := glyphname.Normalize(stem[:sp])
	if err != nil {
		if !errors.Is(err, core.ErrInvalidNameFormat) {
			tracer().Errorf("unexpected error for %s: %v", filename, err)
		}
		return "", 0, ReasonGlyphName
	}
	return name, size, ""
}

// parseSize accepts plain decimal digits without a leading zero, so every
// size has exactly one spelling.
func parseSize(s string) (int, bool) {
	if s == "" || s[0] == '0' {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	size, err := strconv.Atoi(s)
	return size, err == nil
}

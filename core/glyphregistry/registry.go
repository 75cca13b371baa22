package glyphregistry

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/derekparker/trie"
	"github.com/npillmayer/sbixer/core"
	"github.com/npillmayer/sbixer/core/fonttree"
	"github.com/npillmayer/sbixer/core/glyphname"
)

// Registry is a type for holding the glyph names of a base font.
// A registry is loaded once and does not change afterwards, unless it is
// invalidated explicitly.
type Registry struct {
	sync.Mutex
	cachePath string
	names     *trie.Trie
	sorted    []string
}

// New creates an empty registry, backed by a cache file at cachePath.
// If cachePath is empty, the registry will not use a cache.
func New(cachePath string) *Registry {
	return &Registry{cachePath: cachePath}
}

// CachePath returns the location of the cache artifact.
func (r *Registry) CachePath() string {
	return r.cachePath
}

// Load fills the registry, if this hasn't been done yet. It prefers the
// cache artifact; if the cache does not exist or is empty, the glyph names
// are read from the GlyphOrder table of the font tree at treePath, and the
// cache is (re-)written.
//
// Subsequent calls to Load are no-ops until the registry is invalidated.
func (r *Registry) Load(treePath string) error {
	r.Lock()
	defer r.Unlock()
	if r.names != nil {
		return nil
	}
	names, ok := r.readCache()
	if !ok {
		var err error
		if names, err = fonttree.ReadGlyphOrderFile(treePath); err != nil {
			return err
		}
		r.writeCache(names)
	}
	r.fill(names)
	tracer().Infof("glyph registry holds %d names", len(r.sorted))
	return nil
}

// Loaded is true if the registry has been loaded.
func (r *Registry) Loaded() bool {
	r.Lock()
	defer r.Unlock()
	return r.names != nil
}

func (r *Registry) fill(names []string) {
	r.names = trie.New()
	r.sorted = make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := r.names.Find(n); ok {
			continue
		}
		r.names.Add(n, nil)
		r.sorted = append(r.sorted, n)
	}
	sort.Strings(r.sorted)
}

// IsValid is true if name is a glyph name of the base font.
// It is false for every name if the registry has not been loaded.
func (r *Registry) IsValid(name string) bool {
	r.Lock()
	defer r.Unlock()
	if r.names == nil {
		return false
	}
	_, ok := r.names.Find(name)
	return ok
}

// Len returns the number of glyph names in the registry.
func (r *Registry) Len() int {
	r.Lock()
	defer r.Unlock()
	return len(r.sorted)
}

// Names returns all glyph names in lexical order.
func (r *Registry) Names() []string {
	r.Lock()
	defer r.Unlock()
	names := make([]string, len(r.sorted))
	copy(names, r.sorted)
	return names
}

// Variants returns all glyph names sharing the code points of a given
// glyph name, i.e., the name itself plus all its modifier variants.
//
//	Variants("1f385") == [ "u1F385", "u1F385.1", "u1F385.2", … ]
func (r *Registry) Variants(name string) []string {
	canonical, err := glyphname.Normalize(name)
	if err != nil {
		return nil
	}
	base := glyphname.Base(canonical)
	r.Lock()
	defer r.Unlock()
	if r.names == nil {
		return nil
	}
	var variants []string
	for _, n := range r.names.PrefixSearch(base) {
		if n == base || strings.HasPrefix(n, base+".") {
			variants = append(variants, n)
		}
	}
	sort.Strings(variants)
	return variants
}

// Invalidate empties the registry and deletes the cache artifact. The next
// call to Load will read the glyph names from a font tree again.
func (r *Registry) Invalidate() error {
	r.Lock()
	defer r.Unlock()
	r.names, r.sorted = nil, nil
	if r.cachePath == "" {
		return nil
	}
	err := os.Remove(r.cachePath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return core.WrapError(err, core.EINVALID, "cannot delete glyph cache %s", r.cachePath)
	}
	tracer().Debugf("glyph registry invalidated")
	return nil
}

// --- Cache artifact --------------------------------------------------------

func (r *Registry) readCache() ([]string, bool) {
	if r.cachePath == "" {
		return nil, false
	}
	f, err := os.Open(r.cachePath)
	if err != nil {
		return nil, false
	}
	defer f.Close()
	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			names = append(names, line)
		}
	}
	if err = scanner.Err(); err != nil {
		tracer().Errorf("ignoring unreadable glyph cache %s: %v", r.cachePath, err)
		return nil, false
	}
	if len(names) == 0 {
		return nil, false
	}
	tracer().Debugf("read %d glyph names from cache %s", len(names), r.cachePath)
	return names, true
}

// writeCache persists the glyph names. Concurrent writers from different
// processes race; the last one wins, which is fine as content is always
// derived from the same base font. A failure to write the cache is not an
// error for the caller.
func (r *Registry) writeCache(names []string) {
	if r.cachePath == "" {
		return
	}
	dir := filepath.Dir(r.cachePath)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.cachePath)+".*.tmp")
	if err != nil {
		tracer().Errorf("cannot create glyph cache: %v", err)
		return
	}
	w := bufio.NewWriter(tmp)
	for _, n := range names {
		w.WriteString(n)
		w.WriteByte('\n')
	}
	err = w.Flush()
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), r.cachePath)
	}
	if err != nil {
		os.Remove(tmp.Name())
		tracer().Errorf("cannot write glyph cache %s: %v", r.cachePath, err)
		return
	}
	tracer().Debugf("cached %d glyph names in %s", len(names), r.cachePath)
}

package assets

import (
	"fmt"
	"sort"

	"github.com/emirpasic/gods/maps/treemap"
)

// Sizes are the pixel sizes of the bitmap strikes of the emoji font, in
// strike order. The order is significant: the i-th strike of a font holds
// the bitmaps of size Sizes[i].
var Sizes = []int{20, 26, 32, 40, 48, 52, 64, 96, 160}

// FileExt is the file extension of asset files.
const FileExt = ".png"

// FileName returns the file name of the asset for a glyph name at a given size.
func FileName(name string, size int) string {
	return fmt.Sprintf("%s %d%s", name, size, FileExt)
}

// IsSize is true if size is one of the strike sizes.
func IsSize(size int) bool {
	for _, s := range Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// complete is true if paths holds exactly one asset for every strike size.
func complete(paths map[int]string) bool {
	if len(paths) != len(Sizes) {
		return false
	}
	for _, s := range Sizes {
		if _, ok := paths[s]; !ok {
			return false
		}
	}
	return true
}

// Set is a set of complete glyph assets: for every glyph name it holds one
// asset path per strike size. Sets iterate in lexical order of glyph names.
type Set struct {
	glyphs *treemap.Map // name -> map[int]string
}

// NewSet creates an empty asset set.
func NewSet() *Set {
	return &Set{glyphs: treemap.NewWithStringComparator()}
}

// Add puts the assets of a glyph into the set, replacing any previous entry
// for the same name. Incomplete assets are not added and Add returns false.
func (s *Set) Add(name string, paths map[int]string) bool {
	if !complete(paths) {
		return false
	}
	p := make(map[int]string, len(paths))
	for size, path := range paths {
		p[size] = path
	}
	s.glyphs.Put(name, p)
	return true
}

// Len returns the number of glyphs in the set.
func (s *Set) Len() int {
	return s.glyphs.Size()
}

// Names returns the glyph names of the set in lexical order.
func (s *Set) Names() []string {
	names := make([]string, 0, s.glyphs.Size())
	for _, k := range s.glyphs.Keys() {
		names = append(names, k.(string))
	}
	return names
}

// Contains is true if the set holds assets for a glyph.
func (s *Set) Contains(name string) bool {
	_, found := s.glyphs.Get(name)
	return found
}

// Path returns the asset path of a glyph at a given size.
func (s *Set) Path(name string, size int) (string, bool) {
	v, found := s.glyphs.Get(name)
	if !found {
		return "", false
	}
	path, ok := v.(map[int]string)[size]
	return path, ok
}

// Each calls f for every glyph of the set, in lexical order of names.
// Iteration stops if f returns an error, which is passed on to the caller.
// f must not modify paths.
func (s *Set) Each(f func(name string, paths map[int]string) error) error {
	it := s.glyphs.Iterator()
	for it.Next() {
		if err := f(it.Key().(string), it.Value().(map[int]string)); err != nil {
			return err
		}
	}
	return nil
}

// Map returns a copy of the set as a plain map.
func (s *Set) Map() map[string]map[int]string {
	m := make(map[string]map[int]string, s.glyphs.Size())
	s.Each(func(name string, paths map[int]string) error {
		p := make(map[int]string, len(paths))
		for size, path := range paths {
			p[size] = path
		}
		m[name] = p
		return nil
	})
	return m
}

// sortedSizes returns the sizes of a size→path map in ascending order.
func sortedSizes(paths map[int]string) []int {
	sizes := make([]int, 0, len(paths))
	for size := range paths {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)
	return sizes
}

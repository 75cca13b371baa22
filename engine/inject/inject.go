package inject

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/npillmayer/sbixer/core"
	"github.com/npillmayer/sbixer/core/assets"
	"github.com/npillmayer/sbixer/core/fonttree"
)

// patch is a pending payload replacement.
type patch struct {
	payload *fonttree.Node
	data    []byte
}

// Inject writes the bitmaps of an asset set into the sbix strikes of a font
// tree. It returns the names of the patched glyphs in lexical order.
//
// A font tree must have exactly one strike per asset size. Every glyph of
// the set must have a bitmap entry in every strike. If Inject fails, the tree
// has not been modified.
func Inject(tree *fonttree.Tree, set *assets.Set) ([]string, error) {
	strikes, err := tree.Strikes()
	if err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "cannot query bitmap strikes")
	}
	if len(strikes) == 0 {
		return nil, corrupt(fmt.Errorf("%w: font has no sbix strikes", core.ErrMissingBitmapStrikes))
	}
	if len(strikes) != len(assets.Sizes) {
		return nil, corrupt(fmt.Errorf("%w: font has %d strikes, expected %d",
			core.ErrMissingBitmapStrikes, len(strikes), len(assets.Sizes)))
	}
	for i, strike := range strikes {
		if ppem, ok := strike.PPEM(); !ok || ppem != assets.Sizes[i] {
			tracer().Infof("strike #%d declares ppem %d, receives assets of size %d",
				i, ppem, assets.Sizes[i])
		}
	}
	patches := make([]patch, 0, set.Len()*len(strikes))
	err = set.Each(func(name string, paths map[int]string) error {
		for i, strike := range strikes {
			size := assets.Sizes[i]
			glyph := strike.Glyph(name)
			if glyph == nil {
				return corrupt(fmt.Errorf("%w: %s in strike of size %d",
					core.ErrGlyphNotFoundInStrike, name, size))
			}
			payload := fonttree.Payload(glyph)
			if payload == nil {
				return corrupt(fmt.Errorf("%w: %s has no bitmap in strike of size %d",
					core.ErrGlyphNotFoundInStrike, name, size))
			}
			data, err := os.ReadFile(paths[size])
			if err != nil {
				return core.WrapError(err, core.EMISSING, "cannot read asset %s", paths[size])
			}
			patches = append(patches, patch{payload: payload, data: data})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, p := range patches {
		p.payload.SetText(hex.EncodeToString(p.data))
	}
	names := set.Names()
	tracer().Infof("injected %d glyphs into %d strikes", len(names), len(strikes))
	return names, nil
}

// InjectFile reads a font tree from file in, injects the bitmaps of an asset
// set and writes the result to file out. No output is written if any step
// fails.
func InjectFile(in, out string, set *assets.Set) ([]string, error) {
	tree, err := fonttree.ParseFile(in)
	if err != nil {
		return nil, err
	}
	names, err := Inject(tree, set)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("writing patched font tree %s", out)
	if err = tree.WriteFile(out); err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "cannot write font tree %s", out)
	}
	return names, nil
}

func corrupt(err error) error {
	return core.WrapError(err, core.ECORRUPT, "%v; %s", err, core.RegenerateHint)
}

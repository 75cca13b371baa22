package locate

import (
	"os"
	"path/filepath"

	"github.com/npillmayer/sbixer/core"
	"github.com/npillmayer/schuko"
)

// Sub-fonts of Apple's emoji font container, in container order.
const (
	MainFont = "AppleColorEmoji"
	UIFont   = ".AppleColorEmojiUI"
)

// SubFonts lists the fonts contained in the emoji font container.
var SubFonts = []string{MainFont, UIFont}

// DefaultAppKey is the application key if none is configured.
const DefaultAppKey = "sbixer"

// Names of files and folders in the save directory.
const (
	baseFolder      = "base-emoji-font"
	buildFolder     = "build"
	assetsFolder    = "generated-assets"
	generatedFont   = "Apple Color Emoji.ttc"
	baseContainer   = "base-emoji-font.ttc"
	glyphNamesCache = "glyph-names.txt"
)

// Paths is the layout of the working set in the save directory.
//
//	<save>/
//	  Apple Color Emoji.ttc           generated font
//	  generated-assets/               sized PNG assets
//	  base-emoji-font/
//	    <font>.ttx                    base trees
//	    glyph-names.txt               glyph registry cache
//	    base-emoji-font.ttc, <font>.ttf, <font>-tmp.ttx   intermediate
//	  build/
//	    <font>-user.ttx, <font>-user.ttf                  intermediate
type Paths struct {
	Save string
}

// NewPaths creates the layout for a save directory.
func NewPaths(save string) Paths {
	return Paths{Save: save}
}

// FromConfig determines the save directory from a configuration. If key
// 'save-dir' is not set, the save directory is a folder named after
// 'app-key' in the user's config directory.
func FromConfig(conf schuko.Configuration) (Paths, error) {
	if dir := conf.GetString("save-dir"); dir != "" {
		tracer().Debugf("config[save-dir] = %s", dir)
		return NewPaths(dir), nil
	}
	appkey := conf.GetString("app-key")
	tracer().Debugf("config[app-key] = %s", appkey)
	if appkey == "" {
		tracer().Infof("application key is not set, using %q", DefaultAppKey)
		appkey = DefaultAppKey
	}
	uconfdir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, core.WrapError(err, core.EMISSING, "user config directory not set")
	}
	return NewPaths(filepath.Join(uconfdir, appkey)), nil
}

// Base is the folder of the base files.
func (p Paths) Base() string {
	return filepath.Join(p.Save, baseFolder)
}

// Build is the folder for intermediate files of font generation.
func (p Paths) Build() string {
	return filepath.Join(p.Save, buildFolder)
}

// Assets is the default folder for generated assets.
func (p Paths) Assets() string {
	return filepath.Join(p.Save, assetsFolder)
}

// Generated is the path of the generated font container.
func (p Paths) Generated() string {
	return filepath.Join(p.Save, generatedFont)
}

// BaseContainer is the working copy of the system emoji font.
func (p Paths) BaseContainer() string {
	return filepath.Join(p.Base(), baseContainer)
}

// BaseFont is the binary sub-font split off the base container.
func (p Paths) BaseFont(font string) string {
	return filepath.Join(p.Base(), font+".ttf")
}

// BaseTree is the decompiled base tree of a sub-font.
func (p Paths) BaseTree(font string) string {
	return filepath.Join(p.Base(), font+".ttx")
}

// TmpTree is where a base tree is written to while decompiling.
func (p Paths) TmpTree(font string) string {
	return filepath.Join(p.Base(), font+"-tmp.ttx")
}

// GlyphNames is the cache file of the glyph registry.
func (p Paths) GlyphNames() string {
	return filepath.Join(p.Base(), glyphNamesCache)
}

// UserTree is the font tree of a sub-font with user glyphs injected.
func (p Paths) UserTree(font string) string {
	return filepath.Join(p.Build(), font+"-user.ttx")
}

// UserFont is the compiled user tree of a sub-font.
func (p Paths) UserFont(font string) string {
	return filepath.Join(p.Build(), font+"-user.ttf")
}

// HasBaseTrees is true if the base trees of all sub-fonts exist.
func (p Paths) HasBaseTrees() bool {
	for _, font := range SubFonts {
		if _, err := os.Stat(p.BaseTree(font)); err != nil {
			return false
		}
	}
	return true
}

// Intermediates lists the files which are left over from generating base
// files or fonts. They may be deleted at any time between two runs.
func (p Paths) Intermediates() []string {
	paths := []string{p.BaseContainer()}
	for _, font := range SubFonts {
		paths = append(paths, p.BaseFont(font), p.TmpTree(font),
			p.UserTree(font), p.UserFont(font))
	}
	return paths
}

// EnsureDir checks and possibly creates a folder, including missing parents
// (with permissions 755).
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		tracer().Debugf("creating folder %s", dir)
		if err = os.MkdirAll(dir, 0755); err != nil {
			return core.WrapError(err, core.EINVALID, "folder cannot be created: %s", dir)
		}
	}
	return nil
}

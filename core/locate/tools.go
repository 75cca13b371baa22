package locate

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/sbixer/core"
	"github.com/npillmayer/schuko"
)

// Default sizes of output files, used for progress estimation only.
const (
	DefaultTreeSize      int64 = 570000000 // decompiled base tree
	DefaultContainerSize int64 = 190000000 // generated font container
)

// EmojiFontName is the file name of the system emoji font container.
const EmojiFontName = "Apple Color Emoji.ttc"

var defaultTools = map[string]string{
	"ttx":            "ttx",
	"otc2otf":        "otc2otf",
	"otf2otc":        "otf2otc",
	"svg-rasterizer": "rsvg-convert",
}

// Tool returns the binary configured for a tool key. If the configuration
// has no entry for key, the tool's default name is returned. Names without
// a path separator are searched for in the directories of $PATH.
func Tool(conf schuko.Configuration, key string) string {
	bin := conf.GetString(key)
	if bin == "" {
		bin = defaultTools[key]
	}
	if bin == "" {
		return key
	}
	if p, err := exec.LookPath(bin); err == nil {
		return p
	}
	tracer().Infof("%s not found: key '%s' should point to the location of the binary", bin, key)
	return bin
}

// Size returns a size configured for key, or a default if the key is not
// set or not a positive number.
func Size(conf schuko.Configuration, key string, dflt int64) int64 {
	v := conf.GetString(key)
	if v == "" {
		return dflt
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		tracer().Errorf("config[%s] = %q is not a valid size, using %d", key, v, dflt)
		return dflt
	}
	return n
}

// EmojiFont locates the system emoji font container. Key 'emoji-font'
// takes precedence over the system font directories.
func EmojiFont(conf schuko.Configuration) (string, error) {
	if path := conf.GetString("emoji-font"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", core.WrapError(err, core.EMISSING, "emoji font not found: %s", path)
		}
		return path, nil
	}
	path, err := findfont.Find(EmojiFontName) // try to find as system font
	if err != nil {
		return "", core.WrapError(err, core.EMISSING,
			"system emoji font not found: %s; configure key 'emoji-font'", EmojiFontName)
	}
	tracer().Infof("found system emoji font %s", path)
	return path, nil
}

// FileSize returns the size of a file, or 0 if it does not exist.
func FileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return 0
	}
	return fi.Size()
}

// Remove deletes files and returns the number of bytes reclaimed. Files
// which do not exist are skipped.
func Remove(paths ...string) (int64, error) {
	var reclaimed int64
	for _, path := range paths {
		size := FileSize(path)
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return reclaimed, core.WrapError(err, core.EINVALID, "cannot remove %s", path)
		}
		tracer().Debugf("removed %s", path)
		reclaimed += size
	}
	return reclaimed, nil
}

// RemoveAll deletes a folder with everything in it and returns the number of
// bytes reclaimed.
func RemoveAll(dir string) (int64, error) {
	var reclaimed int64
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, core.WrapError(err, core.EINVALID, "cannot read folder %s", dir)
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			n, err := RemoveAll(path)
			reclaimed += n
			if err != nil {
				return reclaimed, err
			}
			continue
		}
		n, err := Remove(path)
		reclaimed += n
		if err != nil {
			return reclaimed, err
		}
	}
	if err := os.Remove(dir); err != nil {
		return reclaimed, core.WrapError(err, core.EINVALID, "cannot remove %s", dir)
	}
	return reclaimed, nil
}

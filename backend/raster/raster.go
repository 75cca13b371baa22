package raster

import (
	"bytes"
	"image"
	_ "image/gif" // register decoders
	_ "image/jpeg"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/npillmayer/sbixer/core"
	"github.com/npillmayer/sbixer/core/locate"
	"github.com/npillmayer/schuko"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Rasterizer renders a source image as a PNG whose longer side is size
// pixels.
type Rasterizer interface {
	Rasterize(src string, size int) ([]byte, error)
}

// Source types
const (
	SVG = ".svg"
	PNG = ".png"
)

// Supported is true for paths of source images of a supported type.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == SVG || ext == PNG
}

// --- Raster images ---------------------------------------------------------

// Images scales raster images.
type Images struct{}

// Rasterize decodes an image and scales it.
func (Images) Rasterize(src string, size int) ([]byte, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot open image %s", src)
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot decode image %s", src)
	}
	tracer().Debugf("decoded %s image %s, bounds %v", format, src, img.Bounds())
	var buf bytes.Buffer
	if err = png.Encode(&buf, Scale(img, size)); err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "cannot encode image %s", src)
	}
	return buf.Bytes(), nil
}

// Scale scales an image so that its longer side has length size. The
// shorter side is truncated, but will be at least 1 pixel.
func Scale(img image.Image, size int) *image.NRGBA {
	b := img.Bounds()
	w, h := scaled(b.Dx(), b.Dy(), size)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func scaled(w, h, size int) (int, int) {
	longer := w
	if h > longer {
		longer = h
	}
	if longer == 0 {
		return size, size
	}
	scale := float64(size) / float64(longer)
	sw, sh := int(float64(w)*scale), int(float64(h)*scale)
	if sw < 1 {
		sw = 1
	}
	if sh < 1 {
		sh = 1
	}
	return sw, sh
}

// --- SVG -------------------------------------------------------------------

// SVGRenderer renders SVG images with an external binary. The binary is
// called as
//
//	<binary> -h <size> <src>
//
// and has to write a PNG to stdout.
type SVGRenderer struct {
	Binary string
}

// Rasterize renders an SVG image at height size.
func (r SVGRenderer) Rasterize(src string, size int) ([]byte, error) {
	if _, err := os.Stat(src); err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot open image %s", src)
	}
	cmd := exec.Command(r.Binary, "-h", strconv.Itoa(size), src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		tracer().Errorf("%s: %v %s", r.Binary, err, msg)
		return nil, core.WrapError(err, core.EEXTERNAL, "cannot render SVG image %s: %s", src, msg)
	}
	return stdout.Bytes(), nil
}

// --- Dispatch --------------------------------------------------------------

// ByType rasterizes SVG images with an SVGRenderer and all other images
// with Images.
type ByType struct {
	Images Images
	SVG    SVGRenderer
}

var _ Rasterizer = ByType{}

// New creates a rasterizer for all supported source types, with the SVG
// renderer taken from key 'svg-rasterizer' of a configuration.
func New(conf schuko.Configuration) ByType {
	return ByType{SVG: SVGRenderer{Binary: locate.Tool(conf, "svg-rasterizer")}}
}

// Rasterize dispatches on the file extension of src.
func (r ByType) Rasterize(src string, size int) ([]byte, error) {
	if strings.ToLower(filepath.Ext(src)) == SVG {
		return r.SVG.Rasterize(src, size)
	}
	return r.Images.Rasterize(src, size)
}

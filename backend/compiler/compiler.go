package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/npillmayer/sbixer/core"
	"github.com/npillmayer/sbixer/core/locate"
	"github.com/npillmayer/schuko"
)

// Compiler converts fonts. Every operation blocks until its output is
// complete.
type Compiler interface {
	// Split extracts the fonts of a container into the container's folder,
	// one file "<font>.ttf" per contained font.
	Split(container string) error
	// Decompile writes the text tree of a binary font.
	Decompile(font, tree string) error
	// Compile writes the binary font of a text tree.
	Compile(tree, font string) error
	// Merge writes a container holding the given fonts, in order.
	Merge(fonts []string, container string) error
}

// External is a compiler calling external binaries.
type External struct {
	TTX     string
	OTC2OTF string
	OTF2OTC string
}

var _ Compiler = External{}

// New creates a compiler with binaries taken from a configuration
// (keys 'ttx', 'otc2otf' and 'otf2otc').
func New(conf schuko.Configuration) External {
	return External{
		TTX:     locate.Tool(conf, "ttx"),
		OTC2OTF: locate.Tool(conf, "otc2otf"),
		OTF2OTC: locate.Tool(conf, "otf2otc"),
	}
}

// Split calls otc2otf, which writes its output next to its input.
func (c External) Split(container string) error {
	cmd := exec.Command(c.OTC2OTF, filepath.Base(container))
	cmd.Dir = filepath.Dir(container)
	return run(cmd, "cannot split font container %s", container)
}

// Decompile calls ttx.
func (c External) Decompile(font, tree string) error {
	if !strings.EqualFold(filepath.Ext(tree), ".ttx") {
		return core.Error(core.EINTERNAL, "font tree must have extension .ttx: %s", tree)
	}
	cmd := exec.Command(c.TTX, "-q", "-o", tree, font)
	return run(cmd, "cannot decompile font %s", font)
}

// Compile calls ttx.
func (c External) Compile(tree, font string) error {
	cmd := exec.Command(c.TTX, "-q", "-o", font, tree)
	return run(cmd, "cannot compile font tree %s", tree)
}

// Merge calls otf2otc. An existing container is replaced only after
// otf2otc has succeeded.
func (c External) Merge(fonts []string, container string) error {
	if len(fonts) == 0 {
		return core.Error(core.EINTERNAL, "no fonts to merge into %s", container)
	}
	tmp := MergeTarget(container)
	args := append([]string{"-o", tmp}, fonts...)
	cmd := exec.Command(c.OTF2OTC, args...)
	err := run(cmd, "cannot create font container %s", container)
	if err == nil {
		err = CheckOutputs(tmp)
	}
	if err == nil {
		if err = os.Rename(tmp, container); err != nil {
			err = core.WrapError(err, core.EINVALID, "cannot move font container to %s", container)
		}
	}
	if err != nil {
		os.Remove(tmp)
	}
	return err
}

// MergeTarget is the file Merge writes a container to before moving it
// into place.
func MergeTarget(container string) string {
	ext := filepath.Ext(container)
	return strings.TrimSuffix(container, ext) + "-tmp" + ext
}

// stderrLines is the number of lines of a tool's error output we report.
const stderrLines = 5

func run(cmd *exec.Cmd, format string, v ...interface{}) error {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = &stderr
	tracer().Debugf("running %s", strings.Join(cmd.Args, " "))
	err := cmd.Run()
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, v...)
	if out := tail(stderr.String(), stderrLines); out != "" {
		tracer().Errorf("%s: %s", filepath.Base(cmd.Path), out)
		msg = msg + ": " + out
	}
	if notfound := (*exec.Error)(nil); errors.As(err, &notfound) || errors.Is(err, os.ErrNotExist) {
		return core.WrapError(err, core.EMISSING, "%s: %s not found", msg, cmd.Path)
	}
	return core.WrapError(err, core.EEXTERNAL, "%s", msg)
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Outputs lists the files Split writes for a container holding fonts.
func Outputs(container string, fonts ...string) []string {
	dir := filepath.Dir(container)
	outputs := make([]string, len(fonts))
	for i, f := range fonts {
		outputs[i] = filepath.Join(dir, f+".ttf")
	}
	return outputs
}

// CheckOutputs returns an error if one of the paths does not exist.
func CheckOutputs(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return core.WrapError(err, core.EEXTERNAL, "expected output is missing: %s", p)
		}
	}
	return nil
}

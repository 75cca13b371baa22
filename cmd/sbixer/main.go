/*
Command sbixer creates custom emoji fonts for macOS.

Usage:

	sbixer [flags] <command> [command flags] [arguments]

Commands are

	assets <source-dir> [<output-dir>]   render SVG or PNG images to sized PNG assets
	base-files                           generate the base files of the emoji font
	font [<asset-dir>]                   generate an emoji font from PNG assets
	glyphs [<name> …]                    list glyph names of the emoji font
	clear-cache                          remove generated files
	version                              print the version

Settings may be given as flags or as environment variables SBIXER_<KEY>,
e.g. SBIXER_SAVE_DIR.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/npillmayer/sbixer/core"
	"github.com/npillmayer/sbixer/core/locate"
	"github.com/npillmayer/sbixer/engine/pipeline"
	"github.com/npillmayer/sbixer/engine/tasks"
	"github.com/npillmayer/schuko/schukonf/koanfadapter"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

const version = "0.1.0"

// tracer traces with key 'sbixer.pipeline'
func tracer() tracing.Trace {
	return tracing.Select("sbixer.pipeline")
}

// traceKeys are the tracing keys of all packages of sbixer.
var traceKeys = []string{"sbixer.fonts", "sbixer.assets", "sbixer.tasks",
	"sbixer.pipeline", "sbixer.backend"}

// configKeys may be set from the environment.
var configKeys = []string{"app-key", "save-dir", "emoji-font", "ttx", "otc2otf",
	"otf2otc", "svg-rasterizer", "ttx-size", "ttc-size"}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	saveDir := flag.String("save-dir", "", "Folder for generated files")
	emojiFont := flag.String("emoji-font", "", "System emoji font to base fonts on")
	flag.Usage = usage
	flag.Parse()

	conf, err := configure(*tlevel)
	if err != nil {
		fmt.Printf("error reading configuration: %v\n", err)
		os.Exit(core.EINVALID)
	}
	if *saveDir != "" {
		conf.Set("save-dir", *saveDir)
	}
	if *emojiFont != "" {
		conf.Set("emoji-font", *emojiFont)
	}
	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	tracer().Infof("Trace level is %s", *tlevel)

	if flag.NArg() == 0 {
		usage()
		os.Exit(core.EINVALID)
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]
	if cmd == "version" {
		fmt.Printf("sbixer %s\n", version)
		return
	}
	handler, ok := commands[cmd]
	if !ok {
		pterm.Error.Printfln("unknown command '%s'", cmd)
		usage()
		os.Exit(core.EINVALID)
	}
	reporter := newReporter()
	p, err := pipeline.New(conf, reporter)
	if err == nil {
		err = handler(p, args)
	}
	reporter.Stop()
	if err != nil {
		exit(err)
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: sbixer [flags] <command> [command flags] [arguments]\n\n")
	fmt.Fprintf(out, "Commands: assets, base-files, font, glyphs, clear-cache, version\n\nFlags:\n")
	flag.PrintDefaults()
}

// configure sets up the configuration from defaults and environment
// variables SBIXER_<KEY>. Flags are applied by the caller.
func configure(tlevel string) (*koanfadapter.KConf, error) {
	defaults := map[string]interface{}{
		"tracing.adapter": "go",
		"app-key":         locate.DefaultAppKey,
	}
	for _, key := range traceKeys {
		defaults["trace."+key] = tlevel
	}
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, err
	}
	if err := k.Load(env.ProviderWithValue(envPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}
	return koanfadapter.New(k, "", nil), nil
}

const envPrefix = "SBIXER_"

// envKey maps SBIXER_SAVE_DIR to save-dir. Unknown keys and empty values
// are dropped.
func envKey(name, value string) (string, interface{}) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(name, envPrefix), "_", "-"))
	if value == "" {
		return "", nil
	}
	for _, known := range configKeys {
		if key == known {
			return key, value
		}
	}
	return "", nil
}

// progressReporter is a task reporter which has to be stopped after use.
type progressReporter interface {
	tasks.Reporter
	Stop()
}

type traceReporter struct {
	*tasks.TraceReporter
}

func (traceReporter) Stop() {}

// newReporter displays progress in the terminal, if there is one, and
// writes it to the trace otherwise.
func newReporter() progressReporter {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return newAreaReporter()
	}
	return traceReporter{tasks.NewTraceReporter()}
}

func exit(err error) {
	if errors.Is(err, errAborted) {
		pterm.Info.Println("Aborted.")
		os.Exit(core.EUSERABORT)
	}
	pterm.Error.Println(core.UserMessage(err))
	tracer().Errorf("%v", err)
	code := core.Code(err)
	if code == core.NOERROR {
		code = core.EINTERNAL
	}
	os.Exit(code)
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/npillmayer/sbixer/core"
	"github.com/npillmayer/sbixer/core/assets"
	"github.com/npillmayer/sbixer/core/glyphname"
	"github.com/npillmayer/sbixer/core/locate"
	"github.com/npillmayer/sbixer/engine/pipeline"
	"github.com/pterm/pterm"
)

type command func(p *pipeline.Pipeline, args []string) error

var commands = map[string]command{
	"assets":      assetsCmd,
	"base-files":  baseFilesCmd,
	"font":        fontCmd,
	"glyphs":      glyphsCmd,
	"clear-cache": clearCacheCmd,
}

var errAborted = errors.New("aborted by user")

func newFlagSet(name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: sbixer %s [flags] %s\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}

// assets <source-dir> [<output-dir>]
func assetsCmd(p *pipeline.Pipeline, args []string) error {
	fs := newFlagSet("assets", "<source-dir> [<output-dir>]")
	force := fs.Bool("force", false, "Overwrite existing files in output directory without asking")
	fs.Parse(args)
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return core.Error(core.EINVALID, "missing source directory")
	}
	src, out := fs.Arg(0), p.Paths.Assets()
	if fs.NArg() == 2 {
		out = fs.Arg(1)
	}
	nonEmpty := !isEmptyDir(out) && out != p.Paths.Assets()
	if nonEmpty && !*force {
		ok, err := confirm(fmt.Sprintf("%s is not empty. Proceeding will overwrite existing files.", out))
		if err != nil {
			return err
		}
		if !ok {
			return errAborted
		}
	}
	ignored, err := p.GenerateAssets(src, out)
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Saved assets to: '%s'", out)
	printIgnored(ignored)
	if nonEmpty {
		pterm.Warning.Println("Saved to non-empty directory. Previously existing files may " +
			"interfere with the assets when generating the font.")
	}
	return nil
}

// base-files
func baseFilesCmd(p *pipeline.Pipeline, args []string) error {
	fs := newFlagSet("base-files", "")
	force := fs.Bool("force", true, "Create new files even if there are already generated ones available")
	fs.Parse(args)
	if !*force && p.Paths.HasBaseTrees() {
		pterm.Info.Println("Emoji base files already generated, skipping.")
		return nil
	}
	pterm.Info.Println("Generating emoji base files. This will most likely take a few minutes...")
	if err := p.BaseFiles(*force); err != nil {
		return err
	}
	pterm.Success.Println("Successfully generated emoji base files and cleaned up!")
	return nil
}

// font [<asset-dir>]
func fontCmd(p *pipeline.Pipeline, args []string) error {
	fs := newFlagSet("font", "[<asset-dir>]")
	fs.Parse(args)
	dir := p.Paths.Assets()
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}
	report, err := p.Font(dir)
	printIgnored(report.Ignored)
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Generated emoji font with %d custom glyphs: '%s'",
		len(report.Patched), report.Output)
	if report.Reclaimed > 0 {
		pterm.Info.Printfln("Cleaned up %s of intermediate files.", humanize.Bytes(uint64(report.Reclaimed)))
	}
	return nil
}

// glyphs [<name> …]
func glyphsCmd(p *pipeline.Pipeline, args []string) error {
	fs := newFlagSet("glyphs", "[<name> …]")
	fs.Parse(args)
	if err := p.BaseFiles(false); err != nil {
		return err
	}
	if err := p.Registry.Load(p.Paths.BaseTree(locate.MainFont)); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		for _, name := range p.Registry.Names() {
			printGlyph(name)
		}
		pterm.Info.Printfln("%d glyphs", p.Registry.Len())
		return nil
	}
	for _, arg := range fs.Args() {
		name, err := glyphname.Normalize(arg)
		if err != nil {
			return err
		}
		variants := p.Registry.Variants(name)
		if len(variants) == 0 {
			pterm.Warning.Printfln("%s is not a glyph of the emoji font", name)
			continue
		}
		for _, v := range variants {
			printGlyph(v)
		}
	}
	return nil
}

// clear-cache
func clearCacheCmd(p *pipeline.Pipeline, args []string) error {
	fs := newFlagSet("clear-cache", "")
	includeBase := fs.Bool("include-base-files", false, "Also clear the emoji base files. "+
		"Frees more than 1GB, but adds multiple minutes to the next font generation")
	fs.Parse(args)
	n, err := p.ClearCache(*includeBase)
	if err != nil {
		return err
	}
	if n == 0 {
		pterm.Info.Println("Looks like everything is cleared already!")
		return nil
	}
	pterm.Success.Printfln("Successfully cleared %s.", humanize.Bytes(uint64(n)))
	return nil
}

func printIgnored(ignored []assets.Ignored) {
	if len(ignored) == 0 {
		return
	}
	fmt.Println("\nIgnored paths:")
	for _, ig := range ignored {
		fmt.Printf("- %s\n", ig)
	}
	fmt.Println()
}

func printGlyph(name string) {
	fmt.Printf("%-24s %s  %s\n", name, glyphname.Literal(name), glyphname.Describe(name))
}

func isEmptyDir(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err != nil || len(entries) == 0
}

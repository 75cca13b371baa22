package glyphname

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/sbixer/core"
	"golang.org/x/text/unicode/runenames"
)

const (
	segmentSep  = "_"
	modifierSep = "."
	prefix      = "u"
)

// Normalize returns the canonical form of a glyph identifier.
//
// Input is case-insensitive, output is case-canonical: hex digits are
// upper case, the 'u' prefix is lower case. Normalize is idempotent.
// It returns an error wrapping core.ErrInvalidNameFormat if raw is empty,
// contains an empty code point segment, has a malformed modifier suffix or
// a segment which is not a hexadecimal code point.
func Normalize(raw string) (string, error) {
	if raw == "" {
		return "", invalid(raw, "name is empty")
	}
	base, mods, hasMods := strings.Cut(raw, modifierSep)
	if hasMods {
		if mods == "" {
			return "", invalid(raw, "empty modifier suffix")
		}
		if strings.Contains(mods, modifierSep) {
			return "", invalid(raw, "more than one modifier suffix")
		}
	}
	segments := strings.Split(base, segmentSep)
	var b strings.Builder
	b.Grow(len(raw) + len(segments))
	for i, seg := range segments {
		hex, err := normalizeSegment(seg)
		if err != nil {
			return "", invalid(raw, err.Error())
		}
		if i > 0 {
			b.WriteString(segmentSep)
		}
		b.WriteString(prefix)
		b.WriteString(hex)
	}
	if hasMods {
		b.WriteString(modifierSep)
		b.WriteString(mods)
	}
	return b.String(), nil
}

// IsCanonical is true if name is a glyph identifier in canonical form.
func IsCanonical(name string) bool {
	n, err := Normalize(name)
	return err == nil && n == name
}

func normalizeSegment(seg string) (string, error) {
	if seg == "" {
		return "", fmt.Errorf("empty code point segment")
	}
	if seg[0] == 'u' || seg[0] == 'U' {
		seg = seg[1:]
	}
	if seg == "" {
		return "", fmt.Errorf("code point segment without digits")
	}
	seg = strings.ToUpper(seg)
	cp, err := strconv.ParseUint(seg, 16, 32)
	if err != nil {
		return "", fmt.Errorf("segment %q is not hexadecimal", seg)
	}
	if cp > utf8.MaxRune {
		return "", fmt.Errorf("code point %s out of range", seg)
	}
	seg = strings.TrimLeft(seg, "0")
	if seg == "" {
		seg = "0"
	}
	return seg, nil
}

func invalid(raw string, reason string) error {
	tracer().Debugf("glyph name %q rejected: %s", raw, reason)
	return core.WrapError(fmt.Errorf("%w: %q: %s", core.ErrInvalidNameFormat, raw, reason),
		core.EINVALID, "not a valid emoji name: %q (%s)", raw, reason)
}

// Codepoints splits a glyph identifier into its code points and the modifier
// suffix (without the leading '.'). name does not have to be canonical.
func Codepoints(name string) ([]rune, string, error) {
	canonical, err := Normalize(name)
	if err != nil {
		return nil, "", err
	}
	base, mods, _ := strings.Cut(canonical, modifierSep)
	segments := strings.Split(base, segmentSep)
	runes := make([]rune, len(segments))
	for i, seg := range segments {
		cp, _ := strconv.ParseUint(seg[len(prefix):], 16, 32)
		runes[i] = rune(cp)
	}
	return runes, mods, nil
}

// Base returns the code point part of a canonical name, i.e. the name
// without its modifier suffix.
func Base(name string) string {
	base, _, _ := strings.Cut(name, modifierSep)
	return base
}

// Literal returns the characters a glyph identifier stands for. Modifier
// suffixes are dropped. For malformed names, Literal returns "".
func Literal(name string) string {
	runes, _, err := Codepoints(name)
	if err != nil {
		return ""
	}
	return string(runes)
}

// Describe returns a human readable description of a glyph identifier,
// consisting of the Unicode names of its code points.
//
//	Describe("u1F469_u1F91D_u1F468.2") == "WOMAN + HANDSHAKE + MAN (.2)"
func Describe(name string) string {
	runes, mods, err := Codepoints(name)
	if err != nil {
		return "<" + name + ">"
	}
	names := make([]string, len(runes))
	for i, r := range runes {
		if n := runenames.Name(r); n != "" {
			names[i] = n
		} else {
			names[i] = fmt.Sprintf("U+%04X", r)
		}
	}
	d := strings.Join(names, " + ")
	if mods != "" {
		d += " (" + modifierSep + mods + ")"
	}
	return d
}

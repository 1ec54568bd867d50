package tui

import (
	"os"
	"strings"
	"sync"
)

// Terminals can't change the user's font, so the TUI picks between Unicode and ASCII glyphs for
// its affordances.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

// applyGlyphPreference picks the glyph set: PANTRY_TUI_GLYPHS wins over the config value.
func applyGlyphPreference(configured string) {
	v := strings.TrimSpace(os.Getenv("PANTRY_TUI_GLYPHS"))
	if v == "" {
		v = configured
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func glyphCheckbox(done bool) string {
	switch {
	case glyphs() == glyphSetASCII && done:
		return "[x]"
	case glyphs() == glyphSetASCII:
		return "[ ]"
	case done:
		return "☑"
	default:
		return "☐"
	}
}

func glyphAlert() string {
	if glyphs() == glyphSetASCII {
		return "!"
	}
	return "⚠"
}

func glyphBullet() string {
	if glyphs() == glyphSetASCII {
		return "*"
	}
	return "•"
}

func glyphHRule() string {
	if glyphs() == glyphSetASCII {
		return "-"
	}
	return "─"
}

package docs

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	renderersMu sync.Mutex
	// Keyed by style + wrap width. WithAutoStyle can block on terminal queries, so a fixed style is
	// picked from lipgloss' background detection instead.
	renderers = map[string]*glamour.TermRenderer{}
)

// Style returns the glamour standard style name for the current terminal.
func Style() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("PANTRY_MD_STYLE"))) {
	case styles.LightStyle:
		return styles.LightStyle
	case styles.DarkStyle:
		return styles.DarkStyle
	case styles.NoTTYStyle:
		return styles.NoTTYStyle
	}
	if lipgloss.HasDarkBackground() {
		return styles.DarkStyle
	}
	return styles.LightStyle
}

// Render renders markdown for a terminal of the given width. On renderer failure the raw markdown
// is returned.
func Render(md string, style string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	if style == "" {
		style = Style()
	}
	key := style + ":" + strconv.Itoa(width)

	renderersMu.Lock()
	r := renderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			renderersMu.Unlock()
			return md
		}
		renderers[key] = rr
		r = rr
	}
	renderersMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

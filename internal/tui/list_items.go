package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"pantry-cli/internal/model"
	"pantry-cli/internal/query"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// rowItem adapts a query.Row to bubbles/list.
type rowItem struct {
	row query.Row
}

func (r rowItem) FilterValue() string { return r.row.Item.Name }

func rowItems(rows []query.Row) []list.Item {
	out := make([]list.Item, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowItem{row: r})
	}
	return out
}

// alertText is the expiry notice shown next to an open item.
func alertText(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("expired %dd ago", -days)
	case days == 0:
		return "expires today"
	case days == 1:
		return "expires tomorrow"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}

// rowLine renders one row without selection styling.
func rowLine(r query.Row, trackQuantity bool) string {
	it := r.Item
	var parts []string
	parts = append(parts, glyphCheckbox(it.IsCompleted))

	name := it.Name
	if it.IsCompleted {
		name = styleCompleted().Render(name)
	}
	parts = append(parts, name)

	if trackQuantity {
		parts = append(parts, styleMuted().Render("x"+strconv.Itoa(it.Quantity)))
	}
	if it.Location != "" {
		parts = append(parts, styleMuted().Render("@"+it.Location))
	}
	if it.Expiry != "" {
		parts = append(parts, styleMuted().Render(it.Expiry))
	}
	if r.DaysLeft != nil && !it.IsCompleted {
		notice := alertText(*r.DaysLeft)
		if r.Tier == model.TierCritical {
			notice = glyphAlert() + " " + notice
		}
		parts = append(parts, tierStyle(r.Tier).Render(notice))
	}
	return strings.Join(parts, " ")
}

type rowDelegate struct {
	trackQuantity bool
	selected      lipgloss.Style
}

func newRowDelegate(trackQuantity bool) rowDelegate {
	return rowDelegate{
		trackQuantity: trackQuantity,
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}
	ri, ok := item.(rowItem)
	if !ok {
		return
	}

	prefix := "  "
	if index == m.Index() {
		prefix = "> "
	}
	line := fitWidth(prefix+rowLine(ri.row, d.trackQuantity), contentW)
	if index == m.Index() {
		line = d.selected.Render(line)
	}
	fmt.Fprint(w, line)
}

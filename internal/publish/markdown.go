package publish

import (
	"bytes"
	"fmt"
	"strings"

	"pantry-cli/internal/model"
	"pantry-cli/internal/query"
)

type RenderOptions struct {
	// Title defaults to "Pantry".
	Title           string
	IncludeComplete bool
	TrackQuantity   bool
}

type section struct {
	heading string
	rows    []query.Row
}

// RenderMarkdown renders a list view as a shopping-friendly report grouped by alert tier.
// Rows keep the view's order inside each group.
func RenderMarkdown(v query.View, opt RenderOptions) string {
	title := strings.TrimSpace(opt.Title)
	if title == "" {
		title = "Pantry"
	}

	sections := []*section{
		{heading: "Use first"},
		{heading: "Use this week"},
		{heading: "Fresh"},
		{heading: "No expiry"},
		{heading: "Completed"},
	}
	for _, r := range v.Rows {
		switch {
		case r.Item.IsCompleted:
			if opt.IncludeComplete {
				sections[4].rows = append(sections[4].rows, r)
			}
		case r.Tier == model.TierCritical:
			sections[0].rows = append(sections[0].rows, r)
		case r.Tier == model.TierWarning:
			sections[1].rows = append(sections[1].rows, r)
		case r.Tier == model.TierSafe:
			sections[2].rows = append(sections[2].rows, r)
		default:
			sections[3].rows = append(sections[3].rows, r)
		}
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + title)
	writeLn("")
	writeLn("As of " + v.Today + ".")
	if v.Search != "" {
		writeLn("")
		writeLn(fmt.Sprintf("Only items matching %q.", v.Search))
	}

	empty := true
	for _, s := range sections {
		if len(s.rows) == 0 {
			continue
		}
		empty = false
		writeLn("")
		writeLn("## " + s.heading)
		writeLn("")
		for _, r := range s.rows {
			writeLn(rowMarkdown(r, opt.TrackQuantity))
		}
	}
	if empty {
		writeLn("")
		writeLn("_No items._")
	}
	return buf.String()
}

func rowMarkdown(r query.Row, trackQuantity bool) string {
	it := r.Item
	box := "[ ]"
	if it.IsCompleted {
		box = "[x]"
	}
	line := "- " + box + " " + escapeInline(it.Name)
	if trackQuantity {
		line += fmt.Sprintf(" (x%d)", it.Quantity)
	}

	var meta []string
	if it.Location != "" {
		meta = append(meta, escapeInline(it.Location))
	}
	if it.Expiry != "" {
		meta = append(meta, "expires "+it.Expiry)
	}
	if r.DaysLeft != nil && !it.IsCompleted {
		meta = append(meta, daysText(*r.DaysLeft))
	}
	if len(meta) > 0 {
		line += " · " + strings.Join(meta, ", ")
	}
	return line
}

func daysText(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("**expired %dd ago**", -days)
	case days == 0:
		return "**today**"
	case days == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}

var inlineEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`)

// escapeInline keeps user text from turning into markdown markup.
func escapeInline(s string) string {
	return inlineEscaper.Replace(strings.TrimSpace(s))
}

package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Tabler is implemented by payloads that have a human-readable table form.
type Tabler interface {
	Table() Table
}

// Table is a plain header+rows table. RowStyles optionally styles whole rows (by index).
type Table struct {
	Headers   []string
	Rows      [][]string
	RowStyles map[int]lipgloss.Style
	// Empty is printed instead of the table when there are no rows.
	Empty string
}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - yaml
// - table (only for payloads implementing Tabler)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "yaml", "yml":
		return WriteYAML(w, v)
	case "table":
		t, ok := v.(Tabler)
		if !ok {
			return fmt.Errorf("table format is not available for this command")
		}
		return WriteTable(w, t.Table())
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteYAML writes YAML using the same field names as the JSON output.
// Values are routed through JSON first so json tags (and omitempty) apply.
func WriteYAML(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(x); err != nil {
		return err
	}
	return enc.Close()
}

func WriteTable(w io.Writer, t Table) error {
	if len(t.Rows) == 0 {
		if t.Empty == "" {
			return nil
		}
		_, err := fmt.Fprintln(w, t.Empty)
		return err
	}
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if st, ok := t.RowStyles[row]; ok {
				return st.Padding(0, 1)
			}
			return cell
		})
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}

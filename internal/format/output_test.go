package format

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note,omitempty"`
}

type sampleTable struct{ rows [][]string }

func (s sampleTable) Table() Table {
	return Table{Headers: []string{"NAME", "QTY"}, Rows: s.rows, Empty: "No items."}
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"data": sample{Name: "milk", Quantity: 2}}, "json", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, want := strings.TrimSpace(buf.String()), `{"data":{"name":"milk","quantity":2}}`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestWrite_YAMLUsesJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample{Name: "milk", Quantity: 2}, "yaml", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "name: milk") || !strings.Contains(out, "quantity: 2") {
		t.Fatalf("unexpected yaml:\n%s", out)
	}
	if strings.Contains(out, "note") {
		t.Fatalf("omitempty fields must be dropped:\n%s", out)
	}
}

func TestWrite_Table(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleTable{rows: [][]string{{"milk", "2"}}}, "table", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "NAME") || !strings.Contains(out, "milk") {
		t.Fatalf("unexpected table:\n%s", out)
	}

	buf.Reset()
	if err := Write(&buf, sampleTable{}, "table", false); err != nil {
		t.Fatalf("Write empty: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No items." {
		t.Fatalf("expected empty message, got %q", buf.String())
	}
}

func TestWrite_Errors(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample{}, "table", false); err == nil {
		t.Fatalf("expected error for non-tabular payload")
	}
	if err := Write(&buf, sample{}, "edn", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pantry-cli/internal/model"
)

var ErrDoctorIssuesFound = errors.New("doctor found errors")

type DoctorIssueLevel string

const (
	DoctorIssueLevelError DoctorIssueLevel = "error"
	DoctorIssueLevelWarn  DoctorIssueLevel = "warn"
)

type DoctorIssue struct {
	Level   DoctorIssueLevel `json:"level"`
	Code    string           `json:"code"`
	Message string           `json:"message"`
	ItemID  int64            `json:"itemId,omitempty"`
}

type DoctorReport struct {
	Dir    string        `json:"dir"`
	Items  int           `json:"items"`
	Issues []DoctorIssue `json:"issues"`
}

func (r DoctorReport) HasErrors() bool {
	for _, it := range r.Issues {
		if it.Level == DoctorIssueLevelError {
			return true
		}
	}
	return false
}

// Doctor loads the workspace and checks the collection for states the app itself never produces
// (hand-edited or imported data). A load failure is reported as an issue, not returned.
func (s Store) Doctor(ctx context.Context) DoctorReport {
	rep := DoctorReport{Dir: s.Dir, Issues: []DoctorIssue{}}
	db, err := s.LoadContext(ctx)
	if err != nil {
		rep.Issues = append(rep.Issues, DoctorIssue{
			Level:   DoctorIssueLevelError,
			Code:    "load_failed",
			Message: err.Error(),
		})
		return rep
	}
	rep.Items = len(db.Items)
	rep.Issues = append(rep.Issues, CheckItems(db.Items)...)
	return rep
}

// CheckItems validates item-level invariants.
func CheckItems(items []model.Item) []DoctorIssue {
	issues := []DoctorIssue{}
	add := func(level DoctorIssueLevel, code string, id int64, format string, args ...any) {
		issues = append(issues, DoctorIssue{
			Level:   level,
			Code:    code,
			Message: fmt.Sprintf(format, args...),
			ItemID:  id,
		})
	}

	seen := map[int64]bool{}
	for _, it := range items {
		if seen[it.ID] {
			add(DoctorIssueLevelError, "duplicate_id", it.ID, "item id %d appears more than once", it.ID)
		}
		seen[it.ID] = true

		if strings.TrimSpace(it.Name) == "" {
			add(DoctorIssueLevelWarn, "empty_name", it.ID, "item %d has an empty name", it.ID)
		}
		if it.Quantity < 0 {
			add(DoctorIssueLevelError, "negative_quantity", it.ID, "item %d has quantity %d", it.ID, it.Quantity)
		}
		if it.Quantity == 0 && !it.IsCompleted {
			add(DoctorIssueLevelWarn, "zero_quantity_open", it.ID, "item %d has quantity 0 but is not completed", it.ID)
		}
		if strings.TrimSpace(it.Expiry) != "" {
			if _, ok := it.ExpiryDate(nil); !ok {
				add(DoctorIssueLevelWarn, "invalid_expiry", it.ID, "item %d has unparseable expiry %q (sorted last, no alert)", it.ID, it.Expiry)
			}
		}
	}
	return issues
}

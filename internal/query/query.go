// Package query derives the rendered list from the item collection: filtering, search,
// urgency ordering and expiry alert tiers.
package query

import (
	"math"
	"sort"
	"strings"
	"time"

	"pantry-cli/internal/model"
)

const (
	CriticalDays = 3
	WarningDays  = 7
)

// Row is one rendered entry of the list.
type Row struct {
	Item model.Item `json:"item"`
	// Tier is empty for completed or undated items.
	Tier model.AlertTier `json:"tier,omitempty"`
	// DaysLeft is set whenever Tier is.
	DaysLeft *int `json:"daysLeft,omitempty"`
}

// View is the result of a query.
type View struct {
	Filter model.Filter `json:"filter"`
	Search string       `json:"search,omitempty"`
	Today  string       `json:"today"`
	Rows   []Row        `json:"rows"`
	Empty  bool         `json:"empty"`
}

// Matches reports whether it passes both the completion filter and the name search.
// Search is a case-insensitive substring match; an empty term matches everything.
func Matches(it model.Item, filter model.Filter, search string) bool {
	switch filter {
	case model.FilterCompleted:
		if !it.IsCompleted {
			return false
		}
	case model.FilterUncompleted:
		if it.IsCompleted {
			return false
		}
	}
	term := strings.ToLower(search)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(it.Name), term)
}

// Sort orders items in place: uncompleted before completed, then by ascending expiry.
// Items without a (valid) expiry go last in their group. Ties keep insertion order.
func Sort(items []model.Item, loc *time.Location) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.IsCompleted != b.IsCompleted {
			return !a.IsCompleted
		}
		da, oka := a.ExpiryDate(loc)
		db, okb := b.ExpiryDate(loc)
		switch {
		case oka && okb:
			return da.Before(db)
		case oka:
			return true
		default:
			return false
		}
	})
}

// DaysUntil returns ceil((expiry - today) / 24h) using local midnights.
func DaysUntil(expiry, today time.Time) int {
	e := midnight(expiry)
	t := midnight(today)
	return int(math.Ceil(e.Sub(t).Hours() / 24))
}

// TierFor classifies days remaining. Expired items (negative days) are critical.
func TierFor(days int) model.AlertTier {
	switch {
	case days <= CriticalDays:
		return model.TierCritical
	case days <= WarningDays:
		return model.TierWarning
	default:
		return model.TierSafe
	}
}

// Alert computes the tier for a single item. ok is false for completed or undated items.
func Alert(it model.Item, today time.Time) (model.AlertTier, int, bool) {
	if it.IsCompleted {
		return model.TierNone, 0, false
	}
	exp, ok := it.ExpiryDate(today.Location())
	if !ok {
		return model.TierNone, 0, false
	}
	days := DaysUntil(exp, today)
	return TierFor(days), days, true
}

// Build filters, sorts and tiers a copy of items. The input slice is not modified.
func Build(items []model.Item, filter model.Filter, search string, today time.Time) View {
	if filter == "" {
		filter = model.FilterAll
	}
	matched := make([]model.Item, 0, len(items))
	for _, it := range items {
		if Matches(it, filter, search) {
			matched = append(matched, it)
		}
	}
	Sort(matched, today.Location())

	rows := make([]Row, 0, len(matched))
	for _, it := range matched {
		r := Row{Item: it}
		if tier, days, ok := Alert(it, today); ok {
			d := days
			r.Tier = tier
			r.DaysLeft = &d
		}
		rows = append(rows, r)
	}
	return View{
		Filter: filter,
		Search: search,
		Today:  today.Format(model.DateLayout),
		Rows:   rows,
		Empty:  len(rows) == 0,
	}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

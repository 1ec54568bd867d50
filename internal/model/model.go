package model

import (
	"strings"
	"time"
)

// DateLayout is the on-disk expiry format (matches <input type="date"> values).
const DateLayout = "2006-01-02"

// Item is a tracked stock entry.
//
// JSON field names match the browser export so an existing `inventory` value
// imports unchanged. Expiry is "" when absent.
type Item struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Quantity    int    `json:"quantity" yaml:"quantity"`
	Expiry      string `json:"expiry" yaml:"expiry"`
	Location    string `json:"location" yaml:"location"`
	IsCompleted bool   `json:"isCompleted" yaml:"isCompleted"`
}

// ExpiryDate parses Expiry as a local calendar date.
// ok is false when the item has no expiry or the value is not a valid date.
func (it Item) ExpiryDate(loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(it.Expiry)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

type Filter string

const (
	FilterAll         Filter = "all"
	FilterCompleted   Filter = "completed"
	FilterUncompleted Filter = "uncompleted"
)

// ParseFilter maps user input onto a Filter. Empty input means FilterAll.
func ParseFilter(s string) (Filter, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, true
	case "completed", "done":
		return FilterCompleted, true
	case "uncompleted", "active", "open":
		return FilterUncompleted, true
	default:
		return "", false
	}
}

// AlertTier is the urgency class derived from days until expiry.
type AlertTier string

const (
	TierNone     AlertTier = ""
	TierCritical AlertTier = "critical"
	TierWarning  AlertTier = "warning"
	TierSafe     AlertTier = "safe"
)

// Policy selects between the behaviors of the historical app variants.
type Policy struct {
	// EnforceEditGate requires the passphrase before toggle, quantity change and delete.
	EnforceEditGate bool `json:"enforceEditGate" yaml:"enforceEditGate"`
	// MergeOnDuplicateKey folds an add into an uncompleted item with the same name and expiry.
	MergeOnDuplicateKey bool `json:"mergeOnDuplicateKey" yaml:"mergeOnDuplicateKey"`
	// TrackQuantity enables quantities; when off every item has quantity 1.
	TrackQuantity bool `json:"trackQuantity" yaml:"trackQuantity"`
}

func DefaultPolicy() Policy {
	return Policy{
		EnforceEditGate:     true,
		MergeOnDuplicateKey: true,
		TrackQuantity:       true,
	}
}

// Event records a successful mutation. Events are informational and never replayed.
type Event struct {
	ID      string    `json:"id" yaml:"id"`
	TS      time.Time `json:"ts" yaml:"ts"`
	Type    string    `json:"type" yaml:"type"`
	ItemID  int64     `json:"itemId,omitempty" yaml:"itemId,omitempty"`
	Payload any       `json:"payload,omitempty" yaml:"payload,omitempty"`
}

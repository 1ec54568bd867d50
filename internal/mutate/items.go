package mutate

import (
	"strings"

	"pantry-cli/internal/model"
	"pantry-cli/internal/store"
)

// Result describes the outcome of a mutation.
// Callers are responsible for saving db and appending EventType when Changed is true.
type Result struct {
	Item         *model.Item
	Changed      bool
	EventType    string
	EventPayload map[string]any
}

// AddInput is the raw form input for a new item.
type AddInput struct {
	Name     string
	Quantity int
	Expiry   string
	Location string
}

// AddResult extends Result with how the add was applied.
type AddResult struct {
	Result
	// Merged is true when the quantity was folded into an existing item.
	Merged bool
	// Skipped is true when the input was invalid and silently discarded.
	Skipped bool
}

// AddOrMerge inserts a new item or, when policy.MergeOnDuplicateKey is set, adds the quantity to
// an uncompleted item with the same name and expiry.
//
// Invalid input (blank name, or quantity < 1 when quantities are tracked) is not an error: the
// add is skipped and AddResult.Skipped is set.
func AddOrMerge(db *store.DB, policy model.Policy, in AddInput, newID func() int64) AddResult {
	name := strings.TrimSpace(in.Name)
	location := strings.TrimSpace(in.Location)
	expiry := strings.TrimSpace(in.Expiry)
	qty := in.Quantity
	if !policy.TrackQuantity {
		qty = 1
	}
	if db == nil || name == "" || qty < 1 {
		return AddResult{Skipped: true}
	}

	if policy.MergeOnDuplicateKey {
		for i := range db.Items {
			it := &db.Items[i]
			if it.Name != name || it.Expiry != expiry || it.IsCompleted {
				continue
			}
			prev := it.Quantity
			it.Quantity += qty
			return AddResult{
				Result: Result{
					Item:      it,
					Changed:   true,
					EventType: "item.merge",
					EventPayload: map[string]any{
						"from":  prev,
						"to":    it.Quantity,
						"added": qty,
					},
				},
				Merged: true,
			}
		}
	}

	db.Items = append(db.Items, model.Item{
		ID:          newID(),
		Name:        name,
		Quantity:    qty,
		Expiry:      expiry,
		Location:    location,
		IsCompleted: false,
	})
	it := &db.Items[len(db.Items)-1]
	return AddResult{
		Result: Result{
			Item:      it,
			Changed:   true,
			EventType: "item.create",
			EventPayload: map[string]any{
				"name":     it.Name,
				"quantity": it.Quantity,
				"expiry":   it.Expiry,
				"location": it.Location,
			},
		},
	}
}

// ToggleCompletion flips isCompleted. A missing id is a no-op.
func ToggleCompletion(db *store.DB, id int64) Result {
	if db == nil {
		return Result{}
	}
	it, ok := db.FindItem(id)
	if !ok {
		return Result{}
	}
	it.IsCompleted = !it.IsCompleted
	return Result{
		Item:         it,
		Changed:      true,
		EventType:    "item.toggle",
		EventPayload: map[string]any{"isCompleted": it.IsCompleted},
	}
}

// UpdateQuantity sets the quantity. Reaching zero completes the item; raising the quantity
// afterwards does not un-complete it. A missing id is a no-op.
func UpdateQuantity(db *store.DB, policy model.Policy, id int64, quantity int) (Result, error) {
	if !policy.TrackQuantity {
		return Result{}, ErrQuantityUntracked
	}
	if quantity < 0 {
		return Result{}, ErrInvalidQuantity
	}
	if db == nil {
		return Result{}, nil
	}
	it, ok := db.FindItem(id)
	if !ok {
		return Result{}, nil
	}
	prev := it.Quantity
	wasCompleted := it.IsCompleted
	it.Quantity = quantity
	if quantity == 0 {
		it.IsCompleted = true
	}
	if prev == it.Quantity && wasCompleted == it.IsCompleted {
		return Result{Item: it}, nil
	}
	return Result{
		Item:      it,
		Changed:   true,
		EventType: "item.set_quantity",
		EventPayload: map[string]any{
			"from":        prev,
			"to":          it.Quantity,
			"isCompleted": it.IsCompleted,
		},
	}, nil
}

// DeleteItem removes the item with id, but only when confirmed.
// Declining, or a missing id, leaves the collection untouched.
func DeleteItem(db *store.DB, id int64, confirmed bool) Result {
	if db == nil || !confirmed {
		return Result{}
	}
	idx := -1
	for i := range db.Items {
		if db.Items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Result{}
	}
	removed := db.Items[idx]
	db.Items = append(db.Items[:idx:idx], db.Items[idx+1:]...)
	return Result{
		Item:      &removed,
		Changed:   true,
		EventType: "item.delete",
		EventPayload: map[string]any{
			"name":     removed.Name,
			"quantity": removed.Quantity,
		},
	}
}

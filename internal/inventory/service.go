// Package inventory wires the access gate, the lifecycle engine, the store and the query engine
// into the operations the CLI and TUI call.
//
// Every mutating operation runs to completion synchronously: gate, mutate, persist the whole
// collection, append an event, log. There is one execution context, so there is no locking.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pantry-cli/internal/model"
	"pantry-cli/internal/mutate"
	"pantry-cli/internal/perm"
	"pantry-cli/internal/query"
	"pantry-cli/internal/store"

	"go.uber.org/zap"
)

var (
	ErrNotOpen       = errors.New("inventory not open")
	ErrInvalidImport = errors.New("invalid import")
)

// Prompter supplies answers at the synchronous decision points of an operation.
type Prompter interface {
	// Challenge asks for the edit passphrase. A cancelled prompt returns "".
	Challenge(prompt string) string
	// Confirm asks a yes/no question.
	Confirm(prompt string) bool
}

// StaticPrompter answers every prompt with fixed values (flags, env, tests).
type StaticPrompter struct {
	Passphrase string
	Yes        bool
}

func (p StaticPrompter) Challenge(string) string { return p.Passphrase }
func (p StaticPrompter) Confirm(string) bool     { return p.Yes }

const (
	challengePrompt = "Passphrase required to edit"
	deletePrompt    = "Delete this item?"
	resetPrompt     = "Delete every item and restore the default passphrase?"
)

type Service struct {
	Store  store.Store
	Policy model.Policy
	Prompt Prompter
	Now    func() time.Time
	Log    *zap.Logger

	db *store.DB
}

type Option func(*Service)

func WithPolicy(p model.Policy) Option      { return func(s *Service) { s.Policy = p } }
func WithPrompter(p Prompter) Option        { return func(s *Service) { s.Prompt = p } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.Now = now } }
func WithLogger(l *zap.Logger) Option       { return func(s *Service) { s.Log = l } }

func New(st store.Store, opts ...Option) *Service {
	svc := &Service{
		Store:  st,
		Policy: model.DefaultPolicy(),
		Now:    time.Now,
		Log:    zap.NewNop(),
	}
	for _, o := range opts {
		o(svc)
	}
	if svc.Prompt == nil {
		svc.Prompt = StaticPrompter{}
	}
	if svc.Log == nil {
		svc.Log = zap.NewNop()
	}
	return svc
}

// Open loads the workspace state. It must be called before any other operation.
func (s *Service) Open(ctx context.Context) error {
	db, err := s.Store.LoadContext(ctx)
	if err != nil {
		return fmt.Errorf("open store %s: %w", s.Store.Dir, err)
	}
	s.db = db
	s.Log.Debug("inventory opened", zap.String("dir", s.Store.Dir), zap.Int("items", len(db.Items)))
	return nil
}

// Reload re-reads the store, dropping the in-memory copy (used when the file changed on disk).
func (s *Service) Reload(ctx context.Context) error { return s.Open(ctx) }

// ReloadIfChanged reloads only when the stored revision differs from the one in memory.
// It reports whether a reload happened.
func (s *Service) ReloadIfChanged(ctx context.Context) (bool, error) {
	if s.db == nil {
		return true, s.Open(ctx)
	}
	rev, err := s.Store.Revision(ctx)
	if err != nil {
		return false, fmt.Errorf("read revision %s: %w", s.Store.Dir, err)
	}
	if rev == s.db.Revision {
		return false, nil
	}
	return true, s.Open(ctx)
}

// Reset wipes the workspace back to first-run state after the gate and a confirmation.
func (s *Service) Reset(ctx context.Context) (bool, error) {
	if err := s.ensureOpen(); err != nil {
		return false, err
	}
	if err := s.gate("reset"); err != nil {
		return false, err
	}
	if !s.Prompt.Confirm(resetPrompt) {
		return false, nil
	}
	if err := s.Store.Reset(ctx); err != nil {
		return false, err
	}
	s.appendEvent(ctx, "workspace.reset", 0, map[string]any{"items": len(s.db.Items)})
	s.Log.Info("workspace reset", zap.Int("removed", len(s.db.Items)))
	return true, s.Open(ctx)
}

// Authorize checks a passphrase against the stored one without mutating anything. Interactive
// front ends use it to run the gate before asking for a confirmation.
func (s *Service) Authorize(supplied string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if !s.Policy.EnforceEditGate {
		return nil
	}
	return perm.CheckPassphrase(s.db.Passphrase, supplied)
}

// Items returns a copy of the collection in insertion order.
func (s *Service) Items() []model.Item {
	if s.db == nil {
		return []model.Item{}
	}
	out := make([]model.Item, len(s.db.Items))
	copy(out, s.db.Items)
	return out
}

func (s *Service) Find(id int64) (model.Item, error) {
	if err := s.ensureOpen(); err != nil {
		return model.Item{}, err
	}
	it, ok := s.db.FindItem(id)
	if !ok {
		return model.Item{}, mutate.NotFoundError{Kind: "item", ID: id}
	}
	return *it, nil
}

// Add inserts or merges an item. Invalid input is skipped without an error.
func (s *Service) Add(ctx context.Context, in mutate.AddInput) (mutate.AddResult, error) {
	if err := s.ensureOpen(); err != nil {
		return mutate.AddResult{}, err
	}
	prev := s.checkpoint()
	res := mutate.AddOrMerge(s.db, s.Policy, in, func() int64 { return s.db.NextItemID(s.Now()) })
	if res.Skipped {
		s.Log.Debug("add skipped: invalid input", zap.String("name", in.Name), zap.Int("quantity", in.Quantity))
		return res, nil
	}
	if err := s.commit(ctx, res.Result, prev); err != nil {
		return mutate.AddResult{}, err
	}
	res.Item = s.snapshot(res.Item)
	return res, nil
}

func (s *Service) Toggle(ctx context.Context, id int64) (mutate.Result, error) {
	if err := s.ensureOpen(); err != nil {
		return mutate.Result{}, err
	}
	if err := s.gate("toggle"); err != nil {
		return mutate.Result{}, err
	}
	prev := s.checkpoint()
	res := mutate.ToggleCompletion(s.db, id)
	if err := s.commit(ctx, res, prev); err != nil {
		return mutate.Result{}, err
	}
	res.Item = s.snapshot(res.Item)
	return res, nil
}

func (s *Service) SetQuantity(ctx context.Context, id int64, quantity int) (mutate.Result, error) {
	if err := s.ensureOpen(); err != nil {
		return mutate.Result{}, err
	}
	if err := s.gate("set-quantity"); err != nil {
		return mutate.Result{}, err
	}
	prev := s.checkpoint()
	res, err := mutate.UpdateQuantity(s.db, s.Policy, id, quantity)
	if err != nil {
		s.restore(prev)
		return mutate.Result{}, err
	}
	if err := s.commit(ctx, res, prev); err != nil {
		return mutate.Result{}, err
	}
	res.Item = s.snapshot(res.Item)
	return res, nil
}

// Delete removes an item after the gate and a confirmation. A declined confirmation is not an
// error; the result simply reports Changed=false.
func (s *Service) Delete(ctx context.Context, id int64) (mutate.Result, error) {
	if err := s.ensureOpen(); err != nil {
		return mutate.Result{}, err
	}
	if err := s.gate("delete"); err != nil {
		return mutate.Result{}, err
	}
	confirmed := s.Prompt.Confirm(deletePrompt)
	prev := s.checkpoint()
	res := mutate.DeleteItem(s.db, id, confirmed)
	if !confirmed {
		s.Log.Debug("delete declined", zap.Int64("id", id))
	}
	if err := s.commit(ctx, res, prev); err != nil {
		return mutate.Result{}, err
	}
	return res, nil
}

// ChangePassphrase replaces the stored passphrase. Validation failures leave it untouched.
func (s *Service) ChangePassphrase(ctx context.Context, current, next, confirm string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if err := perm.ValidatePassphraseChange(s.db.Passphrase, current, next, confirm); err != nil {
		s.Log.Warn("passphrase change rejected", zap.Error(err))
		return err
	}
	prev := s.checkpoint()
	s.db.Passphrase = next
	if err := s.Store.SaveContext(ctx, s.db); err != nil {
		s.restore(prev)
		return err
	}
	s.appendEvent(ctx, "passphrase.change", 0, map[string]any{})
	s.Log.Info("passphrase changed")
	return nil
}

// View recomputes the rendered list for today.
func (s *Service) View(filter model.Filter, search string) query.View {
	return query.Build(s.Items(), filter, search, s.Now())
}

// Import adds the items of an export. With replace the collection (and passphrase, if the export
// carries one) is overwritten, which requires the gate; otherwise items whose id already exists
// are skipped. An export with duplicate ids, negative quantities or blank names is rejected
// as a whole before anything changes.
func (s *Service) Import(ctx context.Context, in *store.DB, replace bool) (int, error) {
	if err := s.ensureOpen(); err != nil {
		return 0, err
	}
	if in == nil {
		return 0, errors.New("nil import")
	}
	if err := validateImport(in.Items); err != nil {
		s.Log.Warn("import rejected", zap.Error(err))
		return 0, err
	}
	prev := s.checkpoint()
	n := 0
	if replace {
		if err := s.gate("import --replace"); err != nil {
			return 0, err
		}
		s.db.Items = append([]model.Item{}, in.Items...)
		if in.Passphrase != "" {
			s.db.Passphrase = in.Passphrase
		}
		n = len(in.Items)
	} else {
		for _, it := range in.Items {
			if _, exists := s.db.FindItem(it.ID); exists {
				continue
			}
			s.db.Items = append(s.db.Items, it)
			n++
		}
	}
	if err := s.Store.SaveContext(ctx, s.db); err != nil {
		s.restore(prev)
		return 0, fmt.Errorf("save inventory: %w", err)
	}
	s.appendEvent(ctx, "inventory.import", 0, map[string]any{"items": n, "replace": replace})
	s.Log.Info("inventory imported", zap.Int("items", n), zap.Bool("replace", replace))
	return n, nil
}

func (s *Service) Events(ctx context.Context, limit int) ([]model.Event, error) {
	return s.Store.ReadEvents(ctx, limit)
}

func (s *Service) ensureOpen() error {
	if s.db == nil {
		return ErrNotOpen
	}
	return nil
}

func (s *Service) gate(action string) error {
	if !s.Policy.EnforceEditGate {
		return nil
	}
	supplied := s.Prompt.Challenge(challengePrompt)
	if err := perm.CheckPassphrase(s.db.Passphrase, supplied); err != nil {
		s.Log.Warn("edit gate rejected", zap.String("action", action))
		return fmt.Errorf("%s: %w", action, err)
	}
	return nil
}

// validateImport rejects items the app itself never produces.
func validateImport(items []model.Item) error {
	for _, is := range store.CheckItems(items) {
		if is.Level == store.DoctorIssueLevelError || is.Code == "empty_name" {
			return fmt.Errorf("%w: %s", ErrInvalidImport, is.Message)
		}
	}
	return nil
}

// state is an in-memory copy of the collection and passphrase taken before a mutation.
type state struct {
	items      []model.Item
	passphrase string
}

func (s *Service) checkpoint() state {
	return state{items: append([]model.Item(nil), s.db.Items...), passphrase: s.db.Passphrase}
}

// restore puts back a checkpoint after a failed save so memory matches the store.
func (s *Service) restore(prev state) {
	s.db.Items = prev.items
	if s.db.Items == nil {
		s.db.Items = []model.Item{}
	}
	s.db.Passphrase = prev.passphrase
}

// commit persists the full collection and records the event for a changed result. A failed
// save restores prev.
func (s *Service) commit(ctx context.Context, res mutate.Result, prev state) error {
	if !res.Changed {
		return nil
	}
	if err := s.Store.SaveContext(ctx, s.db); err != nil {
		s.restore(prev)
		return fmt.Errorf("save inventory: %w", err)
	}
	var id int64
	if res.Item != nil {
		id = res.Item.ID
	}
	s.appendEvent(ctx, res.EventType, id, res.EventPayload)
	s.Log.Info(res.EventType, zap.Int64("id", id), zap.Any("payload", res.EventPayload))
	return nil
}

func (s *Service) appendEvent(ctx context.Context, typ string, id int64, payload any) {
	if _, err := s.Store.AppendEvent(ctx, typ, id, payload); err != nil {
		// The event log is informational; a failed append never undoes a saved mutation.
		s.Log.Warn("append event failed", zap.String("type", typ), zap.Error(err))
	}
}

// snapshot copies an item out of the collection so callers never hold a pointer into it.
func (s *Service) snapshot(it *model.Item) *model.Item {
	if it == nil {
		return nil
	}
	cp := *it
	return &cp
}

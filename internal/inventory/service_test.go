package inventory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pantry-cli/internal/model"
	"pantry-cli/internal/mutate"
	"pantry-cli/internal/perm"
	"pantry-cli/internal/store"

	"github.com/stretchr/testify/require"
)

type recordingPrompter struct {
	passphrase string
	yes        bool
	challenges int
	confirms   int
}

func (p *recordingPrompter) Challenge(string) string {
	p.challenges++
	return p.passphrase
}

func (p *recordingPrompter) Confirm(string) bool {
	p.confirms++
	return p.yes
}

func fixedClock(s string) func() time.Time {
	t, err := time.ParseInLocation(model.DateLayout, s, time.Local)
	if err != nil {
		panic(err)
	}
	t = t.Add(9 * time.Hour)
	return func() time.Time { return t }
}

func openService(t *testing.T, p Prompter, opts ...Option) *Service {
	t.Helper()
	all := append([]Option{WithPrompter(p), WithClock(fixedClock("2024-01-10"))}, opts...)
	svc := New(store.Store{Dir: t.TempDir()}, all...)
	require.NoError(t, svc.Open(context.Background()))
	return svc
}

func TestService_RequiresOpen(t *testing.T) {
	svc := New(store.Store{Dir: t.TempDir()})
	_, err := svc.Add(context.Background(), mutate.AddInput{Name: "milk", Quantity: 1})
	require.ErrorIs(t, err, ErrNotOpen)
}

func TestService_AddMergesAndPersists(t *testing.T) {
	ctx := context.Background()
	svc := openService(t, &recordingPrompter{})

	first, err := svc.Add(ctx, mutate.AddInput{Name: "milk", Quantity: 2, Expiry: "2024-01-10"})
	require.NoError(t, err)
	require.False(t, first.Merged)

	second, err := svc.Add(ctx, mutate.AddInput{Name: "milk", Quantity: 3, Expiry: "2024-01-10"})
	require.NoError(t, err)
	require.True(t, second.Merged)
	require.Equal(t, 5, second.Item.Quantity)

	reopened := New(svc.Store)
	require.NoError(t, reopened.Open(ctx))
	items := reopened.Items()
	require.Len(t, items, 1)
	require.Equal(t, 5, items[0].Quantity)
	require.Equal(t, fixedClock("2024-01-10")().UnixMilli(), items[0].ID)

	evs, err := svc.Events(ctx, 0)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	require.Equal(t, "item.merge", evs[0].Type)
	require.Equal(t, "item.create", evs[1].Type)
}

func TestService_AddInvalidInputIsSkippedWithoutError(t *testing.T) {
	svc := openService(t, &recordingPrompter{})
	res, err := svc.Add(context.Background(), mutate.AddInput{Name: " ", Quantity: 1})
	require.NoError(t, err)
	require.True(t, res.Skipped)
	require.Empty(t, svc.Items())
}

func TestService_WrongPassphraseOnDeleteLeavesItem(t *testing.T) {
	ctx := context.Background()
	p := &recordingPrompter{passphrase: "nope", yes: true}
	svc := openService(t, p)

	added, err := svc.Add(ctx, mutate.AddInput{Name: "milk", Quantity: 1})
	require.NoError(t, err)

	_, err = svc.Delete(ctx, added.Item.ID)
	require.ErrorIs(t, err, perm.ErrWrongPassphrase)
	require.Equal(t, 1, p.challenges)
	require.Zero(t, p.confirms, "confirmation must not be asked after a failed gate")
	require.Len(t, svc.Items(), 1)

	reopened := New(svc.Store)
	require.NoError(t, reopened.Open(ctx))
	require.Len(t, reopened.Items(), 1)
}

func TestService_DeleteDeclinedAndConfirmed(t *testing.T) {
	ctx := context.Background()
	p := &recordingPrompter{passphrase: store.DefaultPassphrase}
	svc := openService(t, p)

	a, err := svc.Add(ctx, mutate.AddInput{Name: "a", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.Add(ctx, mutate.AddInput{Name: "b", Quantity: 1})
	require.NoError(t, err)

	res, err := svc.Delete(ctx, a.Item.ID)
	require.NoError(t, err)
	require.False(t, res.Changed)
	require.Len(t, svc.Items(), 2)

	p.yes = true
	res, err = svc.Delete(ctx, a.Item.ID)
	require.NoError(t, err)
	require.True(t, res.Changed)
	items := svc.Items()
	require.Len(t, items, 1)
	require.Equal(t, "b", items[0].Name)
}

func TestService_ToggleAndQuantityAreGated(t *testing.T) {
	ctx := context.Background()
	p := &recordingPrompter{passphrase: "wrong"}
	svc := openService(t, p)

	a, err := svc.Add(ctx, mutate.AddInput{Name: "a", Quantity: 2})
	require.NoError(t, err)

	_, err = svc.Toggle(ctx, a.Item.ID)
	require.ErrorIs(t, err, perm.ErrWrongPassphrase)
	_, err = svc.SetQuantity(ctx, a.Item.ID, 0)
	require.ErrorIs(t, err, perm.ErrWrongPassphrase)

	it, err := svc.Find(a.Item.ID)
	require.NoError(t, err)
	require.False(t, it.IsCompleted)
	require.Equal(t, 2, it.Quantity)

	p.passphrase = store.DefaultPassphrase
	res, err := svc.SetQuantity(ctx, a.Item.ID, 0)
	require.NoError(t, err)
	require.True(t, res.Item.IsCompleted)

	res, err = svc.Toggle(ctx, a.Item.ID)
	require.NoError(t, err)
	require.False(t, res.Item.IsCompleted)
}

func TestService_GateDisabledByPolicy(t *testing.T) {
	ctx := context.Background()
	p := &recordingPrompter{yes: true}
	svc := openService(t, p, WithPolicy(model.Policy{EnforceEditGate: false, MergeOnDuplicateKey: true, TrackQuantity: true}))

	a, err := svc.Add(ctx, mutate.AddInput{Name: "a", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, a.Item.ID)
	require.NoError(t, err)
	_, err = svc.Delete(ctx, a.Item.ID)
	require.NoError(t, err)
	require.Zero(t, p.challenges)
	require.Empty(t, svc.Items())
}

func TestService_ChangePassphrase(t *testing.T) {
	ctx := context.Background()
	svc := openService(t, &recordingPrompter{})

	require.ErrorIs(t, svc.ChangePassphrase(ctx, "1111", "abcd", "abcd"), perm.ErrWrongPassphrase)
	require.ErrorIs(t, svc.ChangePassphrase(ctx, "0000", "abcd", "abce"), perm.ErrPassphraseMismatch)
	require.ErrorIs(t, svc.ChangePassphrase(ctx, "0000", "abc", "abc"), perm.ErrPassphraseTooShort)
	require.NoError(t, svc.ChangePassphrase(ctx, "0000", "abcd", "abcd"))

	reopened := New(svc.Store, WithPrompter(StaticPrompter{Passphrase: "abcd"}))
	require.NoError(t, reopened.Open(ctx))
	a, err := reopened.Add(ctx, mutate.AddInput{Name: "a", Quantity: 1})
	require.NoError(t, err)
	_, err = reopened.Toggle(ctx, a.Item.ID)
	require.NoError(t, err)
}

func TestService_ViewUsesClock(t *testing.T) {
	ctx := context.Background()
	svc := openService(t, &recordingPrompter{})

	_, err := svc.Add(ctx, mutate.AddInput{Name: "yogurt", Quantity: 1, Expiry: "2024-01-12"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, mutate.AddInput{Name: "rice", Quantity: 1})
	require.NoError(t, err)

	v := svc.View(model.FilterUncompleted, "")
	require.Len(t, v.Rows, 2)
	require.Equal(t, "yogurt", v.Rows[0].Item.Name)
	require.Equal(t, model.TierCritical, v.Rows[0].Tier)
	require.Equal(t, 2, *v.Rows[0].DaysLeft)
	require.Equal(t, model.TierNone, v.Rows[1].Tier)
	require.Equal(t, "2024-01-10", v.Today)
}

func TestService_ImportMergeAndReplace(t *testing.T) {
	ctx := context.Background()
	svc := openService(t, StaticPrompter{Passphrase: store.DefaultPassphrase})

	_, err := svc.Add(ctx, mutate.AddInput{Name: "local", Quantity: 1})
	require.NoError(t, err)
	local := svc.Items()[0]

	export := &store.DB{Items: []model.Item{
		local,
		{ID: 1, Name: "from-browser", Quantity: 2},
	}}
	n, err := svc.Import(ctx, export, false)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Len(t, svc.Items(), 2)

	n, err = svc.Import(ctx, &store.DB{Items: []model.Item{{ID: 9, Name: "only"}}, Passphrase: "wxyz"}, true)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Len(t, svc.Items(), 1)

	reopened := New(svc.Store)
	require.NoError(t, reopened.Open(ctx))
	require.Equal(t, "only", reopened.Items()[0].Name)
	require.ErrorIs(t, reopened.ChangePassphrase(ctx, "0000", "abcd", "abcd"), perm.ErrWrongPassphrase)
}

func TestService_Reset(t *testing.T) {
	ctx := context.Background()
	p := &recordingPrompter{passphrase: store.DefaultPassphrase, yes: true}
	svc := openService(t, p)

	_, err := svc.Add(ctx, mutate.AddInput{Name: "a", Quantity: 1})
	require.NoError(t, err)

	done, err := svc.Reset(ctx)
	require.NoError(t, err)
	require.True(t, done)
	require.Empty(t, svc.Items())
}

func TestService_ResetDoesNotRestoreLegacyExport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	export := `[{"id":5,"name":"eggs","quantity":6,"expiry":"","location":"","isCompleted":false}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inventory.json"), []byte(export), 0o644))

	svc := New(store.Store{Dir: dir}, WithPrompter(&recordingPrompter{passphrase: store.DefaultPassphrase, yes: true}))
	require.NoError(t, svc.Open(ctx))
	require.Len(t, svc.Items(), 1)

	done, err := svc.Reset(ctx)
	require.NoError(t, err)
	require.True(t, done)
	require.Empty(t, svc.Items())

	reopened := New(svc.Store)
	require.NoError(t, reopened.Open(ctx))
	require.Empty(t, reopened.Items())
}

func TestService_ImportRejectsInvalidItems(t *testing.T) {
	ctx := context.Background()
	svc := openService(t, StaticPrompter{Passphrase: store.DefaultPassphrase})

	_, err := svc.Add(ctx, mutate.AddInput{Name: "local", Quantity: 1})
	require.NoError(t, err)
	before := svc.Items()

	bad := []*store.DB{
		{Items: []model.Item{{ID: 1, Name: "a", Quantity: 1}, {ID: 1, Name: "b", Quantity: 5}}},
		{Items: []model.Item{{ID: 2, Name: "b", Quantity: -5}}},
		{Items: []model.Item{{ID: 3, Name: "  ", Quantity: 1}}},
	}
	for _, in := range bad {
		for _, replace := range []bool{false, true} {
			n, err := svc.Import(ctx, in, replace)
			require.ErrorIs(t, err, ErrInvalidImport)
			require.Zero(t, n)
			require.Equal(t, before, svc.Items())
		}
	}

	reopened := New(svc.Store)
	require.NoError(t, reopened.Open(ctx))
	require.Equal(t, before, reopened.Items())
}

func TestService_FailedSaveLeavesCollectionUnchanged(t *testing.T) {
	ctx := context.Background()
	svc := openService(t, StaticPrompter{Passphrase: store.DefaultPassphrase, Yes: true})

	added, err := svc.Add(ctx, mutate.AddInput{Name: "rice", Quantity: 2})
	require.NoError(t, err)
	id := added.Item.ID
	before := svc.Items()

	// A store dir below a regular file cannot be created, so every save fails.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	svc.Store.Dir = filepath.Join(blocker, "workspace")

	_, err = svc.Add(ctx, mutate.AddInput{Name: "milk", Quantity: 2})
	require.Error(t, err)
	require.Equal(t, before, svc.Items())

	_, err = svc.Add(ctx, mutate.AddInput{Name: "rice", Quantity: 3})
	require.Error(t, err)
	require.Equal(t, before, svc.Items())

	_, err = svc.Toggle(ctx, id)
	require.Error(t, err)
	require.Equal(t, before, svc.Items())

	_, err = svc.SetQuantity(ctx, id, 7)
	require.Error(t, err)
	require.Equal(t, before, svc.Items())

	_, err = svc.Delete(ctx, id)
	require.Error(t, err)
	require.Equal(t, before, svc.Items())

	_, err = svc.Import(ctx, &store.DB{Items: []model.Item{{ID: 1, Name: "beans", Quantity: 1}}}, true)
	require.Error(t, err)
	require.Equal(t, before, svc.Items())

	require.Error(t, svc.ChangePassphrase(ctx, store.DefaultPassphrase, "abcd", "abcd"))
	require.NoError(t, svc.Authorize(store.DefaultPassphrase))

	require.Len(t, svc.View(model.FilterAll, "").Rows, 1)
}

func TestService_ReloadIfChanged(t *testing.T) {
	ctx := context.Background()
	svc := openService(t, &recordingPrompter{})

	reloaded, err := svc.ReloadIfChanged(ctx)
	require.NoError(t, err)
	require.False(t, reloaded)

	// The service's own writes do not need a reload.
	_, err = svc.Add(ctx, mutate.AddInput{Name: "rice", Quantity: 1})
	require.NoError(t, err)
	reloaded, err = svc.ReloadIfChanged(ctx)
	require.NoError(t, err)
	require.False(t, reloaded)

	other := New(svc.Store)
	require.NoError(t, other.Open(ctx))
	_, err = other.Add(ctx, mutate.AddInput{Name: "milk", Quantity: 1})
	require.NoError(t, err)

	reloaded, err = svc.ReloadIfChanged(ctx)
	require.NoError(t, err)
	require.True(t, reloaded)
	require.Len(t, svc.Items(), 2)

	reloaded, err = svc.ReloadIfChanged(ctx)
	require.NoError(t, err)
	require.False(t, reloaded)
}

func TestService_Authorize(t *testing.T) {
	svc := openService(t, &recordingPrompter{})
	require.NoError(t, svc.Authorize(store.DefaultPassphrase))
	require.ErrorIs(t, svc.Authorize(""), perm.ErrWrongPassphrase)

	svc.Policy.EnforceEditGate = false
	require.NoError(t, svc.Authorize(""))
}

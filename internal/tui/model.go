package tui

import (
	"context"

	"pantry-cli/internal/inventory"
	"pantry-cli/internal/model"
	"pantry-cli/internal/query"
	"pantry-cli/internal/store"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalSearch
	modalAdd
	modalPassphrase
	modalConfirmDelete
	modalChangePassphrase
	modalHelp
)

type actionKind int

const (
	actionToggle actionKind = iota
	actionSetQuantity
	actionDelete
)

// pendingAction is a gated edit waiting for the passphrase (and, for delete, a confirmation).
type pendingAction struct {
	kind     actionKind
	id       int64
	name     string
	quantity int
}

const (
	addFieldName = iota
	addFieldQuantity
	addFieldExpiry
	addFieldLocation
	addFieldCount
)

const (
	changeFieldCurrent = iota
	changeFieldNew
	changeFieldConfirm
	changeFieldCount
)

type appModel struct {
	ctx       context.Context
	svc       *inventory.Service
	workspace string

	width  int
	height int

	keys keyMap
	help help.Model
	list list.Model

	filter model.Filter
	search string
	view   query.View

	modal        modalKind
	searchInput  textinput.Model
	addInputs    []textinput.Model
	addFocus     int
	passInput    textinput.Model
	changeInputs []textinput.Model
	changeFocus  int
	confirmFocus confirmModalFocus
	helpView     viewport.Model

	pending     pendingAction
	pendingPass string

	status    string
	statusErr bool

	changes <-chan struct{}
}

func newTextInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 40
	in.Prompt = ""
	return in
}

func newPassphraseInput(placeholder string) textinput.Model {
	in := newTextInput(placeholder, 128)
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	return in
}

func newAppModel(ctx context.Context, svc *inventory.Service, workspace string, changes <-chan struct{}) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	m := appModel{
		ctx:       ctx,
		svc:       svc,
		workspace: workspace,
		keys:      defaultKeyMap(),
		help:      help.New(),
		filter:    model.FilterAll,
		changes:   changes,
	}

	l := list.New(nil, newRowDelegate(svc.Policy.TrackQuantity), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	l.KeyMap.ShowFullHelp.SetEnabled(false)
	l.KeyMap.CloseFullHelp.SetEnabled(false)
	m.list = l

	m.searchInput = newTextInput("search by name", 100)
	m.addInputs = []textinput.Model{
		newTextInput("Name", 200),
		newTextInput("Quantity", 9),
		newTextInput("Expiry (YYYY-MM-DD, optional)", 10),
		newTextInput("Location (optional)", 100),
	}
	m.passInput = newPassphraseInput("Passphrase")
	m.changeInputs = []textinput.Model{
		newPassphraseInput("Current passphrase"),
		newPassphraseInput("New passphrase (min 4)"),
		newPassphraseInput("Confirm new passphrase"),
	}
	m.helpView = viewport.New(0, 0)

	m.refresh()
	return m
}

// refresh recomputes the view and keeps the selection on the same item when it is still listed.
func (m *appModel) refresh() {
	var selected int64
	hadSelection := false
	if ri, ok := m.list.SelectedItem().(rowItem); ok {
		selected = ri.row.Item.ID
		hadSelection = true
	}

	m.view = m.svc.View(m.filter, m.search)
	m.list.SetItems(rowItems(m.view.Rows))

	if hadSelection {
		for i, r := range m.view.Rows {
			if r.Item.ID == selected {
				m.list.Select(i)
				return
			}
		}
	}
	if m.list.Index() >= len(m.view.Rows) && len(m.view.Rows) > 0 {
		m.list.Select(len(m.view.Rows) - 1)
	}
}

// restoreState applies the last session's filter, search and selection.
func (m *appModel) restoreState(st *store.TUIState) {
	if st == nil {
		return
	}
	if f, ok := model.ParseFilter(string(st.Filter)); ok {
		m.filter = f
	}
	m.search = st.Search
	m.searchInput.SetValue(st.Search)
	m.refresh()
	if st.SelectedItemID != 0 {
		m.selectID(st.SelectedItemID)
	}
}

func (m appModel) state() *store.TUIState {
	st := &store.TUIState{Version: 1, Filter: m.filter, Search: m.search}
	if row, ok := m.selectedRow(); ok {
		st.SelectedItemID = row.Item.ID
	}
	return st
}

func (m appModel) selectedRow() (query.Row, bool) {
	ri, ok := m.list.SelectedItem().(rowItem)
	if !ok {
		return query.Row{}, false
	}
	return ri.row, true
}

func (m *appModel) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *appModel) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func (m *appModel) resize() {
	// header + blank + footer
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	m.list.SetSize(m.width, h)
	m.help.Width = m.width
	m.helpView.Width = modalBodyWidth(m.width)
	m.helpView.Height = m.height - 8
	if m.helpView.Height < 3 {
		m.helpView.Height = 3
	}
}

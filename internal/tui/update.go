package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pantry-cli/internal/docs"
	"pantry-cli/internal/inventory"
	"pantry-cli/internal/model"
	"pantry-cli/internal/mutate"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Init() tea.Cmd {
	return waitForStoreChange(m.changes)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case storeChangedMsg:
		reloaded, err := m.svc.ReloadIfChanged(m.ctx)
		switch {
		case err != nil:
			m.setError(err)
		case reloaded:
			m.refresh()
		}
		return m, waitForStoreChange(m.changes)

	case tea.KeyMsg:
		switch m.modal {
		case modalSearch:
			return m.updateSearch(msg)
		case modalAdd:
			return m.updateAdd(msg)
		case modalPassphrase:
			return m.updatePassphrase(msg)
		case modalConfirmDelete:
			return m.updateConfirmDelete(msg)
		case modalChangePassphrase:
			return m.updateChangePassphrase(msg)
		case modalHelp:
			return m.updateHelp(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.All):
		m.setFilter(model.FilterAll)
		return m, nil
	case key.Matches(msg, m.keys.Uncompleted):
		m.setFilter(model.FilterUncompleted)
		return m, nil
	case key.Matches(msg, m.keys.Completed):
		m.setFilter(model.FilterCompleted)
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.modal = modalSearch
		m.searchInput.SetValue(m.search)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.Add):
		return m.openAdd()

	case key.Matches(msg, m.keys.Toggle):
		if row, ok := m.selectedRow(); ok {
			return m.startGated(pendingAction{kind: actionToggle, id: row.Item.ID, name: row.Item.Name})
		}
		return m, nil

	case key.Matches(msg, m.keys.Inc), key.Matches(msg, m.keys.Dec):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		if !m.svc.Policy.TrackQuantity {
			m.setError(mutate.ErrQuantityUntracked)
			return m, nil
		}
		q := row.Item.Quantity + 1
		if key.Matches(msg, m.keys.Dec) {
			q = row.Item.Quantity - 1
		}
		if q < 0 {
			return m, nil
		}
		return m.startGated(pendingAction{kind: actionSetQuantity, id: row.Item.ID, name: row.Item.Name, quantity: q})

	case key.Matches(msg, m.keys.Delete):
		if row, ok := m.selectedRow(); ok {
			return m.startGated(pendingAction{kind: actionDelete, id: row.Item.ID, name: row.Item.Name})
		}
		return m, nil

	case key.Matches(msg, m.keys.Passphrase):
		m.modal = modalChangePassphrase
		m.changeFocus = changeFieldCurrent
		for i := range m.changeInputs {
			m.changeInputs[i].SetValue("")
			m.changeInputs[i].Blur()
		}
		return m, m.changeInputs[changeFieldCurrent].Focus()

	case key.Matches(msg, m.keys.Reload):
		if err := m.svc.Reload(m.ctx); err != nil {
			m.setError(err)
			return m, nil
		}
		m.refresh()
		m.setStatus("reloaded")
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.modal = modalHelp
		m.helpView.SetContent(helpContent(modalBodyWidth(m.width)))
		m.helpView.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *appModel) setFilter(f model.Filter) {
	m.filter = f
	m.refresh()
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search = ""
		m.searchInput.SetValue("")
		m.searchInput.Blur()
		m.modal = modalNone
		m.refresh()
		return m, nil
	case "enter":
		m.searchInput.Blur()
		m.modal = modalNone
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	// Live search: every keystroke re-filters.
	m.search = m.searchInput.Value()
	m.refresh()
	return m, cmd
}

func (m appModel) openAdd() (tea.Model, tea.Cmd) {
	m.modal = modalAdd
	m.addFocus = addFieldName
	for i := range m.addInputs {
		m.addInputs[i].SetValue("")
		m.addInputs[i].Blur()
	}
	if m.svc.Policy.TrackQuantity {
		m.addInputs[addFieldQuantity].SetValue("1")
	}
	return m, m.addInputs[addFieldName].Focus()
}

func (m appModel) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		return m, nil
	case "tab", "down":
		return m, m.focusAdd(m.nextAddField(1))
	case "shift+tab", "up":
		return m, m.focusAdd(m.nextAddField(-1))
	case "enter":
		return m.submitAdd()
	}
	var cmd tea.Cmd
	m.addInputs[m.addFocus], cmd = m.addInputs[m.addFocus].Update(msg)
	return m, cmd
}

// nextAddField skips the quantity field when quantities are not tracked.
func (m appModel) nextAddField(step int) int {
	f := m.addFocus
	for {
		f = (f + step + addFieldCount) % addFieldCount
		if f != addFieldQuantity || m.svc.Policy.TrackQuantity {
			return f
		}
	}
}

func (m *appModel) focusAdd(field int) tea.Cmd {
	m.addInputs[m.addFocus].Blur()
	m.addFocus = field
	return m.addInputs[field].Focus()
}

func (m appModel) submitAdd() (tea.Model, tea.Cmd) {
	expiry := strings.TrimSpace(m.addInputs[addFieldExpiry].Value())
	if expiry != "" {
		if _, err := time.ParseInLocation(model.DateLayout, expiry, time.Local); err != nil {
			m.setError(fmt.Errorf("invalid expiry %q (expected YYYY-MM-DD)", expiry))
			return m, nil
		}
	}
	// A non-numeric quantity reads as 0, which the add then skips like any invalid input.
	qty, _ := strconv.Atoi(strings.TrimSpace(m.addInputs[addFieldQuantity].Value()))

	res, err := m.svc.Add(m.ctx, mutate.AddInput{
		Name:     m.addInputs[addFieldName].Value(),
		Quantity: qty,
		Expiry:   expiry,
		Location: m.addInputs[addFieldLocation].Value(),
	})
	m.modal = modalNone
	if err != nil {
		m.setError(err)
		return m, nil
	}
	m.refresh()
	switch {
	case res.Skipped:
		m.setStatus("nothing added")
	case res.Merged:
		m.setStatus(fmt.Sprintf("%s: quantity now %d", res.Item.Name, res.Item.Quantity))
		m.selectID(res.Item.ID)
	default:
		m.setStatus("added " + res.Item.Name)
		m.selectID(res.Item.ID)
	}
	return m, nil
}

func (m *appModel) selectID(id int64) {
	for i, r := range m.view.Rows {
		if r.Item.ID == id {
			m.list.Select(i)
			return
		}
	}
}

// startGated asks for the passphrase when the gate is enforced, then continues the action.
func (m appModel) startGated(a pendingAction) (tea.Model, tea.Cmd) {
	m.pending = a
	if !m.svc.Policy.EnforceEditGate {
		return m.afterGate("")
	}
	m.modal = modalPassphrase
	m.passInput.SetValue("")
	return m, m.passInput.Focus()
}

func (m appModel) updatePassphrase(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// A cancelled challenge answers "", which fails the gate.
		m.passInput.SetValue("")
		return m.submitPassphrase()
	case "enter":
		return m.submitPassphrase()
	}
	var cmd tea.Cmd
	m.passInput, cmd = m.passInput.Update(msg)
	return m, cmd
}

func (m appModel) submitPassphrase() (tea.Model, tea.Cmd) {
	pass := m.passInput.Value()
	m.passInput.SetValue("")
	m.passInput.Blur()
	m.modal = modalNone
	if err := m.svc.Authorize(pass); err != nil {
		m.setError(err)
		return m, nil
	}
	return m.afterGate(pass)
}

func (m appModel) afterGate(pass string) (tea.Model, tea.Cmd) {
	if m.pending.kind == actionDelete {
		m.pendingPass = pass
		m.modal = modalConfirmDelete
		m.confirmFocus = confirmFocusCancel
		return m, nil
	}
	m.execute(pass, true)
	return m, nil
}

func (m appModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		if m.confirmFocus == confirmFocusConfirm {
			m.confirmFocus = confirmFocusCancel
		} else {
			m.confirmFocus = confirmFocusConfirm
		}
		return m, nil
	case "y":
		m.modal = modalNone
		m.execute(m.pendingPass, true)
	case "n", "esc":
		m.modal = modalNone
		m.execute(m.pendingPass, false)
	case "enter":
		m.modal = modalNone
		m.execute(m.pendingPass, m.confirmFocus == confirmFocusConfirm)
	}
	return m, nil
}

// execute runs the pending action with pre-collected answers.
func (m *appModel) execute(pass string, confirmed bool) {
	m.svc.Prompt = inventory.StaticPrompter{Passphrase: pass, Yes: confirmed}
	defer func() {
		m.pendingPass = ""
		m.svc.Prompt = inventory.StaticPrompter{}
	}()

	a := m.pending
	var res mutate.Result
	var err error
	switch a.kind {
	case actionToggle:
		res, err = m.svc.Toggle(m.ctx, a.id)
	case actionSetQuantity:
		res, err = m.svc.SetQuantity(m.ctx, a.id, a.quantity)
	case actionDelete:
		res, err = m.svc.Delete(m.ctx, a.id)
	}
	if err != nil {
		m.setError(err)
		return
	}
	m.refresh()

	switch {
	case a.kind == actionDelete && res.Changed:
		m.setStatus("deleted " + a.name)
	case a.kind == actionDelete:
		m.setStatus("delete cancelled")
	case !res.Changed:
		m.setStatus("no change")
	case a.kind == actionToggle && res.Item.IsCompleted:
		m.setStatus(a.name + " completed")
	case a.kind == actionToggle:
		m.setStatus(a.name + " reopened")
	default:
		m.setStatus(fmt.Sprintf("%s: quantity %d", a.name, res.Item.Quantity))
	}
}

func (m appModel) updateChangePassphrase(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		return m, nil
	case "tab", "down":
		return m, m.focusChange((m.changeFocus + 1) % changeFieldCount)
	case "shift+tab", "up":
		return m, m.focusChange((m.changeFocus + changeFieldCount - 1) % changeFieldCount)
	case "enter":
		if m.changeFocus < changeFieldConfirm {
			return m, m.focusChange(m.changeFocus + 1)
		}
		err := m.svc.ChangePassphrase(m.ctx,
			m.changeInputs[changeFieldCurrent].Value(),
			m.changeInputs[changeFieldNew].Value(),
			m.changeInputs[changeFieldConfirm].Value(),
		)
		m.modal = modalNone
		for i := range m.changeInputs {
			m.changeInputs[i].SetValue("")
			m.changeInputs[i].Blur()
		}
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.setStatus("passphrase changed")
		return m, nil
	}
	var cmd tea.Cmd
	m.changeInputs[m.changeFocus], cmd = m.changeInputs[m.changeFocus].Update(msg)
	return m, cmd
}

func (m *appModel) focusChange(field int) tea.Cmd {
	m.changeInputs[m.changeFocus].Blur()
	m.changeFocus = field
	return m.changeInputs[field].Focus()
}

func (m appModel) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		m.modal = modalNone
		return m, nil
	}
	var cmd tea.Cmd
	m.helpView, cmd = m.helpView.Update(msg)
	return m, cmd
}

// helpContent renders the key and alert topics for the help overlay.
func helpContent(width int) string {
	var parts []string
	for _, topic := range []string{"keys", "alerts", "passphrase"} {
		if body, ok := docs.Get(topic); ok {
			parts = append(parts, docs.Render(body, "", width))
		}
	}
	if len(parts) == 0 {
		return "No help available."
	}
	return strings.Join(parts, "\n\n")
}

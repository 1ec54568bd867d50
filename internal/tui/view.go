package tui

import (
	"fmt"
	"strings"

	"pantry-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	if m.modal != modalNone && m.modal != modalSearch {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.modalView())
	}

	var body string
	if m.view.Empty {
		body = styleMuted().Render("  No items.")
	} else {
		body = m.list.View()
	}

	out := strings.Join([]string{
		m.headerView(),
		normalizePane(body, m.width, m.height-3),
		strings.Repeat(glyphHRule(), max(m.width, 0)),
		m.footerView(),
	}, "\n")
	return out
}

func (m appModel) headerView() string {
	title := styleTitle().Render("Pantry")
	if m.workspace != "" {
		title += styleMuted().Render(" " + glyphBullet() + " " + m.workspace)
	}

	tabs := []struct {
		f     model.Filter
		label string
	}{
		{model.FilterAll, "a:all"},
		{model.FilterUncompleted, "u:open"},
		{model.FilterCompleted, "c:done"},
	}
	var parts []string
	for _, t := range tabs {
		if t.f == m.filter {
			parts = append(parts, lipgloss.NewStyle().Bold(true).Underline(true).Render(t.label))
		} else {
			parts = append(parts, styleMuted().Render(t.label))
		}
	}

	search := ""
	switch {
	case m.modal == modalSearch:
		search = "/" + m.searchInput.View()
	case m.search != "":
		search = styleMuted().Render(fmt.Sprintf("/%s", m.search))
	}

	line := title + "  " + strings.Join(parts, " ")
	if search != "" {
		line += "  " + search
	}
	return fitWidth(line, m.width)
}

func (m appModel) footerView() string {
	if m.status != "" {
		st := styleMuted()
		if m.statusErr {
			st = styleError()
		}
		return fitWidth(st.Render(m.status), m.width)
	}
	return fitWidth(m.help.ShortHelpView(m.keys.ShortHelp()), m.width)
}

func (m appModel) modalView() string {
	bodyW := modalBodyWidth(m.width)
	switch m.modal {
	case modalAdd:
		labels := []string{"Name", "Quantity", "Expiry", "Location"}
		var lines []string
		for i, in := range m.addInputs {
			if i == addFieldQuantity && !m.svc.Policy.TrackQuantity {
				continue
			}
			label := labels[i]
			if i == m.addFocus {
				label = lipgloss.NewStyle().Bold(true).Render(label)
			}
			lines = append(lines, label, renderInputLine(bodyW, in.View()), "")
		}
		lines = append(lines, styleMuted().Render("tab: next field   enter: add   esc: cancel"))
		return renderModalBox(m.width, "Add item", strings.Join(lines, "\n"))

	case modalPassphrase:
		body := strings.Join([]string{
			fmt.Sprintf("Passphrase required to %s %q.", actionVerb(m.pending.kind), m.pending.name),
			"",
			renderInputLine(bodyW, m.passInput.View()),
			"",
			styleMuted().Render("enter: continue   esc: cancel"),
		}, "\n")
		return renderModalBox(m.width, "Passphrase", body)

	case modalConfirmDelete:
		return renderConfirmModal(m.width, "Delete item", fmt.Sprintf("Delete %q?", m.pending.name), "Delete", "Cancel", m.confirmFocus)

	case modalChangePassphrase:
		labels := []string{"Current", "New", "Confirm"}
		var lines []string
		for i, in := range m.changeInputs {
			label := labels[i]
			if i == m.changeFocus {
				label = lipgloss.NewStyle().Bold(true).Render(label)
			}
			lines = append(lines, label, renderInputLine(bodyW, in.View()), "")
		}
		lines = append(lines, styleMuted().Render("enter: next/save   esc: cancel"))
		return renderModalBox(m.width, "Change passphrase", strings.Join(lines, "\n"))

	case modalHelp:
		return renderModalBox(m.width, "Help", m.helpView.View()+"\n\n"+styleMuted().Render("j/k: scroll   esc/?: close"))
	}
	return ""
}

func actionVerb(k actionKind) string {
	switch k {
	case actionToggle:
		return "toggle"
	case actionSetQuantity:
		return "change the quantity of"
	default:
		return "delete"
	}
}

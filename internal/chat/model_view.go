package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View composes the header, feed, status line, composer, and the
// exclusive auxiliary panel. The panel coordinator's state is the only
// signal narrowing the main region.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := headerStyle.Render(m.workspace.Name + " · " + m.scopeTitle)

	status := " "
	if m.status != "" {
		if m.statusIsErr {
			status = errorStyle.Render(m.status)
		} else {
			status = okStyle.Render(m.status)
		}
	}

	composer := m.input.View()
	if m.dispatch.Sending(m.activeCursor().Scope()) {
		composer = metaStyle.Render(m.spin.View() + " sending...")
	}
	if m.editingID != "" {
		composer = metaStyle.Render("editing #"+m.editingID) + "\n" + composer
	}
	if m.attachPath != "" {
		composer = metaStyle.Render("attachment: "+m.attachPath) + "\n" + composer
	}

	main := strings.Join([]string{
		header,
		m.viewport.View(),
		status,
		composer,
	}, "\n")

	out := main
	if m.panels.Open() {
		main = lipgloss.NewStyle().Width(m.mainWidth()).Render(main)
		out = lipgloss.JoinHorizontal(lipgloss.Top, main, m.renderPanel())
	}
	return m.zones.Scan(out)
}

func (m *Model) renderPanel() string {
	width := m.panelWidth()
	if _, ok := m.panels.Thread(); ok {
		return panelStyle.Width(width).Render(m.renderThreadPanel(width - 2))
	}
	if memberID, ok := m.panels.Profile(); ok {
		return panelStyle.Width(width).Render(m.renderProfilePanel(memberID, width-2))
	}
	return ""
}

package chat

const (
	inputHeight    = 3
	headerHeight   = 1
	statusHeight   = 1
	minPanelWidth  = 32
	panelFraction  = 3 // panel takes width/panelFraction columns
	displayIDWidth = 4
)

func (m *Model) panelWidth() int {
	if !m.panels.Open() {
		return 0
	}
	w := m.width / panelFraction
	if w < minPanelWidth {
		w = minPanelWidth
	}
	if w > m.width-20 {
		w = m.width - 20
	}
	if w < 0 {
		w = 0
	}
	return w
}

// mainWidth is the primary content region; opening a panel narrows it.
func (m *Model) mainWidth() int {
	width := m.width - m.panelWidth()
	if width < 1 {
		width = 1
	}
	return width
}

func (m *Model) feedHeight() int {
	h := m.height - headerHeight - statusHeight - inputHeight - 2
	if h < 1 {
		h = 1
	}
	return h
}

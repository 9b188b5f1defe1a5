// Package chat is the terminal UI: it composes the pagination cursor,
// the message grouper, the panel coordinator, and the mutation
// dispatcher into a live workspace view on a single bubbletea event
// loop.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/sirupsen/logrus"

	"github.com/huddlechat/huddle/internal/dispatch"
	"github.com/huddlechat/huddle/internal/feed"
	"github.com/huddlechat/huddle/internal/panel"
	"github.com/huddlechat/huddle/internal/service"
	"github.com/huddlechat/huddle/internal/types"
	"github.com/huddlechat/huddle/internal/upload"
)

// Options configure the chat UI.
type Options struct {
	Service   service.DataService
	Member    types.Member
	Workspace types.Workspace
	Notify    bool
	Log       *logrus.Logger
}

// Run starts the chat UI and blocks until exit.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}
	fmt.Printf("\033]0;huddle · %s\007", opts.Workspace.Name)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = program.Run()
	model.Close()
	return err
}

// Model implements the chat UI.
type Model struct {
	svc       service.DataService
	panels    *panel.Coordinator
	dispatch  *dispatch.Dispatcher
	toasts    *toastNotifier
	member    types.Member
	workspace types.Workspace
	log       *logrus.Logger

	scope      types.Scope
	scopeTitle string
	feedCur    *feed.Cursor
	unsub      service.UnsubscribeFunc

	threadRoot  *types.Message
	threadCur   *feed.Cursor
	threadUnsub service.UnsubscribeFunc

	events chan types.StoreEvent

	viewport    viewport.Model
	input       textarea.Model
	spin        spinner.Model
	zones       *zone.Manager
	width       int
	height      int
	ready       bool
	threadFocus bool

	channels []types.Channel
	members  []types.Member

	status       string
	statusIsErr  bool
	statusSerial int

	editingID   string
	confirmID   string
	attachPath  string
	notifyOnMsg bool
}

// NewModel builds the model and its collaborators for one workspace
// session.
func NewModel(opts Options) (*Model, error) {
	log := opts.Log
	if log == nil {
		log = logrus.New()
	}

	ctx := context.Background()
	channels, err := opts.Service.ListChannels(ctx)
	if err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("workspace has no channels; run `huddle init` first")
	}
	members, err := opts.Service.ListMembers(ctx)
	if err != nil {
		return nil, err
	}

	input := textarea.New()
	input.Placeholder = "Message #" + channels[0].Name
	input.SetHeight(inputHeight)
	input.CharLimit = 0
	input.ShowLineNumbers = false
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	coordinator := panel.NewCoordinator()
	toasts := newToastNotifier()

	m := &Model{
		svc:         opts.Service,
		panels:      coordinator,
		toasts:      toasts,
		member:      opts.Member,
		workspace:   opts.Workspace,
		log:         log,
		channels:    channels,
		members:     members,
		input:       input,
		spin:        spin,
		zones:       zone.New(),
		events:      make(chan types.StoreEvent, 64),
		notifyOnMsg: opts.Notify,
	}
	coordinator.SetOnChange(m.resize)
	// The coordinator is owned by the Update loop. Dispatcher methods
	// run on command goroutines, so they get no panels reference; the
	// panel closes when the store's Deleted event reaches handleEvent.
	m.dispatch = dispatch.New(opts.Service, upload.NewTransport(), toasts, nil, nil, log)

	m.mountScope(types.ChannelScope(channels[0].ID), "#"+channels[0].Name)
	return m, nil
}

// Close releases the live subscriptions.
func (m *Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
	if m.threadUnsub != nil {
		m.threadUnsub()
	}
}

// Init starts the first page fetch and the event/toast pumps.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchPage(m.feedCur, nil),
		m.waitEvent(),
		m.waitToast(),
		m.spin.Tick,
		textarea.Blink,
	)
}

// mountScope points the main feed at a new scope: the old cursor is
// invalidated so in-flight results are dropped, the old subscription
// stops, and a fresh cursor and subscription start.
func (m *Model) mountScope(scope types.Scope, title string) {
	if m.feedCur != nil {
		m.feedCur.Invalidate()
	}
	if m.unsub != nil {
		m.unsub()
	}
	m.scope = scope
	m.scopeTitle = title
	m.feedCur = feed.NewCursor(scope)
	// Delivery blocks rather than drops: a lost Deleted event would
	// leave a removed message on screen until remount. Callbacks run on
	// the mutating goroutine, never on the Update loop, and the loop
	// always re-arms waitEvent, so the buffer drains.
	m.unsub = m.svc.Subscribe(scope, func(ev types.StoreEvent) {
		m.events <- ev
	})
	m.input.Placeholder = "Message " + title
	m.closeThread()
	m.panels.Close()
}

// openThread mounts the thread panel feed for a root message.
func (m *Model) openThread(root types.Message) {
	m.closeThread()
	m.threadRoot = &root
	scope := types.ThreadScope(root.ID)
	m.threadCur = feed.NewCursor(scope)
	m.threadUnsub = m.svc.Subscribe(scope, func(ev types.StoreEvent) {
		m.events <- ev
	})
	m.panels.OpenThread(root.ID)
	m.threadFocus = true
}

// closeThread unmounts the thread feed if one is open.
func (m *Model) closeThread() {
	if m.threadCur != nil {
		m.threadCur.Invalidate()
		m.threadCur = nil
	}
	if m.threadUnsub != nil {
		m.threadUnsub()
		m.threadUnsub = nil
	}
	m.threadRoot = nil
	m.threadFocus = false
}

// activeCursor is the cursor the composer posts to.
func (m *Model) activeCursor() *feed.Cursor {
	if m.threadFocus && m.threadCur != nil {
		return m.threadCur
	}
	return m.feedCur
}

func (m *Model) resize() {
	if !m.ready {
		return
	}
	m.viewport.Width = m.mainWidth()
	m.viewport.Height = m.feedHeight()
	m.input.SetWidth(m.mainWidth() - 2)
	m.refreshViewport(false)
}

// statusTTL is how long a toast stays on screen.
const statusTTL = 4 * time.Second

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.status = text
	m.statusIsErr = isErr
	m.statusSerial++
	serial := m.statusSerial
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{serial: serial}
	})
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	metaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	authorStyle    = lipgloss.NewStyle().Bold(true)
	editedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	reactionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).PaddingLeft(1)
)

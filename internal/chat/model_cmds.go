package chat

import (
	"context"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/huddlechat/huddle/internal/dispatch"
	"github.com/huddlechat/huddle/internal/feed"
	"github.com/huddlechat/huddle/internal/types"
)

type pageMsg struct {
	target *feed.Cursor
	epoch  int
	page   types.FeedPage
	err    error
}

type eventMsg struct {
	ev types.StoreEvent
}

type toastMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct {
	serial int
}

type sendDoneMsg struct {
	scope types.Scope
	err   error
}

type editDoneMsg struct {
	id  string
	err error
}

type removeDoneMsg struct {
	id  string
	err error
}

type reactDoneMsg struct {
	id  string
	err error
}

// fetchPage fetches one page for the cursor under its current epoch.
// The epoch travels with the result so stale completions are dropped.
func (m *Model) fetchPage(cur *feed.Cursor, before *types.MessageCursor) tea.Cmd {
	epoch := cur.Epoch()
	scope := cur.Scope()
	return func() tea.Msg {
		page, err := m.svc.FetchPage(context.Background(), scope, before, 0)
		return pageMsg{target: cur, epoch: epoch, page: page, err: err}
	}
}

// loadMore starts a continuation fetch if the cursor allows one.
func (m *Model) loadMore(cur *feed.Cursor) tea.Cmd {
	before, epoch, ok := cur.BeginLoadMore()
	if !ok {
		return nil
	}
	scope := cur.Scope()
	return func() tea.Msg {
		page, err := m.svc.FetchPage(context.Background(), scope, before, 0)
		return pageMsg{target: cur, epoch: epoch, page: page, err: err}
	}
}

// waitEvent pumps one live store event into the update loop.
func (m *Model) waitEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg{ev: <-m.events}
	}
}

// waitToast pumps one dispatcher notification into the update loop.
func (m *Model) waitToast() tea.Cmd {
	return func() tea.Msg {
		return <-m.toasts.ch
	}
}

func (m *Model) sendCmd(scope types.Scope, body string, image *dispatch.Image) tea.Cmd {
	return func() tea.Msg {
		err := m.dispatch.Send(context.Background(), scope, body, image)
		return sendDoneMsg{scope: scope, err: err}
	}
}

func (m *Model) editCmd(id, body string) tea.Cmd {
	return func() tea.Msg {
		return editDoneMsg{id: id, err: m.dispatch.Edit(context.Background(), id, body)}
	}
}

func (m *Model) removeCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return removeDoneMsg{id: id, err: m.dispatch.Remove(context.Background(), id)}
	}
}

func (m *Model) reactCmd(id, value string) tea.Cmd {
	return func() tea.Msg {
		return reactDoneMsg{id: id, err: m.dispatch.ToggleReaction(context.Background(), id, value)}
	}
}

// loadAttachment reads the staged attachment file, sniffing its
// content type from the extension.
func loadAttachment(path string) (*dispatch.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	contentType := ""
	switch filepath.Ext(path) {
	case ".png":
		contentType = "image/png"
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".gif":
		contentType = "image/gif"
	case ".webp":
		contentType = "image/webp"
	}
	return &dispatch.Image{ContentType: contentType, Data: data}, nil
}

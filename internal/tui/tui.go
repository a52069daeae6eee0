// Package tui is the terminal client for PromptStash. It is presentation
// only; list correctness (debounce, pagination, supersession) lives in
// internal/feed.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/promptstashapp/promptstash-server/internal/feed"
	"github.com/promptstashapp/promptstash-server/pkg/client"
)

// Options configures the TUI.
type Options struct {
	Client *client.Client
	// OnToken is called with a fresh access token after an in-app login,
	// so the caller can persist it.
	OnToken func(token string)
}

// Run starts the TUI and blocks until the user quits.
func Run(opts Options) error {
	holder := &programHolder{}

	ctrl := feed.NewController(feed.Options{
		Fetcher:  opts.Client,
		OnChange: func() { holder.send(feedChangedMsg{}) },
	})

	m := newAppModel(opts.Client, ctrl, opts.OnToken)
	p := tea.NewProgram(m, tea.WithAltScreen())
	holder.set(p)

	// Initial load; the response lands via the OnChange callback.
	ctrl.Refresh()

	_, err := p.Run()
	return err
}

// programHolder lets the controller callback reach the program that is
// created after the controller.
type programHolder struct {
	mu sync.Mutex
	p  *tea.Program
}

func (h *programHolder) set(p *tea.Program) {
	h.mu.Lock()
	h.p = p
	h.mu.Unlock()
}

func (h *programHolder) send(msg tea.Msg) {
	h.mu.Lock()
	p := h.p
	h.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/promptstashapp/promptstash-server/pkg/client"
)

// composeModel is the create/edit form. An empty id means create.
type composeModel struct {
	id string

	title   textinput.Model
	tags    textinput.Model
	content textarea.Model

	focusIdx int // 0 title, 1 tags, 2 content
	err      string
}

func newComposeModel(item *client.Prompt) composeModel {
	title := textinput.New()
	title.Placeholder = "title (optional)"
	title.CharLimit = 200

	tags := textinput.New()
	tags.Placeholder = "tags (comma separated)"
	tags.CharLimit = 200

	content := textarea.New()
	content.Placeholder = "prompt content"

	m := composeModel{title: title, tags: tags, content: content}

	if item != nil {
		m.id = item.ID
		m.title.SetValue(item.Title)
		m.content.SetValue(item.Content)

		names := make([]string, len(item.Tags))
		for i, tag := range item.Tags {
			names[i] = tag.Name
		}
		m.tags.SetValue(strings.Join(names, ", "))
	}

	return m
}

func (m *composeModel) resize(width, height int) {
	if width <= 0 {
		return
	}
	m.title.Width = width - 4
	m.tags.Width = width - 4
	m.content.SetWidth(width - 4)
	contentHeight := height - 10
	if contentHeight < 3 {
		contentHeight = 3
	}
	m.content.SetHeight(contentHeight)
}

func (m *composeModel) focusCmd() tea.Cmd {
	m.focusIdx = 0
	return m.title.Focus()
}

func (m *composeModel) cycleFocus(backward bool) tea.Cmd {
	m.title.Blur()
	m.tags.Blur()
	m.content.Blur()

	if backward {
		m.focusIdx = (m.focusIdx + 2) % 3
	} else {
		m.focusIdx = (m.focusIdx + 1) % 3
	}

	switch m.focusIdx {
	case 0:
		return m.title.Focus()
	case 1:
		return m.tags.Focus()
	default:
		return m.content.Focus()
	}
}

func (m appModel) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		return m, m.compose.cycleFocus(false)
	case "shift+tab":
		return m, m.compose.cycleFocus(true)
	case "ctrl+s":
		return m.saveCompose()
	case "enter":
		// Enter advances through the single-line fields; the textarea
		// keeps it for newlines.
		if m.compose.focusIdx < 2 {
			return m, m.compose.cycleFocus(false)
		}
	}

	var cmd tea.Cmd
	switch m.compose.focusIdx {
	case 0:
		m.compose.title, cmd = m.compose.title.Update(msg)
	case 1:
		m.compose.tags, cmd = m.compose.tags.Update(msg)
	default:
		m.compose.content, cmd = m.compose.content.Update(msg)
	}
	return m, cmd
}

func (m appModel) saveCompose() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.compose.content.Value())
	if content == "" {
		m.compose.err = "content must not be empty"
		return m, nil
	}

	title := strings.TrimSpace(m.compose.title.Value())
	tags := splitTagInput(m.compose.tags.Value())
	c := m.client

	if m.compose.id == "" {
		req := client.CreatePromptRequest{Title: title, Content: content, Tags: tags}
		return m, func() tea.Msg {
			_, err := c.CreatePrompt(context.Background(), req)
			return mutationDoneMsg{action: "Prompt created", err: err}
		}
	}

	id := m.compose.id
	req := client.UpdatePromptRequest{Title: &title, Content: &content, Tags: &tags}
	return m, func() tea.Msg {
		_, err := c.UpdatePrompt(context.Background(), id, req)
		return mutationDoneMsg{action: "Prompt updated", err: err}
	}
}

func (m composeModel) view() string {
	header := " New prompt"
	if m.id != "" {
		header = " Edit prompt"
	}

	parts := []string{
		styleHeader.Render(header),
		"  " + m.title.View(),
		"  " + m.tags.View(),
		"  " + m.content.View(),
	}
	if m.err != "" {
		parts = append(parts, "  "+styleError.Render(m.err))
	}
	parts = append(parts, styleHelp.Render(" ctrl+s save · tab next field · esc cancel"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// loginModel is the sign-in form shown when the server rejects the token.
type loginModel struct {
	email    textinput.Model
	password textinput.Model
	focusIdx int
	busy     bool
	err      string
}

func newLoginModel() loginModel {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 200

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 1024

	email.Focus()
	return loginModel{email: email, password: password}
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "shift+tab":
		if m.login.focusIdx == 0 {
			m.login.focusIdx = 1
			m.login.email.Blur()
			return m, m.login.password.Focus()
		}
		m.login.focusIdx = 0
		m.login.password.Blur()
		return m, m.login.email.Focus()
	case "enter":
		if m.login.focusIdx == 0 {
			m.login.focusIdx = 1
			m.login.email.Blur()
			return m, m.login.password.Focus()
		}
		return m.submitLogin()
	}

	var cmd tea.Cmd
	if m.login.focusIdx == 0 {
		m.login.email, cmd = m.login.email.Update(msg)
	} else {
		m.login.password, cmd = m.login.password.Update(msg)
	}
	return m, cmd
}

func (m appModel) submitLogin() (tea.Model, tea.Cmd) {
	if m.login.busy {
		return m, nil
	}
	m.login.busy = true
	m.login.err = ""

	c := m.client
	req := client.LoginRequest{
		Email:    strings.TrimSpace(m.login.email.Value()),
		Password: m.login.password.Value(),
		DeviceInfo: client.DeviceInfo{
			ClientName: "PromptStash TUI",
			Platform:   "terminal",
		},
	}
	return m, func() tea.Msg {
		resp, err := c.Login(context.Background(), req)
		return loginDoneMsg{resp: resp, err: err}
	}
}

func (m loginModel) view(width int) string {
	parts := []string{
		styleHeader.Render(" Sign in "),
		"",
		"  " + m.email.View(),
		"  " + m.password.View(),
	}
	if m.err != "" {
		parts = append(parts, "", "  "+styleError.Render(m.err))
	}
	parts = append(parts, "", styleHelp.Render(" enter submit · tab switch field · ctrl+c quit"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/promptstashapp/promptstash-server/internal/feed"
	"github.com/promptstashapp/promptstash-server/pkg/client"
)

type mode int

const (
	modeList mode = iota
	modeCompose
	modeConfirmDelete
	modeLogin
)

type focusArea int

const (
	focusList focusArea = iota
	focusSearch
	focusTags
)

// loadMoreSlack is how close to the bottom of the loaded list the
// selection may get before the next page is requested.
const loadMoreSlack = 5

type feedChangedMsg struct{}

type mutationDoneMsg struct {
	action string
	err    error
}

type loginDoneMsg struct {
	resp *client.AuthResponse
	err  error
}

type appModel struct {
	client  *client.Client
	ctrl    *feed.Controller
	onToken func(string)

	mode  mode
	focus focusArea

	search textinput.Model
	tags   textinput.Model
	vp     viewport.Model
	spin   spinner.Model

	selected int
	width    int
	height   int
	ready    bool
	status   string

	compose composeModel
	login   loginModel

	confirmID    string
	confirmTitle string
}

func newAppModel(c *client.Client, ctrl *feed.Controller, onToken func(string)) appModel {
	search := textinput.New()
	search.Placeholder = "search prompts"
	search.Prompt = "/ "
	search.CharLimit = 200

	tags := textinput.New()
	tags.Placeholder = "tags (comma separated)"
	tags.Prompt = "# "
	tags.CharLimit = 200

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(colorAccent)

	return appModel{
		client:  c,
		ctrl:    ctrl,
		onToken: onToken,
		search:  search,
		tags:    tags,
		spin:    spin,
	}
}

func (m appModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listHeight := msg.Height - 6
		if listHeight < 3 {
			listHeight = 3
		}
		if !m.ready {
			m.vp = viewport.New(msg.Width, listHeight)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = listHeight
		}
		m.compose.resize(msg.Width, msg.Height)
		m.refreshList()
		return m, nil

	case feedChangedMsg:
		snap := m.ctrl.Snapshot()
		if snap.State == feed.StateAuthRequired && m.mode != modeLogin {
			m.mode = modeLogin
			m.login = newLoginModel()
		}
		m.clampSelection(snap)
		m.refreshList()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case mutationDoneMsg:
		if msg.err != nil {
			if client.IsUnauthorized(msg.err) {
				m.mode = modeLogin
				m.login = newLoginModel()
				return m, nil
			}
			m.status = styleError.Render(msg.err.Error())
			return m, nil
		}
		m.status = msg.action
		m.mode = modeList
		m.ctrl.Refresh()
		return m, nil

	case loginDoneMsg:
		m.login.busy = false
		if msg.err != nil {
			m.login.err = msg.err.Error()
			return m, nil
		}
		m.client.SetToken(msg.resp.AccessToken)
		if m.onToken != nil {
			m.onToken(msg.resp.AccessToken)
		}
		m.mode = modeList
		m.status = "Signed in as " + msg.resp.User.DisplayName
		m.ctrl.Refresh()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeCompose:
			return m.updateCompose(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case modeLogin:
			return m.updateLogin(msg)
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focus == focusSearch || m.focus == focusTags {
		return m.updateFilterInput(msg)
	}

	snap := m.ctrl.Snapshot()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		m.refreshList()
	case "down", "j":
		if m.selected < len(snap.Items)-1 {
			m.selected++
		}
		m.maybeLoadMore(snap)
		m.refreshList()
	case "/":
		m.focus = focusSearch
		m.search.Focus()
	case "#", "t":
		m.focus = focusTags
		m.tags.Focus()
	case "n":
		m.mode = modeCompose
		m.compose = newComposeModel(nil)
		m.compose.resize(m.width, m.height)
		return m, m.compose.focusCmd()
	case "enter", "e":
		if item, ok := m.selectedItem(snap); ok {
			m.mode = modeCompose
			m.compose = newComposeModel(&item)
			m.compose.resize(m.width, m.height)
			return m, m.compose.focusCmd()
		}
	case "d":
		if item, ok := m.selectedItem(snap); ok {
			m.mode = modeConfirmDelete
			m.confirmID = item.ID
			m.confirmTitle = displayTitle(item)
		}
	case "r":
		m.status = ""
		m.ctrl.Refresh()
	}
	return m, nil
}

func (m appModel) updateFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.Blur()
		m.tags.Blur()
		m.focus = focusList
		return m, nil
	case "enter", "tab":
		if m.focus == focusSearch {
			m.search.Blur()
			m.focus = focusTags
			m.tags.Focus()
		} else {
			m.tags.Blur()
			m.focus = focusList
		}
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	if m.focus == focusSearch {
		m.search, cmd = m.search.Update(msg)
	} else {
		m.tags, cmd = m.tags.Update(msg)
	}

	m.selected = 0
	m.ctrl.SetFilter(m.search.Value(), splitTagInput(m.tags.Value()))
	return m, cmd
}

func (m appModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		id := m.confirmID
		c := m.client
		m.mode = modeList
		return m, func() tea.Msg {
			err := c.DeletePrompt(context.Background(), id)
			return mutationDoneMsg{action: "Prompt deleted", err: err}
		}
	case "n", "esc":
		m.mode = modeList
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// maybeLoadMore requests the next page when the selection drifts near the
// bottom of what is loaded.
func (m *appModel) maybeLoadMore(snap feed.Snapshot) {
	if snap.HasMore && m.selected >= len(snap.Items)-loadMoreSlack {
		m.ctrl.LoadMore()
	}
}

func (m *appModel) clampSelection(snap feed.Snapshot) {
	if m.selected >= len(snap.Items) {
		m.selected = len(snap.Items) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m appModel) selectedItem(snap feed.Snapshot) (client.Prompt, bool) {
	if m.selected < 0 || m.selected >= len(snap.Items) {
		return client.Prompt{}, false
	}
	return snap.Items[m.selected], true
}

// refreshList re-renders the viewport content from the controller state.
func (m *appModel) refreshList() {
	if !m.ready {
		return
	}

	snap := m.ctrl.Snapshot()
	if len(snap.Items) == 0 {
		switch snap.State {
		case feed.StateFetchingFresh:
			m.vp.SetContent(styleMuted.Render("loading..."))
		case feed.StateAuthRequired:
			m.vp.SetContent(styleMuted.Render("sign in to see your prompts"))
		default:
			m.vp.SetContent(styleMuted.Render("no prompts match this filter"))
		}
		return
	}

	var b strings.Builder
	for i, item := range snap.Items {
		row := m.renderRow(item)
		if i == m.selected {
			row = styleSelectedRow.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	if snap.HasMore {
		b.WriteString(styleMuted.Render("  ..."))
	}
	m.vp.SetContent(b.String())
	m.scrollToSelection()
}

func (m *appModel) renderRow(item client.Prompt) string {
	title := styleTitle.Render(displayTitle(item))

	var tagNames []string
	for _, tag := range item.Tags {
		tagNames = append(tagNames, "#"+tag.Name)
	}
	tags := ""
	if len(tagNames) > 0 {
		tags = "  " + styleTag.Render(strings.Join(tagNames, " "))
	}

	stamp := styleMuted.Render("  " + item.UpdatedAt.Format("2006-01-02 15:04"))
	return fmt.Sprintf(" %s%s%s", title, tags, stamp)
}

// scrollToSelection keeps the selected row inside the viewport.
func (m *appModel) scrollToSelection() {
	top := m.vp.YOffset
	bottom := top + m.vp.Height - 1
	if m.selected < top {
		m.vp.SetYOffset(m.selected)
	} else if m.selected > bottom {
		m.vp.SetYOffset(m.selected - m.vp.Height + 1)
	}
}

func (m appModel) View() string {
	if !m.ready {
		return "loading..."
	}

	switch m.mode {
	case modeCompose:
		return m.compose.view()
	case modeLogin:
		return m.login.view(m.width)
	case modeConfirmDelete:
		return m.viewConfirmDelete()
	}
	return m.viewList()
}

func (m appModel) viewList() string {
	snap := m.ctrl.Snapshot()

	header := styleHeader.Render(" PromptStash ")
	filters := lipgloss.JoinHorizontal(lipgloss.Top, m.search.View(), "  ", m.tags.View())

	var footer string
	switch snap.State {
	case feed.StateFetchingFresh, feed.StateFetchingMore:
		footer = m.spin.View() + " fetching"
	case feed.StateError:
		footer = styleError.Render("fetch failed: " + snap.Err.Error())
	default:
		footer = styleMuted.Render(fmt.Sprintf("%d loaded", len(snap.Items)))
	}
	if m.status != "" {
		footer += "  " + m.status
	}

	help := styleHelp.Render(" n new · enter edit · d delete · / search · # tags · r refresh · q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		filters,
		m.vp.View(),
		footer,
		help,
	)
}

func (m appModel) viewConfirmDelete() string {
	prompt := fmt.Sprintf("Delete %q? (y/n)", m.confirmTitle)
	return lipgloss.JoinVertical(lipgloss.Left,
		styleHeader.Render(" PromptStash "),
		"",
		"  "+styleError.Render(prompt),
	)
}

func displayTitle(item client.Prompt) string {
	if item.Title != "" {
		return item.Title
	}
	first := strings.SplitN(strings.TrimSpace(item.Content), "\n", 2)[0]
	if len(first) > 60 {
		first = first[:60] + "..."
	}
	if first == "" {
		return "(untitled)"
	}
	return first
}

// splitTagInput splits comma-separated tag input, dropping empties. The
// server normalizes further.
func splitTagInput(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/aliases/internal/chat"
	"github.com/lu-zhengda/aliases/internal/domain"
)

const maxRecent = 5

// Resolver runs a lookup to completion. app.LookupService satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, username string) domain.LookupResult
}

// lookupDoneMsg carries a finished lookup back into the update loop.
type lookupDoneMsg struct {
	result domain.LookupResult
}

type model struct {
	resolver Resolver
	report   chat.ReportOptions
	renderer *lipgloss.Renderer

	input   textinput.Model
	spinner spinner.Model
	loading bool
	pending string

	output string
	recent []string

	statusBar statusBar

	width  int
	height int
}

// NewModel creates the console model.
func NewModel(r Resolver, opts chat.ReportOptions) model {
	ti := textinput.New()
	ti.Placeholder = "Username"
	ti.Prompt = "> "
	ti.CharLimit = 64
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = titleStyle

	return model{
		resolver:  r,
		report:    opts,
		renderer:  lipgloss.NewRenderer(os.Stdout),
		input:     ti,
		spinner:   sp,
		statusBar: newStatusBar(),
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.width = msg.Width
		m.input.Width = msg.Width - 8
		return m, nil

	case lookupDoneMsg:
		m.loading = false
		m.statusBar.loading = false
		m.output = chat.ANSI(chat.Report(msg.result, m.report), m.renderer)
		m.remember(msg.result.Username)
		if msg.result.OK() {
			m.statusBar.setMessage(fmt.Sprintf("Found %d previous names for %s",
				len(msg.result.History.Previous), msg.result.History.Current.Name))
		} else {
			m.statusBar.setError(fmt.Sprintf("%s: %s", msg.result.Username, msg.result.Outcome))
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.QuitEmpty) && m.input.Value() == "":
			return m, tea.Quit

		case key.Matches(msg, keys.Clear):
			m.input.Reset()
			m.output = ""
			m.statusBar.setMessage("Ready")
			return m, nil

		case key.Matches(msg, keys.Enter):
			username := strings.TrimSpace(m.input.Value())
			if m.loading || username == "" {
				return m, nil
			}
			m.loading = true
			m.pending = username
			m.statusBar.loading = true
			m.statusBar.setMessage("Looking up " + username + "...")
			m.input.Reset()
			return m, tea.Batch(m.spinner.Tick, m.lookupCmd(username))
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) remember(username string) {
	for i, name := range m.recent {
		if strings.EqualFold(name, username) {
			m.recent = append(m.recent[:i], m.recent[i+1:]...)
			break
		}
	}
	m.recent = append([]string{username}, m.recent...)
	if len(m.recent) > maxRecent {
		m.recent = m.recent[:maxRecent]
	}
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := titleStyle.Render("aliases") + mutedTextStyle.Render("  name history lookup")
	input := inputStyle.Width(m.width - 2).Render(m.input.View())

	var body string
	switch {
	case m.loading:
		body = m.spinner.View() + " Looking up " + m.pending + "..."
	case m.output != "":
		body = m.output
	default:
		body = mutedTextStyle.Render("Type a username and press enter.")
	}
	if len(m.recent) > 0 {
		body += "\n\n" + mutedTextStyle.Render("Recent: ") + successTextStyle.Render(strings.Join(m.recent, ", "))
	}

	// header, input box, report borders and status bar
	reportHeight := m.height - 8
	if reportHeight < 3 {
		reportHeight = 3
	}
	report := reportStyle.Width(m.width - 2).Height(reportHeight).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, header, input, report, m.statusBar.View())
}

func (m model) lookupCmd(username string) tea.Cmd {
	return func() tea.Msg {
		return lookupDoneMsg{result: m.resolver.Resolve(context.Background(), username)}
	}
}

// Run starts the Bubble Tea console.
func Run(r Resolver, opts chat.ReportOptions) error {
	prog := tea.NewProgram(
		NewModel(r, opts),
		tea.WithAltScreen(),
	)
	_, err := prog.Run()
	return err
}

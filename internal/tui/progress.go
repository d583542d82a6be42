package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const maxBarWidth = 60

// ProgressMsg reports that the file at Index of Total is being processed.
type ProgressMsg struct {
	Index   int
	Total   int
	RelPath string
}

// FinishedMsg ends the progress view with a summary or an error.
type FinishedMsg struct {
	Summary string
	Err     error
}

// ProgressModel is the bubbletea model behind ProgressBar.
type ProgressModel struct {
	title   string
	bar     progress.Model
	spinner spinner.Model
	keys    KeyMap
	onQuit  func()

	index    int
	total    int
	current  string
	quitting bool
	finished bool
	summary  string
	err      error
}

// NewProgressModel creates the model. onQuit is called once when the user
// presses a quit key; the view keeps running until FinishedMsg arrives.
func NewProgressModel(title string, onQuit func()) ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return ProgressModel{
		title:   title,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth)),
		spinner: s,
		keys:    DefaultKeyMap(),
		onQuit:  onQuit,
	}
}

// Init implements tea.Model.
func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && !m.quitting {
			m.quitting = true
			if m.onQuit != nil {
				m.onQuit()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-2, maxBarWidth)
		return m, nil

	case ProgressMsg:
		m.index = msg.Index
		m.total = msg.Total
		m.current = msg.RelPath
		return m, nil

	case FinishedMsg:
		m.finished = true
		m.summary = msg.Summary
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Percent is the share of files handed to the extractor so far.
func (m ProgressModel) Percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.index+1) / float64(m.total)
}

// View implements tea.Model.
func (m ProgressModel) View() string {
	if m.finished {
		if m.err != nil {
			return ErrorStyle.Render(SymbolCross+" "+m.err.Error()) + "\n"
		}
		return SuccessStyle.Render(SymbolCheck+" "+m.summary) + "\n"
	}

	var b strings.Builder
	b.WriteString(m.spinner.View() + " " + TitleStyle.Render(m.title) + "\n")
	if m.total > 0 {
		b.WriteString(m.bar.ViewAs(m.Percent()))
		b.WriteString(" " + CounterStyle.Render(fmt.Sprintf("%d/%d", m.index+1, m.total)) + "\n")
		b.WriteString(CurrentFileStyle.Render(m.current) + "\n")
	}
	if m.quitting {
		b.WriteString(HelpStyle.Render("canceling...") + "\n")
	} else {
		b.WriteString(HelpStyle.Render(m.keys.HelpText()) + "\n")
	}
	return b.String()
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type interactiveModel struct {
	err      error
	chk      *checker
	rep      *report
	input    textinput.Model
	viewport viewport.Model
	path     string
	state    modelState
	ready    bool
}

type modelState int

const (
	stateReport modelState = iota
	stateEditPath
)

// headerHeight and footerHeight are the lines View draws around the viewport.
const (
	headerHeight = 2
	footerHeight = 2
)

type checkedMsg struct {
	err  error
	rep  *report
	path string
}

func newInteractiveModel(chk *checker, path string) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "input: "
	ti.Placeholder = "path to a JSON, YAML or CBOR document"
	ti.Width = 60

	return &interactiveModel{
		chk:      chk,
		path:     path,
		input:    ti,
		viewport: viewport.New(80, 20),
		state:    stateReport,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.check(m.path)
}

func (m *interactiveModel) check(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" || path == "-" {
			return checkedMsg{path: path, err: fmt.Errorf("interactive mode needs an input file")}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return checkedMsg{path: path, err: err}
		}
		rep, err := m.chk.check(data)
		return checkedMsg{path: path, rep: rep, err: err}
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-headerHeight-footerHeight)
		m.ready = true
		return m, nil

	case checkedMsg:
		m.path = msg.path
		m.rep = msg.rep
		m.err = msg.err
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.state == stateEditPath {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "enter":
				m.state = stateReport
				m.input.Blur()
				return m, m.check(strings.TrimSpace(m.input.Value()))
			case "esc":
				m.state = stateReport
				m.input.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m, m.check(m.path)
		case "e":
			m.state = stateEditPath
			m.input.SetValue(m.path)
			m.input.CursorEnd()
			return m, m.input.Focus()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *interactiveModel) refresh() {
	st := newStyles(true)
	switch {
	case m.err != nil:
		m.viewport.SetContent(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.rep != nil:
		m.viewport.SetContent(st.details(m.rep, m.chk.label(m.path)))
	}
	m.viewport.GotoTop()
}

func (m *interactiveModel) View() string {
	if !m.ready {
		return "Checking..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("shapecheck"))
	b.WriteString(" ")
	b.WriteString(pathStyle.Render(m.chk.typ.String()))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	if m.state == stateEditPath {
		b.WriteString(m.input.View())
		return b.String()
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf("↑/↓ scroll • e edit input • r recheck • q quit  %3.f%%", m.viewport.ScrollPercent()*100)))
	return b.String()
}

func runInteractive(chk *checker, path string) error {
	p := tea.NewProgram(newInteractiveModel(chk, path), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

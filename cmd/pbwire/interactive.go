package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wirepb/codec"
	"github.com/wippyai/wirepb/schema"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectType modelState = iota
	stateFilter
	stateShowTree
)

// interactiveModel lets the user pick a message type and shows the payload
// decoded as that type.
type interactiveModel struct {
	err      error
	reg      *schema.Registry
	dec      *codec.Decoder
	filter   textinput.Model
	tree     string
	data     []byte
	types    []string
	shown    []string
	selected int
	offset   int
	height   int
	state    modelState
}

func newInteractiveModel(reg *schema.Registry, dec *codec.Decoder, data []byte, typeName string) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "type name"
	ti.Prompt = "filter: "
	ti.Width = 40

	m := &interactiveModel{
		reg:    reg,
		dec:    dec,
		data:   data,
		filter: ti,
		types:  messageNames(reg),
		height: 20,
		state:  stateSelectType,
	}
	m.applyFilter()
	for i, name := range m.shown {
		if name == typeName {
			m.selected = i
			m.decodeSelected()
		}
	}
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 5)
		return m, nil

	case tea.KeyMsg:
		if m.state == stateFilter {
			switch msg.String() {
			case "enter", "esc":
				m.filter.Blur()
				m.state = stateSelectType
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			switch {
			case m.state == stateSelectType && m.selected > 0:
				m.selected--
			case m.state == stateShowTree && m.offset > 0:
				m.offset--
			}

		case "down", "j":
			switch {
			case m.state == stateSelectType && m.selected < len(m.shown)-1:
				m.selected++
			case m.state == stateShowTree && m.offset < strings.Count(m.tree, "\n")-1:
				m.offset++
			}

		case "/":
			if m.state == stateSelectType {
				m.state = stateFilter
				return m, m.filter.Focus()
			}

		case "enter":
			if m.state == stateSelectType && len(m.shown) > 0 {
				m.decodeSelected()
			}

		case "esc":
			if m.state == stateShowTree {
				m.state = stateSelectType
				m.tree = ""
				m.err = nil
			}
		}
	}
	return m, nil
}

func (m *interactiveModel) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.shown = m.shown[:0]
	for _, name := range m.types {
		if q == "" || strings.Contains(strings.ToLower(name), q) {
			m.shown = append(m.shown, name)
		}
	}
	if m.selected >= len(m.shown) {
		m.selected = max(len(m.shown)-1, 0)
	}
}

func (m *interactiveModel) decodeSelected() {
	m.state = stateShowTree
	m.offset = 0
	m.tree = ""
	m.err = nil

	name := m.shown[m.selected]
	msg, err := m.dec.Decode(name, m.data)
	if err != nil {
		m.err = err
		return
	}
	var b bytes.Buffer
	p := &printer{w: &b, reg: m.reg, color: true}
	p.message(msg, 0)
	m.tree = b.String()
	if m.tree == "" {
		m.tree = helpStyle.Render("(empty message)") + "\n"
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("pbwire"))
	b.WriteString(fmt.Sprintf(" %d bytes, %d types\n\n", len(m.data), len(m.types)))

	switch m.state {
	case stateSelectType, stateFilter:
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		if len(m.shown) == 0 {
			b.WriteString(helpStyle.Render("no matching types"))
			b.WriteString("\n")
		}
		for i, name := range m.shown {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + name))
			} else {
				b.WriteString("  " + nameStyle.Render(name))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • / filter • enter decode • q quit"))

	case stateShowTree:
		b.WriteString(fmt.Sprintf("Decoded as %s:\n\n", typeStyle.Render(m.shown[m.selected])))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		} else {
			lines := strings.Split(strings.TrimRight(m.tree, "\n"), "\n")
			end := min(m.offset+m.height, len(lines))
			b.WriteString(strings.Join(lines[m.offset:end], "\n"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
	}

	return b.String()
}

func runInteractive(reg *schema.Registry, dec *codec.Decoder, data []byte, typeName string) error {
	p := tea.NewProgram(newInteractiveModel(reg, dec, data, typeName), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

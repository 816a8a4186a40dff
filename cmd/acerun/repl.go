package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/ajmd17/ace-lang-sub002/internal/ace"
	"github.com/ajmd17/ace-lang-sub002/internal/config"
)

// runREPL picks between the bubbletea interactive console and a plain
// liner-driven fallback, the way a piped-input CLI degrades when
// stdin isn't a real terminal (piped input, CI, …).
func runREPL() int {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return runLinerConsole()
	}
	p := tea.NewProgram(newReplModel())
	if _, err := p.Run(); err != nil {
		fail(err)
		return 1
	}
	return 0
}

type historyEntry struct {
	input  string
	output string
	err    bool
}

type replModel struct {
	input   textinput.Model
	history []historyEntry
	cfg     *config.Config
	tmpFile string
}

func newReplModel() replModel {
	ti := textinput.New()
	ti.Placeholder = "ace> "
	ti.Focus()
	ti.Prompt = "ace> "
	return replModel{input: ti, cfg: config.Defaults()}
}

func (m replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "" {
				return m, nil
			}
			if line == ":quit" || line == ":q" {
				return m, tea.Quit
			}
			m.history = append(m.history, m.evaluate(line))
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
)

func (m replModel) View() string {
	var b strings.Builder
	for _, h := range m.history {
		b.WriteString(promptStyle.Render("ace> " + h.input))
		b.WriteByte('\n')
		if h.err {
			b.WriteString(errorStyle.Render(h.output))
		} else {
			b.WriteString(okStyle.Render(h.output))
		}
		b.WriteByte('\n')
	}
	b.WriteString(m.input.View())
	return b.String()
}

// evaluate compiles and runs line as a standalone program (there is no
// incremental-recompile mode) by round-tripping it through a scratch
// file so ace.Compile's source_path contract stays the only entry
// point.
func (m replModel) evaluate(line string) historyEntry {
	tmp, err := os.CreateTemp("", "ace-repl-*.ace")
	if err != nil {
		return historyEntry{input: line, output: err.Error(), err: true}
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(line); err != nil {
		tmp.Close()
		return historyEntry{input: line, output: err.Error(), err: true}
	}
	tmp.Close()

	bc, err := ace.Compile(tmp.Name(), ace.Options{Config: m.cfg})
	if err != nil {
		return historyEntry{input: line, output: err.Error(), err: true}
	}

	var out strings.Builder
	code, err := ace.Run(bc, ace.RunOptions{Config: m.cfg, Stdout: &out})
	if err != nil {
		return historyEntry{input: line, output: err.Error(), err: true}
	}
	result := out.String()
	if result == "" {
		result = fmt.Sprintf("(exit %d)", code)
	}
	return historyEntry{input: line, output: result}
}

// runLinerConsole is the plain-text fallback for non-tty stdin: a
// GNU-readline-style input loop with no alternate screen buffer.
func runLinerConsole() int {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	m := newReplModel()
	for {
		line, err := state.Prompt("ace> ")
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == ":quit" || line == ":q" {
			break
		}
		state.AppendHistory(line)
		entry := m.evaluate(line)
		fmt.Println(entry.output)
	}
	return 0
}

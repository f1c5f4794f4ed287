package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"fuoco/internal/assistant"
	"fuoco/internal/intent"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive conversation with the assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		m := newChatModel(a.assistant)
		p := tea.NewProgram(m)
		_, err = p.Run()
		return err
	},
}

// Styles for the chat transcript.
var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Events bridged from the assistant callbacks into the bubbletea loop.
type (
	revealMsg     struct{ revealed string }
	revealDoneMsg struct{ final string }
	progressMsg   struct{ pct float64 }
	outcomeMsg    struct {
		outcome assistant.Outcome
		err     error
	}
)

type chatModel struct {
	asst   *assistant.Assistant
	input  textinput.Model
	spin   spinner.Model
	render *glamour.TermRenderer

	events chan tea.Msg
	cancel context.CancelFunc // non-nil while a generation is in flight

	lines      []string
	revealing  string // assistant line being revealed, shown below the transcript
	generating bool
	progress   float64
}

func newChatModel(asst *assistant.Assistant) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Digite sua mensagem..."
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 72

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(76),
	)

	return chatModel{
		asst:   asst,
		input:  ti,
		spin:   sp,
		render: renderer,
		events: make(chan tea.Msg, 64),
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, m.waitForEvent())
}

// waitForEvent pumps one bridged callback event into the update loop.
func (m chatModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			if m.cancel != nil {
				m.cancel()
			}
			m.asst.ClearReveal()
			return m, tea.Quit
		case tea.KeyEsc:
			// Esc abandons the in-flight generation or the current reveal;
			// the conversation stays usable.
			if m.cancel != nil {
				m.cancel()
				m.cancel = nil
			}
			m.asst.ClearReveal()
			if m.revealing != "" {
				m.lines = append(m.lines, statusStyle.Render("(interrompido)"))
				m.revealing = ""
			}
			m.generating = false
			return m, nil
		case tea.KeyEnter:
			return m.handleSubmit()
		}

	case revealMsg:
		m.revealing = msg.revealed
		return m, m.waitForEvent()

	case revealDoneMsg:
		m.revealing = ""
		m.lines = append(m.lines, m.renderAssistant(msg.final))
		return m, m.waitForEvent()

	case progressMsg:
		m.progress = msg.pct
		return m, m.waitForEvent()

	case outcomeMsg:
		m.generating = false
		m.cancel = nil
		m.progress = 0
		if msg.err != nil {
			m.lines = append(m.lines, errorStyle.Render("Erro: "+msg.err.Error()))
			return m, m.waitForEvent()
		}
		switch msg.outcome.Intent {
		case intent.IntentExpense:
			m.lines = append(m.lines, assistantStyle.Render("Assistente: movimentação registrada ✓"))
		case intent.IntentTask:
			m.lines = append(m.lines, assistantStyle.Render("Assistente: tarefa agendada ✓"))
		default:
			if msg.outcome.Cancelled {
				m.lines = append(m.lines, statusStyle.Render("(geração cancelada)"))
			}
			// Generated replies arrive through the reveal events.
		}
		return m, m.waitForEvent()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.generating {
		return m, nil
	}
	if text == "sair" || text == "exit" {
		m.asst.ClearReveal()
		return m, tea.Quit
	}

	m.input.Reset()
	m.lines = append(m.lines, userStyle.Render("Você: ")+text)
	m.generating = true

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	events := m.events
	asst := m.asst
	go func() {
		outcome, err := asst.HandleMessage(ctx, userID, text, assistant.Callbacks{
			OnProgress: func(pct float64) { events <- progressMsg{pct} },
			OnReveal:   func(revealed string) { events <- revealMsg{revealed} },
			OnRevealDone: func(final string) {
				events <- revealDoneMsg{final}
			},
		})
		events <- outcomeMsg{outcome: outcome, err: err}
	}()

	return m, m.waitForEvent()
}

// renderAssistant renders a finished assistant turn through glamour,
// falling back to plain text when rendering fails.
func (m chatModel) renderAssistant(text string) string {
	if m.render != nil {
		if out, err := m.render.Render(text); err == nil {
			return assistantStyle.Render("Assistente:") + "\n" + strings.TrimRight(out, "\n")
		}
	}
	return assistantStyle.Render("Assistente: ") + text
}

func (m chatModel) View() string {
	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("fuoco"))
	sb.WriteString("\n\n")

	for _, line := range m.lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if m.revealing != "" {
		sb.WriteString(assistantStyle.Render("Assistente: ") + m.revealing)
		sb.WriteString("\n")
	} else if m.generating {
		status := "pensando..."
		if m.progress > 0 && m.progress < 100 {
			status = fmt.Sprintf("baixando modelo %.0f%%", m.progress)
		}
		sb.WriteString(m.spin.View() + statusStyle.Render(status))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render("enter envia · esc interrompe · ctrl+c sai"))
	return sb.String()
}

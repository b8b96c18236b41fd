package main

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fdg312/curo/internal/consultation"
)

type submittedMsg struct {
	snap consultation.Snapshot
	err  error
}

type model struct {
	ctrl     *consultation.Controller
	snap     consultation.Snapshot
	input    textarea.Model
	spinner  spinner.Model
	width    int
	copied   bool
	quitting bool
}

func newModel(ctrl *consultation.Controller) model {
	ta := textarea.New()
	ta.Placeholder = "Describe how you're feeling..."
	ta.Focus()
	ta.SetWidth(80)
	ta.SetHeight(4)
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(nord8)

	return model{ctrl: ctrl, snap: ctrl.Snapshot(), input: ta, spinner: s}
}

func (m model) Init() tea.Cmd {
	return textarea.Blink
}

func submit(ctrl *consultation.Controller) tea.Cmd {
	return func() tea.Msg {
		snap, err := ctrl.Submit(context.Background())
		return submittedMsg{snap: snap, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.SetWidth(min(msg.Width-6, 100))
		return m, nil

	case submittedMsg:
		// Errors already surface as a notice on the snapshot.
		m.snap = msg.snap
		if m.snap.Phase == consultation.PhaseIdle {
			m.input.Focus()
			return m, textarea.Blink
		}
		return m, nil

	case spinner.TickMsg:
		if m.snap.Phase != consultation.PhaseSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.snap.Phase {
		case consultation.PhaseIdle:
			return m.updateIdle(msg)
		case consultation.PhaseResulted:
			return m.updateResulted(msg)
		}
		return m, nil
	}

	if m.snap.Phase != consultation.PhaseIdle {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updateIdle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.quitting = true
		return m, tea.Quit
	case "ctrl+d":
		m.snap, _ = m.ctrl.SetIncludeDiet(!m.snap.Input.IncludeDiet)
		return m, nil
	case "ctrl+e":
		m.snap, _ = m.ctrl.SetIncludeExercise(!m.snap.Input.IncludeExercise)
		return m, nil
	case "ctrl+s":
		m.snap, _ = m.ctrl.SetSymptoms(m.input.Value())
		if !m.snap.Input.HasSymptoms() {
			m.snap, _ = m.ctrl.Submit(context.Background())
			return m, nil
		}
		m.input.Blur()
		m.snap.Phase = consultation.PhaseSubmitting
		m.snap.Notice = nil
		return m, tea.Batch(submit(m.ctrl), m.spinner.Tick)
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.snap, _ = m.ctrl.SetSymptoms(after)
	}
	return m, cmd
}

func (m model) updateResulted(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "n":
		snap, err := m.ctrl.NewConsultation()
		if err != nil {
			return m, nil
		}
		m.snap = snap
		m.copied = false
		m.input.Reset()
		m.input.Focus()
		return m, textarea.Blink
	case "c":
		if err := clipboard.WriteAll(renderAdvice(m.snap, false)); err == nil {
			m.copied = true
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Curo health advice"))
	b.WriteString("\n\n")

	switch m.snap.Phase {
	case consultation.PhaseSubmitting:
		b.WriteString(m.spinner.View())
		b.WriteString(" Getting advice...\n")

	case consultation.PhaseResulted:
		b.WriteString(frame(m.snap.ThemeClass).Render(renderAdvice(m.snap, true)))
		b.WriteString("\n\n")
		if m.snap.Degraded {
			b.WriteString(dimStyle.Render("The reply was not structured; showing it as received."))
			b.WriteString("\n")
		}
		if m.copied {
			b.WriteString(onStyle.Render("Copied to clipboard"))
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("n new consultation • c copy • q quit"))

	default:
		b.WriteString(frame(m.snap.ThemeClass).Render(m.input.View()))
		b.WriteString("\n")
		b.WriteString(toggle(m.snap.Input.IncludeDiet) + " Diet tips   ")
		b.WriteString(toggle(m.snap.Input.IncludeExercise) + " Exercise tips\n\n")
		if n := m.snap.Notice; n != nil {
			b.WriteString(noticeStyle(n.Kind).Render(renderNotice(n)))
			b.WriteString("\n\n")
		}
		b.WriteString(helpStyle.Render("ctrl+s submit • ctrl+d diet • ctrl+e exercise • esc quit"))
	}

	b.WriteString("\n")
	return b.String()
}

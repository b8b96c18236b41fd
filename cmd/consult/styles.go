package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/fdg312/curo/internal/advice"
	"github.com/fdg312/curo/internal/consultation"
	"github.com/fdg312/curo/internal/theme"
)

// Nord palette
const (
	nord4  = lipgloss.Color("#D8DEE9")
	nord8  = lipgloss.Color("#88C0D0")
	nord10 = lipgloss.Color("#5E81AC")
	nord11 = lipgloss.Color("#BF616A")
	nord13 = lipgloss.Color("#EBCB8B")
	nord14 = lipgloss.Color("#A3BE8C")
	nord15 = lipgloss.Color("#B48EAD")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(nord8)
	labelStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(nord4)
	helpStyle  = lipgloss.NewStyle().Foreground(nord4)
	onStyle    = lipgloss.NewStyle().Bold(true).Foreground(nord14)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

var toneColors = map[advice.Tone]lipgloss.Color{
	advice.ToneDestructive: nord11,
	advice.ToneWarning:     nord13,
	advice.ToneSuccess:     nord14,
	advice.ToneNeutral:     nord4,
}

var noticeColors = map[consultation.NoticeKind]lipgloss.Color{
	consultation.NoticeValidation:    nord13,
	consultation.NoticeConfiguration: nord13,
	consultation.NoticeError:         nord11,
}

// accent is the frame colour for the document's current theme class.
func accent(class string) lipgloss.Color {
	switch class {
	case theme.Diet.Class():
		return nord14
	case theme.Exercise.Class():
		return nord10
	case theme.Combined.Class():
		return nord15
	default:
		return nord8
	}
}

func frame(class string) lipgloss.Style {
	return boxStyle.BorderForeground(accent(class))
}

func toneStyle(t advice.Tone) lipgloss.Style {
	c, ok := toneColors[t]
	if !ok {
		c = nord4
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}

func noticeStyle(kind consultation.NoticeKind) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(noticeColors[kind])
}

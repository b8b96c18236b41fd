package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fdg312/curo/internal/consultation"
)

// renderAdvice lays the result out in display order. With styled false the
// output is plain text for pipes and the clipboard.
func renderAdvice(snap consultation.Snapshot, styled bool) string {
	a := snap.Advice
	if a == nil {
		return ""
	}
	style := func(s string, st lipgloss.Style) string {
		if styled {
			return st.Render(s)
		}
		return s
	}

	var b strings.Builder
	label := a.CategoryLabel
	if label == "" {
		label = string(a.Category)
	}
	b.WriteString(style("Category: "+label, toneStyle(a.Tone())))
	b.WriteString("\n\n")

	writeSection(&b, style("Relief steps", labelStyle), a.ReliefSteps, !snap.Degraded)
	if a.DietTips != nil {
		writeSection(&b, style("Recommended foods", labelStyle), a.DietTips.Foods, true)
		writeSection(&b, style("Recipes", labelStyle), a.DietTips.Recipes, true)
	}
	if a.ExerciseTips != nil {
		writeSection(&b, style("Exercises", labelStyle), a.ExerciseTips.Exercises, true)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeSection(b *strings.Builder, title string, items []string, numbered bool) {
	if len(items) == 0 {
		return
	}
	b.WriteString(title)
	b.WriteString("\n")
	for i, item := range items {
		if numbered {
			fmt.Fprintf(b, "  %d. %s\n", i+1, item)
		} else {
			fmt.Fprintf(b, "  %s\n", item)
		}
	}
	b.WriteString("\n")
}

func renderNotice(n *consultation.Notice) string {
	if n == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", n.Title, n.Description)
}

func toggle(on bool) string {
	if on {
		return onStyle.Render("[x]")
	}
	return dimStyle.Render("[ ]")
}

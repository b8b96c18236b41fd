package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/fdg312/curo/internal/advice"
)

const disclaimer = "This advice is generated automatically and is not a medical diagnosis. " +
	"Contact a doctor if symptoms are severe or get worse."

type rgb struct{ r, g, b int }

var toneColors = map[advice.Tone]rgb{
	advice.ToneDestructive: {200, 40, 40},
	advice.ToneWarning:     {210, 140, 20},
	advice.ToneSuccess:     {40, 150, 70},
	advice.ToneNeutral:     {110, 110, 110},
}

// RenderPDF lays out one consultation result. It is the only results
// renderer for documents; sections follow the order shown on screen.
func RenderPDF(in advice.Input, a advice.HealthAdvice, degraded bool, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Health advice", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Health advice")
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.Cell(0, 5, tr("Generated "+generatedAt.UTC().Format("2006-01-02 15:04 MST")))
	pdf.Ln(8)

	section(pdf, tr, "Symptoms")
	body(pdf, tr, strings.TrimSpace(in.Symptoms))

	label := a.CategoryLabel
	if label == "" {
		label = string(a.Category)
	}
	c := toneColors[a.Tone()]
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(c.r, c.g, c.b)
	pdf.Cell(0, 8, tr("Category: "+label))
	pdf.Ln(10)
	pdf.SetTextColor(0, 0, 0)

	section(pdf, tr, "Relief steps")
	if degraded {
		body(pdf, tr, strings.Join(a.ReliefSteps, "\n"))
	} else {
		list(pdf, tr, a.ReliefSteps)
	}

	if a.DietTips != nil {
		if len(a.DietTips.Foods) > 0 {
			section(pdf, tr, "Recommended foods")
			list(pdf, tr, a.DietTips.Foods)
		}
		if len(a.DietTips.Recipes) > 0 {
			section(pdf, tr, "Recipes")
			list(pdf, tr, a.DietTips.Recipes)
		}
	}

	if a.ExerciseTips != nil && len(a.ExerciseTips.Exercises) > 0 {
		section(pdf, tr, "Exercises")
		list(pdf, tr, a.ExerciseTips.Exercises)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(110, 110, 110)
	pdf.MultiCell(0, 4, tr(disclaimer), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.Cell(0, 7, tr(title))
	pdf.Ln(7)
}

func body(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	if text == "" {
		text = "-"
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, tr(text), "", "L", false)
	pdf.Ln(3)
}

func list(pdf *gofpdf.Fpdf, tr func(string) string, items []string) {
	pdf.SetFont("Helvetica", "", 10)
	for i, item := range items {
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("%d. %s", i+1, item)), "", "L", false)
	}
	pdf.Ln(3)
}

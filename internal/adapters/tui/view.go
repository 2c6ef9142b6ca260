package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/presentation"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Email Classifier"))
	b.WriteString("\n")
	b.WriteString(m.tabs())
	b.WriteString("\n\n")

	b.WriteString(m.input())
	b.WriteString("\n")

	if m.State.Loading {
		b.WriteString(InfoStyle.Render("Classifying your email..."))
		b.WriteString("\n")
	}

	if f := m.State.Failure; f != nil {
		message := f.Message
		if f.Detail != "" {
			message += "\n" + f.Detail
		}
		b.WriteString(ErrorStyle.Render(message))
		b.WriteString("\n")
	}

	if view := presentation.NewView(m.State.Result); view != nil {
		b.WriteString(RenderResult(view))
		b.WriteString("\n")
	}

	b.WriteString(InfoStyle.Render("tab switch mode • ctrl+s classify • ctrl+u clear • esc quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) tabs() string {
	text, file := TabStyle, TabStyle
	if m.State.Mode == core.ModeFile {
		file = ActiveTabStyle
	} else {
		text = ActiveTabStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, text.Render("Text"), file.Render("File"))
}

func (m Model) input() string {
	if m.State.Mode == core.ModeFile {
		return InputStyle.Render("Path (.txt or .pdf, up to 10MB): "+string(m.Path)+"_") + "\n"
	}

	counter := InfoStyle.Render(fmt.Sprintf("%d/%d characters", core.TextLength(string(m.Text)), core.MaxTextLength))
	return InputStyle.Render(string(m.Text)+"_") + "\n" + counter + "\n"
}

// RenderResult renders a result view as a terminal box
func RenderResult(view *presentation.View) string {
	var b strings.Builder

	b.WriteString(TreatmentStyle(view.Treatment).Render(string(view.Category)))
	b.WriteString(" ")
	b.WriteString(TierStyle(view.Tier).Render(view.TierLabel + ": " + view.Percent))
	b.WriteString(" ")
	b.WriteString(view.Method)
	b.WriteString("\n\n")

	if view.Justification != "" {
		b.WriteString("Justification: " + view.Justification + "\n\n")
	}
	b.WriteString("Suggested reply:\n" + view.SuggestedReply + "\n")

	if c := view.Comparison; c != nil {
		b.WriteString("\n" + renderComparison(c) + "\n")
	}

	meta := "Processed in " + view.ProcessingTime
	if view.ModelName != "" {
		meta += " by " + view.ModelName
	}
	if view.Version != "" {
		meta += " (v" + view.Version + ")"
	}
	b.WriteString("\n" + InfoStyle.Render(meta))

	return BoxStyle.Render(b.String())
}

func renderComparison(c *presentation.Comparison) string {
	panels := make([]string, 0, 2)
	for _, p := range []*presentation.Panel{c.NLP, c.AI} {
		if p != nil {
			panels = append(panels, renderPanel(p))
		}
	}

	agreement := "Methods disagree"
	if c.Agree {
		agreement = "Methods agree"
	}
	return agreement + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, panels...) + "\n" +
		c.Verdict
}

func renderPanel(p *presentation.Panel) string {
	title := p.Title
	style := BoxStyle
	if p.Chosen {
		title += " [chosen]"
		style = ChosenBoxStyle
	}

	body := title + "\n" +
		TreatmentStyle(p.Treatment).Render(string(p.Classification)) + " " +
		TierStyle(p.Tier).Render(p.Percent)
	if p.Reasoning != "" {
		body += "\n" + p.Reasoning
	}
	if f := p.Features; f != nil {
		body += "\n" + InfoStyle.Render(fmt.Sprintf("keywords +%d/-%d, %d words",
			f.ProductiveKeywordCount, f.UnproductiveKeywordCount, f.WordCount))
	}
	return style.Render(body)
}

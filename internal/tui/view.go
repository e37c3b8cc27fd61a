package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"portfolio/internal/wizard"
)

// View renders the UI
func (m Model) View() string {
	header := TitleStyle.Render("Project Quote") + "  " + m.renderSteps()

	var body string
	switch m.wiz.Step() {
	case wizard.StepType:
		body = m.renderTypes()
	case wizard.StepFeatures:
		body = m.renderFeatures()
	case wizard.StepBudget:
		body = m.renderBudget()
	case wizard.StepContact:
		body = m.renderContact()
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, BodyStyle.Render(body), m.renderPanel())
	return lipgloss.JoinVertical(lipgloss.Left, header, content, m.renderStatus(), m.renderHelp())
}

func (m Model) renderSteps() string {
	parts := make([]string, 0, len(wizard.Steps))
	for _, s := range wizard.Steps {
		label := fmt.Sprintf("%d %s", int(s), s)
		switch {
		case s == m.wiz.Step():
			parts = append(parts, StepActiveStyle.Render("● "+label))
		case s < m.wiz.Step():
			parts = append(parts, StepDoneStyle.Render("✓ "+label))
		case m.wiz.CanJumpTo(s):
			parts = append(parts, "○ "+label)
		default:
			parts = append(parts, StepLockedStyle.Render("○ "+label))
		}
	}
	return strings.Join(parts, MutedStyle.Render(" ─ "))
}

func (m Model) row(i int, text string) string {
	if i == m.cursor {
		return ItemSelectedStyle.Render("› "+text) + "\n"
	}
	return ItemStyle.Render("  "+text) + "\n"
}

func (m Model) renderTypes() string {
	var b strings.Builder
	b.WriteString("What are you building?\n\n")
	current := m.wiz.SelectedType()
	for i, t := range m.wiz.Catalog().Types() {
		mark := " "
		if current != nil && current.ID == t.ID {
			mark = "●"
		}
		line := fmt.Sprintf("%s %s  %s", mark, t.Name, MutedStyle.Render("from "+m.wiz.Currency().Format(t.BasePrice)))
		b.WriteString(m.row(i, line))
	}
	return b.String()
}

func (m Model) renderFeatures() string {
	var b strings.Builder
	t := m.wiz.SelectedType()
	if t == nil {
		return "Select a project type first."
	}
	b.WriteString("Which features do you need?\n\n")
	for i, f := range t.Features {
		box := "[ ]"
		if m.wiz.IsFeatureSelected(f.ID) {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s  %s", box, f.Name, MutedStyle.Render("+"+m.wiz.Currency().Format(f.Price)))
		b.WriteString(m.row(i, line))
	}
	return b.String()
}

func (m Model) renderBudget() string {
	var b strings.Builder
	b.WriteString("What is your budget?\n\n")
	for i, band := range m.wiz.Catalog().BudgetBands() {
		mark := " "
		if band == m.wiz.Budget() {
			mark = "●"
		}
		b.WriteString(m.row(i, mark+" "+band))
	}
	return b.String()
}

func (m Model) renderContact() string {
	labels := [focusCount]string{"Name", "Email", "Message", "Verification"}
	var b strings.Builder
	b.WriteString("How can I reach you?\n\n")
	for i, in := range m.inputs {
		b.WriteString(labels[i] + "\n")
		b.WriteString(in.View() + "\n\n")
	}
	switch {
	case m.wiz.InFlight():
		b.WriteString(MutedStyle.Render("[ Sending... ]"))
	case !m.wiz.HasToken():
		b.WriteString(MutedStyle.Render("[ Submit ] waiting for verification"))
	default:
		b.WriteString(StepActiveStyle.Render("[ Submit ]"))
	}
	return b.String()
}

// renderPanel shows the live estimate for the current selection.
func (m Model) renderPanel() string {
	var b strings.Builder
	b.WriteString(StepActiveStyle.Render("Estimate") + "\n\n")
	t := m.wiz.SelectedType()
	if t == nil {
		b.WriteString(MutedStyle.Render("Pick a project type"))
		return PanelStyle.Render(b.String())
	}
	q := m.wiz.Quote()
	b.WriteString(t.Name + "\n")
	fmt.Fprintf(&b, "%d feature(s)\n\n", len(m.wiz.Features()))
	b.WriteString(PriceStyle.Render(m.wiz.Currency().Format(q.TotalPrice)) + "\n")
	fmt.Fprintf(&b, "%d-%d days", q.TimelineMin, q.TimelineMax)
	if m.wiz.Budget() != "" {
		b.WriteString("\n" + MutedStyle.Render("Budget: "+m.wiz.Budget()))
	}
	return PanelStyle.Render(b.String())
}

func (m Model) renderStatus() string {
	if m.notice != "" {
		return " " + MutedStyle.Render(m.notice)
	}
	status := m.wiz.Status()
	switch status.Kind {
	case wizard.StatusSuccess:
		return " " + SuccessStyle.Render(status.Message)
	case wizard.StatusError:
		return " " + ErrorStyle.Render(status.Message)
	}
	return ""
}

func (m Model) renderHelp() string {
	bindings := []key.Binding{keys.Up, keys.Down, keys.Select, keys.Toggle, keys.Back, keys.Jump, keys.Quit}
	if m.wiz.Step() == wizard.StepContact {
		bindings = []key.Binding{keys.Focus, keys.Submit, keys.Leave, keys.Abort}
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return HelpStyle.Render(strings.Join(parts, " • "))
}

// Package tui renders the quote configurator in the terminal.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"portfolio/internal/client"
	"portfolio/internal/wizard"
)

const submitTimeout = 30 * time.Second

// Submitter delivers an inquiry to the intake endpoint.
type Submitter interface {
	SubmitInquiry(ctx context.Context, in wizard.Inquiry) (*client.SubmitResult, error)
}

// Contact step focus order: the three contact fields, then the token.
const (
	focusName = iota
	focusEmail
	focusMessage
	focusToken
	focusCount
)

// TokenMsg delivers a freshly issued verification token.
type TokenMsg struct{ Token string }

// TokenExpiredMsg tells the model its token can no longer be used.
type TokenExpiredMsg struct{}

// submitDoneMsg carries the outcome of an in-flight submission.
type submitDoneMsg struct {
	result *client.SubmitResult
	err    error
}

// Model is the bubbletea model wrapping a wizard.
type Model struct {
	wiz    *wizard.Wizard
	submit Submitter
	token  tea.Cmd

	cursor int
	inputs []textinput.Model
	focus  int

	notice string
	width  int
}

// Option configures a Model.
type Option func(*Model)

// WithToken makes the model receive token asynchronously on start, the way a
// challenge widget would deliver it.
func WithToken(token string) Option {
	return func(m *Model) {
		if token == "" {
			return
		}
		m.token = func() tea.Msg { return TokenMsg{Token: token} }
	}
}

// NewModel creates the configurator model.
func NewModel(wiz *wizard.Wizard, submit Submitter, opts ...Option) Model {
	m := Model{
		wiz:    wiz,
		submit: submit,
		inputs: make([]textinput.Model, focusCount),
	}
	placeholders := [focusCount]string{"Your name", "you@example.com", "Tell me about the project", "Verification token"}
	limits := [focusCount]int{100, 254, 2000, 2048}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = limits[i]
		ti.Width = 40
		m.inputs[i] = ti
	}
	m.inputs[focusToken].EchoMode = textinput.EchoPassword
	m.inputs[focusName].Focus()

	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts token delivery, if any.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.token)
}

// Wizard exposes the underlying state.
func (m Model) Wizard() *wizard.Wizard { return m.wiz }

func (m Model) submitCmd(in wizard.Inquiry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		res, err := m.submit.SubmitInquiry(ctx, in)
		return submitDoneMsg{result: res, err: err}
	}
}

// listLen is the number of rows on the current list step.
func (m Model) listLen() int {
	switch m.wiz.Step() {
	case wizard.StepType:
		return len(m.wiz.Catalog().Types())
	case wizard.StepFeatures:
		if t := m.wiz.SelectedType(); t != nil {
			return len(t.Features)
		}
	case wizard.StepBudget:
		return len(m.wiz.Catalog().BudgetBands())
	}
	return 0
}

package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"portfolio/internal/wizard"
	apperrors "portfolio/pkg/errors"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case TokenMsg:
		m.wiz.SetVerificationToken(msg.Token)
		m.inputs[focusToken].SetValue(msg.Token)
		m.notice = "Verification complete."
		return m, nil

	case TokenExpiredMsg:
		m.wiz.ClearVerificationToken()
		m.inputs[focusToken].Reset()
		m.notice = "Verification expired. Please verify again."
		return m, nil

	case submitDoneMsg:
		m.wiz.CompleteSubmit(msg.err)
		m.inputs[focusToken].Reset()
		m.notice = ""
		if msg.err == nil {
			for i := range m.inputs {
				m.inputs[i].Reset()
			}
			m.cursor = 0
			m.setFocus(focusName)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Abort) {
			return m, tea.Quit
		}
		if m.wiz.Step() == wizard.StepContact {
			return m.updateContact(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < m.listLen()-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Jump):
		m.jump(wizard.Step(msg.Runes[0] - '0'))

	case key.Matches(msg, keys.Back):
		if m.wiz.Back() {
			m.cursor = 0
		}

	case key.Matches(msg, keys.Next):
		m.next()

	case key.Matches(msg, keys.Toggle):
		if m.wiz.Step() == wizard.StepFeatures {
			if t := m.wiz.SelectedType(); t != nil && m.cursor < len(t.Features) {
				m.wiz.ToggleFeature(t.Features[m.cursor].ID)
			}
		}

	case key.Matches(msg, keys.Select):
		m.selectCurrent()
	}
	return m, nil
}

// selectCurrent applies the row under the cursor and advances.
func (m *Model) selectCurrent() {
	switch m.wiz.Step() {
	case wizard.StepType:
		types := m.wiz.Catalog().Types()
		if m.cursor >= len(types) {
			return
		}
		if err := m.wiz.SelectType(types[m.cursor].ID); err != nil {
			m.notice = err.Error()
			return
		}
	case wizard.StepBudget:
		bands := m.wiz.Catalog().BudgetBands()
		if m.cursor < len(bands) {
			if err := m.wiz.SetBudget(bands[m.cursor]); err != nil {
				m.notice = err.Error()
				return
			}
		}
	}
	m.next()
}

func (m *Model) next() {
	if err := m.wiz.Next(); err != nil {
		m.notice = err.Error()
		return
	}
	m.cursor = 0
	if m.wiz.Step() == wizard.StepContact {
		m.setFocus(m.focus)
	}
}

func (m *Model) jump(s wizard.Step) {
	if err := m.wiz.JumpTo(s); err != nil {
		m.notice = err.Error()
		return
	}
	m.cursor = 0
}

func (m Model) updateContact(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Leave):
		m.wiz.Back()
		m.cursor = 0
		return m, nil

	case key.Matches(msg, keys.Submit):
		return m.trySubmit()

	case key.Matches(msg, keys.Select):
		if m.focus == focusToken {
			return m.trySubmit()
		}
		m.setFocus(m.focus + 1)
		return m, nil

	case key.Matches(msg, keys.Focus):
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil

	case key.Matches(msg, keys.Prev):
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	value := m.inputs[m.focus].Value()
	switch m.focus {
	case focusName:
		m.wiz.SetContactField(wizard.FieldName, value)
	case focusEmail:
		m.wiz.SetContactField(wizard.FieldEmail, value)
	case focusMessage:
		m.wiz.SetContactField(wizard.FieldMessage, value)
	case focusToken:
		m.wiz.SetVerificationToken(value)
	}
	return m, cmd
}

// trySubmit starts a submission unless one is already in flight.
func (m Model) trySubmit() (tea.Model, tea.Cmd) {
	if m.wiz.InFlight() {
		return m, nil
	}
	in, err := m.wiz.BeginSubmit()
	if err != nil {
		m.notice = err.Error()
		if appErr, ok := apperrors.As(err); ok {
			m.notice = appErr.Message
		}
		return m, nil
	}
	m.notice = "Sending..."
	return m, m.submitCmd(in)
}

func (m *Model) setFocus(i int) {
	if i >= focusCount {
		i = focusCount - 1
	}
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

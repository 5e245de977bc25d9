// Package editor содержит модель экрана редактирования записи коллекции для TUI
package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-discography/internal/catalog"
	"github.com/hazadus/go-discography/internal/collection"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Margin(1, 0)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(16)
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Margin(1, 0)
	savingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Margin(1, 0)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
)

// SavedMsg сообщает о завершении сохранения
type SavedMsg[F catalog.Fields] struct {
	Err error
}

// GoBackMsg отправляется при закрытии редактора
type GoBackMsg[F catalog.Fields] struct{}

// Model представляет модель экрана редактирования записи.
// Поля ввода отражают буфер редактирования менеджера коллекции.
type Model[F catalog.Fields] struct {
	ctx        context.Context
	manager    *collection.Manager[F]
	schema     catalog.Schema[F]
	heading    string
	inputs     []textinput.Model
	focusIndex int
	err        string
	saving     bool
}

// NewModel создает редактор для открытого буфера менеджера
func NewModel[F catalog.Fields](ctx context.Context, manager *collection.Manager[F], schema catalog.Schema[F]) *Model[F] {
	m := &Model[F]{
		ctx:     ctx,
		manager: manager,
		schema:  schema,
		heading: fmt.Sprintf("Новая запись: %s", strings.ToLower(manager.Kind().Noun())),
	}

	var values map[string]string
	if buffer, ok := manager.Buffer(); ok {
		values = schema.Values(buffer.Body())
		if id, persisted := catalog.IDOf(buffer); persisted {
			m.heading = fmt.Sprintf("Редактирование: %s #%d", strings.ToLower(manager.Kind().Noun()), id)
		}
	}

	fields := schema.Fields()
	m.inputs = make([]textinput.Model, len(fields))
	for i, f := range fields {
		input := textinput.New()
		input.Placeholder = f.Placeholder
		input.SetValue(values[f.Name])
		input.PromptStyle = blurredStyle
		input.TextStyle = blurredStyle
		m.inputs[i] = input
	}
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
		m.inputs[0].PromptStyle = focusedStyle
		m.inputs[0].TextStyle = focusedStyle
	}
	return m
}

// Init инициализирует модель
func (m *Model[F]) Init() tea.Cmd {
	return textinput.Blink
}

// Values возвращает текущие значения полей ввода
func (m *Model[F]) Values() map[string]string {
	values := make(map[string]string, len(m.inputs))
	for i, f := range m.schema.Fields() {
		values[f.Name] = strings.TrimSpace(m.inputs[i].Value())
	}
	return values
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model[F]) Update(msg tea.Msg) (*Model[F], tea.Cmd) {
	switch msg := msg.(type) {
	case SavedMsg[F]:
		m.saving = false
		if msg.Err != nil {
			// Буфер остается открытым, можно исправить и повторить
			m.err = msg.Err.Error()
			return m, nil
		}
		return m, goBack[F]

	case tea.KeyMsg:
		if m.saving {
			return m, nil
		}

		switch msg.String() {
		case "esc":
			if err := m.manager.Cancel(); err != nil {
				m.err = err.Error()
				return m, nil
			}
			return m, goBack[F]

		case "ctrl+s":
			return m, m.save()

		case "tab", "shift+tab", "enter", "up", "down":
			s := msg.String()

			if s == "enter" && m.focusIndex == len(m.inputs) {
				return m, m.save()
			}

			if s == "up" || s == "shift+tab" {
				m.focusIndex--
			} else {
				m.focusIndex++
			}

			if m.focusIndex > len(m.inputs) {
				m.focusIndex = 0
			} else if m.focusIndex < 0 {
				m.focusIndex = len(m.inputs)
			}

			cmds := make([]tea.Cmd, len(m.inputs))
			for i := range m.inputs {
				if i == m.focusIndex {
					cmds[i] = m.inputs[i].Focus()
					m.inputs[i].PromptStyle = focusedStyle
					m.inputs[i].TextStyle = focusedStyle
				} else {
					m.inputs[i].Blur()
					m.inputs[i].PromptStyle = blurredStyle
					m.inputs[i].TextStyle = blurredStyle
				}
			}
			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg:
		for i := range m.inputs {
			m.inputs[i].Width = msg.Width - 22
		}
		return m, nil
	}

	if m.focusIndex < len(m.inputs) {
		var cmd tea.Cmd
		m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
		return m, cmd
	}
	return m, nil
}

// save переносит поля ввода в буфер и отправляет его в хранилище
func (m *Model[F]) save() tea.Cmd {
	if err := m.manager.UpdateField(m.schema.Patch(m.Values())); err != nil {
		m.err = err.Error()
		return nil
	}

	m.err = ""
	m.saving = true
	manager, ctx := m.manager, m.ctx
	return func() tea.Msg {
		return SavedMsg[F]{Err: manager.Save(ctx)}
	}
}

func goBack[F catalog.Fields]() tea.Msg {
	return GoBackMsg[F]{}
}

// View отображает модель
func (m *Model[F]) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.heading))
	b.WriteString("\n\n")

	for i, f := range m.schema.Fields() {
		b.WriteString(labelStyle.Render(f.Label + ":"))
		b.WriteString(" ")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n\n")
	}

	saveButton := "[ Сохранить ]"
	if m.focusIndex == len(m.inputs) {
		saveButton = focusedStyle.Render(saveButton)
	} else {
		saveButton = blurredStyle.Render(saveButton)
	}
	b.WriteString(saveButton)
	b.WriteString("\n\n")

	if m.saving {
		b.WriteString(savingStyle.Render("Сохранение..."))
		b.WriteString("\n")
	}
	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("Tab/Enter: следующее поле • Shift+Tab: предыдущее поле"))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("Ctrl+S: сохранить • Esc: отмена"))

	return b.String()
}

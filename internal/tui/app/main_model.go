// Package app содержит основную логику TUI приложения
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-discography/internal/catalog"
	"github.com/hazadus/go-discography/internal/collection"
	"github.com/hazadus/go-discography/internal/notify"
	"github.com/hazadus/go-discography/internal/utils"
)

var (
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 2)
	toastStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("241")).Padding(0, 1)
)

// ScreenType определяет активную вкладку
type ScreenType int

const (
	// TracksScreen - вкладка треков
	TracksScreen ScreenType = iota
	// ReleasesScreen - вкладка релизов
	ReleasesScreen
)

// NoticeMsg доставляет уведомление из очереди
type NoticeMsg struct {
	Notice notify.Notice
}

type expireMsg struct {
	id int
}

type toast struct {
	id     int
	notice notify.Notice
}

// Options содержит зависимости главной модели
type Options struct {
	Tracks    *collection.Manager[catalog.TrackFields]
	Releases  *collection.Manager[catalog.ReleaseFields]
	Notices   <-chan notify.Notice
	NoticeTTL time.Duration
}

// MainModel представляет главную модель TUI
type MainModel struct {
	currentScreen ScreenType
	sections      []section
	notices       <-chan notify.Notice
	noticeTTL     time.Duration
	toasts        []toast
	nextToastID   int
}

// NewMainModel создает новую главную модель
func NewMainModel(ctx context.Context, opts Options) *MainModel {
	ttl := opts.NoticeTTL
	if ttl <= 0 {
		ttl = 4 * time.Second
	}

	return &MainModel{
		currentScreen: TracksScreen,
		sections: []section{
			newSection(ctx, "Треки", opts.Tracks, catalog.TrackSchema, catalog.NewTrackDraft, trackRow),
			newSection(ctx, "Релизы", opts.Releases, catalog.ReleaseSchema, newReleaseDraft, releaseRow),
		},
		notices:   opts.Notices,
		noticeTTL: ttl,
	}
}

func newReleaseDraft() catalog.ReleaseFields {
	return catalog.NewReleaseDraft(fmt.Sprint(time.Now().Year()))
}

// trackRow форматирует трек: ID | Название | Длительность | Прослушивания
func trackRow(t catalog.Track) string {
	return fmt.Sprintf("%-4d %-40s %-8s %s",
		t.ID,
		utils.TruncateString(t.Fields.Title, 40),
		t.Fields.Duration,
		t.Fields.Plays)
}

// releaseRow форматирует релиз: ID | Год | Тип | Название | Треков
func releaseRow(r catalog.Release) string {
	return fmt.Sprintf("%-4d %-6s %-7s %-40s %d",
		r.ID,
		r.Fields.Year,
		r.Fields.Type,
		utils.TruncateString(r.Fields.Title, 40),
		r.Fields.TracksCount)
}

// Init загружает обе коллекции и начинает ждать уведомления
func (m *MainModel) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.sections)+1)
	for _, s := range m.sections {
		cmds = append(cmds, s.Init())
	}
	cmds = append(cmds, m.waitForNotice())
	return tea.Batch(cmds...)
}

func (m *MainModel) waitForNotice() tea.Cmd {
	if m.notices == nil {
		return nil
	}
	ch := m.notices
	return func() tea.Msg {
		notice, ok := <-ch
		if !ok {
			return nil
		}
		return NoticeMsg{Notice: notice}
	}
}

func (m *MainModel) active() section {
	return m.sections[m.currentScreen]
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case NoticeMsg:
		m.nextToastID++
		id := m.nextToastID
		m.toasts = append(m.toasts, toast{id: id, notice: msg.Notice})
		expire := tea.Tick(m.noticeTTL, func(time.Time) tea.Msg { return expireMsg{id: id} })
		return m, tea.Batch(expire, m.waitForNotice())

	case expireMsg:
		for i, t := range m.toasts {
			if t.id == msg.id {
				m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
				break
			}
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		}
		if !m.active().Capturing() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "tab", "shift+tab":
				m.currentScreen = (m.currentScreen + 1) % ScreenType(len(m.sections))
				return m, nil
			}
		}
		return m, m.active().Update(msg)

	case tea.WindowSizeMsg:
		cmds := make([]tea.Cmd, len(m.sections))
		for i, s := range m.sections {
			cmds[i] = s.Update(msg)
		}
		return m, tea.Batch(cmds...)
	}

	// Результаты операций адресованы конкретной коллекции по типу сообщения
	for _, s := range m.sections {
		if s.Owns(msg) {
			return m, s.Update(msg)
		}
	}
	return m, m.active().Update(msg)
}

// View отображает интерфейс
func (m *MainModel) View() string {
	if int(m.currentScreen) >= len(m.sections) {
		return "Неизвестный экран"
	}

	tabs := make([]string, len(m.sections))
	for i, s := range m.sections {
		style := inactiveTabStyle
		if ScreenType(i) == m.currentScreen {
			style = activeTabStyle
		}
		tabs[i] = style.Render(s.Title())
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")
	b.WriteString(m.active().View())

	if len(m.toasts) > 0 {
		lines := make([]string, len(m.toasts))
		for i, t := range m.toasts {
			lines[i] = notify.Render(t.notice)
		}
		b.WriteString("\n")
		b.WriteString(toastStyle.Render(strings.Join(lines, "\n")))
	}
	return b.String()
}

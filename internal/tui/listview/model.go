// Package listview содержит модель экрана списка записей коллекции для TUI
package listview

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-discography/internal/catalog"
	"github.com/hazadus/go-discography/internal/collection"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
	confirmStyle      = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("196")).Bold(true)
	statusStyle       = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("241"))
)

// EditMsg отправляется при выборе записи для редактирования
type EditMsg[F catalog.Fields] struct {
	Entity catalog.Persisted[F]
}

// CreateMsg отправляется при создании новой записи
type CreateMsg[F catalog.Fields] struct{}

// LoadedMsg сообщает о завершении загрузки коллекции
type LoadedMsg[F catalog.Fields] struct {
	Err error
}

// RemovedMsg сообщает о завершении удаления записи
type RemovedMsg[F catalog.Fields] struct {
	ID  int
	Err error
}

// RowFunc форматирует запись в строку таблицы
type RowFunc[F catalog.Fields] func(entity catalog.Persisted[F]) string

// item реализует интерфейс list.Item для записи
type item[F catalog.Fields] struct {
	entity catalog.Persisted[F]
	row    string
}

func (i item[F]) FilterValue() string {
	return i.entity.Fields.Label()
}

// itemDelegate реализует отображение элементов списка
type itemDelegate[F catalog.Fields] struct{}

func (d itemDelegate[F]) Height() int                             { return 1 }
func (d itemDelegate[F]) Spacing() int                            { return 0 }
func (d itemDelegate[F]) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate[F]) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(item[F])
	if !ok {
		return
	}

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(i.row))
}

// Model представляет модель экрана списка записей
type Model[F catalog.Fields] struct {
	ctx           context.Context
	list          list.Model
	manager       *collection.Manager[F]
	row           RowFunc[F]
	pendingDelete *catalog.Persisted[F]
	loading       bool
}

// NewModel создает модель списка для менеджера коллекции
func NewModel[F catalog.Fields](ctx context.Context, title string, manager *collection.Manager[F], row RowFunc[F]) *Model[F] {
	l := list.New(nil, itemDelegate[F]{}, 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetShowTitle(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	m := &Model[F]{
		ctx:     ctx,
		list:    l,
		manager: manager,
		row:     row,
	}
	m.RefreshData()
	return m
}

// Init загружает коллекцию
func (m *Model[F]) Init() tea.Cmd {
	return m.load()
}

// Title возвращает заголовок списка
func (m *Model[F]) Title() string {
	return m.list.Title
}

// Len возвращает количество записей в списке
func (m *Model[F]) Len() int {
	return len(m.list.Items())
}

// Filtering сообщает, вводится ли сейчас фильтр
func (m *Model[F]) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// RefreshData перечитывает снимок коллекции из менеджера
func (m *Model[F]) RefreshData() {
	entities := m.manager.Items()
	items := make([]list.Item, len(entities))
	for i, e := range entities {
		items[i] = item[F]{entity: e, row: m.row(e)}
	}
	m.list.SetItems(items)
}

func (m *Model[F]) load() tea.Cmd {
	m.loading = true
	manager, ctx := m.manager, m.ctx
	return func() tea.Msg {
		return LoadedMsg[F]{Err: manager.Load(ctx)}
	}
}

func (m *Model[F]) remove(id int) tea.Cmd {
	manager, ctx := m.manager, m.ctx
	return func() tea.Msg {
		return RemovedMsg[F]{ID: id, Err: manager.Remove(ctx, id)}
	}
}

func (m *Model[F]) selected() (catalog.Persisted[F], bool) {
	if i, ok := m.list.SelectedItem().(item[F]); ok {
		return i.entity, true
	}
	return catalog.Persisted[F]{}, false
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model[F]) Update(msg tea.Msg) (*Model[F], tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 6) // Место для вкладок, справки и уведомлений
		return m, nil

	case LoadedMsg[F]:
		m.loading = false
		m.RefreshData()
		return m, nil

	case RemovedMsg[F]:
		m.RefreshData()
		return m, nil

	case tea.KeyMsg:
		if m.pendingDelete != nil {
			target := *m.pendingDelete
			m.pendingDelete = nil
			if msg.String() == "y" {
				return m, m.remove(target.ID)
			}
			return m, nil
		}
		if m.Filtering() {
			break
		}

		switch msg.String() {
		case "enter", "e":
			if entity, ok := m.selected(); ok {
				return m, func() tea.Msg { return EditMsg[F]{Entity: entity} }
			}
			return m, nil

		case "n":
			return m, func() tea.Msg { return CreateMsg[F]{} }

		case "d":
			if entity, ok := m.selected(); ok {
				m.pendingDelete = &entity
			}
			return m, nil

		case "r":
			return m, m.load()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View отображает модель
func (m *Model[F]) View() string {
	view := m.list.View()

	if m.pendingDelete != nil {
		prompt := fmt.Sprintf("Удалить «%s»? y: да • любая клавиша: нет", m.pendingDelete.Fields.Label())
		return view + "\n" + confirmStyle.Render(prompt)
	}

	status := ""
	switch {
	case m.loading:
		status = "Загрузка..."
	case m.manager.Busy():
		status = "Синхронизация..."
	}
	if status != "" {
		view += "\n" + statusStyle.Render(status)
	}

	extraHelp := helpStyle.Render("Enter/e: редактировать • n: добавить • d: удалить • r: обновить • Tab: другая коллекция • q: выход")
	return view + "\n" + extraHelp
}

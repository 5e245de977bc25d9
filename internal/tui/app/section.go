package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-discography/internal/catalog"
	"github.com/hazadus/go-discography/internal/collection"
	"github.com/hazadus/go-discography/internal/tui/editor"
	"github.com/hazadus/go-discography/internal/tui/listview"
)

// section - вкладка одной коллекции: список и, если открыт, редактор
type section interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	Title() string
	Editing() bool
	Capturing() bool
	Owns(msg tea.Msg) bool
}

type collectionSection[F catalog.Fields] struct {
	ctx      context.Context
	manager  *collection.Manager[F]
	schema   catalog.Schema[F]
	defaults func() F
	list     *listview.Model[F]
	editor   *editor.Model[F]
	size     *tea.WindowSizeMsg
}

func newSection[F catalog.Fields](
	ctx context.Context,
	title string,
	manager *collection.Manager[F],
	schema catalog.Schema[F],
	defaults func() F,
	row listview.RowFunc[F],
) *collectionSection[F] {
	return &collectionSection[F]{
		ctx:      ctx,
		manager:  manager,
		schema:   schema,
		defaults: defaults,
		list:     listview.NewModel(ctx, title, manager, row),
	}
}

func (s *collectionSection[F]) Init() tea.Cmd {
	return s.list.Init()
}

func (s *collectionSection[F]) Title() string {
	return s.list.Title()
}

func (s *collectionSection[F]) Editing() bool {
	return s.editor != nil
}

// Capturing сообщает, что клавиши нужны вкладке целиком (ввод текста)
func (s *collectionSection[F]) Capturing() bool {
	return s.editor != nil || s.list.Filtering()
}

// Owns сообщает, адресовано ли сообщение этой коллекции
func (s *collectionSection[F]) Owns(msg tea.Msg) bool {
	switch msg.(type) {
	case listview.LoadedMsg[F], listview.RemovedMsg[F], listview.EditMsg[F], listview.CreateMsg[F],
		editor.SavedMsg[F], editor.GoBackMsg[F]:
		return true
	}
	return false
}

func (s *collectionSection[F]) openEditor() tea.Cmd {
	s.editor = editor.NewModel(s.ctx, s.manager, s.schema)
	cmds := []tea.Cmd{s.editor.Init()}
	if s.size != nil {
		var cmd tea.Cmd
		s.editor, cmd = s.editor.Update(*s.size)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (s *collectionSection[F]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.size = &msg
		var cmd tea.Cmd
		s.list, cmd = s.list.Update(msg)
		if s.editor != nil {
			var editorCmd tea.Cmd
			s.editor, editorCmd = s.editor.Update(msg)
			return tea.Batch(cmd, editorCmd)
		}
		return cmd

	case listview.EditMsg[F]:
		if err := s.manager.BeginEdit(msg.Entity); err != nil {
			return nil
		}
		return s.openEditor()

	case listview.CreateMsg[F]:
		if err := s.manager.BeginCreate(s.defaults()); err != nil {
			return nil
		}
		return s.openEditor()

	case editor.GoBackMsg[F]:
		s.editor = nil
		s.list.RefreshData()
		return nil

	case editor.SavedMsg[F]:
		s.list.RefreshData()
		if s.editor != nil {
			var cmd tea.Cmd
			s.editor, cmd = s.editor.Update(msg)
			return cmd
		}
		return nil

	case tea.KeyMsg:
		if s.editor != nil {
			var cmd tea.Cmd
			s.editor, cmd = s.editor.Update(msg)
			return cmd
		}
	}

	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return cmd
}

func (s *collectionSection[F]) View() string {
	if s.editor != nil {
		return s.editor.View()
	}
	return s.list.View()
}

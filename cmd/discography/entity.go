package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hazadus/go-discography/internal/catalog"
	"github.com/hazadus/go-discography/internal/collection"
)

// parseID разбирает ID записи из аргумента команды
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("неверный ID '%s'. ID должен быть положительным числом", arg)
	}
	return id, nil
}

// createEntity открывает черновик, применяет изменения и сохраняет его.
// Если изменение не применилось, черновик закрывается без запроса к хранилищу.
func createEntity[F catalog.Fields](ctx context.Context, m *collection.Manager[F], defaults F, patches ...catalog.Patch[F]) error {
	if err := m.BeginCreate(defaults); err != nil {
		return err
	}
	return applyAndSave(ctx, m, patches)
}

// editEntity загружает коллекцию, открывает запись с указанным ID и сохраняет изменения
func editEntity[F catalog.Fields](ctx context.Context, m *collection.Manager[F], id int, patches ...catalog.Patch[F]) error {
	entity, err := findEntity(ctx, m, id)
	if err != nil {
		return err
	}
	if err := m.BeginEdit(entity); err != nil {
		return err
	}
	return applyAndSave(ctx, m, patches)
}

func applyAndSave[F catalog.Fields](ctx context.Context, m *collection.Manager[F], patches []catalog.Patch[F]) error {
	for _, patch := range patches {
		if patch == nil {
			continue
		}
		if err := m.UpdateField(patch); err != nil {
			_ = m.Cancel()
			return err
		}
	}
	return m.Save(ctx)
}

// findEntity загружает коллекцию и ищет в ней запись
func findEntity[F catalog.Fields](ctx context.Context, m *collection.Manager[F], id int) (catalog.Persisted[F], error) {
	if err := m.Load(ctx); err != nil {
		return catalog.Persisted[F]{}, err
	}
	entity, ok := m.Find(id)
	if !ok {
		return catalog.Persisted[F]{}, fmt.Errorf("%s с ID %d не найден", m.Kind().Noun(), id)
	}
	return entity, nil
}

// deleteEntity удаляет запись, предварительно показав, что именно удаляется
func deleteEntity[F catalog.Fields](ctx context.Context, out io.Writer, m *collection.Manager[F], id int) error {
	entity, err := findEntity(ctx, m, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "🗑️  Удаляем %s: %s\n", strings.ToLower(m.Kind().Noun()), entity.Fields.Label())
	return m.Remove(ctx, id)
}

// loadAll загружает обе коллекции параллельно
func (app *Application) loadAll(ctx context.Context) error {
	// Сбой одной коллекции не отменяет загрузку другой
	var g errgroup.Group
	g.Go(func() error { return app.Tracks.Load(ctx) })
	g.Go(func() error { return app.Releases.Load(ctx) })
	return g.Wait()
}

package syncclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hazadus/go-discography/internal/catalog"
)

// Resource - типизированный доступ к одной коллекции хранилища
type Resource[F catalog.Fields] struct {
	client *Client
	kind   catalog.Kind
}

// NewResource привязывает клиента к коллекции
func NewResource[F catalog.Fields](client *Client, kind catalog.Kind) *Resource[F] {
	return &Resource[F]{client: client, kind: kind}
}

// Tracks возвращает ресурс треков
func Tracks(client *Client) *Resource[catalog.TrackFields] {
	return NewResource[catalog.TrackFields](client, catalog.KindTracks)
}

// Releases возвращает ресурс релизов
func Releases(client *Client) *Resource[catalog.ReleaseFields] {
	return NewResource[catalog.ReleaseFields](client, catalog.KindReleases)
}

// Kind возвращает коллекцию ресурса
func (r *Resource[F]) Kind() catalog.Kind {
	return r.kind
}

// List загружает всю коллекцию в порядке, заданном хранилищем
func (r *Resource[F]) List(ctx context.Context) ([]catalog.Persisted[F], error) {
	var envelope map[string]json.RawMessage
	if err := r.client.do(ctx, OpList, r.kind, http.MethodGet, nil, &envelope); err != nil {
		return nil, err
	}

	raw, ok := envelope[r.kind.String()]
	if !ok {
		return nil, &SyncFailure{
			Op:     OpList,
			Kind:   r.kind,
			Reason: ReasonMalformed,
			Err:    fmt.Errorf("в ответе нет ключа %q", r.kind),
		}
	}

	var items []catalog.Persisted[F]
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &SyncFailure{Op: OpList, Kind: r.kind, Reason: ReasonMalformed, Err: err}
	}
	if items == nil {
		items = []catalog.Persisted[F]{}
	}
	return items, nil
}

// Create отправляет новую запись; идентификатор назначает хранилище
func (r *Resource[F]) Create(ctx context.Context, fields F) error {
	return r.client.do(ctx, OpCreate, r.kind, http.MethodPost, fields, nil)
}

// Update заменяет запись с тем же идентификатором
func (r *Resource[F]) Update(ctx context.Context, entity catalog.Persisted[F]) error {
	return r.client.do(ctx, OpUpdate, r.kind, http.MethodPut, entity, nil)
}

type deleteRequest struct {
	ID int `json:"id"`
}

// Delete удаляет запись по идентификатору
func (r *Resource[F]) Delete(ctx context.Context, id int) error {
	return r.client.do(ctx, OpDelete, r.kind, http.MethodDelete, deleteRequest{ID: id}, nil)
}

// Save создает черновик или обновляет сохраненную запись.
// Выбор определяется только вариантом записи.
func (r *Resource[F]) Save(ctx context.Context, entity catalog.Entity[F]) error {
	switch e := entity.(type) {
	case catalog.Draft[F]:
		return r.Create(ctx, e.Fields)
	case catalog.Persisted[F]:
		return r.Update(ctx, e)
	case nil:
		return errors.New("нечего сохранять: запись не задана")
	default:
		return fmt.Errorf("неизвестный вариант записи %T", entity)
	}
}

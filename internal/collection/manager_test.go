package collection

import (
	"context"
	"errors"
	"testing"

	"github.com/hazadus/go-discography/internal/catalog"
	"github.com/hazadus/go-discography/internal/notify"
	"github.com/hazadus/go-discography/internal/syncclient"
)

func TestLoadReplacesSnapshot(t *testing.T) {
	store := newFakeStore(
		catalog.Track{ID: 1, Fields: catalog.TrackFields{Title: "Neon Dreams", Duration: "3:45", Plays: "0"}},
		catalog.Track{ID: 2, Fields: catalog.TrackFields{Title: "Night Drive", Duration: "4:10", Plays: "12K"}},
	)
	manager := NewManager[catalog.TrackFields](store, nil, quietLogger())

	if err := manager.Load(context.Background()); err != nil {
		t.Fatalf("Ошибка загрузки: %v", err)
	}

	items := manager.Items()
	if len(items) != 2 {
		t.Fatalf("Ожидалось 2 трека, получено %d", len(items))
	}
	if items[1].Fields.Title != "Night Drive" {
		t.Errorf("Ожидался Title: Night Drive, получено: %s", items[1].Fields.Title)
	}

	// Изменение копии не должно затрагивать снимок
	items[0].Fields.Title = "Changed"
	if got, _ := manager.Find(1); got.Fields.Title != "Neon Dreams" {
		t.Errorf("Items вернул не копию: %s", got.Fields.Title)
	}
}

func TestLoadFailureKeepsSnapshot(t *testing.T) {
	store := newFakeStore(catalog.Track{ID: 1, Fields: catalog.TrackFields{Title: "Neon Dreams"}})
	rec := &recorder{}
	manager := NewManager[catalog.TrackFields](store, rec, quietLogger())

	if err := manager.Load(context.Background()); err != nil {
		t.Fatalf("Ошибка загрузки: %v", err)
	}

	store.setListErr(&syncclient.SyncFailure{Op: syncclient.OpList, Kind: catalog.KindTracks, Reason: syncclient.ReasonTransport, Err: errors.New("connection refused")})
	err := manager.Load(context.Background())
	if !errors.Is(err, syncclient.ErrTransportFailure) {
		t.Fatalf("Ожидался сбой транспорта, получено: %v", err)
	}

	if len(manager.Items()) != 1 {
		t.Errorf("Снимок не должен меняться при ошибке, получено %d треков", len(manager.Items()))
	}
	notices := rec.all()
	if len(notices) != 1 || notices[0].Variant != notify.Destructive {
		t.Errorf("Ожидалось одно уведомление об ошибке, получено: %+v", notices)
	}
}

func TestLoadDiscardsStaleResponse(t *testing.T) {
	store := newFakeStore(catalog.Track{ID: 1, Fields: catalog.TrackFields{Title: "Neon Dreams"}})
	started := make(chan struct{})
	release := make(chan struct{})
	store.onList = func(call int) {
		if call == 1 {
			close(started)
			<-release
		}
	}
	manager := NewManager[catalog.TrackFields](store, nil, quietLogger())

	done := make(chan error, 1)
	go func() { done <- manager.Load(context.Background()) }()
	<-started

	// Вторая загрузка начинается позже и видит новый трек
	store.add(catalog.Track{ID: 2, Fields: catalog.TrackFields{Title: "Night Drive"}})
	if err := manager.Load(context.Background()); err != nil {
		t.Fatalf("Ошибка второй загрузки: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Ошибка первой загрузки: %v", err)
	}

	if len(manager.Items()) != 2 {
		t.Errorf("Устаревший ответ перезаписал снимок: %d треков", len(manager.Items()))
	}
}

func TestCreateTrack(t *testing.T) {
	store := newFakeStore()
	rec := &recorder{}
	manager := NewManager[catalog.TrackFields](store, rec, quietLogger())
	ctx := context.Background()

	if err := manager.BeginCreate(catalog.NewTrackDraft()); err != nil {
		t.Fatalf("Ошибка открытия черновика: %v", err)
	}
	if err := manager.UpdateField(catalog.TrackPatch{Title: ptr("Neon Dreams"), Duration: ptr("3:45")}); err != nil {
		t.Fatalf("Ошибка изменения поля: %v", err)
	}
	if err := manager.Save(ctx); err != nil {
		t.Fatalf("Ошибка сохранения: %v", err)
	}

	items := manager.Items()
	if len(items) != 1 {
		t.Fatalf("Ожидался 1 трек, получено %d", len(items))
	}
	want := catalog.Track{ID: 1, Fields: catalog.TrackFields{Title: "Neon Dreams", Duration: "3:45", Plays: "0"}}
	if items[0] != want {
		t.Errorf("Ожидался трек %+v, получено %+v", want, items[0])
	}
	if manager.State() != StateClosed {
		t.Errorf("Буфер должен закрыться после сохранения, состояние: %s", manager.State())
	}
	if _, ok := manager.Buffer(); ok {
		t.Error("Buffer должен сообщать о закрытом буфере")
	}

	notices := rec.all()
	if len(notices) != 1 {
		t.Fatalf("Ожидалось 1 уведомление, получено %d", len(notices))
	}
	if notices[0].Title != "Трек добавлен" || notices[0].Description != "Neon Dreams успешно сохранён" {
		t.Errorf("Неожиданное уведомление: %+v", notices[0])
	}
	if notices[0].Variant != notify.Informational {
		t.Errorf("Ожидался вариант informational, получено %s", notices[0].Variant)
	}
}

func TestEditAppliesOnlyAfterSave(t *testing.T) {
	original := catalog.Track{ID: 1, Fields: catalog.TrackFields{Title: "Neon Dreams", Duration: "3:45", Plays: "0"}}
	store := newFakeStore(original)
	rec := &recorder{}
	manager := NewManager[catalog.TrackFields](store, rec, quietLogger())
	ctx := context.Background()

	if err := manager.Load(ctx); err != nil {
		t.Fatalf("Ошибка загрузки: %v", err)
	}
	if err := manager.BeginEdit(original); err != nil {
		t.Fatalf("Ошибка открытия записи: %v", err)
	}
	if err := manager.UpdateField(catalog.TrackPatch{Plays: ptr("1.2M")}); err != nil {
		t.Fatalf("Ошибка изменения поля: %v", err)
	}

	if got, _ := manager.Find(1); got.Fields.Plays != "0" {
		t.Errorf("Снимок изменился до сохранения: %s", got.Fields.Plays)
	}
	buffer, ok := manager.Buffer()
	if !ok || buffer.Body().Plays != "1.2M" {
		t.Errorf("Буфер не содержит изменений: %+v", buffer)
	}

	if err := manager.Save(ctx); err != nil {
		t.Fatalf("Ошибка сохранения: %v", err)
	}

	got, _ := manager.Find(1)
	want := catalog.Track{ID: 1, Fields: catalog.TrackFields{Title: "Neon Dreams", Duration: "3:45", Plays: "1.2M"}}
	if got != want {
		t.Errorf("Ожидался трек %+v, получено %+v", want, got)
	}
	if len(manager.Items()) != 1 {
		t.Errorf("Обновление не должно добавлять записи")
	}
	if notices := rec.all(); len(notices) != 1 || notices[0].Title != "Трек обновлён" {
		t.Errorf("Неожиданные уведомления: %+v", notices)
	}
}

func TestSaveFailureKeepsBufferOpen(t *testing.T) {
	store := newFakeStore()
	store.saveErr = &syncclient.SyncFailure{
		Op:     syncclient.OpCreate,
		Kind:   catalog.KindTracks,
		Reason: syncclient.ReasonTransport,
		Err:    errors.New("connection reset"),
	}
	rec := &recorder{}
	manager := NewManager[catalog.TrackFields](store, rec, quietLogger())

	_ = manager.BeginCreate(catalog.NewTrackDraft())
	_ = manager.UpdateField(catalog.TrackPatch{Title: ptr("Neon Dreams")})

	err := manager.Save(context.Background())
	if !errors.Is(err, syncclient.ErrTransportFailure) {
		t.Fatalf("Ожидался сбой транспорта, получено: %v", err)
	}

	if manager.State() != StateOpen {
		t.Errorf("Буфер должен остаться открытым, состояние: %s", manager.State())
	}
	buffer, ok := manager.Buffer()
	if !ok || buffer.Body().Title != "Neon Dreams" {
		t.Errorf("Несохраненные изменения потеряны: %+v", buffer)
	}
	if len(manager.Items()) != 0 {
		t.Errorf("Коллекция не должна меняться")
	}

	notices := rec.all()
	if len(notices) != 1 {
		t.Fatalf("Ожидалось 1 уведомление, получено %d", len(notices))
	}
	if notices[0].Variant != notify.Destructive || notices[0].Title != "Не удалось сохранить трек" {
		t.Errorf("Неожиданное уведомление: %+v", notices[0])
	}

	// Повторное сохранение после восстановления связи
	store.mu.Lock()
	store.saveErr = nil
	store.mu.Unlock()
	if err := manager.Save(context.Background()); err != nil {
		t.Fatalf("Ошибка повторного сохранения: %v", err)
	}
	if len(manager.Items()) != 1 {
		t.Errorf("Ожидался 1 трек после повтора, получено %d", len(manager.Items()))
	}
}

func TestSaveSucceedsWhenRefreshFails(t *testing.T) {
	store := newFakeStore()
	rec := &recorder{}
	manager := NewManager[catalog.TrackFields](store, rec, quietLogger())

	_ = manager.BeginCreate(catalog.NewTrackDraft())
	store.setListErr(errors.New("list unavailable"))

	if err := manager.Save(context.Background()); err != nil {
		t.Fatalf("Сохранение прошло, ошибка не ожидалась: %v", err)
	}
	if manager.State() != StateClosed {
		t.Errorf("Буфер должен закрыться, состояние: %s", manager.State())
	}

	notices := rec.all()
	if len(notices) != 2 {
		t.Fatalf("Ожидалось 2 уведомления, получено %d", len(notices))
	}
	if notices[0].Variant != notify.Informational || notices[1].Variant != notify.Destructive {
		t.Errorf("Неожиданные уведомления: %+v", notices)
	}
}

func TestCancelLeavesCollectionUntouched(t *testing.T) {
	original := catalog.Track{ID: 1, Fields: catalog.TrackFields{Title: "Neon Dreams", Plays: "0"}}
	store := newFakeStore(original)
	rec := &recorder{}
	manager := NewManager[catalog.TrackFields](store, rec, quietLogger())
	ctx := context.Background()
	_ = manager.Load(ctx)

	_ = manager.BeginEdit(original)
	_ = manager.UpdateField(catalog.TrackPatch{Title: ptr("Something Else")})
	if err := manager.Cancel(); err != nil {
		t.Fatalf("Ошибка отмены: %v", err)
	}

	if got, _ := manager.Find(1); got != original {
		t.Errorf("Отмена изменила коллекцию: %+v", got)
	}
	if manager.State() != StateClosed {
		t.Errorf("Буфер должен закрыться, состояние: %s", manager.State())
	}
	if _, saves, _ := store.counts(); saves != 0 {
		t.Errorf("Отмена не должна обращаться к хранилищу, сохранений: %d", saves)
	}
	if len(rec.all()) != 0 {
		t.Errorf("Отмена не должна уведомлять")
	}

	// Отмена без буфера ничего не делает
	if err := manager.Cancel(); err != nil {
		t.Errorf("Повторная отмена вернула ошибку: %v", err)
	}
}

func TestOperationsWithoutBuffer(t *testing.T) {
	store := newFakeStore()
	manager := NewManager[catalog.TrackFields](store, nil, quietLogger())

	err := manager.UpdateField(catalog.TrackPatch{Title: ptr("x")})
	if !errors.Is(err, ErrPrecondition) {
		t.Errorf("UpdateField: ожидалась ошибка предусловия, получено: %v", err)
	}
	var pe *PreconditionError
	if !errors.As(err, &pe) || pe.Op != "UpdateField" || pe.State != StateClosed {
		t.Errorf("Неожиданная ошибка: %#v", err)
	}

	if err := manager.Save(context.Background()); !errors.Is(err, ErrPrecondition) {
		t.Errorf("Save: ожидалась ошибка предусловия, получено: %v", err)
	}
	if lists, saves, _ := store.counts(); lists != 0 || saves != 0 {
		t.Errorf("Хранилище не должно вызываться: lists=%d saves=%d", lists, saves)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	store := newFakeStore(
		catalog.Track{ID: 1, Fields: catalog.TrackFields{Title: "Neon Dreams"}},
		catalog.Track{ID: 2, Fields: catalog.TrackFields{Title: "Night Drive"}},
	)
	rec := &recorder{}
	manager := NewManager[catalog.TrackFields](store, rec, quietLogger())
	ctx := context.Background()
	_ = manager.Load(ctx)

	for i := 0; i < 2; i++ {
		if err := manager.Remove(ctx, 1); err != nil {
			t.Fatalf("Удаление %d: ошибка %v", i+1, err)
		}
	}

	items := manager.Items()
	if len(items) != 1 || items[0].ID != 2 {
		t.Errorf("Ожидался только трек 2, получено %+v", items)
	}
	notices := rec.all()
	if len(notices) != 2 {
		t.Fatalf("Ожидалось 2 уведомления, получено %d", len(notices))
	}
	for _, n := range notices {
		if n.Title != "Трек удалён" || n.Variant != notify.Destructive {
			t.Errorf("Неожиданное уведомление: %+v", n)
		}
	}
}

func TestRemoveDoesNotTouchBuffer(t *testing.T) {
	track := catalog.Track{ID: 1, Fields: catalog.TrackFields{Title: "Neon Dreams"}}
	store := newFakeStore(track)
	manager := NewManager[catalog.TrackFields](store, nil, quietLogger())
	ctx := context.Background()
	_ = manager.Load(ctx)
	_ = manager.BeginEdit(track)

	if err := manager.Remove(ctx, 1); err != nil {
		t.Fatalf("Ошибка удаления: %v", err)
	}
	if manager.State() != StateOpen {
		t.Errorf("Удаление не должно закрывать буфер, состояние: %s", manager.State())
	}
}

func TestRemoveFailure(t *testing.T) {
	store := newFakeStore(catalog.Track{ID: 1, Fields: catalog.TrackFields{Title: "Neon Dreams"}})
	store.deleteErr = &syncclient.SyncFailure{Op: syncclient.OpDelete, Kind: catalog.KindTracks, Reason: syncclient.ReasonRejected, Status: 500}
	rec := &recorder{}
	manager := NewManager[catalog.TrackFields](store, rec, quietLogger())
	ctx := context.Background()
	_ = manager.Load(ctx)

	err := manager.Remove(ctx, 1)
	if !errors.Is(err, syncclient.ErrStoreRejection) {
		t.Fatalf("Ожидался отказ хранилища, получено: %v", err)
	}
	if len(manager.Items()) != 1 {
		t.Errorf("Коллекция не должна меняться при ошибке")
	}
	if manager.Busy() {
		t.Errorf("Флаг выполнения должен сброситься")
	}
	if notices := rec.all(); len(notices) != 1 || notices[0].Title != "Не удалось удалить трек" {
		t.Errorf("Неожиданные уведомления: %+v", notices)
	}
}

func TestSaveIsExclusive(t *testing.T) {
	store := newFakeStore()
	started := make(chan struct{})
	release := make(chan struct{})
	store.onSave = func() {
		close(started)
		<-release
	}
	manager := NewManager[catalog.TrackFields](store, nil, quietLogger())
	ctx := context.Background()
	_ = manager.BeginCreate(catalog.NewTrackDraft())

	done := make(chan error, 1)
	go func() { done <- manager.Save(ctx) }()
	<-started

	if manager.State() != StateSaving {
		t.Errorf("Ожидалось состояние saving, получено %s", manager.State())
	}
	if err := manager.Save(ctx); !errors.Is(err, ErrBusy) {
		t.Errorf("Повторный Save: ожидалась ErrBusy, получено %v", err)
	}
	if err := manager.UpdateField(catalog.TrackPatch{Title: ptr("x")}); !errors.Is(err, ErrBusy) {
		t.Errorf("UpdateField: ожидалась ErrBusy, получено %v", err)
	}
	if err := manager.BeginCreate(catalog.NewTrackDraft()); !errors.Is(err, ErrBusy) {
		t.Errorf("BeginCreate: ожидалась ErrBusy, получено %v", err)
	}
	if err := manager.Cancel(); !errors.Is(err, ErrBusy) {
		t.Errorf("Cancel: ожидалась ErrBusy, получено %v", err)
	}
	if err := manager.Remove(ctx, 1); !errors.Is(err, ErrBusy) {
		t.Errorf("Remove: ожидалась ErrBusy, получено %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Ошибка сохранения: %v", err)
	}
	if _, saves, deletes := store.counts(); saves != 1 || deletes != 0 {
		t.Errorf("Ожидалось одно сохранение без удалений: saves=%d deletes=%d", saves, deletes)
	}
	if len(manager.Items()) != 1 {
		t.Errorf("Ожидался 1 трек, получено %d", len(manager.Items()))
	}
}

func TestBeginCreateReplacesOpenBuffer(t *testing.T) {
	track := catalog.Track{ID: 7, Fields: catalog.TrackFields{Title: "Neon Dreams"}}
	manager := NewManager[catalog.TrackFields](newFakeStore(track), nil, quietLogger())

	_ = manager.BeginEdit(track)
	_ = manager.BeginCreate(catalog.NewTrackDraft())

	buffer, ok := manager.Buffer()
	if !ok {
		t.Fatal("Буфер должен быть открыт")
	}
	if _, persisted := catalog.IDOf(buffer); persisted {
		t.Errorf("Ожидался черновик, получено %+v", buffer)
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{StateClosed: "closed", StateOpen: "open", StateSaving: "saving", State(9): "unknown"}
	for state, want := range cases {
		if state.String() != want {
			t.Errorf("Ожидалось %s, получено %s", want, state.String())
		}
	}
}

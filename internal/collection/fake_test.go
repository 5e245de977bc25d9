package collection

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/hazadus/go-discography/internal/catalog"
	"github.com/hazadus/go-discography/internal/notify"
)

// fakeStore - хранилище треков в памяти с управляемыми ошибками
type fakeStore struct {
	mu      sync.Mutex
	items   []catalog.Track
	nextID  int
	lists   int
	saves   int
	deletes int

	listErr   error
	saveErr   error
	deleteErr error

	// Вызываются вне блокировки, чтобы тест мог придержать запрос
	onList func(call int)
	onSave func()
}

func newFakeStore(items ...catalog.Track) *fakeStore {
	s := &fakeStore{nextID: 1}
	for _, item := range items {
		s.items = append(s.items, item)
		if item.ID >= s.nextID {
			s.nextID = item.ID + 1
		}
	}
	return s
}

func (s *fakeStore) Kind() catalog.Kind { return catalog.KindTracks }

func (s *fakeStore) List(context.Context) ([]catalog.Track, error) {
	s.mu.Lock()
	s.lists++
	call := s.lists
	err := s.listErr
	snapshot := make([]catalog.Track, len(s.items))
	copy(snapshot, s.items)
	hook := s.onList
	s.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *fakeStore) Save(_ context.Context, entity catalog.Entity[catalog.TrackFields]) error {
	s.mu.Lock()
	hook := s.onSave
	s.mu.Unlock()
	if hook != nil {
		hook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}

	switch e := entity.(type) {
	case catalog.Draft[catalog.TrackFields]:
		s.items = append(s.items, catalog.Track{ID: s.nextID, Fields: e.Fields})
		s.nextID++
	case catalog.Track:
		for i := range s.items {
			if s.items[i].ID == e.ID {
				s.items[i] = e
			}
		}
	default:
		return errors.New("неизвестный вариант записи")
	}
	return nil
}

// Delete не сообщает об отсутствии записи, как и настоящее хранилище
func (s *fakeStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	filtered := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			filtered = append(filtered, item)
		}
	}
	s.items = filtered
	return nil
}

func (s *fakeStore) add(item catalog.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
}

func (s *fakeStore) setListErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

func (s *fakeStore) counts() (lists, saves, deletes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists, s.saves, s.deletes
}

// recorder запоминает все уведомления
type recorder struct {
	mu      sync.Mutex
	notices []notify.Notice
}

func (r *recorder) Notify(_ context.Context, notice notify.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
}

func (r *recorder) all() []notify.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(s string) *string { return &s }

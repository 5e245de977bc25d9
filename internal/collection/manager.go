// Package collection управляет локальной копией коллекции каталога
// и буфером редактирования одной записи
package collection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hazadus/go-discography/internal/catalog"
	"github.com/hazadus/go-discography/internal/notify"
)

// Store - удаленное хранилище одной коллекции
type Store[F catalog.Fields] interface {
	Kind() catalog.Kind
	List(ctx context.Context) ([]catalog.Persisted[F], error)
	Save(ctx context.Context, entity catalog.Entity[F]) error
	Delete(ctx context.Context, id int) error
}

// Manager хранит полный снимок коллекции и единственный буфер редактирования.
// После каждого изменения снимок целиком перезагружается из хранилища.
type Manager[F catalog.Fields] struct {
	store    Store[F]
	notifier notify.Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	items    []catalog.Persisted[F]
	buffer   catalog.Entity[F]
	state    State
	inFlight bool   // Выполняется Save или Remove
	issued   uint64 // Номер последней начатой загрузки
	applied  uint64 // Номер загрузки, результат которой сейчас в items
}

// NewManager создает новый экземпляр Manager
func NewManager[F catalog.Fields](store Store[F], notifier notify.Notifier, logger *slog.Logger) *Manager[F] {
	if notifier == nil {
		notifier = notify.Nop
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager[F]{
		store:    store,
		notifier: notifier,
		logger:   logger.With(slog.String("kind", store.Kind().String())),
		items:    make([]catalog.Persisted[F], 0),
	}
}

// Kind возвращает коллекцию менеджера
func (m *Manager[F]) Kind() catalog.Kind {
	return m.store.Kind()
}

// Items возвращает копию текущего снимка коллекции
func (m *Manager[F]) Items() []catalog.Persisted[F] {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]catalog.Persisted[F], len(m.items))
	copy(out, m.items)
	return out
}

// Find ищет запись в текущем снимке
func (m *Manager[F]) Find(id int) (catalog.Persisted[F], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == id {
			return item, true
		}
	}
	return catalog.Persisted[F]{}, false
}

// State возвращает состояние буфера редактирования
func (m *Manager[F]) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Buffer возвращает копию редактируемой записи, если буфер открыт
func (m *Manager[F]) Buffer() (catalog.Entity[F], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateClosed {
		return nil, false
	}
	return m.buffer, true
}

// Busy сообщает, выполняется ли сейчас изменение коллекции
func (m *Manager[F]) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight
}

// Load загружает коллекцию и заменяет снимок целиком.
// Ответ, пришедший позже более новой загрузки, отбрасывается.
func (m *Manager[F]) Load(ctx context.Context) error {
	if err := m.refresh(ctx); err != nil {
		m.notifyFailure(ctx, "Не удалось загрузить список", err)
		return err
	}
	return nil
}

func (m *Manager[F]) refresh(ctx context.Context) error {
	m.mu.Lock()
	m.issued++
	seq := m.issued
	m.mu.Unlock()

	items, err := m.store.List(ctx)
	if err != nil {
		m.logger.Warn("не удалось загрузить коллекцию", slog.Uint64("seq", seq), slog.Any("error", err))
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if seq <= m.applied {
		m.logger.Debug("устаревший ответ отброшен", slog.Uint64("seq", seq), slog.Uint64("applied", m.applied))
		return nil
	}
	m.items = items
	m.applied = seq
	return nil
}

// BeginCreate открывает буфер с черновиком новой записи
func (m *Manager[F]) BeginCreate(defaults F) error {
	return m.open("BeginCreate", catalog.Draft[F]{Fields: defaults})
}

// BeginEdit открывает буфер с копией сохраненной записи.
// Изменения буфера не затрагивают снимок коллекции до успешного сохранения.
func (m *Manager[F]) BeginEdit(entity catalog.Persisted[F]) error {
	return m.open("BeginEdit", entity)
}

func (m *Manager[F]) open(op string, entity catalog.Entity[F]) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateSaving {
		return fmt.Errorf("%s: %w", op, ErrBusy)
	}
	m.buffer = entity
	m.state = StateOpen
	return nil
}

// UpdateField применяет частичное изменение к открытому буферу.
// Без открытого буфера возвращает PreconditionError.
func (m *Manager[F]) UpdateField(patch catalog.Patch[F]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateClosed:
		return &PreconditionError{Op: "UpdateField", State: m.state}
	case StateSaving:
		return fmt.Errorf("UpdateField: %w", ErrBusy)
	}

	fields := m.buffer.Body()
	if err := patch.Apply(&fields); err != nil {
		return err
	}
	m.buffer = m.buffer.WithFields(fields)
	return nil
}

// Cancel закрывает буфер без отправки изменений
func (m *Manager[F]) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateSaving {
		return fmt.Errorf("Cancel: %w", ErrBusy)
	}
	m.buffer = nil
	m.state = StateClosed
	return nil
}

// Save отправляет буфер в хранилище: черновик создается, сохраненная запись обновляется.
// При успехе коллекция перезагружается и буфер закрывается.
// При ошибке буфер остается открытым с несохраненными изменениями.
func (m *Manager[F]) Save(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateClosed {
		state := m.state
		m.mu.Unlock()
		return &PreconditionError{Op: "Save", State: state}
	}
	if m.inFlight {
		m.mu.Unlock()
		return fmt.Errorf("Save: %w", ErrBusy)
	}
	entity := m.buffer
	m.state = StateSaving
	m.inFlight = true
	m.mu.Unlock()

	_, updating := catalog.IDOf(entity)

	if err := m.store.Save(ctx, entity); err != nil {
		m.mu.Lock()
		m.state = StateOpen
		m.inFlight = false
		m.mu.Unlock()

		m.logger.Warn("не удалось сохранить запись", slog.Any("error", err))
		m.notifyFailure(ctx, "Не удалось сохранить "+m.noun(), err)
		return err
	}

	refreshErr := m.refresh(ctx)

	m.mu.Lock()
	m.buffer = nil
	m.state = StateClosed
	m.inFlight = false
	m.mu.Unlock()

	title := m.Kind().Noun() + " добавлен"
	if updating {
		title = m.Kind().Noun() + " обновлён"
	}
	m.notifier.Notify(ctx, notify.Notice{
		Title:       title,
		Description: fmt.Sprintf("%s успешно сохранён", entity.Body().Label()),
		Variant:     notify.Informational,
		Kind:        m.Kind(),
	})
	if refreshErr != nil {
		m.notifyFailure(ctx, "Не удалось обновить список", refreshErr)
	}
	return nil
}

// Remove удаляет запись в хранилище и перезагружает коллекцию.
// Наличие записи локально не проверяется: это решает хранилище.
func (m *Manager[F]) Remove(ctx context.Context, id int) error {
	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return fmt.Errorf("Remove: %w", ErrBusy)
	}
	m.inFlight = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight = false
		m.mu.Unlock()
	}()

	if err := m.store.Delete(ctx, id); err != nil {
		m.logger.Warn("не удалось удалить запись", slog.Int("id", id), slog.Any("error", err))
		m.notifyFailure(ctx, "Не удалось удалить "+m.noun(), err)
		return err
	}

	refreshErr := m.refresh(ctx)

	m.notifier.Notify(ctx, notify.Notice{
		Title:   m.Kind().Noun() + " удалён",
		Variant: notify.Destructive,
		Kind:    m.Kind(),
	})
	if refreshErr != nil {
		m.notifyFailure(ctx, "Не удалось обновить список", refreshErr)
	}
	return nil
}

func (m *Manager[F]) noun() string {
	return strings.ToLower(m.Kind().Noun())
}

// notifyFailure сообщает пользователю об ошибке синхронизации
func (m *Manager[F]) notifyFailure(ctx context.Context, title string, err error) {
	m.notifier.Notify(ctx, notify.Notice{
		Title:       title,
		Description: err.Error(),
		Variant:     notify.Destructive,
		Kind:        m.Kind(),
	})
}

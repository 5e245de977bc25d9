// Package notify доставляет пользователю кратковременные уведомления
// о результатах операций с каталогом
package notify

import (
	"context"
	"time"

	"github.com/hazadus/go-discography/internal/catalog"
)

// Variant определяет оформление уведомления
type Variant int

const (
	// Informational - успешное создание или изменение
	Informational Variant = iota
	// Destructive - удаление или ошибка
	Destructive
)

// String возвращает название варианта
func (v Variant) String() string {
	switch v {
	case Informational:
		return "informational"
	case Destructive:
		return "destructive"
	default:
		return "unknown"
	}
}

// Notice - уведомление с заголовком и необязательным описанием.
// Подтверждение не требуется, уведомление исчезает само.
type Notice struct {
	Title       string
	Description string
	Variant     Variant
	Kind        catalog.Kind // Коллекция, к которой относится уведомление
	At          time.Time
}

// Notifier принимает уведомления. Реализации не должны блокировать вызывающего
// и не возвращают ошибок.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// NotifierFunc позволяет использовать функцию как Notifier
type NotifierFunc func(ctx context.Context, notice Notice)

// Notify вызывает функцию
func (fn NotifierFunc) Notify(ctx context.Context, notice Notice) {
	fn(ctx, notice)
}

// Nop - Notifier, который ничего не делает
var Nop Notifier = NotifierFunc(func(context.Context, Notice) {})

// Sender - получатель уведомлений, подключаемый к Dispatcher
type Sender interface {
	// Send доставляет уведомление
	Send(ctx context.Context, notice Notice) error
	// Name возвращает имя получателя для журнала
	Name() string
}

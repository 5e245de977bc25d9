package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultSendTimeout ограничивает время доставки одному получателю
const DefaultSendTimeout = 2 * time.Second

// Dispatcher рассылает уведомления всем зарегистрированным получателям
type Dispatcher struct {
	senders     []Sender
	mu          sync.RWMutex
	async       bool
	sendTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// Option настраивает Dispatcher
type Option func(*Dispatcher)

// WithAsync включает асинхронную доставку в отдельных горутинах
func WithAsync(async bool) Option {
	return func(d *Dispatcher) { d.async = async }
}

// WithSendTimeout задает таймаут доставки одному получателю
func WithSendTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.sendTimeout = timeout
		}
	}
}

// WithLogger задает журнал для ошибок доставки
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher создает новый диспетчер уведомлений
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		senders:     make([]Sender, 0),
		sendTimeout: DefaultSendTimeout,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register добавляет получателя
func (d *Dispatcher) Register(sender Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.senders = append(d.senders, sender)
}

// Unregister удаляет получателя по имени
func (d *Dispatcher) Unregister(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	filtered := make([]Sender, 0, len(d.senders))
	for _, s := range d.senders {
		if s.Name() != name {
			filtered = append(filtered, s)
		}
	}
	d.senders = filtered
}

// Senders возвращает копию списка получателей
func (d *Dispatcher) Senders() []Sender {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]Sender, len(d.senders))
	copy(result, d.senders)
	return result
}

// Notify рассылает уведомление. Ошибки и паники получателей только журналируются.
func (d *Dispatcher) Notify(ctx context.Context, notice Notice) {
	if notice.At.IsZero() {
		notice.At = d.now()
	}

	senders := d.Senders()
	if len(senders) == 0 {
		return
	}

	for _, sender := range senders {
		if d.async {
			go d.deliver(ctx, sender, notice)
			continue
		}
		d.deliver(ctx, sender, notice)
	}
}

// deliver ждет получателя не дольше sendTimeout
func (d *Dispatcher) deliver(ctx context.Context, sender Sender, notice Notice) {
	// Уведомление не должно отменяться вместе с операцией, которая его вызвала
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.sendTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.sendWithRecover(sendCtx, sender, notice)
	}()

	select {
	case <-done:
	case <-sendCtx.Done():
		d.logger.Warn("notify: получатель не ответил вовремя",
			slog.String("sender", sender.Name()),
			slog.Duration("timeout", d.sendTimeout))
	}
}

// sendWithRecover отправляет уведомление и перехватывает панику получателя
func (d *Dispatcher) sendWithRecover(ctx context.Context, sender Sender, notice Notice) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("notify: паника в получателе",
				slog.String("sender", sender.Name()),
				slog.String("panic", fmt.Sprint(r)))
		}
	}()

	if err := sender.Send(ctx, notice); err != nil {
		d.logger.Warn("notify: ошибка доставки",
			slog.String("sender", sender.Name()),
			slog.Any("error", err))
	}
}

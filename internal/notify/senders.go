package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	destructiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	descriptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Render форматирует уведомление в одну строку
func Render(notice Notice) string {
	icon, style := "✅", infoStyle
	if notice.Variant == Destructive {
		icon, style = "🗑️ ", destructiveStyle
	}

	line := icon + " " + style.Render(notice.Title)
	if notice.Description != "" {
		line += " " + descriptionStyle.Render("— "+notice.Description)
	}
	return line
}

// ConsoleSender печатает уведомления в поток вывода
type ConsoleSender struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleSender создает получателя, печатающего в out
func NewConsoleSender(out io.Writer) *ConsoleSender {
	return &ConsoleSender{out: out}
}

// Send печатает уведомление
func (s *ConsoleSender) Send(_ context.Context, notice Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.out, Render(notice))
	return err
}

// Name возвращает имя получателя
func (s *ConsoleSender) Name() string { return "console" }

// LogSender записывает уведомления в журнал
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender создает получателя, пишущего в журнал
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send записывает уведомление в журнал
func (s *LogSender) Send(ctx context.Context, notice Notice) error {
	level := slog.LevelInfo
	if notice.Variant == Destructive {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "уведомление",
		slog.String("title", notice.Title),
		slog.String("description", notice.Description),
		slog.String("variant", notice.Variant.String()),
		slog.String("kind", notice.Kind.String()))
	return nil
}

// Name возвращает имя получателя
func (s *LogSender) Name() string { return "log" }

// Queue буферизует уведомления для интерфейса, который читает их сам.
// При переполнении новые уведомления отбрасываются.
type Queue struct {
	ch chan Notice
}

// NewQueue создает очередь заданной емкости
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{ch: make(chan Notice, size)}
}

// Send кладет уведомление в очередь без ожидания
func (q *Queue) Send(_ context.Context, notice Notice) error {
	select {
	case q.ch <- notice:
		return nil
	default:
		return fmt.Errorf("очередь уведомлений переполнена, отброшено: %s", notice.Title)
	}
}

// Name возвращает имя получателя
func (q *Queue) Name() string { return "queue" }

// C возвращает канал для чтения уведомлений
func (q *Queue) C() <-chan Notice {
	return q.ch
}

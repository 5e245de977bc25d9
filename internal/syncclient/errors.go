package syncclient

import (
	"errors"
	"fmt"

	"github.com/hazadus/go-discography/internal/catalog"
)

// Op - операция синхронизации
type Op string

const (
	OpList   Op = "list"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Reason классифицирует причину сбоя синхронизации
type Reason int

const (
	// ReasonTransport - сеть недоступна или соединение оборвалось
	ReasonTransport Reason = iota
	// ReasonTimeout - запрос не уложился в таймаут
	ReasonTimeout
	// ReasonRejected - хранилище ответило статусом вне 2xx
	ReasonRejected
	// ReasonMalformed - ответ 2xx, но тело не удалось разобрать
	ReasonMalformed
	// ReasonEncoding - не удалось сериализовать тело запроса
	ReasonEncoding
)

func (r Reason) String() string {
	switch r {
	case ReasonTransport:
		return "transport"
	case ReasonTimeout:
		return "timeout"
	case ReasonRejected:
		return "rejected"
	case ReasonMalformed:
		return "malformed"
	case ReasonEncoding:
		return "encoding"
	}
	return "unknown"
}

var (
	// ErrTransportFailure - сетевой сбой, включая таймаут
	ErrTransportFailure = errors.New("сбой транспорта")
	// ErrTimeout - истек таймаут запроса
	ErrTimeout = errors.New("истек таймаут запроса")
	// ErrStoreRejection - хранилище отклонило запрос или вернуло некорректный ответ
	ErrStoreRejection = errors.New("хранилище отклонило запрос")
)

// SyncFailure описывает неудавшуюся операцию синхронизации вместе
// с отправленными данными, чтобы вызывающий мог повторить ее или показать ошибку
type SyncFailure struct {
	Op        Op
	Kind      catalog.Kind
	Payload   any // Тело запроса, если было
	Reason    Reason
	Status    int    // HTTP-статус для ReasonRejected
	Message   string // Сообщение об ошибке из ответа хранилища
	RequestID string
	Err       error
}

func (e *SyncFailure) Error() string {
	prefix := fmt.Sprintf("синхронизация %s/%s", e.Kind, e.Op)
	switch e.Reason {
	case ReasonRejected:
		if e.Message != "" {
			return fmt.Sprintf("%s: хранилище отклонило запрос (%d): %s", prefix, e.Status, e.Message)
		}
		return fmt.Sprintf("%s: хранилище отклонило запрос (%d)", prefix, e.Status)
	case ReasonTimeout:
		return fmt.Sprintf("%s: истек таймаут запроса: %v", prefix, e.Err)
	case ReasonMalformed:
		return fmt.Sprintf("%s: некорректный ответ хранилища: %v", prefix, e.Err)
	case ReasonEncoding:
		return fmt.Sprintf("%s: ошибка сериализации запроса: %v", prefix, e.Err)
	default:
		return fmt.Sprintf("%s: сбой сети: %v", prefix, e.Err)
	}
}

func (e *SyncFailure) Unwrap() error {
	return e.Err
}

// Is сопоставляет сбой с классами ErrTransportFailure, ErrTimeout и ErrStoreRejection
func (e *SyncFailure) Is(target error) bool {
	switch target {
	case ErrTransportFailure:
		return e.Reason == ReasonTransport || e.Reason == ReasonTimeout
	case ErrTimeout:
		return e.Reason == ReasonTimeout
	case ErrStoreRejection:
		return e.Reason == ReasonRejected || e.Reason == ReasonMalformed
	}
	return false
}

// Timeout сообщает, вызван ли сбой таймаутом
func (e *SyncFailure) Timeout() bool {
	return e.Reason == ReasonTimeout
}

// Package syncclient выполняет запросы list/create/update/delete
// к удаленному хранилищу каталога
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/hazadus/go-discography/internal/catalog"
)

const (
	// DefaultTimeout ограничивает каждый запрос, если таймаут не задан
	DefaultTimeout = 15 * time.Second
	// DefaultUserAgent идентифицирует клиента
	DefaultUserAgent = "go-discography/1.0"

	maxErrorBody    = 4 << 10
	maxResponseBody = 32 << 20
)

// Config содержит настройки клиента
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client отправляет JSON-запросы на единственный адрес хранилища,
// различая коллекции параметром resource
type Client struct {
	baseURL   *url.URL
	timeout   time.Duration
	userAgent string
	http      *http.Client
	logger    *slog.Logger
}

// New создает клиента синхронизации
func New(config *Config) (*Client, error) {
	if config == nil || config.BaseURL == "" {
		return nil, errors.New("не задан адрес API")
	}

	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("неверный адрес API: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("адрес API должен начинаться с http:// или https://: %s", config.BaseURL)
	}

	c := &Client{
		baseURL:   u,
		timeout:   config.Timeout,
		userAgent: config.UserAgent,
		http:      config.HTTPClient,
		logger:    config.Logger,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// Timeout возвращает таймаут одного запроса
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// endpoint формирует адрес с параметром resource, сохраняя остальные параметры
func (c *Client) endpoint(kind catalog.Kind) string {
	u := *c.baseURL
	q := u.Query()
	q.Set("resource", kind.String())
	u.RawQuery = q.Encode()
	return u.String()
}

// do выполняет запрос и, если out не nil, разбирает JSON-ответ в out
func (c *Client) do(ctx context.Context, op Op, kind catalog.Kind, method string, payload, out any) error {
	requestID := uuid.NewString()
	failure := func(reason Reason, err error) *SyncFailure {
		return &SyncFailure{Op: op, Kind: kind, Payload: payload, Reason: reason, RequestID: requestID, Err: err}
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return failure(ReasonEncoding, err)
		}
		body = bytes.NewReader(data)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, method, c.endpoint(kind), body)
	if err != nil {
		return failure(ReasonTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("запрос к хранилищу не выполнен",
			slog.String("request_id", requestID),
			slog.String("method", method),
			slog.String("resource", kind.String()),
			slog.Any("error", err))
		return failure(classify(err), err)
	}
	defer resp.Body.Close()

	c.logger.Debug("запрос к хранилищу",
		slog.String("request_id", requestID),
		slog.String("method", method),
		slog.String("resource", kind.String()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		f := failure(ReasonRejected, fmt.Errorf("HTTP %s", resp.Status))
		f.Status = resp.StatusCode
		f.Message = errorMessage(raw)
		return f
	}

	if out == nil {
		// Тело ответа на изменение клиенту не нужно, но соединение должно вернуться в пул
		if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody)); err != nil {
			c.logger.Debug("не удалось дочитать ответ", slog.String("request_id", requestID), slog.Any("error", err))
		}
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return failure(classify(err), err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return failure(ReasonMalformed, err)
	}
	return nil
}

// classify отличает таймаут от прочих сетевых ошибок
func classify(err error) Reason {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	return ReasonTransport
}

// errorMessage извлекает поле error из ответа хранилища, иначе возвращает тело как есть
func errorMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return string(bytes.TrimSpace(raw))
}

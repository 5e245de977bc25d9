// Package storetest содержит тестовую реализацию удаленного хранилища каталога.
// Поведение повторяет внешнее API: один адрес, параметр resource,
// сортировка и назначение ID на стороне хранилища.
package storetest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hazadus/go-discography/internal/catalog"
)

// Request - запись о запросе, полученном хранилищем
type Request struct {
	Method    string
	Resource  string
	Body      string
	RequestID string
}

// Fault описывает сбой, который хранилище изобразит на следующем подходящем запросе
type Fault struct {
	Method  string        // Пустая строка - любой метод
	Status  int           // Статус ответа вместо обработки
	Message string        // Текст поля error
	Drop    bool          // Оборвать соединение без ответа
	Delay   time.Duration // Задержка перед обработкой
}

// Server - тестовое хранилище треков и релизов
type Server struct {
	mu       sync.Mutex
	tracks   *table[catalog.TrackFields]
	releases *table[catalog.ReleaseFields]
	faults   []Fault
	requests []Request
}

// New создает пустое хранилище
func New() *Server {
	return &Server{
		tracks:   newTable(tracksByID),
		releases: newTable(releasesNewestFirst),
	}
}

// NewWithData создает хранилище с начальными данными
func NewWithData(data Data) *Server {
	s := New()
	s.Seed(data)
	return s
}

// Start запускает HTTP-сервер на время теста
func (s *Server) Start(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return srv
}

// Seed заменяет содержимое хранилища
func (s *Server) Seed(data Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks.replace(data.Tracks)
	s.releases.replace(data.Releases)
}

// InjectFault добавляет сбой в очередь
func (s *Server) InjectFault(f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, f)
}

// Tracks возвращает треки в порядке хранилища
func (s *Server) Tracks() []catalog.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracks.list()
}

// Releases возвращает релизы в порядке хранилища
func (s *Server) Releases() []catalog.Release {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releases.list()
}

// Requests возвращает все полученные запросы
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// CountRequests считает запросы с заданным методом
func (s *Server) CountRequests(method string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

// takeFault извлекает первый сбой, подходящий под метод
func (s *Server) takeFault(method string) (Fault, bool) {
	for i, f := range s.faults {
		if f.Method == "" || f.Method == method {
			s.faults = append(s.faults[:i], s.faults[i+1:]...)
			return f, true
		}
	}
	return Fault{}, false
}

// ServeHTTP обрабатывает запрос так же, как внешнее хранилище
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-Id")
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.WriteHeader(http.StatusOK)
		return
	}

	body, _ := io.ReadAll(r.Body)
	resource := r.URL.Query().Get("resource")

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:    r.Method,
		Resource:  resource,
		Body:      string(body),
		RequestID: r.Header.Get("X-Request-Id"),
	})
	fault, faulty := s.takeFault(r.Method)
	s.mu.Unlock()

	if faulty {
		if fault.Delay > 0 {
			select {
			case <-time.After(fault.Delay):
			case <-r.Context().Done():
				return
			}
		}
		if fault.Drop {
			dropConnection(w)
			return
		}
		if fault.Status != 0 {
			msg := fault.Message
			if msg == "" {
				msg = http.StatusText(fault.Status)
			}
			writeJSON(w, fault.Status, map[string]string{"error": msg})
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch catalog.Kind(resource) {
	case catalog.KindTracks:
		serveTable(w, r.Method, body, catalog.KindTracks, s.tracks)
	case catalog.KindReleases:
		serveTable(w, r.Method, body, catalog.KindReleases, s.releases)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	}
}

// serveTable выполняет операцию над одной коллекцией
func serveTable[F catalog.Fields](w http.ResponseWriter, method string, body []byte, kind catalog.Kind, t *table[F]) {
	single := strings.TrimSuffix(kind.String(), "s")

	switch method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{kind.String(): t.list()})

	case http.MethodPost:
		var fields F
		if err := json.Unmarshal(body, &fields); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		row := t.insert(fields)
		writeJSON(w, http.StatusCreated, map[string]any{single: row})

	case http.MethodPut:
		var row catalog.Persisted[F]
		if err := json.Unmarshal(body, &row); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if !t.update(row) {
			// Как и UPDATE ... RETURNING без совпадений
			writeJSON(w, http.StatusOK, map[string]any{single: nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{single: row})

	case http.MethodDelete:
		var req struct {
			ID *int `json:"id"`
		}
		if err := json.Unmarshal(body, &req); err != nil || req.ID == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id is required"})
			return
		}
		t.remove(*req.ID)
		writeJSON(w, http.StatusOK, map[string]string{
			"message": fmt.Sprintf("%s deleted", strings.ToUpper(single[:1])+single[1:]),
		})

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// dropConnection закрывает соединение, не отправляя ответ
func dropConnection(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic(http.ErrAbortHandler)
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		panic(http.ErrAbortHandler)
	}
	_ = conn.Close()
}

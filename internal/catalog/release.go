package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ReleaseType - тип релиза
type ReleaseType string

const (
	// ReleaseSingle - сингл
	ReleaseSingle ReleaseType = "Single"
	// ReleaseEP - мини-альбом
	ReleaseEP ReleaseType = "EP"
	// ReleaseAlbum - альбом
	ReleaseAlbum ReleaseType = "Album"
)

// ReleaseTypes перечисляет допустимые типы в порядке отображения
var ReleaseTypes = []ReleaseType{ReleaseSingle, ReleaseEP, ReleaseAlbum}

// String возвращает строковое представление типа
func (t ReleaseType) String() string {
	return string(t)
}

// Valid сообщает, является ли тип допустимым
func (t ReleaseType) Valid() bool {
	switch t {
	case ReleaseSingle, ReleaseEP, ReleaseAlbum:
		return true
	}
	return false
}

// ParseReleaseType разбирает тип релиза без учета регистра
func ParseReleaseType(s string) (ReleaseType, error) {
	s = strings.TrimSpace(s)
	for _, t := range ReleaseTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("неизвестный тип релиза %q, допустимые: Single, EP, Album", s)
}

// UnmarshalJSON принимает любую строку: хранилище остается источником истины,
// недопустимое значение видно через Valid
func (t *ReleaseType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("тип релиза должен быть строкой: %w", err)
	}
	if parsed, err := ParseReleaseType(s); err == nil {
		*t = parsed
		return nil
	}
	*t = ReleaseType(s)
	return nil
}

// ReleaseFields - поля релиза
type ReleaseFields struct {
	Title       string      `json:"title" yaml:"title"`
	Year        string      `json:"year" yaml:"year"`
	CoverURL    string      `json:"cover_url" yaml:"cover_url"`
	TracksCount int         `json:"tracks_count" yaml:"tracks_count"`
	Type        ReleaseType `json:"type" yaml:"type"`
}

// Label возвращает название релиза
func (r ReleaseFields) Label() string {
	return r.Title
}

// Release - сохраненный релиз
type Release = Persisted[ReleaseFields]

// NewReleaseDraft возвращает черновик релиза со значениями по умолчанию
func NewReleaseDraft(year string) ReleaseFields {
	return ReleaseFields{
		Title:       "",
		Year:        year,
		CoverURL:    "",
		TracksCount: 1,
		Type:        ReleaseSingle,
	}
}

// ReleasePatch изменяет только заданные (не nil) поля релиза
type ReleasePatch struct {
	Title       *string
	Year        *string
	CoverURL    *string
	TracksCount *int
	Type        *ReleaseType
}

// Apply проверяет и применяет изменения к релизу
func (p ReleasePatch) Apply(r *ReleaseFields) error {
	if p.TracksCount != nil && *p.TracksCount < 0 {
		return fmt.Errorf("количество треков не может быть отрицательным: %d", *p.TracksCount)
	}
	if p.Type != nil && !p.Type.Valid() {
		return fmt.Errorf("неизвестный тип релиза %q", *p.Type)
	}

	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Year != nil {
		r.Year = *p.Year
	}
	if p.CoverURL != nil {
		r.CoverURL = *p.CoverURL
	}
	if p.TracksCount != nil {
		r.TracksCount = *p.TracksCount
	}
	if p.Type != nil {
		r.Type = *p.Type
	}
	return nil
}

// parseTracksCount разбирает количество треков из текстового поля
func parseTracksCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("количество треков должно быть целым числом: %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("количество треков не может быть отрицательным: %d", n)
	}
	return n, nil
}

// ReleaseSchema описывает редактируемые поля релиза
var ReleaseSchema = NewSchema(
	Field[ReleaseFields]{
		Name:        "title",
		Label:       "Название",
		Placeholder: "Emerald Horizons",
		Get:         func(r ReleaseFields) string { return r.Title },
		Set:         func(r *ReleaseFields, v string) error { r.Title = v; return nil },
	},
	Field[ReleaseFields]{
		Name:        "year",
		Label:       "Год",
		Placeholder: "2024",
		Get:         func(r ReleaseFields) string { return r.Year },
		Set:         func(r *ReleaseFields, v string) error { r.Year = v; return nil },
	},
	Field[ReleaseFields]{
		Name:        "tracks_count",
		Label:       "Треков",
		Placeholder: "1",
		Get:         func(r ReleaseFields) string { return strconv.Itoa(r.TracksCount) },
		Set: func(r *ReleaseFields, v string) error {
			n, err := parseTracksCount(v)
			if err != nil {
				return err
			}
			r.TracksCount = n
			return nil
		},
	},
	Field[ReleaseFields]{
		Name:        "type",
		Label:       "Тип",
		Placeholder: "Single | EP | Album",
		Get:         func(r ReleaseFields) string { return string(r.Type) },
		Set: func(r *ReleaseFields, v string) error {
			t, err := ParseReleaseType(v)
			if err != nil {
				return err
			}
			r.Type = t
			return nil
		},
	},
	Field[ReleaseFields]{
		Name:        "cover_url",
		Label:       "URL обложки",
		Placeholder: "https://...",
		Get:         func(r ReleaseFields) string { return r.CoverURL },
		Set:         func(r *ReleaseFields, v string) error { r.CoverURL = v; return nil },
	},
)

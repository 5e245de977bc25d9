// Package catalog описывает сущности каталога музыканта: треки и релизы
package catalog

import "fmt"

// Kind определяет тип коллекции и совпадает со значением параметра resource
type Kind string

const (
	// KindTracks - коллекция треков
	KindTracks Kind = "tracks"
	// KindReleases - коллекция релизов
	KindReleases Kind = "releases"
)

// String возвращает значение для параметра resource
func (k Kind) String() string {
	return string(k)
}

// Valid сообщает, известен ли тип коллекции
func (k Kind) Valid() bool {
	return k == KindTracks || k == KindReleases
}

// Noun возвращает название сущности в единственном числе для уведомлений
func (k Kind) Noun() string {
	switch k {
	case KindTracks:
		return "Трек"
	case KindReleases:
		return "Релиз"
	default:
		return fmt.Sprintf("Запись (%s)", string(k))
	}
}

// ParseKind разбирает название коллекции
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("неизвестная коллекция: %q", s)
	}
	return k, nil
}

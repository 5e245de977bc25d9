package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Patch частично изменяет поля записи
type Patch[F any] interface {
	Apply(fields *F) error
}

// PatchFunc позволяет использовать обычную функцию как Patch
type PatchFunc[F any] func(fields *F) error

// Apply применяет функцию к полям
func (fn PatchFunc[F]) Apply(fields *F) error {
	return fn(fields)
}

// Field описывает одно редактируемое поле сущности
type Field[F any] struct {
	Name        string // Имя поля в API
	Label       string // Подпись в интерфейсе
	Placeholder string // Пример значения
	Get         func(F) string
	Set         func(*F, string) error
}

// Schema - упорядоченный список редактируемых полей
type Schema[F any] struct {
	fields []Field[F]
}

// NewSchema создает схему из описаний полей
func NewSchema[F any](fields ...Field[F]) Schema[F] {
	return Schema[F]{fields: fields}
}

// Fields возвращает поля в порядке отображения
func (s Schema[F]) Fields() []Field[F] {
	out := make([]Field[F], len(s.fields))
	copy(out, s.fields)
	return out
}

// Names возвращает имена полей
func (s Schema[F]) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Lookup ищет поле по имени
func (s Schema[F]) Lookup(name string) (Field[F], bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field[F]{}, false
}

// Values возвращает значения всех полей в виде строк
func (s Schema[F]) Values(fields F) map[string]string {
	values := make(map[string]string, len(s.fields))
	for _, f := range s.fields {
		values[f.Name] = f.Get(fields)
	}
	return values
}

// Patch строит изменение из пар "поле -> значение".
// Проверка значений выполняется при применении.
func (s Schema[F]) Patch(values map[string]string) Patch[F] {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return valuesPatch[F]{schema: s, values: copied}
}

// ParseAssignments разбирает строки вида name=value
func (s Schema[F]) ParseAssignments(pairs []string) (Patch[F], error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("ожидалось name=value, получено %q", pair)
		}
		name = strings.TrimSpace(name)
		if _, known := s.Lookup(name); !known {
			return nil, fmt.Errorf("неизвестное поле %q, допустимые: %s", name, strings.Join(s.Names(), ", "))
		}
		values[name] = value
	}
	return s.Patch(values), nil
}

type valuesPatch[F any] struct {
	schema Schema[F]
	values map[string]string
}

// Apply применяет все значения к копии и записывает результат только при успехе
func (p valuesPatch[F]) Apply(fields *F) error {
	names := make([]string, 0, len(p.values))
	for name := range p.values {
		names = append(names, name)
	}
	sort.Strings(names)

	next := *fields
	for _, name := range names {
		field, ok := p.schema.Lookup(name)
		if !ok {
			return fmt.Errorf("неизвестное поле %q", name)
		}
		if err := field.Set(&next, p.values[name]); err != nil {
			return fmt.Errorf("поле %s: %w", name, err)
		}
	}
	*fields = next
	return nil
}

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Fields - набор полей сущности без идентификатора
type Fields interface {
	// Label возвращает человекочитаемое название записи
	Label() string
}

// Entity - запись каталога: либо черновик, либо сохраненная запись.
// Реализации: Draft и Persisted.
type Entity[F Fields] interface {
	// Body возвращает поля записи
	Body() F
	// WithFields возвращает запись того же варианта с новыми полями
	WithFields(fields F) Entity[F]
	isEntity()
}

// Draft - запись, еще не отправленная в хранилище
type Draft[F Fields] struct {
	Fields F
}

// Body возвращает поля черновика
func (d Draft[F]) Body() F { return d.Fields }

// WithFields возвращает черновик с новыми полями
func (d Draft[F]) WithFields(fields F) Entity[F] { return Draft[F]{Fields: fields} }

func (Draft[F]) isEntity() {}

// Persisted - запись с идентификатором, назначенным хранилищем
type Persisted[F Fields] struct {
	ID     int
	Fields F
}

// Body возвращает поля записи
func (p Persisted[F]) Body() F { return p.Fields }

// WithFields возвращает запись с тем же ID и новыми полями
func (p Persisted[F]) WithFields(fields F) Entity[F] {
	return Persisted[F]{ID: p.ID, Fields: fields}
}

func (Persisted[F]) isEntity() {}

// MarshalJSON сериализует запись в плоский объект {"id": N, ...поля}
func (p Persisted[F]) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(p.Fields)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("поля записи должны сериализоваться в объект, получено: %s", body)
	}

	var buf bytes.Buffer
	buf.WriteString(`{"id":`)
	buf.WriteString(strconv.Itoa(p.ID))
	rest := bytes.TrimSpace(body[1:])
	if len(rest) > 0 && rest[0] != '}' {
		buf.WriteByte(',')
	}
	buf.Write(rest)
	return buf.Bytes(), nil
}

// UnmarshalJSON разбирает плоский объект; запись без id считается ошибкой
func (p *Persisted[F]) UnmarshalJSON(data []byte) error {
	var head struct {
		ID *int `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	if head.ID == nil {
		return fmt.Errorf("в записи отсутствует id: %s", data)
	}

	var fields F
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	p.ID = *head.ID
	p.Fields = fields
	return nil
}

// IDOf возвращает идентификатор записи, если она сохранена
func IDOf[F Fields](e Entity[F]) (int, bool) {
	if p, ok := e.(Persisted[F]); ok {
		return p.ID, true
	}
	return 0, false
}

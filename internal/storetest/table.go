package storetest

import (
	"sort"

	"github.com/hazadus/go-discography/internal/catalog"
)

// table хранит записи одной коллекции
type table[F catalog.Fields] struct {
	rows []catalog.Persisted[F]
	less func(a, b catalog.Persisted[F]) bool
}

func newTable[F catalog.Fields](less func(a, b catalog.Persisted[F]) bool) *table[F] {
	return &table[F]{rows: make([]catalog.Persisted[F], 0), less: less}
}

// list возвращает копию записей в порядке хранилища
func (t *table[F]) list() []catalog.Persisted[F] {
	out := make([]catalog.Persisted[F], len(t.rows))
	copy(out, t.rows)
	sort.SliceStable(out, func(i, j int) bool { return t.less(out[i], out[j]) })
	return out
}

// insert назначает записи следующий после максимального ID
func (t *table[F]) insert(fields F) catalog.Persisted[F] {
	maxID := 0
	for _, r := range t.rows {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	row := catalog.Persisted[F]{ID: maxID + 1, Fields: fields}
	t.rows = append(t.rows, row)
	return row
}

// update заменяет запись с тем же ID
func (t *table[F]) update(row catalog.Persisted[F]) bool {
	for i := range t.rows {
		if t.rows[i].ID == row.ID {
			t.rows[i] = row
			return true
		}
	}
	return false
}

// remove удаляет запись по ID
func (t *table[F]) remove(id int) bool {
	for i := range t.rows {
		if t.rows[i].ID == id {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return true
		}
	}
	return false
}

func (t *table[F]) replace(rows []catalog.Persisted[F]) {
	t.rows = append(make([]catalog.Persisted[F], 0, len(rows)), rows...)
}

func tracksByID(a, b catalog.Track) bool {
	return a.ID < b.ID
}

// releasesNewestFirst сортирует по году, затем по ID, оба по убыванию
func releasesNewestFirst(a, b catalog.Release) bool {
	if a.Fields.Year != b.Fields.Year {
		return a.Fields.Year > b.Fields.Year
	}
	return a.ID > b.ID
}

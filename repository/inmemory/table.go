package storage

import "taskhub/internal/domain/errors"

// Table is an insertion-ordered collection keyed by integer id. Ids come from
// a counter that only moves forward, so a freed id is never handed out again.
type Table[T any] struct {
	rows   map[int]T
	order  []int
	nextID int
	assign func(*T, int)
}

func NewTable[T any](assign func(*T, int)) *Table[T] {
	return &Table[T]{
		rows:   make(map[int]T),
		nextID: 1,
		assign: assign,
	}
}

func (t *Table[T]) All() []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

func (t *Table[T]) Get(id int) (T, bool) {
	rec, ok := t.rows[id]
	return rec, ok
}

func (t *Table[T]) Insert(rec T) int {
	id := t.nextID
	t.nextID++
	t.assign(&rec, id)
	t.rows[id] = rec
	t.order = append(t.order, id)
	return id
}

func (t *Table[T]) Replace(id int, rec T) error {
	if _, ok := t.rows[id]; !ok {
		return errors.ErrNotFound
	}
	t.assign(&rec, id)
	t.rows[id] = rec
	return nil
}

func (t *Table[T]) Remove(id int) (T, bool) {
	rec, ok := t.rows[id]
	if !ok {
		return rec, false
	}
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return rec, true
}

func (t *Table[T]) Len() int { return len(t.order) }

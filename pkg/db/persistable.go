package db

import (
	"fmt"

	"github.com/ClickHouse/ch-go/proto"
)

// PersistableObject accumulates the rows bound for one table and exports
// them as a single columnar insert.
type PersistableObject[T any] struct {
	input func([]T) proto.Input
	table string
	query string

	items []T
}

func (p *PersistableObject[T]) Append(item T) {
	p.items = append(p.items, item)
}

func (p PersistableObject[T]) Rows() int {
	return len(p.items)
}

func (p PersistableObject[T]) ExportPersist() (string, string, proto.Input, int) {
	return fmt.Sprintf(p.query, p.table), p.table, p.input(p.items), len(p.items)
}

// MutationObject carries a parametrized mutation and the table it targets,
// so mutation errors can be linked back to their origin.
type MutationObject struct {
	query string
	table string
	args  []any
}

func (m MutationObject) Query() string {
	return fmt.Sprintf(m.query, m.table)
}

func (m MutationObject) Table() string {
	return m.table
}

func (m MutationObject) Args() []any {
	return m.args
}

// Package inmemdb is the canonical single-process record store: an append-only
// in-memory table. Records do not survive a restart; deployments that need
// durability use the sqlx store instead.
package inmemdb

import (
	"sync"

	"github.com/trezcool/mahudhurio/core/attendance"
)

type (
	DB struct {
		records *recordTable
	}

	recordTable struct {
		sync.RWMutex
		seq   int
		table []attendance.Record
	}
)

func Open() (*DB, error) {
	db := &DB{
		records: &recordTable{table: make([]attendance.Record, 0)},
	}
	return db, nil
}

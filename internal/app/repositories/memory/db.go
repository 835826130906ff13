// Package memory keeps every repository in process memory. It backs the
// service and controller tests and is handy for running the API without
// Postgres or MongoDB.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/helpers"
)

type row[T any] struct {
	seq   int64
	value T
}

type table[T any] struct {
	sync.RWMutex
	rows map[string]*row[T]
	seq  int64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*row[T])}
}

func (t *table[T]) put(id string, v T) {
	if r, ok := t.rows[id]; ok {
		r.value = v
		return
	}
	t.seq++
	t.rows[id] = &row[T]{seq: t.seq, value: v}
}

// newestFirst returns the rows ordered by insertion, most recent first
func (t *table[T]) newestFirst() []T {
	ordered := make([]*row[T], 0, len(t.rows))
	for _, r := range t.rows {
		ordered = append(ordered, r)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq > ordered[j].seq })
	out := make([]T, len(ordered))
	for i, r := range ordered {
		out[i] = r.value
	}
	return out
}

// DB holds one table per entity
type DB struct {
	users           *table[models.User]
	agencies        *table[models.Agency]
	colleges        *table[models.College]
	courses         *table[models.Course]
	applications    *table[models.Application]
	payments        *table[models.Payment]
	offlinePayments *table[models.OfflinePayment]
	documents       *table[models.Document]

	settingsMu sync.RWMutex
	settings   *models.Settings
}

// Open creates an empty in-memory database
func Open() *DB {
	return &DB{
		users:           newTable[models.User](),
		agencies:        newTable[models.Agency](),
		colleges:        newTable[models.College](),
		courses:         newTable[models.Course](),
		applications:    newTable[models.Application](),
		payments:        newTable[models.Payment](),
		offlinePayments: newTable[models.OfflinePayment](),
		documents:       newTable[models.Document](),
	}
}

// NewRepositories wires every in-memory repository over one DB
func NewRepositories(db *DB) *repositories.Repositories {
	return &repositories.Repositories{
		Users:           &userRepository{db: db},
		Agencies:        &agencyRepository{db: db},
		Colleges:        &collegeRepository{db: db},
		Courses:         &courseRepository{db: db},
		Applications:    &applicationRepository{db: db},
		Payments:        &paymentRepository{db: db},
		OfflinePayments: &offlinePaymentRepository{db: db},
		Settings:        &settingsRepository{db: db},
		Documents:       &documentRepository{db: db},
	}
}

func paginate[T any](items []T, opts repositories.ListOptions) []T {
	if opts.Size <= 0 {
		return items
	}
	offset, limit := helpers.CalculateOffsetLimit(opts.Page, opts.Size)
	if int(offset) >= len(items) {
		return []T{}
	}
	end := int(offset) + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

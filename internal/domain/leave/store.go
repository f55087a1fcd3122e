package leave

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool

	// Observe, when set, receives the duration of each conditional chain
	// mutation for metrics.
	Observe func(operation string, d time.Duration)
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) observe(operation string, start time.Time) {
	if s.Observe != nil {
		s.Observe(operation, time.Since(start))
	}
}

// Package sweeper wires up the cron job that deactivates job postings whose
// application deadline has passed. Postings are never hard-deleted; expiry
// only flips is_active so candidate-facing listings stop showing them.
package sweeper

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

// Sweeper wraps robfig/cron and manages the deadline sweep loop.
type Sweeper struct {
	cron *cron.Cron
	pool *pgxpool.Pool
	spec string // cron spec, e.g. "@every 1h"
}

// New creates a Sweeper that fires every intervalHours hours.
func New(pool *pgxpool.Pool, intervalHours int) *Sweeper {
	return &Sweeper{
		cron: cron.New(cron.WithLogger(cron.DefaultLogger)),
		pool: pool,
		spec: fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so postings that expired while the service was down are
// deactivated without waiting for the first tick.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[sweeper] Cron started — spec: %s", s.spec)

	go s.sweep(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Sweeper) Stop() {
	s.cron.Stop()
	log.Println("[sweeper] Cron stopped")
}

// sweep deactivates every active posting whose deadline is in the past.
func (s *Sweeper) sweep(ctx context.Context) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE job_postings
		 SET is_active = false
		 WHERE is_active
		   AND deadline IS NOT NULL
		   AND deadline < NOW()`,
	)
	if err != nil {
		log.Printf("[sweeper] Deadline sweep error: %v", err)
		return
	}

	if n := tag.RowsAffected(); n > 0 {
		log.Printf("[sweeper] Deactivated %d expired posting(s)", n)
	}
}

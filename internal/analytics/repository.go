package analytics

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/charity-events/backend/internal/models"
)

// Repository computes dashboard aggregates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an analytics repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Stats counts activities, and registrations and tickets of activities that still exist.
func (r *Repository) Stats(ctx context.Context) (*models.Stats, error) {
	const q = `SELECT
			(SELECT COUNT(*) FROM activities),
			COUNT(r.id),
			COALESCE(SUM(r.ticket_quantity), 0)
		FROM event_registrations r
		JOIN activities a ON a.id = r.activity_id`
	var s models.Stats
	if err := r.pool.QueryRow(ctx, q).Scan(&s.TotalActivities, &s.TotalRegistrations, &s.TotalTickets); err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return &s, nil
}

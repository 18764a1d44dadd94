package categories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/charity-events/backend/internal/models"
)

// Repository reads event categories. Categories are seeded by migrations and never written by the API.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a categories repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all categories.
func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, category_name, category_desc FROM event_categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	list := []models.Category{}
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.CategoryName, &cat.CategoryDesc); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, cat)
	}
	return list, rows.Err()
}

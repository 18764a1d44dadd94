package activities

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/charity-events/backend/internal/models"
	"github.com/charity-events/backend/pkg/database"
)

var (
	// ErrNotFound is returned when no activity has the requested id.
	ErrNotFound = errors.New("activity not found")
	// ErrUnknownCategory is returned when category_id references no category.
	ErrUnknownCategory = errors.New("unknown category")
)

const selectActivity = `SELECT a.id, a.title, a.description, a.date, a.location, a.category_id, c.category_name
	FROM activities a
	LEFT JOIN event_categories c ON c.id = a.category_id`

// Repository handles activity persistence.
type Repository struct {
	pool          *pgxpool.Pool
	cascadeDelete bool
}

// NewRepository creates an activity repository. With cascadeDelete, Delete also
// removes the activity's registrations in the same statement.
func NewRepository(pool *pgxpool.Pool, cascadeDelete bool) *Repository {
	return &Repository{pool: pool, cascadeDelete: cascadeDelete}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (models.Activity, error) {
	var (
		a    models.Activity
		date time.Time
	)
	if err := row.Scan(&a.ID, &a.Title, &a.Description, &date, &a.Location, &a.CategoryID, &a.CategoryName); err != nil {
		return a, err
	}
	a.Date = models.FormatActivityDate(date)
	return a, nil
}

// List returns all activities with their category name, in store order.
func (r *Repository) List(ctx context.Context) ([]models.Activity, error) {
	rows, err := r.pool.Query(ctx, selectActivity)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	list := []models.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// GetByID returns an activity by ID, or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Activity, error) {
	a, err := scanActivity(r.pool.QueryRow(ctx, selectActivity+` WHERE a.id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get activity %d: %w", id, err)
	}
	return &a, nil
}

// Exists reports whether an activity with id exists.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM activities WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("check activity %d: %w", id, err)
	}
	return ok, nil
}

// Create inserts a.Date (DateLayout) and sets a.ID.
func (r *Repository) Create(ctx context.Context, a *models.Activity) error {
	date, err := models.ParseActivityDate(a.Date)
	if err != nil {
		return err
	}
	const q = `INSERT INTO activities (title, description, date, location, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.pool.QueryRow(ctx, q, a.Title, a.Description, date, a.Location, a.CategoryID).Scan(&a.ID); err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrUnknownCategory
		}
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// Update replaces every editable field of activity a.ID and returns the affected row count.
func (r *Repository) Update(ctx context.Context, a *models.Activity) (int64, error) {
	date, err := models.ParseActivityDate(a.Date)
	if err != nil {
		return 0, err
	}
	const q = `UPDATE activities SET title = $1, description = $2, date = $3, location = $4, category_id = $5 WHERE id = $6`
	tag, err := r.pool.Exec(ctx, q, a.Title, a.Description, date, a.Location, a.CategoryID, a.ID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return 0, ErrUnknownCategory
		}
		return 0, fmt.Errorf("update activity %d: %w", a.ID, err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes an activity and returns the affected row count.
func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	q := `DELETE FROM activities WHERE id = $1`
	if r.cascadeDelete {
		q = `WITH regs AS (DELETE FROM event_registrations WHERE activity_id = $1)
		DELETE FROM activities WHERE id = $1`
	}
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return 0, fmt.Errorf("delete activity %d: %w", id, err)
	}
	return tag.RowsAffected(), nil
}

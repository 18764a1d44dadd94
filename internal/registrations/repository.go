package registrations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/charity-events/backend/internal/models"
	"github.com/charity-events/backend/pkg/database"
)

var (
	// ErrNotFound is returned when no registration has the requested id.
	ErrNotFound = errors.New("registration not found")
	// ErrDuplicateRegistration is returned when the email is already registered for the activity.
	ErrDuplicateRegistration = errors.New("already registered for this activity")
	// ErrActivityNotFound is returned when registering for an activity that does not exist.
	ErrActivityNotFound = errors.New("activity not found")
)

const registrationColumns = `r.id, r.activity_id, r.user_name, r.user_email, r.phone, r.ticket_quantity, r.registration_date`

// Repository handles registration persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a registration and sets its id and registration_date.
// The activity check and the insert are one statement.
func (r *Repository) Create(ctx context.Context, reg *models.Registration) error {
	const q = `INSERT INTO event_registrations (activity_id, user_name, user_email, phone, ticket_quantity)
		SELECT $1::bigint, $2::text, $3::text, $4::text, $5::int
		WHERE EXISTS (SELECT 1 FROM activities WHERE id = $1)
		RETURNING id, registration_date`
	err := r.pool.QueryRow(ctx, q, reg.ActivityID, reg.UserName, reg.UserEmail, reg.Phone, reg.TicketQuantity).
		Scan(&reg.ID, &reg.RegistrationDate)
	switch {
	case err == nil:
		return nil
	case database.IsNoRows(err):
		return ErrActivityNotFound
	case database.IsUniqueViolation(err):
		return ErrDuplicateRegistration
	default:
		return fmt.Errorf("insert registration: %w", err)
	}
}

// ListForActivity returns an activity's registrations, newest first.
func (r *Repository) ListForActivity(ctx context.Context, activityID int64) ([]models.Registration, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+registrationColumns+` FROM event_registrations r
		WHERE r.activity_id = $1 ORDER BY r.registration_date DESC`, activityID)
	if err != nil {
		return nil, fmt.Errorf("list registrations for activity %d: %w", activityID, err)
	}
	defer rows.Close()
	list := []models.Registration{}
	for rows.Next() {
		var reg models.Registration
		if err := rows.Scan(&reg.ID, &reg.ActivityID, &reg.UserName, &reg.UserEmail, &reg.Phone, &reg.TicketQuantity, &reg.RegistrationDate); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}

// List returns registrations across activities with the activity title, newest first.
// activityID filters to one activity when non-nil.
func (r *Repository) List(ctx context.Context, activityID *int64) ([]models.RegistrationWithActivity, error) {
	q := `SELECT ` + registrationColumns + `, a.title
		FROM event_registrations r
		LEFT JOIN activities a ON a.id = r.activity_id`
	var args []interface{}
	if activityID != nil {
		q += ` WHERE r.activity_id = $1`
		args = append(args, *activityID)
	}
	rows, err := r.pool.Query(ctx, q+` ORDER BY r.registration_date DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()
	list := []models.RegistrationWithActivity{}
	for rows.Next() {
		var reg models.RegistrationWithActivity
		if err := rows.Scan(&reg.ID, &reg.ActivityID, &reg.UserName, &reg.UserEmail, &reg.Phone, &reg.TicketQuantity, &reg.RegistrationDate, &reg.ActivityTitle); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}

// Delete removes a registration and returns the activity it belonged to, or ErrNotFound.
func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	var activityID int64
	err := r.pool.QueryRow(ctx, `DELETE FROM event_registrations WHERE id = $1 RETURNING activity_id`, id).Scan(&activityID)
	if err != nil {
		if database.IsNoRows(err) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("delete registration %d: %w", id, err)
	}
	return activityID, nil
}

package models

import "time"

// Registration is one person's sign-up for an activity.
type Registration struct {
	ID               int64     `json:"id"`
	ActivityID       int64     `json:"activity_id"`
	UserName         string    `json:"user_name"`
	UserEmail        string    `json:"user_email"`
	Phone            *string   `json:"phone,omitempty"`
	TicketQuantity   int       `json:"ticket_quantity"`
	RegistrationDate time.Time `json:"registration_date"`
}

// RegistrationWithActivity is a registration listed across activities.
// ActivityTitle is nil when the activity has been deleted.
type RegistrationWithActivity struct {
	Registration
	ActivityTitle *string `json:"activity_title"`
}

package models

// Stats is the admin dashboard summary.
type Stats struct {
	TotalActivities    int   `json:"total_activities"`
	TotalRegistrations int   `json:"total_registrations"`
	TotalTickets       int64 `json:"total_tickets"`
}

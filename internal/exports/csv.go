package exports

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/charity-events/backend/internal/models"
)

var header = []string{"id", "activity_id", "user_name", "user_email", "phone", "ticket_quantity", "registration_date"}

// WriteCSV writes registrations as CSV with a header row.
func WriteCSV(w io.Writer, regs []models.Registration) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range regs {
		phone := ""
		if r.Phone != nil {
			phone = *r.Phone
		}
		record := []string{
			strconv.FormatInt(r.ID, 10),
			strconv.FormatInt(r.ActivityID, 10),
			r.UserName,
			r.UserEmail,
			phone,
			strconv.Itoa(r.TicketQuantity),
			r.RegistrationDate.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

package ledger

import (
	"fmt"
	"time"
)

// Purchase records that a user owns a course through a specific payment.
type Purchase struct {
	UserID           string    `json:"user_id"`
	CourseID         string    `json:"course_id"`
	PaymentReference string    `json:"payment_reference"`
	CreatedAt        time.Time `json:"created_at"`
}

func (p Purchase) key() string {
	return fmt.Sprintf("%s/%s/%s", p.UserID, p.CourseID, p.PaymentReference)
}

func (p Purchase) validate() error {
	if p.UserID == "" || p.CourseID == "" || p.PaymentReference == "" {
		return fmt.Errorf("incomplete purchase %q", p.key())
	}
	return nil
}

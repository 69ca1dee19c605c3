package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResetMail is one queued password-reset notification. The token travels
// out-of-band to the user's inbox embedded in a frontend link.
type ResetMail struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Token    string    `json:"token"`
	QueuedAt time.Time `json:"queued_at"`
}

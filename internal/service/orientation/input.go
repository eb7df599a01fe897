package orientation

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

const maxSlotLen = 64

// ScheduleInput holds the parameters for booking an orientation session.
type ScheduleInput struct {
	ApplicationID uuid.UUID
	SessionDate   time.Time
	SessionSlot   string
	Venue         string
}

// Validate checks all fields and collects all errors.
func (i *ScheduleInput) Validate() error {
	var errs []domain.FieldError

	if i.ApplicationID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "application_id", Message: "required"})
	}
	errs = append(errs, validateSession(domain.SessionKey{Date: i.SessionDate, Slot: i.SessionSlot, Venue: i.Venue})...)

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// SessionInput identifies the session to finalize.
type SessionInput struct {
	Session domain.SessionKey
}

// Validate checks all fields and collects all errors.
func (i *SessionInput) Validate() error {
	if errs := validateSession(i.Session); len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func validateSession(k domain.SessionKey) []domain.FieldError {
	var errs []domain.FieldError

	if k.Date.IsZero() {
		errs = append(errs, domain.FieldError{Field: "session_date", Message: "required"})
	}
	switch slot := strings.TrimSpace(k.Slot); {
	case slot == "":
		errs = append(errs, domain.FieldError{Field: "session_slot", Message: "required"})
	case len(slot) > maxSlotLen:
		errs = append(errs, domain.FieldError{Field: "session_slot", Message: "too long"})
	}
	if strings.TrimSpace(k.Venue) == "" {
		errs = append(errs, domain.FieldError{Field: "venue", Message: "required"})
	}
	return errs
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrientationRecord is the orientation booking of one application.
type OrientationRecord struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	SessionDate   time.Time
	SessionSlot   string
	Venue         string
	Status        OrientationStatus
	CheckInTime   *time.Time
	CheckOutTime  *time.Time
	CheckedInBy   *uuid.UUID
	CheckedOutBy  *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SessionKey identifies one orientation session.
type SessionKey struct {
	Date  time.Time
	Slot  string
	Venue string
}

// Day returns the session date truncated to midnight UTC.
func (k SessionKey) Day() time.Time {
	y, m, d := k.Date.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

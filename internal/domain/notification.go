package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a message addressed to an applicant or an admin.
// Delivery is outside this service. ActionRef is the API route the
// recipient is expected to call next, nil when there is nothing to do.
type Notification struct {
	ID            uuid.UUID
	RecipientID   uuid.UUID
	ApplicationID uuid.UUID
	Type          NotificationType
	Title         string
	Message       string
	Actionable    bool
	ActionRef     *string
	IsRead        bool
	CreatedAt     time.Time
}

// ActivityLog is an append-only audit record of a review action.
type ActivityLog struct {
	ID            uuid.UUID
	ActorID       *uuid.UUID
	ApplicationID uuid.UUID
	Action        ActivityAction
	Details       map[string]any
	CreatedAt     time.Time
}

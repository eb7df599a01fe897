package domain

import (
	"time"

	"github.com/google/uuid"
)

// Application is one applicant submission for a health card.
type Application struct {
	ID                   uuid.UUID
	ApplicantID          uuid.UUID
	JobCategoryID        uuid.UUID
	Type                 ApplicationType
	Status               ApplicationStatus
	OrientationCompleted bool
	PaymentDeadline      *time.Time
	AdminRemarks         *string
	LastUpdatedBy        *uuid.UUID
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ApplicationUpdate is a partial update; nil fields are left untouched.
type ApplicationUpdate struct {
	Status               *ApplicationStatus
	OrientationCompleted *bool
	PaymentDeadline      *time.Time
	AdminRemarks         *string
	LastUpdatedBy        *uuid.UUID
}

// IsEmpty reports whether the update changes nothing.
func (u ApplicationUpdate) IsEmpty() bool {
	return u.Status == nil && u.OrientationCompleted == nil && u.PaymentDeadline == nil &&
		u.AdminRemarks == nil && u.LastUpdatedBy == nil
}

// CategoryPolicy is the review policy of a job category.
type CategoryPolicy struct {
	JobCategoryID       uuid.UUID
	Name                string
	RequiresOrientation bool
	AdminIDs            []uuid.UUID
}

// ManagedBy reports whether adminID may act on applications of this category.
// A category without listed admins is managed by every admin.
func (p CategoryPolicy) ManagedBy(adminID uuid.UUID) bool {
	if len(p.AdminIDs) == 0 {
		return true
	}
	for _, id := range p.AdminIDs {
		if id == adminID {
			return true
		}
	}
	return false
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// IsZero reports whether the actor is unauthenticated.
func (a Actor) IsZero() bool {
	return a.ID == uuid.Nil || !a.Role.IsValid()
}

// SystemActor is the rejectedBy value used for automatic rejections.
const SystemActor = "system"

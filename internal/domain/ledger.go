package domain

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEntry is one rejection or referral recorded against an artifact type.
// Entries are never deleted except by an administrative reset.
type LedgerEntry struct {
	ID                    uuid.UUID
	ApplicationID         uuid.UUID
	ArtifactKind          ArtifactKind
	ArtifactTypeID        string
	AttemptNumber         int
	IssueType             IssueType
	Category              Category
	Reason                string
	SpecificIssues        []string
	DoctorName            *string
	ClinicAddress         *string
	IssuedBy              uuid.UUID
	IssuedAt              time.Time
	Status                LedgerStatus
	WasReplaced           bool
	ReplacementArtifactID *uuid.UUID
	ReplacedAt            *time.Time
	ResolvedBy            *uuid.UUID
	ResolvedAt            *time.Time
	ResolutionNotes       *string
}

// IsOutstanding reports whether the entry is the open rejection of its artifact type.
func (e *LedgerEntry) IsOutstanding() bool {
	return e.Status == LedgerPending && !e.WasReplaced
}

// Resubmittable reports whether the applicant may clear the entry by uploading a new file.
func (e *LedgerEntry) Resubmittable() bool {
	return e.IssueType.Resubmittable()
}

// ResolvedInPerson reports whether the entry can only be closed by staff
// after an in-person check: a medical referral or a payment under administrative review.
func (e *LedgerEntry) ResolvedInPerson() bool {
	return e.IssueType == IssueMedicalReferral || e.ArtifactKind == ArtifactKindPayment
}

// LedgerResolution closes a ledger entry.
type LedgerResolution struct {
	Status     LedgerStatus
	ResolvedBy uuid.UUID
	ResolvedAt time.Time
	Notes      *string
}

// PermanentRejectionRecord is the immutable snapshot written when an
// application is rejected for reaching the attempt cap.
type PermanentRejectionRecord struct {
	ID                    uuid.UUID
	ApplicationID         uuid.UUID
	ApplicantID           uuid.UUID
	JobCategoryID         uuid.UUID
	TriggerArtifactTypeID string
	TriggerCategory       Category
	TotalDocumentAttempts int
	TotalPaymentAttempts  int
	RejectedBy            string
	RejectedAt            time.Time
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Artifact is an uploaded document or payment receipt under review.
// Resubmission replaces the file in place; the artifact id never changes.
type Artifact struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	Kind          ArtifactKind
	TypeID        string
	FileRef       string
	FileSize      int64
	ContentType   string
	Status        ReviewStatus
	AdminRemarks  *string
	ReviewedBy    *uuid.UUID
	ReviewedAt    *time.Time
	UploadedAt    time.Time
	UpdatedAt     time.Time
}

// ArtifactReview is the review state written by a reviewer action.
type ArtifactReview struct {
	Status     ReviewStatus
	Remarks    *string
	ReviewedBy *uuid.UUID
	ReviewedAt time.Time
}

// FileMeta describes a stored blob.
type FileMeta struct {
	Ref         string
	Size        int64
	ContentType string
}

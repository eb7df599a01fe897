package document

import (
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

const (
	maxReasonLen  = 2000
	maxIssues     = 20
	maxRemarksLen = 2000
)

// RejectInput holds the parameters for rejecting a document as a
// resubmittable document issue.
type RejectInput struct {
	ArtifactID     uuid.UUID
	Category       domain.Category
	Reason         string
	SpecificIssues []string
}

// Validate checks all fields and collects all errors.
func (i *RejectInput) Validate() error {
	errs := validateFinding(i.ArtifactID, domain.IssueDocument, i.Category, i.Reason, i.SpecificIssues)
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ReferInput holds the parameters for a rejection whose issue type is
// chosen by the reviewer. Medical referrals name the responsible clinician.
type ReferInput struct {
	ArtifactID     uuid.UUID
	IssueType      domain.IssueType
	Category       domain.Category
	Reason         string
	SpecificIssues []string
	DoctorName     *string
	ClinicAddress  *string
}

// Validate checks all fields and collects all errors.
func (i *ReferInput) Validate() error {
	var errs []domain.FieldError

	if i.IssueType != domain.IssueDocument && i.IssueType != domain.IssueMedicalReferral {
		errs = append(errs, domain.FieldError{Field: "issue_type", Message: "must be document_issue or medical_referral"})
	} else {
		errs = append(errs, validateFinding(i.ArtifactID, i.IssueType, i.Category, i.Reason, i.SpecificIssues)...)
	}

	if i.IssueType == domain.IssueMedicalReferral {
		if i.DoctorName == nil || strings.TrimSpace(*i.DoctorName) == "" {
			errs = append(errs, domain.FieldError{Field: "doctor_name", Message: "required for medical referrals"})
		}
		if i.ClinicAddress == nil || strings.TrimSpace(*i.ClinicAddress) == "" {
			errs = append(errs, domain.FieldError{Field: "clinic_address", Message: "required for medical referrals"})
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func validateFinding(artifactID uuid.UUID, issue domain.IssueType, category domain.Category, reason string, issues []string) []domain.FieldError {
	var errs []domain.FieldError

	if artifactID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "artifact_id", Message: "required"})
	}
	if !category.BelongsTo(issue) {
		errs = append(errs, domain.FieldError{Field: "category", Message: "not a " + string(issue) + " category"})
	}
	if strings.TrimSpace(reason) == "" {
		errs = append(errs, domain.FieldError{Field: "reason", Message: "required"})
	} else if len(reason) > maxReasonLen {
		errs = append(errs, domain.FieldError{Field: "reason", Message: "too long"})
	}
	if len(issues) > maxIssues {
		errs = append(errs, domain.FieldError{Field: "specific_issues", Message: "too many items"})
	}
	return errs
}

// VerifyInput holds the parameters for accepting a pending document.
type VerifyInput struct {
	ArtifactID uuid.UUID
	Remarks    *string
}

// Validate checks all fields and collects all errors.
func (i *VerifyInput) Validate() error {
	var errs []domain.FieldError

	if i.ArtifactID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "artifact_id", Message: "required"})
	}
	if i.Remarks != nil && len(*i.Remarks) > maxRemarksLen {
		errs = append(errs, domain.FieldError{Field: "remarks", Message: "too long"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// OnsiteInput holds the parameters for clearing a referral after an
// in-person check.
type OnsiteInput struct {
	ArtifactID uuid.UUID
	Notes      *string
}

// Validate checks all fields and collects all errors.
func (i *OnsiteInput) Validate() error {
	var errs []domain.FieldError

	if i.ArtifactID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "artifact_id", Message: "required"})
	}
	if i.Notes != nil && len(*i.Notes) > maxRemarksLen {
		errs = append(errs, domain.FieldError{Field: "notes", Message: "too long"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ResubmitInput holds the parameters for replacing a rejected document.
type ResubmitInput struct {
	ApplicationID  uuid.UUID
	ArtifactTypeID string
	FileRef        string
}

// Validate checks all fields and collects all errors.
func (i *ResubmitInput) Validate() error {
	var errs []domain.FieldError

	if i.ApplicationID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "application_id", Message: "required"})
	}
	if strings.TrimSpace(i.ArtifactTypeID) == "" {
		errs = append(errs, domain.FieldError{Field: "artifact_type_id", Message: "required"})
	}
	if strings.TrimSpace(i.FileRef) == "" {
		errs = append(errs, domain.FieldError{Field: "file_ref", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// BatchInput holds the parameters for closing a document review batch.
type BatchInput struct {
	ApplicationID uuid.UUID
	Decision      domain.Decision
}

// Validate checks all fields and collects all errors.
func (i *BatchInput) Validate() error {
	var errs []domain.FieldError

	if i.ApplicationID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "application_id", Message: "required"})
	}
	if !i.Decision.IsValid() {
		errs = append(errs, domain.FieldError{Field: "decision", Message: "must be Approved or Rejected"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

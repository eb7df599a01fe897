package payment

import (
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

const (
	maxReasonLen  = 2000
	maxRemarksLen = 2000
)

// RejectInput holds the parameters for rejecting a pending payment.
type RejectInput struct {
	PaymentID uuid.UUID
	Category  domain.Category
	Reason    string
}

// Validate checks all fields and collects all errors.
func (i *RejectInput) Validate() error {
	var errs []domain.FieldError

	if i.PaymentID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "payment_id", Message: "required"})
	}
	if !i.Category.BelongsTo(domain.IssuePayment) {
		errs = append(errs, domain.FieldError{Field: "category", Message: "not a payment category"})
	}
	if strings.TrimSpace(i.Reason) == "" {
		errs = append(errs, domain.FieldError{Field: "reason", Message: "required"})
	} else if len(i.Reason) > maxReasonLen {
		errs = append(errs, domain.FieldError{Field: "reason", Message: "too long"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ApproveInput holds the parameters for confirming a pending payment.
type ApproveInput struct {
	PaymentID uuid.UUID
	Remarks   *string
}

// Validate checks all fields and collects all errors.
func (i *ApproveInput) Validate() error {
	var errs []domain.FieldError

	if i.PaymentID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "payment_id", Message: "required"})
	}
	if i.Remarks != nil && len(*i.Remarks) > maxRemarksLen {
		errs = append(errs, domain.FieldError{Field: "remarks", Message: "too long"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ResubmitInput holds the parameters for uploading a new receipt.
type ResubmitInput struct {
	ApplicationID uuid.UUID
	FileRef       string
}

// Validate checks all fields and collects all errors.
func (i *ResubmitInput) Validate() error {
	var errs []domain.FieldError

	if i.ApplicationID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "application_id", Message: "required"})
	}
	if strings.TrimSpace(i.FileRef) == "" {
		errs = append(errs, domain.FieldError{Field: "file_ref", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UnlockInput holds the parameters for resolving an administrative review.
type UnlockInput struct {
	ApplicationID uuid.UUID
	Resolution    domain.UnlockResolution
	Remarks       string
}

// Validate checks all fields and collects all errors.
func (i *UnlockInput) Validate() error {
	var errs []domain.FieldError

	if i.ApplicationID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "application_id", Message: "required"})
	}
	if !i.Resolution.IsValid() {
		errs = append(errs, domain.FieldError{Field: "resolution", Message: "must be approve_payment or reset_attempts"})
	}
	if strings.TrimSpace(i.Remarks) == "" {
		errs = append(errs, domain.FieldError{Field: "remarks", Message: "required"})
	} else if len(i.Remarks) > maxRemarksLen {
		errs = append(errs, domain.FieldError{Field: "remarks", Message: "too long"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

package aggregate

import "github.com/heartmarshall/healthcard-backend/internal/domain"

// Snapshot is everything the application status is derived from.
type Snapshot struct {
	Documents            []domain.Artifact
	Payment              *domain.Artifact
	Orientation          *domain.OrientationRecord
	RequiresOrientation  bool
	OrientationCompleted bool
}

// Derive computes the application status from its sub-states. It is pure:
// the same snapshot always yields the same status.
//
// Documents come first, then orientation (when the category requires it),
// then payment. Only when all three are satisfied is the application
// Under Review, waiting for the final decision.
func Derive(s Snapshot) domain.ApplicationStatus {
	if len(s.Documents) == 0 {
		return domain.StatusSubmitted
	}

	pending := false
	for _, d := range s.Documents {
		if d.Status.IsRejected() {
			return domain.StatusDocumentsNeedRevision
		}
		if d.Status == domain.ReviewPending {
			pending = true
		}
	}
	if pending {
		return domain.StatusForDocumentVerification
	}

	if s.RequiresOrientation && !s.OrientationCompleted {
		if s.Orientation != nil && s.Orientation.Status.IsActive() {
			return domain.StatusScheduled
		}
		return domain.StatusForOrientation
	}

	switch {
	case s.Payment == nil:
		return domain.StatusPaymentValidation
	case s.Payment.Status.IsRejected():
		return domain.StatusPaymentRejected
	case !s.Payment.Status.IsAccepted():
		return domain.StatusPaymentValidation
	}

	return domain.StatusUnderReview
}

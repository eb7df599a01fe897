// Package access is the single authorization gate for review operations.
package access

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

// Action is an operation an actor asks to perform on an application.
type Action string

const (
	ActionViewApplication   Action = "view_application"
	ActionReviewDocument    Action = "review_document"
	ActionClearReferral     Action = "clear_referral"
	ActionReviewPayment     Action = "review_payment"
	ActionManageOrientation Action = "manage_orientation"
	ActionResubmit          Action = "resubmit"
	ActionDecideApplication Action = "decide_application"
	ActionResetVerification Action = "reset_verification"
	ActionUnlockApplication Action = "unlock_application"
)

func (a Action) String() string { return string(a) }

// IsWrite reports whether the action mutates state.
func (a Action) IsWrite() bool {
	return a != ActionViewApplication
}

// Resource is the application an action targets.
type Resource struct {
	ApplicationID uuid.UUID
	ApplicantID   uuid.UUID
	Policy        domain.CategoryPolicy
}

var staffActions = map[domain.Role]map[Action]bool{
	domain.RoleAdmin: {
		ActionReviewDocument:    true,
		ActionClearReferral:     true,
		ActionReviewPayment:     true,
		ActionManageOrientation: true,
		ActionDecideApplication: true,
		ActionResetVerification: true,
		ActionUnlockApplication: true,
	},
	domain.RoleInspector: {
		ActionReviewDocument:    true,
		ActionReviewPayment:     true,
		ActionManageOrientation: true,
	},
}

// Check returns nil when actor may perform action on res, or a
// *domain.ReviewError of kind authorization otherwise.
func Check(actor domain.Actor, action Action, res Resource) error {
	if actor.IsZero() {
		return domain.NewReviewError(domain.CodeNotAuthenticated, "authentication required")
	}

	if actor.Role == domain.RoleApplicant {
		if actor.ID != res.ApplicantID {
			return domain.NewReviewError(domain.CodeInsufficientRole, "application belongs to another applicant")
		}
		if action == ActionViewApplication || action == ActionResubmit {
			return nil
		}
		return domain.NewReviewError(domain.CodeInsufficientRole, "applicants cannot %s", action)
	}

	if action == ActionViewApplication {
		return nil
	}

	if actor.Role == domain.RoleSystemAdmin {
		return domain.NewReviewError(domain.CodeReadOnlyOversight, "system administrators have read-only access")
	}

	if !staffActions[actor.Role][action] {
		return domain.NewReviewError(domain.CodeInsufficientRole, "role %s cannot %s", actor.Role, action)
	}

	if !res.Policy.ManagedBy(actor.ID) {
		return domain.NewReviewError(domain.CodeInsufficientRole, "actor does not manage this job category")
	}

	return nil
}

// Package notify builds applicant and admin notifications and dispatches the
// coalesced document rejection notices.
package notify

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

// RejectedItem is one artifact listed in a rejection notice.
type RejectedItem struct {
	TypeID            string
	Remarks           string
	Referred          bool
	AttemptsRemaining int
}

func actionRef(format string, args ...any) *string {
	ref := fmt.Sprintf(format, args...)
	return &ref
}

// DocumentsRejected lists every document still waiting for the applicant.
// The action points at the resubmit route of the first document that can be
// uploaded again.
func DocumentsRejected(app *domain.Application, items []RejectedItem, warn bool) domain.Notification {
	var ref *string
	var b strings.Builder
	b.WriteString("The following documents need your attention:\n")
	for _, it := range items {
		switch {
		case it.Referred:
			fmt.Fprintf(&b, "- %s: referred for medical consultation, visit the clinic for onsite verification", it.TypeID)
		default:
			fmt.Fprintf(&b, "- %s: please upload a corrected file (%d attempt(s) left)", it.TypeID, it.AttemptsRemaining)
			if ref == nil {
				ref = actionRef("/api/v1/applications/%s/documents/%s/resubmit", app.ID, it.TypeID)
			}
		}
		if it.Remarks != "" {
			fmt.Fprintf(&b, ". %s", it.Remarks)
		}
		b.WriteByte('\n')
	}
	typ := domain.NotifyDocumentsRejected
	if warn {
		typ = domain.NotifyAttemptWarning
		b.WriteString("Warning: one attempt remains. A further rejection permanently rejects this application.")
	}

	return domain.Notification{
		RecipientID:   app.ApplicantID,
		ApplicationID: app.ID,
		Type:          typ,
		Title:         "Documents need revision",
		Message:       strings.TrimRight(b.String(), "\n"),
		Actionable:    true,
		ActionRef:     ref,
	}
}

// DocumentsApproved tells the applicant that document review is complete.
func DocumentsApproved(app *domain.Application) domain.Notification {
	return domain.Notification{
		RecipientID:   app.ApplicantID,
		ApplicationID: app.ID,
		Type:          domain.NotifyDocumentsApproved,
		Title:         "Documents verified",
		Message:       fmt.Sprintf("All documents were verified. Your application is now %s.", app.Status),
		Actionable:    true,
	}
}

// PermanentRejection is the terminal notice to the applicant. It offers no
// further action on this application.
func PermanentRejection(app *domain.Application, rec *domain.PermanentRejectionRecord) domain.Notification {
	return domain.Notification{
		RecipientID:   app.ApplicantID,
		ApplicationID: app.ID,
		Type:          domain.NotifyPermanentRejection,
		Title:         "Application rejected",
		Message: fmt.Sprintf("Your application was rejected: %s reached the attempt limit (%d document rejections in total). "+
			"A new application is required.", rec.TriggerArtifactTypeID, rec.TotalDocumentAttempts),
		Actionable: false,
	}
}

// PermanentRejectionForAdmins informs every admin of the job category.
func PermanentRejectionForAdmins(app *domain.Application, rec *domain.PermanentRejectionRecord, adminIDs []uuid.UUID) []domain.Notification {
	out := make([]domain.Notification, 0, len(adminIDs))
	for _, id := range adminIDs {
		out = append(out, domain.Notification{
			RecipientID:   id,
			ApplicationID: app.ID,
			Type:          domain.NotifyPermanentRejection,
			Title:         "Application permanently rejected",
			Message: fmt.Sprintf("Application %s reached the attempt limit on %s (%s).",
				app.ID, rec.TriggerArtifactTypeID, rec.TriggerCategory),
			Actionable: false,
		})
	}
	return out
}

// ReferralCleared tells the applicant a referred document was verified onsite.
func ReferralCleared(app *domain.Application, typeID string) domain.Notification {
	return domain.Notification{
		RecipientID:   app.ApplicantID,
		ApplicationID: app.ID,
		Type:          domain.NotifyReferralCleared,
		Title:         "Referral cleared",
		Message:       fmt.Sprintf("Your %s was verified after onsite consultation.", typeID),
		Actionable:    false,
	}
}

// PaymentRejected asks the applicant to upload a new receipt.
func PaymentRejected(app *domain.Application, reason string, attemptsRemaining int) domain.Notification {
	return domain.Notification{
		RecipientID:   app.ApplicantID,
		ApplicationID: app.ID,
		Type:          domain.NotifyPaymentRejected,
		Title:         "Payment rejected",
		Message:       fmt.Sprintf("Your payment was rejected: %s. Please upload a new receipt (%d attempt(s) left).", reason, attemptsRemaining),
		Actionable:    true,
		ActionRef:     actionRef("/api/v1/applications/%s/payment/resubmit", app.ID),
	}
}

// PaymentApproved confirms the payment.
func PaymentApproved(app *domain.Application) domain.Notification {
	return domain.Notification{
		RecipientID:   app.ApplicantID,
		ApplicationID: app.ID,
		Type:          domain.NotifyPaymentApproved,
		Title:         "Payment confirmed",
		Message:       fmt.Sprintf("Your payment was confirmed. Your application is now %s.", app.Status),
		Actionable:    false,
	}
}

// AdministrativeReview notifies the applicant and every category admin that
// the application is locked until an administrator resolves it.
func AdministrativeReview(app *domain.Application, adminIDs []uuid.UUID) []domain.Notification {
	out := []domain.Notification{{
		RecipientID:   app.ApplicantID,
		ApplicationID: app.ID,
		Type:          domain.NotifyAdministrativeReview,
		Title:         "Payment under administrative review",
		Message:       "Your payment could not be validated after the maximum number of attempts. An administrator will contact you.",
		Actionable:    false,
	}}
	for _, id := range adminIDs {
		out = append(out, domain.Notification{
			RecipientID:   id,
			ApplicationID: app.ID,
			Type:          domain.NotifyAdministrativeReview,
			Title:         "Application locked for review",
			Message:       fmt.Sprintf("Application %s exhausted its payment attempts and needs a manual unlock.", app.ID),
			Actionable:    true,
		})
	}
	return out
}

// OrientationScheduled confirms a booked session.
func OrientationScheduled(app *domain.Application, rec *domain.OrientationRecord) domain.Notification {
	return domain.Notification{
		RecipientID:   app.ApplicantID,
		ApplicationID: app.ID,
		Type:          domain.NotifyOrientationScheduled,
		Title:         "Orientation scheduled",
		Message: fmt.Sprintf("Your orientation is on %s (%s) at %s.",
			rec.SessionDate.Format("2006-01-02"), rec.SessionSlot, rec.Venue),
		Actionable: false,
	}
}

// OrientationMissed prompts the applicant to book another session.
func OrientationMissed(app *domain.Application, rec *domain.OrientationRecord) domain.Notification {
	return domain.Notification{
		RecipientID:   app.ApplicantID,
		ApplicationID: app.ID,
		Type:          domain.NotifyOrientationMissed,
		Title:         "Orientation missed",
		Message: fmt.Sprintf("You did not complete the orientation on %s (%s). Please book a new session.",
			rec.SessionDate.Format("2006-01-02"), rec.SessionSlot),
		Actionable: true,
		ActionRef:  actionRef("/api/v1/applications/%s/orientation", app.ID),
	}
}

// ApplicationDecided carries the final decision.
func ApplicationDecided(app *domain.Application, decision domain.Decision, remarks string) domain.Notification {
	msg := fmt.Sprintf("Your application was %s.", strings.ToLower(string(decision)))
	if remarks != "" {
		msg += " " + remarks
	}
	return domain.Notification{
		RecipientID:   app.ApplicantID,
		ApplicationID: app.ID,
		Type:          domain.NotifyApplicationDecided,
		Title:         "Application " + strings.ToLower(string(decision)),
		Message:       msg,
		Actionable:    false,
	}
}

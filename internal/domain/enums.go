package domain

// ApplicationType distinguishes first-time applications from renewals.
type ApplicationType string

const (
	ApplicationTypeNew   ApplicationType = "New"
	ApplicationTypeRenew ApplicationType = "Renew"
)

func (t ApplicationType) String() string { return string(t) }

func (t ApplicationType) IsValid() bool {
	switch t {
	case ApplicationTypeNew, ApplicationTypeRenew:
		return true
	}
	return false
}

// ApplicationStatus is the aggregate status of a health-card application.
type ApplicationStatus string

const (
	StatusSubmitted                 ApplicationStatus = "Submitted"
	StatusUnderReview               ApplicationStatus = "Under Review"
	StatusForDocumentVerification   ApplicationStatus = "For Document Verification"
	StatusDocumentsNeedRevision     ApplicationStatus = "Documents Need Revision"
	StatusScheduled                 ApplicationStatus = "Scheduled"
	StatusForOrientation            ApplicationStatus = "For Orientation"
	StatusPaymentValidation         ApplicationStatus = "Payment Validation"
	StatusPaymentRejected           ApplicationStatus = "Payment Rejected"
	StatusUnderAdministrativeReview ApplicationStatus = "Under Administrative Review"
	StatusApproved                  ApplicationStatus = "Approved"
	StatusRejected                  ApplicationStatus = "Rejected"
)

func (s ApplicationStatus) String() string { return string(s) }

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusForDocumentVerification,
		StatusDocumentsNeedRevision, StatusScheduled, StatusForOrientation,
		StatusPaymentValidation, StatusPaymentRejected, StatusUnderAdministrativeReview,
		StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsClosed reports whether the application reached a final decision.
func (s ApplicationStatus) IsClosed() bool {
	return s == StatusApproved || s == StatusRejected
}

// IsLocked reports whether the application waits for a manual unlock.
func (s ApplicationStatus) IsLocked() bool {
	return s == StatusUnderAdministrativeReview
}

// IsSticky reports whether derivation must leave the status untouched.
func (s ApplicationStatus) IsSticky() bool {
	return s.IsClosed() || s.IsLocked()
}

// IsPaymentStage reports whether the status belongs to the payment family.
func (s ApplicationStatus) IsPaymentStage() bool {
	return s == StatusPaymentValidation || s == StatusPaymentRejected
}

// ArtifactKind identifies the ledger an artifact's reviews are recorded in.
type ArtifactKind string

const (
	ArtifactKindDocument ArtifactKind = "document"
	ArtifactKindPayment  ArtifactKind = "payment"
)

func (k ArtifactKind) String() string { return string(k) }

func (k ArtifactKind) IsValid() bool {
	switch k {
	case ArtifactKindDocument, ArtifactKindPayment:
		return true
	}
	return false
}

// PaymentTypeID is the artifact type id shared by every payment artifact.
const PaymentTypeID = "payment"

// ReviewStatus is the per-artifact review state of a document or payment.
type ReviewStatus string

const (
	ReviewPending       ReviewStatus = "Pending"
	ReviewVerified      ReviewStatus = "Verified"
	ReviewNeedsRevision ReviewStatus = "NeedsRevision"
	ReviewReferred      ReviewStatus = "Referred"
	ReviewRejected      ReviewStatus = "Rejected"
	ReviewComplete      ReviewStatus = "Complete"
	ReviewFailed        ReviewStatus = "Failed"
)

func (s ReviewStatus) String() string { return string(s) }

func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewPending, ReviewVerified, ReviewNeedsRevision, ReviewReferred,
		ReviewRejected, ReviewComplete, ReviewFailed:
		return true
	}
	return false
}

// IsRejected reports whether the status is an outstanding or terminal rejection.
func (s ReviewStatus) IsRejected() bool {
	switch s {
	case ReviewNeedsRevision, ReviewReferred, ReviewRejected, ReviewFailed:
		return true
	}
	return false
}

// IsAccepted reports whether the artifact passed review.
func (s ReviewStatus) IsAccepted() bool {
	return s == ReviewVerified || s == ReviewComplete
}

// IssueType separates resubmittable document issues from medical referrals.
type IssueType string

const (
	IssueDocument        IssueType = "document_issue"
	IssueMedicalReferral IssueType = "medical_referral"
	IssuePayment         IssueType = "payment_issue"
)

func (t IssueType) String() string { return string(t) }

func (t IssueType) IsValid() bool {
	switch t {
	case IssueDocument, IssueMedicalReferral, IssuePayment:
		return true
	}
	return false
}

// Resubmittable reports whether the applicant may upload a replacement.
func (t IssueType) Resubmittable() bool {
	return t != IssueMedicalReferral
}

// LedgerStatus is the lifecycle state of a single ledger entry.
type LedgerStatus string

const (
	LedgerPending     LedgerStatus = "pending"
	LedgerResubmitted LedgerStatus = "resubmitted"
	LedgerApproved    LedgerStatus = "approved"
	LedgerRejected    LedgerStatus = "rejected"
	LedgerCleared     LedgerStatus = "cleared"
)

func (s LedgerStatus) String() string { return string(s) }

func (s LedgerStatus) IsValid() bool {
	switch s {
	case LedgerPending, LedgerResubmitted, LedgerApproved, LedgerRejected, LedgerCleared:
		return true
	}
	return false
}

// IsTerminal reports whether the entry can no longer change.
func (s LedgerStatus) IsTerminal() bool {
	return s == LedgerApproved || s == LedgerRejected || s == LedgerCleared
}

// OrientationStatus is the attendance state of an orientation booking.
type OrientationStatus string

const (
	OrientationScheduled OrientationStatus = "Scheduled"
	OrientationCheckedIn OrientationStatus = "CheckedIn"
	OrientationCompleted OrientationStatus = "Completed"
	OrientationMissed    OrientationStatus = "Missed"
)

func (s OrientationStatus) String() string { return string(s) }

func (s OrientationStatus) IsValid() bool {
	switch s {
	case OrientationScheduled, OrientationCheckedIn, OrientationCompleted, OrientationMissed:
		return true
	}
	return false
}

// IsActive reports whether the booking still holds a seat.
func (s OrientationStatus) IsActive() bool {
	return s == OrientationScheduled || s == OrientationCheckedIn
}

// Decision is the outcome of a batch or final review.
type Decision string

const (
	DecisionApproved Decision = "Approved"
	DecisionRejected Decision = "Rejected"
)

func (d Decision) String() string { return string(d) }

func (d Decision) IsValid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// UnlockResolution selects what an administrator does with a locked application.
type UnlockResolution string

const (
	UnlockApprovePayment UnlockResolution = "approve_payment"
	UnlockResetAttempts  UnlockResolution = "reset_attempts"
)

func (r UnlockResolution) String() string { return string(r) }

func (r UnlockResolution) IsValid() bool {
	return r == UnlockApprovePayment || r == UnlockResetAttempts
}

// Role is the authorization level of an actor.
type Role string

const (
	RoleApplicant   Role = "applicant"
	RoleAdmin       Role = "admin"
	RoleInspector   Role = "inspector"
	RoleSystemAdmin Role = "system_admin"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleApplicant, RoleAdmin, RoleInspector, RoleSystemAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role belongs to category or system staff.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleInspector || r == RoleSystemAdmin
}

// NotificationType classifies applicant and admin notifications.
type NotificationType string

const (
	NotifyDocumentsRejected    NotificationType = "documents_rejected"
	NotifyDocumentsApproved    NotificationType = "documents_approved"
	NotifyAttemptWarning       NotificationType = "attempt_warning"
	NotifyPermanentRejection   NotificationType = "permanent_rejection"
	NotifyReferralCleared      NotificationType = "referral_cleared"
	NotifyPaymentRejected      NotificationType = "payment_rejected"
	NotifyPaymentApproved      NotificationType = "payment_approved"
	NotifyAdministrativeReview NotificationType = "administrative_review"
	NotifyOrientationScheduled NotificationType = "orientation_scheduled"
	NotifyOrientationMissed    NotificationType = "orientation_missed"
	NotifyApplicationDecided   NotificationType = "application_decided"
)

func (t NotificationType) String() string { return string(t) }

// ActivityAction names an entry in the activity log.
type ActivityAction string

const (
	ActivityDocumentVerified      ActivityAction = "document_verified"
	ActivityDocumentRejected      ActivityAction = "document_rejected"
	ActivityDocumentReferred      ActivityAction = "document_referred"
	ActivityDocumentResubmitted   ActivityAction = "document_resubmitted"
	ActivityReferralCleared       ActivityAction = "referral_cleared"
	ActivityBatchCompleted        ActivityAction = "document_batch_completed"
	ActivityVerificationReset     ActivityAction = "verification_reset"
	ActivityPermanentRejection    ActivityAction = "permanent_rejection"
	ActivityPaymentApproved       ActivityAction = "payment_approved"
	ActivityPaymentRejected       ActivityAction = "payment_rejected"
	ActivityPaymentResubmitted    ActivityAction = "payment_resubmitted"
	ActivityApplicationLocked     ActivityAction = "application_locked"
	ActivityApplicationUnlocked   ActivityAction = "application_unlocked"
	ActivityOrientationScheduled  ActivityAction = "orientation_scheduled"
	ActivityOrientationCheckIn    ActivityAction = "orientation_check_in"
	ActivityOrientationCheckOut   ActivityAction = "orientation_check_out"
	ActivityOrientationSessionEnd ActivityAction = "orientation_session_finalized"
	ActivityApplicationDecided    ActivityAction = "application_decided"
)

func (a ActivityAction) String() string { return string(a) }

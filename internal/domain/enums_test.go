package domain

import "testing"

func TestApplicationStatus_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status ApplicationStatus
		want   bool
	}{
		{StatusSubmitted, true},
		{StatusDocumentsNeedRevision, true},
		{StatusUnderAdministrativeReview, true},
		{StatusRejected, true},
		{ApplicationStatus("Pending Payment"), false},
		{ApplicationStatus(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			if got := tt.status.IsValid(); got != tt.want {
				t.Errorf("ApplicationStatus(%q).IsValid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestApplicationStatus_IsSticky(t *testing.T) {
	t.Parallel()

	sticky := map[ApplicationStatus]bool{
		StatusApproved:                  true,
		StatusRejected:                  true,
		StatusUnderAdministrativeReview: true,
		StatusUnderReview:               false,
		StatusPaymentRejected:           false,
		StatusForOrientation:            false,
	}
	for status, want := range sticky {
		if got := status.IsSticky(); got != want {
			t.Errorf("%q.IsSticky() = %v, want %v", status, got, want)
		}
	}
}

func TestReviewStatus_IsRejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status ReviewStatus
		want   bool
	}{
		{ReviewPending, false},
		{ReviewVerified, false},
		{ReviewComplete, false},
		{ReviewNeedsRevision, true},
		{ReviewReferred, true},
		{ReviewRejected, true},
		{ReviewFailed, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			if got := tt.status.IsRejected(); got != tt.want {
				t.Errorf("ReviewStatus(%q).IsRejected() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestIssueType_Resubmittable(t *testing.T) {
	t.Parallel()

	if IssueMedicalReferral.Resubmittable() {
		t.Error("medical referrals must not be resubmittable")
	}
	if !IssueDocument.Resubmittable() || !IssuePayment.Resubmittable() {
		t.Error("document and payment issues must be resubmittable")
	}
}

func TestCategory_BelongsTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		category Category
		issue    IssueType
		want     bool
	}{
		{CategoryAbnormalXray, IssueMedicalReferral, true},
		{CategoryAbnormalXray, IssueDocument, false},
		{CategoryQualityIssue, IssueDocument, true},
		{CategoryQualityIssue, IssuePayment, false},
		{CategoryAmountMismatch, IssuePayment, true},
		{Category("blurry"), IssueDocument, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.category)+"/"+string(tt.issue), func(t *testing.T) {
			t.Parallel()
			if got := tt.category.BelongsTo(tt.issue); got != tt.want {
				t.Errorf("%q.BelongsTo(%q) = %v, want %v", tt.category, tt.issue, got, tt.want)
			}
		})
	}
}

func TestOrientationStatus_IsActive(t *testing.T) {
	t.Parallel()

	if !OrientationScheduled.IsActive() || !OrientationCheckedIn.IsActive() {
		t.Error("scheduled and checked-in bookings are active")
	}
	if OrientationMissed.IsActive() || OrientationCompleted.IsActive() {
		t.Error("missed and completed bookings are not active")
	}
}

func TestRole_IsValid(t *testing.T) {
	t.Parallel()

	for _, r := range []Role{RoleApplicant, RoleAdmin, RoleInspector, RoleSystemAdmin} {
		if !r.IsValid() {
			t.Errorf("Role(%q).IsValid() = false", r)
		}
	}
	if Role("user").IsValid() {
		t.Error(`Role("user").IsValid() = true`)
	}
}

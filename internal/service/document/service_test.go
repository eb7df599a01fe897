package document

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/healthcard-backend/internal/adapter/memory"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/service/aggregate"
	"github.com/heartmarshall/healthcard-backend/internal/service/finalize"
	"github.com/heartmarshall/healthcard-backend/internal/service/ledger"
	"github.com/heartmarshall/healthcard-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type blobStoreMock struct {
	StatFunc func(ctx context.Context, ref string) (domain.FileMeta, error)
	calls    atomic.Int32
}

func (m *blobStoreMock) Stat(ctx context.Context, ref string) (domain.FileMeta, error) {
	m.calls.Add(1)
	if m.StatFunc != nil {
		return m.StatFunc(ctx, ref)
	}
	return domain.FileMeta{Ref: ref, Size: 2048, ContentType: "application/pdf"}, nil
}

type recorderMock struct {
	ops map[string]int
}

func (m *recorderMock) Observe(operation string, _ error) {
	if m.ops == nil {
		m.ops = map[string]int{}
	}
	m.ops[operation]++
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type fixture struct {
	store     *memory.Store
	apps      *memory.ApplicationRepo
	documents *memory.ArtifactRepo
	queue     *memory.BatchQueue
	blobs     *blobStoreMock
	recorder  *recorderMock
	svc       *Service

	policy    domain.CategoryPolicy
	admin     domain.Actor
	applicant domain.Actor
	app       *domain.Application
	xray      *domain.Artifact
	stool     *domain.Artifact
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	log := slog.New(slog.NewTextHandler(nil, &slog.HandlerOptions{Level: slog.LevelError + 1}))

	apps := memory.NewApplicationRepo(store)
	documents := memory.NewArtifactRepo(store, domain.ArtifactKindDocument)
	payments := memory.NewArtifactRepo(store, domain.ArtifactKindPayment)
	orientation := memory.NewOrientationRepo(store)
	categories := memory.NewCategoryRepo(store)
	rejections := memory.NewRejectionRepo(store)
	notifications := memory.NewNotificationRepo(store)
	activity := memory.NewActivityRepo(store)

	led := ledger.NewService(log, memory.NewLedgerRepo(store), memory.NewLegacyLedgerRepo(store))
	agg := aggregate.NewService(log, apps, documents, payments, orientation, categories, 72*time.Hour)
	fin := finalize.NewService(log, rejections, led, documents, agg, categories, notifications, activity)

	f := &fixture{
		store:     store,
		apps:      apps,
		documents: documents,
		queue:     memory.NewBatchQueue(),
		blobs:     &blobStoreMock{},
		recorder:  &recorderMock{},
		admin:     domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin},
		applicant: domain.Actor{ID: uuid.New(), Role: domain.RoleApplicant},
	}
	f.policy = domain.CategoryPolicy{JobCategoryID: uuid.New(), Name: "Food handler", AdminIDs: []uuid.UUID{f.admin.ID}}
	store.PutCategory(f.policy)

	f.svc = NewService(log, Deps{
		Applications:  apps,
		Documents:     documents,
		Ledger:        led,
		Aggregator:    agg,
		Finalizer:     fin,
		Categories:    categories,
		Rejections:    rejections,
		Blobs:         f.blobs,
		Batcher:       f.queue,
		Notifications: notifications,
		Activity:      activity,
		Recorder:      f.recorder,
		Tx:            memory.NewTxManager(store),
	}, Limits{MaxAttempts: 3, WarningThreshold: 2, BatchWindow: 2 * time.Minute})

	ctx := context.Background()
	app, err := apps.Create(ctx, domain.Application{
		ID:            uuid.New(),
		ApplicantID:   f.applicant.ID,
		JobCategoryID: f.policy.JobCategoryID,
		Type:          domain.ApplicationTypeNew,
		Status:        domain.StatusForDocumentVerification,
	})
	require.NoError(t, err)
	f.app = app

	f.xray = f.document(t, "xray")
	f.stool = f.document(t, "stool")
	return f
}

func (f *fixture) document(t *testing.T, typeID string) *domain.Artifact {
	t.Helper()
	doc, err := f.documents.Create(context.Background(), domain.Artifact{
		ID:            uuid.New(),
		ApplicationID: f.app.ID,
		TypeID:        typeID,
		FileRef:       f.app.ID.String() + "/" + typeID + ".pdf",
	})
	require.NoError(t, err)
	return doc
}

func (f *fixture) as(actor domain.Actor) context.Context {
	return ctxutil.WithActor(context.Background(), actor)
}

func (f *fixture) status(t *testing.T) domain.ApplicationStatus {
	t.Helper()
	app, err := f.apps.GetByID(context.Background(), f.app.ID)
	require.NoError(t, err)
	return app.Status
}

func (f *fixture) docStatus(t *testing.T, id uuid.UUID) domain.ReviewStatus {
	t.Helper()
	doc, err := f.documents.GetByID(context.Background(), id)
	require.NoError(t, err)
	return doc.Status
}

func rejectInput(id uuid.UUID) RejectInput {
	return RejectInput{
		ArtifactID:     id,
		Category:       domain.CategoryQualityIssue,
		Reason:         "scan is unreadable",
		SpecificIssues: []string{"blurry"},
	}
}

func referInput(id uuid.UUID) ReferInput {
	return ReferInput{
		ArtifactID:    id,
		IssueType:     domain.IssueMedicalReferral,
		Category:      domain.CategoryAbnormalXray,
		Reason:        "shadow on left lung",
		DoctorName:    ptr("Dr. Reyes"),
		ClinicAddress: ptr("City Health Office, Room 3"),
	}
}

func ptr[T any](v T) *T { return &v }

// ---------------------------------------------------------------------------
// Scenarios
// ---------------------------------------------------------------------------

func TestService_ThreeRejectionsPermanentlyReject(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin, applicant := f.as(f.admin), f.as(f.applicant)

	resubmit := ResubmitInput{ApplicationID: f.app.ID, ArtifactTypeID: "xray", FileRef: "uploads/xray-new.pdf"}

	out, err := f.svc.Reject(admin, rejectInput(f.xray.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, out.AttemptNumber)
	assert.Equal(t, 2, out.AttemptsRemaining)
	assert.False(t, out.Warning)
	assert.Equal(t, domain.StatusDocumentsNeedRevision, out.ApplicationStatus)
	assert.Equal(t, domain.ReviewNeedsRevision, out.Artifact.Status)

	out, err = f.svc.Resubmit(applicant, resubmit)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewPending, out.Artifact.Status)
	assert.Equal(t, "uploads/xray-new.pdf", out.Artifact.FileRef)
	assert.Equal(t, domain.StatusForDocumentVerification, out.ApplicationStatus)

	out, err = f.svc.Reject(admin, rejectInput(f.xray.ID))
	require.NoError(t, err)
	assert.Equal(t, 2, out.AttemptNumber)
	assert.True(t, out.Warning)
	assert.Equal(t, 1, out.AttemptsRemaining)

	_, err = f.svc.Resubmit(applicant, resubmit)
	require.NoError(t, err)

	out, err = f.svc.Reject(admin, rejectInput(f.xray.ID))
	require.NoError(t, err)
	assert.Equal(t, 3, out.AttemptNumber)
	assert.True(t, out.PermanentlyRejected)
	require.NotNil(t, out.Rejection)
	assert.Equal(t, 3, out.Rejection.TotalDocumentAttempts)
	assert.Equal(t, domain.StatusRejected, out.ApplicationStatus)
	assert.Equal(t, domain.StatusRejected, f.status(t))
	assert.Equal(t, domain.ReviewRejected, f.docStatus(t, f.xray.ID))

	statCalls := f.blobs.calls.Load()
	_, err = f.svc.Resubmit(applicant, resubmit)
	assert.ErrorIs(t, err, domain.ErrMaxAttemptsExceeded)
	assert.Equal(t, statCalls, f.blobs.calls.Load(), "policy failures must not reach storage")

	entries := f.store.LedgerEntries(f.app.ID)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, i+1, e.AttemptNumber)
	}
	assert.Len(t, f.store.LegacyEntries(f.app.ID), 3)
	assert.Equal(t, 1, f.queue.Len(), "earlier rejections stay queued for one notice")
}

func TestService_ReferralIsNotResubmittable(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin, applicant := f.as(f.admin), f.as(f.applicant)

	out, err := f.svc.Refer(admin, referInput(f.xray.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewReferred, out.Artifact.Status)
	assert.Equal(t, domain.IssueMedicalReferral, out.Entry.IssueType)

	_, err = f.svc.Resubmit(applicant, ResubmitInput{ApplicationID: f.app.ID, ArtifactTypeID: "xray", FileRef: "uploads/x.pdf"})
	assert.ErrorIs(t, err, domain.ErrNotResubmittable)

	cleared, err := f.svc.ApproveAfterOnsiteVerification(admin, OnsiteInput{ArtifactID: f.xray.ID, Notes: ptr("cleared by pulmonologist")})
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewVerified, cleared.Artifact.Status)

	entries := f.store.LedgerEntries(f.app.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.LedgerCleared, entries[0].Status)
	assert.Equal(t, domain.LedgerCleared, f.store.LegacyEntries(f.app.ID)[0].Status)

	_, err = f.svc.ApproveAfterOnsiteVerification(admin, OnsiteInput{ArtifactID: f.xray.ID})
	assert.ErrorIs(t, err, domain.ErrNoOutstandingReferral)

	notes := f.store.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotifyReferralCleared, notes[0].Type)
}

func TestService_OnsiteRequiresReferral(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin := f.as(f.admin)

	_, err := f.svc.Reject(admin, rejectInput(f.xray.ID))
	require.NoError(t, err)

	_, err = f.svc.ApproveAfterOnsiteVerification(admin, OnsiteInput{ArtifactID: f.xray.ID})
	assert.ErrorIs(t, err, domain.ErrNoOutstandingReferral)
}

func TestService_InspectorCannotClearReferral(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.Refer(f.as(f.admin), referInput(f.xray.ID))
	require.NoError(t, err)

	inspector := domain.Actor{ID: f.admin.ID, Role: domain.RoleInspector}
	_, err = f.svc.ApproveAfterOnsiteVerification(f.as(inspector), OnsiteInput{ArtifactID: f.xray.ID})
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)
}

func TestService_Reject_AlreadyRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin := f.as(f.admin)

	_, err := f.svc.Reject(admin, rejectInput(f.xray.ID))
	require.NoError(t, err)

	_, err = f.svc.Reject(admin, rejectInput(f.xray.ID))
	assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)
	assert.Len(t, f.store.LedgerEntries(f.app.ID), 1)
}

func TestService_Reject_Authorization(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name string
		ctx  context.Context
		want error
	}{
		{"anonymous", context.Background(), domain.ErrNotAuthenticated},
		{"applicant", f.as(f.applicant), domain.ErrInsufficientRole},
		{"system admin", f.as(domain.Actor{ID: uuid.New(), Role: domain.RoleSystemAdmin}), domain.ErrReadOnlyOversight},
		{"admin of another category", f.as(domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}), domain.ErrInsufficientRole},
	}
	for _, tt := range tests {
		_, err := f.svc.Reject(tt.ctx, rejectInput(f.xray.ID))
		assert.ErrorIs(t, err, tt.want, tt.name)
	}

	assert.Empty(t, f.store.LedgerEntries(f.app.ID))
	assert.Empty(t, f.store.Activity())
	assert.Equal(t, domain.ReviewPending, f.docStatus(t, f.xray.ID))
}

func TestService_Reject_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin := f.as(f.admin)

	in := referInput(f.xray.ID)
	in.DoctorName = nil
	_, err := f.svc.Refer(admin, in)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("doctor_name"))
	assert.False(t, ve.Has("clinic_address"))

	bad := rejectInput(f.xray.ID)
	bad.Category = domain.CategoryAbnormalXray
	_, err = f.svc.Reject(admin, bad)
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("category"))

	_, err = f.svc.Reject(admin, rejectInput(uuid.New()))
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestService_Resubmit_StorageUnavailableLeavesNoState(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.Reject(f.as(f.admin), rejectInput(f.xray.ID))
	require.NoError(t, err)
	before := f.status(t)
	activity := len(f.store.Activity())

	f.blobs.StatFunc = func(context.Context, string) (domain.FileMeta, error) {
		return domain.FileMeta{}, domain.NewReviewError(domain.CodeStorageUnavailable, "timeout")
	}

	_, err = f.svc.Resubmit(f.as(f.applicant), ResubmitInput{ApplicationID: f.app.ID, ArtifactTypeID: "xray", FileRef: "uploads/x.pdf"})
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)

	assert.Equal(t, before, f.status(t))
	assert.Equal(t, domain.ReviewNeedsRevision, f.docStatus(t, f.xray.ID))
	entries := f.store.LedgerEntries(f.app.ID)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].WasReplaced)
	assert.Len(t, f.store.Activity(), activity)
}

func TestService_Resubmit_Preconditions(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	applicant := f.as(f.applicant)

	_, err := f.svc.Resubmit(applicant, ResubmitInput{ApplicationID: f.app.ID, ArtifactTypeID: "xray", FileRef: "uploads/x.pdf"})
	assert.ErrorIs(t, err, domain.ErrNothingToResubmit)

	stranger := domain.Actor{ID: uuid.New(), Role: domain.RoleApplicant}
	_, err = f.svc.Resubmit(f.as(stranger), ResubmitInput{ApplicationID: f.app.ID, ArtifactTypeID: "xray", FileRef: "uploads/x.pdf"})
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	_, err = f.svc.Reject(f.as(f.admin), rejectInput(f.xray.ID))
	require.NoError(t, err)

	f.blobs.StatFunc = func(context.Context, string) (domain.FileMeta, error) {
		return domain.FileMeta{}, domain.NewReviewError(domain.CodeFileNotFound, "missing")
	}
	_, err = f.svc.Resubmit(applicant, ResubmitInput{ApplicationID: f.app.ID, ArtifactTypeID: "xray", FileRef: "uploads/x.pdf"})
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestService_Resubmit_ConcurrentSecondGetsAlreadyReplaced(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.Reject(f.as(f.admin), rejectInput(f.xray.ID))
	require.NoError(t, err)

	// Both calls pass the unlocked checks before either takes the row lock.
	var barrier sync.WaitGroup
	barrier.Add(2)
	f.blobs.StatFunc = func(_ context.Context, ref string) (domain.FileMeta, error) {
		barrier.Done()
		barrier.Wait()
		return domain.FileMeta{Ref: ref, Size: 2048, ContentType: "application/pdf"}, nil
	}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.Resubmit(f.as(f.applicant), ResubmitInput{
				ApplicationID:  f.app.ID,
				ArtifactTypeID: "xray",
				FileRef:        "uploads/xray-new.pdf",
			})
		}()
	}
	wg.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0], domain.ErrAlreadyReplaced)
	assert.NotErrorIs(t, failed[0], domain.ErrNothingToResubmit)

	entries := f.store.LedgerEntries(f.app.ID)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].WasReplaced)
}

func TestService_Verify(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin := f.as(f.admin)

	out, err := f.svc.Verify(admin, VerifyInput{ArtifactID: f.xray.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewVerified, out.Artifact.Status)
	assert.Equal(t, domain.StatusForDocumentVerification, out.ApplicationStatus)

	_, err = f.svc.Verify(admin, VerifyInput{ArtifactID: f.xray.ID})
	assert.ErrorIs(t, err, domain.ErrNotPending)

	out, err = f.svc.Verify(admin, VerifyInput{ArtifactID: f.stool.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaymentValidation, out.ApplicationStatus)

	app, err := f.apps.GetByID(context.Background(), f.app.ID)
	require.NoError(t, err)
	require.NotNil(t, app.PaymentDeadline)
	assert.WithinDuration(t, time.Now().Add(72*time.Hour), *app.PaymentDeadline, time.Minute)
	assert.Equal(t, 3, f.recorder.ops["document.verify"])
}

func TestService_ReviewBatchComplete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin := f.as(f.admin)
	ctx := context.Background()

	_, err := f.svc.ReviewBatchComplete(admin, BatchInput{ApplicationID: f.app.ID, Decision: domain.DecisionRejected})
	assert.ErrorIs(t, err, domain.ErrPendingArtifacts)

	_, err = f.svc.Verify(admin, VerifyInput{ArtifactID: f.stool.ID})
	require.NoError(t, err)
	_, err = f.svc.Reject(admin, rejectInput(f.xray.ID))
	require.NoError(t, err)

	_, err = f.svc.ReviewBatchComplete(admin, BatchInput{ApplicationID: f.app.ID, Decision: domain.DecisionApproved})
	assert.ErrorIs(t, err, domain.ErrUnresolvedArtifacts)

	out, err := f.svc.ReviewBatchComplete(admin, BatchInput{ApplicationID: f.app.ID, Decision: domain.DecisionRejected})
	require.NoError(t, err)
	assert.Equal(t, 1, out.RejectedArtifacts)
	assert.True(t, out.NotificationQueued)
	assert.Equal(t, domain.StatusDocumentsNeedRevision, out.ApplicationStatus)

	due, err := f.queue.Due(ctx, time.Now().UTC().Add(time.Second), 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.app.ID}, due, "batch completion makes the notice due now")
}

func TestService_ReviewBatchComplete_Approved(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin := f.as(f.admin)

	_, err := f.svc.ReviewBatchComplete(admin, BatchInput{ApplicationID: f.app.ID, Decision: domain.DecisionRejected})
	assert.ErrorIs(t, err, domain.ErrPendingArtifacts)

	for _, id := range []uuid.UUID{f.xray.ID, f.stool.ID} {
		_, err := f.svc.Verify(admin, VerifyInput{ArtifactID: id})
		require.NoError(t, err)
	}

	_, err = f.svc.ReviewBatchComplete(admin, BatchInput{ApplicationID: f.app.ID, Decision: domain.DecisionRejected})
	assert.ErrorIs(t, err, domain.ErrNothingRejected)

	out, err := f.svc.ReviewBatchComplete(admin, BatchInput{ApplicationID: f.app.ID, Decision: domain.DecisionApproved})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaymentValidation, out.ApplicationStatus)
	assert.False(t, out.NotificationQueued)

	notes := f.store.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotifyDocumentsApproved, notes[0].Type)
}

func TestService_ResetVerification(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin := f.as(f.admin)

	_, err := f.svc.Verify(admin, VerifyInput{ArtifactID: f.stool.ID})
	require.NoError(t, err)
	_, err = f.svc.Reject(admin, rejectInput(f.xray.ID))
	require.NoError(t, err)

	out, err := f.svc.ResetVerification(admin, f.app.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, out.EntriesDeleted)
	assert.Equal(t, 2, out.ArtifactsReset)
	assert.Equal(t, domain.StatusForDocumentVerification, out.ApplicationStatus)

	assert.Empty(t, f.store.LedgerEntries(f.app.ID))
	assert.Empty(t, f.store.LegacyEntries(f.app.ID))
	assert.Equal(t, domain.ReviewPending, f.docStatus(t, f.xray.ID))
	assert.Equal(t, domain.ReviewPending, f.docStatus(t, f.stool.ID))

	out2, err := f.svc.Reject(admin, rejectInput(f.xray.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, out2.AttemptNumber, "attempts restart after a reset")

	inspector := domain.Actor{ID: f.admin.ID, Role: domain.RoleInspector}
	_, err = f.svc.ResetVerification(f.as(inspector), f.app.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)
}

func TestService_ResetVerification_RefusedAfterPermanentRejection(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin, applicant := f.as(f.admin), f.as(f.applicant)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Reject(admin, rejectInput(f.xray.ID))
		require.NoError(t, err)
		if i < 2 {
			_, err = f.svc.Resubmit(applicant, ResubmitInput{ApplicationID: f.app.ID, ArtifactTypeID: "xray", FileRef: "uploads/x.pdf"})
			require.NoError(t, err)
		}
	}

	_, err := f.svc.ResetVerification(admin, f.app.ID)
	assert.ErrorIs(t, err, domain.ErrApplicationClosed)
	assert.Len(t, f.store.LedgerEntries(f.app.ID), 3)
}

func TestService_History(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.Reject(f.as(f.admin), rejectInput(f.xray.ID))
	require.NoError(t, err)

	entries, err := f.svc.History(f.as(f.applicant), f.app.ID, "xray")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.CategoryQualityIssue, entries[0].Category)

	sysAdmin := domain.Actor{ID: uuid.New(), Role: domain.RoleSystemAdmin}
	_, err = f.svc.History(f.as(sysAdmin), f.app.ID, "xray")
	assert.NoError(t, err, "oversight may read")
}

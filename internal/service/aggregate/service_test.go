package aggregate

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/healthcard-backend/internal/adapter/memory"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

func doc(status domain.ReviewStatus) domain.Artifact {
	return domain.Artifact{ID: uuid.New(), Kind: domain.ArtifactKindDocument, Status: status}
}

func pay(status domain.ReviewStatus) *domain.Artifact {
	return &domain.Artifact{ID: uuid.New(), Kind: domain.ArtifactKindPayment, TypeID: domain.PaymentTypeID, Status: status}
}

func TestDerive(t *testing.T) {
	t.Parallel()

	verified := []domain.Artifact{doc(domain.ReviewVerified), doc(domain.ReviewVerified)}
	booked := &domain.OrientationRecord{Status: domain.OrientationScheduled}
	missed := &domain.OrientationRecord{Status: domain.OrientationMissed}

	tests := []struct {
		name string
		snap Snapshot
		want domain.ApplicationStatus
	}{
		{"no documents", Snapshot{}, domain.StatusSubmitted},
		{"pending document", Snapshot{Documents: []domain.Artifact{doc(domain.ReviewVerified), doc(domain.ReviewPending)}}, domain.StatusForDocumentVerification},
		{"needs revision wins over pending", Snapshot{Documents: []domain.Artifact{doc(domain.ReviewPending), doc(domain.ReviewNeedsRevision)}}, domain.StatusDocumentsNeedRevision},
		{"referred", Snapshot{Documents: []domain.Artifact{doc(domain.ReviewReferred)}}, domain.StatusDocumentsNeedRevision},
		{"orientation required", Snapshot{Documents: verified, Payment: pay(domain.ReviewComplete), RequiresOrientation: true}, domain.StatusForOrientation},
		{"orientation booked", Snapshot{Documents: verified, RequiresOrientation: true, Orientation: booked}, domain.StatusScheduled},
		{"orientation missed", Snapshot{Documents: verified, RequiresOrientation: true, Orientation: missed}, domain.StatusForOrientation},
		{"orientation done, no payment", Snapshot{Documents: verified, RequiresOrientation: true, OrientationCompleted: true}, domain.StatusPaymentValidation},
		{"payment pending", Snapshot{Documents: verified, Payment: pay(domain.ReviewPending)}, domain.StatusPaymentValidation},
		{"payment rejected", Snapshot{Documents: verified, Payment: pay(domain.ReviewRejected)}, domain.StatusPaymentRejected},
		{"payment failed", Snapshot{Documents: verified, Payment: pay(domain.ReviewFailed)}, domain.StatusPaymentRejected},
		{"everything done", Snapshot{Documents: verified, Payment: pay(domain.ReviewComplete)}, domain.StatusUnderReview},
		{"orientation not required ignores record", Snapshot{Documents: verified, Payment: pay(domain.ReviewComplete), Orientation: missed}, domain.StatusUnderReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Derive(tt.snap))
		})
	}
}

type fixture struct {
	svc      *Service
	store    *memory.Store
	apps     *memory.ApplicationRepo
	docs     *memory.ArtifactRepo
	payments *memory.ArtifactRepo
	orient   *memory.OrientationRepo
}

func newFixture(t *testing.T, requiresOrientation bool) (*fixture, *domain.Application) {
	t.Helper()

	store := memory.NewStore()
	f := &fixture{
		store:    store,
		apps:     memory.NewApplicationRepo(store),
		docs:     memory.NewArtifactRepo(store, domain.ArtifactKindDocument),
		payments: memory.NewArtifactRepo(store, domain.ArtifactKindPayment),
		orient:   memory.NewOrientationRepo(store),
	}
	log := slog.New(slog.NewTextHandler(nil, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	f.svc = NewService(log, f.apps, f.docs, f.payments, f.orient, memory.NewCategoryRepo(store), 72*time.Hour)

	category := uuid.New()
	store.PutCategory(domain.CategoryPolicy{JobCategoryID: category, RequiresOrientation: requiresOrientation})

	app, err := f.apps.Create(context.Background(), domain.Application{
		ID:            uuid.New(),
		ApplicantID:   uuid.New(),
		JobCategoryID: category,
		Status:        domain.StatusForDocumentVerification,
	})
	require.NoError(t, err)
	return f, app
}

func (f *fixture) addDocument(t *testing.T, appID uuid.UUID, typeID string, status domain.ReviewStatus) {
	t.Helper()
	_, err := f.docs.Create(context.Background(), domain.Artifact{ID: uuid.New(), ApplicationID: appID, TypeID: typeID, Status: status})
	require.NoError(t, err)
}

func TestService_Recompute_IdempotentAndSetsDeadline(t *testing.T) {
	t.Parallel()
	f, app := newFixture(t, false)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	f.addDocument(t, app.ID, "xray", domain.ReviewVerified)

	first, err := f.svc.Recompute(ctx, app, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaymentValidation, first.Status)
	require.NotNil(t, first.PaymentDeadline)
	assert.True(t, now.Add(72*time.Hour).Equal(*first.PaymentDeadline))

	f.svc.now = func() time.Time { return now.Add(time.Hour) }
	second, err := f.svc.Recompute(ctx, first, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.True(t, first.PaymentDeadline.Equal(*second.PaymentDeadline), "deadline is only set when entering the payment stage")
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt, "no write without a change")
}

func TestService_Recompute_OrientationGating(t *testing.T) {
	t.Parallel()
	f, app := newFixture(t, true)
	ctx := context.Background()

	f.addDocument(t, app.ID, "xray", domain.ReviewVerified)
	_, err := f.payments.Create(ctx, domain.Artifact{ID: uuid.New(), ApplicationID: app.ID, Status: domain.ReviewComplete})
	require.NoError(t, err)

	got, err := f.svc.Recompute(ctx, app, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusForOrientation, got.Status)

	done, err := f.svc.CompleteOrientation(ctx, got, uuid.New())
	require.NoError(t, err)
	assert.True(t, done.OrientationCompleted)
	assert.Equal(t, domain.StatusUnderReview, done.Status)
}

func TestService_Recompute_StickyStatusUntouched(t *testing.T) {
	t.Parallel()
	f, app := newFixture(t, false)
	ctx := context.Background()

	locked, err := f.svc.Freeze(ctx, app, domain.StatusUnderAdministrativeReview, "payment attempts exhausted", nil)
	require.NoError(t, err)
	require.NotNil(t, locked.AdminRemarks)

	f.addDocument(t, app.ID, "xray", domain.ReviewPending)
	got, err := f.svc.Recompute(ctx, locked, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnderAdministrativeReview, got.Status)

	released, err := f.svc.Release(ctx, locked, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusForDocumentVerification, released.Status)

	_, err = f.svc.Release(ctx, released, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotLocked)
}

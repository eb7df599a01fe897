package ledger

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/healthcard-backend/internal/adapter/memory"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

func newTestService(t *testing.T) (*Service, *memory.Store, *memory.LegacyLedgerRepo) {
	t.Helper()
	store := memory.NewStore()
	legacy := memory.NewLegacyLedgerRepo(store)
	log := slog.New(slog.NewTextHandler(nil, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	return NewService(log, memory.NewLedgerRepo(store), legacy), store, legacy
}

func draft(appID uuid.UUID, typeID string) Draft {
	return Draft{
		ApplicationID:  appID,
		ArtifactKind:   domain.ArtifactKindDocument,
		ArtifactTypeID: typeID,
		IssueType:      domain.IssueDocument,
		Category:       domain.CategoryQualityIssue,
		Reason:         "unreadable",
		IssuedBy:       uuid.New(),
		IssuedAt:       time.Now().UTC(),
	}
}

func TestService_Record_MonotonicAttempts(t *testing.T) {
	t.Parallel()
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	appID := uuid.New()

	for want := 1; want <= 3; want++ {
		e, err := svc.Record(ctx, draft(appID, "xray"))
		require.NoError(t, err)
		assert.Equal(t, want, e.AttemptNumber)
		require.NoError(t, svc.MarkReplaced(ctx, e, uuid.New(), time.Now().UTC()))
	}

	entries := store.LedgerEntries(appID)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, i+1, e.AttemptNumber)
	}

	legacy := store.LegacyEntries(appID)
	require.Len(t, legacy, 3)
	for i := range legacy {
		assert.Equal(t, entries[i].ID, legacy[i].ID)
		assert.True(t, legacy[i].WasReplaced)
	}
}

func TestService_Record_RejectsSecondOutstanding(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	appID := uuid.New()

	_, err := svc.Record(ctx, draft(appID, "xray"))
	require.NoError(t, err)

	_, err = svc.Record(ctx, draft(appID, "xray"))
	assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)

	_, err = svc.Record(ctx, draft(appID, "stool"))
	assert.NoError(t, err, "other artifact types are independent")
}

func TestService_Attempts_TakesMaxOfRepresentations(t *testing.T) {
	t.Parallel()
	svc, _, legacy := newTestService(t)
	ctx := context.Background()
	appID := uuid.New()

	for i := 1; i <= 2; i++ {
		legacy.Seed(domain.LedgerEntry{
			ID:             uuid.New(),
			ApplicationID:  appID,
			ArtifactKind:   domain.ArtifactKindDocument,
			ArtifactTypeID: "xray",
			AttemptNumber:  i,
			Status:         domain.LedgerResubmitted,
			WasReplaced:    true,
		})
	}

	n, err := svc.Attempts(ctx, appID, domain.ArtifactKindDocument, "xray")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	e, err := svc.Record(ctx, draft(appID, "xray"))
	require.NoError(t, err)
	assert.Equal(t, 3, e.AttemptNumber, "legacy history must not be undercounted")

	docs, payments, err := svc.Totals(ctx, appID)
	require.NoError(t, err)
	assert.Equal(t, 3, docs)
	assert.Zero(t, payments)
}

func TestService_PaymentsSkipLegacyReplica(t *testing.T) {
	t.Parallel()
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	appID := uuid.New()

	d := draft(appID, domain.PaymentTypeID)
	d.ArtifactKind = domain.ArtifactKindPayment
	d.IssueType = domain.IssuePayment
	d.Category = domain.CategoryInvalidReceipt

	_, err := svc.Record(ctx, d)
	require.NoError(t, err)
	assert.Empty(t, store.LegacyEntries(appID))
	assert.Len(t, store.LedgerEntries(appID), 1)
}

func TestService_MarkReplaced_Twice(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	e, err := svc.Record(ctx, draft(uuid.New(), "xray"))
	require.NoError(t, err)
	require.NoError(t, svc.MarkReplaced(ctx, e, uuid.New(), time.Now()))

	stale := *e
	stale.WasReplaced = false
	assert.ErrorIs(t, svc.MarkReplaced(ctx, &stale, uuid.New(), time.Now()), domain.ErrAlreadyReplaced)
	assert.ErrorIs(t, svc.MarkReplaced(ctx, e, uuid.New(), time.Now()), domain.ErrAlreadyReplaced)
}

func TestService_CheckReplaced(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	e, err := svc.Record(ctx, draft(uuid.New(), "xray"))
	require.NoError(t, err)
	seen := *e
	require.NoError(t, svc.CheckReplaced(ctx, &seen))

	require.NoError(t, svc.MarkReplaced(ctx, e, uuid.New(), time.Now()))
	assert.ErrorIs(t, svc.CheckReplaced(ctx, &seen), domain.ErrAlreadyReplaced)
}

func TestService_MarkTerminal(t *testing.T) {
	t.Parallel()
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	appID := uuid.New()
	res := domain.LedgerResolution{Status: domain.LedgerCleared, ResolvedBy: uuid.New(), ResolvedAt: time.Now()}

	docIssue, err := svc.Record(ctx, draft(appID, "xray"))
	require.NoError(t, err)
	assert.ErrorIs(t, svc.MarkTerminal(ctx, docIssue, res), domain.ErrNoOutstandingReferral)

	d := draft(appID, "urinalysis")
	d.IssueType = domain.IssueMedicalReferral
	d.Category = domain.CategoryAbnormalUrinalysis
	referral, err := svc.Record(ctx, d)
	require.NoError(t, err)
	require.NoError(t, svc.MarkTerminal(ctx, referral, res))
	assert.Equal(t, domain.LedgerCleared, referral.Status)
	assert.ErrorIs(t, svc.MarkTerminal(ctx, referral, res), domain.ErrNoOutstandingReferral)

	for _, e := range store.LegacyEntries(appID) {
		if e.ID == referral.ID {
			assert.Equal(t, domain.LedgerCleared, e.Status)
		}
	}

	bad := domain.LedgerResolution{Status: domain.LedgerPending}
	assert.ErrorIs(t, svc.MarkTerminal(ctx, docIssue, bad), domain.ErrValidation)
}

func TestService_Reset(t *testing.T) {
	t.Parallel()
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	appID := uuid.New()

	_, err := svc.Record(ctx, draft(appID, "xray"))
	require.NoError(t, err)
	_, err = svc.Record(ctx, draft(appID, "stool"))
	require.NoError(t, err)

	n, err := svc.Reset(ctx, appID, domain.ArtifactKindDocument)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, store.LedgerEntries(appID))
	assert.Empty(t, store.LegacyEntries(appID))
}

type failingReplica struct {
	*memory.LegacyLedgerRepo
	err error
}

func (f failingReplica) Append(context.Context, domain.LedgerEntry) error { return f.err }

func TestService_Record_ReplicaFailureIsAnError(t *testing.T) {
	t.Parallel()
	store := memory.NewStore()
	tm := memory.NewTxManager(store)
	boom := errors.New("legacy table unavailable")
	log := slog.New(slog.NewTextHandler(nil, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	svc := NewService(log, memory.NewLedgerRepo(store), failingReplica{memory.NewLegacyLedgerRepo(store), boom})
	appID := uuid.New()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		_, err := svc.Record(ctx, draft(appID, "xray"))
		return err
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, store.LedgerEntries(appID), "primary write must roll back with the replica")
}

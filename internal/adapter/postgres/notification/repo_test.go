package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/healthcard-backend/internal/adapter/postgres/notification"
	"github.com/heartmarshall/healthcard-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

func TestRepo_CreateBatchAndList(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := notification.New(pool)
	ctx := context.Background()
	cat := testhelper.SeedCategory(t, pool, false)
	app := testhelper.SeedApplication(t, pool, cat.JobCategoryID, domain.StatusDocumentsNeedRevision)
	admin := uuid.New()
	base := time.Now().UTC().Truncate(time.Microsecond)
	ref := "/api/v1/applications/" + app.ID.String() + "/documents/xray/resubmit"

	items := []domain.Notification{
		{
			RecipientID:   app.ApplicantID,
			ApplicationID: app.ID,
			Type:          domain.NotifyDocumentsRejected,
			Title:         "Documents need revision",
			Message:       "- xray: please upload a corrected file",
			Actionable:    true,
			ActionRef:     &ref,
			CreatedAt:     base,
		},
		{
			RecipientID:   app.ApplicantID,
			ApplicationID: app.ID,
			Type:          domain.NotifyPermanentRejection,
			Title:         "Application rejected",
			Message:       "A new application is required.",
			CreatedAt:     base.Add(time.Second),
		},
		{
			RecipientID:   admin,
			ApplicationID: app.ID,
			Type:          domain.NotifyPermanentRejection,
			Title:         "Application permanently rejected",
			Message:       "attempt limit reached",
		},
	}
	require.NoError(t, repo.CreateBatch(ctx, items))
	for _, n := range items {
		assert.NotEqual(t, uuid.Nil, n.ID)
		assert.False(t, n.CreatedAt.IsZero())
	}

	got, err := repo.ListByRecipient(ctx, app.ApplicantID, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.NotifyPermanentRejection, got[0].Type)
	assert.False(t, got[0].Actionable)
	assert.Nil(t, got[0].ActionRef)
	assert.False(t, got[0].IsRead)
	assert.Equal(t, domain.NotifyDocumentsRejected, got[1].Type)
	assert.True(t, got[1].Actionable)
	require.NotNil(t, got[1].ActionRef)
	assert.Equal(t, ref, *got[1].ActionRef)
	assert.False(t, got[1].IsRead)

	limited, err := repo.ListByRecipient(ctx, app.ApplicantID, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, got[0].ID, limited[0].ID)

	adminInbox, err := repo.ListByRecipient(ctx, admin, 10)
	require.NoError(t, err)
	require.Len(t, adminInbox, 1)
	assert.Equal(t, app.ID, adminInbox[0].ApplicationID)
}

func TestRepo_CreateBatch_Empty(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := notification.New(pool)

	assert.NoError(t, repo.CreateBatch(context.Background(), nil))
}

func TestRepo_CreateBatch_UnknownApplication(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := notification.New(pool)

	err := repo.CreateBatch(context.Background(), []domain.Notification{{
		RecipientID:   uuid.New(),
		ApplicationID: uuid.New(),
		Type:          domain.NotifyPaymentApproved,
		Title:         "Payment confirmed",
		Message:       "ok",
	}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

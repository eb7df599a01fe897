package activity_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/healthcard-backend/internal/adapter/postgres/activity"
	"github.com/heartmarshall/healthcard-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

func TestRepo_LogAndList(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := activity.New(pool)
	ctx := context.Background()
	appID := uuid.New()
	reviewer := uuid.New()
	base := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, repo.Log(ctx, domain.ActivityLog{
		ActorID:       &reviewer,
		ApplicationID: appID,
		Action:        domain.ActivityDocumentRejected,
		Details:       map[string]any{"artifact_type_id": "xray", "attempt": 2},
		CreatedAt:     base,
	}))
	require.NoError(t, repo.Log(ctx, domain.ActivityLog{
		ApplicationID: appID,
		Action:        domain.ActivityPermanentRejection,
		CreatedAt:     base.Add(time.Second),
	}))

	got, err := repo.ListByApplication(ctx, appID, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, domain.ActivityPermanentRejection, got[0].Action)
	assert.Nil(t, got[0].ActorID, "system records carry no actor")
	assert.Empty(t, got[0].Details)

	assert.Equal(t, domain.ActivityDocumentRejected, got[1].Action)
	require.NotNil(t, got[1].ActorID)
	assert.Equal(t, reviewer, *got[1].ActorID)
	assert.Equal(t, "xray", got[1].Details["artifact_type_id"])
	assert.EqualValues(t, 2, got[1].Details["attempt"])

	limited, err := repo.ListByApplication(ctx, appID, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, got[0].ID, limited[0].ID)

	none, err := repo.ListByApplication(ctx, uuid.New(), 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

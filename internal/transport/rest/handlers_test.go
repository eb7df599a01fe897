package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/service/application"
	"github.com/heartmarshall/healthcard-backend/internal/service/document"
	"github.com/heartmarshall/healthcard-backend/internal/service/orientation"
	"github.com/heartmarshall/healthcard-backend/internal/service/payment"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type documentServiceMock struct {
	RejectFunc   func(ctx context.Context, input document.RejectInput) (*domain.ReviewOutcome, error)
	ReferFunc    func(ctx context.Context, input document.ReferInput) (*domain.ReviewOutcome, error)
	ResubmitFunc func(ctx context.Context, input document.ResubmitInput) (*domain.ReviewOutcome, error)
	BatchFunc    func(ctx context.Context, input document.BatchInput) (*domain.BatchOutcome, error)
	HistoryFunc  func(ctx context.Context, applicationID uuid.UUID, typeID string) ([]domain.LedgerEntry, error)
}

func (m *documentServiceMock) Reject(ctx context.Context, input document.RejectInput) (*domain.ReviewOutcome, error) {
	return m.RejectFunc(ctx, input)
}

func (m *documentServiceMock) Refer(ctx context.Context, input document.ReferInput) (*domain.ReviewOutcome, error) {
	return m.ReferFunc(ctx, input)
}

func (m *documentServiceMock) Verify(context.Context, document.VerifyInput) (*domain.ReviewOutcome, error) {
	return nil, errors.New("not implemented")
}

func (m *documentServiceMock) ApproveAfterOnsiteVerification(context.Context, document.OnsiteInput) (*domain.ReviewOutcome, error) {
	return nil, errors.New("not implemented")
}

func (m *documentServiceMock) Resubmit(ctx context.Context, input document.ResubmitInput) (*domain.ReviewOutcome, error) {
	return m.ResubmitFunc(ctx, input)
}

func (m *documentServiceMock) ReviewBatchComplete(ctx context.Context, input document.BatchInput) (*domain.BatchOutcome, error) {
	return m.BatchFunc(ctx, input)
}

func (m *documentServiceMock) ResetVerification(context.Context, uuid.UUID) (*domain.ResetOutcome, error) {
	return nil, errors.New("not implemented")
}

func (m *documentServiceMock) History(ctx context.Context, applicationID uuid.UUID, typeID string) ([]domain.LedgerEntry, error) {
	return m.HistoryFunc(ctx, applicationID, typeID)
}

type paymentServiceMock struct {
	UnlockFunc func(ctx context.Context, input payment.UnlockInput) (*domain.ReviewOutcome, error)
}

func (m *paymentServiceMock) Reject(context.Context, payment.RejectInput) (*domain.ReviewOutcome, error) {
	return nil, errors.New("not implemented")
}

func (m *paymentServiceMock) Approve(context.Context, payment.ApproveInput) (*domain.ReviewOutcome, error) {
	return nil, errors.New("not implemented")
}

func (m *paymentServiceMock) Resubmit(context.Context, payment.ResubmitInput) (*domain.ReviewOutcome, error) {
	return nil, errors.New("not implemented")
}

func (m *paymentServiceMock) Unlock(ctx context.Context, input payment.UnlockInput) (*domain.ReviewOutcome, error) {
	return m.UnlockFunc(ctx, input)
}

type orientationServiceMock struct {
	ScheduleFunc func(ctx context.Context, input orientation.ScheduleInput) (*domain.AttendanceOutcome, error)
	FinalizeFunc func(ctx context.Context, input orientation.SessionInput) (*domain.SessionOutcome, error)
}

func (m *orientationServiceMock) Schedule(ctx context.Context, input orientation.ScheduleInput) (*domain.AttendanceOutcome, error) {
	return m.ScheduleFunc(ctx, input)
}

func (m *orientationServiceMock) CheckIn(context.Context, uuid.UUID) (*domain.AttendanceOutcome, error) {
	return nil, errors.New("not implemented")
}

func (m *orientationServiceMock) CheckOut(context.Context, uuid.UUID) (*domain.AttendanceOutcome, error) {
	return nil, errors.New("not implemented")
}

func (m *orientationServiceMock) FinalizeSession(ctx context.Context, input orientation.SessionInput) (*domain.SessionOutcome, error) {
	return m.FinalizeFunc(ctx, input)
}

type applicationServiceMock struct {
	GetFunc    func(ctx context.Context, applicationID uuid.UUID) (*domain.ApplicationOverview, error)
	DecideFunc func(ctx context.Context, input application.DecideInput) (*domain.Application, error)
}

func (m *applicationServiceMock) Get(ctx context.Context, applicationID uuid.UUID) (*domain.ApplicationOverview, error) {
	return m.GetFunc(ctx, applicationID)
}

func (m *applicationServiceMock) Decide(ctx context.Context, input application.DecideInput) (*domain.Application, error) {
	return m.DecideFunc(ctx, input)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type fixture struct {
	docs   *documentServiceMock
	pays   *paymentServiceMock
	orient *orientationServiceMock
	apps   *applicationServiceMock
	router http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(nil, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	f := &fixture{
		docs:   &documentServiceMock{},
		pays:   &paymentServiceMock{},
		orient: &orientationServiceMock{},
		apps:   &applicationServiceMock{},
	}
	f.router = NewRouter(Handlers{
		Health:       NewHealthHandler("test"),
		Documents:    NewDocumentHandler(f.docs, log),
		Payments:     NewPaymentHandler(f.pays, log),
		Orientation:  NewOrientationHandler(f.orient, log),
		Applications: NewApplicationHandler(f.apps, log),
	}, RouterOptions{})
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestDocumentHandler_Reject(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	artifactID := uuid.New()

	var got document.RejectInput
	f.docs.RejectFunc = func(_ context.Context, in document.RejectInput) (*domain.ReviewOutcome, error) {
		got = in
		return &domain.ReviewOutcome{
			Artifact:          &domain.Artifact{ID: artifactID, TypeID: "xray", Status: domain.ReviewNeedsRevision},
			Entry:             &domain.LedgerEntry{ID: uuid.New(), AttemptNumber: 2, Status: domain.LedgerPending},
			ApplicationStatus: domain.StatusForDocumentVerification,
			AttemptNumber:     2,
			AttemptsRemaining: 1,
			Warning:           true,
		}, nil
	}

	rec := f.do(http.MethodPost, "/api/v1/documents/"+artifactID.String()+"/reject",
		`{"category":"quality_issue","reason":"blurry","specificIssues":["corner cut"]}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, artifactID, got.ArtifactID)
	assert.Equal(t, domain.Category("quality_issue"), got.Category)
	assert.Equal(t, []string{"corner cut"}, got.SpecificIssues)

	resp := decode[reviewOutcomeResponse](t, rec)
	assert.Equal(t, 2, resp.AttemptNumber)
	assert.Equal(t, 1, resp.AttemptsRemaining)
	assert.True(t, resp.Warning)
	require.NotNil(t, resp.Artifact)
	assert.Equal(t, "xray", resp.Artifact.TypeID)
	require.NotNil(t, resp.Entry)
	assert.Equal(t, 2, resp.Entry.AttemptNumber)
}

func TestDocumentHandler_Refer_PermanentRejection(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.docs.ReferFunc = func(_ context.Context, in document.ReferInput) (*domain.ReviewOutcome, error) {
		require.NotNil(t, in.DoctorName)
		assert.Equal(t, "Dr. Reyes", *in.DoctorName)
		return &domain.ReviewOutcome{
			ApplicationStatus:   domain.StatusRejected,
			PermanentlyRejected: true,
			Rejection: &domain.PermanentRejectionRecord{
				TriggerArtifactTypeID: "urinalysis",
				TotalDocumentAttempts: 3,
				RejectedBy:            domain.SystemActor,
			},
		}, nil
	}

	rec := f.do(http.MethodPost, "/api/v1/documents/"+uuid.NewString()+"/refer",
		`{"issueType":"medical_referral","category":"abnormal_urinalysis","reason":"protein","doctorName":"Dr. Reyes","clinicAddress":"Main St"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[reviewOutcomeResponse](t, rec)
	assert.True(t, resp.PermanentlyRejected)
	require.NotNil(t, resp.Rejection)
	assert.Equal(t, "urinalysis", resp.Rejection.TriggerArtifactTypeID)
	assert.Equal(t, "system", resp.Rejection.RejectedBy)
}

func TestDocumentHandler_ResubmitAndHistory_PathParams(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	appID := uuid.New()

	f.docs.ResubmitFunc = func(_ context.Context, in document.ResubmitInput) (*domain.ReviewOutcome, error) {
		assert.Equal(t, appID, in.ApplicationID)
		assert.Equal(t, "xray", in.ArtifactTypeID)
		assert.Equal(t, "uploads/xray-2.pdf", in.FileRef)
		return &domain.ReviewOutcome{ApplicationStatus: domain.StatusForDocumentVerification}, nil
	}
	f.docs.HistoryFunc = func(_ context.Context, id uuid.UUID, typeID string) ([]domain.LedgerEntry, error) {
		assert.Equal(t, appID, id)
		assert.Equal(t, "xray", typeID)
		return []domain.LedgerEntry{{ID: uuid.New(), AttemptNumber: 2}, {ID: uuid.New(), AttemptNumber: 1}}, nil
	}

	rec := f.do(http.MethodPost, "/api/v1/applications/"+appID.String()+"/documents/xray/resubmit", `{"fileRef":"uploads/xray-2.pdf"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/v1/applications/"+appID.String()+"/documents/xray/history", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entries := decode[[]ledgerEntryResponse](t, rec)
	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries[0].AttemptNumber)
}

func TestDocumentHandler_CompleteBatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.docs.BatchFunc = func(_ context.Context, in document.BatchInput) (*domain.BatchOutcome, error) {
		assert.Equal(t, domain.DecisionRejected, in.Decision)
		return &domain.BatchOutcome{
			ApplicationStatus:  domain.StatusForDocumentVerification,
			Decision:           domain.DecisionRejected,
			RejectedArtifacts:  2,
			NotificationQueued: true,
		}, nil
	}

	rec := f.do(http.MethodPost, "/api/v1/applications/"+uuid.NewString()+"/document-review/complete", `{"decision":"Rejected"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[batchOutcomeResponse](t, rec)
	assert.Equal(t, 2, resp.RejectedArtifacts)
	assert.True(t, resp.NotificationQueued)
}

func TestPaymentHandler_Unlock(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.pays.UnlockFunc = func(_ context.Context, in payment.UnlockInput) (*domain.ReviewOutcome, error) {
		assert.Equal(t, domain.UnlockResetAttempts, in.Resolution)
		assert.Equal(t, "bank confirmed", in.Remarks)
		return &domain.ReviewOutcome{ApplicationStatus: domain.StatusPaymentValidation}, nil
	}

	rec := f.do(http.MethodPost, "/api/v1/applications/"+uuid.NewString()+"/unlock",
		`{"resolution":"reset_attempts","remarks":"bank confirmed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[reviewOutcomeResponse](t, rec)
	assert.Equal(t, string(domain.StatusPaymentValidation), resp.ApplicationStatus)
}

func TestOrientationHandler_Schedule(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	appID := uuid.New()

	f.orient.ScheduleFunc = func(_ context.Context, in orientation.ScheduleInput) (*domain.AttendanceOutcome, error) {
		assert.Equal(t, time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC), in.SessionDate)
		return &domain.AttendanceOutcome{
			Record: &domain.OrientationRecord{
				ID:          uuid.New(),
				SessionDate: in.SessionDate,
				SessionSlot: in.SessionSlot,
				Venue:       in.Venue,
				Status:      domain.OrientationScheduled,
			},
			ApplicationStatus: domain.StatusScheduled,
		}, nil
	}

	rec := f.do(http.MethodPost, "/api/v1/applications/"+appID.String()+"/orientation",
		`{"sessionDate":"2026-11-03","sessionSlot":"AM","venue":"Hall A"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[attendanceResponse](t, rec)
	require.NotNil(t, resp.Record)
	assert.Equal(t, "2026-11-03", resp.Record.SessionDate)

	rec = f.do(http.MethodPost, "/api/v1/applications/"+appID.String()+"/orientation",
		`{"sessionDate":"03/11/2026","sessionSlot":"AM","venue":"Hall A"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrientationHandler_FinalizeSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.orient.FinalizeFunc = func(_ context.Context, in orientation.SessionInput) (*domain.SessionOutcome, error) {
		assert.Equal(t, "PM", in.Session.Slot)
		return &domain.SessionOutcome{Completed: 4, Missed: 1}, nil
	}

	rec := f.do(http.MethodPost, "/api/v1/orientation/sessions/finalize",
		`{"sessionDate":"2026-11-03","sessionSlot":"PM","venue":"Hall A"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[sessionResponse](t, rec)
	assert.Equal(t, 4, resp.Completed)
	assert.Equal(t, 1, resp.Missed)
}

func TestApplicationHandler_GetAndDecide(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	appID := uuid.New()

	f.apps.GetFunc = func(_ context.Context, id uuid.UUID) (*domain.ApplicationOverview, error) {
		return &domain.ApplicationOverview{
			Application: &domain.Application{ID: id, Status: domain.StatusUnderReview},
			Documents:   []domain.Artifact{{ID: uuid.New(), TypeID: "xray", Status: domain.ReviewVerified}},
			Payment:     &domain.Artifact{ID: uuid.New(), TypeID: domain.PaymentTypeID, Status: domain.ReviewComplete},
		}, nil
	}
	f.apps.DecideFunc = func(_ context.Context, in application.DecideInput) (*domain.Application, error) {
		assert.Equal(t, domain.DecisionApproved, in.Decision)
		return &domain.Application{ID: in.ApplicationID, Status: domain.StatusApproved}, nil
	}

	rec := f.do(http.MethodGet, "/api/v1/applications/"+appID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	overview := decode[overviewResponse](t, rec)
	assert.Equal(t, appID.String(), overview.Application.ID)
	require.Len(t, overview.Documents, 1)
	require.NotNil(t, overview.Payment)
	assert.Nil(t, overview.Orientation)

	rec = f.do(http.MethodPost, "/api/v1/applications/"+appID.String()+"/decision", `{"decision":"Approved"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	app := decode[applicationResponse](t, rec)
	assert.Equal(t, string(domain.StatusApproved), app.Status)
}

func TestHandlers_BadRequests(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name  string
		path  string
		body  string
		field string
	}{
		{"invalid artifact id", "/api/v1/documents/not-a-uuid/reject", `{}`, "artifactID"},
		{"malformed json", "/api/v1/documents/" + uuid.NewString() + "/reject", `{"reason":`, "body"},
		{"unknown field", "/api/v1/documents/" + uuid.NewString() + "/reject", `{"severity":"high"}`, "body"},
		{"invalid application id", "/api/v1/applications/123/unlock", `{}`, "applicationID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decode[errorResponse](t, rec)
			assert.Equal(t, "validation", resp.Kind)
			require.Len(t, resp.Fields, 1)
			assert.Equal(t, tt.field, resp.Fields[0].Field)
		})
	}
}

func TestHandleError_Mapping(t *testing.T) {
	t.Parallel()
	log := slog.New(slog.NewTextHandler(nil, &slog.HandlerOptions{Level: slog.LevelError + 1}))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
		wantCode   string
	}{
		{"not authenticated", domain.NewReviewError(domain.CodeNotAuthenticated, "authentication required"), http.StatusUnauthorized, "authorization", "NotAuthenticated"},
		{"insufficient role", domain.NewReviewError(domain.CodeInsufficientRole, "inspector cannot unlock"), http.StatusForbidden, "authorization", "InsufficientRole"},
		{"read only", domain.NewReviewError(domain.CodeReadOnlyOversight, "read only"), http.StatusForbidden, "authorization", "ReadOnlyOversight"},
		{"artifact not found", domain.NewReviewError(domain.CodeArtifactNotFound, "missing"), http.StatusNotFound, "precondition", "ArtifactNotFound"},
		{"already reviewed", fmt.Errorf("tx: %w", domain.NewReviewError(domain.CodeAlreadyReviewed, "raced")), http.StatusConflict, "precondition", "AlreadyReviewed"},
		{"max attempts", domain.NewReviewError(domain.CodeMaxAttemptsExceeded, "3 of 3"), http.StatusUnprocessableEntity, "policy", "MaxAttemptsExceeded"},
		{"storage", domain.NewReviewError(domain.CodeStorageUnavailable, "timeout"), http.StatusServiceUnavailable, "dependency", "StorageUnavailable"},
		{"validation", domain.NewValidationError("reason", "required"), http.StatusBadRequest, "validation", "InvalidInput"},
		{"not found", fmt.Errorf("get application: %w", domain.ErrNotFound), http.StatusNotFound, "precondition", "NotFound"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "internal", "Internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/x", nil)
			rec := httptest.NewRecorder()

			handleError(rec, req, log, tt.err)

			require.Equal(t, tt.wantStatus, rec.Code)
			resp := decode[errorResponse](t, rec)
			assert.Equal(t, tt.wantKind, resp.Kind)
			assert.Equal(t, tt.wantCode, resp.Code)
			if tt.wantStatus == http.StatusServiceUnavailable {
				assert.NotEmpty(t, rec.Header().Get("Retry-After"))
			} else {
				assert.Empty(t, rec.Header().Get("Retry-After"))
			}
		})
	}
}

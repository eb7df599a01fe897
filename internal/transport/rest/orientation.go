package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/service/orientation"
)

// orientationService defines the minimal interface needed by OrientationHandler.
type orientationService interface {
	Schedule(ctx context.Context, input orientation.ScheduleInput) (*domain.AttendanceOutcome, error)
	CheckIn(ctx context.Context, applicationID uuid.UUID) (*domain.AttendanceOutcome, error)
	CheckOut(ctx context.Context, applicationID uuid.UUID) (*domain.AttendanceOutcome, error)
	FinalizeSession(ctx context.Context, input orientation.SessionInput) (*domain.SessionOutcome, error)
}

// OrientationHandler serves orientation attendance endpoints.
type OrientationHandler struct {
	svc orientationService
	log *slog.Logger
}

// NewOrientationHandler creates an OrientationHandler.
func NewOrientationHandler(svc orientationService, logger *slog.Logger) *OrientationHandler {
	return &OrientationHandler{svc: svc, log: logger.With("handler", "orientation")}
}

type sessionRequest struct {
	SessionDate string `json:"sessionDate"`
	SessionSlot string `json:"sessionSlot"`
	Venue       string `json:"venue"`
}

// session parses the request into a session key. It writes a 400 and
// returns false when the date is not YYYY-MM-DD.
func (req sessionRequest) session(w http.ResponseWriter) (domain.SessionKey, bool) {
	var date time.Time
	if req.SessionDate != "" {
		d, err := time.Parse(time.DateOnly, req.SessionDate)
		if err != nil {
			badRequest(w, "session_date", "must be YYYY-MM-DD")
			return domain.SessionKey{}, false
		}
		date = d
	}
	return domain.SessionKey{Date: date, Slot: req.SessionSlot, Venue: req.Venue}, true
}

// Schedule handles POST /applications/{applicationID}/orientation.
func (h *OrientationHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	appID, ok := uuidParam(w, r, "applicationID")
	if !ok {
		return
	}
	var req sessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	key, ok := req.session(w)
	if !ok {
		return
	}

	out, err := h.svc.Schedule(r.Context(), orientation.ScheduleInput{
		ApplicationID: appID,
		SessionDate:   key.Date,
		SessionSlot:   key.Slot,
		Venue:         key.Venue,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAttendanceResponse(out))
}

// CheckIn handles POST /applications/{applicationID}/orientation/check-in.
func (h *OrientationHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	appID, ok := uuidParam(w, r, "applicationID")
	if !ok {
		return
	}

	out, err := h.svc.CheckIn(r.Context(), appID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceResponse(out))
}

// CheckOut handles POST /applications/{applicationID}/orientation/check-out.
func (h *OrientationHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	appID, ok := uuidParam(w, r, "applicationID")
	if !ok {
		return
	}

	out, err := h.svc.CheckOut(r.Context(), appID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceResponse(out))
}

// FinalizeSession handles POST /orientation/sessions/finalize.
func (h *OrientationHandler) FinalizeSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	key, ok := req.session(w)
	if !ok {
		return
	}

	out, err := h.svc.FinalizeSession(r.Context(), orientation.SessionInput{Session: key})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Completed: out.Completed, Missed: out.Missed})
}

func toAttendanceResponse(o *domain.AttendanceOutcome) attendanceResponse {
	return attendanceResponse{
		Record:            toOrientationResponse(o.Record),
		ApplicationStatus: string(o.ApplicationStatus),
	}
}

package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/service/application"
)

// applicationService defines the minimal interface needed by ApplicationHandler.
type applicationService interface {
	Get(ctx context.Context, applicationID uuid.UUID) (*domain.ApplicationOverview, error)
	Decide(ctx context.Context, input application.DecideInput) (*domain.Application, error)
}

// ApplicationHandler serves the application read model and final decision.
type ApplicationHandler struct {
	svc applicationService
	log *slog.Logger
}

// NewApplicationHandler creates an ApplicationHandler.
func NewApplicationHandler(svc applicationService, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{svc: svc, log: logger.With("handler", "application")}
}

// Get handles GET /applications/{applicationID}.
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	appID, ok := uuidParam(w, r, "applicationID")
	if !ok {
		return
	}

	out, err := h.svc.Get(r.Context(), appID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toOverviewResponse(out))
}

// Decide handles POST /applications/{applicationID}/decision.
func (h *ApplicationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	appID, ok := uuidParam(w, r, "applicationID")
	if !ok {
		return
	}
	var req decisionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	app, err := h.svc.Decide(r.Context(), application.DecideInput{
		ApplicationID: appID,
		Decision:      domain.Decision(req.Decision),
		Remarks:       req.Remarks,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationResponse(app))
}

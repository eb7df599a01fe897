package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/service/payment"
)

// paymentService defines the minimal interface needed by PaymentHandler.
type paymentService interface {
	Reject(ctx context.Context, input payment.RejectInput) (*domain.ReviewOutcome, error)
	Approve(ctx context.Context, input payment.ApproveInput) (*domain.ReviewOutcome, error)
	Resubmit(ctx context.Context, input payment.ResubmitInput) (*domain.ReviewOutcome, error)
	Unlock(ctx context.Context, input payment.UnlockInput) (*domain.ReviewOutcome, error)
}

// PaymentHandler serves payment review endpoints.
type PaymentHandler struct {
	svc paymentService
	log *slog.Logger
}

// NewPaymentHandler creates a PaymentHandler.
func NewPaymentHandler(svc paymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, log: logger.With("handler", "payment")}
}

type rejectPaymentRequest struct {
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

type unlockRequest struct {
	Resolution string `json:"resolution"`
	Remarks    string `json:"remarks"`
}

// Reject handles POST /payments/{paymentID}/reject.
func (h *PaymentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "paymentID")
	if !ok {
		return
	}
	var req rejectPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.svc.Reject(r.Context(), payment.RejectInput{
		PaymentID: id,
		Category:  domain.Category(req.Category),
		Reason:    req.Reason,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewOutcomeResponse(out))
}

// Approve handles POST /payments/{paymentID}/approve.
func (h *PaymentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "paymentID")
	if !ok {
		return
	}
	var req remarksRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.svc.Approve(r.Context(), payment.ApproveInput{PaymentID: id, Remarks: req.Remarks})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewOutcomeResponse(out))
}

// Resubmit handles POST /applications/{applicationID}/payment/resubmit.
func (h *PaymentHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	appID, ok := uuidParam(w, r, "applicationID")
	if !ok {
		return
	}
	var req resubmitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.svc.Resubmit(r.Context(), payment.ResubmitInput{ApplicationID: appID, FileRef: req.FileRef})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewOutcomeResponse(out))
}

// Unlock handles POST /applications/{applicationID}/unlock.
func (h *PaymentHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	appID, ok := uuidParam(w, r, "applicationID")
	if !ok {
		return
	}
	var req unlockRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.svc.Unlock(r.Context(), payment.UnlockInput{
		ApplicationID: appID,
		Resolution:    domain.UnlockResolution(req.Resolution),
		Remarks:       req.Remarks,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewOutcomeResponse(out))
}

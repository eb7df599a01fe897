package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/internal/service/document"
)

// documentService defines the minimal interface needed by DocumentHandler.
type documentService interface {
	Reject(ctx context.Context, input document.RejectInput) (*domain.ReviewOutcome, error)
	Refer(ctx context.Context, input document.ReferInput) (*domain.ReviewOutcome, error)
	Verify(ctx context.Context, input document.VerifyInput) (*domain.ReviewOutcome, error)
	ApproveAfterOnsiteVerification(ctx context.Context, input document.OnsiteInput) (*domain.ReviewOutcome, error)
	Resubmit(ctx context.Context, input document.ResubmitInput) (*domain.ReviewOutcome, error)
	ReviewBatchComplete(ctx context.Context, input document.BatchInput) (*domain.BatchOutcome, error)
	ResetVerification(ctx context.Context, applicationID uuid.UUID) (*domain.ResetOutcome, error)
	History(ctx context.Context, applicationID uuid.UUID, typeID string) ([]domain.LedgerEntry, error)
}

// DocumentHandler serves document review endpoints.
type DocumentHandler struct {
	svc documentService
	log *slog.Logger
}

// NewDocumentHandler creates a DocumentHandler.
func NewDocumentHandler(svc documentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{svc: svc, log: logger.With("handler", "document")}
}

type rejectDocumentRequest struct {
	Category       string   `json:"category"`
	Reason         string   `json:"reason"`
	SpecificIssues []string `json:"specificIssues"`
}

type referDocumentRequest struct {
	IssueType      string   `json:"issueType"`
	Category       string   `json:"category"`
	Reason         string   `json:"reason"`
	SpecificIssues []string `json:"specificIssues"`
	DoctorName     *string  `json:"doctorName"`
	ClinicAddress  *string  `json:"clinicAddress"`
}

type remarksRequest struct {
	Remarks *string `json:"remarks"`
}

type onsiteRequest struct {
	Notes *string `json:"notes"`
}

type resubmitRequest struct {
	FileRef string `json:"fileRef"`
}

type decisionRequest struct {
	Decision string `json:"decision"`
	Remarks  string `json:"remarks"`
}

// Reject handles POST /documents/{artifactID}/reject.
func (h *DocumentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "artifactID")
	if !ok {
		return
	}
	var req rejectDocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.svc.Reject(r.Context(), document.RejectInput{
		ArtifactID:     id,
		Category:       domain.Category(req.Category),
		Reason:         req.Reason,
		SpecificIssues: req.SpecificIssues,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewOutcomeResponse(out))
}

// Refer handles POST /documents/{artifactID}/refer.
func (h *DocumentHandler) Refer(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "artifactID")
	if !ok {
		return
	}
	var req referDocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.svc.Refer(r.Context(), document.ReferInput{
		ArtifactID:     id,
		IssueType:      domain.IssueType(req.IssueType),
		Category:       domain.Category(req.Category),
		Reason:         req.Reason,
		SpecificIssues: req.SpecificIssues,
		DoctorName:     req.DoctorName,
		ClinicAddress:  req.ClinicAddress,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewOutcomeResponse(out))
}

// Verify handles POST /documents/{artifactID}/verify.
func (h *DocumentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "artifactID")
	if !ok {
		return
	}
	var req remarksRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.svc.Verify(r.Context(), document.VerifyInput{ArtifactID: id, Remarks: req.Remarks})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewOutcomeResponse(out))
}

// ApproveOnsite handles POST /documents/{artifactID}/onsite-verification.
func (h *DocumentHandler) ApproveOnsite(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "artifactID")
	if !ok {
		return
	}
	var req onsiteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.svc.ApproveAfterOnsiteVerification(r.Context(), document.OnsiteInput{ArtifactID: id, Notes: req.Notes})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewOutcomeResponse(out))
}

// Resubmit handles POST /applications/{applicationID}/documents/{typeID}/resubmit.
func (h *DocumentHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	appID, ok := uuidParam(w, r, "applicationID")
	if !ok {
		return
	}
	var req resubmitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.svc.Resubmit(r.Context(), document.ResubmitInput{
		ApplicationID:  appID,
		ArtifactTypeID: chi.URLParam(r, "typeID"),
		FileRef:        req.FileRef,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewOutcomeResponse(out))
}

// CompleteBatch handles POST /applications/{applicationID}/document-review/complete.
func (h *DocumentHandler) CompleteBatch(w http.ResponseWriter, r *http.Request) {
	appID, ok := uuidParam(w, r, "applicationID")
	if !ok {
		return
	}
	var req decisionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.svc.ReviewBatchComplete(r.Context(), document.BatchInput{
		ApplicationID: appID,
		Decision:      domain.Decision(req.Decision),
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, batchOutcomeResponse{
		ApplicationStatus:  string(out.ApplicationStatus),
		Decision:           string(out.Decision),
		RejectedArtifacts:  out.RejectedArtifacts,
		NotificationQueued: out.NotificationQueued,
	})
}

// ResetVerification handles POST /applications/{applicationID}/document-review/reset.
func (h *DocumentHandler) ResetVerification(w http.ResponseWriter, r *http.Request) {
	appID, ok := uuidParam(w, r, "applicationID")
	if !ok {
		return
	}

	out, err := h.svc.ResetVerification(r.Context(), appID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resetResponse{
		ApplicationStatus: string(out.ApplicationStatus),
		EntriesDeleted:    out.EntriesDeleted,
		ArtifactsReset:    out.ArtifactsReset,
	})
}

// History handles GET /applications/{applicationID}/documents/{typeID}/history.
func (h *DocumentHandler) History(w http.ResponseWriter, r *http.Request) {
	appID, ok := uuidParam(w, r, "applicationID")
	if !ok {
		return
	}

	entries, err := h.svc.History(r.Context(), appID, chi.URLParam(r, "typeID"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := make([]ledgerEntryResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, *toLedgerEntryResponse(&entries[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

package rest

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
	"github.com/heartmarshall/healthcard-backend/pkg/ctxutil"
)

// retryAfterSeconds is sent with every dependency failure.
const retryAfterSeconds = "5"

type errorResponse struct {
	Kind    string       `json:"kind"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// handleError maps a service error onto the JSON error envelope.
func handleError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var reviewErr *domain.ReviewError
	var valErr *domain.ValidationError

	switch {
	case errors.As(err, &reviewErr):
		status := reviewStatus(reviewErr)
		if status == http.StatusServiceUnavailable {
			w.Header().Set("Retry-After", retryAfterSeconds)
		}
		writeError(w, status, errorResponse{
			Kind:    string(reviewErr.Kind),
			Code:    string(reviewErr.Code),
			Message: reviewErr.Message,
		})
	case errors.As(err, &valErr):
		resp := errorResponse{Kind: "validation", Code: "InvalidInput", Message: "invalid input"}
		for _, fe := range valErr.Errors {
			resp.Fields = append(resp.Fields, fieldError{Field: fe.Field, Message: fe.Message})
		}
		writeError(w, http.StatusBadRequest, resp)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, errorResponse{Kind: "precondition", Code: "NotFound", Message: "resource not found"})
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, errorResponse{Kind: "precondition", Code: "Conflict", Message: "conflicting update, retry"})
	default:
		log.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, errorResponse{Kind: "internal", Code: "Internal", Message: "internal server error"})
	}
}

func reviewStatus(e *domain.ReviewError) int {
	switch e.Kind {
	case domain.KindAuthorization:
		if e.Code == domain.CodeNotAuthenticated {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case domain.KindPolicy:
		return http.StatusUnprocessableEntity
	case domain.KindDependency:
		return http.StatusServiceUnavailable
	default:
		if e.Code == domain.CodeArtifactNotFound || e.Code == domain.CodeFileNotFound {
			return http.StatusNotFound
		}
		return http.StatusConflict
	}
}

func writeError(w http.ResponseWriter, status int, resp errorResponse) {
	writeJSON(w, status, resp)
}

func badRequest(w http.ResponseWriter, field, message string) {
	writeError(w, http.StatusBadRequest, errorResponse{
		Kind:    "validation",
		Code:    "InvalidInput",
		Message: "invalid input",
		Fields:  []fieldError{{Field: field, Message: message}},
	})
}

// decodeBody decodes a JSON request body. An empty body leaves dst
// untouched. It writes a 400 and returns false on malformed input.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "body", "malformed JSON")
		return false
	}
	return true
}

// uuidParam parses a chi URL parameter. It writes a 400 and returns false
// when the parameter is not a UUID.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		badRequest(w, name, "must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

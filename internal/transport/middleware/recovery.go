package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/heartmarshall/healthcard-backend/pkg/ctxutil"
)

// Recovery turns a panic into a 500 response. The log line carries the
// request id and, once Auth has run, the acting reviewer so a failed review
// can be traced back to its caller.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				ctx := r.Context()
				attrs := []any{
					slog.Any("error", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", ctxutil.RequestIDFromCtx(ctx)),
				}
				if actor, ok := ctxutil.ActorFromCtx(ctx); ok {
					attrs = append(attrs,
						slog.String("actor_id", actor.ID.String()),
						slog.String("actor_role", string(actor.Role)),
					)
				}
				attrs = append(attrs, slog.String("stack", string(debug.Stack())))

				logger.ErrorContext(ctx, "panic recovered", attrs...)
				writeError(w, http.StatusInternalServerError, "internal", "Internal", "internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

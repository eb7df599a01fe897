package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handlers groups every REST handler served by the router.
type Handlers struct {
	Health       *HealthHandler
	Documents    *DocumentHandler
	Payments     *PaymentHandler
	Orientation  *OrientationHandler
	Applications *ApplicationHandler
}

// RouterOptions configures middleware and the metrics endpoint.
// Observe wraps every route; API wraps only /api/v1.
type RouterOptions struct {
	Observe []func(http.Handler) http.Handler
	API     []func(http.Handler) http.Handler
	Metrics http.Handler
}

// NewRouter builds the chi router.
func NewRouter(h Handlers, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(opts.Observe...)

	r.Get("/live", h.Health.Live)
	r.Get("/ready", h.Health.Ready)
	r.Get("/health", h.Health.Health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(opts.API...)

		r.Route("/documents/{artifactID}", func(r chi.Router) {
			r.Post("/reject", h.Documents.Reject)
			r.Post("/refer", h.Documents.Refer)
			r.Post("/verify", h.Documents.Verify)
			r.Post("/onsite-verification", h.Documents.ApproveOnsite)
		})

		r.Route("/payments/{paymentID}", func(r chi.Router) {
			r.Post("/reject", h.Payments.Reject)
			r.Post("/approve", h.Payments.Approve)
		})

		r.Post("/orientation/sessions/finalize", h.Orientation.FinalizeSession)

		r.Route("/applications/{applicationID}", func(r chi.Router) {
			r.Get("/", h.Applications.Get)
			r.Post("/decision", h.Applications.Decide)

			r.Post("/documents/{typeID}/resubmit", h.Documents.Resubmit)
			r.Get("/documents/{typeID}/history", h.Documents.History)
			r.Post("/document-review/complete", h.Documents.CompleteBatch)
			r.Post("/document-review/reset", h.Documents.ResetVerification)

			r.Post("/payment/resubmit", h.Payments.Resubmit)
			r.Post("/unlock", h.Payments.Unlock)

			r.Post("/orientation", h.Orientation.Schedule)
			r.Post("/orientation/check-in", h.Orientation.CheckIn)
			r.Post("/orientation/check-out", h.Orientation.CheckOut)
		})
	})

	return r
}

// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services without embedding business logic so transport concerns remain
// isolated.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"previnet/internal/auth"
	"previnet/internal/certificate"
	"previnet/internal/platform/middleware"
	"previnet/internal/signing"
	"previnet/internal/syncqueue"
	"previnet/internal/verification"
	"previnet/internal/worker"
)

type Handler struct {
	auth     *auth.Service
	signable SignableService
	signing  *signing.Service
	certs    certificate.Store
	workers  *worker.Service
	views    verification.ViewTracker
	queue    syncqueue.Queue
	flusher  *syncqueue.Flusher
	logger   *slog.Logger
}

func NewHandler(
	authSvc *auth.Service,
	signableSvc SignableService,
	signingSvc *signing.Service,
	certs certificate.Store,
	workers *worker.Service,
	views verification.ViewTracker,
	queue syncqueue.Queue,
	flusher *syncqueue.Flusher,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		auth:     authSvc,
		signable: signableSvc,
		signing:  signingSvc,
		certs:    certs,
		workers:  workers,
		views:    views,
		queue:    queue,
		flusher:  flusher,
		logger:   logger,
	}
}

// NewRouter wires all endpoints. Publish and registry management require the
// admin role; workers reach their own assignments, attachments and
// certificates.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Post("/auth/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.auth, h.logger))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			r.Post("/records", h.handlePublish)
			r.Get("/records", h.handleListRecords)
			r.Post("/records/{recordID}/assignments", h.handleAssign)
			r.Post("/workers", h.handleRegisterWorker)
			r.Get("/workers", h.handleListWorkers)
			r.Get("/sync/pending", h.handleSyncPending)
			r.Post("/sync/flush", h.handleSyncFlush)
		})

		r.Get("/records/{recordID}", h.handleGetRecord)
		r.Get("/records/{recordID}/attachment", h.handleAttachment)
		r.Post("/records/{recordID}/sign", h.handleSign)
		r.Get("/records/{recordID}/certificates/{token}", h.handleCertificate)
		r.Get("/me/records", h.handleMyRecords)
		r.Get("/me/certificates", h.handleMyCertificates)
	})

	return r
}

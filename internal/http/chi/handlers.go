package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/webhook-relay/channels"
	"github.com/marcelsud/webhook-relay/relay"
)

// HeaderRequestID carries the correlation id back to the caller
const HeaderRequestID = "X-Request-ID"

// Handlers sets up the relay API routes
func Handlers(relayService relay.UseCase, acks *channels.Loader, auditLog relay.Reader, metricsHandler http.Handler, relayMethod, logToken string) *chi.Mux {
	logger := httplog.NewLogger("webhook-relay", httplog.Options{
		JSON: true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Metrics exposition (Prometheus text format)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// Token-gated read access to the audit log
	r.Method(http.MethodGet, "/v1/logs", getLogs(auditLog, logToken))

	/* Everything else is relayed: the first path segment becomes the
	 * endpoint identifier, the rest of the request is serialized and
	 * forwarded to the remote scripting backend
	 */
	relayHandler := relayWebhook(relayService, acks)
	r.Method(relayMethod, "/{endpoint}", relayHandler)
	r.Method(relayMethod, "/{endpoint}/*", relayHandler)

	return r
}

package chi

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/marcelsud/webhook-relay/channels"
	"github.com/marcelsud/webhook-relay/relay"
)

/* HTTP layer DTOs for the relay API
 * Separate from domain entities to avoid leaking internal structure
 */

// logResponse represents one audit record in the API
type logResponse struct {
	RequestID       string        `json:"request_id"`
	Endpoint        string        `json:"endpoint"`
	SourceHost      string        `json:"source_host,omitempty"`
	UserAgent       string        `json:"user_agent,omitempty"`
	ClientIP        string        `json:"client_ip,omitempty"`
	RequestPayload  relay.Payload `json:"request_payload"`
	ResponsePayload string        `json:"response_payload,omitempty"`
	HTTPStatus      int           `json:"http_status"`
	DurationMs      int64         `json:"duration_ms"`
	CreatedAt       time.Time     `json:"created_at"`
}

// relayWebhook handles the configured verb on /{endpoint} and /{endpoint}/*
func relayWebhook(relayService relay.UseCase, acks *channels.Loader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := strings.Trim(chi.URLParam(r, "endpoint"), "/")
		if endpoint == "" {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "endpoint is required"})
			return
		}

		// Acknowledgement-only channels are answered locally and never
		// reach the remote script invoker
		if acks.IsAck(endpoint) {
			requestID := uuid.New().String()
			w.Header().Set(HeaderRequestID, requestID)
			writeJSON(w, http.StatusOK, map[string]any{
				"status":    "ok",
				"channel":   endpoint,
				"requestId": requestID,
			})
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "failed to read request body"})
			return
		}
		defer r.Body.Close()

		// First header value wins, matching what the backend script expects
		headers := make(map[string]string)
		for key, values := range r.Header {
			if len(values) > 0 {
				headers[key] = values[0]
			}
		}

		in := relay.Inbound{
			Endpoint:   endpoint,
			SourceHost: r.Host,
			UserAgent:  r.UserAgent(),
			ClientIP:   clientIP(r),
			Payload: relay.Payload{
				Method:  r.Method,
				Path:    r.URL.Path,
				Query:   r.URL.RawQuery,
				Headers: headers,
				Body:    string(body),
			},
		}

		out := relayService.Process(r.Context(), in)
		w.Header().Set(HeaderRequestID, out.RequestID)
		writeJSON(w, out.Status, out.Body)
	})
}

// getLogs handles GET /v1/logs
func getLogs(auditLog relay.Reader, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auditLog == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "audit log not configured"})
			return
		}
		if token == "" || !tokenMatches(r, token) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid token"})
			return
		}

		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 500 {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": "limit must be between 1 and 500"})
				return
			}
			limit = n
		}

		records, err := auditLog.Recent(r.Context(), limit)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "reading audit log"})
			return
		}

		responses := make([]logResponse, 0, len(records))
		for _, rec := range records {
			responses = append(responses, logResponse{
				RequestID:       rec.RequestID,
				Endpoint:        rec.Endpoint,
				SourceHost:      rec.SourceHost,
				UserAgent:       rec.UserAgent,
				ClientIP:        rec.ClientIP,
				RequestPayload:  rec.RequestPayload,
				ResponsePayload: rec.ResponsePayload,
				HTTPStatus:      rec.HTTPStatus,
				DurationMs:      rec.DurationMs,
				CreatedAt:       rec.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, responses)
	})
}

func tokenMatches(r *http.Request, token string) bool {
	presented := r.URL.Query().Get("token")
	if presented == "" {
		presented = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(token)) == 1
}

// clientIP is best-effort provenance: first X-Forwarded-For entry, else
// the transport peer address
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

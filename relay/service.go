package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/webhook-relay/relay/result"
	"github.com/rs/zerolog"
)

/* Service represents the business logic layer
 * Uses pointer semantics as it's an API, not data
 */

// UseCase defines the relay operation exposed to the HTTP layer
type UseCase interface {
	Process(ctx context.Context, in Inbound) Outcome
}

// Inbound is one accepted webhook call, assembled by the ingress router
type Inbound struct {
	Endpoint   string
	SourceHost string
	UserAgent  string
	ClientIP   string
	Payload    Payload
}

// Outcome is what gets relayed back to the original caller
type Outcome struct {
	RequestID string
	Status    int
	Body      any
}

type Service struct {
	invoker  Invoker
	store    AuditStore // optional; nil disables auditing
	observer Observer
	logger   zerolog.Logger
}

// NewService creates a new relay service with dependency injection.
// store may be nil: the pipeline is correct without persistence.
func NewService(invoker Invoker, store AuditStore, observer Observer, logger zerolog.Logger) *Service {
	return &Service{
		invoker:  invoker,
		store:    store,
		observer: observer,
		logger:   logger,
	}
}

/* Process runs the request lifecycle for one inbound call:
 * ADMITTED -> INVOKED -> COMPLETED or FAILED
 * Side effects are strictly ordered: audit pre-write precedes invocation,
 * invocation precedes the audit post-write, and metrics are observed
 * exactly once per admitted call on either branch.
 */
func (s *Service) Process(ctx context.Context, in Inbound) Outcome {
	rec := Record{
		RequestID:      uuid.New().String(),
		Endpoint:       in.Endpoint,
		SourceHost:     in.SourceHost,
		UserAgent:      in.UserAgent,
		ClientIP:       in.ClientIP,
		RequestPayload: in.Payload,
		CreatedAt:      time.Now(),
	}
	s.preWrite(ctx, rec)
	s.observer.RequestAdmitted(ctx)

	param, err := rec.RequestPayload.Serialize()
	if err != nil {
		return s.fail(ctx, rec, 0, err)
	}

	start := time.Now()
	s.observer.RemoteCallStarted(ctx)
	raw, err := s.invoker.Invoke(ctx, param)
	elapsed := time.Since(start)
	if err != nil {
		return s.fail(ctx, rec, elapsed, err)
	}

	norm := result.Normalize(raw.Body, raw.Status)
	s.postWrite(ctx, rec.RequestID, encodeBody(norm.Body), norm.Status, elapsed.Milliseconds())
	s.observer.RemoteCallFinished(ctx, elapsed, norm.Status, false)

	return Outcome{
		RequestID: rec.RequestID,
		Status:    norm.Status,
		Body:      mergeRequestID(norm.Body, rec.RequestID),
	}
}

// fail terminates the pipeline on a transport fault. One inbound call
// yields exactly one outbound attempt, so no retry happens here.
func (s *Service) fail(ctx context.Context, rec Record, elapsed time.Duration, cause error) Outcome {
	body := map[string]any{"error": cause.Error()}
	s.postWrite(ctx, rec.RequestID, encodeBody(body), http.StatusInternalServerError, elapsed.Milliseconds())
	s.observer.RemoteCallFinished(ctx, elapsed, http.StatusInternalServerError, true)

	return Outcome{
		RequestID: rec.RequestID,
		Status:    http.StatusInternalServerError,
		Body:      body,
	}
}

/* Audit writes are best-effort: failures are logged and swallowed and
 * never affect the caller-visible outcome.
 */
func (s *Service) preWrite(ctx context.Context, rec Record) {
	if s.store == nil {
		return
	}
	if _, err := s.store.Insert(ctx, rec); err != nil {
		s.logger.Warn().Err(err).Str("request_id", rec.RequestID).Msg("audit pre-write failed")
	}
}

func (s *Service) postWrite(ctx context.Context, requestID, responsePayload string, httpStatus int, durationMs int64) {
	if s.store == nil {
		return
	}
	if err := s.store.UpdateResult(ctx, requestID, responsePayload, httpStatus, durationMs); err != nil {
		s.logger.Warn().Err(err).Str("request_id", requestID).Msg("audit post-write failed")
	}
}

// encodeBody renders the normalized body for the audit row.
// Anything json.Marshal rejects degrades to an empty payload.
func encodeBody(body any) string {
	if body == nil {
		return ""
	}
	data, err := json.Marshal(body)
	if err != nil {
		return ""
	}
	return string(data)
}

// mergeRequestID attaches the correlation id to the relayed body.
// Structured objects get the id merged in; an empty body is wrapped as a
// static acknowledgement; anything else is relayed untouched.
func mergeRequestID(body any, requestID string) any {
	switch v := body.(type) {
	case nil:
		return map[string]any{"status": "ok", "requestId": requestID}
	case string:
		if v == "" {
			return map[string]any{"status": "ok", "requestId": requestID}
		}
		return v
	case map[string]any:
		merged := make(map[string]any, len(v)+1)
		for key, value := range v {
			merged[key] = value
		}
		merged["requestId"] = requestID
		return merged
	default:
		return v
	}
}

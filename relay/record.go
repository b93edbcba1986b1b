package relay

import "time"

/* Record represents one webhook call admitted by the relay pipeline
 * Uses value semantics as it represents data, not behavior
 */
type Record struct {
	RequestID       string
	Endpoint        string
	SourceHost      string
	UserAgent       string
	ClientIP        string
	RequestPayload  Payload
	ResponsePayload string
	HTTPStatus      int
	DurationMs      int64
	CreatedAt       time.Time
}

/* Package result normalizes the loosely-structured responses the remote
 * scripting backend produces. The true outcome may be nested one or two
 * levels inside the decoded response and may additionally arrive as
 * JSON-in-string, so extraction is a deterministic fallback chain rather
 * than ad hoc field access.
 */
package result

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Normalized is the (status, body) pair extracted from a raw remote
// response. Status is always a valid HTTP status code.
type Normalized struct {
	Status int
	Body   any
}

// wrapperKeys are the nesting fields the backend is known to wrap the
// outcome in, in descent order.
var wrapperKeys = []string{"response", "scriptResult", "resultParameter"}

/* Normalize applies the fallback chain, first match wins:
 * 1. descend through known wrapper fields
 * 2. a string value is tried as JSON-in-string, kept verbatim on failure
 * 3. an object carrying "body" and a numeric-looking "httpCode" is an
 *    outcome envelope: both are extracted, and a string body is tried
 *    as JSON-in-string again
 * 4. a candidate status outside [100,599] falls back to the transport
 *    status code
 * The chain is total and idempotent: it never fails, and malformed
 * values degrade to (transport status, raw value).
 */
func Normalize(raw any, transportStatus int) Normalized {
	value := descend(raw)
	if s, ok := value.(string); ok {
		value = parseJSONString(s)
	}

	body := value
	status, hasStatus := 0, false
	if envelope, ok := value.(map[string]any); ok {
		innerBody, hasBody := envelope["body"]
		code, hasCode := envelope["httpCode"]
		if hasBody && hasCode {
			body = innerBody
			status, hasStatus = intStatus(code)
			if s, ok := body.(string); ok {
				body = parseJSONString(s)
			}
		}
	}

	if !hasStatus || status < 100 || status > 599 {
		status = transportStatus
	}
	return Normalized{Status: status, Body: body}
}

// descend unwraps nested result fields, at most one per level
func descend(raw any) any {
	value := raw
	for range wrapperKeys {
		obj, ok := value.(map[string]any)
		if !ok {
			return value
		}
		descended := false
		for _, key := range wrapperKeys {
			if inner, exists := obj[key]; exists {
				value = inner
				descended = true
				break
			}
		}
		if !descended {
			return value
		}
	}
	return value
}

// parseJSONString tries a string as structured data, keeping the plain
// string when it is not valid JSON
func parseJSONString(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return s
	}
	return parsed
}

// intStatus reports whether the value is a whole number usable as a
// status code candidate. JSON numbers decode as float64; numeric strings
// also count per the backend's stringly-typed conventions.
func intStatus(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

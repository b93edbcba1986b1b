package relay

import (
	"encoding/json"
	"fmt"
)

/* Payload is the serialized representation of an inbound request.
 * Its JSON encoding is the exact script parameter transmitted to the
 * remote backend, so the field set is method-agnostic on purpose.
 */
type Payload struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Query   string            `json:"query"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

// Serialize returns the JSON encoding sent as the script parameter
func (p Payload) Serialize() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("serializing request payload: %w", err)
	}
	return string(data), nil
}

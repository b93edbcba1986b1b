package result_test

import (
	"encoding/json"
	"testing"

	"github.com/marcelsud/webhook-relay/relay/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestNormalize(t *testing.T) {
	t.Run("stringified outcome envelope under scriptResult", func(t *testing.T) {
		raw := decode(t, `{"scriptResult": {"resultParameter": "{\"body\":{\"ok\":true},\"httpCode\":201}"}}`)

		norm := result.Normalize(raw, 200)

		assert.Equal(t, 201, norm.Status)
		assert.Equal(t, map[string]any{"ok": true}, norm.Body)
	})

	t.Run("plain text script result keeps transport status", func(t *testing.T) {
		raw := decode(t, `{"scriptResult": "plain text"}`)

		norm := result.Normalize(raw, 200)

		assert.Equal(t, 200, norm.Status)
		assert.Equal(t, "plain text", norm.Body)
	})

	t.Run("outcome nested two levels under response", func(t *testing.T) {
		raw := decode(t, `{"response": {"scriptResult": "{\"body\":\"done\",\"httpCode\":202}"}}`)

		norm := result.Normalize(raw, 200)

		assert.Equal(t, 202, norm.Status)
		assert.Equal(t, "done", norm.Body)
	})

	t.Run("unwrapped envelope at top level", func(t *testing.T) {
		raw := decode(t, `{"body": [1, 2, 3], "httpCode": 200}`)

		norm := result.Normalize(raw, 500)

		assert.Equal(t, 200, norm.Status)
		assert.Equal(t, []any{float64(1), float64(2), float64(3)}, norm.Body)
	})

	t.Run("numeric string httpCode is accepted", func(t *testing.T) {
		raw := decode(t, `{"scriptResult": {"body": "created", "httpCode": "201"}}`)

		norm := result.Normalize(raw, 200)

		assert.Equal(t, 201, norm.Status)
		assert.Equal(t, "created", norm.Body)
	})

	t.Run("envelope body that is JSON-in-string gets parsed", func(t *testing.T) {
		raw := decode(t, `{"scriptResult": {"body": "{\"n\": 7}", "httpCode": 200}}`)

		norm := result.Normalize(raw, 200)

		assert.Equal(t, 200, norm.Status)
		assert.Equal(t, map[string]any{"n": float64(7)}, norm.Body)
	})

	t.Run("object without known wrappers is the body", func(t *testing.T) {
		raw := decode(t, `{"acknowledged": true}`)

		norm := result.Normalize(raw, 200)

		assert.Equal(t, 200, norm.Status)
		assert.Equal(t, map[string]any{"acknowledged": true}, norm.Body)
	})

	t.Run("nil body degrades to transport status", func(t *testing.T) {
		norm := result.Normalize(nil, 204)

		assert.Equal(t, 204, norm.Status)
		assert.Nil(t, norm.Body)
	})

	t.Run("non-2xx transport status is preserved without envelope", func(t *testing.T) {
		raw := decode(t, `{"scriptResult": "boom"}`)

		norm := result.Normalize(raw, 502)

		assert.Equal(t, 502, norm.Status)
		assert.Equal(t, "boom", norm.Body)
	})
}

func TestNormalize_StatusBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		httpCode string
		want     int
	}{
		{"below lower bound falls back", `99`, 200},
		{"lower bound accepted", `100`, 100},
		{"upper bound accepted", `599`, 599},
		{"above upper bound falls back", `600`, 200},
		{"non-numeric falls back", `"teapot"`, 200},
		{"fractional falls back", `201.5`, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := decode(t, `{"scriptResult": {"body": "x", "httpCode": `+tt.httpCode+`}}`)

			norm := result.Normalize(raw, 200)

			assert.Equal(t, tt.want, norm.Status)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	raws := []string{
		`{"scriptResult": {"resultParameter": "{\"body\":{\"ok\":true},\"httpCode\":201}"}}`,
		`{"scriptResult": "plain text"}`,
		`{"body": "x", "httpCode": 418}`,
		`[1, "two", null]`,
		`42`,
	}
	for _, raw := range raws {
		decoded := decode(t, raw)

		first := result.Normalize(decoded, 200)
		second := result.Normalize(decoded, 200)

		assert.Equal(t, first, second, "normalizing %s twice diverged", raw)
	}
}

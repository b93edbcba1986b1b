/* Package scriptserver is the HTTP client for the remote scripting
 * backend. It issues one call per invocation and hands the decoded
 * response back uninterpreted; extracting a usable outcome is the
 * result normalizer's job.
 */
package scriptserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/marcelsud/webhook-relay/relay"
)

var _ relay.Invoker = (*Client)(nil)

type Client struct {
	baseURL  string
	database string
	script   string
	username string
	password string
	httpc    *http.Client
}

// invokeRequest is the backend's invocation envelope: a single parameter
// field holding the serialized inbound request
type invokeRequest struct {
	ScriptParameter string `json:"scriptParameter"`
}

/* NewClient creates a script server client.
 * No client-side timeout is set on purpose: the pipeline inherits
 * whatever the transport layer applies.
 */
func NewClient(baseURL, database, script, username, password string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		database: database,
		script:   script,
		username: username,
		password: password,
		httpc:    &http.Client{},
	}
}

// Invoke issues the single outbound call. A returned error is a
// transport failure; a non-2xx status with a well-formed JSON body is
// returned normally.
func (c *Client) Invoke(ctx context.Context, param string) (relay.RawResponse, error) {
	payload, err := json.Marshal(invokeRequest{ScriptParameter: param})
	if err != nil {
		return relay.RawResponse{}, fmt.Errorf("encoding script parameter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/databases/%s/scripts/%s",
		c.baseURL, url.PathEscape(c.database), url.PathEscape(c.script))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return relay.RawResponse{}, fmt.Errorf("building script server request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return relay.RawResponse{}, fmt.Errorf("calling script server: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return relay.RawResponse{}, fmt.Errorf("reading script server response: %w", err)
	}

	var decoded any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &decoded); err != nil {
			return relay.RawResponse{}, fmt.Errorf("decoding script server response: %w", err)
		}
	}

	return relay.RawResponse{Status: resp.StatusCode, Body: decoded}, nil
}

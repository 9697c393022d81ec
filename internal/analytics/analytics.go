// Package analytics reports anonymous tool usage to a tracking data
// plane. Tracking is best-effort: failures are logged and never affect
// the tool call that triggered them.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// secretKeys are argument names that must never leave the process.
var secretKeys = map[string]struct{}{
	"password":               {},
	"token":                  {},
	"private_key":            {},
	"private_key_file":       {},
	"private_key_passphrase": {},
}

// Client posts track events to the configured data plane. A client with
// an empty write key is disabled and drops every event silently, which
// keeps call sites unconditional.
type Client struct {
	writeKey     string
	dataPlaneURL string
	anonymousID  string
	httpc        *http.Client
}

// New creates an analytics client. Pass an empty writeKey to disable
// tracking entirely.
func New(writeKey, dataPlaneURL string) *Client {
	return &Client{
		writeKey:     writeKey,
		dataPlaneURL: dataPlaneURL,
		anonymousID:  uuid.NewString(),
		httpc:        &http.Client{Timeout: 5 * time.Second},
	}
}

// Enabled reports whether events will actually be sent.
func (c *Client) Enabled() bool {
	return c.writeKey != "" && c.dataPlaneURL != ""
}

type trackPayload struct {
	AnonymousID string         `json:"anonymousId"`
	MessageID   string         `json:"messageId"`
	Event       string         `json:"event"`
	Properties  map[string]any `json:"properties,omitempty"`
	Timestamp   string         `json:"timestamp"`
}

// Track sends one event. Properties are scrubbed of credential fields
// before serialization. Errors are logged to stderr and swallowed.
func (c *Client) Track(ctx context.Context, event string, properties map[string]any) {
	if !c.Enabled() {
		return
	}

	payload := trackPayload{
		AnonymousID: c.anonymousID,
		MessageID:   uuid.NewString(),
		Event:       event,
		Properties:  ScrubSecrets(properties),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("WARNING: analytics: encode %s: %v", event, err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.dataPlaneURL+"/v1/track", bytes.NewReader(body))
	if err != nil {
		log.Printf("WARNING: analytics: build request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.writeKey, "")

	resp, err := c.httpc.Do(req)
	if err != nil {
		log.Printf("WARNING: analytics: send %s: %v", event, err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		log.Printf("WARNING: analytics: data plane returned %s for %s", resp.Status, event)
	}
}

// ScrubSecrets returns a copy of properties with credential fields
// removed. Nested maps are scrubbed recursively. The input is never
// modified.
func ScrubSecrets(properties map[string]any) map[string]any {
	if properties == nil {
		return nil
	}
	out := make(map[string]any, len(properties))
	for k, v := range properties {
		if _, secret := secretKeys[k]; secret {
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = ScrubSecrets(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// String implements fmt.Stringer without leaking the write key.
func (c *Client) String() string {
	return fmt.Sprintf("analytics(enabled=%t)", c.Enabled())
}

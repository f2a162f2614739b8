// Package telephony talks to the Twilio REST API: placing outbound calls,
// steering in-progress calls with TwiML, and hanging up.
package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dialtone-ai/dialtone/internal/config"
)

// Client is a minimal Twilio REST client. Requests are form-encoded POSTs
// authenticated with the account SID and auth token.
type Client struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a telephony client from configuration.
func NewClient(cfg config.TelephonyConfig) (*Client, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("telephony credentials are required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.twilio.com/2010-04-01"
	}

	return &Client{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		fromNumber: cfg.PhoneNumber,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Credentials exposes the account credentials for collaborators that fetch
// recordings, which require the same basic auth.
func (c *Client) Credentials() (string, string) {
	return c.accountSID, c.authToken
}

// Call is the subset of the provider call resource this service reads.
type Call struct {
	SID    string `json:"sid"`
	To     string `json:"to"`
	From   string `json:"from"`
	Status string `json:"status"`
}

// StartCall dials an outbound call. voiceURL receives the call-flow webhook
// and statusURL the lifecycle updates; both must be publicly reachable HTTPS
// addresses, and a violation fails fast before any call is placed.
func (c *Client) StartCall(ctx context.Context, to, voiceURL, statusURL string) (*Call, error) {
	if err := ValidatePublicWebhookURL(voiceURL); err != nil {
		return nil, err
	}
	if err := ValidatePublicWebhookURL(statusURL); err != nil {
		return nil, err
	}

	data := url.Values{}
	data.Set("To", to)
	data.Set("From", c.fromNumber)
	data.Set("Url", voiceURL)
	data.Set("StatusCallback", statusURL)
	data.Set("StatusCallbackMethod", http.MethodPost)
	for _, event := range []string{"initiated", "ringing", "answered", "completed"} {
		data.Add("StatusCallbackEvent", event)
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls.json", c.baseURL, c.accountSID)

	var created Call
	if err := c.post(ctx, endpoint, data, &created); err != nil {
		return nil, fmt.Errorf("start call to %s: %w", to, err)
	}
	return &created, nil
}

// UpdateCallTwiML redirects an in-progress call to execute the given TwiML.
// This is how the assistant's reply reaches a caller mid-call.
func (c *Client) UpdateCallTwiML(ctx context.Context, callSID, twiml string) error {
	data := url.Values{}
	data.Set("Twiml", twiml)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls/%s.json", c.baseURL, c.accountSID, callSID)
	if err := c.post(ctx, endpoint, data, nil); err != nil {
		return fmt.Errorf("update call %s: %w", callSID, err)
	}
	return nil
}

// EndCall asks the provider to complete an in-progress call.
func (c *Client) EndCall(ctx context.Context, callSID string) error {
	data := url.Values{}
	data.Set("Status", "completed")

	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls/%s.json", c.baseURL, c.accountSID, callSID)
	if err := c.post(ctx, endpoint, data, nil); err != nil {
		return fmt.Errorf("end call %s: %w", callSID, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, data url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("provider responded %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

package stokercloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"boiler-status-backend/internal/logger"
)

const (
	loginPath          = "login.php"
	controllerDataPath = "controllerdata2.php"
	eventDataPath      = "geteventdata.php"
)

// Record is one raw event-log entry as returned by the remote service:
// a flat mapping of scalar values. Records are never mutated after fetch.
type Record = map[string]any

// Client talks to the StokerCloud HTTP contract. The contract is fixed by
// the third party and inconsistent about HTTP status codes, so every
// response is parsed defensively.
type Client struct {
	baseURL        string
	translationURL string
	client         *http.Client
	log            *logger.Logger
}

// NewClient creates a client for the given endpoints. An invalid proxy URL
// is logged and ignored rather than failing startup.
func NewClient(baseURL, translationURL, httpProxy string, timeout time.Duration, log *logger.Logger) *Client {
	var transport http.RoundTripper = &http.Transport{}
	if httpProxy != "" {
		proxyURL, err := url.Parse(httpProxy)
		if err != nil {
			log.Warnw("invalid proxy URL, continuing without proxy", "proxy", httpProxy, "err", err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		translationURL: strings.TrimRight(translationURL, "/"),
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		log: log,
	}
}

// Login performs the username-only login and returns a fresh token. Retry
// policy belongs to the caller: a rejected or unreachable login is returned
// as *AuthError without any attempt to log in again.
func (c *Client) Login(ctx context.Context, username string) (Token, error) {
	params := url.Values{"user": {username}}
	payload, err := c.requestJSON(ctx, http.MethodGet, c.baseURL+"/"+loginPath, params)
	if err != nil {
		return Token{}, &AuthError{Message: "login failed", Cause: err}
	}

	body, ok := payload.(map[string]any)
	if !ok {
		return Token{}, &AuthError{Message: "unexpected login payload"}
	}
	tokenValue, ok := body["token"].(string)
	if !ok || tokenValue == "" {
		msg := "login response missing token"
		if m, ok := body["message"].(string); ok && m != "" {
			msg = m
		}
		return Token{}, &AuthError{Message: msg}
	}

	return Token{Value: tokenValue, ObtainedAt: time.Now().UTC()}, nil
}

// ControllerData fetches one telemetry payload for the given screen.
func (c *Client) ControllerData(ctx context.Context, screen string, token Token) (map[string]any, error) {
	params := url.Values{"screen": {screen}, "token": {token.Value}}
	payload, err := c.requestJSON(ctx, http.MethodGet, c.baseURL+"/"+controllerDataPath, params)
	if err != nil {
		return nil, err
	}

	body, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected controller data payload")
	}
	if _, ok := body["miscdata"]; !ok {
		return nil, fmt.Errorf("controller data payload missing miscdata")
	}
	return body, nil
}

// EventLog fetches one page of historical event records, most recent first.
// The order is preserved exactly as returned.
func (c *Client) EventLog(ctx context.Context, count, offset int, token Token) ([]Record, error) {
	params := url.Values{
		"count":  {strconv.Itoa(count)},
		"offset": {strconv.Itoa(offset)},
		"token":  {token.Value},
	}
	payload, err := c.requestJSON(ctx, http.MethodGet, c.baseURL+"/"+eventDataPath, params)
	if err != nil {
		return nil, err
	}
	return extractEvents(payload), nil
}

// Translations downloads the flat key-to-text mapping for a language. The
// document needs no auth. Non-string entries are dropped.
func (c *Client) Translations(ctx context.Context, language string) (map[string]string, error) {
	payload, err := c.requestJSON(ctx, http.MethodGet, c.translationURL+"/"+language+".json", nil)
	if err != nil {
		return nil, err
	}

	body, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected translation payload")
	}
	table := make(map[string]string, len(body))
	for key, value := range body {
		if text, ok := value.(string); ok {
			table[key] = text
		}
	}
	return table, nil
}

// extractEvents digs the record list out of whatever shape the event
// endpoint returned. The endpoint has been observed to return a bare list, a
// wrapper object with one of several well-known keys, and wrapper objects
// with arbitrary keys.
func extractEvents(payload any) []Record {
	toRecords := func(items []any) []Record {
		records := make([]Record, 0, len(items))
		for _, item := range items {
			if rec, ok := item.(map[string]any); ok {
				records = append(records, rec)
			}
		}
		return records
	}

	if items, ok := payload.([]any); ok {
		return toRecords(items)
	}

	body, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	for _, key := range []string{"events", "eventdata", "data", "items", "rows", "log"} {
		if items, ok := body[key].([]any); ok {
			return toRecords(items)
		}
	}
	for _, value := range body {
		if items, ok := value.([]any); ok {
			records := toRecords(items)
			if len(records) > 0 {
				return records
			}
		}
	}
	return nil
}

// requestJSON issues one request and decodes the JSON body. StokerCloud does
// not consistently use HTTP status codes for errors, so the application
// "status" field inside the body is checked as well, and auth failures are
// sniffed out of the message text.
func (c *Client) requestJSON(ctx context.Context, method, rawURL string, params url.Values) (any, error) {
	reqURL := rawURL
	if len(params) > 0 {
		reqURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &AuthError{Message: fmt.Sprintf("received status code %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if obj, ok := payload.(map[string]any); ok {
		if err := checkAppStatus(obj); err != nil {
			return nil, err
		}
	}
	return payload, nil
}

// checkAppStatus inspects the application-level status field of a response
// object. Status 0 (or absent) means success; 401/403 or a token-related
// failure message means the token was rejected.
func checkAppStatus(body map[string]any) error {
	status, present := body["status"]
	if !present {
		return nil
	}

	code := fmt.Sprintf("%v", status)
	switch code {
	case "0":
		return nil
	case "401", "403":
		return &AuthError{Message: statusMessage(body)}
	}

	message := statusMessage(body)
	lowered := strings.ToLower(message)
	if strings.Contains(lowered, "token") &&
		(strings.Contains(lowered, "expired") ||
			strings.Contains(lowered, "invalid") ||
			strings.Contains(lowered, "reject")) {
		return &AuthError{Message: message}
	}
	return fmt.Errorf("API returned non-zero application status %s: %s", code, message)
}

func statusMessage(body map[string]any) string {
	if m, ok := body["message"].(string); ok && m != "" {
		return m
	}
	return "request failed"
}

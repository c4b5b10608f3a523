// Package addin provides the client SDK used by the mail add-in to talk
// to the presence endpoints, including the visibility-driven poller.
package addin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Reasons returned inside the envelope when a lookup yields no data.
const (
	ReasonInvalidEmail    = "invalid_email"
	ReasonUnmappedDomain  = "unmapped_domain"
	ReasonTenancyDisabled = "tenancy_disabled"
	ReasonFeatureDisabled = "feature_disabled"
	ReasonNoPresence      = "no_presence"
	ReasonFetchFailed     = "fetch_failed"
)

// ErrPresenceFetchFailed is the error marker the service sets on a hard
// upstream fault. Deny reasons are render decisions; this is a failure.
const ErrPresenceFetchFailed = "presence_fetch_failed"

// Presence is the presence payload for a person.
type Presence struct {
	Activity     *string `json:"activity"`
	Availability *string `json:"availability"`
	FetchedAt    string  `json:"fetchedAt"`
	TTL          int     `json:"ttl"`
	Cached       bool    `json:"cached"`
}

// OutOfOffice is the automatic-replies payload for a person.
type OutOfOffice struct {
	Status   string  `json:"status"`
	Message  *string `json:"message"`
	StartsAt *string `json:"startsAt"`
	EndsAt   *string `json:"endsAt"`
}

// Meta describes where the answer came from.
type Meta struct {
	Cached    bool   `json:"cached"`
	FetchedAt string `json:"fetchedAt"`
	TTL       int    `json:"ttl"`
}

// Result is the decoded envelope of a lookup. The endpoint always
// answers HTTP 200; failures arrive as OK=false with a reason, plus the
// error marker on hard faults. Data stays raw because its shape depends
// on the endpoint; the typed accessors below decode it.
type Result struct {
	OK     bool            `json:"ok"`
	Reason string          `json:"reason"`
	Error  string          `json:"error"`
	Data   json.RawMessage `json:"data"`
	Meta   *Meta           `json:"meta"`
}

// PresenceData decodes the data portion of a presence lookup. A nil
// payload means the envelope carried no data.
func (r Result) PresenceData() (*Presence, error) {
	if !r.hasData() {
		return nil, nil
	}

	var p Presence
	if err := json.Unmarshal(r.Data, &p); err != nil {
		return nil, fmt.Errorf("decode presence: %w", err)
	}

	return &p, nil
}

// OutOfOfficeData decodes the data portion of an out-of-office lookup.
// A nil payload means the envelope carried no data.
func (r Result) OutOfOfficeData() (*OutOfOffice, error) {
	if !r.hasData() {
		return nil, nil
	}

	var ooo OutOfOffice
	if err := json.Unmarshal(r.Data, &ooo); err != nil {
		return nil, fmt.Errorf("decode out of office: %w", err)
	}

	return &ooo, nil
}

func (r Result) hasData() bool {
	return len(r.Data) != 0 && string(r.Data) != "null"
}

// Options adjusts a single presence lookup.
type Options struct {
	NoCache bool
	TTL     int
}

// Client calls the presence endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures optional client settings.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.http = httpClient
	}
}

// NewClient constructs a client for the given service base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := Client{
		baseURL: baseURL,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(&c)
	}

	return &c
}

// Presence looks up the presence for email.
func (c *Client) Presence(ctx context.Context, email string, opts Options) (Result, error) {
	return c.get(ctx, "/v1/presence/"+url.PathEscape(email), opts)
}

// OutOfOffice looks up the automatic-replies status for email. Decode
// the payload with Result.OutOfOfficeData.
func (c *Client) OutOfOffice(ctx context.Context, email string, opts Options) (Result, error) {
	return c.get(ctx, "/v1/outofoffice/"+url.PathEscape(email), opts)
}

func (c *Client) get(ctx context.Context, path string, opts Options) (Result, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return Result{}, fmt.Errorf("parse url: %w", err)
	}

	q := u.Query()
	if opts.NoCache {
		q.Set("noCache", "true")
	}
	if opts.TTL > 0 {
		q.Set("ttl", strconv.Itoa(opts.TTL))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decode envelope: %w", err)
	}

	return result, nil
}

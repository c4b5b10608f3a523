// Package graphapi implements the presencebus.Provider interface against
// the Microsoft Graph REST API. Credentials are acquired per tenancy with
// the client-credentials flow; tokens are cached by the credential itself.
package graphapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/google/uuid"
	"github.com/intradir/intradir/business/domain/presencebus"
	"github.com/intradir/intradir/business/domain/tenancybus"
	"github.com/intradir/intradir/foundation/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL = "https://graph.microsoft.com/v1.0"
	callTimeout    = 10 * time.Second
)

var scopes = []string{"https://graph.microsoft.com/.default"}

type cachedCredential struct {
	clientID   string
	secret     string
	credential azcore.TokenCredential
}

// Store manages the set of APIs for Graph presence access.
type Store struct {
	log     *logger.Logger
	baseURL string
	client  *http.Client

	mu    sync.Mutex
	creds map[uuid.UUID]cachedCredential
}

// Option overrides a Store default.
type Option func(*Store)

// WithBaseURL points the store at a different Graph endpoint. Tests use
// this to target a local server.
func WithBaseURL(baseURL string) Option {
	return func(s *Store) {
		s.baseURL = baseURL
	}
}

// WithHTTPClient replaces the outbound client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) {
		s.client = client
	}
}

// NewStore constructs the api for Graph access.
func NewStore(log *logger.Logger, opts ...Option) *Store {
	s := Store{
		log:     log,
		baseURL: defaultBaseURL,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   callTimeout,
		},
		creds: make(map[uuid.UUID]cachedCredential),
	}

	for _, opt := range opts {
		opt(&s)
	}

	return &s
}

// UserID resolves an email address to the Graph user object id.
func (s *Store) UserID(ctx context.Context, tn tenancybus.Tenancy, email string) (string, error) {
	var body struct {
		ID string `json:"id"`
	}

	path := fmt.Sprintf("/users/%s?$select=id", url.PathEscape(email))
	if err := s.get(ctx, tn, path, &body); err != nil {
		return "", err
	}

	return body.ID, nil
}

// Presence fetches the presence for a Graph user object id.
func (s *Store) Presence(ctx context.Context, tn tenancybus.Tenancy, userID string) (presencebus.Snapshot, error) {
	var body struct {
		Activity     *string `json:"activity"`
		Availability *string `json:"availability"`
	}

	path := fmt.Sprintf("/users/%s/presence", url.PathEscape(userID))
	if err := s.get(ctx, tn, path, &body); err != nil {
		return presencebus.Snapshot{}, err
	}

	return presencebus.Snapshot{
		Activity:     body.Activity,
		Availability: body.Availability,
	}, nil
}

// OutOfOffice fetches the automatic reply settings for a Graph user
// object id.
func (s *Store) OutOfOffice(ctx context.Context, tn tenancybus.Tenancy, userID string) (presencebus.OutOfOffice, error) {
	var body struct {
		AutomaticRepliesSetting struct {
			Status                 string     `json:"status"`
			ExternalReplyMessage   *string    `json:"externalReplyMessage"`
			ScheduledStartDateTime *graphTime `json:"scheduledStartDateTime"`
			ScheduledEndDateTime   *graphTime `json:"scheduledEndDateTime"`
		} `json:"automaticRepliesSetting"`
	}

	path := fmt.Sprintf("/users/%s/mailboxSettings?$select=automaticRepliesSetting", url.PathEscape(userID))
	if err := s.get(ctx, tn, path, &body); err != nil {
		return presencebus.OutOfOffice{}, err
	}

	ars := body.AutomaticRepliesSetting

	return presencebus.OutOfOffice{
		Status:   ars.Status,
		Message:  ars.ExternalReplyMessage,
		StartsAt: ars.ScheduledStartDateTime.timePtr(),
		EndsAt:   ars.ScheduledEndDateTime.timePtr(),
	}, nil
}

// get performs an authenticated GET against the Graph API and decodes the
// response into dest. 403 and 404 map to ErrNoPresence.
func (s *Store) get(ctx context.Context, tn tenancybus.Tenancy, path string, dest any) error {
	token, err := s.token(ctx, tn)
	if err != nil {
		return fmt.Errorf("acquiring token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling graph: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return presencebus.ErrNoPresence

	case resp.StatusCode != http.StatusOK:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("graph status %d: %s", resp.StatusCode, string(data))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// token returns a bearer token for the tenancy, building and caching the
// credential on first use. A changed client id or secret rebuilds it.
func (s *Store) token(ctx context.Context, tn tenancybus.Tenancy) (string, error) {
	s.mu.Lock()
	cached, exists := s.creds[tn.ID]
	if !exists || cached.clientID != tn.ClientID || cached.secret != tn.ClientSecret {
		credential, err := azidentity.NewClientSecretCredential(tn.TenantID.String(), tn.ClientID, tn.ClientSecret, nil)
		if err != nil {
			s.mu.Unlock()
			return "", fmt.Errorf("building credential: %w", err)
		}

		cached = cachedCredential{
			clientID:   tn.ClientID,
			secret:     tn.ClientSecret,
			credential: credential,
		}
		s.creds[tn.ID] = cached
	}
	s.mu.Unlock()

	token, err := cached.credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: scopes})
	if err != nil {
		return "", err
	}

	return token.Token, nil
}

// graphTime decodes Graph's dateTimeTimeZone shape.
type graphTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

func (g *graphTime) timePtr() *time.Time {
	if g == nil || g.DateTime == "" {
		return nil
	}

	value := g.DateTime
	if len(value) > 19 {
		value = value[:19]
	}

	t, err := time.Parse("2006-01-02T15:04:05", value)
	if err != nil {
		return nil
	}

	loc, err := time.LoadLocation(g.TimeZone)
	if err == nil && g.TimeZone != "" {
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
	}

	return &t
}

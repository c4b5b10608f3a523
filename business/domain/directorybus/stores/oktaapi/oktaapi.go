// Package oktaapi implements the directorybus.Searcher interface against
// the Okta Users API using an SSWS API token.
package oktaapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/intradir/intradir/business/domain/directorybus"
	"github.com/intradir/intradir/foundation/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	callTimeout = 10 * time.Second
	maxTries    = 4
)

// Config holds the settings needed to talk to Okta.
type Config struct {
	OrgURL   string
	APIToken string
}

// Store manages the set of APIs for Okta directory access.
type Store struct {
	log    *logger.Logger
	cfg    Config
	client *http.Client
}

// NewStore constructs the api for Okta access.
func NewStore(log *logger.Logger, cfg Config) *Store {
	return &Store{
		log: log,
		cfg: cfg,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   callTimeout,
		},
	}
}

type oktaUser struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	LastUpdated time.Time `json:"lastUpdated"`
	Profile     struct {
		Login       string  `json:"login"`
		Email       string  `json:"email"`
		FirstName   string  `json:"firstName"`
		LastName    string  `json:"lastName"`
		DisplayName string  `json:"displayName"`
		Title       *string `json:"title"`
		Department  *string `json:"department"`
		MobilePhone *string `json:"mobilePhone"`
	} `json:"profile"`
}

// Search queries Okta for users matching the given string across login,
// email, first and last name.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]directorybus.Person, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))

	users, err := s.get(ctx, "/api/v1/users?"+q.Encode())
	if err != nil {
		return nil, err
	}

	people := make([]directorybus.Person, len(users))
	for i, u := range users {
		people[i] = toBusPerson(u)
	}

	return people, nil
}

// QueryByLogin finds a single user by their Okta login.
func (s *Store) QueryByLogin(ctx context.Context, login string) (directorybus.Person, error) {
	q := url.Values{}
	q.Set("search", fmt.Sprintf("profile.login eq %q", login))
	q.Set("limit", "1")

	users, err := s.get(ctx, "/api/v1/users?"+q.Encode())
	if err != nil {
		return directorybus.Person{}, err
	}

	if len(users) == 0 {
		return directorybus.Person{}, directorybus.ErrNotFound
	}

	return toBusPerson(users[0]), nil
}

// get performs an authenticated GET with exponential backoff on 429 and
// 5xx responses. Other failures are permanent.
func (s *Store) get(ctx context.Context, path string) ([]oktaUser, error) {
	operation := func() ([]oktaUser, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.OrgURL+path, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("Authorization", "SSWS "+s.cfg.APIToken)
		req.Header.Set("Accept", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("calling okta: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			io.Copy(io.Discard, resp.Body)
			return nil, fmt.Errorf("okta status %d", resp.StatusCode)

		case resp.StatusCode != http.StatusOK:
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, backoff.Permanent(fmt.Errorf("okta status %d: %s", resp.StatusCode, string(data)))
		}

		var users []oktaUser
		if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decoding response: %w", err))
		}

		return users, nil
	}

	users, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(maxTries),
	)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func toBusPerson(u oktaUser) directorybus.Person {
	return directorybus.Person{
		ID:          u.ID,
		Login:       u.Profile.Login,
		Email:       u.Profile.Email,
		FirstName:   u.Profile.FirstName,
		LastName:    u.Profile.LastName,
		DisplayName: u.Profile.DisplayName,
		Title:       u.Profile.Title,
		Department:  u.Profile.Department,
		MobilePhone: u.Profile.MobilePhone,
		Status:      u.Status,
		UpdatedAt:   u.LastUpdated,
	}
}

package addin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/intradir/intradir/sdk/addin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, wantPath string, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestClientPresence(t *testing.T) {
	body := `{
		"ok": true,
		"data": {"activity":"Available","availability":"Available","fetchedAt":"2026-08-28T10:00:00Z","ttl":60,"cached":true},
		"meta": {"cached":true,"fetchedAt":"2026-08-28T10:00:00Z","ttl":60}
	}`
	srv := newTestServer(t, "/v1/presence/ana@contoso.com", body)

	c := addin.NewClient(srv.URL)
	result, err := c.Presence(context.Background(), "ana@contoso.com", addin.Options{})
	require.NoError(t, err)
	assert.True(t, result.OK)

	p, err := result.PresenceData()
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Available", *p.Activity)
	assert.Equal(t, 60, p.TTL)
	assert.True(t, p.Cached)
}

func TestClientOutOfOffice(t *testing.T) {
	body := `{
		"ok": true,
		"data": {"status":"scheduled","message":"Back Monday","startsAt":"2026-08-28T00:00:00Z","endsAt":"2026-08-31T00:00:00Z"},
		"meta": {"cached":false,"fetchedAt":"2026-08-28T10:00:00Z","ttl":300}
	}`
	srv := newTestServer(t, "/v1/outofoffice/ana@contoso.com", body)

	c := addin.NewClient(srv.URL)
	result, err := c.OutOfOffice(context.Background(), "ana@contoso.com", addin.Options{})
	require.NoError(t, err)
	require.True(t, result.OK)

	// The out-of-office payload survives the shared envelope.
	ooo, err := result.OutOfOfficeData()
	require.NoError(t, err)
	require.NotNil(t, ooo)
	assert.Equal(t, "scheduled", ooo.Status)
	require.NotNil(t, ooo.Message)
	assert.Equal(t, "Back Monday", *ooo.Message)
	require.NotNil(t, ooo.StartsAt)
	assert.Equal(t, "2026-08-28T00:00:00Z", *ooo.StartsAt)
}

func TestClientFetchFailed(t *testing.T) {
	body := `{"ok":false,"reason":"fetch_failed","error":"presence_fetch_failed","data":null}`
	srv := newTestServer(t, "/v1/presence/ana@contoso.com", body)

	c := addin.NewClient(srv.URL)
	result, err := c.Presence(context.Background(), "ana@contoso.com", addin.Options{})
	require.NoError(t, err)

	assert.False(t, result.OK)
	assert.Equal(t, addin.ReasonFetchFailed, result.Reason)
	assert.Equal(t, addin.ErrPresenceFetchFailed, result.Error)

	p, err := result.PresenceData()
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestClientQueryParameters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("noCache"))
		assert.Equal(t, "60", r.URL.Query().Get("ttl"))
		w.Write([]byte(`{"ok":true,"data":null}`))
	}))
	t.Cleanup(srv.Close)

	c := addin.NewClient(srv.URL)
	_, err := c.Presence(context.Background(), "ana@contoso.com", addin.Options{NoCache: true, TTL: 60})
	require.NoError(t, err)
}

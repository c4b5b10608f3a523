package presenceapp

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/intradir/intradir/business/domain/presencebus"
)

// Reasons the addin surface reports when a lookup yields no data. They
// ride inside the envelope so the client never has to branch on HTTP
// status codes.
const (
	reasonInvalidEmail    = "invalid_email"
	reasonUnmappedDomain  = "unmapped_domain"
	reasonTenancyDisabled = "tenancy_disabled"
	reasonFeatureDisabled = "feature_disabled"
	reasonNoPresence      = "no_presence"
	reasonFetchFailed     = "fetch_failed"
)

// errFetchFailed marks a hard upstream fault. Deny reasons describe why
// no data is shown; the error key is the only true failure marker.
const errFetchFailed = "presence_fetch_failed"

// meta describes where the answer came from.
type meta struct {
	Cached    bool   `json:"cached"`
	FetchedAt string `json:"fetchedAt,omitempty"`
	TTL       int    `json:"ttl,omitempty"`
}

// envelope is the uniform addin response. It always travels with HTTP
// 200; failures are data, not transport errors.
type envelope struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data"`
	Meta   *meta  `json:"meta,omitempty"`
}

// Encode implements the web.Encoder interface.
func (e envelope) Encode() ([]byte, string, error) {
	data, err := json.Marshal(e)
	return data, "application/json", err
}

// HTTPStatus implements the web package httpStatus interface.
func (e envelope) HTTPStatus() int {
	return http.StatusOK
}

func deny(reason string) envelope {
	return envelope{Reason: reason}
}

func fail() envelope {
	return envelope{Reason: reasonFetchFailed, Error: errFetchFailed}
}

// presenceData is the payload for a presence lookup. It repeats the
// cache facts from meta so the addin can render from data alone.
type presenceData struct {
	Activity     *string `json:"activity"`
	Availability *string `json:"availability"`
	FetchedAt    string  `json:"fetchedAt"`
	TTL          int     `json:"ttl"`
	Cached       bool    `json:"cached"`
}

func toEnvelope(snap presencebus.Snapshot) envelope {
	return envelope{
		OK: true,
		Data: presenceData{
			Activity:     snap.Activity,
			Availability: snap.Availability,
			FetchedAt:    snap.FetchedAt.Format(time.RFC3339),
			TTL:          snap.TTL,
			Cached:       snap.Cached,
		},
		Meta: &meta{
			Cached:    snap.Cached,
			FetchedAt: snap.FetchedAt.Format(time.RFC3339),
			TTL:       snap.TTL,
		},
	}
}

// oooData is the payload for an out-of-office lookup.
type oooData struct {
	Status   string  `json:"status"`
	Message  *string `json:"message,omitempty"`
	StartsAt *string `json:"startsAt,omitempty"`
	EndsAt   *string `json:"endsAt,omitempty"`
}

func toOOOEnvelope(ooo presencebus.OutOfOffice) envelope {
	data := oooData{
		Status:  ooo.Status,
		Message: ooo.Message,
	}

	if ooo.StartsAt != nil {
		s := ooo.StartsAt.Format(time.RFC3339)
		data.StartsAt = &s
	}
	if ooo.EndsAt != nil {
		s := ooo.EndsAt.Format(time.RFC3339)
		data.EndsAt = &s
	}

	return envelope{
		OK:   true,
		Data: data,
		Meta: &meta{
			Cached:    ooo.Cached,
			FetchedAt: ooo.FetchedAt.Format(time.RFC3339),
			TTL:       ooo.TTL,
		},
	}
}

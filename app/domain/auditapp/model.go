package auditapp

import (
	"encoding/json"
	"time"

	"github.com/intradir/intradir/business/domain/auditbus"
)

// Entry represents one audit log record on the admin surface.
type Entry struct {
	ID          string         `json:"id"`
	ActorID     string         `json:"actorId"`
	ActorEmail  string         `json:"actorEmail,omitempty"`
	Action      string         `json:"action"`
	Entity      string         `json:"entity"`
	EntityID    string         `json:"entityId,omitempty"`
	Detail      map[string]any `json:"detail,omitempty"`
	DateCreated string         `json:"dateCreated"`
}

// Encode implements the web.Encoder interface.
func (e Entry) Encode() ([]byte, string, error) {
	data, err := json.Marshal(e)
	return data, "application/json", err
}

func toAppEntry(bus auditbus.Entry) Entry {
	return Entry{
		ID:          bus.ID.String(),
		ActorID:     bus.ActorID.String(),
		ActorEmail:  bus.ActorEmail,
		Action:      bus.Action,
		Entity:      bus.Entity,
		EntityID:    bus.EntityID,
		Detail:      bus.Detail,
		DateCreated: bus.CreatedAt.Format(time.RFC3339),
	}
}

func toAppEntries(entries []auditbus.Entry) []Entry {
	app := make([]Entry, len(entries))
	for i, e := range entries {
		app[i] = toAppEntry(e)
	}
	return app
}

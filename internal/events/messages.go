package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

// Change operations.
const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpReplace = "replace"
)

// ChangeEvent announces that one domain's records changed. It carries no
// record data: consumers reload the domain from the store.
type ChangeEvent struct {
	Domain    string    `json:"domain"`
	Op        string    `json:"op"`
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeEvent stamps a change with the current time.
func NewChangeEvent(domain, op, id string) ChangeEvent {
	return ChangeEvent{
		Domain:    domain,
		Op:        op,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ChangeEventFromJSON decodes an event and rejects ones without a known domain.
func ChangeEventFromJSON(data []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ChangeEvent{}, err
	}
	if ev.Domain == "" {
		return ChangeEvent{}, errors.New("change event without domain")
	}
	if !slices.Contains(core.Domains, ev.Domain) {
		return ChangeEvent{}, fmt.Errorf("change event for unknown domain %q", ev.Domain)
	}
	return ev, nil
}

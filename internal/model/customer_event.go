// internal/model/customer_event.go
package model

import "time"

const (
	CustomerCreated = "customer.created"
	CustomerUpdated = "customer.updated"
	CustomerDeleted = "customer.deleted"
)

// CustomerEvent is the change notification published after a successful write.
type CustomerEvent struct {
	Type       string    `json:"type"`
	Customer   Customer  `json:"customer"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewCustomerEvent(eventType string, c Customer) CustomerEvent {
	return CustomerEvent{
		Type:       eventType,
		Customer:   c,
		OccurredAt: time.Now().UTC(),
	}
}

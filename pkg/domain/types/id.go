package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// EventID is a UUID-based identifier for an episodic event. It is unique
// within a profile and doubles as the identity of the event's vector index
// item.
type EventID string

// NewEventID generates a new UUID v4 EventID
func NewEventID() EventID {
	return EventID(uuid.New().String())
}

// Validate checks if the EventID is a well-formed UUID
func (id EventID) Validate() error {
	if id == "" {
		return goerr.New("event ID is empty")
	}
	if _, err := uuid.Parse(string(id)); err != nil {
		return goerr.Wrap(err, "invalid event ID", goerr.V("id", string(id)))
	}
	return nil
}

// String returns the string representation of the EventID
func (id EventID) String() string {
	return string(id)
}

// WorkID identifies a request/response pair crossing a worker boundary
type WorkID string

// NewWorkID generates a new UUID v4 WorkID
func NewWorkID() WorkID {
	return WorkID(uuid.New().String())
}

// String returns the string representation of the WorkID
func (id WorkID) String() string {
	return string(id)
}

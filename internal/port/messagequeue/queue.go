// Package messagequeue defines the message queue port (interface).
package messagequeue

import "context"

// Handler processes a message received from the queue.
type Handler func(subject string, data []byte) error

// Queue is the port interface for publishing and subscribing to messages.
type Queue interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Subscribe registers a handler for messages on the given subject.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context, subject string, handler Handler) (cancel func(), err error)

	// Close shuts down the queue connection.
	Close() error
}

// Subjects published by the agreement engine.
const (
	// SubjectSectionsChanged announces a write to agreement_sections so
	// every instance can drop its cached resolution for the affected scope.
	SubjectSectionsChanged = "agreements.sections.changed"

	// SubjectDocumentGenerated announces a completed document assembly for
	// audit trails and downstream consumers (e-signing, archiving).
	SubjectDocumentGenerated = "agreements.generated"
)

// SectionsChangedEvent is the payload for SubjectSectionsChanged.
type SectionsChangedEvent struct {
	AgencyID   string `json:"agency_id"`
	LandlordID string `json:"landlord_id,omitempty"`
	Type       string `json:"agreement_type"`
}

// DocumentGeneratedEvent is the payload for SubjectDocumentGenerated.
type DocumentGeneratedEvent struct {
	AgencyID   string `json:"agency_id"`
	LandlordID string `json:"landlord_id,omitempty"`
	TenancyID  string `json:"tenancy_id,omitempty"`
	Type       string `json:"agreement_type"`
	Sections   int    `json:"sections"`
	Warnings   int    `json:"warnings"`
	Preview    bool   `json:"preview"`
}

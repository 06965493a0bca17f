package audit

import (
	"context"
	"time"

	id "malpot/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance: ownership
	// records and every decision taken on them.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity that may be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// ActorID is the authenticated user who performed the action.
	ActorID id.UserID
	// AggregateType and AggregateID name the record the event is about
	// ("land" or "transfer"). The outbox relay keys Kafka messages by
	// AggregateID so events for one record stay ordered.
	AggregateType string
	AggregateID   string
	// LandID is set on every event so a land's trail can be rebuilt.
	LandID    id.LandID
	Action    string
	Decision  string
	Reason    string
	RequestID string
}

type AuditEvent string

const (
	EventLandRegistered   AuditEvent = "land_registered"
	EventTransferApplied  AuditEvent = "transfer_applied"
	EventTransferApproved AuditEvent = "transfer_approved"
	EventTransferRejected AuditEvent = "transfer_rejected"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventLandRegistered:   CategoryCompliance,
	EventTransferApplied:  CategoryCompliance,
	EventTransferApproved: CategoryCompliance,
	EventTransferRejected: CategoryCompliance,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. Implementations must honor a transaction
// carried in ctx so events commit with the change they describe.
type Store interface {
	Append(ctx context.Context, event Event) error
}

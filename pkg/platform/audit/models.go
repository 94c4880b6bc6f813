package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing per sink.
type EventCategory string

const (
	// CategoryCompliance covers changes to who is trusted: requests,
	// approvals, revocations and admin handovers. Long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers refused privileged calls, fed to alerting.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers everything else.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from the registry service for every mutation attempt
// worth keeping. Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Category  EventCategory
	Timestamp time.Time
	// Ordinal is the registry ordinal (block height) the action was applied at.
	Ordinal uint64
	Action  string
	// Actor is the caller identity; Subject is the renter (or new admin) acted on.
	Actor     string
	Subject   string
	Decision  string
	Reason    string
	RequestID string
}

type AuditEvent string

const (
	EventAdminChanged          AuditEvent = "registry_admin_changed"
	EventVerificationRequested AuditEvent = "verification_requested"
	EventVerificationApproved  AuditEvent = "verification_approved"
	EventVerificationRevoked   AuditEvent = "verification_revoked"
	EventAccessDenied          AuditEvent = "registry_access_denied"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAdminChanged:          CategoryCompliance,
	EventVerificationRequested: CategoryCompliance,
	EventVerificationApproved:  CategoryCompliance,
	EventVerificationRevoked:   CategoryCompliance,
	EventAccessDenied:          CategorySecurity,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister is implemented by stores that can be queried back.
type Lister interface {
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}

package domain

const (
	EventConflictCreated   = "conflict.created"
	EventConflictResolved  = "conflict.resolved"
	EventConflictDismissed = "conflict.dismissed"
)

// ConflictEvent is the payload handed to the notification collaborator.
// Delivery is best-effort; failures never roll back conflict state.
type ConflictEvent struct {
	Name            string           `json:"name"`
	ConflictID      string           `json:"conflict_id"`
	DealID          string           `json:"deal_id"`
	CompetingDealID string           `json:"competing_deal_id"`
	Type            ConflictType     `json:"conflict_type"`
	Severity        ConflictSeverity `json:"severity"`
	Resolution      ResolutionStatus `json:"resolution,omitempty"`
}

type ConflictEventPublisher interface {
	PublishConflictEvent(event ConflictEvent) error
}

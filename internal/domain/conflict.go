package domain

import (
	"context"
	"time"
)

type ConflictType string

const (
	ConflictDuplicateEndUser ConflictType = "DUPLICATE_END_USER"
	ConflictTerritoryOverlap ConflictType = "TERRITORY_OVERLAP"
	ConflictTimingConflict   ConflictType = "TIMING_CONFLICT"
)

type ConflictSeverity string

const (
	SeverityHigh   ConflictSeverity = "HIGH"
	SeverityMedium ConflictSeverity = "MEDIUM"
	SeverityLow    ConflictSeverity = "LOW"
)

type ResolutionStatus string

const (
	ResolutionPending   ResolutionStatus = "PENDING"
	ResolutionResolved  ResolutionStatus = "RESOLVED"
	ResolutionDismissed ResolutionStatus = "DISMISSED"
)

// Conflict is a recorded collision between two deals. DealID is always the
// newly submitted side of the pair. Conflicts are never deleted; resolution
// moves them to a terminal status.
type Conflict struct {
	ID               string
	DealID           string
	CompetingDealID  string
	Type             ConflictType
	Severity         ConflictSeverity
	Reason           string
	ResolutionStatus ResolutionStatus
	AssignedStaffID  string
	CreatedAt        time.Time
	ResolvedAt       *time.Time
}

func (c *Conflict) IsTerminal() bool {
	return c.ResolutionStatus == ResolutionResolved || c.ResolutionStatus == ResolutionDismissed
}

type GetConflictsFilter struct {
	DealID           *string
	ResolutionStatus *string
	ConflictType     *string
	AssignedStaffID  *string
	Page             int
	Limit            int
}

// ResolveConflictParams describes the combined conflict+deal update applied
// atomically when staff resolves a conflict.
type ResolveConflictParams struct {
	ConflictID         string
	NewStatus          ResolutionStatus
	AssignedStaffID    string
	WinningDealID      string
	AssignedResellerID string
	ResolvedAt         time.Time
}

type ConflictRepository interface {
	CreateConflict(ctx context.Context, conflict *Conflict) error
	GetConflictByID(ctx context.Context, conflictID string) (*Conflict, error)
	// GetOpenConflicts returns pending conflicts referencing the deal on
	// either side of the pair.
	GetOpenConflicts(ctx context.Context, dealID string) ([]*Conflict, error)
	// GetOpenConflictForPair returns the pending conflict of the given type
	// for the unordered (dealA, dealB) pair, or nil when none exists.
	GetOpenConflictForPair(ctx context.Context, dealA, dealB string, conflictType ConflictType) (*Conflict, error)
	GetConflicts(ctx context.Context, filter GetConflictsFilter) ([]*Conflict, int64, error)
	// ResolveConflictTx applies the conflict status change and, for a
	// resolution with a winner, the deal assignment in a single transaction.
	// Fails with ErrDealHasOpenConflicts when other open conflicts still
	// reference the winning deal; a deal is only ever assigned clean.
	ResolveConflictTx(ctx context.Context, params ResolveConflictParams) error
}

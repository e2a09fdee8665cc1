package response

import (
	"time"

	"github.com/channelone/dealreg-conflict-service/internal/domain"
)

type ConflictResponse struct {
	ID               string     `json:"id"`
	DealID           string     `json:"dealId"`
	CompetingDealID  string     `json:"competingDealId"`
	Type             string     `json:"type"`
	Severity         string     `json:"severity"`
	Reason           string     `json:"reason"`
	ResolutionStatus string     `json:"resolutionStatus"`
	AssignedStaffID  string     `json:"assignedStaffId,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	ResolvedAt       *time.Time `json:"resolvedAt,omitempty"`
}

func ToConflictResponse(conflict *domain.Conflict) ConflictResponse {
	return ConflictResponse{
		ID:               conflict.ID,
		DealID:           conflict.DealID,
		CompetingDealID:  conflict.CompetingDealID,
		Type:             string(conflict.Type),
		Severity:         string(conflict.Severity),
		Reason:           conflict.Reason,
		ResolutionStatus: string(conflict.ResolutionStatus),
		AssignedStaffID:  conflict.AssignedStaffID,
		CreatedAt:        conflict.CreatedAt,
		ResolvedAt:       conflict.ResolvedAt,
	}
}

type ListConflictsResponse struct {
	Conflicts  []ConflictResponse `json:"conflicts"`
	Pagination Pagination         `json:"pagination"`
}

type ResolveConflictResponse struct {
	Conflict ConflictResponse `json:"conflict"`
	Deal     DealResponse     `json:"deal"`
}

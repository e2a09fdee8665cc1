package mappers

import (
	"github.com/channelone/dealreg-conflict-service/internal/domain"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/postgres/models"
)

func ToDomainConflict(model *models.ConflictModel) *domain.Conflict {
	return &domain.Conflict{
		ID:               model.ID,
		DealID:           model.DealID,
		CompetingDealID:  model.CompetingDealID,
		Type:             domain.ConflictType(model.ConflictType),
		Severity:         domain.ConflictSeverity(model.Severity),
		Reason:           model.Reason,
		ResolutionStatus: domain.ResolutionStatus(model.ResolutionStatus),
		AssignedStaffID:  model.AssignedStaffID,
		CreatedAt:        model.CreatedAt,
		ResolvedAt:       model.ResolvedAt,
	}
}

func ToGORMConflict(conflict *domain.Conflict) *models.ConflictModel {
	pairMin, pairMax := conflict.DealID, conflict.CompetingDealID
	if pairMax < pairMin {
		pairMin, pairMax = pairMax, pairMin
	}
	return &models.ConflictModel{
		ID:               conflict.ID,
		DealID:           conflict.DealID,
		CompetingDealID:  conflict.CompetingDealID,
		PairMinDealID:    pairMin,
		PairMaxDealID:    pairMax,
		ConflictType:     string(conflict.Type),
		Severity:         string(conflict.Severity),
		Reason:           conflict.Reason,
		ResolutionStatus: string(conflict.ResolutionStatus),
		AssignedStaffID:  conflict.AssignedStaffID,
		CreatedAt:        conflict.CreatedAt,
		ResolvedAt:       conflict.ResolvedAt,
	}
}

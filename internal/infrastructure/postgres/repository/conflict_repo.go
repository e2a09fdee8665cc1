package repository

import (
	"context"
	"errors"

	"github.com/channelone/dealreg-conflict-service/internal/domain"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/postgres/mappers"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultConflictRepository struct {
	db *gorm.DB
}

func NewDefaultConflictRepository(db *gorm.DB) *DefaultConflictRepository {
	return &DefaultConflictRepository{db: db}
}

// CreateConflict inserts one conflict row. The partial unique index on
// (pair_min_deal_id, pair_max_deal_id, conflict_type) WHERE
// resolution_status='PENDING' backstops concurrent detection passes; a
// violation surfaces as ErrIntegrityViolation.
func (r *DefaultConflictRepository) CreateConflict(ctx context.Context, conflict *domain.Conflict) error {
	conflictModel := mappers.ToGORMConflict(conflict)
	if err := r.db.WithContext(ctx).Create(conflictModel).Error; err != nil {
		return translate(err, domain.ErrConflictNotFound)
	}
	conflict.CreatedAt = conflictModel.CreatedAt
	return nil
}

func (r *DefaultConflictRepository) GetConflictByID(ctx context.Context, conflictID string) (*domain.Conflict, error) {
	var conflictModel models.ConflictModel
	if err := r.db.WithContext(ctx).Model(&models.ConflictModel{}).Where("id = ?", conflictID).First(&conflictModel).Error; err != nil {
		return nil, translate(err, domain.ErrConflictNotFound)
	}
	return mappers.ToDomainConflict(&conflictModel), nil
}

func (r *DefaultConflictRepository) GetOpenConflicts(ctx context.Context, dealID string) ([]*domain.Conflict, error) {
	var conflictModels []models.ConflictModel
	if err := r.db.WithContext(ctx).Model(&models.ConflictModel{}).
		Where("resolution_status = ?", string(domain.ResolutionPending)).
		Where("deal_id = ? OR competing_deal_id = ?", dealID, dealID).
		Find(&conflictModels).Error; err != nil {
		return nil, translate(err, domain.ErrConflictNotFound)
	}

	conflicts := make([]*domain.Conflict, len(conflictModels))
	for i, conflictModel := range conflictModels {
		conflicts[i] = mappers.ToDomainConflict(&conflictModel)
	}
	return conflicts, nil
}

func (r *DefaultConflictRepository) GetOpenConflictForPair(ctx context.Context, dealA, dealB string, conflictType domain.ConflictType) (*domain.Conflict, error) {
	pairMin, pairMax := dealA, dealB
	if pairMax < pairMin {
		pairMin, pairMax = pairMax, pairMin
	}

	var conflictModel models.ConflictModel
	err := r.db.WithContext(ctx).Model(&models.ConflictModel{}).
		Where("pair_min_deal_id = ? AND pair_max_deal_id = ?", pairMin, pairMax).
		Where("conflict_type = ?", string(conflictType)).
		Where("resolution_status = ?", string(domain.ResolutionPending)).
		First(&conflictModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, domain.ErrConflictNotFound)
	}
	return mappers.ToDomainConflict(&conflictModel), nil
}

func (r *DefaultConflictRepository) GetConflicts(ctx context.Context, filter domain.GetConflictsFilter) ([]*domain.Conflict, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ConflictModel{})

	if filter.DealID != nil {
		query = query.Where("deal_id = ? OR competing_deal_id = ?", *filter.DealID, *filter.DealID)
	}
	if filter.ResolutionStatus != nil {
		query = query.Where("resolution_status = ?", *filter.ResolutionStatus)
	}
	if filter.ConflictType != nil {
		query = query.Where("conflict_type = ?", *filter.ConflictType)
	}
	if filter.AssignedStaffID != nil {
		query = query.Where("assigned_staff_id = ?", *filter.AssignedStaffID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, domain.ErrConflictNotFound)
	}

	offset := (filter.Page - 1) * filter.Limit
	var conflictModels []models.ConflictModel
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&conflictModels).Error; err != nil {
		return nil, 0, translate(err, domain.ErrConflictNotFound)
	}

	conflicts := make([]*domain.Conflict, len(conflictModels))
	for i, conflictModel := range conflictModels {
		conflicts[i] = mappers.ToDomainConflict(&conflictModel)
	}
	return conflicts, total, nil
}

// ResolveConflictTx applies the terminal conflict transition and, when a
// winner is chosen, the deal assignment in one transaction. The guard on
// resolution_status makes a terminal conflict unresolvable even under a
// concurrent-resolve race, and a winner still referenced by other open
// conflicts rolls the whole transaction back.
func (r *DefaultConflictRepository) ResolveConflictTx(ctx context.Context, params domain.ResolveConflictParams) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ConflictModel{}).
			Where("id = ? AND resolution_status = ?", params.ConflictID, string(domain.ResolutionPending)).
			Updates(map[string]interface{}{
				"resolution_status": string(params.NewStatus),
				"assigned_staff_id": params.AssignedStaffID,
				"resolved_at":       params.ResolvedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrConflictAlreadyTerminal
		}

		if params.WinningDealID != "" {
			// The conflict being resolved is already terminal inside this
			// tx, so any remaining open conflict on the winner belongs to
			// another pair and blocks the assignment.
			var remaining int64
			if err := tx.Model(&models.ConflictModel{}).
				Where("resolution_status = ?", string(domain.ResolutionPending)).
				Where("deal_id = ? OR competing_deal_id = ?", params.WinningDealID, params.WinningDealID).
				Count(&remaining).Error; err != nil {
				return err
			}
			if remaining > 0 {
				return domain.ErrDealHasOpenConflicts
			}

			res = tx.Model(&models.DealModel{}).
				Where("id = ?", params.WinningDealID).
				Updates(map[string]interface{}{
					"assigned_reseller_id": params.AssignedResellerID,
					"status":               string(domain.DealStatusAssigned),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrDealNotFound
			}
		}
		return nil
	})

	if err == nil ||
		errors.Is(err, domain.ErrIntegrityViolation) ||
		errors.Is(err, domain.ErrDealHasOpenConflicts) ||
		errors.Is(err, domain.ErrDealNotFound) {
		return err
	}
	return translate(err, domain.ErrConflictNotFound)
}

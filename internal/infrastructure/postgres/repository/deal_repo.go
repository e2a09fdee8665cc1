package repository

import (
	"context"

	"github.com/channelone/dealreg-conflict-service/internal/domain"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/postgres/mappers"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultDealRepository struct {
	db *gorm.DB
}

func NewDefaultDealRepository(db *gorm.DB) *DefaultDealRepository {
	return &DefaultDealRepository{db: db}
}

func (r *DefaultDealRepository) CreateDeal(ctx context.Context, deal *domain.Deal) error {
	dealModel := mappers.ToGORMDeal(deal)
	if err := r.db.WithContext(ctx).Create(dealModel).Error; err != nil {
		return translate(err, domain.ErrDealNotFound)
	}
	deal.CreatedAt = dealModel.CreatedAt
	deal.UpdatedAt = dealModel.UpdatedAt
	return nil
}

func (r *DefaultDealRepository) GetDealByID(ctx context.Context, dealID string) (*domain.Deal, error) {
	var dealModel models.DealModel
	if err := r.db.WithContext(ctx).Model(&models.DealModel{}).Where("id = ?", dealID).First(&dealModel).Error; err != nil {
		return nil, translate(err, domain.ErrDealNotFound)
	}
	return mappers.ToDomainDeal(&dealModel), nil
}

func (r *DefaultDealRepository) GetDeals(ctx context.Context, filter domain.GetDealsFilter) ([]*domain.Deal, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DealModel{})

	if filter.ResellerID != nil {
		query = query.Where("reseller_id = ?", *filter.ResellerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Territory != nil {
		query = query.Where("territory_key = ?", domain.NormalizeLabel(*filter.Territory))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, domain.ErrDealNotFound)
	}

	offset := (filter.Page - 1) * filter.Limit
	var dealModels []models.DealModel
	if err := query.
		Order("submitted_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&dealModels).Error; err != nil {
		return nil, 0, translate(err, domain.ErrDealNotFound)
	}

	deals := make([]*domain.Deal, len(dealModels))
	for i, dealModel := range dealModels {
		deals[i] = mappers.ToDomainDeal(&dealModel)
	}
	return deals, total, nil
}

func (r *DefaultDealRepository) GetCandidateDeals(ctx context.Context, excludeDealID string, statuses []domain.DealStatus) ([]*domain.Deal, error) {
	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	var dealModels []models.DealModel
	if err := r.db.WithContext(ctx).Model(&models.DealModel{}).
		Where("status IN ?", statusStrings).
		Where("id <> ?", excludeDealID).
		Find(&dealModels).Error; err != nil {
		return nil, translate(err, domain.ErrDealNotFound)
	}

	deals := make([]*domain.Deal, len(dealModels))
	for i, dealModel := range dealModels {
		deals[i] = mappers.ToDomainDeal(&dealModel)
	}
	return deals, nil
}

// UpdateDealStatusIf is the compare-and-set guarding every status
// transition: two concurrent detection or resolution passes cannot write
// contradictory statuses.
func (r *DefaultDealRepository) UpdateDealStatusIf(ctx context.Context, dealID string, from, to domain.DealStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.DealModel{}).
		Where("id = ? AND status = ?", dealID, string(from)).
		Update("status", string(to))
	if res.Error != nil {
		return false, translate(res.Error, domain.ErrDealNotFound)
	}
	return res.RowsAffected == 1, nil
}

func (r *DefaultDealRepository) UpdateDealStatus(ctx context.Context, dealID string, status domain.DealStatus) error {
	res := r.db.WithContext(ctx).Model(&models.DealModel{}).
		Where("id = ?", dealID).
		Update("status", string(status))
	if res.Error != nil {
		return translate(res.Error, domain.ErrDealNotFound)
	}
	if res.RowsAffected == 0 {
		return domain.ErrDealNotFound
	}
	return nil
}

package mappers

import (
	"github.com/channelone/dealreg-conflict-service/internal/domain"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/postgres/models"
)

func ToDomainDeal(model *models.DealModel) *domain.Deal {
	return &domain.Deal{
		ID:                 model.ID,
		ResellerID:         model.ResellerID,
		AssignedResellerID: model.AssignedResellerID,
		EndCustomer: domain.EndCustomer{
			CompanyName:  model.CompanyName,
			ContactEmail: model.ContactEmail,
			Territory:    model.Territory,
		},
		Value:       model.Value,
		Status:      domain.DealStatus(model.Status),
		SubmittedAt: model.SubmittedAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func ToGORMDeal(deal *domain.Deal) *models.DealModel {
	companyKey, territoryKey := deal.EndCustomer.DedupKey()
	return &models.DealModel{
		ID:                 deal.ID,
		ResellerID:         deal.ResellerID,
		AssignedResellerID: deal.AssignedResellerID,
		CompanyName:        deal.EndCustomer.CompanyName,
		ContactEmail:       deal.EndCustomer.ContactEmail,
		Territory:          deal.EndCustomer.Territory,
		CompanyKey:         companyKey,
		TerritoryKey:       territoryKey,
		Value:              deal.Value,
		Status:             string(deal.Status),
		SubmittedAt:        deal.SubmittedAt,
		CreatedAt:          deal.CreatedAt,
		UpdatedAt:          deal.UpdatedAt,
	}
}

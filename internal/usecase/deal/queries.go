package deal

import (
	"context"

	"github.com/channelone/dealreg-conflict-service/internal/domain"
	"github.com/channelone/dealreg-conflict-service/internal/usecase/backoff"
	dealdto "github.com/channelone/dealreg-conflict-service/internal/usecase/dto/deal"
)

func (uc *DefaultDealUsecase) GetDealByID(ctx context.Context, dealID string) (*domain.Deal, error) {
	var deal *domain.Deal
	err := backoff.Retry(ctx, uc.maxRetries, uc.retryBackoff, func() error {
		cctx, cancel := context.WithTimeout(ctx, uc.queryTimeout)
		defer cancel()
		var loadErr error
		deal, loadErr = uc.dealRepo.GetDealByID(cctx, dealID)
		return loadErr
	})
	return deal, err
}

func (uc *DefaultDealUsecase) GetDeals(ctx context.Context, input *dealdto.GetDealsInput) (*dealdto.GetDealsOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Page <= 0 {
		input.Page = 1
	}
	filter := domain.GetDealsFilter{
		ResellerID: input.ResellerID,
		Status:     input.Status,
		Territory:  input.Territory,
		Page:       int(input.Page),
		Limit:      int(input.Limit),
	}

	var (
		deals []*domain.Deal
		total int64
	)
	err := backoff.Retry(ctx, uc.maxRetries, uc.retryBackoff, func() error {
		cctx, cancel := context.WithTimeout(ctx, uc.queryTimeout)
		defer cancel()
		var loadErr error
		deals, total, loadErr = uc.dealRepo.GetDeals(cctx, filter)
		return loadErr
	})
	if err != nil {
		return nil, err
	}

	totalPages := total / input.Limit
	if total%input.Limit != 0 {
		totalPages++
	}

	return &dealdto.GetDealsOutput{
		Deals: deals,
		Pagination: dealdto.Pagination{
			CurrentPage:  int32(input.Page),
			TotalPages:   int32(totalPages),
			TotalItems:   int32(total),
			ItemsPerPage: int32(input.Limit),
		},
	}, nil
}

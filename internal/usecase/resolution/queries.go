package resolution

import (
	"context"

	"github.com/channelone/dealreg-conflict-service/internal/domain"
	"github.com/channelone/dealreg-conflict-service/internal/usecase/backoff"
	conflictdto "github.com/channelone/dealreg-conflict-service/internal/usecase/dto/conflict"
)

func (uc *DefaultResolutionUsecase) GetConflictByID(ctx context.Context, conflictID string) (*domain.Conflict, error) {
	return uc.getConflict(ctx, conflictID)
}

func (uc *DefaultResolutionUsecase) GetOpenConflicts(ctx context.Context, dealID string) ([]*domain.Conflict, error) {
	var conflicts []*domain.Conflict
	err := backoff.Retry(ctx, uc.maxRetries, uc.retryBackoff, func() error {
		cctx, cancel := context.WithTimeout(ctx, uc.queryTimeout)
		defer cancel()
		var loadErr error
		conflicts, loadErr = uc.conflictRepo.GetOpenConflicts(cctx, dealID)
		return loadErr
	})
	return conflicts, err
}

func (uc *DefaultResolutionUsecase) GetConflicts(ctx context.Context, input *conflictdto.GetConflictsInput) (*conflictdto.GetConflictsOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Page <= 0 {
		input.Page = 1
	}
	filter := domain.GetConflictsFilter{
		DealID:           input.DealID,
		ResolutionStatus: input.ResolutionStatus,
		ConflictType:     input.ConflictType,
		AssignedStaffID:  input.AssignedStaffID,
		Page:             int(input.Page),
		Limit:            int(input.Limit),
	}

	var (
		conflicts []*domain.Conflict
		total     int64
	)
	err := backoff.Retry(ctx, uc.maxRetries, uc.retryBackoff, func() error {
		cctx, cancel := context.WithTimeout(ctx, uc.queryTimeout)
		defer cancel()
		var loadErr error
		conflicts, total, loadErr = uc.conflictRepo.GetConflicts(cctx, filter)
		return loadErr
	})
	if err != nil {
		return nil, err
	}

	totalPages := total / input.Limit
	if total%input.Limit != 0 {
		totalPages++
	}

	return &conflictdto.GetConflictsOutput{
		Conflicts: conflicts,
		Pagination: conflictdto.Pagination{
			CurrentPage:  int32(input.Page),
			TotalPages:   int32(totalPages),
			TotalItems:   int32(total),
			ItemsPerPage: int32(input.Limit),
		},
	}, nil
}

func (uc *DefaultResolutionUsecase) getConflict(ctx context.Context, conflictID string) (*domain.Conflict, error) {
	var conflict *domain.Conflict
	err := backoff.Retry(ctx, uc.maxRetries, uc.retryBackoff, func() error {
		cctx, cancel := context.WithTimeout(ctx, uc.queryTimeout)
		defer cancel()
		var loadErr error
		conflict, loadErr = uc.conflictRepo.GetConflictByID(cctx, conflictID)
		return loadErr
	})
	return conflict, err
}

func (uc *DefaultResolutionUsecase) getDeal(ctx context.Context, dealID string) (*domain.Deal, error) {
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

package deal

import (
	"context"
	"fmt"

	"github.com/channelone/dealreg-conflict-service/internal/domain"
	"github.com/channelone/dealreg-conflict-service/internal/usecase/backoff"
)

// ApproveDeal moves a deal to APPROVED. Refused while any open conflict
// references the deal: a deal may only progress once every conflict on it is
// resolved or dismissed.
func (uc *DefaultDealUsecase) ApproveDeal(ctx context.Context, dealID string) (*domain.Deal, error) {
	deal, err := uc.GetDealByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal.Status != domain.DealStatusPending && deal.Status != domain.DealStatusAssigned {
		return nil, fmt.Errorf("%w: cannot approve deal in status %s", domain.ErrValidation, deal.Status)
	}

	open, err := uc.openConflicts(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if len(open) > 0 {
		return nil, domain.ErrDealHasOpenConflicts
	}

	if err := uc.transition(ctx, dealID, deal.Status, domain.DealStatusApproved); err != nil {
		return nil, err
	}
	deal.Status = domain.DealStatusApproved
	return deal, nil
}

// RejectDeal terminates a deal. Open conflicts referencing it stay pending
// for staff to dismiss; a rejected deal simply stops competing.
func (uc *DefaultDealUsecase) RejectDeal(ctx context.Context, dealID string) (*domain.Deal, error) {
	deal, err := uc.GetDealByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot reject deal in status %s", domain.ErrValidation, deal.Status)
	}

	if err := uc.transition(ctx, dealID, deal.Status, domain.DealStatusRejected); err != nil {
		return nil, err
	}
	deal.Status = domain.DealStatusRejected
	return deal, nil
}

func (uc *DefaultDealUsecase) transition(ctx context.Context, dealID string, from, to domain.DealStatus) error {
	var ok bool
	err := backoff.Retry(ctx, uc.maxRetries, uc.retryBackoff, func() error {
		cctx, cancel := context.WithTimeout(ctx, uc.queryTimeout)
		defer cancel()
		var updErr error
		ok, updErr = uc.dealRepo.UpdateDealStatusIf(cctx, dealID, from, to)
		return updErr
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: deal %s left status %s concurrently", domain.ErrIntegrityViolation, dealID, from)
	}
	return nil
}

func (uc *DefaultDealUsecase) openConflicts(ctx context.Context, dealID string) ([]*domain.Conflict, error) {
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

package deal

import (
	"context"
	"fmt"
	"strings"

	"github.com/channelone/dealreg-conflict-service/internal/domain"
	"github.com/channelone/dealreg-conflict-service/internal/usecase/backoff"
	dealdto "github.com/channelone/dealreg-conflict-service/internal/usecase/dto/deal"
	"github.com/jaevor/go-nanoid"
)

// SubmitDeal persists the new deal as PENDING and runs a full detection pass
// before returning. A detection failure after the deal landed does not roll
// the deal back; the error is surfaced so the caller knows detection is
// outstanding.
func (uc *DefaultDealUsecase) SubmitDeal(ctx context.Context, input *dealdto.SubmitDealInput) (*dealdto.SubmitDealOutput, error) {
	if err := validateSubmit(input); err != nil {
		return nil, err
	}

	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}

	submittedAt := input.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = uc.Now()
	}

	deal := &domain.Deal{
		ID:         idGenerator(),
		ResellerID: input.ResellerID,
		EndCustomer: domain.EndCustomer{
			CompanyName:  strings.TrimSpace(input.CompanyName),
			ContactEmail: strings.TrimSpace(input.ContactEmail),
			Territory:    strings.TrimSpace(input.Territory),
		},
		Value:       input.Value,
		Status:      domain.DealStatusPending,
		SubmittedAt: submittedAt,
	}

	err = backoff.Retry(ctx, uc.maxRetries, uc.retryBackoff, func() error {
		cctx, cancel := context.WithTimeout(ctx, uc.queryTimeout)
		defer cancel()
		return uc.dealRepo.CreateDeal(cctx, deal)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RecordDealSubmitted(domain.NormalizeLabel(deal.EndCustomer.Territory))
	}

	result, err := uc.engine.DetectConflicts(ctx, deal)
	if err != nil {
		return &dealdto.SubmitDealOutput{Deal: deal}, err
	}

	return &dealdto.SubmitDealOutput{Deal: deal, Detection: result}, nil
}

func validateSubmit(input *dealdto.SubmitDealInput) error {
	if input == nil {
		return domain.ErrValidation
	}
	if strings.TrimSpace(input.ResellerID) == "" {
		return fmt.Errorf("%w: reseller id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(input.CompanyName) == "" {
		return fmt.Errorf("%w: end customer company name is required", domain.ErrValidation)
	}
	if input.Value < 0 {
		return fmt.Errorf("%w: deal value cannot be negative", domain.ErrValidation)
	}
	return nil
}

package resolution

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/channelone/dealreg-conflict-service/internal/domain"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/logger"
	"github.com/channelone/dealreg-conflict-service/internal/usecase/backoff"
	conflictdto "github.com/channelone/dealreg-conflict-service/internal/usecase/dto/conflict"
)

// Resolve moves a pending conflict to RESOLVED or DISMISSED. For RESOLVED the
// winning deal's reseller assignment and ASSIGNED status land in the same
// transaction as the conflict update; a resolved conflict with an unassigned
// deal is never observable. Afterwards both sides of the pair are re-checked:
// a DISPUTED deal with no open high-severity conflicts left returns to
// PENDING.
func (uc *DefaultResolutionUsecase) Resolve(ctx context.Context, input *conflictdto.ResolveConflictInput) (*conflictdto.ResolveConflictOutput, error) {
	newStatus, err := parseResolution(input.Resolution)
	if err != nil {
		return nil, err
	}

	conflict, err := uc.getConflict(ctx, input.ConflictID)
	if err != nil {
		return nil, err
	}
	if conflict.IsTerminal() {
		return nil, domain.ErrConflictAlreadyTerminal
	}

	params := domain.ResolveConflictParams{
		ConflictID:      conflict.ID,
		NewStatus:       newStatus,
		AssignedStaffID: input.StaffID,
		ResolvedAt:      uc.Now(),
	}

	var winner *domain.Deal
	if newStatus == domain.ResolutionResolved {
		winner, err = uc.pickWinner(ctx, conflict, input.AssignedResellerID)
		if err != nil {
			return nil, err
		}
		params.WinningDealID = winner.ID
		params.AssignedResellerID = input.AssignedResellerID
	}

	// The conflict+deal write is retried as a unit; it is never split.
	err = backoff.Retry(ctx, uc.maxRetries, uc.retryBackoff, func() error {
		cctx, cancel := context.WithTimeout(ctx, uc.queryTimeout)
		defer cancel()
		return uc.conflictRepo.ResolveConflictTx(cctx, params)
	})
	if err != nil {
		return nil, err
	}

	uc.releaseDisputedDeals(ctx, conflict)

	updated, err := uc.getConflict(ctx, conflict.ID)
	if err != nil {
		return nil, err
	}

	var deal *domain.Deal
	dealID := conflict.DealID
	if winner != nil {
		dealID = winner.ID
	}
	deal, err = uc.getDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RecordConflictResolved(string(newStatus))
	}
	if uc.audit != nil {
		auditErr := uc.audit.LogConflictResolved(ctx, logger.ConflictResolvedEvent{
			ConflictID:         updated.ID,
			Resolution:         string(newStatus),
			WinningDealID:      params.WinningDealID,
			AssignedResellerID: params.AssignedResellerID,
			AssignedStaffID:    params.AssignedStaffID,
			Timestamp:          params.ResolvedAt,
		})
		if auditErr != nil {
			slog.Error("failed to save conflict audit log", "conflict_id", updated.ID, "error", auditErr.Error())
		}
	}
	eventName := domain.EventConflictResolved
	if newStatus == domain.ResolutionDismissed {
		eventName = domain.EventConflictDismissed
	}
	uc.publishEvent(domain.ConflictEvent{
		Name:            eventName,
		ConflictID:      updated.ID,
		DealID:          updated.DealID,
		CompetingDealID: updated.CompetingDealID,
		Type:            updated.Type,
		Severity:        updated.Severity,
		Resolution:      updated.ResolutionStatus,
	})

	return &conflictdto.ResolveConflictOutput{Conflict: updated, Deal: deal}, nil
}

func parseResolution(resolution string) (domain.ResolutionStatus, error) {
	switch domain.ResolutionStatus(resolution) {
	case domain.ResolutionResolved:
		return domain.ResolutionResolved, nil
	case domain.ResolutionDismissed:
		return domain.ResolutionDismissed, nil
	default:
		return "", fmt.Errorf("%w: unknown resolution %q", domain.ErrValidation, resolution)
	}
}

// pickWinner maps the assigned reseller onto one side of the conflict pair.
func (uc *DefaultResolutionUsecase) pickWinner(ctx context.Context, conflict *domain.Conflict, resellerID string) (*domain.Deal, error) {
	if resellerID == "" {
		return nil, fmt.Errorf("%w: assigned reseller id is required to resolve a conflict", domain.ErrValidation)
	}
	newSide, err := uc.getDeal(ctx, conflict.DealID)
	if err != nil {
		return nil, err
	}
	if newSide.ResellerID == resellerID {
		return newSide, nil
	}
	competing, err := uc.getDeal(ctx, conflict.CompetingDealID)
	if err != nil {
		return nil, err
	}
	if competing.ResellerID == resellerID {
		return competing, nil
	}
	return nil, fmt.Errorf("%w: reseller %s submitted neither side of conflict %s", domain.ErrValidation, resellerID, conflict.ID)
}

// releaseDisputedDeals re-evaluates the disputed-status invariant for both
// deals of the pair after resolution. Best-effort; a failed release leaves
// the deal DISPUTED until the next resolution touches it.
func (uc *DefaultResolutionUsecase) releaseDisputedDeals(ctx context.Context, conflict *domain.Conflict) {
	for _, dealID := range []string{conflict.DealID, conflict.CompetingDealID} {
		if err := uc.releaseIfClear(ctx, dealID); err != nil {
			slog.Error("failed to re-evaluate disputed status", "deal_id", dealID, "error", err.Error())
		}
	}
}

func (uc *DefaultResolutionUsecase) releaseIfClear(ctx context.Context, dealID string) error {
	deal, err := uc.getDeal(ctx, dealID)
	if err != nil {
		return err
	}
	if deal.Status != domain.DealStatusDisputed {
		return nil
	}
	open, err := uc.GetOpenConflicts(ctx, dealID)
	if err != nil {
		return err
	}
	for _, c := range open {
		if c.Severity == domain.SeverityHigh {
			return nil
		}
	}
	return backoff.Retry(ctx, uc.maxRetries, uc.retryBackoff, func() error {
		cctx, cancel := context.WithTimeout(ctx, uc.queryTimeout)
		defer cancel()
		_, updErr := uc.dealRepo.UpdateDealStatusIf(cctx, dealID, domain.DealStatusDisputed, domain.DealStatusPending)
		return updErr
	})
}

func (uc *DefaultResolutionUsecase) publishEvent(event domain.ConflictEvent) {
	if uc.publisher == nil {
		return
	}
	go func(event domain.ConflictEvent) {
		if err := uc.publisher.PublishConflictEvent(event); err != nil {
			slog.Error("failed to publish conflict event", "event", event.Name, "conflict_id", event.ConflictID, "error", err.Error())
		}
	}(event)
}

package detection

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/channelone/dealreg-conflict-service/internal/domain"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/logger"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/metrics"
	"github.com/channelone/dealreg-conflict-service/internal/usecase/backoff"
	"github.com/google/uuid"
)

// ConflictSummary is one detected collision, with enough detail for the API
// layer to render a warning to the submitting user.
type ConflictSummary struct {
	ConflictID      string
	CompetingDealID string
	Type            domain.ConflictType
	Severity        domain.ConflictSeverity
	Reason          string
}

// FailedCandidate reports a conflict record that could not be persisted.
// Surfaced so the caller can warn that detection may be incomplete instead of
// claiming a false "no conflicts".
type FailedCandidate struct {
	CompetingDealID string
	Type            domain.ConflictType
	Err             string
}

type DetectionResult struct {
	HasConflicts bool
	Conflicts    []ConflictSummary
	Failed       []FailedCandidate
	// DealStatus is the deal's status after detection, DISPUTED when a
	// high-severity conflict landed.
	DealStatus domain.DealStatus
}

// Engine runs every conflict rule against every candidate deal for a newly
// submitted deal. Stateless; all collaborators are injected.
type Engine struct {
	dealRepo     domain.DealRepository
	conflictRepo domain.ConflictRepository
	publisher    domain.ConflictEventPublisher
	metrics      *metrics.ConflictMetrics
	audit        logger.ConflictAuditLogger
	rules        []ConflictRule
	queryTimeout time.Duration
	maxRetries   int
	retryBackoff time.Duration

	// Now is the clock used for conflict timestamps. Overridable in tests.
	Now func() time.Time
}

func NewEngine(
	dealRepo domain.DealRepository,
	conflictRepo domain.ConflictRepository,
	publisher domain.ConflictEventPublisher,
	conflictMetrics *metrics.ConflictMetrics,
	audit logger.ConflictAuditLogger,
	rules []ConflictRule,
	queryTimeout time.Duration,
	maxRetries int,
	retryBackoff time.Duration,
) *Engine {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	return &Engine{
		dealRepo:     dealRepo,
		conflictRepo: conflictRepo,
		publisher:    publisher,
		metrics:      conflictMetrics,
		audit:        audit,
		rules:        rules,
		queryTimeout: queryTimeout,
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
		Now:          time.Now,
	}
}

// DetectConflicts loads all non-terminal candidate deals, evaluates every
// rule against each one, persists the conflicts that are not already open for
// the same pair and type, and moves the deal to DISPUTED when a high-severity
// conflict exists. Per-record persistence failures land in result.Failed and
// never suppress the remaining conflicts.
func (e *Engine) DetectConflicts(ctx context.Context, newDeal *domain.Deal) (*DetectionResult, error) {
	if newDeal == nil || newDeal.ID == "" {
		return nil, domain.ErrValidation
	}
	start := e.Now()

	var candidates []*domain.Deal
	err := backoff.Retry(ctx, e.maxRetries, e.retryBackoff, func() error {
		cctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
		defer cancel()
		var loadErr error
		candidates, loadErr = e.dealRepo.GetCandidateDeals(cctx, newDeal.ID, domain.CandidateStatuses)
		return loadErr
	})
	if err != nil {
		e.recordError("candidate_load")
		return nil, err
	}

	result := &DetectionResult{DealStatus: newDeal.Status}
	if len(candidates) == 0 {
		e.observeDuration(start)
		return result, nil
	}

	hasHigh := false
	for _, candidate := range candidates {
		if candidate.ID == newDeal.ID {
			continue
		}
		for _, rule := range e.rules {
			verdict := rule.Evaluate(newDeal, candidate)
			if verdict == nil {
				continue
			}
			summary, failed := e.persistVerdict(ctx, newDeal, candidate, verdict)
			if failed != nil {
				result.Failed = append(result.Failed, *failed)
				continue
			}
			result.Conflicts = append(result.Conflicts, *summary)
			if summary.Severity == domain.SeverityHigh {
				hasHigh = true
			}
		}
	}

	result.HasConflicts = len(result.Conflicts) > 0

	if hasHigh {
		disputed, err := e.markDisputed(ctx, newDeal)
		if err != nil {
			e.recordError("status_update")
			return result, err
		}
		if disputed {
			result.DealStatus = domain.DealStatusDisputed
		}
	}

	e.observeDuration(start)
	return result, nil
}

// persistVerdict stages one conflict row, deduplicating against conflicts
// already open for the same unordered pair and type. A unique-index race loss
// counts as dedup, not failure.
func (e *Engine) persistVerdict(ctx context.Context, newDeal, candidate *domain.Deal, verdict *Verdict) (*ConflictSummary, *FailedCandidate) {
	var existing *domain.Conflict
	err := backoff.Retry(ctx, e.maxRetries, e.retryBackoff, func() error {
		cctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
		defer cancel()
		var lookupErr error
		existing, lookupErr = e.conflictRepo.GetOpenConflictForPair(cctx, newDeal.ID, candidate.ID, verdict.Type)
		return lookupErr
	})
	if err != nil {
		return nil, &FailedCandidate{CompetingDealID: candidate.ID, Type: verdict.Type, Err: err.Error()}
	}
	if existing != nil {
		return &ConflictSummary{
			ConflictID:      existing.ID,
			CompetingDealID: candidate.ID,
			Type:            existing.Type,
			Severity:        existing.Severity,
			Reason:          existing.Reason,
		}, nil
	}

	conflict := &domain.Conflict{
		ID:               uuid.NewString(),
		DealID:           newDeal.ID,
		CompetingDealID:  candidate.ID,
		Type:             verdict.Type,
		Severity:         verdict.Severity,
		Reason:           verdict.Reason,
		ResolutionStatus: domain.ResolutionPending,
		CreatedAt:        e.Now(),
	}
	err = backoff.Retry(ctx, e.maxRetries, e.retryBackoff, func() error {
		cctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
		defer cancel()
		return e.conflictRepo.CreateConflict(cctx, conflict)
	})
	if errors.Is(err, domain.ErrIntegrityViolation) {
		// Lost the duplicate-insert race: the other detection pass landed the
		// row first. The end state is one conflict either way.
		racedCtx, cancel := context.WithTimeout(ctx, e.queryTimeout)
		defer cancel()
		raced, lookupErr := e.conflictRepo.GetOpenConflictForPair(racedCtx, newDeal.ID, candidate.ID, verdict.Type)
		if lookupErr == nil && raced != nil {
			return &ConflictSummary{
				ConflictID:      raced.ID,
				CompetingDealID: candidate.ID,
				Type:            raced.Type,
				Severity:        raced.Severity,
				Reason:          raced.Reason,
			}, nil
		}
		return nil, &FailedCandidate{CompetingDealID: candidate.ID, Type: verdict.Type, Err: err.Error()}
	}
	if err != nil {
		e.recordError("conflict_create")
		return nil, &FailedCandidate{CompetingDealID: candidate.ID, Type: verdict.Type, Err: err.Error()}
	}

	if e.metrics != nil {
		e.metrics.RecordConflictDetected(string(conflict.Type), string(conflict.Severity))
	}
	if e.audit != nil {
		auditErr := e.audit.LogConflictDetected(ctx, logger.ConflictDetectedEvent{
			ConflictID:      conflict.ID,
			DealID:          conflict.DealID,
			CompetingDealID: conflict.CompetingDealID,
			ConflictType:    string(conflict.Type),
			Severity:        string(conflict.Severity),
			Reason:          conflict.Reason,
			Timestamp:       conflict.CreatedAt,
		})
		if auditErr != nil {
			slog.Error("failed to save conflict audit log", "conflict_id", conflict.ID, "error", auditErr.Error())
		}
	}
	e.publishEvent(domain.ConflictEvent{
		Name:            domain.EventConflictCreated,
		ConflictID:      conflict.ID,
		DealID:          conflict.DealID,
		CompetingDealID: conflict.CompetingDealID,
		Type:            conflict.Type,
		Severity:        conflict.Severity,
	})

	return &ConflictSummary{
		ConflictID:      conflict.ID,
		CompetingDealID: candidate.ID,
		Type:            conflict.Type,
		Severity:        conflict.Severity,
		Reason:          conflict.Reason,
	}, nil
}

// markDisputed conditionally moves the deal PENDING -> DISPUTED. A lost
// compare-and-set race means a concurrent pass already flipped it; the deal
// is re-read to report the landed status.
func (e *Engine) markDisputed(ctx context.Context, deal *domain.Deal) (bool, error) {
	if deal.Status == domain.DealStatusDisputed {
		return true, nil
	}
	if deal.Status != domain.DealStatusPending {
		return false, nil
	}
	var flipped bool
	err := backoff.Retry(ctx, e.maxRetries, e.retryBackoff, func() error {
		cctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
		defer cancel()
		var updErr error
		flipped, updErr = e.dealRepo.UpdateDealStatusIf(cctx, deal.ID, domain.DealStatusPending, domain.DealStatusDisputed)
		return updErr
	})
	if err != nil {
		return false, err
	}
	if flipped {
		deal.Status = domain.DealStatusDisputed
		if e.metrics != nil {
			e.metrics.RecordDealDisputed()
		}
		return true, nil
	}
	cctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()
	current, readErr := e.dealRepo.GetDealByID(cctx, deal.ID)
	if readErr != nil {
		return false, readErr
	}
	deal.Status = current.Status
	return current.Status == domain.DealStatusDisputed, nil
}

func (e *Engine) publishEvent(event domain.ConflictEvent) {
	if e.publisher == nil {
		return
	}
	go func(event domain.ConflictEvent) {
		if err := e.publisher.PublishConflictEvent(event); err != nil {
			slog.Error("failed to publish conflict event", "event", event.Name, "conflict_id", event.ConflictID, "error", err.Error())
		}
	}(event)
}

func (e *Engine) observeDuration(start time.Time) {
	if e.metrics != nil {
		e.metrics.ObserveDetectionDuration(e.Now().Sub(start).Seconds())
	}
}

func (e *Engine) recordError(errorType string) {
	if e.metrics != nil {
		e.metrics.RecordDetectionError(errorType)
	}
}

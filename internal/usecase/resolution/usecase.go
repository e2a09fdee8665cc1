package resolution

import (
	"context"
	"time"

	"github.com/channelone/dealreg-conflict-service/internal/domain"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/logger"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/metrics"
	conflictdto "github.com/channelone/dealreg-conflict-service/internal/usecase/dto/conflict"
)

type ResolutionUsecase interface {
	Resolve(ctx context.Context, input *conflictdto.ResolveConflictInput) (*conflictdto.ResolveConflictOutput, error)
	GetConflictByID(ctx context.Context, conflictID string) (*domain.Conflict, error)
	GetConflicts(ctx context.Context, input *conflictdto.GetConflictsInput) (*conflictdto.GetConflictsOutput, error)
	GetOpenConflicts(ctx context.Context, dealID string) ([]*domain.Conflict, error)
}

// DefaultResolutionUsecase drives the conflict resolution state machine:
// pending -> resolved (one deal wins the pair) or pending -> dismissed
// (false positive). Both transitions are terminal.
type DefaultResolutionUsecase struct {
	conflictRepo domain.ConflictRepository
	dealRepo     domain.DealRepository
	publisher    domain.ConflictEventPublisher
	metrics      *metrics.ConflictMetrics
	audit        logger.ConflictAuditLogger
	queryTimeout time.Duration
	maxRetries   int
	retryBackoff time.Duration

	// Now supplies resolution timestamps. Overridable in tests.
	Now func() time.Time
}

func NewDefaultResolutionUsecase(
	conflictRepo domain.ConflictRepository,
	dealRepo domain.DealRepository,
	publisher domain.ConflictEventPublisher,
	conflictMetrics *metrics.ConflictMetrics,
	audit logger.ConflictAuditLogger,
	queryTimeout time.Duration,
	maxRetries int,
	retryBackoff time.Duration,
) *DefaultResolutionUsecase {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	return &DefaultResolutionUsecase{
		conflictRepo: conflictRepo,
		dealRepo:     dealRepo,
		publisher:    publisher,
		metrics:      conflictMetrics,
		audit:        audit,
		queryTimeout: queryTimeout,
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
		Now:          time.Now,
	}
}

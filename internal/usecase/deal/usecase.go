package deal

import (
	"context"
	"time"

	"github.com/channelone/dealreg-conflict-service/internal/domain"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/metrics"
	"github.com/channelone/dealreg-conflict-service/internal/usecase/detection"
	dealdto "github.com/channelone/dealreg-conflict-service/internal/usecase/dto/deal"
)

type DealUsecase interface {
	SubmitDeal(ctx context.Context, input *dealdto.SubmitDealInput) (*dealdto.SubmitDealOutput, error)
	GetDealByID(ctx context.Context, dealID string) (*domain.Deal, error)
	GetDeals(ctx context.Context, input *dealdto.GetDealsInput) (*dealdto.GetDealsOutput, error)
	ApproveDeal(ctx context.Context, dealID string) (*domain.Deal, error)
	RejectDeal(ctx context.Context, dealID string) (*domain.Deal, error)
}

// DefaultDealUsecase owns the deal lifecycle around the detection engine:
// submission persists the deal and immediately runs a detection pass; staff
// approval is refused while open conflicts reference the deal.
type DefaultDealUsecase struct {
	dealRepo     domain.DealRepository
	conflictRepo domain.ConflictRepository
	engine       *detection.Engine
	metrics      *metrics.ConflictMetrics
	queryTimeout time.Duration
	maxRetries   int
	retryBackoff time.Duration

	// Now stamps submissions. Overridable in tests.
	Now func() time.Time
}

func NewDefaultDealUsecase(
	dealRepo domain.DealRepository,
	conflictRepo domain.ConflictRepository,
	engine *detection.Engine,
	conflictMetrics *metrics.ConflictMetrics,
	queryTimeout time.Duration,
	maxRetries int,
	retryBackoff time.Duration,
) *DefaultDealUsecase {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	return &DefaultDealUsecase{
		dealRepo:     dealRepo,
		conflictRepo: conflictRepo,
		engine:       engine,
		metrics:      conflictMetrics,
		queryTimeout: queryTimeout,
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
		Now:          time.Now,
	}
}

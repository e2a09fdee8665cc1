package setup

import (
	"github.com/channelone/dealreg-conflict-service/internal/usecase/deal"
	"github.com/channelone/dealreg-conflict-service/internal/usecase/detection"
	"github.com/channelone/dealreg-conflict-service/internal/usecase/resolution"
)

type UseCases struct {
	DealUsecase       deal.DealUsecase
	ResolutionUsecase resolution.ResolutionUsecase
	DetectionEngine   *detection.Engine
}

func InitializeUseCases(deps *Dependencies) *UseCases {
	ruleConfig := detection.RuleConfig{
		TerritoryWindow:    deps.Config.Rules.TerritoryWindow,
		TimingWindow:       deps.Config.Rules.TimingWindow,
		ValueBandThreshold: deps.Config.Rules.ValueBandThreshold,
	}

	engine := detection.NewEngine(
		deps.Repositories.DealRepo,
		deps.Repositories.ConflictRepo,
		deps.ConflictPublisher,
		deps.Metrics,
		deps.AuditLogger,
		detection.DefaultRules(ruleConfig),
		deps.Config.DealDB.QueryTimeout,
		deps.Config.DealDB.MaxRetries,
		deps.Config.DealDB.RetryBackoff,
	)

	dealUsecase := deal.NewDefaultDealUsecase(
		deps.Repositories.DealRepo,
		deps.Repositories.ConflictRepo,
		engine,
		deps.Metrics,
		deps.Config.DealDB.QueryTimeout,
		deps.Config.DealDB.MaxRetries,
		deps.Config.DealDB.RetryBackoff,
	)

	resolutionUsecase := resolution.NewDefaultResolutionUsecase(
		deps.Repositories.ConflictRepo,
		deps.Repositories.DealRepo,
		deps.ConflictPublisher,
		deps.Metrics,
		deps.AuditLogger,
		deps.Config.DealDB.QueryTimeout,
		deps.Config.DealDB.MaxRetries,
		deps.Config.DealDB.RetryBackoff,
	)

	return &UseCases{
		DealUsecase:       dealUsecase,
		ResolutionUsecase: resolutionUsecase,
		DetectionEngine:   engine,
	}
}

package setup

import (
	"fmt"

	"github.com/channelone/dealreg-conflict-service/internal/config"
	"github.com/channelone/dealreg-conflict-service/internal/domain"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/kafka"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/logger"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/metrics"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/migrate"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/postgres"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/postgres/repository"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config            *config.DealregConfig
	DB                *gorm.DB
	ConflictPublisher *kafka.KafkaPublisher
	Metrics           *metrics.ConflictMetrics
	AuditLogger       logger.ConflictAuditLogger
	Repositories      *Repositories
}

type Repositories struct {
	DealRepo     domain.DealRepository
	ConflictRepo domain.ConflictRepository
}

func InitializeDependencies() (*Dependencies, error) {
	cfg := config.MustLoad()

	db := postgres.MustInitDB(cfg)
	if err := migrate.RunMigrations(db, cfg.DealDB.MigrationsPath); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	conflictPublisher, err := initConflictPublisher(cfg)
	if err != nil {
		return nil, fmt.Errorf("conflict publisher: %w", err)
	}

	repos := &Repositories{
		DealRepo:     repository.NewDefaultDealRepository(db),
		ConflictRepo: repository.NewDefaultConflictRepository(db),
	}

	return &Dependencies{
		Config:            cfg,
		DB:                db,
		ConflictPublisher: conflictPublisher,
		Metrics:           metrics.NewConflictMetrics(),
		AuditLogger:       logger.NewPGConflictAuditLogger(db),
		Repositories:      repos,
	}, nil
}

func initConflictPublisher(cfg *config.DealregConfig) (*kafka.KafkaPublisher, error) {
	publisherConfig := kafka.KafkaConfig{
		Brokers:    cfg.Kafka.Brokers,
		Topic:      cfg.Kafka.Topic,
		Username:   cfg.Kafka.Username,
		Password:   cfg.Kafka.Password,
		Mechanism:  cfg.Kafka.Mechanism,
		TLSEnabled: cfg.Kafka.TLSEnabled,
	}
	return kafka.NewKafkaPublisher(publisherConfig)
}

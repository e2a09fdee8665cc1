package postgres

import (
	"log"

	"github.com/channelone/dealreg-conflict-service/internal/config"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/logger"
	"github.com/channelone/dealreg-conflict-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.DealregConfig) *gorm.DB {
	dsn := cfg.DealDB.Dsn
	// TranslateError maps driver unique-violation errors onto
	// gorm.ErrDuplicatedKey so repositories can classify them.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(&models.DealModel{}, &models.ConflictModel{}, &logger.ConflictDetectedEvent{}, &logger.ConflictResolvedEvent{})

	return db
}

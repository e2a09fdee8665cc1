package logger

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ConflictDetectedEvent is the append-only audit row written for every
// conflict the detection pass lands. Rows are never updated or deleted.
type ConflictDetectedEvent struct {
	ID              uint `gorm:"primaryKey"`
	ConflictID      string
	DealID          string
	CompetingDealID string
	ConflictType    string
	Severity        string
	Reason          string
	Timestamp       time.Time
}

// ConflictResolvedEvent records a terminal resolution decision and who made it.
type ConflictResolvedEvent struct {
	ID                 uint `gorm:"primaryKey"`
	ConflictID         string
	Resolution         string
	WinningDealID      string
	AssignedResellerID string
	AssignedStaffID    string
	Timestamp          time.Time
}

type ConflictAuditLogger interface {
	LogConflictDetected(ctx context.Context, event ConflictDetectedEvent) error
	LogConflictResolved(ctx context.Context, event ConflictResolvedEvent) error
}

type PGConflictAuditLogger struct {
	db *gorm.DB
}

func NewPGConflictAuditLogger(db *gorm.DB) *PGConflictAuditLogger {
	return &PGConflictAuditLogger{db: db}
}

func (l *PGConflictAuditLogger) LogConflictDetected(ctx context.Context, event ConflictDetectedEvent) error {
	return l.db.WithContext(ctx).Create(&event).Error
}

func (l *PGConflictAuditLogger) LogConflictResolved(ctx context.Context, event ConflictResolvedEvent) error {
	return l.db.WithContext(ctx).Create(&event).Error
}

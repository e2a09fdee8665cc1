package models

import "time"

type ConflictModel struct {
	ID              string `gorm:"primaryKey"`
	DealID          string `gorm:"index;not null"`
	CompetingDealID string `gorm:"index;not null"`
	// PairMinDealID/PairMaxDealID order the pair so the open-conflict
	// uniqueness constraint can target the unordered pair. The partial
	// unique index lives in migrations (AutoMigrate cannot express it).
	PairMinDealID    string `gorm:"index;not null"`
	PairMaxDealID    string `gorm:"not null"`
	ConflictType     string `gorm:"not null"`
	Severity         string `gorm:"not null"`
	Reason           string
	ResolutionStatus string `gorm:"index;not null"`
	AssignedStaffID  string
	Deal             DealModel `gorm:"foreignKey:DealID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	CompetingDeal    DealModel `gorm:"foreignKey:CompetingDealID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ResolvedAt       *time.Time
}

package models

import "time"

type DealModel struct {
	ID                 string `gorm:"primaryKey"`
	ResellerID         string `gorm:"index;not null"`
	AssignedResellerID string
	CompanyName        string
	ContactEmail       string
	Territory          string
	// CompanyKey/TerritoryKey are the normalized dedup columns used for
	// candidate pre-filtering. Derived from the raw columns in the mapper.
	CompanyKey   string `gorm:"index"`
	TerritoryKey string `gorm:"index"`
	Value        float64
	Status       string `gorm:"index;not null"`
	SubmittedAt  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

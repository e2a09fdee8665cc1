package domain

import (
	"context"
	"strings"
	"time"
)

type DealStatus string

const (
	DealStatusPending  DealStatus = "PENDING"
	DealStatusAssigned DealStatus = "ASSIGNED"
	DealStatusDisputed DealStatus = "DISPUTED"
	DealStatusApproved DealStatus = "APPROVED"
	DealStatusRejected DealStatus = "REJECTED"
)

// EndCustomer is the company a deal is registered against. CompanyName and
// Territory form the dedup key for conflict matching, never the raw strings.
type EndCustomer struct {
	CompanyName  string
	ContactEmail string
	Territory    string
}

// DedupKey returns the normalized (company, territory) comparison key.
func (ec EndCustomer) DedupKey() (string, string) {
	return NormalizeLabel(ec.CompanyName), NormalizeLabel(ec.Territory)
}

// NormalizeLabel lower-cases and trims a matching dimension.
func NormalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type Deal struct {
	ID                 string
	ResellerID         string
	AssignedResellerID string
	EndCustomer        EndCustomer
	Value              float64
	Status             DealStatus
	SubmittedAt        time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsTerminal reports whether the deal no longer competes for new conflicts.
func (d *Deal) IsTerminal() bool {
	return d.Status == DealStatusApproved || d.Status == DealStatusRejected
}

type GetDealsFilter struct {
	ResellerID *string
	Status     *string
	Territory  *string
	Page       int
	Limit      int
}

type DealRepository interface {
	CreateDeal(ctx context.Context, deal *Deal) error
	GetDealByID(ctx context.Context, dealID string) (*Deal, error)
	GetDeals(ctx context.Context, filter GetDealsFilter) ([]*Deal, int64, error)
	// GetCandidateDeals returns every deal in one of the given statuses,
	// excluding excludeDealID.
	GetCandidateDeals(ctx context.Context, excludeDealID string, statuses []DealStatus) ([]*Deal, error)
	// UpdateDealStatusIf performs a conditional status transition guarded by
	// the current status. Returns false when the guard did not hold.
	UpdateDealStatusIf(ctx context.Context, dealID string, from, to DealStatus) (bool, error)
	UpdateDealStatus(ctx context.Context, dealID string, status DealStatus) error
}

// CandidateStatuses are the deal statuses compared against new submissions.
// APPROVED and REJECTED deals are out of conflict candidacy.
var CandidateStatuses = []DealStatus{DealStatusPending, DealStatusAssigned, DealStatusDisputed}

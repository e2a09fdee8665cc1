package dealdto

import "time"

type SubmitDealInput struct {
	ResellerID   string
	CompanyName  string
	ContactEmail string
	Territory    string
	Value        float64
	// SubmittedAt defaults to the usecase clock when zero.
	SubmittedAt time.Time
}

type GetDealsInput struct {
	ResellerID *string
	Status     *string
	Territory  *string
	Page       int64
	Limit      int64
}

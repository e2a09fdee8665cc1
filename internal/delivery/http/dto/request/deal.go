package request

type SubmitDealRequest struct {
	ResellerID   string  `json:"resellerId" validate:"required"`
	CompanyName  string  `json:"companyName" validate:"required"`
	ContactEmail string  `json:"contactEmail" validate:"omitempty,email"`
	Territory    string  `json:"territory"`
	Value        float64 `json:"value" validate:"gte=0"`
}

package dealdto

import (
	"github.com/channelone/dealreg-conflict-service/internal/domain"
	"github.com/channelone/dealreg-conflict-service/internal/usecase/detection"
)

type SubmitDealOutput struct {
	Deal      *domain.Deal
	Detection *detection.DetectionResult
}

type GetDealsOutput struct {
	Deals      []*domain.Deal
	Pagination Pagination
}

type Pagination struct {
	CurrentPage  int32
	TotalPages   int32
	TotalItems   int32
	ItemsPerPage int32
}

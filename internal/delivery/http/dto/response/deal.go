package response

import (
	"time"

	"github.com/channelone/dealreg-conflict-service/internal/domain"
	"github.com/channelone/dealreg-conflict-service/internal/usecase/detection"
)

type DealResponse struct {
	ID                 string    `json:"id"`
	ResellerID         string    `json:"resellerId"`
	AssignedResellerID string    `json:"assignedResellerId,omitempty"`
	CompanyName        string    `json:"companyName"`
	ContactEmail       string    `json:"contactEmail,omitempty"`
	Territory          string    `json:"territory,omitempty"`
	Value              float64   `json:"value"`
	Status             string    `json:"status"`
	SubmittedAt        time.Time `json:"submittedAt"`
}

func ToDealResponse(deal *domain.Deal) DealResponse {
	return DealResponse{
		ID:                 deal.ID,
		ResellerID:         deal.ResellerID,
		AssignedResellerID: deal.AssignedResellerID,
		CompanyName:        deal.EndCustomer.CompanyName,
		ContactEmail:       deal.EndCustomer.ContactEmail,
		Territory:          deal.EndCustomer.Territory,
		Value:              deal.Value,
		Status:             string(deal.Status),
		SubmittedAt:        deal.SubmittedAt,
	}
}

type ConflictSummaryResponse struct {
	ConflictID      string `json:"conflictId"`
	Type            string `json:"type"`
	Severity        string `json:"severity"`
	Reason          string `json:"reason"`
	CompetingDealID string `json:"competingDealId"`
}

type FailedCandidateResponse struct {
	CompetingDealID string `json:"competingDealId"`
	Type            string `json:"type"`
	Error           string `json:"error"`
}

type DetectionResponse struct {
	HasConflicts bool `json:"hasConflicts"`
	Conflicts    []ConflictSummaryResponse `json:"conflicts"`
	// DetectionIncomplete warns that some conflict records failed to
	// persist, so "no conflicts" cannot be trusted.
	DetectionIncomplete bool                      `json:"detectionIncomplete"`
	Failed              []FailedCandidateResponse `json:"failed,omitempty"`
}

func ToDetectionResponse(result *detection.DetectionResult) DetectionResponse {
	resp := DetectionResponse{
		HasConflicts: result.HasConflicts,
		Conflicts:    make([]ConflictSummaryResponse, 0, len(result.Conflicts)),
	}
	for _, c := range result.Conflicts {
		resp.Conflicts = append(resp.Conflicts, ConflictSummaryResponse{
			ConflictID:      c.ConflictID,
			Type:            string(c.Type),
			Severity:        string(c.Severity),
			Reason:          c.Reason,
			CompetingDealID: c.CompetingDealID,
		})
	}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, FailedCandidateResponse{
			CompetingDealID: f.CompetingDealID,
			Type:            string(f.Type),
			Error:           f.Err,
		})
	}
	resp.DetectionIncomplete = len(resp.Failed) > 0
	return resp
}

type SubmitDealResponse struct {
	Deal      DealResponse      `json:"deal"`
	Detection DetectionResponse `json:"detection"`
}

type ListDealsResponse struct {
	Deals      []DealResponse `json:"deals"`
	Pagination Pagination     `json:"pagination"`
}

type Pagination struct {
	CurrentPage  int32 `json:"currentPage"`
	TotalPages   int32 `json:"totalPages"`
	TotalItems   int32 `json:"totalItems"`
	ItemsPerPage int32 `json:"itemsPerPage"`
}

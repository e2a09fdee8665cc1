package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/channelone/dealreg-conflict-service/internal/delivery/http/dto/request"
	httpresponse "github.com/channelone/dealreg-conflict-service/internal/delivery/http/dto/response"
	"github.com/channelone/dealreg-conflict-service/internal/delivery/http/response"
	"github.com/channelone/dealreg-conflict-service/internal/usecase/deal"
	"github.com/channelone/dealreg-conflict-service/internal/usecase/detection"
	dealdto "github.com/channelone/dealreg-conflict-service/internal/usecase/dto/deal"
	"github.com/channelone/dealreg-conflict-service/internal/usecase/resolution"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type DealHandler struct {
	dealUsecase       deal.DealUsecase
	resolutionUsecase resolution.ResolutionUsecase
	validate          *validator.Validate
}

func NewDealHandler(dealUsecase deal.DealUsecase, resolutionUsecase resolution.ResolutionUsecase) *DealHandler {
	return &DealHandler{
		dealUsecase:       dealUsecase,
		resolutionUsecase: resolutionUsecase,
		validate:          validator.New(),
	}
}

// Submit registers a new deal and returns it together with the detection
// result. A failed detection pass after the deal landed is reported as 502
// with the deal attached, never as a silent "no conflicts".
func (h *DealHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	output, err := h.dealUsecase.SubmitDeal(r.Context(), &dealdto.SubmitDealInput{
		ResellerID:   req.ResellerID,
		CompanyName:  req.CompanyName,
		ContactEmail: req.ContactEmail,
		Territory:    req.Territory,
		Value:        req.Value,
	})
	if err != nil {
		if output != nil && output.Deal != nil {
			response.JSON(w, http.StatusBadGateway, map[string]interface{}{
				"deal":  httpresponse.ToDealResponse(output.Deal),
				"error": "conflict detection incomplete: " + err.Error(),
			})
			return
		}
		writeDomainError(w, err)
		return
	}

	detectionResult := output.Detection
	if detectionResult == nil {
		detectionResult = &detection.DetectionResult{DealStatus: output.Deal.Status}
	}
	response.JSON(w, http.StatusCreated, httpresponse.SubmitDealResponse{
		Deal:      httpresponse.ToDealResponse(output.Deal),
		Detection: httpresponse.ToDetectionResponse(detectionResult),
	})
}

func (h *DealHandler) Get(w http.ResponseWriter, r *http.Request) {
	dealID := mux.Vars(r)["id"]

	dealEntity, err := h.dealUsecase.GetDealByID(r.Context(), dealID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	open, err := h.resolutionUsecase.GetOpenConflicts(r.Context(), dealID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	conflicts := make([]httpresponse.ConflictResponse, 0, len(open))
	for _, c := range open {
		conflicts = append(conflicts, httpresponse.ToConflictResponse(c))
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"deal":          httpresponse.ToDealResponse(dealEntity),
		"openConflicts": conflicts,
	})
}

func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	input := &dealdto.GetDealsInput{
		Page:  parseInt64Query(r, "page", 1),
		Limit: parseInt64Query(r, "limit", 20),
	}
	if v := r.URL.Query().Get("reseller_id"); v != "" {
		input.ResellerID = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		input.Status = &v
	}
	if v := r.URL.Query().Get("territory"); v != "" {
		input.Territory = &v
	}

	output, err := h.dealUsecase.GetDeals(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	deals := make([]httpresponse.DealResponse, 0, len(output.Deals))
	for _, d := range output.Deals {
		deals = append(deals, httpresponse.ToDealResponse(d))
	}
	response.JSON(w, http.StatusOK, httpresponse.ListDealsResponse{
		Deals: deals,
		Pagination: httpresponse.Pagination{
			CurrentPage:  output.Pagination.CurrentPage,
			TotalPages:   output.Pagination.TotalPages,
			TotalItems:   output.Pagination.TotalItems,
			ItemsPerPage: output.Pagination.ItemsPerPage,
		},
	})
}

func (h *DealHandler) Approve(w http.ResponseWriter, r *http.Request) {
	dealID := mux.Vars(r)["id"]
	dealEntity, err := h.dealUsecase.ApproveDeal(r.Context(), dealID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, httpresponse.ToDealResponse(dealEntity))
}

func (h *DealHandler) Reject(w http.ResponseWriter, r *http.Request) {
	dealID := mux.Vars(r)["id"]
	dealEntity, err := h.dealUsecase.RejectDeal(r.Context(), dealID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, httpresponse.ToDealResponse(dealEntity))
}

func parseInt64Query(r *http.Request, key string, fallback int64) int64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/channelone/dealreg-conflict-service/internal/delivery/http/dto/request"
	httpresponse "github.com/channelone/dealreg-conflict-service/internal/delivery/http/dto/response"
	"github.com/channelone/dealreg-conflict-service/internal/delivery/http/response"
	conflictdto "github.com/channelone/dealreg-conflict-service/internal/usecase/dto/conflict"
	"github.com/channelone/dealreg-conflict-service/internal/usecase/resolution"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type ConflictHandler struct {
	resolutionUsecase resolution.ResolutionUsecase
	validate          *validator.Validate
}

func NewConflictHandler(resolutionUsecase resolution.ResolutionUsecase) *ConflictHandler {
	return &ConflictHandler{
		resolutionUsecase: resolutionUsecase,
		validate:          validator.New(),
	}
}

func (h *ConflictHandler) Get(w http.ResponseWriter, r *http.Request) {
	conflictID := mux.Vars(r)["id"]
	conflict, err := h.resolutionUsecase.GetConflictByID(r.Context(), conflictID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, httpresponse.ToConflictResponse(conflict))
}

func (h *ConflictHandler) List(w http.ResponseWriter, r *http.Request) {
	input := &conflictdto.GetConflictsInput{
		Page:  parseInt64Query(r, "page", 1),
		Limit: parseInt64Query(r, "limit", 20),
	}
	if v := r.URL.Query().Get("deal_id"); v != "" {
		input.DealID = &v
	}
	if v := r.URL.Query().Get("resolution_status"); v != "" {
		input.ResolutionStatus = &v
	}
	if v := r.URL.Query().Get("conflict_type"); v != "" {
		input.ConflictType = &v
	}
	if v := r.URL.Query().Get("assigned_to"); v != "" {
		input.AssignedStaffID = &v
	}

	output, err := h.resolutionUsecase.GetConflicts(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	conflicts := make([]httpresponse.ConflictResponse, 0, len(output.Conflicts))
	for _, c := range output.Conflicts {
		conflicts = append(conflicts, httpresponse.ToConflictResponse(c))
	}
	response.JSON(w, http.StatusOK, httpresponse.ListConflictsResponse{
		Conflicts: conflicts,
		Pagination: httpresponse.Pagination{
			CurrentPage:  output.Pagination.CurrentPage,
			TotalPages:   output.Pagination.TotalPages,
			TotalItems:   output.Pagination.TotalItems,
			ItemsPerPage: output.Pagination.ItemsPerPage,
		},
	})
}

func (h *ConflictHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	conflictID := mux.Vars(r)["id"]

	var req request.ResolveConflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	output, err := h.resolutionUsecase.Resolve(r.Context(), &conflictdto.ResolveConflictInput{
		ConflictID:         conflictID,
		Resolution:         req.Resolution,
		AssignedResellerID: req.AssignedResellerID,
		StaffID:            req.StaffID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, httpresponse.ResolveConflictResponse{
		Conflict: httpresponse.ToConflictResponse(output.Conflict),
		Deal:     httpresponse.ToDealResponse(output.Deal),
	})
}

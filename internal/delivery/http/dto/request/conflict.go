package request

type ResolveConflictRequest struct {
	Resolution         string `json:"resolution" validate:"required,oneof=RESOLVED DISMISSED"`
	AssignedResellerID string `json:"assignedResellerId"`
	StaffID            string `json:"staffId"`
}

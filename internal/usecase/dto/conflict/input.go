package conflictdto

type ResolveConflictInput struct {
	ConflictID         string
	Resolution         string
	AssignedResellerID string
	StaffID            string
}

type GetConflictsInput struct {
	DealID           *string
	ResolutionStatus *string
	ConflictType     *string
	AssignedStaffID  *string
	Page             int64
	Limit            int64
}

package conflictdto

import "github.com/channelone/dealreg-conflict-service/internal/domain"

type ResolveConflictOutput struct {
	Conflict *domain.Conflict
	Deal     *domain.Deal
}

type GetConflictsOutput struct {
	Conflicts  []*domain.Conflict
	Pagination Pagination
}

type Pagination struct {
	CurrentPage  int32
	TotalPages   int32
	TotalItems   int32
	ItemsPerPage int32
}

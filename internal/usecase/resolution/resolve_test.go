package resolution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/channelone/dealreg-conflict-service/internal/domain"
	conflictdto "github.com/channelone/dealreg-conflict-service/internal/usecase/dto/conflict"
)

var resolvedAt = time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)

type memDealRepo struct {
	deals map[string]*domain.Deal
}

func newMemDealRepo(deals ...*domain.Deal) *memDealRepo {
	repo := &memDealRepo{deals: make(map[string]*domain.Deal)}
	for _, d := range deals {
		copied := *d
		repo.deals[d.ID] = &copied
	}
	return repo
}

func (r *memDealRepo) CreateDeal(_ context.Context, deal *domain.Deal) error {
	copied := *deal
	r.deals[deal.ID] = &copied
	return nil
}

func (r *memDealRepo) GetDealByID(_ context.Context, dealID string) (*domain.Deal, error) {
	deal, ok := r.deals[dealID]
	if !ok {
		return nil, domain.ErrDealNotFound
	}
	copied := *deal
	return &copied, nil
}

func (r *memDealRepo) GetDeals(_ context.Context, _ domain.GetDealsFilter) ([]*domain.Deal, int64, error) {
	return nil, 0, nil
}

func (r *memDealRepo) GetCandidateDeals(_ context.Context, _ string, _ []domain.DealStatus) ([]*domain.Deal, error) {
	return nil, nil
}

func (r *memDealRepo) UpdateDealStatusIf(_ context.Context, dealID string, from, to domain.DealStatus) (bool, error) {
	deal, ok := r.deals[dealID]
	if !ok {
		return false, domain.ErrDealNotFound
	}
	if deal.Status != from {
		return false, nil
	}
	deal.Status = to
	return true, nil
}

func (r *memDealRepo) UpdateDealStatus(_ context.Context, dealID string, status domain.DealStatus) error {
	deal, ok := r.deals[dealID]
	if !ok {
		return domain.ErrDealNotFound
	}
	deal.Status = status
	return nil
}

// memConflictRepo applies ResolveConflictTx against the deal store the way
// the transactional repository does, so tests observe the combined write.
type memConflictRepo struct {
	conflicts []*domain.Conflict
	dealRepo  *memDealRepo
}

func (r *memConflictRepo) CreateConflict(_ context.Context, conflict *domain.Conflict) error {
	copied := *conflict
	r.conflicts = append(r.conflicts, &copied)
	return nil
}

func (r *memConflictRepo) GetConflictByID(_ context.Context, conflictID string) (*domain.Conflict, error) {
	for _, c := range r.conflicts {
		if c.ID == conflictID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, domain.ErrConflictNotFound
}

func (r *memConflictRepo) GetOpenConflicts(_ context.Context, dealID string) ([]*domain.Conflict, error) {
	var out []*domain.Conflict
	for _, c := range r.conflicts {
		if c.ResolutionStatus != domain.ResolutionPending {
			continue
		}
		if c.DealID == dealID || c.CompetingDealID == dealID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memConflictRepo) GetOpenConflictForPair(_ context.Context, dealA, dealB string, conflictType domain.ConflictType) (*domain.Conflict, error) {
	for _, c := range r.conflicts {
		if c.ResolutionStatus != domain.ResolutionPending || c.Type != conflictType {
			continue
		}
		if (c.DealID == dealA && c.CompetingDealID == dealB) || (c.DealID == dealB && c.CompetingDealID == dealA) {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memConflictRepo) GetConflicts(_ context.Context, _ domain.GetConflictsFilter) ([]*domain.Conflict, int64, error) {
	return nil, 0, nil
}

func (r *memConflictRepo) ResolveConflictTx(_ context.Context, params domain.ResolveConflictParams) error {
	for _, c := range r.conflicts {
		if c.ID != params.ConflictID {
			continue
		}
		if c.ResolutionStatus != domain.ResolutionPending {
			return domain.ErrConflictAlreadyTerminal
		}
		if params.WinningDealID != "" {
			for _, other := range r.conflicts {
				if other.ID == params.ConflictID || other.ResolutionStatus != domain.ResolutionPending {
					continue
				}
				if other.DealID == params.WinningDealID || other.CompetingDealID == params.WinningDealID {
					return domain.ErrDealHasOpenConflicts
				}
			}
			deal, ok := r.dealRepo.deals[params.WinningDealID]
			if !ok {
				return domain.ErrDealNotFound
			}
			deal.AssignedResellerID = params.AssignedResellerID
			deal.Status = domain.DealStatusAssigned
		}
		c.ResolutionStatus = params.NewStatus
		c.AssignedStaffID = params.AssignedStaffID
		at := params.ResolvedAt
		c.ResolvedAt = &at
		return nil
	}
	return domain.ErrConflictNotFound
}

func pendingDeal(id, reseller string, status domain.DealStatus) *domain.Deal {
	return &domain.Deal{
		ID:         id,
		ResellerID: reseller,
		EndCustomer: domain.EndCustomer{
			CompanyName: "Acme Corp",
			Territory:   "EMEA-North",
		},
		Value:  100000,
		Status: status,
	}
}

func pendingConflict(id, dealID, competingID string, severity domain.ConflictSeverity) *domain.Conflict {
	return &domain.Conflict{
		ID:               id,
		DealID:           dealID,
		CompetingDealID:  competingID,
		Type:             domain.ConflictDuplicateEndUser,
		Severity:         severity,
		ResolutionStatus: domain.ResolutionPending,
	}
}

func newTestUsecase(dealRepo *memDealRepo, conflictRepo *memConflictRepo) *DefaultResolutionUsecase {
	uc := NewDefaultResolutionUsecase(conflictRepo, dealRepo, nil, nil, nil, time.Second, 1, time.Millisecond)
	uc.Now = func() time.Time { return resolvedAt }
	return uc
}

func TestResolveAssignsWinnerAtomically(t *testing.T) {
	dealRepo := newMemDealRepo(
		pendingDeal("deal-a", "reseller-a", domain.DealStatusDisputed),
		pendingDeal("deal-b", "reseller-b", domain.DealStatusDisputed),
	)
	conflictRepo := &memConflictRepo{dealRepo: dealRepo}
	conflictRepo.conflicts = append(conflictRepo.conflicts, pendingConflict("c1", "deal-a", "deal-b", domain.SeverityHigh))
	uc := newTestUsecase(dealRepo, conflictRepo)

	out, err := uc.Resolve(context.Background(), &conflictdto.ResolveConflictInput{
		ConflictID:         "c1",
		Resolution:         "RESOLVED",
		AssignedResellerID: "reseller-b",
		StaffID:            "staff-1",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if out.Conflict.ResolutionStatus != domain.ResolutionResolved {
		t.Errorf("conflict status = %s, want RESOLVED", out.Conflict.ResolutionStatus)
	}
	if out.Conflict.AssignedStaffID != "staff-1" {
		t.Errorf("assigned staff = %s, want staff-1", out.Conflict.AssignedStaffID)
	}
	if out.Conflict.ResolvedAt == nil || !out.Conflict.ResolvedAt.Equal(resolvedAt) {
		t.Errorf("resolved at = %v, want %v", out.Conflict.ResolvedAt, resolvedAt)
	}

	if out.Deal.ID != "deal-b" {
		t.Fatalf("winning deal = %s, want deal-b", out.Deal.ID)
	}
	if out.Deal.Status != domain.DealStatusAssigned {
		t.Errorf("winner status = %s, want ASSIGNED", out.Deal.Status)
	}
	if out.Deal.AssignedResellerID != "reseller-b" {
		t.Errorf("assigned reseller = %s, want reseller-b", out.Deal.AssignedResellerID)
	}

	// The losing side had no remaining high-severity conflicts and returns
	// to PENDING.
	loser, _ := dealRepo.GetDealByID(context.Background(), "deal-a")
	if loser.Status != domain.DealStatusPending {
		t.Errorf("losing deal status = %s, want PENDING", loser.Status)
	}
}

func TestDismissReleasesDisputedDeals(t *testing.T) {
	dealRepo := newMemDealRepo(
		pendingDeal("deal-a", "reseller-a", domain.DealStatusDisputed),
		pendingDeal("deal-b", "reseller-b", domain.DealStatusPending),
	)
	conflictRepo := &memConflictRepo{dealRepo: dealRepo}
	conflictRepo.conflicts = append(conflictRepo.conflicts, pendingConflict("c1", "deal-a", "deal-b", domain.SeverityHigh))
	uc := newTestUsecase(dealRepo, conflictRepo)

	out, err := uc.Resolve(context.Background(), &conflictdto.ResolveConflictInput{
		ConflictID: "c1",
		Resolution: "DISMISSED",
		StaffID:    "staff-1",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Conflict.ResolutionStatus != domain.ResolutionDismissed {
		t.Errorf("conflict status = %s, want DISMISSED", out.Conflict.ResolutionStatus)
	}

	released, _ := dealRepo.GetDealByID(context.Background(), "deal-a")
	if released.Status != domain.DealStatusPending {
		t.Errorf("deal status = %s, want PENDING after dismissal", released.Status)
	}
}

func TestResolveKeepsDealDisputedWhileHighConflictsRemain(t *testing.T) {
	dealRepo := newMemDealRepo(
		pendingDeal("deal-a", "reseller-a", domain.DealStatusDisputed),
		pendingDeal("deal-b", "reseller-b", domain.DealStatusPending),
		pendingDeal("deal-c", "reseller-c", domain.DealStatusPending),
	)
	conflictRepo := &memConflictRepo{dealRepo: dealRepo}
	conflictRepo.conflicts = append(conflictRepo.conflicts,
		pendingConflict("c1", "deal-a", "deal-b", domain.SeverityHigh),
		pendingConflict("c2", "deal-a", "deal-c", domain.SeverityHigh),
	)
	uc := newTestUsecase(dealRepo, conflictRepo)

	if _, err := uc.Resolve(context.Background(), &conflictdto.ResolveConflictInput{
		ConflictID: "c1",
		Resolution: "DISMISSED",
		StaffID:    "staff-1",
	}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	deal, _ := dealRepo.GetDealByID(context.Background(), "deal-a")
	if deal.Status != domain.DealStatusDisputed {
		t.Errorf("deal status = %s, want DISPUTED while c2 stays open", deal.Status)
	}
}

func TestResolveRefusesWinnerWithOtherOpenConflicts(t *testing.T) {
	dealRepo := newMemDealRepo(
		pendingDeal("deal-a", "reseller-a", domain.DealStatusDisputed),
		pendingDeal("deal-b", "reseller-b", domain.DealStatusDisputed),
		pendingDeal("deal-c", "reseller-c", domain.DealStatusDisputed),
	)
	conflictRepo := &memConflictRepo{dealRepo: dealRepo}
	conflictRepo.conflicts = append(conflictRepo.conflicts,
		pendingConflict("c1", "deal-a", "deal-b", domain.SeverityHigh),
		pendingConflict("c2", "deal-b", "deal-c", domain.SeverityHigh),
	)
	uc := newTestUsecase(dealRepo, conflictRepo)

	_, err := uc.Resolve(context.Background(), &conflictdto.ResolveConflictInput{
		ConflictID:         "c1",
		Resolution:         "RESOLVED",
		AssignedResellerID: "reseller-b",
		StaffID:            "staff-1",
	})
	if !errors.Is(err, domain.ErrDealHasOpenConflicts) {
		t.Fatalf("err = %v, want ErrDealHasOpenConflicts", err)
	}

	// Nothing moved: c1 stays open and deal-b is still unassigned.
	stored, _ := conflictRepo.GetConflictByID(context.Background(), "c1")
	if stored.ResolutionStatus != domain.ResolutionPending {
		t.Errorf("conflict status = %s, want unchanged PENDING", stored.ResolutionStatus)
	}
	winner, _ := dealRepo.GetDealByID(context.Background(), "deal-b")
	if winner.Status == domain.DealStatusAssigned || winner.AssignedResellerID != "" {
		t.Errorf("deal-b assigned despite open conflict c2: %+v", winner)
	}

	// Once c2 is dismissed the same resolution goes through.
	if _, err := uc.Resolve(context.Background(), &conflictdto.ResolveConflictInput{
		ConflictID: "c2",
		Resolution: "DISMISSED",
		StaffID:    "staff-1",
	}); err != nil {
		t.Fatalf("dismiss c2: %v", err)
	}
	out, err := uc.Resolve(context.Background(), &conflictdto.ResolveConflictInput{
		ConflictID:         "c1",
		Resolution:         "RESOLVED",
		AssignedResellerID: "reseller-b",
		StaffID:            "staff-1",
	})
	if err != nil {
		t.Fatalf("resolve c1 after c2 closed: %v", err)
	}
	if out.Deal.ID != "deal-b" || out.Deal.Status != domain.DealStatusAssigned {
		t.Errorf("winner = %+v, want deal-b ASSIGNED", out.Deal)
	}
}

func TestResolveTerminalConflictFails(t *testing.T) {
	dealRepo := newMemDealRepo(
		pendingDeal("deal-a", "reseller-a", domain.DealStatusPending),
		pendingDeal("deal-b", "reseller-b", domain.DealStatusPending),
	)
	conflictRepo := &memConflictRepo{dealRepo: dealRepo}
	terminal := pendingConflict("c1", "deal-a", "deal-b", domain.SeverityHigh)
	terminal.ResolutionStatus = domain.ResolutionDismissed
	conflictRepo.conflicts = append(conflictRepo.conflicts, terminal)
	uc := newTestUsecase(dealRepo, conflictRepo)

	_, err := uc.Resolve(context.Background(), &conflictdto.ResolveConflictInput{
		ConflictID:         "c1",
		Resolution:         "RESOLVED",
		AssignedResellerID: "reseller-a",
	})
	if !errors.Is(err, domain.ErrIntegrityViolation) {
		t.Fatalf("err = %v, want integrity violation", err)
	}
}

func TestResolveRejectsUnknownResolution(t *testing.T) {
	uc := newTestUsecase(newMemDealRepo(), &memConflictRepo{})
	_, err := uc.Resolve(context.Background(), &conflictdto.ResolveConflictInput{
		ConflictID: "c1",
		Resolution: "ESCALATED",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestResolveRejectsResellerOutsidePair(t *testing.T) {
	dealRepo := newMemDealRepo(
		pendingDeal("deal-a", "reseller-a", domain.DealStatusPending),
		pendingDeal("deal-b", "reseller-b", domain.DealStatusPending),
	)
	conflictRepo := &memConflictRepo{dealRepo: dealRepo}
	conflictRepo.conflicts = append(conflictRepo.conflicts, pendingConflict("c1", "deal-a", "deal-b", domain.SeverityHigh))
	uc := newTestUsecase(dealRepo, conflictRepo)

	_, err := uc.Resolve(context.Background(), &conflictdto.ResolveConflictInput{
		ConflictID:         "c1",
		Resolution:         "RESOLVED",
		AssignedResellerID: "reseller-z",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	stored, _ := conflictRepo.GetConflictByID(context.Background(), "c1")
	if stored.ResolutionStatus != domain.ResolutionPending {
		t.Errorf("conflict status = %s, want unchanged PENDING", stored.ResolutionStatus)
	}
}

func TestResolveMissingConflict(t *testing.T) {
	uc := newTestUsecase(newMemDealRepo(), &memConflictRepo{})
	_, err := uc.Resolve(context.Background(), &conflictdto.ResolveConflictInput{
		ConflictID: "missing",
		Resolution: "DISMISSED",
	})
	if !errors.Is(err, domain.ErrConflictNotFound) {
		t.Fatalf("err = %v, want conflict not found", err)
	}
}

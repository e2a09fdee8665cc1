package detection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/channelone/dealreg-conflict-service/internal/domain"
)

type fakeDealRepo struct {
	deals map[string]*domain.Deal
}

func newFakeDealRepo(deals ...*domain.Deal) *fakeDealRepo {
	repo := &fakeDealRepo{deals: make(map[string]*domain.Deal)}
	for _, d := range deals {
		copied := *d
		repo.deals[d.ID] = &copied
	}
	return repo
}

func (r *fakeDealRepo) CreateDeal(_ context.Context, deal *domain.Deal) error {
	copied := *deal
	r.deals[deal.ID] = &copied
	return nil
}

func (r *fakeDealRepo) GetDealByID(_ context.Context, dealID string) (*domain.Deal, error) {
	deal, ok := r.deals[dealID]
	if !ok {
		return nil, domain.ErrDealNotFound
	}
	copied := *deal
	return &copied, nil
}

func (r *fakeDealRepo) GetDeals(_ context.Context, _ domain.GetDealsFilter) ([]*domain.Deal, int64, error) {
	return nil, 0, nil
}

func (r *fakeDealRepo) GetCandidateDeals(_ context.Context, excludeDealID string, statuses []domain.DealStatus) ([]*domain.Deal, error) {
	var out []*domain.Deal
	for _, d := range r.deals {
		if d.ID == excludeDealID {
			continue
		}
		for _, s := range statuses {
			if d.Status == s {
				copied := *d
				out = append(out, &copied)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeDealRepo) UpdateDealStatusIf(_ context.Context, dealID string, from, to domain.DealStatus) (bool, error) {
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

func (r *fakeDealRepo) UpdateDealStatus(_ context.Context, dealID string, status domain.DealStatus) error {
	deal, ok := r.deals[dealID]
	if !ok {
		return domain.ErrDealNotFound
	}
	deal.Status = status
	return nil
}

type fakeConflictRepo struct {
	conflicts []*domain.Conflict
	// createErr fails the next CreateConflict calls when set.
	createErr error
}

func (r *fakeConflictRepo) CreateConflict(_ context.Context, conflict *domain.Conflict) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, c := range r.conflicts {
		if c.ResolutionStatus == domain.ResolutionPending && c.Type == conflict.Type && samePair(c, conflict.DealID, conflict.CompetingDealID) {
			return domain.ErrIntegrityViolation
		}
	}
	copied := *conflict
	r.conflicts = append(r.conflicts, &copied)
	return nil
}

func (r *fakeConflictRepo) GetConflictByID(_ context.Context, conflictID string) (*domain.Conflict, error) {
	for _, c := range r.conflicts {
		if c.ID == conflictID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, domain.ErrConflictNotFound
}

func (r *fakeConflictRepo) GetOpenConflicts(_ context.Context, dealID string) ([]*domain.Conflict, error) {
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

func (r *fakeConflictRepo) GetOpenConflictForPair(_ context.Context, dealA, dealB string, conflictType domain.ConflictType) (*domain.Conflict, error) {
	for _, c := range r.conflicts {
		if c.ResolutionStatus == domain.ResolutionPending && c.Type == conflictType && samePair(c, dealA, dealB) {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeConflictRepo) GetConflicts(_ context.Context, _ domain.GetConflictsFilter) ([]*domain.Conflict, int64, error) {
	return nil, 0, nil
}

func (r *fakeConflictRepo) ResolveConflictTx(_ context.Context, params domain.ResolveConflictParams) error {
	for _, c := range r.conflicts {
		if c.ID != params.ConflictID {
			continue
		}
		if c.ResolutionStatus != domain.ResolutionPending {
			return domain.ErrConflictAlreadyTerminal
		}
		c.ResolutionStatus = params.NewStatus
		c.AssignedStaffID = params.AssignedStaffID
		resolvedAt := params.ResolvedAt
		c.ResolvedAt = &resolvedAt
		return nil
	}
	return domain.ErrConflictNotFound
}

func samePair(c *domain.Conflict, dealA, dealB string) bool {
	return (c.DealID == dealA && c.CompetingDealID == dealB) ||
		(c.DealID == dealB && c.CompetingDealID == dealA)
}

func newTestEngine(dealRepo *fakeDealRepo, conflictRepo *fakeConflictRepo) *Engine {
	engine := NewEngine(dealRepo, conflictRepo, nil, nil, nil, DefaultRules(DefaultRuleConfig()), time.Second, 1, time.Millisecond)
	engine.Now = func() time.Time { return baseTime }
	return engine
}

func TestDetectConflictsCreatesConflictAndDisputesDeal(t *testing.T) {
	existing := makeDeal("existing", "r1", "Acme Corp", "EMEA-North", 100000, baseTime.Add(-24*time.Hour))
	newDeal := makeDeal("new", "r2", "Acme Corp", "EMEA-North", 95000, baseTime)

	dealRepo := newFakeDealRepo(existing, newDeal)
	conflictRepo := &fakeConflictRepo{}
	engine := newTestEngine(dealRepo, conflictRepo)

	result, err := engine.DetectConflicts(context.Background(), newDeal)
	if err != nil {
		t.Fatalf("DetectConflicts: %v", err)
	}
	if !result.HasConflicts {
		t.Fatal("expected HasConflicts")
	}

	var sawDuplicate, sawTiming bool
	for _, c := range result.Conflicts {
		switch c.Type {
		case domain.ConflictDuplicateEndUser:
			sawDuplicate = true
			if c.Severity != domain.SeverityHigh {
				t.Errorf("duplicate severity = %s, want HIGH", c.Severity)
			}
		case domain.ConflictTimingConflict:
			sawTiming = true
		}
		if c.CompetingDealID != "existing" {
			t.Errorf("competing deal = %s, want existing", c.CompetingDealID)
		}
	}
	if !sawDuplicate || !sawTiming {
		t.Fatalf("expected duplicate and timing conflicts, got %+v", result.Conflicts)
	}

	if result.DealStatus != domain.DealStatusDisputed {
		t.Errorf("deal status = %s, want DISPUTED", result.DealStatus)
	}
	stored, _ := dealRepo.GetDealByID(context.Background(), "new")
	if stored.Status != domain.DealStatusDisputed {
		t.Errorf("persisted deal status = %s, want DISPUTED", stored.Status)
	}
}

func TestDetectConflictsNoCandidates(t *testing.T) {
	newDeal := makeDeal("new", "r1", "Acme Corp", "EMEA-North", 100000, baseTime)
	dealRepo := newFakeDealRepo(newDeal)
	engine := newTestEngine(dealRepo, &fakeConflictRepo{})

	result, err := engine.DetectConflicts(context.Background(), newDeal)
	if err != nil {
		t.Fatalf("DetectConflicts: %v", err)
	}
	if result.HasConflicts || len(result.Conflicts) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if result.DealStatus != domain.DealStatusPending {
		t.Errorf("deal status = %s, want PENDING", result.DealStatus)
	}
}

func TestDetectConflictsMediumSeverityLeavesDealPending(t *testing.T) {
	existing := makeDeal("existing", "r1", "Globex", "EMEA-North", 50000, baseTime.Add(-30*24*time.Hour))
	newDeal := makeDeal("new", "r2", "Acme Corp", "EMEA-North", 100000, baseTime)

	dealRepo := newFakeDealRepo(existing, newDeal)
	engine := newTestEngine(dealRepo, &fakeConflictRepo{})

	result, err := engine.DetectConflicts(context.Background(), newDeal)
	if err != nil {
		t.Fatalf("DetectConflicts: %v", err)
	}
	if !result.HasConflicts {
		t.Fatal("expected a territory overlap conflict")
	}
	for _, c := range result.Conflicts {
		if c.Severity == domain.SeverityHigh {
			t.Fatalf("unexpected high severity conflict: %+v", c)
		}
	}
	if result.DealStatus != domain.DealStatusPending {
		t.Errorf("deal status = %s, want PENDING", result.DealStatus)
	}
}

func TestDetectConflictsIsIdempotent(t *testing.T) {
	existing := makeDeal("existing", "r1", "Acme Corp", "EMEA-North", 100000, baseTime.Add(-24*time.Hour))
	newDeal := makeDeal("new", "r2", "Acme Corp", "EMEA-North", 95000, baseTime)

	dealRepo := newFakeDealRepo(existing, newDeal)
	conflictRepo := &fakeConflictRepo{}
	engine := newTestEngine(dealRepo, conflictRepo)

	first, err := engine.DetectConflicts(context.Background(), newDeal)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	stored := len(conflictRepo.conflicts)

	second, err := engine.DetectConflicts(context.Background(), newDeal)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(conflictRepo.conflicts) != stored {
		t.Fatalf("second pass created rows: %d -> %d", stored, len(conflictRepo.conflicts))
	}
	if len(second.Conflicts) != len(first.Conflicts) {
		t.Fatalf("second pass reported %d conflicts, first %d", len(second.Conflicts), len(first.Conflicts))
	}
	ids := make(map[string]bool)
	for _, c := range first.Conflicts {
		ids[c.ConflictID] = true
	}
	for _, c := range second.Conflicts {
		if !ids[c.ConflictID] {
			t.Errorf("second pass returned unknown conflict id %s", c.ConflictID)
		}
	}
}

func TestDetectConflictsSurfacesPersistenceFailures(t *testing.T) {
	existing := makeDeal("existing", "r1", "Acme Corp", "EMEA-North", 100000, baseTime.Add(-24*time.Hour))
	newDeal := makeDeal("new", "r2", "Acme Corp", "EMEA-North", 95000, baseTime)

	dealRepo := newFakeDealRepo(existing, newDeal)
	conflictRepo := &fakeConflictRepo{createErr: errors.New("disk full")}
	engine := newTestEngine(dealRepo, conflictRepo)

	result, err := engine.DetectConflicts(context.Background(), newDeal)
	if err != nil {
		t.Fatalf("DetectConflicts: %v", err)
	}
	if result.HasConflicts {
		t.Error("no conflict persisted, HasConflicts should be false")
	}
	if len(result.Failed) == 0 {
		t.Fatal("expected failed candidates to be surfaced")
	}
	for _, f := range result.Failed {
		if f.CompetingDealID != "existing" || f.Err == "" {
			t.Errorf("incomplete failure record: %+v", f)
		}
	}
}

func TestDetectConflictsRetriesTransientCandidateLoad(t *testing.T) {
	existing := makeDeal("existing", "r1", "Acme Corp", "EMEA-North", 100000, baseTime.Add(-24*time.Hour))
	newDeal := makeDeal("new", "r2", "Acme Corp", "EMEA-North", 95000, baseTime)

	dealRepo := newFakeDealRepo(existing, newDeal)
	flaky := &flakyDealRepo{fakeDealRepo: dealRepo, failures: 2}
	conflictRepo := &fakeConflictRepo{}
	engine := NewEngine(flaky, conflictRepo, nil, nil, nil, DefaultRules(DefaultRuleConfig()), time.Second, 3, time.Millisecond)
	engine.Now = func() time.Time { return baseTime }

	result, err := engine.DetectConflicts(context.Background(), newDeal)
	if err != nil {
		t.Fatalf("DetectConflicts: %v", err)
	}
	if !result.HasConflicts {
		t.Fatal("expected conflicts after retried candidate load")
	}
}

type flakyDealRepo struct {
	*fakeDealRepo
	failures int
}

func (r *flakyDealRepo) GetCandidateDeals(ctx context.Context, excludeDealID string, statuses []domain.DealStatus) ([]*domain.Deal, error) {
	if r.failures > 0 {
		r.failures--
		return nil, domain.ErrRepositoryUnavailable
	}
	return r.fakeDealRepo.GetCandidateDeals(ctx, excludeDealID, statuses)
}

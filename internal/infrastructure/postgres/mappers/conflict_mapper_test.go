package mappers

import (
	"testing"

	"github.com/channelone/dealreg-conflict-service/internal/domain"
)

func TestToGORMConflictOrdersPairColumns(t *testing.T) {
	forward := ToGORMConflict(&domain.Conflict{DealID: "deal-b", CompetingDealID: "deal-a"})
	reverse := ToGORMConflict(&domain.Conflict{DealID: "deal-a", CompetingDealID: "deal-b"})

	if forward.PairMinDealID != "deal-a" || forward.PairMaxDealID != "deal-b" {
		t.Errorf("pair = (%s, %s), want (deal-a, deal-b)", forward.PairMinDealID, forward.PairMaxDealID)
	}
	if forward.PairMinDealID != reverse.PairMinDealID || forward.PairMaxDealID != reverse.PairMaxDealID {
		t.Error("pair columns depend on insertion order")
	}
	if forward.DealID != "deal-b" || forward.CompetingDealID != "deal-a" {
		t.Error("original pair orientation must be preserved")
	}
}

func TestConflictRoundTrip(t *testing.T) {
	conflict := &domain.Conflict{
		ID:               "c1",
		DealID:           "deal-a",
		CompetingDealID:  "deal-b",
		Type:             domain.ConflictDuplicateEndUser,
		Severity:         domain.SeverityHigh,
		Reason:           "duplicate registration",
		ResolutionStatus: domain.ResolutionPending,
	}
	got := ToDomainConflict(ToGORMConflict(conflict))
	if *got != *conflict {
		t.Errorf("round trip changed the conflict: %+v != %+v", got, conflict)
	}
}

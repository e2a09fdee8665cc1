package detection

import (
	"fmt"
	"math"
	"time"

	"github.com/channelone/dealreg-conflict-service/internal/domain"
)

// Verdict is a single rule match against a candidate deal.
type Verdict struct {
	Type     domain.ConflictType
	Severity domain.ConflictSeverity
	Reason   string
}

// ConflictRule compares a newly submitted deal against one candidate. Rules
// are pure and deterministic; a nil verdict means no match. Rules never see
// the candidate equal to the new deal.
type ConflictRule interface {
	Name() string
	Evaluate(newDeal, candidate *domain.Deal) *Verdict
}

// RuleConfig carries the matching windows and thresholds so nothing reads
// ambient state.
type RuleConfig struct {
	TerritoryWindow    time.Duration
	TimingWindow       time.Duration
	ValueBandThreshold float64
}

func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		TerritoryWindow:    90 * 24 * time.Hour,
		TimingWindow:       7 * 24 * time.Hour,
		ValueBandThreshold: 0.2,
	}
}

// DefaultRules returns the three production rules in evaluation order.
func DefaultRules(cfg RuleConfig) []ConflictRule {
	return []ConflictRule{
		&DuplicateEndUserRule{Threshold: cfg.ValueBandThreshold},
		&TerritoryOverlapRule{Window: cfg.TerritoryWindow},
		&TimingConflictRule{Window: cfg.TimingWindow},
	}
}

// DuplicateEndUserRule matches two non-terminal deals registered against the
// same normalized (company, territory) key. The most direct double-credit
// risk, so severity is HIGH when the deal values sit within the threshold
// band of each other and MEDIUM otherwise.
type DuplicateEndUserRule struct {
	Threshold float64
}

func (r *DuplicateEndUserRule) Name() string { return "duplicate_end_user" }

func (r *DuplicateEndUserRule) Evaluate(newDeal, candidate *domain.Deal) *Verdict {
	if newDeal.IsTerminal() || candidate.IsTerminal() {
		return nil
	}
	newCompany, newTerritory := newDeal.EndCustomer.DedupKey()
	candCompany, candTerritory := candidate.EndCustomer.DedupKey()
	if newCompany == "" || newCompany != candCompany || newTerritory != candTerritory {
		return nil
	}

	severity := domain.SeverityMedium
	if valuesWithinBand(newDeal.Value, candidate.Value, r.Threshold) {
		severity = domain.SeverityHigh
	}
	return &Verdict{
		Type:     domain.ConflictDuplicateEndUser,
		Severity: severity,
		Reason: fmt.Sprintf("end customer %q in territory %q is already registered by deal %s",
			newDeal.EndCustomer.CompanyName, newDeal.EndCustomer.Territory, candidate.ID),
	}
}

// valuesWithinBand reports whether a and b differ by strictly less than
// threshold, relative to the larger value. Two zero values count as equal.
func valuesWithinBand(a, b, threshold float64) bool {
	larger := math.Max(math.Abs(a), math.Abs(b))
	if larger == 0 {
		return true
	}
	return math.Abs(a-b)/larger < threshold
}

// TerritoryOverlapRule matches deals for different companies whose declared
// territories are equal and whose submissions fall within the window.
type TerritoryOverlapRule struct {
	Window time.Duration
}

func (r *TerritoryOverlapRule) Name() string { return "territory_overlap" }

func (r *TerritoryOverlapRule) Evaluate(newDeal, candidate *domain.Deal) *Verdict {
	newCompany, newTerritory := newDeal.EndCustomer.DedupKey()
	candCompany, candTerritory := candidate.EndCustomer.DedupKey()
	// A deal without a territory never matches territory rules.
	if newTerritory == "" || candTerritory == "" {
		return nil
	}
	if newCompany == candCompany || newTerritory != candTerritory {
		return nil
	}
	if !submittedWithin(newDeal, candidate, r.Window) {
		return nil
	}
	return &Verdict{
		Type:     domain.ConflictTerritoryOverlap,
		Severity: domain.SeverityMedium,
		Reason: fmt.Sprintf("deal %s was registered in territory %q within the overlap window",
			candidate.ID, newDeal.EndCustomer.Territory),
	}
}

// TimingConflictRule matches deals in the same territory submitted within a
// short window of each other, signaling two resellers racing for the same
// account.
type TimingConflictRule struct {
	Window time.Duration
}

func (r *TimingConflictRule) Name() string { return "timing_conflict" }

func (r *TimingConflictRule) Evaluate(newDeal, candidate *domain.Deal) *Verdict {
	_, newTerritory := newDeal.EndCustomer.DedupKey()
	_, candTerritory := candidate.EndCustomer.DedupKey()
	if newTerritory == "" || newTerritory != candTerritory {
		return nil
	}
	if !submittedWithin(newDeal, candidate, r.Window) {
		return nil
	}
	return &Verdict{
		Type:     domain.ConflictTimingConflict,
		Severity: domain.SeverityLow,
		Reason: fmt.Sprintf("deal %s was submitted for territory %q within %s of this one",
			candidate.ID, newDeal.EndCustomer.Territory, r.Window),
	}
}

func submittedWithin(a, b *domain.Deal, window time.Duration) bool {
	delta := a.SubmittedAt.Sub(b.SubmittedAt)
	if delta < 0 {
		delta = -delta
	}
	return delta <= window
}

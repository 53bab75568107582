// Package scenario runs loss stress tests and Monte Carlo loss simulations
// against the credit enhancement of an extracted new-issue deal.
//
// All percentages are expressed the way extraction produces them: 1.25
// means 1.25% of the original pool.
package scenario

import (
	"errors"
	"fmt"

	"github.com/Veraticus/tranche/internal/model"
)

// ErrInsufficientData is returned when a deal lacks the expected loss or
// enhancement figures a scenario needs.
var ErrInsufficientData = errors.New("insufficient deal data for scenario analysis")

// Stress is a named multiple applied to the base expected cumulative net loss.
type Stress struct {
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
}

// DefaultStresses returns the base, moderate and severe loss multiples.
func DefaultStresses() []Stress {
	return []Stress{
		{Name: "base", Multiplier: 1.0},
		{Name: "moderate", Multiplier: 2.0},
		{Name: "severe", Multiplier: 3.5},
	}
}

// StressOutcome is one stress applied to a deal.
type StressOutcome struct {
	Stress
	StressedCNL float64 `json:"stressed_cnl"`
	// Coverage is credit enhancement divided by the stressed loss.
	Coverage float64 `json:"coverage"`
	Pass     bool    `json:"pass"`
}

// StressResult is the outcome of StressTest.
type StressResult struct {
	DealID            string          `json:"deal_id"`
	DealName          string          `json:"deal_name"`
	Reasoning         string          `json:"reasoning"`
	Outcomes          []StressOutcome `json:"outcomes"`
	BaseCNL           float64         `json:"base_cnl"`
	CreditEnhancement float64         `json:"credit_enhancement"`
	// BreakevenMultiple is the loss multiple at which enhancement is exhausted.
	BreakevenMultiple float64 `json:"breakeven_multiple"`
}

// BaseCNL is the expected cumulative net loss a scenario starts from: the
// high end of the disclosed range, or the low end when only that is known.
func BaseCNL(deal *model.NewIssueDeal) float64 {
	if deal.ExpectedCNLHigh > 0 {
		return deal.ExpectedCNLHigh
	}
	return deal.ExpectedCNLLow
}

// CreditEnhancement is the senior-class protection in percent of the pool:
// the share of original balance subordinate to the most senior classes,
// plus initial overcollateralization and the reserve account. Without class
// balances it falls back to the complement of the class A advance rate.
func CreditEnhancement(deal *model.NewIssueDeal) float64 {
	var total, subordinate float64
	for _, nc := range deal.NoteClasses {
		total += nc.OriginalBalance
		if nc.SubordinationLevel > 1 {
			subordinate += nc.OriginalBalance
		}
	}

	var ce float64
	switch {
	case total > 0 && subordinate > 0:
		ce = subordinate / total * 100
	case deal.ClassAAdvanceRate > 0 && deal.ClassAAdvanceRate < 100:
		ce = 100 - deal.ClassAAdvanceRate
	}
	return ce + deal.InitialOC + deal.ReserveAccount
}

// StressTest applies each stress to the deal's base expected loss. A nil or
// empty stresses slice uses DefaultStresses.
func StressTest(deal *model.NewIssueDeal, stresses []Stress) (StressResult, error) {
	if deal == nil {
		return StressResult{}, fmt.Errorf("%w: nil deal", ErrInsufficientData)
	}
	base := BaseCNL(deal)
	if base <= 0 {
		return StressResult{}, fmt.Errorf("%w: no expected cumulative net loss", ErrInsufficientData)
	}
	ce := CreditEnhancement(deal)
	if ce <= 0 {
		return StressResult{}, fmt.Errorf("%w: no credit enhancement", ErrInsufficientData)
	}
	if len(stresses) == 0 {
		stresses = DefaultStresses()
	}

	result := StressResult{
		DealID:            deal.ID,
		DealName:          deal.DealName,
		BaseCNL:           base,
		CreditEnhancement: ce,
		BreakevenMultiple: ce / base,
		Outcomes:          make([]StressOutcome, 0, len(stresses)),
	}

	failed := ""
	for _, s := range stresses {
		stressed := base * s.Multiplier
		out := StressOutcome{Stress: s, StressedCNL: stressed}
		if stressed > 0 {
			out.Coverage = ce / stressed
		}
		out.Pass = stressed <= ce
		if !out.Pass && failed == "" {
			failed = s.Name
		}
		result.Outcomes = append(result.Outcomes, out)
	}

	if failed == "" {
		result.Reasoning = fmt.Sprintf("Enhancement of %.2f%% covers every scenario (breakeven %.2fx base loss)", ce, result.BreakevenMultiple)
	} else {
		result.Reasoning = fmt.Sprintf("Enhancement of %.2f%% is exhausted under the %s scenario (breakeven %.2fx base loss)", ce, failed, result.BreakevenMultiple)
	}
	return result, nil
}

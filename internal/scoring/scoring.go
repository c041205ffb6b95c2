// Package scoring implements the per-source weighting and diversity
// bonus formula of spec §4.4, entirely over checked uint64 arithmetic.
package scoring

import "github.com/solanid/solanid-core/internal/checked"

// Weighted computes a single source's weighted score:
// base_score * weight / 100, checked, integer (truncating) division.
func Weighted(baseScore, weight uint64) (uint64, error) {
	return checked.MulDiv64(baseScore, weight, 100)
}

// Aggregate computes the new aggregated_score from the sum of weighted
// scores across every currently-active IndividualProof for a user,
// applying the diversity bonus multiplicatively to the sum (never
// per-source) once the user holds two or more active sources.
//
//	aggregate = sumWeighted                      if activeCount < 2
//	aggregate = sumWeighted + sumWeighted*bonus/100  otherwise
func Aggregate(sumWeighted uint64, activeSourceCount uint8, diversityBonusPct uint8) (uint64, error) {
	if activeSourceCount < 2 {
		return sumWeighted, nil
	}
	bonus, err := checked.MulDiv64(sumWeighted, uint64(diversityBonusPct), 100)
	if err != nil {
		return 0, err
	}
	return checked.Add64(sumWeighted, bonus)
}

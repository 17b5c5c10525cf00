/**
 * @description
 * The scoring engine: converts a user profile and the weight/ceiling policy
 * into a normalized composite score plus per-factor contributions. Pure
 * arithmetic with no store access; the ranker feeds it the policy snapshot it
 * already loaded for the request.
 */

package app

import (
	"math"

	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/domain"
)

// Factor names used in contribution maps and rationale thresholds.
const (
	FactorIncome = "income"
	FactorJob    = "job"
	FactorAsset  = "asset"
)

// ScoreProfile computes the composite creditworthiness score on [0,1] and the
// contribution of each factor (normalized value x weight). Income and assets
// are normalized by their policy ceilings; a ceiling <= 0 makes that factor's
// normalized value 0 rather than dividing by zero. Weights are read as-is and
// are not required to sum to 1; the composite is clamped to [0,1] regardless.
func ScoreProfile(profile domain.UserProfile, policy domain.Policy) (float64, map[string]float64) {
	incomeNorm := normalize(float64(profile.AnnualIncome), policy.Float(domain.PolicyIncomeCeiling, domain.DefaultIncomeCeiling))
	assetNorm := normalize(float64(profile.AssetAmount), policy.Float(domain.PolicyAssetCeiling, domain.DefaultAssetCeiling))
	jobNorm := clamp01(profile.JobScore)

	contributions := map[string]float64{
		FactorIncome: incomeNorm * policy.Float(domain.PolicyWeightIncome, domain.DefaultWeightIncome),
		FactorJob:    jobNorm * policy.Float(domain.PolicyWeightJob, domain.DefaultWeightJob),
		FactorAsset:  assetNorm * policy.Float(domain.PolicyWeightAsset, domain.DefaultWeightAsset),
	}

	composite := clamp01(contributions[FactorIncome] + contributions[FactorJob] + contributions[FactorAsset])
	return composite, contributions
}

func normalize(value, ceiling float64) float64 {
	if ceiling <= 0 {
		return 0
	}
	return math.Min(value/ceiling, 1.0)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

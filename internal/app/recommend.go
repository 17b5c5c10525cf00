/**
 * @description
 * The recommendation ranker. Filters visible products by the requested amount,
 * applies the configured fallback when nothing qualifies, personalizes each
 * surviving product's rate estimate from the composite score, explains the
 * result with rationale fragments, then sorts and truncates per policy. A pure
 * function of (profile, product set, policy): identical inputs always produce
 * the identical ordered result.
 *
 * @dependencies
 * - context, log/slog, math, sort, strings: Standard Go libraries.
 * - internal/domain: Product, profile, and policy models.
 */

package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/domain"
)

// Rationale fragments surfaced per qualifying factor, and the default when
// none qualifies.
const (
	rationaleIncome   = "strong income supports a lower rate"
	rationaleJob      = "stable employment profile"
	rationaleAsset    = "solid asset base"
	rationaleBaseline = "baseline screening passed"
)

// RecommenderStore is the subset of the repository the ranker needs.
type RecommenderStore interface {
	LoadPolicy(ctx context.Context) (domain.Policy, error)
	ListVisibleProducts(ctx context.Context) ([]domain.Product, error)
}

// Recommender produces ranked, explained loan product lists.
type Recommender struct {
	store  RecommenderStore
	logger *slog.Logger
}

// NewRecommender creates a new recommendation ranker.
func NewRecommender(store RecommenderStore, logger *slog.Logger) *Recommender {
	return &Recommender{store: store, logger: logger}
}

// Recommend returns at most the configured number of recommendations for a
// profile. An empty result is data unavailability, not an error.
func (r *Recommender) Recommend(ctx context.Context, profile domain.UserProfile) ([]domain.Recommendation, error) {
	policy, err := r.store.LoadPolicy(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}
	if !policy.WeightsSumToOne() {
		r.logger.Warn("scoring weights do not sum to 1.0; composite score will be clamped")
	}

	products, err := r.store.ListVisibleProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	return RankProducts(profile, products, policy), nil
}

// RankProducts is the deterministic core of the ranker, separated from store
// access so it can be exercised directly.
func RankProducts(profile domain.UserProfile, products []domain.Product, policy domain.Policy) []domain.Recommendation {
	eligible := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.LimitAmount >= profile.DesiredAmount {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		if policy.String(domain.PolicyFallbackMode, domain.FallbackModeAll) == domain.FallbackModeExclude {
			return []domain.Recommendation{}
		}
		eligible = products
	}

	score, contributions := ScoreProfile(profile, policy)
	sensitivity := policy.Float(domain.PolicyRateSensitivity, domain.DefaultRateSensitivity)
	explanation := buildExplanation(contributions, policy)

	recs := make([]domain.Recommendation, 0, len(eligible))
	for _, p := range eligible {
		recs = append(recs, domain.Recommendation{
			Bank:          p.Bank,
			Name:          p.Name,
			EstimatedRate: estimateRate(p, score, sensitivity),
			Explanation:   explanation,
			LimitAmount:   p.LimitAmount,
			RateMin:       p.RateMin,
			RateMax:       p.RateMax,
		})
	}

	sortRecommendations(recs, policy.String(domain.PolicySortMode, domain.SortModeRate))

	max := policy.Int(domain.PolicyMaxCount, domain.DefaultMaxCount)
	if max > 0 && len(recs) > max {
		recs = recs[:max]
	}
	return recs
}

// estimateRate discounts the product's ceiling rate by the score-scaled spread.
// The spread is capped at the product's full rate band, so the estimate can
// never fall below the floor rate regardless of sensitivity tuning.
func estimateRate(p domain.Product, score, sensitivity float64) float64 {
	band := p.RateMax - p.RateMin
	spread := band * score * sensitivity
	return p.RateMax - math.Min(spread, band)
}

func buildExplanation(contributions map[string]float64, policy domain.Policy) string {
	var fragments []string
	if contributions[FactorIncome] >= policy.Float(domain.PolicyThresholdIncome, domain.DefaultThresholdIncome) {
		fragments = append(fragments, rationaleIncome)
	}
	if contributions[FactorJob] >= policy.Float(domain.PolicyThresholdJob, domain.DefaultThresholdJob) {
		fragments = append(fragments, rationaleJob)
	}
	if contributions[FactorAsset] >= policy.Float(domain.PolicyThresholdAsset, domain.DefaultThresholdAsset) {
		fragments = append(fragments, rationaleAsset)
	}
	if len(fragments) == 0 {
		return rationaleBaseline
	}
	return strings.Join(fragments, "; ")
}

func sortRecommendations(recs []domain.Recommendation, mode string) {
	switch mode {
	case domain.SortModeLimit:
		sort.SliceStable(recs, func(i, j int) bool {
			if recs[i].LimitAmount != recs[j].LimitAmount {
				return recs[i].LimitAmount > recs[j].LimitAmount
			}
			return recs[i].EstimatedRate < recs[j].EstimatedRate
		})
	default: // rate
		sort.SliceStable(recs, func(i, j int) bool {
			if recs[i].EstimatedRate != recs[j].EstimatedRate {
				return recs[i].EstimatedRate < recs[j].EstimatedRate
			}
			return recs[i].LimitAmount > recs[j].LimitAmount
		})
	}
}

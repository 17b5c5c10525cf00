package app

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func product(bank, name string, rateMin, rateMax float64, limit int64) domain.Product {
	return domain.Product{Bank: bank, Name: name, RateMin: rateMin, RateMax: rateMax, LimitAmount: limit, Visible: true}
}

func TestRankProducts_EstimatedRateWithinBand(t *testing.T) {
	products := []domain.Product{product("A", "loan-a", 3.0, 8.0, 100_000_000)}
	profiles := []domain.UserProfile{
		{AnnualIncome: 0, JobScore: 0, AssetAmount: 0, DesiredAmount: 1},
		{AnnualIncome: 100_000_000, JobScore: 1, AssetAmount: 500_000_000, DesiredAmount: 1},
	}

	for _, sensitivity := range []string{"0", "0.5", "1.0", "100"} {
		policy := domain.Policy{"rate_sensitivity": sensitivity}
		for _, profile := range profiles {
			recs := RankProducts(profile, products, policy)
			if len(recs) != 1 {
				t.Fatalf("expected 1 recommendation, got %d", len(recs))
			}
			rate := recs[0].EstimatedRate
			if rate < 3.0 || rate > 8.0 {
				t.Errorf("sensitivity %s: estimated rate %v outside [3.0, 8.0]", sensitivity, rate)
			}
		}
	}
}

func TestRankProducts_PerfectScoreHitsFloorRate(t *testing.T) {
	products := []domain.Product{product("A", "loan-a", 3.0, 8.0, 100_000_000)}
	profile := domain.UserProfile{AnnualIncome: 100_000_000, JobScore: 1, AssetAmount: 500_000_000, DesiredAmount: 1}

	recs := RankProducts(profile, products, domain.Policy{})
	if recs[0].EstimatedRate != 3.0 {
		t.Errorf("estimated rate = %v, want floor 3.0 for perfect score", recs[0].EstimatedRate)
	}
}

func TestRankProducts_LimitFilterAndFallback(t *testing.T) {
	products := []domain.Product{
		product("A", "small", 3.0, 6.0, 10_000_000),
		product("B", "large", 4.0, 7.0, 200_000_000),
	}
	profile := domain.UserProfile{DesiredAmount: 50_000_000}

	recs := RankProducts(profile, products, domain.Policy{})
	if len(recs) != 1 || recs[0].Name != "large" {
		t.Fatalf("expected only the large product, got %+v", recs)
	}

	// Nothing qualifies: fallback "all" returns the full visible set.
	bigAsk := domain.UserProfile{DesiredAmount: 500_000_000}
	recs = RankProducts(bigAsk, products, domain.Policy{"recommend_fallback_mode": "all"})
	if len(recs) != 2 {
		t.Fatalf("fallback all: expected 2 recommendations, got %d", len(recs))
	}

	// Fallback "exclude" returns an empty result.
	recs = RankProducts(bigAsk, products, domain.Policy{"recommend_fallback_mode": "exclude"})
	if len(recs) != 0 {
		t.Fatalf("fallback exclude: expected empty result, got %d", len(recs))
	}
}

func TestRankProducts_RateSortTieBreaksOnLimit(t *testing.T) {
	// Identical rate bands; the higher limit must order first on a tie.
	products := []domain.Product{
		product("A", "a", 3.0, 3.0, 100),
		product("B", "b", 3.0, 3.0, 200),
	}
	profile := domain.UserProfile{DesiredAmount: 1}

	recs := RankProducts(profile, products, domain.Policy{"recommend_sort_mode": "rate"})
	if recs[0].Name != "b" || recs[1].Name != "a" {
		t.Errorf("rate-mode tie-break wrong order: %s before %s", recs[0].Name, recs[1].Name)
	}
}

func TestRankProducts_LimitSortMode(t *testing.T) {
	products := []domain.Product{
		product("A", "low-limit", 2.0, 4.0, 100),
		product("B", "high-limit", 5.0, 9.0, 500),
	}
	profile := domain.UserProfile{DesiredAmount: 1}

	recs := RankProducts(profile, products, domain.Policy{"recommend_sort_mode": "limit"})
	if recs[0].Name != "high-limit" {
		t.Errorf("limit mode: got %s first, want high-limit", recs[0].Name)
	}

	recs = RankProducts(profile, products, domain.Policy{"recommend_sort_mode": "rate"})
	if recs[0].Name != "low-limit" {
		t.Errorf("rate mode: got %s first, want low-limit", recs[0].Name)
	}
}

func TestRankProducts_TruncatesToMaxCount(t *testing.T) {
	var products []domain.Product
	for i := 0; i < 10; i++ {
		products = append(products, product("A", "p", 3.0, 6.0, 1_000_000))
	}
	profile := domain.UserProfile{DesiredAmount: 1}

	recs := RankProducts(profile, products, domain.Policy{"recommend_max_count": "4"})
	if len(recs) != 4 {
		t.Errorf("len = %d, want 4", len(recs))
	}
}

func TestRankProducts_Deterministic(t *testing.T) {
	products := []domain.Product{
		product("A", "a", 3.0, 6.0, 100),
		product("B", "b", 3.5, 7.0, 200),
		product("C", "c", 2.5, 5.0, 300),
	}
	profile := domain.UserProfile{AnnualIncome: 40_000_000, JobScore: 0.6, AssetAmount: 80_000_000, DesiredAmount: 50}

	first := RankProducts(profile, products, domain.Policy{})
	second := RankProducts(profile, products, domain.Policy{})
	if len(first) != len(second) {
		t.Fatal("non-deterministic result length")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("position %d differs between identical runs", i)
		}
	}
}

func TestRankProducts_Explanation(t *testing.T) {
	products := []domain.Product{product("A", "a", 3.0, 6.0, 100)}

	// A strong profile should surface factor fragments.
	strong := domain.UserProfile{AnnualIncome: 100_000_000, JobScore: 1, AssetAmount: 500_000_000, DesiredAmount: 1}
	recs := RankProducts(strong, products, domain.Policy{})
	if !strings.Contains(recs[0].Explanation, "income") {
		t.Errorf("expected income fragment in %q", recs[0].Explanation)
	}

	// A profile below every threshold gets the baseline fragment only.
	weak := domain.UserProfile{DesiredAmount: 1}
	recs = RankProducts(weak, products, domain.Policy{})
	if recs[0].Explanation != "baseline screening passed" {
		t.Errorf("explanation = %q, want baseline fragment", recs[0].Explanation)
	}
}

type recommenderStoreStub struct {
	policy   domain.Policy
	products []domain.Product
}

func (s *recommenderStoreStub) LoadPolicy(ctx context.Context) (domain.Policy, error) {
	return s.policy, nil
}

func (s *recommenderStoreStub) ListVisibleProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products, nil
}

func TestRecommender_EmptyProductSet(t *testing.T) {
	r := NewRecommender(&recommenderStoreStub{policy: domain.Policy{}}, testLogger())

	recs, err := r.Recommend(context.Background(), domain.UserProfile{DesiredAmount: 1})
	if err != nil {
		t.Fatalf("Recommend error: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected empty result for empty product set, got %d", len(recs))
	}
}

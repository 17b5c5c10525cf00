/**
 * @description
 * Domain models for loan products, caller-supplied user profiles, and the
 * recommendations computed from them. Products are owned by the persistence
 * store and immutable from the core's perspective except for the visibility
 * flag, which the admin surface toggles externally. Recommendations are
 * computed fresh per request and never cached.
 */

package domain

import "time"

// Product is a loan product row as stored in the `products` table.
type Product struct {
	ID          int64     `json:"id"`
	Bank        string    `json:"bank"`
	Name        string    `json:"name"`
	RateMin     float64   `json:"rate_min"`
	RateMax     float64   `json:"rate_max"`
	LimitAmount int64     `json:"limit_amount"`
	Visible     bool      `json:"visible"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserProfile is the transient, caller-supplied input to scoring and
// recommendation. It is never persisted by the core.
type UserProfile struct {
	AnnualIncome  int64   `json:"annual_income"`
	DesiredAmount int64   `json:"desired_amount"`
	JobScore      float64 `json:"job_score"`
	AssetAmount   int64   `json:"asset_amount"`
}

// Recommendation is one ranked, explained product for a profile.
type Recommendation struct {
	Bank          string  `json:"bank"`
	Name          string  `json:"name"`
	EstimatedRate float64 `json:"estimated_rate"`
	Explanation   string  `json:"explanation"`
	LimitAmount   int64   `json:"limit_amount"`
	RateMin       float64 `json:"rate_min"`
	RateMax       float64 `json:"rate_max"`
}

/**
 * @description
 * This file defines the operator-tunable policy table and its read helpers. Policy
 * rows are plain key/value strings stored in the `app_policies` table; the core
 * reads them through typed accessors that fall back to a documented default when
 * a key is missing or unparseable. There is deliberately no schema validation
 * beyond that fallback: policy values are tuned by operators at runtime.
 *
 * @dependencies
 * - math, strconv, strings: Standard Go libraries.
 */

package domain

import (
	"math"
	"strconv"
	"strings"
)

// Policy keys read by the scoring engine and recommendation ranker.
const (
	PolicyWeightIncome   = "weight_income"
	PolicyWeightJob      = "weight_job"
	PolicyWeightAsset    = "weight_asset"
	PolicyIncomeCeiling  = "income_ceiling"
	PolicyAssetCeiling   = "asset_ceiling"
	PolicyRateSensitivity = "rate_sensitivity"
	PolicyMaxCount       = "recommend_max_count"
	PolicySortMode       = "recommend_sort_mode"
	PolicyFallbackMode   = "recommend_fallback_mode"
	PolicyThresholdIncome = "rationale_threshold_income"
	PolicyThresholdJob    = "rationale_threshold_job"
	PolicyThresholdAsset  = "rationale_threshold_asset"
)

// Sort and fallback modes accepted by the ranker.
const (
	SortModeRate     = "rate"
	SortModeLimit    = "limit"
	FallbackModeAll     = "all"
	FallbackModeExclude = "exclude"
)

// Policy defaults. These apply whenever a key is absent from the table.
const (
	DefaultWeightIncome    = 0.4
	DefaultWeightJob       = 0.3
	DefaultWeightAsset     = 0.3
	DefaultIncomeCeiling   = 100_000_000.0
	DefaultAssetCeiling    = 500_000_000.0
	DefaultRateSensitivity = 1.0
	DefaultMaxCount        = 5
	DefaultThresholdIncome = 0.15
	DefaultThresholdJob    = 0.12
	DefaultThresholdAsset  = 0.10
)

// Per-source collection scheduling keys.
func PolicyCadenceKey(source string) string { return "collect_cadence_" + source }
func PolicyEnabledKey(source string) string { return "collect_enabled_" + source }
func PolicyRunAtKey(source string) string   { return "collect_run_at_" + source }

// Policy is a snapshot of the key/value policy table.
type Policy map[string]string

// Float returns the policy value for key parsed as a float64, or def when the
// key is missing or not numeric.
func (p Policy) Float(key string, def float64) float64 {
	raw, ok := p[key]
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// Int returns the policy value for key parsed as an int, or def.
func (p Policy) Int(key string, def int) int {
	raw, ok := p[key]
	if !ok {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

// String returns the policy value for key, or def when the key is missing or blank.
func (p Policy) String(key, def string) string {
	raw, ok := p[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return def
	}
	return strings.TrimSpace(raw)
}

// Bool returns the policy value for key parsed as a boolean, or def.
func (p Policy) Bool(key string, def bool) bool {
	raw, ok := p[key]
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

// WeightsSumToOne reports whether the configured factor weights add up to 1.0
// within a small tolerance. A false result is a policy-validation warning for
// operators, never an engine error: the composite score is clamped regardless.
func (p Policy) WeightsSumToOne() bool {
	sum := p.Float(PolicyWeightIncome, DefaultWeightIncome) +
		p.Float(PolicyWeightJob, DefaultWeightJob) +
		p.Float(PolicyWeightAsset, DefaultWeightAsset)
	return math.Abs(sum-1.0) < 1e-9
}

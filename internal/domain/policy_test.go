package domain

import "testing"

func TestPolicyAccessors_Defaults(t *testing.T) {
	p := Policy{
		"weight_income":       "0.5",
		"recommend_max_count": "3",
		"recommend_sort_mode": " limit ",
		"collect_enabled_foo": "false",
		"broken_float":        "not-a-number",
	}

	if got := p.Float("weight_income", 0.4); got != 0.5 {
		t.Errorf("Float = %v, want 0.5", got)
	}
	if got := p.Float("missing", 0.4); got != 0.4 {
		t.Errorf("Float fallback = %v, want 0.4", got)
	}
	if got := p.Float("broken_float", 1.5); got != 1.5 {
		t.Errorf("Float on unparseable = %v, want default 1.5", got)
	}
	if got := p.Int("recommend_max_count", 5); got != 3 {
		t.Errorf("Int = %d, want 3", got)
	}
	if got := p.Int("missing", 5); got != 5 {
		t.Errorf("Int fallback = %d, want 5", got)
	}
	if got := p.String("recommend_sort_mode", "rate"); got != "limit" {
		t.Errorf("String = %q, want trimmed %q", got, "limit")
	}
	if got := p.String("missing", "rate"); got != "rate" {
		t.Errorf("String fallback = %q, want rate", got)
	}
	if got := p.Bool("collect_enabled_foo", true); got {
		t.Error("Bool = true, want false")
	}
	if got := p.Bool("missing", true); !got {
		t.Error("Bool fallback = false, want true")
	}
}

func TestWeightsSumToOne(t *testing.T) {
	balanced := Policy{"weight_income": "0.4", "weight_job": "0.3", "weight_asset": "0.3"}
	if !balanced.WeightsSumToOne() {
		t.Error("expected balanced weights to sum to one")
	}

	skewed := Policy{"weight_income": "0.9", "weight_job": "0.3", "weight_asset": "0.3"}
	if skewed.WeightsSumToOne() {
		t.Error("expected skewed weights to fail the sum check")
	}

	// Absent keys fall back to the documented defaults, which do sum to one.
	if !(Policy{}).WeightsSumToOne() {
		t.Error("expected default weights to sum to one")
	}
}

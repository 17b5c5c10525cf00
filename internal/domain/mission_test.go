package domain

import (
	"errors"
	"testing"
)

func TestStatColumn(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"creditScore", "credit_score"},
		{"cardUsageRate", "card_usage_rate"},
		{"monthlyIncome", "monthly_income"},
		{"savingsBalance", "savings_balance"},
		{"loanRepayments", "loan_repayments"},
	}
	for _, tt := range tests {
		got, err := StatColumn(tt.key)
		if err != nil {
			t.Errorf("StatColumn(%q) error: %v", tt.key, err)
			continue
		}
		if got != tt.want {
			t.Errorf("StatColumn(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestStatColumn_Unknown(t *testing.T) {
	if _, err := StatColumn("shadowScore"); !errors.Is(err, ErrUnknownStatKey) {
		t.Fatalf("err = %v, want ErrUnknownStatKey", err)
	}
}

func TestCompareStat(t *testing.T) {
	tests := []struct {
		name      string
		operator  string
		value     float64
		threshold float64
		want      bool
	}{
		{"gte satisfied", OpGTE, 850, 800, true},
		{"gte equal", OpGTE, 800, 800, true},
		{"gte unsatisfied", OpGTE, 800, 900, false},
		{"lte satisfied", OpLTE, 0.3, 0.5, true},
		{"lte unsatisfied", OpLTE, 0.6, 0.5, false},
		{"gt boundary", OpGT, 800, 800, false},
		{"lt satisfied", OpLT, 100, 200, true},
		{"eq satisfied", OpEQ, 5, 5, true},
		{"eq unsatisfied", OpEQ, 5, 6, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompareStat(tt.operator, tt.value, tt.threshold)
			if err != nil {
				t.Fatalf("CompareStat error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CompareStat(%q, %v, %v) = %v, want %v", tt.operator, tt.value, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestCompareStat_UnsupportedOperator(t *testing.T) {
	if _, err := CompareStat("between", 1, 2); err == nil {
		t.Fatal("expected error for unsupported operator")
	}
}

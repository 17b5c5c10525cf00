/**
 * @description
 * Domain models for gamified missions. A mission declares a statistic key, a
 * comparison operator, and a threshold; the evaluator checks the user's current
 * statistic against it and, on satisfaction, completes the mission and credits
 * the reward exactly once. The external camelCase stat keys map to stored
 * column names through an explicit lookup table so the mapping stays auditable.
 *
 * @dependencies
 * - errors, fmt, time: Standard Go libraries.
 * - github.com/google/uuid: Mission and user identifiers.
 */

package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MissionStatus is the lifecycle state of a mission. The only transition is
// pending -> completed, performed exactly once by the evaluator.
type MissionStatus string

const (
	MissionPending   MissionStatus = "pending"
	MissionCompleted MissionStatus = "completed"
)

// Comparison operators accepted in mission definitions.
const (
	OpGTE = "gte"
	OpLTE = "lte"
	OpGT  = "gt"
	OpLT  = "lt"
	OpEQ  = "eq"
)

// ErrUnknownStatKey is returned when a mission references a statistic that is
// not in the lookup table.
var ErrUnknownStatKey = errors.New("unknown mission stat key")

// Mission is one gamified task definition for one user.
type Mission struct {
	ID           uuid.UUID     `json:"id"`
	UserID       uuid.UUID     `json:"user_id"`
	Title        string        `json:"title"`
	RewardPoints int64         `json:"reward_points"`
	StatKey      string        `json:"stat_key"`
	Operator     string        `json:"operator"`
	Threshold    float64       `json:"threshold"`
	Status       MissionStatus `json:"status"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// statColumns maps external camelCase stat keys to user_stats column names.
// Kept as an explicit table rather than a string transformation so every
// supported key is visible here.
var statColumns = map[string]string{
	"creditScore":    "credit_score",
	"cardUsageRate":  "card_usage_rate",
	"monthlyIncome":  "monthly_income",
	"savingsBalance": "savings_balance",
	"loanRepayments": "loan_repayments",
}

// StatColumn resolves an external stat key to its stored column name.
func StatColumn(statKey string) (string, error) {
	col, ok := statColumns[statKey]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatKey, statKey)
	}
	return col, nil
}

// CompareStat applies a mission's comparison operator to a statistic value.
func CompareStat(operator string, value, threshold float64) (bool, error) {
	switch operator {
	case OpGTE:
		return value >= threshold, nil
	case OpLTE:
		return value <= threshold, nil
	case OpGT:
		return value > threshold, nil
	case OpLT:
		return value < threshold, nil
	case OpEQ:
		return value == threshold, nil
	default:
		return false, fmt.Errorf("unsupported mission operator %q", operator)
	}
}

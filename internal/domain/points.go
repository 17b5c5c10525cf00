/**
 * @description
 * Domain models and pure balance arithmetic for the point ledger. The ledger is
 * an append-only transaction log plus a derived running balance per user; the
 * invariant balance = total_earned - total_spent must hold at all times, so the
 * arithmetic lives here in one place and is exercised both by the PostgreSQL
 * repository (inside a row-locked transaction) and by unit tests.
 *
 * @dependencies
 * - errors, time: Standard Go libraries.
 * - github.com/google/uuid: Transaction identifiers.
 */

package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInsufficientPoints is returned when a debit would drive a balance
	// below zero.
	ErrInsufficientPoints = errors.New("insufficient point balance")
	// ErrZeroAdjustment is returned for adjustments of amount zero, which
	// would append a meaningless audit record.
	ErrZeroAdjustment = errors.New("adjustment amount must be non-zero")
)

// Point transaction types, derived from the sign of the adjustment.
const (
	PointTransactionEarn  = "earn"
	PointTransactionSpend = "spend"
)

// UserPointAccount is the derived running balance for one user.
type UserPointAccount struct {
	UserID      uuid.UUID `json:"user_id"`
	Balance     int64     `json:"balance"`
	TotalEarned int64     `json:"total_earned"`
	TotalSpent  int64     `json:"total_spent"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PointTransaction is one append-only audit record. The sum of a user's
// transaction amounts must reconcile with that user's balance.
type PointTransaction struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Amount    int64     `json:"amount"`
	Type      string    `json:"type"`
	Reason    string    `json:"reason"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
}

// ApplyAdjustment returns the account state after applying a signed amount.
// Credits add to total_earned, debits to total_spent; a debit that would make
// the balance negative fails with ErrInsufficientPoints and a zero amount with
// ErrZeroAdjustment. The input account is not modified.
func ApplyAdjustment(acct UserPointAccount, amount int64) (UserPointAccount, error) {
	if amount == 0 {
		return acct, ErrZeroAdjustment
	}
	if amount < 0 && acct.Balance+amount < 0 {
		return acct, ErrInsufficientPoints
	}

	next := acct
	next.Balance += amount
	if amount > 0 {
		next.TotalEarned += amount
	} else {
		next.TotalSpent += -amount
	}
	return next, nil
}

// TransactionType maps a signed amount to its audit record type.
func TransactionType(amount int64) string {
	if amount < 0 {
		return PointTransactionSpend
	}
	return PointTransactionEarn
}

/**
 * @description
 * The point ledger service. Wraps the repository's atomic adjustment with
 * input validation and post-commit event publishing, and exposes the account
 * plus recent-transaction view used by the audit display. The atomicity
 * guarantees themselves live in the store layer.
 *
 * @dependencies
 * - context, log/slog, time: Standard Go libraries.
 * - github.com/google/uuid: User identifiers.
 * - internal/domain: Account and transaction models, event payloads.
 * - pkg/rabbitmq: Event publishing.
 */

package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/domain"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/pkg/rabbitmq"
)

// LedgerStore is the subset of the repository the ledger needs.
type LedgerStore interface {
	AdjustPoints(ctx context.Context, userID uuid.UUID, amount int64, reason, actor string) (domain.UserPointAccount, domain.PointTransaction, error)
	GetPointAccount(ctx context.Context, userID uuid.UUID) (*domain.UserPointAccount, error)
	ListPointTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.PointTransaction, error)
}

// Ledger applies balance adjustments and serves account views.
type Ledger struct {
	store     LedgerStore
	publisher rabbitmq.Publisher
	logger    *slog.Logger
}

// NewLedger creates a new point ledger service.
func NewLedger(store LedgerStore, publisher rabbitmq.Publisher, logger *slog.Logger) *Ledger {
	return &Ledger{store: store, publisher: publisher, logger: logger}
}

// Adjust applies one signed adjustment for a user and returns the new account
// state. A zero amount is rejected before any write; debits against missing or
// insufficient accounts surface the store's sentinel errors untouched.
func (l *Ledger) Adjust(ctx context.Context, userID uuid.UUID, amount int64, reason, actor string) (domain.UserPointAccount, error) {
	if amount == 0 {
		return domain.UserPointAccount{}, domain.ErrZeroAdjustment
	}

	acct, _, err := l.store.AdjustPoints(ctx, userID, amount, reason, actor)
	if err != nil {
		return domain.UserPointAccount{}, err
	}

	l.logger.Info("points adjusted", "user_id", userID, "amount", amount, "balance", acct.Balance, "actor", actor)
	l.publishAdjusted(ctx, acct, amount, reason, actor)
	return acct, nil
}

// Account returns a user's account and most recent transactions.
func (l *Ledger) Account(ctx context.Context, userID uuid.UUID, txLimit int) (domain.UserPointAccount, []domain.PointTransaction, error) {
	acct, err := l.store.GetPointAccount(ctx, userID)
	if err != nil {
		return domain.UserPointAccount{}, nil, err
	}
	txs, err := l.store.ListPointTransactions(ctx, userID, txLimit)
	if err != nil {
		return domain.UserPointAccount{}, nil, err
	}
	return *acct, txs, nil
}

func (l *Ledger) publishAdjusted(ctx context.Context, acct domain.UserPointAccount, amount int64, reason, actor string) {
	if l.publisher == nil {
		return
	}
	event := domain.PointsAdjustedEvent{
		UserID:    acct.UserID,
		Amount:    amount,
		Balance:   acct.Balance,
		Reason:    reason,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
	}
	if err := l.publisher.Publish(ctx, domain.EventExchange, domain.RoutingKeyPointsAdjusted, event); err != nil {
		l.logger.Warn("failed to publish points event", "user_id", acct.UserID, "error", err)
	}
}

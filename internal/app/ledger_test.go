package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/domain"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/store"
)

// ledgerStoreStub mirrors the repository's adjustment semantics in memory,
// reusing the same domain arithmetic the PostgreSQL implementation applies
// inside its row-locked transaction.
type ledgerStoreStub struct {
	accounts     map[uuid.UUID]domain.UserPointAccount
	transactions []domain.PointTransaction
}

func newLedgerStoreStub() *ledgerStoreStub {
	return &ledgerStoreStub{accounts: make(map[uuid.UUID]domain.UserPointAccount)}
}

func (s *ledgerStoreStub) AdjustPoints(ctx context.Context, userID uuid.UUID, amount int64, reason, actor string) (domain.UserPointAccount, domain.PointTransaction, error) {
	acct, ok := s.accounts[userID]
	if !ok {
		if amount < 0 {
			return domain.UserPointAccount{}, domain.PointTransaction{}, store.ErrAccountNotFound
		}
		acct = domain.UserPointAccount{UserID: userID}
	}

	updated, err := domain.ApplyAdjustment(acct, amount)
	if err != nil {
		return domain.UserPointAccount{}, domain.PointTransaction{}, err
	}
	updated.UpdatedAt = time.Now()
	s.accounts[userID] = updated

	tx := domain.PointTransaction{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Type:      domain.TransactionType(amount),
		Reason:    reason,
		Actor:     actor,
		CreatedAt: time.Now(),
	}
	s.transactions = append(s.transactions, tx)
	return updated, tx, nil
}

func (s *ledgerStoreStub) GetPointAccount(ctx context.Context, userID uuid.UUID) (*domain.UserPointAccount, error) {
	acct, ok := s.accounts[userID]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	return &acct, nil
}

func (s *ledgerStoreStub) ListPointTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.PointTransaction, error) {
	var txs []domain.PointTransaction
	for _, tx := range s.transactions {
		if tx.UserID == userID {
			txs = append(txs, tx)
		}
	}
	return txs, nil
}

func TestLedger_CreditThenDebit(t *testing.T) {
	stub := newLedgerStoreStub()
	pub := &publisherStub{}
	ledger := NewLedger(stub, pub, testLogger())
	userID := uuid.New()

	if _, err := ledger.Adjust(context.Background(), userID, 500, "welcome bonus", "admin"); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	acct, err := ledger.Adjust(context.Background(), userID, -200, "voucher redeemed", "admin")
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}

	if acct.Balance != 300 || acct.TotalEarned != 500 || acct.TotalSpent != 200 {
		t.Errorf("account = %+v, want balance 300, earned 500, spent 200", acct)
	}

	txs, _ := stub.ListPointTransactions(context.Background(), userID, 10)
	if len(txs) != 2 {
		t.Fatalf("transactions = %d, want 2", len(txs))
	}
	var sum int64
	for _, tx := range txs {
		sum += tx.Amount
	}
	if sum != acct.Balance {
		t.Errorf("transaction sum %d does not reconcile with balance %d", sum, acct.Balance)
	}
	if len(pub.published) != 2 {
		t.Errorf("published events = %d, want 2", len(pub.published))
	}
}

func TestLedger_DebitMissingAccountFails(t *testing.T) {
	stub := newLedgerStoreStub()
	ledger := NewLedger(stub, nil, testLogger())

	_, err := ledger.Adjust(context.Background(), uuid.New(), -100, "test", "admin")
	if !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
	if len(stub.accounts) != 0 {
		t.Error("no account should be created on a failed debit")
	}
	if len(stub.transactions) != 0 {
		t.Error("no transaction should be recorded on a failed debit")
	}
}

func TestLedger_LazyAccountCreationOnCredit(t *testing.T) {
	stub := newLedgerStoreStub()
	ledger := NewLedger(stub, nil, testLogger())
	userID := uuid.New()

	acct, err := ledger.Adjust(context.Background(), userID, 100, "first credit", "admin")
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if acct.Balance != 100 || acct.TotalEarned != 100 || acct.TotalSpent != 0 {
		t.Errorf("account = %+v, want fresh account with balance 100", acct)
	}
}

func TestLedger_ZeroAmountRejectedBeforeStore(t *testing.T) {
	stub := newLedgerStoreStub()
	ledger := NewLedger(stub, nil, testLogger())

	_, err := ledger.Adjust(context.Background(), uuid.New(), 0, "noop", "admin")
	if !errors.Is(err, domain.ErrZeroAdjustment) {
		t.Fatalf("err = %v, want ErrZeroAdjustment", err)
	}
	if len(stub.transactions) != 0 {
		t.Error("zero adjustment must not reach the store")
	}
}

func TestLedger_InsufficientBalanceSurfaced(t *testing.T) {
	stub := newLedgerStoreStub()
	ledger := NewLedger(stub, nil, testLogger())
	userID := uuid.New()

	if _, err := ledger.Adjust(context.Background(), userID, 100, "seed", "admin"); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	_, err := ledger.Adjust(context.Background(), userID, -500, "overdraw", "admin")
	if !errors.Is(err, domain.ErrInsufficientPoints) {
		t.Fatalf("err = %v, want ErrInsufficientPoints", err)
	}

	acct, _ := stub.GetPointAccount(context.Background(), userID)
	if acct.Balance != 100 {
		t.Errorf("balance = %d after failed debit, want unchanged 100", acct.Balance)
	}
}

func TestLedger_Account(t *testing.T) {
	stub := newLedgerStoreStub()
	ledger := NewLedger(stub, nil, testLogger())
	userID := uuid.New()

	if _, _, err := ledger.Account(context.Background(), userID, 10); !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound for missing account", err)
	}

	if _, err := ledger.Adjust(context.Background(), userID, 50, "seed", "admin"); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	acct, txs, err := ledger.Account(context.Background(), userID, 10)
	if err != nil {
		t.Fatalf("Account error: %v", err)
	}
	if acct.Balance != 50 || len(txs) != 1 {
		t.Errorf("account = %+v with %d txs, want balance 50 and 1 tx", acct, len(txs))
	}
}

/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for
 * all data access operations required by the core service. Defining an interface
 * decouples the business logic from the PostgreSQL implementation and lets the
 * application services be tested against in-memory stubs.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: User, mission, and transaction identifiers.
 * - internal/domain: The service's domain models.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/domain"
)

var (
	ErrAccountNotFound  = errors.New("point account not found")
	ErrMissionNotFound  = errors.New("mission not found")
	ErrMissionCompleted = errors.New("mission already completed")
	ErrUserStatsNotFound = errors.New("user stats not found")
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Policy configuration
	LoadPolicy(ctx context.Context) (domain.Policy, error)

	// Ingestion
	InsertRawRecords(ctx context.Context, table string, records []domain.RawRecord) error
	CreateSourceRun(ctx context.Context, run *domain.SourceRun) error
	LatestSourceRuns(ctx context.Context) (map[string]domain.SourceRun, error)

	// Products
	ListVisibleProducts(ctx context.Context) ([]domain.Product, error)

	// Missions and user statistics
	ListPendingMissions(ctx context.Context) ([]domain.Mission, error)
	UserStatValue(ctx context.Context, userID uuid.UUID, column string) (float64, error)
	CompleteMissionWithReward(ctx context.Context, mission domain.Mission, actor string) (domain.UserPointAccount, domain.PointTransaction, error)

	// Point ledger
	AdjustPoints(ctx context.Context, userID uuid.UUID, amount int64, reason, actor string) (domain.UserPointAccount, domain.PointTransaction, error)
	GetPointAccount(ctx context.Context, userID uuid.UUID) (*domain.UserPointAccount, error)
	ListPointTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.PointTransaction, error)
}

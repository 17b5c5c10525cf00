/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all SQL for policy reads, raw-row ingestion, the source-run audit
 * trail, mission evaluation, and the point ledger. Ledger mutations lock the
 * account row with FOR UPDATE and commit the balance update together with the
 * audit transaction insert, so an adjustment is never partially applied.
 *
 * @dependencies
 * - context, errors, fmt, sort, strings, time: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - github.com/google/uuid: Identifier handling.
 * - internal/domain: Domain models and the pure ledger arithmetic.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// LoadPolicy returns a snapshot of the app_policies key/value table.
func (r *PostgresRepository) LoadPolicy(ctx context.Context) (domain.Policy, error) {
	rows, err := r.db.Query(ctx, "SELECT key, value FROM app_policies")
	if err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}
	defer rows.Close()

	policy := domain.Policy{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		policy[key] = value
	}
	return policy, rows.Err()
}

// InsertRawRecords appends fetched rows to a source's designated raw table.
// Table and column names come from the fixed source registry and the fetch
// contract, not from request input; they are still sanitized as identifiers.
func (r *PostgresRepository) InsertRawRecords(ctx context.Context, table string, records []domain.RawRecord) error {
	if len(records) == 0 {
		return nil
	}

	columns := make([]string, 0, len(records[0]))
	for col := range records[0] {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = pgx.Identifier{col}.Sanitize()
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{table}.Sanitize(),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	batch := &pgx.Batch{}
	for _, record := range records {
		args := make([]any, len(columns))
		for i, col := range columns {
			args[i] = record[col]
		}
		batch.Queue(query, args...)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert raw records into %s: %w", table, err)
		}
	}
	return nil
}

// CreateSourceRun appends one audit record for a collection attempt and fills
// in the generated id and timestamp.
func (r *PostgresRepository) CreateSourceRun(ctx context.Context, run *domain.SourceRun) error {
	query := `
		INSERT INTO source_runs (source, status, row_count, error_detail, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, run.Source, run.Status, run.RowCount, run.ErrorDetail).
		Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create source run: %w", err)
	}
	return nil
}

// LatestSourceRuns returns the most recent run per source, keyed by source name.
func (r *PostgresRepository) LatestSourceRuns(ctx context.Context) (map[string]domain.SourceRun, error) {
	query := `
		SELECT DISTINCT ON (source) id, source, status, row_count, error_detail, created_at
		FROM source_runs
		ORDER BY source, created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest source runs: %w", err)
	}
	defer rows.Close()

	latest := make(map[string]domain.SourceRun)
	for rows.Next() {
		var run domain.SourceRun
		if err := rows.Scan(&run.ID, &run.Source, &run.Status, &run.RowCount, &run.ErrorDetail, &run.CreatedAt); err != nil {
			return nil, err
		}
		latest[run.Source] = run
	}
	return latest, rows.Err()
}

// ListVisibleProducts returns all products whose visibility flag is set.
func (r *PostgresRepository) ListVisibleProducts(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, bank, name, rate_min, rate_max, limit_amount, visible, created_at
		FROM products
		WHERE visible = TRUE
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Bank, &p.Name, &p.RateMin, &p.RateMax, &p.LimitAmount, &p.Visible, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListPendingMissions returns every mission still in pending status.
func (r *PostgresRepository) ListPendingMissions(ctx context.Context) ([]domain.Mission, error) {
	query := `
		SELECT id, user_id, title, reward_points, stat_key, operator, threshold, status, completed_at, created_at
		FROM missions
		WHERE status = 'pending'
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending missions: %w", err)
	}
	defer rows.Close()

	var missions []domain.Mission
	for rows.Next() {
		var m domain.Mission
		if err := rows.Scan(&m.ID, &m.UserID, &m.Title, &m.RewardPoints, &m.StatKey, &m.Operator, &m.Threshold, &m.Status, &m.CompletedAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

// UserStatValue reads a single statistic column for a user. The column name is
// resolved through the explicit stat lookup table before it reaches this method.
func (r *PostgresRepository) UserStatValue(ctx context.Context, userID uuid.UUID, column string) (float64, error) {
	query := fmt.Sprintf("SELECT %s FROM user_stats WHERE user_id = $1", pgx.Identifier{column}.Sanitize())
	var value float64
	err := r.db.QueryRow(ctx, query, userID).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserStatsNotFound
		}
		return 0, fmt.Errorf("failed to read user stat %s: %w", column, err)
	}
	return value, nil
}

// CompleteMissionWithReward flips a pending mission to completed and credits
// the reward in the same database transaction. Either both the status flip and
// the ledger credit commit, or neither is visible.
func (r *PostgresRepository) CompleteMissionWithReward(ctx context.Context, mission domain.Mission, actor string) (domain.UserPointAccount, domain.PointTransaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.UserPointAccount{}, domain.PointTransaction{}, err
	}
	defer tx.Rollback(ctx)

	// Guard on status so a concurrent evaluation run can never pay twice.
	var completedAt time.Time
	query := `
		UPDATE missions
		SET status = 'completed', completed_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING completed_at
	`
	err = tx.QueryRow(ctx, query, mission.ID).Scan(&completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserPointAccount{}, domain.PointTransaction{}, ErrMissionCompleted
		}
		return domain.UserPointAccount{}, domain.PointTransaction{}, fmt.Errorf("failed to complete mission: %w", err)
	}

	reason := fmt.Sprintf("mission %s: %s", mission.ID, mission.Title)
	acct, ptx, err := adjustPointsInTx(ctx, tx, mission.UserID, mission.RewardPoints, reason, actor)
	if err != nil {
		return domain.UserPointAccount{}, domain.PointTransaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.UserPointAccount{}, domain.PointTransaction{}, err
	}
	return acct, ptx, nil
}

// AdjustPoints applies one signed balance adjustment plus its audit transaction
// atomically and returns the updated account.
func (r *PostgresRepository) AdjustPoints(ctx context.Context, userID uuid.UUID, amount int64, reason, actor string) (domain.UserPointAccount, domain.PointTransaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.UserPointAccount{}, domain.PointTransaction{}, err
	}
	defer tx.Rollback(ctx)

	acct, ptx, err := adjustPointsInTx(ctx, tx, userID, amount, reason, actor)
	if err != nil {
		return domain.UserPointAccount{}, domain.PointTransaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.UserPointAccount{}, domain.PointTransaction{}, err
	}
	return acct, ptx, nil
}

// adjustPointsInTx performs the ledger mutation inside an existing transaction.
// The account row is locked with FOR UPDATE so concurrent adjustments for the
// same user serialize; accounts are created lazily on first credit and a debit
// against a missing account fails with ErrAccountNotFound.
func adjustPointsInTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64, reason, actor string) (domain.UserPointAccount, domain.PointTransaction, error) {
	var acct domain.UserPointAccount
	selectQuery := `
		SELECT user_id, balance, total_earned, total_spent, updated_at
		FROM user_point_accounts
		WHERE user_id = $1
		FOR UPDATE
	`
	err := tx.QueryRow(ctx, selectQuery, userID).
		Scan(&acct.UserID, &acct.Balance, &acct.TotalEarned, &acct.TotalSpent, &acct.UpdatedAt)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return acct, domain.PointTransaction{}, err
		}
		if amount < 0 {
			return acct, domain.PointTransaction{}, ErrAccountNotFound
		}
		insertQuery := `
			INSERT INTO user_point_accounts (user_id, balance, total_earned, total_spent, updated_at)
			VALUES ($1, 0, 0, 0, NOW())
			RETURNING user_id, balance, total_earned, total_spent, updated_at
		`
		err = tx.QueryRow(ctx, insertQuery, userID).
			Scan(&acct.UserID, &acct.Balance, &acct.TotalEarned, &acct.TotalSpent, &acct.UpdatedAt)
		if err != nil {
			return acct, domain.PointTransaction{}, fmt.Errorf("failed to create point account: %w", err)
		}
	}

	updated, err := domain.ApplyAdjustment(acct, amount)
	if err != nil {
		return acct, domain.PointTransaction{}, err
	}

	updateQuery := `
		UPDATE user_point_accounts
		SET balance = $2, total_earned = $3, total_spent = $4, updated_at = NOW()
		WHERE user_id = $1
		RETURNING updated_at
	`
	err = tx.QueryRow(ctx, updateQuery, userID, updated.Balance, updated.TotalEarned, updated.TotalSpent).
		Scan(&updated.UpdatedAt)
	if err != nil {
		return acct, domain.PointTransaction{}, fmt.Errorf("failed to update point account: %w", err)
	}

	ptx := domain.PointTransaction{
		ID:     uuid.New(),
		UserID: userID,
		Amount: amount,
		Type:   domain.TransactionType(amount),
		Reason: reason,
		Actor:  actor,
	}
	txQuery := `
		INSERT INTO point_transactions (id, user_id, amount, type, reason, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	err = tx.QueryRow(ctx, txQuery, ptx.ID, ptx.UserID, ptx.Amount, ptx.Type, ptx.Reason, ptx.Actor).
		Scan(&ptx.CreatedAt)
	if err != nil {
		return acct, domain.PointTransaction{}, fmt.Errorf("failed to insert point transaction: %w", err)
	}

	return updated, ptx, nil
}

// GetPointAccount returns a user's point account, or ErrAccountNotFound.
func (r *PostgresRepository) GetPointAccount(ctx context.Context, userID uuid.UUID) (*domain.UserPointAccount, error) {
	var acct domain.UserPointAccount
	query := `
		SELECT user_id, balance, total_earned, total_spent, updated_at
		FROM user_point_accounts
		WHERE user_id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).
		Scan(&acct.UserID, &acct.Balance, &acct.TotalEarned, &acct.TotalSpent, &acct.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &acct, nil
}

// ListPointTransactions returns a user's most recent ledger transactions.
func (r *PostgresRepository) ListPointTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.PointTransaction, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, user_id, amount, type, reason, actor, created_at
		FROM point_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list point transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.PointTransaction
	for rows.Next() {
		var t domain.PointTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Reason, &t.Actor, &t.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

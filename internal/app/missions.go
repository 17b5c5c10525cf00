/**
 * @description
 * The mission evaluator. Checks every pending mission's predicate against the
 * user's current statistic and, on satisfaction, completes the mission and
 * credits the reward through the repository as a single atomic unit. An unmet
 * mission produces zero side effects, so re-evaluation on the next run is
 * idempotent by construction.
 *
 * @dependencies
 * - context, errors, log/slog, time: Standard Go libraries.
 * - github.com/google/uuid: User identifiers.
 * - internal/domain, internal/store: Domain models, stat lookup, sentinel errors.
 * - pkg/rabbitmq: Mission-completed event publishing.
 */

package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/domain"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/store"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/pkg/rabbitmq"
)

// MissionActor tags ledger transactions credited automatically by evaluation.
const MissionActor = "system"

// MissionStore is the subset of the repository the evaluator needs.
type MissionStore interface {
	ListPendingMissions(ctx context.Context) ([]domain.Mission, error)
	UserStatValue(ctx context.Context, userID uuid.UUID, column string) (float64, error)
	CompleteMissionWithReward(ctx context.Context, mission domain.Mission, actor string) (domain.UserPointAccount, domain.PointTransaction, error)
}

// MissionEvaluator evaluates mission predicates against user statistics.
type MissionEvaluator struct {
	store     MissionStore
	publisher rabbitmq.Publisher
	logger    *slog.Logger
}

// NewMissionEvaluator creates a new evaluator.
func NewMissionEvaluator(store MissionStore, publisher rabbitmq.Publisher, logger *slog.Logger) *MissionEvaluator {
	return &MissionEvaluator{store: store, publisher: publisher, logger: logger}
}

// EvaluateAll checks every pending mission once and returns how many completed
// this run. Per-mission failures are surfaced in the joined error but never
// stop evaluation of the remaining missions; silent loss of payout state is
// unacceptable, so nothing is swallowed.
func (e *MissionEvaluator) EvaluateAll(ctx context.Context) (int, error) {
	missions, err := e.store.ListPendingMissions(ctx)
	if err != nil {
		return 0, err
	}
	if len(missions) == 0 {
		return 0, nil
	}

	completed := 0
	var errs []error
	for _, mission := range missions {
		done, err := e.evaluate(ctx, mission)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if done {
			completed++
		}
	}
	return completed, errors.Join(errs...)
}

func (e *MissionEvaluator) evaluate(ctx context.Context, mission domain.Mission) (bool, error) {
	column, err := domain.StatColumn(mission.StatKey)
	if err != nil {
		// A mission referencing an unmapped stat is a definition problem,
		// not an evaluation failure. Skip it and leave it pending.
		e.logger.Warn("skipping mission with unmapped stat key", "mission_id", mission.ID, "stat_key", mission.StatKey)
		return false, nil
	}

	value, err := e.store.UserStatValue(ctx, mission.UserID, column)
	if err != nil {
		if errors.Is(err, store.ErrUserStatsNotFound) {
			return false, nil
		}
		return false, err
	}

	satisfied, err := domain.CompareStat(mission.Operator, value, mission.Threshold)
	if err != nil {
		e.logger.Warn("skipping mission with unsupported operator", "mission_id", mission.ID, "operator", mission.Operator)
		return false, nil
	}
	if !satisfied {
		return false, nil
	}

	_, _, err = e.store.CompleteMissionWithReward(ctx, mission, MissionActor)
	if err != nil {
		if errors.Is(err, store.ErrMissionCompleted) {
			// Lost the race to a concurrent evaluation run; the payout
			// already happened exactly once.
			return false, nil
		}
		return false, err
	}

	e.logger.Info("mission completed", "mission_id", mission.ID, "user_id", mission.UserID, "reward", mission.RewardPoints)
	e.publishCompleted(ctx, mission)
	return true, nil
}

func (e *MissionEvaluator) publishCompleted(ctx context.Context, mission domain.Mission) {
	if e.publisher == nil {
		return
	}
	event := domain.MissionCompletedEvent{
		MissionID:    mission.ID,
		UserID:       mission.UserID,
		Title:        mission.Title,
		RewardPoints: mission.RewardPoints,
		Timestamp:    time.Now().UTC(),
	}
	if err := e.publisher.Publish(ctx, domain.EventExchange, domain.RoutingKeyMissionCompleted, event); err != nil {
		e.logger.Warn("failed to publish mission event", "mission_id", mission.ID, "error", err)
	}
}

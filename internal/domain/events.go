/**
 * @description
 * Event payloads published to the message broker after state changes commit.
 * All events go to a single topic exchange; consumers (notification surfaces,
 * the admin dashboard) bind on the routing keys below.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventExchange is the topic exchange all core events are published to.
const EventExchange = "core.events"

// Routing keys for core events.
const (
	RoutingKeyIngestionCompleted = "ingestion.completed"
	RoutingKeyMissionCompleted   = "mission.completed"
	RoutingKeyPointsAdjusted     = "points.adjusted"
)

// IngestionCompletedEvent is published once per source per collection run.
type IngestionCompletedEvent struct {
	Source    string          `json:"source"`
	Status    SourceRunStatus `json:"status"`
	RowCount  int             `json:"row_count"`
	Timestamp time.Time       `json:"timestamp"`
}

// MissionCompletedEvent is published after a mission payout commits.
type MissionCompletedEvent struct {
	MissionID    uuid.UUID `json:"mission_id"`
	UserID       uuid.UUID `json:"user_id"`
	Title        string    `json:"title"`
	RewardPoints int64     `json:"reward_points"`
	Timestamp    time.Time `json:"timestamp"`
}

// PointsAdjustedEvent is published after any ledger adjustment commits.
type PointsAdjustedEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	Amount    int64     `json:"amount"`
	Balance   int64     `json:"balance"`
	Reason    string    `json:"reason"`
	Actor     string    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
}

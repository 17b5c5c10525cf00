/**
 * @description
 * HTTP handlers for the core service's caller-facing entry points. Handlers
 * parse requests, call into the application services, and write structured JSON
 * responses; they never render anything. The admin dashboard and web front end
 * are the consumers.
 *
 * @dependencies
 * - encoding/json, errors, log/slog, net/http, time: Standard Go libraries.
 * - github.com/go-chi/chi/v5: URL parameter extraction.
 * - github.com/google/uuid: User identifier parsing.
 * - internal/app, internal/domain, internal/store: Services, models, sentinel errors.
 */

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/app"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/domain"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/store"
)

// StatusStore is the subset of the repository the status endpoint needs.
type StatusStore interface {
	LatestSourceRuns(ctx context.Context) (map[string]domain.SourceRun, error)
	LoadPolicy(ctx context.Context) (domain.Policy, error)
}

// Handlers holds the application services the HTTP layer dispatches to.
type Handlers struct {
	pipeline    *app.Pipeline
	recommender *app.Recommender
	evaluator   *app.MissionEvaluator
	ledger      *app.Ledger
	status      StatusStore
	limiter     *app.RedisAdjustRateLimiter
	adjustLimit int
	runAt       string
	logger      *slog.Logger
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(
	pipeline *app.Pipeline,
	recommender *app.Recommender,
	evaluator *app.MissionEvaluator,
	ledger *app.Ledger,
	status StatusStore,
	limiter *app.RedisAdjustRateLimiter,
	adjustLimit int,
	runAt string,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		pipeline:    pipeline,
		recommender: recommender,
		evaluator:   evaluator,
		ledger:      ledger,
		status:      status,
		limiter:     limiter,
		adjustLimit: adjustLimit,
		runAt:       runAt,
		logger:      logger,
	}
}

// CollectSourceHandler triggers one source's collection manually. The response
// carries the run's audit record whether it succeeded or failed; the outcome is
// already durable either way.
func (h *Handlers) CollectSourceHandler(w http.ResponseWriter, r *http.Request) {
	sourceName := chi.URLParam(r, "source")

	run, err := h.pipeline.Collect(r.Context(), sourceName)
	if err != nil {
		if errors.Is(err, app.ErrUnknownSource) {
			h.writeError(w, http.StatusNotFound, "Unknown data source")
			return
		}
		if run.Status == domain.SourceRunFail && run.ID != 0 {
			// The failure is recorded; report the run rather than a bare error.
			h.writeJSON(w, http.StatusOK, run)
			return
		}
		h.logger.Error("manual collection failed", "source", sourceName, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Collection failed")
		return
	}

	h.writeJSON(w, http.StatusOK, run)
}

// RunAllHandler triggers a full collection batch manually.
func (h *Handlers) RunAllHandler(w http.ResponseWriter, r *http.Request) {
	runs := h.pipeline.RunAll(r.Context())
	h.writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

type sourceStatusResponse struct {
	Source        string            `json:"source"`
	LastRun       *domain.SourceRun `json:"last_run,omitempty"`
	NextRun       *time.Time        `json:"next_run,omitempty"`
	ScheduleLabel string            `json:"schedule_label"`
}

// SourceStatusHandler reports per-source data freshness: the latest audit
// record and the computed next scheduled run.
func (h *Handlers) SourceStatusHandler(w http.ResponseWriter, r *http.Request) {
	latest, err := h.status.LatestSourceRuns(r.Context())
	if err != nil {
		h.logger.Error("failed to load source runs", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load source status")
		return
	}
	policy, err := h.status.LoadPolicy(r.Context())
	if err != nil {
		h.logger.Error("failed to load policy", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load source status")
		return
	}

	now := time.Now()
	statuses := make([]sourceStatusResponse, 0, len(h.pipeline.Sources()))
	for _, name := range h.pipeline.Sources() {
		cadence := policy.String(domain.PolicyCadenceKey(name), app.CadenceDaily)
		enabled := policy.Bool(domain.PolicyEnabledKey(name), true)
		runAt := policy.String(domain.PolicyRunAtKey(name), h.runAt)

		next, label := app.NextRunInfo(cadence, runAt, enabled, now)
		status := sourceStatusResponse{Source: name, NextRun: next, ScheduleLabel: label}
		if run, ok := latest[name]; ok {
			lastRun := run
			status.LastRun = &lastRun
		}
		statuses = append(statuses, status)
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"sources": statuses})
}

// RecommendHandler returns the ranked product list for a caller-supplied profile.
func (h *Handlers) RecommendHandler(w http.ResponseWriter, r *http.Request) {
	var profile domain.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if profile.DesiredAmount <= 0 {
		h.writeError(w, http.StatusBadRequest, "desired_amount must be positive")
		return
	}

	recs, err := h.recommender.Recommend(r.Context(), profile)
	if err != nil {
		h.logger.Error("recommendation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to compute recommendations")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
}

// EvaluateMissionsHandler runs mission evaluation once and reports how many
// missions completed.
func (h *Handlers) EvaluateMissionsHandler(w http.ResponseWriter, r *http.Request) {
	completed, err := h.evaluator.EvaluateAll(r.Context())
	if err != nil {
		h.logger.Error("mission evaluation failed", "completed", completed, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Mission evaluation encountered failures")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"completed_count": completed})
}

type adjustPointsRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Amount int64     `json:"amount"`
	Reason string    `json:"reason"`
}

// AdjustPointsHandler applies an administrative point adjustment. The acting
// identity comes from the validated admin token and is rate limited.
func (h *Handlers) AdjustPointsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := GetActor(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Missing authenticated actor")
		return
	}

	exceeded, retryAfter, err := h.limiter.Consume(r.Context(), actor, h.adjustLimit, time.Minute)
	if err != nil {
		h.logger.Warn("rate limiter unavailable; allowing request", "error", err)
	} else if exceeded {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		h.writeError(w, http.StatusTooManyRequests, "Too many adjustments; slow down")
		return
	}

	var req adjustPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == uuid.Nil {
		h.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.Reason == "" {
		h.writeError(w, http.StatusBadRequest, "reason is required")
		return
	}

	acct, err := h.ledger.Adjust(r.Context(), req.UserID, req.Amount, req.Reason, actor)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrZeroAdjustment):
			h.writeError(w, http.StatusBadRequest, "Adjustment amount must be non-zero")
		case errors.Is(err, store.ErrAccountNotFound):
			h.writeError(w, http.StatusNotFound, "Cannot debit a non-existent point account")
		case errors.Is(err, domain.ErrInsufficientPoints):
			h.writeError(w, http.StatusUnprocessableEntity, "Insufficient point balance")
		default:
			h.logger.Error("point adjustment failed", "user_id", req.UserID, "error", err)
			h.writeError(w, http.StatusInternalServerError, "Failed to adjust points")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, acct)
}

// PointAccountHandler returns a user's account and recent ledger transactions.
func (h *Handlers) PointAccountHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	acct, txs, err := h.ledger.Account(r.Context(), userID, 20)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			h.writeError(w, http.StatusNotFound, "Point account not found")
			return
		}
		h.logger.Error("failed to load point account", "user_id", userID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load point account")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"account": acct, "transactions": txs})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

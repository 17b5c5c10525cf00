/**
 * @description
 * The scheduled ingestion pipeline. Each configured data source has an injected
 * fetch function; a collection attempt retries transient fetch failures up to
 * the policy bound, persists fetched rows to the source's raw table on success,
 * and always writes exactly one source-run audit record, success or failure.
 * One source's outage never aborts the batch: RunAll records the failure and
 * moves on to the next source.
 *
 * @dependencies
 * - context, errors, fmt, log/slog, time: Standard Go libraries.
 * - internal/domain: Source-run models and event payloads.
 * - pkg/rabbitmq: Event publishing after a run record commits.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/domain"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/pkg/rabbitmq"
)

// ErrUnknownSource is returned when a collection is requested for a source
// that is not registered.
var ErrUnknownSource = errors.New("unknown data source")

// FetchFunc fetches one source's current rows. Implementations may fail; the
// pipeline owns retries.
type FetchFunc func(ctx context.Context) ([]domain.RawRecord, error)

// Source is one registered external data source. Table names the raw table
// rows are appended to.
type Source struct {
	Name  string
	Table string
	Fetch FetchFunc
}

// PipelineStore is the subset of the repository the pipeline needs.
type PipelineStore interface {
	InsertRawRecords(ctx context.Context, table string, records []domain.RawRecord) error
	CreateSourceRun(ctx context.Context, run *domain.SourceRun) error
}

// Pipeline collects external data sources in a fixed, declared order.
type Pipeline struct {
	sources   []Source
	store     PipelineStore
	retry     RetryPolicy
	publisher rabbitmq.Publisher
	logger    *slog.Logger
}

// NewPipeline creates a pipeline over the given sources. Source order is
// preserved; it determines the order of audit records in RunAll.
func NewPipeline(sources []Source, store PipelineStore, retry RetryPolicy, publisher rabbitmq.Publisher, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		sources:   sources,
		store:     store,
		retry:     retry,
		publisher: publisher,
		logger:    logger,
	}
}

// Sources returns the registered source names in declared order.
func (p *Pipeline) Sources() []string {
	names := make([]string, len(p.sources))
	for i, s := range p.sources {
		names[i] = s.Name
	}
	return names
}

// Collect runs one source's collection: fetch with retries, persist rows, and
// write the audit record. The returned error reports an exhausted fetch or a
// persistence failure; in every case exactly one source run has been recorded.
func (p *Pipeline) Collect(ctx context.Context, sourceName string) (domain.SourceRun, error) {
	var source *Source
	for i := range p.sources {
		if p.sources[i].Name == sourceName {
			source = &p.sources[i]
			break
		}
	}
	if source == nil {
		return domain.SourceRun{}, fmt.Errorf("%w: %q", ErrUnknownSource, sourceName)
	}
	return p.collect(ctx, *source)
}

func (p *Pipeline) collect(ctx context.Context, source Source) (domain.SourceRun, error) {
	p.logger.Info("collecting source", "source", source.Name)

	var records []domain.RawRecord
	fetchErr := p.retry.Do(ctx, func(ctx context.Context) error {
		rows, err := source.Fetch(ctx)
		if err != nil {
			p.logger.Warn("source fetch attempt failed", "source", source.Name, "error", err)
			return err
		}
		records = rows
		return nil
	})

	run := domain.SourceRun{Source: source.Name}
	if fetchErr != nil {
		detail := fetchErr.Error()
		run.Status = domain.SourceRunFail
		run.ErrorDetail = &detail
		if err := p.store.CreateSourceRun(ctx, &run); err != nil {
			return run, fmt.Errorf("failed to record failed run for %s: %w", source.Name, err)
		}
		p.publishRun(ctx, run)
		return run, fmt.Errorf("collection of %s exhausted retries: %w", source.Name, fetchErr)
	}

	if err := p.store.InsertRawRecords(ctx, source.Table, records); err != nil {
		detail := err.Error()
		run.Status = domain.SourceRunFail
		run.ErrorDetail = &detail
		if recErr := p.store.CreateSourceRun(ctx, &run); recErr != nil {
			return run, fmt.Errorf("failed to record failed run for %s: %w", source.Name, recErr)
		}
		p.publishRun(ctx, run)
		return run, fmt.Errorf("failed to persist rows for %s: %w", source.Name, err)
	}

	run.Status = domain.SourceRunSuccess
	run.RowCount = len(records)
	if err := p.store.CreateSourceRun(ctx, &run); err != nil {
		return run, fmt.Errorf("failed to record successful run for %s: %w", source.Name, err)
	}
	p.publishRun(ctx, run)

	p.logger.Info("source collected", "source", source.Name, "rows", run.RowCount)
	return run, nil
}

// RunAll collects every registered source in declared order. Failures are
// absorbed into the audit log; the batch never aborts because one source is
// down.
func (p *Pipeline) RunAll(ctx context.Context) []domain.SourceRun {
	p.logger.Info("starting collection run", "sources", len(p.sources))

	runs := make([]domain.SourceRun, 0, len(p.sources))
	for _, source := range p.sources {
		run, err := p.collect(ctx, source)
		if err != nil {
			p.logger.Error("source collection failed", "source", source.Name, "error", err)
		}
		runs = append(runs, run)
	}

	p.logger.Info("collection run finished", "sources", len(runs))
	return runs
}

func (p *Pipeline) publishRun(ctx context.Context, run domain.SourceRun) {
	if p.publisher == nil {
		return
	}
	event := domain.IngestionCompletedEvent{
		Source:    run.Source,
		Status:    run.Status,
		RowCount:  run.RowCount,
		Timestamp: time.Now().UTC(),
	}
	if err := p.publisher.Publish(ctx, domain.EventExchange, domain.RoutingKeyIngestionCompleted, event); err != nil {
		p.logger.Warn("failed to publish ingestion event", "source", run.Source, "error", err)
	}
}

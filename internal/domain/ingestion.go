/**
 * @description
 * Domain models for the ingestion audit trail. Every attempted collection of an
 * external data source produces exactly one SourceRun row, success or failure;
 * these rows are append-only and form the system's data-freshness record.
 */

package domain

import "time"

// SourceRunStatus is the outcome of a single collection attempt.
type SourceRunStatus string

const (
	SourceRunSuccess SourceRunStatus = "SUCCESS"
	SourceRunFail    SourceRunStatus = "FAIL"
)

// SourceRun is one audit record of a single ingestion attempt's outcome.
// ErrorDetail is present iff the run failed. Never mutated after creation.
type SourceRun struct {
	ID          int64           `json:"id"`
	Source      string          `json:"source"`
	Status      SourceRunStatus `json:"status"`
	RowCount    int             `json:"row_count"`
	ErrorDetail *string         `json:"error_detail,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RawRecord is one flat record returned by an external data-source fetch.
// Keys name the destination columns of the source's raw table.
type RawRecord map[string]any

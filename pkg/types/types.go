// Package types defines the public domain types for Cumulus granule tracking.
package types

import (
	"encoding/json"
	"time"
)

// GranuleStatus represents the lifecycle state of a granule as reported by
// pipeline executions.
type GranuleStatus string

// GranuleStatus values. Running and Queued are the in-flight states; every
// other status is terminal.
const (
	GranuleRunning   GranuleStatus = "running"
	GranuleQueued    GranuleStatus = "queued"
	GranuleCompleted GranuleStatus = "completed"
	GranuleFailed    GranuleStatus = "failed"
)

// IsTerminal returns true if the status signifies processing has finished.
// Any status other than running/queued is terminal.
func IsTerminal(status GranuleStatus) bool {
	return status != GranuleRunning && status != GranuleQueued
}

// ExecutionStatus represents the state of a single workflow execution.
type ExecutionStatus string

// ExecutionStatus values.
const (
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
)

// GranuleRecord is one trackable unit of data processed by pipeline
// executions. The (GranuleID, CollectionID) pair is unique; InternalID is a
// surrogate key assigned at creation and never reassigned.
type GranuleRecord struct {
	InternalID   int64         `json:"internalId"`
	GranuleID    string        `json:"granuleId"`
	CollectionID int64         `json:"collectionId"`
	Status       GranuleStatus `json:"status"`

	// Event-time fields. CreatedAt drives the staleness guard on upsert.
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Timestamp time.Time `json:"timestamp"`

	// Payload fields populated by terminal writers.
	Published         bool            `json:"published"`
	Duration          float64         `json:"duration,omitempty"`
	ProductVolume     int64           `json:"productVolume,omitempty"`
	Error             json.RawMessage `json:"error,omitempty"`
	CMRLink           string          `json:"cmrLink,omitempty"`
	Provider          string          `json:"provider,omitempty"`
	BeginningDateTime *time.Time      `json:"beginningDateTime,omitempty"`
	EndingDateTime    *time.Time      `json:"endingDateTime,omitempty"`
}

// ExecutionRecord is one run of a workflow that processes granules.
type ExecutionRecord struct {
	InternalID int64           `json:"internalId"`
	ARN        string          `json:"arn"`
	Status     ExecutionStatus `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// ExecutionLinkage associates a granule with an execution that processed it.
// Rows are append-only: created once, never field-updated, deleted only as an
// explicit separate operation.
type ExecutionLinkage struct {
	GranuleInternalID   int64 `json:"granuleInternalId"`
	ExecutionInternalID int64 `json:"executionInternalId"`
}

// NormalizeTime reduces a timestamp to the canonical instant used for
// event-time comparisons: UTC at millisecond precision. The staleness guard
// only behaves deterministically if every written created_at went through
// this same normalization.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// Package ingest consumes granule status events from SQS and applies them
// through the guarded upsert engine.
package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/adtisdal-ASDC/cumulus/internal/store"
	"github.com/adtisdal-ASDC/cumulus/pkg/types"
)

// ExecutionRef identifies the workflow execution that produced an event.
type ExecutionRef struct {
	ARN    string                `json:"arn"`
	Status types.ExecutionStatus `json:"status,omitempty"`
}

// StatusEvent is the wire shape of one granule status message. Events for
// the same granule may arrive repeated, out of order, and concurrently; the
// upsert engine resolves them.
type StatusEvent struct {
	EventID      string              `json:"eventId,omitempty"`
	GranuleID    string              `json:"granuleId"`
	CollectionID int64               `json:"collectionId"`
	Status       types.GranuleStatus `json:"status"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
	Timestamp    time.Time           `json:"timestamp"`
	Execution    *ExecutionRef       `json:"execution,omitempty"`

	Published         bool            `json:"published,omitempty"`
	Duration          float64         `json:"duration,omitempty"`
	ProductVolume     int64           `json:"productVolume,omitempty"`
	Error             json.RawMessage `json:"error,omitempty"`
	CMRLink           string          `json:"cmrLink,omitempty"`
	Provider          string          `json:"provider,omitempty"`
	BeginningDateTime *time.Time      `json:"beginningDateTime,omitempty"`
	EndingDateTime    *time.Time      `json:"endingDateTime,omitempty"`
}

// DecodeStatusEvent parses and validates a raw message body.
func DecodeStatusEvent(body []byte) (StatusEvent, error) {
	var event StatusEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return StatusEvent{}, fmt.Errorf("parsing status event: %v: %w", err, store.ErrInvalidArgument)
	}
	if event.GranuleID == "" {
		return StatusEvent{}, fmt.Errorf("status event missing granuleId: %w", store.ErrInvalidArgument)
	}
	if event.CollectionID <= 0 {
		return StatusEvent{}, fmt.Errorf("status event missing collectionId: %w", store.ErrInvalidArgument)
	}
	if event.Status == "" {
		return StatusEvent{}, fmt.Errorf("status event missing status: %w", store.ErrInvalidArgument)
	}
	if event.CreatedAt.IsZero() {
		return StatusEvent{}, fmt.Errorf("status event missing createdAt: %w", store.ErrInvalidArgument)
	}
	if event.Execution != nil && event.Execution.ARN == "" {
		return StatusEvent{}, fmt.Errorf("status event execution missing arn: %w", store.ErrInvalidArgument)
	}
	return event, nil
}

// Record maps the event onto a granule record for the upsert engine.
func (e StatusEvent) Record() types.GranuleRecord {
	updatedAt := e.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = e.CreatedAt
	}
	timestamp := e.Timestamp
	if timestamp.IsZero() {
		timestamp = updatedAt
	}
	return types.GranuleRecord{
		GranuleID:         e.GranuleID,
		CollectionID:      e.CollectionID,
		Status:            e.Status,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         updatedAt,
		Timestamp:         timestamp,
		Published:         e.Published,
		Duration:          e.Duration,
		ProductVolume:     e.ProductVolume,
		Error:             e.Error,
		CMRLink:           e.CMRLink,
		Provider:          e.Provider,
		BeginningDateTime: e.BeginningDateTime,
		EndingDateTime:    e.EndingDateTime,
	}
}

// ExecutionRecord maps the event's execution reference onto an execution
// record. The execution status defaults to running for in-flight granule
// statuses and mirrors terminal ones otherwise.
func (e StatusEvent) ExecutionRecord() types.ExecutionRecord {
	status := e.Execution.Status
	if status == "" {
		status = types.ExecutionRunning
		if types.IsTerminal(e.Status) {
			status = types.ExecutionStatus(e.Status)
		}
	}
	updatedAt := e.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = e.CreatedAt
	}
	return types.ExecutionRecord{
		ARN:       e.Execution.ARN,
		Status:    status,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

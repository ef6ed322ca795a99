package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/oklog/ulid/v2"
	"github.com/sony/gobreaker"

	"github.com/adtisdal-ASDC/cumulus/internal/metrics"
	"github.com/adtisdal-ASDC/cumulus/internal/store"
	"github.com/adtisdal-ASDC/cumulus/pkg/types"
)

// SQSAPI is the subset of the SQS client the consumer uses.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Upserter applies a granule status event. Satisfied by the Postgres
// granule store.
type Upserter interface {
	Upsert(ctx context.Context, record types.GranuleRecord, executionID *int64) ([]types.GranuleRecord, error)
}

// ExecutionWriter records workflow executions. Satisfied by the Postgres
// execution store.
type ExecutionWriter interface {
	UpsertByARN(ctx context.Context, record types.ExecutionRecord) (types.ExecutionRecord, error)
}

// Consumer polls an SQS queue for granule status events and applies them
// through the upsert engine. Store writes go through a circuit breaker so a
// down database sheds load fast; failed batches are left on the queue for
// redelivery.
type Consumer struct {
	client     SQSAPI
	queueURL   string
	granules   Upserter
	executions ExecutionWriter
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger

	batchSize int32
	waitTime  int32
}

// NewConsumer creates a Consumer for the given queue and stores.
func NewConsumer(client SQSAPI, queueURL string, granules Upserter, executions ExecutionWriter) *Consumer {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "granule-store",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Consumer{
		client:     client,
		queueURL:   queueURL,
		granules:   granules,
		executions: executions,
		breaker:    breaker,
		logger:     slog.Default(),
		batchSize:  10,
		waitTime:   20,
	}
}

// Run polls the queue until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("ingest consumer started", "queue", c.queueURL)
	for {
		if err := c.pollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("poll failed", "error", err)
			metrics.IngestErrors.Add(1)
			// Back off briefly so a persistent receive failure does not spin.
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (c *Consumer) pollOnce(ctx context.Context) error {
	out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: c.batchSize,
		WaitTimeSeconds:     c.waitTime,
	})
	if err != nil {
		return fmt.Errorf("receiving messages: %w", err)
	}

	for _, msg := range out.Messages {
		if err := c.handleMessage(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (c *Consumer) handleMessage(ctx context.Context, msg sqstypes.Message) error {
	metrics.IngestMessages.Add(1)

	body := ""
	if msg.Body != nil {
		body = *msg.Body
	}
	if err := c.HandleBody(ctx, []byte(body)); err != nil {
		if errors.Is(err, store.ErrInvalidArgument) {
			// Malformed events can never succeed; drop them.
			c.logger.Warn("dropping malformed status event", "error", err)
			metrics.IngestErrors.Add(1)
			return c.deleteMessage(ctx, msg)
		}
		return err
	}
	return c.deleteMessage(ctx, msg)
}

// HandleBody applies a single raw event body: decode, record the execution,
// then run the guarded granule upsert, both store writes behind the circuit
// breaker. Shared by the SQS poller and the Lambda entrypoint.
func (c *Consumer) HandleBody(ctx context.Context, body []byte) error {
	event, err := DecodeStatusEvent(body)
	if err != nil {
		return err
	}
	eventID := event.EventID
	if eventID == "" {
		eventID = ulid.Make().String()
	}

	stored, err := c.breaker.Execute(func() (interface{}, error) {
		var executionID *int64
		if event.Execution != nil {
			execution, err := c.executions.UpsertByARN(ctx, event.ExecutionRecord())
			if err != nil {
				return nil, err
			}
			executionID = &execution.InternalID
		}
		return c.granules.Upsert(ctx, event.Record(), executionID)
	})
	if err != nil {
		metrics.IngestErrors.Add(1)
		return fmt.Errorf("applying status event %s: %w", eventID, err)
	}

	if rows, ok := stored.([]types.GranuleRecord); ok && len(rows) == 0 {
		c.logger.Debug("stale status event discarded",
			"event", eventID, "granule", event.GranuleID, "collection", event.CollectionID)
	} else {
		c.logger.Info("status event applied",
			"event", eventID, "granule", event.GranuleID,
			"collection", event.CollectionID, "status", string(event.Status))
	}
	return nil
}

func (c *Consumer) deleteMessage(ctx context.Context, msg sqstypes.Message) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}
	return nil
}

// ingest Lambda receives granule status events from SQS and applies them
// through the guarded upsert engine.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"

	"github.com/adtisdal-ASDC/cumulus/internal/ingest"
	"github.com/adtisdal-ASDC/cumulus/internal/store"
	"github.com/adtisdal-ASDC/cumulus/internal/store/postgres"
)

type deps struct {
	consumer *ingest.Consumer
}

var (
	sharedDeps *deps
	depsOnce   sync.Once
	depsErr    error
)

func getDeps() (*deps, error) {
	depsOnce.Do(func() {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			depsErr = fmt.Errorf("DATABASE_URL is required")
			return
		}
		st, err := postgres.New(context.Background(), dsn)
		if err != nil {
			depsErr = err
			return
		}
		// The Lambda event source handles receive/delete; the consumer is
		// used only for its per-body handling.
		sharedDeps = &deps{
			consumer: ingest.NewConsumer(nil, "", st.Granules(), st.Executions()),
		}
	})
	return sharedDeps, depsErr
}

// handleSQSEvent applies each record in the batch, reporting per-item
// failures so SQS redelivers only the failed messages.
func handleSQSEvent(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	logger := slog.Default()

	d, err := getDeps()
	if err != nil {
		return events.SQSEventResponse{}, err
	}

	var response events.SQSEventResponse
	for _, record := range event.Records {
		err := d.consumer.HandleBody(ctx, []byte(record.Body))
		if err == nil {
			continue
		}
		if errors.Is(err, store.ErrInvalidArgument) {
			// Malformed events can never succeed; drop them.
			logger.Warn("dropping malformed status event",
				"messageId", record.MessageId, "error", err)
			continue
		}
		logger.Error("failed to apply status event",
			"messageId", record.MessageId, "error", err)
		response.BatchItemFailures = append(response.BatchItemFailures,
			events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
	}
	return response, nil
}

func main() {
	awslambda.Start(handleSQSEvent)
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/spf13/cobra"

	"github.com/adtisdal-ASDC/cumulus/internal/config"
	"github.com/adtisdal-ASDC/cumulus/internal/ingest"
)

// NewIngestCmd creates the ingest command, which polls the configured SQS
// queue for granule status events until interrupted.
func NewIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Consume granule status events from SQS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, cfg, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if cfg.Ingest == nil {
				return fmt.Errorf("ingest is not configured")
			}

			client, err := newSQSClient(ctx, cfg.Ingest)
			if err != nil {
				return err
			}

			consumer := ingest.NewConsumer(client, cfg.Ingest.QueueURL, st.Granules(), st.Executions())
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func newSQSClient(ctx context.Context, cfg *config.IngestConfig) (*sqs.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	var clientOpts []func(*sqs.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	return sqs.NewFromConfig(awsCfg, clientOpts...), nil
}

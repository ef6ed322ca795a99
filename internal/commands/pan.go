package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adtisdal-ASDC/cumulus/internal/report"
)

// NewPanCmd creates the pan command, which prints a SHORTPAN report for a
// set of executions.
func NewPanCmd() *cobra.Command {
	var executions string

	cmd := &cobra.Command{
		Use:   "pan",
		Short: "Generate a SHORTPAN report for a set of executions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseExecutionIDs(executions)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			st, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			pan, err := report.NewGenerator(st.Executions()).ShortPAN(ctx, ids)
			if err != nil {
				return fmt.Errorf("generating report: %w", err)
			}
			fmt.Print(pan)
			return nil
		},
	}

	cmd.Flags().StringVar(&executions, "executions", "", "comma-separated execution internal ids")
	return cmd
}

func parseExecutionIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid execution id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adtisdal-ASDC/cumulus/internal/commands"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "cumulus",
		Short: "Granule lifecycle tracking for distributed pipeline executions",
		Long: `Cumulus tracks the lifecycle of granules produced by repeated,
possibly out-of-order status events from distributed pipeline executions.
Incoming events resolve against stored state through a guarded conditional
upsert, and each granule is linked at most once to each execution that
touched it.`,
		Version: version,
	}

	root.AddCommand(
		commands.NewMigrateCmd(),
		commands.NewIngestCmd(),
		commands.NewPanCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pitchmetrics/fpl-ingest/internal/fplsync"
)

var ingestMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations",
	Long:  "Applies all pending SQL migrations to the fpl schema in lexicographic order.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := ingestPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := fplsync.Migrate(ctx, pool); err != nil {
			return eris.Wrap(err, "ingest migrate")
		}

		zap.L().Info("all migrations applied successfully")
		return nil
	},
}

func init() {
	ingestCmd.AddCommand(ingestMigrateCmd)
}

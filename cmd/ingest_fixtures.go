package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/pitchmetrics/fpl-ingest/internal/fplsync"
)

var ingestFixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "Ingest the current season's fixture list",
	Long:  "Fetches the full fixture list from the live API and upserts it into fpl.fixtures, updating scores and kickoff times of already-known fixtures.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := ingestPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := fplsync.Migrate(ctx, pool); err != nil {
			return eris.Wrap(err, "ingest fixtures: migrate")
		}

		engine := buildEngine(pool, nil, currentSeason(cfg))
		if err := engine.RunFixtures(ctx); err != nil {
			return eris.Wrap(err, "ingest fixtures")
		}

		fmt.Println("Fixtures loaded")
		return nil
	},
}

func init() {
	ingestCmd.AddCommand(ingestFixturesCmd)
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pitchmetrics/fpl-ingest/internal/fplsync"
)

var ingestRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ingestion pipeline",
	Long: `Run the ingestion pipeline.

By default, loads every configured historical season from the file archive,
one transaction per season. Use --seasons to restrict the list,
--skip-historical to load nothing from the archive, and --include-current to
also ingest the in-progress season from the live API (bootstrap roster plus
every round up to the latest finished one, one transaction per round,
followed by the fixture list).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "ingest.run"))

		seasons, err := parseRunSeasons(cmd)
		if err != nil {
			return err
		}
		skipHistorical, _ := cmd.Flags().GetBool("skip-historical")
		includeCurrent, _ := cmd.Flags().GetBool("include-current")

		pool, err := ingestPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		// Ensure migrations are current.
		if err := fplsync.Migrate(ctx, pool); err != nil {
			return eris.Wrap(err, "ingest run: migrate")
		}

		current := currentSeason(cfg)
		engine := buildEngine(pool, seasons, current)

		log.Info("starting ingestion",
			zap.Strings("seasons", seasons),
			zap.Bool("skip_historical", skipHistorical),
			zap.Bool("include_current", includeCurrent),
			zap.String("current_season", current),
		)

		if err := runPipeline(ctx, engine, skipHistorical, includeCurrent); err != nil {
			return err
		}

		fmt.Println("Ingestion complete")
		return nil
	},
}

// pipelineRunner is the slice of fplsync.Engine the run command drives.
type pipelineRunner interface {
	RunHistorical(ctx context.Context) error
	RunLive(ctx context.Context) error
	RunFixtures(ctx context.Context) error
}

// runPipeline executes the requested phases in order: historical seasons,
// then for the current season the live rounds followed by the fixture list.
func runPipeline(ctx context.Context, r pipelineRunner, skipHistorical, includeCurrent bool) error {
	if !skipHistorical {
		if err := r.RunHistorical(ctx); err != nil {
			return eris.Wrap(err, "ingest run: historical")
		}
	}

	if includeCurrent {
		if err := r.RunLive(ctx); err != nil {
			return eris.Wrap(err, "ingest run: live")
		}
		if err := r.RunFixtures(ctx); err != nil {
			return eris.Wrap(err, "ingest run: fixtures")
		}
	}

	return nil
}

func init() {
	ingestRunCmd.Flags().String("seasons", "", "comma-separated season labels (e.g., 2022-23,2023-24); default is the configured list")
	ingestRunCmd.Flags().Bool("skip-historical", false, "skip the historical archive load")
	ingestRunCmd.Flags().Bool("include-current", false, "also ingest the in-progress season from the live API")
	ingestCmd.AddCommand(ingestRunCmd)
}

// parseRunSeasons resolves the season list from the --seasons flag, falling
// back to the configured list.
func parseRunSeasons(cmd *cobra.Command) ([]string, error) {
	seasonsStr, _ := cmd.Flags().GetString("seasons")
	if seasonsStr == "" {
		return cfg.Ingest.Seasons, nil
	}

	seasons := strings.Split(seasonsStr, ",")
	for i := range seasons {
		seasons[i] = strings.TrimSpace(seasons[i])
		if seasons[i] == "" {
			return nil, eris.New("ingest run: empty season label in --seasons")
		}
	}
	return seasons, nil
}

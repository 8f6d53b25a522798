package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pitchmetrics/fpl-ingest/internal/config"
	"github.com/pitchmetrics/fpl-ingest/internal/db"
	"github.com/pitchmetrics/fpl-ingest/internal/fetcher"
	"github.com/pitchmetrics/fpl-ingest/internal/fplsync"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "FPL data ingestion",
	Long:  "Ingests historical season files and live API snapshots into fpl.* Postgres tables.",
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

// ingestPool connects to the store, waiting indefinitely while it is
// unreachable. Cancelling the command's context gives up.
func ingestPool(ctx context.Context) (*pgxpool.Pool, error) {
	delay := time.Duration(cfg.Store.RetrySeconds) * time.Second
	return db.Connect(ctx, cfg.Store.DSN(), delay)
}

// buildEngine wires the pipeline components around an open pool.
func buildEngine(pool *pgxpool.Pool, seasons []string, current string) *fplsync.Engine {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: cfg.Source.UserAgent,
	})
	return fplsync.NewEngine(
		pool,
		fplsync.NewStore(cfg.Ingest.BatchSize),
		fplsync.NewArchive(cfg.Source.ArchiveBaseURL, f),
		fplsync.NewLiveClient(cfg.Source.LiveBaseURL, f),
		fplsync.NewIngestLog(pool),
		seasons,
		current,
	)
}

// currentSeason returns the configured live season label, inferring one from
// the clock when unset.
func currentSeason(cfg *config.Config) string {
	if cfg.Ingest.CurrentSeason != "" {
		return cfg.Ingest.CurrentSeason
	}
	return fplsync.CurrentSeason(time.Now())
}

package fplsync

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pitchmetrics/fpl-ingest/internal/db"
)

// historicalSource yields canonical records from the bulk file repository.
// Implemented by *Archive.
type historicalSource interface {
	Teams(ctx context.Context, season string) ([]Team, error)
	Players(ctx context.Context, season string) ([]Player, error)
	GameweekStats(ctx context.Context, season string) ([]GameweekStat, error)
}

// liveSource yields snapshots from the live API. Implemented by *LiveClient.
type liveSource interface {
	Bootstrap(ctx context.Context) (*Bootstrap, error)
	Round(ctx context.Context, round int) ([]LiveElement, error)
	Fixtures(ctx context.Context) ([]FixtureEntry, error)
}

// Engine drives ingestion over seasons and rounds. Execution is sequential:
// within a season teams load strictly before players and players strictly
// before gameweek stats, because team reconciliation depends on the roster.
type Engine struct {
	pool    db.Pool
	store   *Store
	archive historicalSource
	live    liveSource
	logbook *IngestLog
	seasons []string
	current string
}

// NewEngine creates an Engine. seasons is the ordered historical season
// list; current is the season label used for live ingestion.
func NewEngine(pool db.Pool, store *Store, archive historicalSource, live liveSource, logbook *IngestLog, seasons []string, current string) *Engine {
	return &Engine{
		pool:    pool,
		store:   store,
		archive: archive,
		live:    live,
		logbook: logbook,
		seasons: seasons,
		current: current,
	}
}

// withUnit wraps one logical unit of ingestion (a season, a round, a fixture
// load) in an ingest-log entry and a transaction. fn's writes all commit or
// all roll back; the log entry is written through the pool so a failure
// stays recorded after rollback.
func (e *Engine) withUnit(ctx context.Context, unit string, fn func(tx pgx.Tx) (int64, error)) error {
	log := zap.L().With(zap.String("unit", unit))

	logID, err := e.logbook.Start(ctx, unit)
	if err != nil {
		return eris.Wrapf(err, "engine: start log for %s", unit)
	}

	tx, err := e.pool.Begin(ctx)
	if err != nil {
		err = eris.Wrapf(err, "engine: begin tx for %s", unit)
		e.failUnit(ctx, log, logID, err)
		return err
	}

	rows, err := fn(tx)
	if err != nil {
		_ = tx.Rollback(ctx)
		e.failUnit(ctx, log, logID, err)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		err = eris.Wrapf(err, "engine: commit %s", unit)
		e.failUnit(ctx, log, logID, err)
		return err
	}

	if err := e.logbook.Complete(ctx, logID, rows); err != nil {
		log.Error("failed to record completion", zap.Error(err))
	}
	log.Info("unit complete", zap.Int64("rows", rows))
	return nil
}

func (e *Engine) failUnit(ctx context.Context, log *zap.Logger, logID int64, cause error) {
	log.Error("unit failed", zap.Error(cause))
	if err := e.logbook.Fail(ctx, logID, cause.Error()); err != nil {
		log.Error("failed to record failure", zap.Error(err))
	}
}

// RunHistorical ingests every configured season in order. A skipped resource
// (fetch failure) only loses that resource; a write failure rolls back the
// season and aborts the run, leaving earlier seasons committed.
func (e *Engine) RunHistorical(ctx context.Context) error {
	for _, season := range e.seasons {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := e.ingestSeason(ctx, season); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) ingestSeason(ctx context.Context, season string) error {
	log := zap.L().With(zap.String("season", season))
	log.Info("ingesting season")

	return e.withUnit(ctx, "season:"+season, func(tx pgx.Tx) (int64, error) {
		var total int64

		teams, err := e.archive.Teams(ctx, season)
		if err != nil {
			log.Warn("teams resource unavailable, skipping", zap.Error(err))
		} else {
			teams = DedupeLast(teams, Team.Key)
			n, err := e.store.UpsertTeams(ctx, tx, teams)
			if err != nil {
				return total, err
			}
			total += n
			log.Info("teams loaded", zap.Int64("rows", n))
		}

		players, err := e.archive.Players(ctx, season)
		if err != nil {
			log.Warn("players resource unavailable, skipping", zap.Error(err))
		} else {
			players = DedupeLast(players, Player.Key)
			n, err := e.store.UpsertPlayers(ctx, tx, players)
			if err != nil {
				return total, err
			}
			total += n
			log.Info("players loaded", zap.Int64("rows", n))
		}

		stats, err := e.archive.GameweekStats(ctx, season)
		if err != nil {
			log.Warn("gameweek resource unavailable, skipping", zap.Error(err))
			return total, nil
		}

		// Roster read inside the tx so it sees the rows upserted above.
		roster, err := e.store.RosterTeamMap(ctx, tx, season)
		if err != nil {
			return total, err
		}
		ReconcileGameweeks(roster, stats)

		stats = DedupeLast(stats, GameweekStat.Key)
		n, err := e.store.UpsertGameweekStats(ctx, tx, stats)
		if err != nil {
			return total, err
		}
		total += n
		log.Info("gameweek stats loaded", zap.Int64("rows", n))

		return total, nil
	})
}

// RunLive ingests the current season from the live source: one bootstrap
// upsert of teams and players, then every round up to the latest finished
// one, each in its own transaction. A round whose fetch fails is skipped and
// picked up by a later re-run; committed rounds are never disturbed.
func (e *Engine) RunLive(ctx context.Context) error {
	season := e.current
	log := zap.L().With(zap.String("season", season))
	log.Info("ingesting current season from live source")

	bs, err := e.live.Bootstrap(ctx)
	if err != nil {
		return eris.Wrap(err, "engine: fetch bootstrap")
	}

	err = e.withUnit(ctx, "bootstrap:"+season, func(tx pgx.Tx) (int64, error) {
		var total int64

		teams := make([]Team, 0, len(bs.Teams))
		for _, t := range bs.Teams {
			teams = append(teams, t.canonical(season))
		}
		n, err := e.store.UpsertTeams(ctx, tx, DedupeLast(teams, Team.Key))
		if err != nil {
			return total, err
		}
		total += n

		players := make([]Player, 0, len(bs.Elements))
		for _, el := range bs.Elements {
			players = append(players, el.canonical(season))
		}
		n, err = e.store.UpsertPlayers(ctx, tx, DedupeLast(players, Player.Key))
		if err != nil {
			return total, err
		}
		total += n

		return total, nil
	})
	if err != nil {
		return err
	}

	latest := LatestIngestibleRound(bs.Events)
	if latest == 0 {
		log.Warn("no rounds reported by live source yet")
		return nil
	}
	log.Info("latest ingestible round", zap.Int("round", latest))

	// Bootstrap is committed; the roster map can be read from the pool.
	roster, err := e.store.RosterTeamMap(ctx, e.pool, season)
	if err != nil {
		return err
	}

	for round := 1; round <= latest; round++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		elements, err := e.live.Round(ctx, round)
		if err != nil {
			log.Warn("round fetch failed, skipping", zap.Int("round", round), zap.Error(err))
			continue
		}

		unit := fmt.Sprintf("round:%s:%d", season, round)
		err = e.withUnit(ctx, unit, func(tx pgx.Tx) (int64, error) {
			stats := make([]GameweekStat, 0, len(elements))
			for _, el := range elements {
				stats = append(stats, el.canonicalStat(season, round))
			}
			ReconcileGameweeks(roster, stats)
			stats = DedupeLast(stats, GameweekStat.Key)
			return e.store.UpsertGameweekStats(ctx, tx, stats)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// RunFixtures ingests the current season's fixture list from the live source.
func (e *Engine) RunFixtures(ctx context.Context) error {
	season := e.current

	entries, err := e.live.Fixtures(ctx)
	if err != nil {
		return eris.Wrap(err, "engine: fetch fixtures")
	}

	return e.withUnit(ctx, "fixtures:"+season, func(tx pgx.Tx) (int64, error) {
		fixtures := make([]Fixture, 0, len(entries))
		for _, f := range entries {
			fixtures = append(fixtures, f.canonical(season))
		}
		return e.store.UpsertFixtures(ctx, tx, DedupeLast(fixtures, Fixture.Key))
	})
}

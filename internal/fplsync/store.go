package fplsync

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/pitchmetrics/fpl-ingest/internal/db"
)

// Table names in the fpl schema.
const (
	teamsTable    = "fpl.teams"
	playersTable  = "fpl.players"
	gameweekTable = "fpl.gameweek_stats"
	fixturesTable = "fpl.fixtures"
)

// Store writes canonical records through keyed bulk upserts. Every method
// takes a Querier so the caller controls the transaction boundary; batches
// are bounded by batchSize rows per statement. Inputs must already be
// deduplicated on their natural keys.
type Store struct {
	batchSize int
}

// NewStore creates a Store with the given per-statement batch size.
func NewStore(batchSize int) *Store {
	if batchSize <= 0 {
		batchSize = 5000
	}
	return &Store{batchSize: batchSize}
}

func (s *Store) upsertBatched(ctx context.Context, q db.Querier, cfg db.UpsertConfig, rows [][]any) (int64, error) {
	var total int64
	for start := 0; start < len(rows); start += s.batchSize {
		end := min(start+s.batchSize, len(rows))
		n, err := db.BulkUpsert(ctx, q, cfg, rows[start:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// UpsertTeams inserts-or-updates teams keyed on (team_id, season).
func (s *Store) UpsertTeams(ctx context.Context, q db.Querier, teams []Team) (int64, error) {
	rows := make([][]any, len(teams))
	for i, t := range teams {
		rows[i] = []any{t.TeamID, t.Season, t.Name, t.ShortName}
	}
	return s.upsertBatched(ctx, q, db.UpsertConfig{
		Table:        teamsTable,
		Columns:      []string{"team_id", "season", "name", "short_name"},
		ConflictKeys: []string{"team_id", "season"},
	}, rows)
}

// UpsertPlayers inserts-or-updates players keyed on (player_id, season).
func (s *Store) UpsertPlayers(ctx context.Context, q db.Querier, players []Player) (int64, error) {
	rows := make([][]any, len(players))
	for i, p := range players {
		rows[i] = []any{p.PlayerID, p.Season, p.WebName, p.FirstName, p.SecondName, p.Position, p.TeamID}
	}
	return s.upsertBatched(ctx, q, db.UpsertConfig{
		Table:        playersTable,
		Columns:      []string{"player_id", "season", "web_name", "first_name", "second_name", "position", "team_id"},
		ConflictKeys: []string{"player_id", "season"},
	}, rows)
}

// UpsertGameweekStats inserts-or-updates gameweek statistics keyed on
// (player_id, season, round). Key fields are immutable; every other field is
// overwritten with the incoming value on conflict.
func (s *Store) UpsertGameweekStats(ctx context.Context, q db.Querier, stats []GameweekStat) (int64, error) {
	rows := make([][]any, len(stats))
	for i, g := range stats {
		rows[i] = []any{
			g.PlayerID, g.Season, g.Round,
			g.Minutes, g.Goals, g.Assists, g.YellowCards, g.RedCards,
			g.Bonus, g.BPS, g.TotalPoints,
			g.Influence, g.Creativity, g.Threat, g.ICTIndex,
			g.Value, g.TeamID,
		}
	}
	return s.upsertBatched(ctx, q, db.UpsertConfig{
		Table: gameweekTable,
		Columns: []string{
			"player_id", "season", "round",
			"minutes", "goals_scored", "assists", "yellow_cards", "red_cards",
			"bonus", "bps", "total_points",
			"influence", "creativity", "threat", "ict_index",
			"value", "team_id",
		},
		ConflictKeys: []string{"player_id", "season", "round"},
	}, rows)
}

// UpsertFixtures inserts-or-updates fixtures keyed on (fixture_id, season).
func (s *Store) UpsertFixtures(ctx context.Context, q db.Querier, fixtures []Fixture) (int64, error) {
	rows := make([][]any, len(fixtures))
	for i, f := range fixtures {
		rows[i] = []any{f.FixtureID, f.Season, f.Round, f.Kickoff, f.HomeTeamID, f.AwayTeamID, f.HomeScore, f.AwayScore, f.Finished}
	}
	return s.upsertBatched(ctx, q, db.UpsertConfig{
		Table:        fixturesTable,
		Columns:      []string{"fixture_id", "season", "round", "kickoff_time", "home_team_id", "away_team_id", "home_score", "away_score", "finished"},
		ConflictKeys: []string{"fixture_id", "season"},
	}, rows)
}

// RosterTeamMap builds the season's authoritative player→team mapping from
// already-ingested roster rows. Players without a team are absent from the
// map so reconciliation can fall back to the record's own value.
func (s *Store) RosterTeamMap(ctx context.Context, q db.Querier, season string) (RosterTeamMap, error) {
	rows, err := q.Query(ctx,
		"SELECT player_id, team_id FROM fpl.players WHERE season = $1 AND team_id IS NOT NULL",
		season,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "store: roster team map for %s", season)
	}
	defer rows.Close()

	roster := make(RosterTeamMap)
	for rows.Next() {
		var playerID int
		var teamID int64
		if err := rows.Scan(&playerID, &teamID); err != nil {
			return nil, eris.Wrap(err, "store: scan roster row")
		}
		roster[playerID] = teamID
	}
	return roster, rows.Err()
}

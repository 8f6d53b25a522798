package fplsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArchive struct {
	teams   []Team
	players []Player
	stats   []GameweekStat
	errs    map[string]error // resource name -> error
}

func (a *fakeArchive) Teams(context.Context, string) ([]Team, error) {
	return a.teams, a.errs["teams"]
}

func (a *fakeArchive) Players(context.Context, string) ([]Player, error) {
	return a.players, a.errs["players"]
}

func (a *fakeArchive) GameweekStats(context.Context, string) ([]GameweekStat, error) {
	return a.stats, a.errs["gameweeks"]
}

type fakeLive struct {
	bootstrap    *Bootstrap
	bootstrapErr error
	rounds       map[int][]LiveElement
	roundErrs    map[int]error
	fixtures     []FixtureEntry
	fixturesErr  error
}

func (l *fakeLive) Bootstrap(context.Context) (*Bootstrap, error) {
	return l.bootstrap, l.bootstrapErr
}

func (l *fakeLive) Round(_ context.Context, round int) ([]LiveElement, error) {
	if err := l.roundErrs[round]; err != nil {
		return nil, err
	}
	return l.rounds[round], nil
}

func (l *fakeLive) Fixtures(context.Context) ([]FixtureEntry, error) {
	return l.fixtures, l.fixturesErr
}

var (
	playerCols = []string{"player_id", "season", "web_name", "first_name", "second_name", "position", "team_id"}
	gwCols     = []string{
		"player_id", "season", "round",
		"minutes", "goals_scored", "assists", "yellow_cards", "red_cards",
		"bonus", "bps", "total_points",
		"influence", "creativity", "threat", "ict_index",
		"value", "team_id",
	}
	fixtureCols = []string{"fixture_id", "season", "round", "kickoff_time", "home_team_id", "away_team_id", "home_score", "away_score", "finished"}
)

// expectUpsert adds the four-statement bulk upsert sequence for one batch.
func expectUpsert(mock pgxmock.PgxPoolIface, table string, cols []string, rows int) {
	tmp := "_tmp_upsert_" + strings.ReplaceAll(table, ".", "_")
	parts := strings.SplitN(table, ".", 2)
	mock.ExpectExec(fmt.Sprintf(`CREATE TEMP TABLE "%s"`, tmp)).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{tmp}, cols).WillReturnResult(int64(rows))
	mock.ExpectExec(fmt.Sprintf(`INSERT INTO "%s"\."%s" .* ON CONFLICT`, parts[0], parts[1])).
		WillReturnResult(pgxmock.NewResult("INSERT", int64(rows)))
	mock.ExpectExec(fmt.Sprintf(`DROP TABLE "%s"`, tmp)).
		WillReturnResult(pgxmock.NewResult("DROP", 0))
}

func expectUnitStart(mock pgxmock.PgxPoolIface, unit string, id int64) {
	mock.ExpectQuery("INSERT INTO fpl.ingest_log").
		WithArgs(unit).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))
}

func expectUnitComplete(mock pgxmock.PgxPoolIface, id, rows int64) {
	mock.ExpectExec("UPDATE fpl.ingest_log").
		WithArgs(rows, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
}

func expectUnitFail(mock pgxmock.PgxPoolIface, id int64) {
	mock.ExpectExec("UPDATE fpl.ingest_log").
		WithArgs(pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
}

func newTestEngine(mock pgxmock.PgxPoolIface, archive historicalSource, live liveSource, seasons []string, current string) *Engine {
	return NewEngine(mock, NewStore(0), archive, live, NewIngestLog(mock), seasons, current)
}

func TestEngine_RunHistorical(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	eleven := int64(11)
	archive := &fakeArchive{
		teams:   []Team{{TeamID: 11, Season: "2023-24", Name: "Liverpool", ShortName: "LIV"}},
		players: []Player{{PlayerID: 233, Season: "2023-24", WebName: "Salah", TeamID: &eleven}},
		stats:   []GameweekStat{{PlayerID: 233, Season: "2023-24", Round: 1}},
	}

	expectUnitStart(mock, "season:2023-24", 1)
	mock.ExpectBegin()
	expectUpsert(mock, teamsTable, teamCols, 1)
	expectUpsert(mock, playersTable, playerCols, 1)
	mock.ExpectQuery("SELECT player_id, team_id FROM fpl.players").
		WithArgs("2023-24").
		WillReturnRows(pgxmock.NewRows([]string{"player_id", "team_id"}).AddRow(233, int64(11)))
	expectUpsert(mock, gameweekTable, gwCols, 1)
	mock.ExpectCommit()
	expectUnitComplete(mock, 1, 3)

	e := newTestEngine(mock, archive, &fakeLive{}, []string{"2023-24"}, "2025-26")
	require.NoError(t, e.RunHistorical(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_RunHistorical_SkipsUnavailableResources(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	archive := &fakeArchive{errs: map[string]error{
		"teams":     errors.New("404"),
		"players":   errors.New("404"),
		"gameweeks": errors.New("404"),
	}}

	// Nothing fetched, but the season's unit still commits and is logged.
	expectUnitStart(mock, "season:2020-21", 7)
	mock.ExpectBegin()
	mock.ExpectCommit()
	expectUnitComplete(mock, 7, 0)

	e := newTestEngine(mock, archive, &fakeLive{}, []string{"2020-21"}, "2025-26")
	require.NoError(t, e.RunHistorical(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_RunHistorical_WriteFailureAborts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	archive := &fakeArchive{
		teams: []Team{{TeamID: 1, Season: "2022-23"}},
	}

	expectUnitStart(mock, "season:2022-23", 3)
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_fpl_teams"`).
		WillReturnError(errors.New("out of disk"))
	mock.ExpectRollback()
	expectUnitFail(mock, 3)

	e := newTestEngine(mock, archive, &fakeLive{}, []string{"2022-23", "2023-24"}, "2025-26")
	err = e.RunHistorical(context.Background())
	require.Error(t, err, "a write failure aborts the run; later seasons are not attempted")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_RunLive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	team := int64(11)
	live := &fakeLive{
		bootstrap: &Bootstrap{
			Teams:    []BootstrapTeam{{ID: 11, Name: "Liverpool", ShortName: "LIV"}},
			Elements: []BootstrapElement{{ID: 233, WebName: "Salah", Team: &team}},
			Events:   []Event{{ID: 1, Finished: true}, {ID: 2, IsCurrent: true}},
		},
		rounds: map[int][]LiveElement{1: {{ID: 233}}},
	}

	// Bootstrap unit: teams + players in one transaction.
	expectUnitStart(mock, "bootstrap:2025-26", 1)
	mock.ExpectBegin()
	expectUpsert(mock, teamsTable, teamCols, 1)
	expectUpsert(mock, playersTable, playerCols, 1)
	mock.ExpectCommit()
	expectUnitComplete(mock, 1, 2)

	// Roster read from the committed bootstrap.
	mock.ExpectQuery("SELECT player_id, team_id FROM fpl.players").
		WithArgs("2025-26").
		WillReturnRows(pgxmock.NewRows([]string{"player_id", "team_id"}).AddRow(233, int64(11)))

	// Latest finished round is 1; one round unit.
	expectUnitStart(mock, "round:2025-26:1", 2)
	mock.ExpectBegin()
	expectUpsert(mock, gameweekTable, gwCols, 1)
	mock.ExpectCommit()
	expectUnitComplete(mock, 2, 1)

	e := newTestEngine(mock, &fakeArchive{}, live, nil, "2025-26")
	require.NoError(t, e.RunLive(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_RunLive_BootstrapFetchFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	e := newTestEngine(mock, &fakeArchive{}, &fakeLive{bootstrapErr: errors.New("503")}, nil, "2025-26")
	err = e.RunLive(context.Background())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_RunLive_SkipsFailedRound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	live := &fakeLive{
		bootstrap: &Bootstrap{Events: []Event{{ID: 2, Finished: true}}},
		rounds:    map[int][]LiveElement{2: {{ID: 233}}},
		roundErrs: map[int]error{1: errors.New("timeout")},
	}

	expectUnitStart(mock, "bootstrap:2025-26", 1)
	mock.ExpectBegin()
	mock.ExpectCommit()
	expectUnitComplete(mock, 1, 0)

	mock.ExpectQuery("SELECT player_id, team_id FROM fpl.players").
		WithArgs("2025-26").
		WillReturnRows(pgxmock.NewRows([]string{"player_id", "team_id"}))

	// Round 1 fetch fails and is skipped; round 2 goes through.
	expectUnitStart(mock, "round:2025-26:2", 2)
	mock.ExpectBegin()
	expectUpsert(mock, gameweekTable, gwCols, 1)
	mock.ExpectCommit()
	expectUnitComplete(mock, 2, 1)

	e := newTestEngine(mock, &fakeArchive{}, live, nil, "2025-26")
	require.NoError(t, e.RunLive(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_RunLive_NoRoundsYet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	live := &fakeLive{bootstrap: &Bootstrap{}}

	expectUnitStart(mock, "bootstrap:2025-26", 1)
	mock.ExpectBegin()
	mock.ExpectCommit()
	expectUnitComplete(mock, 1, 0)

	e := newTestEngine(mock, &fakeArchive{}, live, nil, "2025-26")
	require.NoError(t, e.RunLive(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_RunFixtures(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	live := &fakeLive{
		fixtures: []FixtureEntry{{ID: 101, TeamH: 1, TeamA: 2, Finished: true}},
	}

	expectUnitStart(mock, "fixtures:2025-26", 1)
	mock.ExpectBegin()
	expectUpsert(mock, fixturesTable, fixtureCols, 1)
	mock.ExpectCommit()
	expectUnitComplete(mock, 1, 1)

	e := newTestEngine(mock, &fakeArchive{}, live, nil, "2025-26")
	require.NoError(t, e.RunFixtures(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

package fplsync

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var teamCols = []string{"team_id", "season", "name", "short_name"}

// expectTeamUpsert adds the statement sequence of one bulk upsert batch
// against fpl.teams.
func expectTeamUpsert(mock pgxmock.PgxPoolIface, rows int) {
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_fpl_teams"`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_fpl_teams"}, teamCols).
		WillReturnResult(int64(rows))
	mock.ExpectExec(`INSERT INTO "fpl"\."teams" .* ON CONFLICT .* DO UPDATE SET`).
		WillReturnResult(pgxmock.NewResult("INSERT", int64(rows)))
	mock.ExpectExec(`DROP TABLE "_tmp_upsert_fpl_teams"`).
		WillReturnResult(pgxmock.NewResult("DROP", 0))
}

func TestStore_UpsertTeams(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectTeamUpsert(mock, 2)

	s := NewStore(0)
	n, err := s.UpsertTeams(context.Background(), mock, []Team{
		{TeamID: 1, Season: "2023-24", Name: "Arsenal", ShortName: "ARS"},
		{TeamID: 2, Season: "2023-24", Name: "Aston Villa", ShortName: "AVL"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpsertTeams_Batches(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// Batch size 2 over 3 rows: one full batch, one remainder batch.
	expectTeamUpsert(mock, 2)
	expectTeamUpsert(mock, 1)

	s := NewStore(2)
	n, err := s.UpsertTeams(context.Background(), mock, []Team{
		{TeamID: 1, Season: "2023-24"},
		{TeamID: 2, Season: "2023-24"},
		{TeamID: 3, Season: "2023-24"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpsertTeams_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewStore(0)
	n, err := s.UpsertTeams(context.Background(), mock, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpsertGameweekStats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{
		"player_id", "season", "round",
		"minutes", "goals_scored", "assists", "yellow_cards", "red_cards",
		"bonus", "bps", "total_points",
		"influence", "creativity", "threat", "ict_index",
		"value", "team_id",
	}
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_fpl_gameweek_stats"`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_fpl_gameweek_stats"}, cols).
		WillReturnResult(1)
	mock.ExpectExec(`INSERT INTO "fpl"\."gameweek_stats" .* ON CONFLICT`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DROP TABLE "_tmp_upsert_fpl_gameweek_stats"`).
		WillReturnResult(pgxmock.NewResult("DROP", 0))

	minutes := int64(90)
	s := NewStore(0)
	n, err := s.UpsertGameweekStats(context.Background(), mock, []GameweekStat{
		{PlayerID: 233, Season: "2023-24", Round: 5, Minutes: &minutes},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RosterTeamMap(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT player_id, team_id FROM fpl.players").
		WithArgs("2023-24").
		WillReturnRows(pgxmock.NewRows([]string{"player_id", "team_id"}).
			AddRow(233, int64(11)).
			AddRow(500, int64(4)))

	s := NewStore(0)
	roster, err := s.RosterTeamMap(context.Background(), mock, "2023-24")
	require.NoError(t, err)
	assert.Equal(t, RosterTeamMap{233: 11, 500: 4}, roster)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package fplsync

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/pitchmetrics/fpl-ingest/internal/fetcher"
)

// Archive adapts the season-partitioned historical file repository. Each
// season exposes three delimited files with a header row: the team list, the
// raw player roster, and a merged per-round statistics file covering every
// round at once.
type Archive struct {
	baseURL string
	f       fetcher.Fetcher
}

// NewArchive creates an Archive rooted at baseURL.
func NewArchive(baseURL string, f fetcher.Fetcher) *Archive {
	return &Archive{baseURL: baseURL, f: f}
}

func (a *Archive) fetchCSV(ctx context.Context, url string) ([]string, [][]string, error) {
	body, err := a.f.Download(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	defer body.Close() //nolint:errcheck

	header, rows, err := fetcher.ReadCSV(ctx, body, fetcher.CSVOptions{
		LazyQuotes: true,
		TrimSpace:  true,
	})
	if err != nil {
		return nil, nil, eris.Wrapf(err, "archive: parse %s", url)
	}
	return header, rows, nil
}

// Teams fetches and normalizes one season's team list.
func (a *Archive) Teams(ctx context.Context, season string) ([]Team, error) {
	url := fmt.Sprintf("%s/%s/teams.csv", a.baseURL, season)
	header, rows, err := a.fetchCSV(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "archive: teams %s", season)
	}

	colIdx := mapColumns(header)
	teams := make([]Team, 0, len(rows))
	for _, record := range rows {
		if t, ok := NormalizeTeamRow(record, colIdx, season); ok {
			teams = append(teams, t)
		}
	}
	return teams, nil
}

// Players fetches and normalizes one season's player roster.
func (a *Archive) Players(ctx context.Context, season string) ([]Player, error) {
	url := fmt.Sprintf("%s/%s/players_raw.csv", a.baseURL, season)
	header, rows, err := a.fetchCSV(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "archive: players %s", season)
	}

	colIdx := mapColumns(header)
	players := make([]Player, 0, len(rows))
	for _, record := range rows {
		if p, ok := NormalizePlayerRow(record, colIdx, season); ok {
			players = append(players, p)
		}
	}
	return players, nil
}

// GameweekStats fetches and normalizes one season's merged per-round
// statistics file. Team ids carried here are the records' own values;
// reconciliation against the roster happens in the engine.
func (a *Archive) GameweekStats(ctx context.Context, season string) ([]GameweekStat, error) {
	url := fmt.Sprintf("%s/%s/gws/merged_gw.csv", a.baseURL, season)
	header, rows, err := a.fetchCSV(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "archive: gameweek stats %s", season)
	}

	colIdx := mapColumns(header)
	stats := make([]GameweekStat, 0, len(rows))
	for _, record := range rows {
		if s, ok := NormalizeGameweekRow(record, colIdx, season); ok {
			stats = append(stats, s)
		}
	}
	return stats, nil
}

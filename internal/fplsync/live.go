package fplsync

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/pitchmetrics/fpl-ingest/internal/fetcher"
)

// Bootstrap is the live source's full current-state snapshot: clubs, the
// player roster, and round metadata in one payload.
type Bootstrap struct {
	Teams    []BootstrapTeam    `json:"teams"`
	Elements []BootstrapElement `json:"elements"`
	Events   []Event            `json:"events"`
}

// BootstrapTeam is one club entry in the bootstrap snapshot.
type BootstrapTeam struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// BootstrapElement is one player entry in the bootstrap snapshot.
type BootstrapElement struct {
	ID          int    `json:"id"`
	WebName     string `json:"web_name"`
	FirstName   string `json:"first_name"`
	SecondName  string `json:"second_name"`
	ElementType *int64 `json:"element_type"`
	Team        *int64 `json:"team"`
}

// Event is one round's metadata.
type Event struct {
	ID        int  `json:"id"`
	Finished  bool `json:"finished"`
	IsCurrent bool `json:"is_current"`
}

// LiveElement is one player's entry in a per-round live snapshot. The
// continuous metrics arrive as strings and are cast best-effort.
type LiveElement struct {
	ID    int `json:"id"`
	Stats struct {
		Minutes     *int64 `json:"minutes"`
		GoalsScored *int64 `json:"goals_scored"`
		Assists     *int64 `json:"assists"`
		YellowCards *int64 `json:"yellow_cards"`
		RedCards    *int64 `json:"red_cards"`
		Bonus       *int64 `json:"bonus"`
		BPS         *int64 `json:"bps"`
		TotalPoints *int64 `json:"total_points"`
		Influence   string `json:"influence"`
		Creativity  string `json:"creativity"`
		Threat      string `json:"threat"`
		ICTIndex    string `json:"ict_index"`
	} `json:"stats"`
}

// FixtureEntry is one match in the live source's fixture list.
type FixtureEntry struct {
	ID          int        `json:"id"`
	Event       *int64     `json:"event"`
	KickoffTime *time.Time `json:"kickoff_time"`
	TeamH       int        `json:"team_h"`
	TeamA       int        `json:"team_a"`
	TeamHScore  *int64     `json:"team_h_score"`
	TeamAScore  *int64     `json:"team_a_score"`
	Finished    bool       `json:"finished"`
}

// LiveClient adapts the live snapshot API.
type LiveClient struct {
	baseURL string
	f       fetcher.Fetcher
}

// NewLiveClient creates a LiveClient rooted at baseURL.
func NewLiveClient(baseURL string, f fetcher.Fetcher) *LiveClient {
	return &LiveClient{baseURL: baseURL, f: f}
}

// Bootstrap fetches the full current-state snapshot.
func (c *LiveClient) Bootstrap(ctx context.Context) (*Bootstrap, error) {
	body, err := c.f.Download(ctx, c.baseURL+"/bootstrap-static/")
	if err != nil {
		return nil, eris.Wrap(err, "live: bootstrap")
	}
	defer body.Close() //nolint:errcheck

	bs, err := fetcher.DecodeJSONObject[Bootstrap](body)
	if err != nil {
		return nil, eris.Wrap(err, "live: decode bootstrap")
	}
	return bs, nil
}

// Round fetches one round's per-player live statistics.
func (c *LiveClient) Round(ctx context.Context, round int) ([]LiveElement, error) {
	url := fmt.Sprintf("%s/event/%d/live/", c.baseURL, round)
	body, err := c.f.Download(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "live: round %d", round)
	}
	defer body.Close() //nolint:errcheck

	type liveEvent struct {
		Elements []LiveElement `json:"elements"`
	}
	ev, err := fetcher.DecodeJSONObject[liveEvent](body)
	if err != nil {
		return nil, eris.Wrapf(err, "live: decode round %d", round)
	}
	return ev.Elements, nil
}

// Fixtures fetches the full fixture list.
func (c *LiveClient) Fixtures(ctx context.Context) ([]FixtureEntry, error) {
	body, err := c.f.Download(ctx, c.baseURL+"/fixtures/")
	if err != nil {
		return nil, eris.Wrap(err, "live: fixtures")
	}
	defer body.Close() //nolint:errcheck

	outCh, errCh := fetcher.DecodeJSONArray[FixtureEntry](ctx, body)
	var fixtures []FixtureEntry
	for f := range outCh {
		fixtures = append(fixtures, f)
	}
	for err := range errCh {
		if err != nil {
			return nil, eris.Wrap(err, "live: decode fixtures")
		}
	}
	return fixtures, nil
}

// LatestIngestibleRound returns the highest round eligible for live
// ingestion: the latest finished round, else the current round, else the
// maximum known round id. Returns 0 when the source reports no rounds.
func LatestIngestibleRound(events []Event) int {
	var finished, current, maxID int
	for _, e := range events {
		if e.Finished && e.ID > finished {
			finished = e.ID
		}
		if e.IsCurrent {
			current = e.ID
		}
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	if finished > 0 {
		return finished
	}
	if current > 0 {
		return current
	}
	return maxID
}

// canonical converts a bootstrap team entry for one season.
func (t BootstrapTeam) canonical(season string) Team {
	return Team{TeamID: t.ID, Season: season, Name: t.Name, ShortName: t.ShortName}
}

// canonical converts a bootstrap player entry for one season.
func (e BootstrapElement) canonical(season string) Player {
	return Player{
		PlayerID:   e.ID,
		Season:     season,
		WebName:    e.WebName,
		FirstName:  e.FirstName,
		SecondName: e.SecondName,
		Position:   positionFromCode(e.ElementType),
		TeamID:     e.Team,
	}
}

// canonicalStat converts a live round element. The live endpoint carries no
// transfer value and no team; the team is resolved at reconciliation.
func (el LiveElement) canonicalStat(season string, round int) GameweekStat {
	return GameweekStat{
		PlayerID:    el.ID,
		Season:      season,
		Round:       round,
		Minutes:     el.Stats.Minutes,
		Goals:       el.Stats.GoalsScored,
		Assists:     el.Stats.Assists,
		YellowCards: el.Stats.YellowCards,
		RedCards:    el.Stats.RedCards,
		Bonus:       el.Stats.Bonus,
		BPS:         el.Stats.BPS,
		TotalPoints: el.Stats.TotalPoints,
		Influence:   parseFloatOrNull(el.Stats.Influence),
		Creativity:  parseFloatOrNull(el.Stats.Creativity),
		Threat:      parseFloatOrNull(el.Stats.Threat),
		ICTIndex:    parseFloatOrNull(el.Stats.ICTIndex),
	}
}

// canonical converts a fixture entry for one season.
func (f FixtureEntry) canonical(season string) Fixture {
	return Fixture{
		FixtureID:  f.ID,
		Season:     season,
		Round:      f.Event,
		Kickoff:    f.KickoffTime,
		HomeTeamID: f.TeamH,
		AwayTeamID: f.TeamA,
		HomeScore:  f.TeamHScore,
		AwayScore:  f.TeamAScore,
		Finished:   f.Finished,
	}
}

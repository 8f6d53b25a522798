// Package fplsync ingests Fantasy Premier League statistics from the
// historical file archive and the live snapshot API into Postgres.
//
// Records from both sources are normalized into the canonical shapes below,
// reconciled against the season roster, deduplicated on their natural keys,
// and upserted in per-season (historical) or per-round (live) transactions.
package fplsync

import "time"

// Positions derived from the source's element_type code.
const (
	PositionGK  = "GK"
	PositionDEF = "DEF"
	PositionMID = "MID"
	PositionFWD = "FWD"
)

// Team is a club competing in one season. Natural key (TeamID, Season).
type Team struct {
	TeamID    int
	Season    string
	Name      string
	ShortName string
}

// TeamKey is Team's natural key.
type TeamKey struct {
	TeamID int
	Season string
}

// Key returns the natural key.
func (t Team) Key() TeamKey { return TeamKey{t.TeamID, t.Season} }

// Player is one player's roster entry for a season. Natural key
// (PlayerID, Season). Position and TeamID are null when the source supplied
// an unknown code or no team; they are never fabricated.
type Player struct {
	PlayerID   int
	Season     string
	WebName    string
	FirstName  string
	SecondName string
	Position   *string
	TeamID     *int64
}

// PlayerKey is Player's natural key.
type PlayerKey struct {
	PlayerID int
	Season   string
}

// Key returns the natural key.
func (p Player) Key() PlayerKey { return PlayerKey{p.PlayerID, p.Season} }

// GameweekStat holds one player's statistics for one round. Natural key
// (PlayerID, Season, Round). All stat fields are nullable: a malformed or
// absent source value degrades to NULL, never to a dropped record.
type GameweekStat struct {
	PlayerID    int
	Season      string
	Round       int
	Minutes     *int64
	Goals       *int64
	Assists     *int64
	YellowCards *int64
	RedCards    *int64
	Bonus       *int64
	BPS         *int64
	TotalPoints *int64
	Influence   *float64
	Creativity  *float64
	Threat      *float64
	ICTIndex    *float64
	Value       *float64
	TeamID      *int64
}

// GameweekKey is GameweekStat's natural key.
type GameweekKey struct {
	PlayerID int
	Season   string
	Round    int
}

// Key returns the natural key.
func (g GameweekStat) Key() GameweekKey { return GameweekKey{g.PlayerID, g.Season, g.Round} }

// Fixture is one scheduled match. Natural key (FixtureID, Season).
type Fixture struct {
	FixtureID  int
	Season     string
	Round      *int64
	Kickoff    *time.Time
	HomeTeamID int
	AwayTeamID int
	HomeScore  *int64
	AwayScore  *int64
	Finished   bool
}

// FixtureKey is Fixture's natural key.
type FixtureKey struct {
	FixtureID int
	Season    string
}

// Key returns the natural key.
func (f Fixture) Key() FixtureKey { return FixtureKey{f.FixtureID, f.Season} }

package fplsync

// RosterTeamMap maps player id to the team id recorded on that season's
// roster. It is the authoritative team association for the season: the
// per-round files sometimes encode team by short name or by a stale id.
type RosterTeamMap map[int]int64

// ResolveTeam picks the team for one player-round record by priority:
// the roster mapping if it has an entry for the player, else the record's
// own numeric team value, else nil. Pure function of its inputs.
//
// Roster-wins is a modeling choice carried over from the data owner: after a
// mid-season transfer the roster and the round file can legitimately
// disagree, and the roster is treated as ground truth.
func ResolveTeam(roster RosterTeamMap, playerID int, own *int64) *int64 {
	if teamID, ok := roster[playerID]; ok {
		return &teamID
	}
	return own
}

// ReconcileGameweeks resolves the team association for every stat in place.
// Must run after the season's roster has been ingested; with an empty map
// every record falls back to its own team value.
func ReconcileGameweeks(roster RosterTeamMap, stats []GameweekStat) {
	for i := range stats {
		stats[i].TeamID = ResolveTeam(roster, stats[i].PlayerID, stats[i].TeamID)
	}
}

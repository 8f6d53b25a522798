package fplsync

import "strings"

// mapColumns builds a case-insensitive column name to index map.
func mapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

// getCol gets a column value by name from a CSV record, returning empty
// string if the column is missing from this source.
func getCol(record []string, colIdx map[string]int, name string) string {
	idx, ok := colIdx[strings.ToLower(name)]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// firstCol returns the value of the first named column present and non-empty.
func firstCol(record []string, colIdx map[string]int, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(getCol(record, colIdx, name)); v != "" {
			return v
		}
	}
	return ""
}

// NormalizeTeamRow maps one archive teams.csv row onto a Team.
// Returns ok=false when the row has no usable team id.
func NormalizeTeamRow(record []string, colIdx map[string]int, season string) (Team, bool) {
	id := parseIntOrNull(firstCol(record, colIdx, "id", "team_id"))
	if id == nil {
		return Team{}, false
	}
	return Team{
		TeamID:    int(*id),
		Season:    season,
		Name:      strings.TrimSpace(getCol(record, colIdx, "name")),
		ShortName: strings.TrimSpace(getCol(record, colIdx, "short_name")),
	}, true
}

// NormalizePlayerRow maps one archive players_raw.csv row onto a Player.
// Returns ok=false when the row has no usable player id.
func NormalizePlayerRow(record []string, colIdx map[string]int, season string) (Player, bool) {
	id := parseIntOrNull(getCol(record, colIdx, "id"))
	if id == nil {
		return Player{}, false
	}
	return Player{
		PlayerID:   int(*id),
		Season:     season,
		WebName:    strings.TrimSpace(getCol(record, colIdx, "web_name")),
		FirstName:  strings.TrimSpace(getCol(record, colIdx, "first_name")),
		SecondName: strings.TrimSpace(getCol(record, colIdx, "second_name")),
		Position:   positionFromCode(parseIntOrNull(getCol(record, colIdx, "element_type"))),
		TeamID:     parseIntOrNull(getCol(record, colIdx, "team")),
	}, true
}

// NormalizeGameweekRow maps one merged gameweek file row onto a GameweekStat.
// Stat fields degrade to nil on cast failure; the record is dropped
// (ok=false) only when its natural key (player id or round) is unusable.
// TeamID holds the record's own numeric team value, if any; reconciliation
// against the roster happens later.
func NormalizeGameweekRow(record []string, colIdx map[string]int, season string) (GameweekStat, bool) {
	playerID := parseIntOrNull(getCol(record, colIdx, "element"))
	round := parseIntOrNull(getCol(record, colIdx, "round"))
	if playerID == nil || round == nil {
		return GameweekStat{}, false
	}

	return GameweekStat{
		PlayerID:    int(*playerID),
		Season:      season,
		Round:       int(*round),
		Minutes:     parseIntOrNull(getCol(record, colIdx, "minutes")),
		Goals:       parseIntOrNull(getCol(record, colIdx, "goals_scored")),
		Assists:     parseIntOrNull(getCol(record, colIdx, "assists")),
		YellowCards: parseIntOrNull(getCol(record, colIdx, "yellow_cards")),
		RedCards:    parseIntOrNull(getCol(record, colIdx, "red_cards")),
		Bonus:       parseIntOrNull(getCol(record, colIdx, "bonus")),
		BPS:         parseIntOrNull(getCol(record, colIdx, "bps")),
		TotalPoints: parseIntOrNull(getCol(record, colIdx, "total_points")),
		Influence:   parseFloatOrNull(getCol(record, colIdx, "influence")),
		Creativity:  parseFloatOrNull(getCol(record, colIdx, "creativity")),
		Threat:      parseFloatOrNull(getCol(record, colIdx, "threat")),
		ICTIndex:    parseFloatOrNull(getCol(record, colIdx, "ict_index")),
		Value:       scaleValue(parseFloatOrNull(getCol(record, colIdx, "value"))),
		TeamID:      parseIntOrNull(firstCol(record, colIdx, "team_id", "team")),
	}, true
}

package services

import "sort"

// Leaderboard periods.
const (
	PeriodWeek    = "week"
	PeriodOverall = "overall"
)

// LeaderboardEntry is one ranked row of a group leaderboard.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Points      int    `json:"points"`
	MaxPoints   int    `json:"max_points"`
}

// RankLeaderboard sorts entries by points descending and assigns
// ranks. Ties break by ascending user ID so results are reproducible;
// the ordering within a tie carries no product meaning.
func RankLeaderboard(entries []LeaderboardEntry) []LeaderboardEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

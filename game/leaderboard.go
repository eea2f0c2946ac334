package game

import "sort"

// LeaderboardEntry 排行榜中的一行
type LeaderboardEntry struct {
	Name  string
	Score int
}

// Leaderboard 按分数降序排列；同分先后不作保证
func Leaderboard(players []*Player) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, LeaderboardEntry{Name: p.Name, Score: p.Score})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	return entries
}

// ResetScores 周期性清零所有分数
func ResetScores(players []*Player) {
	for _, p := range players {
		p.Score = 0
	}
}

package services

import "testing"

func TestRankLeaderboardDescending(t *testing.T) {
	entries := []LeaderboardEntry{
		{UserID: 2, Username: "bo", Points: 19, MaxPoints: 38},
		{UserID: 3, Username: "cy", Points: 0, MaxPoints: 38},
		{UserID: 1, Username: "ann", Points: 38, MaxPoints: 38},
	}
	ranked := RankLeaderboard(entries)

	wantOrder := []uint{1, 2, 3}
	wantPoints := []int{38, 19, 0}
	for i := range ranked {
		if ranked[i].UserID != wantOrder[i] || ranked[i].Points != wantPoints[i] {
			t.Fatalf("rank %d: got user %d with %d points, want user %d with %d",
				i+1, ranked[i].UserID, ranked[i].Points, wantOrder[i], wantPoints[i])
		}
		if ranked[i].Rank != i+1 {
			t.Fatalf("rank field=%d, want %d", ranked[i].Rank, i+1)
		}
		if ranked[i].MaxPoints != 38 {
			t.Fatalf("MaxPoints=%d, want 38", ranked[i].MaxPoints)
		}
	}
}

func TestRankLeaderboardTieBreaksByUserID(t *testing.T) {
	entries := []LeaderboardEntry{
		{UserID: 9, Points: 20},
		{UserID: 4, Points: 20},
		{UserID: 7, Points: 20},
	}
	ranked := RankLeaderboard(entries)
	want := []uint{4, 7, 9}
	for i := range ranked {
		if ranked[i].UserID != want[i] {
			t.Fatalf("tie order: got %d at rank %d, want %d", ranked[i].UserID, i+1, want[i])
		}
	}
}

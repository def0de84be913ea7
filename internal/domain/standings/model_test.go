package standings

import "testing"

func TestRank_TiesShareRankAndSkipPositions(t *testing.T) {
	t.Parallel()

	totals := []MemberTotals{
		{UserID: "user-c", TotalPoints: 40, ExactScores: 4},
		{UserID: "user-a", TotalPoints: 50, ExactScores: 5},
		{UserID: "user-b", TotalPoints: 50, ExactScores: 5},
	}

	entries := Rank(totals)

	if len(entries) != 3 {
		t.Fatalf("unexpected entry count: %d", len(entries))
	}
	if entries[0].Rank != 1 || entries[1].Rank != 1 {
		t.Fatalf("expected shared rank 1, got %d and %d", entries[0].Rank, entries[1].Rank)
	}
	if entries[2].Rank != 3 {
		t.Fatalf("expected next distinct rank 3, got %d", entries[2].Rank)
	}
	if entries[2].UserID != "user-c" {
		t.Fatalf("unexpected ordering: %s at position 3", entries[2].UserID)
	}
}

func TestRank_ExactScoresBreakPointTies(t *testing.T) {
	t.Parallel()

	totals := []MemberTotals{
		{UserID: "user-a", TotalPoints: 50, ExactScores: 2},
		{UserID: "user-b", TotalPoints: 50, ExactScores: 7},
	}

	entries := Rank(totals)

	if entries[0].UserID != "user-b" || entries[0].Rank != 1 {
		t.Fatalf("expected user-b first, got %s rank %d", entries[0].UserID, entries[0].Rank)
	}
	if entries[1].UserID != "user-a" || entries[1].Rank != 2 {
		t.Fatalf("expected user-a second with rank 2, got %s rank %d", entries[1].UserID, entries[1].Rank)
	}
}

func TestRank_CorrectResultsOrderDisplayOnly(t *testing.T) {
	t.Parallel()

	totals := []MemberTotals{
		{UserID: "user-a", TotalPoints: 30, ExactScores: 3, CorrectResults: 1},
		{UserID: "user-b", TotalPoints: 30, ExactScores: 3, CorrectResults: 9},
	}

	entries := Rank(totals)

	if entries[0].UserID != "user-b" {
		t.Fatalf("expected more correct results listed first, got %s", entries[0].UserID)
	}
	if entries[0].Rank != 1 || entries[1].Rank != 1 {
		t.Fatalf("correct results must not split the rank: got %d and %d", entries[0].Rank, entries[1].Rank)
	}
}

func TestCountOutranking_AgreesWithRank(t *testing.T) {
	t.Parallel()

	totals := []MemberTotals{
		{UserID: "user-a", TotalPoints: 50, ExactScores: 5},
		{UserID: "user-b", TotalPoints: 50, ExactScores: 5},
		{UserID: "user-c", TotalPoints: 50, ExactScores: 2},
		{UserID: "user-d", TotalPoints: 40, ExactScores: 8},
		{UserID: "user-e", TotalPoints: 0, ExactScores: 0},
	}

	entries := Rank(totals)
	rankByUser := make(map[string]int, len(entries))
	for _, entry := range entries {
		rankByUser[entry.UserID] = entry.Rank
	}

	for _, member := range totals {
		got := CountOutranking(totals, member) + 1
		if want := rankByUser[member.UserID]; got != want {
			t.Fatalf("CountOutranking disagrees with Rank for %s: got %d, want %d", member.UserID, got, want)
		}
	}
}

func TestRank_EmptyInput(t *testing.T) {
	t.Parallel()

	if entries := Rank(nil); len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

package standings

import "sort"

// MemberTotals is the raw per-member aggregate over a league's scored
// predictions. Membership, not prediction history, defines the row set:
// a member with no scored predictions still appears with zeros.
type MemberTotals struct {
	UserID          string
	TotalPoints     int
	ExactScores     int
	CorrectResults  int
	GameweeksPlayed int
}

// Entry is one ranked leaderboard row.
type Entry struct {
	Rank            int
	UserID          string
	TotalPoints     int
	ExactScores     int
	CorrectResults  int
	GameweeksPlayed int
}

// Rank orders member totals and assigns competition ranks: total points
// descending, then exact scores descending; entries with an identical
// (points, exact) pair share a rank and the next distinct entry takes
// its 1-based position, e.g. points [50,50,40] rank [1,1,3]. Correct
// results break ties in display order only, never in rank.
func Rank(totals []MemberTotals) []Entry {
	sorted := append([]MemberTotals(nil), totals...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalPoints != sorted[j].TotalPoints {
			return sorted[i].TotalPoints > sorted[j].TotalPoints
		}
		if sorted[i].ExactScores != sorted[j].ExactScores {
			return sorted[i].ExactScores > sorted[j].ExactScores
		}
		if sorted[i].CorrectResults != sorted[j].CorrectResults {
			return sorted[i].CorrectResults > sorted[j].CorrectResults
		}
		return sorted[i].UserID < sorted[j].UserID
	})

	out := make([]Entry, 0, len(sorted))
	for idx, item := range sorted {
		rank := idx + 1
		if idx > 0 && item.TotalPoints == sorted[idx-1].TotalPoints && item.ExactScores == sorted[idx-1].ExactScores {
			rank = out[idx-1].Rank
		}
		out = append(out, Entry{
			Rank:            rank,
			UserID:          item.UserID,
			TotalPoints:     item.TotalPoints,
			ExactScores:     item.ExactScores,
			CorrectResults:  item.CorrectResults,
			GameweeksPlayed: item.GameweeksPlayed,
		})
	}

	return out
}

// CountOutranking counts members strictly ahead of the given totals
// under the ranking order. It must agree with Rank: for every member,
// CountOutranking == rank-1. Keep the predicate in lockstep with the
// sort keys above.
func CountOutranking(totals []MemberTotals, member MemberTotals) int {
	count := 0
	for _, item := range totals {
		if item.UserID == member.UserID {
			continue
		}
		if item.TotalPoints > member.TotalPoints {
			count++
			continue
		}
		if item.TotalPoints == member.TotalPoints && item.ExactScores > member.ExactScores {
			count++
		}
	}
	return count
}

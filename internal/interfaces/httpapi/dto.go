package httpapi

import (
	"github.com/predictleague/predictor/internal/domain/standings"
	"github.com/predictleague/predictor/internal/usecase"
)

type syncResultDTO struct {
	CompetitionID string `json:"competitionId"`
	SeasonID      string `json:"seasonId"`
	TeamsSynced   int    `json:"teamsSynced"`
	MatchesSynced int    `json:"matchesSynced"`
}

type resultRefreshDTO struct {
	CompetitionID  string `json:"competitionId"`
	MatchesUpdated int    `json:"matchesUpdated"`
}

type leaderboardEntryDTO struct {
	Rank            int    `json:"rank"`
	UserID          string `json:"userId"`
	TotalPoints     int    `json:"totalPoints"`
	ExactScores     int    `json:"exactScores"`
	CorrectResults  int    `json:"correctResults"`
	GameweeksPlayed int    `json:"gameweeksPlayed"`
}

type leaderboardDTO struct {
	LeagueID         string                `json:"leagueId"`
	Entries          []leaderboardEntryDTO `json:"entries"`
	IsSeasonComplete bool                  `json:"isSeasonComplete"`
	Champion         *leaderboardEntryDTO  `json:"champion,omitempty"`
}

type userRankDTO struct {
	LeagueID       string `json:"leagueId"`
	UserID         string `json:"userId"`
	Rank           int    `json:"rank"`
	TotalMembers   int    `json:"totalMembers"`
	TotalPoints    int    `json:"totalPoints"`
	ExactScores    int    `json:"exactScores"`
	CorrectResults int    `json:"correctResults"`
}

func entryToDTO(entry standings.Entry) leaderboardEntryDTO {
	return leaderboardEntryDTO{
		Rank:            entry.Rank,
		UserID:          entry.UserID,
		TotalPoints:     entry.TotalPoints,
		ExactScores:     entry.ExactScores,
		CorrectResults:  entry.CorrectResults,
		GameweeksPlayed: entry.GameweeksPlayed,
	}
}

func leaderboardToDTO(leagueID string, board usecase.Leaderboard) leaderboardDTO {
	entries := make([]leaderboardEntryDTO, 0, len(board.Entries))
	for _, entry := range board.Entries {
		entries = append(entries, entryToDTO(entry))
	}

	out := leaderboardDTO{
		LeagueID:         leagueID,
		Entries:          entries,
		IsSeasonComplete: board.IsSeasonComplete,
	}
	if board.Champion != nil {
		champion := entryToDTO(*board.Champion)
		out.Champion = &champion
	}
	return out
}

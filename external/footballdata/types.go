package footballdata

import (
	"strings"
	"time"

	"github.com/predictleague/predictor/internal/usecase"
)

type teamsEnvelope struct {
	Teams []teamItem `json:"teams"`
}

type teamItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	TLA       string `json:"tla"`
	Crest     string `json:"crest"`
}

type competitionEnvelope struct {
	CurrentSeason seasonItem `json:"currentSeason"`
}

type seasonItem struct {
	ID              int64  `json:"id"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	CurrentMatchday *int   `json:"currentMatchday"`
}

type matchesEnvelope struct {
	Matches []matchItem `json:"matches"`
}

type matchItem struct {
	ID       int64     `json:"id"`
	UTCDate  string    `json:"utcDate"`
	Status   string    `json:"status"`
	Matchday *int      `json:"matchday"`
	Stage    string    `json:"stage"`
	Venue    string    `json:"venue"`
	HomeTeam teamItem  `json:"homeTeam"`
	AwayTeam teamItem  `json:"awayTeam"`
	Score    scoreItem `json:"score"`
	Bookings []booking `json:"bookings"`
}

type scoreItem struct {
	FullTime scorePair `json:"fullTime"`
}

type scorePair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type booking struct {
	Card string   `json:"card"`
	Team teamItem `json:"team"`
}

func mapTeamItem(item teamItem) usecase.ExternalTeam {
	return usecase.ExternalTeam{
		ExternalID: item.ID,
		Name:       strings.TrimSpace(item.Name),
		ShortName:  strings.TrimSpace(item.ShortName),
		Code:       strings.ToUpper(strings.TrimSpace(item.TLA)),
		CrestURL:   strings.TrimSpace(item.Crest),
	}
}

func mapMatchItem(item matchItem) (usecase.ExternalMatch, bool) {
	kickoff, ok := parseUTCDate(item.UTCDate)
	if !ok {
		return usecase.ExternalMatch{}, false
	}

	homeReds, awayReds := countRedCards(item)

	return usecase.ExternalMatch{
		ExternalID:   item.ID,
		Stage:        strings.TrimSpace(item.Stage),
		Matchday:     item.Matchday,
		KickoffAt:    kickoff,
		Status:       strings.TrimSpace(item.Status),
		HomeTeam:     mapTeamItem(item.HomeTeam),
		AwayTeam:     mapTeamItem(item.AwayTeam),
		HomeScore:    item.Score.FullTime.Home,
		AwayScore:    item.Score.FullTime.Away,
		Venue:        strings.TrimSpace(item.Venue),
		HomeRedCards: homeReds,
		AwayRedCards: awayReds,
	}, true
}

// countRedCards is best effort: the list endpoints usually omit
// bookings, in which case both counts stay zero.
func countRedCards(item matchItem) (int, int) {
	home, away := 0, 0
	for _, b := range item.Bookings {
		if !strings.EqualFold(strings.TrimSpace(b.Card), "RED_CARD") {
			continue
		}
		switch b.Team.ID {
		case item.HomeTeam.ID:
			home++
		case item.AwayTeam.ID:
			away++
		}
	}
	return home, away
}

func parseUTCDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

func parseDateOnly(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

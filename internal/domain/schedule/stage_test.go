package schedule

import "testing"

func TestNormalizeStageTag(t *testing.T) {
	t.Parallel()

	cases := []struct {
		label string
		want  string
		ok    bool
	}{
		{label: "LEAGUE_STAGE", want: StageLeaguePhase, ok: true},
		{label: "LEAGUE_STAGE_1", want: StageLeaguePhase, ok: true},
		{label: "League Phase", want: StageLeaguePhase, ok: true},
		{label: "PLAYOFFS", want: StagePlayoffs, ok: true},
		{label: "LAST_16", want: StageLast16, ok: true},
		{label: "Round of 16", want: StageLast16, ok: true},
		{label: "QUARTER_FINALS", want: StageQuarterFinals, ok: true},
		{label: "SEMI_FINALS", want: StageSemiFinals, ok: true},
		{label: "FINAL", want: StageFinal, ok: true},
		{label: "GROUP_STAGE", ok: false},
		{label: "", ok: false},
	}

	for _, tc := range cases {
		got, ok := NormalizeStageTag(tc.label)
		if ok != tc.ok {
			t.Fatalf("NormalizeStageTag(%q) ok = %t, want %t", tc.label, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("NormalizeStageTag(%q) = %s, want %s", tc.label, got, tc.want)
		}
	}
}

func TestCupGameweekNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		tag      string
		matchday int
		want     int
	}{
		{tag: StageLeaguePhase, matchday: 1, want: 1},
		{tag: StageLeaguePhase, matchday: 8, want: 8},
		{tag: StagePlayoffs, matchday: 1, want: 9},
		{tag: StagePlayoffs, matchday: 2, want: 10},
		{tag: StageLast16, matchday: 1, want: 11},
		{tag: StageLast16, matchday: 2, want: 12},
		{tag: StageQuarterFinals, matchday: 1, want: 13},
		{tag: StageQuarterFinals, matchday: 2, want: 14},
		{tag: StageSemiFinals, matchday: 1, want: 15},
		{tag: StageSemiFinals, matchday: 2, want: 16},
		{tag: StageFinal, matchday: 1, want: 17},
		// A missing matchday assignment clamps to the first round.
		{tag: StageFinal, matchday: 0, want: 17},
	}

	for _, tc := range cases {
		got, ok := CupGameweekNumber(tc.tag, tc.matchday)
		if !ok {
			t.Fatalf("CupGameweekNumber(%s, %d) not ok", tc.tag, tc.matchday)
		}
		if got != tc.want {
			t.Fatalf("CupGameweekNumber(%s, %d) = %d, want %d", tc.tag, tc.matchday, got, tc.want)
		}
	}

	if _, ok := CupGameweekNumber("group-stage", 1); ok {
		t.Fatal("expected unknown stage to be rejected")
	}
}

func TestStageNumberingIsStableAcrossDraws(t *testing.T) {
	t.Parallel()

	// The quarter-final number must not depend on whether the semis or
	// final have been drawn yet.
	early, _ := CupGameweekNumber(StageQuarterFinals, 1)
	late, _ := CupGameweekNumber(StageQuarterFinals, 1)
	if early != late {
		t.Fatalf("quarter-final number changed: %d vs %d", early, late)
	}
}

func TestStageDisplayName(t *testing.T) {
	t.Parallel()

	if got := StageDisplayName(StageLeaguePhase, 3); got != "League Phase - MD 3" {
		t.Fatalf("unexpected league-phase name: %s", got)
	}
	if got := StageDisplayName(StageLast16, 2); got != "Round of 16 - Leg 2" {
		t.Fatalf("unexpected knockout name: %s", got)
	}
	if got := StageDisplayName(StageFinal, 1); got != "Final" {
		t.Fatalf("unexpected final name: %s", got)
	}
	if got := StageDisplayName("group-stage", 1); got != "" {
		t.Fatalf("expected empty name for unknown stage, got %s", got)
	}
}

package models

import "testing"

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		input   string
		want    Difficulty
		wantErr bool
	}{
		{"easy", Easy, false},
		{"MEDIUM", Medium, false},
		{" hard ", Hard, false},
		{"insane", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDifficulty(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDifficulty(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDifficulty(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSeasonClone_IsDeep(t *testing.T) {
	points := 25
	season := ChampionshipSeason{
		ID: "s1",
		Races: []ChampionshipRace{{
			ID:      "r1",
			Results: []RankedResult{{Name: "You", Position: 1, IsUser: true, Points: &points}},
		}},
		Standings: []ChampionshipStanding{{DriverName: "You", Points: 25}},
	}

	clone := season.Clone()
	*clone.Races[0].Results[0].Points = 1
	clone.Races[0].Results[0].Name = "Hamilton"
	clone.Standings[0].Points = 99
	clone.Races[0].Completed = true

	if points != 25 {
		t.Errorf("points pointer shared with clone")
	}
	if season.Races[0].Results[0].Name != "You" {
		t.Error("results slice shared with clone")
	}
	if season.Standings[0].Points != 25 {
		t.Error("standings slice shared with clone")
	}
	if season.Races[0].Completed {
		t.Error("races slice shared with clone")
	}
}

func TestSeason_NextRaceAndIndex(t *testing.T) {
	season := ChampionshipSeason{Races: []ChampionshipRace{{ID: "a"}, {ID: "b"}}}

	if next := season.NextRace(); next == nil || next.ID != "a" {
		t.Fatalf("expected first race, got %+v", next)
	}
	season.CurrentRaceIndex = 2
	if season.NextRace() != nil {
		t.Error("expected no next race past the end")
	}
	if season.RaceIndex("b") != 1 {
		t.Error("expected index 1 for race b")
	}
	if season.RaceIndex("zzz") != -1 {
		t.Error("expected -1 for unknown race")
	}
}

func TestRace_UserResult(t *testing.T) {
	race := ChampionshipRace{Results: []RankedResult{
		{Name: "Norris", Position: 1},
		{Name: "You", Position: 2, IsUser: true},
	}}
	if u := race.UserResult(); u == nil || u.Position != 2 {
		t.Fatalf("expected user at position 2, got %+v", u)
	}
	if (ChampionshipRace{}).UserResult() != nil {
		t.Error("expected nil for race without results")
	}
}

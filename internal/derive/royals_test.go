package derive

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/JakeFAU/yoweb-scraper/internal/model"
)

func pirate(name, role, url string) model.Pirate {
	return model.Pirate{Name: name, FlagRole: role, URL: url, FlagName: " Black Sails ", CrewName: "Regulars", CrewRank: "Pirate"}
}

func TestRoyalsFilterAndOrder(t *testing.T) {
	t.Parallel()

	in := []model.Pirate{
		pirate("Quinn", "queen", "u/q"),
		pirate("Kay", "King", "u/k"),
		pirate("Dee", "Duke", "u/d"),
		pirate("Pat", "prince", "u/p"),
	}
	got := Royals(in)

	want := []model.Royal{
		{PirateName: "Kay", FlagRole: "King", FlagName: "Black Sails", CrewName: "Regulars", CrewRank: "Pirate", PirateURL: "u/k"},
		{PirateName: "Quinn", FlagRole: "Queen", FlagName: "Black Sails", CrewName: "Regulars", CrewRank: "Pirate", PirateURL: "u/q"},
		{PirateName: "Pat", FlagRole: "Prince", FlagName: "Black Sails", CrewName: "Regulars", CrewRank: "Pirate", PirateURL: "u/p"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Royals mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "queen", in[0].FlagRole, "input must not be modified")
}

func TestRoyalsSecondarySortAndDedupe(t *testing.T) {
	t.Parallel()

	in := []model.Pirate{
		pirate("Zed", "LADY", "u/z"),
		pirate("Amy", "lady", "u/a"),
		pirate("Amy", "Lady", "u/a"),
		pirate("Bo", " lord ", ""),
		pirate("Bo", "Lord", ""),
		pirate("Cy", "Lord", ""),
		pirate("Archie", "Archduke", "u/x"),
		pirate("Nobody", "", "u/n"),
	}
	got := Royals(in)

	names := make([]string, 0, len(got))
	for _, r := range got {
		names = append(names, r.FlagRole+":"+r.PirateName)
	}
	assert.Equal(t, []string{"Lord:Bo", "Lord:Cy", "Lady:Amy", "Lady:Zed"}, names)
}

func TestRoyalsIdempotent(t *testing.T) {
	t.Parallel()

	in := []model.Pirate{
		pirate("Pat", "princess", "u/p"),
		pirate("Kay", "king", "u/k"),
		pirate("Kay", "king", "u/k"),
	}
	first := Royals(in)
	second := Royals(in)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second derivation differs (-first +second):\n%s", diff)
	}
}

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"queen":      "Queen",
		"  KING ":    "King",
		"pRiNcEsS":   "Princess",
		"":           "",
		"   ":        "",
		"élan vital": "Élan vital",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeTitle(in), in)
	}
}

func TestTitleRank(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, TitleRank("King"))
	assert.Equal(t, 5, TitleRank("Lady"))
	assert.Equal(t, unranked, TitleRank("Duke"))
	assert.Equal(t, unranked, TitleRank("king"))
	assert.True(t, IsRoyal(" princess"))
	assert.False(t, IsRoyal("Archduke"))
}

func TestStamp(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("EST", -5*3600)
	ts := time.Date(2024, 3, 9, 7, 4, 5, 987654321, loc)
	assert.Equal(t, "2024-03-09T12:04:05+00:00", Stamp(ts))
}

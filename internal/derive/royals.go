// Package derive computes the views built from upstream stage output without
// any I/O: the royal roster and the run's update stamp.
package derive

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/JakeFAU/yoweb-scraper/internal/model"
)

// StampColumn is the column added to every non-empty data table.
const StampColumn = "Last Updated (UTC)"

// stampLayout renders a UTC time with an explicit "+00:00" offset.
const stampLayout = "2006-01-02T15:04:05-07:00"

// unranked sorts after every recognised title.
const unranked = 999

// titleOrder ranks the recognised flag titles. The set is closed: any other
// role is not royal.
var titleOrder = map[string]int{
	"King":     0,
	"Queen":    1,
	"Prince":   2,
	"Princess": 3,
	"Lord":     4,
	"Lady":     5,
}

// NormalizeTitle trims s and re-cases it with only the first letter upper.
func NormalizeTitle(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}

// TitleRank returns the sort position of a normalized title.
func TitleRank(title string) int {
	if rank, ok := titleOrder[title]; ok {
		return rank
	}
	return unranked
}

// IsRoyal reports whether role normalizes to a recognised title.
func IsRoyal(role string) bool {
	_, ok := titleOrder[NormalizeTitle(role)]
	return ok
}

// Royals filters pirates to recognised flag titles, ordered by title rank then
// name. Each pirate appears once, keyed by URL when present and by name
// otherwise. The input slice is not modified.
func Royals(pirates []model.Pirate) []model.Royal {
	royals := make([]model.Royal, 0, len(pirates))
	for _, p := range pirates {
		title := NormalizeTitle(p.FlagRole)
		if _, ok := titleOrder[title]; !ok {
			continue
		}
		royals = append(royals, model.Royal{
			PirateName: p.Name,
			FlagRole:   title,
			FlagName:   strings.TrimSpace(p.FlagName),
			CrewName:   p.CrewName,
			CrewRank:   p.CrewRank,
			PirateURL:  p.URL,
		})
	}

	sort.SliceStable(royals, func(i, j int) bool {
		ri, rj := TitleRank(royals[i].FlagRole), TitleRank(royals[j].FlagRole)
		if ri != rj {
			return ri < rj
		}
		return royals[i].PirateName < royals[j].PirateName
	})

	seen := make(map[string]struct{}, len(royals))
	out := royals[:0]
	for _, r := range royals {
		key := "url:" + r.PirateURL
		if r.PirateURL == "" {
			key = "name:" + r.PirateName
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Stamp formats t as the update marker shared by every table in a run:
// UTC, second precision, "+00:00" offset.
func Stamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(stampLayout)
}

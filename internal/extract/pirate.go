package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/yoweb-scraper/internal/model"
)

var (
	crewRolePattern = regexp.MustCompile(`(?i)(\w+)\s+of the crew\s+(.+)`)
	flagRolePattern = regexp.MustCompile(`(?i)(\w+)\s+of the flag\s+(.+)`)
)

// Affiliation is a role held in a named crew or flag.
type Affiliation struct {
	Role string
	Name string
}

// Pirate parses a pirate profile page. Missing fields are left empty and every
// skill in model.SkillNames is present in the result.
func Pirate(text, pirateURL string) (model.Pirate, error) {
	doc, err := load(text)
	if err != nil {
		return model.Pirate{}, err
	}

	crew, flag := affiliations(doc)
	return model.Pirate{
		URL:      pirateURL,
		Name:     primaryName(doc),
		CrewRank: crew.Role,
		CrewName: crew.Name,
		FlagRole: flag.Role,
		FlagName: flag.Name,
		Skills:   skills(doc),
	}, nil
}

// affiliations scans the rows of the panel's first table. A row is selected by
// its label text; the name comes from the row's first link, not the label.
// Later matching rows win.
func affiliations(doc *goquery.Document) (crew, flag Affiliation) {
	panel := doc.Find(panelSelector).First()
	first := panel.Find("table").First()
	first.Find("tr").Each(func(_ int, row *goquery.Selection) {
		text := flatText(row)
		lower := strings.ToLower(text)
		if strings.Contains(lower, "of the crew") {
			if m := crewRolePattern.FindStringSubmatch(text); m != nil {
				crew = Affiliation{Role: m[1], Name: tightText(row.Find("a").First())}
			}
		}
		if strings.Contains(lower, "of the flag") {
			if m := flagRolePattern.FindStringSubmatch(text); m != nil {
				flag = Affiliation{Role: m[1], Name: tightText(row.Find("a").First())}
			}
		}
	})
	return crew, flag
}

// skills reads each skill icon's neighbouring cell. Icons are recognised by
// their alt text.
func skills(doc *goquery.Document) map[string]string {
	out := make(map[string]string, len(model.SkillNames))
	for _, name := range model.SkillNames {
		out[name] = ""
	}
	doc.Find("img[alt]").Each(func(_ int, img *goquery.Selection) {
		alt, _ := img.Attr("alt")
		alt = strings.TrimSpace(alt)
		if !model.IsSkill(alt) {
			return
		}
		next := img.Closest("td").NextAllFiltered("td").First()
		if next.Length() == 0 {
			return
		}
		out[alt] = ParseSkill(flatText(next))
	})
	return out
}

// ParseSkill normalises "<experience>/<standing>" to "<experience> / <standing>".
// Blank input yields "". A value without a slash keeps the separator with an
// empty standing, trimmed ("5" becomes "5 /").
func ParseSkill(s string) string {
	parts := strings.Split(s, "/")
	exp := strings.TrimSpace(parts[0])
	standing := ""
	if len(parts) > 1 {
		standing = strings.TrimSpace(parts[1])
	}
	if exp == "" && standing == "" {
		return ""
	}
	return strings.TrimSpace(exp + " / " + standing)
}

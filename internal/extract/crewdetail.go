package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/yoweb-scraper/internal/model"
)

const captainIcon = "/yoweb/images/crew-captain.png"

// CrewDetail parses a crew info page. The page must carry at least two tables,
// a centered cell in the second one and a "+2" crew name heading.
func CrewDetail(text, crewURL string) (model.CrewDetail, error) {
	doc, err := load(text)
	if err != nil {
		return model.CrewDetail{}, err
	}

	tables := doc.Find("table")
	if tables.Length() < 2 {
		return model.CrewDetail{}, parseErr(crewURL, "expected at least 2 tables on the page")
	}
	center := tables.Eq(1).Find(`td[align="center"]`).First()
	if center.Length() == 0 {
		return model.CrewDetail{}, parseErr(crewURL, "center cell not found in second table")
	}

	name, err := crewHeading(center, crewURL)
	if err != nil {
		return model.CrewDetail{}, err
	}

	return model.CrewDetail{
		CrewName:        name,
		PublicStatement: publicStatement(center),
		Captain:         captain(doc),
		CrewURL:         crewURL,
	}, nil
}

func crewHeading(center *goquery.Selection, page string) (string, error) {
	font := center.Find(`font[size="+2"]`).First()
	if font.Length() == 0 {
		return "", parseErr(page, "crew name font tag not found")
	}
	b := font.Find("b").First()
	if b.Length() == 0 {
		return "", parseErr(page, "crew name <b> not found")
	}
	return tightText(b), nil
}

// publicStatement reads the left-aligned paragraph. Its first line is a label
// whenever more than one line is present.
func publicStatement(center *goquery.Selection) string {
	lines := strippedStrings(center.Find(`p[align="left"]`).First())
	switch len(lines) {
	case 0:
		return ""
	case 1:
		return lines[0]
	default:
		return strings.Join(lines[1:], " ")
	}
}

// captain scans tables in document order, so the outermost table holding the
// captain icon is tried first. The row after that table's parent row holds the
// captain's link; tables without such a row are skipped.
func captain(doc *goquery.Document) string {
	name := ""
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if table.Find(`img[src="`+captainIcon+`"]`).Length() == 0 {
			return true
		}
		row := table.ParentsFiltered("tr").First()
		if row.Length() == 0 {
			return true
		}
		link := row.NextAllFiltered("tr").First().Find("a").First()
		if link.Length() == 0 {
			return true
		}
		name = tightText(link)
		return false
	})
	return name
}

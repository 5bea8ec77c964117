package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/yoweb-scraper/internal/model"
)

var crewTableHeaders = []string{"Crew", "Rank", "Members", "Fame"}

// crewTableFallback is the position of the crew table in the stock flag page
// layout, used when no table carries the expected header row.
const crewTableFallback = 10

// Crews parses a flag roster page into its crew rows. baseURL resolves
// root-relative crew links.
func Crews(text, baseURL string) ([]model.Crew, error) {
	doc, err := load(text)
	if err != nil {
		return nil, err
	}

	table := findCrewTable(doc)
	if table == nil {
		tables := doc.Find("table")
		if tables.Length() <= crewTableFallback {
			return nil, parseErr("flag roster", "could not find crews table (not enough <table> elements)")
		}
		table = tables.Eq(crewTableFallback)
	}

	var crews []model.Crew
	ownRows(table).Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := tr.ChildrenFiltered("td")
		if cells.Length() < 4 {
			return
		}
		link := cells.Eq(0).Find("a").First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}
		if strings.HasPrefix(href, "/") {
			href = strings.TrimRight(baseURL, "/") + href
		}
		crews = append(crews, model.Crew{
			Name:    tightText(link),
			URL:     href,
			Rank:    tightText(cells.Eq(1)),
			Members: tightText(cells.Eq(2)),
			Fame:    tightText(cells.Eq(3)),
		})
	})
	return crews, nil
}

// findCrewTable returns the first table whose header row names every expected
// column. Header cells are th elements, or the first row's td cells.
func findCrewTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := ownRows(table)
		header := rows.ChildrenFiltered("th")
		if header.Length() == 0 {
			header = rows.First().ChildrenFiltered("td")
		}
		var parts []string
		header.Each(func(_ int, cell *goquery.Selection) {
			parts = append(parts, cellText(cell))
		})
		text := strings.ToLower(strings.Join(parts, " "))
		for _, want := range crewTableHeaders {
			if !strings.Contains(text, strings.ToLower(want)) {
				return true
			}
		}
		found = table
		return false
	})
	return found
}

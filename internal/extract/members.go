package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/JakeFAU/yoweb-scraper/internal/model"
)

const (
	jobbingIcon     = "/yoweb/images/crew-jobbing.png"
	unknownCrewName = "Unknown"
)

// Members lists the pirates linked from a crew roster page, in document order.
// Everything after the jobbing-pirates marker is ignored. Repeated
// (URL, name, crew) triples are dropped.
func Members(text, crewURL, baseURL string) ([]model.PirateURL, error) {
	doc, err := load(text)
	if err != nil {
		return nil, err
	}

	crewName := unknownCrewName
	if heading := doc.Find(`font[size="+2"] > b`).First(); heading.Length() > 0 {
		crewName = tightText(heading)
	}

	var markerNode *html.Node
	if marker := doc.Find(`img[src="` + jobbingIcon + `"]`); marker.Length() > 0 {
		markerNode = marker.Get(0)
	}

	type key struct{ url, name, crew string }
	seen := make(map[key]struct{})
	var out []model.PirateURL

	doc.Find("body *").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if markerNode != nil && el.Get(0) == markerNode {
			return false
		}
		if goquery.NodeName(el) != "a" {
			return true
		}
		href, ok := el.Attr("href")
		if !ok || !isPirateLink(href) {
			return true
		}
		row := model.PirateURL{
			PirateURL:  stripFragment(absoluteURL(baseURL, href)),
			PirateName: tightText(el),
			CrewName:   crewName,
			CrewURL:    crewURL,
		}
		k := key{row.PirateURL, row.PirateName, row.CrewName}
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
		out = append(out, row)
		return true
	})
	return out, nil
}

func isPirateLink(href string) bool {
	return strings.Contains(href, "/yoweb/pirate.wm") && strings.Contains(href, "target=")
}

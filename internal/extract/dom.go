package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// panelSelector anchors the left-hand information panel.
const panelSelector = `td[width="190"]`

var whitespaceRun = regexp.MustCompile(`\s+`)

func load(text string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// clean collapses whitespace runs and trims.
func clean(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// strippedStrings returns every non-blank text node under sel, trimmed, in
// document order.
func strippedStrings(sel *goquery.Selection) []string {
	var out []string
	for _, n := range sel.Nodes {
		walkText(n, func(s string) {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		})
	}
	return out
}

func walkText(n *html.Node, fn func(string)) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		fn(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, fn)
	}
}

// cellText is flatText restricted to the cell's own content: text inside
// nested tables is skipped.
func cellText(sel *goquery.Selection) string {
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				out = append(out, s)
			}
			return
		case n.Type == html.ElementNode && n.Data == "table":
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	return strings.Join(out, " ")
}

// flatText joins the stripped strings under sel with single spaces.
func flatText(sel *goquery.Selection) string {
	return strings.Join(strippedStrings(sel), " ")
}

// tightText joins the stripped strings under sel with no separator.
func tightText(sel *goquery.Selection) string {
	return strings.Join(strippedStrings(sel), "")
}

// ownRows returns the rows that belong to table itself, skipping rows of any
// nested table.
func ownRows(table *goquery.Selection) *goquery.Selection {
	if table.Length() == 0 {
		return table
	}
	owner := table.Get(0)
	return table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").Get(0) == owner
	})
}

// primaryName returns the pirate name from the "+1" font element, falling back
// to the document title.
func primaryName(doc *goquery.Document) string {
	if name := tightText(doc.Find(`font[size="+1"]`).First()); name != "" {
		return name
	}
	return tightText(doc.Find("title").First())
}

// nextElement returns the first element named tag that follows from in
// document order. Descendants of from count as following it.
func nextElement(root, from *html.Node, tag string) *html.Node {
	var (
		seen  bool
		found *html.Node
	)
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if seen && n != from && n.Type == html.ElementNode && n.Data == tag {
			found = n
			return true
		}
		if n == from {
			seen = true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)
	return found
}

// findText returns the first text node under sel whose content matches re.
func findText(sel *goquery.Selection, re *regexp.Regexp) *html.Node {
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.TextNode && re.MatchString(n.Data) {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return found
}

// absoluteURL resolves href against base the way yoweb links are written:
// absolute URLs pass through, root-relative and bare paths are joined.
func absoluteURL(base, href string) string {
	base = strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "/"):
		return base + href
	default:
		return base + "/" + href
	}
}

func stripFragment(u string) string {
	if i := strings.IndexByte(u, '#'); i >= 0 {
		return u[:i]
	}
	return u
}

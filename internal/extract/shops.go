package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/yoweb-scraper/internal/model"
)

// shopTypes maps icon slugs to their display names.
var shopTypes = map[string]string{
	"apothecary":  "Apothecary",
	"distillery":  "Distillery",
	"furnisher":   "Furnisher",
	"ironmonger":  "Iron Monger",
	"shipyard":    "Shipyard",
	"tailor":      "Tailor",
	"weavery":     "Weavery",
	"fort":        "Fort",
	"estateagent": "Estate Agent",
}

var (
	// shop-<slug>.png or shop-managed-<slug>.png
	shopIconPattern = regexp.MustCompile(`(?i)(?:^|/)shop(-managed)?-([a-z-]+)\.png`)
	ownershipPrefix = regexp.MustCompile(`(?i)^(Owns:|Manages:)\s*`)
	nameOnLocation  = regexp.MustCompile(`(?i)^\s*(.+?)\s+on\s+([^,]+)$`)
	stallTitle      = regexp.MustCompile(`(?i)^(.+?)\s+on\s+(.+)$`)
	stallsHeading   = regexp.MustCompile(`(?i)^\s*Stalls\s*$`)
)

// DecodeShopIcon reads the shop type and ownership role from an icon path.
// Unknown paths return empty strings.
func DecodeShopIcon(src string) (shopType, role string) {
	m := shopIconPattern.FindStringSubmatch(src)
	if m == nil {
		return "", ""
	}
	slug := strings.ToLower(m[2])
	shopType, ok := shopTypes[slug]
	if !ok {
		shopType = HumanizeSlug(slug)
	}
	role = model.RoleOwns
	if m[1] != "" {
		role = model.RoleManages
	}
	return shopType, role
}

// HumanizeSlug turns "some-slug" into "Some Slug".
func HumanizeSlug(slug string) string {
	words := strings.Fields(strings.ReplaceAll(slug, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.ReplaceAll(strings.Join(words, " "), "Ironmonger", "Iron Monger")
}

// NamePair is a shop name and the island it sits on.
type NamePair struct {
	Name     string
	Location string
}

// NameLocationPairs splits "A on X, B on Y" into pairs after dropping an
// "Owns:"/"Manages:" label. A name may itself contain commas; a location may
// not.
func NameLocationPairs(text string) []NamePair {
	txt := ownershipPrefix.ReplaceAllString(clean(text), "")
	var (
		pairs   []NamePair
		pending string
	)
	for _, segment := range strings.Split(txt, ",") {
		candidate := segment
		if pending != "" {
			candidate = pending + "," + segment
		}
		m := nameOnLocation.FindStringSubmatch(candidate)
		if m == nil {
			pending = candidate
			continue
		}
		pending = ""
		loc := clean(m[2])
		if loc == "" {
			loc = model.LocationError
		}
		pairs = append(pairs, NamePair{Name: clean(m[1]), Location: loc})
	}
	return pairs
}

// Shops lists the shoppes and stalls named in a pirate's information panel.
// Shoppes with an unreadable description still produce one row with the
// location set to "Error".
func Shops(text string) ([]model.Shop, error) {
	doc, err := load(text)
	if err != nil {
		return nil, err
	}
	panel := doc.Find(panelSelector).First()
	if panel.Length() == 0 {
		return nil, nil
	}

	base := model.Shop{
		PirateName: primaryName(doc),
		CrewName:   panelCrewName(panel),
	}
	rows := shoppeRows(panel, base)
	return append(rows, stallRows(doc, panel, base)...), nil
}

// panelCrewName returns the link text of the first "of the crew" row.
func panelCrewName(panel *goquery.Selection) string {
	name := ""
	panel.Find("table").First().Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(flatText(row)), "of the crew") {
			return true
		}
		name = flatText(row.Find("a").First())
		return false
	})
	return name
}

func shoppeRows(panel *goquery.Selection, base model.Shop) []model.Shop {
	var rows []model.Shop
	panel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("td")
		if cells.Length() < 2 {
			return
		}
		img := cells.Eq(0).Find("img").First()
		if img.Length() == 0 {
			return
		}
		src, _ := img.Attr("src")
		shopType, role := DecodeShopIcon(src)
		if shopType == "" {
			return
		}
		pairs := NameLocationPairs(flatText(cells.Eq(1)))
		if len(pairs) == 0 {
			pairs = []NamePair{{Location: model.LocationError}}
		}
		for _, p := range pairs {
			row := base
			row.Type = shopType
			row.Size = model.SizeShoppe
			row.Name = p.Name
			row.Location = p.Location
			row.Role = role
			rows = append(rows, row)
		}
	})
	return rows
}

// stallRows reads the paragraph following the "Stalls" heading. Each shop
// icon inside it is one stall, named by its title or alt text.
func stallRows(doc *goquery.Document, panel *goquery.Selection, base model.Shop) []model.Shop {
	heading := findText(panel, stallsHeading)
	if heading == nil || heading.Parent == nil {
		return nil
	}
	block := nextElement(doc.Get(0), heading.Parent, "p")
	if block == nil {
		return nil
	}

	var rows []model.Shop
	goquery.NewDocumentFromNode(block).Find("img").Each(func(_ int, icon *goquery.Selection) {
		src, _ := icon.Attr("src")
		shopType, role := DecodeShopIcon(src)
		if shopType == "" {
			return
		}
		title, _ := icon.Attr("title")
		if title == "" {
			title, _ = icon.Attr("alt")
		}
		row := base
		row.Type = shopType
		row.Size = model.SizeStall
		row.Role = role
		row.Location = model.LocationError
		if m := stallTitle.FindStringSubmatch(clean(title)); m != nil {
			row.Name = clean(m[1])
			row.Location = clean(m[2])
		}
		rows = append(rows, row)
	})
	return rows
}

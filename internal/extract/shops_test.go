package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/yoweb-scraper/internal/model"
)

const shopPage = `<html><body>
<table><tr>
<td width="190">
  <font size="+1">Anne</font>
  <table>
    <tr><td>Captain of the crew <a href="/c">Black Regulars</a></td></tr>
  </table>
  <table>
    <tr>
      <td><img src="/yoweb/images/shop-tailor.png"></td>
      <td>Owns: Anne's Emporium on Emerald Isle, Bob's Shop on Cobalt</td>
    </tr>
    <tr>
      <td><img src="/yoweb/images/shop-managed-ironmonger.png"></td>
      <td>Manages: Forge on Jade Island</td>
    </tr>
    <tr>
      <td><img src="/yoweb/images/shop-managed-bakery-hall.png"></td>
      <td>gibberish</td>
    </tr>
    <tr>
      <td><img src="/yoweb/images/portrait.png"></td>
      <td>Not a shop on Nowhere</td>
    </tr>
  </table>
  <b>Stalls</b>
  <p>
    <img src="/yoweb/images/shop-weavery.png" title="Loom Stall on Cobalt">
    <img src="/yoweb/images/shop-managed-apothecary.png" alt="Potions on Emerald Isle">
    <img src="/yoweb/images/shop-fort.png">
    <img src="/yoweb/images/flag.png" title="Flag on Pole">
  </p>
</td>
<td><table><tr><td><img src="/yoweb/images/shop-tailor.png"></td><td>Outside on Panel</td></tr></table></td>
</tr></table>
</body></html>`

func TestShops(t *testing.T) {
	t.Parallel()

	got, err := Shops(shopPage)
	require.NoError(t, err)

	shop := func(typ, size, name, loc, role string) model.Shop {
		return model.Shop{
			PirateName: "Anne",
			CrewName:   "Black Regulars",
			Type:       typ,
			Size:       size,
			Name:       name,
			Location:   loc,
			Role:       role,
		}
	}
	assert.Equal(t, []model.Shop{
		shop("Tailor", "Shoppe", "Anne's Emporium", "Emerald Isle", "Owns"),
		shop("Tailor", "Shoppe", "Bob's Shop", "Cobalt", "Owns"),
		shop("Iron Monger", "Shoppe", "Forge", "Jade Island", "Manages"),
		shop("Bakery Hall", "Shoppe", "", "Error", "Manages"),
		shop("Weavery", "Stall", "Loom Stall", "Cobalt", "Owns"),
		shop("Apothecary", "Stall", "Potions", "Emerald Isle", "Manages"),
		shop("Fort", "Stall", "", "Error", "Owns"),
	}, got)
}

func TestShopsWithoutPanel(t *testing.T) {
	t.Parallel()

	got, err := Shops(`<table><tr><td><img src="/yoweb/images/shop-tailor.png"></td><td>A on B</td></tr></table>`)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeShopIcon(t *testing.T) {
	t.Parallel()

	cases := []struct {
		src, typ, role string
	}{
		{"/img/shop-managed-ironmonger.png", "Iron Monger", "Manages"},
		{"/img/shop-tailor.png", "Tailor", "Owns"},
		{"/yoweb/images/shop-estateagent.png", "Estate Agent", "Owns"},
		{"/yoweb/images/shop-managed-grand-ironmonger.png", "Grand Iron Monger", "Manages"},
		{"/yoweb/images/SHOP-Distillery.PNG", "Distillery", "Owns"},
		{"/yoweb/images/workshop-tailor.png", "", ""},
		{"/yoweb/images/crew-captain.png", "", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		typ, role := DecodeShopIcon(tc.src)
		assert.Equal(t, tc.typ, typ, tc.src)
		assert.Equal(t, tc.role, role, tc.src)
	}
}

func TestNameLocationPairs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want []NamePair
	}{
		{
			"Anne's Emporium on Emerald Isle, Bob's Shop on Cobalt",
			[]NamePair{{"Anne's Emporium", "Emerald Isle"}, {"Bob's Shop", "Cobalt"}},
		},
		{"Owns:   Big   Shop on   Jade", []NamePair{{"Big Shop", "Jade"}}},
		{"manages: One on Two", []NamePair{{"One", "Two"}}},
		{"Salt, Pepper and Co on Spice Isle", []NamePair{{"Salt, Pepper and Co", "Spice Isle"}}},
		{"Dock on the Bay on Port", []NamePair{{"Dock", "the Bay on Port"}}},
		{"no pairs here", nil},
		{"", nil},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NameLocationPairs(tc.in), tc.in)
	}
}

func TestHumanizeSlug(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Iron Monger", HumanizeSlug("ironmonger"))
	assert.Equal(t, "Fancy Hat Shop", HumanizeSlug("fancy-hat-shop"))
	assert.Equal(t, "", HumanizeSlug(""))
}

package metro

import (
	"fmt"
	"net/url"
	"strings"

	"MetroScraper/internal/models"
	"MetroScraper/internal/scraper"
	"MetroScraper/utils"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func newDocument(htmlContent string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// normalizeText collapses the whitespace of rendered text the way a browser shows it.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseListing extracts the product cards of a fully expanded category page.
// Links are made absolute against baseURL and de-duplicated; cards without a link are skipped.
func ParseListing(htmlContent, baseURL string) ([]models.ListingItem, error) {
	doc, err := newDocument(htmlContent)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	var items []models.ListingItem
	var links []string
	soldOut := make(map[string]bool)

	doc.Find(productItemSel).Each(func(i int, card *goquery.Selection) {
		href, ok := card.Find(productPhotoLinkSel).First().Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		link := base.ResolveReference(ref).String()
		links = append(links, link)
		if strings.Contains(card.Text(), soldOutMarker) {
			soldOut[link] = true
		}
	})

	for _, link := range utils.UniqueStrings(links) {
		items = append(items, models.ListingItem{Link: link, SoldOut: soldOut[link]})
	}
	return items, nil
}

// ParseProductPage extracts a product from its page. A page without the article, name,
// current price or brand blocks is reported as scraper.ErrOutOfStock.
func ParseProductPage(htmlContent, link string) (models.Product, error) {
	doc, err := newDocument(htmlContent)
	if err != nil {
		return models.Product{}, err
	}

	required := func(sel *goquery.Selection, what string) (string, error) {
		if sel.Length() == 0 {
			return "", fmt.Errorf("%w: no %s on %s", scraper.ErrOutOfStock, what, link)
		}
		return sel.Text(), nil
	}

	article, err := required(doc.Find(productArticleSel).First(), "article")
	if err != nil {
		return models.Product{}, err
	}
	name, err := required(doc.Find(productNameSel).First(), "name")
	if err != nil {
		return models.Product{}, err
	}
	promo, err := required(doc.Find(productPromoPriceSel).First(), "price")
	if err != nil {
		return models.Product{}, err
	}
	brand, err := required(doc.Find(productAttributeSel).Eq(brandAttributeIndex), "brand")
	if err != nil {
		return models.Product{}, err
	}

	parts := strings.Split(article, ":")
	p := models.Product{
		ID:           strings.TrimSpace(parts[len(parts)-1]),
		Name:         normalizeText(name),
		Link:         link,
		RegularPrice: utils.ScrapePrice(doc.Find(productRegularPriceSel).First().Text()),
		PromoPrice:   utils.ScrapePrice(promo),
		BrandName:    normalizeText(brand),
	}
	// No crossed-out price means the product is not on promotion.
	if p.RegularPrice == "" {
		p.RegularPrice = p.PromoPrice
	}
	return p, nil
}

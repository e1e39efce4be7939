package menu

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"menuplanner"
)

// RenderedHTMLSource is the tertiary upstream, used when a deployment permits
// scraping the public menu pages directly. It reads the same DOM the dining
// site renders, with CSS selector rules, and produces the same canonical
// output shape as the structured sources.
type RenderedHTMLSource struct {
	baseURL    string
	httpClient menuplanner.HTTPClient
}

func NewRenderedHTMLSource(baseURL string, httpClient menuplanner.HTTPClient) *RenderedHTMLSource {
	return &RenderedHTMLSource{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (s *RenderedHTMLSource) Name() string { return "rendered-html" }

func (s *RenderedHTMLSource) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrSourceUnavailable, err)
	}
	return doc, nil
}

// mealTimePathSegment maps a meal-time to its URL path form. "late lunch" is
// the only multi-word serving period.
func mealTimePathSegment(mealTime string) string {
	mt := strings.ToLower(strings.TrimSpace(mealTime))
	if mt == "" {
		mt = "lunch"
	}
	if mt == "late lunch" {
		return "Late%20Lunch"
	}
	return strings.ToUpper(mt[:1]) + mt[1:]
}

// ListMenu scrapes a location's menu page into stations of listed items.
func (s *RenderedHTMLSource) ListMenu(ctx context.Context, location, date, mealTime string) (map[string][]ListedItem, error) {
	pageURL := fmt.Sprintf("%s/%s/%s/%s/", s.baseURL, url.PathEscape(location), date, mealTimePathSegment(mealTime))
	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	origin := s.baseURL
	if u, err := url.Parse(s.baseURL); err == nil {
		origin = u.Scheme + "://" + u.Host
	}

	stations := make(map[string][]ListedItem)
	doc.Find(".station").Each(func(_ int, station *goquery.Selection) {
		stationName := strings.TrimSpace(station.Find(".station-name").First().Text())
		if stationName == "" {
			return
		}

		var items []ListedItem
		station.Find(".station-item--container_plain").Each(func(_ int, container *goquery.Selection) {
			name := strings.TrimSpace(container.Find(".station-item-text").First().Text())
			if name == "" {
				return
			}
			item := ListedItem{Name: name}
			if href, ok := container.Find("a.station-item").Attr("href"); ok {
				item.NutritionURL = origin + href
				// The item id is the last path segment of the nutrition link.
				if idx := strings.LastIndexByte(strings.TrimSuffix(href, "/"), '/'); idx >= 0 {
					item.ID = strings.TrimSuffix(href, "/")[idx+1:]
				}
			}
			items = append(items, item)
		})
		stations[stationName] = items
	})

	if len(stations) == 0 {
		return nil, fmt.Errorf("%w: no stations found at %s", ErrSourceUnavailable, pageURL)
	}
	return stations, nil
}

// Nutrition scrapes an item's nutrition page. The serving size and calories
// have dedicated feature spans; the macro rows share a label/labelValue table.
func (s *RenderedHTMLSource) Nutrition(ctx context.Context, item ListedItem) (NutritionRecord, error) {
	if item.NutritionURL == "" {
		return NutritionRecord{}, fmt.Errorf("%w: %s has no nutrition page", ErrSourceUnavailable, item.Name)
	}

	doc, err := s.fetchDocument(ctx, item.NutritionURL)
	if err != nil {
		return NutritionRecord{}, err
	}

	var facts []Fact
	if serving := strings.TrimSpace(doc.Find("span.nutrition-feature-servingSize-quantity").First().Text()); serving != "" {
		facts = append(facts, Fact{Label: "Serving Size", Value: serving})
	}
	if calories := strings.TrimSpace(doc.Find("span.nutrition-feature-calories-quantity").First().Text()); calories != "" {
		facts = append(facts, Fact{Label: "Calories", Value: calories})
	}

	doc.Find("div.nutrition-table-row").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find("span.table-row-label").First().Text())
		value := strings.TrimSpace(row.Find("span.table-row-labelValue").First().Text())
		if label == "" || value == "" {
			return
		}
		facts = append(facts, Fact{Label: label, Value: value})
	})

	return recordFromFacts(item.Name, facts), nil
}

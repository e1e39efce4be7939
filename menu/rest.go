package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"menuplanner"
)

// RestSource is the fallback upstream: a simpler REST endpoint with a
// different fact schema ({Name, Value|LabelValue} records). Values may carry
// units or "< 1" readings in LabelValue when Value is absent.
type RestSource struct {
	baseURL    string
	httpClient menuplanner.HTTPClient
}

func NewRestSource(baseURL string, httpClient menuplanner.HTTPClient) *RestSource {
	return &RestSource{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (s *RestSource) Name() string { return "rest" }

type restItemResponse struct {
	Name      string `json:"Name"`
	Nutrition []struct {
		Name       string   `json:"Name"`
		Value      *float64 `json:"Value"`
		LabelValue string   `json:"LabelValue"`
	} `json:"Nutrition"`
}

func (s *RestSource) Nutrition(ctx context.Context, item ListedItem) (NutritionRecord, error) {
	url := fmt.Sprintf("%s/items/%s", s.baseURL, item.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NutritionRecord{}, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return NutritionRecord{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return NutritionRecord{}, fmt.Errorf("%w: %s: %s", ErrSourceUnavailable, resp.Status, string(body))
	}

	var out restItemResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return NutritionRecord{}, fmt.Errorf("%w: decode: %v", ErrSourceUnavailable, err)
	}

	facts := make([]Fact, 0, len(out.Nutrition))
	for _, f := range out.Nutrition {
		value := f.LabelValue
		if f.Value != nil {
			value = strconv.FormatFloat(*f.Value, 'f', -1, 64)
		}
		facts = append(facts, Fact{Label: f.Name, Value: value})
	}
	return recordFromFacts(item.Name, facts), nil
}

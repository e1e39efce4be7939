package menu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"menuplanner"
)

const getLocationMenuQuery = `query getLocationMenu($name: String!, $date: Date!) {
  diningCourtByName(name: $name) {
    dailyMenu(date: $date) {
      meals {
        name
        status
        stations {
          name
          items {
            item {
              itemId
              name
              isNutritionReady
            }
          }
        }
      }
    }
  }
}`

const getItemNutritionQuery = `query getItemNutrition($itemId: String!) {
  item(id: $itemId) {
    name
    nutrition {
      label
      value
      unit
    }
  }
}`

// GraphQLSource is the primary upstream: the dining API's GraphQL endpoint.
// It serves both the per-location menu listing and per-item nutrition facts.
type GraphQLSource struct {
	endpoint    string
	menuBaseURL string
	httpClient  menuplanner.HTTPClient
}

type GraphQLSourceOpts struct {
	Endpoint    string
	MenuBaseURL string
	HTTPClient  menuplanner.HTTPClient
}

func NewGraphQLSource(opts GraphQLSourceOpts) *GraphQLSource {
	return &GraphQLSource{
		endpoint:    opts.Endpoint,
		menuBaseURL: strings.TrimSuffix(opts.MenuBaseURL, "/"),
		httpClient:  opts.HTTPClient,
	}
}

func (s *GraphQLSource) Name() string { return "graphql" }

type graphqlRequest struct {
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
	Query         string         `json:"query"`
}

func (s *GraphQLSource) post(ctx context.Context, reqBody graphqlRequest, out any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: %s", ErrSourceUnavailable, resp.Status, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrSourceUnavailable, err)
	}
	return nil
}

type menuQueryResponse struct {
	Data struct {
		DiningCourtByName *struct {
			DailyMenu *struct {
				Meals []struct {
					Name     string `json:"name"`
					Status   string `json:"status"`
					Stations []struct {
						Name  string `json:"name"`
						Items []struct {
							Item *struct {
								ItemID           string `json:"itemId"`
								Name             string `json:"name"`
								IsNutritionReady bool   `json:"isNutritionReady"`
							} `json:"item"`
						} `json:"items"`
					} `json:"stations"`
				} `json:"meals"`
			} `json:"dailyMenu"`
		} `json:"diningCourtByName"`
	} `json:"data"`
}

// ListMenu fetches the location's daily menu and returns the stations for the
// requested meal. Items not yet nutrition-ready are skipped; they have no
// facts to resolve.
func (s *GraphQLSource) ListMenu(ctx context.Context, location, date, mealTime string) (map[string][]ListedItem, error) {
	var out menuQueryResponse
	err := s.post(ctx, graphqlRequest{
		OperationName: "getLocationMenu",
		Variables:     map[string]any{"name": location, "date": date},
		Query:         getLocationMenuQuery,
	}, &out)
	if err != nil {
		return nil, err
	}

	court := out.Data.DiningCourtByName
	if court == nil || court.DailyMenu == nil {
		return nil, fmt.Errorf("%w: no menu data for %s on %s", ErrSourceUnavailable, location, date)
	}

	stations := make(map[string][]ListedItem)
	for _, meal := range court.DailyMenu.Meals {
		if !strings.EqualFold(meal.Name, mealTime) {
			continue
		}
		for _, station := range meal.Stations {
			items := make([]ListedItem, 0, len(station.Items))
			for _, wrapped := range station.Items {
				item := wrapped.Item
				if item == nil || !item.IsNutritionReady {
					continue
				}
				items = append(items, ListedItem{
					ID:           item.ItemID,
					Name:         item.Name,
					NutritionURL: fmt.Sprintf("%s/item/%s", s.menuBaseURL, item.ItemID),
				})
			}
			stations[station.Name] = items
		}
	}
	return stations, nil
}

type nutritionQueryResponse struct {
	Data struct {
		Item *struct {
			Name      string `json:"name"`
			Nutrition []struct {
				Label string `json:"label"`
				Value string `json:"value"`
				Unit  string `json:"unit"`
			} `json:"nutrition"`
		} `json:"item"`
	} `json:"data"`
}

// Nutrition fetches the labeled fact list for one item and canonicalizes it.
func (s *GraphQLSource) Nutrition(ctx context.Context, item ListedItem) (NutritionRecord, error) {
	var out nutritionQueryResponse
	err := s.post(ctx, graphqlRequest{
		OperationName: "getItemNutrition",
		Variables:     map[string]any{"itemId": item.ID},
		Query:         getItemNutritionQuery,
	}, &out)
	if err != nil {
		return NutritionRecord{}, err
	}
	if out.Data.Item == nil {
		return NutritionRecord{}, fmt.Errorf("%w: item %s not found", ErrSourceUnavailable, item.ID)
	}

	facts := make([]Fact, 0, len(out.Data.Item.Nutrition))
	for _, f := range out.Data.Item.Nutrition {
		facts = append(facts, Fact{Label: f.Label, Value: f.Value})
	}
	return recordFromFacts(item.Name, facts), nil
}

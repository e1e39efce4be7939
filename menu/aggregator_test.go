package menu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"
)

type mockLister struct {
	menus map[string]map[string][]ListedItem
	errs  map[string]error
}

func (m *mockLister) ListMenu(ctx context.Context, location, date, mealTime string) (map[string][]ListedItem, error) {
	if err := m.errs[location]; err != nil {
		return nil, err
	}
	return m.menus[location], nil
}

// countingSource resolves every item and is safe for concurrent use.
type countingSource struct {
	mu     sync.Mutex
	called int
	fail   map[string]bool
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) Nutrition(ctx context.Context, item ListedItem) (NutritionRecord, error) {
	s.mu.Lock()
	s.called++
	s.mu.Unlock()
	if s.fail[item.Name] {
		return NutritionRecord{}, fmt.Errorf("%w: %s", ErrSourceUnavailable, item.Name)
	}
	rec := completeRecord(item.Name)
	rec.ServingSize = "1 Each"
	return rec, nil
}

func TestLocationsFor(t *testing.T) {
	should.Equal(t, DefaultLocations, LocationsFor("lunch"))
	should.Equal(t, DefaultLocations, LocationsFor("breakfast"))
	should.Equal(t, []string{"Hillenbrand", "Windsor"}, LocationsFor("Late Lunch"))
	should.Equal(t, []string{"Hillenbrand", "Windsor"}, LocationsFor("late lunch"))
}

func TestAggregate(t *testing.T) {
	lister := &mockLister{
		menus: map[string]map[string][]ListedItem{
			"Windsor": {
				"Grill": {
					{ID: "1", Name: "Burger"},
					{ID: "2", Name: "Fries"},
				},
			},
			"Wiley": {
				"Home": {
					{ID: "3", Name: "Meatloaf"},
				},
			},
		},
	}
	source := &countingSource{}
	agg := NewAggregator(lister, source, 2)

	snapshot, err := agg.Aggregate(context.Background(), "lunch", "2025-09-20", []string{"Windsor", "Wiley"})
	must.NoError(t, err)

	should.Equal(t, []string{"Wiley", "Windsor"}, snapshot.Locations())
	should.Equal(t, 3, snapshot.TotalItems())
	should.Equal(t, 3, source.called)

	items := snapshot.CompleteItems("Windsor")
	must.Len(t, items, 2)
	should.Equal(t, "Windsor", items[0].Location)
	should.Equal(t, "Grill", items[0].Station)
	should.Equal(t, "lunch", items[0].MealTime)
	should.Equal(t, "1 Each", items[0].ServingSize)
}

func TestAggregateLocationFailureIsIsolated(t *testing.T) {
	lister := &mockLister{
		menus: map[string]map[string][]ListedItem{
			"Windsor": {
				"Grill": {{ID: "1", Name: "Burger"}},
			},
		},
		errs: map[string]error{
			"Earhart": errors.New("listing failed: 503"),
		},
	}
	agg := NewAggregator(lister, &countingSource{}, 2)

	snapshot, err := agg.Aggregate(context.Background(), "lunch", "2025-09-20", []string{"Earhart", "Windsor"})
	must.NoError(t, err, "a single location failure must not fail the aggregation")

	must.NotNil(t, snapshot["Earhart"])
	should.Equal(t, "listing failed: 503", snapshot["Earhart"].Error)
	should.Equal(t, 0, snapshot["Earhart"].TotalItems)
	should.True(t, snapshot.HasCompleteItems("Windsor"))
}

func TestAggregateNilLocationsUsesRoster(t *testing.T) {
	lister := &mockLister{menus: map[string]map[string][]ListedItem{}}
	agg := NewAggregator(lister, &countingSource{}, 2)

	snapshot, err := agg.Aggregate(context.Background(), "late lunch", "2025-09-20", nil)
	must.NoError(t, err)
	should.Equal(t, []string{"Hillenbrand", "Windsor"}, snapshot.Locations())
}

func TestAggregateNutritionFailureKeepsDescriptiveItem(t *testing.T) {
	lister := &mockLister{
		menus: map[string]map[string][]ListedItem{
			"Windsor": {
				"Grill": {
					{ID: "1", Name: "Burger"},
					{ID: "2", Name: "Mystery Dish"},
				},
			},
		},
	}
	source := &countingSource{fail: map[string]bool{"Mystery Dish": true}}
	agg := NewAggregator(lister, source, 2)

	snapshot, err := agg.Aggregate(context.Background(), "lunch", "2025-09-20", []string{"Windsor"})
	must.NoError(t, err)

	should.Equal(t, 2, snapshot["Windsor"].TotalItems, "errored item stays listed")
	items := snapshot.CompleteItems("Windsor")
	must.Len(t, items, 1, "only the resolved item is usable for plans")
	should.Equal(t, "Burger", items[0].Name)
}

func TestAggregateCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lister := &mockLister{menus: map[string]map[string][]ListedItem{}}
	agg := NewAggregator(lister, &countingSource{}, 2)

	_, err := agg.Aggregate(ctx, "lunch", "2025-09-20", []string{"Windsor"})
	should.ErrorIs(t, err, context.Canceled)
}

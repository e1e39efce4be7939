package menu

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"menuplanner"
)

// DefaultLocations is the full dining location roster.
var DefaultLocations = []string{"Earhart", "Ford", "Hillenbrand", "Wiley", "Windsor"}

// lateLunchLocations is the reduced roster serving the late lunch period.
var lateLunchLocations = []string{"Hillenbrand", "Windsor"}

// LocationsFor maps a meal-time to the locations that serve it.
func LocationsFor(mealTime string) []string {
	if strings.EqualFold(strings.TrimSpace(mealTime), "late lunch") {
		return lateLunchLocations
	}
	return DefaultLocations
}

const defaultConcurrency = 4

// Aggregator assembles a MenuSnapshot from a menu lister and a nutrition
// source (normally a FallbackChain). Nutrition lookups fan out through a
// bounded worker pool; location listing failures are isolated per location.
type Aggregator struct {
	lister      MenuLister
	source      NutritionSource
	concurrency int
}

func NewAggregator(lister MenuLister, source NutritionSource, concurrency int) *Aggregator {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Aggregator{
		lister:      lister,
		source:      source,
		concurrency: concurrency,
	}
}

type fetchTask struct {
	location string
	station  string
	index    int
	listed   ListedItem
}

// Aggregate collects every location's menu for the meal-time and date. A nil
// locations slice means the meal-time's default roster. A failed location
// yields an errored LocationMenu and aggregation continues; a canceled
// context aborts the whole call so partial results are never returned as if
// complete.
func (a *Aggregator) Aggregate(ctx context.Context, mealTime, date string, locations []string) (MenuSnapshot, error) {
	if locations == nil {
		locations = LocationsFor(mealTime)
	}

	ctx, span := otel.Tracer(menuplanner.TracerNameAggregator).Start(ctx, "Aggregator.Aggregate")
	span.SetAttributes(
		attribute.String("meal_time", mealTime),
		attribute.String("date", date),
		attribute.Int("locations", len(locations)),
	)
	defer span.End()

	snapshot := make(MenuSnapshot, len(locations))
	var tasks []fetchTask

	for _, location := range locations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		loc := &LocationMenu{
			DiningLocation: location,
			MealTime:       mealTime,
			Date:           date,
			Stations:       map[string][]MenuItem{},
		}
		snapshot[location] = loc

		stations, err := a.lister.ListMenu(ctx, location, date, mealTime)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			slog.Warn("AGGREGATOR: Location fetch failed, continuing", "location", location, "error", err)
			loc.Error = err.Error()
			continue
		}

		for stationName, listed := range stations {
			items := make([]MenuItem, len(listed))
			for i, li := range listed {
				items[i] = MenuItem{
					Name:         li.Name,
					Station:      stationName,
					Location:     location,
					MealTime:     mealTime,
					NutritionURL: li.NutritionURL,
				}
				tasks = append(tasks, fetchTask{location: location, station: stationName, index: i, listed: li})
			}
			loc.Stations[stationName] = items
			loc.TotalItems += len(items)
		}
		slog.Info("AGGREGATOR: Listed location", "location", location, "stations", len(loc.Stations), "items", loc.TotalItems)
	}

	if err := a.resolveNutrition(ctx, snapshot, tasks); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// resolveNutrition fills in nutrition facts for every listed item through a
// bounded pool. Each task writes to its own pre-allocated slot, so no locking
// is needed on the snapshot itself. Items whose lookup fails keep only their
// descriptive fields; completeness filtering happens at plan-construction
// time, not here.
func (a *Aggregator) resolveNutrition(ctx context.Context, snapshot MenuSnapshot, tasks []fetchTask) error {
	sem := make(chan struct{}, a.concurrency)
	var wg sync.WaitGroup

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(task fetchTask) {
			defer wg.Done()
			defer func() { <-sem }()

			rec, err := a.source.Nutrition(ctx, task.listed)
			if err != nil {
				slog.Warn("AGGREGATOR: Nutrition lookup failed, keeping descriptive item",
					"item", task.listed.Name, "location", task.location, "error", err)
				return
			}

			item := &snapshot[task.location].Stations[task.station][task.index]
			item.ServingSize = rec.ServingSize
			item.Calories = rec.Calories
			item.ProteinGrams = rec.ProteinGrams
			item.CarbGrams = rec.CarbGrams
			item.FatGrams = rec.FatGrams
			item.FiberGrams = rec.FiberGrams
			item.SodiumMg = rec.SodiumMg
			item.CholesterolMg = rec.CholesterolMg
			item.SaturatedFatGrams = rec.SaturatedFatGrams
		}(task)
	}

	wg.Wait()
	return ctx.Err()
}

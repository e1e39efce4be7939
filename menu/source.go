package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrSourceUnavailable signals that an upstream menu or nutrition source
// failed to respond or parse. It is recovered by the fallback chain or by
// marking the item/location as errored; it is never fatal for a request.
var ErrSourceUnavailable = errors.New("nutrition source unavailable")

// ListedItem is a menu entry as listed by a location's menu page, before
// nutrition resolution.
type ListedItem struct {
	ID           string
	Name         string
	NutritionURL string
}

// NutritionSource resolves one listed item's nutrition facts. Implementations
// are tagged variants (GraphQL, REST, rendered HTML) selected and composed by
// configuration, not control flow.
type NutritionSource interface {
	Name() string
	Nutrition(ctx context.Context, item ListedItem) (NutritionRecord, error)
}

// MenuLister lists a location's stations and items for a meal-time and date.
type MenuLister interface {
	ListMenu(ctx context.Context, location, date, mealTime string) (map[string][]ListedItem, error)
}

// FallbackChain tries sources in order until one yields a complete record.
// An incomplete record from an earlier source is kept as best-effort if no
// later source does better.
type FallbackChain []NutritionSource

func (c FallbackChain) Name() string { return "fallback-chain" }

func (c FallbackChain) Nutrition(ctx context.Context, item ListedItem) (NutritionRecord, error) {
	var best NutritionRecord
	var havePartial bool
	var lastErr error

	for _, src := range c {
		if err := ctx.Err(); err != nil {
			return NutritionRecord{}, err
		}

		rec, err := src.Nutrition(ctx, item)
		if err != nil {
			lastErr = err
			slog.Warn("SOURCE: Nutrition lookup failed, trying next source",
				"source", src.Name(), "item", item.Name, "error", err)
			continue
		}
		rec.Source = src.Name()
		if rec.Complete() {
			return rec, nil
		}
		if !havePartial {
			best = rec
			havePartial = true
		}
		slog.Debug("SOURCE: Incomplete nutrition record, trying next source",
			"source", src.Name(), "item", item.Name)
	}

	if havePartial {
		return best, nil
	}
	if lastErr != nil {
		return NutritionRecord{}, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, item.Name, lastErr)
	}
	return NutritionRecord{}, fmt.Errorf("%w: %s: no sources configured", ErrSourceUnavailable, item.Name)
}

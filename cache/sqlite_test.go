package cache_test

import (
	"context"
	"path/filepath"
	"testing"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"

	"menuplanner/cache"
	"menuplanner/menu"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := cache.NewSQLiteStore(filepath.Join(t.TempDir(), "menus.db"))
	must.NoError(t, err)
	defer store.Close()

	key := cache.NewKey("lunch", "2025-09-20")

	_, err = store.Get(context.Background(), key)
	should.ErrorIs(t, err, cache.ErrMiss)

	cal, protein, carbs, fat := 400.0, 20.0, 45.0, 15.0
	snapshot := menu.MenuSnapshot{
		"Windsor": &menu.LocationMenu{
			DiningLocation: "Windsor", MealTime: "lunch", Date: "2025-09-20",
			Stations: map[string][]menu.MenuItem{
				"Grill": {{
					Name: "Burger", Station: "Grill", Location: "Windsor", MealTime: "lunch",
					Calories: &cal, ProteinGrams: &protein, CarbGrams: &carbs, FatGrams: &fat,
				}},
			},
			TotalItems: 1,
		},
	}
	must.NoError(t, store.Put(context.Background(), key, snapshot))

	got, err := store.Get(context.Background(), key)
	must.NoError(t, err)
	should.Equal(t, 1, got.TotalItems())

	// Put is an upsert: a refreshed snapshot replaces the row.
	snapshot["Windsor"].TotalItems = 2
	snapshot["Windsor"].Stations["Grill"] = append(snapshot["Windsor"].Stations["Grill"], menu.MenuItem{
		Name: "Fries", Station: "Grill", Location: "Windsor", MealTime: "lunch",
	})
	must.NoError(t, store.Put(context.Background(), key, snapshot))

	got, err = store.Get(context.Background(), key)
	must.NoError(t, err)
	should.Equal(t, 2, got.TotalItems())
}

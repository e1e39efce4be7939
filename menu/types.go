package menu

import "sort"

// NutritionRecord holds one food item's canonical nutrition facts. Numeric
// fields are pointers so that a missing fact stays absent instead of becoming
// a zero that would corrupt downstream arithmetic.
type NutritionRecord struct {
	Name              string
	ServingSize       string
	Calories          *float64
	ProteinGrams      *float64
	CarbGrams         *float64
	FatGrams          *float64
	FiberGrams        *float64
	SodiumMg          *float64
	CholesterolMg     *float64
	SaturatedFatGrams *float64

	// Source names the upstream that satisfied this record. Diagnostics only;
	// nothing downstream branches on it.
	Source string
}

// Complete reports whether all four macro facts are present. Incomplete
// records must never reach plan construction.
func (r NutritionRecord) Complete() bool {
	return r.Calories != nil && r.ProteinGrams != nil && r.CarbGrams != nil && r.FatGrams != nil
}

// MenuItem is a NutritionRecord plus its placement on the menu. The JSON tags
// define the cache file format and must stay byte-for-byte stable across
// requests sharing a cache key.
type MenuItem struct {
	Name              string   `json:"name"`
	Station           string   `json:"station"`
	Location          string   `json:"location"`
	MealTime          string   `json:"mealTime"`
	NutritionURL      string   `json:"nutritionUrl,omitempty"`
	ServingSize       string   `json:"servingSize,omitempty"`
	Calories          *float64 `json:"calories,omitempty"`
	ProteinGrams      *float64 `json:"proteinGrams,omitempty"`
	CarbGrams         *float64 `json:"carbGrams,omitempty"`
	FatGrams          *float64 `json:"fatGrams,omitempty"`
	FiberGrams        *float64 `json:"fiberGrams,omitempty"`
	SodiumMg          *float64 `json:"sodiumMg,omitempty"`
	CholesterolMg     *float64 `json:"cholesterolMg,omitempty"`
	SaturatedFatGrams *float64 `json:"saturatedFatGrams,omitempty"`
}

// Complete reports whether the item carries all four macro facts.
func (i MenuItem) Complete() bool {
	return i.Calories != nil && i.ProteinGrams != nil && i.CarbGrams != nil && i.FatGrams != nil
}

// LocationMenu is one dining location's snapshot for a (meal-time, date) pair.
// A location-level fetch failure leaves Stations empty and Error populated;
// the rest of the snapshot is unaffected.
type LocationMenu struct {
	DiningLocation string                `json:"diningLocation"`
	MealTime       string                `json:"mealTime"`
	Date           string                `json:"date"`
	Stations       map[string][]MenuItem `json:"stations"`
	TotalItems     int                   `json:"totalItems"`
	Error          string                `json:"error,omitempty"`
}

// MenuSnapshot maps location name to that location's menu. It is immutable
// once constructed; cache hits return the same snapshot with no partial
// refresh.
type MenuSnapshot map[string]*LocationMenu

// Locations returns the snapshot's location names in sorted order.
func (s MenuSnapshot) Locations() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TotalItems is the item count across every location.
func (s MenuSnapshot) TotalItems() int {
	total := 0
	for _, loc := range s {
		if loc != nil {
			total += loc.TotalItems
		}
	}
	return total
}

// CompleteItems returns the location's items that carry all four macros,
// station order sorted for determinism. A nil or errored location yields none.
func (s MenuSnapshot) CompleteItems(location string) []MenuItem {
	loc, ok := s[location]
	if !ok || loc == nil {
		return nil
	}
	stations := make([]string, 0, len(loc.Stations))
	for name := range loc.Stations {
		stations = append(stations, name)
	}
	sort.Strings(stations)

	var items []MenuItem
	for _, station := range stations {
		for _, item := range loc.Stations[station] {
			if item.Complete() {
				items = append(items, item)
			}
		}
	}
	return items
}

// HasCompleteItems reports whether the location has at least one item usable
// for plan construction.
func (s MenuSnapshot) HasCompleteItems(location string) bool {
	return len(s.CompleteItems(location)) > 0
}

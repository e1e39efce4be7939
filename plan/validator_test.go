package plan

import (
	"testing"

	should "github.com/stretchr/testify/assert"
)

func validPlan(id int, location string, cal int) MealPlan {
	return MealPlan{
		ID:       id,
		Location: location,
		FoodItemLines: []string{
			"* Grilled Chicken (1 Each) Calories: 250 Protein: 30g Carbs: 2g Fat: 12g",
		},
		Items:  []ItemMacros{{Calories: float64(cal), ProteinGrams: 30, CarbGrams: 2, FatGrams: 12}},
		Totals: Totals{Calories: cal, ProteinGrams: 30, CarbGrams: 2, FatGrams: 12},
	}
}

func TestValidate(t *testing.T) {
	targets := Targets{Calories: 800, CalorieLower: 700, CalorieUpper: 900}

	tests := []struct {
		name        string
		set         PlanSet
		flags       Flags
		wantOK      bool
		wantReasons int
	}{
		{
			name:   "all plans inside window",
			set:    PlanSet{Plans: []MealPlan{validPlan(1, "Windsor", 750), validPlan(2, "Wiley", 800), validPlan(3, "Ford", 890)}},
			wantOK: true,
		},
		{
			name:        "empty output",
			set:         PlanSet{},
			wantOK:      false,
			wantReasons: 1,
		},
		{
			name:        "one plan below window",
			set:         PlanSet{Plans: []MealPlan{validPlan(1, "Windsor", 650), validPlan(2, "Wiley", 800)}},
			wantOK:      false,
			wantReasons: 1,
		},
		{
			name:        "boundary values pass",
			set:         PlanSet{Plans: []MealPlan{validPlan(1, "Windsor", 700), validPlan(2, "Wiley", 900)}},
			wantOK:      true,
			wantReasons: 0,
		},
		{
			name: "plan with no numeric items",
			set: PlanSet{Plans: []MealPlan{
				{ID: 1, Location: "Windsor", FoodItemLines: []string{"* Something vague"}, SkippedLines: 1},
			}},
			wantOK:      false,
			wantReasons: 2, // no numeric items + skipped lines
		},
		{
			name: "skipped lines fail an otherwise valid plan",
			set: func() PlanSet {
				mp := validPlan(1, "Windsor", 800)
				mp.FoodItemLines = append(mp.FoodItemLines, "* Garlic Bread (no data)")
				mp.SkippedLines = 1
				return PlanSet{Plans: []MealPlan{mp}}
			}(),
			wantOK:      false,
			wantReasons: 1,
		},
		{
			name:        "location mismatch",
			set:         PlanSet{Plans: []MealPlan{validPlan(1, "Wiley", 800)}},
			flags:       Flags{RequiredLocation: "Windsor"},
			wantOK:      false,
			wantReasons: 1,
		},
		{
			name:   "location matched case-insensitively",
			set:    PlanSet{Plans: []MealPlan{validPlan(1, "WINDSOR dining court", 800)}},
			flags:  Flags{RequiredLocation: "Windsor"},
			wantOK: true,
		},
		{
			name:        "dessert required but absent",
			set:         PlanSet{Plans: []MealPlan{validPlan(1, "Windsor", 800)}},
			flags:       Flags{RequireDessert: true},
			wantOK:      false,
			wantReasons: 1,
		},
		{
			name: "dessert in any plan satisfies the flag",
			set: func() PlanSet {
				mp := validPlan(2, "Windsor", 800)
				mp.FoodItemLines = append(mp.FoodItemLines,
					"* Chocolate Chip Cookie (1 Each) Calories: 210 Protein: 3g Carbs: 30g Fat: 9g")
				mp.Items = append(mp.Items, ItemMacros{Calories: 0, ProteinGrams: 0, CarbGrams: 0, FatGrams: 0})
				return PlanSet{Plans: []MealPlan{validPlan(1, "Windsor", 750), mp}}
			}(),
			flags:  Flags{RequireDessert: true},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.set, targets, tt.flags)
			should.Equal(t, tt.wantOK, got.OK)
			if tt.wantReasons > 0 {
				should.Len(t, got.Reasons, tt.wantReasons)
			}
			if tt.wantOK {
				should.Empty(t, got.Reasons)
			}
		})
	}
}

// Package plan derives numeric targets from a user goal, serializes menu data
// for the generative step, and parses, normalizes, and validates the plan
// text that comes back. Parsing and validation are separate passes: text is
// first recovered into structured records, then the records are checked.
package plan

// GoalSpec is the user-supplied targets object. Macro percentages need not
// sum to exactly 100.
type GoalSpec struct {
	Calories     float64  `json:"calories"`
	Macros       Macros   `json:"macros"`
	DietaryPrefs []string `json:"dietaryPrefs"`
	Preferences  string   `json:"preferences"`
	MealTime     string   `json:"mealTime,omitempty"`
	Date         string   `json:"date,omitempty"`
}

// Macros is the percentage split of calories across the three macros.
type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
}

// Targets are the numeric constraints derived from a GoalSpec.
type Targets struct {
	Calories     float64
	CalorieLower float64
	CalorieUpper float64
	ProteinGrams int
	CarbGrams    int
	FatGrams     int
}

// Flags are the preference constraints the generated plans must honor.
type Flags struct {
	// RequiredLocation, when set, means every plan variant must use only this
	// location and echo its name verbatim.
	RequiredLocation string
	// RequireDessert means at least one dessert item must appear across the
	// plan variants. It is only set when the menu actually has one; the
	// system never demands unavailable categories.
	RequireDessert bool
}

// Constraints bundles what the prompt builder hands to the generative step.
type Constraints struct {
	Targets  Targets
	Flags    Flags
	MenuText string
}

// ItemMacros holds the four numbers extracted from one fully-numeric food
// line.
type ItemMacros struct {
	Calories     float64
	ProteinGrams float64
	CarbGrams    float64
	FatGrams     float64
}

// Totals is a plan block's recomputed nutritional profile. Always derived by
// summing the fully-numeric food lines; never trusted from model output.
type Totals struct {
	Calories     int
	ProteinGrams int
	CarbGrams    int
	FatGrams     int
}

// MealPlan is one parsed plan variant.
type MealPlan struct {
	ID            int
	Location      string
	FoodItemLines []string
	Items         []ItemMacros
	// SkippedLines counts food lines that were missing one or more numeric
	// macros and were excluded from the recomputed totals.
	SkippedLines int
	Totals       Totals
}

// PlanSet is the full parsed response for one generation attempt.
type PlanSet struct {
	RawText string
	Plans   []MealPlan
}

// ValidationResult signals pass/fail plus the reasons that drive the retry
// prompt.
type ValidationResult struct {
	OK      bool
	Reasons []string
}

package plan

import (
	"fmt"
	"strings"
)

// Validate checks a parsed plan set against the derived targets and flags.
// It never mutates the set; the caller decides whether a failure drives a
// retry.
func Validate(set PlanSet, targets Targets, flags Flags) ValidationResult {
	var reasons []string

	if len(set.Plans) == 0 {
		return ValidationResult{OK: false, Reasons: []string{"no plan blocks found in output"}}
	}

	for _, mp := range set.Plans {
		if len(mp.Items) == 0 {
			reasons = append(reasons, fmt.Sprintf("plan %d has no food lines with numeric macros", mp.ID))
		} else {
			cal := float64(mp.Totals.Calories)
			if cal < targets.CalorieLower || cal > targets.CalorieUpper {
				reasons = append(reasons, fmt.Sprintf(
					"plan %d totals %d cal, outside the %.0f-%.0f window",
					mp.ID, mp.Totals.Calories, targets.CalorieLower, targets.CalorieUpper))
			}
		}

		if mp.SkippedLines > 0 {
			reasons = append(reasons, fmt.Sprintf(
				"plan %d has %d food lines without numeric macros", mp.ID, mp.SkippedLines))
		}

		if flags.RequiredLocation != "" &&
			!strings.Contains(strings.ToLower(mp.Location), strings.ToLower(flags.RequiredLocation)) {
			reasons = append(reasons, fmt.Sprintf(
				"plan %d location %q does not match required location %q",
				mp.ID, mp.Location, flags.RequiredLocation))
		}
	}

	if flags.RequireDessert && !planSetHasDessert(set) {
		reasons = append(reasons, "no dessert item found in any plan")
	}

	return ValidationResult{OK: len(reasons) == 0, Reasons: reasons}
}

func planSetHasDessert(set PlanSet) bool {
	for _, mp := range set.Plans {
		for _, line := range mp.FoodItemLines {
			if MatchesDessertKeyword(line) {
				return true
			}
		}
	}
	return false
}

package plan

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"menuplanner/menu"
)

const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9

	// calorieWindow is the tolerance around the calorie target.
	calorieWindow = 100
)

var dessertKeywords = []string{
	"cookie", "brownie", "ice cream", "cake", "cupcake",
	"pie", "cheesecake", "pudding", "dessert",
}

// locationCueWords mark phrases like "earhart hall" or "eat at windsor" that
// name a dining location. Used to break ties when more than one location name
// appears in the preference text.
var locationCueWords = []string{"hall", "dining", "eat"}

// BuildTargets derives the calorie window and per-macro gram targets.
func BuildTargets(goal GoalSpec) Targets {
	cal := goal.Calories
	return Targets{
		Calories:     cal,
		CalorieLower: cal - calorieWindow,
		CalorieUpper: cal + calorieWindow,
		ProteinGrams: int(math.Round(cal * goal.Macros.Protein / 100 / kcalPerGramProtein)),
		CarbGrams:    int(math.Round(cal * goal.Macros.Carbs / 100 / kcalPerGramCarbs)),
		FatGrams:     int(math.Round(cal * goal.Macros.Fats / 100 / kcalPerGramFat)),
	}
}

// MatchesDessertKeyword reports whether the text names a dessert.
func MatchesDessertKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range dessertKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// preferredLocation finds a dining location named in the preference text.
// Matching is a case-insensitive whole-word search for each known location
// name; when several match, a name adjacent to a cue word ("hall", "dining",
// "eat") wins, otherwise the first in sorted order.
func preferredLocation(preferences string, snapshot menu.MenuSnapshot) string {
	if strings.TrimSpace(preferences) == "" {
		return ""
	}
	lower := strings.ToLower(preferences)

	var matches []string
	for _, name := range snapshot.Locations() {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(name)) + `\b`)
		if re.MatchString(lower) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return ""
	}
	if len(matches) == 1 {
		return matches[0]
	}

	for _, name := range matches {
		ln := strings.ToLower(name)
		for _, cue := range locationCueWords {
			if strings.Contains(lower, ln+" "+cue) || strings.Contains(lower, cue+" "+ln) ||
				strings.Contains(lower, cue+" at "+ln) {
				return name
			}
		}
	}
	return matches[0]
}

// snapshotHasDessert reports whether any complete-nutrition item matches a
// dessert keyword, optionally restricted to one location.
func snapshotHasDessert(snapshot menu.MenuSnapshot, location string) bool {
	locations := snapshot.Locations()
	if location != "" {
		locations = []string{location}
	}
	for _, loc := range locations {
		for _, item := range snapshot.CompleteItems(loc) {
			if MatchesDessertKeyword(item.Name) {
				return true
			}
		}
	}
	return false
}

// BuildConstraints derives targets and flags from the goal and serializes the
// relevant menu subset into the text handed to the generative step.
func BuildConstraints(goal GoalSpec, snapshot menu.MenuSnapshot) Constraints {
	targets := BuildTargets(goal)
	flags := Flags{}

	if loc := preferredLocation(goal.Preferences, snapshot); loc != "" {
		if snapshot.HasCompleteItems(loc) {
			flags.RequiredLocation = loc
		} else {
			// The named location has nothing usable; fall through to all
			// locations rather than failing the request.
			slog.Warn("CONSTRAINTS: Preferred location has no usable items, ignoring preference", "location", loc)
		}
	}

	if MatchesDessertKeyword(goal.Preferences) && snapshotHasDessert(snapshot, flags.RequiredLocation) {
		flags.RequireDessert = true
	}

	return Constraints{
		Targets:  targets,
		Flags:    flags,
		MenuText: serializeMenu(snapshot, flags.RequiredLocation),
	}
}

// formatGrams renders a gram value without trailing zeros.
func formatGrams(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// serializeMenu renders the menu subset as fixed-label lines the generative
// step can echo and the parser can invert. Only items with all four numeric
// macros are included.
func serializeMenu(snapshot menu.MenuSnapshot, onlyLocation string) string {
	locations := snapshot.Locations()
	if onlyLocation != "" {
		locations = []string{onlyLocation}
	}

	var b strings.Builder
	for _, locName := range locations {
		loc, ok := snapshot[locName]
		if !ok || loc == nil || loc.TotalItems == 0 {
			continue
		}

		items := snapshot.CompleteItems(locName)
		if len(items) == 0 {
			continue
		}

		fmt.Fprintf(&b, "Dining Court: %s\n\n", locName)
		station := ""
		for _, item := range items {
			if item.Station != station {
				if station != "" {
					b.WriteString("\n")
				}
				station = item.Station
				fmt.Fprintf(&b, "Station: %s\n", station)
			}
			serving := item.ServingSize
			if serving == "" {
				serving = "1 Serving"
			}
			fmt.Fprintf(&b, "* %s (%s) Calories: %.0f Protein: %sg Carbs: %sg Fat: %sg\n",
				item.Name, serving,
				*item.Calories,
				formatGrams(*item.ProteinGrams),
				formatGrams(*item.CarbGrams),
				formatGrams(*item.FatGrams))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

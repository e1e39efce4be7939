package planner

import (
	"fmt"
	"strings"

	"menuplanner/menu"
	"menuplanner/plan"
)

// buildPrompt assembles the single text prompt for the generative step. The
// FORMAT block mirrors exactly what the parser inverts: header, location
// line, fixed-label food lines, totals line.
func buildPrompt(goal plan.GoalSpec, c plan.Constraints) string {
	restrictions := "None"
	if len(goal.DietaryPrefs) > 0 {
		restrictions = strings.Join(goal.DietaryPrefs, ", ")
	}
	preferences := "None"
	if strings.TrimSpace(goal.Preferences) != "" {
		preferences = goal.Preferences
	}

	var b strings.Builder
	b.WriteString("You are a nutrition expert creating single-meal plans using dining hall food options.\n\n")
	b.WriteString("USER REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- Meal calorie target: %.0f (acceptable range %.0f-%.0f)\n",
		c.Targets.Calories, c.Targets.CalorieLower, c.Targets.CalorieUpper)
	fmt.Fprintf(&b, "- Protein target: %dg (%.0f%% of calories)\n", c.Targets.ProteinGrams, goal.Macros.Protein)
	fmt.Fprintf(&b, "- Carb target: %dg (%.0f%% of calories)\n", c.Targets.CarbGrams, goal.Macros.Carbs)
	fmt.Fprintf(&b, "- Fat target: %dg (%.0f%% of calories)\n", c.Targets.FatGrams, goal.Macros.Fats)
	fmt.Fprintf(&b, "- Dietary restrictions: %s\n", restrictions)
	fmt.Fprintf(&b, "- Other preferences: %s\n", preferences)

	if c.Flags.RequiredLocation != "" {
		fmt.Fprintf(&b, "- Every meal plan must use foods from %s only, and the dining court line must read exactly %q\n",
			c.Flags.RequiredLocation, c.Flags.RequiredLocation)
	}
	if c.Flags.RequireDessert {
		b.WriteString("- Every meal plan must include at least one dessert item from the list\n")
	}

	b.WriteString("\nAVAILABLE FOOD OPTIONS:\n")
	b.WriteString(c.MenuText)

	b.WriteString(`
TASK: Create exactly 3 different meal plans. Each meal plan must:
1. Strictly meet the user's calorie and macro targets.
2. Only use foods from the provided list, copying each food line's Calories/Protein/Carbs/Fat numbers verbatim.
3. Strictly adhere to all dietary restrictions and preferences.
4. Provide variety across the 3 plans.
5. Show total calories and macros for each plan.

FORMAT your response as:

**MEAL PLAN 1**
Dining Court Name
* Food item 1 (serving) Calories: 123 Protein: 10g Carbs: 20g Fat: 5g
* Food item 2 (serving) Calories: 123 Protein: 10g Carbs: 20g Fat: 5g
Totals: [calories] cal, [protein]g protein, [carbs]g carbs, [fat]g fat

**MEAL PLAN 2**
[same format]

**MEAL PLAN 3**
[same format]

Do not include any conversational notes or disclaimers.`)

	return b.String()
}

// buildRetryPrompt restates the failed constraints explicitly ahead of a
// second attempt. Exactly one retry is permitted.
func buildRetryPrompt(original string, c plan.Constraints, reasons []string) string {
	var b strings.Builder
	b.WriteString(original)
	b.WriteString("\n\nYOUR PREVIOUS RESPONSE FAILED VALIDATION:\n")
	for _, reason := range reasons {
		fmt.Fprintf(&b, "- %s\n", reason)
	}
	b.WriteString("\nREGENERATE all 3 meal plans and fix every problem above.\n")
	fmt.Fprintf(&b, "- Every plan's totals must land between %.0f and %.0f calories.\n",
		c.Targets.CalorieLower, c.Targets.CalorieUpper)
	b.WriteString("- Every food line must carry all four numeric values in the exact format 'Calories: N Protein: Ng Carbs: Ng Fat: Ng'. Use only numeric macros.\n")
	if c.Flags.RequiredLocation != "" {
		fmt.Fprintf(&b, "- Use only foods from %s and write %q as each plan's dining court line.\n",
			c.Flags.RequiredLocation, c.Flags.RequiredLocation)
	}
	if c.Flags.RequireDessert {
		b.WriteString("- Include at least one dessert item (cookie, brownie, ice cream, cake, pie, or similar).\n")
	}
	return b.String()
}

// templatePlanText is the opt-in deterministic fallback used when the
// generative collaborator is unreachable. Clearly labeled; never passed off
// as model output.
func templatePlanText(goal plan.GoalSpec, snapshot menu.MenuSnapshot) string {
	var lines []string
	lines = append(lines, "Your Personalized Meal Plan (template fallback, no AI available)")
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("Daily Calories Target: %.0f", goal.Calories))
	lines = append(lines, fmt.Sprintf("Macro Targets: Protein: %.0f%%, Carbs: %.0f%%, Fats: %.0f%%",
		goal.Macros.Protein, goal.Macros.Carbs, goal.Macros.Fats))
	if len(goal.DietaryPrefs) > 0 {
		lines = append(lines, "Dietary Preferences: "+strings.Join(goal.DietaryPrefs, ", "))
	} else {
		lines = append(lines, "Dietary Preferences: None")
	}
	if strings.TrimSpace(goal.Preferences) != "" {
		lines = append(lines, "", "Notes:", goal.Preferences)
	}

	lines = append(lines, "", "Menu-Based Suggestions:")
	count := 0
	for _, locName := range snapshot.Locations() {
		for _, item := range snapshot.CompleteItems(locName) {
			lines = append(lines, fmt.Sprintf("- %s (%s • %s) — %.0f kcal",
				item.Name, locName, item.Station, *item.Calories))
			count++
			if count >= 8 {
				break
			}
		}
		if count >= 8 {
			break
		}
	}
	if count == 0 {
		lines = append(lines, "- No menu items with complete nutrition were available")
	}
	return strings.Join(lines, "\n") + "\n"
}

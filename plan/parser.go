package plan

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	planHeaderRe = regexp.MustCompile(`\*\*MEAL PLAN (\d+)\*\*`)

	// itemMacrosRe matches the four macro values on a food line, labels in
	// fixed order. Values may carry thousands separators and decimals.
	itemMacrosRe = regexp.MustCompile(
		`(?i)Calories:\s*([\d,]+(?:\.\d+)?)\s*Protein:\s*([\d,]+(?:\.\d+)?)\s*g[\s,]*Carbs:\s*([\d,]+(?:\.\d+)?)\s*g[\s,]*Fat:\s*([\d,]+(?:\.\d+)?)\s*g`)
)

func parsePlanNumber(s string) float64 {
	v, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return v
}

func isBulletLine(line string) bool {
	return strings.HasPrefix(line, "*") || strings.HasPrefix(line, "-")
}

func isTotalsLine(line string) bool {
	return strings.Contains(strings.ToLower(line), "totals:")
}

// Parse segments raw generative output into plan blocks and recovers the
// structured records. Totals are recomputed from the fully-numeric food
// lines; whatever totals line the model wrote is discarded.
func Parse(raw string) PlanSet {
	set := PlanSet{RawText: raw}

	headers := planHeaderRe.FindAllStringSubmatchIndex(raw, -1)
	for i, header := range headers {
		blockEnd := len(raw)
		if i+1 < len(headers) {
			blockEnd = headers[i+1][0]
		}

		id, _ := strconv.Atoi(raw[header[2]:header[3]])
		block := raw[header[1]:blockEnd]

		mp := MealPlan{ID: id}
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if isTotalsLine(line) {
				continue
			}

			// The first non-bullet line that carries no macros is the
			// location label; everything else is a food line.
			if mp.Location == "" && !isBulletLine(line) && !itemMacrosRe.MatchString(line) {
				mp.Location = line
				continue
			}

			mp.FoodItemLines = append(mp.FoodItemLines, line)
			m := itemMacrosRe.FindStringSubmatch(line)
			if m == nil {
				mp.SkippedLines++
				continue
			}
			mp.Items = append(mp.Items, ItemMacros{
				Calories:     parsePlanNumber(m[1]),
				ProteinGrams: parsePlanNumber(m[2]),
				CarbGrams:    parsePlanNumber(m[3]),
				FatGrams:     parsePlanNumber(m[4]),
			})
		}

		mp.Totals = recomputeTotals(mp.Items)
		set.Plans = append(set.Plans, mp)
	}
	return set
}

func recomputeTotals(items []ItemMacros) Totals {
	var cal, protein, carbs, fat float64
	for _, it := range items {
		cal += it.Calories
		protein += it.ProteinGrams
		carbs += it.CarbGrams
		fat += it.FatGrams
	}
	return Totals{
		Calories:     int(math.Round(cal)),
		ProteinGrams: int(math.Round(protein)),
		CarbGrams:    int(math.Round(carbs)),
		FatGrams:     int(math.Round(fat)),
	}
}

// Rebuild renders the canonical plan text. Rebuilding the result of a Parse
// is a fixed point: a second parse/rebuild pass is byte-identical.
func Rebuild(set PlanSet) string {
	blocks := make([]string, 0, len(set.Plans))
	for _, mp := range set.Plans {
		var lines []string
		lines = append(lines, fmt.Sprintf("**MEAL PLAN %d**", mp.ID))
		if mp.Location != "" {
			lines = append(lines, mp.Location)
		}
		lines = append(lines, mp.FoodItemLines...)
		lines = append(lines, fmt.Sprintf("Totals: %d cal, %dg protein, %dg carbs, %dg fat",
			mp.Totals.Calories, mp.Totals.ProteinGrams, mp.Totals.CarbGrams, mp.Totals.FatGrams))
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// DisplayLines returns the plan's food lines with the inline macro
// annotations stripped, for human display. Presentation only; the canonical
// record keeps the full lines.
func (mp MealPlan) DisplayLines() []string {
	out := make([]string, 0, len(mp.FoodItemLines))
	for _, line := range mp.FoodItemLines {
		cleaned := itemMacrosRe.ReplaceAllString(line, "")
		out = append(out, strings.TrimRight(cleaned, " \t"))
	}
	return out
}

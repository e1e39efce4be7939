package menu

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Fact is one labeled nutrition value as reported by an upstream source,
// before canonicalization. Label casing and synonyms vary per source.
type Fact struct {
	Label string
	Value string
}

// lessThanValue substitutes for "< 1" style readings.
const lessThanValue = 0.5

var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// parseFactValue coerces an upstream value string into a number. Percent
// readings are %DV, not facts, and are dropped. Missing or unparseable values
// stay absent rather than becoming zero.
func parseFactValue(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "%") {
		return nil
	}
	if strings.Contains(s, "<") {
		v := lessThanValue
		return &v
	}
	m := numberRe.FindString(strings.ReplaceAll(s, ",", ""))
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &v
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v)
	return &r
}

// recordFromFacts maps a heterogeneous fact list into a canonical record.
// Label matching is case-insensitive and tolerant of synonyms; unrecognized
// labels are discarded. Integer-only facts (calories, sodium, cholesterol)
// are rounded, gram facts keep full precision.
func recordFromFacts(name string, facts []Fact) NutritionRecord {
	rec := NutritionRecord{Name: name}
	for _, fact := range facts {
		label := strings.ToLower(strings.TrimSpace(fact.Label))
		if label == "serving size" {
			rec.ServingSize = strings.TrimSpace(fact.Value)
			continue
		}

		v := parseFactValue(fact.Value)
		if v == nil {
			continue
		}
		switch label {
		case "calories":
			rec.Calories = roundPtr(v)
		case "protein":
			rec.ProteinGrams = v
		case "total carbohydrate", "carbohydrate":
			rec.CarbGrams = v
		case "total fat", "fat":
			rec.FatGrams = v
		case "dietary fiber":
			rec.FiberGrams = v
		case "saturated fat":
			rec.SaturatedFatGrams = v
		case "cholesterol":
			rec.CholesterolMg = roundPtr(v)
		case "sodium":
			rec.SodiumMg = roundPtr(v)
		}
	}
	return rec
}

package menu

import (
	"testing"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"
)

func TestParseFactValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *float64
	}{
		{name: "plain integer", input: "230", want: ptr(230)},
		{name: "decimal with unit", input: "3.5g", want: ptr(3.5)},
		{name: "thousands separator", input: "1,250", want: ptr(1250)},
		{name: "less-than reading", input: "< 1g", want: ptr(0.5)},
		{name: "less-than no space", input: "<1", want: ptr(0.5)},
		{name: "percent daily value dropped", input: "10%", want: nil},
		{name: "empty", input: "", want: nil},
		{name: "whitespace only", input: "   ", want: nil},
		{name: "no number at all", input: "N/A", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFactValue(tt.input)
			if tt.want == nil {
				should.Nil(t, got)
				return
			}
			must.NotNil(t, got)
			should.Equal(t, *tt.want, *got)
		})
	}
}

func TestRecordFromFacts(t *testing.T) {
	facts := []Fact{
		{Label: "Serving Size", Value: "1 Each"},
		{Label: "Calories", Value: "245.6"},
		{Label: "Protein", Value: "12g"},
		{Label: "Total Carbohydrate", Value: "30.5g"},
		{Label: "Total Fat", Value: "< 1g"},
		{Label: "Dietary Fiber", Value: "2g"},
		{Label: "Saturated Fat", Value: "0.5g"},
		{Label: "Cholesterol", Value: "54.2mg"},
		{Label: "Sodium", Value: "480.7mg"},
		{Label: "Total Fat %DV", Value: "3%"},
		{Label: "Added Sugar", Value: "10g"}, // unrecognized label
	}

	rec := recordFromFacts("Grilled Chicken", facts)

	should.Equal(t, "Grilled Chicken", rec.Name)
	should.Equal(t, "1 Each", rec.ServingSize)
	must.NotNil(t, rec.Calories)
	should.Equal(t, float64(246), *rec.Calories, "calories are rounded")
	must.NotNil(t, rec.ProteinGrams)
	should.Equal(t, float64(12), *rec.ProteinGrams)
	must.NotNil(t, rec.CarbGrams)
	should.Equal(t, 30.5, *rec.CarbGrams, "gram facts keep precision")
	must.NotNil(t, rec.FatGrams)
	should.Equal(t, 0.5, *rec.FatGrams)
	must.NotNil(t, rec.FiberGrams)
	should.Equal(t, float64(2), *rec.FiberGrams)
	must.NotNil(t, rec.SaturatedFatGrams)
	should.Equal(t, 0.5, *rec.SaturatedFatGrams)
	must.NotNil(t, rec.CholesterolMg)
	should.Equal(t, float64(54), *rec.CholesterolMg, "cholesterol is rounded")
	must.NotNil(t, rec.SodiumMg)
	should.Equal(t, float64(481), *rec.SodiumMg, "sodium is rounded")
	should.True(t, rec.Complete())
}

func TestRecordFromFactsLabelSynonyms(t *testing.T) {
	rec := recordFromFacts("Oatmeal", []Fact{
		{Label: "calories", Value: "150"},
		{Label: "protein", Value: "5g"},
		{Label: "Carbohydrate", Value: "27g"},
		{Label: "Fat", Value: "2.5g"},
	})
	should.True(t, rec.Complete())
}

func TestRecordFromFactsMissingMacroStaysAbsent(t *testing.T) {
	rec := recordFromFacts("Mystery Dish", []Fact{
		{Label: "Calories", Value: "300"},
		{Label: "Protein", Value: "10%"},
	})
	should.NotNil(t, rec.Calories)
	should.Nil(t, rec.ProteinGrams, "percent reading must not become a gram value")
	should.False(t, rec.Complete())
}

func ptr(v float64) *float64 { return &v }

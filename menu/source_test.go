package menu

import (
	"context"
	"errors"
	"testing"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"
)

type mockSource struct {
	name   string
	rec    NutritionRecord
	err    error
	called int
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Nutrition(ctx context.Context, item ListedItem) (NutritionRecord, error) {
	m.called++
	return m.rec, m.err
}

func completeRecord(name string) NutritionRecord {
	return NutritionRecord{
		Name:         name,
		Calories:     ptr(400),
		ProteinGrams: ptr(20),
		CarbGrams:    ptr(45),
		FatGrams:     ptr(15),
	}
}

func TestFallbackChainFirstSourceWins(t *testing.T) {
	first := &mockSource{name: "graphql", rec: completeRecord("Tacos")}
	second := &mockSource{name: "rest", rec: completeRecord("Tacos")}
	chain := FallbackChain{first, second}

	rec, err := chain.Nutrition(context.Background(), ListedItem{Name: "Tacos"})
	must.NoError(t, err)
	should.Equal(t, "graphql", rec.Source)
	should.Equal(t, 1, first.called)
	should.Equal(t, 0, second.called, "later sources must not be consulted after a complete record")
}

func TestFallbackChainFallsThroughOnError(t *testing.T) {
	first := &mockSource{name: "graphql", err: errors.New("upstream 500")}
	second := &mockSource{name: "rest", rec: completeRecord("Tacos")}
	chain := FallbackChain{first, second}

	rec, err := chain.Nutrition(context.Background(), ListedItem{Name: "Tacos"})
	must.NoError(t, err)
	should.Equal(t, "rest", rec.Source)
}

func TestFallbackChainFallsThroughOnIncomplete(t *testing.T) {
	partial := NutritionRecord{Name: "Tacos", Calories: ptr(400)}
	first := &mockSource{name: "graphql", rec: partial}
	second := &mockSource{name: "rest", rec: completeRecord("Tacos")}
	chain := FallbackChain{first, second}

	rec, err := chain.Nutrition(context.Background(), ListedItem{Name: "Tacos"})
	must.NoError(t, err)
	should.Equal(t, "rest", rec.Source)
	should.True(t, rec.Complete())
}

func TestFallbackChainKeepsPartialAsBestEffort(t *testing.T) {
	partial := NutritionRecord{Name: "Tacos", Calories: ptr(400)}
	first := &mockSource{name: "graphql", rec: partial}
	second := &mockSource{name: "rest", err: errors.New("timeout")}
	chain := FallbackChain{first, second}

	rec, err := chain.Nutrition(context.Background(), ListedItem{Name: "Tacos"})
	must.NoError(t, err)
	should.Equal(t, "graphql", rec.Source)
	should.False(t, rec.Complete())
}

func TestFallbackChainAllSourcesFail(t *testing.T) {
	chain := FallbackChain{
		&mockSource{name: "graphql", err: errors.New("upstream 500")},
		&mockSource{name: "rest", err: errors.New("timeout")},
	}

	_, err := chain.Nutrition(context.Background(), ListedItem{Name: "Tacos"})
	must.Error(t, err)
	should.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestFallbackChainEmpty(t *testing.T) {
	_, err := FallbackChain{}.Nutrition(context.Background(), ListedItem{Name: "Tacos"})
	should.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestFallbackChainCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	first := &mockSource{name: "graphql", rec: completeRecord("Tacos")}
	_, err := FallbackChain{first}.Nutrition(ctx, ListedItem{Name: "Tacos"})
	should.ErrorIs(t, err, context.Canceled)
	should.Equal(t, 0, first.called)
}

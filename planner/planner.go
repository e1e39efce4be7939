// Package planner drives one meal-plan request end to end: cache read-through
// menu aggregation, constraint building, the generative call, parsing,
// validation, and the single bounded retry.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"

	"menuplanner"
	"menuplanner/cache"
	"menuplanner/menu"
	"menuplanner/plan"
)

// ErrGenerativeUnavailable is fatal for a request: the generative
// collaborator is unreachable or returned no usable text at all. Validation
// failures are not this; they drive the bounded retry instead.
var ErrGenerativeUnavailable = errors.New("generative collaborator unavailable")

// Request is the inbound shape supplied by the (excluded) HTTP layer.
type Request struct {
	Goal     plan.GoalSpec `json:"goal"`
	MealTime string        `json:"mealTime"`
	Date     string        `json:"date,omitempty"`
}

// PlannedMeal is one plan variant in the outbound result.
type PlannedMeal struct {
	ID            int      `json:"id"`
	Location      string   `json:"location"`
	FoodItemLines []string `json:"foodItemLines"`
	Calories      int      `json:"calories"`
	ProteinGrams  int      `json:"proteinGrams"`
	CarbGrams     int      `json:"carbGrams"`
	FatGrams      int      `json:"fatGrams"`
}

// Result is the outbound final result. The caller always receives either a
// normalized plan (possibly still violating constraints after the retry,
// with OK false and Reasons populated) or an error; never a blank response.
type Result struct {
	PlanText string        `json:"planText"`
	Plans    []PlannedMeal `json:"plans"`
	OK       bool          `json:"ok"`
	Reasons  []string      `json:"reasons,omitempty"`
}

// Planner coordinates the pipeline. All collaborators are injected; the
// planner holds no ambient global state.
type Planner struct {
	aggregator       *menu.Aggregator
	store            cache.SnapshotStore
	generator        menuplanner.TextGenerator
	logger           menuplanner.GenerationLogger
	tracerProvider   *trace.TracerProvider
	templateFallback bool
}

// New initializes a new planner.
func New(agg *menu.Aggregator, store cache.SnapshotStore, gen menuplanner.TextGenerator, log menuplanner.GenerationLogger, tracerProvider *trace.TracerProvider, templateFallback bool) *Planner {
	return &Planner{
		aggregator:       agg,
		store:            store,
		generator:        gen,
		logger:           log,
		tracerProvider:   tracerProvider,
		templateFallback: templateFallback,
	}
}

// GeneratePlan executes one request through the state machine
// Built → Generated → Parsed → Validated, with a single retry on validation
// failure. The retry's normalized output is final regardless of its own
// validation outcome.
func (p *Planner) GeneratePlan(ctx context.Context, req Request) (*Result, error) {
	tracer := otel.Tracer(menuplanner.TracerNamePlanner)
	if p.tracerProvider != nil {
		tracer = p.tracerProvider.Tracer(menuplanner.TracerNamePlanner)
	}
	ctx, span := tracer.Start(ctx, "Planner.GeneratePlan")
	defer span.End()

	mealTime := strings.TrimSpace(req.MealTime)
	if mealTime == "" {
		mealTime = "lunch"
	}
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	slog.Info("PLANNER: Starting run", "meal_time", mealTime, "date", date, "target_calories", req.Goal.Calories)

	snapshot, err := p.loadSnapshot(ctx, mealTime, date)
	if err != nil {
		return nil, err
	}

	constraints := plan.BuildConstraints(req.Goal, snapshot)
	slog.Info("PLANNER: Constraints built",
		"state", "Built",
		"calorie_window", fmt.Sprintf("%.0f-%.0f", constraints.Targets.CalorieLower, constraints.Targets.CalorieUpper),
		"required_location", constraints.Flags.RequiredLocation,
		"require_dessert", constraints.Flags.RequireDessert,
	)

	prompt := buildPrompt(req.Goal, constraints)

	raw, err := p.generate(ctx, prompt)
	if err != nil {
		if p.templateFallback {
			slog.Warn("PLANNER: Generator unavailable, using labeled template fallback", "error", err)
			return &Result{
				PlanText: templatePlanText(req.Goal, snapshot),
				OK:       false,
				Reasons:  []string{"generative collaborator unavailable; template fallback used"},
			}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrGenerativeUnavailable, err)
	}

	set := plan.Parse(raw)
	vr := plan.Validate(set, constraints.Targets, constraints.Flags)
	p.logAttempt(menuplanner.AttemptLog{
		Attempt: 1, Timestamp: time.Now(), Prompt: prompt, RawOutput: raw,
		Valid: vr.OK, Reasons: vr.Reasons,
	})
	slog.Info("PLANNER: First attempt validated", "state", "Validated", "ok", vr.OK, "reasons", vr.Reasons)

	if !vr.OK {
		retryPrompt := buildRetryPrompt(prompt, constraints, vr.Reasons)
		retryRaw, retryErr := p.generate(ctx, retryPrompt)
		if retryErr != nil {
			// The retry transport failed; the first attempt's normalized
			// output is the best effort we have.
			slog.Warn("PLANNER: Retry invocation failed, returning first attempt", "error", retryErr)
			p.logAttempt(menuplanner.AttemptLog{
				Attempt: 2, Timestamp: time.Now(), Prompt: retryPrompt, Error: retryErr.Error(),
			})
			return buildResult(set, vr), nil
		}

		set = plan.Parse(retryRaw)
		vr = plan.Validate(set, constraints.Targets, constraints.Flags)
		p.logAttempt(menuplanner.AttemptLog{
			Attempt: 2, Timestamp: time.Now(), Prompt: retryPrompt, RawOutput: retryRaw,
			Valid: vr.OK, Reasons: vr.Reasons,
		})
		slog.Info("PLANNER: Retry validated", "state", "Validated", "ok", vr.OK, "reasons", vr.Reasons)
		// No third attempt: the retry's output is final, pass or fail.
	}

	slog.Info("PLANNER: Run complete", "state", "Done", "ok", vr.OK, "plans", len(set.Plans))
	return buildResult(set, vr), nil
}

// loadSnapshot reads the menu through the cache. A hit skips aggregation
// entirely; a miss aggregates and writes through. Cache write failure is
// non-fatal.
func (p *Planner) loadSnapshot(ctx context.Context, mealTime, date string) (menu.MenuSnapshot, error) {
	key := cache.NewKey(mealTime, date)

	if p.store != nil {
		snapshot, err := p.store.Get(ctx, key)
		if err == nil {
			slog.Info("PLANNER: Cache hit", "key", key.String(), "items", snapshot.TotalItems())
			return snapshot, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("PLANNER: Cache read failed, treating as miss", "key", key.String(), "error", err)
		}
	}

	snapshot, err := p.aggregator.Aggregate(ctx, mealTime, date, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate menu: %w", err)
	}

	if p.store != nil {
		if err := p.store.Put(ctx, key, snapshot); err != nil {
			slog.Warn("PLANNER: Cache write failed, continuing", "key", key.String(), "error", err)
		}
	}
	return snapshot, nil
}

// generate invokes the black-box generator and refuses empty output.
func (p *Planner) generate(ctx context.Context, prompt string) (string, error) {
	text, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("generator returned no usable text")
	}
	return text, nil
}

func buildResult(set plan.PlanSet, vr plan.ValidationResult) *Result {
	res := &Result{
		PlanText: plan.Rebuild(set),
		OK:       vr.OK,
		Reasons:  vr.Reasons,
	}
	for _, mp := range set.Plans {
		res.Plans = append(res.Plans, PlannedMeal{
			ID:            mp.ID,
			Location:      mp.Location,
			FoodItemLines: mp.FoodItemLines,
			Calories:      mp.Totals.Calories,
			ProteinGrams:  mp.Totals.ProteinGrams,
			CarbGrams:     mp.Totals.CarbGrams,
			FatGrams:      mp.Totals.FatGrams,
		})
	}
	return res
}

// logAttempt logs an attempt using the configured logger, handling errors gracefully
func (p *Planner) logAttempt(attempt menuplanner.AttemptLog) {
	if p.logger != nil {
		if err := p.logger.LogAttempt(attempt); err != nil {
			slog.Error("Failed to log generation attempt", "error", err, "attempt", attempt.Attempt)
		}
	}
}

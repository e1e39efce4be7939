package planner

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedPlanner wraps a Planner with observability metrics.
type InstrumentedPlanner struct {
	planner *Planner
	tracer  trace.Tracer
	meter   metric.Meter
}

// NewInstrumentedPlanner initializes a new instrumented planner.
func NewInstrumentedPlanner(p *Planner, tracer trace.Tracer, meter metric.Meter) *InstrumentedPlanner {
	return &InstrumentedPlanner{
		planner: p,
		tracer:  tracer,
		meter:   meter,
	}
}

// GeneratePlan executes the request with full instrumentation.
func (ip *InstrumentedPlanner) GeneratePlan(ctx context.Context, req Request) (*Result, error) {
	ctx, span := ip.tracer.Start(ctx, "InstrumentedPlanner.GeneratePlan")
	defer span.End()

	runsCounter, _ := ip.meter.Int64Counter("planner_runs_total",
		metric.WithDescription("Total number of plan requests started"))
	runsCompletedCounter, _ := ip.meter.Int64Counter("planner_runs_completed_total",
		metric.WithDescription("Total number of plan requests completed successfully"))
	runsFailedCounter, _ := ip.meter.Int64Counter("planner_runs_failed_total",
		metric.WithDescription("Total number of plan requests that failed"))
	invalidResultsCounter, _ := ip.meter.Int64Counter("planner_invalid_results_total",
		metric.WithDescription("Total number of plan requests whose final output still failed validation"))
	plansReturnedGauge, _ := ip.meter.Int64Gauge("plans_returned_count",
		metric.WithDescription("Number of plan variants in the latest result"))
	runDurationHist, _ := ip.meter.Float64Histogram("planner_run_duration_seconds",
		metric.WithDescription("Total duration of a plan request in seconds"))

	runsCounter.Add(ctx, 1)
	span.SetAttributes(
		attribute.String("meal_time", req.MealTime),
		attribute.String("date", req.Date),
		attribute.Float64("target_calories", req.Goal.Calories),
	)

	start := time.Now()
	result, err := ip.planner.GeneratePlan(ctx, req)
	runDurationHist.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		runsFailedCounter.Add(ctx, 1)
		span.SetStatus(codes.Error, "Plan request failed")
		span.RecordError(err)
		return nil, err
	}

	runsCompletedCounter.Add(ctx, 1)
	plansReturnedGauge.Record(ctx, int64(len(result.Plans)))
	if !result.OK {
		invalidResultsCounter.Add(ctx, 1)
		span.SetAttributes(attribute.StringSlice("validation_reasons", result.Reasons))
	}
	span.SetAttributes(attribute.Bool("result_ok", result.OK))

	return result, nil
}

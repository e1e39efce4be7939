package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"menuplanner"
	"menuplanner/cache"
	"menuplanner/gemini"
	"menuplanner/menu"
	"menuplanner/notify"
	"menuplanner/plan"
	"menuplanner/planner"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		slog.Debug("SETUP: No .env file found, using process environment")
	}

	var modelConfig menuplanner.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var plannerConfig menuplanner.PlannerConfig
	if err := envdecode.Decode(&plannerConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var sourceConfig menuplanner.SourceConfig
	if err := envdecode.Decode(&sourceConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	httpClient := &http.Client{Timeout: sourceConfig.FetchTimeout}

	gql := menu.NewGraphQLSource(menu.GraphQLSourceOpts{
		Endpoint:    sourceConfig.GraphQLEndpoint,
		MenuBaseURL: sourceConfig.MenuBaseURL,
		HTTPClient:  httpClient,
	})
	chain := menu.FallbackChain{
		gql,
		menu.NewRestSource(sourceConfig.RestEndpoint, httpClient),
	}
	if sourceConfig.EnableHTMLSource {
		chain = append(chain, menu.NewRenderedHTMLSource(sourceConfig.MenuBaseURL, httpClient))
	}
	aggregator := menu.NewAggregator(gql, chain, sourceConfig.FetchConcurrency)

	store := newSnapshotStore(plannerConfig)

	llm, err := gemini.NewClient(gemini.ClientOpts{
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		ModelID:     modelConfig.ModelID,
		MaxTokens:   modelConfig.MaxTokens,
		Temperature: modelConfig.Temperature,
		TopP:        modelConfig.TopP,
		HTTPClient:  httpClient,
	})
	if err != nil {
		slog.Error("SETUP: Failed to create LLM client", "error", err)
		return
	}

	logModel := modelConfig.ModelID
	if logModel == "" {
		logModel = "gemini-1.5-flash"
	}
	logger, cleanup, err := newGenerationLogger(logModel)
	if err != nil {
		slog.Error("SETUP: Failed to create generation logger", "error", err)
		return
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("SETUP: Failed to flush generation log", "error", err)
		}
	}()

	tracerProvider, meterProvider, otelShutdown, err := menuplanner.InitOtel(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
		return
	}
	defer func() {
		if err := otelShutdown(ctx); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	tracer := tracerProvider.Tracer(menuplanner.TracerNamePlanner)
	meter := meterProvider.Meter(menuplanner.TracerNamePlanner)

	req := planner.Request{
		Goal: plan.GoalSpec{
			Calories: argFloatOr(2, 2400),
			Macros: plan.Macros{
				Protein: 30,
				Carbs:   45,
				Fats:    25,
			},
			Preferences: argOr(3, ""),
		},
		MealTime: argOr(1, "lunch"),
		Date:     time.Now().Format("2006-01-02"),
	}

	ctx, span := tracer.Start(ctx, menuplanner.TracerNamePlanner, trace.WithAttributes(
		attribute.String("model.id", modelConfig.ModelID),
		attribute.Int("model.max_tokens", int(modelConfig.MaxTokens)),
		attribute.Float64("model.temperature", float64(modelConfig.Temperature)),
		attribute.Float64("model.top_p", float64(modelConfig.TopP)),
	))
	defer span.End()

	p := planner.New(aggregator, store, llm, logger, tracerProvider, plannerConfig.TemplateFallback)
	result, err := planner.NewInstrumentedPlanner(p, tracer, meter).GeneratePlan(ctx, req)
	if err != nil {
		slog.Error("FAILURE: Error handling plan request", "error", err)
		return
	}

	fmt.Println(result.PlanText)
	if !result.OK {
		slog.Warn("RESULT: Final plan still violates constraints", "reasons", result.Reasons)
	}

	if plannerConfig.PlanWebhookURL != "" {
		webhook := notify.NewWebhookClient(plannerConfig.PlanWebhookURL, http.DefaultClient)
		if err := webhook.PostPlan(ctx, result.PlanText); err != nil {
			slog.Error("RESULT: Failed to post plan to webhook", "error", err)
		}
	}
}

func argOr(i int, def string) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return def
}

func argFloatOr(i int, def float64) float64 {
	if len(os.Args) > i {
		if f, err := strconv.ParseFloat(os.Args[i], 64); err == nil {
			return f
		}
	}
	return def
}

func newSnapshotStore(cfg menuplanner.PlannerConfig) cache.SnapshotStore {
	if cfg.CacheRedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.CacheRedisAddr})
		ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
		slog.Info("SETUP: Using Redis snapshot store", "addr", cfg.CacheRedisAddr, "ttl", ttl)
		return cache.NewRedisStore(client, ttl)
	}
	slog.Info("SETUP: Using file snapshot store", "dir", cfg.CacheDir)
	return cache.NewFileStore(cfg.CacheDir)
}

func newGenerationLogger(modelID string) (menuplanner.GenerationLogger, func() error, error) {
	logFilePath := menuplanner.NewGenerationLogFilePath(modelID)
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := menuplanner.NewFileGenerationLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"

	"menuplanner"
	"menuplanner/bedrock"
	"menuplanner/cache"
	"menuplanner/menu"
	"menuplanner/planner"
)

type Results struct {
	Output *planner.Result `json:"output"`
}

func main() {
	fn := func(ctx context.Context, req planner.Request) (Results, error) {
		var modelConfig menuplanner.ModelConfig
		if err := envdecode.Decode(&modelConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		var plannerConfig menuplanner.PlannerConfig
		if err := envdecode.Decode(&plannerConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		var sourceConfig menuplanner.SourceConfig
		if err := envdecode.Decode(&sourceConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		// S3 config from env
		s3Bucket := os.Getenv("MENU_CACHE_S3_BUCKET")
		s3Prefix := os.Getenv("MENU_CACHE_S3_PREFIX")
		if s3Bucket == "" {
			return Results{}, fmt.Errorf("missing S3 config: MENU_CACHE_S3_BUCKET must be set")
		}

		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return Results{}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		s3Client := s3.NewFromConfig(awsCfg)
		store := cache.NewS3Store(s3Client, s3Bucket, s3Prefix)
		slog.Info("SETUP: S3 snapshot store initialized", "bucket", s3Bucket, "prefix", s3Prefix)

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

		brc, err := newBedrockRuntimeClient(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to create Bedrock client", "error", err)
			return Results{}, err
		}

		llm := bedrock.NewLLMClient(brc, bedrock.LLMOptions{
			ModelID:     modelConfig.ModelID,
			MaxTokens:   modelConfig.MaxTokens,
			Temperature: modelConfig.Temperature,
			TopP:        modelConfig.TopP,
		})

		generationLogger := menuplanner.NewStdoutGenerationLogger()

		tracerProvider, meterProvider, otelShutdown, err := menuplanner.InitOtel(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return Results{}, err
		}
		defer func() {
			if err := otelShutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		tracer := tracerProvider.Tracer(menuplanner.TracerNamePlanner)
		meter := meterProvider.Meter(menuplanner.TracerNamePlanner)

		p := planner.New(aggregator, store, llm, generationLogger, tracerProvider, plannerConfig.TemplateFallback)
		output, err := planner.NewInstrumentedPlanner(p, tracer, meter).GeneratePlan(ctx, req)
		if err != nil {
			slog.Error("RESULT: Error handling plan request", "error", err)
			return Results{}, err
		}

		return Results{Output: output}, nil
	}

	lambda.Start(fn)
}

func newBedrockRuntimeClient(ctx context.Context) (*bedrockruntime.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
	if err != nil {
		return nil, err
	}
	return bedrockruntime.NewFromConfig(awsCfg), nil
}

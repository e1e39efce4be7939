package menuplanner

import "time"

type ModelConfig struct {
	// ModelID is backend-specific; each LLM client applies its own default
	// when unset.
	ModelID     string  `env:"MODEL_ID"`
	MaxTokens   int32   `env:"MAX_TOKENS,default=2048"`
	Temperature float32 `env:"TEMPERATURE,default=0.7"`
	TopP        float32 `env:"TOP_P,default=0.9"`
}

type PlannerConfig struct {
	CacheDir         string `env:"MENU_CACHE_DIR,default=artifacts/menus"`
	CacheRedisAddr   string `env:"MENU_CACHE_REDIS_ADDR,default="`
	CacheTTLMinutes  int    `env:"MENU_CACHE_TTL_MINUTES,default=0"`
	TemplateFallback bool   `env:"TEMPLATE_FALLBACK,default=false"`
	PlanWebhookURL   string `env:"PLAN_WEBHOOK_URL,default="`
}

type SourceConfig struct {
	GraphQLEndpoint  string        `env:"MENU_GRAPHQL_ENDPOINT,default=https://api.hfs.purdue.edu/menus/v3/GraphQL"`
	RestEndpoint     string        `env:"MENU_REST_ENDPOINT,default=https://api.hfs.purdue.edu/menus/v2"`
	MenuBaseURL      string        `env:"MENU_BASE_URL,default=https://dining.purdue.edu/menus"`
	FetchConcurrency int           `env:"FETCH_CONCURRENCY,default=6"`
	FetchTimeout     time.Duration `env:"FETCH_TIMEOUT,default=30s"`
	EnableHTMLSource bool          `env:"ENABLE_HTML_SOURCE,default=false"`
}

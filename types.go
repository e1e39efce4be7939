package menuplanner

import (
	"context"
	"net/http"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TextGenerator is the black-box generative collaborator. It takes a fully
// assembled prompt and returns whatever text the model produced; all structure
// is recovered downstream by the plan parser.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Notifier interface {
	PostPlan(ctx context.Context, planText string) error
}

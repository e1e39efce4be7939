// Package gemini implements the TextGenerator interface against the Google
// Generative Language REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"menuplanner"
)

const defaultBaseEndpoint = "https://generativelanguage.googleapis.com"

type generationConfig struct {
	Temperature     float32 `json:"temperature,omitempty"`
	TopP            float32 `json:"topP,omitempty"`
	MaxOutputTokens int32   `json:"maxOutputTokens,omitempty"`
}

type Client struct {
	baseEndpoint string
	apiKey       string
	model        string
	httpClient   menuplanner.HTTPClient
	genConfig    generationConfig
}

type ClientOpts struct {
	BaseEndpoint string
	APIKey       string
	ModelID      string
	MaxTokens    int32
	Temperature  float32
	TopP         float32
	HTTPClient   menuplanner.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("missing API key")
	}
	if opts.ModelID == "" {
		opts.ModelID = "gemini-1.5-flash"
	}
	if opts.BaseEndpoint == "" {
		opts.BaseEndpoint = defaultBaseEndpoint
	}
	return &Client{
		baseEndpoint: strings.TrimSuffix(opts.BaseEndpoint, "/"),
		apiKey:       opts.APIKey,
		model:        opts.ModelID,
		httpClient:   opts.HTTPClient,
		genConfig: generationConfig{
			Temperature:     opts.Temperature,
			TopP:            opts.TopP,
			MaxOutputTokens: opts.MaxTokens,
		},
	}, nil
}

type wirePart struct {
	Text string `json:"text"`
}

type wireContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []wirePart `json:"parts"`
}

type wireRequest struct {
	Contents         []wireContent    `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig,omitempty"`
}

type wireResponse struct {
	Candidates []struct {
		Content      wireContent `json:"content"`
		FinishReason string      `json:"finishReason"`
	} `json:"candidates"`
}

// Generate sends the prompt and returns the model's text verbatim. The
// planner treats the content as untrusted; no structure is assumed here.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "model", c.model, "prompt_len", len(prompt))

	reqBody := wireRequest{
		Contents:         []wireContent{{Role: "user", Parts: []wirePart{{Text: prompt}}}},
		GenerationConfig: c.genConfig,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseEndpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM_CLIENT: %s: %s", resp.Status, string(body))
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return "", fmt.Errorf("LLM_CLIENT: decode response: %w", err)
	}
	if len(wr.Candidates) == 0 {
		return "", fmt.Errorf("LLM_CLIENT: no candidates in response")
	}

	var b strings.Builder
	for _, part := range wr.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	text := strings.TrimSpace(b.String())

	slog.Info("LLM_CLIENT: Response received",
		"finish_reason", wr.Candidates[0].FinishReason,
		"text_len", len(text),
	)
	return text, nil
}

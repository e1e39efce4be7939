package gemini

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

type mockHTTPClient struct {
	response *http.Response
	err      error
	lastReq  *http.Request
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.lastReq = req
	return m.response, m.err
}

func createMockResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		opts    ClientOpts
		wantErr bool
	}{
		{
			name: "valid client creation",
			opts: ClientOpts{
				APIKey:     "test-key",
				ModelID:    "gemini-1.5-flash",
				HTTPClient: &mockHTTPClient{},
			},
			wantErr: false,
		},
		{
			name: "defaults applied",
			opts: ClientOpts{
				APIKey:     "test-key",
				HTTPClient: &mockHTTPClient{},
			},
			wantErr: false,
		},
		{
			name: "missing API key",
			opts: ClientOpts{
				ModelID:    "gemini-1.5-flash",
				HTTPClient: &mockHTTPClient{},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewClient(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if got.model == "" {
				t.Errorf("NewClient() model not defaulted")
			}
			if got.baseEndpoint != defaultBaseEndpoint {
				t.Errorf("NewClient() endpoint = %v, want %v", got.baseEndpoint, defaultBaseEndpoint)
			}
		})
	}
}

func TestClient_Generate(t *testing.T) {
	tests := []struct {
		name         string
		mockResponse *http.Response
		mockError    error
		want         string
		wantErr      bool
		errContains  string
	}{
		{
			name: "successful response",
			mockResponse: createMockResponse(200, `{
				"candidates": [
					{
						"content": {
							"role": "model",
							"parts": [
								{"text": "**MEAL PLAN 1**\n"},
								{"text": "Windsor\n* Grilled Chicken (1 Each) Calories: 250 Protein: 30g Carbs: 2g Fat: 12g"}
							]
						},
						"finishReason": "STOP"
					}
				]
			}`),
			want:    "**MEAL PLAN 1**\nWindsor\n* Grilled Chicken (1 Each) Calories: 250 Protein: 30g Carbs: 2g Fat: 12g",
			wantErr: false,
		},
		{
			name:         "HTTP error",
			mockResponse: createMockResponse(429, `{"error": {"message": "quota exceeded"}}`),
			wantErr:      true,
			errContains:  "LLM_CLIENT:",
		},
		{
			name:         "no candidates",
			mockResponse: createMockResponse(200, `{"candidates": []}`),
			wantErr:      true,
			errContains:  "no candidates",
		},
		{
			name:         "malformed JSON",
			mockResponse: createMockResponse(200, `{"candidates": [`),
			wantErr:      true,
			errContains:  "decode response",
		},
		{
			name:      "network error",
			mockError: io.EOF,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockHTTPClient{response: tt.mockResponse, err: tt.mockError}
			client, err := NewClient(ClientOpts{APIKey: "test-key", HTTPClient: mock})
			if err != nil {
				t.Fatalf("NewClient() unexpected error = %v", err)
			}

			got, err := client.Generate(context.Background(), "build me a meal plan")

			if tt.wantErr {
				if err == nil {
					t.Errorf("Generate() expected error but got none")
					return
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Generate() error = %v, expected to contain %v", err, tt.errContains)
				}
				return
			}

			if err != nil {
				t.Errorf("Generate() unexpected error = %v", err)
				return
			}
			if got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClient_GenerateRequestShape(t *testing.T) {
	mock := &mockHTTPClient{response: createMockResponse(200, `{"candidates": [{"content": {"parts": [{"text": "ok"}]}}]}`)}
	client, err := NewClient(ClientOpts{APIKey: "test-key", ModelID: "gemini-1.5-flash", HTTPClient: mock})
	if err != nil {
		t.Fatalf("NewClient() unexpected error = %v", err)
	}

	if _, err := client.Generate(context.Background(), "hello"); err != nil {
		t.Fatalf("Generate() unexpected error = %v", err)
	}

	req := mock.lastReq
	if req == nil {
		t.Fatal("no request captured")
	}
	if req.Method != http.MethodPost {
		t.Errorf("method = %v, want POST", req.Method)
	}
	if !strings.Contains(req.URL.Path, "/v1beta/models/gemini-1.5-flash:generateContent") {
		t.Errorf("path = %v, want generateContent for the configured model", req.URL.Path)
	}
	if req.URL.Query().Get("key") != "test-key" {
		t.Errorf("key query param missing")
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %v, want application/json", ct)
	}
}

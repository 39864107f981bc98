package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fridgechef/backend/config"
)

// geminiRequest is the generateContent request envelope.
type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *geminiError `json:"error"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// geminiTransport is the production TextGenerator. One resty client is
// shared across calls; it holds no per-request state.
type geminiTransport struct {
	client *resty.Client
	model  string
}

func newGeminiTransport(cfg *config.Config) *geminiTransport {
	timeout := cfg.Gemini.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.Gemini.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", cfg.Gemini.APIKey)

	return &geminiTransport{
		client: client,
		model:  cfg.Gemini.Model,
	}
}

// GenerateText performs a single generateContent call and joins the text
// parts of the first candidate. Errors are classified by HTTP status here,
// at the boundary, so the retry loop can switch on structured kinds.
func (t *geminiTransport) GenerateText(ctx context.Context, prompt string) (string, error) {
	req := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     0.6,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 1024,
		},
	}

	var result geminiResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", t.model))
	if err != nil {
		return "", fmt.Errorf("failed to call generation API: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", classifyStatus(resp.StatusCode(), result.Error)
	}

	if len(result.Candidates) == 0 {
		return "", &EmptyResponseError{}
	}

	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}

func classifyStatus(status int, apiErr *geminiError) error {
	message := http.StatusText(status)
	apiStatus := ""
	if apiErr != nil {
		if apiErr.Message != "" {
			message = apiErr.Message
		}
		apiStatus = apiErr.Status
	}

	if status == http.StatusTooManyRequests || apiStatus == "RESOURCE_EXHAUSTED" {
		return &TransientAPIError{StatusCode: status, Message: message}
	}
	return &NonRetryableAPIError{StatusCode: status, Message: message}
}

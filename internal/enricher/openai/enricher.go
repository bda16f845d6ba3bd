// Package openai enriches reports with the OpenAI Chat Completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"medscan/internal/domain"
	"medscan/internal/enricher"
	"medscan/internal/port"
	"medscan/internal/resilience"
)

const (
	providerName = "openai"
	apiURL       = "https://api.openai.com/v1/chat/completions"
	defaultModel = "gpt-4o-mini"
)

// Enricher implements port.ReportEnricher using OpenAI.
type Enricher struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	executor *resilience.Executor
}

// New creates an OpenAI enricher. cfg.Endpoint overrides the API URL; executor may be nil.
func New(cfg enricher.ProviderConfig, executor *resilience.Executor) *Enricher {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = apiURL
	}
	return &Enricher{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		executor: executor,
	}
}

func (e *Enricher) Name() string { return providerName }

func (e *Enricher) Enrich(ctx context.Context, input port.EnrichInput) (*domain.AIAnalysis, error) {
	prompt := enricher.BuildAnalysisPrompt(input.Text, input.ReportType)

	var text string
	call := func(ctx context.Context) error {
		var err error
		text, err = e.complete(ctx, prompt)
		return err
	}

	var err error
	if e.executor != nil {
		err = e.executor.Execute(ctx, "llm."+providerName, call, resilience.TransientClassifier)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, err
	}

	return enricher.DecodeAnalysis(text, providerName+"/"+e.model)
}

// apiResponse models the Chat Completions response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (e *Enricher) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":                 e.model,
		"max_completion_tokens": 4096,
		"messages": []map[string]interface{}{
			{"role": "system", "content": "You are a careful medical report analyst. Reply with JSON only."},
			{"role": "user", "content": prompt},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", enricher.StatusError(providerName, resp, respBody)
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty response from API: no choices")
	}
	if parsed.Choices[0].FinishReason == "length" {
		return "", fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}
	return parsed.Choices[0].Message.Content, nil
}

// Package gemini enriches reports with Google's Gemini generateContent API.
package gemini

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
	providerName = "gemini"
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel = "gemini-2.0-flash-exp"
)

// Enricher implements port.ReportEnricher using Gemini.
type Enricher struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	executor *resilience.Executor
}

// New creates a Gemini enricher. cfg.Endpoint overrides the API URL; executor may be nil.
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
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
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
		text, err = e.generate(ctx, prompt)
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

// generateResponse models the Gemini API response.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func (e *Enricher) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"temperature":      0.2,
			"maxOutputTokens":  4096,
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
	req.Header.Set("x-goog-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", enricher.StatusError(providerName, resp, respBody)
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("empty response from API: no candidates")
	}
	if len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from API: no parts")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

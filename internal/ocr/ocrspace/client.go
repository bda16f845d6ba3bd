// Package ocrspace calls the OCR.space hosted OCR API.
package ocrspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"medscan/internal/domain"
	"medscan/internal/port"
	"medscan/internal/resilience"
)

const apiURL = "https://api.ocr.space/parse/image"

// ocrSpaceConfidence is reported when the API parses a file successfully.
// OCR.space does not expose a per-document confidence.
const ocrSpaceConfidence = 85.0

// Config holds the OCR.space client settings.
type Config struct {
	APIKey      string
	Language    string
	Engine      int
	TimeoutSecs int
}

// Client implements port.TextExtractor against OCR.space.
type Client struct {
	apiKey   string
	language string
	engine   int
	endpoint string
	client   *http.Client
	executor *resilience.Executor
}

// NewClient creates an OCR.space client. executor may be nil.
func NewClient(cfg Config, executor *resilience.Executor) *Client {
	return newClient(cfg, "", executor)
}

// NewClientWithEndpoint creates a client pointing at a custom endpoint (for testing).
func NewClientWithEndpoint(cfg Config, endpoint string, executor *resilience.Executor) *Client {
	return newClient(cfg, endpoint, executor)
}

func newClient(cfg Config, endpoint string, executor *resilience.Executor) *Client {
	if endpoint == "" {
		endpoint = apiURL
	}
	language := cfg.Language
	if language == "" {
		language = "eng"
	}
	engine := cfg.Engine
	if engine == 0 {
		engine = 2
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:   cfg.APIKey,
		language: language,
		engine:   engine,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		executor: executor,
	}
}

func (c *Client) Name() string { return "ocrspace" }

func (c *Client) Supports(fileType domain.FileType) bool {
	_, ok := domain.AllowedFileTypes[fileType]
	return ok
}

func (c *Client) Extract(ctx context.Context, input port.ExtractInput) (domain.RawDocument, error) {
	if len(input.Content) == 0 {
		return domain.RawDocument{}, domain.ErrEmptyFile
	}

	var text string
	call := func(ctx context.Context) error {
		var err error
		text, err = c.parse(ctx, input)
		return err
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ocrspace.parse", call, resilience.TransientClassifier)
	} else {
		err = call(ctx)
	}
	if err != nil {
		if resilience.IsCircuitOpen(err) {
			return domain.RawDocument{}, fmt.Errorf("ocrspace.Extract: %v: %w", err, domain.ErrOCRFailed)
		}
		return domain.RawDocument{}, err
	}

	confidence := 0.0
	if strings.TrimSpace(text) != "" {
		confidence = ocrSpaceConfidence
	}
	return domain.RawDocument{Text: text, SourceConfidence: confidence, Backend: c.Name()}, nil
}

// statusError is returned for non-200 API responses.
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("ocr.space API error (status %d): %s: %s", e.StatusCode, e.Body, domain.ErrOCRFailed)
}

func (e *statusError) Unwrap() error { return domain.ErrOCRFailed }

func (e *statusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type parseResponse struct {
	ParsedResults []struct {
		ParsedText        string `json:"ParsedText"`
		FileParseExitCode int    `json:"FileParseExitCode"`
	} `json:"ParsedResults"`
	OCRExitCode           int             `json:"OCRExitCode"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

func (c *Client) parse(ctx context.Context, input port.ExtractInput) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	filename := input.Filename
	if filename == "" {
		filename = "upload." + string(input.FileType)
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(input.Content); err != nil {
		return "", fmt.Errorf("writing form file: %w", err)
	}
	fields := map[string]string{
		"language":          c.language,
		"OCREngine":         fmt.Sprintf("%d", c.engine),
		"filetype":          strings.ToUpper(string(input.FileType)),
		"isOverlayRequired": "false",
		"scale":             "true",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", fmt.Errorf("writing form field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ocr.space API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &statusError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 300)}
	}

	var parsed parseResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshaling response: %v: %w", err, domain.ErrOCRFailed)
	}
	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("ocr.space processing error: %s: %w", errorMessage(parsed.ErrorMessage), domain.ErrOCRFailed)
	}

	pages := make([]string, 0, len(parsed.ParsedResults))
	for _, r := range parsed.ParsedResults {
		if r.FileParseExitCode == 1 {
			pages = append(pages, r.ParsedText)
		}
	}
	return strings.Join(pages, "\n"), nil
}

// errorMessage flattens ErrorMessage, which the API sends as either a
// string or an array of strings.
func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "unknown error"
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	return string(raw)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

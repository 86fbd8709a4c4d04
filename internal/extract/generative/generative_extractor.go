// Package generative implements the second extraction layer on the
// Anthropic Messages API: the document's extracted text is sent with a
// type-specific instruction template requiring a strict-schema JSON reply.
package generative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"fieldlens/internal/config"
	"fieldlens/internal/domain"
	"fieldlens/internal/extract"
	"fieldlens/internal/normalize"
	"fieldlens/internal/port"
	"fieldlens/internal/typeconfig"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"

	defaultModel      = "claude-sonnet-4-20250514"
	defaultTimeout    = 10 * time.Second
	defaultConfidence = 0.7
)

// Extractor implements port.LayerExtractor for the generative layer.
type Extractor struct {
	apiKey     string
	model      string
	endpoint   string
	client     *http.Client
	timeout    time.Duration
	confidence float64
}

// NewExtractor creates a generative extractor from config.
func NewExtractor(cfg *config.GenerativeConfig) *Extractor {
	return NewExtractorWithEndpoint(cfg, apiURL)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API
// endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.GenerativeConfig, endpoint string) *Extractor {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	confidence := cfg.DefaultConfidence
	if confidence <= 0 {
		confidence = defaultConfidence
	}
	return &Extractor{
		apiKey:     cfg.APIKey,
		model:      model,
		endpoint:   endpoint,
		client:     &http.Client{Timeout: timeout},
		timeout:    timeout,
		confidence: confidence,
	}
}

// Layer identifies this adapter as Layer 2.
func (e *Extractor) Layer() domain.LayerID { return domain.LayerGenerative }

// Extract sends the document text with the type's instruction template and
// maps the JSON reply onto fields. Fields missing from the reply or
// violating the declared schema are dropped with a logged warning; only
// transport-level problems fail the call.
func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput, tc *typeconfig.DocumentTypeConfig) (*domain.ExtractionResult, error) {
	if e.apiKey == "" {
		return nil, extract.NewAdapterUnavailable(e.Layer(), errors.New("no API key configured"))
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, extract.NewAdapterUnavailable(e.Layer(), errors.New("no extracted text provided"))
	}

	reqBody := map[string]interface{}{
		"model":      e.model,
		"max_tokens": 4096,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": buildPrompt(tc, input.Text),
			},
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", e.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := e.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &urlErr) && urlErr.Timeout()) {
			return nil, extract.NewAdapterTimeout(e.Layer(), e.timeout, err)
		}
		return nil, extract.NewAdapterUnavailable(e.Layer(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, extract.NewAdapterUnavailable(e.Layer(),
			fmt.Errorf("generative API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 300)))
	}

	return e.parseResponse(respBody, tc)
}

// apiResponse models the Messages API response envelope.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (e *Extractor) parseResponse(body []byte, tc *typeconfig.DocumentTypeConfig) (*domain.ExtractionResult, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}
	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens)")
	}

	text := stripFences(resp.Content[0].Text)

	var parsed struct {
		Fields     map[string]json.RawMessage `json:"fields"`
		Confidence map[string]float64         `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("parsing model JSON output: %w (raw: %s)", err, truncate(text, 300))
	}

	rejected := ValidateResponse(tc.ResponseSchema(), []byte(text))

	result := domain.NewExtractionResult(e.Layer())
	for _, spec := range tc.Fields {
		raw, ok := parsed.Fields[spec.Name]
		if !ok {
			continue
		}
		if rejected[spec.Name] {
			log.Printf("generative.Extractor: dropping field %s (schema violation)", spec.Name)
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			log.Printf("generative.Extractor: dropping field %s (non-string value %s)", spec.Name, truncate(string(raw), 60))
			continue
		}
		if strings.TrimSpace(s) == "" {
			continue
		}
		conf, ok := parsed.Confidence[spec.Name]
		if !ok {
			conf = e.confidence
		}
		fv := domain.FieldValue{
			Name:       spec.Name,
			Raw:        s,
			Kind:       spec.Kind,
			Confidence: conf,
			Source:     e.Layer(),
		}
		normalize.Apply(&fv)
		result.Fields[spec.Name] = fv
	}
	return result, nil
}

// buildPrompt composes the type's instruction template with its field list.
func buildPrompt(tc *typeconfig.DocumentTypeConfig, text string) string {
	names := make([]string, 0, len(tc.Fields))
	for _, f := range tc.Fields {
		names = append(names, fmt.Sprintf("%q (%s)", f.Name, f.Kind))
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("You are a document data extraction assistant. ")
	b.WriteString(tc.PromptPreamble)
	b.WriteString("\n\nExtract the following fields from the document text below: ")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString("\n\nReturn ONLY valid JSON with no markdown formatting, no code fences, no explanation - just the raw JSON object.")
	b.WriteString("\n\nReturn two top-level keys: \"fields\" (field name to extracted string value; omit fields not present in the document) and \"confidence\" (field name to a float between 0.0 and 1.0).")
	b.WriteString("\n\nDOCUMENT TEXT:\n")
	b.WriteString(text)
	return b.String()
}

// stripFences removes a surrounding markdown code fence the model sometimes
// emits despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

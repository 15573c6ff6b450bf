// Package openai extracts structured legal metadata from document text via an
// OpenAI-compatible chat completions endpoint.
package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/legal-intel/internal/core/domain"
	"github.com/kirillkom/legal-intel/internal/infrastructure/resilience"
	"github.com/kirillkom/legal-intel/internal/taxonomy"
)

const defaultConfidence = 0.85

type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	TimeoutSecs int
	// MaxRPS caps outbound extraction calls so a burst of uploads does not
	// trip the provider's own rate limits.
	MaxRPS    int
	TextLimit int
}

type Client struct {
	baseURL     string
	apiKey      string
	model       string
	textLimit   int
	httpClient  *http.Client
	limiter     *rate.Limiter
	executor    *resilience.Executor
	suggestions *taxonomy.Suggestions
}

func New(opts Options, executor *resilience.Executor, suggestions *taxonomy.Suggestions) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := opts.Model
	if model == "" {
		model = "gpt-4o"
	}
	timeout := time.Duration(opts.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxRPS := opts.MaxRPS
	if maxRPS <= 0 {
		maxRPS = 2
	}
	textLimit := opts.TextLimit
	if textLimit <= 0 {
		textLimit = 6000
	}

	return &Client{
		baseURL:     baseURL,
		apiKey:      opts.APIKey,
		model:       model,
		textLimit:   textLimit,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(maxRPS), maxRPS),
		executor:    executor,
		suggestions: suggestions,
	}
}

// ExtractMetadata asks the model for the five structured fields plus a
// confidence score. The document text is truncated before prompting, the
// opening pages of a contract carry the fields we need.
func (c *Client) ExtractMetadata(ctx context.Context, text, filename string) (domain.Metadata, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Metadata{}, domain.WrapError(domain.ErrEmptyDocument, "extract metadata", errNoText)
	}

	prompt := buildExtractionPrompt(c.truncate(text), filename, c.suggestions)

	var raw string
	call := func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		out, err := c.chatCompletion(ctx, prompt)
		if err != nil {
			return err
		}
		raw = out
		return nil
	}

	if c.executor != nil {
		if err := c.executor.Execute(ctx, "ai.extract", call, classifyAIError); err != nil {
			return domain.Metadata{}, mapAIError("extract metadata", err)
		}
	} else if err := call(ctx); err != nil {
		return domain.Metadata{}, mapAIError("extract metadata", err)
	}

	meta, err := parseMetadataJSON(raw)
	if err != nil {
		return domain.Metadata{}, domain.WrapError(domain.ErrMalformedResponse, "extract metadata", err)
	}
	return meta, nil
}

func (c *Client) truncate(text string) string {
	if len(text) <= c.textLimit {
		return text
	}
	return text[:c.textLimit]
}

type metadataPayload struct {
	AgreementType  string   `json:"agreement_type"`
	GoverningLaw   string   `json:"governing_law"`
	Jurisdiction   string   `json:"jurisdiction"`
	Geography      string   `json:"geography"`
	IndustrySector string   `json:"industry_sector"`
	Confidence     *float64 `json:"confidence"`
}

func parseMetadataJSON(raw string) (domain.Metadata, error) {
	cleaned := extractJSONObject(stripMarkdownFences(raw))

	var payload metadataPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return domain.Metadata{}, err
	}

	meta := domain.Metadata{
		AgreementType:  normalizeField(payload.AgreementType),
		GoverningLaw:   normalizeField(payload.GoverningLaw),
		Jurisdiction:   normalizeField(payload.Jurisdiction),
		Geography:      normalizeField(payload.Geography),
		IndustrySector: normalizeField(payload.IndustrySector),
		Confidence:     defaultConfidence,
	}
	if payload.Confidence != nil {
		meta.Confidence = clampConfidence(*payload.Confidence)
	}
	return meta, nil
}

// normalizeField trims whitespace and collapses the model's various spellings
// of "I don't know" to the empty string, which the query layer treats as
// absent.
func normalizeField(v string) string {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "null", "none", "n/a", "unknown", "not specified":
		return ""
	}
	return v
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func stripMarkdownFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-localize/internal/logging"
	"github.com/goliatone/go-localize/pkg/interfaces"
	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.3
)

// Config holds the explicit provider settings threaded into the client at
// construction time. There is no ambient global state.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
}

// OpenAIClient implements interfaces.TranslationProvider against an
// OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	modelSource func() string
	temperature float32
	logger      interfaces.Logger
}

// Option configures the client at construction time.
type Option func(*OpenAIClient)

// WithLogger attaches a provider-scoped logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *OpenAIClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithModelSource resolves the model per request, letting runtime settings
// override the configured model without rebuilding the client. A blank
// resolution falls back to the configured model.
func WithModelSource(source func() string) Option {
	return func(c *OpenAIClient) {
		c.modelSource = source
	}
}

// NewOpenAIClient constructs a provider client from explicit configuration.
func NewOpenAIClient(cfg Config, opts ...Option) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}

	client := &OpenAIClient{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		temperature: temperature,
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

var _ interfaces.TranslationProvider = (*OpenAIClient)(nil)

// Translate sends one batch of texts and returns exactly one translation per
// input, in order, or an error.
func (c *OpenAIClient) Translate(ctx context.Context, req interfaces.TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	payload, _ := json.Marshal(map[string]any{"texts": req.Texts})
	content, err := c.complete(ctx, translateSystemPrompt(req.SourceLocale, req.TargetLocale), string(payload))
	if err != nil {
		return nil, err
	}

	translations, err := parseTranslations(content, len(req.Texts))
	if err != nil {
		return nil, err
	}

	c.logger.Debug("translated batch",
		"from", req.SourceLocale,
		"to", req.TargetLocale,
		"count", len(translations),
	)
	return translations, nil
}

// Classify judges whether existing translations are missing information
// relative to their source texts.
func (c *OpenAIClient) Classify(ctx context.Context, pairs []interfaces.ClassificationPair, from, to string) ([]interfaces.ClassificationResult, error) {
	if len(pairs) == 0 {
		return []interfaces.ClassificationResult{}, nil
	}

	payload, _ := json.Marshal(map[string]any{"pairs": pairs})
	content, err := c.complete(ctx, classifySystemPrompt(from, to), string(payload))
	if err != nil {
		return nil, err
	}

	return parseClassification(content)
}

func (c *OpenAIClient) resolveModel() string {
	if c.modelSource != nil {
		if model := strings.TrimSpace(c.modelSource()); model != "" {
			return model
		}
	}
	return c.model
}

func (c *OpenAIClient) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.resolveModel(),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", &ProviderError{Message: "completion call failed", Cause: err, Retryable: isRetryable(err)}
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Message: "empty completion response", Retryable: true}
	}
	return resp.Choices[0].Message.Content, nil
}

func translateSystemPrompt(from, to string) string {
	if strings.TrimSpace(from) == "" {
		from = "en"
	}
	return fmt.Sprintf(`You are a professional translator. Translate each input text from %q to %q.

Rules:
- Preserve all formatting, whitespace, newlines, and placeholder markers such as [[LEX-0]]...[[/LEX-0]] exactly as they appear.
- Do not translate proper nouns, URLs, email addresses, or code.
- Translate idiomatically; never produce literal word-for-word calques.

Respond with a JSON object: {"translations": ["...", ...]} containing exactly one string per input, in the same order. No markdown, no commentary.`, from, to)
}

func classifySystemPrompt(from, to string) string {
	return fmt.Sprintf(`You review translations from %q to %q. For each pair of defaultText and translatedText, decide whether the translation is missing information present in the source (untranslated passages, dropped sentences, truncated content).

Respond with a JSON object: {"results": [{"index": <input index>, "missing": true|false, "reason": "short explanation when missing"}]}. Include an entry for every pair.`, from, to)
}

func parseTranslations(content string, expected int) ([]string, error) {
	var wrapped struct {
		Translations []any `json:"translations"`
	}
	if err := json.Unmarshal([]byte(content), &wrapped); err != nil || wrapped.Translations == nil {
		// Some models answer with a bare array.
		var bare []any
		if err := json.Unmarshal([]byte(content), &bare); err != nil {
			return nil, &ProviderError{Message: "unparseable translation response"}
		}
		wrapped.Translations = bare
	}

	out := make([]string, len(wrapped.Translations))
	for i, value := range wrapped.Translations {
		if text, ok := value.(string); ok {
			out[i] = text
		} else {
			out[i] = fmt.Sprintf("%v", value)
		}
	}
	if len(out) != expected {
		return nil, &CountMismatchError{Expected: expected, Got: len(out)}
	}
	return out, nil
}

func parseClassification(content string) ([]interfaces.ClassificationResult, error) {
	var wrapped struct {
		Results []interfaces.ClassificationResult `json:"results"`
	}
	if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
		return nil, &ProviderError{Message: "unparseable classification response"}
	}
	return wrapped.Results, nil
}

func isRetryable(err error) bool {
	message := strings.ToLower(err.Error())
	for _, pattern := range []string{"rate limit", "timeout", "temporar", "429", "502", "503"} {
		if strings.Contains(message, pattern) {
			return true
		}
	}
	return false
}

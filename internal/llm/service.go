package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bikkkubo/news-bot/internal/interfaces"
	"github.com/bikkkubo/news-bot/internal/llm/anthropic"
	"github.com/bikkkubo/news-bot/internal/llm/gemini"
	"github.com/bikkkubo/news-bot/internal/llm/openai"
	"github.com/bikkkubo/news-bot/internal/logger"
	"github.com/bikkkubo/news-bot/internal/store"
	"github.com/bikkkubo/news-bot/internal/trace"
)

// Service drives the provider cascade. Providers are ordered by
// priority (OpenAI > Anthropic > Gemini, whichever have credentials);
// a request is attempted once per provider, in order, and the first
// success wins. No prompt modification, no parallel racing.
type Service struct {
	providers []interfaces.Provider
}

var _ interfaces.Generator = (*Service)(nil)

// New builds the cascade from the configured credentials. Returns
// ErrNoProviders when no backend has a key.
func New(ctx context.Context, cfg *store.Config) (*Service, error) {
	var providers []interfaces.Provider

	if cfg.Keys.OpenAIKey != "" {
		providers = append(providers, openai.New(cfg.Keys.OpenAIKey, cfg.LLM.OpenAIModel, cfg.LLM.MaxTokens))
	}
	if cfg.Keys.AnthropicKey != "" {
		providers = append(providers, anthropic.New(cfg.Keys.AnthropicKey, cfg.LLM.AnthropicModel, cfg.LLM.MaxTokens))
	}
	if cfg.Keys.GoogleKey != "" {
		p, err := gemini.New(ctx, cfg.Keys.GoogleKey, cfg.LLM.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("initialize gemini provider: %w", err)
		}
		providers = append(providers, p)
	}

	if len(providers) == 0 {
		return nil, ErrNoProviders
	}

	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	logger.Info(ctx, "Generation service initialized", "primary", names[0], "cascade", names)

	return &Service{providers: providers}, nil
}

// GenerateText runs the cascade. If all configured providers fail, the
// last error propagates.
func (s *Service) GenerateText(ctx context.Context, prompt, systemPrompt string, temperature float32) (string, error) {
	var lastErr error
	for i, p := range s.providers {
		ctx, span := trace.StartSpan(ctx, p.Name()+"-generate")
		text, err := p.Generate(ctx, prompt, systemPrompt, temperature)
		span.End()
		if err == nil {
			return text, nil
		}
		lastErr = err
		if i < len(s.providers)-1 {
			logger.Warn(ctx, "Generation failed, falling back to next provider",
				"provider", p.Name(),
				"next", s.providers[i+1].Name(),
				"error", err,
			)
		} else {
			logger.ErrorWithErr(ctx, "All generation providers exhausted", err, "provider", p.Name())
		}
	}
	return "", fmt.Errorf("all providers failed: %w", lastErr)
}

// GenerateJSON appends a strict-output instruction, generates at low
// temperature, strips code fences, and decodes into out. A parse
// failure surfaces as *DecodeError.
func (s *Service) GenerateJSON(ctx context.Context, prompt, systemPrompt string, out any) error {
	jsonPrompt := prompt + "\n\nIMPORTANT: Output ONLY valid JSON."
	text, err := s.GenerateText(ctx, jsonPrompt, systemPrompt, 0.2)
	if err != nil {
		return err
	}

	cleaned := cleanJSONResponse(text)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		logger.Error(ctx, "Failed to parse JSON from LLM response", "payload", cleaned)
		return &DecodeError{Payload: cleaned, Err: err}
	}
	return nil
}

// ExtractTicker asks for the primary public company's ticker symbol in
// text. Returns "" when none is found or the call fails; callers treat
// this as best-effort.
func (s *Service) ExtractTicker(ctx context.Context, text string) string {
	prompt := fmt.Sprintf(`Identify the primary publicly traded company mentioned in the following news text and return its stock ticker symbol.
If multiple companies are mentioned, choose the most relevant one.
If no public company is mentioned, return "None".

Text: %s

Output format: Just the ticker symbol (e.g., AAPL) or "None". No other text.`, text)

	raw, err := s.GenerateText(ctx, prompt, "", 0.0)
	if err != nil {
		logger.Warn(ctx, "Ticker extraction failed", "error", err)
		return ""
	}

	ticker := strings.TrimSpace(raw)
	ticker = strings.NewReplacer(`"`, "", "'", "", ".", "").Replace(ticker)
	if strings.EqualFold(ticker, "none") {
		return ""
	}
	return ticker
}

// cleanJSONResponse strips markdown code fences and surrounding prose
// from a model response so the remainder parses as JSON.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.IndexAny(content, "{[")
	if start < 0 {
		return content
	}
	var end int
	if content[start] == '{' {
		end = strings.LastIndex(content, "}")
	} else {
		end = strings.LastIndex(content, "]")
	}
	if end > start {
		content = content[start : end+1]
	}
	return content
}

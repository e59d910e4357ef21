// Package llmobs wraps a text generator with tracing and timing logs.
package llmobs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bikkkubo/news-bot/internal/interfaces"
	"github.com/bikkkubo/news-bot/internal/logger"
	"github.com/bikkkubo/news-bot/internal/trace"
)

type observed struct {
	next interfaces.Generator
}

// Wrap instruments every call on the underlying generator.
func Wrap(next interfaces.Generator) interfaces.Generator {
	return &observed{next: next}
}

func (o *observed) GenerateText(ctx context.Context, prompt, systemPrompt string, temperature float32) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.generate_text")
	defer span.End()
	span.SetAttributes(
		attribute.Int("prompt_chars", len(prompt)),
		attribute.Float64("temperature", float64(temperature)),
	)

	start := time.Now()
	out, err := o.next.GenerateText(ctx, prompt, systemPrompt, temperature)
	elapsed := time.Since(start)

	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "llm text generation failed", err,
			"elapsed_ms", elapsed.Milliseconds())
		return "", err
	}
	logger.InfoSkip(ctx, 1, "llm text generated",
		"elapsed_ms", elapsed.Milliseconds(),
		"response_chars", len(out))
	return out, nil
}

func (o *observed) GenerateJSON(ctx context.Context, prompt, systemPrompt string, out any) error {
	ctx, span := trace.StartSpan(ctx, "llm.generate_json")
	defer span.End()
	span.SetAttributes(attribute.Int("prompt_chars", len(prompt)))

	start := time.Now()
	err := o.next.GenerateJSON(ctx, prompt, systemPrompt, out)
	elapsed := time.Since(start)

	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "llm json generation failed", err,
			"elapsed_ms", elapsed.Milliseconds())
		return err
	}
	logger.InfoSkip(ctx, 1, "llm json generated", "elapsed_ms", elapsed.Milliseconds())
	return nil
}

package interfaces

import "context"

// Provider is one text-generation backend. Implementations make a
// single attempt; retries across backends belong to the orchestrator.
type Provider interface {
	// Name identifies the backend in logs ("openai", "anthropic", "gemini").
	Name() string
	// Generate runs one completion. systemPrompt may be empty.
	Generate(ctx context.Context, prompt, systemPrompt string, temperature float32) (string, error)
}

// Generator is the generation service consumed by the report pipeline.
type Generator interface {
	// GenerateText returns plain text from the first provider in the
	// configured cascade that succeeds.
	GenerateText(ctx context.Context, prompt, systemPrompt string, temperature float32) (string, error)
	// GenerateJSON requests strict-JSON output and decodes it into out.
	// A parse failure surfaces as *llm.DecodeError.
	GenerateJSON(ctx context.Context, prompt, systemPrompt string, out any) error
}

package llm

import "context"

// Generator is the text-generation service boundary. It takes a prompt and
// returns the model's raw text output, which should contain a JSON object
// possibly wrapped in prose or markdown.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/pathakanu/reminderbot/internal/config"
	myopenai "github.com/pathakanu/reminderbot/internal/openai"
)

// Completer performs one single-turn completion.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
}

// NewCompleter picks the completion backend named by cfg.LLMProvider.
func NewCompleter(cfg *config.Config) (Completer, error) {
	switch strings.ToLower(cfg.LLMProvider) {
	case config.ProviderOpenAI, "":
		return myopenai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil
	case config.ProviderCompat:
		if cfg.OpenAIBaseURL == "" {
			return nil, fmt.Errorf("llm: provider %q needs OPENAI_BASE_URL", cfg.LLMProvider)
		}
		return NewCompat(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenRouterReferrer, cfg.OpenRouterTitle), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLMProvider)
	}
}

package llm

import (
	"fmt"
	"strings"

	"runledger/internal/model"
)

// NewProvider creates the configured oracle backend. An empty provider
// name disables the oracle: (nil, nil).
func NewProvider(config model.LLMConfig) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s (supported: openai)", config.Provider)
	}
}

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"runledger/internal/model"
)

// OpenAIProvider implements the oracle on the Chat Completions API.
type OpenAIProvider struct {
	client *openai.Client
	config model.LLMConfig
}

// NewOpenAIProvider creates an OpenAI-backed oracle.
func NewOpenAIProvider(config model.LLMConfig) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks the API is reachable with the configured key.
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Identify asks the model for a structured identification.
func (p *OpenAIProvider) Identify(ctx context.Context, req IdentifyRequest) (*model.Suggestion, error) {
	modelName := p.config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}
	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 300
	}
	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You identify people from transcript excerpts. You answer only in JSON and never guess beyond the provided text.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(req),
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty response")
	}

	return parseSuggestion(resp.Choices[0].Message.Content, modelName)
}

// parseSuggestion decodes the model's JSON answer. Refusals ("null",
// "unknown") come back as a nil suggestion, not an error.
func parseSuggestion(text, modelName string) (*model.Suggestion, error) {
	text = strings.TrimSpace(text)
	// Models wrap JSON in markdown fences often enough to strip them.
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var answer struct {
		Participant *string `json:"participant"`
		TimeHint    *string `json:"time_hint"`
	}
	if err := json.Unmarshal([]byte(text), &answer); err != nil {
		return nil, fmt.Errorf("parse oracle answer: %w", err)
	}

	participant := deref(answer.Participant)
	timeHint := deref(answer.TimeHint)
	if strings.EqualFold(participant, "unknown") || strings.EqualFold(participant, "null") {
		participant = ""
	}
	if participant == "" && timeHint == "" {
		return nil, nil
	}

	return &model.Suggestion{
		Participant: participant,
		TimeHint:    timeHint,
		Model:       modelName,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

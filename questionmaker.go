package textback

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const alternativeTool = "submit_alternative"

// ModelConfig configures the text generation model used for alternatives
type ModelConfig struct {
	// APIKey may be empty for local OpenAI compatible servers such as Ollama
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`

	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`

	// UseTools forces the answer through a function call; disable it for models without tool support
	UseTools bool `yaml:"use_tools"`
}

// DefaultModelConfig returns the default model config
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Model:       openai.GPT4o,
		Temperature: 1,
		Timeout:     30 * time.Second,
		UseTools:    true,
	}
}

// Enabled reports whether enough is configured to reach a model
func (c ModelConfig) Enabled() bool {
	return c.APIKey != "" || c.BaseURL != ""
}

// ModelProvider produces alternatives with an OpenAI compatible chat completion endpoint
type ModelProvider struct {
	client *openai.Client
	config ModelConfig
	logger *LLMLogger
}

var _ AlternativeProvider = (*ModelProvider)(nil)

// NewModelProvider creates a provider for the configured endpoint. logger may be nil.
func NewModelProvider(config ModelConfig, logger *LLMLogger) *ModelProvider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &ModelProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: logger,
	}
}

// Alternative asks the model for one alternative. A response that cannot be read is returned
// as an empty string so the caller retries; only transport failures are errors.
func (p *ModelProvider) Alternative(ctx context.Context, seed int64, prompt string) (string, error) {
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	if p.logger != nil {
		p.logger.LogLLMRequest(seed, prompt)
	}

	s := int(seed)
	req := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You write convincing decoy answers for a quiz about a private chat history. Reply with the alternative only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: p.config.Temperature,
		Seed:        &s,
	}
	if p.config.UseTools {
		req.Tools = []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        alternativeTool,
					Description: "Submit the alternative",
					Parameters: map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"alternative": map[string]interface{}{
								"type":        "string",
								"description": "The alternative, without any explanation",
							},
						},
						"required": []string{"alternative"},
					},
				},
			},
		}
		req.ToolChoice = openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: alternativeTool},
		}
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, req)
	providerLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		providerRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to get model completion: %w", err)
	}

	alternative, ok := readAlternative(resp)
	if !ok {
		providerRequests.WithLabelValues("malformed").Inc()
		VerboseLog("model returned no usable alternative (%d choices)", len(resp.Choices))
	} else {
		providerRequests.WithLabelValues("ok").Inc()
	}
	if p.logger != nil {
		p.logger.LogLLMResponse(seed, alternative)
	}
	return alternative, nil
}

// readAlternative takes the tool call arguments when present and falls back to the message text
func readAlternative(resp openai.ChatCompletionResponse) (string, bool) {
	if len(resp.Choices) == 0 {
		return "", false
	}
	msg := resp.Choices[0].Message
	for _, call := range msg.ToolCalls {
		if call.Function.Name != alternativeTool {
			continue
		}
		var args struct {
			Alternative string `json:"alternative"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return "", false
		}
		return args.Alternative, args.Alternative != ""
	}
	content := strings.TrimSpace(msg.Content)
	return content, content != ""
}

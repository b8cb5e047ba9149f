package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"skybridge/internal/config"
	"skybridge/internal/model"
)

// OpenAIClient handles OpenAI-compatible API interactions
type OpenAIClient struct {
	config     *config.OpenAIConfig
	httpClient *http.Client
	extraBody  map[string]any
	format     func() *ResponseFormat
	logger     *zap.Logger
	now        func() time.Time
}

// NewOpenAIClient creates a new OpenAI-compatible client with auto-detection of provider.
// Request deadlines come from the caller's context.
func NewOpenAIClient(cfg *config.OpenAIConfig, logger *zap.Logger) *OpenAIClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &OpenAIClient{
		config:     cfg,
		httpClient: &http.Client{},
		logger:     logger,
		now:        time.Now,
	}

	switch {
	case IsOpenAIProvider(cfg.APIBase):
		c.format = jsonSchemaFormat
		logger.Info("detected OpenAI API provider", zap.String("model", cfg.ChatModel))
	case IsNVIDIAProvider(cfg.APIBase):
		c.format = jsonObjectFormat
		logger.Info("detected NVIDIA API provider", zap.String("model", cfg.ChatModel))
	default:
		// Unknown providers rarely support strict schemas
		c.format = jsonObjectFormat
		logger.Info("using OpenAI-compatible format", zap.String("base", cfg.APIBase), zap.String("model", cfg.ChatModel))
	}

	if cfg.ChatExtraBody != "" {
		var extraBody map[string]any
		if err := json.Unmarshal([]byte(cfg.ChatExtraBody), &extraBody); err != nil {
			logger.Warn("failed to parse OPENAI_CHAT_EXTRA_BODY", zap.Error(err))
		} else {
			c.extraBody = extraBody
		}
	}

	return c
}

// ChatCompletionRequest represents a chat completion request
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	TopP           float64         `json:"top_p,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	ExtraBody      map[string]any  `json:"extra_body,omitempty"` // e.g. {"chat_template_kwargs": {"thinking": true}}
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat specifies the format of the response
type ResponseFormat struct {
	Type       string      `json:"type"` // "json_schema", "json_object" or "text"
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

// JSONSchema is a named strict output schema
type JSONSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

// ChatCompletionResponse represents the API response
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// ChatCompletion performs a chat completion request
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("OpenAI API is not enabled (missing API key)")
	}

	// Apply defaults from config
	if req.Model == "" {
		req.Model = c.config.ChatModel
	}
	if req.Temperature == 0 && c.config.ChatTemperature > 0 {
		req.Temperature = c.config.ChatTemperature
	}
	if req.TopP == 0 && c.config.ChatTopP > 0 {
		req.TopP = c.config.ChatTopP
	}
	if req.MaxTokens == 0 && c.config.ChatMaxTokens > 0 {
		req.MaxTokens = c.config.ChatMaxTokens
	}
	if req.ExtraBody == nil {
		req.ExtraBody = c.extraBody
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, truncate(string(body), 512))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// Extract asks the chat model for a structured reading of one utterance
func (c *OpenAIClient) Extract(ctx context.Context, req model.ExtractionRequest) (*model.ExtractionResult, error) {
	today := req.Today
	if today == "" {
		today = c.now().UTC().Format(isoDate)
	}

	userContent, err := buildUserContent(req)
	if err != nil {
		return nil, err
	}

	format := c.format()
	systemPrompt := buildExtractionPrompt(today)
	if format.JSONSchema == nil {
		systemPrompt += "\n" + outputShapeHint
	}

	resp, err := c.ChatCompletion(ctx, ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent},
		},
		ResponseFormat: format,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	content := resp.Choices[0].Message.Content
	result, err := decodeExtraction(content)
	if err != nil {
		c.logger.Debug("unparseable extractor output", zap.String("content", truncate(content, 512)))
		return nil, err
	}

	c.logger.Debug("extraction completed",
		zap.String("model", resp.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Int("ambiguities", len(result.Ambiguities)),
	)
	return result, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"skybridge/internal/config"
	"skybridge/internal/model"
)

// GeminiExtractor reads booking fields through Google's Gemini SDK
type GeminiExtractor struct {
	client *genai.Client
	config *config.GeminiConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewGeminiExtractor creates the SDK client. Close releases it.
func NewGeminiExtractor(ctx context.Context, cfg *config.GeminiConfig, logger *zap.Logger) (*GeminiExtractor, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: missing api key")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	logger.Info("gemini extractor ready", zap.String("model", cfg.Model))
	return &GeminiExtractor{
		client: client,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Close releases the underlying client
func (g *GeminiExtractor) Close() error {
	return g.client.Close()
}

// Extract asks Gemini for a JSON reading of one utterance
func (g *GeminiExtractor) Extract(ctx context.Context, req model.ExtractionRequest) (*model.ExtractionResult, error) {
	today := req.Today
	if today == "" {
		today = g.now().UTC().Format(isoDate)
	}

	userContent, err := buildUserContent(req)
	if err != nil {
		return nil, err
	}

	gm := g.client.GenerativeModel(g.config.Model)
	gm.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(buildExtractionPrompt(today) + "\n" + outputShapeHint)},
	}
	gm.ResponseMIMEType = "application/json"
	gm.SetTemperature(float32(g.config.Temperature))

	resp, err := gm.GenerateContent(ctx, genai.Text(userContent))
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	content := geminiText(resp)
	if content == "" {
		return nil, ErrEmptyResponse
	}

	result, err := decodeExtraction(content)
	if err != nil {
		g.logger.Debug("unparseable extractor output", zap.String("content", truncate(content, 512)))
		return nil, err
	}
	return result, nil
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var textParts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		txt, ok := part.(genai.Text)
		if !ok || strings.TrimSpace(string(txt)) == "" {
			continue
		}
		textParts = append(textParts, string(txt))
	}
	return strings.Join(textParts, "\n")
}

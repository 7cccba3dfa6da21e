// Package vision extracts recipe data from photographs via a multimodal
// inference service.
package vision

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

const defaultMaxTokens = 2048

// Config controls the inference client.
type Config struct {
	APIKey string
	Model  string
	// Language hints which language the extracted text should use.
	Language string
}

// Client sends recipe photos to the inference service and parses the
// structured response.
type Client struct {
	messages messageService
	model    anthropic.Model
	language string
	logger   *zap.Logger
}

type messageService interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// NewClient builds a Client from configuration.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("vision.api_key is required")
	}
	api := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return newClient(cfg, &api.Messages, logger), nil
}

func newClient(cfg Config, messages messageService, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	model := anthropic.Model(cfg.Model)
	if cfg.Model == "" {
		model = anthropic.ModelClaudeSonnet4_5
	}
	language := cfg.Language
	if language == "" {
		language = "English"
	}
	return &Client{
		messages: messages,
		model:    model,
		language: language,
		logger:   logger,
	}
}

// ExtractRecipe sends one or more base64-encoded images (with their media
// types) and returns the recipe parsed from the response.
func (c *Client) ExtractRecipe(ctx context.Context, images []Image) (*ParsedRecipe, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("at least one image is required")
	}
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(images)+1)
	for _, img := range images {
		blocks = append(blocks, anthropic.NewImageBlockBase64(img.MediaType, img.Base64Data))
	}
	blocks = append(blocks, anthropic.NewTextBlock(c.prompt()))

	msg, err := c.messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("inference request: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	c.logger.Debug("inference response received", zap.Int("chars", text.Len()))
	return ParseResponse(text.String())
}

// Image is one photo submitted for extraction.
type Image struct {
	MediaType  string
	Base64Data string
}

func (c *Client) prompt() string {
	return fmt.Sprintf(`Extract the recipe from the attached photo(s) and answer with a single JSON object, nothing else. Use %s for all text. Fields: "name" (string), "ingredients" (array of strings), "instructions" (array of strings, in order), "cuisineType", "prepTime", "cookTime", "totalTime", "recipeYield", "description", "category" (strings, omit when unknown), "keywords" (array of strings).`, c.language)
}

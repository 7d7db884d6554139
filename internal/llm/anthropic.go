package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"musicwizard/internal/core"
)

type AnthropicClient struct {
	config *core.LLMConfig
	logger *zap.Logger
	client *anthropic.Client
}

const anthropicDefaultModel = "claude-3-haiku-20240307"

func NewAnthropicClient(config *core.LLMConfig, logger *zap.Logger) (*AnthropicClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	var opts []option.RequestOption
	opts = append(opts, option.WithAPIKey(config.APIKey))

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	client := anthropic.NewClient(opts...)

	return &AnthropicClient{
		config: config,
		logger: logger,
		client: &client,
	}, nil
}

func (a *AnthropicClient) ExtractSongInfo(ctx context.Context, rawTitle string) (core.SongRef, error) {
	if strings.TrimSpace(rawTitle) == "" {
		return core.SongRef{}, fmt.Errorf("empty title provided")
	}

	content, err := a.complete(ctx, a.config.Model, extractSongPrompt, rawTitle, 200)
	if err != nil {
		return core.SongRef{}, err
	}

	var response songInfoResponse
	if err := json.Unmarshal([]byte(stripFences(content)), &response); err != nil {
		a.logger.Error("Failed to parse Anthropic response",
			zap.Error(err),
			zap.String("content", content))
		return core.SongRef{}, fmt.Errorf("failed to parse Anthropic response: %w", err)
	}

	a.logger.Debug("Song info extracted",
		zap.String("artist", response.Artist),
		zap.String("title", response.Title))

	return core.SongRef{Artist: response.Artist, Title: response.Title}, nil
}

func (a *AnthropicClient) GenerateSongList(ctx context.Context, vibe string, count int) ([]core.SongRef, error) {
	if strings.TrimSpace(vibe) == "" {
		return nil, fmt.Errorf("empty vibe provided")
	}

	userPrompt := fmt.Sprintf("Generate a playlist of %d songs for the following vibe: %q", count, vibe)

	model := a.config.PlaylistModel
	if model == "" {
		model = a.config.Model
	}

	content, err := a.complete(ctx, model, generateListPrompt, userPrompt, 4000)
	if err != nil {
		return nil, err
	}

	var response songListResponse
	if err := json.Unmarshal([]byte(stripFences(content)), &response); err != nil {
		a.logger.Error("Failed to parse Anthropic response",
			zap.Error(err),
			zap.String("content", content))
		return nil, fmt.Errorf("failed to parse Anthropic response: %w", err)
	}

	songs := make([]core.SongRef, 0, len(response.Songs))
	for _, s := range response.Songs {
		if s.Title == "" {
			continue
		}
		songs = append(songs, core.SongRef{Artist: s.Artist, Title: s.Title})
	}

	a.logger.Debug("Playlist generated",
		zap.String("vibe", vibe),
		zap.Int("count", len(songs)))

	return songs, nil
}

func (a *AnthropicClient) complete(ctx context.Context, model, system, user string, maxTokens int64) (string, error) {
	if model == "" {
		model = anthropicDefaultModel
	}

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{{
			Type: "text",
			Text: system,
		}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
		Temperature: anthropic.Float(0.3),
	})
	if err != nil {
		return "", fmt.Errorf("Anthropic API call failed: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("no response from Anthropic")
	}

	return message.Content[0].Text, nil
}

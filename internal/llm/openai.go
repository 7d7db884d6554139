package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"

	"musicwizard/internal/core"
)

type OpenAIClient struct {
	config *core.LLMConfig
	logger *zap.Logger
	client *openai.Client
}

type songInfoResponse struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

type songListResponse struct {
	Songs []struct {
		Artist string `json:"artist"`
		Title  string `json:"title"`
	} `json:"songs"`
}

const (
	extractTemperature  = 0.0
	generateTemperature = 0.7
	maxTokensExtraction = 200
	maxTokensGeneration = 4000
	defaultModel        = "gpt-4o-mini"
)

func NewOpenAIClient(config *core.LLMConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	var opts []option.RequestOption
	opts = append(opts, option.WithAPIKey(config.APIKey))

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	client := openai.NewClient(opts...)

	return &OpenAIClient{
		config: config,
		logger: logger,
		client: &client,
	}, nil
}

func (o *OpenAIClient) ExtractSongInfo(ctx context.Context, rawTitle string) (core.SongRef, error) {
	if strings.TrimSpace(rawTitle) == "" {
		return core.SongRef{}, fmt.Errorf("empty title provided")
	}

	o.logger.Debug("Calling OpenAI for song info extraction",
		zap.String("raw_title", rawTitle),
		zap.String("model", o.config.Model))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(extractSongPrompt),
			openai.UserMessage(rawTitle),
		},
		Model:       o.getModel(o.config.Model),
		Temperature: openai.Float(extractTemperature),
		MaxTokens:   openai.Int(maxTokensExtraction),
	})
	if err != nil {
		o.logger.Error("OpenAI API call failed", zap.Error(err))
		return core.SongRef{}, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return core.SongRef{}, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content

	var response songInfoResponse
	if err := json.Unmarshal([]byte(stripFences(content)), &response); err != nil {
		o.logger.Error("Failed to parse OpenAI response",
			zap.Error(err),
			zap.String("content", content))
		return core.SongRef{}, fmt.Errorf("failed to parse OpenAI response: %w", err)
	}

	o.logger.Info("Song info extracted",
		zap.String("artist", response.Artist),
		zap.String("title", response.Title))

	return core.SongRef{Artist: response.Artist, Title: response.Title}, nil
}

func (o *OpenAIClient) GenerateSongList(ctx context.Context, vibe string, count int) ([]core.SongRef, error) {
	if strings.TrimSpace(vibe) == "" {
		return nil, fmt.Errorf("empty vibe provided")
	}

	userPrompt := fmt.Sprintf("Generate a playlist of %d songs for the following vibe: %q", count, vibe)

	o.logger.Debug("Calling OpenAI for playlist generation",
		zap.String("vibe", vibe),
		zap.Int("count", count),
		zap.String("model", o.config.PlaylistModel))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(generateListPrompt),
			openai.UserMessage(userPrompt),
		},
		Model:       o.getModel(o.config.PlaylistModel),
		Temperature: openai.Float(generateTemperature),
		MaxTokens:   openai.Int(maxTokensGeneration),
	})
	if err != nil {
		o.logger.Error("OpenAI API call failed", zap.Error(err))
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content

	var response songListResponse
	if err := json.Unmarshal([]byte(stripFences(content)), &response); err != nil {
		o.logger.Error("Failed to parse OpenAI response",
			zap.Error(err),
			zap.String("content", content))
		return nil, fmt.Errorf("failed to parse OpenAI response: %w", err)
	}

	songs := make([]core.SongRef, 0, len(response.Songs))
	for _, s := range response.Songs {
		if s.Title == "" {
			continue
		}
		songs = append(songs, core.SongRef{Artist: s.Artist, Title: s.Title})
	}

	o.logger.Info("Playlist generated",
		zap.String("vibe", vibe),
		zap.Int("requested", count),
		zap.Int("generated", len(songs)))

	return songs, nil
}

func (o *OpenAIClient) getModel(model string) shared.ChatModel {
	if model != "" {
		return model
	}
	return defaultModel
}

// stripFences removes a surrounding markdown code fence if the model added one.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}

const extractSongPrompt = `You are an expert at parsing song information. Extract the artist and song title from the YouTube video title the user sends.

Respond ONLY with a valid JSON object in this exact format:
{"artist": "Artist Name", "title": "Song Title"}

Rules:
1. If you cannot determine a field, set it to an empty string
2. Strip noise like "(Official Video)", "[HD]", "lyrics"
3. If you recognize the song yourself, use your knowledge. For example, for "eye of the tiger acapella beat drop" you know it is "Eye of the Tiger" by Survivor
4. For "Artist - Song (Official Video)", respond with {"artist": "Artist", "title": "Song"}`

const generateListPrompt = `You are a helpful playlist assistant. Your task is to generate a list of songs based on a user's request.

Respond ONLY with a valid JSON object that has a single key, "songs", containing an array of song objects. Each object must have two string keys: "artist" and "title".

Example:
{"songs": [{"artist": "Queen", "title": "Bohemian Rhapsody"}]}

Rules:
1. Only include real songs that exist
2. No duplicates
3. Match the requested number of songs exactly when possible`

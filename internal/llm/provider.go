// Package llm provides text-intelligence clients for song info extraction
// and AI playlist generation.
package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"musicwizard/internal/core"
)

// Provider wraps a concrete LLM client and enforces result invariants.
type Provider struct {
	config *core.LLMConfig
	logger *zap.Logger
	client Client
}

// Client is implemented by each backing LLM SDK.
type Client interface {
	ExtractSongInfo(ctx context.Context, rawTitle string) (core.SongRef, error)
	GenerateSongList(ctx context.Context, vibe string, count int) ([]core.SongRef, error)
}

func NewProvider(config *core.LLMConfig, logger *zap.Logger) (*Provider, error) {
	var client Client
	var err error

	switch config.Provider {
	case "openai":
		client, err = NewOpenAIClient(config, logger)
	case "anthropic":
		client, err = NewAnthropicClient(config, logger)
	case "none", "":
		client = &NoOpClient{}
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", config.Provider, err)
	}

	return &Provider{
		config: config,
		logger: logger,
		client: client,
	}, nil
}

func (p *Provider) ExtractSongInfo(ctx context.Context, rawTitle string) (core.SongRef, error) {
	return p.client.ExtractSongInfo(ctx, rawTitle)
}

func (p *Provider) GenerateSongList(ctx context.Context, vibe string, count int) ([]core.SongRef, error) {
	songs, err := p.client.GenerateSongList(ctx, vibe, count)
	if err != nil {
		return nil, err
	}

	if len(songs) > count {
		songs = songs[:count]
	}

	return songs, nil
}

// NoOpClient fails every call; used when no provider is configured.
type NoOpClient struct{}

func (n *NoOpClient) ExtractSongInfo(ctx context.Context, rawTitle string) (core.SongRef, error) {
	return core.SongRef{}, fmt.Errorf("LLM provider not configured")
}

func (n *NoOpClient) GenerateSongList(ctx context.Context, vibe string, count int) ([]core.SongRef, error) {
	return nil, fmt.Errorf("LLM provider not configured")
}

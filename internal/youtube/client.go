// Package youtube provides YouTube Data API integration for video search and
// playlist management.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"

	"musicwizard/internal/core"
	"musicwizard/pkg/fuzzy"
)

const (
	// FilePermission is the permission for token files
	FilePermission = 0600
	// MaxSearchResults limits video search results; only the top match is used
	MaxSearchResults = 1
	// PlaylistPrivacy is the visibility of created playlists
	PlaylistPrivacy = "unlisted"
	// PlaylistLanguage is the default language tag of created playlists
	PlaylistLanguage = "en"
)

type Client struct {
	config     *core.YouTubeConfig
	logger     *zap.Logger
	service    *youtubeapi.Service
	normalizer *fuzzy.Normalizer
}

type TokenData struct {
	Token *oauth2.Token `json:"token"`
}

func NewClient(config *core.YouTubeConfig, logger *zap.Logger) *Client {
	return &Client{
		config:     config,
		logger:     logger,
		normalizer: fuzzy.NewNormalizer(),
	}
}

// Authenticate builds an API service from the saved OAuth token. It never
// starts an interactive flow; run Authorize (the auth subcommand) first.
func (c *Client) Authenticate(ctx context.Context) error {
	oauthConfig, err := c.loadOAuthConfig()
	if err != nil {
		return fmt.Errorf("loading client secret: %w: %v", core.ErrAuthUnavailable, err)
	}

	token, err := c.loadToken()
	if err != nil {
		c.logger.Warn("No saved YouTube token found", zap.String("path", c.config.TokenPath))
		return fmt.Errorf("loading token: %w: %v", core.ErrAuthUnavailable, err)
	}

	service, err := youtubeapi.NewService(ctx,
		option.WithHTTPClient(oauthConfig.Client(ctx, token)))
	if err != nil {
		return fmt.Errorf("creating YouTube service: %w", err)
	}

	c.service = service
	c.logger.Info("YouTube client authenticated")
	return nil
}

// Authorize runs the interactive console OAuth flow and persists the token.
func (c *Client) Authorize(ctx context.Context) error {
	oauthConfig, err := c.loadOAuthConfig()
	if err != nil {
		return fmt.Errorf("loading client secret: %w", err)
	}

	authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	fmt.Printf("Please visit the following URL to authorize the application:\n%s\n", authURL)
	fmt.Print("Enter the authorization code: ")

	var code string
	if _, err := fmt.Scanln(&code); err != nil {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code for token: %w", err)
	}

	if err := c.saveToken(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	c.logger.Info("OAuth flow completed successfully", zap.String("path", c.config.TokenPath))
	return nil
}

// Search returns the video ID of the top result for the given song.
func (c *Client) Search(ctx context.Context, song core.SongRef) (string, error) {
	if c.service == nil {
		return "", fmt.Errorf("client not authenticated")
	}

	query := c.buildQuery(song)

	call := c.service.Search.List([]string{"snippet"}).
		Q(query).
		MaxResults(MaxSearchResults).
		Type("video").
		Context(ctx)

	response, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}

	if len(response.Items) == 0 || response.Items[0].Id == nil {
		c.logger.Debug("No videos found", zap.String("query", query))
		return "", core.ErrNotFound
	}

	videoID := response.Items[0].Id.VideoId
	if videoID == "" {
		return "", core.ErrNotFound
	}

	c.logger.Debug("Video found",
		zap.String("query", query),
		zap.String("video_id", videoID))

	return videoID, nil
}

func (c *Client) CreatePlaylist(ctx context.Context, title, description string) (string, error) {
	if c.service == nil {
		return "", fmt.Errorf("client not authenticated")
	}

	playlist := &youtubeapi.Playlist{
		Snippet: &youtubeapi.PlaylistSnippet{
			Title:           title,
			Description:     description,
			DefaultLanguage: PlaylistLanguage,
		},
		Status: &youtubeapi.PlaylistStatus{
			PrivacyStatus: PlaylistPrivacy,
		},
	}

	created, err := c.service.Playlists.Insert([]string{"snippet", "status"}, playlist).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("playlist creation failed: %w", err)
	}

	c.logger.Info("Playlist created",
		zap.String("title", title),
		zap.String("playlist_id", created.Id))

	return created.Id, nil
}

func (c *Client) AddToPlaylist(ctx context.Context, playlistID, videoID string) error {
	if c.service == nil {
		return fmt.Errorf("client not authenticated")
	}

	item := &youtubeapi.PlaylistItem{
		Snippet: &youtubeapi.PlaylistItemSnippet{
			PlaylistId: playlistID,
			ResourceId: &youtubeapi.ResourceId{
				Kind:    "youtube#video",
				VideoId: videoID,
			},
		},
	}

	if _, err := c.service.PlaylistItems.Insert([]string{"snippet"}, item).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("adding video %s: %w", videoID, err)
	}

	return nil
}

func (c *Client) WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func (c *Client) PlaylistURL(playlistID string) string {
	return "https://www.youtube.com/playlist?list=" + playlistID
}

// buildQuery joins artist and title into a search query, skipping the
// placeholder artist used for free-text searches.
func (c *Client) buildQuery(song core.SongRef) string {
	artist := strings.TrimSpace(strings.TrimPrefix(song.Artist, "#"))
	title := strings.TrimSpace(song.Title)

	var query string
	if artist == "" {
		query = title
	} else {
		query = artist + " " + title
	}

	return c.normalizer.NormalizeQuery(query)
}

func (c *Client) loadOAuthConfig() (*oauth2.Config, error) {
	data, err := os.ReadFile(c.config.ClientSecretPath)
	if err != nil {
		return nil, err
	}

	return google.ConfigFromJSON(data, youtubeapi.YoutubeScope)
}

func (c *Client) loadToken() (*oauth2.Token, error) {
	file, err := os.Open(c.config.TokenPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	var tokenData TokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return nil, err
	}

	return tokenData.Token, nil
}

func (c *Client) saveToken(token *oauth2.Token) error {
	tokenData := TokenData{Token: token}

	data, err := json.MarshalIndent(tokenData, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.config.TokenPath, data, FilePermission)
}

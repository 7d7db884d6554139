package youtube

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"musicwizard/internal/core"
)

func TestBuildQuery(t *testing.T) {
	client := NewClient(&core.YouTubeConfig{}, zap.NewNop())

	tests := []struct {
		name     string
		song     core.SongRef
		expected string
	}{
		{"artist and title", core.SongRef{Artist: "Queen", Title: "Bohemian Rhapsody"}, "Queen Bohemian Rhapsody"},
		{"placeholder artist", core.SongRef{Artist: "# ", Title: "eye of the tiger"}, "eye of the tiger"},
		{"empty artist", core.SongRef{Artist: "", Title: "Believer"}, "Believer"},
		{"whitespace padding", core.SongRef{Artist: " Muse ", Title: " Uprising "}, "Muse Uprising"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := client.buildQuery(tt.song); got != tt.expected {
				t.Errorf("buildQuery(%+v) = %q, expected %q", tt.song, got, tt.expected)
			}
		})
	}
}

func TestURLs(t *testing.T) {
	client := NewClient(&core.YouTubeConfig{}, zap.NewNop())

	if got := client.WatchURL("abc123"); got != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("WatchURL() = %q", got)
	}
	if got := client.PlaylistURL("PLxyz"); got != "https://www.youtube.com/playlist?list=PLxyz" {
		t.Errorf("PlaylistURL() = %q", got)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token.json")
	client := NewClient(&core.YouTubeConfig{TokenPath: tokenPath}, zap.NewNop())

	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
	}

	if err := client.saveToken(token); err != nil {
		t.Fatalf("saveToken() error = %v", err)
	}

	loaded, err := client.loadToken()
	if err != nil {
		t.Fatalf("loadToken() error = %v", err)
	}

	if loaded.AccessToken != token.AccessToken || loaded.RefreshToken != token.RefreshToken {
		t.Errorf("loadToken() = %+v, expected %+v", loaded, token)
	}
}

func TestLoadTokenMissing(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "missing.json")
	client := NewClient(&core.YouTubeConfig{TokenPath: tokenPath}, zap.NewNop())

	if _, err := client.loadToken(); err == nil {
		t.Error("loadToken() expected error for missing file")
	}
}

package core

import (
	"time"
)

type Config struct {
	Telegram TelegramConfig
	YouTube  YouTubeConfig
	LLM      LLMConfig
	Genius   GeniusConfig
	Fetch    FetchConfig
	Server   ServerConfig
	Log      LogConfig
	App      AppConfig
}

type TelegramConfig struct {
	BotToken string
	Enabled  bool
}

type YouTubeConfig struct {
	ClientSecretPath string
	TokenPath        string
}

type LLMConfig struct {
	Provider      string
	Model         string
	PlaylistModel string
	APIKey        string
	BaseURL       string
}

type GeniusConfig struct {
	AccessToken string
	TimeoutSecs int
}

type FetchConfig struct {
	Binary              string
	AudioQuality        string
	MetadataTimeoutSecs int
	DownloadTimeoutSecs int
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	DefaultLanguage     string
	MaxSongCount        int
	MaxSendFileMB       int64
	TokenTTLSecs        int
	AppendDelaySecs     int
	FloodLimitPerMinute int
	SessionQueueSize    int
	AICallTimeoutSecs   int
}

const (
	// DefaultMaxSongCount bounds AI playlist length requests.
	DefaultMaxSongCount = 69
	// DefaultMaxSendFileMB is the largest audio file the transport accepts.
	DefaultMaxSendFileMB = 49
	// DefaultFloodLimitPerMinute caps inbound events per user per minute.
	DefaultFloodLimitPerMinute = 20
)

func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			Enabled: true,
		},
		YouTube: YouTubeConfig{
			ClientSecretPath: "./client_secret.json",
			TokenPath:        "./youtube_token.json",
		},
		LLM: LLMConfig{
			Provider:      "openai",
			Model:         "gpt-4o-mini",
			PlaylistModel: "gpt-4o",
		},
		Genius: GeniusConfig{
			TimeoutSecs: 15,
		},
		Fetch: FetchConfig{
			Binary:              "yt-dlp",
			AudioQuality:        "perfect",
			MetadataTimeoutSecs: 60,
			DownloadTimeoutSecs: 300,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		App: AppConfig{
			DefaultLanguage:     "en",
			MaxSongCount:        DefaultMaxSongCount,
			MaxSendFileMB:       DefaultMaxSendFileMB,
			TokenTTLSecs:        3600,
			AppendDelaySecs:     1,
			FloodLimitPerMinute: DefaultFloodLimitPerMinute,
			SessionQueueSize:    8,
			AICallTimeoutSecs:   60,
		},
	}
}

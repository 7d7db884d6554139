// Package main provides the MusicWizard CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"musicwizard/internal/chat"
	"musicwizard/internal/chat/telegram"
	"musicwizard/internal/core"
	"musicwizard/internal/fetch"
	httpserver "musicwizard/internal/http"
	"musicwizard/internal/i18n"
	"musicwizard/internal/llm"
	"musicwizard/internal/lyrics"
	"musicwizard/internal/store"
	"musicwizard/internal/youtube"
)

const defaultServerHost = "0.0.0.0"

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "musicwizard",
	Short: "MusicWizard - chat-driven music assistant",
	Long: `MusicWizard is a Telegram bot that downloads single songs from YouTube,
looks up lyrics, and builds AI-curated playlists (uploaded to YouTube or
delivered as MP3 files).`,
	RunE: runMusicWizard,
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Run the interactive YouTube OAuth flow and save the token",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		client := youtube.NewClient(&config.YouTube, logger.Named("youtube"))
		return client.Authorize(ctx)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(authCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("telegram-enabled", true, "Enable Telegram integration")
	rootCmd.PersistentFlags().String("telegram-bot-token", "", "Telegram bot token")
	rootCmd.PersistentFlags().String("youtube-client-secret-path", "./client_secret.json", "YouTube OAuth client secret file")
	rootCmd.PersistentFlags().String("youtube-token-path", "./youtube_token.json", "YouTube OAuth token file")
	rootCmd.PersistentFlags().String("llm-provider", "openai", "LLM provider (openai, anthropic, none)")
	rootCmd.PersistentFlags().String("llm-model", "", "LLM model for song info extraction")
	rootCmd.PersistentFlags().String("llm-playlist-model", "", "LLM model for playlist generation")
	rootCmd.PersistentFlags().String("llm-api-key", "", "LLM API key")
	rootCmd.PersistentFlags().String("llm-base-url", "", "LLM API base URL override")
	rootCmd.PersistentFlags().String("genius-access-token", "", "Genius API access token for lyrics")
	rootCmd.PersistentFlags().Int("genius-timeout-secs", 0, "Genius HTTP timeout in seconds (0 uses the default)")
	rootCmd.PersistentFlags().String("fetch-binary", "yt-dlp", "Audio extraction binary")
	rootCmd.PersistentFlags().String("audio-quality", "perfect", "Audio quality (perfect, high, medium, low)")
	rootCmd.PersistentFlags().Int("metadata-timeout-secs", 0, "Metadata probe timeout in seconds (0 uses the default)")
	rootCmd.PersistentFlags().Int("download-timeout-secs", 0, "Audio download timeout in seconds (0 uses the default)")
	rootCmd.PersistentFlags().String("server-host", defaultServerHost, "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", 8080, "HTTP server port")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	rootCmd.PersistentFlags().String("language", i18n.DefaultLanguage, fmt.Sprintf("Default bot language (%s)", supportedLangs))
	rootCmd.PersistentFlags().Int("max-song-count", core.DefaultMaxSongCount, "Maximum songs per AI playlist")
	rootCmd.PersistentFlags().Int("flood-limit-per-minute", core.DefaultFloodLimitPerMinute, "Maximum events per user per minute")
	rootCmd.PersistentFlags().Int("token-ttl-secs", 3600, "Lyrics button token lifetime in seconds")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix("MUSICWIZARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureTelegram(cfg)
	configureYouTube(cfg)
	configureLLM(cfg)
	configureGenius(cfg)
	configureFetch(cfg)
	configureServer(cfg)
	configureApp(cfg)

	return cfg
}

func configureTelegram(cfg *core.Config) {
	cfg.Telegram.Enabled = viper.GetBool("telegram-enabled")
	cfg.Telegram.BotToken = viper.GetString("telegram-bot-token")
}

func configureYouTube(cfg *core.Config) {
	if path := viper.GetString("youtube-client-secret-path"); path != "" {
		cfg.YouTube.ClientSecretPath = path
	}
	if path := viper.GetString("youtube-token-path"); path != "" {
		cfg.YouTube.TokenPath = path
	}
}

func configureLLM(cfg *core.Config) {
	cfg.LLM.Provider = viper.GetString("llm-provider")
	if model := viper.GetString("llm-model"); model != "" {
		cfg.LLM.Model = model
	}
	if model := viper.GetString("llm-playlist-model"); model != "" {
		cfg.LLM.PlaylistModel = model
	}
	cfg.LLM.APIKey = viper.GetString("llm-api-key")
	cfg.LLM.BaseURL = viper.GetString("llm-base-url")
}

func configureGenius(cfg *core.Config) {
	cfg.Genius.AccessToken = viper.GetString("genius-access-token")
	if secs := viper.GetInt("genius-timeout-secs"); secs > 0 {
		cfg.Genius.TimeoutSecs = secs
	}
}

func configureFetch(cfg *core.Config) {
	if binary := viper.GetString("fetch-binary"); binary != "" {
		cfg.Fetch.Binary = binary
	}
	if quality := viper.GetString("audio-quality"); quality != "" {
		cfg.Fetch.AudioQuality = quality
	}
	if secs := viper.GetInt("metadata-timeout-secs"); secs > 0 {
		cfg.Fetch.MetadataTimeoutSecs = secs
	}
	if secs := viper.GetInt("download-timeout-secs"); secs > 0 {
		cfg.Fetch.DownloadTimeoutSecs = secs
	}
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Log.Level = viper.GetString("log-level")
}

func configureApp(cfg *core.Config) {
	cfg.App.DefaultLanguage = viper.GetString("language")
	if cfg.App.DefaultLanguage == "" {
		cfg.App.DefaultLanguage = i18n.DefaultLanguage
	}

	supported := false
	for _, lang := range i18n.GetSupportedLanguages() {
		if cfg.App.DefaultLanguage == lang {
			supported = true
			break
		}
	}
	if !supported {
		fmt.Fprintf(os.Stderr, "Warning: Unsupported language '%s', falling back to '%s'\n",
			cfg.App.DefaultLanguage, i18n.DefaultLanguage)
		cfg.App.DefaultLanguage = i18n.DefaultLanguage
	}

	if count := viper.GetInt("max-song-count"); count > 0 {
		cfg.App.MaxSongCount = count
	}
	cfg.App.FloodLimitPerMinute = viper.GetInt("flood-limit-per-minute")
	if cfg.App.FloodLimitPerMinute <= 0 {
		cfg.App.FloodLimitPerMinute = core.DefaultFloodLimitPerMinute
	}
	if ttl := viper.GetInt("token-ttl-secs"); ttl > 0 {
		cfg.App.TokenTTLSecs = ttl
	}
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func validateConfig() error {
	if config.Telegram.Enabled && config.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required (MUSICWIZARD_TELEGRAM_BOT_TOKEN)")
	}
	if config.LLM.Provider != "none" && config.LLM.Provider != "" && config.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key is required for provider %q (MUSICWIZARD_LLM_API_KEY)", config.LLM.Provider)
	}
	return nil
}

func runMusicWizard(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting MusicWizard",
		zap.String("llm_provider", config.LLM.Provider),
		zap.String("audio_quality", config.Fetch.AudioQuality),
		zap.Bool("telegram_enabled", config.Telegram.Enabled))

	if err := validateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	svcs, err := initializeServices()
	if err != nil {
		return err
	}

	return runServices(ctx, svcs)
}

type services struct {
	frontend   chat.Frontend
	httpServer *httpserver.Server
	dispatcher *core.Dispatcher
}

func initializeServices() (*services, error) {
	frontend, err := createChatFrontend()
	if err != nil {
		return nil, err
	}

	llmProvider, err := llm.NewProvider(&config.LLM, logger.Named("llm"))
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	music := youtube.NewClient(&config.YouTube, logger.Named("youtube"))
	fetcher := fetch.NewDownloader(&config.Fetch, logger.Named("fetch"))
	lyricsClient := lyrics.NewClient(&config.Genius, logger.Named("lyrics"))
	tokens := store.NewTokenStore[core.SongRef](1024,
		time.Duration(config.App.TokenTTLSecs)*time.Second)

	httpServer := httpserver.NewServer(&config.Server, logger.Named("http"))
	dispatcher := core.NewDispatcher(config, frontend, music, fetcher, llmProvider,
		lyricsClient, tokens, httpServer, logger.Named("dispatcher"))

	return &services{
		frontend:   frontend,
		httpServer: httpServer,
		dispatcher: dispatcher,
	}, nil
}

func createChatFrontend() (chat.Frontend, error) {
	if !config.Telegram.Enabled {
		return nil, fmt.Errorf("no chat frontend enabled - enable Telegram")
	}

	frontend := telegram.NewFrontend(&config.Telegram, logger.Named("telegram"))
	logger.Info("Using Telegram as chat frontend",
		zap.String("default_language", config.App.DefaultLanguage))
	return frontend, nil
}

func runServices(ctx context.Context, svcs *services) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svcs.httpServer.Start(gCtx)
	})

	g.Go(func() error {
		return svcs.dispatcher.Start(gCtx)
	})

	logger.Info("MusicWizard started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("MusicWizard stopped with error", zap.Error(err))
		return err
	}

	logger.Info("MusicWizard stopped gracefully")
	return nil
}

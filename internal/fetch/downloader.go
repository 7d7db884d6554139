// Package fetch downloads audio from media links by shelling out to yt-dlp.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"musicwizard/internal/core"
)

// qualityMap translates the configured audio quality to the yt-dlp
// VBR scale, where 0 is best and 9 is worst.
var qualityMap = map[string]string{
	"perfect": "0",
	"high":    "3",
	"medium":  "6",
	"low":     "9",
}

type Downloader struct {
	config *core.FetchConfig
	logger *zap.Logger
}

func NewDownloader(config *core.FetchConfig, logger *zap.Logger) *Downloader {
	return &Downloader{
		config: config,
		logger: logger,
	}
}

// Fetch probes the link for metadata, then downloads the audio as mp3 into
// destDir. The caller owns destDir and its cleanup.
func (d *Downloader) Fetch(ctx context.Context, url, destDir string) (*core.MediaItem, error) {
	metadata, err := d.probe(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", url, err)
	}

	if err := d.download(ctx, url, destDir); err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}

	audioPath, err := d.findAudioFile(destDir)
	if err != nil {
		return nil, err
	}

	d.logger.Info("Audio downloaded",
		zap.String("url", url),
		zap.String("path", audioPath))

	return &core.MediaItem{
		Metadata:  metadata,
		AudioPath: audioPath,
	}, nil
}

// probe runs yt-dlp in metadata-only mode and parses the JSON dump.
func (d *Downloader) probe(ctx context.Context, url string) (map[string]any, error) {
	timeout := time.Duration(d.config.MetadataTimeoutSecs) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.config.Binary, probeArgs(url)...)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("metadata dump failed: %w", err)
	}

	var metadata map[string]any
	if err := json.Unmarshal(output, &metadata); err != nil {
		return nil, fmt.Errorf("parsing metadata dump: %w", err)
	}

	return metadata, nil
}

func (d *Downloader) download(ctx context.Context, url, destDir string) error {
	timeout := time.Duration(d.config.DownloadTimeoutSecs) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := downloadArgs(url, destDir, audioQuality(d.config.AudioQuality))

	d.logger.Debug("Running downloader",
		zap.String("binary", d.config.Binary),
		zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, d.config.Binary, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	return nil
}

// findAudioFile returns the first file yt-dlp left in destDir.
func (d *Downloader) findAudioFile(destDir string) (string, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", fmt.Errorf("reading download dir: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			return filepath.Join(destDir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("downloader finished, but no file was found in %s", destDir)
}

func probeArgs(url string) []string {
	return []string{"--dump-json", "--no-playlist", url}
}

func downloadArgs(url, destDir, quality string) []string {
	outputTemplate := filepath.Join(destDir, "%(title)s.%(ext)s")
	return []string{
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", quality,
		"--output", outputTemplate,
		"--no-playlist",
		url,
	}
}

func audioQuality(configured string) string {
	if q, ok := qualityMap[configured]; ok {
		return q
	}
	return qualityMap["perfect"]
}

package core

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"musicwizard/internal/chat"
	"musicwizard/internal/i18n"
)

// deliverSong runs the single-song fetch pipeline: fetch the audio into a
// fresh scoped temp directory, derive display tags, send the file, and offer
// a lyrics button keyed by a fresh correlation token. The temp directory is
// removed on every exit path. A returned error is a hard failure; the caller
// decides whether it resets the conversation or is isolated.
func (d *Dispatcher) deliverSong(ctx context.Context, sess *Session, loc *i18n.Localizer, url string) error {
	progressID := d.sendText(ctx, sess, loc.T("status.link_received"))

	d.editOrSend(ctx, sess, progressID, loc.T("status.downloading"))

	song, err := d.fetchAndSend(ctx, sess, loc, url, progressID)
	if err != nil {
		d.editOrSend(ctx, sess, progressID, loc.T("error.generic", err.Error()))
		return err
	}

	if progressID != "" {
		if err := d.frontend.DeleteMessage(ctx, sess.ChatID, progressID); err != nil {
			d.logger.Debug("Failed to delete progress message", zap.Error(err))
		}
	}

	token := d.tokens.Mint(song)
	rows := [][]chat.Button{
		{{Label: loc.T("button.get_lyrics"), Action: ActionLyricsPrefix + token}},
		{{Label: loc.T("button.main_menu"), Action: ActionMainMenu}},
	}
	if _, err := d.frontend.SendButtons(ctx, sess.ChatID, loc.T("prompt.ask_lyrics"), rows); err != nil {
		return fmt.Errorf("offering lyrics: %w", err)
	}

	return nil
}

// fetchAndSend downloads the audio for url and uploads it with derived
// title/performer tags. It owns the temp directory for the whole operation.
// When progressID is non-empty the status message is edited along the way.
func (d *Dispatcher) fetchAndSend(ctx context.Context, sess *Session, loc *i18n.Localizer, url, progressID string) (SongRef, error) {
	dir, err := os.MkdirTemp("", "musicwizard-")
	if err != nil {
		return SongRef{}, fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			d.logger.Warn("Failed to remove temp dir",
				zap.String("dir", dir), zap.Error(err))
		}
	}()

	item, err := d.fetcher.Fetch(ctx, url, dir)
	if err != nil {
		return SongRef{}, err
	}

	song := d.deriveSongTags(ctx, item)

	info, err := os.Stat(item.AudioPath)
	if err != nil {
		return SongRef{}, fmt.Errorf("checking audio file: %w", err)
	}
	if maxBytes := d.config.App.MaxSendFileMB << 20; info.Size() > maxBytes {
		return SongRef{}, fmt.Errorf("audio file is %d bytes, above the %d MB send limit",
			info.Size(), d.config.App.MaxSendFileMB)
	}

	if progressID != "" {
		d.editOrSend(ctx, sess, progressID, loc.T("status.download_complete"))
	}

	audio := &chat.Audio{
		Path:      item.AudioPath,
		Caption:   fmt.Sprintf("%s by %s", song.Title, song.Artist),
		Title:     song.Title,
		Performer: song.Artist,
	}
	if err := d.frontend.SendAudio(ctx, sess.ChatID, audio); err != nil {
		return SongRef{}, fmt.Errorf("sending audio: %w", err)
	}

	return song, nil
}

// deriveSongTags derives display title and artist for a fetched item. The
// fallback order is AI extraction, then platform metadata, then the raw
// platform title. AI failure is not fatal here.
func (d *Dispatcher) deriveSongTags(ctx context.Context, item *MediaItem) SongRef {
	rawTitle := metaString(item, "title")
	if rawTitle == "" {
		rawTitle = "Unknown Title"
	}

	var extracted SongRef
	aiCtx, cancel := d.aiContext(ctx)
	defer cancel()
	if ref, err := d.intel.ExtractSongInfo(aiCtx, rawTitle); err != nil {
		d.logger.Warn("Song info extraction failed",
			zap.String("raw_title", rawTitle), zap.Error(err))
		d.metrics.RecordAICall("extract_song", "failed")
	} else {
		extracted = ref
		d.metrics.RecordAICall("extract_song", "success")
	}

	title := firstNonEmpty(extracted.Title, metaString(item, "track"), rawTitle)
	artist := firstNonEmpty(extracted.Artist, metaString(item, "artist"), "Unknown Artist")

	return SongRef{Artist: artist, Title: title}
}

func metaString(item *MediaItem, key string) string {
	if value, ok := item.Metadata[key].(string); ok {
		return value
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

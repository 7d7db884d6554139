package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"musicwizard/internal/chat"
	"musicwizard/internal/i18n"
)

// generateSongList asks the text-intelligence adapter for the draft's song
// list. An empty or failed result aborts the playlist flow back to the menu.
func (d *Dispatcher) generateSongList(ctx context.Context, sess *Session, loc *i18n.Localizer) {
	draft := sess.Draft

	aiCtx, cancel := d.aiContext(ctx)
	defer cancel()
	songs, err := d.intel.GenerateSongList(aiCtx, draft.Vibe, draft.SongCount)
	if err != nil || len(songs) == 0 {
		if err != nil {
			d.logger.Error("Song list generation failed",
				zap.String("vibe", draft.Vibe), zap.Error(err))
		}
		d.metrics.RecordAICall("generate_list", "failed")
		d.metrics.RecordError("intelligence", "generate")
		sess.Draft = nil
		d.sendText(ctx, sess, loc.T("error.ai_failed"))
		d.showMenu(ctx, sess, loc)
		return
	}

	d.metrics.RecordAICall("generate_list", "success")
	draft.Songs = songs
	d.sendText(ctx, sess, loc.T("playlist.generated_list", formatSongList(songs)))

	rows := [][]chat.Button{
		{{Label: loc.T("button.upload_youtube"), Action: ActionPlaylistUpload}},
		{{Label: loc.T("button.download_mp3s"), Action: ActionPlaylistDownload}},
		{{Label: loc.T("button.main_menu"), Action: ActionMainMenu}},
	}
	if _, err := d.frontend.SendButtons(ctx, sess.ChatID, loc.T("prompt.playlist_choice"), rows); err != nil {
		d.logger.Error("Failed to send playlist choice", zap.Error(err))
	}

	sess.State = StatePlaylistDecision
}

// runUploadBranch creates a remote playlist and appends every resolvable
// song with progress reporting. Auth and creation failures abort the whole
// branch; a song that cannot be resolved is skipped silently.
func (d *Dispatcher) runUploadBranch(ctx context.Context, sess *Session, loc *i18n.Localizer) {
	draft := sess.Draft
	defer func() {
		sess.Draft = nil
		d.showMenu(ctx, sess, loc)
	}()

	d.sendText(ctx, sess, loc.T("status.creating"))

	if err := d.music.Authenticate(ctx); err != nil {
		d.logger.Error("Playlist authentication failed", zap.Error(err))
		d.metrics.RecordPlaylist("upload", "auth_failed")
		d.sendText(ctx, sess, loc.T("error.auth_unavailable"))
		return
	}

	playlistID, err := d.music.CreatePlaylist(ctx, draft.Title, draft.Description)
	if err != nil {
		d.logger.Error("Playlist creation failed",
			zap.String("title", draft.Title), zap.Error(err))
		d.metrics.RecordPlaylist("upload", "create_failed")
		d.sendText(ctx, sess, loc.T("error.create_failed"))
		return
	}

	total := len(draft.Songs)
	progressID := d.sendText(ctx, sess, loc.T("status.created", total))

	for i, song := range draft.Songs {
		if err := d.appendSong(ctx, playlistID, song); err != nil {
			// Per-song failures never abort the batch.
			d.logger.Warn("Skipping song",
				zap.String("title", song.Title), zap.Error(err))
		} else {
			d.editOrSend(ctx, sess, progressID,
				loc.T("status.added_song", i+1, total, song.Title))
		}

		if err := d.limiter.Wait(ctx); err != nil {
			d.metrics.RecordPlaylist("upload", "aborted")
			return
		}
	}

	d.metrics.RecordPlaylist("upload", "ok")
	d.editOrSend(ctx, sess, progressID,
		loc.T("playlist.ready", d.music.PlaylistURL(playlistID)))
}

func (d *Dispatcher) appendSong(ctx context.Context, playlistID string, song SongRef) error {
	videoID, err := d.music.Search(ctx, song)
	if err != nil {
		return fmt.Errorf("resolving: %w", err)
	}
	if err := d.music.AddToPlaylist(ctx, playlistID, videoID); err != nil {
		return fmt.Errorf("appending: %w", err)
	}
	return nil
}

// runDownloadBranch resolves and downloads each draft song sequentially,
// delivering each file as it completes. Failures are isolated per song so
// one bad song never destroys the batch.
func (d *Dispatcher) runDownloadBranch(ctx context.Context, sess *Session, loc *i18n.Localizer, ev *chat.Event) {
	draft := sess.Draft
	defer func() {
		sess.Draft = nil
		d.showMenu(ctx, sess, loc)
	}()

	if err := d.music.Authenticate(ctx); err != nil {
		d.logger.Error("Download authentication failed", zap.Error(err))
		d.metrics.RecordPlaylist("download", "auth_failed")
		d.editOrSend(ctx, sess, ev.MessageID, loc.T("error.auth_unavailable"))
		return
	}

	total := len(draft.Songs)
	progressID := ev.MessageID

	for i, song := range draft.Songs {
		d.editOrSend(ctx, sess, progressID,
			loc.T("status.downloading_song", i+1, total, song.Title))

		videoID, err := d.music.Search(ctx, song)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				d.logger.Error("Song resolution failed",
					zap.String("title", song.Title), zap.Error(err))
			}
			d.sendText(ctx, sess, loc.T("error.song_not_found", song.Title))
			continue
		}

		url := d.music.WatchURL(videoID)
		if _, err := d.fetchAndSend(ctx, sess, loc, url, ""); err != nil {
			d.logger.Error("Song download failed",
				zap.String("title", song.Title),
				zap.String("url", url),
				zap.Error(err))
			d.metrics.RecordDownload("failed")
			d.sendText(ctx, sess, loc.T("error.download_failed", song.Title))
			continue
		}
		d.metrics.RecordDownload("ok")
	}

	d.metrics.RecordPlaylist("download", "ok")
	d.editOrSend(ctx, sess, progressID, loc.T("status.songs_sent"))
}

func formatSongList(songs []SongRef) string {
	var b strings.Builder
	for i, song := range songs {
		fmt.Fprintf(&b, "%d. %s by %s\n", i+1, song.Title, song.Artist)
	}
	return strings.TrimRight(b.String(), "\n")
}

package core

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"musicwizard/internal/chat"
	"musicwizard/internal/flood"
	"musicwizard/internal/i18n"
	"musicwizard/pkg/text"
)

// Button action tags understood by the dialogue engine.
const (
	ActionLangEnglish      = "lang_en"
	ActionLangRussian      = "lang_ru"
	ActionDownloadSong     = "download_song"
	ActionCreatePlaylist   = "create_playlist"
	ActionMainMenu         = "main_menu"
	ActionPlaylistUpload   = "playlist_upload"
	ActionPlaylistDownload = "playlist_download"
	// ActionLyricsPrefix prefixes a correlation token on the lyrics button.
	ActionLyricsPrefix = "lyrics_"
)

// MetricsRecorder receives operational counters from the dispatcher.
type MetricsRecorder interface {
	RecordEvent(kind, status string)
	RecordDownload(status string)
	RecordLyricsLookup(status string)
	RecordPlaylist(branch, status string)
	RecordAICall(operation, status string)
	RecordError(component, errorType string)
	RecordTurnDuration(state string, duration time.Duration)
	SetActiveSessions(count int)
}

type noopMetrics struct{}

func (noopMetrics) RecordEvent(string, string)               {}
func (noopMetrics) RecordDownload(string)                    {}
func (noopMetrics) RecordLyricsLookup(string)                {}
func (noopMetrics) RecordPlaylist(string, string)            {}
func (noopMetrics) RecordAICall(string, string)              {}
func (noopMetrics) RecordError(string, string)               {}
func (noopMetrics) RecordTurnDuration(string, time.Duration) {}
func (noopMetrics) SetActiveSessions(int)                    {}

// Dispatcher is the dialogue engine. It receives normalized events from the
// chat frontend, routes each through its user's session worker, and drives
// the per-session state machine.
type Dispatcher struct {
	config   *Config
	frontend chat.Frontend
	music    MusicService
	fetcher  Fetcher
	intel    Intelligence
	lyrics   LyricsProvider
	tokens   TokenStore
	metrics  MetricsRecorder
	logger   *zap.Logger

	sessions  *SessionStore
	floodgate *flood.Floodgate
	parser    *text.Parser
	limiter   *rate.Limiter
}

func NewDispatcher(
	config *Config,
	frontend chat.Frontend,
	music MusicService,
	fetcher Fetcher,
	intel Intelligence,
	lyrics LyricsProvider,
	tokens TokenStore,
	metrics MetricsRecorder,
	logger *zap.Logger,
) *Dispatcher {
	if metrics == nil {
		metrics = noopMetrics{}
	}

	d := &Dispatcher{
		config:    config,
		frontend:  frontend,
		music:     music,
		fetcher:   fetcher,
		intel:     intel,
		lyrics:    lyrics,
		tokens:    tokens,
		metrics:   metrics,
		logger:    logger,
		floodgate: flood.New(config.App.FloodLimitPerMinute),
		parser:    text.NewParser(),
		limiter: rate.NewLimiter(
			rate.Every(time.Duration(config.App.AppendDelaySecs)*time.Second), 1),
	}
	d.sessions = NewSessionStore(
		config.App.SessionQueueSize,
		config.App.DefaultLanguage,
		d.handleTurn,
		logger.Named("sessions"),
	)

	return d
}

// Start begins consuming events from the frontend. It blocks until the
// context is cancelled or the frontend fails.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info("Starting dialogue engine")
	defer d.floodgate.Stop()

	if err := d.frontend.Start(ctx); err != nil {
		return err
	}

	return d.frontend.Listen(ctx, func(ev *chat.Event) {
		if !d.floodgate.Allow(ev.UserID) {
			d.logger.Warn("Flood limit exceeded, dropping event",
				zap.String("user_id", ev.UserID))
			d.metrics.RecordEvent(eventKindLabel(ev.Kind), "flooded")
			return
		}
		d.sessions.Dispatch(ctx, ev)
	})
}

// handleTurn processes one inbound event to completion. It runs on the
// session's worker goroutine, never concurrently for the same session.
func (d *Dispatcher) handleTurn(ctx context.Context, sess *Session, ev *chat.Event) {
	start := time.Now()
	stateBefore := sess.State
	sess.ChatID = ev.ChatID

	loc := i18n.NewLocalizer(sess.Locale)

	switch ev.Kind {
	case chat.EventRestart:
		d.restart(ctx, sess)
	case chat.EventCancel:
		d.cancel(ctx, sess, loc)
	case chat.EventButton:
		if ev.Action == ActionMainMenu {
			sess.Draft = nil
			d.showMenu(ctx, sess, loc)
		} else {
			d.handleButton(ctx, sess, loc, ev)
		}
	case chat.EventText:
		d.handleText(ctx, sess, loc, ev)
	}

	d.metrics.RecordEvent(eventKindLabel(ev.Kind), "processed")
	d.metrics.RecordTurnDuration(stateBefore.String(), time.Since(start))
	d.metrics.SetActiveSessions(d.sessions.Len())

	d.logger.Debug("Turn processed",
		zap.String("user_id", sess.UserID),
		zap.Stringer("state_before", stateBefore),
		zap.Stringer("state_after", sess.State),
		zap.Duration("duration", time.Since(start)))
}

// restart resets the whole conversation to the language choice, dropping the
// stored locale and any draft.
func (d *Dispatcher) restart(ctx context.Context, sess *Session) {
	sess.Locale = d.config.App.DefaultLanguage
	sess.State = StateChooseLanguage
	sess.Draft = nil

	loc := i18n.NewLocalizer(sess.Locale)
	rows := [][]chat.Button{{
		{Label: loc.T("button.lang_en"), Action: ActionLangEnglish},
		{Label: loc.T("button.lang_ru"), Action: ActionLangRussian},
	}}
	if _, err := d.frontend.SendButtons(ctx, sess.ChatID, loc.T("prompt.language"), rows); err != nil {
		d.logger.Error("Failed to send language prompt", zap.Error(err))
	}
}

func (d *Dispatcher) cancel(ctx context.Context, sess *Session, loc *i18n.Localizer) {
	if _, err := d.frontend.SendText(ctx, sess.ChatID, loc.T("bot.cancelled")); err != nil {
		d.logger.Error("Failed to send cancel notice", zap.Error(err))
	}
	d.sessions.End(sess.UserID)
}

func (d *Dispatcher) handleButton(ctx context.Context, sess *Session, loc *i18n.Localizer, ev *chat.Event) {
	switch sess.State {
	case StateChooseLanguage:
		switch ev.Action {
		case ActionLangEnglish, ActionLangRussian:
			d.chooseLanguage(ctx, sess, ev)
		default:
			d.rejectEvent(sess, ev)
		}

	case StateChooseAction:
		switch ev.Action {
		case ActionDownloadSong:
			sess.State = StateAwaitingLink
			d.editOrSend(ctx, sess, ev.MessageID, loc.T("prompt.send_link"))
		case ActionCreatePlaylist:
			sess.Draft = &PlaylistDraft{}
			sess.State = StatePlaylistVibe
			d.editOrSend(ctx, sess, ev.MessageID, loc.T("prompt.playlist_vibe"))
		default:
			d.rejectEvent(sess, ev)
		}

	case StateAwaitingLyricsChoice:
		if strings.HasPrefix(ev.Action, ActionLyricsPrefix) {
			d.handleLyrics(ctx, sess, loc, ev)
		} else {
			d.rejectEvent(sess, ev)
		}

	case StatePlaylistDecision:
		switch ev.Action {
		case ActionPlaylistUpload:
			sess.State = StatePlaylistTitle
			d.editOrSend(ctx, sess, ev.MessageID, loc.T("prompt.playlist_title"))
		case ActionPlaylistDownload:
			d.runDownloadBranch(ctx, sess, loc, ev)
		default:
			d.rejectEvent(sess, ev)
		}

	default:
		d.rejectEvent(sess, ev)
	}
}

func (d *Dispatcher) handleText(ctx context.Context, sess *Session, loc *i18n.Localizer, ev *chat.Event) {
	input := d.parser.Normalize(ev.Text)
	if input == "" {
		d.rejectEvent(sess, ev)
		return
	}

	switch sess.State {
	case StateAwaitingLink:
		d.handleLink(ctx, sess, loc, input)

	case StatePlaylistVibe:
		sess.Draft.Vibe = input
		sess.State = StatePlaylistSongCount
		d.sendText(ctx, sess, loc.T("prompt.playlist_count"))

	case StatePlaylistSongCount:
		d.handleSongCount(ctx, sess, loc, input)

	case StatePlaylistTitle:
		sess.Draft.Title = input
		sess.State = StatePlaylistDescription
		d.sendText(ctx, sess, loc.T("prompt.playlist_desc"))

	case StatePlaylistDescription:
		sess.Draft.Description = resolveDescription(input, sess.Draft.Vibe, loc)
		d.runUploadBranch(ctx, sess, loc)

	default:
		d.rejectEvent(sess, ev)
	}
}

func (d *Dispatcher) chooseLanguage(ctx context.Context, sess *Session, ev *chat.Event) {
	if ev.Action == ActionLangRussian {
		sess.Locale = i18n.RussianLanguage
	} else {
		sess.Locale = i18n.DefaultLanguage
	}
	sess.State = StateChooseAction

	loc := i18n.NewLocalizer(sess.Locale)
	if err := d.frontend.EditButtons(ctx, sess.ChatID, ev.MessageID,
		loc.T("bot.welcome"), d.menuRows(loc)); err != nil {
		d.logger.Error("Failed to show welcome menu", zap.Error(err))
	}
}

// handleLink runs the single-song flow for a media link or a free-text
// query. Search soft failures keep the session in AwaitingLink so the user
// can retry; a hard pipeline failure resets the whole conversation.
func (d *Dispatcher) handleLink(ctx context.Context, sess *Session, loc *i18n.Localizer, input string) {
	var url string
	if d.parser.IsMediaLink(input) {
		url = d.parser.ExtractLink(input)
	} else {
		resolved, ok := d.resolveFreeText(ctx, sess, loc, input)
		if !ok {
			return // stay in AwaitingLink
		}
		url = resolved
	}

	if err := d.deliverSong(ctx, sess, loc, url); err != nil {
		d.metrics.RecordDownload("failed")
		d.metrics.RecordError("pipeline", "fetch")
		d.restart(ctx, sess)
		return
	}

	d.metrics.RecordDownload("ok")
	sess.State = StateAwaitingLyricsChoice
}

// resolveFreeText treats the input as a song title with a placeholder artist
// and resolves it to a watch URL.
func (d *Dispatcher) resolveFreeText(ctx context.Context, sess *Session, loc *i18n.Localizer, query string) (string, bool) {
	d.sendText(ctx, sess, loc.T("status.searching", query))

	if err := d.music.Authenticate(ctx); err != nil {
		d.logger.Error("Search authentication failed", zap.Error(err))
		d.sendText(ctx, sess, loc.T("error.auth_unavailable"))
		return "", false
	}

	videoID, err := d.music.Search(ctx, SongRef{Artist: "# ", Title: query})
	switch {
	case errors.Is(err, ErrNotFound):
		d.sendText(ctx, sess, loc.T("error.not_found"))
		return "", false
	case err != nil:
		d.logger.Error("Search failed", zap.String("query", query), zap.Error(err))
		d.sendText(ctx, sess, loc.T("error.search"))
		return "", false
	}

	return d.music.WatchURL(videoID), true
}

func (d *Dispatcher) handleLyrics(ctx context.Context, sess *Session, loc *i18n.Localizer, ev *chat.Event) {
	d.editOrSend(ctx, sess, ev.MessageID, loc.T("status.searching_lyrics"))

	token := strings.TrimPrefix(ev.Action, ActionLyricsPrefix)
	song, ok := d.tokens.Consume(token)
	if !ok {
		d.metrics.RecordLyricsLookup("expired")
		d.editOrSend(ctx, sess, ev.MessageID, loc.T("error.request_expired"))
		d.showMenu(ctx, sess, loc)
		return
	}

	lyricsText, err := d.lyrics.Lookup(ctx, song.Artist, song.Title)
	switch {
	case errors.Is(err, ErrNotFound):
		d.metrics.RecordLyricsLookup("not_found")
		lyricsText = loc.T("error.lyrics_not_found")
	case err != nil:
		d.metrics.RecordLyricsLookup("failed")
		d.logger.Error("Lyrics lookup failed",
			zap.String("artist", song.Artist),
			zap.String("title", song.Title),
			zap.Error(err))
		lyricsText = loc.T("error.generic", err.Error())
	default:
		d.metrics.RecordLyricsLookup("ok")
	}

	full := loc.T("lyrics.header", song.Title, song.Artist) + lyricsText
	d.sendText(ctx, sess, full)
	d.showMenu(ctx, sess, loc)
}

func (d *Dispatcher) handleSongCount(ctx context.Context, sess *Session, loc *i18n.Localizer, input string) {
	count, err := strconv.Atoi(input)
	if err != nil {
		d.sendText(ctx, sess, loc.T("error.not_a_number"))
		return // stay in PlaylistSongCount
	}
	if count < 1 || count > d.config.App.MaxSongCount {
		d.sendText(ctx, sess, loc.T("error.count_range", 1, d.config.App.MaxSongCount))
		return
	}

	sess.Draft.SongCount = count
	d.sendText(ctx, sess, loc.T("status.generating"))
	d.generateSongList(ctx, sess, loc)
}

// rejectEvent handles an unrecognized (state, event) pair: the state stays
// unchanged and the event is dropped.
func (d *Dispatcher) rejectEvent(sess *Session, ev *chat.Event) {
	d.metrics.RecordEvent(eventKindLabel(ev.Kind), "rejected")
	d.logger.Debug("Event not legal in current state",
		zap.String("user_id", sess.UserID),
		zap.Stringer("state", sess.State),
		zap.String("action", ev.Action))
}

func (d *Dispatcher) showMenu(ctx context.Context, sess *Session, loc *i18n.Localizer) {
	sess.State = StateChooseAction
	if _, err := d.frontend.SendButtons(ctx, sess.ChatID,
		loc.T("prompt.next_action"), d.menuRows(loc)); err != nil {
		d.logger.Error("Failed to show menu", zap.Error(err))
	}
}

func (d *Dispatcher) menuRows(loc *i18n.Localizer) [][]chat.Button {
	return [][]chat.Button{
		{{Label: loc.T("button.download_song"), Action: ActionDownloadSong}},
		{{Label: loc.T("button.create_playlist"), Action: ActionCreatePlaylist}},
	}
}

func (d *Dispatcher) sendText(ctx context.Context, sess *Session, msg string) string {
	msgID, err := d.frontend.SendText(ctx, sess.ChatID, msg)
	if err != nil {
		d.logger.Error("Failed to send message",
			zap.String("chat_id", sess.ChatID),
			zap.Error(err))
	}
	return msgID
}

// editOrSend edits the given message in place, falling back to a fresh
// message when editing fails.
func (d *Dispatcher) editOrSend(ctx context.Context, sess *Session, messageID, msg string) {
	if messageID != "" {
		if err := d.frontend.EditText(ctx, sess.ChatID, messageID, msg); err == nil {
			return
		}
	}
	d.sendText(ctx, sess, msg)
}

// resolveDescription replaces a skipped description with an auto-generated
// one referencing the vibe.
func resolveDescription(input, vibe string, loc *i18n.Localizer) string {
	switch strings.ToLower(input) {
	case "none", "no", "skip":
		return loc.T("playlist.default_desc", vibe)
	}
	return input
}

// aiContext bounds a text-intelligence call.
func (d *Dispatcher) aiContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(d.config.App.AICallTimeoutSecs)*time.Second)
}

func eventKindLabel(kind chat.EventKind) string {
	switch kind {
	case chat.EventText:
		return "text"
	case chat.EventButton:
		return "button"
	case chat.EventRestart:
		return "restart"
	case chat.EventCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

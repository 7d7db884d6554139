package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"musicwizard/internal/chat"
	"musicwizard/internal/store"
)

// --- Fakes ---

type sentMessage struct {
	chatID string
	text   string
	rows   [][]chat.Button
}

type fakeFrontend struct {
	nextID  int
	texts   []sentMessage
	buttons []sentMessage
	edits   []sentMessage
	deleted []string
	audios  []chat.Audio
}

func (f *fakeFrontend) Start(ctx context.Context) error { return nil }

func (f *fakeFrontend) Listen(ctx context.Context, handler func(*chat.Event)) error { return nil }

func (f *fakeFrontend) SendText(ctx context.Context, chatID, text string) (string, error) {
	f.nextID++
	f.texts = append(f.texts, sentMessage{chatID: chatID, text: text})
	return fmt.Sprintf("msg-%d", f.nextID), nil
}

func (f *fakeFrontend) SendButtons(ctx context.Context, chatID, text string, rows [][]chat.Button) (string, error) {
	f.nextID++
	f.buttons = append(f.buttons, sentMessage{chatID: chatID, text: text, rows: rows})
	return fmt.Sprintf("msg-%d", f.nextID), nil
}

func (f *fakeFrontend) EditText(ctx context.Context, chatID, messageID, text string) error {
	f.edits = append(f.edits, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeFrontend) EditButtons(ctx context.Context, chatID, messageID, text string, rows [][]chat.Button) error {
	f.edits = append(f.edits, sentMessage{chatID: chatID, text: text, rows: rows})
	return nil
}

func (f *fakeFrontend) DeleteMessage(ctx context.Context, chatID, messageID string) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeFrontend) SendAudio(ctx context.Context, chatID string, audio *chat.Audio) error {
	f.audios = append(f.audios, *audio)
	return nil
}

func (f *fakeFrontend) lastText() string {
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1].text
}

func (f *fakeFrontend) hasText(substr string) bool {
	for _, m := range f.texts {
		if strings.Contains(m.text, substr) {
			return true
		}
	}
	return false
}

func (f *fakeFrontend) hasEdit(substr string) bool {
	for _, m := range f.edits {
		if strings.Contains(m.text, substr) {
			return true
		}
	}
	return false
}

type fakeMusic struct {
	authErr    error
	results    map[string]string // song title -> video ID
	searchErrs map[string]error
	created    []string
	descs      []string
	createErr  error
	added      []string
}

func (m *fakeMusic) Authenticate(ctx context.Context) error { return m.authErr }

func (m *fakeMusic) Search(ctx context.Context, song SongRef) (string, error) {
	if err, ok := m.searchErrs[song.Title]; ok {
		return "", err
	}
	if id, ok := m.results[song.Title]; ok {
		return id, nil
	}
	return "", ErrNotFound
}

func (m *fakeMusic) WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func (m *fakeMusic) CreatePlaylist(ctx context.Context, title, description string) (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	m.created = append(m.created, title)
	m.descs = append(m.descs, description)
	return "PL123", nil
}

func (m *fakeMusic) AddToPlaylist(ctx context.Context, playlistID, videoID string) error {
	m.added = append(m.added, videoID)
	return nil
}

func (m *fakeMusic) PlaylistURL(playlistID string) string {
	return "https://www.youtube.com/playlist?list=" + playlistID
}

type fakeFetcher struct {
	destDirs []string
	metadata map[string]any
	failURLs map[string]bool
}

func (f *fakeFetcher) Fetch(ctx context.Context, url, destDir string) (*MediaItem, error) {
	f.destDirs = append(f.destDirs, destDir)
	if f.failURLs[url] {
		return nil, fmt.Errorf("extraction failed: exit status 1")
	}
	path := filepath.Join(destDir, "song.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0600); err != nil {
		return nil, err
	}
	return &MediaItem{Metadata: f.metadata, AudioPath: path}, nil
}

type fakeIntel struct {
	extracted  SongRef
	extractErr error
	songs      []SongRef
	listErr    error
}

func (i *fakeIntel) ExtractSongInfo(ctx context.Context, rawTitle string) (SongRef, error) {
	return i.extracted, i.extractErr
}

func (i *fakeIntel) GenerateSongList(ctx context.Context, vibe string, count int) ([]SongRef, error) {
	return i.songs, i.listErr
}

type fakeLyrics struct {
	text string
	err  error
}

func (l *fakeLyrics) Lookup(ctx context.Context, artist, title string) (string, error) {
	return l.text, l.err
}

// --- Harness ---

type testEnv struct {
	dispatcher *Dispatcher
	frontend   *fakeFrontend
	music      *fakeMusic
	fetcher    *fakeFetcher
	intel      *fakeIntel
	lyrics     *fakeLyrics
	session    *Session
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	config := DefaultConfig()
	config.App.AppendDelaySecs = 0
	config.App.AICallTimeoutSecs = 5

	frontend := &fakeFrontend{}
	music := &fakeMusic{results: map[string]string{}, searchErrs: map[string]error{}}
	fetcher := &fakeFetcher{metadata: map[string]any{}, failURLs: map[string]bool{}}
	intel := &fakeIntel{}
	lyricsProvider := &fakeLyrics{}
	tokens := store.NewTokenStore[SongRef](128, time.Hour)

	d := NewDispatcher(config, frontend, music, fetcher, intel, lyricsProvider,
		tokens, nil, zap.NewNop())
	t.Cleanup(d.floodgate.Stop)

	return &testEnv{
		dispatcher: d,
		frontend:   frontend,
		music:      music,
		fetcher:    fetcher,
		intel:      intel,
		lyrics:     lyricsProvider,
		session: &Session{
			UserID: "user-1",
			ChatID: "chat-1",
			Locale: "en",
			State:  StateChooseAction,
		},
	}
}

func (e *testEnv) turn(ev *chat.Event) {
	ev.UserID = e.session.UserID
	ev.ChatID = e.session.ChatID
	e.dispatcher.handleTurn(context.Background(), e.session, ev)
}

func textEvent(text string) *chat.Event {
	return &chat.Event{Kind: chat.EventText, Text: text}
}

func buttonEvent(action string) *chat.Event {
	return &chat.Event{Kind: chat.EventButton, Action: action, MessageID: "btn-1"}
}

func assertNoTempDirs(t *testing.T, fetcher *fakeFetcher) {
	t.Helper()
	for _, dir := range fetcher.destDirs {
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("temp dir %s was not cleaned up", dir)
		}
	}
}

// --- State machine basics ---

func TestLanguageSelection(t *testing.T) {
	env := newTestEnv(t)
	env.session.State = StateChooseLanguage

	env.turn(buttonEvent(ActionLangRussian))

	if env.session.State != StateChooseAction {
		t.Errorf("state = %v, expected %v", env.session.State, StateChooseAction)
	}
	if env.session.Locale != "ru" {
		t.Errorf("locale = %q, expected %q", env.session.Locale, "ru")
	}
	if len(env.frontend.edits) != 1 {
		t.Fatalf("expected one welcome edit, got %d", len(env.frontend.edits))
	}
}

func TestRestartResetsEverything(t *testing.T) {
	env := newTestEnv(t)
	env.session.State = StatePlaylistDecision
	env.session.Locale = "ru"
	env.session.Draft = &PlaylistDraft{Vibe: "summer"}

	env.turn(&chat.Event{Kind: chat.EventRestart})

	if env.session.State != StateChooseLanguage {
		t.Errorf("state = %v, expected %v", env.session.State, StateChooseLanguage)
	}
	if env.session.Locale != "en" {
		t.Errorf("locale = %q, expected default %q", env.session.Locale, "en")
	}
	if env.session.Draft != nil {
		t.Error("draft should be cleared on restart")
	}
	if len(env.frontend.buttons) != 1 {
		t.Fatalf("expected language prompt, got %d button messages", len(env.frontend.buttons))
	}
}

func TestCancelSendsNotice(t *testing.T) {
	env := newTestEnv(t)
	env.session.State = StatePlaylistVibe

	env.turn(&chat.Event{Kind: chat.EventCancel})

	if !env.frontend.hasText("cancelled") {
		t.Errorf("expected cancel notice, got %q", env.frontend.lastText())
	}
}

func TestMainMenuFromAnyState(t *testing.T) {
	for _, state := range []State{
		StateAwaitingLink, StateAwaitingLyricsChoice, StatePlaylistVibe,
		StatePlaylistSongCount, StatePlaylistDecision, StatePlaylistTitle,
		StatePlaylistDescription,
	} {
		t.Run(state.String(), func(t *testing.T) {
			env := newTestEnv(t)
			env.session.State = state
			env.session.Draft = &PlaylistDraft{Vibe: "x"}

			env.turn(buttonEvent(ActionMainMenu))

			if env.session.State != StateChooseAction {
				t.Errorf("state = %v, expected %v", env.session.State, StateChooseAction)
			}
			if env.session.Draft != nil {
				t.Error("draft should be cleared on main menu")
			}
		})
	}
}

func TestUnrecognizedEventsLeaveStateUnchanged(t *testing.T) {
	tests := []struct {
		name  string
		state State
		event *chat.Event
	}{
		{"text during language choice", StateChooseLanguage, textEvent("hello")},
		{"unknown button in menu", StateChooseAction, buttonEvent("bogus")},
		{"text while deciding", StatePlaylistDecision, textEvent("upload")},
		{"button while awaiting link", StateAwaitingLink, buttonEvent("download_song")},
		{"empty text", StatePlaylistVibe, textEvent("   ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.session.State = tt.state
			env.session.Draft = &PlaylistDraft{}

			env.turn(tt.event)

			if env.session.State != tt.state {
				t.Errorf("state = %v, expected unchanged %v", env.session.State, tt.state)
			}
		})
	}
}

// --- Single song flow ---

func TestSingleSongHappyPath(t *testing.T) {
	env := newTestEnv(t)
	env.session.State = StateAwaitingLink
	env.fetcher.metadata = map[string]any{"title": "Artist - Song (Official Video)"}
	env.intel.extracted = SongRef{Artist: "Artist", Title: "Song"}

	env.turn(textEvent("https://www.youtube.com/watch?v=abc123"))

	if env.session.State != StateAwaitingLyricsChoice {
		t.Fatalf("state = %v, expected %v", env.session.State, StateAwaitingLyricsChoice)
	}
	if len(env.frontend.audios) != 1 {
		t.Fatalf("expected one audio, got %d", len(env.frontend.audios))
	}
	audio := env.frontend.audios[0]
	if audio.Title != "Song" || audio.Performer != "Artist" {
		t.Errorf("audio tags = %q/%q, expected Song/Artist", audio.Title, audio.Performer)
	}
	assertNoTempDirs(t, env.fetcher)

	// The lyrics offer carries a fresh token.
	offer := env.frontend.buttons[len(env.frontend.buttons)-1]
	action := offer.rows[0][0].Action
	if !strings.HasPrefix(action, ActionLyricsPrefix) {
		t.Fatalf("expected lyrics action, got %q", action)
	}

	// Pressing it delivers the lyrics and returns to the menu.
	env.lyrics.text = "la la la"
	env.turn(buttonEvent(action))

	if env.session.State != StateChooseAction {
		t.Errorf("state = %v, expected %v", env.session.State, StateChooseAction)
	}
	if !env.frontend.hasText("la la la") {
		t.Error("expected lyrics text to be sent")
	}
}

func TestTagFallbackToMetadata(t *testing.T) {
	env := newTestEnv(t)
	env.session.State = StateAwaitingLink
	env.fetcher.metadata = map[string]any{
		"title":  "raw upload title",
		"track":  "Meta Track",
		"artist": "Meta Artist",
	}
	env.intel.extractErr = fmt.Errorf("model unavailable")

	env.turn(textEvent("https://youtu.be/abc123"))

	if len(env.frontend.audios) != 1 {
		t.Fatalf("expected one audio, got %d", len(env.frontend.audios))
	}
	audio := env.frontend.audios[0]
	if audio.Title != "Meta Track" || audio.Performer != "Meta Artist" {
		t.Errorf("audio tags = %q/%q, expected metadata fallback", audio.Title, audio.Performer)
	}
}

func TestSearchFallbackNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.session.State = StateAwaitingLink

	env.turn(textEvent("some obscure b-side"))

	if env.session.State != StateAwaitingLink {
		t.Errorf("state = %v, expected to stay in %v", env.session.State, StateAwaitingLink)
	}
	if !env.frontend.hasText("couldn't find") {
		t.Errorf("expected not-found notice, got %q", env.frontend.lastText())
	}
	if len(env.fetcher.destDirs) != 0 {
		t.Error("no temp dir should be created when search fails")
	}
}

func TestSearchFallbackSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.session.State = StateAwaitingLink
	env.music.results["eye of the tiger"] = "vid42"
	env.fetcher.metadata = map[string]any{"title": "Eye of the Tiger"}
	env.intel.extracted = SongRef{Artist: "Survivor", Title: "Eye of the Tiger"}

	env.turn(textEvent("eye of the tiger"))

	if env.session.State != StateAwaitingLyricsChoice {
		t.Errorf("state = %v, expected %v", env.session.State, StateAwaitingLyricsChoice)
	}
	if len(env.frontend.audios) != 1 {
		t.Errorf("expected one audio, got %d", len(env.frontend.audios))
	}
}

func TestHardFailureResetsConversation(t *testing.T) {
	env := newTestEnv(t)
	env.session.State = StateAwaitingLink
	env.session.Locale = "ru"
	url := "https://www.youtube.com/watch?v=broken"
	env.fetcher.failURLs[url] = true

	env.turn(textEvent(url))

	if env.session.State != StateChooseLanguage {
		t.Errorf("state = %v, expected full reset to %v", env.session.State, StateChooseLanguage)
	}
	if !env.frontend.hasEdit("extraction failed") {
		t.Error("expected the raw error to be surfaced")
	}
	assertNoTempDirs(t, env.fetcher)
}

func TestExpiredTokenReturnsToMenu(t *testing.T) {
	env := newTestEnv(t)
	env.session.State = StateAwaitingLyricsChoice

	env.turn(buttonEvent(ActionLyricsPrefix + "never-minted"))

	if env.session.State != StateChooseAction {
		t.Errorf("state = %v, expected %v", env.session.State, StateChooseAction)
	}
	if !env.frontend.hasEdit("expired") {
		t.Error("expected expired notice")
	}
}

func TestTokenSingleUse(t *testing.T) {
	env := newTestEnv(t)
	env.session.State = StateAwaitingLink
	env.fetcher.metadata = map[string]any{"title": "Artist - Song"}
	env.intel.extracted = SongRef{Artist: "Artist", Title: "Song"}
	env.lyrics.text = "words"

	env.turn(textEvent("https://www.youtube.com/watch?v=abc123"))
	offer := env.frontend.buttons[len(env.frontend.buttons)-1]
	action := offer.rows[0][0].Action

	env.turn(buttonEvent(action))
	if !env.frontend.hasText("words") {
		t.Fatal("first token use should deliver lyrics")
	}

	// A second press with the same token behaves like a never-minted one.
	env.session.State = StateAwaitingLyricsChoice
	env.turn(buttonEvent(action))
	if !env.frontend.hasEdit("expired") {
		t.Error("reused token should be expired")
	}
}

// --- Playlist flow ---

func TestPlaylistVibeAndCount(t *testing.T) {
	env := newTestEnv(t)
	env.session.State = StateChooseAction

	env.turn(buttonEvent(ActionCreatePlaylist))
	if env.session.State != StatePlaylistVibe {
		t.Fatalf("state = %v, expected %v", env.session.State, StatePlaylistVibe)
	}

	env.turn(textEvent("rainy sunday morning"))
	if env.session.State != StatePlaylistSongCount {
		t.Fatalf("state = %v, expected %v", env.session.State, StatePlaylistSongCount)
	}
	if env.session.Draft.Vibe != "rainy sunday morning" {
		t.Errorf("vibe = %q", env.session.Draft.Vibe)
	}
}

func TestSongCountBoundaries(t *testing.T) {
	tests := []struct {
		input    string
		accepted bool
	}{
		{"1", true},
		{"69", true},
		{"0", false},
		{"70", false},
		{"ten", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			env := newTestEnv(t)
			env.session.State = StatePlaylistSongCount
			env.session.Draft = &PlaylistDraft{Vibe: "v"}
			env.intel.songs = []SongRef{{Artist: "A", Title: "T"}}

			env.turn(textEvent(tt.input))

			if tt.accepted {
				if env.session.State != StatePlaylistDecision {
					t.Errorf("state = %v, expected %v", env.session.State, StatePlaylistDecision)
				}
			} else {
				if env.session.State != StatePlaylistSongCount {
					t.Errorf("state = %v, expected re-prompt in %v", env.session.State, StatePlaylistSongCount)
				}
			}
		})
	}
}

func TestCountRejectionMessagesDiffer(t *testing.T) {
	env := newTestEnv(t)
	env.session.State = StatePlaylistSongCount
	env.session.Draft = &PlaylistDraft{Vibe: "v"}

	env.turn(textEvent("ten"))
	notNumber := env.frontend.lastText()

	env.turn(textEvent("70"))
	outOfRange := env.frontend.lastText()

	if notNumber == outOfRange {
		t.Errorf("non-numeric and out-of-range should produce distinct messages, both %q", notNumber)
	}
}

func TestEmptySongListAbortsToMenu(t *testing.T) {
	env := newTestEnv(t)
	env.session.State = StatePlaylistSongCount
	env.session.Draft = &PlaylistDraft{Vibe: "v"}
	env.intel.songs = nil

	env.turn(textEvent("5"))

	if env.session.State != StateChooseAction {
		t.Errorf("state = %v, expected %v", env.session.State, StateChooseAction)
	}
	if env.session.Draft != nil {
		t.Error("draft should be cleared after AI failure")
	}
	if !env.frontend.hasText("AI failed") {
		t.Error("expected AI failure notice")
	}
}

func TestDescriptionRoundTrip(t *testing.T) {
	for _, input := range []string{"none", "No", "SKIP"} {
		t.Run(input, func(t *testing.T) {
			env := newTestEnv(t)
			env.session.State = StatePlaylistDescription
			env.session.Draft = &PlaylistDraft{
				Vibe:  "beach party",
				Title: "Summer",
				Songs: []SongRef{{Artist: "A", Title: "T"}},
			}
			env.music.results["T"] = "vid1"

			env.turn(textEvent(input))

			if len(env.music.descs) != 1 {
				t.Fatal("expected playlist creation")
			}
			// The skipped description never reaches the playlist literally.
			desc := env.music.descs[0]
			if desc == input {
				t.Errorf("literal %q should have been replaced", input)
			}
			if !strings.Contains(desc, "beach party") {
				t.Errorf("auto description %q should reference the vibe", desc)
			}
		})
	}
}

func TestUploadBranchHappyPath(t *testing.T) {
	env := newTestEnv(t)
	env.session.State = StatePlaylistDescription
	env.session.Draft = &PlaylistDraft{
		Vibe:  "road trip",
		Title: "Roadtrip Hits",
		Songs: []SongRef{
			{Artist: "A1", Title: "T1"},
			{Artist: "A2", Title: "T2"},
		},
	}
	env.music.results["T1"] = "vid1"
	env.music.results["T2"] = "vid2"

	env.turn(textEvent("my description"))

	if env.session.State != StateChooseAction {
		t.Errorf("state = %v, expected %v", env.session.State, StateChooseAction)
	}
	if len(env.music.added) != 2 {
		t.Errorf("added %d videos, expected 2", len(env.music.added))
	}
	if !env.frontend.hasEdit("playlist?list=PL123") {
		t.Error("expected final playlist URL")
	}
}

func TestUploadBranchSkipsUnresolvedSongs(t *testing.T) {
	env := newTestEnv(t)
	env.session.State = StatePlaylistDescription
	env.session.Draft = &PlaylistDraft{
		Vibe:  "v",
		Title: "P",
		Songs: []SongRef{
			{Artist: "A1", Title: "T1"},
			{Artist: "A2", Title: "Missing"},
			{Artist: "A3", Title: "T3"},
		},
	}
	env.music.results["T1"] = "vid1"
	env.music.results["T3"] = "vid3"

	env.turn(textEvent("desc"))

	if len(env.music.added) != 2 {
		t.Errorf("added %d videos, expected 2 (missing song skipped)", len(env.music.added))
	}
	if env.session.State != StateChooseAction {
		t.Errorf("state = %v, expected %v", env.session.State, StateChooseAction)
	}
}

func TestUploadBranchAuthFailure(t *testing.T) {
	env := newTestEnv(t)
	env.session.State = StatePlaylistDescription
	env.session.Draft = &PlaylistDraft{Vibe: "v", Title: "P", Songs: []SongRef{{Title: "T"}}}
	env.music.authErr = ErrAuthUnavailable

	env.turn(textEvent("desc"))

	if env.session.State != StateChooseAction {
		t.Errorf("state = %v, expected %v", env.session.State, StateChooseAction)
	}
	if len(env.music.created) != 0 {
		t.Error("no playlist should be created when auth fails")
	}
	if !env.frontend.hasText("notify the admin") {
		t.Error("expected feature-unavailable notice")
	}
}

func TestDownloadBranchPartialFailure(t *testing.T) {
	env := newTestEnv(t)
	env.session.State = StatePlaylistDecision
	env.session.Draft = &PlaylistDraft{
		Vibe: "v",
		Songs: []SongRef{
			{Artist: "A1", Title: "T1"},
			{Artist: "A2", Title: "T2"},
			{Artist: "A3", Title: "T3"},
		},
	}
	env.music.results["T1"] = "vid1"
	// T2 resolves to nothing, T3 fetch blows up.
	env.music.results["T3"] = "vid3"
	env.fetcher.metadata = map[string]any{"title": "whatever"}
	env.fetcher.failURLs["https://www.youtube.com/watch?v=vid3"] = true

	env.turn(buttonEvent(ActionPlaylistDownload))

	if env.session.State != StateChooseAction {
		t.Errorf("state = %v, expected %v", env.session.State, StateChooseAction)
	}
	if len(env.frontend.audios) != 1 {
		t.Errorf("delivered %d audios, expected 1", len(env.frontend.audios))
	}
	if !env.frontend.hasText("Could not find 'T2'") {
		t.Error("expected not-found notice for T2")
	}
	if !env.frontend.hasText("Failed to download 'T3'") {
		t.Error("expected download-failed notice for T3")
	}
	if !env.frontend.hasEdit("All songs have been sent") {
		t.Error("expected completion notice")
	}
	assertNoTempDirs(t, env.fetcher)
}

func TestFileSizeLimit(t *testing.T) {
	env := newTestEnv(t)
	env.dispatcher.config.App.MaxSendFileMB = 0
	env.session.State = StateAwaitingLink
	env.fetcher.metadata = map[string]any{"title": "big file"}

	env.turn(textEvent("https://www.youtube.com/watch?v=abc123"))

	if len(env.frontend.audios) != 0 {
		t.Error("oversized audio should not be sent")
	}
	if env.session.State != StateChooseLanguage {
		t.Errorf("state = %v, expected hard-failure reset", env.session.State)
	}
	assertNoTempDirs(t, env.fetcher)
}

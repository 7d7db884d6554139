package core

import (
	"context"
	"errors"
)

// SongRef identifies a song by artist and title. It is produced either by
// the text-intelligence adapter or by cleaning raw platform metadata.
type SongRef struct {
	Artist string
	Title  string
}

// MediaItem is the result of fetching one media URL: the raw platform
// metadata and the local path of the extracted audio file. The file lives
// inside a scoped temporary directory owned by the current operation.
type MediaItem struct {
	Metadata  map[string]any
	AudioPath string
}

// State enumerates the dialogue states. Exactly one is active per session.
type State int

const (
	// StateChooseLanguage is the initial state, waiting for a language pick.
	StateChooseLanguage State = iota
	// StateChooseAction is the main menu.
	StateChooseAction
	// StateAwaitingLink waits for a media link or a free-text song query.
	StateAwaitingLink
	// StateAwaitingLyricsChoice waits for the "get lyrics" button press.
	StateAwaitingLyricsChoice
	// StatePlaylistVibe waits for the playlist vibe description.
	StatePlaylistVibe
	// StatePlaylistSongCount waits for the number of songs.
	StatePlaylistSongCount
	// StatePlaylistDecision waits for the upload-vs-download choice.
	StatePlaylistDecision
	// StatePlaylistTitle waits for the remote playlist name.
	StatePlaylistTitle
	// StatePlaylistDescription waits for the remote playlist description.
	StatePlaylistDescription
)

func (s State) String() string {
	switch s {
	case StateChooseLanguage:
		return "choose_language"
	case StateChooseAction:
		return "choose_action"
	case StateAwaitingLink:
		return "awaiting_link"
	case StateAwaitingLyricsChoice:
		return "awaiting_lyrics_choice"
	case StatePlaylistVibe:
		return "playlist_vibe"
	case StatePlaylistSongCount:
		return "playlist_song_count"
	case StatePlaylistDecision:
		return "playlist_decision"
	case StatePlaylistTitle:
		return "playlist_title"
	case StatePlaylistDescription:
		return "playlist_description"
	default:
		return "unknown"
	}
}

// PlaylistDraft is the in-progress playlist spec assembled across turns.
// Fields are populated in order: Vibe, SongCount, Songs, then either
// Title and Description (upload) or nothing further (download).
type PlaylistDraft struct {
	Vibe        string
	SongCount   int
	Songs       []SongRef
	Title       string
	Description string
}

// Adapter failure sentinels. Every adapter maps its provider-specific soft
// failures onto one of these; anything else is a hard failure.
var (
	// ErrNotFound means a search or lookup produced no usable result.
	ErrNotFound = errors.New("not found")
	// ErrAuthUnavailable means the persisted credential artifact is missing
	// or unusable; the feature is disabled until an operator fixes it.
	ErrAuthUnavailable = errors.New("authentication unavailable")
)

// MusicService is the search-and-resolve plus remote-playlist adapter.
// Authenticate must be called once per flow; it returns ErrAuthUnavailable
// when the credential blob is missing.
type MusicService interface {
	Authenticate(ctx context.Context) error
	// Search resolves a song reference to a platform video ID, or ErrNotFound.
	Search(ctx context.Context, song SongRef) (string, error)
	// WatchURL builds the canonical watch URL for a video ID.
	WatchURL(videoID string) string
	// CreatePlaylist creates a remote playlist and returns its ID.
	CreatePlaylist(ctx context.Context, title, description string) (string, error)
	// AddToPlaylist appends a video to a playlist.
	AddToPlaylist(ctx context.Context, playlistID, videoID string) error
	// PlaylistURL builds the public URL for a playlist ID.
	PlaylistURL(playlistID string) string
}

// Fetcher is the media-fetch adapter: URL in, metadata plus local audio out.
// The destination directory must already exist; the fetcher never removes it.
type Fetcher interface {
	Fetch(ctx context.Context, url, destDir string) (*MediaItem, error)
}

// Intelligence is the text-intelligence adapter.
type Intelligence interface {
	// ExtractSongInfo parses artist and title out of a raw platform title.
	// Either field may come back empty when the model cannot tell.
	ExtractSongInfo(ctx context.Context, rawTitle string) (SongRef, error)
	// GenerateSongList produces up to count songs matching the vibe.
	GenerateSongList(ctx context.Context, vibe string, count int) ([]SongRef, error)
}

// LyricsProvider looks up lyrics text for a song, or ErrNotFound.
type LyricsProvider interface {
	Lookup(ctx context.Context, artist, title string) (string, error)
}

// TokenStore holds single-use correlation tokens mapping a later button
// press back to a song established in an earlier turn.
type TokenStore interface {
	Mint(song SongRef) string
	// Consume removes and returns the song for a token. A consumed, expired,
	// or never-minted token returns ok=false.
	Consume(token string) (SongRef, bool)
}

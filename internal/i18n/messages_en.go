package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Language selection
	"prompt.language": "Please choose your language / выберите язык",
	"button.lang_en":  "English",
	"button.lang_ru":  "Русский",

	// Main menu
	"bot.welcome":            "👋 Welcome to MusicWizard!\n\nWhat would you like to do?",
	"prompt.menu":            "What would you like to do?",
	"prompt.next_action":     "What would you like to do next?",
	"bot.cancelled":          "Operation cancelled. Send /start to begin again.",
	"button.download_song":   "🎵 Download Single Song",
	"button.create_playlist": "✨ Create AI Playlist",
	"button.main_menu":       "⬅️ Main Menu",

	// Single song flow
	"prompt.send_link":         "🔗 Please send me the YouTube link or type the name of the song you want to download.",
	"status.searching":         "🔎 Searching YouTube for: %s",
	"status.link_received":     "🔗 Link received. Working on it...",
	"status.downloading":       "⬇️ Downloading...",
	"status.download_complete": "✅ Download complete! Uploading to chat...",
	"prompt.ask_lyrics":        "Song sent! Would you like the lyrics?",
	"button.get_lyrics":        "📄 Get Lyrics",

	// Lyrics
	"status.searching_lyrics": "📄 Searching for lyrics...",
	"lyrics.header":           "📜 Lyrics for '%s' by %s\n\n",

	// Playlist flow
	"prompt.playlist_vibe":    "🎧 Let's create a playlist! What's the vibe, theme, or occasion?",
	"prompt.playlist_count":   "🎶 Got it. How many songs should be in the playlist? (e.g., 10, 25)",
	"prompt.playlist_title":   "📝 Great! What should I name the YouTube playlist?",
	"prompt.playlist_desc":    "✍️ Perfect. Any description for the playlist? (Optional, you can just say 'none')",
	"prompt.playlist_choice":  "What would you like to do with these songs?",
	"button.upload_youtube":   "Upload to YouTube",
	"button.download_mp3s":    "Download MP3s",
	"playlist.default_desc":   "AI-generated playlist based on the vibe: %s",
	"playlist.generated_list": "✅ AI Generated this list:\n\n%s",
	"status.generating":       "🧠 Generating song list with AI...",
	"status.creating":         "⚙️ Now creating the playlist on YouTube...",
	"status.created":          "✅ Playlist created! Now adding %d songs...",
	"status.added_song":       "➕ Added song %d/%d: '%s'",
	"status.downloading_song": "⬇️ Downloading %d/%d: '%s'",
	"status.songs_sent":       "✅ All songs have been sent.",
	"playlist.ready":          "🎉 All done! Your new playlist is ready:\n%s",

	// Errors
	"error.auth_unavailable":    "🔴 This feature is not working currently, please notify the admin.",
	"error.not_found":           "❌ Sorry, couldn't find that song on YouTube. Please try again!",
	"error.search":              "❌ There was an error searching YouTube. Please try again.",
	"error.generic":             "An error occurred: %s",
	"error.request_expired":     "Sorry, this request has expired.",
	"error.count_range":         "Please enter a number between %d and %d.",
	"error.not_a_number":        "That doesn't look like a number. Please try again.",
	"error.ai_failed":           "🔴 AI failed to generate a song list. Please try again.",
	"error.create_failed":       "🔴 Failed to create the YouTube playlist.",
	"error.playlist_unexpected": "An unexpected error occurred during playlist creation: %s",
	"error.song_not_found":      "❌ Could not find '%s' on YouTube.",
	"error.download_failed":     "❌ Failed to download '%s'.",
	"error.lyrics_not_found":    "Could not find lyrics for this song.",
	"error.file_too_large":      "❌ The audio file is too large to send (limit %d MB).",
}

package i18n

// russianMessages contains all Russian translations.
var russianMessages = map[string]string{
	// Language selection
	"prompt.language": "Выберите язык / Please choose your language",
	"button.lang_en":  "English",
	"button.lang_ru":  "Русский",

	// Main menu
	"bot.welcome":            "👋 Добро пожаловать в MusicWizard!\n\nЧто вы хотите сделать?",
	"prompt.menu":            "Что вы хотите сделать?",
	"prompt.next_action":     "Что вы хотите сделать дальше?",
	"bot.cancelled":          "Операция отменена. Отправьте /start чтобы начать заново.",
	"button.download_song":   "🎵 Скачать песню",
	"button.create_playlist": "✨ Создать AI плейлист",
	"button.main_menu":       "⬅️ Главное меню",

	// Single song flow
	"prompt.send_link":         "🔗 Пришлите ссылку на YouTube или введите название песни, которую хотите скачать.",
	"status.searching":         "🔎 Поиск на YouTube: %s",
	"status.link_received":     "🔗 Ссылка получена. Обработка...",
	"status.downloading":       "⬇️ Загружаю...",
	"status.download_complete": "✅ Загрузка завершена! Отправляю в чат...",
	"prompt.ask_lyrics":        "Песня отправлена! Хотите получить текст?",
	"button.get_lyrics":        "📄 Текст песни",

	// Lyrics
	"status.searching_lyrics": "📄 Поиск текста песни...",
	"lyrics.header":           "📜 Текст '%s' — %s\n\n",

	// Playlist flow
	"prompt.playlist_vibe":    "🎧 Давайте создадим плейлист! Какой настрой, тема или событие?",
	"prompt.playlist_count":   "🎶 Сколько песен должно быть в плейлисте? (например, 10, 25)",
	"prompt.playlist_title":   "📝 Отлично! Как назвать плейлист на YouTube?",
	"prompt.playlist_desc":    "✍️ Отлично. Есть ли описание для плейлиста? (Можно написать 'none')",
	"prompt.playlist_choice":  "Что вы хотите сделать с этими песнями?",
	"button.upload_youtube":   "Загрузить на YouTube",
	"button.download_mp3s":    "Скачать MP3",
	"playlist.default_desc":   "Плейлист сгенерирован ИИ на основе настроения: %s",
	"playlist.generated_list": "✅ ИИ сгенерировал список:\n\n%s",
	"status.generating":       "🧠 Генерирую список песен с помощью ИИ...",
	"status.creating":         "⚙️ Создаю плейлист на YouTube...",
	"status.created":          "✅ Плейлист создан! Добавляю %d песен...",
	"status.added_song":       "➕ Добавлена песня %d/%d: '%s'",
	"status.downloading_song": "⬇️ Загружаю %d/%d: '%s'",
	"status.songs_sent":       "✅ Все песни отправлены.",
	"playlist.ready":          "🎉 Готово! Ваш новый плейлист:\n%s",

	// Errors
	"error.auth_unavailable":    "🔴 Эта функция сейчас не работает, сообщите администратору.",
	"error.not_found":           "❌ Не удалось найти песню на YouTube. Попробуйте ещё раз!",
	"error.search":              "❌ Произошла ошибка при поиске на YouTube. Попробуйте ещё раз.",
	"error.generic":             "Произошла ошибка: %s",
	"error.request_expired":     "Извините, запрос устарел.",
	"error.count_range":         "Введите число от %d до %d.",
	"error.not_a_number":        "Это не похоже на число. Попробуйте ещё раз.",
	"error.ai_failed":           "🔴 ИИ не смог сгенерировать список песен. Попробуйте ещё раз.",
	"error.create_failed":       "🔴 Не удалось создать плейлист на YouTube.",
	"error.playlist_unexpected": "Произошла непредвиденная ошибка при создании плейлиста: %s",
	"error.song_not_found":      "❌ Не удалось найти '%s' на YouTube.",
	"error.download_failed":     "❌ Не удалось скачать '%s'.",
	"error.lyrics_not_found":    "Не удалось найти текст этой песни.",
	"error.file_too_large":      "❌ Аудиофайл слишком большой для отправки (лимит %d МБ).",
}

// Package audio provides playlist generation for tokenized corpora.
//
// # Playlist Generation
//
// Generate a playlist listing every file that was tokenized successfully:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist(corpus, "data")
//	os.WriteFile("data/notes.m3u", []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
package audio

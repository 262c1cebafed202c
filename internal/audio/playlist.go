package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/handiism/notecorpus/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines carrying the token count.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	// INI-style format with file and title info.
	FormatPLS
)

// ParsePlaylistFormat maps a settings value to a PlaylistFormat.
// Unknown values fall back to M3U.
func ParsePlaylistFormat(s string) PlaylistFormat {
	switch strings.ToLower(s) {
	case "pls":
		return FormatPLS
	default:
		return FormatM3U
	}
}

// Extension returns the file extension for the playlist format, including the dot.
func (f PlaylistFormat) Extension() string {
	switch f {
	case FormatPLS:
		return ".pls"
	default:
		return ".m3u"
	}
}

// PlaylistCreator generates playlists of the files that were tokenized
// successfully, so a corpus can be auditioned in any MIDI-capable player.
//
// Example:
//
//	// Create M3U playlist with extended info
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist(corpus, "data")
//	os.WriteFile("data/notes.m3u", []byte(content), 0644)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:-1,bwv772.mid (412 tokens)
//	// bach/bwv772.mid
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include EXTINF lines with token counts
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// Parameters:
//   - format: The playlist format to generate
//   - extended: For M3U format, whether to include #EXTINF lines
//     (ignored for other formats)
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist generates playlist content for the successful entries of
// a corpus, in path order.
//
// Entry paths are made relative to baseDir, the directory the playlist will
// be written to. Paths that cannot be made relative are kept as they are.
func (p *PlaylistCreator) CreatePlaylist(corpus *model.Corpus, baseDir string) string {
	switch p.format {
	case FormatPLS:
		return p.createPLS(corpus, baseDir)
	default:
		return p.createM3U(corpus, baseDir)
	}
}

// createM3U generates an M3U playlist.
//
// Standard M3U format:
//
//	bach/bwv772.mid
//	chopin/op28.mid
//
// Extended M3U format (when extended=true):
//
//	#EXTM3U
//	#EXTINF:-1,bwv772.mid (412 tokens)
//	bach/bwv772.mid
func (p *PlaylistCreator) createM3U(corpus *model.Corpus, baseDir string) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, path := range corpus.Paths() {
		if p.extended {
			sb.WriteString(fmt.Sprintf("#EXTINF:-1,%s\n", title(path, len(corpus.Mapping[path]))))
		}
		sb.WriteString(relativePath(baseDir, path) + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
// PLS format is an INI-style text file:
//
//	[playlist]
//	File1=bach/bwv772.mid
//	Title1=bwv772.mid (412 tokens)
//	Length1=-1
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(corpus *model.Corpus, baseDir string) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	paths := corpus.Paths()
	for i, path := range paths {
		idx := i + 1
		sb.WriteString(fmt.Sprintf("File%d=%s\n", idx, relativePath(baseDir, path)))
		sb.WriteString(fmt.Sprintf("Title%d=%s\n", idx, title(path, len(corpus.Mapping[path]))))
		sb.WriteString(fmt.Sprintf("Length%d=-1\n", idx))
	}

	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(paths)))
	sb.WriteString("Version=2\n")

	return sb.String()
}

func title(path string, tokens int) string {
	return fmt.Sprintf("%s (%d tokens)", filepath.Base(filepath.FromSlash(path)), tokens)
}

// relativePath expresses path relative to baseDir using '/' separators.
func relativePath(baseDir, path string) string {
	if baseDir == "" {
		return path
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return path
	}
	absPath, err := filepath.Abs(filepath.FromSlash(path))
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

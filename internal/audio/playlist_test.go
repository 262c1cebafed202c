package audio

import (
	"strings"
	"testing"

	"github.com/handiism/notecorpus/internal/model"
)

func createTestCorpus() *model.Corpus {
	c := model.NewCorpus()
	c.Mapping["data/bach/track1.mid"] = []model.Token{"C4", "D4"}
	c.Mapping["data/bach/track2.mid"] = []model.Token{"0.4.7"}
	c.Failures = []model.Failure{{Path: "data/bach/broken.mid", Reason: "corrupt"}}
	return c
}

func TestPlaylistCreator_M3U(t *testing.T) {
	creator := NewPlaylistCreator(FormatM3U, false)

	content := creator.CreatePlaylist(createTestCorpus(), "data")

	if content != "bach/track1.mid\nbach/track2.mid\n" {
		t.Errorf("unexpected M3U content:\n%s", content)
	}
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	creator := NewPlaylistCreator(FormatM3U, true)

	content := creator.CreatePlaylist(createTestCorpus(), "data")

	if !strings.HasPrefix(content, "#EXTM3U") {
		t.Error("Extended M3U should start with #EXTM3U")
	}
	if !strings.Contains(content, "#EXTINF:-1,track1.mid (2 tokens)") {
		t.Errorf("Extended M3U should contain #EXTINF with token count, got:\n%s", content)
	}
}

func TestPlaylistCreator_PLS(t *testing.T) {
	creator := NewPlaylistCreator(FormatPLS, false)

	content := creator.CreatePlaylist(createTestCorpus(), "")

	if !strings.HasPrefix(content, "[playlist]") {
		t.Error("PLS should start with [playlist]")
	}
	if !strings.Contains(content, "File1=data/bach/track1.mid") {
		t.Errorf("PLS should contain File1=, got:\n%s", content)
	}
	if !strings.Contains(content, "NumberOfEntries=2") {
		t.Error("PLS should contain NumberOfEntries=2")
	}
}

func TestPlaylistCreator_SkipsFailures(t *testing.T) {
	for _, f := range []PlaylistFormat{FormatM3U, FormatPLS} {
		content := NewPlaylistCreator(f, true).CreatePlaylist(createTestCorpus(), "data")
		if strings.Contains(content, "broken.mid") {
			t.Errorf("%s playlist should not list failed files", f.Extension())
		}
	}
}

func TestParsePlaylistFormat(t *testing.T) {
	tests := []struct {
		input string
		want  PlaylistFormat
		ext   string
	}{
		{"m3u", FormatM3U, ".m3u"},
		{"PLS", FormatPLS, ".pls"},
		{"wpl", FormatM3U, ".m3u"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParsePlaylistFormat(tt.input)
			if got != tt.want {
				t.Errorf("ParsePlaylistFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got.Extension() != tt.ext {
				t.Errorf("Extension() = %q, want %q", got.Extension(), tt.ext)
			}
		})
	}
}

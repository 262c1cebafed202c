package tui

import (
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/handiism/notecorpus/internal/config"
	"github.com/handiism/notecorpus/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm
}

func TestNewModel_UsesSettings(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Patterns = []string{"a/*.mid", "b/**/*.mid"}
	settings.CreatePlaylist = true

	m := NewModel(settings)

	assert.Equal(t, StateInput, m.state)
	assert.Equal(t, "a/*.mid, b/**/*.mid", m.textInput.Value())
	assert.True(t, m.playlist)
	assert.True(t, m.compress)
}

func TestUpdate_ToggleOptions(t *testing.T) {
	m := NewModel(nil)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})

	assert.True(t, m.playlist)
	assert.False(t, m.compress)
	assert.True(t, m.verbose)
}

func TestUpdate_ScanError(t *testing.T) {
	m := NewModel(nil)
	m.state = StateScanning

	m = update(t, m, ScanDoneMsg{Err: errors.New("no files")})

	assert.Equal(t, StateError, m.state)
	assert.Contains(t, m.View(), "no files")
}

func TestUpdate_VerboseFiltered(t *testing.T) {
	m := NewModel(nil)

	m = update(t, m, ProgressMsg{Event: pipeline.ProgressEvent{Message: "tokenized a.mid", Level: pipeline.LevelVerbose}})
	assert.Empty(t, m.logs)

	m = update(t, m, ProgressMsg{Event: pipeline.ProgressEvent{Message: "failed b.mid", Level: pipeline.LevelError}})
	require.Len(t, m.logs, 1)
	assert.Equal(t, "failed b.mid", m.logs[0].Message)
}

func TestUpdate_LogsAreCapped(t *testing.T) {
	m := NewModel(nil)
	for i := 0; i < maxLogs+5; i++ {
		m = update(t, m, ProgressMsg{Event: pipeline.ProgressEvent{Message: "x", Level: pipeline.LevelInfo}})
	}
	assert.Len(t, m.logs, maxLogs)
}

func TestUpdate_BuildDone(t *testing.T) {
	m := NewModel(nil)
	m.state = StateProcessing

	m = update(t, m, BuildDoneMsg{
		Summary:   &pipeline.Summary{Items: 3, Succeeded: 2, Failed: 1, Tokens: 40},
		Completed: 3,
		Total:     3,
	})

	assert.Equal(t, StateComplete, m.state)
	assert.Contains(t, m.View(), "Tokens: 40")
}

func TestUpdate_StaleBuildDoneIgnored(t *testing.T) {
	m := NewModel(nil)

	m = update(t, m, BuildDoneMsg{Err: errors.New("late")})

	assert.Equal(t, StateInput, m.state)
}

func TestScanCorpus_NoMatches(t *testing.T) {
	m := NewModel(nil)
	m.textInput.SetValue(filepath.Join(t.TempDir(), "*.mid"))

	msg := m.scanCorpus()()
	done, ok := msg.(ScanDoneMsg)
	require.True(t, ok)
	assert.Error(t, done.Err)
}

func TestSplitPatterns(t *testing.T) {
	assert.Equal(t, []string{"a/*.mid", "b/*.midi"}, splitPatterns(" a/*.mid ,, b/*.midi "))
	assert.Empty(t, splitPatterns(" , "))
}

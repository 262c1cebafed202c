package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/handiism/notecorpus/internal/aggregate"
	"github.com/handiism/notecorpus/internal/artifact"
	"github.com/handiism/notecorpus/internal/audio"
	"github.com/handiism/notecorpus/internal/config"
	"github.com/handiism/notecorpus/internal/corpus"
	"github.com/handiism/notecorpus/internal/extract"
	"github.com/handiism/notecorpus/internal/model"
	"github.com/handiism/notecorpus/internal/score"
	"golang.org/x/sync/errgroup"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

func (l ProgressLevel) String() string {
	switch l {
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "info"
	}
}

// ProgressEvent represents a pipeline progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Summary describes a finished run.
type Summary struct {
	Items      int
	Succeeded  int
	Failed     int
	Fallbacks  int
	Duplicates int
	Tokens     int
	Elapsed    time.Duration
}

// Manager coordinates a corpus build.
type Manager struct {
	settings  *config.Settings
	extractor *extract.Extractor
	playlist  *audio.PlaylistCreator
	logger    *slog.Logger
	metrics   *Metrics

	agg     atomic.Pointer[aggregate.Aggregator]
	summary atomic.Pointer[Summary]

	onProgress func(ProgressEvent)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a new pipeline Manager.
//
// onProgress may be nil. It is called from worker goroutines and must be
// safe for concurrent use.
func NewManager(settings *config.Settings, parser score.Parser, onProgress func(ProgressEvent), opts ...Option) *Manager {
	m := &Manager{
		settings:   settings,
		extractor:  extract.New(parser, settings.ToSelector()),
		playlist:   audio.NewPlaylistCreator(audio.ParsePlaylistFormat(settings.PlaylistFormat), settings.M3UExtended),
		logger:     slog.Default(),
		metrics:    NewMetrics(),
		onProgress: onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Metrics returns the collectors the manager records into.
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// Run processes every item and returns the aggregated Corpus.
//
// Items are dispatched to at most settings.WorkerCount() workers. A failing
// item is recorded as a failure and never stops the others. If ctx is
// cancelled, no new items are dispatched, in-flight ones are drained and
// Run returns the context error with a nil Corpus.
//
// An empty items slice is rejected with corpus.ErrEmptyCorpus, so callers
// never persist an artifact with nothing in it.
func (m *Manager) Run(ctx context.Context, items []model.CorpusItem) (*model.Corpus, error) {
	if len(items) == 0 {
		m.logger.Error("no files to process")
		return nil, fmt.Errorf("run: %w", corpus.ErrEmptyCorpus)
	}

	start := time.Now()
	agg := aggregate.New(len(items))
	m.agg.Store(agg)
	m.summary.Store(nil)

	workers := m.settings.WorkerCount()
	m.logger.Info("starting corpus build", "items", len(items), "workers", workers)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Processing %d files with %d workers", len(items), workers), Level: LevelInfo})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			m.process(gctx, agg, item)
			return nil // Continue with other items
		})
	}

	// Workers never fail, the group only drains in-flight items.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		completed, total := agg.Progress()
		m.logger.Warn("corpus build cancelled", "completed", completed, "total", total)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Cancelled after %d/%d files", completed, total), Level: LevelWarning})
		return nil, err
	}

	result, err := agg.ResultFor(items)
	if err != nil {
		return nil, err
	}

	failed, fallbacks, duplicates := agg.Stats()
	summary := &Summary{
		Items:      len(items),
		Succeeded:  len(result.Mapping),
		Failed:     failed,
		Fallbacks:  fallbacks,
		Duplicates: duplicates,
		Tokens:     result.TokenCount(),
		Elapsed:    time.Since(start),
	}
	m.summary.Store(summary)

	m.logger.Info("corpus build finished",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"fallbacks", summary.Fallbacks,
		"tokens", summary.Tokens,
		"elapsed", summary.Elapsed.Round(time.Millisecond),
	)

	level := LevelSuccess
	if summary.Failed > 0 {
		level = LevelWarning
	}
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Tokenized %d/%d files (%d failed, %d tokens)", summary.Succeeded, summary.Items, summary.Failed, summary.Tokens),
		Level:   level,
	})

	return result, nil
}

func (m *Manager) process(ctx context.Context, agg *aggregate.Aggregator, item model.CorpusItem) {
	result := m.extractor.Extract(ctx, item)

	if err := agg.Add(result); err != nil {
		m.logger.Warn("dropped result", "path", item.Path, "error", err)
		return
	}
	m.record(result)

	switch {
	case result.Failed():
		m.logger.Debug("item failed", "path", item.Path, "error", result.Err)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Failed %s: %v", item.Path, result.Err), Level: LevelError})
	case result.Fallback:
		m.progress(ProgressEvent{Message: fmt.Sprintf("No instrument parts in %s, using whole score", item.Path), Level: LevelVerbose})
	default:
		m.progress(ProgressEvent{Message: fmt.Sprintf("Tokenized %s (%d tokens)", item.Path, len(result.Tokens)), Level: LevelVerbose})
	}

	if every := m.settings.ProgressEvery; every > 0 {
		completed, total := agg.Progress()
		if completed%every == 0 && completed != total {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Processed %d/%d files", completed, total), Level: LevelInfo})
		}
	}
}

func (m *Manager) record(result model.ExtractionResult) {
	m.metrics.duration.Observe(result.Duration.Seconds())
	if result.Failed() {
		m.metrics.items.WithLabelValues("failed").Inc()
		return
	}
	m.metrics.items.WithLabelValues("ok").Inc()
	m.metrics.tokens.Add(float64(len(result.Tokens)))
	if result.Fallback {
		m.metrics.fallbacks.Inc()
	}
}

// Progress returns the number of completed and total items of the current
// or last run. It is safe to call from another goroutine while Run works.
func (m *Manager) Progress() (completed, total int) {
	agg := m.agg.Load()
	if agg == nil {
		return 0, 0
	}
	return agg.Progress()
}

// Summary returns the summary of the last completed run, or nil.
func (m *Manager) Summary() *Summary {
	return m.summary.Load()
}

// Persist writes the corpus artifact to settings.Output, followed by the
// playlist and the metrics textfile when they are enabled.
//
// Only the artifact is required: a failing playlist or metrics write is
// reported as a warning.
func (m *Manager) Persist(ctx context.Context, c *model.Corpus) (*artifact.Header, error) {
	dest := m.settings.Output

	hdr, err := artifact.Write(ctx, dest, c,
		artifact.WithCompression(m.settings.Compress),
		artifact.WithFailures(m.settings.IncludeFailures),
	)
	if err != nil {
		m.logger.Error("persisting artifact failed", "path", dest, "error", err)
		return nil, err
	}
	m.logger.Info("artifact written", "path", dest, "run_id", hdr.RunID, "entries", len(c.Mapping), "failures", len(c.Failures))
	m.progress(ProgressEvent{Message: fmt.Sprintf("Saved %d entries to %s", len(c.Mapping), dest), Level: LevelSuccess})

	if m.settings.CreatePlaylist {
		m.writePlaylist(ctx, c)
	}

	if m.settings.MetricsFile != "" {
		if err := m.writeMetrics(); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error writing metrics: %v", err), Level: LevelWarning})
		}
	}

	return hdr, nil
}

// PlaylistPath returns where the playlist for settings.Output is written.
func (m *Manager) PlaylistPath() string {
	out := m.settings.Output
	ext := audio.ParsePlaylistFormat(m.settings.PlaylistFormat).Extension()
	return strings.TrimSuffix(out, filepath.Ext(out)) + ext
}

func (m *Manager) writePlaylist(ctx context.Context, c *model.Corpus) {
	path := m.PlaylistPath()
	content := m.playlist.CreatePlaylist(c, filepath.Dir(path))

	if err := artifact.WriteFileAtomic(ctx, path, []byte(content), 0644); err != nil {
		m.logger.Warn("writing playlist failed", "path", path, "error", err)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		return
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist %s", path), Level: LevelSuccess})
}

func (m *Manager) writeMetrics() error {
	path := m.settings.MetricsFile
	if err := artifact.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := m.metrics.WriteTextfile(path); err != nil {
		return err
	}
	m.logger.Debug("metrics written", "path", path)
	return nil
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}

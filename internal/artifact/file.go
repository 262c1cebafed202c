package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/handiism/notecorpus/internal/model"
)

// renameFile commits a temporary file. Tests replace it to simulate
// failures at commit time.
var renameFile = os.Rename

// PersistenceError reports that an artifact could not be written. When it
// is returned, the destination still holds its previous content, if any.
type PersistenceError struct {
	Path string
	Op   string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

type options struct {
	compress bool
	failures bool
	runID    string
	now      func() time.Time
	perm     os.FileMode
}

// Option configures Write.
type Option func(*options)

// WithCompression enables or disables zstd compression of the body.
// Compression is on by default.
func WithCompression(on bool) Option {
	return func(o *options) { o.compress = on }
}

// WithFailures controls whether the failure list is stored alongside the
// mapping. Failures are stored by default.
func WithFailures(include bool) Option {
	return func(o *options) { o.failures = include }
}

// WithRunID sets the run id stored in the header. By default a random
// UUID is generated.
func WithRunID(id string) Option {
	return func(o *options) { o.runID = id }
}

// WithPerm sets the permission bits of the artifact file (default 0644).
func WithPerm(perm os.FileMode) Option {
	return func(o *options) { o.perm = perm }
}

// Write persists corpus to dest atomically and returns the header written.
//
// The artifact is encoded in memory, written to a temporary file in the
// destination directory, synced, and renamed over dest. Every failure is
// returned as a *PersistenceError and leaves dest untouched. If ctx is
// cancelled before the rename, nothing is committed.
//
// Example:
//
//	hdr, err := Write(ctx, "data/notes.ntcp", corpus, WithCompression(false))
//	if err != nil {
//	    return err
//	}
//	log.Printf("wrote run %s", hdr.RunID)
func Write(ctx context.Context, dest string, corpus *model.Corpus, opts ...Option) (*Header, error) {
	o := options{compress: true, failures: true, now: time.Now, perm: 0644}
	for _, opt := range opts {
		opt(&o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}

	hdr := Header{
		Version:    Version,
		Compressed: o.compress,
		RunID:      o.runID,
		Created:    o.now().UTC().Truncate(time.Second),
	}

	if !o.failures && len(corpus.Failures) > 0 {
		corpus = &model.Corpus{Mapping: corpus.Mapping}
	}

	data, err := Encode(hdr, corpus)
	if err != nil {
		return nil, &PersistenceError{Path: dest, Op: "encode", Err: err}
	}

	if err := WriteFileAtomic(ctx, dest, data, o.perm); err != nil {
		return nil, err
	}
	return &hdr, nil
}

// Read loads the artifact at path.
func Read(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	a, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return a, nil
}

// WriteFileAtomic writes data to path so that readers never observe a
// partially written file.
//
// Parent directories are created with mode 0755. On failure the temporary
// file is removed and a *PersistenceError is returned.
func WriteFileAtomic(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Path: path, Op: "write", Err: err}
	}

	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return &PersistenceError{Path: path, Op: "mkdir", Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &PersistenceError{Path: path, Op: "create temp", Err: err}
	}
	tmpPath := tmp.Name()

	fail := func(op string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &PersistenceError{Path: path, Op: op, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &PersistenceError{Path: path, Op: "close", Err: err}
	}

	if err := ctx.Err(); err != nil {
		_ = os.Remove(tmpPath)
		return &PersistenceError{Path: path, Op: "commit", Err: err}
	}
	if err := renameFile(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return &PersistenceError{Path: path, Op: "rename", Err: err}
	}

	syncDir(dir)
	return nil
}

// syncDir flushes the directory entry of a committed rename. Not every
// platform supports syncing directories, so errors are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

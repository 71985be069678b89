// Package filesrc serves records from a JSON or YAML dataset on disk.
package filesrc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/gridview/internal/source"
	"github.com/leapstack-labs/gridview/pkg/grid"
)

// ErrNoPath is returned when the source has no dataset path.
var ErrNoPath = errors.New("dataset path is empty")

// debounce collapses bursts of editor writes into one reload.
const debounce = 100 * time.Millisecond

// Source reads its collection from a dataset file.
type Source struct {
	*grid.MemorySource
	path   string
	logger *slog.Logger
}

var _ grid.RecordSource = (*Source)(nil)

// New creates a source for the dataset at path.
func New(path string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Source{
		MemorySource: grid.NewMemorySource(),
		path:         path,
		logger:       logger,
	}
	s.SetLoader(s.load)
	return s
}

// Path returns the dataset path.
func (s *Source) Path() string { return s.path }

// Fetch reloads the dataset asynchronously.
func (s *Source) Fetch(ctx context.Context) error {
	if s.path == "" {
		return ErrNoPath
	}
	return s.MemorySource.Fetch(ctx)
}

func (s *Source) load(_ context.Context) ([]grid.Record, error) {
	records, err := ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("loaded dataset", "path", s.path, "records", len(records))
	return records, nil
}

// ReadFile decodes the dataset at path, choosing the format by extension.
func ReadFile(path string) ([]grid.Record, error) {
	format, err := source.FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	ds, err := source.Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds.Records, nil
}

// Watch re-fetches the dataset whenever it is written or recreated. It
// blocks until ctx is cancelled. The containing directory is watched so
// editors that replace the file are noticed.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		return ErrNoPath
	}
	abs, err := filepath.Abs(s.path)
	if err != nil {
		return fmt.Errorf("failed to resolve dataset path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				s.logger.Debug("dataset changed, reloading", "path", s.path)
				if err := s.Fetch(ctx); err != nil {
					s.logger.Error("reload failed", "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

package feeds

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"inplayrs/backoffice/internal/metrics"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Fetcher downloads a feed body by API path
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Result is the outcome of loading one feed
type Result struct {
	Feed     Feed
	File     string
	Bytes    int
	Duration time.Duration
	Err      error
}

// Loader downloads feeds into the data folder
type Loader struct {
	fetcher     Fetcher
	dataDir     string
	concurrency int
}

// NewLoader creates a loader writing below dataDir
func NewLoader(fetcher Fetcher, dataDir string) *Loader {
	return &Loader{
		fetcher:     fetcher,
		dataDir:     dataDir,
		concurrency: 4,
	}
}

// Load downloads one feed and replaces the cached file atomically.
// On any failure the previous file is left untouched.
func (l *Loader) Load(ctx context.Context, feed Feed) Result {
	start := time.Now()
	result := Result{Feed: feed, File: feed.FilePath(l.dataDir)}

	log.Info().Str("feed", feed.Name()).Str("path", feed.Path).Msg("Loading feed")

	body, err := l.fetcher.Fetch(ctx, feed.Path)
	if err == nil {
		err = writeAtomic(feed.Dir(l.dataDir), feed.FileName, body)
	}
	result.Duration = time.Since(start)

	if err != nil {
		result.Err = fmt.Errorf("failed to load feed %s: %w", feed.Name(), err)
		log.Error().Err(err).Str("feed", feed.Name()).Msg("Failed to load feed")
		metrics.RecordFeedDownload(feed.Name(), "error", result.Duration.Seconds(), 0)
		metrics.RecordError("feeds", "load")
		return result
	}

	result.Bytes = len(body)
	metrics.RecordFeedDownload(feed.Name(), "ok", result.Duration.Seconds(), result.Bytes)
	log.Info().
		Str("feed", feed.Name()).
		Str("file", result.File).
		Int("bytes", result.Bytes).
		Dur("duration", result.Duration).
		Msg("Loaded data to file")

	return result
}

// LoadAll loads the feeds concurrently. One failing feed does not stop the others.
// Results keep the order of feeds.
func (l *Loader) LoadAll(ctx context.Context, feeds []Feed) []Result {
	start := time.Now()
	results := make([]Result, len(feeds))

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for i, feed := range feeds {
		g.Go(func() error {
			results[i] = l.Load(ctx, feed)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	metrics.RecordFeedPass(time.Since(start).Seconds())
	log.Info().
		Int("feeds", len(feeds)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Feed pass complete")

	return results
}

// writeAtomic writes data to dir/name through a temp file in the same
// directory so readers never see a partial file
func writeAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data folder: %w", err)
	}

	tmp, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}

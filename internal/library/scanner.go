package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/llehouerou/segue/internal/player"
)

const numWorkers = 8

// ErrEmptyCollection is returned by Scan when no playable file was found.
var ErrEmptyCollection = errors.New("no playable audio files found")

// ScanProgress reports the progress of a scan.
type ScanProgress struct {
	Phase   string // "discovering", "extracting", "done"
	Current int
	Total   int
}

// ScanOptions tunes Scan. The zero value is usable.
type ScanOptions struct {
	Logger   *zap.Logger
	Workers  int
	Progress chan<- ScanProgress // optional, never closed by Scan
}

func (o ScanOptions) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o ScanOptions) workers() int {
	if o.Workers <= 0 {
		return numWorkers
	}
	return o.Workers
}

func (o ScanOptions) report(p ScanProgress) {
	if o.Progress == nil {
		return
	}
	select {
	case o.Progress <- p:
	default:
	}
}

// Scan collects the playable files named by args and extracts their
// metadata in parallel. Directories are read one level deep only.
// Records come back in no particular order.
func Scan(ctx context.Context, args []string, opts ScanOptions) ([]TrackRecord, error) {
	logger := opts.logger()

	opts.report(ScanProgress{Phase: "discovering"})
	files, err := discoverFiles(args, logger)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrEmptyCollection
	}

	records, err := extractAll(ctx, files, opts)
	if err != nil {
		return nil, err
	}
	opts.report(ScanProgress{Phase: "done", Current: len(records), Total: len(records)})
	logger.Info("scan complete", zap.Int("tracks", len(records)))
	return records, nil
}

// discoverFiles expands directory arguments and filters out anything the
// player cannot decode. Duplicate paths are collapsed.
func discoverFiles(args []string, logger *zap.Logger) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if !player.Supported(path) {
			logger.Debug("skipping unsupported file", zap.String("path", path))
			return
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(filepath.Clean(arg))
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", arg, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			add(filepath.Join(arg, e.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

// extractAll runs Extract over files on a fixed worker pool.
func extractAll(ctx context.Context, files []string, opts ScanOptions) ([]TrackRecord, error) {
	total := len(files)
	logger := opts.logger()
	var processed atomic.Int64

	workCh := make(chan string)
	resultCh := make(chan TrackRecord, total)

	var wg sync.WaitGroup
	for range opts.workers() {
		wg.Go(func() {
			for path := range workCh {
				resultCh <- extract(path, logger)
				processed.Add(1)
			}
		})
	}

	go func() {
		defer close(workCh)
		for _, f := range files {
			select {
			case workCh <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	// joined before returning: callers may close Progress once Scan is done
	done := make(chan struct{})
	var reporter sync.WaitGroup
	reporter.Go(func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				opts.report(ScanProgress{Phase: "extracting", Current: int(processed.Load()), Total: total})
			case <-done:
				return
			}
		}
	})

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	records := make([]TrackRecord, 0, total)
	for rec := range resultCh {
		records = append(records, rec)
	}
	close(done)
	reporter.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

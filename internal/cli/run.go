package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/llehouerou/segue/internal/app"
	"github.com/llehouerou/segue/internal/config"
	"github.com/llehouerou/segue/internal/inhibit"
	"github.com/llehouerou/segue/internal/library"
	"github.com/llehouerou/segue/internal/logging"
	"github.com/llehouerou/segue/internal/mpris"
	"github.com/llehouerou/segue/internal/playback"
	"github.com/llehouerou/segue/internal/player"
	"github.com/llehouerou/segue/internal/playlist"
	"github.com/llehouerou/segue/internal/stderr"
)

func run(ctx context.Context, e env, opts options, args []string) (err error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg, opts, e.stderr)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
		if cerr := closeLog(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	if !opts.noUI {
		// C decoders write to fd 2, which the UI owns from here on
		if serr := stderr.Start(logger); serr != nil {
			logger.Warn("stderr capture unavailable", zap.Error(serr))
		}
		defer stderr.Stop()
	}

	queue, tier, err := loadQueue(ctx, args, logger)
	if err != nil {
		return err
	}

	backend, err := e.newBackend(player.SpeakerOptions{
		SampleRate: cfg.GetSampleRate(),
		Volume:     cfg.GetVolume(),
		Logger:     logger.Named("player"),
	})
	if err != nil {
		return fmt.Errorf("open audio output: %w", err)
	}
	defer func() {
		if cerr := backend.Close(); cerr != nil {
			logger.Warn("close audio output", zap.Error(cerr))
		}
	}()

	ctrl := playback.New(backend, queue, playback.Options{
		Lookahead:    cfg.GetLookahead(),
		PollInterval: cfg.GetPollInterval(),
		Logger:       logger.Named("playback"),
	})

	stopDesktop := startDesktop(ctrl, cfg, logger)
	defer stopDesktop()

	if opts.noUI {
		return runHeadless(ctx, ctrl, logger)
	}
	return runUI(ctx, ctrl, tier, cfg.GetSeekStep())
}

func newLogger(cfg *config.Config, opts options, console io.Writer) (*zap.Logger, func() error, error) {
	lc := cfg.GetLogConfig()
	if opts.logLevel != "" {
		lc.Level = opts.logLevel
	}
	lo := logging.Options{
		Level:      lc.Level,
		File:       lc.File,
		MaxSizeMB:  lc.MaxSizeMB,
		MaxBackups: lc.MaxBackups,
		MaxAgeDays: lc.MaxAgeDays,
	}
	if opts.noUI {
		lo.Console = console
	}
	return logging.New(lo)
}

// loadQueue scans args and orders what it found into the play queue.
func loadQueue(ctx context.Context, args []string, logger *zap.Logger) (*playlist.Queue, playlist.Tier, error) {
	start := time.Now()
	progress := make(chan library.ScanProgress, 1)
	var wg sync.WaitGroup
	wg.Go(func() { logScanProgress(progress, logger) })

	records, err := library.Scan(ctx, args, library.ScanOptions{
		Logger:   logger.Named("library"),
		Progress: progress,
	})
	close(progress)
	wg.Wait()
	if err != nil {
		return nil, 0, err
	}
	tier := playlist.ChooseTier(records)
	tracks := playlist.Resolve(records)
	logger.Info("collection loaded",
		zap.Int("tracks", len(tracks)),
		zap.Stringer("order", tier),
		zap.Duration("took", time.Since(start)))
	return playlist.NewQueue(tracks), tier, nil
}

// logScanProgress reports tag extraction of large collections. Scan drops
// reports the reader is not ready for, so this never slows it down.
func logScanProgress(progress <-chan library.ScanProgress, logger *zap.Logger) {
	for p := range progress {
		switch p.Phase {
		case "extracting":
			logger.Info("reading tags", zap.Int("done", p.Current), zap.Int("total", p.Total))
		default:
			logger.Debug("scan", zap.String("phase", p.Phase), zap.Int("files", p.Total))
		}
	}
}

// startDesktop attaches the optional D-Bus integrations. Neither is
// required: a missing session bus is logged and playback goes on.
func startDesktop(ctrl *playback.Controller, cfg *config.Config, logger *zap.Logger) func() {
	var cleanups []func()

	if cfg.InhibitSuspendEnabled() {
		inh, err := inhibit.New(logger.Named("inhibit"))
		if err != nil {
			logger.Warn("suspend inhibition unavailable", zap.Error(err))
		} else {
			sub := ctrl.Subscribe()
			var wg sync.WaitGroup
			wg.Go(func() { inh.Follow(sub) })
			cleanups = append(cleanups, func() {
				wg.Wait()
				if err := inh.Close(); err != nil {
					logger.Warn("close inhibitor", zap.Error(err))
				}
			})
		}
	}

	if cfg.MPRISEnabled() {
		adapter, err := mpris.New(ctrl, logger.Named("mpris"))
		if err != nil {
			logger.Warn("MPRIS unavailable", zap.Error(err))
		} else {
			cleanups = append(cleanups, func() {
				if err := adapter.Close(); err != nil {
					logger.Warn("close MPRIS", zap.Error(err))
				}
			})
		}
	}

	return func() {
		for _, fn := range cleanups {
			fn()
		}
	}
}

// runHeadless plays until the queue ends or the process is interrupted.
func runHeadless(ctx context.Context, ctrl *playback.Controller, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sub := ctrl.Subscribe()
	var wg sync.WaitGroup
	wg.Go(func() { logTracks(sub, logger) })
	defer wg.Wait()

	return ctrl.Run(ctx)
}

// logTracks stands in for the UI in headless runs.
func logTracks(sub *playback.Subscription, logger *zap.Logger) {
	for {
		select {
		case e := <-sub.TrackChanged:
			if e.Track == nil {
				continue
			}
			r := e.Track.Record
			logger.Info("now playing",
				zap.Int("index", e.Index+1),
				zap.String("title", r.Title()),
				zap.String("artist", r.ArtistOrUnknown()),
				zap.String("path", r.Path))
		case e := <-sub.StateChanged:
			logger.Debug("state", zap.Stringer("from", e.Previous), zap.Stringer("to", e.Current))
		case <-sub.PositionChanged:
		case <-sub.ModeChanged:
		case <-sub.Done:
			return
		}
	}
}

func runUI(ctx context.Context, ctrl *playback.Controller, tier playlist.Tier, seekStep time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := app.New(ctrl, tier, seekStep)

	var runErr error
	var wg sync.WaitGroup
	wg.Go(func() { runErr = ctrl.Run(ctx) })

	_, uiErr := tea.NewProgram(model, tea.WithAltScreen()).Run()

	// the UI can exit on its own error; the controller must not outlive it
	cancel()
	wg.Wait()
	return errors.Join(uiErr, runErr)
}

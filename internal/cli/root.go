// Package cli wires the configuration, the library scan, the playback
// controller and the terminal UI into the segue command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/llehouerou/segue/internal/library"
	"github.com/llehouerou/segue/internal/playback"
	"github.com/llehouerou/segue/internal/player"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

type options struct {
	configPath string
	logLevel   string
	noUI       bool
}

// env holds what the command touches outside the process. Tests swap the
// backend for player.Mock.
type env struct {
	stdout     io.Writer
	stderr     io.Writer
	newBackend func(player.SpeakerOptions) (player.Backend, error)
}

func defaultEnv() env {
	return env{
		stdout: os.Stdout,
		stderr: os.Stderr,
		newBackend: func(opts player.SpeakerOptions) (player.Backend, error) {
			return player.NewSpeaker(opts)
		},
	}
}

// NewRootCommand builds the segue command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultEnv())
}

func newRootCommand(e env) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "segue [flags] DIR|FILE...",
		Short: "Play local audio files back to back, without gaps",
		Long: `segue plays the audio files named on the command line, and the files
directly inside the named directories, in album order. Tracks are ordered by
their tag track number, then by the number leading the file name, then by
creation time, whichever every file carries.`,
		Version:       Version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), e, opts, args)
		},
	}
	cmd.SetOut(e.stdout)
	cmd.SetErr(e.stderr)

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "read configuration from `PATH` only")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&opts.noUI, "no-ui", false, "play without the terminal UI, logging to stderr")
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	e := defaultEnv()
	return execute(ctx, e, newRootCommand(e), os.Args[1:])
}

func execute(ctx context.Context, e env, cmd *cobra.Command, args []string) int {
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(e.stderr, "segue:", userMessage(err))
		return 1
	}
	return 0
}

func userMessage(err error) string {
	var pathErr *os.PathError
	switch {
	case errors.Is(err, playback.ErrNothingPlayable):
		return "none of the audio files could be opened"
	case errors.Is(err, library.ErrEmptyCollection):
		return "no playable audio files found in the given paths"
	case errors.As(err, &pathErr):
		return fmt.Sprintf("cannot read %s: %v", pathErr.Path, pathErr.Err)
	default:
		return err.Error()
	}
}

//go:build !windows

// Package stderr captures output that C libraries (ALSA, faad2) write
// directly to file descriptor 2, bypassing Go's os.Stderr, and sends it to
// the log. This keeps raw messages from corrupting the TUI layout.
package stderr

import (
	"bufio"
	"io"
	"os"
	"strings"
	"syscall"

	"go.uber.org/zap"
)

var (
	origStderr int
	pipeRead   *os.File
	pipeWrite  *os.File
	started    bool
	forwarded  chan struct{}
)

// Start begins capturing stderr output into logger at warn level.
// Must be called early in main(), before any C library initialization.
// Returns an error if capture cannot be set up, but the program can continue
// without stderr capture (errors will just go to the original stderr).
func Start(logger *zap.Logger) error {
	if started {
		return nil
	}

	// Create a pipe
	r, w, err := os.Pipe()
	if err != nil {
		return err
	}

	// Save original stderr file descriptor
	origStderr, err = syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return err
	}

	// Redirect stderr (fd 2) to the pipe's write end
	err = syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd()))
	if err != nil {
		syscall.Close(origStderr)
		r.Close()
		w.Close()
		return err
	}

	pipeRead = r
	pipeWrite = w
	started = true
	forwarded = make(chan struct{})

	go func() {
		defer close(forwarded)
		forward(pipeRead, logger)
	}()

	return nil
}

// forward logs each non-empty line read from r until it is closed.
func forward(r io.Reader, logger *zap.Logger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			logger.Warn("stderr", zap.String("line", line))
		}
	}
}

// WriteOriginal writes directly to the original stderr, bypassing capture.
// Useful for fatal errors that must be visible even if TUI is running.
func WriteOriginal(msg string) {
	if origStderr > 0 {
		_, _ = syscall.Write(origStderr, []byte(msg))
		return
	}
	_, _ = os.Stderr.WriteString(msg)
}

// Stop restores the original stderr. Should be called on program exit.
func Stop() {
	if !started {
		return
	}

	// Restore original stderr
	_ = syscall.Dup2(origStderr, int(os.Stderr.Fd()))
	_ = syscall.Close(origStderr)
	origStderr = 0

	// Closing the write end lets forward drain what is left
	pipeWrite.Close()
	<-forwarded
	pipeRead.Close()

	started = false
}

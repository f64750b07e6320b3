// Package ui runs the TaskBoard screen as a terminal UI.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nibzard/taskboard/internal/board"
	"github.com/nibzard/taskboard/internal/todo"
)

// Store is the slice of the persistence bridge the screen needs: the startup
// read and a flush on quit.
type Store interface {
	Load(ctx context.Context) (todo.List, bool)
	Flush(ctx context.Context) error
}

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

type tuiConfig struct {
	altScreen    bool
	flushTimeout time.Duration
	logger       *log.Logger
	programOpts  []tea.ProgramOption
}

// WithAltScreen runs the board in the terminal's alternate screen.
func WithAltScreen(enabled bool) TUIOption {
	return func(c *tuiConfig) {
		c.altScreen = enabled
	}
}

// WithFlushTimeout bounds how long quitting waits for pending saves.
func WithFlushTimeout(d time.Duration) TUIOption {
	return func(c *tuiConfig) {
		if d > 0 {
			c.flushTimeout = d
		}
	}
}

// WithLogger sets the logger for lifecycle messages.
func WithLogger(logger *log.Logger) TUIOption {
	return func(c *tuiConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProgramOptions passes extra options to the bubbletea program, such as
// custom input and output.
func WithProgramOptions(opts ...tea.ProgramOption) TUIOption {
	return func(c *tuiConfig) {
		c.programOpts = append(c.programOpts, opts...)
	}
}

// RunTUI shows the board until the user quits, then flushes pending saves.
func RunTUI(ctx context.Context, b *board.Board, store Store, opts ...TUIOption) error {
	c := &tuiConfig{
		altScreen:    true,
		flushTimeout: 5 * time.Second,
		logger:       log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if len(c.programOpts) == 0 && !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(ctx, b, store)
	runErr := runProgram(ctx, model, c)

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.flushTimeout)
	defer cancel()
	if err := store.Flush(flushCtx); err != nil {
		c.logger.Error("flush on quit", "err", err)
		if runErr == nil {
			return fmt.Errorf("flush pending saves: %w", err)
		}
	}
	c.logger.Info("board closed", "tasks", b.Total(), "completed", b.CompletedCount())
	return runErr
}

func runProgram(ctx context.Context, model *tuiModel, c *tuiConfig) error {
	popts := []tea.ProgramOption{tea.WithContext(ctx)}
	if c.altScreen {
		popts = append(popts, tea.WithAltScreen())
	}
	popts = append(popts, c.programOpts...)

	program := tea.NewProgram(model, popts...)
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

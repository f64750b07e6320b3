// Package cmd implements the CLI command structure for taskboard.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskboard/internal/board"
	"github.com/nibzard/taskboard/internal/config"
	"github.com/nibzard/taskboard/internal/logging"
	"github.com/nibzard/taskboard/internal/persist"
	"github.com/nibzard/taskboard/internal/storage"
	"github.com/nibzard/taskboard/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the taskboard CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskboard", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "ls", "list":
		return lsCommand(ctx, cfg, remainingArgs)
	case "add":
		return addCommand(ctx, cfg, remainingArgs)
	case "toggle", "done":
		return toggleCommand(ctx, cfg, remainingArgs)
	case "rm", "delete":
		return rmCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(ctx, cws, remainingArgs)
	case "tail":
		return tailCommand(ctx, cfg, remainingArgs)
	case "config":
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// session is an open storage slot with a board on top of it.
type session struct {
	store  storage.Store
	bridge *persist.Bridge
	board  *board.Board
}

func openSession(ctx context.Context, cfg *config.Config, logger *log.Logger) (*session, error) {
	store, err := storage.Open(cfg.Storage, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage, err)
	}
	bridge := persist.New(ctx, store, persist.WithLogger(logger))
	logger.Debug("storage opened", "backend", cfg.Storage, "location", storage.Location(cfg.Storage, cfg.DataDir))
	return &session{
		store:  store,
		bridge: bridge,
		board:  board.New(bridge, board.WithLogger(logger)),
	}, nil
}

// Close writes pending saves and closes the store.
func (s *session) Close() error {
	if err := s.bridge.Close(); err != nil {
		return err
	}
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("closing storage: %w", err)
	}
	return nil
}

func cliLogger(cfg *config.Config) *log.Logger {
	return logging.New(stderr, cfg.LogOptions())
}

func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskboard tui", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inline := fs.Bool("inline", false, "Render inline instead of the alternate screen")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if !ui.IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	// The screen owns the terminal, so logs go to a session file.
	sessionLog, err := logging.NewSessionLog(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("creating session log: %w", err)
	}
	defer sessionLog.Close()
	logger := logging.New(sessionLog.Writer(), cfg.LogOptions())
	logger.Info("session started", "run_id", sessionLog.RunID, "storage", cfg.Storage, "data_dir", cfg.DataDir)

	s, err := openSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	runErr := ui.RunTUI(ctx, s.board, s.bridge,
		ui.WithAltScreen(!*inline),
		ui.WithLogger(logger),
	)
	if err := s.Close(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func tailCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskboard tail", flag.ContinueOnError)
	fs.SetOutput(stderr)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	logPath, err := logging.FindLatestLog(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(stdout, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(stdout, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(stdout)

	return logging.TailLog(ctx, stdout, logPath, *n, *follow)
}

func doctorCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("taskboard doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg := cws.Config

	fmt.Fprintln(stdout, "TaskBoard Doctor")
	fmt.Fprintln(stdout, "================")
	fmt.Fprintln(stdout)

	allOK := true

	fmt.Fprintln(stdout, "Config:")
	if len(cws.Files) == 0 {
		fmt.Fprintln(stdout, "  ⚠️  No config file (using defaults)")
	}
	for _, path := range cws.Files {
		fmt.Fprintf(stdout, "  ✅ %s\n", path)
	}
	if *verbose {
		fmt.Fprintf(stdout, "  data_dir   = %s (%s)\n", cfg.DataDir, cws.Sources["data_dir"])
		fmt.Fprintf(stdout, "  storage    = %s (%s)\n", cfg.Storage, cws.Sources["storage"])
		fmt.Fprintf(stdout, "  log_dir    = %s (%s)\n", cfg.LogDir, cws.Sources["log_dir"])
		fmt.Fprintf(stdout, "  log_level  = %s (%s)\n", cfg.LogLevel, cws.Sources["log_level"])
		fmt.Fprintf(stdout, "  log_format = %s (%s)\n", cfg.LogFormat, cws.Sources["log_format"])
	}
	fmt.Fprintln(stdout)

	fmt.Fprintf(stdout, "Storage: %s at %s\n", cfg.Storage, storage.Location(cfg.Storage, cfg.DataDir))
	store, err := storage.Open(cfg.Storage, cfg.DataDir)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Fprintln(stdout, "  ✅ OK")
		bridge := persist.New(ctx, store, persist.WithLogger(logging.Discard()))
		list, found, err := bridge.Read(ctx)
		switch {
		case err != nil && !found:
			fmt.Fprintf(stdout, "  ❌ Read error: %v\n", err)
			allOK = false
		case err != nil:
			fmt.Fprintf(stdout, "  ❌ Slot %q is unreadable and will load as empty: %v\n", persist.Key, err)
			allOK = false
		case !found:
			fmt.Fprintf(stdout, "  ⚠️  Slot %q not found (written on first change)\n", persist.Key)
		default:
			fmt.Fprintf(stdout, "  ✅ Slot %q: %d tasks, %d completed\n", persist.Key, len(list), list.CompletedCount())
		}
		bridge.Close()
		store.Close()
	}
	fmt.Fprintln(stdout)

	fmt.Fprintf(stdout, "Log directory: %s\n", cfg.LogDir)
	if info, err := os.Stat(cfg.LogDir); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(stdout, "  ⚠️  Not found (created by the first tui session)")
		} else {
			fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
			allOK = false
		}
	} else if !info.IsDir() {
		fmt.Fprintln(stdout, "  ❌ Error: path is not a directory")
		allOK = false
	} else {
		fmt.Fprintln(stdout, "  ✅ OK")
	}
	fmt.Fprintln(stdout)

	if allOK {
		fmt.Fprintln(stdout, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(stdout, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

func versionCommand() error {
	fmt.Fprintf(stdout, "taskboard version %s\n", Version)
	return nil
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "TaskBoard - a single-screen to-do list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskboard [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui           Open the board (default command)")
	fmt.Fprintln(w, "  ls            List tasks")
	fmt.Fprintln(w, "  add <text>    Add a task")
	fmt.Fprintln(w, "  toggle <ref>  Toggle a task's completed flag")
	fmt.Fprintln(w, "  rm <ref>      Delete a task")
	fmt.Fprintln(w, "  doctor        Check config, storage and the stored list")
	fmt.Fprintln(w, "  tail          Tail the latest session log")
	fmt.Fprintln(w, "  config        Print an example config file")
	fmt.Fprintln(w, "  version       Show version information")
	fmt.Fprintln(w, "  help          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "A <ref> is a task id, a unique id prefix or a 1-based position from 'ls'.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tui Options:")
	fmt.Fprintln(w, "  -inline")
	fmt.Fprintln(w, "        Render inline instead of the alternate screen")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -v    Show task ids")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tail Options:")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  TASKBOARD_DATA_DIR, TASKBOARD_STORAGE, TASKBOARD_LOG_DIR")
	fmt.Fprintln(w, "  TASKBOARD_LOG_LEVEL, TASKBOARD_LOG_FORMAT")
	fmt.Fprintln(w, "  TASKBOARD_LOG_TIMESTAMPS, TASKBOARD_LOG_CALLER (1/true/yes/on)")
}

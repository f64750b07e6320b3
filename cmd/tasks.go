package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/nibzard/taskboard/internal/board"
	"github.com/nibzard/taskboard/internal/config"
	"github.com/nibzard/taskboard/internal/persist"
	"github.com/nibzard/taskboard/internal/storage"
	"github.com/nibzard/taskboard/internal/todo"
	"github.com/nibzard/taskboard/internal/utils"
)

// errAmbiguousRef is returned when a prefix matches more than one task.
var errAmbiguousRef = errors.New("ambiguous task reference")

const shortIDLen = 8

func lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskboard ls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Show task ids")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	store, err := storage.Open(cfg.Storage, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", cfg.Storage, err)
	}
	defer store.Close()

	// Listing only reads; it never rewrites the slot.
	bridge := persist.New(ctx, store, persist.WithLogger(cliLogger(cfg)))
	defer bridge.Close()
	list, _ := bridge.Load(ctx)
	printTaskList(list, *verbose)
	return nil
}

func addCommand(ctx context.Context, cfg *config.Config, args []string) error {
	text := strings.Join(args, " ")
	return withBoard(ctx, cfg, func(b *board.Board) error {
		if !b.AddTask(text) {
			return nil
		}
		task, _ := b.Task(b.Total() - 1)
		fmt.Fprintf(stdout, "Added %d. %s\n", b.Total(), task.Text)
		return nil
	})
}

func toggleCommand(ctx context.Context, cfg *config.Config, args []string) error {
	ref, err := singleRef(args)
	if err != nil {
		return err
	}
	return withBoard(ctx, cfg, func(b *board.Board) error {
		task, ok, err := resolveTaskRef(b.Tasks(), ref)
		if err != nil || !ok {
			return reportRef(ref, err)
		}
		b.ToggleCompleted(task.ID)
		state := "open"
		if !task.Completed {
			state = "completed"
		}
		fmt.Fprintf(stdout, "Marked %s %s: %s\n", utils.ShortID(task.ID, shortIDLen), state, task.Text)
		return nil
	})
}

func rmCommand(ctx context.Context, cfg *config.Config, args []string) error {
	ref, err := singleRef(args)
	if err != nil {
		return err
	}
	return withBoard(ctx, cfg, func(b *board.Board) error {
		task, ok, err := resolveTaskRef(b.Tasks(), ref)
		if err != nil || !ok {
			return reportRef(ref, err)
		}
		b.DeleteTask(task.ID)
		fmt.Fprintf(stdout, "Deleted %s: %s\n", utils.ShortID(task.ID, shortIDLen), task.Text)
		return nil
	})
}

// withBoard loads the board, runs fn and waits for the resulting saves.
func withBoard(ctx context.Context, cfg *config.Config, fn func(*board.Board) error) error {
	s, err := openSession(ctx, cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	s.board.Load(ctx)
	fnErr := fn(s.board)
	if err := s.bridge.Flush(ctx); err != nil && fnErr == nil {
		fnErr = fmt.Errorf("waiting for save: %w", err)
	}
	if err := s.Close(); err != nil && fnErr == nil {
		fnErr = err
	}
	return fnErr
}

func singleRef(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", fmt.Errorf("missing task reference")
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("unexpected arguments: %v", args[1:])
	}
}

// reportRef turns an unresolved reference into a message; unknown
// references are not errors.
func reportRef(ref string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %q", err, ref)
	}
	fmt.Fprintf(stderr, "No task matches %q\n", ref)
	return nil
}

// resolveTaskRef finds the task named by ref: an exact id, then a 1-based
// position, then a unique id prefix.
func resolveTaskRef(tasks todo.List, ref string) (todo.Task, bool, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return todo.Task{}, false, nil
	}
	if task, ok := tasks.Find(ref); ok {
		return task, true, nil
	}
	if pos, err := strconv.Atoi(ref); err == nil && pos >= 1 && pos <= len(tasks) {
		return tasks[pos-1], true, nil
	}

	var match todo.Task
	matches := 0
	for _, task := range tasks {
		if strings.HasPrefix(task.ID, ref) {
			match = task
			matches++
		}
	}
	switch matches {
	case 0:
		return todo.Task{}, false, nil
	case 1:
		return match, true, nil
	default:
		return todo.Task{}, false, errAmbiguousRef
	}
}

func printTaskList(tasks todo.List, verbose bool) {
	if len(tasks) == 0 {
		fmt.Fprintln(stdout, "No tasks.")
	}
	for i, task := range tasks {
		printTask(i+1, task, verbose)
	}
	fmt.Fprintf(stdout, "Total: %d  Completed: %d\n", len(tasks), tasks.CompletedCount())
}

func printTask(pos int, t todo.Task, verbose bool) {
	check := " "
	if t.Completed {
		check = "x"
	}
	line := fmt.Sprintf("%3d. [%s] %s", pos, check, t.Text)
	if verbose {
		line += "  (" + t.ID + ")"
	}
	fmt.Fprintln(stdout, line)
}

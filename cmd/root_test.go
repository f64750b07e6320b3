// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nibzard/taskboard/internal/persist"
	"github.com/nibzard/taskboard/internal/storage"
	"github.com/nibzard/taskboard/internal/todo"
)

// setup isolates config lookup and points the CLI at a temp data dir.
// It returns the data dir.
func setup(t *testing.T, backend string) string {
	t.Helper()
	home := t.TempDir()
	data := filepath.Join(t.TempDir(), "data")
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	t.Setenv("TASKBOARD_DATA_DIR", data)
	t.Setenv("TASKBOARD_STORAGE", backend)
	t.Setenv("TASKBOARD_LOG_DIR", "")
	t.Setenv("TASKBOARD_LOG_LEVEL", "")
	t.Setenv("TASKBOARD_LOG_FORMAT", "")
	chdir(t, t.TempDir())
	return data
}

// capture swaps the package output streams for buffers.
func capture(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	oldOut, oldErr := stdout, stderr
	stdout, stderr = out, errOut
	t.Cleanup(func() { stdout, stderr = oldOut, oldErr })
	return out, errOut
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := capture(t)
	err := Run(context.Background(), args)
	return out.String(), errOut.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := run(t, args...)
	if err != nil {
		t.Fatalf("Run(%v): %v\nstderr: %s", args, err, errOut)
	}
	return out
}

func storedList(t *testing.T, backend storage.Backend, dataDir string) todo.List {
	t.Helper()
	store, err := storage.Open(backend, dataDir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	raw, found, err := store.Get(context.Background(), persist.Key)
	if err != nil || !found {
		t.Fatalf("slot: found=%v err=%v", found, err)
	}
	list, err := todo.Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	return list
}

// TestRun tests the main Run function.
func TestRun(t *testing.T) {
	t.Run("shows help with --help flag", func(t *testing.T) {
		setup(t, "memory")
		out := mustRun(t, "--help")
		if !strings.Contains(out, "Usage:") || !strings.Contains(out, "-storage") {
			t.Errorf("help output missing sections:\n%s", out)
		}
	})

	t.Run("shows help with -h flag", func(t *testing.T) {
		setup(t, "memory")
		mustRun(t, "-h")
	})

	t.Run("shows help with help command", func(t *testing.T) {
		setup(t, "memory")
		if out := mustRun(t, "help"); !strings.Contains(out, "Commands:") {
			t.Errorf("help command output:\n%s", out)
		}
	})

	t.Run("shows version with -v flag", func(t *testing.T) {
		setup(t, "memory")
		if out := mustRun(t, "-v"); !strings.Contains(out, "taskboard version dev") {
			t.Errorf("version output = %q", out)
		}
	})

	t.Run("shows version with version command", func(t *testing.T) {
		setup(t, "memory")
		mustRun(t, "version")
	})

	t.Run("unknown command returns error", func(t *testing.T) {
		setup(t, "memory")
		_, errOut, err := run(t, "frobnicate")
		if err == nil || !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected 'unknown command' error, got %v", err)
		}
		if !strings.Contains(errOut, "Unknown command: frobnicate") {
			t.Errorf("stderr = %q", errOut)
		}
	})

	t.Run("invalid storage backend fails", func(t *testing.T) {
		setup(t, "redis")
		_, _, err := run(t, "ls")
		if err == nil || !strings.Contains(err.Error(), "unknown storage backend") {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("tui without a terminal fails", func(t *testing.T) {
		setup(t, "memory")
		_, _, err := run(t)
		if err == nil || !strings.Contains(err.Error(), "TTY") {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("config prints example", func(t *testing.T) {
		setup(t, "memory")
		if out := mustRun(t, "config"); !strings.Contains(out, "storage") {
			t.Errorf("config output:\n%s", out)
		}
	})
}

func TestTaskCommands(t *testing.T) {
	for _, backend := range []storage.Backend{storage.BackendFile, storage.BackendSQLite} {
		t.Run(string(backend), func(t *testing.T) {
			data := setup(t, string(backend))

			if out := mustRun(t, "ls"); !strings.Contains(out, "No tasks.") || !strings.Contains(out, "Total: 0  Completed: 0") {
				t.Errorf("ls on empty board:\n%s", out)
			}

			mustRun(t, "add", "Buy", "milk")
			mustRun(t, "add", "Call mom")
			mustRun(t, "add", "Water plants")

			list := storedList(t, backend, data)
			if len(list) != 3 || list[0].Text != "Buy milk" || list[2].Text != "Water plants" {
				t.Fatalf("stored list = %+v", list)
			}

			out := mustRun(t, "toggle", "2")
			if !strings.Contains(out, "completed: Call mom") {
				t.Errorf("toggle output = %q", out)
			}
			if !storedList(t, backend, data)[1].Completed {
				t.Error("toggle by position not persisted")
			}

			mustRun(t, "rm", list[0].ID[:8])
			out = mustRun(t, "ls", "-v")
			if strings.Contains(out, "Buy milk") {
				t.Errorf("deleted task still listed:\n%s", out)
			}
			for _, want := range []string{"1. [x] Call mom", "2. [ ] Water plants", list[2].ID, "Total: 2  Completed: 1"} {
				if !strings.Contains(out, want) {
					t.Errorf("ls -v lacks %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestAddBlankIsSilent(t *testing.T) {
	setup(t, "file")
	out, errOut, err := run(t, "add", "   ")
	if err != nil || out != "" || errOut != "" {
		t.Errorf("blank add: err=%v out=%q stderr=%q", err, out, errOut)
	}
}

func TestUnknownRefIsNoOp(t *testing.T) {
	data := setup(t, "file")
	mustRun(t, "add", "keep me")

	for _, cmd := range []string{"toggle", "rm"} {
		out, errOut, err := run(t, cmd, "nope")
		if err != nil {
			t.Errorf("%s unknown ref: %v", cmd, err)
		}
		if out != "" || !strings.Contains(errOut, `No task matches "nope"`) {
			t.Errorf("%s unknown ref: out=%q stderr=%q", cmd, out, errOut)
		}
	}
	list := storedList(t, storage.BackendFile, data)
	if len(list) != 1 || list[0].Completed {
		t.Errorf("list changed: %+v", list)
	}
}

func TestMissingRef(t *testing.T) {
	setup(t, "memory")
	if _, _, err := run(t, "rm"); err == nil {
		t.Error("rm without a ref succeeded")
	}
	if _, _, err := run(t, "toggle", "1", "2"); err == nil {
		t.Error("toggle with two refs succeeded")
	}
}

func TestLsMalformedSlot(t *testing.T) {
	data := setup(t, "file")
	writeSlot(t, data, "{broken")

	out, errOut, err := run(t, "ls")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if !strings.Contains(out, "Total: 0  Completed: 0") {
		t.Errorf("malformed slot did not list as empty:\n%s", out)
	}
	if !strings.Contains(errOut, "load task list") {
		t.Errorf("load failure not logged: %q", errOut)
	}
	// ls must leave the broken slot alone.
	raw, _ := os.ReadFile(filepath.Join(data, "store", persist.Key))
	if string(raw) != "{broken" {
		t.Errorf("ls rewrote the slot: %q", raw)
	}

	_, _, err = run(t, "doctor")
	if err == nil || !strings.Contains(err.Error(), "doctor checks failed") {
		t.Errorf("doctor on malformed slot: %v", err)
	}
}

// writeSlot stores raw as the file backend's task slot.
func writeSlot(t *testing.T, dataDir, raw string) string {
	t.Helper()
	path := filepath.Join(dataDir, "store", persist.Key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNoOpKeepsUnreadableSlot(t *testing.T) {
	const broken = `[{"id":"a","text":"keep me","completed":false},{"id":"a","text":"twin","completed":true}]`
	for _, args := range [][]string{
		{"toggle", "zzz"},
		{"rm", "zzz"},
		{"toggle", "1"},
		{"add", "  "},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			data := setup(t, "file")
			path := writeSlot(t, data, broken)

			_, errOut, err := run(t, args...)
			if err != nil {
				t.Fatalf("Run(%v): %v", args, err)
			}
			if !strings.Contains(errOut, "load task list") {
				t.Errorf("load failure not logged: %q", errOut)
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if string(raw) != broken {
				t.Errorf("slot rewritten by a no-op: %q", raw)
			}
		})
	}
}

func TestAddOverUnreadableSlot(t *testing.T) {
	data := setup(t, "file")
	writeSlot(t, data, "{broken")

	mustRun(t, "add", "fresh start")
	list := storedList(t, storage.BackendFile, data)
	if len(list) != 1 || list[0].Text != "fresh start" {
		t.Errorf("stored list = %+v", list)
	}
}

func TestNoOpDoesNotCreateSlot(t *testing.T) {
	data := setup(t, "file")
	if _, _, err := run(t, "toggle", "zzz"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(data, "store", persist.Key)); !os.IsNotExist(err) {
		t.Errorf("no-op on an empty board created the slot: %v", err)
	}
}

func TestHelpListsEnvironment(t *testing.T) {
	setup(t, "memory")
	out := mustRun(t, "help")
	for _, name := range []string{
		"TASKBOARD_DATA_DIR", "TASKBOARD_STORAGE", "TASKBOARD_LOG_DIR",
		"TASKBOARD_LOG_LEVEL", "TASKBOARD_LOG_FORMAT",
		"TASKBOARD_LOG_TIMESTAMPS", "TASKBOARD_LOG_CALLER",
	} {
		if !strings.Contains(out, name) {
			t.Errorf("help does not mention %s", name)
		}
	}
}

func TestDoctor(t *testing.T) {
	setup(t, "file")
	mustRun(t, "add", "one")

	out, _, err := run(t, "doctor", "-v")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	for _, want := range []string{"Storage: file", `Slot "tasks": 1 tasks, 0 completed`, "storage    = file (environment)"} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output lacks %q:\n%s", want, out)
		}
	}
}

func TestTailWithoutLogs(t *testing.T) {
	setup(t, "memory")
	if out := mustRun(t, "tail"); !strings.Contains(out, "No log files found.") {
		t.Errorf("tail output = %q", out)
	}
}

func TestResolveTaskRef(t *testing.T) {
	tasks := todo.List{
		{ID: "abc123", Text: "first"},
		{ID: "abd456", Text: "second"},
		{ID: "2f00", Text: "third"},
	}
	tests := []struct {
		ref     string
		wantID  string
		wantErr bool
	}{
		{ref: "abc123", wantID: "abc123"},
		{ref: "abc", wantID: "abc123"},
		{ref: "abd", wantID: "abd456"},
		{ref: "1", wantID: "abc123"},
		{ref: "2", wantID: "abd456"},
		{ref: " 3 ", wantID: "2f00"},
		{ref: "2f", wantID: "2f00"},
		{ref: "ab", wantErr: true},
		{ref: "4"},
		{ref: "0"},
		{ref: "zzz"},
		{ref: ""},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			task, ok, err := resolveTaskRef(tasks, tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", task)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantID == "" {
				if ok {
					t.Errorf("resolved %q to %+v, want no match", tt.ref, task)
				}
				return
			}
			if !ok || task.ID != tt.wantID {
				t.Errorf("resolveTaskRef(%q) = %q, %v; want %q", tt.ref, task.ID, ok, tt.wantID)
			}
		})
	}
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", abs)
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			panic("testing: chdir back to " + old + ": " + err.Error())
		}
	})
}

package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"

	"tableflip.dev/ordo/pkg/item"
)

func setup(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ORDO_CONFIG_PATH", dir)
	t.Setenv("ORDO_BACKEND", "diskv")
	t.Setenv("ORDO_PATH", dir)
	t.Setenv("ORDO_OWNER", "tester")
	t.Setenv("ORDO_LOG_LEVEL", "error")
	t.Cleanup(viper.Reset)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := New()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("ordo %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func decode(t *testing.T, out string) []item.Item {
	t.Helper()
	var items []item.Item
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	return items
}

func texts(items []item.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text()
	}
	return out
}

func TestListLifecycle(t *testing.T) {
	setup(t)

	mustExecute(t, "list", "add", "groceries")
	mustExecute(t, "list", "add", "chores")
	mustExecute(t, "list", "add", "errands")
	mustExecute(t, "list", "mv", "3", "1")
	mustExecute(t, "list", "rename", "2", "home", "chores")

	items := decode(t, mustExecute(t, "lists", "--json"))
	if diff := cmp.Diff([]string{"errands", "home chores", "chores"}, texts(items)); diff != "" {
		t.Fatalf("lists (-want +got):\n%s", diff)
	}
	for i, it := range items {
		if it.Position != i {
			t.Fatalf("%s at position %d, want %d", it.Text(), it.Position, i)
		}
	}

	mustExecute(t, "list", "rm", "1")
	items = decode(t, mustExecute(t, "list", "ls", "--json"))
	if diff := cmp.Diff([]string{"home chores", "chores"}, texts(items)); diff != "" {
		t.Fatalf("after rm (-want +got):\n%s", diff)
	}
}

func TestTasksNeedAList(t *testing.T) {
	setup(t)
	if _, err := execute(t, "task", "add", "milk"); err == nil || !strings.Contains(err.Error(), "--list") {
		t.Fatalf("expected a --list error, got %v", err)
	}
}

func TestTaskCompletion(t *testing.T) {
	setup(t)
	mustExecute(t, "list", "add", "groceries")
	mustExecute(t, "task", "-l", "1", "add", "milk")
	mustExecute(t, "task", "-l", "1", "add", "eggs")
	mustExecute(t, "task", "-l", "1", "done", "2")

	items := decode(t, mustExecute(t, "tasks", "-l", "1", "--json"))
	if diff := cmp.Diff([]string{"milk", "eggs"}, texts(items)); diff != "" {
		t.Fatalf("tasks (-want +got):\n%s", diff)
	}
	if items[0].Payload.Completed || !items[1].Payload.Completed {
		t.Fatalf("completion = %v, %v", items[0].Payload.Completed, items[1].Payload.Completed)
	}

	mustExecute(t, "task", "-l", "1", "undo", "2")
	items = decode(t, mustExecute(t, "tasks", "-l", "1", "--json"))
	if items[1].Payload.Completed {
		t.Fatal("undo left the task completed")
	}
}

func TestNotesAreSeparateFromTasks(t *testing.T) {
	setup(t)
	mustExecute(t, "list", "add", "groceries")
	mustExecute(t, "note", "-l", "1", "add", "the", "corner", "shop", "closes", "early")
	mustExecute(t, "task", "-l", "1", "add", "milk")

	notes := decode(t, mustExecute(t, "notes", "-l", "1", "--json"))
	if diff := cmp.Diff([]string{"the corner shop closes early"}, texts(notes)); diff != "" {
		t.Fatalf("notes (-want +got):\n%s", diff)
	}
	if notes[0].Kind != item.KindNote {
		t.Fatalf("kind = %q", notes[0].Kind)
	}
}

func TestMoveRejectsBadPosition(t *testing.T) {
	setup(t)
	mustExecute(t, "list", "add", "groceries")
	if _, err := execute(t, "list", "mv", "1", "top"); err == nil {
		t.Fatal("expected an error for a non-numeric position")
	}
	if _, err := execute(t, "list", "mv", "1", "5"); err == nil {
		t.Fatal("expected an error for an out of range position")
	}
}

func TestShowOverview(t *testing.T) {
	setup(t)
	mustExecute(t, "list", "add", "groceries")
	mustExecute(t, "task", "-l", "1", "add", "milk")

	out := mustExecute(t, "show")
	for _, want := range []string{"groceries", "milk"} {
		if !strings.Contains(out, want) {
			t.Fatalf("overview missing %q:\n%s", want, out)
		}
	}
}

func TestJSONErrors(t *testing.T) {
	setup(t)
	if _, err := execute(t, "task", "--json", "add", "milk"); err != nil {
		t.Fatalf("--json should print the error instead of returning it, got %v", err)
	}
}

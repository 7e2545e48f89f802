package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/ordo/pkg/item"
	"tableflip.dev/ordo/pkg/store"
)

func TestResolveTargets(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, store.NewMemory())
	lists, _ := svc.Lists(ctx)
	groceries, err := lists.Insert(ctx, "groceries")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	c, parent, err := svc.Resolve(ctx, Target{Kind: item.KindList})
	if err != nil || parent != nil || c != lists {
		t.Fatalf("lists target: cache=%v parent=%v err=%v", c, parent, err)
	}

	c, parent, err = svc.Resolve(ctx, Target{Kind: item.KindTask, List: "1"})
	if err != nil {
		t.Fatalf("tasks target: %v", err)
	}
	if parent == nil || parent.ID != groceries.ID {
		t.Fatalf("parent = %+v", parent)
	}
	if c.Scope() != item.TasksOf("alice", groceries.ID) {
		t.Fatalf("scope = %v", c.Scope())
	}

	if _, _, err := svc.Resolve(ctx, Target{Kind: item.KindNote}); !errors.Is(err, item.ErrValidation) {
		t.Fatalf("missing list: expected validation error, got %v", err)
	}
	if _, _, err := svc.Resolve(ctx, Target{Kind: item.KindNote, List: "7"}); !errors.Is(err, item.ErrNotFound) {
		t.Fatalf("unknown list: expected not found, got %v", err)
	}
}

func TestMoveAndRemove(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, store.NewMemory())
	lists, _ := svc.Lists(ctx)
	for _, title := range []string{"a", "b", "c"} {
		if _, err := lists.Insert(ctx, title); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	if _, err := Move(ctx, lists, "1", 3); err != nil {
		t.Fatalf("move: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "c", "a"}, texts(lists.Snapshot())); diff != "" {
		t.Fatalf("after move (-want +got):\n%s", diff)
	}
	if _, err := Move(ctx, lists, "1", 9); !errors.Is(err, item.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	removed, err := svc.Remove(ctx, lists, "2")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.Text() != "c" {
		t.Fatalf("removed %q", removed.Text())
	}
	if diff := cmp.Diff([]string{"b", "a"}, texts(lists.Snapshot())); diff != "" {
		t.Fatalf("after remove (-want +got):\n%s", diff)
	}
}

package glyph

import (
	"testing"

	"tableflip.dev/ordo/pkg/item"
)

func TestFor(t *testing.T) {
	tests := map[string]struct {
		it   item.Item
		want string
	}{
		"list":      {it: item.Item{Kind: item.KindList}, want: List},
		"note":      {it: item.Item{Kind: item.KindNote}, want: Note},
		"open task": {it: item.Item{Kind: item.KindTask}, want: Task},
		"done task": {it: item.Item{Kind: item.KindTask, Payload: item.Payload{Completed: true}}, want: TaskCompleted},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := For(tc.it); got != tc.want {
				t.Fatalf("For() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestStrike(t *testing.T) {
	if got, want := Strike("x"), "\x1b[9mx\x1b[0m"; got != want {
		t.Fatalf("Strike() = %q, want %q", got, want)
	}
}

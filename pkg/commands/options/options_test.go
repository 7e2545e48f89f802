package options

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestWrap(t *testing.T) {
	got := Wrap("the quick brown fox jumps over the lazy dog", 10)
	for _, line := range strings.Split(got, "\n") {
		if len(line) > 10 {
			t.Fatalf("line %q longer than 10", line)
		}
	}
	if strings.Join(strings.Fields(got), " ") != "the quick brown fox jumps over the lazy dog" {
		t.Fatalf("words lost: %q", got)
	}
}

func TestHandleErrorPassesThroughWithoutJSON(t *testing.T) {
	o := &OutputOptions{}
	want := errors.New("boom")
	if got := o.HandleError(want); got != want {
		t.Fatalf("HandleError() = %v, want %v", got, want)
	}
	if got := o.HandleError(nil); got != nil {
		t.Fatalf("HandleError(nil) = %v", got)
	}
}

func TestGlobalArgs(t *testing.T) {
	cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
	g := &GlobalOptions{}
	l := &ListOptions{}
	AddGlobalArgs(cmd, g)
	AddListArgs(cmd, l)
	cmd.SetArgs([]string{"--as", "bob", "--backend", "memory", "-l", "2"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if g.As != "bob" || g.Backend != "memory" || l.List != "2" {
		t.Fatalf("flags not bound: %+v %+v", g, l)
	}
}

package printers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/ordo/pkg/item"
)

func TestItemsNumbersAndWraps(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}

	long := strings.Repeat("word ", 30)
	pp.Items(
		item.Item{ID: "t1", Kind: item.KindTask, Payload: item.Payload{Title: "milk"}},
		item.Item{ID: "t2", Kind: item.KindTask, Payload: item.Payload{Title: "eggs", Completed: true}},
		item.Item{ID: "n1", Kind: item.KindNote, Payload: item.Payload{Content: long}},
	)
	out := buf.String()
	for _, want := range []string{"  1 ● milk", "  2 ✘ eggs", "  3 ⁃ word"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		if len(line) > noteWidth+12 {
			t.Fatalf("line not wrapped (%d): %q", len(line), line)
		}
	}
}

func TestItemsEmpty(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.Items()
	if !strings.Contains(buf.String(), "none") {
		t.Fatalf("expected none marker, got %q", buf.String())
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, map[string]int{"count": 2}); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(buf.String(), `"count": 2`) {
		t.Fatalf("unexpected json %q", buf.String())
	}
}

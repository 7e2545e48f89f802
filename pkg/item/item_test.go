package item

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"list", KindList},
		{"Lists", KindList},
		{" notes ", KindNote},
		{"task", KindTask},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if _, err := ParseKind("event"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDescriptorNormalize(t *testing.T) {
	got, err := Notes.Normalize("  buy milk \n")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != "buy milk" {
		t.Fatalf("expected trimmed text, got %q", got)
	}
	for _, in := range []string{"", "   ", "\t\n"} {
		if _, err := Tasks.Normalize(in); !errors.Is(err, ErrValidation) {
			t.Errorf("Normalize(%q) = %v, want ErrValidation", in, err)
		}
	}
}

func TestDescriptorPayloadFields(t *testing.T) {
	if p := Notes.NewPayload("hello"); p.Content != "hello" || p.Title != "" {
		t.Fatalf("unexpected note payload %+v", p)
	}
	if p := Lists.NewPayload("Groceries"); p.Title != "Groceries" {
		t.Fatalf("unexpected list payload %+v", p)
	}
	p := Payload{Title: "old", Completed: true}
	p = Tasks.TextFields("new").Apply(p)
	if p.Title != "new" || !p.Completed {
		t.Fatalf("text update must keep completion, got %+v", p)
	}
}

func TestScopeValidate(t *testing.T) {
	if err := ListsOf("alice").Validate(); err != nil {
		t.Fatalf("lists scope: %v", err)
	}
	if err := NotesOf("alice", "").Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("notes without parent should fail, got %v", err)
	}
	bad := Scope{OwnerID: "alice", ParentID: "x", Kind: KindList}
	if err := bad.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("list with parent should fail, got %v", err)
	}
	if err := TasksOf("", "l1").Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing owner should fail, got %v", err)
	}
}

func TestItemJSONTimestamp(t *testing.T) {
	created := time.Date(2024, time.March, 3, 10, 0, 0, 0, time.UTC)
	in := Item{
		ID:       "abc",
		OwnerID:  "alice",
		Kind:     KindList,
		Position: 2,
		Payload:  Payload{Title: "Groceries"},
		Created:  Timestamp{Time: created},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Item
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Created.Equal(created) {
		t.Fatalf("created mismatch: %v vs %v", out.Created, created)
	}
	if out.Text() != "Groceries" {
		t.Fatalf("unexpected text %q", out.Text())
	}
}

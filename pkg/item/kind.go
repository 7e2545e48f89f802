package item

import (
	"fmt"
	"strings"
)

// Kind identifies which ordered collection an item belongs to.
type Kind string

const (
	// KindList is a top-level named list.
	KindList Kind = "list"
	// KindNote is a free-text note inside a list.
	KindNote Kind = "note"
	// KindTask is a completable task inside a list.
	KindTask Kind = "task"
)

// AllKinds returns the supported kinds.
func AllKinds() []Kind {
	return []Kind{KindList, KindNote, KindTask}
}

// ParseKind converts a string (singular or plural) to a Kind.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(raw)), "s"))
	for _, candidate := range AllKinds() {
		if candidate == k {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrValidation, raw)
}

// MustKind parses the input and panics on error. Intended for tests.
func MustKind(raw string) Kind {
	k, err := ParseKind(raw)
	if err != nil {
		panic(err)
	}
	return k
}

// Descriptor captures how one kind stores its user-visible text and how that
// text is validated. One generic coordinator is instantiated per descriptor.
type Descriptor struct {
	Kind Kind
	// Nested kinds live inside a list.
	Nested bool
	// Completable kinds carry a completed flag.
	Completable bool
	// Label names the text field in messages ("title", "content").
	Label string

	text   func(Payload) string
	fields func(string) Fields
}

var descriptors = map[Kind]Descriptor{
	KindList: {
		Kind:   KindList,
		Label:  "title",
		text:   func(p Payload) string { return p.Title },
		fields: func(s string) Fields { return Fields{Title: &s} },
	},
	KindNote: {
		Kind:   KindNote,
		Nested: true,
		Label:  "content",
		text:   func(p Payload) string { return p.Content },
		fields: func(s string) Fields { return Fields{Content: &s} },
	},
	KindTask: {
		Kind:        KindTask,
		Nested:      true,
		Completable: true,
		Label:       "title",
		text:        func(p Payload) string { return p.Title },
		fields:      func(s string) Fields { return Fields{Title: &s} },
	},
}

// Describe returns the descriptor for k.
func Describe(k Kind) (Descriptor, error) {
	d, ok := descriptors[k]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: unknown kind %q", ErrValidation, k)
	}
	return d, nil
}

// Lists, Notes and Tasks are the built-in descriptors.
var (
	Lists = descriptors[KindList]
	Notes = descriptors[KindNote]
	Tasks = descriptors[KindTask]
)

// Normalize trims text and rejects empty values.
func (d Descriptor) Normalize(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", fmt.Errorf("%w: %s %s must not be empty", ErrValidation, d.Kind, d.Label)
	}
	return trimmed, nil
}

// Text extracts the user-visible text from a payload.
func (d Descriptor) Text(p Payload) string {
	return d.text(p)
}

// NewPayload builds the payload for a freshly created item.
func (d Descriptor) NewPayload(text string) Payload {
	return d.fields(text).Apply(Payload{})
}

// TextFields returns the partial update that replaces the text field.
func (d Descriptor) TextFields(text string) Fields {
	return d.fields(text)
}

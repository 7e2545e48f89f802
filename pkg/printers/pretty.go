package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/ordo/pkg/glyph"
	"tableflip.dev/ordo/pkg/item"
)

// noteWidth is the column notes are wrapped at.
const noteWidth = 72

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
}

var (
	spacing = strings.Repeat(" ", len("1a2b3c4d  "))
)

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)

	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), spacing)
	}
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), spacing)
	}
	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintf(pp.out(), " %s\n", noun)
	default:
		_, _ = c.Fprintf(pp.out(), " %ss\n", noun)
	}
}

// Items prints each item on its own line prefixed by its 1-based index, the
// form accepted wherever a reference is expected.
func (pp *PrettyPrint) Items(items ...item.Item) {
	w := pp.out()
	if len(items) == 0 {
		f := color.New(color.Faint, color.Italic)
		if pp.ShowID {
			_, _ = f.Fprint(w, spacing)
		}
		_, _ = f.Fprint(w, " none\n\n")
		return
	}

	t := color.New()
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	n := color.New(color.Faint)
	done := color.New(color.Faint, color.CrossedOut)

	for i, it := range items {
		if pp.ShowID {
			id := it.ShortID()
			_, _ = y.Fprint(w, id)
			_, _ = y.Fprint(w, strings.Repeat(" ", len(spacing)-len(id)))
		}
		_, _ = n.Fprintf(w, "%3d ", i+1)
		text := it.Text()
		switch {
		case it.Kind == item.KindNote:
			text = strings.TrimLeft(indent.String(wordwrap.String(text, noteWidth), 6), " ")
			_, _ = t.Fprintf(w, "%s %s\n", glyph.For(it), text)
		case it.Payload.Completed:
			_, _ = t.Fprintf(w, "%s ", glyph.For(it))
			_, _ = done.Fprintln(w, text)
		default:
			_, _ = t.Fprintf(w, "%s %s\n", glyph.For(it), text)
		}
	}
	_, _ = t.Fprintln(w, "")
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v interface{}) error {
	if w == nil {
		w = color.Output
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

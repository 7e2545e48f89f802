package glyph

import (
	"fmt"

	"tableflip.dev/ordo/pkg/item"
)

type Glyph struct {
	Symbol  string
	Meaning string
}

const (
	escape        = "\x1b"
	resetCode     = 0
	boldCode      = 1
	italicCode    = 3
	underlineCode = 4
	strikeCode    = 9
)

const (
	List          = "■"
	Note          = "⁃"
	Task          = "●"
	TaskCompleted = "✘"
)

func Strike(in string) string {
	return fmt.Sprintf("%s[%dm%s%s[%dm", escape, strikeCode, in, escape, resetCode)
}

func Bold(in string) string {
	return fmt.Sprintf("%s[%dm%s%s[%dm", escape, boldCode, in, escape, resetCode)
}

func Italic(in string) string {
	return fmt.Sprintf("%s[%dm%s%s[%dm", escape, italicCode, in, escape, resetCode)
}

func Underline(in string) string {
	return fmt.Sprintf("%s[%dm%s%s[%dm", escape, underlineCode, in, escape, resetCode)
}

// For returns the bullet drawn in front of it.
func For(it item.Item) string {
	switch it.Kind {
	case item.KindList:
		return List
	case item.KindNote:
		return Note
	case item.KindTask:
		if it.Payload.Completed {
			return TaskCompleted
		}
		return Task
	}
	return " "
}

func DefaultGlyphs() []Glyph {
	return []Glyph{
		{Symbol: List, Meaning: "list"},
		{Symbol: Note, Meaning: "note"},
		{Symbol: Task, Meaning: "task"},
		{Symbol: TaskCompleted, Meaning: "task completed"},
	}
}

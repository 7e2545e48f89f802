package key

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/ordo/pkg/glyph"
)

type Key struct {
	Out io.Writer
}

func (k *Key) Do(ctx context.Context) error {
	out := k.Out
	if out == nil {
		out = color.Output
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(glyph.Bold("Symbol"), glyph.Bold("Meaning"))
	for _, v := range glyph.DefaultGlyphs() {
		tbl.AddRow(v.Symbol, v.Meaning)
	}

	_, _ = fmt.Fprintln(out, glyph.Bold(glyph.Underline("\nBullets")))
	_, _ = fmt.Fprintln(out, tbl)
	return nil
}

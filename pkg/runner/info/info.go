package info

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/ordo/pkg/app"
	"tableflip.dev/ordo/pkg/glyph"
	"tableflip.dev/ordo/pkg/printers"
	"tableflip.dev/ordo/pkg/store"
)

type Info struct {
	Config  store.Config
	Service *app.Service
	JSON    bool
	Out     io.Writer
}

type summary struct {
	ConfigPath string `json:"configPath,omitempty"`
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	Owner      string `json:"owner"`
	Lists      int    `json:"lists"`
	Notes      int    `json:"notes"`
	Tasks      int    `json:"tasks"`
	Open       int    `json:"open"`
}

func (n *Info) Do(ctx context.Context) error {
	out := n.Out
	if out == nil {
		out = color.Output
	}

	if n.Config == nil {
		var err error
		n.Config, err = store.LoadConfig()
		if err != nil {
			return err
		}
	}

	if n.Service == nil {
		return fmt.Errorf("failed to create service")
	}
	ov, err := n.Service.Overview(ctx)
	if err != nil {
		return err
	}

	s := summary{
		ConfigPath: os.Getenv("ORDO_CONFIG_PATH"),
		Backend:    n.Config.Backend(),
		Path:       n.Config.BasePath(),
		Owner:      ov.Owner,
		Lists:      len(ov.Lists),
		Notes:      ov.Notes,
		Tasks:      ov.Tasks,
		Open:       ov.Open(),
	}
	if n.JSON {
		return printers.JSON(out, s)
	}

	if s.ConfigPath != "" {
		_, _ = fmt.Fprintln(out, "ORDO_CONFIG_PATH found on env, using", s.ConfigPath)
	} else {
		_, _ = fmt.Fprintln(out, "ORDO_CONFIG_PATH env var not set")
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(glyph.Bold("Backend"), s.Backend)
	tbl.AddRow(glyph.Bold("Path"), s.Path)
	tbl.AddRow(glyph.Bold("Owner"), s.Owner)
	tbl.AddRow(glyph.Bold("Lists"), s.Lists)
	tbl.AddRow(glyph.Bold("Notes"), s.Notes)
	tbl.AddRow(glyph.Bold("Tasks"), fmt.Sprintf("%d (%d open)", s.Tasks, s.Open))
	_, _ = fmt.Fprintln(out, tbl)
	return nil
}

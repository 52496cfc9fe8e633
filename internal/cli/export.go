package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/st3v3nmw/focusguard/internal/i18n"
	"github.com/st3v3nmw/focusguard/internal/stats"
)

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
	app, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer app.Close()

	var out io.Writer = c.globals.stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	ctx := context.Background()

	if c.Format != "json" {
		lang, err := app.store.Language(ctx)
		if err != nil {
			return err
		}
		messages := i18n.For(lang)

		if c.Format == "patience-csv" {
			return app.recorder.PatienceCSV(ctx, out, c.Start, c.End, messages.PatienceCSVHeader)
		}
		return app.recorder.BrowsingCSV(ctx, out, c.Start, c.End, messages.BrowsingCSVHeader)
	}

	doc, err := app.recorder.Export(ctx, stats.ExportOptions{
		StartDate:       c.Start,
		EndDate:         c.End,
		IncludePatience: !c.NoPatience,
		IncludeBrowsing: !c.NoBrowsing,
		IncludeSettings: !c.NoSettings,
	})
	if err != nil {
		return err
	}

	g := *c.globals
	g.stdout = out
	return g.printJSON(doc)
}

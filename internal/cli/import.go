package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/st3v3nmw/focusguard/internal/stats"
	"github.com/st3v3nmw/focusguard/internal/types"
)

// Execute implements the go-flags Commander interface for ImportCommand.
func (c *ImportCommand) Execute(args []string) error {
	data, err := os.ReadFile(c.Args.File)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}

	// Validate before touching the database.
	doc, err := stats.ParseExport(data)
	if err != nil {
		return err
	}

	app, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.recorder.Import(context.Background(), doc, types.ImportMode(c.Mode))
	if err != nil {
		return err
	}

	if c.globals.JSON {
		return c.globals.printJSON(result)
	}

	fmt.Fprintf(c.globals.stdout, "Imported %d browsing sessions, %d patience events, %d topics.\n",
		result.BrowsingImported, result.PatienceImported, result.StudyTopicsImported)
	if result.SettingsImported {
		fmt.Fprintln(c.globals.stdout, "Settings restored.")
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
)

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	ranged := c.Start != "" || c.End != ""
	switch {
	case c.All && ranged:
		return fmt.Errorf("purge takes either --all or --start/--end, not both")
	case !c.All && !ranged:
		return fmt.Errorf("purge requires --all or --start and --end")
	}

	out := c.globals.stdout

	if !c.Force {
		target := "ALL recorded statistics"
		if ranged {
			target = fmt.Sprintf("statistics from %s to %s", c.Start, c.End)
		}

		fmt.Fprintf(out, "This will permanently delete %s.\n", target)
		fmt.Fprintln(out, "Settings and topics are kept. This action cannot be undone.")
		fmt.Fprintln(out)
		if err := confirm(c.globals.stdin, out, `Type "PURGE" to confirm: `, "PURGE"); err != nil {
			return err
		}
	}

	app, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()

	if c.All {
		if err := app.recorder.DeleteAll(ctx); err != nil {
			return fmt.Errorf("purge failed: %w", err)
		}

		if c.globals.JSON {
			return c.globals.printJSON(map[string]any{"purged": true})
		}
		fmt.Fprintln(out, "Purged all statistics.")
		return nil
	}

	result, err := app.recorder.DeleteRange(ctx, c.Start, c.End)
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	if c.globals.JSON {
		return c.globals.printJSON(result)
	}
	fmt.Fprintf(out, "Deleted %d browsing sessions and %d patience events.\n",
		result.DeletedBrowsingCount, result.DeletedPatienceCount)
	return nil
}

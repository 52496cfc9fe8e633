package cli

import (
	"context"
	"fmt"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/st3v3nmw/focusguard/internal/config"
	"github.com/st3v3nmw/focusguard/internal/stats"
	"github.com/st3v3nmw/focusguard/internal/types"
)

// Execute implements the go-flags Commander interface for StatsCommand.
func (c *StatsCommand) Execute(args []string) error {
	app, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()

	tz := c.Timezone
	if tz == "" {
		settings, err := app.store.RecordingSettings(ctx)
		if err != nil {
			return err
		}
		tz = settings.Timezone()
	}

	loc, err := stats.ParseTimezone(tz, config.Location)
	if err != nil {
		return err
	}

	opts := stats.Options{
		GroupBy:   types.Granularity(c.GroupBy),
		Location:  loc,
		StartDate: c.Start,
		EndDate:   c.End,
	}
	if c.Blocking != "" {
		blocking := c.Blocking == "on"
		opts.FilterBlocking = &blocking
	}

	report, err := app.recorder.Report(ctx, opts)
	if err != nil {
		return err
	}

	if c.globals.JSON {
		return c.globals.printJSON(report)
	}

	return printReport(c.globals, report)
}

func minutes(ms int64) string {
	return fmt.Sprintf("%.1f min", (time.Duration(ms) * time.Millisecond).Minutes())
}

func printReport(g *GlobalFlags, report stats.Report) error {
	w := tabwriter.NewWriter(g.stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "Browsing time:\t%s\n", minutes(report.Totals.TotalBrowsingTime))
	fmt.Fprintf(w, "Patience count:\t%d\n", report.Totals.PatienceCount)

	if len(report.Totals.BrowsingByDomain) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "DOMAIN\tTIME")
		for _, d := range report.Totals.BrowsingByDomain {
			fmt.Fprintf(w, "%s\t%s\n", d.Domain, minutes(d.Time))
		}
	}

	keys := make([]string, 0, len(report.Browsing)+len(report.Patience))
	for k := range report.Browsing {
		keys = append(keys, k)
	}
	for k := range report.Patience {
		if _, ok := report.Browsing[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	if len(keys) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "PERIOD\tTIME\tPATIENCE")
		for _, k := range keys {
			fmt.Fprintf(w, "%s\t%s\t%d\n", k, minutes(report.Browsing[k].TotalTime), report.Patience[k].Count)
		}
	}

	return w.Flush()
}

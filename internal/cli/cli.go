package cli

import (
	"fmt"
	"io"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Serve  *ServeCommand
	Stats  *StatsCommand
	Export *ExportCommand
	Import *ImportCommand
	Purge  *PurgeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(stdout io.Writer, stdin io.Reader) (*goflags.Parser, *GlobalFlags, *commands) {
	globals := GlobalFlags{stdout: stdout, stdin: stdin}

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "focusguard"
	parser.LongDescription = "Keeps study sessions on topic: scores pages against your study topics, blocks distracting sites, and records browsing statistics."

	cmds := &commands{
		Serve:  &ServeCommand{globals: &globals},
		Stats:  &StatsCommand{globals: &globals},
		Export: &ExportCommand{globals: &globals},
		Import: &ImportCommand{globals: &globals},
		Purge:  &PurgeCommand{globals: &globals},
	}

	parser.AddCommand("serve", "Run the daemon", "Run the local daemon the browser extension talks to.", cmds.Serve)
	parser.AddCommand("stats", "Show statistics", "Show browsing time and patience counts grouped by day, month or hour.", cmds.Stats)
	parser.AddCommand("export", "Export data", "Export a JSON backup or a CSV report.", cmds.Export)
	parser.AddCommand("import", "Import a backup", "Import a JSON backup written by export.", cmds.Import)
	parser.AddCommand("purge", "Delete statistics", "Delete statistics for a date range, or all of them. Destructive operation with safety prompt.", cmds.Purge)

	return parser, &globals, cmds
}

// Run is the main entry point for the CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	return run(version, args, os.Stdout, os.Stdin)
}

func run(version string, args []string, stdout io.Writer, stdin io.Reader) error {
	// go-flags requires a subcommand, but --version is valid without one.
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Fprintf(stdout, "focusguard %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(stdout, stdin)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}

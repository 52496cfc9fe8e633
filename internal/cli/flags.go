package cli

import "io"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file (default: $FOCUSGUARD_CONFIG_FILE)"`
	DataDir string `long:"data-dir" description:"Directory holding the database (default: $FOCUSGUARD_DATA_DIR)"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Version bool   `long:"version" description:"Show version and exit"`

	stdout io.Writer
	stdin  io.Reader
}

// ServeCommand runs the daemon tabs talk to.
type ServeCommand struct {
	Port uint16 `long:"port" description:"Override API port"`

	globals *GlobalFlags
}

// StatsCommand prints aggregated statistics.
type StatsCommand struct {
	Start    string `long:"start" description:"First day to include (YYYY-MM-DD)"`
	End      string `long:"end" description:"Last day to include (YYYY-MM-DD)"`
	GroupBy  string `long:"group-by" description:"Bucket size" choice:"day" choice:"month" choice:"hour" default:"day"`
	Timezone string `long:"tz" description:"Timezone: auto, an IANA name, or an offset like +09:00"`
	Blocking string `long:"blocking" description:"Only sessions with blocking on or off" choice:"on" choice:"off"`

	globals *GlobalFlags
}

// ExportCommand writes a backup or a CSV report.
type ExportCommand struct {
	Output     string `long:"output" short:"o" description:"Output file (default: stdout)"`
	Format     string `long:"format" description:"Output format" choice:"json" choice:"browsing-csv" choice:"patience-csv" default:"json"`
	Start      string `long:"start" description:"First day to include (YYYY-MM-DD)"`
	End        string `long:"end" description:"Last day to include (YYYY-MM-DD)"`
	NoPatience bool   `long:"no-patience" description:"Leave out patience events"`
	NoBrowsing bool   `long:"no-browsing" description:"Leave out browsing sessions"`
	NoSettings bool   `long:"no-settings" description:"Leave out settings and topics"`

	globals *GlobalFlags
}

// ImportCommand restores a backup written by export.
type ImportCommand struct {
	Mode string `long:"mode" description:"How to combine with existing data" choice:"merge" choice:"replace" default:"merge"`
	Args struct {
		File string `positional-arg-name:"file" description:"Backup file to import"`
	} `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
}

// PurgeCommand deletes statistics, either a date range or everything.
type PurgeCommand struct {
	All   bool   `long:"all" description:"Delete all statistics"`
	Start string `long:"start" description:"First day to delete (YYYY-MM-DD)"`
	End   string `long:"end" description:"Last day to delete (YYYY-MM-DD)"`
	Force bool   `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
}

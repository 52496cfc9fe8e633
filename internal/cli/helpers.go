package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/st3v3nmw/focusguard/internal/config"
	"github.com/st3v3nmw/focusguard/internal/i18n"
	"github.com/st3v3nmw/focusguard/internal/stats"
	"github.com/st3v3nmw/focusguard/internal/storage"
)

const (
	envPrefix = "FOCUSGUARD_"
	dbName    = "focusguard.db"
)

func getEnv(envVar string) (string, bool) {
	return os.LookupEnv(envPrefix + envVar)
}

func (g *GlobalFlags) configFile() string {
	if g.Config != "" {
		return g.Config
	}
	value, _ := getEnv("CONFIG_FILE")
	return value
}

func (g *GlobalFlags) dataDir() string {
	if g.DataDir != "" {
		return g.DataDir
	}
	if value, ok := getEnv("DATA_DIR"); ok && value != "" {
		return value
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "focusguard")
}

// localeLanguage maps a POSIX locale such as "en_US.UTF-8" to a supported
// language.
func localeLanguage() string {
	locale := os.Getenv("LANG")
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	return i18n.Match(strings.ReplaceAll(locale, "_", "-"))
}

type app struct {
	store    *storage.Store
	recorder *stats.Recorder
	clock    clockwork.Clock
}

// openApp reads the config and opens the store with a recorder on top.
func openApp(g *GlobalFlags) (*app, error) {
	if err := config.Read(g.configFile()); err != nil {
		return nil, err
	}

	dir := g.dataDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	store, err := storage.Open(filepath.Join(dir, dbName), storage.Defaults{
		Sites:    config.All.Sites.Settings(),
		Language: localeLanguage(),
	})
	if err != nil {
		return nil, err
	}

	clock := clockwork.NewRealClock()
	recorder := stats.NewRecorder(store, clock, config.All.Stats.WriteInterval, config.All.Stats.QueueSize)

	return &app{store: store, recorder: recorder, clock: clock}, nil
}

func (a *app) Close() {
	a.recorder.Shutdown()
	a.store.Close()
}

func (g *GlobalFlags) printJSON(v any) error {
	enc := json.NewEncoder(g.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// confirm asks the user to type word; any other answer aborts.
func confirm(in io.Reader, out io.Writer, prompt, word string) error {
	fmt.Fprint(out, prompt)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return fmt.Errorf("aborted: no input received")
	}
	if strings.TrimSpace(scanner.Text()) != word {
		return fmt.Errorf("aborted: confirmation text did not match")
	}
	return nil
}

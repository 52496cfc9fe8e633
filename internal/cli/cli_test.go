package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/st3v3nmw/focusguard/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const backup = `{
  "version": "1.0",
  "browsingSessions": [
    {"domain": "golang.org", "startTime": 1736935200000, "endTime": 1736935260000, "duration": 60000,
     "isBlockingEnabled": false, "date": "2025-01-15", "hour": 10},
    {"domain": "youtube.com", "startTime": 1736989200000, "endTime": 1736989320000, "duration": 120000,
     "isBlockingEnabled": true, "date": "2025-01-16", "hour": 1}
  ],
  "patienceEvents": [
    {"domain": "x.com", "timestamp": 1736989200000, "date": "2025-01-16"}
  ],
  "studyTopics": ["math"]
}`

// runCLI executes args with stdin as input and returns what was printed.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	err := run("test", args, &out, strings.NewReader(stdin))
	return out.String(), err
}

func setup(t *testing.T) (dataDir string, backupFile string) {
	t.Helper()

	t.Setenv("LANG", "en_US.UTF-8")
	t.Setenv("FOCUSGUARD_CONFIG_FILE", "")
	dataDir = t.TempDir()
	t.Setenv("FOCUSGUARD_DATA_DIR", dataDir)

	backupFile = filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(backupFile, []byte(backup), 0644))

	return dataDir, backupFile
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "", "--version")
	require.NoError(t, err)
	assert.Equal(t, "focusguard test\n", out)
}

func TestBuildParser_RegistersCommands(t *testing.T) {
	parser, _, cmds := buildParser(&bytes.Buffer{}, strings.NewReader(""))

	for _, name := range []string{"serve", "stats", "export", "import", "purge"} {
		assert.NotNil(t, parser.Find(name), name)
	}
	assert.NotNil(t, cmds.Serve.globals)
}

func TestDataDir(t *testing.T) {
	t.Setenv("FOCUSGUARD_DATA_DIR", "/var/lib/focusguard")

	g := &GlobalFlags{}
	assert.Equal(t, "/var/lib/focusguard", g.dataDir())

	g.DataDir = "/tmp/fg"
	assert.Equal(t, "/tmp/fg", g.dataDir())
}

func TestLocaleLanguage(t *testing.T) {
	tests := map[string]string{
		"en_US.UTF-8": "en",
		"ja_JP.UTF-8": "ja",
		"C":           "ja",
		"":            "ja",
		"fr_FR@euro":  "ja",
	}

	for locale, want := range tests {
		t.Setenv("LANG", locale)
		assert.Equal(t, want, localeLanguage(), locale)
	}
}

func TestImportStatsExportPurge(t *testing.T) {
	dataDir, backupFile := setup(t)

	out, err := runCLI(t, "", "import", backupFile)
	require.NoError(t, err)
	assert.Equal(t, "Imported 2 browsing sessions, 1 patience events, 1 topics.\n", out)

	// Importing the same file again is a no-op.
	out, err = runCLI(t, "", "--json", "import", "--mode", "merge", backupFile)
	require.NoError(t, err)
	var result stats.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, stats.ImportResult{}, result)

	out, err = runCLI(t, "", "--json", "stats", "--tz", "UTC")
	require.NoError(t, err)
	var report stats.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, int64(180_000), report.Totals.TotalBrowsingTime)
	assert.Equal(t, 1, report.Totals.PatienceCount)
	assert.Equal(t, "youtube.com", report.Totals.BrowsingByDomain[0].Domain)

	out, err = runCLI(t, "", "stats", "--tz", "UTC", "--blocking", "off")
	require.NoError(t, err)
	assert.Contains(t, out, "golang.org")
	assert.NotContains(t, out, "youtube.com")
	assert.Contains(t, out, "2025-01-15")

	out, err = runCLI(t, "", "export", "--format", "browsing-csv")
	require.NoError(t, err)
	assert.Equal(t, "\ufeffDate,Domain,Browsing Time (min),Blocking\n"+
		"2025-01-15,golang.org,1.00,OFF\n"+
		"2025-01-16,youtube.com,2.00,ON\n", out)

	exportFile := filepath.Join(t.TempDir(), "export.json")
	_, err = runCLI(t, "", "export", "-o", exportFile, "--no-settings", "--start", "2025-01-16")
	require.NoError(t, err)
	data, err := os.ReadFile(exportFile)
	require.NoError(t, err)
	doc, err := stats.ParseExport(data)
	require.NoError(t, err)
	require.NotNil(t, doc.BrowsingSessions)
	assert.Len(t, *doc.BrowsingSessions, 1)
	assert.Nil(t, doc.StudyTopics)

	out, err = runCLI(t, "", "purge", "--start", "2025-01-16", "--end", "2025-01-16", "--force")
	require.NoError(t, err)
	assert.Equal(t, "Deleted 1 browsing sessions and 1 patience events.\n", out)

	_, err = runCLI(t, "nope\n", "purge", "--all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aborted")

	out, err = runCLI(t, "PURGE\n", "--json", "--data-dir", dataDir, "purge", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, `"purged": true`)

	out, err = runCLI(t, "", "--json", "stats")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Zero(t, report.Totals.TotalBrowsingTime)
}

func TestPurge_RequiresScope(t *testing.T) {
	setup(t)

	_, err := runCLI(t, "", "purge")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "purge requires --all")

	_, err = runCLI(t, "", "purge", "--all", "--start", "2025-01-01")
	require.Error(t, err)
}

func TestImport_RejectsInvalidFile(t *testing.T) {
	setup(t)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"browsingSessions": []}`), 0644))

	_, err := runCLI(t, "", "import", bad)
	require.ErrorIs(t, err, stats.ErrInvalidImport)

	_, err = runCLI(t, "", "import", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pottytracker/internal/models"
	"pottytracker/internal/service"
	"pottytracker/internal/stats"
)

func resetFlags() {
	signupReq = service.SignupRequest{}
	loginEmail, loginPassword, accountFilter = "", "", ""
	inviteEmail, inviteName = "", ""
	logType, logAt, editAt = "", "", ""
	eventsToday = false
	statsZoom = stats.MinZoom
	statsZoomIn, statsZoomOut = 0, 0
	exportOutput, importInput = "", ""
	importClear, importYes = false, false
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func useTempStore(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("POTTY_CONFIG", "")
	t.Setenv("POTTY_DATABASE_PATH", filepath.Join(dir, "cli.db"))
	t.Setenv("POTTY_DISPLAY_TIMEZONE", "UTC")
	return dir
}

func TestRootCmdExists(t *testing.T) {
	require.NotNil(t, rootCmd)
	assert.Equal(t, "potty", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)

	for _, name := range []string{"signup", "login", "logout", "whoami", "accounts", "child", "invite", "log", "events", "edit", "retime", "delete", "stats", "advice", "backup"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		cmd       string
		flag      string
		shorthand string
	}{
		{"signup", "token", "t"},
		{"accounts", "filter", "f"},
		{"log", "type", "t"},
		{"stats", "zoom", "z"},
		{"stats", "zoom-in", ""},
		{"stats", "zoom-out", ""},
	}
	for _, tt := range tests {
		cmd, _, err := rootCmd.Find([]string{tt.cmd})
		require.NoError(t, err)
		f := cmd.Flags().Lookup(tt.flag)
		require.NotNil(t, f, "%s --%s", tt.cmd, tt.flag)
		assert.Equal(t, tt.shorthand, f.Shorthand)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in     string
		hour   int
		minute int
		ok     bool
	}{
		{"19:30", 19, 30, true},
		{"7:05 PM", 19, 5, true},
		{"7:05am", 7, 5, true},
		{"12AM", 0, 0, true},
		{"25:00", 0, 0, false},
		{"soon", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			h, m, err := parseClock(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hour, h)
			assert.Equal(t, tt.minute, m)
		})
	}
}

func TestParseWhen(t *testing.T) {
	now := time.Date(2024, 1, 5, 23, 0, 0, 0, time.UTC)

	got, err := parseWhen("08:15", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 8, 15, 0, 0, time.UTC), got)

	got, err = parseWhen("2024-02-01T10:00:00Z", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC), got)

	_, err = parseWhen("yesterday", now, time.UTC)
	assert.Error(t, err)
}

func TestRenderers(t *testing.T) {
	freq := renderFrequency([]models.FrequencyBucket{{TimeOfDay: 480, Count: 3}, {TimeOfDay: 481, Count: 1}})
	assert.Contains(t, freq, "8:00 AM")
	assert.Contains(t, freq, "███ 3")
	assert.Contains(t, freq, "8:01 AM")

	days := renderDays([]models.DayBucket{{Date: "2024-01-05", Count: 2}})
	assert.Contains(t, days, "2024-01-05 │ ██ 2")

	assert.Equal(t, "trend from 8:00 AM to 9:30 AM", renderTrend([]models.BestFitPoint{{X: 0, Y: 480}, {X: 1, Y: 570.2}}))
	assert.Equal(t, "not enough data for a trend line", renderTrend(nil))

	line := renderTimeline([]models.ChartDataPoint{{TimeOfDay: 0}, {TimeOfDay: 1439}}, 1)
	strip := strings.SplitN(line, "\n", 2)[0]
	assert.Equal(t, 48, len([]rune(strip)))
	assert.True(t, strings.HasPrefix(strip, "●"))
	assert.True(t, strings.HasSuffix(strip, "●"))

	box := renderAdvice(&models.Advice{Summary: "s", BestWindow: "w", Recommendations: []string{"r1"}})
	assert.Contains(t, box, "Best window: w")
	assert.Contains(t, box, "• r1")
}

func TestCLIFlow(t *testing.T) {
	dir := useTempStore(t)

	out, err := runCLI(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	out, err = runCLI(t, "signup", "-e", "a@x.com", "--first", "Ada", "--last", "Parent", "-p", "pw")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Signed up as Ada Parent <a@x.com>")

	_, err = runCLI(t, "child", "add", "Mia")
	require.NoError(t, err)

	out, err = runCLI(t, "child", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Mia")

	out, err = runCLI(t, "advice", "mia")
	assert.Error(t, err, out)

	var lastID string
	for _, at := range []string{"07:00", "08:05", "08:05", "12:30", "16:00", "19:45"} {
		out, err = runCLI(t, "log", "Mia", "--at", at)
		require.NoError(t, err, out)
		fields := strings.Fields(strings.TrimSpace(out))
		lastID = fields[len(fields)-1]
	}

	out, err = runCLI(t, "retime", lastID, "7:50 PM")
	require.NoError(t, err, out)
	assert.Contains(t, out, "7:50 PM")

	out, err = runCLI(t, "events", "Mia", "--today")
	require.NoError(t, err)
	assert.Contains(t, out, "Number 2")

	out, err = runCLI(t, "stats", "Mia", "-z", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Mia: 6 events")
	assert.Contains(t, out, "8:05 AM │ ██ 2")
	assert.NotContains(t, out, "to unlock insights")
	assert.Contains(t, out, "(zoom 3.0x)")

	out, err = runCLI(t, "stats", "Mia", "-z", "3", "--zoom-in", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "(zoom 4.0x)")

	out, err = runCLI(t, "stats", "Mia", "--zoom-out", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "(zoom 1.0x)")

	out, err = runCLI(t, "advice", "Mia")
	require.NoError(t, err)
	assert.Contains(t, out, "Keep logging regularly")

	out, err = runCLI(t, "delete", lastID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted")

	backupPath := filepath.Join(dir, "out", "backup.json")
	out, err = runCLI(t, "backup", "export", "-o", backupPath)
	require.NoError(t, err, out)
	_, statErr := os.Stat(backupPath)
	require.NoError(t, statErr)

	out, err = runCLI(t, "backup", "import", "-i", backupPath, "--clear", "--yes")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Imported")

	out, err = runCLI(t, "accounts", "-f", "ada")
	require.NoError(t, err)
	assert.Contains(t, out, "a@x.com")

	_, err = runCLI(t, "logout")
	require.NoError(t, err)
	_, err = runCLI(t, "child", "list")
	assert.ErrorIs(t, err, service.ErrNotSignedIn)
}

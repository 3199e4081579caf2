package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var fixed = time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)

func newTestLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(false)
	l.SetOutput(&buf)
	l.SetLevel(level)
	l.now = func() time.Time { return fixed }
	return l, &buf
}

func TestLoggerFormat(t *testing.T) {
	l, buf := newTestLogger(LevelInfo)
	l.Info("Found %d entries in %s.", 2, `HKLM\X`)
	l.Success("done")
	assert.Equal(t, "[2025-03-14 09:26:53] Found 2 entries in HKLM\\X.\n[2025-03-14 09:26:53] done\n", buf.String())
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  []string
	}{
		{LevelError, []string{"e"}},
		{LevelWarn, []string{"e", "w"}},
		{LevelInfo, []string{"e", "w", "i"}},
		{LevelDebug, []string{"e", "w", "i", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			l, buf := newTestLogger(tt.level)
			l.Error("e")
			l.Warning("w")
			l.Info("i")
			l.Debug("d")

			var got []string
			for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
				got = append(got, strings.TrimPrefix(line, "[2025-03-14 09:26:53] "))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	assert.Equal(t, LevelDebug, New(true).Level())
	assert.Equal(t, LevelInfo, New(false).Level())
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{
		"error":   LevelError,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		"Info":    LevelInfo,
		" debug ": LevelDebug,
		"":        LevelInfo,
		"chatty":  LevelInfo,
	} {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func readEvents(t *testing.T, dir string) []Event {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, "events.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var events []Event
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Event
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		events = append(events, e)
	}
	require.NoError(t, sc.Err())
	return events
}

func TestSession(t *testing.T) {
	base := t.TempDir()
	s, err := openSession(SessionConfig{
		BaseDir:  base,
		Tool:     "regclean",
		Metadata: map[string]interface{}{"dry_run": true},
	}, func() time.Time { return fixed })
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "regclean", "2025-03-14-092653"), s.Dir())
	assert.True(t, strings.HasPrefix(s.ID(), "regclean-"))

	l, _ := newTestLogger(LevelError)
	l.AttachSession(s)
	l.Info("Found %d entries.", 3)
	l.Debug("hidden on the console")
	l.Error("failed")
	require.NoError(t, s.Log(LevelInfo, "removed", map[string]interface{}{"count": 3}))
	require.NoError(t, s.Close("success"))
	require.NoError(t, s.Close("ignored"), "closing twice is harmless")
	assert.Error(t, s.Log(LevelInfo, "late", nil))

	events := readEvents(t, s.Dir())
	require.Len(t, events, 4)
	assert.Equal(t, "Found 3 entries.", events[0].Message)
	assert.Equal(t, "INFO", events[0].Level)
	assert.Equal(t, "DEBUG", events[1].Level, "sessions record below the console level")
	assert.Equal(t, "ERROR", events[2].Level)
	assert.Equal(t, float64(3), events[3].Properties["count"])
	for _, e := range events {
		assert.Equal(t, "regclean", e.Tool)
		assert.Equal(t, s.ID(), e.SessionID)
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(), "session.yaml"))
	require.NoError(t, err)
	var summary Summary
	require.NoError(t, yaml.Unmarshal(data, &summary))
	assert.Equal(t, "success", summary.Status)
	assert.Equal(t, "regclean", summary.Tool)
	assert.Equal(t, map[string]int{"INFO": 2, "DEBUG": 1, "ERROR": 1}, summary.Events)
	assert.Equal(t, true, summary.Metadata["dry_run"])
}

func sessionDirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestSessionRetention(t *testing.T) {
	base := t.TempDir()
	toolDir := filepath.Join(base, "t")
	old := []string{
		"2025-03-10-080000",
		"2025-03-11-080000",
		"2025-03-12-080000",
		"2025-03-13-080000",
		"2025-03-13-080000-2",
	}
	for _, name := range old {
		require.NoError(t, os.MkdirAll(filepath.Join(toolDir, name), 0755))
	}
	require.NoError(t, os.Mkdir(filepath.Join(toolDir, "not-a-session"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "other", "2025-03-01-080000"), 0755))

	s, err := openSession(SessionConfig{BaseDir: base, Tool: "t", RetentionRuns: 3}, func() time.Time { return fixed })
	require.NoError(t, err)
	defer s.Close("success")

	assert.ElementsMatch(t,
		[]string{"2025-03-13-080000", "2025-03-13-080000-2", "2025-03-14-092653", "not-a-session"},
		sessionDirNames(t, toolDir))
	assert.Equal(t, []string{"2025-03-01-080000"}, sessionDirNames(t, filepath.Join(base, "other")),
		"another tool's sessions are not counted or pruned")
}

func TestSessionsInTheSameSecond(t *testing.T) {
	base := t.TempDir()
	clock := func() time.Time { return fixed }

	var dirs []string
	for i := 0; i < 3; i++ {
		s, err := openSession(SessionConfig{BaseDir: base, Tool: "drivesync", RetentionRuns: 2}, clock)
		require.NoError(t, err)
		require.NoError(t, s.Log(LevelInfo, "run", nil))
		require.NoError(t, s.Close("success"))
		dirs = append(dirs, filepath.Base(s.Dir()))
	}
	assert.Equal(t, []string{"2025-03-14-092653", "2025-03-14-092653-2", "2025-03-14-092653-3"}, dirs)

	// Retention keeps the two newest, ordered by sequence within the second.
	remaining := sessionDirNames(t, filepath.Join(base, "drivesync"))
	assert.ElementsMatch(t, []string{"2025-03-14-092653-2", "2025-03-14-092653-3"}, remaining)
	for _, name := range remaining {
		events := readEvents(t, filepath.Join(base, "drivesync", name))
		assert.Len(t, events, 1, name)
		assert.FileExists(t, filepath.Join(base, "drivesync", name, "session.yaml"))
	}
}

func TestParseSessionDir(t *testing.T) {
	for name, wantSeq := range map[string]int{
		"2025-03-14-092653":    1,
		"2025-03-14-092653-2":  2,
		"2025-03-14-092653-17": 17,
	} {
		start, seq, ok := parseSessionDir(name)
		require.True(t, ok, name)
		assert.Equal(t, wantSeq, seq, name)
		assert.Equal(t, 2025, start.Year())
	}
	for _, name := range []string{"not-a-session", "2025-03-14", "2025-03-14-092653-", "2025-03-14-092653-1", "2025-03-14-092653x2", "2025-03-14-092653-a"} {
		_, _, ok := parseSessionDir(name)
		assert.False(t, ok, name)
	}
}

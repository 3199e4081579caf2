// pkg/logging/events.go - per-run structured session logs in timestamped directories.
//
// Each tool run gets a directory named after its start time (YYYY-MM-DD-HHMMss)
// under BaseDir\<tool>. A second run in the same second gets a "-2" suffix,
// a third "-3" and so on. Events are appended to events.jsonl as they happen;
// Close writes session.yaml with the run summary. Only the newest
// RetentionRuns directories of each tool are kept.

package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	sessionDirLayout = "2006-01-02-150405"
	maxSameSecond    = 100
)

// SessionConfig configures OpenSession.
type SessionConfig struct {
	BaseDir       string
	Tool          string
	RetentionRuns int
	Metadata      map[string]interface{}
}

// Event is one line of events.jsonl.
type Event struct {
	Time       int64                  `json:"time"`
	Timestamp  string                 `json:"timestamp"`
	Level      string                 `json:"level"`
	Message    string                 `json:"message"`
	Tool       string                 `json:"tool"`
	PID        int64                  `json:"pid"`
	Hostname   string                 `json:"hostname"`
	SessionID  string                 `json:"session_id"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Summary is written to session.yaml when the session closes.
type Summary struct {
	SessionID string                 `yaml:"session_id"`
	Tool      string                 `yaml:"tool"`
	StartTime time.Time              `yaml:"start_time"`
	EndTime   time.Time              `yaml:"end_time"`
	Duration  string                 `yaml:"duration"`
	Status    string                 `yaml:"status"`
	Events    map[string]int         `yaml:"events"`
	Metadata  map[string]interface{} `yaml:"metadata,omitempty"`
}

// Session is the structured log of one tool run.
type Session struct {
	mu       sync.Mutex
	cfg      SessionConfig
	id       string
	dir      string
	start    time.Time
	hostname string
	events   *os.File
	counts   map[string]int
	now      func() time.Time
}

// OpenSession creates the session directory, opens events.jsonl and prunes
// old session directories.
func OpenSession(cfg SessionConfig) (*Session, error) {
	return openSession(cfg, time.Now)
}

func openSession(cfg SessionConfig, now func() time.Time) (*Session, error) {
	if cfg.Tool == "" {
		cfg.Tool = "winadmin"
	}
	toolDir := filepath.Join(cfg.BaseDir, cfg.Tool)
	if err := os.MkdirAll(toolDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base log directory: %w", err)
	}

	start := now()
	dir, err := createSessionDir(toolDir, start.Format(sessionDirLayout))
	if err != nil {
		return nil, err
	}

	events, err := os.OpenFile(filepath.Join(dir, "events.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open events log: %w", err)
	}

	hostname, _ := os.Hostname()
	s := &Session{
		cfg:      cfg,
		id:       fmt.Sprintf("%s-%d-%s", cfg.Tool, start.Unix(), filepath.Base(dir)),
		dir:      dir,
		start:    start,
		hostname: hostname,
		events:   events,
		counts:   make(map[string]int),
		now:      now,
	}

	if cfg.RetentionRuns > 0 {
		if err := pruneSessions(toolDir, cfg.RetentionRuns, dir); err != nil {
			_ = s.Log(LevelWarn, "log retention cleanup failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return s, nil
}

// createSessionDir creates parent\stamp, or the first free parent\stamp-N.
func createSessionDir(parent, stamp string) (string, error) {
	name := stamp
	for n := 2; ; n++ {
		dir := filepath.Join(parent, name)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return dir, nil
		}
		if !os.IsExist(err) || n > maxSameSecond {
			return "", fmt.Errorf("failed to create timestamped log directory %s: %w", dir, err)
		}
		name = fmt.Sprintf("%s-%d", stamp, n)
	}
}

// parseSessionDir returns the start time and same-second sequence number
// encoded in a session directory name.
func parseSessionDir(name string) (time.Time, int, bool) {
	if len(name) < len(sessionDirLayout) {
		return time.Time{}, 0, false
	}
	t, err := time.Parse(sessionDirLayout, name[:len(sessionDirLayout)])
	if err != nil {
		return time.Time{}, 0, false
	}
	rest := name[len(sessionDirLayout):]
	if rest == "" {
		return t, 1, true
	}
	if !strings.HasPrefix(rest, "-") {
		return time.Time{}, 0, false
	}
	seq, err := strconv.Atoi(rest[1:])
	if err != nil || seq < 2 {
		return time.Time{}, 0, false
	}
	return t, seq, true
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Dir returns the session's log directory.
func (s *Session) Dir() string { return s.dir }

// Log appends one event to events.jsonl.
func (s *Session) Log(level LogLevel, message string, properties map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events == nil {
		return fmt.Errorf("session %s is closed", s.id)
	}

	t := s.now()
	entry := Event{
		Time:       t.Unix(),
		Timestamp:  t.Format(time.RFC3339),
		Level:      level.String(),
		Message:    message,
		Tool:       s.cfg.Tool,
		PID:        int64(os.Getpid()),
		Hostname:   s.hostname,
		SessionID:  s.id,
		Properties: properties,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if _, err := s.events.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	s.counts[entry.Level]++
	return nil
}

// Close writes session.yaml with the given final status and closes the event log.
func (s *Session) Close(status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events == nil {
		return nil
	}

	end := s.now()
	summary := Summary{
		SessionID: s.id,
		Tool:      s.cfg.Tool,
		StartTime: s.start,
		EndTime:   end,
		Duration:  end.Sub(s.start).Round(time.Millisecond).String(),
		Status:    status,
		Events:    s.counts,
		Metadata:  s.cfg.Metadata,
	}

	closeErr := s.events.Close()
	s.events = nil

	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode session summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, "session.yaml"), data, 0644); err != nil {
		return fmt.Errorf("failed to write session summary: %w", err)
	}
	return closeErr
}

// pruneSessions deletes the oldest session directories so that at most keep remain.
// The directory of the running session is never removed.
func pruneSessions(baseDir string, keep int, current string) error {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return err
	}

	type sessionDir struct {
		name  string
		start time.Time
		seq   int
	}
	var dirs []sessionDir
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		start, seq, ok := parseSessionDir(entry.Name())
		if !ok {
			continue
		}
		dirs = append(dirs, sessionDir{name: entry.Name(), start: start, seq: seq})
	}
	if len(dirs) <= keep {
		return nil
	}

	// Newest first.
	sort.Slice(dirs, func(i, j int) bool {
		if !dirs[i].start.Equal(dirs[j].start) {
			return dirs[i].start.After(dirs[j].start)
		}
		return dirs[i].seq > dirs[j].seq
	})
	var firstErr error
	for _, d := range dirs[keep:] {
		path := filepath.Join(baseDir, d.name)
		if path == current {
			continue
		}
		if err := os.RemoveAll(path); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

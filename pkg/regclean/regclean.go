// pkg/regclean/regclean.go - removal of stale uninstall entries from the registry.

package regclean

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/windowsadmins/winadmin/pkg/retry"
)

var (
	// ErrRootNotFound is returned by a Store when a configured root key does not exist.
	ErrRootNotFound = errors.New("registry root not found")
	// ErrKeyNotFound is returned by a Store when the key to delete is already gone.
	ErrKeyNotFound = errors.New("registry key not found")
)

// Key is one subkey under an uninstall root.
type Key struct {
	Name        string
	DisplayName string
}

// Store is the registry access regclean needs. Paths use the
// HKLM\SOFTWARE\... notation of reg.exe.
type Store interface {
	SubKeys(root string) ([]Key, error)
	DeleteTree(path string) error
}

// Entry is an uninstall entry selected for removal.
type Entry struct {
	Root        string
	Name        string
	DisplayName string
}

// Path returns the full registry path of the entry.
func (e Entry) Path() string {
	return strings.TrimRight(e.Root, `\`) + `\` + e.Name
}

// Reporter receives progress messages. *logging.Logger satisfies it.
type Reporter interface {
	Info(format string, v ...interface{})
	Warning(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// Cleaner finds and deletes uninstall entries whose key name contains Match.
type Cleaner struct {
	Store Store
	Match string
	Retry retry.RetryConfig
	Log   Reporter
}

// NewCleaner returns a Cleaner with the default retry policy.
func NewCleaner(store Store, match string, attempts int, log Reporter) *Cleaner {
	return &Cleaner{
		Store: store,
		Match: match,
		Retry: retry.RetryConfig{
			MaxRetries:      attempts,
			InitialInterval: 500 * time.Millisecond,
			Multiplier:      2,
		},
		Log: log,
	}
}

// Find lists the matching entries under every root. Missing roots are skipped.
func (c *Cleaner) Find(roots []string) ([]Entry, error) {
	var found []Entry
	for _, root := range roots {
		keys, err := c.Store.SubKeys(root)
		if err != nil {
			if errors.Is(err, ErrRootNotFound) {
				c.Log.Debug("Skipping missing registry root %s", root)
				continue
			}
			return found, fmt.Errorf("failed to enumerate %s: %w", root, err)
		}

		var matched []Entry
		for _, k := range keys {
			if strings.Contains(k.Name, c.Match) {
				matched = append(matched, Entry{Root: root, Name: k.Name, DisplayName: k.DisplayName})
			}
		}
		if len(matched) == 0 {
			continue
		}
		c.Log.Info("Found %d entries in %s.", len(matched), root)
		found = append(found, matched...)
	}
	return found, nil
}

// Remove deletes the given entries and returns how many were removed.
// Entries that disappeared in the meantime are not counted and not an error.
// The first deletion failure stops the run.
func (c *Cleaner) Remove(entries []Entry) (int, error) {
	cfg := c.Retry
	cfg.OnRetry = func(attempt, maxAttempts int, err error, wait time.Duration) {
		c.Log.Warning("Attempt %d/%d failed: %v. Retrying in %s...", attempt, maxAttempts, err, wait)
	}

	removed := 0
	for _, e := range entries {
		label := e.Path()
		if e.DisplayName != "" {
			label = fmt.Sprintf("%s (%s)", e.Path(), e.DisplayName)
		}
		c.Log.Info("  - Removing: %s", label)

		err := retry.Retry(cfg, func() error {
			err := c.Store.DeleteTree(e.Path())
			if errors.Is(err, ErrKeyNotFound) {
				return retry.Permanent(err)
			}
			return err
		})
		switch {
		case err == nil:
			removed++
		case errors.Is(err, ErrKeyNotFound):
			c.Log.Debug("Entry %s was already removed", e.Path())
		default:
			return removed, fmt.Errorf("failed to remove %s: %w", e.Path(), err)
		}
	}
	return removed, nil
}

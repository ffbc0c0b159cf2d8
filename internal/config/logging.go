package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const logFilePattern = "atelier-*.log"

// SetupLogFile opens a fresh timestamped log file under dir, pruning
// the oldest files so at most keep remain. The caller owns the handle.
func SetupLogFile(dir string, keep int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	name := filepath.Join(dir, fmt.Sprintf("atelier-%s.log",
		time.Now().Format("2006-01-02T15-04-05")))

	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	if err := pruneLogFiles(dir, keep); err != nil {
		// pruning failure never blocks logging itself
		fmt.Fprintf(os.Stderr, "warning: failed to prune old logs: %v\n", err)
	}

	return f, nil
}

// pruneLogFiles deletes the oldest log files beyond the keep count.
// The timestamped names sort chronologically.
func pruneLogFiles(dir string, keep int) error {
	files, err := filepath.Glob(filepath.Join(dir, logFilePattern))
	if err != nil {
		return err
	}
	if len(files) <= keep {
		return nil
	}

	sort.Strings(files)
	for _, stale := range files[:len(files)-keep] {
		if err := os.Remove(stale); err != nil {
			return fmt.Errorf("remove %s: %w", stale, err)
		}
	}

	return nil
}

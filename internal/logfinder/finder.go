// Package logfinder resolves which Quake 3 server log to read.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// EnvLogFile is the environment variable naming the server log.
const EnvLogFile = "Q3LOG_FILE"

// Sentinel errors.
var (
	ErrLogFileNotFound = errors.New("log file not found")
	ErrNoLogFiles      = errors.New("no log files found")
)

// DefaultLogFiles returns candidate server logs in priority order: the
// working directory first, then the per-user ioquake3 and Quake III homes.
func DefaultLogFiles() []string {
	candidates := []string{"qgames.log", "games.log"}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return candidates
	}
	return append(candidates,
		filepath.Join(home, ".q3a", "baseq3", "games.log"),
		filepath.Join(home, ".ioquake3", "baseq3", "games.log"),
	)
}

// FindLogFile returns the server log to read.
//
// Priority:
//  1. explicit (if non-empty)
//  2. Q3LOG_FILE environment variable
//  3. the first existing entry of DefaultLogFiles()
//
// explicit and the environment variable may name a directory, in which
// case the most recently modified *.log file inside it is used.
// The returned path has symlinks resolved.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		resolved, err := resolveLogFile(explicit)
		if err == nil {
			return resolved, nil
		}
		if errors.Is(err, ErrNoLogFiles) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s", ErrLogFileNotFound, explicit)
	}

	if env := os.Getenv(EnvLogFile); env != "" {
		resolved, err := resolveLogFile(env)
		if err == nil {
			return resolved, nil
		}
		if errors.Is(err, ErrNoLogFiles) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s environment variable points to an invalid file", ErrLogFileNotFound, EnvLogFile)
	}

	for _, path := range DefaultLogFiles() {
		if resolved, err := resolveLogFile(path); err == nil {
			return resolved, nil
		}
	}
	return "", ErrLogFileNotFound
}

// logCandidate holds a log file path and its cached modification time.
// This avoids races where files are deleted between stat and sort.
type logCandidate struct {
	path    string
	modTime int64
}

// FindLatestLogFile returns the most recently modified *.log file in dir.
// Returns ErrNoLogFiles if there is none.
func FindLatestLogFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.log"))
	if err != nil {
		return "", fmt.Errorf("globbing log files: %w", err)
	}

	candidates := make([]logCandidate, 0, len(matches))
	for _, m := range matches {
		info, err := os.Lstat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		candidates = append(candidates, logCandidate{
			path:    m,
			modTime: info.ModTime().UnixNano(),
		})
	}
	if len(candidates) == 0 {
		return "", ErrNoLogFiles
	}

	// Newest first; ties keep glob order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].modTime > candidates[j].modTime
	})
	return candidates[0].path, nil
}

// resolveLogFile resolves symlinks in path and, for a directory, picks the
// newest log inside it.
func resolveLogFile(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", ErrLogFileNotFound
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", ErrLogFileNotFound
	}
	if info.IsDir() {
		return FindLatestLogFile(resolved)
	}
	if !info.Mode().IsRegular() {
		return "", ErrLogFileNotFound
	}
	return resolved, nil
}

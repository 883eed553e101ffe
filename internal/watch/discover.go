// Package watch finds VRChat log files and follows the active one for
// growth, emitting typed change events.
package watch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
)

// FilePattern matches the log files VRChat writes
const FilePattern = "output_log_*.txt"

// ErrNoLogFiles reports a directory with nothing matching FilePattern
var ErrNoLogFiles = errors.New("no log files found")

// LogFile describes one discovered log file
type LogFile struct {
	Path    string
	Size    int64
	ModTime int64
}

// DefaultLogDirs returns the places VRChat writes logs on this platform,
// most likely first. The Steam Proton prefix covers Linux installs.
func DefaultLogDirs() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	if runtime.GOOS == "windows" {
		return []string{
			filepath.Join(home, "AppData", "LocalLow", "VRChat", "VRChat"),
		}
	}
	return []string{
		filepath.Join(home, ".steam", "steam", "steamapps", "compatdata", "438100",
			"pfx", "drive_c", "users", "steamuser", "AppData", "LocalLow", "VRChat", "VRChat"),
		filepath.Join(home, ".local", "share", "Steam", "steamapps", "compatdata", "438100",
			"pfx", "drive_c", "users", "steamuser", "AppData", "LocalLow", "VRChat", "VRChat"),
	}
}

// List returns the matching log files in dir, newest first
func List(dir string) ([]LogFile, error) {
	matches, err := filepath.Glob(filepath.Join(dir, FilePattern))
	if err != nil {
		return nil, fmt.Errorf("list logs in %s: %w", dir, err)
	}

	var files []LogFile
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, LogFile{
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime().UnixNano(),
		})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoLogFiles)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime > files[j].ModTime
	})
	return files, nil
}

// Newest returns the most recently modified log file in dir
func Newest(dir string) (string, error) {
	files, err := List(dir)
	if err != nil {
		return "", err
	}
	return files[0].Path, nil
}

// Discover searches the default locations and returns the newest log file
func Discover() (string, error) {
	dirs := DefaultLogDirs()
	for _, dir := range dirs {
		if path, err := Newest(dir); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no VRChat log directory in %d default locations: %w", len(dirs), ErrNoLogFiles)
}

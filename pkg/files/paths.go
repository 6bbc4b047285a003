package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading "~" with the current user's home directory.
// Only the bare "~" and "~/..." forms are expanded; "~user" is left alone.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// IsDir reports whether path exists, is readable and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// Entry is a regular file found by ListRegular.
type Entry struct {
	Name string
	Path string
	Size int64
}

// ListRegular lists the regular files directly under dir, in directory
// order. Subdirectories, symlinks and other special files are skipped.
func ListRegular(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		// DirEntry.Type comes from lstat, so symlinks never look regular.
		if !de.Type().IsRegular() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Vanished between ReadDir and Info.
			continue
		}
		entries = append(entries, Entry{
			Name: de.Name(),
			Path: filepath.Join(dir, de.Name()),
			Size: info.Size(),
		})
	}
	return entries, nil
}

// ListSubdirs returns the names of visible subdirectories of dir, used for
// path completion. Entries starting with "." are hidden.
func ListSubdirs(dir string) []string {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, de := range dirEntries {
		if strings.HasPrefix(de.Name(), ".") {
			continue
		}
		if de.IsDir() {
			names = append(names, de.Name())
		}
	}
	return names
}

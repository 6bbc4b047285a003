package wizard

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"m2b4a/pkg/files"
)

// parseYesNo reads a confirmation answer. An empty answer takes def; ok is
// false for anything unrecognised.
func parseYesNo(answer string, def bool) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return def, true
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	default:
		return false, false
	}
}

// parseChoice reads a 1-based menu choice among n entries and returns its
// 0-based index.
func parseChoice(answer string, n int) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

// completeDirectory completes line to the visible subdirectories matching
// its last path element. Completions keep the trailing separator so the
// next tab descends.
func completeDirectory(line string) []string {
	dir, prefix := filepath.Split(line)
	search := dir
	if search == "" {
		search = "."
	} else if expanded, err := files.ExpandHome(search); err == nil {
		search = expanded
	}

	var out []string
	for _, name := range files.ListSubdirs(search) {
		if strings.HasPrefix(name, prefix) {
			out = append(out, dir+name+string(filepath.Separator))
		}
	}
	return out
}

// defaultFilesPath is ./files when it exists, otherwise the working
// directory.
func defaultFilesPath(cwd string) string {
	candidate := filepath.Join(cwd, "files")
	if files.IsDir(candidate) {
		return candidate
	}
	return cwd
}

func workingDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

package restore

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"m2b4a/pkg/capabilities"
)

// BinaryCandidates lists where a bundled restore executable may live under
// toolsDir, most specific first: "<os>-<arch>" then the machine name
// reported by uname -p.
func BinaryCandidates(toolsDir string, info capabilities.SystemInfo) []string {
	name := DefaultBinaryName
	if info.OS == "windows" {
		name += ".exe"
	}
	return []string{
		filepath.Join(toolsDir, info.OS+"-"+info.Arch, name),
		filepath.Join(toolsDir, info.Machine(), name),
	}
}

// ResolveBinary returns the restore executable for this host: a bundled one
// under toolsDir when present, otherwise the one on PATH.
func ResolveBinary(toolsDir string, info capabilities.SystemInfo) (string, error) {
	if toolsDir != "" {
		for _, candidate := range BinaryCandidates(toolsDir, info) {
			if isExecutable(candidate) {
				return candidate, nil
			}
		}
	}
	path, err := exec.LookPath(DefaultBinaryName)
	if err != nil {
		return "", fmt.Errorf("no %s found under %s or on PATH: %w", DefaultBinaryName, toolsDir, err)
	}
	return path, nil
}

// ProbeVersion runs the restore executable with --version and returns the
// version it reports.
func ProbeVersion(binary string) (string, error) {
	probe := capabilities.NewMongorestoreCapability(binary)
	if !probe.IsAvailable() {
		return "", &LaunchError{Binary: binary, Err: fmt.Errorf("does not answer --version")}
	}
	return probe.Version(), nil
}

func isExecutable(path string) bool {
	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		return false
	}
	return st.Mode().Perm()&0o111 != 0
}

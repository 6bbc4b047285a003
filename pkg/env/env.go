package env

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Save writes the provided key/value pairs to a file in .env format.
//
//   - path  - absolute or relative file path to create/overwrite.
//   - vars  - map of environment variables (keys MUST be non-empty).
//
// Variables are sorted by name. The file is readable only by its owner
// because the values are application secrets.
func Save(path string, vars map[string]string) error {
	if len(vars) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create env directory: %w", err)
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		if k == "" {
			return fmt.Errorf("env variable with empty name")
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, Quote(vars[k]))
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write env file %s: %w", path, err)
	}
	return nil
}

// Quote returns v as a .env value, double-quoted when it holds characters a
// dotenv parser would otherwise split or strip.
func Quote(v string) string {
	if !strings.ContainsAny(v, " \t\n\r#=\"'\\$") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	v = strings.ReplaceAll(v, "\n", `\n`)
	return `"` + v + `"`
}

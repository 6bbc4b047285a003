// Package version reports the build version, set at link time with
// -ldflags "-X m2b4a/pkg/version.version=1.2.3".
package version

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

var (
	version = "0.0.0"
)

func GetVersion() string {
	return version
}

func GetNumericVersion() int {
	return ParseNumericVersion(version)
}

// ParseNumericVersion folds a dotted version into one comparable number,
// three digits per component. Non-numeric components count as zero.
func ParseNumericVersion(semVer string) int {
	parts := strings.Split(strings.TrimPrefix(semVer, "v"), ".")
	result := 0
	for _, part := range parts {
		num, _ := strconv.Atoi(part)
		result = result*1000 + num
	}
	return result
}

// Banner is the --version line.
func Banner(name string) string {
	return fmt.Sprintf("%s version: %s (#%d) %s/%s", name, GetVersion(), GetNumericVersion(), runtime.GOOS, runtime.GOARCH)
}

package capabilities

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// Capability names
const (
	CapabilityOS           = "os"
	CapabilityMongorestore = "mongorestore"
	CapabilityDocker       = "docker"
)

// probeTimeout bounds every "--version" probe.
const probeTimeout = 10 * time.Second

// Capability represents a host capability that can be detected
type Capability interface {
	// Name returns the name of the capability
	Name() string
	// Version returns the detected version, empty when unknown
	Version() string
	// IsAvailable probes the host and reports whether the capability is usable
	IsAvailable() bool
}

// Report is the outcome of probing one capability.
type Report struct {
	Name      string
	Version   string
	Available bool
}

// Probe runs IsAvailable on every capability, in order.
func Probe(caps ...Capability) []Report {
	reports := make([]Report, 0, len(caps))
	for _, c := range caps {
		available := c.IsAvailable()
		reports = append(reports, Report{
			Name:      c.Name(),
			Version:   c.Version(),
			Available: available,
		})
	}
	return reports
}

// versionOutput runs "<binary> --version" and returns its trimmed output.
func versionOutput(binary string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, binary, "--version").CombinedOutput()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

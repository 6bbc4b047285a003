package capabilities

import (
	"strings"
)

// DockerCapability represents the Docker capability
type DockerCapability struct {
	version string
}

// NewDockerCapability creates a new Docker capability
func NewDockerCapability() *DockerCapability {
	return &DockerCapability{}
}

// Name returns the name of the capability
func (c *DockerCapability) Name() string {
	return CapabilityDocker
}

// Version returns the version of the capability
func (c *DockerCapability) Version() string {
	return c.version
}

// IsAvailable checks if Docker is available on the system
func (c *DockerCapability) IsAvailable() bool {
	output, err := versionOutput("docker")
	if err != nil {
		return false
	}

	// "Docker version 28.2.2, build e6534b4"
	if !strings.Contains(output, "Docker version") {
		return false
	}
	parts := strings.Fields(output)
	if len(parts) > 2 {
		c.version = strings.TrimSuffix(parts[2], ",")
	}
	return true
}

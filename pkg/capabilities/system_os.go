package capabilities

import (
	"runtime"
)

// SystemInfo represents basic system information
type SystemInfo struct {
	OS   string
	Arch string
}

// GetSystemInfo returns the current system information
func GetSystemInfo() SystemInfo {
	return SystemInfo{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
}

// Machine returns the processor name in the spelling of "uname -p", which
// names the directories of bundled tools.
func (s SystemInfo) Machine() string {
	switch s.Arch {
	case "amd64":
		return "x86_64"
	case "386":
		if s.OS == "darwin" {
			return "i386"
		}
		return "i686"
	case "arm64":
		if s.OS == "darwin" {
			return "arm"
		}
		return "aarch64"
	default:
		return s.Arch
	}
}

// SystemOSCapability reports the operating system information.
type SystemOSCapability struct {
	info SystemInfo
}

// NewSystemOSCapability returns a new SystemOSCapability.
func NewSystemOSCapability() *SystemOSCapability {
	return &SystemOSCapability{info: GetSystemInfo()}
}

// Name implements Capability.
func (c *SystemOSCapability) Name() string {
	return CapabilityOS
}

// Version implements Capability.
func (c *SystemOSCapability) Version() string {
	return c.info.OS + "/" + c.info.Arch
}

// IsAvailable implements Capability.
func (c *SystemOSCapability) IsAvailable() bool {
	return true
}

package capabilities

import (
	"strings"
)

// MongorestoreCapability represents the restore executable
type MongorestoreCapability struct {
	binary  string
	version string
}

// NewMongorestoreCapability creates a capability for the executable at binary
func NewMongorestoreCapability(binary string) *MongorestoreCapability {
	return &MongorestoreCapability{binary: binary}
}

// Name returns the name of the capability
func (c *MongorestoreCapability) Name() string {
	return CapabilityMongorestore
}

// Version returns the version of the capability
func (c *MongorestoreCapability) Version() string {
	return c.version
}

// IsAvailable runs "--version" and parses the reported version
func (c *MongorestoreCapability) IsAvailable() bool {
	if c.binary == "" {
		return false
	}
	output, err := versionOutput(c.binary)
	if err != nil {
		return false
	}

	// First line reads "mongorestore version: 100.9.4" or "mongorestore version r4.4.29".
	firstLine, _, _ := strings.Cut(output, "\n")
	if !strings.Contains(firstLine, "version") {
		return false
	}
	fields := strings.Fields(firstLine)
	c.version = strings.TrimPrefix(fields[len(fields)-1], "r")
	return true
}

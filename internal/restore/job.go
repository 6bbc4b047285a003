package restore

import (
	"github.com/kballard/go-shellquote"
)

const (
	// AdminUser is the account every hosted database grants the restore.
	AdminUser = "admin"
	// DatabasePort is the port the restore always connects to.
	DatabasePort = "27017"
	// WriteConcern trades acknowledgement for restore speed.
	WriteConcern = "{w:0}"

	// DefaultBinaryName is the restore executable looked up on PATH and
	// inside restore containers.
	DefaultBinaryName = "mongorestore"
)

// Job is a single restore invocation.
type Job struct {
	Binary   string
	Args     []string
	DumpPath string
	Drop     bool
}

// BuildArgs returns the restore argument list. When drop is set "--drop" is
// the second-to-last argument; the dump path is always last.
func BuildArgs(d Descriptor, dumpPath string, drop bool) []string {
	args := []string{
		"--username", AdminUser,
		"--password", d.Secret,
		"--host", d.Host,
		"--port", DatabasePort,
		"--db", d.Database,
		"--authenticationDatabase", d.Database,
		"--noIndexRestore",
		"--writeConcern", WriteConcern,
	}
	if drop {
		args = append(args, "--drop")
	}
	return append(args, dumpPath)
}

// NewJob builds the job restoring dumpPath into the database of d.
func NewJob(binary string, d Descriptor, dumpPath string, drop bool) Job {
	return Job{
		Binary:   binary,
		Args:     BuildArgs(d, dumpPath, drop),
		DumpPath: dumpPath,
		Drop:     drop,
	}
}

// CommandLine renders the job as a shell command with the password masked.
func (j Job) CommandLine() string {
	words := make([]string, 0, len(j.Args)+1)
	words = append(words, j.Binary)
	for i, arg := range j.Args {
		if i > 0 && j.Args[i-1] == "--password" {
			arg = "REDACTED"
		}
		words = append(words, arg)
	}
	return shellquote.Join(words...)
}

// withDumpPath returns a copy of the job whose final argument is path.
func (j Job) withDumpPath(path string) Job {
	args := append([]string(nil), j.Args...)
	if len(args) > 0 {
		args[len(args)-1] = path
	}
	j.Args = args
	j.DumpPath = path
	return j
}

package restore

import (
	"bufio"
	"context"
	"io"
	"sync"

	log "m2b4a/pkg/log"
)

// Stream names an output stream of the restore.
type Stream string

const (
	Stdout Stream = "stdout"
	Stderr Stream = "stderr"
)

// OutputFunc receives restore output line by line, as it is produced.
type OutputFunc func(stream Stream, line string)

// LogOutput forwards restore output to the package logger.
func LogOutput(stream Stream, line string) {
	log.Info(line, "source", "mongorestore", "stream", string(stream))
}

// Runner executes a restore job and reports its exit code. A non-nil error
// means the restore could not be launched or its outcome is unknown.
type Runner interface {
	Run(ctx context.Context, job Job, out OutputFunc) (int, error)
}

const maxLineSize = 1024 * 1024

// drain feeds r to out line by line until EOF. Lines longer than
// maxLineSize stop the line splitting but the stream is still consumed so
// the producer never blocks on a full pipe.
func drain(r io.Reader, stream Stream, out OutputFunc) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		out(stream, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		_, _ = io.Copy(io.Discard, r)
		return err
	}
	return nil
}

// serialize makes out safe to call from the two stream readers.
func serialize(out OutputFunc) OutputFunc {
	if out == nil {
		out = LogOutput
	}
	var mu sync.Mutex
	return func(stream Stream, line string) {
		mu.Lock()
		defer mu.Unlock()
		out(stream, line)
	}
}

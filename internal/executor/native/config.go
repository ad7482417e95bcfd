package native

import (
	"time"
)

// Config holds the configuration for native execution.
type Config struct {
	// Timeout is the wall-clock limit for one program, compile step included.
	Timeout time.Duration
	// WaitDelay bounds how long Wait keeps draining pipes after the process
	// group has been killed.
	WaitDelay time.Duration
	// MaxOutputBytes caps each captured stream.
	MaxOutputBytes int
	// MaxConcurrent is the number of programs allowed to run at once.
	MaxConcurrent int
	// MaxQueue is the number of requests allowed to wait for a slot.
	MaxQueue int
	// QueueWait is how long a queued request waits before it is rejected.
	QueueWait time.Duration
	// TempDir is the parent of every staging directory. Empty means os.TempDir().
	TempDir string
	// ProbeTimeout bounds a single toolchain check.
	ProbeTimeout time.Duration
	// ProbeCacheTTL keeps probe results for this long. Zero disables caching.
	ProbeCacheTTL time.Duration
}

// DefaultConfig provides the defaults used by the server.
func DefaultConfig() Config {
	return Config{
		Timeout:        15 * time.Second,
		WaitDelay:      2 * time.Second,
		MaxOutputBytes: 1 << 20,
		MaxConcurrent:  4,
		MaxQueue:       16,
		QueueWait:      10 * time.Second,
		ProbeTimeout:   10 * time.Second,
	}
}

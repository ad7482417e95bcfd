package native

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/shlex"
)

// Prober checks whether a language's toolchain is installed by running its
// check command. A check counts as available when the command exits
// successfully or when anything it printed contains "version"; some
// compilers print their version and exit non-zero.
type Prober struct {
	timeout time.Duration
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]probeResult
}

type probeResult struct {
	available bool
	checked   time.Time
}

// NewProber creates a prober. With a zero ProbeCacheTTL every call runs the
// check command.
func NewProber(cfg Config, logger *slog.Logger) *Prober {
	return &Prober{
		timeout: cfg.ProbeTimeout,
		ttl:     cfg.ProbeCacheTTL,
		logger:  logger,
		now:     time.Now,
		cache:   make(map[string]probeResult),
	}
}

// Available reports whether checkCommand indicates an installed toolchain.
// An empty check command means there is nothing to verify.
func (p *Prober) Available(ctx context.Context, checkCommand string) bool {
	if checkCommand == "" {
		return true
	}

	if p.ttl > 0 {
		p.mu.Lock()
		r, ok := p.cache[checkCommand]
		p.mu.Unlock()
		if ok && p.now().Sub(r.checked) < p.ttl {
			return r.available
		}
	}

	available := p.probe(ctx, checkCommand)

	if p.ttl > 0 {
		p.mu.Lock()
		p.cache[checkCommand] = probeResult{available: available, checked: p.now()}
		p.mu.Unlock()
	}
	return available
}

func (p *Prober) probe(ctx context.Context, checkCommand string) bool {
	argv, err := shlex.Split(checkCommand)
	if err != nil || len(argv) == 0 {
		p.logger.Error("invalid toolchain check command", slog.String("command", checkCommand), slog.Any("error", err))
		return false
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = time.Second

	err = cmd.Run()
	p.logger.Debug("toolchain probed",
		slog.String("command", checkCommand),
		slog.Bool("exited_ok", err == nil),
	)
	if err == nil {
		return true
	}
	if strings.Contains(out.String(), "version") {
		return true
	}

	p.logger.Info("toolchain check failed",
		slog.String("command", checkCommand),
		slog.String("error", err.Error()),
	)
	return false
}

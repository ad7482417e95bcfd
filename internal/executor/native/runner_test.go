package native

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimitedBuffer(t *testing.T) {
	b := newLimitedBuffer(8)

	n, err := b.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", b.String())

	n, err = b.Write([]byte(" world"))
	assert.NoError(t, err)
	assert.Equal(t, 6, n, "writes report full length even when dropped")
	assert.Equal(t, "hello wo"+truncationMarker, b.String())

	n, _ = b.Write([]byte("more"))
	assert.Equal(t, 4, n)
	assert.Equal(t, "hello wo"+truncationMarker, b.String())
}

func TestLimitedBufferUnlimited(t *testing.T) {
	b := newLimitedBuffer(0)
	b.Write([]byte("abc"))
	b.Write([]byte("def"))
	assert.Equal(t, "abcdef", b.String())
}

func TestRunnerOutcomes(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	r := NewRunner(Config{Timeout: 300 * time.Millisecond, WaitDelay: time.Second, MaxOutputBytes: 1 << 10}, testLogger())
	dir := t.TempDir()

	tests := []struct {
		name     string
		command  string
		wantKind OutcomeKind
		wantExit int
		stdout   string
	}{
		{name: "ok", command: "echo hi", wantKind: OutcomeOK, stdout: "hi\n"},
		{name: "non-zero exit", command: "echo out; exit 7", wantKind: OutcomeProcessError, wantExit: 7, stdout: "out\n"},
		{name: "unknown command", command: "definitely-not-installed-toolchain-xyz", wantKind: OutcomeProcessError, wantExit: 127},
		{name: "timeout", command: "sleep 10", wantKind: OutcomeTimeout},
		{name: "runs in the staging dir", command: "pwd", wantKind: OutcomeOK, stdout: dir + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := r.Run(context.Background(), dir, tt.command)
			assert.Equal(t, tt.wantKind, out.Kind)
			assert.Equal(t, tt.wantExit, out.ExitCode)
			if tt.stdout != "" {
				assert.Equal(t, tt.stdout, out.Stdout)
			}
		})
	}
}

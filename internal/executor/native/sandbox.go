package native

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rs/xid"
)

// stagingPrefix is the name prefix of every staging directory.
const stagingPrefix = "code-execution-"

// Stager creates per-request staging directories.
type Stager struct {
	root   string
	logger *slog.Logger
}

// NewStager creates staging directories under root, or os.TempDir() when
// root is empty.
func NewStager(root string, logger *slog.Logger) *Stager {
	return &Stager{root: root, logger: logger}
}

// StagingArea is a directory owned by exactly one request. It holds the
// source file and, for compiled languages, the binary.
type StagingArea struct {
	Dir        string
	ID         string // generated program identifier, e.g. "Programcq2k1o0s6kd3r4n8ub4g"
	SourcePath string

	logger *slog.Logger
}

// Stage creates a fresh directory and writes code to <ID>.<ext> inside it.
// On error nothing is left on disk.
func (s *Stager) Stage(code, ext string) (*StagingArea, error) {
	dir, err := os.MkdirTemp(s.root, stagingPrefix)
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	area := &StagingArea{
		Dir:    dir,
		ID:     "Program" + xid.New().String(),
		logger: s.logger,
	}
	area.SourcePath = filepath.Join(dir, area.ID+"."+ext)

	if err := os.WriteFile(area.SourcePath, []byte(code), 0o644); err != nil {
		area.Cleanup()
		return nil, fmt.Errorf("writing source file: %w", err)
	}
	s.logger.Debug("staged source", slog.String("dir", dir), slog.String("id", area.ID))
	return area, nil
}

// Cleanup removes the staging directory and everything in it. Failures are
// logged and otherwise ignored. Safe to call more than once.
func (a *StagingArea) Cleanup() {
	if err := os.RemoveAll(a.Dir); err != nil {
		a.logger.Error("failed to remove staging directory",
			slog.String("dir", a.Dir),
			slog.String("error", err.Error()),
		)
	}
}

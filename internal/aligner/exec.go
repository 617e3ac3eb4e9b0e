package aligner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/aria-lang/vannot-go/internal/sequence"
)

// ExecError is returned when an external aligner exits unsuccessfully.
type ExecError struct {
	Path   string
	Err    error
	Output string
}

func (e *ExecError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("failed to execute %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to execute %s: %v: %s", e.Path, e.Err, out)
}

func (e *ExecError) Unwrap() error { return e.Err }

func (e *ExecError) IsAlignerError() {}

// run executes path with args and waits for it, returning its combined
// output on failure.
func run(ctx context.Context, path string, args ...string) error {
	start := time.Now()
	cmd := exec.CommandContext(ctx, path, args...)
	output, err := cmd.CombinedOutput()
	log.WithFields(log.Fields{
		"cmd":      filepath.Base(path),
		"args":     strings.Join(args, " "),
		"duration": time.Since(start),
	}).Debug("aligner finished")
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ExecError{Path: path, Err: err, Output: string(output)}
	}
	return nil
}

// workdir creates a scratch directory under base (os.TempDir when empty).
// The returned cleanup removes it.
func workdir(base, prefix string) (string, func(), error) {
	dir, err := os.MkdirTemp(base, prefix)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	return dir, func() {
		if err := os.RemoveAll(dir); err != nil {
			log.WithError(err).Warnf("failed to remove %s", dir)
		}
	}, nil
}

// writeFASTA writes seqs to dir/name and returns the full path.
func writeFASTA(dir, name string, seqs ...*sequence.Sequence) (string, error) {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	if err := sequence.WriteFASTA(f, seqs); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}
	return path, nil
}

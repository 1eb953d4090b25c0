// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Runner runs an external command and returns its output. Tests stub it.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// maxStderr caps the stderr text carried by errors.
const maxStderr = 8 << 10

// Pdftotext shells out to poppler's pdftotext.
type Pdftotext struct {
	bin    string
	runner Runner
	log    *zap.Logger
}

// NewPdftotext returns an extractor running bin ("pdftotext" when empty).
func NewPdftotext(bin string, log *zap.Logger) *Pdftotext {
	if bin == "" {
		bin = "pdftotext"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pdftotext{bin: bin, runner: execRunner{}, log: log}
}

// ExtractPlainText writes data to a temporary file and runs
// "pdftotext -layout -enc UTF-8 -eol unix <file> -".
func (p *Pdftotext) ExtractPlainText(ctx context.Context, data []byte) (string, error) {
	f, err := os.CreateTemp("", "paper-intel-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	start := time.Now()
	out, errb, err := p.runner.Run(ctx, p.bin, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		msg := strings.TrimSpace(string(errb))
		if len(msg) > maxStderr {
			msg = msg[:maxStderr] + "...(truncated)"
		}
		p.log.Debug("pdftotext failed", zap.Error(err), zap.String("stderr", msg))
		if msg != "" {
			return "", fmt.Errorf("running %s: %w: %s", p.bin, err, msg)
		}
		return "", fmt.Errorf("running %s: %w", p.bin, err)
	}

	p.log.Debug("pdf text extracted",
		zap.String("backend", "pdftotext"),
		zap.Int("pages", 1+bytes.Count(out, []byte("\f"))),
		zap.Int("chars", len(out)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return string(out), nil
}

package executor

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/seantiz/tasksolver/internal/model"
)

// artifactPattern names the temporary executables written by BinaryExecutor.
const artifactPattern = "tasksolver-bin-*"

// BinaryExecutor decodes a base64 payload into a temporary executable, runs
// it and removes it afterwards.
type BinaryExecutor struct {
	workDir string
}

// NewBinaryExecutor creates a binary executor that materialises artifacts in
// workDir. An empty workDir selects os.TempDir().
func NewBinaryExecutor(workDir string) *BinaryExecutor {
	if workDir == "" {
		workDir = os.TempDir()
	}
	if abs, err := filepath.Abs(workDir); err == nil {
		workDir = abs
	}
	return &BinaryExecutor{workDir: workDir}
}

// Execute decodes, writes and runs the payload. The artifact is removed on
// every path out of this method, including a failed start.
func (b *BinaryExecutor) Execute(ctx context.Context, spec Spec) (Result, error) {
	data, err := base64.StdEncoding.DecodeString(spec.Payload)
	if err != nil {
		return Result{}, fmt.Errorf("decode base64 payload: %w", err)
	}

	path, err := b.writeArtifact(data)
	if err != nil {
		return Result{}, err
	}
	defer os.Remove(path)

	return runProcess(ctx, b.workDir, path, argv(nil, spec.Arguments)...)
}

// writeArtifact writes data to a new executable file in the work directory.
func (b *BinaryExecutor) writeArtifact(data []byte) (string, error) {
	if err := os.MkdirAll(b.workDir, 0o755); err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}

	f, err := os.CreateTemp(b.workDir, artifactPattern)
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := f.Chmod(0o700); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("chmod artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close artifact: %w", err)
	}
	return path, nil
}

// Info implements Executor.
func (b *BinaryExecutor) Info() Info {
	return Info{
		Kind:    model.KindBinary,
		Name:    "binary",
		Command: "<decoded payload>",
	}
}

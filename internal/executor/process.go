package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/seantiz/tasksolver/internal/model"
)

const (
	// startRetries bounds retries of a start that failed with ETXTBSY. A
	// freshly written binary can be briefly held open for writing by a child
	// forked concurrently by another worker.
	startRetries    = 5
	startRetryDelay = 10 * time.Millisecond
)

// argv appends arguments as a single trailing argument when it is non-empty.
func argv(args []string, arguments string) []string {
	if arguments == "" {
		return args
	}
	return append(args, arguments)
}

// runProcess starts name with args, waits for it to exit and captures both
// output streams. It returns an error only when the process never started.
func runProcess(ctx context.Context, dir, name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer

	var cmd *exec.Cmd
	var err error
	for attempt := 0; attempt <= startRetries; attempt++ {
		cmd = exec.CommandContext(ctx, name, args...)
		cmd.Dir = dir
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err = cmd.Start()
		if !errors.Is(err, syscall.ETXTBSY) {
			break
		}
		time.Sleep(startRetryDelay)
	}
	if err != nil {
		return Result{}, fmt.Errorf("start %s: %w", name, err)
	}

	waitErr := cmd.Wait()

	res := Result{
		Stdout:  stdout.String(),
		Outcome: model.StatusSuccess,
	}

	errOut := stderr.String()
	if waitErr != nil {
		res.Outcome = model.StatusFailed
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
			errOut += waitErr.Error()
		}
	}
	res.Stderr = &errOut

	return res, nil
}

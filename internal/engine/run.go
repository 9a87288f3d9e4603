package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

// limitedBuffer captures up to max bytes and records whether anything was
// dropped. Writes never fail so the child is not back-pressured.
type limitedBuffer struct {
	max       int
	buf       bytes.Buffer
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if b.max <= 0 {
		return n, nil
	}
	remain := b.max - b.buf.Len()
	if remain > 0 {
		if remain > len(p) {
			remain = len(p)
		}
		_, _ = b.buf.Write(p[:remain])
	}
	if len(p) > remain {
		b.truncated = true
	}
	return n, nil
}

func (b *limitedBuffer) String() string { return b.buf.String() }

// runOutcome is the raw, strategy-agnostic result of one interpreter run.
type runOutcome struct {
	exitCode        int
	stdout          string
	stderr          string
	stdoutTruncated bool
	stderrTruncated bool
	timedOut        bool
	canceled        bool
	// startErr is set when the interpreter process could not be started at
	// all; exitCode is -1 in that case.
	startErr string
}

// runPython starts the interpreter with the given arguments in its own
// process group and waits for it under the timeout. On timeout the group
// gets SIGTERM, a grace period, then SIGKILL, so no child survives the
// call.
func (e *Engine) runPython(ctx context.Context, args []string, timeout time.Duration) runOutcome {
	cmd := exec.Command(e.opts.Python, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	outBuf := &limitedBuffer{max: e.opts.CaptureMaxBytes}
	errBuf := &limitedBuffer{max: e.opts.CaptureMaxBytes}
	cmd.Stdout = outBuf
	cmd.Stderr = errBuf

	if err := cmd.Start(); err != nil {
		var ee *exec.Error
		if errors.As(err, &ee) {
			return runOutcome{exitCode: -1, startErr: fmt.Sprintf("interpreter %s not found", e.opts.Python)}
		}
		return runOutcome{exitCode: -1, startErr: fmt.Sprintf("interpreter %s failed to start: %v", e.opts.Python, err)}
	}
	e.log.Debug("interpreter started", "pid", cmd.Process.Pid)

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var runErr error
	timedOut := false
	canceled := false
	select {
	case runErr = <-done:
	case <-timer.C:
		timedOut = true
	case <-ctx.Done():
		canceled = true
	}

	if timedOut || canceled {
		signalGroup(cmd, syscall.SIGTERM)
		grace := time.NewTimer(e.opts.TermGrace)
		select {
		case runErr = <-done:
			grace.Stop()
		case <-grace.C:
			signalGroup(cmd, syscall.SIGKILL)
			runErr = <-done
		}
	}

	out := runOutcome{
		stdout:          outBuf.String(),
		stderr:          errBuf.String(),
		stdoutTruncated: outBuf.truncated,
		stderrTruncated: errBuf.truncated,
		timedOut:        timedOut,
		canceled:        canceled,
	}
	if timedOut || canceled {
		out.exitCode = -2
		return out
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			out.exitCode = exitErr.ExitCode()
			return out
		}
		out.exitCode = -1
		out.startErr = fmt.Sprintf("interpreter execution failed: %v", runErr)
		return out
	}
	return out
}

// signalGroup signals the whole process group, falling back to the process
// itself when the group signal fails.
func signalGroup(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	if pid > 0 {
		if err := syscall.Kill(-pid, sig); err == nil {
			return
		}
	}
	_ = cmd.Process.Signal(sig)
}

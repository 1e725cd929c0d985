package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/sourcegraph/conc"

	"perfi.com/internal/domain/entity"
	"perfi.com/internal/domain/port"
	"perfi.com/internal/infrastructure/logger"
)

// Layout locates the backend on disk. When DistDir exists under RootDir
// the packaged binary is used, otherwise the script runs from source.
type Layout struct {
	RootDir     string
	DistDir     string
	Binary      string
	Interpreter string
	Script      string
	GOOS        string
}

// Packaged reports whether the packaged distribution is present.
func (l Layout) Packaged() bool {
	info, err := os.Stat(filepath.Join(l.RootDir, l.DistDir))
	return err == nil && info.IsDir()
}

// Command returns the executable, its arguments and its working directory.
func (l Layout) Command(ports entity.Ports) (string, []string, string) {
	if l.Packaged() {
		dir := filepath.Join(l.RootDir, l.DistDir, l.Binary)
		name := l.Binary
		if l.goos() == "windows" {
			name += ".exe"
		}
		return filepath.Join(dir, name), ports.Args(), dir
	}
	args := append([]string{l.Script}, ports.Args()...)
	return l.Interpreter, args, l.RootDir
}

func (l Layout) goos() string {
	if l.GOOS != "" {
		return l.GOOS
	}
	return runtime.GOOS
}

// Spawner starts the backend as a child process
type Spawner struct {
	layout Layout
	logger logger.Logger
}

// NewSpawner creates a new spawner
func NewSpawner(layout Layout, logger logger.Logger) port.BackendSpawner {
	return &Spawner{layout: layout, logger: logger}
}

// Spawn starts the backend. The child's stdout and stderr are forwarded
// to the logger line by line until it exits.
func (s *Spawner) Spawn(ctx context.Context, ports entity.Ports) (port.BackendProcess, error) {
	name, args, dir := s.layout.Command(ports)

	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), ports.Env()...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open backend stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open backend stderr: %w", err)
	}

	s.logger.LogInfo(ctx, "Launching backend",
		"command", name,
		"args", args,
		"dir", dir,
		"packaged", s.layout.Packaged())

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start backend %s: %w", name, err)
	}

	proc := &Process{
		cmd:    cmd,
		done:   make(chan struct{}),
		logger: s.logger,
	}

	pid := cmd.Process.Pid
	outWriter := logger.NewInfoWriter(s.logger, "Backend output", "stream", "stdout", "pid", pid)
	errWriter := logger.NewWarningWriter(s.logger, "Backend output", "stream", "stderr", "pid", pid)

	var wg conc.WaitGroup
	wg.Go(func() { forward(outWriter, stdout) })
	wg.Go(func() { forward(errWriter, stderr) })

	go func() {
		wg.Wait()
		proc.exitErr = cmd.Wait()
		if proc.exitErr != nil {
			s.logger.LogWarning(context.Background(), "Backend exited", "pid", pid, "error", proc.exitErr.Error())
		} else {
			s.logger.LogInfo(context.Background(), "Backend exited", "pid", pid)
		}
		close(proc.done)
	}()

	s.logger.LogInfo(ctx, "Backend process running", "pid", pid)
	return proc, nil
}

func forward(w *logger.Writer, r io.Reader) {
	_, _ = io.Copy(w, r)
	w.Flush()
}

// Process is a running backend
type Process struct {
	cmd     *exec.Cmd
	done    chan struct{}
	exitErr error
	logger  logger.Logger
}

func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Terminate sends the termination signal and returns immediately. It does
// not escalate and does not wait for the process to exit.
func (p *Process) Terminate() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	if err := p.cmd.Process.Signal(terminateSignal); err != nil {
		return fmt.Errorf("failed to signal backend %d: %w", p.Pid(), err)
	}
	p.logger.LogInfo(context.Background(), "Sent termination signal to backend", "pid", p.Pid())
	return nil
}

// Done is closed once the process has exited and its output is drained.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// ExitErr is the result of the process once Done is closed.
func (p *Process) ExitErr() error {
	<-p.done
	return p.exitErr
}

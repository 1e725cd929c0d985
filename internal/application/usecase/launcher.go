package usecase

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"perfi.com/internal/domain/entity"
	"perfi.com/internal/domain/port"
	"perfi.com/internal/infrastructure/logger"
)

// Launcher brings up one backend and the window showing it, and owns the
// backend process handle until Stop.
type Launcher struct {
	finder  port.PortFinder
	spawner port.BackendSpawner
	waiter  port.ReadinessWaiter
	windows port.WindowFactory
	prefs   port.Preferences
	logger  logger.Logger
	goos    string

	mu        sync.Mutex
	ports     entity.Ports
	url       string
	readiness entity.Readiness
	proc      port.BackendProcess
	open      map[port.Window]struct{}
	quit      chan struct{}
	quitOnce  sync.Once
}

// LauncherOption customizes a Launcher
type LauncherOption func(*Launcher)

// WithPlatform overrides the platform used for window lifecycle conventions.
func WithPlatform(goos string) LauncherOption {
	return func(l *Launcher) { l.goos = goos }
}

// WithPreferences records the API port once the backend is up.
func WithPreferences(prefs port.Preferences) LauncherOption {
	return func(l *Launcher) { l.prefs = prefs }
}

// NewLauncher creates a new Launcher
func NewLauncher(
	finder port.PortFinder,
	spawner port.BackendSpawner,
	waiter port.ReadinessWaiter,
	windows port.WindowFactory,
	logger logger.Logger,
	opts ...LauncherOption,
) *Launcher {
	l := &Launcher{
		finder:  finder,
		spawner: spawner,
		waiter:  waiter,
		windows: windows,
		logger:  logger.WithComponent("launcher"),
		goos:    runtime.GOOS,
		open:    make(map[port.Window]struct{}),
		quit:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start selects ports, spawns the backend, waits for it and opens the
// first window. Port exhaustion, spawn failures and cancellation abort
// the start; an unready backend does not. The caller still owns the
// backend after a failed start and should Stop it.
func (l *Launcher) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.proc != nil {
		l.mu.Unlock()
		return fmt.Errorf("backend already started (pid %d)", l.proc.Pid())
	}
	l.mu.Unlock()

	ports, err := l.finder.FindPorts()
	if err != nil {
		l.logger.LogError(ctx, "Failed to find free ports", err)
		return fmt.Errorf("failed to select backend ports: %w", err)
	}
	l.logger.LogInfo(ctx, "Selected backend ports", "api_port", ports.API, "frontend_port", ports.Frontend)

	proc, err := l.spawner.Spawn(ctx, ports)
	if err != nil {
		l.logger.LogError(ctx, "Failed to spawn backend", err)
		return fmt.Errorf("failed to spawn backend: %w", err)
	}

	url := ports.ReadinessURL()
	l.mu.Lock()
	l.ports = ports
	l.url = url
	l.proc = proc
	l.mu.Unlock()

	readiness := l.waiter.Wait(ctx, url)
	l.mu.Lock()
	l.readiness = readiness
	l.mu.Unlock()
	if err := ctx.Err(); err != nil {
		l.logger.LogWarning(ctx, "Launch cancelled while waiting for the backend", "url", url)
		return fmt.Errorf("launch cancelled: %w", err)
	}
	if !readiness.Ready {
		l.logger.LogWarning(ctx, "Backend did not answer in time, loading the window anyway",
			"url", url,
			"attempts", readiness.Attempts)
	}

	if l.prefs != nil {
		if err := l.prefs.SetAPIPort(ports.API); err != nil {
			l.logger.LogError(ctx, "Failed to record api port", err)
		}
	}

	return l.createWindow(ctx)
}

// Ports returns the ports chosen by Start.
func (l *Launcher) Ports() entity.Ports {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ports
}

// URL returns the address loaded in windows.
func (l *Launcher) URL() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.url
}

// Readiness returns the outcome of the readiness wait.
func (l *Launcher) Readiness() entity.Readiness {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readiness
}

// Backend returns the backend handle, nil before Start.
func (l *Launcher) Backend() port.BackendProcess {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.proc
}

// OpenWindows returns how many windows are open.
func (l *Launcher) OpenWindows() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.open)
}

// Activate recreates a window when the application is reactivated with
// none open.
func (l *Launcher) Activate(ctx context.Context) error {
	if l.OpenWindows() > 0 {
		return nil
	}
	return l.createWindow(ctx)
}

// Quit is closed when the application should exit.
func (l *Launcher) Quit() <-chan struct{} {
	return l.quit
}

// RequestQuit asks the application to exit.
func (l *Launcher) RequestQuit() {
	l.quitOnce.Do(func() { close(l.quit) })
}

// Stop sends the termination signal to the backend, if there is one. It
// neither waits for the exit nor escalates.
func (l *Launcher) Stop(ctx context.Context) error {
	l.mu.Lock()
	proc := l.proc
	l.mu.Unlock()

	if proc == nil {
		return nil
	}
	l.logger.LogInfo(ctx, "Stopping backend", "pid", proc.Pid())
	if err := proc.Terminate(); err != nil {
		l.logger.LogError(ctx, "Failed to stop backend", err, "pid", proc.Pid())
		return err
	}
	return nil
}

func (l *Launcher) createWindow(ctx context.Context) error {
	l.mu.Lock()
	url := l.url
	l.mu.Unlock()

	win, err := l.windows.NewWindow()
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}

	l.mu.Lock()
	l.open[win] = struct{}{}
	l.mu.Unlock()

	if err := win.Load(ctx, url); err != nil {
		l.windowClosed(win)
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	l.logger.LogInfo(ctx, "Window opened", "url", url)

	go func() {
		<-win.Closed()
		l.windowClosed(win)
	}()
	return nil
}

// windowClosed quits once the last window closes, except on macOS where
// applications stay active until quit explicitly.
func (l *Launcher) windowClosed(win port.Window) {
	l.mu.Lock()
	delete(l.open, win)
	remaining := len(l.open)
	l.mu.Unlock()

	if remaining == 0 && l.goos != "darwin" {
		l.logger.LogInfo(context.Background(), "All windows closed, quitting")
		l.RequestQuit()
	}
}

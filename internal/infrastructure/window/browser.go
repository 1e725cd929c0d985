package window

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"sync"

	"perfi.com/internal/domain/port"
	"perfi.com/internal/infrastructure/logger"
)

// Opener runs an external command without waiting for it to finish.
type Opener func(ctx context.Context, name string, args ...string) error

// StartCommand starts name and reaps it in the background.
func StartCommand(_ context.Context, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// OpenCommand returns the platform command that opens url in the default browser.
func OpenCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// BrowserFactory shows the application in the system browser. A browser
// tab cannot report being closed, so its windows only close through Close.
type BrowserFactory struct {
	goos   string
	open   Opener
	logger logger.Logger
}

// NewBrowserFactory creates a factory for the current platform
func NewBrowserFactory(logger logger.Logger) port.WindowFactory {
	return NewBrowserFactoryWith(runtime.GOOS, StartCommand, logger)
}

// NewBrowserFactoryWith creates a factory with an explicit platform and opener.
func NewBrowserFactoryWith(goos string, open Opener, logger logger.Logger) *BrowserFactory {
	return &BrowserFactory{goos: goos, open: open, logger: logger}
}

func (f *BrowserFactory) NewWindow() (port.Window, error) {
	return &Window{
		closed: make(chan struct{}),
		load: func(ctx context.Context, url string) error {
			name, args := OpenCommand(f.goos, url)
			if err := f.open(ctx, name, args...); err != nil {
				return fmt.Errorf("failed to open browser with %s: %w", name, err)
			}
			f.logger.LogInfo(ctx, "Opened application in browser", "url", url, "command", name)
			return nil
		},
	}, nil
}

// HeadlessFactory only logs the URL; useful when the shell runs on a
// machine without a display.
type HeadlessFactory struct {
	logger logger.Logger
}

func NewHeadlessFactory(logger logger.Logger) port.WindowFactory {
	return &HeadlessFactory{logger: logger}
}

func (f *HeadlessFactory) NewWindow() (port.Window, error) {
	return &Window{
		closed: make(chan struct{}),
		load: func(ctx context.Context, url string) error {
			f.logger.LogInfo(ctx, "Application available", "url", url)
			return nil
		},
	}, nil
}

// Window is a loaded view of the application
type Window struct {
	mu     sync.Mutex
	url    string
	load   func(ctx context.Context, url string) error
	closed chan struct{}
	once   sync.Once
}

func (w *Window) Load(ctx context.Context, url string) error {
	if err := w.load(ctx, url); err != nil {
		return err
	}
	w.mu.Lock()
	w.url = url
	w.mu.Unlock()
	return nil
}

// URL returns the last loaded URL.
func (w *Window) URL() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.url
}

func (w *Window) Closed() <-chan struct{} {
	return w.closed
}

// Close marks the window closed.
func (w *Window) Close() {
	w.once.Do(func() { close(w.closed) })
}

package port

import (
	"context"

	"perfi.com/internal/domain/entity"
)

// PortFinder selects the ports the backend will listen on
type PortFinder interface {
	FindPorts() (entity.Ports, error)
}

// BackendSpawner starts the backend process
type BackendSpawner interface {
	Spawn(ctx context.Context, ports entity.Ports) (BackendProcess, error)
}

// BackendProcess is a running backend
type BackendProcess interface {
	Pid() int
	// Terminate sends a graceful termination signal and returns without waiting.
	Terminate() error
	Done() <-chan struct{}
}

// ReadinessWaiter blocks until the URL answers or its attempt budget is spent
type ReadinessWaiter interface {
	Wait(ctx context.Context, url string) entity.Readiness
}

// Window displays the application
type Window interface {
	Load(ctx context.Context, url string) error
	Closed() <-chan struct{}
}

// WindowFactory creates top level windows
type WindowFactory interface {
	NewWindow() (Window, error)
}

// Preferences is the local key-value preference store
type Preferences interface {
	APIPort() (int, bool)
	SetAPIPort(port int) error
}

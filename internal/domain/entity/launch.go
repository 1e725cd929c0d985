package entity

import (
	"fmt"
	"strconv"
)

// Ports are the two loopback ports handed to the backend process.
type Ports struct {
	API      int
	Frontend int
}

// ReadinessURL is the frontend origin polled during startup and later
// loaded in the window.
func (p Ports) ReadinessURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d/?apiPort=%d#", p.Frontend, p.API)
}

// Args is the command line both backend layouts accept.
func (p Ports) Args() []string {
	return []string{
		"--api-port", strconv.Itoa(p.API),
		"--frontend-port", strconv.Itoa(p.Frontend),
	}
}

// Env is the environment both backend layouts accept.
func (p Ports) Env() []string {
	return []string{
		"PERFI_API_PORT=" + strconv.Itoa(p.API),
		"PERFI_FRONTEND_PORT=" + strconv.Itoa(p.Frontend),
	}
}

// Readiness is the outcome of waiting for the backend.
type Readiness struct {
	Ready    bool
	Attempts int
	LastErr  error
}

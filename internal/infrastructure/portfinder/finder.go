package portfinder

import (
	"fmt"
	"net"
	"strconv"

	"perfi.com/internal/domain/entity"
	"perfi.com/internal/domain/port"
)

// AvailableFunc reports whether a TCP port can be bound.
type AvailableFunc func(port int) bool

// Finder searches loopback ports upward from a base value.
type Finder struct {
	base      int
	max       int
	available AvailableFunc
}

// NewFinder creates a finder searching [base, max] on 127.0.0.1
func NewFinder(base, max int) port.PortFinder {
	return NewFinderWith(base, max, LoopbackAvailable)
}

// NewFinderWith creates a finder with a custom availability check.
func NewFinderWith(base, max int, available AvailableFunc) *Finder {
	return &Finder{base: base, max: max, available: available}
}

// FindPorts returns the API port and the frontend port. The frontend
// search starts strictly above the API port.
func (f *Finder) FindPorts() (entity.Ports, error) {
	apiPort, err := f.FindFree(f.base)
	if err != nil {
		return entity.Ports{}, fmt.Errorf("api port: %w", err)
	}
	frontendPort, err := f.FindFree(apiPort + 1)
	if err != nil {
		return entity.Ports{}, fmt.Errorf("frontend port: %w", err)
	}
	return entity.Ports{API: apiPort, Frontend: frontendPort}, nil
}

// FindFree returns the lowest available port in [from, max].
func (f *Finder) FindFree(from int) (int, error) {
	if from < 1 {
		from = 1
	}
	for p := from; p <= f.max; p++ {
		if f.available(p) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %d-%d", entity.ErrPortExhausted, from, f.max)
}

// LoopbackAvailable binds the port on 127.0.0.1 and releases it.
func LoopbackAvailable(p int) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(p)))
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}

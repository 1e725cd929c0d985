package repository

import (
	"sync"

	"perfi.com/internal/domain/entity"
)

// NavigationContext holds what the user has currently drilled into: at
// most one entity and one address. It is never persisted.
type NavigationContext struct {
	mu      sync.RWMutex
	entity  *entity.Entity
	address *entity.Address
}

func NewNavigationContext() *NavigationContext {
	return &NavigationContext{}
}

func (n *NavigationContext) SetEntity(e entity.Entity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entity = &e
}

func (n *NavigationContext) SetAddress(a entity.Address) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.address = &a
}

func (n *NavigationContext) Entity() (entity.Entity, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.entity == nil {
		return entity.Entity{}, false
	}
	return *n.entity, true
}

func (n *NavigationContext) Address() (entity.Address, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.address == nil {
		return entity.Address{}, false
	}
	return *n.address, true
}

// Clear drops both selections.
func (n *NavigationContext) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entity = nil
	n.address = nil
}

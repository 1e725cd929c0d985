package port

import (
	"context"

	"perfi.com/internal/domain/entity"
)

// Cache is the port for a local collection mirrored from the backend
type Cache[T Record] interface {
	Fetch(ctx context.Context) error
	Populated() bool
	All() []T
	Len() int
	GetByID(id entity.ID) (T, bool)
	Add(item T)
	Update(item T) bool
	Delete(id entity.ID) bool
}

// CacheRegistry hands out one Cache per key, e.g. balances per address
type CacheRegistry[T Record] interface {
	For(key entity.ID) Cache[T]
}

// Navigation is the port for the current drill-down selection
type Navigation interface {
	SetEntity(e entity.Entity)
	SetAddress(a entity.Address)
	Entity() (entity.Entity, bool)
	Address() (entity.Address, bool)
	Clear()
}

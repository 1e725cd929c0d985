package usecase

import (
	"context"
	"fmt"

	"perfi.com/internal/domain/entity"
	"perfi.com/internal/domain/port"
)

// AddressesPath is the backend collection addresses are written to.
const AddressesPath = "/addresses"

// AddressPersister writes addresses to the backend and, once the backend
// has accepted a change, applies the backend's version to the local cache.
// The cache is never changed when the remote call fails.
type AddressPersister struct {
	remote port.RemoteAPI
	store  port.Cache[entity.Address]
}

// NewAddressPersister creates a new AddressPersister
func NewAddressPersister(remote port.RemoteAPI, store port.Cache[entity.Address]) *AddressPersister {
	return &AddressPersister{
		remote: remote,
		store:  store,
	}
}

// Create posts a new address and appends the created record to the cache.
func (p *AddressPersister) Create(ctx context.Context, addr entity.Address) (entity.Address, error) {
	addr.ApplyDefaults()
	if err := addr.Validate(); err != nil {
		return entity.Address{}, err
	}

	var created entity.Address
	if err := p.remote.Post(ctx, AddressesPath, addr, &created); err != nil {
		return entity.Address{}, fmt.Errorf("failed to create address: %w", err)
	}
	p.store.Add(created)
	return created, nil
}

// Save puts an existing address and replaces it in the cache.
func (p *AddressPersister) Save(ctx context.Context, addr entity.Address) (entity.Address, error) {
	if addr.ID.IsZero() {
		return entity.Address{}, fmt.Errorf("cannot save address without id")
	}
	addr.ApplyDefaults()
	if err := addr.Validate(); err != nil {
		return entity.Address{}, err
	}

	var saved entity.Address
	if err := p.remote.Put(ctx, AddressesPath, addr, &saved); err != nil {
		return entity.Address{}, fmt.Errorf("failed to save address %s: %w", addr.ID, err)
	}
	if saved.ID.IsZero() {
		saved = addr
	}
	p.store.Update(saved)
	return saved, nil
}

// Remove deletes an address on the backend and drops it from the cache.
func (p *AddressPersister) Remove(ctx context.Context, id entity.ID) error {
	if id.IsZero() {
		return fmt.Errorf("cannot delete address without id")
	}
	if err := p.remote.Delete(ctx, AddressesPath+"/"+id.String()); err != nil {
		return fmt.Errorf("failed to delete address %s: %w", id, err)
	}
	p.store.Delete(id)
	return nil
}

package usecase

import (
	"context"
	"fmt"

	"perfi.com/internal/domain/entity"
	"perfi.com/internal/domain/port"
)

// DrillDownUseCase selects an entity or an address into the navigation
// context, fetching the backing store the first time it is needed.
type DrillDownUseCase struct {
	entities  port.Cache[entity.Entity]
	addresses port.Cache[entity.Address]
	nav       port.Navigation
}

// NewDrillDownUseCase creates a new DrillDownUseCase
func NewDrillDownUseCase(
	entities port.Cache[entity.Entity],
	addresses port.Cache[entity.Address],
	nav port.Navigation,
) *DrillDownUseCase {
	return &DrillDownUseCase{
		entities:  entities,
		addresses: addresses,
		nav:       nav,
	}
}

// SelectEntity selects an entity and returns the cached addresses it owns.
// Any previously selected address is dropped.
func (uc *DrillDownUseCase) SelectEntity(ctx context.Context, id entity.ID) (entity.Entity, []entity.Address, error) {
	if err := ensureFetched(ctx, uc.entities); err != nil {
		return entity.Entity{}, nil, err
	}
	e, ok := uc.entities.GetByID(id)
	if !ok {
		return entity.Entity{}, nil, fmt.Errorf("entity %s not found", id)
	}

	if err := ensureFetched(ctx, uc.addresses); err != nil {
		return entity.Entity{}, nil, err
	}
	owned := make([]entity.Address, 0)
	for _, a := range uc.addresses.All() {
		if a.EntityID.Equal(e.ID) {
			owned = append(owned, a)
		}
	}

	uc.nav.Clear()
	uc.nav.SetEntity(e)
	return e, owned, nil
}

// SelectAddress selects an address, keeping the selected entity when it
// owns the address and replacing it otherwise.
func (uc *DrillDownUseCase) SelectAddress(ctx context.Context, id entity.ID) (entity.Address, error) {
	if err := ensureFetched(ctx, uc.addresses); err != nil {
		return entity.Address{}, err
	}
	a, ok := uc.addresses.GetByID(id)
	if !ok {
		return entity.Address{}, fmt.Errorf("address %s not found", id)
	}

	if current, ok := uc.nav.Entity(); !ok || !current.ID.Equal(a.EntityID) {
		uc.nav.Clear()
		if err := ensureFetched(ctx, uc.entities); err == nil {
			if owner, ok := uc.entities.GetByID(a.EntityID); ok {
				uc.nav.SetEntity(owner)
			}
		}
	}
	uc.nav.SetAddress(a)
	return a, nil
}

type fetcher interface {
	Populated() bool
	Fetch(ctx context.Context) error
}

func ensureFetched(ctx context.Context, store fetcher) error {
	if store.Populated() {
		return nil
	}
	return store.Fetch(ctx)
}

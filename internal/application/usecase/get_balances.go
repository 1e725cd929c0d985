package usecase

import (
	"context"

	"perfi.com/internal/domain/entity"
	"perfi.com/internal/domain/port"
)

// Balances is the balance sheet of one address
type Balances struct {
	AddressID entity.ID
	Items     []entity.AssetBalance
	TotalUSD  string
}

// GetBalancesUseCase handles balance retrieval
type GetBalancesUseCase struct {
	stores port.CacheRegistry[entity.AssetBalance]
}

// NewGetBalancesUseCase creates a new GetBalancesUseCase
func NewGetBalancesUseCase(stores port.CacheRegistry[entity.AssetBalance]) *GetBalancesUseCase {
	return &GetBalancesUseCase{
		stores: stores,
	}
}

// Execute refreshes the balances of an address
func (uc *GetBalancesUseCase) Execute(ctx context.Context, addressID entity.ID) (*Balances, error) {
	store := uc.stores.For(addressID)
	if err := store.Fetch(ctx); err != nil {
		return nil, err
	}
	items := store.All()
	return &Balances{
		AddressID: entity.NewID(addressID),
		Items:     items,
		TotalUSD:  entity.TotalUSD(items),
	}, nil
}

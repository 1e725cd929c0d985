package repository

import (
	"fmt"
	"net/url"
	"sync"

	"perfi.com/internal/domain/entity"
	"perfi.com/internal/domain/port"
	"perfi.com/internal/infrastructure/logger"
)

const (
	EntitiesPath   = "/entities"
	AddressesPath  = "/addresses"
	TxLogicalsPath = "/tx_logicals"
)

type (
	EntityStore       = Collection[entity.Entity]
	AddressStore      = Collection[entity.Address]
	TxLogicalStore    = Collection[entity.TxLogical]
	AssetBalanceStore = Collection[entity.AssetBalance]
)

func NewEntityStore(remote port.RemoteAPI, logger logger.Logger) *EntityStore {
	return NewCollection[entity.Entity]("entities", EntitiesPath, remote, logger)
}

func NewAddressStore(remote port.RemoteAPI, logger logger.Logger) *AddressStore {
	return NewCollection[entity.Address]("addresses", AddressesPath, remote, logger)
}

func NewTxLogicalStore(remote port.RemoteAPI, logger logger.Logger) *TxLogicalStore {
	return NewCollection[entity.TxLogical]("tx_logicals", TxLogicalsPath, remote, logger)
}

// ManualBalancesPath is the balance collection of one address.
func ManualBalancesPath(addressID entity.ID) string {
	return fmt.Sprintf("%s/%s/manual_balances", AddressesPath, url.PathEscape(addressID.String()))
}

// NewAssetBalanceStore creates the balance cache of one address.
func NewAssetBalanceStore(remote port.RemoteAPI, addressID entity.ID, logger logger.Logger) *AssetBalanceStore {
	name := fmt.Sprintf("address_%s_asset_balance", addressID)
	return NewCollection[entity.AssetBalance](name, ManualBalancesPath(addressID), remote, logger)
}

// Keyed hands out one independent Collection per key and returns the
// same instance when asked for the same key again.
type Keyed[T port.Record] struct {
	mu     sync.Mutex
	stores map[string]*Collection[T]
	build  func(key entity.ID) *Collection[T]
}

// NewKeyed creates a registry; build is called once per distinct key.
func NewKeyed[T port.Record](build func(key entity.ID) *Collection[T]) *Keyed[T] {
	return &Keyed[T]{
		stores: make(map[string]*Collection[T]),
		build:  build,
	}
}

// For returns the collection of key, creating it on first use.
func (k *Keyed[T]) For(key entity.ID) port.Cache[T] {
	canonical := key.Key()

	k.mu.Lock()
	defer k.mu.Unlock()

	if store, ok := k.stores[canonical]; ok {
		return store
	}
	store := k.build(entity.ID(canonical))
	k.stores[canonical] = store
	return store
}

var (
	_ port.Cache[entity.Address]              = (*AddressStore)(nil)
	_ port.CacheRegistry[entity.AssetBalance] = (*Keyed[entity.AssetBalance])(nil)
	_ port.Navigation                         = (*NavigationContext)(nil)
)

// NewAssetBalanceStores creates the per-address balance registry.
func NewAssetBalanceStores(remote port.RemoteAPI, logger logger.Logger) *Keyed[entity.AssetBalance] {
	return NewKeyed[entity.AssetBalance](func(addressID entity.ID) *AssetBalanceStore {
		return NewAssetBalanceStore(remote, addressID, logger)
	})
}

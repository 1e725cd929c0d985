package entity

import "fmt"

// Chain is the chain (or exchange import format) an address lives on.
type Chain string

const (
	ChainEthereum          Chain = "ethereum"
	ChainImportCoinbasePro Chain = "import.coinbasepro"
	ChainImportKraken      Chain = "import.kraken"
	ChainImportGemini      Chain = "import.gemini"
	ChainImportBitcoinTax  Chain = "import.bitcointax"
)

var knownChains = map[Chain]struct{}{
	ChainEthereum:          {},
	ChainImportCoinbasePro: {},
	ChainImportKraken:      {},
	ChainImportGemini:      {},
	ChainImportBitcoinTax:  {},
}

// Valid reports whether the backend knows the chain.
func (c Chain) Valid() bool {
	_, ok := knownChains[c]
	return ok
}

// Entity is a user defined owner of addresses (a person, a wallet owner).
type Entity struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	Note      string    `json:"note"`
	Addresses []Address `json:"addresses,omitempty"`
}

func (e Entity) RecordID() ID { return e.ID }

// Validate validates the entity before it is sent to the backend
func (e *Entity) Validate() error {
	if e.Name == "" {
		return ErrMissingName
	}
	return nil
}

// Address is a blockchain address, optionally owned by an Entity.
type Address struct {
	ID       ID     `json:"id"`
	Label    string `json:"label"`
	Chain    Chain  `json:"chain"`
	Address  string `json:"address"`
	Type     string `json:"type"`
	Source   string `json:"source"`
	Ord      int    `json:"ord"`
	EntityID ID     `json:"entity_id"`
}

func (a Address) RecordID() ID { return a.ID }

const (
	DefaultAddressType   = "account"
	DefaultAddressSource = "manual"
	DefaultAddressOrd    = 1
)

// ApplyDefaults fills the optional fields the same way the backend does.
func (a *Address) ApplyDefaults() {
	if a.Type == "" {
		a.Type = DefaultAddressType
	}
	if a.Source == "" {
		a.Source = DefaultAddressSource
	}
	if a.Ord == 0 {
		a.Ord = DefaultAddressOrd
	}
}

// Validate validates the address before it is sent to the backend
func (a *Address) Validate() error {
	if a.Label == "" {
		return ErrMissingLabel
	}
	if a.Chain == "" {
		return ErrMissingChain
	}
	if !a.Chain.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownChain, a.Chain)
	}
	if a.Address == "" {
		return ErrMissingAddress
	}
	return nil
}

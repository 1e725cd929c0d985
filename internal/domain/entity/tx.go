package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TxLogicalType classifies a logical transaction.
type TxLogicalType string

const (
	TxBorrow       TxLogicalType = "borrow"
	TxRepay        TxLogicalType = "repay"
	TxDeposit      TxLogicalType = "deposit"
	TxWithdraw     TxLogicalType = "withdraw"
	TxDisposal     TxLogicalType = "disposal"
	TxLP           TxLogicalType = "lp"
	TxSwap         TxLogicalType = "swap"
	TxYield        TxLogicalType = "yield"
	TxMint         TxLogicalType = "mint"
	TxGift         TxLogicalType = "gift"
	TxAirdrop      TxLogicalType = "airdrop"
	TxTrade        TxLogicalType = "trade"
	TxSelfTransfer TxLogicalType = "self_transfer"
	TxReceive      TxLogicalType = "receive"
	TxSend         TxLogicalType = "send"
)

// Flag names the backend attaches on its own.
const (
	FlagUnknownSend          = "unknown_send"
	FlagZeroPrice            = "zero_price"
	FlagAutoReconciled       = "auto_reconciled"
	FlagIgnoredFromCostbasis = "ignored_from_costbasis"
	FlagHiddenFrom8949       = "hidden_from_8949"
)

const timestampLayout = "2006-01-02 15:04:05"

// Flag is a named annotation attached to a TxLogical.
type Flag struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Source      string `json:"source"`
	CreatedAt   int64  `json:"created_at"`
}

// TxLedger is one asset movement in or out of an address.
type TxLedger struct {
	ID              ID               `json:"id,omitempty"`
	Chain           string           `json:"chain"`
	Address         string           `json:"address"`
	Hash            string           `json:"hash"`
	FromAddress     string           `json:"from_address"`
	ToAddress       string           `json:"to_address"`
	FromAddressName string           `json:"from_address_name,omitempty"`
	ToAddressName   string           `json:"to_address_name,omitempty"`
	AssetTxID       string           `json:"asset_tx_id"`
	IsFee           int              `json:"isfee"`
	Amount          decimal.Decimal  `json:"amount"`
	Timestamp       int64            `json:"timestamp"`
	Direction       string           `json:"direction"`
	TxLedgerType    string           `json:"tx_ledger_type,omitempty"`
	AssetPriceID    string           `json:"asset_price_id,omitempty"`
	Symbol          string           `json:"symbol,omitempty"`
	PriceUSD        *decimal.Decimal `json:"price_usd,omitempty"`
}

func (t TxLedger) RecordID() ID { return t.ID }

// DisplayAddress returns the resolved name of the "to" or "from" side of
// the movement, or a shortened address when no name is known.
func (t TxLedger) DisplayAddress(side string) (string, error) {
	switch side {
	case "to":
		return displayName(t.ToAddressName, t.ToAddress), nil
	case "from":
		return displayName(t.FromAddressName, t.FromAddress), nil
	default:
		return "", fmt.Errorf("don't know how to display address %q: only 'from' and 'to' are supported", side)
	}
}

func displayName(name, address string) string {
	if name != "" {
		return name
	}
	if len(address) > 5 {
		address = address[:5]
	}
	return address + "..."
}

// IconURL is the path of the coin logo served by the frontend.
func (t TxLedger) IconURL() string {
	return fmt.Sprintf("/coin_logos/%s_%s.png", t.Chain, t.AssetTxID)
}

// TxLogical groups the ledger rows of one conceptual transaction.
type TxLogical struct {
	ID            ID            `json:"id"`
	Count         int           `json:"count"`
	Timestamp     int64         `json:"timestamp"`
	TxLogicalType TxLogicalType `json:"tx_logical_type"`
	Flags         []Flag        `json:"flags"`
	Description   string        `json:"description,omitempty"`
	Note          string        `json:"note,omitempty"`
	Address       string        `json:"address"`
	Ins           []TxLedger    `json:"ins"`
	Outs          []TxLedger    `json:"outs"`
	Fee           *TxLedger     `json:"fee,omitempty"`
	Others        []TxLedger    `json:"others"`
}

func (t TxLogical) RecordID() ID { return t.ID }

// HasFlag reports whether a flag with the given name is attached.
func (t TxLogical) HasFlag(name string) bool {
	for _, f := range t.Flags {
		if f.Name == name {
			return true
		}
	}
	return false
}

// DisplayTimestamp formats a unix timestamp in local time.
func DisplayTimestamp(ts int64) string {
	return time.Unix(ts, 0).Format(timestampLayout)
}

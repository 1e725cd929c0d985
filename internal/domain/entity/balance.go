package entity

import "github.com/shopspring/decimal"

// AssetBalance is a point-in-time balance of one asset at an address.
type AssetBalance struct {
	ID             ID               `json:"id"`
	Source         string           `json:"source"`
	Address        string           `json:"address"`
	Chain          string           `json:"chain"`
	Symbol         string           `json:"symbol"`
	ExposureSymbol string           `json:"exposure_symbol"`
	Amount         decimal.Decimal  `json:"amount"`
	Protocol       string           `json:"protocol,omitempty"`
	Label          string           `json:"label,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	USDValue       *decimal.Decimal `json:"usd_value,omitempty"`
	Updated        int64            `json:"updated,omitempty"`
	Type           string           `json:"type,omitempty"`
	Locked         *decimal.Decimal `json:"locked,omitempty"`
	Proxy          string           `json:"proxy,omitempty"`
	Extra          string           `json:"extra,omitempty"`
	Stable         int              `json:"stable,omitempty"`
}

func (b AssetBalance) RecordID() ID { return b.ID }

// Value returns the USD value of the balance, zero when unpriced.
func (b AssetBalance) Value() decimal.Decimal {
	if b.USDValue == nil {
		return decimal.Zero
	}
	return *b.USDValue
}

// TotalUSD sums the USD value of balances, unpriced rows counting as zero.
// The result keeps two decimals.
func TotalUSD(balances []AssetBalance) string {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Value())
	}
	return total.StringFixed(2)
}

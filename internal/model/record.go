// Package model defines the core domain models used throughout the application.
package model

import "github.com/shopspring/decimal"

// SellRecord is a single item from the vendor's sell inventory.
type SellRecord struct {
	ID          string // TCGplayer identifier
	ProductName string
	SetName     string
	Rarity      string
	MarketPrice decimal.Decimal
	Quantity    int
}

// BuyRecord is a single item from the counterparty's buy list.
type BuyRecord struct {
	ID       string // counterparty product identifier
	CardName string
	Edition  string
	Rarity   string
	Foil     bool
	Price    decimal.Decimal
	Quantity int
	ImageURL string
}

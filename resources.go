// FILE: resources.go
// Package main – Shared resource and market data types.
//
// This file declares the vocabulary the whole bot speaks:
//   • ResourceKind and the tradable resource set
//   • VillageState      – per-cycle snapshot of a village's stockpile
//   • StockSnapshot     – per-cycle snapshot of the premium exchange
//   • MarketOffer       – one parsed peer offer row
//   • TradeOptimizationResult – output of the merchant/lot grid search
//
// VillageState and StockSnapshot are ephemeral: they are re-extracted from
// the game every cycle and must never be cached across cycles.

package main

import "fmt"

// ResourceKind identifies one tracked resource. Population headroom is
// tracked like a resource but is never tradable.
type ResourceKind string

const (
	ResWood  ResourceKind = "wood"
	ResStone ResourceKind = "stone"
	ResIron  ResourceKind = "iron"
	ResPop   ResourceKind = "pop"
)

// TradableResources is every resource the two markets deal in.
var TradableResources = []ResourceKind{ResWood, ResStone, ResIron}

// merchantCarry is how many resource units one merchant moves per trip.
const merchantCarry = 1000

// VillageState is the per-cycle view of a village's stockpile, parsed from
// the game state blob on any village page.
type VillageState struct {
	Name       string `json:"name"`
	Wood       int    `json:"wood"`
	Stone      int    `json:"stone"`
	Iron       int    `json:"iron"`
	Pop        int    `json:"pop"`
	PopMax     int    `json:"pop_max"`
	StorageMax int    `json:"storage_max"`
}

// ExchangeTax holds the premium exchange tax rates.
type ExchangeTax struct {
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
}

// ExchangeConstants are the price-curve constants published by the exchange.
type ExchangeConstants struct {
	ResourceBasePrice       float64 `json:"resource_base_price"`
	ResourcePriceElasticity float64 `json:"resource_price_elasticity"`
	StockSizeModifier       float64 `json:"stock_size_modifier"`
}

// StockSnapshot is the premium exchange state for one decision cycle.
type StockSnapshot struct {
	Stock     map[ResourceKind]float64 `json:"stock"`
	Capacity  map[ResourceKind]float64 `json:"capacity"`
	Rates     map[ResourceKind]float64 `json:"rates"`
	Tax       ExchangeTax              `json:"tax"`
	Constants ExchangeConstants        `json:"constants"`
	Duration  int                      `json:"duration"`
	Merchants int                      `json:"merchants"`
}

// Validate rejects snapshots the price math cannot safely consume: missing
// tradable resource keys, negative stock/capacity, or a price-curve divisor
// of zero. The game occasionally serves truncated pages; failing here keeps
// a numeric fault out of the trading loop.
func (s *StockSnapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("nil snapshot")
	}
	for _, res := range TradableResources {
		stock, ok := s.Stock[res]
		if !ok {
			return fmt.Errorf("snapshot missing stock[%s]", res)
		}
		cap, capOK := s.Capacity[res]
		if !capOK {
			return fmt.Errorf("snapshot missing capacity[%s]", res)
		}
		if _, rateOK := s.Rates[res]; !rateOK {
			return fmt.Errorf("snapshot missing rates[%s]", res)
		}
		if stock < 0 || cap < 0 {
			return fmt.Errorf("snapshot has negative values for %s (stock=%.1f capacity=%.1f)", res, stock, cap)
		}
		if cap+s.Constants.StockSizeModifier <= 0 {
			return fmt.Errorf("snapshot price divisor <= 0 for %s (capacity=%.1f modifier=%.1f)", res, cap, s.Constants.StockSizeModifier)
		}
	}
	return nil
}

// MarketOffer is one parsed peer offer from the standard market listing.
type MarketOffer struct {
	ID           string
	Offered      ResourceKind
	OfferAmount  int
	Wanted       ResourceKind
	WantedAmount int
}

// TradeOptimizationResult is the chosen (merchants, lots) split for a
// premium sale. NToSell is the chosen lot count minus one: one lot is
// reserved and excluded from the sale, and the sell amount downstream is
// computed from NToSell directly.
type TradeOptimizationResult struct {
	Merchants int
	Ratio     float64
	NToSell   int
}

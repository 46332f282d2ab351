// FILE: exchange.go
// Package main – Premium exchange price model, rate solver and trade optimizer.
//
// The exchange prices resources on a published curve:
//   marginal_price(stock, capacity) = base - elasticity * stock / (capacity + modifier)
// so the more of a resource the exchange holds, the less it pays. Cost is a
// trapezoidal estimate of the proceeds of moving `amount` units across that
// curve, taxed at the sell rate.
//
// What's here:
//   • PremiumExchange: MarginalPrice / Cost over one StockSnapshot
//   • RateForOnePoint: largest integer amount whose cost fits in 1 point
//   • OptimizeMerchants: grid search for the least wasteful merchant split

package main

// PremiumExchange evaluates the price curve for one snapshot. It holds no
// state beyond the snapshot and performs no I/O.
type PremiumExchange struct {
	snap *StockSnapshot
}

func NewPremiumExchange(snap *StockSnapshot) *PremiumExchange {
	return &PremiumExchange{snap: snap}
}

// MarginalPrice is the instantaneous price of one unit at the given exchange
// stock level. Strictly decreasing in stock for a fixed capacity.
func (e *PremiumExchange) MarginalPrice(stock, capacity float64) float64 {
	c := e.snap.Constants
	return c.ResourceBasePrice - c.ResourcePriceElasticity*stock/(capacity+c.StockSizeModifier)
}

// Cost estimates the total proceeds (in premium points) of selling `amount`
// units of res. The buy tax is never applied: this bot only ever sells on
// the premium exchange, the buy path upstream is intentionally unused.
func (e *PremiumExchange) Cost(res ResourceKind, amount float64) float64 {
	stock := e.snap.Stock[res]
	capacity := e.snap.Capacity[res]
	return (1 + e.snap.Tax.Sell) * (e.MarginalPrice(stock, capacity) + e.MarginalPrice(stock-amount, capacity)) * amount / 2
}

// RateForOnePoint finds the largest integer amount of res whose cost does
// not exceed one premium point. Seeded from the inverse marginal price and
// refined by decrementing, capped at 50 steps; the cap means the returned
// rate is a best-effort estimate and callers must treat it as such.
func (e *PremiumExchange) RateForOnePoint(res ResourceKind) int {
	price := e.MarginalPrice(e.snap.Stock[res], e.snap.Capacity[res])
	if price <= 0 {
		// Exchange is saturated; nothing sells for a positive price.
		return 0
	}
	r := int(1 / price)
	cost := e.Cost(res, float64(r))
	for i := 0; cost > 1 && i < 50; i++ {
		r--
		cost = e.Cost(res, float64(r))
	}
	return r
}

// OptimizeMerchants picks how many merchants (1..merchants) and how many
// lots of sellPrice units to commit when selling `amount`, minimizing the
// fraction of carrying capacity left unused. Ties on that ratio prefer the
// larger merchant count. Candidates that over-allocate capacity (negative
// ratio) are discarded. Returns false when no candidate exists (no
// merchants, or a sell price below one unit).
//
// The reported NToSell is the winning lot count minus one; the reserved lot
// is load-bearing for the sell-amount computation downstream.
func OptimizeMerchants(amount, sellPrice, merchants, size int) (TradeOptimizationResult, bool) {
	if merchants < 1 || sellPrice < 1 || size < 1 {
		return TradeOptimizationResult{}, false
	}

	best := TradeOptimizationResult{}
	found := false
	for i := 1; i <= merchants; i++ {
		for j := 0; j <= amount/sellPrice; j++ {
			ratio := float64(size*i-j*sellPrice) / float64(size)
			if ratio < 0 {
				continue
			}
			if !found || ratio < best.Ratio || (ratio == best.Ratio && i > best.Merchants) {
				best = TradeOptimizationResult{Merchants: i, Ratio: ratio, NToSell: j - 1}
				found = true
			}
		}
	}
	return best, found
}

// FILE: premium.go
// Package main – Premium exchange sell cycle.
//
// Once per cycle the trader walks the tradable resources in fixed priority
// order (stone, wood, iron) and sells whatever sits above a shared baseline:
//   baseline = max(total held - merchants*1000, 0) / 3
// The snapshot is refreshed per resource, so the baseline can drift within a
// cycle; that drift is intentional and preserved.
//
// Each sale is a two-phase transaction: exchange_begin reserves a rate quote
// and returns a rate_hash, exchange_confirm commits the sale with it. A
// failed begin or confirm is logged and the loop moves on, never retries.
// A failed snapshot fetch/parse or a merchant shortage aborts the whole
// cycle, not just the current resource.

package main

import (
	"fmt"
	"log"
	"math"
	"net/url"
	"strconv"
	"time"
)

// premiumOrder is the fixed resource priority for premium sales.
var premiumOrder = []ResourceKind{ResStone, ResWood, ResIron}

// PremiumTrader sells excess resources on the premium exchange.
type PremiumTrader struct {
	villageID string
	cfg       *Config
	transport Transport
	extract   Extractor
	ledger    *ResourceLedger
	reporter  Reporter
	logger    *log.Logger

	// sleep paces consecutive confirmed sales; swapped out in tests.
	sleep func(time.Duration)
}

func NewPremiumTrader(villageID string, cfg *Config, transport Transport, extract Extractor, ledger *ResourceLedger, reporter Reporter) *PremiumTrader {
	return &PremiumTrader{
		villageID: villageID,
		cfg:       cfg,
		transport: transport,
		extract:   extract,
		ledger:    ledger,
		reporter:  reporter,
		logger:    log.New(log.Writer(), fmt.Sprintf("[premium %s] ", villageID), log.LstdFlags),
		sleep:     time.Sleep,
	}
}

// SellExcess runs one premium sell cycle over all tradable resources.
func (t *PremiumTrader) SellExcess() Outcome {
	if !t.cfg.PremiumEnabled {
		t.logger.Printf("premium trading not enabled")
		return Rejected("premium_disabled")
	}

	for _, res := range premiumOrder {
		snap, out := t.refreshSnapshot()
		if out.Kind != OutcomeOK {
			return out
		}
		if snap.Merchants < 1 {
			t.logger.Printf("no merchants available for premium trade")
			return Rejected("no_merchants")
		}

		// Fair-share baseline over the three tradable resources, bounded
		// below by zero. Recomputed against the refreshed merchant count.
		total := t.ledger.Actual(ResWood) + t.ledger.Actual(ResStone) + t.ledger.Actual(ResIron)
		baseline := max((total-snap.Merchants*merchantCarry)/3, 0)

		current := t.ledger.Actual(res)
		if current <= baseline {
			t.logger.Printf("%s not in excess (current=%d baseline=%d)", res, current, baseline)
			continue
		}
		excess := min(current-baseline, snap.Merchants*merchantCarry)

		exchange := NewPremiumExchange(snap)
		rate := exchange.RateForOnePoint(res)
		SetPremiumRate(string(res), rate)
		if rate < 1 {
			t.logger.Printf("solved rate for %s is %d, not sellable", res, rate)
			IncRejection("rate_too_low")
			continue
		}

		// Refuse to trade when the exchange's implied price sits too close
		// to our current holdings.
		if snap.Stock[res]*snap.Rates[res]*t.cfg.MarginFactor >= float64(current) {
			t.logger.Printf("not a good moment to trade %s", res)
			IncRejection("thin_margin")
			continue
		}

		opt, ok := OptimizeMerchants(excess, rate, snap.Merchants, merchantCarry)
		if !ok {
			IncRejection("no_split")
			continue
		}
		t.logger.Printf("optimized trade for %s: merchants=%d ratio=%.3f n_to_sell=%d", res, opt.Merchants, opt.Ratio, opt.NToSell)
		if opt.Ratio > t.cfg.MaxWasteRatio {
			t.logger.Printf("trade not worth it for %s (ratio %.3f too high)", res, opt.Ratio)
			IncRejection("ratio_too_high")
			continue
		}

		sellAmount := int(math.Floor(float64(opt.NToSell) * float64(rate)))
		if sellAmount < 1 {
			t.logger.Printf("calculated sell amount for %s is too low: %d", res, sellAmount)
			IncRejection("amount_negligible")
			continue
		}

		t.sellOnce(res, sellAmount)
	}

	return Done()
}

// refreshSnapshot fetches and validates the current exchange page.
func (t *PremiumTrader) refreshSnapshot() (*StockSnapshot, Outcome) {
	page := t.transport.FetchPage(marketURL(t.villageID, "exchange"))
	if page == "" {
		t.logger.Printf("error fetching premium exchange page")
		IncFailure("fetch")
		return nil, FetchFailed("exchange page")
	}
	snap := t.extract.PremiumData(page)
	if snap == nil {
		t.logger.Printf("error reading premium data")
		IncFailure("parse")
		return nil, ParseFailed("premium data")
	}
	if err := snap.Validate(); err != nil {
		t.logger.Printf("premium snapshot rejected: %v", err)
		IncFailure("parse")
		return nil, ParseFailed(err.Error())
	}
	return snap, Done()
}

// sellOnce runs the begin/confirm pair for one resource and, on success,
// debits the ledger and paces before the next resource.
func (t *PremiumTrader) sellOnce(res ResourceKind, sellAmount int) {
	t.logger.Printf("attempting trade of %d %s for premium points", sellAmount, res)

	params := url.Values{}
	params.Set("screen", "market")
	data := url.Values{}
	data.Set("sell_"+string(res), strconv.Itoa(sellAmount))

	begin := t.transport.SubmitAPIAction(t.villageID, "exchange_begin", params, data)
	rateHash := begin.RateHash()
	if rateHash == "" {
		t.logger.Printf("exchange begin for %s failed", res)
		IncPremiumTrade(string(res), "begin_failed")
		return
	}

	confirm := url.Values{}
	confirm.Set("sell_"+string(res), strconv.Itoa(sellAmount))
	confirm.Set("rate_hash", rateHash)
	confirm.Set("mb", "1")
	if t.transport.SubmitAPIAction(t.villageID, "exchange_confirm", params, confirm) == nil {
		t.logger.Printf("trade confirmation for %s failed", res)
		IncPremiumTrade(string(res), "confirm_failed")
		return
	}

	t.logger.Printf("trade for %s successful", res)
	t.ledger.Debit(res, sellAmount)
	IncPremiumTrade(string(res), "ok")
	t.reporter.Report(t.villageID, "TWB_PREMIUM", fmt.Sprintf("Sold %d %s on the premium exchange", sellAmount, res))
	t.sleep(t.cfg.PacingDelay())
}

package main

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

// exchangePage renders a snapshot the way the game serves it: as the JSON
// argument of a PremiumExchange.receiveData call.
func exchangePage(t *testing.T, snap *StockSnapshot) string {
	t.Helper()
	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	return fmt.Sprintf("<html><script>PremiumExchange.receiveData(%s);</script></html>", raw)
}

// flatRateSnapshot prices every resource at a flat 0.005/unit, which makes
// the solver land on 181 units per point (cost(r) = 0.0055*r).
func flatRateSnapshot(merchants int) *StockSnapshot {
	return &StockSnapshot{
		Stock:    map[ResourceKind]float64{ResWood: 1000, ResStone: 1000, ResIron: 1000},
		Capacity: map[ResourceKind]float64{ResWood: 10000, ResStone: 10000, ResIron: 10000},
		Rates:    map[ResourceKind]float64{ResWood: 1, ResStone: 1, ResIron: 1},
		Tax:      ExchangeTax{Buy: 0.03, Sell: 0.1},
		Constants: ExchangeConstants{
			ResourceBasePrice:       0.005,
			ResourcePriceElasticity: 0,
			StockSizeModifier:       1,
		},
		Duration:  120,
		Merchants: merchants,
	}
}

func premiumFixture(t *testing.T, snap *StockSnapshot, state VillageState) (*PremiumTrader, *ResourceLedger, *PaperTransport) {
	t.Helper()
	cfg := loadConfigFromEnv()
	cfg.PremiumEnabled = true
	cfg.PacingDelayMs = 0

	ledger := NewResourceLedger("1", cfg.StorageRatio)
	ledger.Update(state)
	transport := NewPaperTransport()
	if snap != nil {
		transport.SetPage(marketURL("1", "exchange"), exchangePage(t, snap))
	}
	trader := NewPremiumTrader("1", &cfg, transport, RegexExtractor{}, ledger, LogReporter{})
	trader.sleep = func(time.Duration) {}
	return trader, ledger, transport
}

func TestPremiumDisabled(t *testing.T) {
	trader, _, transport := premiumFixture(t, flatRateSnapshot(2), VillageState{Stone: 6000, PopMax: 100})
	trader.cfg.PremiumEnabled = false

	if out := trader.SellExcess(); out.Kind != OutcomeRejected {
		t.Fatalf("outcome = %s, want rejected", out)
	}
	if len(transport.Calls) != 0 {
		t.Fatal("disabled trading must not touch the exchange")
	}
}

func TestPremiumAbortsOnFetchFailure(t *testing.T) {
	trader, _, _ := premiumFixture(t, nil, VillageState{Stone: 6000, PopMax: 100})
	if out := trader.SellExcess(); out.Kind != OutcomeFetchFailed {
		t.Fatalf("outcome = %s, want fetch_failed", out)
	}
}

func TestPremiumAbortsOnParseFailure(t *testing.T) {
	trader, _, transport := premiumFixture(t, nil, VillageState{Stone: 6000, PopMax: 100})
	transport.SetPage(marketURL("1", "exchange"), "<html>maintenance</html>")
	if out := trader.SellExcess(); out.Kind != OutcomeParseFailed {
		t.Fatalf("outcome = %s, want parse_failed", out)
	}
}

func TestPremiumAbortsWithoutMerchants(t *testing.T) {
	trader, _, transport := premiumFixture(t, flatRateSnapshot(0), VillageState{Stone: 6000, PopMax: 100})
	out := trader.SellExcess()
	if out.Kind != OutcomeRejected || out.Reason != "no_merchants" {
		t.Fatalf("outcome = %s, want rejected (no_merchants)", out)
	}
	if len(transport.Calls) != 0 {
		t.Fatal("merchant shortage must abort before any exchange action")
	}
}

func TestPremiumSellsExcessTwoPhase(t *testing.T) {
	// 6000 stone, 2 merchants: baseline (6000-2000)/3 = 1333, excess capped
	// at 2000. Rate 181 -> split {2 merchants, 11 lots}, sell 10*181 = 1810.
	trader, ledger, transport := premiumFixture(t, flatRateSnapshot(2), VillageState{Stone: 6000, PopMax: 100})

	if out := trader.SellExcess(); out.Kind != OutcomeOK {
		t.Fatalf("outcome = %s, want ok", out)
	}
	if len(transport.Calls) != 2 {
		t.Fatalf("expected begin+confirm, got %d calls", len(transport.Calls))
	}

	begin, confirm := transport.Calls[0], transport.Calls[1]
	if begin.Action != "exchange_begin" || confirm.Action != "exchange_confirm" {
		t.Fatalf("calls = %s, %s", begin.Action, confirm.Action)
	}
	if got := begin.Data.Get("sell_stone"); got != "1810" {
		t.Fatalf("begin sell_stone = %s, want 1810", got)
	}
	if confirm.Data.Get("rate_hash") == "" || confirm.Data.Get("mb") != "1" {
		t.Fatalf("confirm payload incomplete: %v", confirm.Data)
	}
	if got := ledger.Actual(ResStone); got != 4190 {
		t.Fatalf("Actual(stone) = %d, want 4190 after the sale", got)
	}
}

func TestPremiumSkipsResourcesBelowBaseline(t *testing.T) {
	// An empty stockpile sits exactly at the zero baseline; nothing is in
	// excess and nothing is attempted.
	trader, _, transport := premiumFixture(t, flatRateSnapshot(2), VillageState{PopMax: 100})
	if out := trader.SellExcess(); out.Kind != OutcomeOK {
		t.Fatalf("outcome = %s, want ok", out)
	}
	if len(transport.Calls) != 0 {
		t.Fatal("nothing above baseline, no exchange actions expected")
	}
}

func TestPremiumThinMarginGuard(t *testing.T) {
	snap := flatRateSnapshot(2)
	snap.Rates[ResStone] = 10 // implied price 1000*10*1.1 = 11000 >= 6000
	trader, ledger, transport := premiumFixture(t, snap, VillageState{Stone: 6000, PopMax: 100})

	if out := trader.SellExcess(); out.Kind != OutcomeOK {
		t.Fatalf("outcome = %s, want ok", out)
	}
	if len(transport.Calls) != 0 {
		t.Fatal("thin margin must skip the resource")
	}
	if ledger.Actual(ResStone) != 6000 {
		t.Fatal("no sale must mean no debit")
	}
}

func TestPremiumRejectsWastefulSplit(t *testing.T) {
	// One merchant and a small excess: the best split still idles most of
	// the carrying capacity (ratio 0.638 > 0.4).
	trader, _, transport := premiumFixture(t, flatRateSnapshot(1), VillageState{Stone: 1500, Wood: 1300, Iron: 1300, PopMax: 100})
	if out := trader.SellExcess(); out.Kind != OutcomeOK {
		t.Fatalf("outcome = %s, want ok", out)
	}
	if len(transport.Calls) != 0 {
		t.Fatal("wasteful splits must not reach the exchange")
	}
}

func TestPremiumBeginFailureMovesOn(t *testing.T) {
	trader, ledger, transport := premiumFixture(t, flatRateSnapshot(2), VillageState{Stone: 6000, PopMax: 100})
	transport.FailAction("exchange_begin")

	if out := trader.SellExcess(); out.Kind != OutcomeOK {
		t.Fatalf("outcome = %s, want ok (failure is per-resource, not fatal)", out)
	}
	if ledger.Actual(ResStone) != 6000 {
		t.Fatal("failed begin must not debit the ledger")
	}
	for _, call := range transport.Calls {
		if call.Action == "exchange_confirm" {
			t.Fatal("confirm must not run after a failed begin")
		}
	}
}

func TestPremiumConfirmFailureMovesOn(t *testing.T) {
	trader, ledger, transport := premiumFixture(t, flatRateSnapshot(2), VillageState{Stone: 6000, PopMax: 100})
	transport.FailAction("exchange_confirm")

	if out := trader.SellExcess(); out.Kind != OutcomeOK {
		t.Fatalf("outcome = %s, want ok", out)
	}
	if ledger.Actual(ResStone) != 6000 {
		t.Fatal("failed confirm must not debit the ledger")
	}
}

package main

import (
	"testing"
	"time"
)

// stubExtractor serves fixed structured data regardless of markup.
type stubExtractor struct {
	snap      *StockSnapshot
	state     *VillageState
	offers    []MarketOffer
	incoming  map[ResourceKind]int
	own       []string
	merchants int
}

func (s *stubExtractor) PremiumData(string) *StockSnapshot            { return s.snap }
func (s *stubExtractor) GameState(string) *VillageState               { return s.state }
func (s *stubExtractor) OfferRows(string) []MarketOffer               { return s.offers }
func (s *stubExtractor) IncomingShipment(string) map[ResourceKind]int { return s.incoming }
func (s *stubExtractor) OwnOffers(string, string) []string            { return s.own }
func (s *stubExtractor) MerchantsAvailable(string) int                { return s.merchants }

func noonClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 1, 5, 12, 0, 0, 0, time.Local)
	}
}

// marketFixture: 9000 wood surplus (storage 2000, threshold 800) and an
// outstanding iron need registered by the caller.
func marketFixture(t *testing.T, extract *stubExtractor) (*MarketManager, *ResourceLedger, *PaperTransport) {
	t.Helper()
	cfg := loadConfigFromEnv()

	ledger := NewResourceLedger("1", cfg.StorageRatio)
	ledger.Update(VillageState{Wood: 9000, StorageMax: 2000, PopMax: 100})
	transport := NewPaperTransport()
	transport.SetPage(marketURL("1", "other_offer"), "listing")
	transport.SetPage(marketURL("1", "own_offer"), "own")
	transport.SetPage(marketURL("1", "all_own_offer"), "all")
	if extract.incoming == nil {
		extract.incoming = map[ResourceKind]int{}
	}
	if extract.merchants == 0 {
		extract.merchants = 3
	}

	m := NewMarketManager("1", &cfg, transport, extract, ledger, LogReporter{})
	m.now = noonClock()
	return m, ledger, transport
}

func TestMarketCooldownGate(t *testing.T) {
	m, ledger, _ := marketFixture(t, &stubExtractor{})
	ledger.Request("building", ResIron, 400)
	m.lastTrade = m.now().Add(-30 * time.Minute) // within the 1h cooldown

	out := m.Manage(false)
	if out.Kind != OutcomeRejected || out.Reason != "cooldown" {
		t.Fatalf("outcome = %s, want rejected (cooldown)", out)
	}
}

func TestMarketBlackoutWindow(t *testing.T) {
	for _, hour := range []int{0, 3, 5, 23} {
		m, ledger, _ := marketFixture(t, &stubExtractor{})
		ledger.Request("building", ResIron, 400)
		m.now = func() time.Time {
			return time.Date(2026, 1, 5, hour, 30, 0, 0, time.Local)
		}
		out := m.Manage(false)
		if out.Kind != OutcomeRejected || out.Reason != "blackout" {
			t.Fatalf("hour %d: outcome = %s, want rejected (blackout)", hour, out)
		}
	}

	// 06:00 is outside the window.
	m, _, _ := marketFixture(t, &stubExtractor{})
	m.now = func() time.Time {
		return time.Date(2026, 1, 5, 6, 0, 0, 0, time.Local)
	}
	if out := m.Manage(false); out.Reason == "blackout" {
		t.Fatalf("06:00 must not be in the blackout window, got %s", out)
	}
}

func TestMarketCreatesOfferForNeed(t *testing.T) {
	m, ledger, transport := marketFixture(t, &stubExtractor{})
	ledger.Request("building", ResIron, 400)

	if out := m.Manage(false); out.Kind != OutcomeOK {
		t.Fatalf("outcome = %s, want ok", out)
	}
	if len(transport.Forms) != 1 {
		t.Fatalf("expected one new-offer form, got %d", len(transport.Forms))
	}
	form := transport.Forms[0].Form
	if form.Get("res_sell") != "wood" || form.Get("sell") != "400" ||
		form.Get("res_buy") != "iron" || form.Get("buy") != "400" {
		t.Fatalf("offer form wrong: %v", form)
	}
	if form.Get("max_time") != "2" || form.Get("multi") != "1" || form.Get("h") == "" {
		t.Fatalf("offer form missing constants: %v", form)
	}

	// The trade stamps the cooldown: a second pass is gated.
	if out := m.Manage(false); out.Reason != "cooldown" {
		t.Fatalf("second pass = %s, want cooldown", out)
	}
}

func TestMarketNeedRoundedDownAndFloored(t *testing.T) {
	m, ledger, transport := marketFixture(t, &stubExtractor{})
	ledger.Request("building", ResIron, 257) // rounds down to 250... just over the floor

	if out := m.Manage(false); out.Kind != OutcomeOK {
		t.Fatalf("outcome = %s, want ok", out)
	}
	if got := transport.Forms[0].Form.Get("buy"); got != "250" {
		t.Fatalf("buy = %s, want 250 (rounded down to nearest 10)", got)
	}

	m2, ledger2, _ := marketFixture(t, &stubExtractor{})
	ledger2.Request("building", ResIron, 249) // rounds down to 240, below the floor
	if out := m2.Manage(false); out.Reason != "below_minimum" {
		t.Fatalf("outcome = %s, want rejected (below_minimum)", out)
	}
}

func TestMarketSkipsWhenShipmentCoversNeed(t *testing.T) {
	m, ledger, transport := marketFixture(t, &stubExtractor{incoming: map[ResourceKind]int{ResIron: 500}})
	ledger.Request("building", ResIron, 400)

	if out := m.Manage(false); out.Reason != "already_incoming" {
		t.Fatalf("outcome = %s, want rejected (already_incoming)", out)
	}
	if len(transport.Forms) != 0 {
		t.Fatal("covered need must not produce an offer")
	}
}

func TestMarketTriesExistingOffersFirst(t *testing.T) {
	extract := &stubExtractor{offers: []MarketOffer{
		{ID: "77", Offered: ResIron, OfferAmount: 500, Wanted: ResWood, WantedAmount: 300},
	}}
	m, ledger, transport := marketFixture(t, extract)
	ledger.Request("building", ResIron, 400)

	if out := m.Manage(false); out.Kind != OutcomeOK {
		t.Fatalf("outcome = %s, want ok", out)
	}
	if len(transport.Forms) != 1 {
		t.Fatalf("expected only the accept form, got %d", len(transport.Forms))
	}
	if transport.Forms[0].Form.Get("id") != "77" {
		t.Fatalf("expected offer 77 accepted, got %v", transport.Forms[0].Form)
	}
	// Accepting stamps the cooldown too.
	if out := m.Manage(false); out.Reason != "cooldown" {
		t.Fatalf("second pass = %s, want cooldown", out)
	}
}

func TestMarketCapsTradeAmount(t *testing.T) {
	m, ledger, transport := marketFixture(t, &stubExtractor{})
	ledger.Request("building", ResIron, 5000)

	if out := m.Manage(false); out.Kind != OutcomeOK {
		t.Fatalf("outcome = %s, want ok", out)
	}
	if got := transport.Forms[0].Form.Get("buy"); got != "4000" {
		t.Fatalf("buy = %s, want capped 4000", got)
	}
}

func TestMarketInsufficientSurplus(t *testing.T) {
	m, ledger, transport := marketFixture(t, &stubExtractor{})
	m.cfg.TradeBias = 30 // would offer 12000 wood against 9000 held
	ledger.Request("building", ResIron, 400)

	if out := m.Manage(false); out.Reason != "insufficient_surplus" {
		t.Fatalf("outcome = %s, want rejected (insufficient_surplus)", out)
	}
	if len(transport.Forms) != 0 {
		t.Fatal("no offer must be created without the surplus to back it")
	}
}

func TestMarketNoMerchantsForNewOffer(t *testing.T) {
	m, ledger, transport := marketFixture(t, &stubExtractor{merchants: -1})
	ledger.Request("building", ResIron, 400)

	if out := m.Manage(false); out.Reason != "no_merchants" {
		t.Fatalf("outcome = %s, want rejected (no_merchants)", out)
	}
	if len(transport.Forms) != 0 {
		t.Fatal("no offer form expected without merchants")
	}
}

func TestMarketDropsOwnOffers(t *testing.T) {
	m, ledger, transport := marketFixture(t, &stubExtractor{own: []string{"11", "22"}})
	ledger.Request("building", ResIron, 400)

	if out := m.Manage(true); out.Kind != OutcomeOK {
		t.Fatalf("outcome = %s, want ok", out)
	}
	// Two delete posts, then the new offer.
	if len(transport.Forms) != 3 {
		t.Fatalf("expected 2 deletes + 1 offer, got %d forms", len(transport.Forms))
	}
	if transport.Forms[0].Form.Get("id_11") != "on" || transport.Forms[1].Form.Get("id_22") != "on" {
		t.Fatalf("delete forms wrong: %v, %v", transport.Forms[0].Form, transport.Forms[1].Form)
	}
}

func TestMarketNoSurplusNoAction(t *testing.T) {
	extract := &stubExtractor{merchants: 3, incoming: map[ResourceKind]int{}}
	cfg := loadConfigFromEnv()
	ledger := NewResourceLedger("1", cfg.StorageRatio)
	ledger.Update(VillageState{Wood: 500, StorageMax: 2000, PopMax: 100})
	transport := NewPaperTransport()
	m := NewMarketManager("1", &cfg, transport, extract, ledger, LogReporter{})
	m.now = noonClock()
	ledger.Request("building", ResIron, 400)

	if out := m.Manage(false); out.Reason != "no_surplus" {
		t.Fatalf("outcome = %s, want rejected (no_surplus)", out)
	}
}

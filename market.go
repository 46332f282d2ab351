// FILE: market.go
// Package main – Standard (peer-to-peer) market management.
//
// One pass per cycle, gated by a cooldown and a nightly blackout window:
//   1) optionally clear every outstanding own offer for the village
//   2) find a surplus resource and the most urgent need
//   3) skip when a shipment already covers the need or it is too small to
//      bother with
//   4) try to take an existing peer offer first (MarketNegotiator)
//   5) only then create a new offer, capped and bias-adjusted
//
// Successful trades (taken or created) stamp the cooldown timer.

package main

import (
	"fmt"
	"log"
	"net/url"
	"strconv"
	"time"
)

// MarketManager drives the standard market for one village.
type MarketManager struct {
	villageID  string
	cfg        *Config
	transport  Transport
	extract    Extractor
	ledger     *ResourceLedger
	negotiator *MarketNegotiator
	reporter   Reporter
	logger     *log.Logger

	lastTrade time.Time
	now       func() time.Time
}

func NewMarketManager(villageID string, cfg *Config, transport Transport, extract Extractor, ledger *ResourceLedger, reporter Reporter) *MarketManager {
	return &MarketManager{
		villageID:  villageID,
		cfg:        cfg,
		transport:  transport,
		extract:    extract,
		ledger:     ledger,
		negotiator: NewMarketNegotiator(villageID, ledger, transport),
		reporter:   reporter,
		logger:     log.New(log.Writer(), fmt.Sprintf("[market %s] ", villageID), log.LstdFlags),
		now:        time.Now,
	}
}

// Manage runs one standard-market pass. dropExisting clears all of the
// village's own outstanding offers first (all-or-nothing, no selective
// cleanup).
func (m *MarketManager) Manage(dropExisting bool) Outcome {
	next := m.lastTrade.Add(time.Duration(float64(time.Hour) * m.cfg.TradeMaxPerHour))
	if wait := next.Sub(m.now()); wait > 0 {
		m.logger.Printf("won't trade for %s", readableDuration(wait))
		return Rejected("cooldown")
	}

	if hour := m.now().Hour(); hour < 6 || hour == 23 {
		m.logger.Printf("not managing trades between 23h-6h")
		return Rejected("blackout")
	}

	if dropExisting {
		m.dropOwnOffers()
	}

	plenty, ok := m.ledger.PlentyOf()
	if !ok {
		return Rejected("no_surplus")
	}
	if m.ledger.InNeedOf(plenty) {
		return Rejected("surplus_in_demand")
	}

	need, amount, ok := m.ledger.Needs()
	if !ok {
		return Rejected("no_needs")
	}

	page := m.transport.FetchPage(marketURL(m.villageID, "other_offer"))
	if page == "" {
		IncFailure("fetch")
		return FetchFailed("offer listing")
	}
	incoming := m.extract.IncomingShipment(page)
	if len(incoming) > 0 {
		m.logger.Printf("there are resources incoming: %v", incoming)
	}

	amount -= amount % 10
	if incoming[need] >= amount {
		m.logger.Printf("needed %s already incoming (%d >= %d)", need, incoming[need], amount)
		return Rejected("already_incoming")
	}
	if amount < m.cfg.MinTradeAmount {
		return Rejected("below_minimum")
	}

	m.logger.Printf("checking current market offers")
	if m.negotiator.TakeMatchingOffer(m.extract.OfferRows(page), incoming, need, amount, plenty) {
		m.logger.Printf("took market offer")
		m.lastTrade = m.now()
		return Done()
	}

	if amount > m.cfg.MaxTradeAmount {
		m.logger.Printf("lowering trade amount of %d to %d because of limitation", amount, m.cfg.MaxTradeAmount)
		amount = m.cfg.MaxTradeAmount
	}
	biased := int(float64(amount) * m.cfg.TradeBias)
	if m.ledger.Actual(plenty) < biased {
		m.logger.Printf("cannot trade because insufficient %s", plenty)
		return Rejected("insufficient_surplus")
	}

	return m.createOffer(plenty, biased, need, amount)
}

// createOffer posts a new peer offer: give `sellAmount` of `sell`, ask
// `buyAmount` of `buy`.
func (m *MarketManager) createOffer(sell ResourceKind, sellAmount int, buy ResourceKind, buyAmount int) Outcome {
	page := m.transport.FetchPage(marketURL(m.villageID, "own_offer"))
	if page == "" {
		IncFailure("fetch")
		return FetchFailed("own offer page")
	}
	if m.extract.MerchantsAvailable(page) < 1 {
		m.logger.Printf("not trading because no merchants available")
		return Rejected("no_merchants")
	}

	m.logger.Printf("adding market trade of %d %s -> %d %s", buyAmount, buy, sellAmount, sell)
	m.reporter.Report(m.villageID, "TWB_MARKET",
		fmt.Sprintf("Adding market trade of %d %s -> %d %s", buyAmount, buy, sellAmount, sell))

	form := url.Values{}
	form.Set("res_sell", string(sell))
	form.Set("sell", strconv.Itoa(sellAmount))
	form.Set("res_buy", string(buy))
	form.Set("buy", strconv.Itoa(buyAmount))
	form.Set("max_time", strconv.Itoa(m.cfg.OfferMaxHours))
	form.Set("multi", "1")
	form.Set("h", m.transport.FormToken())

	postURL := fmt.Sprintf("game.php?village=%s&screen=market&mode=own_offer&action=new_offer", m.villageID)
	if res := m.transport.SubmitForm(postURL, form); res == "" {
		IncFailure("fetch")
		return FetchFailed("new offer post")
	}

	m.lastTrade = m.now()
	IncOffer("created")
	return Done()
}

// dropOwnOffers removes every outstanding offer this village has listed.
func (m *MarketManager) dropOwnOffers() {
	page := m.transport.FetchPage(marketURL(m.villageID, "all_own_offer"))
	if page == "" {
		IncFailure("fetch")
		return
	}
	for _, offerID := range m.extract.OwnOffers(page, m.villageID) {
		form := url.Values{}
		form.Set("id_"+offerID, "on")
		form.Set("delete", "Delete")
		form.Set("h", m.transport.FormToken())
		postURL := fmt.Sprintf("game.php?village=%s&screen=market&mode=all_own_offer&action=delete_offers", m.villageID)
		m.transport.SubmitForm(postURL, form)
		m.logger.Printf("removing offer %s from market because it existed too long", offerID)
		IncOffer("dropped")
	}
}

// readableDuration renders a wait as h:mm:ss for log lines.
func readableDuration(d time.Duration) string {
	seconds := int(d.Seconds()) % (24 * 3600)
	hour := seconds / 3600
	seconds %= 3600
	return fmt.Sprintf("%d:%02d:%02d", hour, seconds/60, seconds%60)
}

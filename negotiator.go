// FILE: negotiator.go
// Package main – First-match scan of existing peer offers.
//
// Before the bot creates a peer offer of its own it checks whether someone
// already offers what it needs at a price it can pay. The scan is
// order-sensitive on purpose: offers are evaluated in listing order and the
// first acceptable one wins, which keeps behavior reproducible across runs.
//
// This component never creates offers; that is MarketManager's job.

package main

import (
	"fmt"
	"log"
	"net/url"
)

// MarketNegotiator accepts existing peer offers that satisfy a need.
type MarketNegotiator struct {
	villageID string
	ledger    *ResourceLedger
	transport Transport
	logger    *log.Logger
}

func NewMarketNegotiator(villageID string, ledger *ResourceLedger, transport Transport) *MarketNegotiator {
	return &MarketNegotiator{
		villageID: villageID,
		ledger:    ledger,
		transport: transport,
		logger:    log.New(log.Writer(), fmt.Sprintf("[negotiator %s] ", villageID), log.LstdFlags),
	}
}

// TakeMatchingOffer scans offers in listing order for one that delivers at
// least `amount` of `want` in exchange for no more of `give` than the
// village can spare (actual holdings minus its own outstanding demand for
// `give`). Resources already in transit reduce the required amount first;
// if they cover it, no offer is taken.
//
// On acceptance the ledger is debited optimistically for the given
// resource; reconciliation happens on the next cycle's update.
func (n *MarketNegotiator) TakeMatchingOffer(offers []MarketOffer, incoming map[ResourceKind]int, want ResourceKind, amount int, give ResourceKind) bool {
	if transit := incoming[want]; transit > 0 {
		amount -= transit
		if amount < 1 {
			n.logger.Printf("requested %s already incoming (%d in transit)", want, transit)
			return false
		}
	}

	willingToSell := n.ledger.Actual(give) - n.ledger.NeedAmount(give)
	n.logger.Printf("found %d offers on market, willing to sell %d %s", len(offers), willingToSell, give)

	for _, offer := range offers {
		if offer.Offered != want ||
			offer.OfferAmount < amount ||
			offer.Wanted != give ||
			offer.WantedAmount > willingToSell {
			continue
		}

		n.logger.Printf("good offer: %d %s for %d %s", offer.OfferAmount, offer.Offered, offer.WantedAmount, offer.Wanted)
		form := url.Values{}
		form.Set("count", "1")
		form.Set("id", offer.ID)
		form.Set("h", n.transport.FormToken())
		acceptURL := fmt.Sprintf("game.php?village=%s&screen=market&mode=other_offer&action=accept_multi&start=0&id=%s&h=%s",
			n.villageID, offer.ID, n.transport.FormToken())
		if res := n.transport.SubmitForm(acceptURL, form); res == "" {
			n.logger.Printf("accept response for offer %s was empty", offer.ID)
		}

		// Optimistic: assume the accept went through and reconcile on the
		// next cycle's ledger update.
		n.ledger.Debit(offer.Wanted, offer.WantedAmount)
		IncOffer("accepted")
		return true
	}

	return false
}

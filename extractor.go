// FILE: extractor.go
// Package main – Regex/JSON extraction of game pages into structured records.
//
// The game embeds machine-readable state in its pages: the premium exchange
// publishes its full state as a PremiumExchange.receiveData(...) call, every
// page carries a TribalWars.updateGameData(...) blob, and market listings
// are plain HTML rows. This file turns those into the records the decision
// core consumes. Parse failures return nil/empty, never errors; the
// orchestrators treat them as ParseFailed outcomes.

package main

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var (
	rePremiumData  = regexp.MustCompile(`(?s)PremiumExchange\.receiveData\(\s*(\{.*?\})\s*\);`)
	reGameData     = regexp.MustCompile(`(?s)TribalWars\.updateGameData\(\s*(\{.*?\})\s*\);`)
	reOfferRow     = regexp.MustCompile(`(?s)<!-- insert the offer -->\s*<tr>(.*?)</tr>`)
	reOfferRes     = regexp.MustCompile(`(?s)<span class="icon header (.+?)".*?>(.*?)</td>`)
	reOfferID      = regexp.MustCompile(`<input type="hidden" name="id" value="(\d+)`)
	reIncoming     = regexp.MustCompile(`Aankomend:\s*.*?"icon header (.+?)".*?</span>([^<]+)`)
	reOwnOffer     = regexp.MustCompile(`(?s)data-id="(\d+)".+?data-village="(\d+)"`)
	reMerchantFree = regexp.MustCompile(`market_merchant_available_count">(\d+)<`)
)

// RegexExtractor is the production Extractor over raw game markup.
type RegexExtractor struct{}

// PremiumData parses the exchange state blob from the premium market page.
func (RegexExtractor) PremiumData(markup string) *StockSnapshot {
	m := rePremiumData.FindStringSubmatch(markup)
	if m == nil {
		return nil
	}
	var snap StockSnapshot
	if err := json.Unmarshal([]byte(m[1]), &snap); err != nil {
		return nil
	}
	return &snap
}

// GameState parses the per-page village state blob.
func (RegexExtractor) GameState(markup string) *VillageState {
	m := reGameData.FindStringSubmatch(markup)
	if m == nil {
		return nil
	}
	// Resource counts come over the wire as floats mid-production.
	var blob struct {
		Village struct {
			Name       string  `json:"name"`
			Wood       float64 `json:"wood"`
			Stone      float64 `json:"stone"`
			Iron       float64 `json:"iron"`
			Pop        float64 `json:"pop"`
			PopMax     float64 `json:"pop_max"`
			StorageMax float64 `json:"storage_max"`
		} `json:"village"`
	}
	if err := json.Unmarshal([]byte(m[1]), &blob); err != nil {
		return nil
	}
	return &VillageState{
		Name:       blob.Village.Name,
		Wood:       int(blob.Village.Wood),
		Stone:      int(blob.Village.Stone),
		Iron:       int(blob.Village.Iron),
		Pop:        int(blob.Village.Pop),
		PopMax:     int(blob.Village.PopMax),
		StorageMax: int(blob.Village.StorageMax),
	}
}

// OfferRows parses the peer offer listing in page order. Rows without a
// hidden offer id (not enough resources to take them) are skipped.
func (RegexExtractor) OfferRows(markup string) []MarketOffer {
	var offers []MarketOffer
	for _, row := range reOfferRow.FindAllStringSubmatch(markup, -1) {
		ids := reOfferID.FindStringSubmatch(row[1])
		if ids == nil {
			continue
		}
		res := reOfferRes.FindAllStringSubmatch(row[1], -1)
		if len(res) < 2 {
			continue
		}
		offers = append(offers, MarketOffer{
			ID:           ids[1],
			Offered:      ResourceKind(strings.TrimSpace(res[0][1])),
			OfferAmount:  digitsOnly(res[0][2]),
			Wanted:       ResourceKind(strings.TrimSpace(res[1][1])),
			WantedAmount: digitsOnly(res[1][2]),
		})
	}
	return offers
}

// IncomingShipment parses the "resources in transit" banner; best effort,
// absent banner means nothing incoming.
func (RegexExtractor) IncomingShipment(markup string) map[ResourceKind]int {
	incoming := make(map[ResourceKind]int)
	m := reIncoming.FindStringSubmatch(markup)
	if m != nil {
		incoming[ResourceKind(strings.TrimSpace(m[1]))] = digitsOnly(m[2])
	}
	return incoming
}

// OwnOffers returns the ids of every listed offer belonging to villageID.
func (RegexExtractor) OwnOffers(markup, villageID string) []string {
	var ids []string
	for _, m := range reOwnOffer.FindAllStringSubmatch(markup, -1) {
		if m[2] == villageID {
			ids = append(ids, m[1])
		}
	}
	return ids
}

// MerchantsAvailable reads the free merchant counter from a market page.
func (RegexExtractor) MerchantsAvailable(markup string) int {
	m := reMerchantFree.FindStringSubmatch(markup)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// digitsOnly collapses a formatted amount ("2.500&nbsp;") to its digits.
func digitsOnly(s string) int {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}

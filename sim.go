// FILE: sim.go
// Package main – Offline replay of recorded cycles through the engine.
//
// Feed a JSON file of recorded cycles through a full decision pass on the
// paper transport: no network, no side effects outside the process, but the
// exact production decision path (ledger update, premium pass, market
// pass). Useful for tuning thresholds against history.
//
// File format: a JSON array of cycles, e.g.
//   [{"village": {...game state...},
//     "premium": {...exchange snapshot...},
//     "offers": [...], "incoming": {"iron": 500},
//     "requests": [{"source": "building", "resource": "iron", "amount": 400}]}]
//
// Time-of-day and cooldown gates still apply; replays run on the wall clock.

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
)

type simRequest struct {
	Source   string       `json:"source"`
	Resource ResourceKind `json:"resource"`
	Amount   int          `json:"amount"`
}

type simCycle struct {
	Village  VillageState         `json:"village"`
	Premium  *StockSnapshot       `json:"premium,omitempty"`
	Offers   []MarketOffer        `json:"offers,omitempty"`
	Incoming map[ResourceKind]int `json:"incoming,omitempty"`
	Requests []simRequest         `json:"requests,omitempty"`
}

// simExtractor serves the current cycle's recorded data, ignoring markup.
type simExtractor struct {
	cycle *simCycle
	state *VillageState
}

func (s *simExtractor) PremiumData(string) *StockSnapshot { return s.cycle.Premium }
func (s *simExtractor) GameState(string) *VillageState    { return s.state }
func (s *simExtractor) OfferRows(string) []MarketOffer    { return s.cycle.Offers }
func (s *simExtractor) IncomingShipment(string) map[ResourceKind]int {
	if s.cycle.Incoming == nil {
		return map[ResourceKind]int{}
	}
	return s.cycle.Incoming
}
func (s *simExtractor) OwnOffers(string, string) []string { return nil }
func (s *simExtractor) MerchantsAvailable(string) int {
	if s.cycle.Premium != nil {
		return s.cycle.Premium.Merchants
	}
	return 1
}

// runSim replays all recorded cycles for one synthetic village.
func runSim(path string, cfg Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read sim file: %w", err)
	}
	var cycles []simCycle
	if err := json.Unmarshal(raw, &cycles); err != nil {
		return fmt.Errorf("parse sim file: %w", err)
	}
	if len(cycles) == 0 {
		return fmt.Errorf("sim file %s holds no cycles", path)
	}

	cfg.PacingDelayMs = 0
	transport := NewPaperTransport()
	extract := &simExtractor{}
	villageID := cfg.VillageID
	if villageID == "" {
		villageID = "sim"
	}
	agent := NewVillageAgent(VillageConfig{ID: villageID}, cfg, transport, extract, LogReporter{})

	// Non-empty pages so fetches succeed; the extractor ignores the markup.
	for _, mode := range []string{"exchange", "other_offer", "own_offer", "all_own_offer"} {
		transport.SetPage(marketURL(villageID, mode), "recorded")
	}
	transport.SetPage(overviewURL(villageID), "recorded")

	for i := range cycles {
		cycle := &cycles[i]
		extract.cycle = cycle
		extract.state = &cycle.Village
		for _, req := range cycle.Requests {
			agent.Ledger().Request(req.Source, req.Resource, req.Amount)
		}
		out := agent.RunCycle()
		log.Printf("[sim] cycle %d/%d: %s", i+1, len(cycles), out)
	}

	log.Printf("[sim] done: %d cycles, %d forms posted, %d api calls", len(cycles), len(transport.Forms), len(transport.Calls))
	return nil
}

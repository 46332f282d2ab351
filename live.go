// FILE: live.go
// Package main – Per-village agent and the live cycle loop.
//
// A VillageAgent bundles everything one village needs: its ledger, premium
// trader and market manager, all talking through the shared transport. One
// cycle is strictly sequential:
//   fetch game state → ledger update → premium sell pass → market pass
// Villages are also cycled sequentially; there is never more than one
// outstanding trade action at a time.

package main

import (
	"context"
	"fmt"
	"log"
	"time"
)

// VillageAgent drives the economic decisions for a single village.
type VillageAgent struct {
	villageID string
	cfg       Config

	transport Transport
	extract   Extractor
	ledger    *ResourceLedger
	premium   *PremiumTrader
	market    *MarketManager
	logger    *log.Logger
}

// NewVillageAgent wires the decision components for one village, applying
// that village's config overrides.
func NewVillageAgent(v VillageConfig, base Config, transport Transport, extract Extractor, reporter Reporter) *VillageAgent {
	cfg := base.ForVillage(v)
	ledger := NewResourceLedger(v.ID, cfg.StorageRatio)
	return &VillageAgent{
		villageID: v.ID,
		cfg:       cfg,
		transport: transport,
		extract:   extract,
		ledger:    ledger,
		premium:   NewPremiumTrader(v.ID, &cfg, transport, extract, ledger, reporter),
		market:    NewMarketManager(v.ID, &cfg, transport, extract, ledger, reporter),
		logger:    log.New(log.Writer(), fmt.Sprintf("[village %s] ", v.ID), log.LstdFlags),
	}
}

// Ledger exposes the village ledger so consumers (building, recruitment,
// the simulator) can register resource requests.
func (a *VillageAgent) Ledger() *ResourceLedger { return a.ledger }

// RunCycle executes one full decision cycle for the village.
func (a *VillageAgent) RunCycle() Outcome {
	page := a.transport.FetchPage(overviewURL(a.villageID))
	if page == "" {
		a.logger.Printf("overview fetch failed")
		IncFailure("fetch")
		return FetchFailed("overview page")
	}
	state := a.extract.GameState(page)
	if state == nil {
		a.logger.Printf("game state parse failed")
		IncFailure("parse")
		return ParseFailed("game state")
	}
	a.ledger.Update(*state)
	for _, res := range TradableResources {
		SetResourceLevel(a.villageID, res, a.ledger.Actual(res))
	}
	SetResourceLevel(a.villageID, ResPop, a.ledger.Actual(ResPop))

	if out := a.premium.SellExcess(); out.Kind != OutcomeOK {
		a.logger.Printf("premium pass: %s", out)
	}
	if out := a.market.Manage(a.cfg.DropExisting); out.Kind != OutcomeOK {
		a.logger.Printf("market pass: %s", out)
	}
	return Done()
}

// runLoop cycles every village once per interval until the context ends.
func runLoop(ctx context.Context, agents []*VillageAgent, intervalSec int) {
	if intervalSec <= 0 {
		intervalSec = 300
	}
	log.Printf("starting cycle loop: %d village(s), every %ds", len(agents), intervalSec)

	runAll(agents)
	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("cycle loop stopped")
			return
		case <-ticker.C:
			runAll(agents)
		}
	}
}

func runAll(agents []*VillageAgent) {
	for _, a := range agents {
		if out := a.RunCycle(); out.Kind != OutcomeOK {
			a.logger.Printf("cycle ended early: %s", out)
		}
	}
}

// FILE: ledger.go
// Package main – Per-village resource ledger.
//
// The ledger owns the authoritative "what do we have" and "what do internal
// consumers still want" view for one village:
//   • actual    – resources physically present, replaced wholesale every
//                 cycle from the game state
//   • requested – outstanding demand per consumer (building, recruitment, …);
//                 entries are zeroed once satisfied, never removed
//
// Mutations between updates are optimistic: after a trade is assumed
// successful the orchestrators debit `actual` directly, and the next cycle's
// Update reconciles against the real game state.
//
// One ledger per village, one logical thread of control per village; callers
// must not run two trading cycles concurrently against the same ledger.

package main

import (
	"fmt"
	"log"
	"strings"
)

// ResourceLedger tracks available vs requested resources for one village.
type ResourceLedger struct {
	villageID string

	actual    map[ResourceKind]int
	requested map[string]map[ResourceKind]int

	storage int
	ratio   float64 // storage divisor for the surplus threshold

	logger *log.Logger
}

// NewResourceLedger creates an empty ledger for a village. State is owned by
// the instance; nothing is shared across villages.
func NewResourceLedger(villageID string, storageRatio float64) *ResourceLedger {
	if storageRatio <= 0 {
		storageRatio = 2.5
	}
	return &ResourceLedger{
		villageID: villageID,
		actual:    make(map[ResourceKind]int),
		requested: make(map[string]map[ResourceKind]int),
		ratio:     storageRatio,
		logger:    log.New(log.Writer(), fmt.Sprintf("[ledger %s] ", villageID), log.LstdFlags),
	}
}

// Update replaces the actual resource view from a fresh game-state snapshot
// and clears any request that the new stockpile already satisfies.
func (l *ResourceLedger) Update(state VillageState) {
	l.actual[ResWood] = state.Wood
	l.actual[ResStone] = state.Stone
	l.actual[ResIron] = state.Iron
	l.actual[ResPop] = state.PopMax - state.Pop
	l.storage = state.StorageMax
	if state.Name != "" {
		l.logger.SetPrefix(fmt.Sprintf("[ledger %s] ", state.Name))
	}
	l.CheckState()
}

// CheckState zeroes every request already met by the actual stockpile.
// Consumer slots persist at zero demand; they are never deleted here.
func (l *ResourceLedger) CheckState() {
	for _, wants := range l.requested {
		for res, amount := range wants {
			if amount <= l.actual[res] {
				wants[res] = 0
			}
		}
	}
}

// Request registers outstanding demand for a (consumer, resource) pair.
// Last write wins; amounts are not additive.
func (l *ResourceLedger) Request(source string, res ResourceKind, amount int) {
	if wants, ok := l.requested[source]; ok {
		wants[res] = amount
		return
	}
	l.requested[source] = map[ResourceKind]int{res: amount}
}

// CanRecruit reports whether recruitment may proceed. A village with no
// population headroom can never recruit, and any pending recruitment demand
// is purged outright in that case. Otherwise recruitment is blocked only
// while a non-recruitment consumer still has unmet demand.
func (l *ResourceLedger) CanRecruit() bool {
	if l.actual[ResPop] == 0 {
		l.logger.Printf("can't recruit, no room for pops")
		for source := range l.requested {
			if strings.Contains(source, "recruitment") {
				delete(l.requested, source)
			}
		}
		return false
	}

	for source, wants := range l.requested {
		if strings.Contains(source, "recruitment") {
			continue
		}
		for _, amount := range wants {
			if amount > 0 {
				return false
			}
		}
	}
	return true
}

// PlentyOf returns the resource most in surplus: no outstanding demand
// anywhere and an actual level above storage/ratio. Only tradable resources
// qualify, scanned in fixed order so an exact tie resolves the same way
// every run. False when nothing qualifies.
func (l *ResourceLedger) PlentyOf() (ResourceKind, bool) {
	var most ResourceKind
	mostOf := 0
	for _, res := range TradableResources {
		if l.InNeedOf(res) {
			continue
		}
		amount := l.actual[res]
		if amount > int(float64(l.storage)/l.ratio) && amount > mostOf {
			most = res
			mostOf = amount
		}
	}
	if mostOf == 0 {
		return "", false
	}
	l.logger.Printf("we have plenty of %s (%d)", most, mostOf)
	return most, true
}

// InNeedOf reports whether any consumer still wants res.
func (l *ResourceLedger) InNeedOf(res ResourceKind) bool {
	for _, wants := range l.requested {
		if wants[res] > 0 {
			return true
		}
	}
	return false
}

// NeedAmount sums the positive outstanding demand for res across consumers.
func (l *ResourceLedger) NeedAmount(res ResourceKind) int {
	total := 0
	for _, wants := range l.requested {
		if wants[res] > 0 {
			total += wants[res]
		}
	}
	return total
}

// Needs returns the single largest outstanding ask: one consumer's raw
// demand, not a sum. Resources are compared in fixed order so an exact tie
// resolves the same way every run. False when no demand is outstanding.
func (l *ResourceLedger) Needs() (ResourceKind, int, bool) {
	maxAsk := make(map[ResourceKind]int)
	for _, wants := range l.requested {
		for res, amount := range wants {
			if amount > maxAsk[res] {
				maxAsk[res] = amount
			}
		}
	}

	var neededMost ResourceKind
	neededAmount := 0
	for _, res := range []ResourceKind{ResWood, ResStone, ResIron, ResPop} {
		if maxAsk[res] > neededAmount {
			neededAmount = maxAsk[res]
			neededMost = res
		}
	}
	if neededAmount == 0 {
		return "", 0, false
	}
	return neededMost, neededAmount, true
}

// Actual returns the tracked amount of res; absent keys read as zero.
func (l *ResourceLedger) Actual(res ResourceKind) int {
	return l.actual[res]
}

// Storage returns the village storage capacity from the last update.
func (l *ResourceLedger) Storage() int {
	return l.storage
}

// Debit reduces the tracked amount of res after an assumed-successful trade.
func (l *ResourceLedger) Debit(res ResourceKind, amount int) {
	l.actual[res] -= amount
}

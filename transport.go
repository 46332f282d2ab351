// FILE: transport.go
// Package main – Collaborator contracts between the decision core and the game.
//
// The core never parses markup or manages sessions itself; it talks to the
// game through two narrow interfaces:
//   • Transport – request/response against the game server. Failures surface
//     as empty/nil results, never as distinguished error types; the core
//     treats any empty response as a fetch failure.
//   • Extractor – turns raw markup into the structured records the core
//     consumes.
//
// Two Transport implementations live in separate files:
//   • transport_http.go  – real game server over HTTP
//   • transport_paper.go – scripted in-memory transport (dry runs, tests)

package main

import (
	"fmt"
	"net/url"
)

// APIResponse is the decoded body of a game API action.
type APIResponse struct {
	Response []map[string]any `json:"response"`
}

// RateHash pulls the exchange confirmation token out of an exchange_begin
// response; empty when absent.
func (r *APIResponse) RateHash() string {
	if r == nil || len(r.Response) == 0 {
		return ""
	}
	if h, ok := r.Response[0]["rate_hash"].(string); ok {
		return h
	}
	return ""
}

// Transport is the minimal request surface the trading core needs.
type Transport interface {
	// FetchPage GETs a game page; empty result means failure.
	FetchPage(urlSpec string) string
	// SubmitForm POSTs a state-mutating form; empty result means failure.
	// The session form token must already be attached by the caller.
	SubmitForm(urlSpec string, form url.Values) string
	// SubmitAPIAction runs a game API action; nil means failure.
	SubmitAPIAction(villageID, action string, params, data url.Values) *APIResponse
	// FormToken is the session token attached to mutating form submissions.
	FormToken() string
}

// Extractor parses raw markup into structured records. Parse failures
// surface as nil/empty results.
type Extractor interface {
	PremiumData(markup string) *StockSnapshot
	GameState(markup string) *VillageState
	OfferRows(markup string) []MarketOffer
	IncomingShipment(markup string) map[ResourceKind]int
	OwnOffers(markup, villageID string) []string
	MerchantsAvailable(markup string) int
}

// Reporter is the fire-and-forget observability sink.
type Reporter interface {
	Report(villageID, category, message string)
}

// marketURL builds the game.php URL for a market screen mode.
func marketURL(villageID, mode string) string {
	return fmt.Sprintf("game.php?village=%s&screen=market&mode=%s", villageID, mode)
}

// overviewURL builds the game.php URL for the village overview.
func overviewURL(villageID string) string {
	return fmt.Sprintf("game.php?village=%s&screen=overview", villageID)
}

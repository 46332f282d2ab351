// FILE: metrics.go
// Package main – Prometheus metrics for observability.
//
// Exposes the primary metrics the bot updates during operation:
//   • bot_premium_trades_total{resource,result} – premium sales by outcome
//   • bot_market_offers_total{action}           – peer offers created/accepted/dropped
//   • bot_policy_rejections_total{reason}       – deliberate no-ops by gate
//   • bot_collaborator_failures_total{kind}     – fetch/parse failures
//   • bot_premium_rate{resource}                – last solved rate (gauge)
//   • bot_resource_level{village,resource}      – ledger levels (gauge)
//
// Registered in init() and served by the HTTP handler started in main.go at
// /metrics (Prometheus text exposition format).

package main

import "github.com/prometheus/client_golang/prometheus"

var (
	mtxPremiumTrades = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_premium_trades_total",
			Help: "Premium exchange sales by resource and result",
		},
		[]string{"resource", "result"}, // result: ok|begin_failed|confirm_failed
	)

	mtxOffers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_market_offers_total",
			Help: "Peer market offers by action",
		},
		[]string{"action"}, // created|accepted|dropped
	)

	mtxRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_policy_rejections_total",
			Help: "Decision steps skipped by a policy gate",
		},
		[]string{"reason"},
	)

	mtxFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_collaborator_failures_total",
			Help: "Fetch and parse failures from game collaborators",
		},
		[]string{"kind"}, // fetch|parse
	)

	mtxPremiumRate = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bot_premium_rate",
			Help: "Last solved resource units per premium point",
		},
		[]string{"resource"},
	)

	mtxResourceLevel = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bot_resource_level",
			Help: "Ledger resource levels after the last update",
		},
		[]string{"village", "resource"},
	)
)

func init() {
	prometheus.MustRegister(mtxPremiumTrades, mtxOffers, mtxRejections, mtxFailures)
	prometheus.MustRegister(mtxPremiumRate, mtxResourceLevel)
}

// Helper setters used across files.
func IncPremiumTrade(resource, result string) { mtxPremiumTrades.WithLabelValues(resource, result).Inc() }
func IncOffer(action string)                  { mtxOffers.WithLabelValues(action).Inc() }
func IncRejection(reason string)              { mtxRejections.WithLabelValues(reason).Inc() }
func IncFailure(kind string)                  { mtxFailures.WithLabelValues(kind).Inc() }

func SetPremiumRate(resource string, rate int) {
	mtxPremiumRate.WithLabelValues(resource).Set(float64(rate))
}

func SetResourceLevel(village string, resource ResourceKind, level int) {
	mtxResourceLevel.WithLabelValues(village, string(resource)).Set(float64(level))
}

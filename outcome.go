// FILE: outcome.go
// Package main – Tagged step outcomes for the trading orchestrators.
//
// Every network-facing decision step ends in one of four ways. Policy
// rejections are deliberate no-ops, not errors; fetch and parse failures
// abort the step and are retried naturally on the next scheduling cycle.

package main

import "fmt"

// OutcomeKind classifies how a decision step ended.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeFetchFailed
	OutcomeParseFailed
	OutcomeRejected
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeFetchFailed:
		return "fetch_failed"
	case OutcomeParseFailed:
		return "parse_failed"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Outcome is the result of one decision step or cycle.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
}

func (o Outcome) String() string {
	if o.Reason == "" {
		return o.Kind.String()
	}
	return fmt.Sprintf("%s (%s)", o.Kind, o.Reason)
}

func Done() Outcome { return Outcome{Kind: OutcomeOK} }

func FetchFailed(reason string) Outcome { return Outcome{Kind: OutcomeFetchFailed, Reason: reason} }

func ParseFailed(reason string) Outcome { return Outcome{Kind: OutcomeParseFailed, Reason: reason} }

// Rejected marks a threshold or policy gate that chose not to trade.
func Rejected(reason string) Outcome {
	IncRejection(reason)
	return Outcome{Kind: OutcomeRejected, Reason: reason}
}

// FILE: transport_paper.go
// Package main – In-memory paper transport (no external calls).
//
// The paper transport serves scripted pages and API responses. It is used
// for dry runs (no SERVER_URL configured), the offline simulator, and the
// test suite. Form posts and API calls are recorded so callers can assert
// exactly what would have been sent to the game.

package main

import (
	"net/url"
	"sync"

	"github.com/google/uuid"
)

// SubmittedForm records one form post made against the paper transport.
type SubmittedForm struct {
	URLSpec string
	Form    url.Values
}

// APICall records one API action made against the paper transport.
type APICall struct {
	VillageID string
	Action    string
	Params    url.Values
	Data      url.Values
}

// PaperTransport simulates the game server in memory.
type PaperTransport struct {
	mu    sync.Mutex
	pages map[string]string
	fail  map[string]bool // actions forced to fail
	token string

	Forms []SubmittedForm
	Calls []APICall
}

func NewPaperTransport() *PaperTransport {
	return &PaperTransport{
		pages: make(map[string]string),
		fail:  make(map[string]bool),
		token: uuid.New().String(),
	}
}

// SetPage scripts the markup served for a urlSpec; empty means fetch failure.
func (p *PaperTransport) SetPage(urlSpec, markup string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages[urlSpec] = markup
}

// FailAction makes the given API action return nil.
func (p *PaperTransport) FailAction(action string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail[action] = true
}

func (p *PaperTransport) FetchPage(urlSpec string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pages[urlSpec]
}

func (p *PaperTransport) SubmitForm(urlSpec string, form url.Values) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Forms = append(p.Forms, SubmittedForm{URLSpec: urlSpec, Form: form})
	return "ok"
}

// SubmitAPIAction simulates the two-phase exchange: begin hands out a fresh
// rate hash, everything else acknowledges with an empty response set.
func (p *PaperTransport) SubmitAPIAction(villageID, action string, params, data url.Values) *APIResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, APICall{VillageID: villageID, Action: action, Params: params, Data: data})
	if p.fail[action] {
		return nil
	}
	if action == "exchange_begin" {
		return &APIResponse{Response: []map[string]any{{"rate_hash": uuid.New().String()}}}
	}
	return &APIResponse{Response: []map[string]any{{}}}
}

func (p *PaperTransport) FormToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}

// FILE: transport_http.go
// Package main – HTTP transport against the real game server.
//
// All traffic goes through game.php on a single server base URL with the
// session cookie attached. Mutating form posts carry the per-session form
// token (h), which this transport re-captures from every page it sees. API
// actions are ajax posts that decode into APIResponse.
//
// Per the collaborator contract, failures surface as empty/nil results:
// callers never see transport-level error values.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var reFormToken = regexp.MustCompile(`name="h" value="([a-zA-Z0-9]+)"`)

// HTTPTransport talks to one game world over HTTP.
type HTTPTransport struct {
	base   string
	cookie string
	hc     *http.Client

	lastToken string
}

func NewHTTPTransport(base, cookie string) *HTTPTransport {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	return &HTTPTransport{
		base:   base,
		cookie: cookie,
		hc:     &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchPage GETs a game page and refreshes the session form token from it.
func (t *HTTPTransport) FetchPage(urlSpec string) string {
	req, err := http.NewRequest(http.MethodGet, t.base+"/"+urlSpec, nil)
	if err != nil {
		return ""
	}
	return t.do(req)
}

// SubmitForm POSTs a state-mutating form.
func (t *HTTPTransport) SubmitForm(urlSpec string, form url.Values) string {
	req, err := http.NewRequest(http.MethodPost, t.base+"/"+urlSpec, strings.NewReader(form.Encode()))
	if err != nil {
		return ""
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return t.do(req)
}

// SubmitAPIAction posts an ajax market action and decodes the response.
func (t *HTTPTransport) SubmitAPIAction(villageID, action string, params, data url.Values) *APIResponse {
	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("village", villageID)
	q.Set("ajaxaction", action)
	q.Set("h", t.lastToken)

	u := fmt.Sprintf("%s/game.php?%s", t.base, q.Encode())
	req, err := http.NewRequest(http.MethodPost, u, strings.NewReader(data.Encode()))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("TribalWars-Ajax", "1")
	body := t.do(req)
	if body == "" {
		return nil
	}
	var out APIResponse
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		log.Printf("[transport] api %s: bad response body", action)
		return nil
	}
	return &out
}

// FormToken returns the last session token seen on any fetched page.
func (t *HTTPTransport) FormToken() string { return t.lastToken }

// do executes a request and returns the body, or "" on any failure.
func (t *HTTPTransport) do(req *http.Request) string {
	req.Header.Set("User-Agent", "Mozilla/5.0 (TWB)")
	if t.cookie != "" {
		req.Header.Set("Cookie", t.cookie)
	}
	res, err := t.hc.Do(req)
	if err != nil {
		log.Printf("[transport] %s %s: %v", req.Method, req.URL.Path, err)
		return ""
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		log.Printf("[transport] %s %s: status %d", req.Method, req.URL.Path, res.StatusCode)
		return ""
	}
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return ""
	}
	body := string(b)
	if m := reFormToken.FindStringSubmatch(body); m != nil {
		t.lastToken = m[1]
	}
	return body
}

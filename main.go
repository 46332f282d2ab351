// FILE: main.go
// Package main – Program entrypoint and HTTP/metrics server.
//
// Boot sequence:
//   1) loadBotEnv()            – read bot.env (no shell exports required)
//   2) cfg := loadConfigFromEnv()
//   3) wire transport/extractor/reporter and one agent per village
//   4) start Prometheus /healthz server on cfg.Port
//   5) run the cycle loop (or a single pass, or an offline replay)
//
// Flags:
//   -once             Run one cycle per village and exit
//   -interval <sec>   Cycle interval in seconds (default 300)
//   -simulate <json>  Replay recorded cycles offline and exit
//
// Example:
//   go run . -interval 120
//
// Notes:
//   - Without SERVER_URL the bot runs on the in-memory paper transport.
//   - The session cookie comes from SESSION_COOKIE; the bot never logs in
//     by itself.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// ---- Flags ----
	var once bool
	var intervalSec int
	var simFile string
	flag.BoolVar(&once, "once", false, "Run one cycle per village and exit")
	flag.IntVar(&intervalSec, "interval", 300, "Cycle interval in seconds")
	flag.StringVar(&simFile, "simulate", "", "Path to recorded cycles JSON (offline replay)")
	flag.Parse()

	// ---- Environment & Config ----
	loadBotEnv()
	cfg := loadConfigFromEnv()

	if simFile != "" {
		if err := runSim(simFile, cfg); err != nil {
			log.Fatalf("simulate: %v", err)
		}
		return
	}

	// ---- Collaborator wiring ----
	var transport Transport
	if cfg.ServerURL != "" {
		transport = NewHTTPTransport(cfg.ServerURL, cfg.Cookie)
	} else {
		log.Printf("no SERVER_URL configured, running on the paper transport")
		transport = NewPaperTransport()
	}

	var reporter Reporter = LogReporter{}
	if cfg.HistoryDB != "" {
		hr, err := NewHistoryReporter(cfg.HistoryDB)
		if err != nil {
			log.Fatalf("history reporter: %v", err)
		}
		defer hr.Close()
		reporter = hr
	}

	villages, err := cfg.LoadVillages()
	if err != nil {
		log.Fatalf("villages: %v", err)
	}
	agents := make([]*VillageAgent, 0, len(villages))
	for _, v := range villages {
		agents = append(agents, NewVillageAgent(v, cfg, transport, RegexExtractor{}, reporter))
	}

	// ---- HTTP metrics/health ----
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: mux}
	go func() {
		log.Printf("serving metrics on :%d/metrics", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	// ---- Run selected mode ----
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if once {
		runAll(agents)
	} else {
		runLoop(ctx, agents, intervalSec)
	}

	// ---- Graceful shutdown for HTTP server ----
	shutdownCtx, c := context.WithTimeout(context.Background(), 2*time.Second)
	defer c()
	_ = srv.Shutdown(shutdownCtx)
}

// FILE: env.go
// Package main – Environment helpers for the village bot.
//
// This file provides:
//   1) Small helpers to read environment variables with sane defaults
//      (strings, ints, floats, bools).
//   2) A safe loader (loadBotEnv) that reads the bot env file (default
//      ./bot.env, override with TWB_ENV_FILE) so knobs can be tuned without
//      shell exports. Only known keys are imported; the session cookie stays
//      wherever the operator put it.

package main

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
)

// --------- Env helpers (used across files) ---------

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "y", "yes":
		return true
	case "0", "false", "n", "no":
		return false
	default:
		return def
	}
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// --------- env file loader ---------

// loadBotEnv reads the bot env file and sets ONLY the keys the bot needs.
// It won't override variables already in the environment.
func loadBotEnv() {
	path := getEnv("TWB_ENV_FILE", "bot.env")
	f, err := os.Open(path)
	if err != nil {
		log.Printf("env: %s not found, relying on process env", path)
		return
	}
	defer f.Close()

	needed := map[string]struct{}{
		"SERVER_URL": {}, "SESSION_COOKIE": {}, "VILLAGE_ID": {}, "PORT": {},
		"HISTORY_DB": {}, "VILLAGES_FILE": {},
		"PREMIUM_TRADE": {}, "TRADE_MAX_PER_HOUR": {}, "MAX_TRADE_AMOUNT": {},
		"MIN_TRADE_AMOUNT": {}, "TRADE_BIAS": {}, "STORAGE_RATIO": {},
		"MAX_WASTE_RATIO": {}, "MARGIN_FACTOR": {}, "OFFER_MAX_HOURS": {},
		"PACING_DELAY_MS": {}, "DROP_EXISTING_OFFERS": {},
	}

	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(line[len("export "):])
		}
		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		if _, ok := needed[key]; !ok {
			continue
		}
		val := strings.TrimSpace(line[eq+1:])
		if len(val) >= 2 && ((val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'')) {
			val = val[1 : len(val)-1]
		}
		if idx := strings.Index(val, "#"); idx >= 0 {
			val = strings.TrimSpace(val[:idx])
		}
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}
	log.Printf("env: loaded %s", path)
}

// FILE: config.go
// Package main – Runtime configuration model and loaders.
//
// Config holds every knob the decision engine uses, hydrated from env
// (see env.go for the file loader). An optional villages.yaml overlay adds
// per-village overrides for multi-village operation:
//
//   villages:
//     - id: "1234"
//       premium_trade: true
//     - id: "5678"
//       trade_bias: 1.2
//
// Typical flow (see main.go):
//   loadBotEnv()
//   cfg := loadConfigFromEnv()
//   villages, _ := cfg.LoadVillages()

package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime knobs for trading and operations.
type Config struct {
	// Game session
	ServerURL string // e.g. https://nl01.tribalwars.nl; empty selects the paper transport
	Cookie    string // raw session cookie header value
	VillageID string // primary village when no villages file is given

	// Standard market policy
	TradeMaxPerHour float64 // cooldown: at most one trade per this many hours
	MaxTradeAmount  int     // cap on the needed amount per created offer
	MinTradeAmount  int     // needs below this are not worth a market trip
	TradeBias       float64 // multiplier on the surplus amount offered
	StorageRatio    float64 // surplus threshold divisor (actual > storage/ratio)
	OfferMaxHours   int     // max_time for created offers

	// Premium exchange policy
	PremiumEnabled bool    // sell excess on the premium exchange
	MaxWasteRatio  float64 // reject splits wasting more than this capacity fraction
	MarginFactor   float64 // thin-margin guard multiplier
	PacingDelayMs  int     // delay after a confirmed premium sale

	// Ops
	Port         int
	HistoryDB    string // sqlite path for the report sink; empty logs only
	VillagesFile string // optional yaml overlay
	DropExisting bool   // clear own offers before managing the market
}

// loadConfigFromEnv reads the process env (already hydrated by loadBotEnv())
// and returns a Config with the documented defaults for missing keys.
func loadConfigFromEnv() Config {
	return Config{
		ServerURL: getEnv("SERVER_URL", ""),
		Cookie:    getEnv("SESSION_COOKIE", ""),
		VillageID: getEnv("VILLAGE_ID", ""),

		TradeMaxPerHour: getEnvFloat("TRADE_MAX_PER_HOUR", 1.0),
		MaxTradeAmount:  getEnvInt("MAX_TRADE_AMOUNT", 4000),
		MinTradeAmount:  getEnvInt("MIN_TRADE_AMOUNT", 250),
		TradeBias:       getEnvFloat("TRADE_BIAS", 1.0),
		StorageRatio:    getEnvFloat("STORAGE_RATIO", 2.5),
		OfferMaxHours:   getEnvInt("OFFER_MAX_HOURS", 2),

		PremiumEnabled: getEnvBool("PREMIUM_TRADE", false),
		MaxWasteRatio:  getEnvFloat("MAX_WASTE_RATIO", 0.4),
		MarginFactor:   getEnvFloat("MARGIN_FACTOR", 1.1),
		PacingDelayMs:  getEnvInt("PACING_DELAY_MS", 1000),

		Port:         getEnvInt("PORT", 8080),
		HistoryDB:    getEnv("HISTORY_DB", ""),
		VillagesFile: getEnv("VILLAGES_FILE", ""),
		DropExisting: getEnvBool("DROP_EXISTING_OFFERS", true),
	}
}

// PacingDelay is the suspension after a confirmed premium sale.
func (c *Config) PacingDelay() time.Duration {
	return time.Duration(c.PacingDelayMs) * time.Millisecond
}

// VillageConfig is one entry of the villages.yaml overlay. Nil pointers fall
// back to the global Config values.
type VillageConfig struct {
	ID           string   `yaml:"id"`
	PremiumTrade *bool    `yaml:"premium_trade"`
	TradeBias    *float64 `yaml:"trade_bias"`
}

type villagesFile struct {
	Villages []VillageConfig `yaml:"villages"`
}

// LoadVillages returns the configured village set: the yaml overlay when
// present, otherwise the single VILLAGE_ID village.
func (c *Config) LoadVillages() ([]VillageConfig, error) {
	if c.VillagesFile == "" {
		if c.VillageID == "" {
			return nil, fmt.Errorf("no VILLAGE_ID and no VILLAGES_FILE configured")
		}
		return []VillageConfig{{ID: c.VillageID}}, nil
	}

	raw, err := os.ReadFile(c.VillagesFile)
	if err != nil {
		return nil, fmt.Errorf("read villages file: %w", err)
	}
	var vf villagesFile
	if err := yaml.Unmarshal(raw, &vf); err != nil {
		return nil, fmt.Errorf("parse villages file: %w", err)
	}
	if len(vf.Villages) == 0 {
		return nil, fmt.Errorf("villages file %s lists no villages", c.VillagesFile)
	}
	for i, v := range vf.Villages {
		if v.ID == "" {
			return nil, fmt.Errorf("villages file entry %d has no id", i)
		}
	}
	return vf.Villages, nil
}

// ForVillage applies one village's overrides on top of the global config.
func (c Config) ForVillage(v VillageConfig) Config {
	if v.PremiumTrade != nil {
		c.PremiumEnabled = *v.PremiumTrade
	}
	if v.TradeBias != nil {
		c.TradeBias = *v.TradeBias
	}
	return c
}

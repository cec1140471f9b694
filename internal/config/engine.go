package config

import (
	"os"
	"strconv"

	"github.com/JaimeStill/saldo/internal/reconcile"
	"github.com/JaimeStill/saldo/pkg/settings"
)

const (
	EnvEngineReviewThreshold     = "SALDO_ENGINE_REVIEW_THRESHOLD"
	EnvEngineAutoCorrectSaldo    = "SALDO_ENGINE_AUTO_CORRECT_SALDO"
	EnvEngineAutoCorrectExchange = "SALDO_ENGINE_AUTO_CORRECT_EXCHANGE"
	EnvEngineTieBreakRole        = "SALDO_ENGINE_TIE_BREAK_ROLE"
)

// EngineConfig holds the reconciliation policy. The correction switches are
// pointers so an overlay can turn them off.
type EngineConfig struct {
	ReviewThreshold     float64 `toml:"review_threshold"`
	AutoCorrectSaldo    *bool   `toml:"auto_correct_saldo"`
	AutoCorrectExchange *bool   `toml:"auto_correct_exchange"`
	TieBreakRole        string  `toml:"tie_break_role"`
}

// Reconcile returns the engine policy. Call after Finalize.
func (c *EngineConfig) Reconcile() reconcile.Config {
	return reconcile.Config{
		ReviewThreshold:     c.ReviewThreshold,
		AutoCorrectSaldo:    c.AutoCorrectSaldo != nil && *c.AutoCorrectSaldo,
		AutoCorrectExchange: c.AutoCorrectExchange != nil && *c.AutoCorrectExchange,
		TieBreak:            reconcile.ParseRole(c.TieBreakRole),
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *EngineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.Reconcile().Validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *EngineConfig) Merge(overlay *EngineConfig) {
	if overlay.ReviewThreshold != 0 {
		c.ReviewThreshold = overlay.ReviewThreshold
	}
	if overlay.AutoCorrectSaldo != nil {
		c.AutoCorrectSaldo = overlay.AutoCorrectSaldo
	}
	if overlay.AutoCorrectExchange != nil {
		c.AutoCorrectExchange = overlay.AutoCorrectExchange
	}
	if overlay.TieBreakRole != "" {
		c.TieBreakRole = overlay.TieBreakRole
	}
}

func (c *EngineConfig) loadDefaults() {
	d := reconcile.DefaultConfig()
	if c.ReviewThreshold == 0 {
		c.ReviewThreshold = d.ReviewThreshold
	}
	if c.AutoCorrectSaldo == nil {
		c.AutoCorrectSaldo = &d.AutoCorrectSaldo
	}
	if c.AutoCorrectExchange == nil {
		c.AutoCorrectExchange = &d.AutoCorrectExchange
	}
	if c.TieBreakRole == "" {
		c.TieBreakRole = string(d.TieBreak)
	}
}

func (c *EngineConfig) loadEnv() {
	if v := os.Getenv(EnvEngineReviewThreshold); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.ReviewThreshold = f
		}
	}
	if v := os.Getenv(EnvEngineAutoCorrectSaldo); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.AutoCorrectSaldo = &b
		}
	}
	if v := os.Getenv(EnvEngineAutoCorrectExchange); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.AutoCorrectExchange = &b
		}
	}
	settings.Env(&c.TieBreakRole, EnvEngineTieBreakRole)
}

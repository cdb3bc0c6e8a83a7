package table

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/agentfelt/agentfelt/internal/engine"
)

// Config configures one table.
type Config struct {
	Name          string `hcl:"name,label"`
	Mode          string `hcl:"mode,optional"`
	SmallBlind    int    `hcl:"small_blind"`
	BigBlind      int    `hcl:"big_blind"`
	SmallBet      int    `hcl:"small_bet,optional"`
	BigBet        int    `hcl:"big_bet,optional"`
	Ante          int    `hcl:"ante,optional"`
	MaxRaises     int    `hcl:"max_raises_per_street,optional"`
	MaxPlayers    int    `hcl:"max_players,optional"`
	BuyIn         int    `hcl:"buy_in,optional"`
	ActionTimeout int    `hcl:"action_timeout_seconds,optional"`
}

// AgentConfig seats a simulated agent at configured tables.
type AgentConfig struct {
	Name     string   `hcl:"name,label"`
	Strategy string   `hcl:"strategy,optional"`
	Tables   []string `hcl:"tables,optional"`
	BuyIn    int      `hcl:"buy_in,optional"`
}

// FileConfig is the root of an HCL configuration file.
type FileConfig struct {
	Tables []Config      `hcl:"table,block"`
	Agents []AgentConfig `hcl:"agent,block"`
}

// DefaultFileConfig returns the configuration used when no file exists.
func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		Tables: []Config{{
			Name:          "main",
			Mode:          string(engine.NoLimit),
			SmallBlind:    1,
			BigBlind:      2,
			MaxPlayers:    6,
			BuyIn:         200,
			ActionTimeout: 30,
		}},
		Agents: []AgentConfig{
			{Name: "caller-1", Strategy: "caller", Tables: []string{"main"}, BuyIn: 200},
			{Name: "random-1", Strategy: "random", Tables: []string{"main"}, BuyIn: 200},
		},
	}
}

// LoadFileConfig loads a table configuration from an HCL file, falling
// back to defaults when the file does not exist.
func LoadFileConfig(filename string) (*FileConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultFileConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg FileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	for i := range cfg.Tables {
		cfg.Tables[i].applyDefaults()
	}
	for i := range cfg.Agents {
		if cfg.Agents[i].Strategy == "" {
			cfg.Agents[i].Strategy = "caller"
		}
		if cfg.Agents[i].BuyIn == 0 {
			cfg.Agents[i].BuyIn = 200
		}
		if len(cfg.Agents[i].Tables) == 0 {
			for _, t := range cfg.Tables {
				cfg.Agents[i].Tables = append(cfg.Agents[i].Tables, t.Name)
			}
		}
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = string(engine.NoLimit)
	}
	if c.MaxPlayers == 0 {
		c.MaxPlayers = 6
	}
	if c.BuyIn == 0 {
		c.BuyIn = c.BigBlind * 100
	}
	if c.ActionTimeout == 0 {
		c.ActionTimeout = 30
	}
	if engine.BettingMode(c.Mode) == engine.Limit {
		if c.SmallBet == 0 {
			c.SmallBet = c.BigBlind
		}
		if c.BigBet == 0 {
			c.BigBet = c.SmallBet * 2
		}
	}
}

// Validate checks the full file configuration.
func (fc *FileConfig) Validate() error {
	if len(fc.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}
	names := make(map[string]bool)
	for _, t := range fc.Tables {
		if names[t.Name] {
			return fmt.Errorf("duplicate table name %q", t.Name)
		}
		names[t.Name] = true
		if err := t.EngineConfig().Validate(); err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
		if t.BuyIn <= 0 {
			return fmt.Errorf("table %s: buy-in must be positive", t.Name)
		}
		if t.ActionTimeout <= 0 {
			return fmt.Errorf("table %s: action timeout must be positive", t.Name)
		}
	}
	for _, a := range fc.Agents {
		for _, tbl := range a.Tables {
			if !names[tbl] {
				return fmt.Errorf("agent %s: unknown table %q", a.Name, tbl)
			}
		}
		if a.BuyIn <= 0 {
			return fmt.Errorf("agent %s: buy-in must be positive", a.Name)
		}
	}
	return nil
}

// EngineConfig converts the table configuration into the per-hand
// engine configuration.
func (c Config) EngineConfig() engine.Config {
	return engine.Config{
		Mode:               engine.BettingMode(c.Mode),
		SmallBlind:         c.SmallBlind,
		BigBlind:           c.BigBlind,
		SmallBet:           c.SmallBet,
		BigBet:             c.BigBet,
		Ante:               c.Ante,
		MaxRaisesPerStreet: c.MaxRaises,
		MaxPlayers:         c.MaxPlayers,
	}
}

// Timeout returns the inactivity timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.ActionTimeout) * time.Second
}

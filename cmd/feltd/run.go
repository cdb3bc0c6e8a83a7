package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agentfelt/agentfelt/internal/randutil"
	"github.com/agentfelt/agentfelt/internal/table"
)

// RunCmd hosts the configured tables and drives them with scripted
// agents until the hand quota is reached or one player holds every chip.
type RunCmd struct {
	Config string `short:"c" default:"feltd.hcl" help:"Table configuration file"`
	Hands  int    `short:"n" default:"20" help:"Maximum hands per table"`
	Seed   *int64 `help:"Deterministic seed for agent decisions (optional)"`
	Debug  bool   `help:"Enable debug logging"`
}

func (c *RunCmd) Run() error {
	logger := setupLogger(c.Debug)

	cfg, err := table.LoadFileConfig(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	logger.Info("starting tables", "config", c.Config, "tables", len(cfg.Tables), "hands", c.Hands, "seed", seed)

	registry := table.NewRegistry(logger)
	defer registry.CloseAll()

	seats := make(map[string][]*seatedAgent)
	for _, tc := range cfg.Tables {
		tbl, err := registry.Create(tc.Name, tc)
		if err != nil {
			return err
		}
		for _, ac := range cfg.Agents {
			if !playsAt(ac, tc.Name) {
				continue
			}
			strat, err := resolveStrategy(ac.Strategy, randutil.New(seed^randutil.SeedFrom(ac.Name, tc.Name)))
			if err != nil {
				return err
			}
			buyIn := ac.BuyIn
			if buyIn == 0 {
				buyIn = tc.BuyIn
			}
			if err := tbl.AddSeat(ac.Name, uuid.NewString(), buyIn); err != nil {
				return fmt.Errorf("seating %s at %s: %w", ac.Name, tc.Name, err)
			}
			seats[tc.Name] = append(seats[tc.Name], &seatedAgent{name: ac.Name, strategy: strat})
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	for _, id := range registry.List() {
		tbl, _ := registry.Get(id)
		agents := seats[id]
		g.Go(func() error {
			return driveTable(ctx, logger, tbl, agents, c.Hands)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, id := range registry.List() {
		tbl, _ := registry.Get(id)
		for _, s := range tbl.Seats() {
			logger.Info("final stack", "table", id, "agent", s.AgentID, "chips", s.Chips)
		}
	}
	return nil
}

func playsAt(ac table.AgentConfig, tableName string) bool {
	for _, t := range ac.Tables {
		if t == tableName {
			return true
		}
	}
	return false
}

type seatedAgent struct {
	name     string
	strategy Strategy
	seq      uint64
}

// driveTable plays hands to completion, one action at a time. Each
// action carries a fresh request id and the agent's next sequence number,
// exercising the same pipeline a networked agent would use.
func driveTable(ctx context.Context, logger *log.Logger, tbl *table.Table, agents []*seatedAgent, maxHands int) error {
	byName := make(map[string]*seatedAgent, len(agents))
	for _, a := range agents {
		byName[a.name] = a
	}

	for hand := 0; hand < maxHands && tbl.CanStartHand(); hand++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		state, _, err := tbl.StartHand()
		if err != nil {
			return err
		}

		for !state.Complete {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p := state.ActivePlayer()
			if p == nil {
				return fmt.Errorf("table %s: hand %s incomplete with no active player", tbl.ID(), state.HandID)
			}
			agent, ok := byName[p.ID]
			if !ok {
				return fmt.Errorf("table %s: no strategy for agent %s", tbl.ID(), p.ID)
			}

			action := agent.strategy.Decide(state, p.ID)
			agent.seq++
			res, err := tbl.ProcessAction(p.ID, action, uuid.NewString(), agent.seq)
			if err != nil {
				return fmt.Errorf("table %s hand %s: %s by %s: %w", tbl.ID(), state.HandID, action.Type, p.ID, err)
			}
			state = res.State
		}

		logger.Debug("hand finished",
			"table", tbl.ID(),
			"hand", state.HandID,
			"winners", state.Winners)
	}

	logger.Info("table finished", "table", tbl.ID(), "hands", tbl.HandsPlayed())
	return nil
}

// ValidateCmd parses and validates a configuration file without running
// any tables.
type ValidateCmd struct {
	Config string `arg:"" default:"feltd.hcl" help:"Table configuration file"`
}

func (c *ValidateCmd) Run() error {
	cfg, err := table.LoadFileConfig(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	fmt.Printf("%s: %d table(s), %d agent(s) OK\n", c.Config, len(cfg.Tables), len(cfg.Agents))
	return nil
}

func setupLogger(debug bool) *log.Logger {
	opts := log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	}
	if debug {
		opts.Level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, opts)
}

package main

import (
	"fmt"

	"github.com/agentfelt/agentfelt/internal/engine"
	"github.com/agentfelt/agentfelt/internal/randutil"
)

// Strategy picks an action for an agent from the legal set. Strategies
// only see what the engine exposes; they never touch table internals.
type Strategy interface {
	Name() string
	Decide(state *engine.GameState, agentID string) engine.Action
}

// resolveStrategy maps a config strategy name to an implementation.
func resolveStrategy(name string, rng *randutil.Source) (Strategy, error) {
	switch name {
	case "folder":
		return folderStrategy{}, nil
	case "caller", "":
		return callerStrategy{}, nil
	case "random":
		return &randomStrategy{rng: rng}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want folder, caller or random)", name)
	}
}

// folderStrategy checks when free, folds otherwise.
type folderStrategy struct{}

func (folderStrategy) Name() string { return "folder" }

func (folderStrategy) Decide(state *engine.GameState, agentID string) engine.Action {
	for _, a := range engine.LegalActions(state) {
		if a == engine.Check {
			return engine.Action{Type: engine.Check}
		}
	}
	return engine.Action{Type: engine.Fold}
}

// callerStrategy calls any wager and checks when free. It never folds,
// so every hand it plays reaches showdown.
type callerStrategy struct{}

func (callerStrategy) Name() string { return "caller" }

func (callerStrategy) Decide(state *engine.GameState, agentID string) engine.Action {
	for _, a := range engine.LegalActions(state) {
		if a == engine.Check {
			return engine.Action{Type: engine.Check}
		}
	}
	return engine.Action{Type: engine.Call}
}

// randomStrategy picks uniformly among legal actions and, for wagers,
// uniformly within the legal amount range. With a seeded RNG its play is
// fully reproducible.
type randomStrategy struct {
	rng *randutil.Source
}

func (*randomStrategy) Name() string { return "random" }

func (s *randomStrategy) Decide(state *engine.GameState, agentID string) engine.Action {
	legal := engine.LegalActions(state)
	choice := legal[s.rng.Intn(len(legal))]

	switch choice {
	case engine.Bet:
		r := engine.Ranges(state)
		return engine.Action{Type: engine.Bet, Amount: s.amountIn(r.MinBet, r.MaxBet)}
	case engine.Raise:
		r := engine.Ranges(state)
		return engine.Action{Type: engine.Raise, Amount: s.amountIn(r.MinRaise, r.MaxRaise)}
	default:
		return engine.Action{Type: choice}
	}
}

func (s *randomStrategy) amountIn(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}

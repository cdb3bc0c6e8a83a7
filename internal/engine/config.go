package engine

import "fmt"

// BettingMode selects the betting structure for a hand.
type BettingMode string

const (
	Limit    BettingMode = "LIMIT"
	NoLimit  BettingMode = "NO_LIMIT"
	PotLimit BettingMode = "POT_LIMIT"
)

// Config is the immutable per-hand game configuration.
type Config struct {
	Mode       BettingMode
	SmallBlind int
	BigBlind   int
	// SmallBet and BigBet are the fixed wager sizes in Limit play:
	// SmallBet on preflop/flop, BigBet on turn/river.
	SmallBet int
	BigBet   int
	// Ante is posted by every player before the blinds as dead money.
	Ante int
	// MaxRaisesPerStreet caps wagers per street; 0 means unlimited.
	// The big blind counts as the opening wager preflop.
	MaxRaisesPerStreet int
	MaxPlayers         int
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	switch c.Mode {
	case Limit, NoLimit, PotLimit:
	default:
		return fmt.Errorf("invalid betting mode %q", c.Mode)
	}
	if c.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive, got %d", c.SmallBlind)
	}
	if c.BigBlind < c.SmallBlind {
		return fmt.Errorf("big blind %d below small blind %d", c.BigBlind, c.SmallBlind)
	}
	if c.Mode == Limit {
		if c.SmallBet <= 0 || c.BigBet < c.SmallBet {
			return fmt.Errorf("limit play needs small bet > 0 and big bet >= small bet, got %d/%d", c.SmallBet, c.BigBet)
		}
	}
	if c.Ante < 0 {
		return fmt.Errorf("ante must not be negative, got %d", c.Ante)
	}
	if c.MaxRaisesPerStreet < 0 {
		return fmt.Errorf("max raises per street must not be negative, got %d", c.MaxRaisesPerStreet)
	}
	if c.MaxPlayers != 0 && (c.MaxPlayers < 2 || c.MaxPlayers > 8) {
		return fmt.Errorf("max players must be between 2 and 8, got %d", c.MaxPlayers)
	}
	return nil
}

// fixedBet returns the Limit wager size for a street.
func (c Config) fixedBet(street Street) int {
	if street == Turn || street == River {
		return c.BigBet
	}
	return c.SmallBet
}

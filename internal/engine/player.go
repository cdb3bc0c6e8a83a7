package engine

import "github.com/agentfelt/agentfelt/internal/deck"

// PlayerState is one player's state within a hand.
type PlayerState struct {
	ID        string
	Seat      int
	Chips     int
	HoleCards []deck.Card
	// CurrentBet is the amount wagered on this street only.
	CurrentBet int
	// TotalBet is the amount committed across all streets, antes included.
	TotalBet int
	Folded   bool
	// Acted reports whether the player has responded to the current wager.
	// A full bet or raise clears it for everyone else; a short all-in
	// does not, which is what removes their re-raise rights.
	Acted bool
	AllIn bool
}

// CanAct reports whether the player can still take actions this street.
func (p *PlayerState) CanAct() bool {
	return !p.Folded && !p.AllIn
}

// InHand reports whether the player still contests the pot.
func (p *PlayerState) InHand() bool {
	return !p.Folded
}

// Clone returns a deep copy of the player state.
func (p *PlayerState) Clone() *PlayerState {
	cp := *p
	cp.HoleCards = make([]deck.Card, len(p.HoleCards))
	copy(cp.HoleCards, p.HoleCards)
	return &cp
}

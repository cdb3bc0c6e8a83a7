package engine

import "github.com/agentfelt/agentfelt/internal/deck"

// Street represents the betting round.
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	return [...]string{"preflop", "flop", "turn", "river", "showdown"}[s]
}

// MarshalText encodes the street name for event payloads.
func (s Street) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ActionType is a player action kind.
type ActionType string

const (
	Fold  ActionType = "FOLD"
	Check ActionType = "CHECK"
	Call  ActionType = "CALL"
	Bet   ActionType = "BET"
	Raise ActionType = "RAISE"
)

// Action is a requested player action. Amount is the chips moved from the
// player's stack by this action; it is ignored for fold, check and call.
type Action struct {
	Type   ActionType
	Amount int
}

// ActionRanges gives the legal wager bounds for the player to act,
// as chips moved from their stack. A raise amount includes the call
// portion. An all-in below the minimum is always permitted.
type ActionRanges struct {
	MinBet   int
	MaxBet   int
	MinRaise int
	MaxRaise int
}

// Result summarizes a completed hand.
type Result struct {
	Winners []string `json:"winners"`
	// PotDistribution maps player id to total chips won across pots.
	PotDistribution map[string]int `json:"pot_distribution"`
	// HandRankings maps player id to a hand description for every player
	// evaluated at showdown. Empty on a fold-win.
	HandRankings map[string]string `json:"hand_rankings"`
}

// GameState is the full state of one hand. It is a value: Apply never
// mutates its input and returns a fresh, fully independent copy, so a held
// snapshot is safe for history and replay.
type GameState struct {
	HandID     string
	Config     Config
	Street     Street
	Players    []*PlayerState
	DealerSeat int
	// ActiveSeat is the seat due to act, or NoSeat.
	ActiveSeat     int
	CommunityCards []deck.Card
	// Deck is hidden from external views by the protocol layer.
	Deck *deck.Deck
	Pots []Pot
	// BetsThisStreet counts wagers this street; the big blind counts as
	// the preflop opener, which is what the Limit raise cap measures.
	BetsThisStreet int
	// LastRaiseSize is the size of the last full raise increment,
	// resetting to the big blind on each new street.
	LastRaiseSize int
	Complete      bool
	Winners       []string
	Summary       *Result

	// seq numbers the events emitted for this hand.
	seq int
}

// Clone returns a deep copy sharing no mutable state with the original.
func (g *GameState) Clone() *GameState {
	cp := *g

	cp.Players = make([]*PlayerState, len(g.Players))
	for i, p := range g.Players {
		cp.Players[i] = p.Clone()
	}

	cp.CommunityCards = make([]deck.Card, len(g.CommunityCards))
	copy(cp.CommunityCards, g.CommunityCards)

	if g.Deck != nil {
		cp.Deck = g.Deck.Clone()
	}

	cp.Pots = make([]Pot, len(g.Pots))
	for i, pot := range g.Pots {
		cp.Pots[i] = Pot{Amount: pot.Amount, Eligible: append([]string(nil), pot.Eligible...)}
	}

	cp.Winners = append([]string(nil), g.Winners...)

	if g.Summary != nil {
		sum := Result{
			Winners:         append([]string(nil), g.Summary.Winners...),
			PotDistribution: make(map[string]int, len(g.Summary.PotDistribution)),
			HandRankings:    make(map[string]string, len(g.Summary.HandRankings)),
		}
		for k, v := range g.Summary.PotDistribution {
			sum.PotDistribution[k] = v
		}
		for k, v := range g.Summary.HandRankings {
			sum.HandRankings[k] = v
		}
		cp.Summary = &sum
	}

	return &cp
}

// Player returns the player with the given id, or nil.
func (g *GameState) Player(id string) *PlayerState {
	return playerByID(g.Players, id)
}

// ActivePlayer returns the player due to act, or nil.
func (g *GameState) ActivePlayer() *PlayerState {
	if g.ActiveSeat == NoSeat {
		return nil
	}
	return playerAt(g.Players, g.ActiveSeat)
}

// PotTotal returns the chips across all pots.
func (g *GameState) PotTotal() int {
	return PotTotal(g.Pots)
}

// highestBet returns the largest current-street wager.
func (g *GameState) highestBet() int {
	high := 0
	for _, p := range g.Players {
		if p.CurrentBet > high {
			high = p.CurrentBet
		}
	}
	return high
}

// toCall returns the chips the player owes to match the current wager.
func (g *GameState) toCall(p *PlayerState) int {
	owed := g.highestBet() - p.CurrentBet
	if owed < 0 {
		return 0
	}
	return owed
}

// inHandCount returns how many players still contest the pot.
func (g *GameState) inHandCount() int {
	n := 0
	for _, p := range g.Players {
		if p.InHand() {
			n++
		}
	}
	return n
}

// nextSeq allocates the next event sequence number.
func (g *GameState) nextSeq() eventMeta {
	g.seq++
	return eventMeta{Hand: g.HandID, Sequence: g.seq}
}

// raiseCapReached reports whether the per-street wager cap is exhausted.
func (g *GameState) raiseCapReached() bool {
	return g.Config.MaxRaisesPerStreet > 0 && g.BetsThisStreet >= g.Config.MaxRaisesPerStreet
}

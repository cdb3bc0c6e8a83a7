// Package engine implements the deterministic betting state machine for
// Limit, No-Limit and Pot-Limit hold'em hands.
//
// The engine is pure: NewHand and Apply are functions from inputs to a
// fresh GameState plus an ordered event slice. Apply never mutates its
// input state, so the caller always holds an untouched snapshot if an
// action fails partway through validation.
package engine

import (
	"github.com/agentfelt/agentfelt/internal/deck"
	"github.com/agentfelt/agentfelt/internal/randutil"
)

// HandPlayer describes one entrant when a hand is created.
type HandPlayer struct {
	ID    string
	Seat  int
	Chips int
}

// HandOption customizes hand creation.
type HandOption func(*handOptions)

type handOptions struct {
	deck *deck.Deck
}

// WithDeck supplies a pre-built deck and skips shuffling. Tests use it to
// rig boards and hole cards.
func WithDeck(d *deck.Deck) HandOption {
	return func(o *handOptions) { o.deck = d }
}

// NewHand creates the initial state for a hand: shuffles and deals hole
// cards, collects antes and blinds, and determines the first player to
// act. The returned events open the hand's stream in strict order:
// HAND_START, ANTES_POSTED (if any ante), BLINDS_POSTED, HOLE_CARDS_DEALT.
func NewHand(handID string, entrants []HandPlayer, dealerSeat int, rng randutil.RNG, cfg Config, opts ...HandOption) (*GameState, []Event, error) {
	var o handOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, Errorf(CodeInvalidHandSetup, "invalid config: %v", err)
	}
	if len(entrants) < 2 || len(entrants) > 8 {
		return nil, nil, Errorf(CodeInvalidHandSetup, "need 2-8 players, got %d", len(entrants))
	}
	if cfg.MaxPlayers > 0 && len(entrants) > cfg.MaxPlayers {
		return nil, nil, Errorf(CodeInvalidHandSetup, "%d players exceeds table max %d", len(entrants), cfg.MaxPlayers)
	}

	players := make([]*PlayerState, 0, len(entrants))
	seats := make(map[int]bool, len(entrants))
	ids := make(map[string]bool, len(entrants))
	for _, e := range entrants {
		if e.Chips <= 0 {
			return nil, nil, Errorf(CodeInvalidHandSetup, "player %s has no chips", e.ID)
		}
		if seats[e.Seat] {
			return nil, nil, Errorf(CodeInvalidHandSetup, "duplicate seat %d", e.Seat)
		}
		if ids[e.ID] {
			return nil, nil, Errorf(CodeInvalidHandSetup, "duplicate player id %s", e.ID)
		}
		seats[e.Seat] = true
		ids[e.ID] = true
		players = append(players, &PlayerState{ID: e.ID, Seat: e.Seat, Chips: e.Chips})
	}
	if !seats[dealerSeat] {
		return nil, nil, Errorf(CodeInvalidHandSetup, "dealer seat %d is not occupied", dealerSeat)
	}

	d := o.deck
	if d == nil {
		d = deck.New(rng)
		d.Shuffle()
	}

	g := &GameState{
		HandID:        handID,
		Config:        cfg,
		Street:        Preflop,
		Players:       players,
		DealerSeat:    dealerSeat,
		Deck:          d,
		Pots:          []Pot{{}},
		LastRaiseSize: cfg.BigBlind,
	}

	var events []Event

	positions := AssignPositions(players, dealerSeat)
	start := HandStartEvent{
		eventMeta:  g.nextSeq(),
		DealerSeat: dealerSeat,
		Mode:       cfg.Mode,
		SmallBlind: cfg.SmallBlind,
		BigBlind:   cfg.BigBlind,
		Ante:       cfg.Ante,
	}
	for _, p := range clockwiseFrom(players, dealerSeat) {
		start.Players = append(start.Players, SeatInfo{
			PlayerID: p.ID,
			Seat:     p.Seat,
			Chips:    p.Chips,
			Position: positions[p.Seat],
		})
	}
	events = append(events, start)

	// Antes are dead money: counted toward the hand total but not the
	// street wager, so they never reduce an amount to call.
	if cfg.Ante > 0 {
		posted := make(map[string]int, len(players))
		for _, p := range clockwiseFrom(players, dealerSeat) {
			a := min(cfg.Ante, p.Chips)
			p.Chips -= a
			p.TotalBet += a
			g.Pots[0].Amount += a
			if p.Chips == 0 {
				p.AllIn = true
			}
			posted[p.ID] = a
		}
		events = append(events, AntesPostedEvent{eventMeta: g.nextSeq(), Posted: posted})
	}

	sbSeat, bbSeat := BlindSeats(players, dealerSeat)
	sb := playerAt(players, sbSeat)
	bb := playerAt(players, bbSeat)
	postBlind(g, sb, cfg.SmallBlind)
	postBlind(g, bb, cfg.BigBlind)
	events = append(events, BlindsPostedEvent{
		eventMeta:        g.nextSeq(),
		SmallBlindID:     sb.ID,
		SmallBlindAmount: sb.CurrentBet,
		BigBlindID:       bb.ID,
		BigBlindAmount:   bb.CurrentBet,
	})

	// Two cards each, dealt clockwise starting left of the dealer.
	cards := make(map[string][]deck.Card, len(players))
	for _, p := range clockwiseFrom(players, dealerSeat) {
		p.HoleCards = g.Deck.Deal(2)
		cards[p.ID] = p.HoleCards
	}
	events = append(events, HoleCardsDealtEvent{eventMeta: g.nextSeq(), Cards: cards})

	for _, p := range players {
		g.Pots[0].Eligible = append(g.Pots[0].Eligible, p.ID)
	}
	sortEligibleBySeat(g.Pots[0].Eligible, players)

	// The big blind is the opening wager, which is what the Limit raise
	// cap counts against.
	g.BetsThisStreet = 1
	g.ActiveSeat = FirstToActPreflop(players, bbSeat)

	// Blinds and antes can put every player all-in before any action;
	// the hand then runs out on its own.
	if g.ActiveSeat == NoSeat {
		advanceStreet(g, &events)
	}

	return g, events, nil
}

func postBlind(g *GameState, p *PlayerState, blind int) {
	amt := min(blind, p.Chips)
	p.Chips -= amt
	p.CurrentBet = amt
	p.TotalBet += amt
	g.Pots[0].Amount += amt
	if p.Chips == 0 {
		p.AllIn = true
	}
}

// clockwiseFrom orders the players starting at the first seat after start.
func clockwiseFrom(players []*PlayerState, start int) []*PlayerState {
	ordered := make([]*PlayerState, 0, len(players))
	seat := start
	for range players {
		seat = seatAfter(players, seat)
		ordered = append(ordered, playerAt(players, seat))
	}
	return ordered
}

// LegalActions returns the action types available to the player due to
// act. It is empty exactly when the hand is complete.
func LegalActions(g *GameState) []ActionType {
	if g.Complete {
		return nil
	}
	p := g.ActivePlayer()
	if p == nil {
		return nil
	}

	actions := []ActionType{Fold}
	owed := g.toCall(p)
	if owed == 0 {
		actions = append(actions, Check)
		if !g.raiseCapReached() && p.Chips > 0 {
			actions = append(actions, Bet)
		}
	} else {
		// A covered player may always call all-in for less.
		actions = append(actions, Call)
		// Acted players facing an unmatched wager got there via a short
		// all-in, which does not reopen raising rights.
		if !g.raiseCapReached() && p.Chips > owed && !p.Acted {
			actions = append(actions, Raise)
		}
	}
	return actions
}

// Ranges returns the wager bounds for the player to act, per betting
// mode. All amounts are chips moved from the player's stack; a raise
// includes the call portion. Going all-in below a minimum is always
// legal, but such a short all-in does not reopen the action.
func Ranges(g *GameState) ActionRanges {
	p := g.ActivePlayer()
	if p == nil || g.Complete {
		return ActionRanges{}
	}

	owed := g.toCall(p)
	pot := g.PotTotal()
	var r ActionRanges

	switch g.Config.Mode {
	case Limit:
		fixed := g.Config.fixedBet(g.Street)
		r.MinBet = min(fixed, p.Chips)
		r.MaxBet = r.MinBet
		r.MinRaise = min(owed+fixed, p.Chips)
		r.MaxRaise = r.MinRaise
	case NoLimit:
		r.MinBet = min(g.Config.BigBlind, p.Chips)
		r.MaxBet = p.Chips
		r.MinRaise = min(owed+max(g.LastRaiseSize, g.Config.BigBlind), p.Chips)
		r.MaxRaise = p.Chips
	case PotLimit:
		r.MinBet = min(g.Config.BigBlind, p.Chips)
		r.MaxBet = min(pot, p.Chips)
		if r.MaxBet < r.MinBet {
			r.MaxBet = r.MinBet
		}
		r.MinRaise = min(owed+max(g.LastRaiseSize, g.Config.BigBlind), p.Chips)
		r.MaxRaise = min(owed+(pot+owed), p.Chips)
	}
	return r
}

// Apply validates and applies one player action, returning a fresh state
// and the events the action produced. The input state is never mutated.
func Apply(state *GameState, playerID string, action Action) (*GameState, []Event, error) {
	if state.Complete {
		return nil, nil, Errorf(CodeHandComplete, "hand %s is complete", state.HandID)
	}

	g := state.Clone()
	p := g.Player(playerID)
	if p == nil {
		return nil, nil, Errorf(CodeUnknownPlayer, "player %s is not in hand %s", playerID, g.HandID)
	}
	if p.Seat != g.ActiveSeat {
		return nil, nil, Errorf(CodeNotYourTurn, "seat %d is due to act, not %s", g.ActiveSeat, playerID)
	}

	legal := LegalActions(g)
	if !containsAction(legal, action.Type) {
		if (action.Type == Bet || action.Type == Raise) && g.raiseCapReached() {
			return nil, nil, Errorf(CodeRaiseCapReached, "street wager cap of %d reached", g.Config.MaxRaisesPerStreet)
		}
		return nil, nil, Errorf(CodeInvalidAction, "%s is not legal for %s", action.Type, playerID)
	}

	var events []Event
	owed := g.toCall(p)

	switch action.Type {
	case Fold:
		p.Folded = true
		p.Acted = true
		removeEligible(g, p.ID)
		events = append(events, actionEvent(g, p, Fold, 0))
		if g.inHandCount() == 1 {
			finishFoldWin(g, &events)
			return g, events, nil
		}

	case Check:
		p.Acted = true
		events = append(events, actionEvent(g, p, Check, 0))

	case Call:
		pay := min(owed, p.Chips)
		moveChips(g, p, pay)
		p.Acted = true
		events = append(events, actionEvent(g, p, Call, pay))

	case Bet, Raise:
		if err := applyWager(g, p, action, &events); err != nil {
			return nil, nil, err
		}
	}

	if !g.Complete {
		if roundComplete(g) {
			advanceStreet(g, &events)
		} else {
			g.ActiveSeat = NextActiveSeat(g.Players, p.Seat)
			if g.ActiveSeat == NoSeat {
				// Everyone left in the hand is all-in.
				advanceStreet(g, &events)
			}
		}
	}

	return g, events, nil
}

// applyWager validates and applies a BET or RAISE.
func applyWager(g *GameState, p *PlayerState, action Action, events *[]Event) error {
	amount := action.Amount
	owed := g.toCall(p)
	r := Ranges(g)

	lo, hi := r.MinBet, r.MaxBet
	if action.Type == Raise {
		lo, hi = r.MinRaise, r.MaxRaise
	}

	if amount <= 0 || amount > p.Chips {
		return Errorf(CodeInvalidAction, "wager %d outside stack of %d", amount, p.Chips)
	}
	if action.Type == Raise && amount <= owed {
		return Errorf(CodeInvalidAction, "raise of %d does not exceed call of %d", amount, owed)
	}
	if amount > hi {
		return Errorf(CodeInvalidAction, "wager %d above maximum %d", amount, hi)
	}
	// Below the minimum is legal only as an all-in for the whole stack.
	if amount < lo && amount != p.Chips {
		return Errorf(CodeInvalidAction, "wager %d below minimum %d", amount, lo)
	}

	prevHigh := g.highestBet()
	moveChips(g, p, amount)
	p.Acted = true
	g.BetsThisStreet++

	// A full bet or raise reopens the action; a short all-in does not,
	// so players who already matched the prior wager keep their acted
	// flag and with it lose re-raise rights.
	increment := p.CurrentBet - prevHigh
	required := max(g.LastRaiseSize, g.Config.BigBlind)
	if g.Config.Mode == Limit {
		required = g.Config.fixedBet(g.Street)
	}
	if action.Type == Bet && g.Street != Preflop {
		// An opening bet is measured against the minimum bet, not a
		// previous raise increment.
		required = r.MinBet
	}
	if increment >= required {
		g.LastRaiseSize = increment
		for _, q := range g.Players {
			if q != p && q.CanAct() {
				q.Acted = false
			}
		}
	}

	*events = append(*events, actionEvent(g, p, action.Type, amount))
	return nil
}

// moveChips transfers chips from the player's stack into the live pot.
func moveChips(g *GameState, p *PlayerState, amount int) {
	p.Chips -= amount
	p.CurrentBet += amount
	p.TotalBet += amount
	g.Pots[0].Amount += amount
	if p.Chips == 0 {
		p.AllIn = true
	}
}

func actionEvent(g *GameState, p *PlayerState, t ActionType, amount int) PlayerActionEvent {
	return PlayerActionEvent{
		eventMeta: g.nextSeq(),
		PlayerID:  p.ID,
		Action:    t,
		Amount:    amount,
		Street:    g.Street,
		PotAfter:  g.PotTotal(),
		AllIn:     p.AllIn,
	}
}

// roundComplete reports whether the betting round is settled: every
// player who can still act has responded to the current wager and
// matched it.
func roundComplete(g *GameState) bool {
	high := g.highestBet()
	for _, p := range g.Players {
		if !p.CanAct() {
			continue
		}
		if !p.Acted || p.CurrentBet != high {
			return false
		}
	}
	return true
}

// advanceStreet deals the next street and resets the betting round,
// running through further streets when nobody is left to act, and
// settling at showdown after the river.
func advanceStreet(g *GameState, events *[]Event) {
	for {
		if g.Street == River {
			finishShowdown(g, events)
			return
		}

		g.Street++
		var dealt []deck.Card
		if g.Street == Flop {
			dealt = g.Deck.Deal(3)
		} else {
			dealt = g.Deck.Deal(1)
		}
		g.CommunityCards = append(g.CommunityCards, dealt...)

		for _, p := range g.Players {
			p.CurrentBet = 0
			p.Acted = false
		}
		g.BetsThisStreet = 0
		g.LastRaiseSize = g.Config.BigBlind
		g.ActiveSeat = FirstToActPostflop(g.Players, g.DealerSeat)

		board := append([]deck.Card(nil), g.CommunityCards...)
		*events = append(*events, CommunityCardsEvent{
			eventMeta: g.nextSeq(),
			Street:    g.Street,
			Cards:     dealt,
			Board:     board,
		})
		*events = append(*events, StreetChangedEvent{
			eventMeta:  g.nextSeq(),
			Street:     g.Street,
			FirstToAct: g.ActiveSeat,
			PotTotal:   g.PotTotal(),
		})

		if g.ActiveSeat != NoSeat {
			return
		}
	}
}

// finishFoldWin completes a hand where exactly one player remains: the
// survivor takes every pot without a showdown.
func finishFoldWin(g *GameState, events *[]Event) {
	var winner *PlayerState
	for _, p := range g.Players {
		if p.InHand() {
			winner = p
			break
		}
	}

	total := g.PotTotal()
	winner.Chips += total
	for i := range g.Pots {
		g.Pots[i].Amount = 0
	}

	g.Complete = true
	g.ActiveSeat = NoSeat
	g.Winners = []string{winner.ID}
	g.Summary = &Result{
		Winners:         []string{winner.ID},
		PotDistribution: map[string]int{winner.ID: total},
		HandRankings:    map[string]string{},
	}

	*events = append(*events, PotDistributedEvent{
		eventMeta: g.nextSeq(),
		PotIndex:  0,
		Amount:    total,
		Shares:    map[string]int{winner.ID: total},
	})
	*events = append(*events, HandEndEvent{
		eventMeta: g.nextSeq(),
		Winners:   append([]string(nil), g.Winners...),
		Summary:   g.Summary,
	})
}

func removeEligible(g *GameState, id string) {
	for i := range g.Pots {
		el := g.Pots[i].Eligible
		for j, e := range el {
			if e == id {
				g.Pots[i].Eligible = append(el[:j], el[j+1:]...)
				break
			}
		}
	}
}

func containsAction(actions []ActionType, t ActionType) bool {
	for _, a := range actions {
		if a == t {
			return true
		}
	}
	return false
}

// Package table implements the per-table session actor: it owns a seat
// roster and at most one live hand, serializes all access behind a single
// mutex, and layers idempotency, replay protection and timeout-driven
// liveness on top of the pure betting engine.
package table

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/agentfelt/agentfelt/internal/engine"
	"github.com/agentfelt/agentfelt/internal/randutil"
)

// Seat is one roster entry. Leaving soft-marks the seat; the index is
// reclaimed when the next hand starts.
type Seat struct {
	AgentID string
	Token   string
	Seat    int
	Chips   int
	Left    bool
}

// ActionResult is the outcome of a processed action. A retried request
// returns the identical cached result with AlreadyProcessed set.
type ActionResult struct {
	AlreadyProcessed bool
	State            *engine.GameState
	Events           []engine.Event
	HandComplete     bool
}

// Table is the session actor for one table. All exported methods are safe
// for concurrent use; a single mutex serializes hand processing so no two
// actions for the same table are ever applied concurrently. Distinct
// tables share nothing and run fully in parallel.
type Table struct {
	id      string
	cfg     Config
	logger  *log.Logger
	clock   quartz.Clock
	auditor Auditor
	ledger  Ledger

	mu          sync.Mutex
	seats       map[int]*Seat
	state       *engine.GameState
	handSeed    int64
	handStarted time.Time
	handEvents  []engine.Event
	handStacks  map[string]int
	handsPlayed int
	seedCalls   uint64
	dealerSeat  int
	lastSeq     map[string]uint64
	idem        map[string]*ActionResult
	timer       *quartz.Timer
	timerGen    int
	hist        history
	closed      bool
}

// Option customizes a table actor.
type Option func(*Table)

// WithClock substitutes the clock; tests pass quartz.NewMock.
func WithClock(c quartz.Clock) Option {
	return func(t *Table) { t.clock = c }
}

// WithAuditor registers the audit collaborator.
func WithAuditor(a Auditor) Option {
	return func(t *Table) { t.auditor = a }
}

// WithLedger registers the chip ledger collaborator.
func WithLedger(l Ledger) Option {
	return func(t *Table) { t.ledger = l }
}

// New creates a table actor.
func New(id string, cfg Config, logger *log.Logger, opts ...Option) *Table {
	t := &Table{
		id:         id,
		cfg:        cfg,
		logger:     logger.WithPrefix("table").With("table", id),
		clock:      quartz.NewReal(),
		auditor:    NopAuditor{},
		ledger:     NopLedger{},
		seats:      make(map[int]*Seat),
		dealerSeat: engine.NoSeat,
		lastSeq:    make(map[string]uint64),
		idem:       make(map[string]*ActionResult),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ID returns the table identifier.
func (t *Table) ID() string { return t.id }

// AddSeat seats an agent with the given buy-in. Token verification is the
// caller's responsibility; the token is only stored with the seat.
func (t *Table) AddSeat(agentID, token string, buyIn int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return engine.Errorf(engine.CodeTableClosed, "table %s is closed", t.id)
	}
	for _, s := range t.seats {
		if s.AgentID == agentID && !s.Left {
			return engine.Errorf(engine.CodeAlreadySeated, "agent %s already seated at table %s", agentID, t.id)
		}
	}

	seat := t.freeSeatLocked()
	if seat == engine.NoSeat {
		return engine.Errorf(engine.CodeTableFull, "table %s has no free seats", t.id)
	}

	t.seats[seat] = &Seat{AgentID: agentID, Token: token, Seat: seat, Chips: buyIn}
	t.logger.Info("agent seated", "agent", agentID, "seat", seat, "buy_in", buyIn)
	return nil
}

func (t *Table) freeSeatLocked() int {
	for seat := 0; seat < t.cfg.MaxPlayers; seat++ {
		if _, taken := t.seats[seat]; !taken {
			return seat
		}
	}
	return engine.NoSeat
}

// RemoveSeat soft-marks an agent's seat as left. A hand in progress keeps
// the player's state; the inactivity timeout folds them out if they stop
// responding.
func (t *Table) RemoveSeat(agentID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range t.seats {
		if s.AgentID == agentID && !s.Left {
			s.Left = true
			t.logger.Info("agent left", "agent", agentID, "seat", s.Seat)
			return nil
		}
	}
	return engine.Errorf(engine.CodeUnknownPlayer, "agent %s is not seated at table %s", agentID, t.id)
}

// CanStartHand reports whether a new hand can begin: no hand in progress
// and at least two seated players holding chips.
func (t *Table) CanStartHand() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canStartLocked()
}

func (t *Table) canStartLocked() bool {
	if t.closed || t.state != nil {
		return false
	}
	n := 0
	for _, s := range t.seats {
		if !s.Left && s.Chips > 0 {
			n++
		}
	}
	return n >= 2
}

// StartHand begins a new hand: it derives a fresh deterministic seed,
// delegates to the engine, clears the idempotency cache and arms the
// inactivity timer. The seed is retained for the audit collaborator.
func (t *Table) StartHand() (*engine.GameState, []engine.Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, nil, engine.Errorf(engine.CodeTableClosed, "table %s is closed", t.id)
	}
	if t.state != nil {
		return nil, nil, engine.Errorf(engine.CodeCannotStartHand, "hand %s still in progress", t.state.HandID)
	}

	// Left seats are reclaimed between hands.
	for seat, s := range t.seats {
		if s.Left {
			delete(t.seats, seat)
		}
	}

	var entrants []engine.HandPlayer
	for _, s := range t.seats {
		if s.Chips > 0 {
			entrants = append(entrants, engine.HandPlayer{ID: s.AgentID, Seat: s.Seat, Chips: s.Chips})
		}
	}
	sort.Slice(entrants, func(i, j int) bool { return entrants[i].Seat < entrants[j].Seat })
	if len(entrants) < 2 {
		return nil, nil, engine.Errorf(engine.CodeCannotStartHand, "need 2 players with chips, have %d", len(entrants))
	}

	if !t.validDealerLocked(entrants) {
		t.dealerSeat = entrants[0].Seat
	}

	t.stopTimerLocked()

	// The seed is a pure function of table identity and the actor's
	// monotonic counters, so a replay harness can re-derive it.
	t.seedCalls++
	seed := randutil.SeedFrom(t.id, strconv.Itoa(t.handsPlayed), strconv.FormatUint(t.seedCalls, 10))
	rng := randutil.New(seed)

	handID := fmt.Sprintf("%s-h%d", t.id, t.handsPlayed+1)
	state, events, err := engine.NewHand(handID, entrants, t.dealerSeat, rng, t.cfg.EngineConfig())
	if err != nil {
		return nil, nil, err
	}

	t.state = state
	t.handSeed = seed
	t.handStarted = t.clock.Now()
	t.handEvents = append([]engine.Event(nil), events...)
	t.handStacks = make(map[string]int, len(entrants))
	for _, e := range entrants {
		t.handStacks[e.ID] = e.Chips
	}
	t.idem = make(map[string]*ActionResult)

	t.logger.Info("hand started",
		"hand", handID,
		"players", len(entrants),
		"dealer_seat", t.dealerSeat,
		"seed", seed)

	// Forced blinds can complete a hand with no actions at all.
	if state.Complete {
		t.completeHandLocked()
	} else {
		t.armTimerLocked()
	}

	return state, events, nil
}

func (t *Table) validDealerLocked(entrants []engine.HandPlayer) bool {
	for _, e := range entrants {
		if e.Seat == t.dealerSeat {
			return true
		}
	}
	return false
}

// ProcessAction routes one agent action through idempotency and replay
// checks into the engine. requestID and seq are optional: an empty
// requestID skips the idempotency cache, a zero seq skips replay
// protection.
func (t *Table) ProcessAction(agentID string, action engine.Action, requestID string, seq uint64) (*ActionResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.processLocked(agentID, action, requestID, seq)
}

func (t *Table) processLocked(agentID string, action engine.Action, requestID string, seq uint64) (*ActionResult, error) {
	if t.closed {
		return nil, engine.Errorf(engine.CodeTableClosed, "table %s is closed", t.id)
	}

	// A retried request must have at most one effect: return the cached
	// outcome without re-executing anything.
	if requestID != "" {
		if cached, ok := t.idem[requestID]; ok {
			out := *cached
			out.AlreadyProcessed = true
			return &out, nil
		}
	}

	// The per-agent sequence is monotonic for the lifetime of the table,
	// not per hand; a stale sequence signals protocol abuse and must not
	// touch any state.
	if seq > 0 && seq <= t.lastSeq[agentID] {
		return nil, engine.Errorf(engine.CodeReplayDetected,
			"seq %d from %s not above high-water mark %d", seq, agentID, t.lastSeq[agentID])
	}

	if t.state == nil {
		return nil, engine.Errorf(engine.CodeHandComplete, "no hand in progress at table %s", t.id)
	}

	state, events, err := engine.Apply(t.state, agentID, action)
	if err != nil {
		return nil, err
	}

	if seq > 0 {
		t.lastSeq[agentID] = seq
	}
	t.state = state
	t.handEvents = append(t.handEvents, events...)

	res := &ActionResult{
		State:        state,
		Events:       events,
		HandComplete: state.Complete,
	}
	if requestID != "" {
		t.idem[requestID] = res
	}

	if state.Complete {
		t.completeHandLocked()
	} else {
		t.armTimerLocked()
	}
	return res, nil
}

// completeHandLocked folds a finished hand back into the roster: final
// chips are copied out, the dealer rotates among chip-holding seats, a
// bounded history record is appended and collaborators are notified
// without blocking the table.
func (t *Table) completeHandLocked() {
	t.stopTimerLocked()
	state := t.state

	deltas := make(map[string]int, len(state.Players))
	for _, p := range state.Players {
		deltas[p.ID] = p.Chips - t.handStacks[p.ID]
		for _, s := range t.seats {
			if s.AgentID == p.ID {
				s.Chips = p.Chips
			}
		}
	}

	chips := make(map[int]int, len(t.seats))
	for seat, s := range t.seats {
		if !s.Left {
			chips[seat] = s.Chips
		}
	}
	if next := engine.AdvanceDealer(chips, t.dealerSeat); next != engine.NoSeat {
		t.dealerSeat = next
	}

	t.handsPlayed++
	rec := HandRecord{
		HandID:     state.HandID,
		Seed:       t.handSeed,
		StartedAt:  t.handStarted,
		EndedAt:    t.clock.Now(),
		Winners:    append([]string(nil), state.Winners...),
		ChipDeltas: deltas,
		Events:     t.handEvents,
	}
	t.hist.append(rec)

	t.logger.Info("hand complete",
		"hand", state.HandID,
		"winners", state.Winners,
		"hands_played", t.handsPlayed)

	// Collaborator I/O is fire-and-forget; it must never block or fail
	// the table.
	auditor, ledger := t.auditor, t.ledger
	events := rec.Events
	seed := t.handSeed
	handID := state.HandID
	tableID := t.id
	logger := t.logger
	go func() {
		auditor.HandCompleted(tableID, handID, seed, events)
		for agent, delta := range deltas {
			ref := handID + ":" + agent
			var err error
			switch {
			case delta < 0:
				err = ledger.Transfer(ref, agent, "pot:"+tableID, -delta, "hand loss")
			case delta > 0:
				err = ledger.Transfer(ref, "pot:"+tableID, agent, delta, "hand winnings")
			}
			if err != nil {
				logger.Error("ledger transfer failed", "hand", handID, "agent", agent, "error", err)
			}
		}
	}()

	t.state = nil
	t.handEvents = nil
	t.handStacks = nil
}

// armTimerLocked (re)arms the inactivity timer for the seat due to act.
func (t *Table) armTimerLocked() {
	t.stopTimerLocked()
	if t.closed || t.state == nil || t.state.ActiveSeat == engine.NoSeat {
		return
	}
	t.timerGen++
	gen := t.timerGen
	t.timer = t.clock.AfterFunc(t.cfg.Timeout(), func() {
		t.onTimeout(gen)
	})
}

func (t *Table) stopTimerLocked() {
	t.timerGen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// onTimeout acts for a stalled seat: it synthesizes CHECK when legal and
// FOLD otherwise, and routes it through the normal action pipeline so
// hands always terminate even with unresponsive agents.
func (t *Table) onTimeout(gen int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.timerGen != gen || t.state == nil || t.state.Complete {
		return
	}
	p := t.state.ActivePlayer()
	if p == nil {
		return
	}

	action := engine.Action{Type: engine.Fold}
	for _, a := range engine.LegalActions(t.state) {
		if a == engine.Check {
			action = engine.Action{Type: engine.Check}
			break
		}
	}

	t.logger.Warn("action timeout, acting for stalled seat",
		"hand", t.state.HandID,
		"agent", p.ID,
		"action", action.Type)

	requestID := fmt.Sprintf("timeout-%s-%d", t.state.HandID, len(t.handEvents))
	if _, err := t.processLocked(p.ID, action, requestID, 0); err != nil {
		t.logger.Error("timeout action failed", "agent", p.ID, "error", err)
	}
}

// State returns a snapshot of the current hand, or nil between hands.
// The snapshot is independent of the live state. Redacting hole cards and
// the deck for non-owners is the protocol layer's job.
func (t *Table) State() *engine.GameState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == nil {
		return nil
	}
	return t.state.Clone()
}

// Seats returns a copy of the roster ordered by seat index.
func (t *Table) Seats() []Seat {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Seat, 0, len(t.seats))
	for _, s := range t.seats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seat < out[j].Seat })
	return out
}

// History returns the retained hand records, oldest first.
func (t *Table) History() []HandRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hist.Records()
}

// HandsPlayed returns the number of completed hands.
func (t *Table) HandsPlayed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handsPlayed
}

// Close shuts the table down. It is idempotent: timers are cancelled and
// every subsequent call is a no-op.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.stopTimerLocked()
	t.closed = true
	t.logger.Info("table closed", "hands_played", t.handsPlayed)
}

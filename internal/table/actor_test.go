package table

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentfelt/agentfelt/internal/engine"
)

func testConfig() Config {
	return Config{
		Name:          "t1",
		Mode:          string(engine.NoLimit),
		SmallBlind:    1,
		BigBlind:      2,
		MaxPlayers:    4,
		BuyIn:         200,
		ActionTimeout: 30,
	}
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// newTestTable seats alice (seat 0) and bob (seat 1) with 100 chips each.
func newTestTable(t *testing.T, opts ...Option) *Table {
	t.Helper()
	tbl := New("t1", testConfig(), testLogger(), opts...)
	require.NoError(t, tbl.AddSeat("alice", "tok-a", 100))
	require.NoError(t, tbl.AddSeat("bob", "tok-b", 100))
	return tbl
}

func TestAddSeat(t *testing.T) {
	t.Parallel()

	tbl := New("t1", testConfig(), testLogger())
	require.NoError(t, tbl.AddSeat("alice", "tok", 100))

	err := tbl.AddSeat("alice", "tok", 100)
	require.Error(t, err)
	assert.Equal(t, engine.CodeAlreadySeated, engine.CodeOf(err))

	require.NoError(t, tbl.AddSeat("bob", "tok", 100))
	require.NoError(t, tbl.AddSeat("carol", "tok", 100))
	require.NoError(t, tbl.AddSeat("dave", "tok", 100))

	err = tbl.AddSeat("eve", "tok", 100)
	require.Error(t, err)
	assert.Equal(t, engine.CodeTableFull, engine.CodeOf(err))

	seats := tbl.Seats()
	require.Len(t, seats, 4)
	assert.Equal(t, "alice", seats[0].AgentID)
	assert.Equal(t, 0, seats[0].Seat)
	assert.Equal(t, 100, seats[0].Chips)
	assert.Equal(t, "dave", seats[3].AgentID)
}

func TestRemoveSeat(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t)
	require.True(t, tbl.CanStartHand())

	require.NoError(t, tbl.RemoveSeat("bob"))
	assert.False(t, tbl.CanStartHand(), "one player left cannot play")

	err := tbl.RemoveSeat("bob")
	require.Error(t, err)
	assert.Equal(t, engine.CodeUnknownPlayer, engine.CodeOf(err))

	err = tbl.RemoveSeat("ghost")
	require.Error(t, err)
	assert.Equal(t, engine.CodeUnknownPlayer, engine.CodeOf(err))
}

func TestStartHand(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t)

	state, events, err := tbl.StartHand()
	require.NoError(t, err)
	assert.Equal(t, "t1-h1", state.HandID)
	assert.Equal(t, 3, state.PotTotal(), "blinds posted")
	assert.NotEmpty(t, events)

	_, _, err = tbl.StartHand()
	require.Error(t, err, "a second hand cannot start while one is live")
	assert.Equal(t, engine.CodeCannotStartHand, engine.CodeOf(err))
}

func TestStartHandNeedsTwoFundedPlayers(t *testing.T) {
	t.Parallel()

	tbl := New("t1", testConfig(), testLogger())
	require.NoError(t, tbl.AddSeat("alice", "tok", 100))
	assert.False(t, tbl.CanStartHand())

	_, _, err := tbl.StartHand()
	require.Error(t, err)
	assert.Equal(t, engine.CodeCannotStartHand, engine.CodeOf(err))
}

func TestProcessActionIdempotency(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t)
	_, _, err := tbl.StartHand()
	require.NoError(t, err)

	// Alice is the heads-up dealer and acts first.
	res1, err := tbl.ProcessAction("alice", engine.Action{Type: engine.Call}, "req-1", 1)
	require.NoError(t, err)
	assert.False(t, res1.AlreadyProcessed)
	eventsAfterFirst := len(tbl.handEvents)

	// Retrying the same request returns the cached outcome and changes
	// nothing.
	res2, err := tbl.ProcessAction("alice", engine.Action{Type: engine.Call}, "req-1", 1)
	require.NoError(t, err)
	assert.True(t, res2.AlreadyProcessed)
	assert.Same(t, res1.State, res2.State)
	assert.Equal(t, res1.Events, res2.Events)
	assert.Equal(t, eventsAfterFirst, len(tbl.handEvents), "a retry must not append events")
}

func TestProcessActionReplayDetection(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t)
	_, _, err := tbl.StartHand()
	require.NoError(t, err)

	_, err = tbl.ProcessAction("alice", engine.Action{Type: engine.Call}, "req-1", 5)
	require.NoError(t, err)

	// A fresh request with a stale sequence is replay abuse, not a retry.
	_, err = tbl.ProcessAction("alice", engine.Action{Type: engine.Check}, "req-2", 5)
	require.Error(t, err)
	assert.Equal(t, engine.CodeReplayDetected, engine.CodeOf(err))

	_, err = tbl.ProcessAction("alice", engine.Action{Type: engine.Check}, "req-3", 3)
	require.Error(t, err)
	assert.Equal(t, engine.CodeReplayDetected, engine.CodeOf(err))

	// Sequences are per agent: bob's own counter is unaffected.
	_, err = tbl.ProcessAction("bob", engine.Action{Type: engine.Check}, "req-4", 1)
	require.NoError(t, err)
}

func TestIdempotencyCacheClearedBetweenHands(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t)
	_, _, err := tbl.StartHand()
	require.NoError(t, err)

	res, err := tbl.ProcessAction("alice", engine.Action{Type: engine.Fold}, "req-1", 0)
	require.NoError(t, err)
	require.True(t, res.HandComplete)

	_, _, err = tbl.StartHand()
	require.NoError(t, err)

	// The request id from the previous hand is fresh again.
	active := tbl.State().ActivePlayer().ID
	res, err = tbl.ProcessAction(active, engine.Action{Type: engine.Call}, "req-1", 0)
	require.NoError(t, err)
	assert.False(t, res.AlreadyProcessed)
}

func TestHandCompletionUpdatesRoster(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t)
	state, _, err := tbl.StartHand()
	require.NoError(t, err)
	require.Equal(t, 0, state.DealerSeat, "first hand starts at the lowest seat")

	// Alice folds her small blind; bob wins the 3-chip pot.
	res, err := tbl.ProcessAction("alice", engine.Action{Type: engine.Fold}, "req-1", 1)
	require.NoError(t, err)
	require.True(t, res.HandComplete)

	assert.Nil(t, tbl.State(), "no live hand between hands")
	assert.Equal(t, 1, tbl.HandsPlayed())

	seats := tbl.Seats()
	assert.Equal(t, 99, seats[0].Chips)
	assert.Equal(t, 101, seats[1].Chips)

	records := tbl.History()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "t1-h1", rec.HandID)
	assert.Equal(t, []string{"bob"}, rec.Winners)
	assert.Equal(t, map[string]int{"alice": -1, "bob": 1}, rec.ChipDeltas)
	assert.NotEmpty(t, rec.Events)
	assert.NotZero(t, rec.Seed)

	// The button rotates for the next hand.
	state, _, err = tbl.StartHand()
	require.NoError(t, err)
	assert.Equal(t, "t1-h2", state.HandID)
	assert.Equal(t, 1, state.DealerSeat)
}

func TestPerHandSeedsDiffer(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t)

	for i := 0; i < 3; i++ {
		_, _, err := tbl.StartHand()
		require.NoError(t, err)
		active := tbl.State().ActivePlayer().ID
		res, err := tbl.ProcessAction(active, engine.Action{Type: engine.Fold}, "", 0)
		require.NoError(t, err)
		require.True(t, res.HandComplete)
	}

	records := tbl.History()
	require.Len(t, records, 3)
	seeds := map[int64]bool{}
	for _, rec := range records {
		seeds[rec.Seed] = true
	}
	assert.Len(t, seeds, 3, "every hand shuffles with a fresh seed")
}

func TestIdenticalTablesDealIdentically(t *testing.T) {
	t.Parallel()

	a := newTestTable(t)
	b := newTestTable(t)

	sa, _, err := a.StartHand()
	require.NoError(t, err)
	sb, _, err := b.StartHand()
	require.NoError(t, err)

	for _, p := range sa.Players {
		assert.Equal(t, p.HoleCards, sb.Player(p.ID).HoleCards,
			"seed is a pure function of table identity and counters")
	}
}

func TestTimeoutFoldsWhenFacingAWager(t *testing.T) {
	t.Parallel()

	mockClock := quartz.NewMock(t)
	tbl := newTestTable(t, WithClock(mockClock))

	_, _, err := tbl.StartHand()
	require.NoError(t, err)

	// Alice owes the big blind and never responds.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mockClock.Advance(30 * time.Second).MustWait(ctx)

	assert.Nil(t, tbl.State(), "timeout fold ended the hand")
	assert.Equal(t, 1, tbl.HandsPlayed())

	records := tbl.History()
	require.Len(t, records, 1)
	assert.Equal(t, []string{"bob"}, records[0].Winners)
}

func TestTimeoutChecksWhenNothingOwed(t *testing.T) {
	t.Parallel()

	mockClock := quartz.NewMock(t)
	tbl := newTestTable(t, WithClock(mockClock))

	_, _, err := tbl.StartHand()
	require.NoError(t, err)

	// Alice completes the small blind; bob has the option and stalls.
	_, err = tbl.ProcessAction("alice", engine.Action{Type: engine.Call}, "req-1", 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mockClock.Advance(30 * time.Second).MustWait(ctx)

	state := tbl.State()
	require.NotNil(t, state, "a free check must not end the hand")
	assert.Equal(t, engine.Flop, state.Street)
	assert.False(t, state.Player("bob").Folded)
}

func TestActingRearmsTimer(t *testing.T) {
	t.Parallel()

	mockClock := quartz.NewMock(t)
	tbl := newTestTable(t, WithClock(mockClock))

	_, _, err := tbl.StartHand()
	require.NoError(t, err)

	// Alice acts 20 seconds in; the timeout budget restarts for bob.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mockClock.Advance(20 * time.Second).MustWait(ctx)

	_, err = tbl.ProcessAction("alice", engine.Action{Type: engine.Call}, "req-1", 1)
	require.NoError(t, err)

	mockClock.Advance(20 * time.Second).MustWait(ctx)
	require.NotNil(t, tbl.State(), "bob still has 10 seconds")

	mockClock.Advance(10 * time.Second).MustWait(ctx)
	state := tbl.State()
	require.NotNil(t, state)
	assert.Equal(t, engine.Flop, state.Street, "bob's option timed out into a check")
}

func TestClose(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t)
	tbl.Close()
	tbl.Close() // idempotent

	err := tbl.AddSeat("carol", "tok", 100)
	assert.Equal(t, engine.CodeTableClosed, engine.CodeOf(err))

	_, _, err = tbl.StartHand()
	assert.Equal(t, engine.CodeTableClosed, engine.CodeOf(err))

	_, err = tbl.ProcessAction("alice", engine.Action{Type: engine.Fold}, "", 0)
	assert.Equal(t, engine.CodeTableClosed, engine.CodeOf(err))
}

// recordingAuditor captures hand-completed notifications for assertions.
type recordingAuditor struct {
	mu    sync.Mutex
	hands []string
	seeds []int64
}

func (a *recordingAuditor) HandCompleted(tableID, handID string, seed int64, events []engine.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hands = append(a.hands, handID)
	a.seeds = append(a.seeds, seed)
}

func (a *recordingAuditor) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.hands)
}

// recordingLedger captures transfers keyed by ref.
type recordingLedger struct {
	mu        sync.Mutex
	transfers map[string]int
}

func (l *recordingLedger) Transfer(ref, from, to string, amount int, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.transfers == nil {
		l.transfers = make(map[string]int)
	}
	l.transfers[ref] = amount
	return nil
}

func (l *recordingLedger) get(ref string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	amount, ok := l.transfers[ref]
	return amount, ok
}

func TestCollaboratorsNotifiedOnCompletion(t *testing.T) {
	t.Parallel()

	auditor := &recordingAuditor{}
	ledger := &recordingLedger{}
	tbl := newTestTable(t, WithAuditor(auditor), WithLedger(ledger))

	_, _, err := tbl.StartHand()
	require.NoError(t, err)
	res, err := tbl.ProcessAction("alice", engine.Action{Type: engine.Fold}, "req-1", 1)
	require.NoError(t, err)
	require.True(t, res.HandComplete)

	// Collaborators run fire-and-forget off the actor's lock.
	require.Eventually(t, func() bool { return auditor.count() == 1 }, time.Second, 5*time.Millisecond)

	auditor.mu.Lock()
	assert.Equal(t, []string{"t1-h1"}, auditor.hands)
	assert.NotZero(t, auditor.seeds[0])
	auditor.mu.Unlock()

	require.Eventually(t, func() bool {
		_, ok := ledger.get("t1-h1:bob")
		return ok
	}, time.Second, 5*time.Millisecond)

	won, _ := ledger.get("t1-h1:bob")
	lost, _ := ledger.get("t1-h1:alice")
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost, "transfer amounts are absolute values")
}

package engine

import "github.com/agentfelt/agentfelt/internal/deck"

// EventType identifies a game event variant.
type EventType string

const (
	EventHandStart      EventType = "HAND_START"
	EventAntesPosted    EventType = "ANTES_POSTED"
	EventBlindsPosted   EventType = "BLINDS_POSTED"
	EventHoleCardsDealt EventType = "HOLE_CARDS_DEALT"
	EventPlayerAction   EventType = "PLAYER_ACTION"
	EventCommunityCards EventType = "COMMUNITY_CARDS_DEALT"
	EventStreetChanged  EventType = "STREET_CHANGED"
	EventShowdown       EventType = "SHOWDOWN"
	EventPotDistributed EventType = "POT_DISTRIBUTED"
	EventHandEnd        EventType = "HAND_END"
)

// Event is a game event. Every event carries the hand id and a strictly
// increasing sequence number within the hand; the concrete type carries a
// precisely-typed payload. Events never contain hidden deck state; the
// protocol layer decides which hole cards each recipient may see.
type Event interface {
	Type() EventType
	HandID() string
	Seq() int
}

// eventMeta carries the fields shared by every event.
type eventMeta struct {
	Hand     string `json:"hand_id"`
	Sequence int    `json:"seq"`
}

func (m eventMeta) HandID() string { return m.Hand }
func (m eventMeta) Seq() int       { return m.Sequence }

// SeatInfo summarizes a player at hand start.
type SeatInfo struct {
	PlayerID string `json:"player_id"`
	Seat     int    `json:"seat"`
	Chips    int    `json:"chips"`
	Position string `json:"position"`
}

// HandStartEvent opens every hand's event stream.
type HandStartEvent struct {
	eventMeta
	Players    []SeatInfo  `json:"players"`
	DealerSeat int         `json:"dealer_seat"`
	Mode       BettingMode `json:"mode"`
	SmallBlind int         `json:"small_blind"`
	BigBlind   int         `json:"big_blind"`
	Ante       int         `json:"ante"`
}

func (HandStartEvent) Type() EventType { return EventHandStart }

// AntesPostedEvent reports the dead-money antes. Emitted only when the
// configured ante is positive.
type AntesPostedEvent struct {
	eventMeta
	// Posted maps player id to the ante actually collected, which is
	// less than the configured ante for short stacks.
	Posted map[string]int `json:"posted"`
}

func (AntesPostedEvent) Type() EventType { return EventAntesPosted }

// BlindsPostedEvent reports the forced blind wagers.
type BlindsPostedEvent struct {
	eventMeta
	SmallBlindID     string `json:"small_blind_id"`
	SmallBlindAmount int    `json:"small_blind_amount"`
	BigBlindID       string `json:"big_blind_id"`
	BigBlindAmount   int    `json:"big_blind_amount"`
}

func (BlindsPostedEvent) Type() EventType { return EventBlindsPosted }

// HoleCardsDealtEvent carries every player's hole cards. Redaction for
// non-owners happens at the protocol boundary, not here.
type HoleCardsDealtEvent struct {
	eventMeta
	Cards map[string][]deck.Card `json:"cards"`
}

func (HoleCardsDealtEvent) Type() EventType { return EventHoleCardsDealt }

// PlayerActionEvent records one applied action.
type PlayerActionEvent struct {
	eventMeta
	PlayerID string     `json:"player_id"`
	Action   ActionType `json:"action"`
	// Amount is the chips the action moved from the player's stack.
	Amount   int    `json:"amount"`
	Street   Street `json:"street"`
	PotAfter int    `json:"pot_after"`
	AllIn    bool   `json:"all_in"`
}

func (PlayerActionEvent) Type() EventType { return EventPlayerAction }

// CommunityCardsEvent reports newly dealt board cards.
type CommunityCardsEvent struct {
	eventMeta
	Street Street      `json:"street"`
	Cards  []deck.Card `json:"cards"`
	Board  []deck.Card `json:"board"`
}

func (CommunityCardsEvent) Type() EventType { return EventCommunityCards }

// StreetChangedEvent marks a transition to a new betting round.
type StreetChangedEvent struct {
	eventMeta
	Street     Street `json:"street"`
	FirstToAct int    `json:"first_to_act_seat"`
	PotTotal   int    `json:"pot_total"`
}

func (StreetChangedEvent) Type() EventType { return EventStreetChanged }

// ShowdownRanking is one player's revealed hand at showdown.
type ShowdownRanking struct {
	PlayerID    string      `json:"player_id"`
	HoleCards   []deck.Card `json:"hole_cards"`
	Description string      `json:"description"`
}

// ShowdownEvent reveals the live hands when the hand reaches showdown.
type ShowdownEvent struct {
	eventMeta
	Board    []deck.Card       `json:"board"`
	Rankings []ShowdownRanking `json:"rankings"`
}

func (ShowdownEvent) Type() EventType { return EventShowdown }

// PotDistributedEvent reports the settlement of one pot layer.
type PotDistributedEvent struct {
	eventMeta
	PotIndex int            `json:"pot_index"`
	Amount   int            `json:"amount"`
	Shares   map[string]int `json:"shares"`
}

func (PotDistributedEvent) Type() EventType { return EventPotDistributed }

// HandEndEvent closes every hand's event stream.
type HandEndEvent struct {
	eventMeta
	Winners []string `json:"winners"`
	Summary *Result  `json:"summary"`
}

func (HandEndEvent) Type() EventType { return EventHandEnd }

package deck

import "github.com/agentfelt/agentfelt/internal/randutil"

// Deck represents an ordered deck of playing cards. Shuffling is a pure
// function of the injected RNG stream: an identical seed yields an identical
// deal sequence, which audit replay depends on.
type Deck struct {
	cards []Card
	rng   randutil.RNG
}

// New creates a standard 52-card deck in canonical order.
func New(rng randutil.RNG) *Deck {
	d := &Deck{
		cards: make([]Card, 0, 52),
		rng:   rng,
	}
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	return d
}

// NewStacked creates a deck that deals the given cards in order.
// Used by tests that need known boards and hole cards.
func NewStacked(cards ...Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// Shuffle randomizes the deck with a Fisher-Yates pass driven by the RNG.
func (d *Deck) Shuffle() {
	if d.rng == nil {
		return
	}
	for i := len(d.cards) - 1; i > 0; i-- {
		j := int(d.rng.Float64() * float64(i+1))
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the top n cards. Panics if the deck is short;
// a hold'em hand can never exhaust 52 cards with at most 8 players.
func (d *Deck) Deal(n int) []Card {
	if n > len(d.cards) {
		panic("deck: dealing from an exhausted deck")
	}
	cards := make([]Card, n)
	copy(cards, d.cards[:n])
	d.cards = d.cards[n:]
	return cards
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Clone returns a deep copy sharing no state with the original.
// The RNG reference is shared; only the card order matters after shuffling.
func (d *Deck) Clone() *Deck {
	cards := make([]Card, len(d.cards))
	copy(cards, d.cards)
	return &Deck{cards: cards, rng: d.rng}
}

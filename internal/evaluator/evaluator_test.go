package evaluator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentfelt/agentfelt/internal/deck"
)

func cards(spec string) []deck.Card {
	fields := strings.Fields(spec)
	out := make([]deck.Card, len(fields))
	for i, f := range fields {
		out[i] = deck.MustParse(f)
	}
	return out
}

func rank5(t *testing.T, spec string) HandRank {
	t.Helper()
	cs := cards(spec)
	require.Len(t, cs, 5)
	return BestHand(cs[:2], cs[2:]).Rank
}

func TestCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		hand     string
		category HandRank
	}{
		{"high card", "As Kd 9h 7c 2s", HighCard},
		{"pair", "As Ad 9h 7c 2s", Pair},
		{"two pair", "As Ad 9h 9c 2s", TwoPair},
		{"three of a kind", "As Ad Ah 7c 2s", ThreeOfAKind},
		{"straight", "9s 8d 7h 6c 5s", Straight},
		{"wheel straight", "As 2d 3h 4c 5s", Straight},
		{"broadway straight", "As Kd Qh Jc Ts", Straight},
		{"flush", "As Ks 9s 7s 2s", Flush},
		{"full house", "As Ad Ah 7c 7s", FullHouse},
		{"four of a kind", "As Ad Ah Ac 2s", FourOfAKind},
		{"straight flush", "9s 8s 7s 6s 5s", StraightFlush},
		{"steel wheel", "As 2s 3s 4s 5s", StraightFlush},
		{"royal flush", "As Ks Qs Js Ts", StraightFlush},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.category, rank5(t, tt.hand).Category())
		})
	}
}

func TestOrdering(t *testing.T) {
	t.Parallel()

	// Each hand strictly beats the next.
	ladder := []string{
		"As Ks Qs Js Ts", // royal flush
		"9s 8s 7s 6s 5s", // straight flush
		"As Ad Ah Ac 2s", // quads
		"As Ad Ah 7c 7s", // full house
		"As Ks 9s 7s 2s", // flush
		"As Kd Qh Jc Ts", // straight
		"As 2d 3h 4c 5s", // wheel, lowest straight
		"As Ad Ah 7c 2s", // trips
		"As Ad 9h 9c 2s", // two pair
		"As Ad 9h 7c 2s", // pair
		"As Kd 9h 7c 2s", // high card
	}
	for i := 0; i < len(ladder)-1; i++ {
		a, b := rank5(t, ladder[i]), rank5(t, ladder[i+1])
		assert.Equal(t, 1, Compare(a, b), "%q should beat %q", ladder[i], ladder[i+1])
		assert.Equal(t, -1, Compare(b, a))
	}
}

func TestKickersBreakTies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		better string
		worse  string
	}{
		{"pair kicker", "As Ad Kh 7c 2s", "As Ad Qh 7c 2s"},
		{"higher pair", "Ks Kd 9h 7c 2s", "Qs Qd Ah Kc 9s"},
		{"two pair high pair wins", "As Ad 3h 3c 2s", "Ks Kd Qh Qc As"},
		{"trips rank wins", "Ks Kd Kh 2c 3s", "Qs Qd Qh Ac Ks"},
		{"straight high card", "Ts 9d 8h 7c 6s", "9s 8d 7h 6c 5s"},
		{"wheel loses to six-high", "6s 5d 4h 3c 2s", "As 2d 3h 4c 5s"},
		{"flush high card", "As Ks 9s 7s 2s", "Ks Qs 9s 7s 2s"},
		{"full house trips rank", "Ks Kd Kh 2c 2s", "Qs Qd Qh Ac As"},
		{"quads rank", "3s 3d 3h 3c 2s", "2s 2d 2h 2c As"},
		{"high card kicker", "As Kd 9h 7c 3s", "As Kd 9h 7c 2s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, 1, Compare(rank5(t, tt.better), rank5(t, tt.worse)))
		})
	}
}

func TestIdenticalRanksChop(t *testing.T) {
	t.Parallel()

	a := rank5(t, "As Kd 9h 7c 2s")
	b := rank5(t, "Ad Kh 9c 7s 2d")
	assert.Equal(t, 0, Compare(a, b), "suits must not break ties")
}

func TestBestHandFromSeven(t *testing.T) {
	t.Parallel()

	// Hole cards complete a flush the board alone does not hold.
	res := BestHand(cards("As Ks"), cards("Qs Js 2s 7d 3h"))
	assert.Equal(t, Flush, res.Rank.Category())
	require.Len(t, res.Best, 5)
	for _, c := range res.Best {
		assert.Equal(t, deck.Spades, c.Suit)
	}

	// The board plays when it beats anything using the hole cards.
	res = BestHand(cards("2d 3h"), cards("As Ks Qs Js Ts"))
	assert.Equal(t, StraightFlush, res.Rank.Category())
	assert.Equal(t, "Royal Flush", res.Description)
}

func TestBestHandPartialBoard(t *testing.T) {
	t.Parallel()

	// Two hole cards plus a flop is exactly five cards.
	res := BestHand(cards("As Ad"), cards("Ah 7c 2s"))
	assert.Equal(t, ThreeOfAKind, res.Rank.Category())

	assert.Panics(t, func() { BestHand(cards("As Ad"), cards("Ah 7c")) })
}

func TestDescriptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hand string
		want string
	}{
		{"As Kd 9h 7c 2s", "High Card, Ace high"},
		{"Ks Kd 9h 7c 2s", "Pair of Kings"},
		{"As Ad 9h 9c 2s", "Two Pair, Aces over Nines"},
		{"Qs Qd Qh 7c 2s", "Three of a Kind, Queens"},
		{"9s 8d 7h 6c 5s", "Straight, Nine high"},
		{"As 2d 3h 4c 5s", "Straight, Five high"},
		{"As Ks 9s 7s 2s", "Flush, Ace high"},
		{"Ks Kd Kh 2c 2s", "Full House, Kings full of Twos"},
		{"As Ad Ah Ac 2s", "Four of a Kind, Aces"},
		{"9s 8s 7s 6s 5s", "Straight Flush, Nine high"},
		{"As Ks Qs Js Ts", "Royal Flush"},
	}
	for _, tt := range tests {
		cs := cards(tt.hand)
		res := BestHand(cs[:2], cs[2:])
		assert.Equal(t, tt.want, res.Description, "hand %q", tt.hand)
	}
}

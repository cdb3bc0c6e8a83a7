// Package evaluator ranks poker hands. It evaluates the best five-card hand
// from hole cards plus board and produces a totally ordered bit-packed rank.
package evaluator

import (
	"fmt"
	"sort"

	"github.com/agentfelt/agentfelt/internal/deck"
)

// HandRank encodes the strength of a five-card hand.
// The high 4 bits are the category, the low bits break ties within it.
// Comparing two HandRank values as integers compares the hands.
type HandRank uint32

const (
	HighCard HandRank = iota << 28
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// Category returns just the category bits of the rank.
func (hr HandRank) Category() HandRank {
	return hr & 0xF0000000
}

// String returns a human-readable category name.
func (hr HandRank) String() string {
	switch hr.Category() {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// Result is the outcome of evaluating a hand.
type Result struct {
	Rank        HandRank
	Description string
	Best        []deck.Card // the five cards forming the best hand
}

// Compare returns 1 if a beats b, -1 if b beats a, 0 on a chop.
func Compare(a, b HandRank) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// BestHand evaluates the best five-card hand from hole cards and community
// cards. With two hole cards and a full board this considers all 21
// combinations; it also handles partial boards down to five total cards.
func BestHand(hole, community []deck.Card) Result {
	all := make([]deck.Card, 0, len(hole)+len(community))
	all = append(all, hole...)
	all = append(all, community...)
	if len(all) < 5 {
		panic(fmt.Sprintf("evaluator: need at least 5 cards, have %d", len(all)))
	}

	best := Result{}
	combo := make([]deck.Card, 5)
	pickBest(all, combo, 0, 0, &best)
	return best
}

// pickBest enumerates 5-card subsets of all, tracking the best result seen.
func pickBest(all, combo []deck.Card, start, depth int, best *Result) {
	if depth == 5 {
		rank := evaluate5(combo)
		if rank > best.Rank || best.Best == nil {
			cards := make([]deck.Card, 5)
			copy(cards, combo)
			*best = Result{Rank: rank, Description: describe(rank, combo), Best: cards}
		}
		return
	}
	for i := start; i <= len(all)-(5-depth); i++ {
		combo[depth] = all[i]
		pickBest(all, combo, i+1, depth+1, best)
	}
}

// evaluate5 ranks exactly five cards.
func evaluate5(cards []deck.Card) HandRank {
	var counts [15]int // indexed by Rank value (2..14)
	suited := true
	for i, c := range cards {
		counts[c.Rank]++
		if i > 0 && c.Suit != cards[0].Suit {
			suited = false
		}
	}

	straightHigh := straightHighCard(counts)

	if suited && straightHigh > 0 {
		return StraightFlush | HandRank(straightHigh)
	}

	// Group ranks by multiplicity, highest rank first within each group.
	var quads, trips, pairs, singles []int
	for r := int(deck.Ace); r >= int(deck.Two); r-- {
		switch counts[r] {
		case 4:
			quads = append(quads, r)
		case 3:
			trips = append(trips, r)
		case 2:
			pairs = append(pairs, r)
		case 1:
			singles = append(singles, r)
		}
	}

	switch {
	case len(quads) == 1:
		return FourOfAKind | packRanks(quads[0], singles[0])
	case len(trips) == 1 && len(pairs) == 1:
		return FullHouse | packRanks(trips[0], pairs[0])
	case suited:
		return Flush | packRanks(singles...)
	case straightHigh > 0:
		return Straight | HandRank(straightHigh)
	case len(trips) == 1:
		return ThreeOfAKind | packRanks(trips[0], singles[0], singles[1])
	case len(pairs) == 2:
		return TwoPair | packRanks(pairs[0], pairs[1], singles[0])
	case len(pairs) == 1:
		return Pair | packRanks(pairs[0], singles[0], singles[1], singles[2])
	default:
		return HighCard | packRanks(singles...)
	}
}

// packRanks packs rank values into 4-bit fields, most significant first.
func packRanks(ranks ...int) HandRank {
	var v HandRank
	for _, r := range ranks {
		v = v<<4 | HandRank(r)
	}
	return v
}

// straightHighCard returns the high-card rank of a straight, or 0 if none.
// The wheel (A-2-3-4-5) counts as a five-high straight.
func straightHighCard(counts [15]int) int {
	run := 0
	for r := int(deck.Ace); r >= int(deck.Two); r-- {
		if counts[r] == 0 {
			run = 0
			continue
		}
		run++
		if run == 5 {
			return r + 4
		}
		// Wheel: 5-4-3-2 plus the ace counted high.
		if run == 4 && r == int(deck.Two) && counts[deck.Ace] > 0 {
			return int(deck.Five)
		}
	}
	return 0
}

func describe(rank HandRank, cards []deck.Card) string {
	sorted := make([]deck.Card, len(cards))
	copy(sorted, cards)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rank > sorted[j].Rank })

	highest := func(n int) deck.Rank {
		// nth rank by multiplicity n within the five cards
		var counts [15]int
		for _, c := range sorted {
			counts[c.Rank]++
		}
		for r := deck.Ace; r >= deck.Two; r-- {
			if counts[r] == n {
				return r
			}
		}
		return sorted[0].Rank
	}

	switch rank.Category() {
	case HighCard:
		return fmt.Sprintf("High Card, %s high", rankName(sorted[0].Rank))
	case Pair:
		return fmt.Sprintf("Pair of %ss", rankName(highest(2)))
	case TwoPair:
		return fmt.Sprintf("Two Pair, %ss over %ss", rankName(highest(2)), rankName(lowestPair(sorted)))
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %ss", rankName(highest(3)))
	case Straight:
		return fmt.Sprintf("Straight, %s high", rankName(deck.Rank(rank&0xF)))
	case Flush:
		return fmt.Sprintf("Flush, %s high", rankName(sorted[0].Rank))
	case FullHouse:
		return fmt.Sprintf("Full House, %ss full of %ss", rankName(highest(3)), rankName(highest(2)))
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %ss", rankName(highest(4)))
	case StraightFlush:
		high := deck.Rank(rank & 0xF)
		if high == deck.Ace {
			return "Royal Flush"
		}
		return fmt.Sprintf("Straight Flush, %s high", rankName(high))
	default:
		return "Unknown"
	}
}

func lowestPair(sorted []deck.Card) deck.Rank {
	var counts [15]int
	for _, c := range sorted {
		counts[c.Rank]++
	}
	for r := deck.Two; r <= deck.Ace; r++ {
		if counts[r] == 2 {
			return r
		}
	}
	return sorted[len(sorted)-1].Rank
}

func rankName(r deck.Rank) string {
	switch r {
	case deck.Ace:
		return "Ace"
	case deck.King:
		return "King"
	case deck.Queen:
		return "Queen"
	case deck.Jack:
		return "Jack"
	case deck.Ten:
		return "Ten"
	case deck.Nine:
		return "Nine"
	case deck.Eight:
		return "Eight"
	case deck.Seven:
		return "Seven"
	case deck.Six:
		return "Six"
	case deck.Five:
		return "Five"
	case deck.Four:
		return "Four"
	case deck.Three:
		return "Three"
	case deck.Two:
		return "Two"
	default:
		return "?"
	}
}

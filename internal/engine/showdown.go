package engine

import (
	"github.com/agentfelt/agentfelt/internal/deck"
	"github.com/agentfelt/agentfelt/internal/evaluator"
)

// finishShowdown settles a hand that reached the river with more than one
// player live: it layers the committed chips into side pots, evaluates
// every live hand, and pays each pot to its best eligible hand, splitting
// ties with any odd chips going to the tied winner seated earliest
// clockwise from the dealer.
func finishShowdown(g *GameState, events *[]Event) {
	g.Street = Showdown
	g.ActiveSeat = NoSeat
	g.Pots = BuildPots(g.Players)

	results := make(map[string]evaluator.Result)
	rankings := make([]ShowdownRanking, 0, len(g.Players))
	for _, p := range clockwiseFrom(g.Players, g.DealerSeat) {
		if !p.InHand() {
			continue
		}
		res := evaluator.BestHand(p.HoleCards, g.CommunityCards)
		results[p.ID] = res
		rankings = append(rankings, ShowdownRanking{
			PlayerID:    p.ID,
			HoleCards:   p.HoleCards,
			Description: res.Description,
		})
	}

	board := append([]deck.Card(nil), g.CommunityCards...)
	*events = append(*events, ShowdownEvent{
		eventMeta: g.nextSeq(),
		Board:     board,
		Rankings:  rankings,
	})

	distribution := make(map[string]int)
	handRankings := make(map[string]string, len(results))
	for id, res := range results {
		handRankings[id] = res.Description
	}

	var overall []string
	seen := make(map[string]bool)

	for i, pot := range g.Pots {
		winners := potWinners(pot, results)
		shares := splitPot(g, pot.Amount, winners)
		for id, share := range shares {
			g.Player(id).Chips += share
			distribution[id] += share
			if !seen[id] {
				seen[id] = true
				overall = append(overall, id)
			}
		}
		*events = append(*events, PotDistributedEvent{
			eventMeta: g.nextSeq(),
			PotIndex:  i,
			Amount:    pot.Amount,
			Shares:    shares,
		})
	}

	for i := range g.Pots {
		g.Pots[i].Amount = 0
	}

	g.Complete = true
	g.Winners = overall
	g.Summary = &Result{
		Winners:         append([]string(nil), overall...),
		PotDistribution: distribution,
		HandRankings:    handRankings,
	}

	*events = append(*events, HandEndEvent{
		eventMeta: g.nextSeq(),
		Winners:   append([]string(nil), g.Winners...),
		Summary:   g.Summary,
	})
}

// potWinners returns the ids holding the best hand among a pot's eligible
// players. A single eligible player takes the pot without comparison.
func potWinners(pot Pot, results map[string]evaluator.Result) []string {
	if len(pot.Eligible) == 1 {
		return append([]string(nil), pot.Eligible...)
	}

	var best evaluator.HandRank
	var winners []string
	for _, id := range pot.Eligible {
		res, ok := results[id]
		if !ok {
			continue
		}
		switch evaluator.Compare(res.Rank, best) {
		case 1:
			best = res.Rank
			winners = []string{id}
		case 0:
			winners = append(winners, id)
		}
	}
	return winners
}

// splitPot divides an amount among tied winners: floor shares for all,
// with the remainder chip(s) going to the winner seated earliest
// clockwise from the dealer.
func splitPot(g *GameState, amount int, winners []string) map[string]int {
	shares := make(map[string]int, len(winners))
	if len(winners) == 0 || amount <= 0 {
		return shares
	}

	each := amount / len(winners)
	remainder := amount % len(winners)
	for _, id := range winners {
		shares[id] = each
	}

	if remainder > 0 {
		isWinner := make(map[string]bool, len(winners))
		for _, id := range winners {
			isWinner[id] = true
		}
		for _, p := range clockwiseFrom(g.Players, g.DealerSeat) {
			if isWinner[p.ID] {
				shares[p.ID] += remainder
				break
			}
		}
	}
	return shares
}

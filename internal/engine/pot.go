package engine

import "sort"

// Pot is a pot layer with the set of player ids eligible to win it.
// Folded players' contributions stay in the pot as dead money but folded
// players are never eligible.
type Pot struct {
	Amount   int
	Eligible []string
}

// PotTotal sums the amounts across pot layers.
func PotTotal(pots []Pot) int {
	total := 0
	for _, p := range pots {
		total += p.Amount
	}
	return total
}

// BuildPots partitions all committed chips into eligibility-layered pots.
// Each distinct nonzero contribution level, ascending, produces a layer:
// its amount is the slice of every contribution between the previous level
// and this one, and its eligible set is the non-folded players who
// contributed at least this level. The layer sum always equals the total
// committed chips.
func BuildPots(players []*PlayerState) []Pot {
	// Layer boundaries come from the non-folded contribution levels so
	// every layer has at least one eligible player.
	levelSet := make(map[int]bool)
	for _, p := range players {
		if !p.Folded && p.TotalBet > 0 {
			levelSet[p.TotalBet] = true
		}
	}
	if len(levelSet) == 0 {
		return nil
	}

	levels := make([]int, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	pots := make([]Pot, 0, len(levels))
	layered := 0
	prev := 0
	for _, level := range levels {
		pot := Pot{}
		for _, p := range players {
			contrib := min(p.TotalBet, level) - min(p.TotalBet, prev)
			pot.Amount += contrib
			if !p.Folded && p.TotalBet >= level {
				pot.Eligible = append(pot.Eligible, p.ID)
			}
		}
		sortEligibleBySeat(pot.Eligible, players)
		layered += pot.Amount
		if pot.Amount > 0 {
			pots = append(pots, pot)
		}
		prev = level
	}

	// Folded contributions above the top live level are dead money in the
	// top layer; chips must never leave the table.
	total := 0
	for _, p := range players {
		total += p.TotalBet
	}
	if excess := total - layered; excess > 0 && len(pots) > 0 {
		pots[len(pots)-1].Amount += excess
	}
	return pots
}

// sortEligibleBySeat orders an eligible set by seat index for stable output.
func sortEligibleBySeat(ids []string, players []*PlayerState) {
	seatOf := make(map[string]int, len(players))
	for _, p := range players {
		seatOf[p.ID] = p.Seat
	}
	sort.Slice(ids, func(i, j int) bool { return seatOf[ids[i]] < seatOf[ids[j]] })
}

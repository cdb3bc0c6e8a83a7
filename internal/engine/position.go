package engine

import "sort"

// NoSeat is the sentinel returned when no seat qualifies.
const NoSeat = -1

// seatOrder returns the occupied seat indices in ascending order.
// Seat indices need not be contiguous; clockwise order is ascending
// seat index with wraparound.
func seatOrder(players []*PlayerState) []int {
	seats := make([]int, 0, len(players))
	for _, p := range players {
		seats = append(seats, p.Seat)
	}
	sort.Ints(seats)
	return seats
}

// seatAfter returns the next occupied seat clockwise from the given seat.
func seatAfter(players []*PlayerState, seat int) int {
	seats := seatOrder(players)
	for _, s := range seats {
		if s > seat {
			return s
		}
	}
	return seats[0]
}

// playerAt returns the player in the given seat, or nil.
func playerAt(players []*PlayerState, seat int) *PlayerState {
	for _, p := range players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

// playerByID returns the player with the given id, or nil.
func playerByID(players []*PlayerState, id string) *PlayerState {
	for _, p := range players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// BlindSeats determines the small and big blind seats for a hand.
// Heads-up the dealer posts the small blind; otherwise the blinds are the
// two seats clockwise from the dealer.
func BlindSeats(players []*PlayerState, dealerSeat int) (sbSeat, bbSeat int) {
	if len(players) == 2 {
		sbSeat = dealerSeat
		bbSeat = seatAfter(players, dealerSeat)
		return sbSeat, bbSeat
	}
	sbSeat = seatAfter(players, dealerSeat)
	bbSeat = seatAfter(players, sbSeat)
	return sbSeat, bbSeat
}

// FirstToActPreflop returns the seat that opens the preflop betting: the
// first seat clockwise from the big blind that can act. Heads-up this is
// the dealer, who posted the small blind.
func FirstToActPreflop(players []*PlayerState, bbSeat int) int {
	return NextActiveSeat(players, bbSeat)
}

// FirstToActPostflop returns the first non-folded, non-all-in seat
// clockwise from the dealer, or NoSeat.
func FirstToActPostflop(players []*PlayerState, dealerSeat int) int {
	return NextActiveSeat(players, dealerSeat)
}

// NextActiveSeat returns the next seat strictly clockwise from the given
// seat whose player can still act, or NoSeat when nobody can, which
// signals a forced street advance.
func NextActiveSeat(players []*PlayerState, fromSeat int) int {
	seat := fromSeat
	for i := 0; i < len(players); i++ {
		seat = seatAfter(players, seat)
		if p := playerAt(players, seat); p != nil && p.CanAct() {
			return seat
		}
	}
	return NoSeat
}

// AdvanceDealer rotates the button to the next seat clockwise that still
// has chips, skipping busted seats. seats maps seat index to chip count
// for every occupied seat. Returns NoSeat if no seat has chips.
func AdvanceDealer(seats map[int]int, dealerSeat int) int {
	order := make([]int, 0, len(seats))
	for s := range seats {
		order = append(order, s)
	}
	sort.Ints(order)

	next := func(seat int) int {
		for _, s := range order {
			if s > seat {
				return s
			}
		}
		if len(order) == 0 {
			return NoSeat
		}
		return order[0]
	}

	seat := dealerSeat
	for i := 0; i < len(order); i++ {
		seat = next(seat)
		if seat == NoSeat {
			return NoSeat
		}
		if seats[seat] > 0 {
			return seat
		}
	}
	return NoSeat
}

// AssignPositions labels each seat relative to the dealer for table sizes
// 2-8: BTN, SB, BB, then UTG through CO for the remaining seats. Heads-up
// the dealer is both BTN and small blind.
func AssignPositions(players []*PlayerState, dealerSeat int) map[int]string {
	labels := make(map[int]string, len(players))
	if len(players) == 2 {
		labels[dealerSeat] = "BTN"
		labels[seatAfter(players, dealerSeat)] = "BB"
		return labels
	}

	middle := middleLabels(len(players) - 3)
	seat := dealerSeat
	labels[seat] = "BTN"
	seat = seatAfter(players, seat)
	labels[seat] = "SB"
	seat = seatAfter(players, seat)
	labels[seat] = "BB"
	for _, name := range middle {
		seat = seatAfter(players, seat)
		labels[seat] = name
	}
	return labels
}

// middleLabels names the n seats between the big blind and the button.
func middleLabels(n int) []string {
	switch n {
	case 0:
		return nil
	case 1:
		return []string{"UTG"}
	case 2:
		return []string{"UTG", "CO"}
	case 3:
		return []string{"UTG", "HJ", "CO"}
	case 4:
		return []string{"UTG", "MP", "HJ", "CO"}
	default:
		return []string{"UTG", "UTG+1", "MP", "HJ", "CO"}
	}
}

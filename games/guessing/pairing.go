/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package guessing

// ActivePair returns the asks/responds pair for fast mode: the unfinished players at
// Rotation and Rotation+1, modulo the number of unfinished players. Fewer than two
// players are returned when fewer remain.
func (r *Room) ActivePair() []*Player {
	active := r.activePlayers()
	switch len(active) {
	case 0:
		return nil
	case 1:
		return active
	}

	i := r.Rotation % len(active)
	return []*Player{active[i], active[(i+1)%len(active)]}
}

// ActivePair looks up the current asks/responds pair of a room.
func (s *Store) ActivePair(code string) ([]*Player, error) {
	room, err := s.Room(code)
	if err != nil {
		return nil, err
	}
	return room.ActivePair(), nil
}

// advancePair hands the turn to the other member of the pair, rotating to the next
// pair once it has used up its turns.
func (r *Room) advancePair() TurnChange {
	r.turnsInPair++
	if r.turnsInPair >= r.PairTurns {
		r.turnsInPair = 0
		r.Rotation++
		if pair := r.ActivePair(); len(pair) > 0 {
			r.CurrentTurn = pair[0].ID
		}
		return r.turnChange(true)
	}

	pair := r.ActivePair()
	switch {
	case len(pair) == 2 && pair[0].ID == r.CurrentTurn:
		r.CurrentTurn = pair[1].ID
	case len(pair) > 0:
		r.CurrentTurn = pair[0].ID
	}
	return r.turnChange(false)
}

// syncPairTurn keeps the current turn inside the active pair after the roster or the
// set of unfinished players changed.
func (r *Room) syncPairTurn() TurnChange {
	pair := r.ActivePair()
	for _, p := range pair {
		if p.ID == r.CurrentTurn {
			return TurnChange{}
		}
	}
	if len(pair) == 0 {
		r.CurrentTurn = ""
		return TurnChange{}
	}
	r.CurrentTurn = pair[0].ID
	return r.turnChange(false)
}

/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package guessing

// phaseTransitions lists every legal phase change. Paired turn mode never leaves
// PhaseQuestion until the game finishes.
var phaseTransitions = map[Phase][]Phase{
	PhaseLobby:       {PhaseQuestion},
	PhaseQuestion:    {PhaseElimination, PhaseFinished},
	PhaseElimination: {PhaseQuestion, PhaseFinished},
	PhaseFinished:    {},
}

func (r *Room) transition(to Phase) error {
	for _, allowed := range phaseTransitions[r.Phase] {
		if allowed == to {
			r.Phase = to
			return nil
		}
	}
	return statef("cannot move from %s to %s", r.Phase, to)
}

// TurnChange reports who holds the turn after an action. The zero value means nothing changed.
type TurnChange struct {
	Changed     bool
	CurrentTurn string
	Phase       Phase
	Rotated     bool
	Rotation    int
}

func (r *Room) turnChange(rotated bool) TurnChange {
	return TurnChange{
		Changed:     true,
		CurrentTurn: r.CurrentTurn,
		Phase:       r.Phase,
		Rotated:     rotated,
		Rotation:    r.Rotation,
	}
}

func requirePlayer(room *Room, id string) (*Player, error) {
	p, _ := room.player(id)
	if p == nil {
		return nil, notFoundf("you are not a member of room %s", room.Code)
	}
	return p, nil
}

func requireAdmin(room *Room, id string) (*Player, error) {
	p, err := requirePlayer(room, id)
	if err != nil {
		return nil, err
	}
	if !p.Admin {
		return nil, unauthorizedf("only the room admin can do that")
	}
	return p, nil
}

func requireInPlay(room *Room) error {
	if !room.Phase.InPlay() {
		return statef("game is not in progress")
	}
	return nil
}

// StartGame moves the room from the lobby into play: secrets are drawn without
// replacement in player order, boards are created and the first player takes the turn.
func (s *Store) StartGame(code, callerID string) (*Room, error) {
	room, err := s.Room(code)
	if err != nil {
		return nil, err
	}
	if _, err := requireAdmin(room, callerID); err != nil {
		return nil, err
	}
	if room.Phase != PhaseLobby {
		return nil, statef("game already started")
	}
	if len(room.Players) < 2 {
		return nil, validationf("need at least 2 players to start")
	}
	if len(room.Options) < MinOptions {
		return nil, validationf("need at least %d options to start", MinOptions)
	}
	if len(room.Options) < len(room.Players) {
		return nil, validationf("need at least as many options (%d) as players (%d)", len(room.Options), len(room.Players))
	}

	perm := s.rng.Perm(len(room.Options))
	room.Secrets = make(map[string]string, len(room.Players))
	for i, p := range room.Players {
		room.Secrets[p.ID] = room.Options[perm[i]].ID
		p.Finished = false
		p.GaveUp = false
		p.Guess = ""
	}

	room.boards = make(map[boardKey]*Board)
	switch room.Variant {
	case VariantBoards:
		for _, owner := range room.Players {
			for _, target := range room.Players {
				if owner.ID == target.ID {
					continue
				}
				key := boardKey{owner: owner.ID, target: target.ID}
				room.boards[key] = &Board{Owner: owner.ID, Target: target.ID, Marks: make(map[string]Mark)}
			}
		}
	case VariantPrivate:
		for _, owner := range room.Players {
			room.boards[boardKey{owner: owner.ID}] = &Board{Owner: owner.ID, Marks: make(map[string]Mark)}
		}
	}

	if err := room.transition(PhaseQuestion); err != nil {
		return nil, err
	}

	room.Rotation = 0
	room.turnsInPair = 0
	room.CurrentTurn = room.Players[0].ID
	if room.TurnMode == TurnsPaired {
		room.CurrentTurn = room.ActivePair()[0].ID
	}

	return room, nil
}

// AskQuestion is honoured only for the current-turn player.
func (s *Store) AskQuestion(code, callerID, question string) (TurnChange, string, error) {
	room, err := s.Room(code)
	if err != nil {
		return TurnChange{}, "", err
	}
	if _, err := requirePlayer(room, callerID); err != nil {
		return TurnChange{}, "", err
	}
	if err := requireInPlay(room); err != nil {
		return TurnChange{}, "", err
	}
	if room.Phase != PhaseQuestion {
		return TurnChange{}, "", statef("a question has already been asked this turn")
	}
	if room.CurrentTurn != callerID {
		return TurnChange{}, "", statef("it is not your turn")
	}
	text, err := validateQuestion(question)
	if err != nil {
		return TurnChange{}, "", err
	}

	if room.TurnMode == TurnsPaired {
		return room.advancePair(), text, nil
	}

	if err := room.transition(PhaseElimination); err != nil {
		return TurnChange{}, "", err
	}

	return room.turnChange(false), text, nil
}

// NextTurn ends the elimination phase and hands the turn to the next unfinished player.
// The current-turn player or the admin may call it.
func (s *Store) NextTurn(code, callerID string) (TurnChange, *Results, error) {
	room, err := s.Room(code)
	if err != nil {
		return TurnChange{}, nil, err
	}
	caller, err := requirePlayer(room, callerID)
	if err != nil {
		return TurnChange{}, nil, err
	}
	if err := requireInPlay(room); err != nil {
		return TurnChange{}, nil, err
	}
	if room.Phase != PhaseElimination {
		return TurnChange{}, nil, statef("ask a question before ending the turn")
	}
	if room.CurrentTurn != callerID && !caller.Admin {
		return TurnChange{}, nil, unauthorizedf("only the current player or the admin can end the turn")
	}

	_, idx := room.player(room.CurrentTurn)
	next := room.nextActive(idx+1, idx)
	if next == nil {
		return TurnChange{}, room.finish(), nil
	}

	room.CurrentTurn = next.ID
	if err := room.transition(PhaseQuestion); err != nil {
		return TurnChange{}, nil, err
	}

	return room.turnChange(false), nil, nil
}

// nextActive scans the roster from index start, wrapping, and returns the first
// unfinished player. fallback is only used when start is out of range.
func (r *Room) nextActive(start, fallback int) *Player {
	n := len(r.Players)
	if n == 0 {
		return nil
	}
	if start < 0 {
		start = fallback
	}
	if start < 0 {
		start = 0
	}
	for i := range n {
		p := r.Players[(start+i)%n]
		if !r.hasFinished(p) {
			return p
		}
	}
	return nil
}

// repairTurn keeps the turn valid after the player at removedIdx left mid-game.
func (r *Room) repairTurn(removedID string, removedIdx int) TurnChange {
	if r.TurnMode == TurnsPaired {
		return r.syncPairTurn()
	}
	if r.CurrentTurn != removedID {
		return TurnChange{}
	}

	next := r.nextActive(removedIdx, 0)
	if next == nil {
		r.CurrentTurn = ""
		return TurnChange{}
	}
	r.CurrentTurn = next.ID
	if r.Phase == PhaseElimination {
		_ = r.transition(PhaseQuestion)
	}
	return r.turnChange(false)
}

// passTurnIfFinished moves the turn on when the current player has just finished.
func (r *Room) passTurnIfFinished(playerID string) TurnChange {
	if r.TurnMode == TurnsPaired {
		return r.syncPairTurn()
	}
	if r.CurrentTurn != playerID {
		return TurnChange{}
	}
	p, idx := r.player(playerID)
	if p == nil || !r.hasFinished(p) {
		return TurnChange{}
	}

	next := r.nextActive(idx+1, idx)
	if next == nil {
		return TurnChange{}
	}
	r.CurrentTurn = next.ID
	if r.Phase == PhaseElimination {
		_ = r.transition(PhaseQuestion)
	}
	return r.turnChange(false)
}

// checkCompletion finishes the game once every player is done, or once the shared
// list is down to a single option.
func (r *Room) checkCompletion() *Results {
	if !r.Phase.InPlay() {
		return nil
	}
	if r.Variant == VariantShared && len(r.remainingOptions()) <= 1 {
		return r.finish()
	}
	if len(r.activePlayers()) == 0 {
		return r.finish()
	}
	return nil
}

func (r *Room) finish() *Results {
	if err := r.transition(PhaseFinished); err != nil {
		return nil
	}
	r.CurrentTurn = ""
	results := computeResults(r)
	return &results
}

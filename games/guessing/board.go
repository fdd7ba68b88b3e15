/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package guessing

// BoardOption is one row of a private board as its owner sees it.
type BoardOption struct {
	ID           string      `json:"id"`
	Text         string      `json:"text"`
	Eliminated   bool        `json:"eliminated"`
	State        OptionState `json:"state"`
	DiscardedFor string      `json:"discarded_for_player_id,omitempty"`
}

// BoardView is a copy of a board for delivery to its owner only.
type BoardView struct {
	TargetID string        `json:"target_id,omitempty"`
	Status   BoardStatus   `json:"status"`
	Guess    string        `json:"guessed_option_id,omitempty"`
	Options  []BoardOption `json:"options"`
}

func (BoardView) privatePayload() {}

func (r *Room) view(b *Board) BoardView {
	v := BoardView{
		TargetID: b.Target,
		Status:   b.Status,
		Guess:    b.Guess,
		Options:  make([]BoardOption, 0, len(r.Options)),
	}
	for _, o := range r.Options {
		m := b.Marks[o.ID]
		v.Options = append(v.Options, BoardOption{
			ID:           o.ID,
			Text:         o.Text,
			Eliminated:   o.Eliminated,
			State:        m.State,
			DiscardedFor: m.DiscardedFor,
		})
	}
	return v
}

// Boards returns copies of every board owned by ownerID.
func (s *Store) Boards(code, ownerID string) ([]BoardView, error) {
	room, err := s.Room(code)
	if err != nil {
		return nil, err
	}
	if _, err := requirePlayer(room, ownerID); err != nil {
		return nil, err
	}
	boards := room.boardsOf(ownerID)
	out := make([]BoardView, 0, len(boards))
	for _, b := range boards {
		out = append(out, room.view(b))
	}
	return out, nil
}

// resolveBoard finds the board ownerID keeps about targetID. Owners are always the
// calling connection, never a client-supplied id.
func resolveBoard(room *Room, ownerID, targetID string) (*Board, error) {
	owner, err := requirePlayer(room, ownerID)
	if err != nil {
		return nil, err
	}
	if err := requireInPlay(room); err != nil {
		return nil, err
	}

	switch room.Variant {
	case VariantShared:
		return nil, statef("this room uses a shared list; eliminate options instead")
	case VariantBoards:
		if targetID == "" {
			return nil, newError(ErrInvalidTarget, "choose which player's board to mark")
		}
	}
	if targetID != "" {
		if targetID == owner.ID {
			return nil, newError(ErrInvalidTarget, "you cannot target yourself")
		}
		if t, _ := room.player(targetID); t == nil {
			return nil, notFoundf("player %q is not in this room", targetID)
		}
	}

	b := room.board(ownerID, targetID)
	if b == nil {
		return nil, notFoundf("no board for that player")
	}
	return b, nil
}

func (r *Room) boardLocked(b *Board) bool {
	if b.Status.Terminal() {
		return true
	}
	if r.Variant == VariantPrivate {
		if p, _ := r.player(b.Owner); p != nil && p.Finished {
			return true
		}
	}
	return false
}

// ToggleOption advances one option on the caller's board through its cycle. Eliminated
// options and finished boards are left untouched without error.
func (s *Store) ToggleOption(code, ownerID, targetID, optionID string) (BoardView, error) {
	room, err := s.Room(code)
	if err != nil {
		return BoardView{}, err
	}
	b, err := resolveBoard(room, ownerID, targetID)
	if err != nil {
		return BoardView{}, err
	}
	o := room.option(optionID)
	if o == nil {
		return BoardView{}, notFoundf("option %q not found", optionID)
	}

	if o.Eliminated || room.boardLocked(b) {
		return room.view(b), nil
	}

	m := b.Marks[optionID]
	m.State = m.State.next(room.Variant)
	switch m.State {
	case StateNormal:
		delete(b.Marks, optionID)
		return room.view(b), nil
	case StateDiscarded:
		m.DiscardedFor = b.Target
	default:
		m.DiscardedFor = ""
	}
	b.Marks[optionID] = m

	return room.view(b), nil
}

// BulkDiscard marks every listed option discarded. Unknown and eliminated ids are skipped.
func (s *Store) BulkDiscard(code, ownerID, targetID string, optionIDs []string) (BoardView, error) {
	room, err := s.Room(code)
	if err != nil {
		return BoardView{}, err
	}
	b, err := resolveBoard(room, ownerID, targetID)
	if err != nil {
		return BoardView{}, err
	}
	if room.boardLocked(b) {
		return room.view(b), nil
	}

	for _, id := range optionIDs {
		o := room.option(id)
		if o == nil || o.Eliminated {
			continue
		}
		b.Marks[id] = Mark{State: StateDiscarded, DiscardedFor: b.Target}
	}

	return room.view(b), nil
}

// EliminateOptions removes options from the shared list for everyone. Only the
// current-turn player may eliminate, and only after asking a question.
func (s *Store) EliminateOptions(code, callerID string, optionIDs []string) ([]string, *Results, error) {
	room, err := s.Room(code)
	if err != nil {
		return nil, nil, err
	}
	if _, err := requirePlayer(room, callerID); err != nil {
		return nil, nil, err
	}
	if room.Variant != VariantShared {
		return nil, nil, statef("options are only eliminated globally in shared rooms")
	}
	if err := requireInPlay(room); err != nil {
		return nil, nil, err
	}
	if room.Phase != PhaseElimination {
		return nil, nil, statef("ask a question before eliminating options")
	}
	if room.CurrentTurn != callerID {
		return nil, nil, statef("it is not your turn")
	}

	seen := make(map[string]bool, len(optionIDs))
	var eliminated []string
	for _, id := range optionIDs {
		o := room.option(id)
		if o == nil || o.Eliminated || seen[id] {
			continue
		}
		seen[id] = true
		eliminated = append(eliminated, id)
	}
	if len(eliminated) == 0 {
		return nil, nil, validationf("choose at least one option")
	}
	if len(eliminated) >= len(room.remainingOptions()) {
		return nil, nil, validationf("at least one option must remain")
	}

	for _, id := range eliminated {
		room.option(id).Eliminated = true
	}

	return eliminated, room.checkCompletion(), nil
}

// RemainingOptions lists the options not yet eliminated.
func (s *Store) RemainingOptions(code string) ([]Option, error) {
	room, err := s.Room(code)
	if err != nil {
		return nil, err
	}
	remaining := room.remainingOptions()
	out := make([]Option, 0, len(remaining))
	for _, o := range remaining {
		out = append(out, *o)
	}
	return out, nil
}

/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package guessing

// ConfirmationToken must be echoed back by the client to submit a guess.
const ConfirmationToken = "CONFIRMED"

// GuessOutcome describes what a guess or give-up changed.
type GuessOutcome struct {
	PlayerID       string
	TargetID       string
	OptionID       string
	PlayerFinished bool
	Turn           TurnChange
	Results        *Results
}

func (r *Room) settle(out GuessOutcome) GuessOutcome {
	p, _ := r.player(out.PlayerID)
	out.PlayerFinished = p != nil && r.hasFinished(p)
	out.Turn = r.passTurnIfFinished(out.PlayerID)
	out.Results = r.checkCompletion()
	if out.Results != nil {
		out.Turn = TurnChange{}
	}
	return out
}

// SubmitGuess records a final guess. In the boards variant targetID names the player
// whose secret is being guessed and only that board closes; in the other variants
// targetID is omitted and the guesser finishes entirely.
func (s *Store) SubmitGuess(code, guesserID, targetID, optionID, confirmation string) (GuessOutcome, error) {
	room, err := s.Room(code)
	if err != nil {
		return GuessOutcome{}, err
	}
	guesser, err := requirePlayer(room, guesserID)
	if err != nil {
		return GuessOutcome{}, err
	}
	if err := requireInPlay(room); err != nil {
		return GuessOutcome{}, err
	}
	if confirmation != ConfirmationToken {
		return GuessOutcome{}, newError(ErrConfirmationRequired, "confirm your guess before submitting it")
	}
	o := room.option(optionID)
	if o == nil {
		return GuessOutcome{}, notFoundf("option %q not found", optionID)
	}

	if room.Variant.guessesOthers() {
		b, err := guessBoard(room, guesserID, targetID)
		if err != nil {
			return GuessOutcome{}, err
		}
		b.Status = BoardGuessed
		b.Guess = optionID
	} else {
		if targetID != "" && targetID != guesserID {
			return GuessOutcome{}, newError(ErrInvalidTarget, "in this room you guess your own secret")
		}
		if guesser.Finished {
			return GuessOutcome{}, statef("you have already finished")
		}
		if o.Eliminated {
			return GuessOutcome{}, validationf("that option has been eliminated")
		}
		guesser.Finished = true
		guesser.Guess = optionID
		targetID = guesserID
	}

	return room.settle(GuessOutcome{PlayerID: guesserID, TargetID: targetID, OptionID: optionID}), nil
}

func guessBoard(room *Room, guesserID, targetID string) (*Board, error) {
	if targetID == "" || targetID == guesserID {
		return nil, newError(ErrInvalidTarget, "choose another player to guess")
	}
	if t, _ := room.player(targetID); t == nil {
		return nil, notFoundf("player %q is not in this room", targetID)
	}
	b := room.board(guesserID, targetID)
	if b == nil {
		return nil, notFoundf("no board for that player")
	}
	if b.Status.Terminal() {
		return nil, statef("you have already finished that board")
	}
	return b, nil
}

// GiveUp finishes a scope without a guess: one board when targetID is set in the
// boards variant, otherwise everything the player has left open.
func (s *Store) GiveUp(code, playerID, targetID string) (GuessOutcome, error) {
	room, err := s.Room(code)
	if err != nil {
		return GuessOutcome{}, err
	}
	player, err := requirePlayer(room, playerID)
	if err != nil {
		return GuessOutcome{}, err
	}
	if err := requireInPlay(room); err != nil {
		return GuessOutcome{}, err
	}

	switch {
	case room.Variant.guessesOthers() && targetID != "":
		b, err := guessBoard(room, playerID, targetID)
		if err != nil {
			return GuessOutcome{}, err
		}
		b.Status = BoardGaveUp
	case room.Variant.guessesOthers():
		if room.hasFinished(player) {
			return GuessOutcome{}, statef("you have already finished")
		}
		for _, b := range room.boardsOf(playerID) {
			if !b.Status.Terminal() {
				b.Status = BoardGaveUp
			}
		}
	default:
		if targetID != "" && targetID != playerID {
			return GuessOutcome{}, newError(ErrInvalidTarget, "in this room you can only give up on your own secret")
		}
		if player.Finished {
			return GuessOutcome{}, statef("you have already finished")
		}
		player.Finished = true
		player.GaveUp = true
	}

	return room.settle(GuessOutcome{PlayerID: playerID, TargetID: targetID}), nil
}

// Secret returns the option assigned to playerID.
func (s *Store) Secret(code, playerID string) (Option, error) {
	room, err := s.Room(code)
	if err != nil {
		return Option{}, err
	}
	id, ok := room.Secrets[playerID]
	if !ok {
		return Option{}, notFoundf("no secret assigned")
	}
	o := room.option(id)
	if o == nil {
		return Option{}, notFoundf("no secret assigned")
	}
	return *o, nil
}

/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package guessing

type ResultEntry struct {
	GuesserID         string `json:"guesser_id"`
	GuesserName       string `json:"guesser_name"`
	TargetID          string `json:"target_id"`
	TargetName        string `json:"target_name"`
	IsCorrect         bool   `json:"is_correct"`
	GaveUp            bool   `json:"gave_up"`
	ActualSecretID    string `json:"actual_secret_id"`
	ActualSecretText  string `json:"actual_secret_text"`
	GuessedOptionID   string `json:"guessed_option_id,omitempty"`
	GuessedOptionText string `json:"guessed_option_text,omitempty"`
}

type Stats struct {
	TotalPlayers int `json:"total_players"`
	TotalCorrect int `json:"total_correct"`
	TotalGaveUp  int `json:"total_gave_up"`
	TotalBoards  int `json:"total_boards,omitempty"`
	TotalGuesses int `json:"total_guesses,omitempty"`
}

// Results are derived once when the game finishes and are never stored.
type Results struct {
	Entries []ResultEntry `json:"results"`
	Stats   Stats         `json:"stats"`
}

func (r *Room) entry(guesser, target *Player, guess string, gaveUp bool) ResultEntry {
	secret := r.Secrets[target.ID]
	return ResultEntry{
		GuesserID:         guesser.ID,
		GuesserName:       guesser.Name,
		TargetID:          target.ID,
		TargetName:        target.Name,
		IsCorrect:         guess != "" && guess == secret,
		GaveUp:            gaveUp,
		ActualSecretID:    secret,
		ActualSecretText:  r.optionText(secret),
		GuessedOptionID:   guess,
		GuessedOptionText: r.optionText(guess),
	}
}

// computeResults scores every (guesser, target) pair still in the room. In the
// variants where players guess their own secret, guesser and target are the same.
func computeResults(r *Room) Results {
	res := Results{Entries: []ResultEntry{}}
	res.Stats.TotalPlayers = len(r.Players)

	for _, guesser := range r.Players {
		if !r.Variant.guessesOthers() {
			res.Entries = append(res.Entries, r.entry(guesser, guesser, guesser.Guess, guesser.GaveUp))
			continue
		}
		for _, target := range r.Players {
			if target.ID == guesser.ID {
				continue
			}
			b := r.board(guesser.ID, target.ID)
			if b == nil {
				continue
			}
			res.Entries = append(res.Entries, r.entry(guesser, target, b.Guess, b.Status == BoardGaveUp))
			res.Stats.TotalBoards++
			if b.Status == BoardGuessed {
				res.Stats.TotalGuesses++
			}
		}
	}

	for _, e := range res.Entries {
		if e.IsCorrect {
			res.Stats.TotalCorrect++
		}
		if e.GaveUp {
			res.Stats.TotalGaveUp++
		}
	}

	return res
}

// Results recomputes the results of a finished room.
func (s *Store) Results(code string) (Results, error) {
	room, err := s.Room(code)
	if err != nil {
		return Results{}, err
	}
	if room.Phase != PhaseFinished {
		return Results{}, statef("game has not finished")
	}
	return computeResults(room), nil
}

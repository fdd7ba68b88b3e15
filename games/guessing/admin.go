/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package guessing

func (s *Store) ToggleReady(code, playerID string) (*Room, error) {
	room, err := s.Room(code)
	if err != nil {
		return nil, err
	}
	p, err := requirePlayer(room, playerID)
	if err != nil {
		return nil, err
	}
	if room.Phase != PhaseLobby {
		return nil, statef("ready is only used in the lobby")
	}
	p.Ready = !p.Ready
	return room, nil
}

func (s *Store) RenameRoom(code, callerID, name string) (*Room, error) {
	room, err := s.Room(code)
	if err != nil {
		return nil, err
	}
	if _, err := requireAdmin(room, callerID); err != nil {
		return nil, err
	}
	clean, err := validateRoomName(name)
	if err != nil {
		return nil, err
	}
	room.Name = clean
	return room, nil
}

func (s *Store) AddOption(code, callerID, text string) (*Room, error) {
	room, err := s.Room(code)
	if err != nil {
		return nil, err
	}
	if _, err := requireAdmin(room, callerID); err != nil {
		return nil, err
	}
	if room.Started() {
		return nil, statef("options cannot change after the game starts")
	}
	clean, err := validateOptionText(text)
	if err != nil {
		return nil, err
	}
	if len(room.Options) >= MaxOptions {
		return nil, validationf("a room can have at most %d options", MaxOptions)
	}
	room.addOption(clean)
	return room, nil
}

func (s *Store) RemoveOption(code, callerID, optionID string) (*Room, error) {
	room, err := s.Room(code)
	if err != nil {
		return nil, err
	}
	if _, err := requireAdmin(room, callerID); err != nil {
		return nil, err
	}
	if room.Started() {
		return nil, statef("options cannot change after the game starts")
	}
	idx := -1
	for i, o := range room.Options {
		if o.ID == optionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, notFoundf("option %q not found", optionID)
	}
	if len(room.Options) <= MinOptions {
		return nil, validationf("cannot remove option: a room needs at least %d options", MinOptions)
	}
	room.Options = append(room.Options[:idx], room.Options[idx+1:]...)
	return room, nil
}

// KickPlayer removes targetID on behalf of the admin.
func (s *Store) KickPlayer(code, callerID, targetID string) (RemoveOutcome, error) {
	room, err := s.Room(code)
	if err != nil {
		return RemoveOutcome{}, err
	}
	if _, err := requireAdmin(room, callerID); err != nil {
		return RemoveOutcome{}, err
	}
	if targetID == callerID {
		return RemoveOutcome{}, validationf("you cannot kick yourself")
	}
	if t, _ := room.player(targetID); t == nil {
		return RemoveOutcome{}, notFoundf("player %q is not in this room", targetID)
	}
	return s.RemovePlayer(code, targetID)
}

// UpdateNotes replaces a player's private notes.
func (s *Store) UpdateNotes(code, playerID, notes string) error {
	room, err := s.Room(code)
	if err != nil {
		return err
	}
	p, err := requirePlayer(room, playerID)
	if err != nil {
		return err
	}
	clean, err := validateNotes(notes)
	if err != nil {
		return err
	}
	p.Notes = clean
	return nil
}

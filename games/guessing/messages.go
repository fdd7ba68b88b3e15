/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package guessing

// Client message types.
const (
	ActionCreateRoom       = "create_room"
	ActionJoinRoom         = "join_room"
	ActionLeaveRoom        = "leave_room"
	ActionToggleReady      = "toggle_ready"
	ActionStartGame        = "start_game"
	ActionAskQuestion      = "ask_question"
	ActionNextTurn         = "next_turn"
	ActionEliminateOptions = "eliminate_options"
	ActionToggleOption     = "toggle_option"
	ActionBulkDiscard      = "bulk_discard"
	ActionSubmitGuess      = "submit_guess"
	ActionGiveUp           = "give_up"
	ActionUpdateNotes      = "update_notes"
	ActionRenameRoom       = "rename_room"
	ActionAddOption        = "add_option"
	ActionRemoveOption     = "remove_option"
	ActionKickPlayer       = "kick_player"
)

var actions = map[string]bool{
	ActionCreateRoom:       true,
	ActionJoinRoom:         true,
	ActionLeaveRoom:        true,
	ActionToggleReady:      true,
	ActionStartGame:        true,
	ActionAskQuestion:      true,
	ActionNextTurn:         true,
	ActionEliminateOptions: true,
	ActionToggleOption:     true,
	ActionBulkDiscard:      true,
	ActionSubmitGuess:      true,
	ActionGiveUp:           true,
	ActionUpdateNotes:      true,
	ActionRenameRoom:       true,
	ActionAddOption:        true,
	ActionRemoveOption:     true,
	ActionKickPlayer:       true,
}

func knownAction(kind string) bool {
	return actions[kind]
}

// ClientMessage is a single request from a connection. Only the fields relevant
// to Type are read.
type ClientMessage struct {
	Type         string   `json:"type"`
	RoomCode     string   `json:"room_code,omitempty"`
	RoomName     string   `json:"room_name,omitempty"`
	Username     string   `json:"username,omitempty"`
	Options      []string `json:"options,omitempty"`
	Variant      string   `json:"variant,omitempty"`
	TurnMode     string   `json:"turn_mode,omitempty"`
	Question     string   `json:"question,omitempty"`
	OptionID     string   `json:"option_id,omitempty"`
	OptionIDs    []string `json:"option_ids,omitempty"`
	OptionText   string   `json:"option_text,omitempty"`
	TargetID     string   `json:"target_id,omitempty"`
	PlayerID     string   `json:"player_id,omitempty"`
	Confirmation string   `json:"confirmation,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

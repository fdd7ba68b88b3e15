/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package guessing

// PublicPayload marks data that may be fanned out to every member of a room.
type PublicPayload interface {
	publicPayload()
}

// PrivatePayload marks data that may only be delivered to a single connection.
type PrivatePayload interface {
	privatePayload()
}

// ServerMessage is the wire envelope for everything the server sends.
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type outgoing struct {
	room string
	to   string
	msg  ServerMessage
}

// Outbox collects the messages produced by one action, in order. Room fan-out and
// direct sends take different payload types so a private board cannot be broadcast.
type Outbox struct {
	queued []outgoing
}

func (o *Outbox) Broadcast(room, kind string, p PublicPayload) {
	o.queued = append(o.queued, outgoing{room: room, msg: ServerMessage{Type: kind, Data: p}})
}

func (o *Outbox) Send(to, kind string, p PrivatePayload) {
	o.queued = append(o.queued, outgoing{to: to, msg: ServerMessage{Type: kind, Data: p}})
}

func (o *Outbox) Len() int {
	return len(o.queued)
}

// Message kinds sent to clients.
const (
	MsgRoomCreated       = "room_created"
	MsgJoined            = "joined"
	MsgRoomUpdate        = "room_update"
	MsgPlayerJoined      = "player_joined"
	MsgPlayerLeft        = "player_left"
	MsgGameStarted       = "game_started"
	MsgSecretAssigned    = "secret_assigned"
	MsgBoards            = "boards"
	MsgBoardUpdate       = "board_update"
	MsgQuestionAsked     = "question_asked"
	MsgTurnChanged       = "turn_changed"
	MsgPairRotated       = "pair_rotated"
	MsgOptionsEliminated = "options_eliminated"
	MsgPlayerGuessed     = "player_guessed"
	MsgPlayerGaveUp      = "player_gave_up"
	MsgGuessRecorded     = "guess_recorded"
	MsgGameFinished      = "game_finished"
	MsgKicked            = "kicked"
	MsgError             = "error"
)

// Public payloads.

type PlayerSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	IsAdmin     bool   `json:"is_admin"`
	IsReady     bool   `json:"is_ready"`
	HasFinished bool   `json:"has_finished"`
	BoardsDone  int    `json:"boards_done,omitempty"`
	BoardsTotal int    `json:"boards_total,omitempty"`
}

type OptionSummary struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Eliminated bool   `json:"eliminated"`
}

// RoomSnapshot is the public view of a room. It never carries secrets, boards or notes.
type RoomSnapshot struct {
	Code        string          `json:"room_code"`
	Name        string          `json:"room_name"`
	Variant     Variant         `json:"variant"`
	TurnMode    TurnMode        `json:"turn_mode"`
	Phase       Phase           `json:"phase"`
	Started     bool            `json:"game_started"`
	Players     []PlayerSummary `json:"players"`
	Options     []OptionSummary `json:"options"`
	CurrentTurn string          `json:"current_turn_player_id,omitempty"`
	ActivePair  []string        `json:"active_pair,omitempty"`
	Rotation    int             `json:"rotation,omitempty"`
	PairTurns   int             `json:"pair_turns,omitempty"`
}

func (RoomSnapshot) publicPayload() {}

type PlayerEvent struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username,omitempty"`
}

func (PlayerEvent) publicPayload() {}

type GameStarted struct {
	CurrentTurn string `json:"current_turn_player_id"`
	Phase       Phase  `json:"phase"`
}

func (GameStarted) publicPayload() {}

type QuestionAsked struct {
	PlayerID string `json:"player_id"`
	Question string `json:"question,omitempty"`
}

func (QuestionAsked) publicPayload() {}

type TurnEvent struct {
	CurrentTurn string   `json:"current_turn_player_id"`
	Phase       Phase    `json:"phase"`
	ActivePair  []string `json:"active_pair,omitempty"`
	Rotation    int      `json:"rotation"`
}

func (TurnEvent) publicPayload() {}

type OptionsEliminated struct {
	OptionIDs []string `json:"option_ids"`
	Remaining int      `json:"remaining"`
}

func (OptionsEliminated) publicPayload() {}

// ProgressEvent announces that a player guessed or gave up, without saying on whom or what.
type ProgressEvent struct {
	PlayerID    string `json:"player_id"`
	HasFinished bool   `json:"has_finished"`
}

func (ProgressEvent) publicPayload() {}

func (Results) publicPayload() {}

// Private payloads.

type Identity struct {
	RoomCode string `json:"room_code"`
	RoomName string `json:"room_name"`
	PlayerID string `json:"player_id"`
	IsAdmin  bool   `json:"is_admin"`
}

func (Identity) privatePayload() {}

type SecretAssigned struct {
	OptionID   string `json:"option_id"`
	OptionText string `json:"option_text"`
}

func (SecretAssigned) privatePayload() {}

type BoardsPayload struct {
	Boards []BoardView `json:"boards"`
}

func (BoardsPayload) privatePayload() {}

type GuessRecorded struct {
	TargetID string `json:"target_id"`
	OptionID string `json:"option_id"`
}

func (GuessRecorded) privatePayload() {}

type Notice struct {
	Message string `json:"message"`
}

func (Notice) privatePayload() {}

type ErrorPayload struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

func (ErrorPayload) privatePayload() {}

// Snapshot builds the public view of room.
func Snapshot(room *Room) RoomSnapshot {
	snap := RoomSnapshot{
		Code:        room.Code,
		Name:        room.Name,
		Variant:     room.Variant,
		TurnMode:    room.TurnMode,
		Phase:       room.Phase,
		Started:     room.Started(),
		Players:     make([]PlayerSummary, 0, len(room.Players)),
		Options:     make([]OptionSummary, 0, len(room.Options)),
		CurrentTurn: room.CurrentTurn,
	}

	for _, p := range room.Players {
		summary := PlayerSummary{
			ID:       p.ID,
			Username: p.Name,
			IsAdmin:  p.Admin,
			IsReady:  p.Ready,
		}
		if room.Started() {
			summary.HasFinished = room.hasFinished(p)
			if room.Variant.guessesOthers() {
				boards := room.boardsOf(p.ID)
				summary.BoardsTotal = len(boards)
				for _, b := range boards {
					if b.Status.Terminal() {
						summary.BoardsDone++
					}
				}
			}
		}
		snap.Players = append(snap.Players, summary)
	}

	for _, o := range room.Options {
		snap.Options = append(snap.Options, OptionSummary{ID: o.ID, Text: o.Text, Eliminated: o.Eliminated})
	}

	if room.TurnMode == TurnsPaired {
		snap.PairTurns = room.PairTurns
		snap.Rotation = room.Rotation
		snap.ActivePair = pairIDs(room)
	}

	return snap
}

func pairIDs(room *Room) []string {
	if room.TurnMode != TurnsPaired || !room.Phase.InPlay() {
		return nil
	}
	pair := room.ActivePair()
	ids := make([]string, 0, len(pair))
	for _, p := range pair {
		ids = append(ids, p.ID)
	}
	return ids
}

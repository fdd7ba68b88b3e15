/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package guessing

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultMessageRate  = 5
	DefaultMessageBurst = 10
	inboxSize           = 256
)

type eventKind int

const (
	eventRegister eventKind = iota
	eventUnregister
	eventAction
)

type event struct {
	kind    eventKind
	session Session
	id      string
	msg     ClientMessage
}

type DispatcherOptions struct {
	Rate   rate.Limit
	Burst  int
	Logger zerolog.Logger
}

// Dispatcher serializes every connection event through one goroutine, so the
// Store and the session registry are never touched concurrently.
type Dispatcher struct {
	store    *Store
	sessions *sessions
	log      zerolog.Logger

	inbox chan event
	done  chan struct{}
}

func NewDispatcher(store *Store, opts DispatcherOptions) *Dispatcher {
	if opts.Rate <= 0 {
		opts.Rate = DefaultMessageRate
	}
	if opts.Burst <= 0 {
		opts.Burst = DefaultMessageBurst
	}

	return &Dispatcher{
		store:    store,
		sessions: newSessions(opts.Rate, opts.Burst),
		log:      opts.Logger,
		inbox:    make(chan event, inboxSize),
		done:     make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled, then closes every session.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	for {
		select {
		case <-ctx.Done():
			d.sessions.closeAll()
			return
		case ev := <-d.inbox:
			d.handle(ev)
		}
	}
}

func (d *Dispatcher) enqueue(ev event) bool {
	select {
	case <-d.done:
		return false
	default:
	}

	select {
	case d.inbox <- ev:
		return true
	case <-d.done:
		return false
	}
}

// Register adds a connection. It returns false once the dispatcher has stopped.
func (d *Dispatcher) Register(s Session) bool {
	return d.enqueue(event{kind: eventRegister, session: s, id: s.ID()})
}

// Unregister removes a connection, leaving its room as if it sent leave_room.
func (d *Dispatcher) Unregister(id string) {
	d.enqueue(event{kind: eventUnregister, id: id})
}

// Submit queues a client message from connection id.
func (d *Dispatcher) Submit(id string, msg ClientMessage) bool {
	return d.enqueue(event{kind: eventAction, id: id, msg: msg})
}

func (d *Dispatcher) handle(ev event) {
	switch ev.kind {
	case eventRegister:
		d.sessions.add(ev.session)
		d.log.Debug().Str("conn", ev.id).Msg("connection registered")
	case eventUnregister:
		m := d.sessions.get(ev.id)
		if m == nil {
			return
		}
		out := &Outbox{}
		if m.room != "" {
			if err := d.leave(m, out); err != nil {
				d.log.Warn().Err(err).Str("conn", ev.id).Msg("failed to remove disconnected player")
			}
		}
		d.sessions.remove(ev.id)
		m.session.Close()
		d.flush(out)
		d.log.Debug().Str("conn", ev.id).Msg("connection unregistered")
	case eventAction:
		m := d.sessions.get(ev.id)
		if m == nil {
			return
		}
		d.dispatch(m, ev.msg)
	}
}

// dispatch runs one client action to completion and delivers its output. A rejected
// action produces a single private error and no other messages.
func (d *Dispatcher) dispatch(m *member, msg ClientMessage) {
	id := m.session.ID()

	if !m.limiter.Allow() {
		d.reject(id, msg.Type, newError(ErrValidation, "slow down"))
		return
	}

	out := &Outbox{}
	if err := d.apply(m, msg, out); err != nil {
		d.reject(id, msg.Type, err)
		return
	}
	d.flush(out)
}

func (d *Dispatcher) reject(id, action string, err error) {
	kind := ErrorKind(err)
	d.log.Debug().Str("conn", id).Str("action", action).Str("kind", kind).Err(err).Msg("action rejected")

	out := &Outbox{}
	out.Send(id, MsgError, ErrorPayload{Message: err.Error(), Kind: kind})
	d.flush(out)
}

func (d *Dispatcher) flush(out *Outbox) {
	for _, o := range out.queued {
		if o.to != "" {
			if m := d.sessions.get(o.to); m != nil {
				d.deliver(m, o.msg)
			}
			continue
		}
		for _, m := range d.sessions.inRoom(o.room) {
			d.deliver(m, o.msg)
		}
	}
}

// deliver drops a client whose buffer is full. Its transport notices the closed
// session and unregisters it.
func (d *Dispatcher) deliver(m *member, msg ServerMessage) {
	if !m.session.Deliver(msg) {
		d.log.Warn().Str("conn", m.session.ID()).Msg("client too slow, closing")
		m.session.Close()
	}
}

func (d *Dispatcher) apply(m *member, msg ClientMessage, out *Outbox) error {
	id := m.session.ID()

	switch msg.Type {
	case ActionCreateRoom:
		return d.createRoom(m, msg, out)
	case ActionJoinRoom:
		return d.joinRoom(m, msg, out)
	case "":
		return validationf("message type is required")
	}
	if !knownAction(msg.Type) {
		return validationf("unknown message type %q", msg.Type)
	}

	code, err := d.currentRoom(m, msg)
	if err != nil {
		return err
	}

	switch msg.Type {
	case ActionLeaveRoom:
		return d.leave(m, out)
	case ActionToggleReady:
		room, err := d.store.ToggleReady(code, id)
		if err != nil {
			return err
		}
		out.Broadcast(code, MsgRoomUpdate, Snapshot(room))
	case ActionStartGame:
		return d.startGame(code, id, out)
	case ActionAskQuestion:
		tc, question, err := d.store.AskQuestion(code, id, msg.Question)
		if err != nil {
			return err
		}
		out.Broadcast(code, MsgQuestionAsked, QuestionAsked{PlayerID: id, Question: question})
		d.turnEvents(code, tc, nil, out)
	case ActionNextTurn:
		tc, results, err := d.store.NextTurn(code, id)
		if err != nil {
			return err
		}
		d.turnEvents(code, tc, results, out)
	case ActionEliminateOptions:
		ids, results, err := d.store.EliminateOptions(code, id, msg.OptionIDs)
		if err != nil {
			return err
		}
		remaining, _ := d.store.RemainingOptions(code)
		out.Broadcast(code, MsgOptionsEliminated, OptionsEliminated{OptionIDs: ids, Remaining: len(remaining)})
		d.turnEvents(code, TurnChange{}, results, out)
	case ActionToggleOption:
		view, err := d.store.ToggleOption(code, id, msg.TargetID, msg.OptionID)
		if err != nil {
			return err
		}
		out.Send(id, MsgBoardUpdate, view)
	case ActionBulkDiscard:
		view, err := d.store.BulkDiscard(code, id, msg.TargetID, msg.OptionIDs)
		if err != nil {
			return err
		}
		out.Send(id, MsgBoardUpdate, view)
	case ActionSubmitGuess:
		outcome, err := d.store.SubmitGuess(code, id, msg.TargetID, msg.OptionID, msg.Confirmation)
		if err != nil {
			return err
		}
		out.Send(id, MsgGuessRecorded, GuessRecorded{TargetID: outcome.TargetID, OptionID: outcome.OptionID})
		d.progressEvents(code, MsgPlayerGuessed, outcome, out)
	case ActionGiveUp:
		outcome, err := d.store.GiveUp(code, id, msg.TargetID)
		if err != nil {
			return err
		}
		d.progressEvents(code, MsgPlayerGaveUp, outcome, out)
	case ActionUpdateNotes:
		return d.store.UpdateNotes(code, id, msg.Notes)
	case ActionRenameRoom:
		room, err := d.store.RenameRoom(code, id, msg.RoomName)
		if err != nil {
			return err
		}
		out.Broadcast(code, MsgRoomUpdate, Snapshot(room))
	case ActionAddOption:
		room, err := d.store.AddOption(code, id, msg.OptionText)
		if err != nil {
			return err
		}
		out.Broadcast(code, MsgRoomUpdate, Snapshot(room))
	case ActionRemoveOption:
		room, err := d.store.RemoveOption(code, id, msg.OptionID)
		if err != nil {
			return err
		}
		out.Broadcast(code, MsgRoomUpdate, Snapshot(room))
	case ActionKickPlayer:
		return d.kick(m, code, msg.PlayerID, out)
	}

	return nil
}

// currentRoom resolves the room an in-room action applies to. The connection's
// membership is authoritative; a room code in the message must agree with it.
func (d *Dispatcher) currentRoom(m *member, msg ClientMessage) (string, error) {
	if m.room == "" {
		return "", statef("you are not in a room")
	}
	if msg.RoomCode != "" && NormalizeCode(msg.RoomCode) != m.room {
		return "", notFoundf("you are not a member of room %s", NormalizeCode(msg.RoomCode))
	}
	return m.room, nil
}

func (d *Dispatcher) createRoom(m *member, msg ClientMessage, out *Outbox) error {
	if m.room != "" {
		return statef("leave room %s first", m.room)
	}
	variant, err := ParseVariant(msg.Variant)
	if err != nil {
		return err
	}
	mode, err := ParseTurnMode(msg.TurnMode)
	if err != nil {
		return err
	}

	id := m.session.ID()
	room, err := d.store.CreateRoom(id, CreateRequest{
		RoomName: msg.RoomName,
		Username: msg.Username,
		Options:  msg.Options,
		Variant:  variant,
		TurnMode: mode,
	})
	if err != nil {
		return err
	}
	m.room = room.Code

	out.Send(id, MsgRoomCreated, Identity{RoomCode: room.Code, RoomName: room.Name, PlayerID: id, IsAdmin: true})
	out.Broadcast(room.Code, MsgRoomUpdate, Snapshot(room))

	d.log.Info().
		Str("room", room.Code).
		Str("variant", room.Variant.String()).
		Str("turns", room.TurnMode.String()).
		Int("options", len(room.Options)).
		Int("rooms", d.store.Len()).
		Msg("room created")

	return nil
}

func (d *Dispatcher) joinRoom(m *member, msg ClientMessage, out *Outbox) error {
	if m.room != "" {
		return statef("leave room %s first", m.room)
	}

	id := m.session.ID()
	room, player, err := d.store.JoinRoom(msg.RoomCode, id, msg.Username)
	if err != nil {
		return err
	}
	m.room = room.Code

	out.Send(id, MsgJoined, Identity{RoomCode: room.Code, RoomName: room.Name, PlayerID: id})
	out.Broadcast(room.Code, MsgRoomUpdate, Snapshot(room))
	out.Broadcast(room.Code, MsgPlayerJoined, PlayerEvent{PlayerID: id, Username: player.Name})

	d.log.Info().Str("room", room.Code).Int("players", len(room.Players)).Msg("player joined")

	return nil
}

func (d *Dispatcher) startGame(code, id string, out *Outbox) error {
	room, err := d.store.StartGame(code, id)
	if err != nil {
		return err
	}

	for _, p := range room.Players {
		secret, err := d.store.Secret(code, p.ID)
		if err != nil {
			return err
		}
		out.Send(p.ID, MsgSecretAssigned, SecretAssigned{OptionID: secret.ID, OptionText: secret.Text})

		boards, err := d.store.Boards(code, p.ID)
		if err != nil {
			return err
		}
		if len(boards) > 0 {
			out.Send(p.ID, MsgBoards, BoardsPayload{Boards: boards})
		}
	}

	out.Broadcast(code, MsgGameStarted, GameStarted{CurrentTurn: room.CurrentTurn, Phase: room.Phase})
	out.Broadcast(code, MsgRoomUpdate, Snapshot(room))

	d.log.Info().Str("room", code).Int("players", len(room.Players)).Msg("game started")

	return nil
}

func (d *Dispatcher) leave(m *member, out *Outbox) error {
	code := m.room
	outcome, err := d.store.RemovePlayer(code, m.session.ID())
	m.room = ""
	if err != nil {
		return err
	}
	d.removalEvents(code, outcome, out)
	return nil
}

func (d *Dispatcher) kick(m *member, code, targetID string, out *Outbox) error {
	outcome, err := d.store.KickPlayer(code, m.session.ID(), targetID)
	if err != nil {
		return err
	}

	out.Send(targetID, MsgKicked, Notice{Message: "you were removed from the room by the admin"})
	if target := d.sessions.get(targetID); target != nil {
		target.room = ""
	}
	d.removalEvents(code, outcome, out)

	d.log.Info().Str("room", code).Msg("player kicked")

	return nil
}

func (d *Dispatcher) removalEvents(code string, outcome RemoveOutcome, out *Outbox) {
	if outcome.RoomDeleted {
		d.log.Info().Str("room", code).Int("rooms", d.store.Len()).Msg("room closed")
		return
	}

	out.Broadcast(code, MsgPlayerLeft, PlayerEvent{PlayerID: outcome.Player.ID, Username: outcome.Player.Name})
	d.turnEvents(code, outcome.Turn, outcome.Results, out)

	d.log.Info().Str("room", code).Msg("player left")
}

func (d *Dispatcher) progressEvents(code, kind string, outcome GuessOutcome, out *Outbox) {
	if boards, err := d.store.Boards(code, outcome.PlayerID); err == nil && len(boards) > 0 {
		out.Send(outcome.PlayerID, MsgBoards, BoardsPayload{Boards: boards})
	}
	out.Broadcast(code, kind, ProgressEvent{PlayerID: outcome.PlayerID, HasFinished: outcome.PlayerFinished})
	d.turnEvents(code, outcome.Turn, outcome.Results, out)
}

// turnEvents announces a turn change or the final results, then refreshes the room.
func (d *Dispatcher) turnEvents(code string, tc TurnChange, results *Results, out *Outbox) {
	room, err := d.store.Room(code)
	if err != nil {
		return
	}

	switch {
	case results != nil:
		out.Broadcast(code, MsgGameFinished, *results)
		d.log.Info().
			Str("room", code).
			Int("correct", results.Stats.TotalCorrect).
			Int("gave_up", results.Stats.TotalGaveUp).
			Msg("game finished")
	case tc.Changed:
		if tc.Rotated {
			out.Broadcast(code, MsgPairRotated, TurnEvent{
				CurrentTurn: tc.CurrentTurn,
				Phase:       tc.Phase,
				ActivePair:  pairIDs(room),
				Rotation:    tc.Rotation,
			})
		}
		out.Broadcast(code, MsgTurnChanged, TurnEvent{
			CurrentTurn: tc.CurrentTurn,
			Phase:       tc.Phase,
			ActivePair:  pairIDs(room),
			Rotation:    tc.Rotation,
		})
	}

	out.Broadcast(code, MsgRoomUpdate, Snapshot(room))
}

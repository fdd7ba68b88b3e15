/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package guessing

import (
	"crypto/rand"
	mrand "math/rand/v2"
	"time"
)

const (
	codeAlphabet      = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength        = 6
	defaultPairTurns  = 6
	maxCodeCollisions = 64
)

// Store owns every room in the process. It is not safe for concurrent use; the
// Dispatcher is its only caller.
type Store struct {
	rooms     map[string]*Room
	rng       *mrand.Rand
	newCode   func() string
	now       func() time.Time
	pairTurns int
}

type StoreOption func(*Store)

// WithRand sets the source used for secret assignment.
func WithRand(r *mrand.Rand) StoreOption {
	return func(s *Store) {
		s.rng = r
	}
}

// WithCodeGenerator replaces the crypto-random room code generator.
func WithCodeGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		s.newCode = fn
	}
}

// WithPairTurns sets how many asks an asks/responds pair gets before rotating.
func WithPairTurns(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.pairTurns = n
		}
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		rooms:     make(map[string]*Room),
		rng:       mrand.New(mrand.NewPCG(mrand.Uint64(), mrand.Uint64())),
		newCode:   newRoomCode,
		now:       time.Now,
		pairTurns: defaultPairTurns,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newRoomCode() string {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf)
}

func (s *Store) uniqueCode() (string, error) {
	for range maxCodeCollisions {
		code := NormalizeCode(s.newCode())
		if code == "" {
			continue
		}
		if _, exists := s.rooms[code]; !exists {
			return code, nil
		}
	}
	return "", newError(ErrCapacity, "unable to allocate a room code")
}

type CreateRequest struct {
	RoomName string
	Username string
	Options  []string
	Variant  Variant
	TurnMode TurnMode
}

// CreateRoom builds a room whose sole member, playerID, is its admin.
func (s *Store) CreateRoom(playerID string, req CreateRequest) (*Room, error) {
	name, err := validateRoomName(req.RoomName)
	if err != nil {
		return nil, err
	}
	username, err := validateUsername(req.Username)
	if err != nil {
		return nil, err
	}
	options, err := validateOptions(req.Options)
	if err != nil {
		return nil, err
	}
	if playerID == "" {
		return nil, validationf("player id is required")
	}
	// Shared elimination happens in the elimination phase, which paired turns never enter.
	if req.Variant == VariantShared && req.TurnMode == TurnsPaired {
		return nil, validationf("shared rooms must use round robin turns")
	}

	code, err := s.uniqueCode()
	if err != nil {
		return nil, err
	}

	now := s.now()
	room := &Room{
		Code:      code,
		Name:      name,
		Variant:   req.Variant,
		TurnMode:  req.TurnMode,
		Phase:     PhaseLobby,
		CreatedAt: now,
		Secrets:   make(map[string]string),
		PairTurns: s.pairTurns,
		boards:    make(map[boardKey]*Board),
	}
	for _, text := range options {
		room.addOption(text)
	}
	room.Players = append(room.Players, &Player{
		ID:       playerID,
		Name:     username,
		Admin:    true,
		JoinedAt: now,
	})

	s.rooms[code] = room

	return room, nil
}

// Room looks a room up by code, ignoring case.
func (s *Store) Room(code string) (*Room, error) {
	room, ok := s.rooms[NormalizeCode(code)]
	if !ok {
		return nil, notFoundf("room %q not found", NormalizeCode(code))
	}
	return room, nil
}

func (s *Store) Len() int {
	return len(s.rooms)
}

func (s *Store) JoinRoom(code, playerID, username string) (*Room, *Player, error) {
	room, err := s.Room(code)
	if err != nil {
		return nil, nil, err
	}
	name, err := validateUsername(username)
	if err != nil {
		return nil, nil, err
	}
	if room.Started() {
		return nil, nil, statef("game already started")
	}
	if len(room.Players) >= MaxPlayers {
		return nil, nil, newError(ErrCapacity, "room is full (%d players max)", MaxPlayers)
	}
	if p, _ := room.player(playerID); p != nil {
		return nil, nil, statef("already in this room")
	}

	player := &Player{
		ID:       playerID,
		Name:     name,
		JoinedAt: s.now(),
	}
	room.Players = append(room.Players, player)

	return room, player, nil
}

// RemoveOutcome describes the side effects of a player leaving.
type RemoveOutcome struct {
	Player      *Player
	RoomDeleted bool
	NewAdmin    *Player
	Turn        TurnChange
	Results     *Results
}

// RemovePlayer is used for disconnects, kicks and explicit leaves. Leaving mid-game
// counts as giving up everything: the player's boards and every board targeting them
// are dropped so the remaining players can still finish.
func (s *Store) RemovePlayer(code, playerID string) (RemoveOutcome, error) {
	room, err := s.Room(code)
	if err != nil {
		return RemoveOutcome{}, err
	}
	player, idx := room.player(playerID)
	if player == nil {
		return RemoveOutcome{}, notFoundf("player not in room")
	}

	out := RemoveOutcome{Player: player}

	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)

	if len(room.Players) == 0 {
		delete(s.rooms, room.Code)
		out.RoomDeleted = true
		return out, nil
	}

	if player.Admin {
		room.Players[0].Admin = true
		out.NewAdmin = room.Players[0]
	}

	if !room.Phase.InPlay() {
		return out, nil
	}

	for key := range room.boards {
		if key.owner == playerID || key.target == playerID {
			delete(room.boards, key)
		}
	}

	out.Turn = room.repairTurn(playerID, idx)
	out.Results = room.checkCompletion()
	if out.Results != nil {
		out.Turn = TurnChange{}
	}

	return out, nil
}

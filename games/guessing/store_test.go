/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package guessing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoom(t *testing.T) {
	s := newTestStore(t)

	room, err := s.CreateRoom("p1", CreateRequest{
		RoomName: "  Friday   night ",
		Username: "Ada",
		Options:  []string{"Cat", " Dog "},
	})
	require.NoError(t, err)

	assert.Equal(t, "CODE01", room.Code)
	assert.Equal(t, "Friday night", room.Name)
	assert.Equal(t, PhaseLobby, room.Phase)
	assert.Equal(t, VariantBoards, room.Variant)
	require.Len(t, room.Players, 1)
	assert.True(t, room.Players[0].Admin)
	require.Len(t, room.Options, 2)
	assert.Equal(t, "opt-1", room.Options[0].ID)
	assert.Equal(t, "Dog", room.Options[1].Text)
	assert.Equal(t, 1, s.Len())
}

func TestCreateRoomValidation(t *testing.T) {
	tooMany := make([]string, MaxOptions+1)
	for i := range tooMany {
		tooMany[i] = "x"
	}

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"empty room name", CreateRequest{RoomName: " ", Username: "Ada", Options: []string{"a", "b"}}},
		{"long username", CreateRequest{RoomName: "r", Username: strings.Repeat("a", 31), Options: []string{"a", "b"}}},
		{"one option", CreateRequest{RoomName: "r", Username: "Ada", Options: []string{"a"}}},
		{"too many options", CreateRequest{RoomName: "r", Username: "Ada", Options: tooMany}},
		{"long option", CreateRequest{RoomName: "r", Username: "Ada", Options: []string{"a", strings.Repeat("b", 31)}}},
		{"control character", CreateRequest{RoomName: "r", Username: "Ada", Options: []string{"a", "b\x07"}}},
		{"shared list with paired turns", CreateRequest{RoomName: "r", Username: "Ada", Options: []string{"a", "b"}, Variant: VariantShared, TurnMode: TurnsPaired}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			_, err := s.CreateRoom("p1", tt.req)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, 0, s.Len())
		})
	}
}

func TestCreateRoomCodeExhaustion(t *testing.T) {
	s := newTestStore(t, WithCodeGenerator(func() string { return "SAME01" }))

	_, err := s.CreateRoom("p1", CreateRequest{RoomName: "r", Username: "a", Options: []string{"a", "b"}})
	require.NoError(t, err)

	_, err = s.CreateRoom("p2", CreateRequest{RoomName: "r", Username: "b", Options: []string{"a", "b"}})
	assert.ErrorIs(t, err, ErrCapacity)
}

func TestNewRoomCode(t *testing.T) {
	code := newRoomCode()
	assert.Len(t, code, codeLength)
	for _, c := range code {
		assert.Contains(t, codeAlphabet, string(c))
	}
}

func TestJoinRoomIgnoresCase(t *testing.T) {
	s := newTestStore(t)
	room := setupRoom(t, s, VariantBoards, TurnsRoundRobin, 1)

	joined, player, err := s.JoinRoom(" code01 ", "p2", "Bob")
	require.NoError(t, err)
	assert.Same(t, room, joined)
	assert.False(t, player.Admin)
	assert.Len(t, room.Players, 2)
}

func TestJoinRoomErrors(t *testing.T) {
	s := newTestStore(t)
	room := setupRoom(t, s, VariantBoards, TurnsRoundRobin, MaxPlayers)

	_, _, err := s.JoinRoom(room.Code, "p5", "Eve")
	assert.ErrorIs(t, err, ErrCapacity)

	_, _, err = s.JoinRoom("NOPE99", "p5", "Eve")
	assert.ErrorIs(t, err, ErrNotFound)

	other := setupRoom(t, s, VariantBoards, TurnsRoundRobin, 2)
	_, _, err = s.JoinRoom(other.Code, "p2", "Again")
	assert.ErrorIs(t, err, ErrState)

	_, err = s.StartGame(other.Code, "p1")
	require.NoError(t, err)
	_, _, err = s.JoinRoom(other.Code, "p9", "Late")
	assert.ErrorIs(t, err, ErrState)
}

func TestRemovePlayerPromotesAdmin(t *testing.T) {
	s := newTestStore(t)
	room := setupRoom(t, s, VariantBoards, TurnsRoundRobin, 3)

	out, err := s.RemovePlayer(room.Code, "p1")
	require.NoError(t, err)

	assert.False(t, out.RoomDeleted)
	require.NotNil(t, out.NewAdmin)
	assert.Equal(t, "p2", out.NewAdmin.ID)
	assert.True(t, room.Players[0].Admin)
	assert.Len(t, room.Players, 2)
	assert.Equal(t, room.Players[0], room.admin())
}

func TestRemoveLastPlayerDeletesRoom(t *testing.T) {
	s := newTestStore(t)
	room := setupRoom(t, s, VariantBoards, TurnsRoundRobin, 1)

	out, err := s.RemovePlayer(room.Code, "p1")
	require.NoError(t, err)
	assert.True(t, out.RoomDeleted)
	assert.Equal(t, 0, s.Len())

	_, err = s.Room(room.Code)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemovePlayerMidGameDropsBoards(t *testing.T) {
	s := newTestStore(t)
	room := startedRoom(t, s, VariantBoards, TurnsRoundRobin, 3)

	_, err := s.RemovePlayer(room.Code, "p3")
	require.NoError(t, err)

	for key := range room.boards {
		assert.NotEqual(t, "p3", key.owner)
		assert.NotEqual(t, "p3", key.target)
	}
	assert.Len(t, room.boards, 2)
}

func TestRemoveCurrentPlayerPassesTurn(t *testing.T) {
	s := newTestStore(t)
	room := startedRoom(t, s, VariantPrivate, TurnsRoundRobin, 3)

	_, _, err := s.AskQuestion(room.Code, "p1", "Is it red?")
	require.NoError(t, err)

	out, err := s.RemovePlayer(room.Code, "p1")
	require.NoError(t, err)

	assert.True(t, out.Turn.Changed)
	assert.Equal(t, "p2", room.CurrentTurn)
	assert.Equal(t, PhaseQuestion, room.Phase)
}

func TestRemovePlayerCanFinishGame(t *testing.T) {
	s := newTestStore(t)
	room := startedRoom(t, s, VariantPrivate, TurnsRoundRobin, 2)

	_, err := s.SubmitGuess(room.Code, "p1", "", room.Secrets["p1"], ConfirmationToken)
	require.NoError(t, err)

	out, err := s.RemovePlayer(room.Code, "p2")
	require.NoError(t, err)

	require.NotNil(t, out.Results)
	assert.Equal(t, PhaseFinished, room.Phase)
	require.Len(t, out.Results.Entries, 1)
	assert.True(t, out.Results.Entries[0].IsCorrect)
}

/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package guessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleOptionTwiceRestoresNormal(t *testing.T) {
	s := newTestStore(t)
	room := startedRoom(t, s, VariantBoards, TurnsRoundRobin, 2)

	view, err := s.ToggleOption(room.Code, "p1", "p2", "opt-1")
	require.NoError(t, err)
	mark := markOf(t, view, "opt-1")
	assert.Equal(t, StateDiscarded, mark.State)
	assert.Equal(t, "p2", mark.DiscardedFor)
	assert.Equal(t, "p2", view.TargetID)

	view, err = s.ToggleOption(room.Code, "p1", "p2", "opt-1")
	require.NoError(t, err)
	mark = markOf(t, view, "opt-1")
	assert.Equal(t, StateNormal, mark.State)
	assert.Empty(t, mark.DiscardedFor)
	assert.Empty(t, room.board("p1", "p2").Marks)
}

func TestToggleOptionPrivateCycle(t *testing.T) {
	s := newTestStore(t)
	room := startedRoom(t, s, VariantPrivate, TurnsRoundRobin, 2)

	want := []OptionState{StateDiscarded, StatePossibleGuess, StateNormal}
	for _, state := range want {
		view, err := s.ToggleOption(room.Code, "p1", "", "opt-2")
		require.NoError(t, err)
		assert.Equal(t, state, markOf(t, view, "opt-2").State)
	}
}

func TestPrivateBoardIgnoresTarget(t *testing.T) {
	s := newTestStore(t)
	room := startedRoom(t, s, VariantPrivate, TurnsRoundRobin, 3)

	view, err := s.ToggleOption(room.Code, "p1", "p2", "opt-2")
	require.NoError(t, err)
	mark := markOf(t, view, "opt-2")
	assert.Equal(t, StateDiscarded, mark.State)
	assert.Empty(t, mark.DiscardedFor)

	view, err = s.BulkDiscard(room.Code, "p1", "p3", []string{"opt-3"})
	require.NoError(t, err)
	assert.Empty(t, markOf(t, view, "opt-3").DiscardedFor)
}

func TestBoardsAreIsolated(t *testing.T) {
	s := newTestStore(t)
	room := startedRoom(t, s, VariantBoards, TurnsRoundRobin, 3)

	_, err := s.ToggleOption(room.Code, "p1", "p2", "opt-3")
	require.NoError(t, err)

	assert.Equal(t, StateDiscarded, room.board("p1", "p2").Marks["opt-3"].State)
	assert.Empty(t, room.board("p1", "p3").Marks)
	assert.Empty(t, room.board("p2", "p1").Marks)
	assert.Empty(t, room.board("p3", "p2").Marks)

	for _, o := range room.Options {
		assert.False(t, o.Eliminated)
	}
}

func TestBoardTargetValidation(t *testing.T) {
	s := newTestStore(t)
	room := startedRoom(t, s, VariantBoards, TurnsRoundRobin, 2)

	_, err := s.ToggleOption(room.Code, "p1", "p1", "opt-1")
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = s.ToggleOption(room.Code, "p1", "", "opt-1")
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = s.ToggleOption(room.Code, "p1", "p9", "opt-1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.ToggleOption(room.Code, "p1", "p2", "opt-99")
	assert.ErrorIs(t, err, ErrNotFound)

	shared := startedRoom(t, s, VariantShared, TurnsRoundRobin, 2)
	_, err = s.ToggleOption(shared.Code, "p1", "", "opt-1")
	assert.ErrorIs(t, err, ErrState)

	lobby := setupRoom(t, s, VariantBoards, TurnsRoundRobin, 2)
	_, err = s.ToggleOption(lobby.Code, "p1", "p2", "opt-1")
	assert.ErrorIs(t, err, ErrState)
}

func TestFinishedBoardIgnoresToggles(t *testing.T) {
	s := newTestStore(t)
	room := startedRoom(t, s, VariantBoards, TurnsRoundRobin, 3)

	_, err := s.GiveUp(room.Code, "p1", "p2")
	require.NoError(t, err)

	view, err := s.ToggleOption(room.Code, "p1", "p2", "opt-1")
	require.NoError(t, err)
	assert.Equal(t, BoardGaveUp, view.Status)
	assert.Equal(t, StateNormal, markOf(t, view, "opt-1").State)
}

func TestBulkDiscard(t *testing.T) {
	s := newTestStore(t)
	room := startedRoom(t, s, VariantBoards, TurnsRoundRobin, 2)

	view, err := s.BulkDiscard(room.Code, "p2", "p1", []string{"opt-1", "opt-4", "opt-404"})
	require.NoError(t, err)

	assert.Equal(t, StateDiscarded, markOf(t, view, "opt-1").State)
	assert.Equal(t, StateDiscarded, markOf(t, view, "opt-4").State)
	assert.Equal(t, StateNormal, markOf(t, view, "opt-2").State)
	assert.Len(t, room.board("p2", "p1").Marks, 2)
}

func TestEliminateOptions(t *testing.T) {
	s := newTestStore(t)
	room := startedRoom(t, s, VariantShared, TurnsRoundRobin, 2)

	_, _, err := s.EliminateOptions(room.Code, "p1", []string{"opt-1"})
	assert.ErrorIs(t, err, ErrState, "eliminating requires a question first")

	_, _, err = s.AskQuestion(room.Code, "p1", "Is it yellow?")
	require.NoError(t, err)

	_, _, err = s.EliminateOptions(room.Code, "p2", []string{"opt-1"})
	assert.ErrorIs(t, err, ErrState)

	ids, results, err := s.EliminateOptions(room.Code, "p1", []string{"opt-1", "opt-2", "opt-1", "opt-404"})
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Equal(t, []string{"opt-1", "opt-2"}, ids)

	remaining, err := s.RemainingOptions(room.Code)
	require.NoError(t, err)
	assert.Len(t, remaining, len(defaultOptions)-2)

	all := make([]string, 0, len(remaining))
	for _, o := range remaining {
		all = append(all, o.ID)
	}
	_, _, err = s.EliminateOptions(room.Code, "p1", all)
	assert.ErrorIs(t, err, ErrValidation)

	remaining, err = s.RemainingOptions(room.Code)
	require.NoError(t, err)
	assert.Len(t, remaining, len(defaultOptions)-2)
}

func TestEliminateRequiresKnownOptions(t *testing.T) {
	s := newTestStore(t)
	room := startedRoom(t, s, VariantShared, TurnsRoundRobin, 2)

	_, _, err := s.AskQuestion(room.Code, "p1", "")
	require.NoError(t, err)

	for _, ids := range [][]string{nil, {}, {"opt-404"}} {
		_, _, err = s.EliminateOptions(room.Code, "p1", ids)
		assert.ErrorIs(t, err, ErrValidation, "ids %v", ids)
	}

	remaining, err := s.RemainingOptions(room.Code)
	require.NoError(t, err)
	assert.Len(t, remaining, len(defaultOptions))
	assert.Equal(t, PhaseElimination, room.Phase)
}

func TestEliminateDownToOneFinishes(t *testing.T) {
	s := newTestStore(t)
	room := startedRoom(t, s, VariantShared, TurnsRoundRobin, 2, "A", "B", "C")

	_, _, err := s.AskQuestion(room.Code, "p1", "")
	require.NoError(t, err)

	_, results, err := s.EliminateOptions(room.Code, "p1", []string{"opt-1", "opt-2"})
	require.NoError(t, err)
	require.NotNil(t, results)
	assert.Equal(t, PhaseFinished, room.Phase)
	assert.Len(t, results.Entries, 2)
}

func TestEliminateOnlyInSharedRooms(t *testing.T) {
	s := newTestStore(t)
	room := startedRoom(t, s, VariantPrivate, TurnsRoundRobin, 2)

	_, _, err := s.AskQuestion(room.Code, "p1", "")
	require.NoError(t, err)

	_, _, err = s.EliminateOptions(room.Code, "p1", []string{"opt-1"})
	assert.ErrorIs(t, err, ErrState)
}

func TestBoardsViewOwnerOnly(t *testing.T) {
	s := newTestStore(t)
	room := startedRoom(t, s, VariantBoards, TurnsRoundRobin, 3)

	views, err := s.Boards(room.Code, "p2")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "p1", views[0].TargetID)
	assert.Equal(t, "p3", views[1].TargetID)

	_, err = s.Boards(room.Code, "p9")
	assert.ErrorIs(t, err, ErrNotFound)
}

/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package guessing

import (
	"encoding/json"
	"fmt"
	mrand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

var defaultOptions = []string{"Apple", "Banana", "Cherry", "Durian", "Elderberry", "Fig"}

func newTestStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()

	n := 0
	base := []StoreOption{
		WithRand(mrand.New(mrand.NewPCG(1, 2))),
		WithCodeGenerator(func() string {
			n++
			return fmt.Sprintf("code%02d", n)
		}),
	}

	return NewStore(append(base, opts...)...)
}

func playerID(i int) string {
	return fmt.Sprintf("p%d", i)
}

// setupRoom creates a room administered by p1 and joins p2..pN.
func setupRoom(t *testing.T, s *Store, variant Variant, mode TurnMode, players int, options ...string) *Room {
	t.Helper()

	if len(options) == 0 {
		options = defaultOptions
	}

	room, err := s.CreateRoom(playerID(1), CreateRequest{
		RoomName: "Test Room",
		Username: "Player 1",
		Options:  options,
		Variant:  variant,
		TurnMode: mode,
	})
	require.NoError(t, err)

	for i := 2; i <= players; i++ {
		_, _, err := s.JoinRoom(room.Code, playerID(i), fmt.Sprintf("Player %d", i))
		require.NoError(t, err)
	}

	return room
}

func startedRoom(t *testing.T, s *Store, variant Variant, mode TurnMode, players int, options ...string) *Room {
	t.Helper()

	room := setupRoom(t, s, variant, mode, players, options...)
	_, err := s.StartGame(room.Code, playerID(1))
	require.NoError(t, err)

	return room
}

// wrongOption returns an option id that is not the secret of target.
func wrongOption(room *Room, target string) string {
	for _, o := range room.Options {
		if o.ID != room.Secrets[target] {
			return o.ID
		}
	}
	return ""
}

func markOf(t *testing.T, view BoardView, optionID string) BoardOption {
	t.Helper()

	for _, o := range view.Options {
		if o.ID == optionID {
			return o
		}
	}
	t.Fatalf("option %s not on board", optionID)
	return BoardOption{}
}

func toJSON(t *testing.T, v any) string {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package guessing

import (
	"fmt"
	"time"
)

type Phase int

const (
	PhaseLobby Phase = iota
	PhaseQuestion
	PhaseElimination
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseQuestion:
		return "question"
	case PhaseElimination:
		return "elimination"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// InPlay reports whether the game has started and not yet finished.
func (p Phase) InPlay() bool {
	return p == PhaseQuestion || p == PhaseElimination
}

// Variant selects how option state is tracked and what a guess targets.
type Variant int

const (
	// VariantBoards keeps one board per ordered (owner, target) pair; players guess each other's secrets.
	VariantBoards Variant = iota
	// VariantPrivate keeps one private copy of the list per player; players guess their own secret.
	VariantPrivate
	// VariantShared keeps a single list with global elimination; players guess their own secret.
	VariantShared
)

func (v Variant) String() string {
	switch v {
	case VariantBoards:
		return "boards"
	case VariantPrivate:
		return "private"
	case VariantShared:
		return "shared"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// ParseVariant maps a client-supplied name to a Variant. The empty string selects VariantBoards.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "", "boards":
		return VariantBoards, nil
	case "private":
		return VariantPrivate, nil
	case "shared":
		return VariantShared, nil
	default:
		return 0, validationf("unknown game variant %q", s)
	}
}

// guessesOthers reports whether guesses in this variant name another player's secret.
func (v Variant) guessesOthers() bool {
	return v == VariantBoards
}

type TurnMode int

const (
	TurnsRoundRobin TurnMode = iota
	TurnsPaired
)

func (m TurnMode) String() string {
	switch m {
	case TurnsRoundRobin:
		return "roundRobin"
	case TurnsPaired:
		return "paired"
	default:
		return fmt.Sprintf("turnmode(%d)", int(m))
	}
}

func (m TurnMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func ParseTurnMode(s string) (TurnMode, error) {
	switch s {
	case "", "roundRobin", "round_robin":
		return TurnsRoundRobin, nil
	case "paired":
		return TurnsPaired, nil
	default:
		return 0, validationf("unknown turn mode %q", s)
	}
}

// OptionState is the view-local state of one option on one board.
type OptionState int

const (
	StateNormal OptionState = iota
	StateDiscarded
	StatePossibleGuess
)

func (s OptionState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateDiscarded:
		return "discarded"
	case StatePossibleGuess:
		return "possibleGuess"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s OptionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// next advances s one step through the variant's cycle.
func (s OptionState) next(v Variant) OptionState {
	switch {
	case v == VariantPrivate && s == StateNormal:
		return StateDiscarded
	case v == VariantPrivate && s == StateDiscarded:
		return StatePossibleGuess
	case s == StateNormal:
		return StateDiscarded
	default:
		return StateNormal
	}
}

type BoardStatus int

const (
	BoardOpen BoardStatus = iota
	BoardGuessed
	BoardGaveUp
)

func (s BoardStatus) String() string {
	switch s {
	case BoardOpen:
		return "open"
	case BoardGuessed:
		return "guessed"
	case BoardGaveUp:
		return "gaveUp"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s BoardStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s BoardStatus) Terminal() bool {
	return s == BoardGuessed || s == BoardGaveUp
}

type Option struct {
	ID         string
	Text       string
	Eliminated bool
}

type Mark struct {
	State        OptionState
	DiscardedFor string
}

// Board is one player's private overlay over the master option list. Target is empty
// for the per-player lists of VariantPrivate.
type Board struct {
	Owner  string
	Target string
	Marks  map[string]Mark
	Status BoardStatus
	Guess  string
}

type boardKey struct {
	owner  string
	target string
}

type Player struct {
	ID       string
	Name     string
	Admin    bool
	Ready    bool
	Notes    string
	JoinedAt time.Time

	// Whole-player completion, used by the variants where players guess their own secret.
	Finished bool
	GaveUp   bool
	Guess    string
}

type Room struct {
	Code      string
	Name      string
	Variant   Variant
	TurnMode  TurnMode
	Phase     Phase
	CreatedAt time.Time

	Players     []*Player
	Options     []*Option
	Secrets     map[string]string
	CurrentTurn string

	// Asks/responds pairing state.
	Rotation    int
	PairTurns   int
	turnsInPair int

	boards     map[boardKey]*Board
	nextOption int
}

func (r *Room) Started() bool {
	return r.Phase != PhaseLobby
}

func (r *Room) player(id string) (*Player, int) {
	for i, p := range r.Players {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

func (r *Room) option(id string) *Option {
	for _, o := range r.Options {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (r *Room) optionText(id string) string {
	if o := r.option(id); o != nil {
		return o.Text
	}
	return ""
}

func (r *Room) admin() *Player {
	for _, p := range r.Players {
		if p.Admin {
			return p
		}
	}
	return nil
}

func (r *Room) remainingOptions() []*Option {
	out := make([]*Option, 0, len(r.Options))
	for _, o := range r.Options {
		if !o.Eliminated {
			out = append(out, o)
		}
	}
	return out
}

func (r *Room) addOption(text string) *Option {
	r.nextOption++
	o := &Option{ID: fmt.Sprintf("opt-%d", r.nextOption), Text: text}
	r.Options = append(r.Options, o)
	return o
}

func (r *Room) board(owner, target string) *Board {
	if r.Variant != VariantBoards {
		target = ""
	}
	return r.boards[boardKey{owner: owner, target: target}]
}

// boardsOf returns owner's boards in player order.
func (r *Room) boardsOf(owner string) []*Board {
	var out []*Board
	if r.Variant == VariantPrivate {
		if b := r.boards[boardKey{owner: owner}]; b != nil {
			out = append(out, b)
		}
		return out
	}
	for _, p := range r.Players {
		if b := r.boards[boardKey{owner: owner, target: p.ID}]; b != nil {
			out = append(out, b)
		}
	}
	return out
}

// hasFinished reports whether a player has reached a terminal state for the whole game.
func (r *Room) hasFinished(p *Player) bool {
	if !r.Variant.guessesOthers() {
		return p.Finished
	}
	for _, b := range r.boardsOf(p.ID) {
		if !b.Status.Terminal() {
			return false
		}
	}
	return true
}

func (r *Room) activePlayers() []*Player {
	out := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if !r.hasFinished(p) {
			out = append(out, p)
		}
	}
	return out
}

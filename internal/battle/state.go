package battle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ronakgh97/pokebrains/internal/constants"
	"github.com/ronakgh97/pokebrains/internal/protocol"
)

// ErrIdentityUnresolved marks the fatal case where both match players are
// known and neither matches the configured username. The match session cannot
// continue: there is no way to know which perspective to assist.
var ErrIdentityUnresolved = errors.New("could not resolve assisted identity")

// IdentityError carries the names involved in a failed side resolution.
type IdentityError struct {
	Configured string
	P1         string
	P2         string
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("could not match username %q to either %q or %q", e.Configured, e.P1, e.P2)
}

func (e *IdentityError) Unwrap() error { return ErrIdentityUnresolved }

// Roster is one side's revealed team.
type Roster struct {
	Player  string
	Side    protocol.Side
	Pokemon []string
}

// MatchState accumulates everything observed about the active battle. It is
// mutated only through Ingest and must not be shared across goroutines;
// consumers get a point-in-time copy via Snapshot.
type MatchState struct {
	Rosters  [2]Roster // [0] = p1, [1] = p2; singles only
	Init     []protocol.Event
	Assist   string
	UserSide protocol.Side // empty until resolved
	Buffer   []protocol.Event
	Turns    [][]protocol.Event

	Started          bool
	Previewing       bool
	InitialSuggested bool

	tokenizer *protocol.Tokenizer
	logger    zerolog.Logger
}

// NewMatchState creates the state for one match session assisting the given
// username.
func NewMatchState(assist string, logger zerolog.Logger) *MatchState {
	return &MatchState{
		Assist:    assist,
		tokenizer: protocol.NewTokenizer(logger),
		logger:    logger,
	}
}

// Ingest processes one raw protocol line. It is the sole mutation entry
// point. The only error it can return is an identity resolution failure,
// which is fatal for the match session.
func (m *MatchState) Ingest(line string) error {
	if !m.Started {
		return m.ingestSetup(line)
	}
	m.ingestTurn(line)
	return nil
}

func (m *MatchState) ingestSetup(line string) error {
	ev := m.tokenizer.Decode(line)
	if ev == nil {
		return nil
	}

	switch e := ev.(type) {
	case protocol.Title, protocol.Generation:
		m.Init = append(m.Init, ev)
	case protocol.PlayerAnnounce:
		roster := m.rosterFor(e.Side)
		if roster == nil {
			return nil
		}
		roster.Player = e.Username
		roster.Side = e.Side
		m.resolveSide(e)
		if m.UserSide == "" && m.Rosters[0].Player != "" && m.Rosters[1].Player != "" {
			return &IdentityError{Configured: m.Assist, P1: m.Rosters[0].Player, P2: m.Rosters[1].Player}
		}
	case protocol.RosterReveal:
		roster := m.rosterFor(e.Side)
		if roster == nil {
			return nil
		}
		if len(roster.Pokemon) < constants.TeamSize {
			roster.Pokemon = append(roster.Pokemon, e.Species)
		}
	case protocol.TeamPreview:
		m.Previewing = true
		m.Init = append(m.Init, ev)
		m.Init = append(m.Init, protocol.Message{Text: "You are assisting: " + m.Assist})
	case protocol.BattleStart:
		if m.UserSide == "" {
			return &IdentityError{Configured: m.Assist, P1: m.Rosters[0].Player, P2: m.Rosters[1].Player}
		}
		m.Init = append(m.Init, ev)
		m.Started = true
	}
	return nil
}

func (m *MatchState) ingestTurn(line string) {
	// A turn marker closes out the previous turn even when its own number
	// fails to decode.
	if strings.Contains(line, "|turn|") {
		m.flush()
		if ev := m.tokenizer.Decode(line); ev != nil {
			m.Buffer = append(m.Buffer, protocol.Normalize(ev, m.Perspective()))
		}
		return
	}

	ev := m.tokenizer.Decode(line)
	if ev == nil || setupKind(ev) {
		return
	}
	m.Buffer = append(m.Buffer, protocol.Normalize(ev, m.Perspective()))

	// Terminal events never get a trailing turn marker, so the buffer is
	// flushed on the spot.
	if protocol.Terminal(ev) {
		m.flush()
	}
}

// setupKind reports whether the event belongs to the setup phase; stray late
// copies of these lines carry nothing a turn log should include.
func setupKind(ev protocol.Event) bool {
	switch ev.(type) {
	case protocol.Title, protocol.Generation, protocol.PlayerAnnounce,
		protocol.RosterReveal, protocol.TeamPreview, protocol.BattleStart:
		return true
	default:
		return false
	}
}

func (m *MatchState) flush() {
	if len(m.Buffer) == 0 {
		return
	}
	turn := make([]protocol.Event, len(m.Buffer))
	copy(turn, m.Buffer)
	m.Turns = append(m.Turns, turn)
	m.Buffer = m.Buffer[:0]
}

// resolveSide matches an announced player name against the configured
// username. The resolved side is set at most once per match.
func (m *MatchState) resolveSide(e protocol.PlayerAnnounce) {
	if m.UserSide != "" {
		return
	}
	if strings.EqualFold(strings.TrimSpace(e.Username), strings.TrimSpace(m.Assist)) {
		m.UserSide = e.Side
		m.logger.Info().Str("side", string(e.Side)).Str("username", e.Username).Msg("assisted side resolved")
	}
}

func (m *MatchState) rosterFor(side protocol.Side) *Roster {
	switch side {
	case protocol.SideP1:
		return &m.Rosters[0]
	case protocol.SideP2:
		return &m.Rosters[1]
	default:
		return nil
	}
}

// Perspective returns the relabeling view for the resolved side, or an
// unresolved perspective when side resolution has not happened yet.
func (m *MatchState) Perspective() protocol.Perspective {
	if m.UserSide == "" {
		return protocol.Perspective{}
	}
	you := m.rosterFor(m.UserSide)
	opp := m.rosterFor(m.UserSide.Opposite())
	return protocol.Perspective{
		UserSide:    m.UserSide,
		AssistName:  you.Player,
		AgainstName: opp.Player,
	}
}

// CurrentTurn returns the highest known turn number: the live buffer is
// checked first, then the most recently completed turn. Zero means the battle
// has not reached its first turn.
func (m *MatchState) CurrentTurn() int {
	for _, ev := range m.Buffer {
		if t, ok := ev.(protocol.Turn); ok {
			return t.Number
		}
	}
	if len(m.Turns) > 0 {
		for _, ev := range m.Turns[len(m.Turns)-1] {
			if t, ok := ev.(protocol.Turn); ok {
				return t.Number
			}
		}
	}
	return 0
}

// Ended reports whether a win or tie event has been observed.
func (m *MatchState) Ended() bool {
	for _, ev := range m.Buffer {
		if protocol.Terminal(ev) {
			return true
		}
	}
	if len(m.Turns) > 0 {
		for _, ev := range m.Turns[len(m.Turns)-1] {
			if protocol.Terminal(ev) {
				return true
			}
		}
	}
	return false
}

// Snapshot returns a deep copy safe to hand to the recommendation layer while
// ingestion continues.
func (m *MatchState) Snapshot() Snapshot {
	snap := Snapshot{
		Assist:           m.Assist,
		UserSide:         m.UserSide,
		Started:          m.Started,
		Previewing:       m.Previewing,
		InitialSuggested: m.InitialSuggested,
		Init:             append([]protocol.Event(nil), m.Init...),
		Buffer:           append([]protocol.Event(nil), m.Buffer...),
	}
	for i, roster := range m.Rosters {
		snap.Rosters[i] = Roster{
			Player:  roster.Player,
			Side:    roster.Side,
			Pokemon: append([]string(nil), roster.Pokemon...),
		}
	}
	snap.Turns = make([][]protocol.Event, len(m.Turns))
	for i, turn := range m.Turns {
		snap.Turns[i] = append([]protocol.Event(nil), turn...)
	}
	return snap
}

// Snapshot is an immutable point-in-time view of a MatchState.
type Snapshot struct {
	Rosters  [2]Roster
	Init     []protocol.Event
	Assist   string
	UserSide protocol.Side
	Buffer   []protocol.Event
	Turns    [][]protocol.Event

	Started          bool
	Previewing       bool
	InitialSuggested bool
}

// LastTurn returns the most recently completed turn, or nil.
func (s Snapshot) LastTurn() []protocol.Event {
	if len(s.Turns) == 0 {
		return nil
	}
	return s.Turns[len(s.Turns)-1]
}

package battle

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ronakgh97/pokebrains/internal/protocol"
)

func setupLines(p1, p2 string) []string {
	lines := []string{
		"|title|" + p1 + " vs. " + p2,
		"|gen|9",
		"|player|p1|" + p1 + "|avatar|1500",
		"|player|p2|" + p2 + "|avatar|1400",
	}
	for _, species := range []string{"Amoonguss", "Bisharp", "Clefable", "Dragonite", "Excadrill", "Latios"} {
		lines = append(lines, "|poke|p1|"+species+", L50|item")
	}
	for _, species := range []string{"Dragonite", "Zoroark", "Chansey", "Azumarill", "Charizard", "Gengar"} {
		lines = append(lines, "|poke|p2|"+species+", L50|item")
	}
	lines = append(lines, "|teampreview")
	return lines
}

func ingestAll(t *testing.T, m *MatchState, lines []string) {
	t.Helper()
	for _, line := range lines {
		if err := m.Ingest(line); err != nil {
			t.Fatalf("Ingest(%q) failed: %v", line, err)
		}
	}
}

func TestSetupPhase(t *testing.T) {
	t.Parallel()

	m := NewMatchState("ronak", zerolog.Nop())
	ingestAll(t, m, setupLines("kashimo", "ronak"))

	if !m.Previewing {
		t.Fatal("expected preview phase to be active")
	}
	if m.Started {
		t.Fatal("battle should not have started")
	}
	if m.UserSide != protocol.SideP2 {
		t.Fatalf("resolved side = %q, want p2", m.UserSide)
	}
	if got := len(m.Rosters[0].Pokemon); got != 6 {
		t.Fatalf("p1 roster size = %d, want 6", got)
	}
	if got := len(m.Rosters[1].Pokemon); got != 6 {
		t.Fatalf("p2 roster size = %d, want 6", got)
	}
	if m.Rosters[0].Player != "kashimo" || m.Rosters[1].Player != "ronak" {
		t.Fatalf("players = %q, %q", m.Rosters[0].Player, m.Rosters[1].Player)
	}

	if err := m.Ingest("|start"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !m.Started {
		t.Fatal("battle should have started")
	}
}

func TestRosterCappedAtTeamSize(t *testing.T) {
	t.Parallel()

	m := NewMatchState("ronak", zerolog.Nop())
	for i := 0; i < 10; i++ {
		if err := m.Ingest("|poke|p1|Pikachu, L50|"); err != nil {
			t.Fatalf("poke line failed: %v", err)
		}
	}
	if got := len(m.Rosters[0].Pokemon); got != 6 {
		t.Fatalf("roster size = %d, want capped at 6", got)
	}
}

func TestSideResolutionCaseInsensitive(t *testing.T) {
	t.Parallel()

	m := NewMatchState("RoNaK", zerolog.Nop())
	if err := m.Ingest("|player|p1| ronak |avatar|1500"); err != nil {
		t.Fatalf("player line failed: %v", err)
	}
	if m.UserSide != protocol.SideP1 {
		t.Fatalf("resolved side = %q, want p1", m.UserSide)
	}
}

func TestIdentityUnresolvable(t *testing.T) {
	t.Parallel()

	m := NewMatchState("ronak", zerolog.Nop())
	if err := m.Ingest("|player|p1|alice|avatar|1500"); err != nil {
		t.Fatalf("first player line failed: %v", err)
	}
	err := m.Ingest("|player|p2|bob|avatar|1400")
	if err == nil {
		t.Fatal("expected identity error")
	}
	if !errors.Is(err, ErrIdentityUnresolved) {
		t.Fatalf("error %v is not ErrIdentityUnresolved", err)
	}

	var identityErr *IdentityError
	if !errors.As(err, &identityErr) {
		t.Fatalf("error %v is not an *IdentityError", err)
	}
	if identityErr.Configured != "ronak" || identityErr.P1 != "alice" || identityErr.P2 != "bob" {
		t.Fatalf("unexpected identity error fields: %+v", identityErr)
	}
}

func TestIdentityErrorOnStartWithoutResolution(t *testing.T) {
	t.Parallel()

	m := NewMatchState("ronak", zerolog.Nop())
	if err := m.Ingest("|player|p1|alice|avatar|1500"); err != nil {
		t.Fatalf("player line failed: %v", err)
	}
	if err := m.Ingest("|start"); !errors.Is(err, ErrIdentityUnresolved) {
		t.Fatalf("start error = %v, want ErrIdentityUnresolved", err)
	}
}

func TestTurnBuffering(t *testing.T) {
	t.Parallel()

	m := NewMatchState("ronak", zerolog.Nop())
	ingestAll(t, m, setupLines("kashimo", "ronak"))
	ingestAll(t, m, []string{"|start"})

	// Three turn markers: two completed turns, third still buffering.
	ingestAll(t, m, []string{
		"|turn|1",
		"|move|p2a: Dragonite|Dragon Dance|",
		"|move|p1a: Amoonguss|Spore|p2a: Dragonite",
		"|turn|2",
		"|move|p2a: Dragonite|Outrage|p1a: Amoonguss",
		"|-damage|p1a: Amoonguss|10/100",
		"|turn|3",
		"|move|p1a: Amoonguss|Giga Drain|p2a: Dragonite",
	})

	if got := len(m.Turns); got != 2 {
		t.Fatalf("completed turns = %d, want 2", got)
	}
	if got := len(m.Buffer); got != 2 {
		t.Fatalf("buffered events = %d, want 2", got)
	}
	if got := m.CurrentTurn(); got != 3 {
		t.Fatalf("CurrentTurn() = %d, want 3", got)
	}

	// First completed turn opens with its own marker.
	if turn, ok := m.Turns[0][0].(protocol.Turn); !ok || turn.Number != 1 {
		t.Fatalf("turn 1 starts with %#v", m.Turns[0][0])
	}
}

func TestStraySetupLinesSkippedMidBattle(t *testing.T) {
	t.Parallel()

	m := NewMatchState("ronak", zerolog.Nop())
	ingestAll(t, m, setupLines("kashimo", "ronak"))
	ingestAll(t, m, []string{
		"|start",
		"|turn|1",
		"|move|p2a: Dragonite|Dragon Dance|",
		"|player|p1|kashimo|avatar|1500",
		"|poke|p1|Pikachu, L50|item",
		"|title|kashimo vs. ronak",
	})

	if got := len(m.Buffer); got != 2 {
		t.Fatalf("buffered events = %d, want 2", got)
	}
	if got := len(m.Rosters[0].Pokemon); got != 6 {
		t.Fatalf("p1 roster size = %d, want unchanged 6", got)
	}
	for _, ev := range m.Buffer {
		switch ev.(type) {
		case protocol.PlayerAnnounce, protocol.RosterReveal, protocol.Title:
			t.Fatalf("setup event %#v leaked into a turn buffer", ev)
		}
	}
}

func TestTurnEventsNormalized(t *testing.T) {
	t.Parallel()

	m := NewMatchState("ronak", zerolog.Nop())
	ingestAll(t, m, setupLines("kashimo", "ronak"))
	ingestAll(t, m, []string{
		"|start",
		"|turn|1",
		"|move|p2a: Dragonite|Outrage|p1a: Amoonguss",
	})

	mv, ok := m.Buffer[1].(protocol.Move)
	if !ok {
		t.Fatalf("buffered event %#v is not a Move", m.Buffer[1])
	}
	if mv.Slot != "[Assist: ronak]" {
		t.Fatalf("slot = %q, want [Assist: ronak]", mv.Slot)
	}
	if mv.Target != "[Against: kashimo]: Amoonguss" {
		t.Fatalf("target = %q", mv.Target)
	}
}

func TestTerminalFlushes(t *testing.T) {
	t.Parallel()

	m := NewMatchState("ronak", zerolog.Nop())
	ingestAll(t, m, setupLines("kashimo", "ronak"))
	ingestAll(t, m, []string{
		"|start",
		"|turn|1",
		"|move|p2a: Dragonite|Outrage|p1a: Amoonguss",
		"|faint|p1a: Amoonguss",
		"|win|ronak",
	})

	if len(m.Buffer) != 0 {
		t.Fatalf("buffer not flushed after win: %d events", len(m.Buffer))
	}
	if !m.Ended() {
		t.Fatal("Ended() = false after win")
	}
	if got := len(m.Turns); got != 1 {
		t.Fatalf("completed turns = %d, want 1", got)
	}
}

func TestMalformedTurnMarkerStillFlushes(t *testing.T) {
	t.Parallel()

	m := NewMatchState("ronak", zerolog.Nop())
	ingestAll(t, m, setupLines("kashimo", "ronak"))
	ingestAll(t, m, []string{
		"|start",
		"|turn|1",
		"|move|p2a: Dragonite|Dragon Dance|",
		"|turn|garbled",
	})

	if got := len(m.Turns); got != 1 {
		t.Fatalf("completed turns = %d, want 1", got)
	}
	if len(m.Buffer) != 0 {
		t.Fatalf("buffer = %d events, want empty after malformed marker", len(m.Buffer))
	}
}

func TestSnapshotIsolation(t *testing.T) {
	t.Parallel()

	m := NewMatchState("ronak", zerolog.Nop())
	ingestAll(t, m, setupLines("kashimo", "ronak"))
	ingestAll(t, m, []string{
		"|start",
		"|turn|1",
		"|move|p2a: Dragonite|Dragon Dance|",
	})

	snap := m.Snapshot()
	ingestAll(t, m, []string{
		"|turn|2",
		"|move|p2a: Dragonite|Outrage|p1a: Amoonguss",
	})

	if got := len(snap.Buffer); got != 2 {
		t.Fatalf("snapshot buffer mutated: %d events", got)
	}
	if got := len(snap.Turns); got != 0 {
		t.Fatalf("snapshot turns mutated: %d", got)
	}
	if snap.LastTurn() != nil {
		t.Fatalf("LastTurn() = %#v, want nil", snap.LastTurn())
	}
}

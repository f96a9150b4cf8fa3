package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/ronakgh97/pokebrains/internal/agent"
	"github.com/ronakgh97/pokebrains/internal/battle"
	"github.com/ronakgh97/pokebrains/internal/config"
	"github.com/ronakgh97/pokebrains/internal/domain"
	"github.com/ronakgh97/pokebrains/internal/llm"
	"github.com/ronakgh97/pokebrains/internal/repository"
	"github.com/ronakgh97/pokebrains/internal/tools"
)

const testRoom = "battle-gen9ou-1"

const testSchema = `
CREATE TABLE matches (
    id TEXT PRIMARY KEY, room_id TEXT NOT NULL, title TEXT NOT NULL DEFAULT '',
    generation TEXT NOT NULL DEFAULT '', p1_name TEXT NOT NULL DEFAULT '',
    p2_name TEXT NOT NULL DEFAULT '', user_side TEXT NOT NULL DEFAULT '',
    winner TEXT NOT NULL DEFAULT '', created_at TIMESTAMP NOT NULL, updated_at TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX idx_matches_room_id ON matches(room_id);
CREATE TABLE suggestions (
    id TEXT PRIMARY KEY, match_id TEXT NOT NULL, turn INTEGER NOT NULL DEFAULT 0,
    kind TEXT NOT NULL, prompt TEXT NOT NULL, response TEXT NOT NULL, created_at TIMESTAMP NOT NULL
);`

type harness struct {
	session *Session
	calls   *atomic.Int32
	db      *sql.DB

	cfg         *config.Config
	agent       *agent.Agent
	matches     *repository.MatchRepository
	suggestions *repository.SuggestionRepository
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"Action: Thunderbolt"}}]}`)
	}))
	t.Cleanup(server.Close)

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	// each pooled connection would get its own in-memory database
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	cfg := &config.Config{
		ShowdownUsername: "ronak",
		ShowdownRoom:     testRoom,
		LLMStream:        false,
	}
	client := llm.NewClient(server.URL, "test-key", zerolog.Nop())
	battleAgent := agent.New("test-model", client, tools.NewRegistry(), zerolog.Nop())
	matches := repository.NewMatchRepository(db, zerolog.Nop())
	suggestions := repository.NewSuggestionRepository(db, zerolog.Nop())

	return &harness{
		session:     New(cfg, battleAgent, matches, suggestions, zerolog.Nop()),
		calls:       &calls,
		db:          db,
		cfg:         cfg,
		agent:       battleAgent,
		matches:     matches,
		suggestions: suggestions,
	}
}

// restart swaps in a fresh session over the same storage, as after a
// reconnect.
func (h *harness) restart() {
	h.session = New(h.cfg, h.agent, h.matches, h.suggestions, zerolog.Nop())
}

func (h *harness) feed(t *testing.T, lines ...string) {
	t.Helper()
	frame := ">" + testRoom + "\n" + strings.Join(lines, "\n")
	if err := h.session.HandleFrame(context.Background(), frame); err != nil {
		t.Fatalf("HandleFrame failed: %v", err)
	}
}

func previewLines() []string {
	lines := []string{
		"|title|kashimo vs. ronak",
		"|gen|9",
		"|player|p1|kashimo|avatar|1500",
		"|player|p2|ronak|avatar|1400",
	}
	for _, species := range []string{"Amoonguss", "Bisharp", "Clefable", "Dragonite", "Excadrill", "Latios"} {
		lines = append(lines, "|poke|p1|"+species+"|")
	}
	for _, species := range []string{"Dragonite", "Zoroark", "Chansey", "Azumarill", "Charizard", "Gengar"} {
		lines = append(lines, "|poke|p2|"+species+"|")
	}
	lines = append(lines, "|teampreview")
	return lines
}

func TestInitialSuggestionFiresOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.feed(t, previewLines()...)

	if got := h.calls.Load(); got != 1 {
		t.Fatalf("model calls = %d, want 1 after full preview", got)
	}

	// More preview traffic must not re-fire.
	h.feed(t, "|teampreview")
	if got := h.calls.Load(); got != 1 {
		t.Fatalf("model calls = %d after repeat preview, want 1", got)
	}

	var kind string
	var turn int
	if err := h.db.QueryRow(`SELECT kind, turn FROM suggestions`).Scan(&kind, &turn); err != nil {
		t.Fatalf("read suggestion: %v", err)
	}
	if kind != domain.SuggestionKindInitial || turn != 0 {
		t.Fatalf("stored suggestion = %s/%d", kind, turn)
	}

	var p1, p2, side string
	if err := h.db.QueryRow(`SELECT p1_name, p2_name, user_side FROM matches WHERE room_id = ?`, testRoom).
		Scan(&p1, &p2, &side); err != nil {
		t.Fatalf("read match: %v", err)
	}
	if p1 != "kashimo" || p2 != "ronak" || side != "p2" {
		t.Fatalf("stored match = %s/%s/%s", p1, p2, side)
	}
}

func TestTurnSuggestionsIdempotentPerTurn(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.feed(t, previewLines()...)
	h.feed(t, "|start")

	h.feed(t, "|turn|1")
	if got := h.calls.Load(); got != 2 {
		t.Fatalf("model calls = %d after turn 1, want 2", got)
	}

	// Mid-turn events carry no new turn number: no re-fire.
	h.feed(t, "|move|p2a: Dragonite|Dragon Dance|", "|-boost|p2a: Dragonite|atk|1")
	if got := h.calls.Load(); got != 2 {
		t.Fatalf("model calls = %d mid-turn, want 2", got)
	}

	h.feed(t, "|turn|2")
	if got := h.calls.Load(); got != 3 {
		t.Fatalf("model calls = %d after turn 2, want 3", got)
	}
}

func TestEndOfBattleFiresOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.feed(t, previewLines()...)
	h.feed(t, "|start", "|turn|1")

	h.feed(t, "|move|p2a: Dragonite|Outrage|p1a: Amoonguss", "|win|ronak")
	if got := h.calls.Load(); got != 3 {
		t.Fatalf("model calls = %d after win, want 3", got)
	}

	// Trailing traffic after the terminal event must not re-fire.
	h.feed(t, "|-message|ronak won the battle!")
	if got := h.calls.Load(); got != 3 {
		t.Fatalf("model calls = %d after trailing lines, want 3", got)
	}

	var winner string
	if err := h.db.QueryRow(`SELECT winner FROM matches WHERE room_id = ?`, testRoom).Scan(&winner); err != nil {
		t.Fatalf("read winner: %v", err)
	}
	if winner != "ronak" {
		t.Fatalf("winner = %q", winner)
	}
}

func TestReconnectSkipsReplayedTurns(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.feed(t, previewLines()...)
	h.feed(t, "|start", "|turn|1")
	if got := h.calls.Load(); got != 2 {
		t.Fatalf("model calls = %d before reconnect, want 2", got)
	}

	// Rejoining replays the log from the top: the preview and turn 1 must
	// not produce duplicate suggestions, only the new turn 2 fires.
	h.restart()
	h.feed(t, previewLines()...)
	h.feed(t, "|start", "|turn|1")
	if got := h.calls.Load(); got != 2 {
		t.Fatalf("model calls = %d after replay, want still 2", got)
	}

	h.feed(t, "|turn|2")
	if got := h.calls.Load(); got != 3 {
		t.Fatalf("model calls = %d after new turn, want 3", got)
	}

	var count int
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM matches`).Scan(&count); err != nil {
		t.Fatalf("count matches: %v", err)
	}
	if count != 1 {
		t.Fatalf("match rows = %d, want 1", count)
	}
}

func TestOtherRoomsIgnored(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	frame := ">some-other-room\n" + strings.Join(previewLines(), "\n")
	if err := h.session.HandleFrame(context.Background(), frame); err != nil {
		t.Fatalf("HandleFrame failed: %v", err)
	}
	if got := h.calls.Load(); got != 0 {
		t.Fatalf("model calls = %d for foreign room, want 0", got)
	}
}

func TestUnresolvableIdentityAborts(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	frame := ">" + testRoom + "\n|player|p1|alice|avatar|1500\n|player|p2|bob|avatar|1400"
	err := h.session.HandleFrame(context.Background(), frame)
	if !errors.Is(err, battle.ErrIdentityUnresolved) {
		t.Fatalf("error = %v, want ErrIdentityUnresolved", err)
	}
}

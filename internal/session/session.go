package session

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ronakgh97/pokebrains/internal/agent"
	"github.com/ronakgh97/pokebrains/internal/battle"
	"github.com/ronakgh97/pokebrains/internal/config"
	"github.com/ronakgh97/pokebrains/internal/constants"
	"github.com/ronakgh97/pokebrains/internal/domain"
	"github.com/ronakgh97/pokebrains/internal/protocol"
	"github.com/ronakgh97/pokebrains/internal/repository"
)

// Session drives one battle room: it feeds protocol lines into the match
// state, decides when a recommendation is due and records what was generated.
type Session struct {
	room   string
	stream bool

	state       *battle.MatchState
	agent       *agent.Agent
	matches     *repository.MatchRepository
	suggestions *repository.SuggestionRepository
	logger      zerolog.Logger

	matchID  string
	lastTurn int
	ended    bool
}

func New(
	cfg *config.Config,
	battleAgent *agent.Agent,
	matches *repository.MatchRepository,
	suggestions *repository.SuggestionRepository,
	logger zerolog.Logger,
) *Session {
	return &Session{
		room:        cfg.ShowdownRoom,
		stream:      cfg.LLMStream,
		state:       battle.NewMatchState(cfg.ShowdownUsername, logger),
		agent:       battleAgent,
		matches:     matches,
		suggestions: suggestions,
		logger:      logger,
	}
}

// HandleFrame processes one websocket frame. A frame may carry many lines;
// a leading ">room-id" line routes the ones that follow it. Lines for other
// rooms are dropped.
func (s *Session) HandleFrame(ctx context.Context, text string) error {
	currentRoom := ""
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			currentRoom = strings.TrimPrefix(line, ">")
			continue
		}
		if currentRoom != s.room {
			continue
		}
		if !strings.HasPrefix(line, "|") {
			s.logger.Debug().Str("line", line).Msg("raw room message")
			continue
		}
		if err := s.handleLine(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) handleLine(ctx context.Context, line string) error {
	if err := s.state.Ingest(line); err != nil {
		return fmt.Errorf("match session aborted: %w", err)
	}

	if s.initialDue() {
		s.state.InitialSuggested = true
		resumed, err := s.recordMatch(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to persist match")
		}
		// Rejoining a room replays the full battle log; suggestions already
		// issued for it are not generated again.
		if !resumed {
			s.generate(ctx, domain.SuggestionKindInitial, agent.InitialPrompt(s.state.Snapshot()), 0)
		}
		return nil
	}

	if !s.state.Started {
		return nil
	}

	currentTurn := s.state.CurrentTurn()
	justEnded := s.state.Ended() && !s.ended
	if currentTurn > s.lastTurn || justEnded {
		s.generate(ctx, domain.SuggestionKindTurn, agent.TurnPrompt(s.state.Snapshot()), currentTurn)
		s.lastTurn = currentTurn
	}
	if justEnded {
		s.ended = true
		s.recordWinner(ctx)
	}
	return nil
}

// initialDue reports whether the one-time preview recommendation should fire:
// preview active, battle not started, not yet issued, both players announced
// and both rosters fully revealed.
func (s *Session) initialDue() bool {
	return s.state.Previewing &&
		!s.state.Started &&
		!s.state.InitialSuggested &&
		s.state.Rosters[0].Player != "" &&
		s.state.Rosters[1].Player != "" &&
		len(s.state.Rosters[0].Pokemon) == constants.TeamSize &&
		len(s.state.Rosters[1].Pokemon) == constants.TeamSize
}

// generate runs one recommendation and persists it. Completion failures are
// logged and the session moves on; the next trigger gets a fresh attempt.
func (s *Session) generate(ctx context.Context, kind, prompt string, turn int) {
	runID := uuid.NewString()
	s.logger.Info().Str("run_id", runID).Str("kind", kind).Int("turn", turn).Msg("generating suggestion")

	callCtx, cancel := context.WithTimeout(ctx, constants.CompletionTimeout)
	defer cancel()

	var response string
	var err error
	if s.stream {
		fmt.Fprintln(os.Stdout)
		response, err = s.agent.SuggestStream(callCtx, prompt, func(fragment string) {
			fmt.Fprint(os.Stdout, fragment)
		})
		fmt.Fprintln(os.Stdout)
	} else {
		response, err = s.agent.Suggest(callCtx, prompt)
		if err == nil {
			fmt.Fprintln(os.Stdout, response)
		}
	}
	if err != nil {
		s.logger.Error().Err(err).Str("run_id", runID).Str("kind", kind).Msg("suggestion failed")
		return
	}

	if s.matchID == "" {
		return
	}
	record := &domain.Suggestion{
		MatchID:  s.matchID,
		Turn:     turn,
		Kind:     kind,
		Prompt:   prompt,
		Response: response,
	}
	if err := s.suggestions.Insert(ctx, record); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist suggestion")
	}
}

// recordMatch persists the match row and reports whether a prior session
// already issued suggestions for this room. On resume the last suggested turn
// is restored so replayed turns do not trigger again.
func (s *Session) recordMatch(ctx context.Context) (bool, error) {
	snap := s.state.Snapshot()

	match := &domain.Match{
		RoomID:   s.room,
		P1Name:   snap.Rosters[0].Player,
		P2Name:   snap.Rosters[1].Player,
		UserSide: string(snap.UserSide),
	}
	for _, ev := range snap.Init {
		switch e := ev.(type) {
		case protocol.Title:
			match.Title = e.Text
		case protocol.Generation:
			match.Generation = e.Value
		}
	}

	prior, err := s.matches.GetByRoomID(ctx, s.room)
	if err != nil {
		return false, err
	}

	id, err := s.matches.Upsert(ctx, match)
	if err != nil {
		return false, err
	}
	s.matchID = id

	if prior == nil {
		return false, nil
	}
	stored, err := s.suggestions.GetByMatchID(ctx, prior.ID)
	if err != nil {
		return false, err
	}
	for _, suggestion := range stored {
		if suggestion.Turn > s.lastTurn {
			s.lastTurn = suggestion.Turn
		}
	}
	if len(stored) > 0 {
		s.logger.Info().Int("suggestions", len(stored)).Int("last_turn", s.lastTurn).
			Msg("resuming previously assisted match")
	}
	return len(stored) > 0, nil
}

func (s *Session) recordWinner(ctx context.Context) {
	winner := ""
	for _, ev := range s.state.Snapshot().LastTurn() {
		if w, ok := ev.(protocol.Win); ok {
			winner = w.Player
		}
	}
	if winner == "" {
		winner = "tie"
	}
	if err := s.matches.SetWinner(ctx, s.room, winner); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist winner")
	}
}

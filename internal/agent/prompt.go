package agent

import (
	"fmt"
	"strings"

	"github.com/ronakgh97/pokebrains/internal/battle"
	"github.com/ronakgh97/pokebrains/internal/protocol"
)

const (
	leadQuestion = "Which Pokemon should lead with and why?"
	turnQuestion = "Based on the current battle state, what is the optimal move or switch?"
)

// InitialPrompt renders the team preview state: the setup log, both rosters
// and the lead question.
func InitialPrompt(snap battle.Snapshot) string {
	var b strings.Builder

	for _, ev := range snap.Init {
		if _, ok := ev.(protocol.TeamPreview); ok {
			continue
		}
		b.WriteString(ev.Describe())
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "Player 1: %q, Team: %s\n", snap.Rosters[0].Player, quotedList(snap.Rosters[0].Pokemon))
	fmt.Fprintf(&b, "Player 2: %q, Team: %s\n", snap.Rosters[1].Player, quotedList(snap.Rosters[1].Pokemon))
	b.WriteByte('\n')

	b.WriteString(leadQuestion)
	b.WriteByte('\n')

	return b.String()
}

// TurnPrompt renders the most recently completed turn, minus its turn marker,
// followed by the action question.
func TurnPrompt(snap battle.Snapshot) string {
	var b strings.Builder

	for _, ev := range snap.LastTurn() {
		if _, ok := ev.(protocol.Turn); ok {
			continue
		}
		b.WriteString(ev.Describe())
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	b.WriteString(turnQuestion)
	b.WriteByte('\n')

	return b.String()
}

func quotedList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

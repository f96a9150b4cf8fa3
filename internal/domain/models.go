package domain

import (
	"time"
)

type Match struct {
	ID         string // nanoid
	RoomID     string
	Title      string
	Generation string
	P1Name     string
	P2Name     string
	UserSide   string // "p1" or "p2"
	Winner     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Suggestion struct {
	ID        string // nanoid
	MatchID   string
	Turn      int
	Kind      string // "initial" or "turn"
	Prompt    string
	Response  string
	CreatedAt time.Time
}

const (
	SuggestionKindInitial = "initial"
	SuggestionKindTurn    = "turn"
)

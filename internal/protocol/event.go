package protocol

import "fmt"

// Side is one of the two protocol-assigned participant tags.
type Side string

const (
	SideP1 Side = "p1"
	SideP2 Side = "p2"
)

// Opposite returns the other participant's tag.
func (s Side) Opposite() Side {
	if s == SideP1 {
		return SideP2
	}
	return SideP1
}

// Kind identifies which battle message an Event was decoded from.
type Kind string

const (
	KindTitle          Kind = "title"
	KindGeneration     Kind = "gen"
	KindPlayerAnnounce Kind = "player"
	KindRosterReveal   Kind = "poke"
	KindTeamPreview    Kind = "teampreview"
	KindBattleStart    Kind = "start"
	KindTurn           Kind = "turn"
	KindSwitch         Kind = "switch"
	KindMove           Kind = "move"
	KindDamage         Kind = "damage"
	KindHeal           Kind = "heal"
	KindFaint          Kind = "faint"
	KindStatus         Kind = "status"
	KindCureStatus     Kind = "curestatus"
	KindBoost          Kind = "boost"
	KindUnboost        Kind = "unboost"
	KindWeather        Kind = "weather"
	KindSideStart      Kind = "sidestart"
	KindSideEnd        Kind = "sideend"
	KindAbility        Kind = "ability"
	KindMega           Kind = "mega"
	KindSuperEffective Kind = "supereffective"
	KindResisted       Kind = "resisted"
	KindCrit           Kind = "crit"
	KindImmune         Kind = "immune"
	KindMiss           Kind = "miss"
	KindCant           Kind = "cant"
	KindWin            Kind = "win"
	KindTie            Kind = "tie"
	KindMessage        Kind = "message"
)

// Event is one decoded battle-protocol line. The variant set is closed: every
// implementation lives in this package and carries only the fields its
// message kind actually has. Events are immutable; normalization returns a
// fresh value.
type Event interface {
	Kind() Kind
	// Describe renders the event the way it is shown to the model.
	Describe() string
}

type Title struct{ Text string }

func (Title) Kind() Kind { return KindTitle }

func (e Title) Describe() string { return "Battle Title: " + e.Text }

type Generation struct{ Value string }

func (Generation) Kind() Kind { return KindGeneration }

func (e Generation) Describe() string { return "Generation: " + e.Value }

type PlayerAnnounce struct {
	Side     Side
	Username string
}

func (PlayerAnnounce) Kind() Kind { return KindPlayerAnnounce }

func (e PlayerAnnounce) Describe() string {
	return fmt.Sprintf("Player %s: %s", e.Side, e.Username)
}

// RosterReveal is one revealed species for a side during team preview.
type RosterReveal struct {
	Side    Side
	Species string
}

func (RosterReveal) Kind() Kind { return KindRosterReveal }

func (e RosterReveal) Describe() string {
	return fmt.Sprintf("Team %s: %s", e.Side, e.Species)
}

type TeamPreview struct{}

func (TeamPreview) Kind() Kind { return KindTeamPreview }

func (TeamPreview) Describe() string { return "Team Preview Started" }

type BattleStart struct{}

func (BattleStart) Kind() Kind { return KindBattleStart }

func (BattleStart) Describe() string { return "Battle Started" }

type Turn struct{ Number int }

func (Turn) Kind() Kind { return KindTurn }

func (e Turn) Describe() string { return fmt.Sprintf(" TURN %d ", e.Number) }

// Switch covers both voluntary switches and forced drags.
type Switch struct {
	Slot    string
	Pokemon string
	Species string
	HP      string
}

func (Switch) Kind() Kind { return KindSwitch }

func (e Switch) Describe() string {
	return fmt.Sprintf("%s: %s sent out (%s) HP: %s", e.Slot, e.Pokemon, e.Species, e.HP)
}

type Move struct {
	Slot    string
	Pokemon string
	Name    string
	Target  string // empty when the move has no explicit target
}

func (Move) Kind() Kind { return KindMove }

func (e Move) Describe() string {
	if e.Target != "" {
		return fmt.Sprintf("%s: %s used %s on %s", e.Slot, e.Pokemon, e.Name, e.Target)
	}
	return fmt.Sprintf("%s: %s used %s", e.Slot, e.Pokemon, e.Name)
}

type Damage struct {
	Slot    string
	Pokemon string
	HP      string
	Cause   string // empty when the server gave no cause
}

func (Damage) Kind() Kind { return KindDamage }

func (e Damage) Describe() string {
	if e.Cause != "" {
		return fmt.Sprintf("%s: %s HP: %s (%s)", e.Slot, e.Pokemon, e.HP, e.Cause)
	}
	return fmt.Sprintf("%s: %s HP: %s", e.Slot, e.Pokemon, e.HP)
}

type Heal struct {
	Target string
	HP     string
	Source string
}

func (Heal) Kind() Kind { return KindHeal }

func (e Heal) Describe() string {
	if e.Source != "" {
		return fmt.Sprintf("%s healed to %s (%s)", e.Target, e.HP, e.Source)
	}
	return fmt.Sprintf("%s healed to %s", e.Target, e.HP)
}

type Faint struct{ Target string }

func (Faint) Kind() Kind { return KindFaint }

func (e Faint) Describe() string { return e.Target + " fainted!" }

type Status struct {
	Target string
	Status string
}

func (Status) Kind() Kind { return KindStatus }

func (e Status) Describe() string {
	return fmt.Sprintf("%s was inflicted with %s", e.Target, e.Status)
}

type CureStatus struct {
	Target string
	Status string
}

func (CureStatus) Kind() Kind { return KindCureStatus }

func (e CureStatus) Describe() string {
	return fmt.Sprintf("%s cured of %s", e.Target, e.Status)
}

type Boost struct {
	Target string
	Stat   string
	Amount string
}

func (Boost) Kind() Kind { return KindBoost }

func (e Boost) Describe() string {
	return fmt.Sprintf("%s's %s rose by %s", e.Target, e.Stat, e.Amount)
}

type Unboost struct {
	Target string
	Stat   string
	Amount string
}

func (Unboost) Kind() Kind { return KindUnboost }

func (e Unboost) Describe() string {
	return fmt.Sprintf("%s's %s fell by %s", e.Target, e.Stat, e.Amount)
}

type Weather struct{ Condition string }

func (Weather) Kind() Kind { return KindWeather }

func (e Weather) Describe() string {
	if e.Condition == "none" {
		return "Weather cleared"
	}
	return "Weather: " + e.Condition
}

type SideStart struct {
	Target    string
	Condition string
}

func (SideStart) Kind() Kind { return KindSideStart }

func (e SideStart) Describe() string {
	return fmt.Sprintf("%s set up %s", e.Target, e.Condition)
}

type SideEnd struct {
	Target    string
	Condition string
}

func (SideEnd) Kind() Kind { return KindSideEnd }

func (e SideEnd) Describe() string {
	return fmt.Sprintf("%s's %s wore off", e.Target, e.Condition)
}

type Ability struct {
	Target  string
	Ability string
}

func (Ability) Kind() Kind { return KindAbility }

func (e Ability) Describe() string {
	return fmt.Sprintf("%s's ability: %s", e.Target, e.Ability)
}

type Mega struct {
	Target string
	Form   string
	Move   string
}

func (Mega) Kind() Kind { return KindMega }

func (e Mega) Describe() string {
	if e.Move != "" {
		return fmt.Sprintf("%s Mega Evolved into %s using %s", e.Target, e.Form, e.Move)
	}
	return fmt.Sprintf("%s Mega Evolved into %s", e.Target, e.Form)
}

type SuperEffective struct{ Target string }

func (SuperEffective) Kind() Kind { return KindSuperEffective }

func (e SuperEffective) Describe() string {
	return fmt.Sprintf("Super effective on %s!", e.Target)
}

type Resisted struct{ Target string }

func (Resisted) Kind() Kind { return KindResisted }

func (e Resisted) Describe() string { return e.Target + " resisted the attack" }

type Crit struct{ Target string }

func (Crit) Kind() Kind { return KindCrit }

func (e Crit) Describe() string { return fmt.Sprintf("Critical hit on %s!", e.Target) }

type Immune struct{ Target string }

func (Immune) Kind() Kind { return KindImmune }

func (e Immune) Describe() string { return e.Target + " is immune!" }

type Miss struct {
	Source string
	Target string
}

func (Miss) Kind() Kind { return KindMiss }

func (e Miss) Describe() string {
	if e.Target != "" {
		return fmt.Sprintf("%s missed %s!", e.Source, e.Target)
	}
	return fmt.Sprintf("%s's attack missed!", e.Source)
}

type Cant struct {
	Target string
	Reason string
}

func (Cant) Kind() Kind { return KindCant }

func (e Cant) Describe() string {
	return fmt.Sprintf("%s can't move (%s)", e.Target, e.Reason)
}

type Win struct{ Player string }

func (Win) Kind() Kind { return KindWin }

func (e Win) Describe() string { return e.Player + " wins the battle!" }

type Tie struct{}

func (Tie) Kind() Kind { return KindTie }

func (Tie) Describe() string { return "Battle ended in a tie" }

type Message struct{ Text string }

func (Message) Kind() Kind { return KindMessage }

func (e Message) Describe() string { return e.Text }

// Terminal reports whether the event ends the match.
func Terminal(ev Event) bool {
	switch ev.(type) {
	case Win, Tie:
		return true
	default:
		return false
	}
}

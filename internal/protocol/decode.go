package protocol

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Tokenizer decodes raw protocol lines into Events. It carries no state
// besides a logger for unrecognized message kinds.
type Tokenizer struct {
	logger zerolog.Logger
}

func NewTokenizer(logger zerolog.Logger) *Tokenizer {
	return &Tokenizer{logger: logger}
}

// ignoredKinds are cosmetic or administrative messages that never carry
// battle information: chat, joins, room metadata, timers.
var ignoredKinds = map[string]struct{}{
	"teamsize": {}, "gametype": {}, "tier": {}, "rule": {}, "rated": {},
	"upkeep": {}, "inactive": {}, "t:": {}, "j": {}, "J": {}, "l": {},
	"L": {}, "c": {}, "c:": {}, "init": {}, "raw": {}, "html": {},
	"request": {}, "": {},
}

// Decode turns one raw protocol line into an Event, or nil when the line is
// malformed, ignorable, or of an unrecognized kind. It never fails: partial
// lines and unparseable numbers decode to nothing.
func (t *Tokenizer) Decode(line string) Event {
	parts := strings.Split(line, "|")
	if len(parts) < 2 {
		return nil
	}

	switch parts[1] {
	case "title":
		if len(parts) >= 3 {
			return Title{Text: parts[2]}
		}
	case "gen":
		if len(parts) >= 3 {
			return Generation{Value: parts[2]}
		}
	case "player":
		// |player|p1|username|avatar|rating
		if len(parts) >= 4 {
			return PlayerAnnounce{Side: Side(parts[2]), Username: strings.TrimSpace(parts[3])}
		}
	case "poke":
		// |poke|p1|Pikachu, L50, M|item
		if len(parts) >= 4 {
			slot := parts[2]
			if len(slot) < 2 {
				return nil
			}
			species := strings.TrimSpace(strings.SplitN(parts[3], ",", 2)[0])
			return RosterReveal{Side: Side(slot[:2]), Species: species}
		}
	case "teampreview":
		return TeamPreview{}
	case "start":
		return BattleStart{}
	case "turn":
		if len(parts) >= 3 {
			n, err := strconv.Atoi(strings.TrimSpace(parts[2]))
			if err != nil {
				return nil
			}
			return Turn{Number: n}
		}
	case "switch", "drag":
		// |switch|p1a: Sparky|Pikachu, L50, M|100/100
		if len(parts) >= 4 {
			hp := "100/100"
			if len(parts) >= 5 {
				hp = parts[4]
			}
			return Switch{
				Slot:    slotOf(parts[2]),
				Pokemon: nameOf(parts[2]),
				Species: strings.TrimSpace(strings.SplitN(parts[3], ",", 2)[0]),
				HP:      hp,
			}
		}
	case "move":
		// |move|p1a: Pikachu|Thunderbolt|p2a: Squirtle
		if len(parts) >= 4 {
			ev := Move{
				Slot:    slotOf(parts[2]),
				Pokemon: nameOf(parts[2]),
				Name:    parts[3],
			}
			if len(parts) >= 5 && parts[4] != "" {
				ev.Target = parts[4]
			}
			return ev
		}
	case "-damage":
		// |-damage|p2a: Squirtle|45/100 par|[from] Thunderbolt
		if len(parts) >= 4 {
			ev := Damage{
				Slot:    slotOf(parts[2]),
				Pokemon: nameOf(parts[2]),
				HP:      hpOf(parts[3]),
			}
			if len(parts) >= 5 {
				ev.Cause = strings.TrimSpace(parts[4])
			}
			return ev
		}
	case "-heal":
		if len(parts) >= 4 {
			ev := Heal{Target: parts[2], HP: hpOf(parts[3])}
			if len(parts) >= 5 {
				ev.Source = strings.TrimSpace(parts[4])
			}
			return ev
		}
	case "faint":
		if len(parts) >= 3 {
			return Faint{Target: parts[2]}
		}
	case "-status":
		if len(parts) >= 4 {
			return Status{Target: parts[2], Status: parts[3]}
		}
	case "-curestatus":
		if len(parts) >= 4 {
			return CureStatus{Target: parts[2], Status: parts[3]}
		}
	case "-boost":
		if len(parts) >= 4 {
			return Boost{Target: parts[2], Stat: parts[3], Amount: amountOf(parts)}
		}
	case "-unboost":
		if len(parts) >= 4 {
			return Unboost{Target: parts[2], Stat: parts[3], Amount: amountOf(parts)}
		}
	case "-weather":
		if len(parts) >= 3 {
			return Weather{Condition: parts[2]}
		}
	case "-sidestart":
		if len(parts) >= 4 {
			return SideStart{Target: parts[2], Condition: parts[3]}
		}
	case "-sideend":
		if len(parts) >= 4 {
			return SideEnd{Target: parts[2], Condition: parts[3]}
		}
	case "-ability":
		if len(parts) >= 4 {
			return Ability{Target: parts[2], Ability: parts[3]}
		}
	case "detailschange":
		if len(parts) >= 4 {
			return Mega{Target: parts[2], Form: parts[3]}
		}
	case "-supereffective":
		if len(parts) >= 3 {
			return SuperEffective{Target: parts[2]}
		}
	case "-resisted":
		if len(parts) >= 3 {
			return Resisted{Target: parts[2]}
		}
	case "-crit":
		if len(parts) >= 3 {
			return Crit{Target: parts[2]}
		}
	case "-immune":
		if len(parts) >= 3 {
			return Immune{Target: parts[2]}
		}
	case "-miss":
		if len(parts) >= 3 {
			ev := Miss{Source: parts[2]}
			if len(parts) >= 4 {
				ev.Target = parts[3]
			}
			return ev
		}
	case "cant":
		if len(parts) >= 4 {
			return Cant{Target: parts[2], Reason: parts[3]}
		}
	case "win":
		if len(parts) >= 3 {
			return Win{Player: parts[2]}
		}
	case "tie":
		return Tie{}
	case "-message":
		if len(parts) >= 3 {
			return Message{Text: parts[2]}
		}
	default:
		if _, ok := ignoredKinds[parts[1]]; !ok {
			t.logger.Debug().Str("kind", parts[1]).Msg("unknown battle message kind")
		}
	}
	return nil
}

// slotOf extracts the side-qualified slot from an identifier such as
// "p1a: Pikachu".
func slotOf(id string) string {
	return strings.TrimSpace(strings.SplitN(id, ":", 2)[0])
}

// nameOf extracts the nickname from an identifier such as "p1a: Pikachu".
func nameOf(id string) string {
	if idx := strings.Index(id, ":"); idx >= 0 {
		return strings.TrimSpace(id[idx+1:])
	}
	return strings.TrimSpace(id)
}

// hpOf strips a trailing status annotation from a health field, e.g.
// "45/100 par" -> "45/100".
func hpOf(field string) string {
	if idx := strings.Index(field, " "); idx >= 0 {
		return field[:idx]
	}
	return field
}

func amountOf(parts []string) string {
	if len(parts) >= 5 {
		return parts[4]
	}
	return "1"
}

package protocol

import "strings"

// Perspective resolves raw side tags to the two participants' display names.
// Zero value means the assisted side is not known yet.
type Perspective struct {
	UserSide    Side
	AssistName  string
	AgainstName string
}

// Resolved reports whether the assisted side has been determined.
func (p Perspective) Resolved() bool { return p.UserSide != "" }

// Normalize rewrites every side-qualified actor or target reference in the
// event into an [Assist: name] or [Against: name] label. Events pass through
// unchanged until the perspective is resolved. Normalizing an already
// normalized event is a no-op: the labels carry no raw side prefix.
func Normalize(ev Event, p Perspective) Event {
	if !p.Resolved() || ev == nil {
		return ev
	}

	switch e := ev.(type) {
	case Move:
		e.Slot = p.relabelSlot(e.Slot)
		if e.Target != "" {
			e.Target = p.relabelID(e.Target)
		}
		return e
	case Switch:
		e.Slot = p.relabelSlot(e.Slot)
		return e
	case Damage:
		e.Slot = p.relabelSlot(e.Slot)
		return e
	case Heal:
		e.Target = p.relabelID(e.Target)
		return e
	case Faint:
		e.Target = p.relabelID(e.Target)
		return e
	case Status:
		e.Target = p.relabelID(e.Target)
		return e
	case CureStatus:
		e.Target = p.relabelID(e.Target)
		return e
	case Boost:
		e.Target = p.relabelID(e.Target)
		return e
	case Unboost:
		e.Target = p.relabelID(e.Target)
		return e
	case Ability:
		e.Target = p.relabelID(e.Target)
		return e
	case Mega:
		e.Target = p.relabelID(e.Target)
		return e
	case SuperEffective:
		e.Target = p.relabelID(e.Target)
		return e
	case Resisted:
		e.Target = p.relabelID(e.Target)
		return e
	case Crit:
		e.Target = p.relabelID(e.Target)
		return e
	case Immune:
		e.Target = p.relabelID(e.Target)
		return e
	case Miss:
		e.Source = p.relabelID(e.Source)
		if e.Target != "" {
			e.Target = p.relabelID(e.Target)
		}
		return e
	case Cant:
		e.Target = p.relabelID(e.Target)
		return e
	case SideStart:
		e.Target = p.relabelSlot(e.Target)
		return e
	case SideEnd:
		e.Target = p.relabelSlot(e.Target)
		return e
	default:
		return ev
	}
}

// relabelID rewrites the side prefix of a full identifier such as
// "p1a: Pikachu", "p1a:Pikachu" or a bare "p1a", keeping everything after the
// colon intact.
func (p Perspective) relabelID(id string) string {
	if idx := strings.Index(id, ":"); idx >= 0 {
		return p.relabelSlot(id[:idx]) + id[idx:]
	}
	return p.relabelSlot(id)
}

// relabelSlot maps a side-qualified slot ("p1", "p2a", ...) to its label.
// Anything not starting with a known side tag is left alone, so unrelated
// substrings and already relabeled text are never touched.
func (p Perspective) relabelSlot(slot string) string {
	trimmed := strings.TrimSpace(slot)
	switch {
	case strings.HasPrefix(trimmed, string(p.UserSide)):
		return "[Assist: " + p.AssistName + "]"
	case strings.HasPrefix(trimmed, string(p.UserSide.Opposite())):
		return "[Against: " + p.AgainstName + "]"
	default:
		return slot
	}
}

package team

import (
	"fmt"
	"strconv"
	"strings"
)

// EVs holds effort values per stat.
type EVs struct {
	HP  int
	Atk int
	Def int
	SpA int
	SpD int
	Spe int
}

func (e EVs) empty() bool {
	return e.HP == 0 && e.Atk == 0 && e.Def == 0 && e.SpA == 0 && e.SpD == 0 && e.Spe == 0
}

// Pokemon is one roster entry in the Showdown team text format.
type Pokemon struct {
	Name      string
	Species   string
	Item      string
	Ability   string
	Nature    string
	Gender    string
	Level     int
	Happiness int
	Shiny     bool
	EVs       EVs
	IVs       *EVs
	Moves     []string
}

// Team is an ordered roster.
type Team struct {
	Pokemon []Pokemon
}

// Parse reads the human-readable Showdown team text format:
//
//	Name (Gender) @ Item
//	Ability: ...
//	EVs: 252 Atk / 4 SpD / 252 Spe
//	Jolly Nature
//	- Move
func Parse(input string) Team {
	var team Team
	var current *Pokemon

	flush := func() {
		if current != nil {
			team.Pokemon = append(team.Pokemon, *current)
			current = nil
		}
	}

	for _, raw := range strings.Split(input, "\n") {
		line := strings.TrimSpace(raw)
		line = strings.TrimPrefix(line, "#")
		line = strings.TrimSpace(line)

		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "-"):
			if current != nil {
				current.Moves = append(current.Moves, strings.TrimSpace(strings.TrimPrefix(line, "-")))
			}
		case strings.HasPrefix(line, "EVs:"):
			if current != nil {
				current.EVs = parseEVs(line)
			}
		case strings.HasPrefix(line, "Ability:"):
			if current != nil {
				current.Ability = strings.TrimSpace(strings.TrimPrefix(line, "Ability:"))
			}
		case strings.HasPrefix(line, "Level:"):
			if current != nil {
				current.Level, _ = strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Level:")))
			}
		case strings.HasSuffix(line, "Nature"):
			if current != nil {
				current.Nature = strings.TrimSpace(strings.TrimSuffix(line, "Nature"))
			}
		default:
			// header line starts the next entry
			flush()
			p := parseHeader(line)
			current = &p
		}
	}
	flush()

	return team
}

// Format serializes the team back to Showdown team text.
func (t Team) Format() string {
	var b strings.Builder

	for i, p := range t.Pokemon {
		if i > 0 {
			b.WriteByte('\n')
		}

		b.WriteString(p.Name)
		if p.Gender != "" {
			fmt.Fprintf(&b, " (%s)", p.Gender)
		}
		if p.Item != "" {
			fmt.Fprintf(&b, " @ %s", p.Item)
		}
		b.WriteByte('\n')

		if p.Ability != "" {
			fmt.Fprintf(&b, "Ability: %s\n", p.Ability)
		}
		if p.Level > 0 {
			fmt.Fprintf(&b, "Level: %d\n", p.Level)
		}
		if !p.EVs.empty() {
			fmt.Fprintf(&b, "EVs: %s\n", formatEVs(p.EVs))
		}
		if p.Nature != "" {
			fmt.Fprintf(&b, "%s Nature\n", p.Nature)
		}
		for _, mv := range p.Moves {
			fmt.Fprintf(&b, "- %s\n", mv)
		}
	}

	return b.String()
}

func parseHeader(line string) Pokemon {
	var p Pokemon

	rest := line
	if idx := strings.Index(rest, "@"); idx >= 0 {
		p.Item = strings.TrimSpace(rest[idx+1:])
		rest = strings.TrimSpace(rest[:idx])
	}
	if strings.HasSuffix(rest, "(M)") || strings.HasSuffix(rest, "(F)") {
		p.Gender = strings.Trim(rest[len(rest)-3:], "()")
		rest = strings.TrimSpace(rest[:len(rest)-3])
	}
	p.Name = rest
	return p
}

func parseEVs(line string) EVs {
	var evs EVs
	body := strings.TrimSpace(strings.TrimPrefix(line, "EVs:"))
	for _, part := range strings.Split(body, "/") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) != 2 {
			continue
		}
		value, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		switch fields[1] {
		case "HP":
			evs.HP = value
		case "Atk":
			evs.Atk = value
		case "Def":
			evs.Def = value
		case "SpA":
			evs.SpA = value
		case "SpD":
			evs.SpD = value
		case "Spe":
			evs.Spe = value
		}
	}
	return evs
}

func formatEVs(evs EVs) string {
	parts := make([]string, 0, 6)
	for _, s := range []struct {
		value int
		name  string
	}{
		{evs.HP, "HP"},
		{evs.Atk, "Atk"},
		{evs.Def, "Def"},
		{evs.SpA, "SpA"},
		{evs.SpD, "SpD"},
		{evs.Spe, "Spe"},
	} {
		if s.value > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", s.value, s.name))
		}
	}
	return strings.Join(parts, " / ")
}

package team

import (
	"strconv"
	"strings"
	"unicode"
)

// ParsePacked reads the Showdown packed team format: entries joined by ']',
// each entry 12 '|'-separated fields.
func ParsePacked(input string) Team {
	var t Team

	for _, line := range strings.Split(input, "\n") {
		for _, entry := range strings.Split(line, "]") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}

			fields := strings.Split(entry, "|")
			for len(fields) < 12 {
				fields = append(fields, "")
			}

			p := Pokemon{
				Name:    fields[0],
				Species: fields[1],
				Item:    fields[2],
				Ability: fields[3],
				Nature:  fields[5],
				Gender:  fields[7],
				Shiny:   fields[9] == "S",
			}
			if fields[4] != "" {
				p.Moves = strings.Split(fields[4], ",")
			}
			if fields[6] != "" {
				p.EVs = statSpread(fields[6], 0)
			}
			if fields[8] != "" {
				ivs := statSpread(fields[8], 31)
				p.IVs = &ivs
			}
			if fields[10] != "" {
				p.Level, _ = strconv.Atoi(fields[10])
			}
			if fields[11] != "" {
				p.Happiness, _ = strconv.Atoi(strings.Split(fields[11], ",")[0])
			}

			t.Pokemon = append(t.Pokemon, p)
		}
	}

	return t
}

// FormatPacked serializes the team to the packed format, entries joined by ']'.
func (t Team) FormatPacked() string {
	entries := make([]string, 0, len(t.Pokemon))

	for _, p := range t.Pokemon {
		species := p.Species
		if species == "" {
			species = p.Name
		}

		moves := make([]string, len(p.Moves))
		for i, mv := range p.Moves {
			moves[i] = packedID(mv)
		}

		evs := []string{
			packedStat(p.EVs.HP, 0),
			packedStat(p.EVs.Atk, 0),
			packedStat(p.EVs.Def, 0),
			packedStat(p.EVs.SpA, 0),
			packedStat(p.EVs.SpD, 0),
			packedStat(p.EVs.Spe, 0),
		}

		ivs := ""
		if p.IVs != nil && *p.IVs != (EVs{HP: 31, Atk: 31, Def: 31, SpA: 31, SpD: 31, Spe: 31}) {
			ivs = strings.Join([]string{
				packedStat(p.IVs.HP, 31),
				packedStat(p.IVs.Atk, 31),
				packedStat(p.IVs.Def, 31),
				packedStat(p.IVs.SpA, 31),
				packedStat(p.IVs.SpD, 31),
				packedStat(p.IVs.Spe, 31),
			}, ",")
		}

		shiny := ""
		if p.Shiny {
			shiny = "S"
		}
		level := ""
		if p.Level > 0 && p.Level != 100 {
			level = strconv.Itoa(p.Level)
		}
		happiness := ""
		if p.Happiness > 0 && p.Happiness != 255 {
			happiness = strconv.Itoa(p.Happiness)
		}

		entries = append(entries, strings.Join([]string{
			p.Name,
			packedID(species),
			packedID(p.Item),
			packedID(p.Ability),
			strings.Join(moves, ","),
			p.Nature,
			strings.Join(evs, ","),
			p.Gender,
			ivs,
			shiny,
			level,
			happiness,
		}, "|"))
	}

	return strings.Join(entries, "]")
}

// packedID lowercases and strips non-alphanumerics, matching Showdown ids.
func packedID(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func packedStat(v, blank int) string {
	if v == blank {
		return ""
	}
	return strconv.Itoa(v)
}

func statSpread(field string, fallback int) EVs {
	vals := make([]int, 6)
	for i := range vals {
		vals[i] = fallback
	}
	for i, raw := range strings.Split(field, ",") {
		if i >= 6 {
			break
		}
		if v, err := strconv.Atoi(raw); err == nil {
			vals[i] = v
		}
	}
	return EVs{HP: vals[0], Atk: vals[1], Def: vals[2], SpA: vals[3], SpD: vals[4], Spe: vals[5]}
}

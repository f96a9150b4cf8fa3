package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ronakgh97/pokebrains/internal/constants"
	"github.com/ronakgh97/pokebrains/internal/team"
)

const teamGeneratorDefinition = `{
  "type": "function",
  "function": {
    "name": "generate_pokemon_showdown_team",
    "description": "Takes 6 Pokemon with name, item, ability, nature, EVs and 4 moves each, and returns a valid Pokemon Showdown team text.",
    "parameters": {
      "type": "object",
      "properties": {
        "team": {
          "type": "array",
          "minItems": 6,
          "maxItems": 6,
          "items": {
            "type": "object",
            "properties": {
              "name":    { "type": "string", "description": "Pokemon species name" },
              "item":    { "type": "string", "description": "Held item name" },
              "ability": { "type": "string", "description": "Ability name" },
              "nature":  { "type": "string", "description": "Nature name, e.g. 'Jolly'" },
              "gender":  { "type": "string", "description": "Optional gender, e.g. 'M' or 'F'", "nullable": true },
              "evs": {
                "type": "object",
                "description": "EVs per stat, values 0-252",
                "properties": {
                  "hp":  { "type": "integer", "default": 0 },
                  "atk": { "type": "integer", "default": 0 },
                  "def": { "type": "integer", "default": 0 },
                  "spa": { "type": "integer", "default": 0 },
                  "spd": { "type": "integer", "default": 0 },
                  "spe": { "type": "integer", "default": 0 }
                }
              },
              "moves": {
                "type": "array",
                "description": "List of 1-4 moves",
                "minItems": 1,
                "maxItems": 4,
                "items": { "type": "string" }
              }
            },
            "required": ["name", "item", "ability", "nature", "evs", "moves"]
          }
        }
      },
      "required": ["team"]
    }
  }
}`

// TeamGeneratorTool renders structured roster data as Showdown team text.
// Its output is terminal: the rendered team is the final answer.
type TeamGeneratorTool struct{}

func NewTeamGeneratorTool() *TeamGeneratorTool { return &TeamGeneratorTool{} }

func (t *TeamGeneratorTool) Name() string { return "generate_pokemon_showdown_team" }

func (t *TeamGeneratorTool) Definition() json.RawMessage {
	return json.RawMessage(teamGeneratorDefinition)
}

func (t *TeamGeneratorTool) Feedback() bool { return false }

func (t *TeamGeneratorTool) Execute(_ context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Team []struct {
			Name    string `json:"name"`
			Item    string `json:"item"`
			Ability string `json:"ability"`
			Nature  string `json:"nature"`
			Gender  string `json:"gender"`
			EVs     struct {
				HP  int `json:"hp"`
				Atk int `json:"atk"`
				Def int `json:"def"`
				SpA int `json:"spa"`
				SpD int `json:"spd"`
				Spe int `json:"spe"`
			} `json:"evs"`
			Moves []string `json:"moves"`
		} `json:"team"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	if len(params.Team) != constants.TeamSize {
		return "", fmt.Errorf("%w: team must contain exactly %d pokemon", ErrBadArgs, constants.TeamSize)
	}

	roster := team.Team{Pokemon: make([]team.Pokemon, 0, len(params.Team))}
	for _, mon := range params.Team {
		if mon.Name == "" {
			return "", fmt.Errorf("%w: each pokemon must have a name", ErrBadArgs)
		}
		if len(mon.Moves) == 0 {
			return "", fmt.Errorf("%w: each pokemon must have at least 1 move", ErrBadArgs)
		}
		roster.Pokemon = append(roster.Pokemon, team.Pokemon{
			Name:    mon.Name,
			Item:    mon.Item,
			Ability: mon.Ability,
			Nature:  mon.Nature,
			Gender:  mon.Gender,
			EVs: team.EVs{
				HP:  mon.EVs.HP,
				Atk: mon.EVs.Atk,
				Def: mon.EVs.Def,
				SpA: mon.EVs.SpA,
				SpD: mon.EVs.SpD,
				Spe: mon.EVs.Spe,
			},
			Moves: mon.Moves,
		})
	}

	return roster.Format(), nil
}

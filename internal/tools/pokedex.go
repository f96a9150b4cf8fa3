package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ronakgh97/pokebrains/internal/pokeapi"
)

const pokedexDefinition = `{
  "type": "function",
  "function": {
    "name": "get_pokemon_details",
    "description": "Fetches a pokemon details from the PokeAPI",
    "parameters": {
      "type": "object",
      "properties": {
        "pokemon": {
          "type": "string",
          "description": "Exact Pokemon Name"
        }
      },
      "required": ["pokemon"]
    }
  }
}`

// PokedexTool fetches species data from the PokeAPI and feeds it back into
// the conversation.
type PokedexTool struct {
	client *pokeapi.Client
}

func NewPokedexTool(client *pokeapi.Client) *PokedexTool {
	return &PokedexTool{client: client}
}

func (t *PokedexTool) Name() string { return "get_pokemon_details" }

func (t *PokedexTool) Definition() json.RawMessage { return json.RawMessage(pokedexDefinition) }

func (t *PokedexTool) Feedback() bool { return true }

func (t *PokedexTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Pokemon string `json:"pokemon"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	if params.Pokemon == "" {
		return "", fmt.Errorf("%w: missing 'pokemon' argument", ErrBadArgs)
	}

	info, err := t.client.FetchPokemon(ctx, params.Pokemon)
	if err != nil {
		return "", fmt.Errorf("failed to fetch pokemon %q: %w", params.Pokemon, err)
	}

	return info.Readable(), nil
}

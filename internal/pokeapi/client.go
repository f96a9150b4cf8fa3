package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"
)

const defaultBaseURL = "https://pokeapi.co/api/v2"

// Client is a read-only lookup client for the public PokeAPI species data.
type Client struct {
	baseURL string
	client  *fasthttp.Client
}

func NewClient() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     20,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

type PokemonInfo struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	Height    int           `json:"height"`
	Weight    int           `json:"weight"`
	Types     []TypeSlot    `json:"types"`
	Abilities []AbilitySlot `json:"abilities"`
	Moves     []MoveSlot    `json:"moves"`
	Stats     []StatSlot    `json:"stats"`
}

type TypeSlot struct {
	Type NamedResource `json:"type"`
}

type AbilitySlot struct {
	IsHidden bool          `json:"is_hidden"`
	Ability  NamedResource `json:"ability"`
	Effect   string        `json:"-"` // filled in from the ability endpoint
}

type MoveSlot struct {
	Move NamedResource `json:"move"`
}

type StatSlot struct {
	BaseStat int           `json:"base_stat"`
	Stat     NamedResource `json:"stat"`
}

type NamedResource struct {
	Name string `json:"name"`
}

type abilityDetails struct {
	Name          string        `json:"name"`
	EffectEntries []effectEntry `json:"effect_entries"`
}

type effectEntry struct {
	ShortEffect string        `json:"short_effect"`
	Language    NamedResource `json:"language"`
}

// FetchPokemon looks up a species and enriches each ability with its short
// English effect description. Ability lookups run in parallel; a failed
// ability lookup leaves that effect empty rather than failing the whole call.
func (c *Client) FetchPokemon(ctx context.Context, name string) (*PokemonInfo, error) {
	url := fmt.Sprintf("%s/pokemon/%s", c.baseURL, strings.ToLower(strings.TrimSpace(name)))
	info, err := doRequest[PokemonInfo](ctx, c, url)
	if err != nil {
		return nil, fmt.Errorf("fetch pokemon %q: %w", name, err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	for i := range info.Abilities {
		i := i
		g.Go(func() error {
			abilityURL := fmt.Sprintf("%s/ability/%s", c.baseURL, info.Abilities[i].Ability.Name)
			details, err := doRequest[abilityDetails](gCtx, c, abilityURL)
			if err != nil {
				return nil
			}
			for _, entry := range details.EffectEntries {
				if entry.Language.Name == "en" {
					info.Abilities[i].Effect = entry.ShortEffect
					break
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return info, nil
}

func doRequest[T any](ctx context.Context, c *Client, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Readable renders the info as a compact summary suitable for a model
// prompt.
func (p *PokemonInfo) Readable() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Pokemon: %s\n", strings.ToUpper(p.Name))

	typeNames := make([]string, len(p.Types))
	for i, t := range p.Types {
		typeNames[i] = t.Type.Name
	}
	fmt.Fprintf(&b, "Types: %s\n", strings.Join(typeNames, ", "))
	fmt.Fprintf(&b, "Height: %d | Weight: %d\n", p.Height, p.Weight)

	b.WriteString("Stats:\n")
	for _, s := range p.Stats {
		fmt.Fprintf(&b, "  %s: %d\n", s.Stat.Name, s.BaseStat)
	}

	b.WriteString("Abilities:\n")
	for _, a := range p.Abilities {
		hidden := ""
		if a.IsHidden {
			hidden = " (Hidden)"
		}
		if a.Effect != "" {
			fmt.Fprintf(&b, "  %s%s - %s\n", a.Ability.Name, hidden, a.Effect)
		} else {
			fmt.Fprintf(&b, "  %s%s\n", a.Ability.Name, hidden)
		}
	}

	fmt.Fprintf(&b, "Moves (total %d):\n", len(p.Moves))
	for i, m := range p.Moves {
		if i >= 4 {
			fmt.Fprintf(&b, "  ... and %d more\n", len(p.Moves)-4)
			break
		}
		fmt.Fprintf(&b, "  - %s\n", m.Move.Name)
	}

	return b.String()
}

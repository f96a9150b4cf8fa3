package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type fakeTool struct {
	name     string
	feedback bool
	result   string
}

func (f fakeTool) Name() string                { return f.name }
func (f fakeTool) Definition() json.RawMessage { return json.RawMessage(`{"type":"function"}`) }
func (f fakeTool) Feedback() bool              { return f.feedback }
func (f fakeTool) Execute(context.Context, json.RawMessage) (string, error) {
	return f.result, nil
}

func TestRegistryLookup(t *testing.T) {
	t.Parallel()

	r := NewRegistry(fakeTool{name: "lookup", feedback: true})

	tool, err := r.Lookup("lookup")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if tool.Name() != "lookup" {
		t.Fatalf("tool name = %q", tool.Name())
	}

	if _, err := r.Lookup("ghost"); !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("unknown tool error = %v, want ErrUnknownTool", err)
	}
}

func TestRegistryDefinitions(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if defs := r.Definitions(); defs != nil {
		t.Fatalf("empty registry definitions = %v, want nil", defs)
	}

	r.Register(fakeTool{name: "a"})
	r.Register(fakeTool{name: "b"})
	if got := len(r.Definitions()); got != 2 {
		t.Fatalf("definitions = %d, want 2", got)
	}
}

func TestTeamGeneratorRendersTeam(t *testing.T) {
	t.Parallel()

	entry := func(name string) map[string]any {
		return map[string]any{
			"name":    name,
			"item":    "Leftovers",
			"ability": "Levitate",
			"nature":  "Calm",
			"evs":     map[string]int{"hp": 252, "spd": 252, "def": 4},
			"moves":   []string{"Volt Switch", "Hydro Pump"},
		}
	}
	args, err := json.Marshal(map[string]any{"team": []any{
		entry("Rotom-Wash"), entry("Ferrothorn"), entry("Garchomp"),
		entry("Latios"), entry("Tyranitar"), entry("Scizor"),
	}})
	if err != nil {
		t.Fatal(err)
	}

	generator := NewTeamGeneratorTool()
	if generator.Feedback() {
		t.Fatal("team generator must be terminal")
	}

	out, err := generator.Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	team := "Rotom-Wash @ Leftovers"
	if got := out[:len(team)]; got != team {
		t.Fatalf("output starts with %q", got)
	}
}

func TestTeamGeneratorRejectsBadInput(t *testing.T) {
	t.Parallel()

	generator := NewTeamGeneratorTool()

	tests := []struct {
		name string
		args string
	}{
		{"not json", "{"},
		{"missing team", `{}`},
		{"wrong size", `{"team":[{"name":"Pikachu","moves":["Surf"]}]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := generator.Execute(context.Background(), json.RawMessage(tc.args)); !errors.Is(err, ErrBadArgs) {
				t.Fatalf("error = %v, want ErrBadArgs", err)
			}
		})
	}
}

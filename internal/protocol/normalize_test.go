package protocol

import (
	"reflect"
	"testing"
)

func TestNormalizeRelabels(t *testing.T) {
	t.Parallel()

	p := Perspective{UserSide: SideP2, AssistName: "ronak", AgainstName: "kashimo"}

	tests := []struct {
		name string
		in   Event
		want Event
	}{
		{
			"move slot and target",
			Move{Slot: "p2a", Pokemon: "Dragonite", Name: "Outrage", Target: "p1a: Amoonguss"},
			Move{Slot: "[Assist: ronak]", Pokemon: "Dragonite", Name: "Outrage", Target: "[Against: kashimo]: Amoonguss"},
		},
		{
			"switch slot",
			Switch{Slot: "p1a", Pokemon: "Bisharp", Species: "Bisharp", HP: "100/100"},
			Switch{Slot: "[Against: kashimo]", Pokemon: "Bisharp", Species: "Bisharp", HP: "100/100"},
		},
		{
			"damage slot",
			Damage{Slot: "p2a", Pokemon: "Dragonite", HP: "60/100"},
			Damage{Slot: "[Assist: ronak]", Pokemon: "Dragonite", HP: "60/100"},
		},
		{
			"faint target",
			Faint{Target: "p1a: Bisharp"},
			Faint{Target: "[Against: kashimo]: Bisharp"},
		},
		{
			"miss both",
			Miss{Source: "p2a: Gengar", Target: "p1a: Clefable"},
			Miss{Source: "[Assist: ronak]: Gengar", Target: "[Against: kashimo]: Clefable"},
		},
		{
			"sidestart",
			SideStart{Target: "p1: kashimo", Condition: "Stealth Rock"},
			SideStart{Target: "[Against: kashimo]", Condition: "Stealth Rock"},
		},
		{
			"no side reference untouched",
			Weather{Condition: "RainDance"},
			Weather{Condition: "RainDance"},
		},
		{
			"nickname containing a side tag survives",
			Faint{Target: "p2a: p1rate"},
			Faint{Target: "[Assist: ronak]: p1rate"},
		},
		{
			"target nickname containing a side tag survives",
			Move{Slot: "p1a", Pokemon: "Amoonguss", Name: "Spore", Target: "p2a: p2pal"},
			Move{Slot: "[Against: kashimo]", Pokemon: "Amoonguss", Name: "Spore", Target: "[Assist: ronak]: p2pal"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in, p)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Normalize() = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestNormalizeUnresolvedIsNoOp(t *testing.T) {
	t.Parallel()

	in := Move{Slot: "p1a", Pokemon: "Pikachu", Name: "Thunderbolt", Target: "p2a: Squirtle"}
	got := Normalize(in, Perspective{})
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("unresolved perspective changed event: %#v", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	p := Perspective{UserSide: SideP1, AssistName: "alice", AgainstName: "bob"}

	events := []Event{
		Move{Slot: "p1a", Pokemon: "Pikachu", Name: "Thunderbolt", Target: "p2a: Squirtle"},
		Damage{Slot: "p2a", Pokemon: "Squirtle", HP: "45/100"},
		Faint{Target: "p1a: Pikachu"},
		SideStart{Target: "p2: bob", Condition: "Spikes"},
	}

	for _, ev := range events {
		once := Normalize(ev, p)
		twice := Normalize(once, p)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("double normalization diverged: %#v vs %#v", once, twice)
		}
	}
}

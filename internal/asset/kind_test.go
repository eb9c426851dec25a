package asset

import "testing"

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		want Kind
	}{
		{"intro.storygraph.yaml", KindStoryGraph},
		{"intro.storygraph", KindStoryGraph},
		{"guard.character.yaml", KindCharacter},
		{"gate.location.yaml", KindLocation},
		{"rusty-key.item.yaml", KindItem},
		{"notes.yaml", KindUnknown},
		{"intro.Storygraph.yaml", KindUnknown}, // suffix match is case-sensitive
		{"storygraph.yaml", KindUnknown},       // suffix, not bare name
		{"intro.storygraph.json", KindUnknown},
		{"", KindUnknown},
	}
	for _, c := range cases {
		if got := KindOf(c.name); got != c.want {
			t.Errorf("KindOf(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestIsStoryGraph(t *testing.T) {
	if !IsStoryGraph("intro.storygraph.yaml") {
		t.Error("expected story graph")
	}
	if IsStoryGraph("guard.character.yaml") {
		t.Error("character asset is not a story graph")
	}
}

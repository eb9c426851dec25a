package player

import "testing"

func TestEvalCondition(t *testing.T) {
	ctx := &EvalContext{
		Flags:   map[string]bool{"armed": true, "broke": false},
		Visited: map[string]bool{"scene-gate": true},
	}

	cases := []struct {
		expr string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"flag.armed", true},
		{"flag.broke", false},
		{"flag.unknown", false},
		{"visited.scene-gate", true},
		{"visited.scene-crypt", false},
		{"!flag.broke", true},
		{"!visited.scene-gate", false},
		{"flag.armed && visited.scene-gate", true},
		{"flag.armed && flag.broke", false},
		{"flag.armed && !flag.broke && visited.scene-gate", true},
		{"gibberish", false},
	}
	for _, c := range cases {
		if got := EvalCondition(c.expr, ctx); got != c.want {
			t.Errorf("EvalCondition(%q) = %v, want %v", c.expr, got, c.want)
		}
	}
}

func TestEvalConditionNilState(t *testing.T) {
	ctx := &EvalContext{}
	if EvalCondition("flag.armed", ctx) {
		t.Error("nil flags must evaluate false")
	}
	if EvalCondition("visited.x", ctx) {
		t.Error("nil visited must evaluate false")
	}
	if !EvalCondition("", ctx) {
		t.Error("empty condition is always true")
	}
}

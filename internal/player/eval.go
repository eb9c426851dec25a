package player

import "strings"

// EvalContext provides state for edge-condition evaluation.
type EvalContext struct {
	Flags   map[string]bool
	Visited map[string]bool
}

// EvalCondition evaluates an edge condition expression against the
// playthrough state. Supported patterns:
//   - "" (empty = always true)
//   - "visited.<nodeID>" (the node has been entered)
//   - "flag.<name>" (the flag is set)
//   - "!visited.<nodeID>" / "!flag.<name>" (negation)
//   - "<cond> && <cond>" (conjunction)
//
// Unknown patterns evaluate to false; the model stores conditions as
// opaque strings and never interprets them itself.
func EvalCondition(expr string, ctx *EvalContext) bool {
	expr = strings.TrimSpace(expr)

	if expr == "" {
		return true
	}

	if strings.Contains(expr, "&&") {
		parts := strings.SplitN(expr, "&&", 2)
		return EvalCondition(parts[0], ctx) && EvalCondition(parts[1], ctx)
	}

	if strings.HasPrefix(expr, "!") {
		return !EvalCondition(expr[1:], ctx)
	}

	if id, ok := strings.CutPrefix(expr, "visited."); ok {
		if ctx.Visited == nil {
			return false
		}
		return ctx.Visited[id]
	}

	if name, ok := strings.CutPrefix(expr, "flag."); ok {
		if ctx.Flags == nil {
			return false
		}
		return ctx.Flags[name]
	}

	return false
}

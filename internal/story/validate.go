package story

import "fmt"

// Result is the outcome of a validation pass. Valid is true iff Errors is
// empty.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate runs every structural check over the document and accumulates
// diagnostics; it never short-circuits and never mutates the document.
// Documents may transiently violate these invariants during editing, so a
// failing result is normal output, not an error condition.
func Validate(d *Document) Result {
	var errs []string

	starts := 0
	d.Nodes.Range(func(_ string, n Node) bool {
		if n.Type() == NodeStart {
			starts++
		}
		return true
	})
	switch {
	case starts == 0:
		errs = append(errs, "missing start node")
	case starts > 1:
		errs = append(errs, fmt.Sprintf("multiple start nodes (%d)", starts))
	}

	if len(d.EndNodes()) == 0 {
		errs = append(errs, "missing end node")
	}

	// Orphan detection: every non-start node needs at least one incoming edge.
	incoming := make(map[string]int)
	d.Edges.Range(func(_ string, e *Edge) bool {
		incoming[e.To]++
		return true
	})
	d.Nodes.Range(func(id string, n Node) bool {
		if n.Type() != NodeStart && incoming[id] == 0 {
			errs = append(errs, fmt.Sprintf("orphan node %q (%s) has no incoming edges", n.Base().Name, id))
		}
		return true
	})

	d.Edges.Range(func(id string, e *Edge) bool {
		if !d.Nodes.Has(e.From) {
			errs = append(errs, fmt.Sprintf("edge %s references missing node %s", id, e.From))
		}
		if !d.Nodes.Has(e.To) {
			errs = append(errs, fmt.Sprintf("edge %s references missing node %s", id, e.To))
		}
		if e.ChoiceID != "" && !choiceExists(d, e.ChoiceID) {
			errs = append(errs, fmt.Sprintf("edge %s references missing choice %s", id, e.ChoiceID))
		}
		return true
	})

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func choiceExists(d *Document, choiceID string) bool {
	for _, sn := range d.SceneNodes() {
		for _, c := range sn.Choices {
			if c.ID == choiceID {
				return true
			}
		}
	}
	return false
}

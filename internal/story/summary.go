package story

import (
	"fmt"
	"strings"
)

// Summarize renders a compact digest of the document for downstream
// consumers (AI context assembly among them). The line order and labels
// are a stable contract with those consumers; changing them breaks
// downstream prompt templates.
func Summarize(d *Document) string {
	scenes := d.SceneNodes()

	dialogues := 0
	choices := 0
	characters := make(map[string]struct{})
	locations := make(map[string]struct{})
	for _, sn := range scenes {
		dialogues += len(sn.Dialogues)
		choices += len(sn.Choices)
		for _, c := range sn.Characters {
			characters[c.CharacterID] = struct{}{}
		}
		if sn.LocationID != "" {
			locations[sn.LocationID] = struct{}{}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Story: %s\n", d.Metadata.Title)
	fmt.Fprintf(&b, "Description: %s\n", d.Metadata.Description)
	fmt.Fprintf(&b, "Scenes: %d\n", len(scenes))
	fmt.Fprintf(&b, "Dialogues: %d\n", dialogues)
	fmt.Fprintf(&b, "Choices: %d\n", choices)
	fmt.Fprintf(&b, "Characters: %d\n", len(characters))
	fmt.Fprintf(&b, "Locations: %d\n", len(locations))
	fmt.Fprintf(&b, "End Nodes: %d\n", len(d.EndNodes()))
	return b.String()
}

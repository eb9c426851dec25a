package events

import "fmt"

var allowedEvents = map[string]struct{}{
	// document
	"document.loaded":      {},
	"document.load_failed": {},
	"document.created":     {},
	"document.replaced":    {},
	"document.saved":       {},
	"document.save_failed": {},
	"document.evicted":     {},

	// node
	"node.created": {},
	"node.updated": {},
	"node.deleted": {},

	// edge
	"edge.created": {},
	"edge.deleted": {},

	// scene content
	"dialogue.added":    {},
	"dialogue.updated":  {},
	"dialogue.removed":  {},
	"choice.added":      {},
	"choice.updated":    {},
	"choice.removed":    {},
	"character.added":   {},
	"character.removed": {},
	"location.linked":   {},
	"location.unlinked": {},

	// playthrough
	"playthrough.started":  {},
	"playthrough.advanced": {},
	"playthrough.choice":   {},
	"playthrough.ended":    {},

	// system
	"system.startup":  {},
	"system.shutdown": {},
	"system.error":    {},
}

// Validate rejects event names outside the registry so a typo in one
// emit site cannot silently invent a new event stream.
func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}

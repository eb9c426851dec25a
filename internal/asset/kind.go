// Package asset classifies editor asset names by their semantic suffix
// convention: a document named "intro.storygraph.yaml" is a story graph.
package asset

import "strings"

// Kind is the semantic type of an asset.
type Kind string

const (
	KindStoryGraph Kind = "storygraph"
	KindCharacter  Kind = "character"
	KindLocation   Kind = "location"
	KindItem       Kind = "item"
	KindUnknown    Kind = ""
)

// The serialized-file extension paired with every semantic suffix.
const fileExt = ".yaml"

// KindOf classifies an asset name by exact, case-sensitive suffix match
// on the name with the .yaml extension stripped.
func KindOf(name string) Kind {
	base := strings.TrimSuffix(name, fileExt)
	switch {
	case strings.HasSuffix(base, ".storygraph"):
		return KindStoryGraph
	case strings.HasSuffix(base, ".character"):
		return KindCharacter
	case strings.HasSuffix(base, ".location"):
		return KindLocation
	case strings.HasSuffix(base, ".item"):
		return KindItem
	default:
		return KindUnknown
	}
}

// IsStoryGraph reports whether the asset name is a story graph document,
// the gate for whether the document cache is involved at all.
func IsStoryGraph(name string) bool {
	return KindOf(name) == KindStoryGraph
}

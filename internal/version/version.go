// Package version provides build and version information for StoryForge.
package version

// Version is the current release version of StoryForge.
// This can be overridden at build time using:
//
//	go build -ldflags "-X github.com/pajamadot/storyforge/internal/version.Version=x.y.z"
var Version = "0.1.0"

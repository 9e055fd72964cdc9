// Package version holds the release version reported by the service.
package version

// Version is the current release.
const Version = "v0.3.1"

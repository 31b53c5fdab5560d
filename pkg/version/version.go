// Package version exposes the build version string.
package version

// Version is overridable at build time:
//
//	go build -ldflags "-X wikiscope/pkg/version.Version=1.2.3"
var Version = "0.4.0"

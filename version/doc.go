// Package version holds the library build version, used for the default
// User-Agent header.
//
// Version and GitCommit can be set at link time:
//
//	go build -ldflags "-X github.com/kbukum/anyhttp/version.Version=1.2.0"
package version
